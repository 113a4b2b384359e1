package controllers

import (
	"context"

	"investmentapp/src/models"
	"investmentapp/src/scheduler"
	"investmentapp/src/utils"

	"github.com/sirupsen/logrus"
)

const auditTaskName = "relationship-audit"

// RunAudit reports back-reference discrepancies and fixes them when repair
// is set.
func (c *Controller) RunAudit(ctx context.Context, repair bool) ([]models.LinkDiscrepancy, error) {
	if repair {
		return c.Relationships.Repair(ctx)
	}
	return c.Relationships.Audit(ctx)
}

// ScheduleAudit replaces any running audit task with one that repairs on
// cronSpec.
func (c *Controller) ScheduleAudit(logger *logrus.Logger, cronSpec string) error {
	return c.Schedule(auditTaskName, cronSpec, func(ctx context.Context) error {
		_, err := c.RunAudit(utils.WithLogger(ctx, logger), true)
		return err
	}, logger)
}

// Schedule handles the scheduling and re-scheduling of a named task.
func (c *Controller) Schedule(name, cronSpec string, taskFunc func(context.Context) error, logger *logrus.Logger) error {
	c.SchedulerMutex.Lock()
	if existingTask, exists := c.Schedulers[name]; exists {
		existingTask.Cancel()
		delete(c.Schedulers, name)
	}
	c.SchedulerMutex.Unlock()

	newTask, err := scheduler.NewScheduledTask(cronSpec, func() {
		if err := taskFunc(context.Background()); err != nil {
			logger.WithError(err).WithField("task", name).Error("scheduled task failed")
		}
	})
	if err != nil {
		return err
	}

	c.SchedulerMutex.Lock()
	c.Schedulers[name] = newTask
	c.SchedulerMutex.Unlock()

	return nil
}
