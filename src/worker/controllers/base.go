package controllers

import (
	"sync"

	"investmentapp/src/scheduler"
	"investmentapp/src/services"
)

type Controller struct {
	Relationships  services.RelationshipServiceI
	SchedulerMutex sync.Mutex
	Schedulers     map[string]*scheduler.ScheduledTask
}

func NewController(relationships services.RelationshipServiceI) *Controller {
	return &Controller{Relationships: relationships, Schedulers: map[string]*scheduler.ScheduledTask{}}
}

func (c *Controller) GetSchedulers() map[string]*scheduler.ScheduledTask {
	c.SchedulerMutex.Lock()
	defer c.SchedulerMutex.Unlock()

	schedulers := make(map[string]*scheduler.ScheduledTask, len(c.Schedulers))
	for name, task := range c.Schedulers {
		schedulers[name] = task
	}
	return schedulers
}

// Stop cancels every scheduled task.
func (c *Controller) Stop() {
	c.SchedulerMutex.Lock()
	defer c.SchedulerMutex.Unlock()

	for name, task := range c.Schedulers {
		task.Cancel()
		delete(c.Schedulers, name)
	}
}
