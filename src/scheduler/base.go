package scheduler

import (
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// ScheduledTask runs one function on a cron spec. Runs never overlap: a tick
// that fires while the previous run is still going is skipped.
type ScheduledTask struct {
	cronID cron.EntryID
	cron   *cron.Cron
	cancel chan struct{}
	once   sync.Once
}

func NewScheduledTask(cronSpec string, taskFunc func()) (*ScheduledTask, error) {
	c := cron.New(cron.WithChain(
		cron.Recover(cron.DefaultLogger),
		cron.SkipIfStillRunning(cron.DiscardLogger),
	))
	cancel := make(chan struct{})
	task := &ScheduledTask{
		cron:   c,
		cancel: cancel,
	}

	id, err := c.AddFunc(cronSpec, func() {
		select {
		case <-cancel:
			return
		default:
			taskFunc()
		}
	})
	if err != nil {
		return nil, err
	}

	task.cronID = id
	c.Start()
	return task, nil
}

// Next reports when the task fires again.
func (s *ScheduledTask) Next() time.Time {
	return s.cron.Entry(s.cronID).Next
}

// Cancel stops the task. It is safe to call more than once.
func (s *ScheduledTask) Cancel() {
	s.once.Do(func() {
		s.cron.Remove(s.cronID)
		close(s.cancel)
		s.cron.Stop()
	})
}
