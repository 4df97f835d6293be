package daemons

import (
	"sync"

	"github.com/zsmartex/venuex/config"
	"github.com/zsmartex/venuex/jobs"
)

// CronJob runs each job's schedule in its own goroutine until stopped.
type CronJob struct {
	Jobs []jobs.Job

	stop chan struct{}
	once sync.Once
}

func NewCronJob(jobs ...jobs.Job) *CronJob {
	return &CronJob{Jobs: jobs, stop: make(chan struct{})}
}

func (c *CronJob) Stop() {
	c.once.Do(func() { close(c.stop) })
}

func (c *CronJob) Start() {
	config.GetLogger().WithField("jobs", len(c.Jobs)).Info("Cron daemon started")

	for _, job := range c.Jobs {
		go job.Process()
	}

	<-c.stop
	config.GetLogger().Info("Cron daemon stopped")
}
