package cron

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
	"github.com/zsmartex/venuex/config"
)

// LockTTL bounds a single run; the lock expires even if the process dies.
var LockTTL = 30 * time.Minute

type runFunc func(ctx context.Context) (map[string]interface{}, error)

// run executes fn at most once at a time across every process sharing locker
// and records the outcome in InfluxDB when it is configured.
func run(locker Locker, name string, fn runFunc) error {
	release, acquired, err := locker.Acquire(name, LockTTL)
	if err != nil {
		config.GetLogger().WithField("job", name).Errorf("Failed to acquire job lock: %v", err)
		return err
	}
	if !acquired {
		config.GetLogger().WithField("job", name).Info("Job already running, skipping")
		return nil
	}
	defer release()

	ctx, cancel := context.WithTimeout(context.Background(), LockTTL)
	defer cancel()

	started_at := time.Now()
	fields, err := fn(ctx)
	if fields == nil {
		fields = make(map[string]interface{})
	}
	fields["duration_ms"] = time.Since(started_at).Milliseconds()
	fields["success"] = err == nil

	if config.InfluxDB != nil {
		config.InfluxDB.NewPoint("venuex_jobs", map[string]string{"job": name}, fields)
	}

	if config.Redis != nil {
		fields["finished_at"] = time.Now().Unix()
		if err := config.Redis.SetKey("venuex:jobs:"+name+":last_run", fields, redis.KeepTTL); err != nil {
			config.GetLogger().WithField("job", name).Errorf("Failed to store last run: %v", err)
		}
	}

	if err != nil {
		config.GetLogger().WithField("job", name).Errorf("Job failed: %v", err)
		return err
	}

	config.GetLogger().WithFields(logrus.Fields(fields)).WithField("job", name).Info("Job finished")

	return nil
}
