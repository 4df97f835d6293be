package cron

import (
	"context"

	"github.com/jasonlvhit/gocron"
	"github.com/zsmartex/venuex/config"
	"github.com/zsmartex/venuex/services/payout_service"
)

type PayoutJob struct {
	Service *payout_service.Service
	Locker  Locker
	At      string
}

func NewPayoutJob(service *payout_service.Service, locker Locker) *PayoutJob {
	return &PayoutJob{
		Service: service,
		Locker:  locker,
		At:      config.Settings.Schedule.PayoutAt,
	}
}

func (j *PayoutJob) Process() {
	s := gocron.NewScheduler()
	s.Every(1).Day().At(j.At).Do(j.Run)
	<-s.Start()
}

func (j *PayoutJob) Run() error {
	return run(j.Locker, "payout", func(ctx context.Context) (map[string]interface{}, error) {
		result, err := j.Service.ProcessPayouts(ctx)
		if err != nil {
			return nil, err
		}

		total_amount, _ := result.TotalAmount.Float64()

		return map[string]interface{}{
			"processed":    result.ProcessedCount,
			"failed":       result.FailedCount,
			"skipped":      result.SkippedCount,
			"total_amount": total_amount,
		}, nil
	})
}
