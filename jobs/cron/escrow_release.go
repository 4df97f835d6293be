package cron

import (
	"context"

	"github.com/jasonlvhit/gocron"
	"github.com/zsmartex/venuex/config"
	"github.com/zsmartex/venuex/services/escrow_service"
)

type EscrowReleaseJob struct {
	Service      *escrow_service.Service
	Locker       Locker
	EveryMinutes uint64
}

func NewEscrowReleaseJob(service *escrow_service.Service, locker Locker) *EscrowReleaseJob {
	return &EscrowReleaseJob{
		Service:      service,
		Locker:       locker,
		EveryMinutes: config.Settings.Schedule.EscrowReleaseEveryMinutes,
	}
}

func (j *EscrowReleaseJob) Process() {
	s := gocron.NewScheduler()
	s.Every(j.EveryMinutes).Minutes().Do(j.Run)
	<-s.Start()
}

func (j *EscrowReleaseJob) Run() error {
	return run(j.Locker, "escrow_release", func(ctx context.Context) (map[string]interface{}, error) {
		result, err := j.Service.ReleaseHeldPayments(ctx)
		if err != nil {
			return nil, err
		}

		total_released, _ := result.TotalReleased.Float64()

		return map[string]interface{}{
			"released":       result.ReleasedCount,
			"cancelled":      result.CancelledCount,
			"still_held":     result.StillHeldCount,
			"skipped":        result.SkippedCount,
			"failed":         result.FailedCount,
			"total_released": total_released,
		}, nil
	})
}
