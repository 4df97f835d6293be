package cron

import (
	"context"

	"github.com/jasonlvhit/gocron"
	"github.com/zsmartex/venuex/config"
	"github.com/zsmartex/venuex/services/tier_service"
)

type TierRecomputeJob struct {
	Service *tier_service.Service
	Locker  Locker
	At      string
}

func NewTierRecomputeJob(service *tier_service.Service, locker Locker) *TierRecomputeJob {
	return &TierRecomputeJob{
		Service: service,
		Locker:  locker,
		At:      config.Settings.Schedule.TierRecomputeAt,
	}
}

func (j *TierRecomputeJob) Process() {
	s := gocron.NewScheduler()
	s.Every(1).Day().At(j.At).Do(j.Run)
	<-s.Start()
}

func (j *TierRecomputeJob) Run() error {
	return run(j.Locker, "tier_recompute", func(ctx context.Context) (map[string]interface{}, error) {
		result, err := j.Service.RecomputeAllTiers(ctx)
		if err != nil {
			return nil, err
		}

		return map[string]interface{}{
			"processed": result.ProcessedCount,
			"upgraded":  result.UpgradedCount,
			"failed":    result.FailedCount,
		}, nil
	})
}
