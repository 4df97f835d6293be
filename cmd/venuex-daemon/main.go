package main

import (
	"fmt"
	"os"

	"github.com/zsmartex/venuex/config"
	"github.com/zsmartex/venuex/jobs"
	"github.com/zsmartex/venuex/jobs/cron"
	"github.com/zsmartex/venuex/models"
	"github.com/zsmartex/venuex/services/bank_service"
	"github.com/zsmartex/venuex/services/escrow_service"
	"github.com/zsmartex/venuex/services/notification_service"
	"github.com/zsmartex/venuex/services/payout_service"
	"github.com/zsmartex/venuex/services/tier_service"
	"github.com/zsmartex/venuex/workers/daemons"
)

func CreateJob(id string, locker cron.Locker) jobs.Job {
	notifier := notification_service.NewService(config.DataBase, config.Nats, config.Settings.Notification.Subject)

	switch id {
	case "escrow_release":
		return cron.NewEscrowReleaseJob(escrow_service.NewService(config.DataBase), locker)
	case "payout":
		return cron.NewPayoutJob(payout_service.NewService(config.DataBase, bank_service.NewLedgerTransferer(), notifier), locker)
	case "tier_recompute":
		return cron.NewTierRecomputeJob(tier_service.NewService(config.DataBase, notifier), locker)
	default:
		return nil
	}
}

func CreateWorker(ids []string) daemons.Worker {
	if len(ids) == 0 {
		ids = []string{"escrow_release", "payout", "tier_recompute"}
	}

	locker := cron.NewLocker()
	var cron_jobs []jobs.Job

	for _, id := range ids {
		job := CreateJob(id, locker)
		if job == nil {
			config.Logger.Fatalf("Unknown job: %s", id)
		}

		cron_jobs = append(cron_jobs, job)
	}

	return daemons.NewCronJob(cron_jobs...)
}

func main() {
	if err := config.InitializeConfig(); err != nil {
		fmt.Println(err.Error())
		return
	}

	if err := models.Migrate(config.DataBase); err != nil {
		config.Logger.Fatalf("Failed to migrate database: %v", err)
	}

	ARVG := os.Args[1:]

	fmt.Println("Start venuex-daemon:", ARVG)
	worker := CreateWorker(ARVG)

	worker.Start()
}
