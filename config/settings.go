package config

import (
	"io/ioutil"
	"os"

	"gopkg.in/yaml.v2"
)

type Schedule struct {
	EscrowReleaseEveryMinutes uint64 `yaml:"escrow_release_every_minutes"`
	PayoutAt                  string `yaml:"payout_at"`
	TierRecomputeAt           string `yaml:"tier_recompute_at"`
}

type NotificationSettings struct {
	Subject string `yaml:"subject"`
}

type EngineSettings struct {
	Schedule     Schedule             `yaml:"schedule"`
	Notification NotificationSettings `yaml:"notification"`
}

var Settings = DefaultSettings()

func DefaultSettings() *EngineSettings {
	return &EngineSettings{
		Schedule: Schedule{
			EscrowReleaseEveryMinutes: 15,
			PayoutAt:                  "02:00",
			TierRecomputeAt:           "03:00",
		},
		Notification: NotificationSettings{
			Subject: "venuex.notifications",
		},
	}
}

// LoadSettings reads ENGINE_CONFIG (default config/engine.yml). A missing
// file keeps the defaults.
func LoadSettings() error {
	path := os.Getenv("ENGINE_CONFIG")
	if len(path) == 0 {
		path = "config/engine.yml"
	}

	buf, err := ioutil.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	} else if err != nil {
		return err
	}

	settings, err := ParseSettings(buf)
	if err != nil {
		return err
	}

	Settings = settings

	return nil
}

func ParseSettings(buf []byte) (*EngineSettings, error) {
	s := DefaultSettings()
	if err := yaml.Unmarshal(buf, s); err != nil {
		return nil, err
	}

	return s, nil
}
