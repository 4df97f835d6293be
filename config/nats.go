package config

import (
	"os"

	"github.com/nats-io/nats.go"
)

var Nats *nats.Conn

// ConnectNats is optional: without NATS_URL notifications are only stored in
// the database.
func ConnectNats() error {
	if len(os.Getenv("NATS_URL")) == 0 {
		return nil
	}

	var options []nats.Option
	if len(os.Getenv("NATS_USER")) > 0 {
		options = append(options, nats.UserInfo(os.Getenv("NATS_USER"), os.Getenv("NATS_PASS")))
	}

	n, err := nats.Connect(os.Getenv("NATS_URL"), options...)
	if err != nil {
		return err
	}

	Nats = n

	return nil
}
