package config

import (
	"os"
	"time"

	client "github.com/influxdata/influxdb1-client/v2"
)

var InfluxDB *InfluxClient

type InfluxClient struct {
	client client.Client
}

// NewInfluxDB is optional: without INFLUXDB_URL job metrics are only logged.
func NewInfluxDB() error {
	if len(os.Getenv("INFLUXDB_URL")) == 0 {
		return nil
	}

	c, err := client.NewHTTPClient(client.HTTPConfig{
		Addr: os.Getenv("INFLUXDB_URL"),
	})

	if err != nil {
		return err
	}

	InfluxDB = &InfluxClient{
		client: c,
	}

	return nil
}

func (c *InfluxClient) NewBatchPoints() (client.BatchPoints, error) {
	return client.NewBatchPoints(client.BatchPointsConfig{
		Database:  os.Getenv("INFLUXDB_DATABASE"),
		Precision: "ns",
	})
}

func (c *InfluxClient) NewPoint(name string, tags map[string]string, fields map[string]interface{}) {
	bp, err := c.NewBatchPoints()
	if err != nil {
		GetLogger().Errorf("Failed to create new batch point %v", err.Error())
		return
	}

	point, err := client.NewPoint(name, tags, fields, time.Now())
	if err != nil {
		GetLogger().Errorf("Error %v", err.Error())
		return
	}

	bp.AddPoint(point)

	// Write the batch
	if err := c.client.Write(bp); err != nil {
		GetLogger().Errorf("Error %v", err.Error())
	}
}
