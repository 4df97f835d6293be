package datatypes

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

type AdjustmentType string

var (
	AdjustmentRating      AdjustmentType = "rating_bonus"
	AdjustmentSeniority   AdjustmentType = "seniority_bonus"
	AdjustmentExclusivity AdjustmentType = "exclusivity_bonus"
	AdjustmentVolume      AdjustmentType = "volume_bonus"
)

// Adjustment is a labelled rate delta. Value is always negative.
type Adjustment struct {
	Type        AdjustmentType  `json:"type"`
	Description string          `json:"description"`
	Value       decimal.Decimal `json:"value"`
}

type Adjustments []Adjustment

func (a Adjustments) Total() decimal.Decimal {
	total := decimal.Zero
	for _, adjustment := range a {
		total = total.Add(adjustment.Value)
	}

	return total
}

// Value return json value, implement driver.Valuer interface
func (a Adjustments) Value() (driver.Value, error) {
	if a == nil {
		a = Adjustments{}
	}
	data, err := json.Marshal(a)
	return string(data), err
}

// Scan scan value into Jsonb, implements sql.Scanner interface
func (a *Adjustments) Scan(val interface{}) error {
	if val == nil {
		*a = Adjustments{}
		return nil
	}
	var ba []byte
	switch v := val.(type) {
	case []byte:
		ba = v
	case string:
		ba = []byte(v)
	default:
		return errors.New(fmt.Sprint("Failed to unmarshal JSONB value:", val))
	}
	t := Adjustments{}
	err := json.Unmarshal(ba, &t)
	*a = t
	return err
}

// GormDataType gorm common data type
func (Adjustments) GormDataType() string {
	return "json"
}

// GormDBDataType gorm db data type
func (Adjustments) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	switch db.Dialector.Name() {
	case "sqlite":
		return "JSON"
	case "mysql":
		return "JSON"
	case "postgres":
		return "JSONB"
	}
	return ""
}
