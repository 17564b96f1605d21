package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

type TankShape string

const (
	TankShapeCylindrical TankShape = "cylindrical"
	TankShapeRectangular TankShape = "rectangular"
	TankShapeSquare      TankShape = "square"
)

var TankShapes = []TankShape{TankShapeCylindrical, TankShapeRectangular, TankShapeSquare}

// Device mirrors the backend device record. Geometry fields are optional and
// omitted when unset.
type Device struct {
	ID                 int64     `json:"id,omitempty"`
	Name               string    `json:"name"`
	Location           string    `json:"location,omitempty"`
	DeviceID           string    `json:"device_id"`
	TankShape          TankShape `json:"tank_shape"`
	TankRadius         *float64  `json:"tank_radius,omitempty"`
	TankWidth          *float64  `json:"tank_width,omitempty"`
	TankLength         *float64  `json:"tank_length,omitempty"`
	SensorHeightBottom *float64  `json:"sensor_height_bottom,omitempty"`
	ReadingWhenFull    *float64  `json:"reading_when_full,omitempty"`

	PercentageFull   *float64 `json:"percentage_full,omitempty"`
	WaterHeightCm    *float64 `json:"water_height_cm,omitempty"`
	SensorValue      *float64 `json:"sensor_value,omitempty"`
	TankVolumeLiters *float64 `json:"tank_volume_liters,omitempty"`
	MaxCapacity      *float64 `json:"maxCapacity,omitempty"`
	IsOnline         bool     `json:"is_online,omitempty"`

	IotUserID *int64 `json:"iot_user_id"`

	CreatedAt *time.Time `json:"created_at,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

func (d *Device) IsBound() bool {
	return d.IotUserID != nil
}

type User struct {
	UserID    int64      `json:"user_id,omitempty"`
	FullName  string     `json:"full_name"`
	Email     string     `json:"email"`
	Phone     string     `json:"phone,omitempty"`
	IsActive  bool       `json:"is_active"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// Reading is one telemetry sample. Backends disagree on field names, so
// decoding accepts the known aliases.
type Reading struct {
	Timestamp time.Time
	Value     float64
}

type readingWire struct {
	UpdatedAt      *time.Time `json:"updated_at"`
	Timestamp      *time.Time `json:"timestamp"`
	Time           *time.Time `json:"time"`
	PercentageFull *flexFloat `json:"percentage_full"`
	Percentage     *flexFloat `json:"percentage"`
	Value          *flexFloat `json:"value"`
}

func (r *Reading) UnmarshalJSON(data []byte) error {
	var w readingWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	switch {
	case w.UpdatedAt != nil:
		r.Timestamp = *w.UpdatedAt
	case w.Timestamp != nil:
		r.Timestamp = *w.Timestamp
	case w.Time != nil:
		r.Timestamp = *w.Time
	default:
		return fmt.Errorf("reading without timestamp: %s", string(data))
	}

	switch {
	case w.PercentageFull != nil:
		r.Value = float64(*w.PercentageFull)
	case w.Percentage != nil:
		r.Value = float64(*w.Percentage)
	case w.Value != nil:
		r.Value = float64(*w.Value)
	default:
		r.Value = 0
	}
	return nil
}

func (r Reading) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Timestamp time.Time `json:"timestamp"`
		Value     float64   `json:"value"`
	}{r.Timestamp, r.Value})
}

// flexFloat accepts both JSON numbers and numeric strings (DECIMAL columns often arrive quoted).
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = 0
		return nil
	}
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*f = flexFloat(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	*f = flexFloat(n)
	return nil
}

type DashboardStats struct {
	TotalUsers    int `json:"totalUsers"`
	ActiveUsers   int `json:"activeUsers"`
	InactiveUsers int `json:"inactiveUsers"`
	TotalDevices  int `json:"totalDevices"`
}

type UserDetail struct {
	User    *User    `json:"user"`
	Devices []Device `json:"devices"`
}

// SessionRecord is the server-side half of an operator session; the cookie
// only carries its ID.
type SessionRecord struct {
	ID        string `gorm:"primaryKey;size:64"`
	Data      string `gorm:"type:text"`
	CreatedAt time.Time
	UpdatedAt time.Time
	ExpiresAt time.Time `gorm:"index"`
}
