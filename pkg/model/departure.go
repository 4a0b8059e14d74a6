package model

import "time"

type DepartureTimer struct {
	ID              int       `json:"id"`
	Enabled         bool      `json:"enabled"`
	Time            string    `json:"time"`
	Type            TimerMode `json:"type"`
	RecurringOn     []Weekday `json:"recurringOn,omitempty"`
	OneOffDay       string    `json:"oneOffDay,omitempty"`
	ChargingEnabled bool      `json:"charging,omitempty"`
}

// DepartureInfo is the response of the departure timers endpoint.
type DepartureInfo struct {
	Timers                       []DepartureTimer `json:"timers"`
	CarCapturedTimestamp         *time.Time       `json:"carCapturedTimestamp,omitempty"`
	MinimumBatteryLevelInPercent int              `json:"minimumBatteryLevelInPercent,omitempty"`
}
