package model

import (
	"encoding/json"
	"math"
	"time"
)

type TemperatureUnit string

const Celsius TemperatureUnit = "CELSIUS"

type AirConditioningState string

const (
	AirConditioningCooling     AirConditioningState = "COOLING"
	AirConditioningHeating     AirConditioningState = "HEATING"
	AirConditioningHeatingAux  AirConditioningState = "HEATING_AUXILIARY"
	AirConditioningOff         AirConditioningState = "OFF"
	AirConditioningOn          AirConditioningState = "ON"
	AirConditioningVentilation AirConditioningState = "VENTILATION"
	AirConditioningInvalid     AirConditioningState = "INVALID"
)

type HeaterSource string

const (
	HeaterSourceAutomatic HeaterSource = "AUTOMATIC"
	HeaterSourceElectric  HeaterSource = "ELECTRIC"
)

type TimerMode string

const (
	TimerOneOff    TimerMode = "ONE_OFF"
	TimerRecurring TimerMode = "RECURRING"
)

// RoundToHalf rounds a temperature to the nearest half degree, the only
// granularity the backend accepts.
func RoundToHalf(v float64) float64 {
	return math.Round(v*2) / 2
}

// TargetTemperature is the cabin temperature setpoint.
type TargetTemperature struct {
	TemperatureValue float64         `json:"temperatureValue"`
	UnitInCar        TemperatureUnit `json:"unitInCar"`
}

// NewTargetTemperature builds a Celsius setpoint rounded to the accepted
// granularity.
func NewTargetTemperature(celsius float64) TargetTemperature {
	return TargetTemperature{
		TemperatureValue: RoundToHalf(celsius),
		UnitInCar:        Celsius,
	}
}

type Timer struct {
	Enabled      bool      `json:"enabled"`
	ID           int       `json:"id"`
	Time         string    `json:"time"`
	Type         TimerMode `json:"type"`
	SelectedDays []Weekday `json:"selectedDays"`
}

type SeatHeating struct {
	FrontLeft  *bool `json:"frontLeft,omitempty"`
	FrontRight *bool `json:"frontRight,omitempty"`
}

type WindowHeatingState struct {
	Front OnOffState `json:"front"`
	Rear  OnOffState `json:"rear"`
}

type AirConditioningAtUnlock struct {
	AirConditioningAtUnlockEnabled bool `json:"airConditioningAtUnlockEnabled"`
}

type AirConditioningWithoutExternalPower struct {
	AirConditioningWithoutExternalPowerEnabled bool `json:"airConditioningWithoutExternalPowerEnabled"`
}

// AirConditioning is the response of the air-conditioning endpoint.
type AirConditioning struct {
	State                           AirConditioningState `json:"state,omitempty"`
	StateChangedAt                  *time.Time           `json:"carCapturedTimestamp,omitempty"`
	SteeringWheelPosition           Side                 `json:"steeringWheelPosition,omitempty"`
	TargetTemperature               *TargetTemperature   `json:"targetTemperature,omitempty"`
	EstimatedReachTargetTemperature *time.Time           `json:"estimatedDateTimeToReachTargetTemperature,omitempty"`
	HeaterSource                    HeaterSource         `json:"heaterSource,omitempty"`
	WindowHeatingState              *WindowHeatingState  `json:"windowHeatingState,omitempty"`
	WindowHeatingEnabled            bool                 `json:"windowHeatingEnabled,omitempty"`
	SeatHeatingActivated            *SeatHeating         `json:"seatHeatingActivated,omitempty"`
	Timers                          []Timer              `json:"timers,omitempty"`
	AirConditioningAtUnlock         bool                 `json:"airConditioningAtUnlockEnabled,omitempty"`
	RunningRequests                 json.RawMessage      `json:"runningRequests,omitempty"`
}
