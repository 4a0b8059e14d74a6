package model

import (
	"encoding/json"
	"time"
)

type AuxiliaryState string

const (
	AuxiliaryHeatingAuxiliary AuxiliaryState = "HEATING_AUXILIARY"
	AuxiliaryInvalid          AuxiliaryState = "INVALID"
	AuxiliaryOff              AuxiliaryState = "OFF"
	AuxiliaryPreheating       AuxiliaryState = "PREHEATING"
	AuxiliaryUnsupported      AuxiliaryState = "UNSUPPORTED"
	AuxiliaryVentilation      AuxiliaryState = "VENTILATION"
)

type AuxiliaryStartMode string

const (
	AuxiliaryStartHeating     AuxiliaryStartMode = "HEATING"
	AuxiliaryStartVentilation AuxiliaryStartMode = "VENTILATION"
	AuxiliaryStartInvalid     AuxiliaryStartMode = "INVALID"
)

// AuxiliaryConfig is the configuration sent when starting the auxiliary
// heater. All fields are optional.
type AuxiliaryConfig struct {
	TargetTemperature *TargetTemperature `json:"targetTemperature,omitempty"`
	DurationInSeconds int                `json:"durationInSeconds,omitempty"`
	HeaterSource      HeaterSource       `json:"heaterSource,omitempty"`
	StartMode         AuxiliaryStartMode `json:"startMode,omitempty"`
}

// MarshalJSON rounds the target temperature to the accepted half-degree
// granularity before encoding.
func (c AuxiliaryConfig) MarshalJSON() ([]byte, error) {
	type alias AuxiliaryConfig

	if c.TargetTemperature != nil {
		rounded := *c.TargetTemperature
		rounded.TemperatureValue = RoundToHalf(rounded.TemperatureValue)
		c.TargetTemperature = &rounded
	}

	return json.Marshal(alias(c))
}

// AuxiliaryHeating is the response of the auxiliary-heating endpoint.
type AuxiliaryHeating struct {
	Timers                          []Timer            `json:"timers"`
	Errors                          []json.RawMessage  `json:"errors"`
	State                           AuxiliaryState     `json:"state,omitempty"`
	StartMode                       AuxiliaryStartMode `json:"startMode,omitempty"`
	DurationInSeconds               int                `json:"durationInSeconds,omitempty"`
	TargetTemperature               *TargetTemperature `json:"targetTemperature,omitempty"`
	CarCapturedTimestamp            *time.Time         `json:"carCapturedTimestamp,omitempty"`
	EstimatedReachTargetTemperature *time.Time         `json:"estimatedDateTimeToReachTargetTemperature,omitempty"`
}
