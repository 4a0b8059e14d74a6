package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// ChargeMode and ChargingState arrive with different spellings depending on
// the source: the REST API uses upper snake case, the event broker camel
// case. Decoding accepts both and normalizes to the REST spelling.

type ChargeMode string

const (
	ChargeModeHomeStorageCharging            ChargeMode = "HOME_STORAGE_CHARGING"
	ChargeModeImmediateDischarging           ChargeMode = "IMMEDIATE_DISCHARGING"
	ChargeModeOnlyOwnCurrent                 ChargeMode = "ONLY_OWN_CURRENT"
	ChargeModePreferredChargingTimes         ChargeMode = "PREFERRED_CHARGING_TIMES"
	ChargeModeTimerChargingWithClimatisation ChargeMode = "TIMER_CHARGING_WITH_CLIMATISATION"
	ChargeModeTimer                          ChargeMode = "TIMER"
	ChargeModeManual                         ChargeMode = "MANUAL"
	ChargeModeOff                            ChargeMode = "OFF"
)

var chargeModeAliases = map[string]ChargeMode{
	"homeStorageCharging":            ChargeModeHomeStorageCharging,
	"immediateDischarging":           ChargeModeImmediateDischarging,
	"onlyOwnCurrent":                 ChargeModeOnlyOwnCurrent,
	"preferredChargingTimes":         ChargeModePreferredChargingTimes,
	"timerChargingWithClimatisation": ChargeModeTimerChargingWithClimatisation,
}

// ParseChargeMode resolves a wire spelling to a ChargeMode.
func ParseChargeMode(s string) (ChargeMode, error) {
	if mode, ok := chargeModeAliases[s]; ok {
		return mode, nil
	}
	switch mode := ChargeMode(strings.ToUpper(s)); mode {
	case ChargeModeHomeStorageCharging, ChargeModeImmediateDischarging,
		ChargeModeOnlyOwnCurrent, ChargeModePreferredChargingTimes,
		ChargeModeTimerChargingWithClimatisation, ChargeModeTimer,
		ChargeModeManual, ChargeModeOff:
		return mode, nil
	}
	return "", fmt.Errorf("model: unknown charge mode %q", s)
}

func (m *ChargeMode) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	mode, err := ParseChargeMode(s)
	if err != nil {
		return err
	}
	*m = mode
	return nil
}

type ChargingState string

const (
	ChargingStateReadyForCharging ChargingState = "READY_FOR_CHARGING"
	ChargingStateConnectCable     ChargingState = "CONNECT_CABLE"
	ChargingStateConserving       ChargingState = "CONSERVING"
	ChargingStateCharging         ChargingState = "CHARGING"
)

var chargingStateAliases = map[string]ChargingState{
	"chargePurposeReachedAndNotConservationCharging": ChargingStateReadyForCharging,
	"readyForCharging":                    ChargingStateReadyForCharging,
	"notReadyForCharging":                 ChargingStateConnectCable,
	"chargePurposeReachedAndConservation": ChargingStateConserving,
}

// ParseChargingState resolves a wire spelling to a ChargingState.
func ParseChargingState(s string) (ChargingState, error) {
	if state, ok := chargingStateAliases[s]; ok {
		return state, nil
	}
	switch state := ChargingState(strings.ToUpper(s)); state {
	case ChargingStateReadyForCharging, ChargingStateConnectCable,
		ChargingStateConserving, ChargingStateCharging:
		return state, nil
	}
	return "", fmt.Errorf("model: unknown charging state %q", s)
}

func (s *ChargingState) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	state, err := ParseChargingState(raw)
	if err != nil {
		return err
	}
	*s = state
	return nil
}

type ChargeType string

const (
	ChargeTypeAC  ChargeType = "AC"
	ChargeTypeDC  ChargeType = "DC"
	ChargeTypeOff ChargeType = "OFF"
)

type MaxChargeCurrent string

const (
	MaxChargeCurrentMaximum MaxChargeCurrent = "MAXIMUM"
	MaxChargeCurrentReduced MaxChargeCurrent = "REDUCED"
)

type PlugUnlockMode string

const (
	PlugUnlockPermanent PlugUnlockMode = "PERMANENT"
	PlugUnlockOn        PlugUnlockMode = "ON"
	PlugUnlockOff       PlugUnlockMode = "OFF"
)

type ChargingError struct {
	Type string `json:"type"`
}

type ChargingSettings struct {
	AvailableChargeModes         []ChargeMode     `json:"availableChargeModes"`
	MaxChargeCurrentAC           MaxChargeCurrent `json:"maxChargeCurrentAc,omitempty"`
	AutoUnlockPlugWhenCharged    PlugUnlockMode   `json:"autoUnlockPlugWhenCharged,omitempty"`
	BatterySupport               EnabledState     `json:"batterySupport,omitempty"`
	ChargingCareMode             ActiveState      `json:"chargingCareMode,omitempty"`
	PreferredChargeMode          ChargeMode       `json:"preferredChargeMode,omitempty"`
	TargetStateOfChargeInPercent int              `json:"targetStateOfChargeInPercent,omitempty"`
}

type Battery struct {
	StateOfChargeInPercent         int `json:"stateOfChargeInPercent"`
	RemainingCruisingRangeInMeters int `json:"remainingCruisingRangeInMeters,omitempty"`
}

type ChargingStatus struct {
	Battery                              Battery         `json:"battery"`
	State                                ChargingState   `json:"state,omitempty"`
	ChargePowerInKw                      float64         `json:"chargePowerInKw,omitempty"`
	ChargingRateInKilometersPerHour      float64         `json:"chargingRateInKilometersPerHour,omitempty"`
	ChargeType                           ChargeType      `json:"chargeType,omitempty"`
	Errors                               []ChargingError `json:"errors,omitempty"`
	RemainingTimeToFullyChargedInMinutes int             `json:"remainingTimeToFullyChargedInMinutes,omitempty"`
}

// Charging is the response of the charging endpoint.
type Charging struct {
	Errors                   []ChargingError  `json:"errors"`
	Settings                 ChargingSettings `json:"settings"`
	IsVehicleInSavedLocation bool             `json:"isVehicleInSavedLocation"`
	CarCapturedTimestamp     *time.Time       `json:"carCapturedTimestamp,omitempty"`
	Status                   *ChargingStatus  `json:"status,omitempty"`
}
