package event

import "fmt"

// OperationStatus is the lifecycle state reported by an operation event.
type OperationStatus string

const (
	OperationInProgress       OperationStatus = "IN_PROGRESS"
	OperationCompletedSuccess OperationStatus = "COMPLETED_SUCCESS"
	OperationCompletedWarning OperationStatus = "COMPLETED_WARNING"
	OperationError            OperationStatus = "ERROR"
)

// Terminal reports whether the status ends the operation. IN_PROGRESS keeps
// any correlated wait pending.
func (s OperationStatus) Terminal() bool {
	return s != OperationInProgress
}

// OperationName identifies the kind of asynchronous command an operation
// event reports on.
type OperationName string

const (
	OperationApplyBackup               OperationName = "apply-backup"
	OperationLock                      OperationName = "lock"
	OperationSetACAtUnlock             OperationName = "set-air-conditioning-at-unlock"
	OperationSetACSeatsHeating         OperationName = "set-air-conditioning-seats-heating"
	OperationSetACTargetTemperature    OperationName = "set-air-conditioning-target-temperature"
	OperationSetACTimers               OperationName = "set-air-conditioning-timers"
	OperationSetACWithoutExternalPower OperationName = "set-air-conditioning-without-external-power"
	OperationSetClimatePlans           OperationName = "set-climate-plans"
	OperationStartActiveVentilation    OperationName = "start-active-ventilation"
	OperationStartAirConditioning      OperationName = "start-air-conditioning"
	OperationStartAuxiliaryHeating     OperationName = "start-auxiliary-heating"
	OperationStartCharging             OperationName = "start-charging"
	OperationStartFlash                OperationName = "start-flash"
	OperationStartHonk                 OperationName = "start-honk"
	OperationStartWindowHeating        OperationName = "start-window-heating"
	OperationStartStopCharging         OperationName = "start-stop-charging"
	OperationStopActiveVentilation     OperationName = "stop-active-ventilation"
	OperationStopAirConditioning       OperationName = "stop-air-conditioning"
	OperationStopAuxiliaryHeating      OperationName = "stop-auxiliary-heating"
	OperationStopCharging              OperationName = "stop-charging"
	OperationStopWindowHeating         OperationName = "stop-window-heating"
	OperationUnlock                    OperationName = "unlock"
	OperationUpdateAutoUnlockPlug      OperationName = "update-auto-unlock-plug"
	OperationUpdateBatterySupport      OperationName = "update-battery-support"
	OperationUpdateCareMode            OperationName = "update-care-mode"
	OperationUpdateChargeLimit         OperationName = "update-charge-limit"
	OperationUpdateChargeMode          OperationName = "update-charge-mode"
	OperationUpdateChargingCurrent     OperationName = "update-charging-current"
	OperationUpdateChargingProfiles    OperationName = "update-charging-profiles"
	OperationUpdateDepartureTimers     OperationName = "update-departure-timers"
	OperationUpdateMinimalSOC          OperationName = "update-minimal-soc"
	OperationUpdateTargetTemperature   OperationName = "update-target-temperature"
	OperationWakeup                    OperationName = "wakeup"
	OperationWindowsHeating            OperationName = "windows-heating"
)

var knownOperations = func() map[OperationName]struct{} {
	names := []OperationName{
		OperationApplyBackup, OperationLock, OperationSetACAtUnlock,
		OperationSetACSeatsHeating, OperationSetACTargetTemperature,
		OperationSetACTimers, OperationSetACWithoutExternalPower,
		OperationSetClimatePlans, OperationStartActiveVentilation,
		OperationStartAirConditioning, OperationStartAuxiliaryHeating,
		OperationStartCharging, OperationStartFlash, OperationStartHonk,
		OperationStartWindowHeating, OperationStartStopCharging,
		OperationStopActiveVentilation, OperationStopAirConditioning,
		OperationStopAuxiliaryHeating, OperationStopCharging,
		OperationStopWindowHeating, OperationUnlock,
		OperationUpdateAutoUnlockPlug, OperationUpdateBatterySupport,
		OperationUpdateCareMode, OperationUpdateChargeLimit,
		OperationUpdateChargeMode, OperationUpdateChargingCurrent,
		OperationUpdateChargingProfiles, OperationUpdateDepartureTimers,
		OperationUpdateMinimalSOC, OperationUpdateTargetTemperature,
		OperationWakeup, OperationWindowsHeating,
	}
	m := make(map[OperationName]struct{}, len(names))
	for _, n := range names {
		m[n] = struct{}{}
	}
	return m
}()

// Known reports whether the operation name is part of the supported set.
func (n OperationName) Known() bool {
	_, ok := knownOperations[n]
	return ok
}

// OperationEvent reports the asynchronous status of a previously issued
// command.
type OperationEvent struct {
	Meta
	RequestID string          `json:"requestId"`
	Operation OperationName   `json:"operation"`
	Status    OperationStatus `json:"status"`
	ErrorCode string          `json:"errorCode,omitempty"`
}

func (*OperationEvent) family() {}

func decodeOperation(vin string, payload []byte) (Event, error) {
	ev := &OperationEvent{}
	if err := unmarshalInto(payload, ev); err != nil {
		return nil, err
	}
	if !ev.Operation.Known() {
		return nil, fmt.Errorf("%w: operation %q", ErrUnknownName, ev.Operation)
	}
	ev.Vin, ev.Type = vin, TypeOperation
	return ev, nil
}
