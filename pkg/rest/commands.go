package rest

import (
	"context"
	"fmt"

	"github.com/vetraconnect/vetra/pkg/model"
)

type startAirConditioningRequest struct {
	HeaterSource      model.HeaterSource      `json:"heaterSource"`
	TargetTemperature model.TargetTemperature `json:"targetTemperature"`
}

type targetTemperatureRequest struct {
	TemperatureValue float64               `json:"temperatureValue"`
	UnitInCar        model.TemperatureUnit `json:"unitInCar"`
}

type chargeLimitRequest struct {
	TargetSOCInPercent int `json:"targetSOCInPercent"`
}

type careModeRequest struct {
	ChargingCareMode model.ActiveState `json:"chargingCareMode"`
}

type chargingCurrentRequest struct {
	ChargingCurrent model.MaxChargeCurrent `json:"chargingCurrent"`
}

type chargeModeRequest struct {
	ChargeMode model.ChargeMode `json:"chargeMode"`
}

type honkFlashPosition struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type honkFlashRequest struct {
	Mode            string            `json:"mode"`
	VehiclePosition honkFlashPosition `json:"vehiclePosition"`
}

type spinRequest struct {
	CurrentSpin string `json:"currentSpin"`
}

type startAuxiliaryHeatingRequest struct {
	Spin          string                 `json:"spin"`
	Configuration *model.AuxiliaryConfig `json:"configuration,omitempty"`
}

// StartAirConditioning starts climatization towards the given temperature
// in degrees Celsius.
func (c *Client) StartAirConditioning(ctx context.Context, vin string, temperature float64) error {
	c.log.Debug("starting air conditioning", "vin", vin, "temperature", temperature)
	return c.post(ctx, airConditioningPath(vin)+"/start", startAirConditioningRequest{
		HeaterSource:      model.HeaterSourceElectric,
		TargetTemperature: model.NewTargetTemperature(temperature),
	})
}

// StopAirConditioning stops climatization.
func (c *Client) StopAirConditioning(ctx context.Context, vin string) error {
	c.log.Debug("stopping air conditioning", "vin", vin)
	return c.post(ctx, airConditioningPath(vin)+"/stop", nil)
}

// SetTargetTemperature updates the climatization setpoint in degrees
// Celsius without starting it.
func (c *Client) SetTargetTemperature(ctx context.Context, vin string, temperature float64) error {
	c.log.Debug("setting target temperature", "vin", vin, "temperature", temperature)
	return c.post(ctx, airConditioningPath(vin)+"/settings/target-temperature", targetTemperatureRequest{
		TemperatureValue: model.RoundToHalf(temperature),
		UnitInCar:        model.Celsius,
	})
}

// StartWindowHeating starts heating both the front and rear window.
func (c *Client) StartWindowHeating(ctx context.Context, vin string) error {
	c.log.Debug("starting window heating", "vin", vin)
	return c.post(ctx, airConditioningPath(vin)+"/start-window-heating", nil)
}

// StopWindowHeating stops heating both the front and rear window.
func (c *Client) StopWindowHeating(ctx context.Context, vin string) error {
	c.log.Debug("stopping window heating", "vin", vin)
	return c.post(ctx, airConditioningPath(vin)+"/stop-window-heating", nil)
}

// SetSeatsHeating updates which seats heat up while climatizing.
func (c *Client) SetSeatsHeating(ctx context.Context, vin string, settings model.SeatHeating) error {
	c.log.Debug("setting seats heating", "vin", vin)
	return c.post(ctx, airConditioningPath(vin)+"/settings/seats-heating", settings)
}

// SetACAtUnlock controls whether climatization starts when the vehicle is
// unlocked.
func (c *Client) SetACAtUnlock(ctx context.Context, vin string, enabled bool) error {
	c.log.Debug("setting ac at unlock", "vin", vin, "enabled", enabled)
	return c.post(ctx, airConditioningPath(vin)+"/settings/ac-at-unlock", model.AirConditioningAtUnlock{
		AirConditioningAtUnlockEnabled: enabled,
	})
}

// SetACWithoutExternalPower controls whether climatization may run on
// battery alone.
func (c *Client) SetACWithoutExternalPower(ctx context.Context, vin string, enabled bool) error {
	c.log.Debug("setting ac without external power", "vin", vin, "enabled", enabled)
	return c.post(ctx, airConditioningPath(vin)+"/settings/ac-without-external-power", model.AirConditioningWithoutExternalPower{
		AirConditioningWithoutExternalPowerEnabled: enabled,
	})
}

// StartAuxiliaryHeating starts the auxiliary heater. The security PIN is
// required, the configuration is optional.
func (c *Client) StartAuxiliaryHeating(ctx context.Context, vin, spin string, config *model.AuxiliaryConfig) error {
	c.log.Debug("starting auxiliary heating", "vin", vin)
	return c.post(ctx, auxiliaryHeatingPath(vin)+"/start", startAuxiliaryHeatingRequest{
		Spin:          spin,
		Configuration: config,
	})
}

// StopAuxiliaryHeating stops the auxiliary heater.
func (c *Client) StopAuxiliaryHeating(ctx context.Context, vin string) error {
	c.log.Debug("stopping auxiliary heating", "vin", vin)
	return c.post(ctx, auxiliaryHeatingPath(vin)+"/stop", nil)
}

// SetChargeLimit sets the maximum charge limit in percent.
func (c *Client) SetChargeLimit(ctx context.Context, vin string, limit int) error {
	c.log.Debug("setting charge limit", "vin", vin, "limit", limit)
	return c.put(ctx, chargingPath(vin)+"/set-charge-limit", chargeLimitRequest{TargetSOCInPercent: limit})
}

// SetBatteryCareMode enables or disables the battery care mode.
func (c *Client) SetBatteryCareMode(ctx context.Context, vin string, enabled bool) error {
	c.log.Debug("setting battery care mode", "vin", vin, "enabled", enabled)
	mode := model.Deactivated
	if enabled {
		mode = model.Activated
	}
	return c.put(ctx, chargingPath(vin)+"/set-care-mode", careModeRequest{ChargingCareMode: mode})
}

// SetReducedCurrentLimit reduces or restores the current the vehicle
// charges with.
func (c *Client) SetReducedCurrentLimit(ctx context.Context, vin string, reduced bool) error {
	c.log.Debug("setting reduced charging", "vin", vin, "reduced", reduced)
	current := model.MaxChargeCurrentMaximum
	if reduced {
		current = model.MaxChargeCurrentReduced
	}
	return c.put(ctx, chargingPath(vin)+"/set-charging-current", chargingCurrentRequest{ChargingCurrent: current})
}

// SetChargeMode changes the preferred charging mode.
func (c *Client) SetChargeMode(ctx context.Context, vin string, mode model.ChargeMode) error {
	c.log.Debug("setting charge mode", "vin", vin, "mode", mode)
	return c.post(ctx, chargingPath(vin)+"/set-charge-mode", chargeModeRequest{ChargeMode: mode})
}

// StartCharging starts charging the vehicle.
func (c *Client) StartCharging(ctx context.Context, vin string) error {
	c.log.Debug("starting charging", "vin", vin)
	return c.post(ctx, chargingPath(vin)+"/start", nil)
}

// StopCharging stops charging the vehicle.
func (c *Client) StopCharging(ctx context.Context, vin string) error {
	c.log.Debug("stopping charging", "vin", vin)
	return c.post(ctx, chargingPath(vin)+"/stop", nil)
}

// Wakeup wakes the vehicle up. The backend allows three calls per day, the
// request limiter flag opts into that accounting.
func (c *Client) Wakeup(ctx context.Context, vin string) error {
	c.log.Debug("waking up vehicle", "vin", vin)
	return c.post(ctx, "/v1/vehicle-wakeup/"+vin+"?applyRequestLimiter=true", nil)
}

// HonkFlash flashes the indicators, optionally honking as well. The backend
// wants the vehicle's last known position echoed back, so one positions
// read precedes the command.
func (c *Client) HonkFlash(ctx context.Context, vin string, honk bool) error {
	c.log.Debug("honk and flash", "vin", vin, "honk", honk)

	positions, err := c.Positions(ctx, vin)
	if err != nil {
		return err
	}

	var vehicle *model.Position
	for i := range positions.Positions {
		if positions.Positions[i].Type == model.PositionTypeVehicle {
			vehicle = &positions.Positions[i]
			break
		}
	}
	if vehicle == nil {
		return fmt.Errorf("no known position for vehicle %s", vin)
	}

	mode := "FLASH"
	if honk {
		mode = "HONK_AND_FLASH"
	}

	return c.post(ctx, "/v1/vehicle-access/"+vin+"/honk-and-flash", honkFlashRequest{
		Mode: mode,
		VehiclePosition: honkFlashPosition{
			Lat: vehicle.GPSCoordinates.Latitude,
			Lng: vehicle.GPSCoordinates.Longitude,
		},
	})
}

// Lock locks the vehicle. The security PIN authorizes the command.
func (c *Client) Lock(ctx context.Context, vin, spin string) error {
	c.log.Debug("locking vehicle", "vin", vin)
	return c.post(ctx, "/v1/vehicle-access/"+vin+"/lock", spinRequest{CurrentSpin: spin})
}

// Unlock unlocks the vehicle. The security PIN authorizes the command.
func (c *Client) Unlock(ctx context.Context, vin, spin string) error {
	c.log.Debug("unlocking vehicle", "vin", vin)
	return c.post(ctx, "/v1/vehicle-access/"+vin+"/unlock", spinRequest{CurrentSpin: spin})
}

// VerifySpin checks the security PIN without issuing a command, reporting
// remaining tries on mismatch.
func (c *Client) VerifySpin(ctx context.Context, spin string) (*model.VerifySpinReport, error) {
	var report model.VerifySpinReport
	if err := c.postJSON(ctx, "/v1/spin/verify", spinRequest{CurrentSpin: spin}, &report); err != nil {
		return nil, err
	}
	return &report, nil
}
