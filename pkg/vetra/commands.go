package vetra

import (
	"context"

	"github.com/vetraconnect/vetra/pkg/event"
	"github.com/vetraconnect/vetra/pkg/model"
)

// command registers a wait for the operation's completion event, then
// sends the triggering REST call. Registering first closes the window in
// which a fast completion could arrive unobserved. With events disabled
// the REST acknowledgement is all there is.
func (c *Client) command(ctx context.Context, name event.OperationName, send func(context.Context) error) error {
	if c.stream == nil {
		return send(ctx)
	}

	w := c.stream.WaitForOperation(name)
	if err := send(ctx); err != nil {
		w.Cancel()
		return err
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.opTimeout)
		defer cancel()
	}

	_, err := w.Wait(ctx)
	return err
}

// StartCharging starts charging the vehicle.
func (c *Client) StartCharging(ctx context.Context, vin string) error {
	return c.command(ctx, event.OperationStartCharging, func(ctx context.Context) error {
		return c.api.StartCharging(ctx, vin)
	})
}

// StopCharging stops the vehicle from charging.
func (c *Client) StopCharging(ctx context.Context, vin string) error {
	return c.command(ctx, event.OperationStopCharging, func(ctx context.Context) error {
		return c.api.StopCharging(ctx, vin)
	})
}

// SetChargeMode switches the charge mode.
func (c *Client) SetChargeMode(ctx context.Context, vin string, mode model.ChargeMode) error {
	return c.command(ctx, event.OperationUpdateChargeMode, func(ctx context.Context) error {
		return c.api.SetChargeMode(ctx, vin, mode)
	})
}

// SetChargeLimit sets the maximum charge level in percent.
func (c *Client) SetChargeLimit(ctx context.Context, vin string, limit int) error {
	return c.command(ctx, event.OperationUpdateChargeLimit, func(ctx context.Context) error {
		return c.api.SetChargeLimit(ctx, vin, limit)
	})
}

// SetBatteryCareMode enables or disables the battery care mode.
func (c *Client) SetBatteryCareMode(ctx context.Context, vin string, enabled bool) error {
	return c.command(ctx, event.OperationUpdateCareMode, func(ctx context.Context) error {
		return c.api.SetBatteryCareMode(ctx, vin, enabled)
	})
}

// SetReducedCurrentLimit reduces or restores the charging current limit.
func (c *Client) SetReducedCurrentLimit(ctx context.Context, vin string, reduced bool) error {
	return c.command(ctx, event.OperationUpdateChargingCurrent, func(ctx context.Context) error {
		return c.api.SetReducedCurrentLimit(ctx, vin, reduced)
	})
}

// Wakeup wakes the vehicle over the mobile network. The backend allows
// only a few wakeups per day.
func (c *Client) Wakeup(ctx context.Context, vin string) error {
	return c.command(ctx, event.OperationWakeup, func(ctx context.Context) error {
		return c.api.Wakeup(ctx, vin)
	})
}

// HonkFlash honks the horn and flashes the lights at the vehicle's last
// known position.
func (c *Client) HonkFlash(ctx context.Context, vin string) error {
	return c.command(ctx, event.OperationStartHonk, func(ctx context.Context) error {
		return c.api.HonkFlash(ctx, vin, true)
	})
}

// Flash flashes the lights at the vehicle's last known position.
func (c *Client) Flash(ctx context.Context, vin string) error {
	return c.command(ctx, event.OperationStartFlash, func(ctx context.Context) error {
		return c.api.HonkFlash(ctx, vin, false)
	})
}

// StartAirConditioning starts climate control towards the target
// temperature in degrees celsius.
func (c *Client) StartAirConditioning(ctx context.Context, vin string, temperature float64) error {
	return c.command(ctx, event.OperationStartAirConditioning, func(ctx context.Context) error {
		return c.api.StartAirConditioning(ctx, vin, temperature)
	})
}

// StopAirConditioning stops climate control.
func (c *Client) StopAirConditioning(ctx context.Context, vin string) error {
	return c.command(ctx, event.OperationStopAirConditioning, func(ctx context.Context) error {
		return c.api.StopAirConditioning(ctx, vin)
	})
}

// SetTargetTemperature sets the climate control target temperature in
// degrees celsius.
func (c *Client) SetTargetTemperature(ctx context.Context, vin string, temperature float64) error {
	return c.command(ctx, event.OperationSetACTargetTemperature, func(ctx context.Context) error {
		return c.api.SetTargetTemperature(ctx, vin, temperature)
	})
}

// StartWindowHeating starts heating the front and rear windows.
func (c *Client) StartWindowHeating(ctx context.Context, vin string) error {
	return c.command(ctx, event.OperationStartWindowHeating, func(ctx context.Context) error {
		return c.api.StartWindowHeating(ctx, vin)
	})
}

// StopWindowHeating stops heating the windows.
func (c *Client) StopWindowHeating(ctx context.Context, vin string) error {
	return c.command(ctx, event.OperationStopWindowHeating, func(ctx context.Context) error {
		return c.api.StopWindowHeating(ctx, vin)
	})
}

// SetSeatsHeating enables or disables seat heating with climate control.
func (c *Client) SetSeatsHeating(ctx context.Context, vin string, settings model.SeatHeating) error {
	return c.command(ctx, event.OperationSetACSeatsHeating, func(ctx context.Context) error {
		return c.api.SetSeatsHeating(ctx, vin, settings)
	})
}

// SetACAtUnlock enables or disables climate control on unlock.
func (c *Client) SetACAtUnlock(ctx context.Context, vin string, enabled bool) error {
	return c.command(ctx, event.OperationSetACAtUnlock, func(ctx context.Context) error {
		return c.api.SetACAtUnlock(ctx, vin, enabled)
	})
}

// SetACWithoutExternalPower enables or disables climate control while
// unplugged.
func (c *Client) SetACWithoutExternalPower(ctx context.Context, vin string, enabled bool) error {
	return c.command(ctx, event.OperationSetACWithoutExternalPower, func(ctx context.Context) error {
		return c.api.SetACWithoutExternalPower(ctx, vin, enabled)
	})
}

// StartAuxiliaryHeating starts the auxiliary heater. The config is
// optional; without it the heater uses its stored settings.
func (c *Client) StartAuxiliaryHeating(ctx context.Context, vin, spin string, config *model.AuxiliaryConfig) error {
	return c.command(ctx, event.OperationStartAuxiliaryHeating, func(ctx context.Context) error {
		return c.api.StartAuxiliaryHeating(ctx, vin, spin, config)
	})
}

// StopAuxiliaryHeating stops the auxiliary heater.
func (c *Client) StopAuxiliaryHeating(ctx context.Context, vin string) error {
	return c.command(ctx, event.OperationStopAuxiliaryHeating, func(ctx context.Context) error {
		return c.api.StopAuxiliaryHeating(ctx, vin)
	})
}

// Lock locks the vehicle. The spin is the account's S-PIN.
func (c *Client) Lock(ctx context.Context, vin, spin string) error {
	return c.command(ctx, event.OperationLock, func(ctx context.Context) error {
		return c.api.Lock(ctx, vin, spin)
	})
}

// Unlock unlocks the vehicle. The spin is the account's S-PIN.
func (c *Client) Unlock(ctx context.Context, vin, spin string) error {
	return c.command(ctx, event.OperationUnlock, func(ctx context.Context) error {
		return c.api.Unlock(ctx, vin, spin)
	})
}
