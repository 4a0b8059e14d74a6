package vetra

import (
	"context"
	"fmt"
	"time"

	"github.com/vetraconnect/vetra/pkg/model"
)

// Vehicle aggregates everything the client knows about one car. Info and
// Maintenance are always present; the other sections depend on the
// vehicle's capabilities and on what has been loaded so far.
type Vehicle struct {
	Info             *model.Info
	Maintenance      *model.Maintenance
	Charging         *model.Charging
	Status           *model.Status
	AirConditioning  *model.AirConditioning
	AuxiliaryHeating *model.AuxiliaryHeating
	Positions        *model.Positions
	DrivingRange     *model.DrivingRange
	TripStatistics   *model.TripStatistics
	Health           *model.Health
	DepartureTimers  *model.DepartureInfo
}

// HasCapability reports whether the vehicle generally has the capability,
// regardless of whether it is currently usable.
func (v *Vehicle) HasCapability(id model.CapabilityID) bool {
	return v.Info.HasCapability(id)
}

// IsCapabilityAvailable reports whether the capability exists and is
// currently usable. A capability can be unavailable when the active user
// has deactivated it.
func (v *Vehicle) IsCapabilityAvailable(id model.CapabilityID) bool {
	return v.Info.IsCapabilityAvailable(id)
}

// loadedCapabilities is the fetch plan for a full vehicle load.
var loadedCapabilities = []model.CapabilityID{
	model.CapabilityAirConditioning,
	model.CapabilityAuxiliaryHeating,
	model.CapabilityCharging,
	model.CapabilityParkingPosition,
	model.CapabilityState,
	model.CapabilityTripStatistics,
	model.CapabilityVehicleHealth,
	model.CapabilityDepartureTimers,
}

// Vehicle returns a snapshot of the cached aggregate for vin. Refreshes
// replace whole sections rather than mutating them, so the snapshot stays
// consistent while newer data arrives behind it.
func (c *Client) Vehicle(vin string) (*Vehicle, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	v, ok := c.vehicles[vin]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownVehicle, vin)
	}
	snapshot := *v
	return &snapshot, nil
}

// LoadVehicle fetches the full aggregate for vin and caches it. The
// health report is refetched at most once a day because the request can
// wake battery protection on some models.
func (c *Client) LoadVehicle(ctx context.Context, vin string) (*Vehicle, error) {
	healthFresh := false
	c.mu.Lock()
	if v, ok := c.vehicles[vin]; ok && v.Health != nil && v.Health.CapturedAt != nil {
		healthFresh = time.Since(*v.Health.CapturedAt) < healthCacheAge
	}
	c.mu.Unlock()

	capabilities := make([]model.CapabilityID, 0, len(loadedCapabilities))
	for _, id := range loadedCapabilities {
		if healthFresh && id == model.CapabilityVehicleHealth {
			continue
		}
		capabilities = append(capabilities, id)
	}

	return c.LoadPartialVehicle(ctx, vin, capabilities...)
}

// LoadPartialVehicle fetches Info and Maintenance plus the data sections
// for the listed capabilities, skipping capabilities the vehicle does not
// currently offer. A section that fails to load is logged and left as it
// was; only the base data is load-bearing.
func (c *Client) LoadPartialVehicle(ctx context.Context, vin string, capabilities ...model.CapabilityID) (*Vehicle, error) {
	info, err := c.api.Info(ctx, vin)
	if err != nil {
		return nil, err
	}
	maintenance, err := c.api.Maintenance(ctx, vin)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	v, ok := c.vehicles[vin]
	if !ok {
		v = &Vehicle{}
		c.vehicles[vin] = v
	}
	v.Info = info
	v.Maintenance = maintenance
	c.mu.Unlock()

	for _, id := range capabilities {
		if !info.IsCapabilityAvailable(id) {
			continue
		}
		if err := c.loadCapability(ctx, vin, id); err != nil {
			c.log.Warn("loading capability data failed", "vin", vin, "capability", id, "error", err)
		}
	}

	return c.Vehicle(vin)
}

func (c *Client) loadCapability(ctx context.Context, vin string, id model.CapabilityID) error {
	switch id {
	case model.CapabilityAirConditioning:
		ac, err := c.api.AirConditioning(ctx, vin)
		if err != nil {
			return err
		}
		c.updateVehicle(vin, func(v *Vehicle) { v.AirConditioning = ac })
	case model.CapabilityAuxiliaryHeating:
		heating, err := c.api.AuxiliaryHeating(ctx, vin)
		if err != nil {
			return err
		}
		c.updateVehicle(vin, func(v *Vehicle) { v.AuxiliaryHeating = heating })
	case model.CapabilityCharging:
		charging, err := c.api.Charging(ctx, vin)
		if err != nil {
			return err
		}
		c.updateVehicle(vin, func(v *Vehicle) { v.Charging = charging })
	case model.CapabilityParkingPosition:
		positions, err := c.api.Positions(ctx, vin)
		if err != nil {
			return err
		}
		c.updateVehicle(vin, func(v *Vehicle) { v.Positions = positions })
	case model.CapabilityState:
		status, err := c.api.Status(ctx, vin)
		if err != nil {
			return err
		}
		drivingRange, err := c.api.DrivingRange(ctx, vin)
		if err != nil {
			return err
		}
		c.updateVehicle(vin, func(v *Vehicle) {
			v.Status = status
			v.DrivingRange = drivingRange
		})
	case model.CapabilityTripStatistics:
		trips, err := c.api.TripStatistics(ctx, vin)
		if err != nil {
			return err
		}
		c.updateVehicle(vin, func(v *Vehicle) { v.TripStatistics = trips })
	case model.CapabilityVehicleHealth:
		health, err := c.api.Health(ctx, vin)
		if err != nil {
			return err
		}
		c.updateVehicle(vin, func(v *Vehicle) { v.Health = health })
	case model.CapabilityDepartureTimers:
		timers, err := c.api.DepartureTimers(ctx, vin)
		if err != nil {
			return err
		}
		c.updateVehicle(vin, func(v *Vehicle) { v.DepartureTimers = timers })
	}
	return nil
}

// updateVehicle applies a cache mutation for vin. Unknown vins are
// ignored; only LoadPartialVehicle introduces new cache entries.
func (c *Client) updateVehicle(vin string, apply func(*Vehicle)) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	v, ok := c.vehicles[vin]
	if !ok {
		return false
	}
	apply(v)
	return true
}
