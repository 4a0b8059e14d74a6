package vetra

import (
	"context"
	"time"

	"github.com/vetraconnect/vetra/pkg/debounce"
	"github.com/vetraconnect/vetra/pkg/event"
	"github.com/vetraconnect/vetra/pkg/model"
)

const (
	// The user profile and the health report are served from cache for a
	// day. Health polls wake the vehicle electronics, which drains the 12V
	// battery on models with aggressive battery protection.
	userCacheAge   = 24 * time.Hour
	healthCacheAge = 24 * time.Hour

	// operationRefreshDelay is the grace period between an operation
	// completing and the follow-up fetch. The backend lags behind the
	// vehicle for a few seconds after a command.
	operationRefreshDelay = 5 * time.Second
)

// refreshers holds one debouncer per data kind so that event bursts
// collapse into a single fetch. The first call in a burst fires right
// away, the rest fold into one trailing fetch per debounce window.
type refreshers struct {
	vehicle     *debounce.Debouncer
	info        *debounce.Debouncer
	charging    *debounce.Debouncer
	status      *debounce.Debouncer
	air         *debounce.Debouncer
	auxiliary   *debounce.Debouncer
	positions   *debounce.Debouncer
	ranges      *debounce.Debouncer
	trips       *debounce.Debouncer
	maintenance *debounce.Debouncer
	health      *debounce.Debouncer
	departures  *debounce.Debouncer
}

func newRefreshers() *refreshers {
	mk := func() *debounce.Debouncer {
		return debounce.New(debounce.Options{Immediate: true, Queue: true})
	}
	return &refreshers{
		vehicle:     mk(),
		info:        mk(),
		charging:    mk(),
		status:      mk(),
		air:         mk(),
		auxiliary:   mk(),
		positions:   mk(),
		ranges:      mk(),
		trips:       mk(),
		maintenance: mk(),
		health:      mk(),
		departures:  mk(),
	}
}

func (r *refreshers) stop() {
	all := []*debounce.Debouncer{
		r.vehicle, r.info, r.charging, r.status, r.air, r.auxiliary,
		r.positions, r.ranges, r.trips, r.maintenance, r.health, r.departures,
	}
	for _, d := range all {
		d.Stop()
	}
}

// RefreshUser fetches the user profile again once the cached copy has
// expired.
func (c *Client) RefreshUser(ctx context.Context) error {
	_, err := c.User(ctx)
	return err
}

// RefreshVehicle reloads all vehicle data for vin and notifies update
// subscribers. The health report is skipped while its cached copy is
// fresh. Fetch failures are logged, not returned.
func (c *Client) RefreshVehicle(ctx context.Context, vin string) {
	c.refresh.vehicle.Do(func() { c.fetchVehicle(ctx, vin, true) })
}

// RefreshInfo fetches vehicle info again for vin.
func (c *Client) RefreshInfo(ctx context.Context, vin string) {
	c.refresh.info.Do(func() { c.fetchInfo(ctx, vin, true) })
}

// RefreshCharging fetches charging data again for vin.
func (c *Client) RefreshCharging(ctx context.Context, vin string) {
	c.refresh.charging.Do(func() { c.fetchCharging(ctx, vin, true) })
}

// RefreshStatus fetches the doors-and-windows status again for vin.
func (c *Client) RefreshStatus(ctx context.Context, vin string) {
	c.refresh.status.Do(func() { c.fetchStatus(ctx, vin, true) })
}

// RefreshAirConditioning fetches air conditioning data again for vin.
func (c *Client) RefreshAirConditioning(ctx context.Context, vin string) {
	c.refresh.air.Do(func() { c.fetchAirConditioning(ctx, vin, true) })
}

// RefreshAuxiliaryHeating fetches auxiliary heating data again for vin.
func (c *Client) RefreshAuxiliaryHeating(ctx context.Context, vin string) {
	c.refresh.auxiliary.Do(func() { c.fetchAuxiliaryHeating(ctx, vin, true) })
}

// RefreshPositions fetches position data again for vin.
func (c *Client) RefreshPositions(ctx context.Context, vin string) {
	c.refresh.positions.Do(func() { c.fetchPositions(ctx, vin, true) })
}

// RefreshDrivingRange fetches driving range data again for vin.
func (c *Client) RefreshDrivingRange(ctx context.Context, vin string) {
	c.refresh.ranges.Do(func() { c.fetchDrivingRange(ctx, vin, true) })
}

// RefreshTripStatistics fetches trip statistics again for vin.
func (c *Client) RefreshTripStatistics(ctx context.Context, vin string) {
	c.refresh.trips.Do(func() { c.fetchTripStatistics(ctx, vin, true) })
}

// RefreshMaintenance fetches maintenance data again for vin.
func (c *Client) RefreshMaintenance(ctx context.Context, vin string) {
	c.refresh.maintenance.Do(func() { c.fetchMaintenance(ctx, vin, true) })
}

// RefreshHealth fetches the vehicle health report again for vin.
func (c *Client) RefreshHealth(ctx context.Context, vin string) {
	c.refresh.health.Do(func() { c.fetchHealth(ctx, vin, true) })
}

// RefreshDepartureInfo fetches departure timers again for vin.
func (c *Client) RefreshDepartureInfo(ctx context.Context, vin string) {
	c.refresh.departures.Do(func() { c.fetchDepartureInfo(ctx, vin, true) })
}

func (c *Client) fetchVehicle(ctx context.Context, vin string, notify bool) {
	if _, err := c.LoadVehicle(ctx, vin); err != nil {
		c.log.Warn("refreshing vehicle failed", "vin", vin, "error", err)
		return
	}
	if notify {
		c.notify(vin)
	}
}

func (c *Client) fetchInfo(ctx context.Context, vin string, notify bool) {
	info, err := c.api.Info(ctx, vin)
	if err != nil {
		c.log.Warn("refreshing info failed", "vin", vin, "error", err)
		return
	}
	c.store(vin, notify, func(v *Vehicle) { v.Info = info })
}

func (c *Client) fetchCharging(ctx context.Context, vin string, notify bool) {
	charging, err := c.api.Charging(ctx, vin)
	if err != nil {
		c.log.Warn("refreshing charging failed", "vin", vin, "error", err)
		return
	}
	c.store(vin, notify, func(v *Vehicle) { v.Charging = charging })
}

func (c *Client) fetchStatus(ctx context.Context, vin string, notify bool) {
	status, err := c.api.Status(ctx, vin)
	if err != nil {
		c.log.Warn("refreshing status failed", "vin", vin, "error", err)
		return
	}
	c.store(vin, notify, func(v *Vehicle) { v.Status = status })
}

func (c *Client) fetchAirConditioning(ctx context.Context, vin string, notify bool) {
	ac, err := c.api.AirConditioning(ctx, vin)
	if err != nil {
		c.log.Warn("refreshing air conditioning failed", "vin", vin, "error", err)
		return
	}
	c.store(vin, notify, func(v *Vehicle) { v.AirConditioning = ac })
}

func (c *Client) fetchAuxiliaryHeating(ctx context.Context, vin string, notify bool) {
	heating, err := c.api.AuxiliaryHeating(ctx, vin)
	if err != nil {
		c.log.Warn("refreshing auxiliary heating failed", "vin", vin, "error", err)
		return
	}
	c.store(vin, notify, func(v *Vehicle) { v.AuxiliaryHeating = heating })
}

func (c *Client) fetchPositions(ctx context.Context, vin string, notify bool) {
	positions, err := c.api.Positions(ctx, vin)
	if err != nil {
		c.log.Warn("refreshing positions failed", "vin", vin, "error", err)
		return
	}
	c.store(vin, notify, func(v *Vehicle) { v.Positions = positions })
}

func (c *Client) fetchDrivingRange(ctx context.Context, vin string, notify bool) {
	ranges, err := c.api.DrivingRange(ctx, vin)
	if err != nil {
		c.log.Warn("refreshing driving range failed", "vin", vin, "error", err)
		return
	}
	c.store(vin, notify, func(v *Vehicle) { v.DrivingRange = ranges })
}

func (c *Client) fetchTripStatistics(ctx context.Context, vin string, notify bool) {
	trips, err := c.api.TripStatistics(ctx, vin)
	if err != nil {
		c.log.Warn("refreshing trip statistics failed", "vin", vin, "error", err)
		return
	}
	c.store(vin, notify, func(v *Vehicle) { v.TripStatistics = trips })
}

func (c *Client) fetchMaintenance(ctx context.Context, vin string, notify bool) {
	maintenance, err := c.api.Maintenance(ctx, vin)
	if err != nil {
		c.log.Warn("refreshing maintenance failed", "vin", vin, "error", err)
		return
	}
	c.store(vin, notify, func(v *Vehicle) { v.Maintenance = maintenance })
}

func (c *Client) fetchHealth(ctx context.Context, vin string, notify bool) {
	health, err := c.api.Health(ctx, vin)
	if err != nil {
		c.log.Warn("refreshing health failed", "vin", vin, "error", err)
		return
	}
	c.store(vin, notify, func(v *Vehicle) { v.Health = health })
}

func (c *Client) fetchDepartureInfo(ctx context.Context, vin string, notify bool) {
	timers, err := c.api.DepartureTimers(ctx, vin)
	if err != nil {
		c.log.Warn("refreshing departure timers failed", "vin", vin, "error", err)
		return
	}
	c.store(vin, notify, func(v *Vehicle) { v.DepartureTimers = timers })
}

// store applies a refresh result to the cache and fires update callbacks.
func (c *Client) store(vin string, notify bool, apply func(*Vehicle)) {
	if c.updateVehicle(vin, apply) && notify {
		c.notify(vin)
	}
}

func (c *Client) knownVehicle(vin string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.vehicles[vin]
	return ok
}

// onEvent turns broker events into cache refreshes. It runs on the
// stream's delivery goroutine, so anything that fetches is handed off.
func (c *Client) onEvent(ev event.Event) {
	meta := ev.EventMeta()
	if meta.Vin != "" && !c.knownVehicle(meta.Vin) {
		c.log.Debug("event for unloaded vehicle", "vin", meta.Vin, "type", meta.Type)
		return
	}

	switch ev := ev.(type) {
	case *event.OperationEvent:
		c.handleOperationEvent(ev)
	case *event.ServiceEvent:
		go c.handleServiceEvent(ev)
	}
}

// handleOperationEvent refreshes the data an operation changed once the
// operation reaches a terminal state.
func (c *Client) handleOperationEvent(ev *event.OperationEvent) {
	if ev.Status == event.OperationError {
		c.log.Warn("operation failed",
			"operation", ev.Operation, "vin", ev.Vin, "error_code", ev.ErrorCode)
		return
	}
	if ev.Status == event.OperationInProgress {
		return
	}

	ctx, vin := c.background(), ev.Vin
	time.AfterFunc(operationRefreshDelay, func() {
		if ctx.Err() != nil {
			return
		}
		switch ev.Operation {
		case event.OperationStartAirConditioning, event.OperationStopAirConditioning,
			event.OperationSetACTargetTemperature, event.OperationStartWindowHeating,
			event.OperationStopWindowHeating, event.OperationSetACTimers:
			c.RefreshAirConditioning(ctx, vin)
		case event.OperationStartAuxiliaryHeating, event.OperationStopAuxiliaryHeating:
			c.RefreshAuxiliaryHeating(ctx, vin)
		case event.OperationStartCharging, event.OperationStopCharging,
			event.OperationUpdateChargeLimit, event.OperationUpdateCareMode,
			event.OperationUpdateChargingCurrent, event.OperationUpdateAutoUnlockPlug:
			c.RefreshCharging(ctx, vin)
		case event.OperationLock, event.OperationUnlock:
			c.RefreshStatus(ctx, vin)
		case event.OperationUpdateDepartureTimers:
			c.RefreshDepartureInfo(ctx, vin)
		}
	})
}

// handleServiceEvent refreshes the data a vehicle-initiated change
// touched.
func (c *Client) handleServiceEvent(ev *event.ServiceEvent) {
	ctx := c.background()
	switch ev.Name {
	case event.ServiceChangeAccess:
		c.RefreshVehicle(ctx, ev.Vin)
	case event.ServiceClimatisationCompleted:
		c.RefreshAirConditioning(ctx, ev.Vin)
	case event.ServiceDepartureReady, event.ServiceDepartureStatusChanged,
		event.ServiceDepartureErrorPlug:
		c.RefreshPositions(ctx, ev.Vin)
	case event.ServiceChangeOdometer:
		c.RefreshInfo(ctx, ev.Vin)
		c.RefreshMaintenance(ctx, ev.Vin)
	case event.ServiceChangeSoc, event.ServiceChargingCompleted,
		event.ServiceChangeChargeMode, event.ServiceChangeRemainingTime,
		event.ServiceChargingStatusChanged, event.ServiceChargingError:
		c.handleChargingEvent(ctx, ev)
	}
}

// handleChargingEvent refreshes charging and driving range, then lays the
// event's own readings over the fetched data. The endpoints may lag the
// event, so the event wins for the fields it carries.
func (c *Client) handleChargingEvent(ctx context.Context, ev *event.ServiceEvent) {
	c.refresh.charging.Do(func() { c.fetchCharging(ctx, ev.Vin, false) })
	c.refresh.ranges.Do(func() { c.fetchDrivingRange(ctx, ev.Vin, false) })

	if data, ok := ev.Data.(event.ChargingData); ok {
		c.applyChargingData(ev.Vin, data)
	}
	c.notify(ev.Vin)
}

// applyChargingData overlays event readings onto the cached charging and
// driving range data. Nested structs are cloned before mutation so
// snapshots handed out earlier stay untouched.
func (c *Client) applyChargingData(vin string, data event.ChargingData) {
	c.updateVehicle(vin, func(v *Vehicle) {
		if v.Charging != nil && v.Charging.Status != nil {
			charging, status := *v.Charging, *v.Charging.Status
			overlayChargingStatus(&status, data)
			charging.Status = &status
			v.Charging = &charging
		}
		if v.DrivingRange != nil {
			ranges := *v.DrivingRange
			if ranges.SecondaryEngineRange != nil {
				secondary := *ranges.SecondaryEngineRange
				ranges.SecondaryEngineRange = &secondary
			}
			overlayDrivingRange(&ranges, data)
			v.DrivingRange = &ranges
		}
	})
}

func overlayChargingStatus(status *model.ChargingStatus, data event.ChargingData) {
	if data.ChargedRange.Valid {
		status.Battery.RemainingCruisingRangeInMeters = data.ChargedRange.Value * 1000
	}
	if data.Soc.Valid {
		status.Battery.StateOfChargeInPercent = data.Soc.Value
	}
	if data.TimeToFinish.Valid {
		status.RemainingTimeToFullyChargedInMinutes = data.TimeToFinish.Value
	}
	if data.State != "" {
		status.State = data.State
	}
}

func overlayDrivingRange(ranges *model.DrivingRange, data event.ChargingData) {
	electric := func(er *model.EngineRange) bool {
		return er.EngineType == model.EngineTypeElectric
	}

	target := &ranges.PrimaryEngineRange
	if !electric(target) {
		if ranges.SecondaryEngineRange == nil || !electric(ranges.SecondaryEngineRange) {
			return
		}
		target = ranges.SecondaryEngineRange
	}

	if data.Soc.Valid {
		target.CurrentSoCInPercent = data.Soc.Value
	}
	if data.ChargedRange.Valid {
		target.RemainingRangeInKm = data.ChargedRange.Value
	}
}
