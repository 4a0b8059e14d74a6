package rest

import (
	"context"

	"github.com/vetraconnect/vetra/pkg/model"
)

// connectivityGenerations filters garage responses to the platform
// generations this client understands.
const connectivityGenerations = "connectivityGenerations=MOD1&connectivityGenerations=MOD2&connectivityGenerations=MOD3&connectivityGenerations=MOD4"

func infoPath(vin string) string {
	return "/v2/garage/vehicles/" + vin + "?" + connectivityGenerations
}

func garagePath() string {
	return "/v2/garage?" + connectivityGenerations
}

func chargingPath(vin string) string {
	return "/v1/charging/" + vin
}

func statusPath(vin string) string {
	return "/v2/vehicle-status/" + vin
}

func airConditioningPath(vin string) string {
	return "/v2/air-conditioning/" + vin
}

func auxiliaryHeatingPath(vin string) string {
	return "/v2/air-conditioning/" + vin + "/auxiliary-heating"
}

func positionsPath(vin string) string {
	return "/v1/maps/positions?vin=" + vin
}

func drivingRangePath(vin string) string {
	return "/v2/vehicle-status/" + vin + "/driving-range"
}

func tripStatisticsPath(vin string) string {
	return "/v1/trip-statistics/" + vin + "?offsetType=week&offset=0&timezone=Europe%2FBerlin"
}

func maintenancePath(vin string) string {
	return "/v3/vehicle-maintenance/vehicles/" + vin
}

func healthPath(vin string) string {
	return "/v1/vehicle-health-report/warning-lights/" + vin
}

func userPath() string {
	return "/v1/users"
}

func departureTimersPath(vin string) string {
	return "/v1/vehicle-automatization/" + vin + "/departure/timers"
}

// Info retrieves the basic vehicle information for the specified vehicle.
func (c *Client) Info(ctx context.Context, vin string) (*model.Info, error) {
	var info model.Info
	if err := c.getJSON(ctx, infoPath(vin), &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// Garage fetches the account's vehicle list with limited per-vehicle info.
func (c *Client) Garage(ctx context.Context) (*model.Garage, error) {
	var garage model.Garage
	if err := c.getJSON(ctx, garagePath(), &garage); err != nil {
		return nil, err
	}
	return &garage, nil
}

// ListVehicles lists all vehicles of the account by their VINs.
func (c *Client) ListVehicles(ctx context.Context) ([]string, error) {
	garage, err := c.Garage(ctx)
	if err != nil {
		return nil, err
	}

	vins := make([]string, 0, len(garage.Vehicles))
	for _, vehicle := range garage.Vehicles {
		vins = append(vins, vehicle.Vin)
	}
	return vins, nil
}

// Charging retrieves charging settings and state for the specified vehicle.
func (c *Client) Charging(ctx context.Context, vin string) (*model.Charging, error) {
	var charging model.Charging
	if err := c.getJSON(ctx, chargingPath(vin), &charging); err != nil {
		return nil, err
	}
	return &charging, nil
}

// Status retrieves the doors-and-windows status for the specified vehicle.
func (c *Client) Status(ctx context.Context, vin string) (*model.Status, error) {
	var status model.Status
	if err := c.getJSON(ctx, statusPath(vin), &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// AirConditioning retrieves the current climate state for the specified
// vehicle.
func (c *Client) AirConditioning(ctx context.Context, vin string) (*model.AirConditioning, error) {
	var ac model.AirConditioning
	if err := c.getJSON(ctx, airConditioningPath(vin), &ac); err != nil {
		return nil, err
	}
	return &ac, nil
}

// AuxiliaryHeating retrieves the auxiliary heater state for the specified
// vehicle.
func (c *Client) AuxiliaryHeating(ctx context.Context, vin string) (*model.AuxiliaryHeating, error) {
	var aux model.AuxiliaryHeating
	if err := c.getJSON(ctx, auxiliaryHeatingPath(vin), &aux); err != nil {
		return nil, err
	}
	return &aux, nil
}

// Positions retrieves the last known positions for the specified vehicle.
func (c *Client) Positions(ctx context.Context, vin string) (*model.Positions, error) {
	var positions model.Positions
	if err := c.getJSON(ctx, positionsPath(vin), &positions); err != nil {
		return nil, err
	}
	return &positions, nil
}

// DrivingRange retrieves the estimated driving range for the specified
// vehicle.
func (c *Client) DrivingRange(ctx context.Context, vin string) (*model.DrivingRange, error) {
	var dr model.DrivingRange
	if err := c.getJSON(ctx, drivingRangePath(vin), &dr); err != nil {
		return nil, err
	}
	return &dr, nil
}

// TripStatistics retrieves statistics about the current week's trips.
func (c *Client) TripStatistics(ctx context.Context, vin string) (*model.TripStatistics, error) {
	var stats model.TripStatistics
	if err := c.getJSON(ctx, tripStatisticsPath(vin), &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// Maintenance retrieves the maintenance report for the specified vehicle.
func (c *Client) Maintenance(ctx context.Context, vin string) (*model.Maintenance, error) {
	var maintenance model.Maintenance
	if err := c.getJSON(ctx, maintenancePath(vin), &maintenance); err != nil {
		return nil, err
	}
	return &maintenance, nil
}

// Health retrieves the warning-light report for the specified vehicle.
func (c *Client) Health(ctx context.Context, vin string) (*model.Health, error) {
	var health model.Health
	if err := c.getJSON(ctx, healthPath(vin), &health); err != nil {
		return nil, err
	}
	return &health, nil
}

// User retrieves the profile of the logged in user.
func (c *Client) User(ctx context.Context) (*model.User, error) {
	var user model.User
	if err := c.getJSON(ctx, userPath(), &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// DepartureTimers retrieves the departure timers for the specified vehicle.
func (c *Client) DepartureTimers(ctx context.Context, vin string) (*model.DepartureInfo, error) {
	var info model.DepartureInfo
	if err := c.getJSON(ctx, departureTimersPath(vin), &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// Endpoint names one GET path, used by fixture capture to iterate over the
// read surface.
type Endpoint struct {
	Name string
	Path string
}

// VehicleEndpoints lists every per-vehicle read endpoint.
func VehicleEndpoints(vin string) []Endpoint {
	return []Endpoint{
		{Name: "info", Path: infoPath(vin)},
		{Name: "charging", Path: chargingPath(vin)},
		{Name: "status", Path: statusPath(vin)},
		{Name: "air-conditioning", Path: airConditioningPath(vin)},
		{Name: "auxiliary-heating", Path: auxiliaryHeatingPath(vin)},
		{Name: "positions", Path: positionsPath(vin)},
		{Name: "driving-range", Path: drivingRangePath(vin)},
		{Name: "trip-statistics", Path: tripStatisticsPath(vin)},
		{Name: "maintenance", Path: maintenancePath(vin)},
		{Name: "health", Path: healthPath(vin)},
		{Name: "departure-timers", Path: departureTimersPath(vin)},
	}
}

// AccountEndpoints lists the read endpoints that are not tied to a vehicle.
func AccountEndpoints() []Endpoint {
	return []Endpoint{
		{Name: "user", Path: userPath()},
		{Name: "garage", Path: garagePath()},
	}
}
