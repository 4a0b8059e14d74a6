package vetra

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vetraconnect/vetra/pkg/anonymize"
	"github.com/vetraconnect/vetra/pkg/rest"
)

// FixtureAllEndpoints selects every read endpoint for fixture generation.
const FixtureAllEndpoints = "all"

// GenerateFixture captures the selected read endpoints for the given vins
// into an anonymized fixture. endpoint names a single endpoint or is
// FixtureAllEndpoints. Failures of individual endpoints are recorded inside
// the fixture instead of failing the capture.
func (c *Client) GenerateFixture(ctx context.Context, name, description string, vins []string, endpoint string) (*anonymize.Fixture, error) {
	if endpoint != FixtureAllEndpoints && !knownEndpoint(endpoint) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEndpoint, endpoint)
	}

	fixture := &anonymize.Fixture{
		ID:             uuid.New().String(),
		Name:           name,
		Description:    description,
		GenerationTime: time.Now().UTC(),
	}
	for i, vin := range vins {
		info, err := c.api.Info(ctx, vin)
		if err != nil {
			return nil, fmt.Errorf("describe vehicle %s: %w", vin, err)
		}
		fixture.Vehicles = append(fixture.Vehicles, anonymize.NewFixtureVehicle(i, info))
		for _, ep := range rest.VehicleEndpoints(vin) {
			if endpoint == FixtureAllEndpoints || ep.Name == endpoint {
				fixture.Reports = append(fixture.Reports, c.captureEndpoint(ctx, i, ep))
			}
		}
	}
	for _, ep := range rest.AccountEndpoints() {
		if endpoint == FixtureAllEndpoints || ep.Name == endpoint {
			fixture.Reports = append(fixture.Reports, c.captureEndpoint(ctx, anonymize.AccountVehicleID, ep))
		}
	}
	return fixture, nil
}

func (c *Client) captureEndpoint(ctx context.Context, vehicleID int, ep rest.Endpoint) anonymize.FixtureReport {
	report := anonymize.FixtureReport{
		Type:      anonymize.FixtureReportTypeGet,
		VehicleID: vehicleID,
		Endpoint:  ep.Name,
	}
	raw, err := c.api.GetRaw(ctx, ep.Path)
	if err == nil {
		raw, err = anonymize.Payload(ep.Name, raw)
	}
	if err != nil {
		report.Error = anonymize.ReplaceVins(err.Error())
		return report
	}
	report.Success = true
	report.URL = anonymize.ReplaceVins(ep.Path)
	report.Raw = string(raw)
	return report
}

func knownEndpoint(name string) bool {
	for _, ep := range rest.VehicleEndpoints("") {
		if ep.Name == name {
			return true
		}
	}
	for _, ep := range rest.AccountEndpoints() {
		if ep.Name == name {
			return true
		}
	}
	return false
}
