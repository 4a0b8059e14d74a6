package anonymize

import (
	"time"

	"github.com/vetraconnect/vetra/pkg/model"
)

// FixtureReportType labels how a report's payload was captured.
type FixtureReportType string

// FixtureReportTypeGet marks a report captured from a read endpoint.
const FixtureReportTypeGet FixtureReportType = "GET"

// AccountVehicleID marks reports of endpoints that are not tied to a
// vehicle.
const AccountVehicleID = -1

// Fixture is an anonymized capture of API responses, suitable for checking
// into a test suite or attaching to a bug report.
type Fixture struct {
	ID             string           `json:"id" yaml:"id"`
	Name           string           `json:"name" yaml:"name"`
	Description    string           `json:"description,omitempty" yaml:"description,omitempty"`
	GenerationTime time.Time        `json:"generationTime" yaml:"generationTime"`
	Vehicles       []FixtureVehicle `json:"vehicles" yaml:"vehicles"`
	Reports        []FixtureReport  `json:"reports" yaml:"reports"`
}

// FixtureVehicle describes one captured vehicle, reduced to the fields that
// matter for reproducing its behavior.
type FixtureVehicle struct {
	ID              int                `json:"id" yaml:"id"`
	DevicePlatform  string             `json:"devicePlatform" yaml:"devicePlatform"`
	SystemModelID   string             `json:"systemModelId" yaml:"systemModelId"`
	Model           string             `json:"model" yaml:"model"`
	ModelYear       string             `json:"modelYear" yaml:"modelYear"`
	TrimLevel       string             `json:"trimLevel,omitempty" yaml:"trimLevel,omitempty"`
	SoftwareVersion string             `json:"softwareVersion,omitempty" yaml:"softwareVersion,omitempty"`
	Capabilities    []model.Capability `json:"capabilities" yaml:"capabilities"`
}

// NewFixtureVehicle reduces a vehicle info to its fixture form.
func NewFixtureVehicle(id int, info *model.Info) FixtureVehicle {
	return FixtureVehicle{
		ID:              id,
		DevicePlatform:  info.DevicePlatform,
		SystemModelID:   info.Specification.SystemModelID,
		Model:           info.Specification.Model,
		ModelYear:       info.Specification.ModelYear,
		TrimLevel:       info.Specification.TrimLevel,
		SoftwareVersion: info.SoftwareVersion,
		Capabilities:    info.Capabilities.Capabilities,
	}
}

// FixtureReport is the outcome of capturing one endpoint for one vehicle.
// VehicleID indexes into the fixture's vehicle list, or is AccountVehicleID
// for endpoints that are not vehicle bound.
type FixtureReport struct {
	Type      FixtureReportType `json:"type" yaml:"type"`
	VehicleID int               `json:"vehicleId" yaml:"vehicleId"`
	Endpoint  string            `json:"endpoint" yaml:"endpoint"`
	Success   bool              `json:"success" yaml:"success"`
	URL       string            `json:"url,omitempty" yaml:"url,omitempty"`
	Raw       string            `json:"raw,omitempty" yaml:"raw,omitempty"`
	Error     string            `json:"error,omitempty" yaml:"error,omitempty"`
}
