package model

import "time"

// CapabilityID names a vehicle capability. The backend grows this set over
// time so it is deliberately left open; only the ids the client checks are
// listed here.
type CapabilityID string

const (
	CapabilityAccess           CapabilityID = "ACCESS"
	CapabilityAirConditioning  CapabilityID = "AIR_CONDITIONING"
	CapabilityAuxiliaryHeating CapabilityID = "AUXILIARY_HEATING"
	CapabilityCharging         CapabilityID = "CHARGING"
	CapabilityChargingMQB      CapabilityID = "CHARGING_MQB"
	CapabilityDepartureTimers  CapabilityID = "DEPARTURE_TIMERS"
	CapabilityHonkAndFlash     CapabilityID = "HONK_AND_FLASH"
	CapabilityParkingPosition  CapabilityID = "PARKING_POSITION"
	CapabilityState            CapabilityID = "STATE"
	CapabilityTripStatistics   CapabilityID = "TRIP_STATISTICS"
	CapabilityVehicleHealth    CapabilityID = "VEHICLE_HEALTH_INSPECTION"
	CapabilityVehicleWakeUp    CapabilityID = "VEHICLE_WAKE_UP_TRIGGER"
	CapabilityWindowHeating    CapabilityID = "WINDOW_HEATING"
)

// Capability shows the status of a capability. An empty status list means
// the capability is currently usable.
type Capability struct {
	ID       CapabilityID `json:"id"`
	Statuses []string     `json:"statuses"`
}

// Available reports whether the capability can currently be used. Every
// status value is an indication that it cannot.
func (c Capability) Available() bool {
	return len(c.Statuses) == 0
}

type Capabilities struct {
	Capabilities []Capability `json:"capabilities"`
}

type VehicleState string

const (
	VehicleActivated    VehicleState = "ACTIVATED"
	VehicleNotActivated VehicleState = "NOT_ACTIVATED"
)

type Engine struct {
	Type             string  `json:"type,omitempty"`
	PowerInKW        int     `json:"powerInKW,omitempty"`
	CapacityInLiters float64 `json:"capacityInLiters,omitempty"`
}

type Gearbox struct {
	Type string `json:"type,omitempty"`
}

type SpecificationBattery struct {
	CapacityInKWh int `json:"capacityInKWh"`
}

type Specification struct {
	Title                string                `json:"title"`
	Model                string                `json:"model,omitempty"`
	ModelYear            string                `json:"modelYear,omitempty"`
	Body                 string                `json:"body,omitempty"`
	SystemCode           string                `json:"systemCode,omitempty"`
	SystemModelID        string                `json:"systemModelId,omitempty"`
	TrimLevel            string                `json:"trimLevel,omitempty"`
	ManufacturingDate    string                `json:"manufacturingDate,omitempty"`
	MaxChargingPowerInKW int                   `json:"maxChargingPowerInKW,omitempty"`
	Engine               *Engine               `json:"engine,omitempty"`
	Gearbox              *Gearbox              `json:"gearbox,omitempty"`
	Battery              *SpecificationBattery `json:"battery,omitempty"`
}

type ServicePartner struct {
	ID string `json:"servicePartnerId"`
}

// Info is the response of the vehicle info endpoint.
type Info struct {
	Vin                 string          `json:"vin"`
	Name                string          `json:"name"`
	State               VehicleState    `json:"state"`
	Specification       Specification   `json:"specification"`
	Capabilities        Capabilities    `json:"capabilities"`
	DevicePlatform      string          `json:"devicePlatform,omitempty"`
	WorkshopModeEnabled bool            `json:"workshopModeEnabled,omitempty"`
	ServicePartner      *ServicePartner `json:"servicePartner,omitempty"`
	SoftwareVersion     string          `json:"softwareVersion,omitempty"`
	LicensePlate        string          `json:"licensePlate,omitempty"`
	LastUpdatedAt       *time.Time      `json:"lastUpdatedAt,omitempty"`
}

// HasCapability checks whether the vehicle generally has a capability,
// regardless of whether it is currently available.
func (i *Info) HasCapability(id CapabilityID) bool {
	for _, c := range i.Capabilities.Capabilities {
		if c.ID == id {
			return true
		}
	}
	return false
}

// IsCapabilityAvailable checks whether a capability exists and is currently
// usable.
func (i *Info) IsCapabilityAvailable(id CapabilityID) bool {
	for _, c := range i.Capabilities.Capabilities {
		if c.ID == id {
			return c.Available()
		}
	}
	return false
}
