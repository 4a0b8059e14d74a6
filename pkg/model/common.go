// Package model holds the typed payloads exchanged with the Vetra Connect
// REST API and the event broker.
package model

// OnOffState is used for toggles like window heating.
type OnOffState string

const (
	StateOn      OnOffState = "ON"
	StateOff     OnOffState = "OFF"
	StateInvalid OnOffState = "INVALID"
)

type EnabledState string

const (
	Enabled    EnabledState = "ENABLED"
	Disabled   EnabledState = "DISABLED"
	NotAllowed EnabledState = "NOT_ALLOWED"
)

type ActiveState string

const (
	Activated   ActiveState = "ACTIVATED"
	Deactivated ActiveState = "DEACTIVATED"
)

type OpenState string

const (
	Open             OpenState = "OPEN"
	Closed           OpenState = "CLOSED"
	OpenUnsupported  OpenState = "UNSUPPORTED"
	OpenStateUnknown OpenState = "UNKNOWN"
)

// DoorLockedState uses YES/NO on the wire, not LOCKED/UNLOCKED.
type DoorLockedState string

const (
	Locked          DoorLockedState = "YES"
	Opened          DoorLockedState = "OPENED"
	TrunkOpened     DoorLockedState = "TRUNK_OPENED"
	Unlocked        DoorLockedState = "NO"
	LockedUnknown   DoorLockedState = "UNKNOWN"
	LockedInvisible DoorLockedState = "INVISIBLE"
)

type ChargerLockedState string

const (
	ChargerLocked   ChargerLockedState = "LOCKED"
	ChargerUnlocked ChargerLockedState = "UNLOCKED"
	ChargerInvalid  ChargerLockedState = "INVALID"
)

type ConnectionState string

const (
	Connected    ConnectionState = "CONNECTED"
	Disconnected ConnectionState = "DISCONNECTED"
)

type IgnitionStatus string

const (
	IgnitionOn  IgnitionStatus = "ON"
	IgnitionOff IgnitionStatus = "OFF"
)

type Side string

const (
	Left  Side = "LEFT"
	Right Side = "RIGHT"
)

type Weekday string

const (
	Monday    Weekday = "MONDAY"
	Tuesday   Weekday = "TUESDAY"
	Wednesday Weekday = "WEDNESDAY"
	Thursday  Weekday = "THURSDAY"
	Friday    Weekday = "FRIDAY"
	Saturday  Weekday = "SATURDAY"
	Sunday    Weekday = "SUNDAY"
)

// Coordinates are GPS coordinates.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Address is a house address as returned by position and user endpoints.
type Address struct {
	CountryCode string `json:"countryCode"`
	ZipCode     string `json:"zipCode,omitempty"`
	HouseNumber string `json:"houseNumber,omitempty"`
	Street      string `json:"street,omitempty"`
	City        string `json:"city,omitempty"`
	Country     string `json:"country,omitempty"`
}
