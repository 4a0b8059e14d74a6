package model

type PositionType string

const (
	PositionTypeVehicle PositionType = "VEHICLE"
)

type Position struct {
	GPSCoordinates Coordinates  `json:"gpsCoordinates"`
	Address        *Address     `json:"address,omitempty"`
	Type           PositionType `json:"type"`
}

type PositionError struct {
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
}

// Positions is the response of the positions endpoint.
type Positions struct {
	Positions []Position      `json:"positions"`
	Errors    []PositionError `json:"errors,omitempty"`
}
