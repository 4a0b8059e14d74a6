package model

// GarageEntry is one vehicle in the account's vehicle list.
type GarageEntry struct {
	Vin            string       `json:"vin"`
	Name           string       `json:"name"`
	State          VehicleState `json:"state"`
	Title          string       `json:"title"`
	Priority       int          `json:"priority,omitempty"`
	DevicePlatform string       `json:"devicePlatform,omitempty"`
	SystemModelID  string       `json:"systemModelId,omitempty"`
}

// Garage is the response of the garage endpoint.
type Garage struct {
	Vehicles []GarageEntry `json:"vehicles"`
}
