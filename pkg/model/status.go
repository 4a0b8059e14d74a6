package model

import "time"

type StatusDetail struct {
	Bonnet  OpenState `json:"bonnet"`
	Sunroof OpenState `json:"sunroof"`
	Trunk   OpenState `json:"trunk"`
}

type StatusOverall struct {
	Doors       OpenState       `json:"doors"`
	DoorsLocked DoorLockedState `json:"doorsLocked"`
	Lights      OnOffState      `json:"lights"`
	Locked      DoorLockedState `json:"locked"`
	Windows     OpenState       `json:"windows"`
}

// Status is the response of the vehicle-status endpoint.
type Status struct {
	Detail               StatusDetail  `json:"detail"`
	Overall              StatusOverall `json:"overall"`
	CarCapturedTimestamp *time.Time    `json:"carCapturedTimestamp,omitempty"`
}
