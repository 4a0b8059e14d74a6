package model

import "time"

type EngineType string

const (
	EngineTypeDiesel      EngineType = "diesel"
	EngineTypeElectric    EngineType = "electric"
	EngineTypeGasoline    EngineType = "gasoline"
	EngineTypeHybrid      EngineType = "hybrid"
	EngineTypeCNG         EngineType = "cng"
	EngineTypeUnsupported EngineType = "unsupported"
)

type EngineRange struct {
	CurrentSoCInPercent       int        `json:"currentSoCInPercent"`
	EngineType                EngineType `json:"engineType"`
	RemainingRangeInKm        int        `json:"remainingRangeInKm"`
	CurrentFuelLevelInPercent int        `json:"currentFuelLevelInPercent,omitempty"`
}

// DrivingRange is the response of the driving-range endpoint.
type DrivingRange struct {
	CarCapturedTimestamp time.Time    `json:"carCapturedTimestamp"`
	CarType              EngineType   `json:"carType"`
	TotalRangeInKm       int          `json:"totalRangeInKm"`
	PrimaryEngineRange   EngineRange  `json:"primaryEngineRange"`
	SecondaryEngineRange *EngineRange `json:"secondaryEngineRange,omitempty"`
}
