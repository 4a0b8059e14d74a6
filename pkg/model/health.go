package model

import "time"

type WarningLightCategory string

const (
	WarningAssistance     WarningLightCategory = "ASSISTANCE"
	WarningComfort        WarningLightCategory = "COMFORT"
	WarningBrake          WarningLightCategory = "BRAKE"
	WarningElectricEngine WarningLightCategory = "ELECTRIC_ENGINE"
	WarningEngine         WarningLightCategory = "ENGINE"
	WarningLighting       WarningLightCategory = "LIGHTING"
	WarningTire           WarningLightCategory = "TIRE"
	WarningOther          WarningLightCategory = "OTHER"
)

type DefectDetails struct {
	Text     string `json:"text"`
	Priority string `json:"priority"`
	Icon     string `json:"icon,omitempty"`
}

type WarningLight struct {
	Category WarningLightCategory `json:"category"`
	Defects  []DefectDetails      `json:"defects"`
}

// Health is the response of the vehicle-health-report endpoint.
type Health struct {
	WarningLights []WarningLight `json:"warningLights"`
	MileageInKm   int            `json:"mileageInKm,omitempty"`
	CapturedAt    *time.Time     `json:"capturedAt,omitempty"`
}
