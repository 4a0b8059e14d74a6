package model

import "time"

type MaintenanceReport struct {
	CapturedAt          time.Time `json:"capturedAt"`
	MileageInKm         int       `json:"mileageInKm,omitempty"`
	InspectionDueInDays int       `json:"inspectionDueInDays,omitempty"`
	InspectionDueInKm   int       `json:"inspectionDueInKm,omitempty"`
	OilServiceDueInDays int       `json:"oilServiceDueInDays,omitempty"`
	OilServiceDueInKm   int       `json:"oilServiceDueInKm,omitempty"`
}

type CommunicationChannel string

const (
	ChannelEmail CommunicationChannel = "EMAIL"
	ChannelPhone CommunicationChannel = "PHONE"
)

type PredictiveMaintenanceSettings struct {
	Email            string               `json:"email,omitempty"`
	Phone            string               `json:"phone,omitempty"`
	ServiceActivated bool                 `json:"serviceActivated"`
	PreferredChannel CommunicationChannel `json:"preferredChannel,omitempty"`
}

type PredictiveMaintenance struct {
	Setting PredictiveMaintenanceSettings `json:"setting"`
}

// Maintenance is the response of the vehicle-maintenance endpoint.
type Maintenance struct {
	MaintenanceReport     *MaintenanceReport     `json:"maintenanceReport,omitempty"`
	PredictiveMaintenance *PredictiveMaintenance `json:"predictiveMaintenance,omitempty"`
}
