package model

type VehicleType string

const (
	VehicleTypeElectric   VehicleType = "EV"
	VehicleTypeCombustion VehicleType = "FUEL"
	VehicleTypeHybrid     VehicleType = "HYBRID"
)

type StatisticsEntry struct {
	Date                       string  `json:"date"`
	AverageFuelConsumption     float64 `json:"averageFuelConsumption,omitempty"`
	AverageSpeedInKmph         int     `json:"averageSpeedInKmph,omitempty"`
	AverageElectricConsumption float64 `json:"averageElectricConsumption,omitempty"`
	AverageRecuperation        float64 `json:"averageRecuperation,omitempty"`
	AverageAuxConsumption      float64 `json:"averageAuxConsumption,omitempty"`
	MileageInKm                int     `json:"mileageInKm,omitempty"`
	TravelTimeInMin            int     `json:"travelTimeInMin,omitempty"`
	TripIDs                    []int   `json:"tripIds,omitempty"`
}

// TripStatistics is the response of the trip-statistics endpoint.
type TripStatistics struct {
	VehicleType                       VehicleType       `json:"vehicleType"`
	DetailedStatistics                []StatisticsEntry `json:"detailedStatistics"`
	OverallAverageElectricConsumption float64           `json:"overallAverageElectricConsumption,omitempty"`
	OverallAverageFuelConsumption     float64           `json:"overallAverageFuelConsumption,omitempty"`
	OverallAverageMileageInKm         int               `json:"overallAverageMileageInKm,omitempty"`
	OverallAverageSpeedInKmph         int               `json:"overallAverageSpeedInKmph,omitempty"`
	OverallAverageTravelTimeInMin     int               `json:"overallAverageTravelTimeInMin,omitempty"`
	OverallMileageInKm                int               `json:"overallMileageInKm,omitempty"`
	OverallTravelTimeInMin            int               `json:"overallTravelTimeInMin,omitempty"`
}
