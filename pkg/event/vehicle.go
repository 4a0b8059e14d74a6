package event

import (
	"encoding/json"
	"fmt"

	"github.com/vetraconnect/vetra/pkg/model"
)

// VehicleEventName identifies the kind of unsolicited vehicle event.
type VehicleEventName string

const (
	VehicleAwake                 VehicleEventName = "vehicle-awake"
	VehicleConnectionOnline      VehicleEventName = "vehicle-connection-online"
	VehicleWarningBatteryLevel   VehicleEventName = "vehicle-warning-batterylevel"
	VehicleIgnitionStatusChanged VehicleEventName = "vehicle-ignition-status-changed"
)

// VehicleEventData is implemented by the payload variants a vehicle event
// can carry.
type VehicleEventData interface {
	vehicleData()
}

// VehicleEventBaseData carries the fields common to every vehicle event
// payload.
type VehicleEventBaseData struct {
	UserID string `json:"userId"`
	Vin    string `json:"vin"`
}

func (VehicleEventBaseData) vehicleData() {}

// IgnitionData is the payload of ignition status changes.
type IgnitionData struct {
	VehicleEventBaseData
	IgnitionStatus model.IgnitionStatus `json:"ignitionStatus"`
}

// VehicleEvent reports an unsolicited wake, connection or ignition change
// emitted by the vehicle itself.
type VehicleEvent struct {
	Meta
	Producer string           `json:"producer"`
	Name     VehicleEventName `json:"name"`
	Data     VehicleEventData `json:"data"`
}

func (*VehicleEvent) family() {}

func decodeVehicle(vin string, payload []byte) (Event, error) {
	var head struct {
		Meta
		Producer string           `json:"producer"`
		Name     VehicleEventName `json:"name"`
		Data     json.RawMessage  `json:"data"`
	}
	if err := unmarshalInto(payload, &head); err != nil {
		return nil, err
	}

	ev := &VehicleEvent{Meta: head.Meta, Producer: head.Producer, Name: head.Name}
	ev.Vin, ev.Type = vin, TypeVehicle

	switch head.Name {
	case VehicleIgnitionStatusChanged:
		data := IgnitionData{}
		if err := unmarshalInto(head.Data, &data); err != nil {
			return nil, err
		}
		ev.Data = data
	case VehicleAwake, VehicleConnectionOnline, VehicleWarningBatteryLevel:
		data := VehicleEventBaseData{}
		if len(head.Data) > 0 {
			if err := unmarshalInto(head.Data, &data); err != nil {
				return nil, err
			}
		}
		ev.Data = data
	default:
		return nil, fmt.Errorf("%w: vehicle event %q", ErrUnknownName, head.Name)
	}
	return ev, nil
}
