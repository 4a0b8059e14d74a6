package event

import (
	"encoding/json"
	"fmt"

	"github.com/vetraconnect/vetra/pkg/model"
)

// ServiceEventName identifies the kind of state change a service event
// describes.
type ServiceEventName string

const (
	ServiceChangeAccess           ServiceEventName = "change-access"
	ServiceChangeChargeMode       ServiceEventName = "change-charge-mode"
	ServiceChangeLights           ServiceEventName = "change-lights"
	ServiceChangeOdometer         ServiceEventName = "change-odometer"
	ServiceChangeRemainingTime    ServiceEventName = "change-remaining-time"
	ServiceChangeSoc              ServiceEventName = "change-soc"
	ServiceChargingCompleted      ServiceEventName = "charging-completed"
	ServiceChargingError          ServiceEventName = "charging-error"
	ServiceChargingStatusChanged  ServiceEventName = "charging-status-changed"
	ServiceClimatisationCompleted ServiceEventName = "climatisation-completed"
	ServiceDepartureReady         ServiceEventName = "departure-ready"
	ServiceDepartureStatusChanged ServiceEventName = "departure-status-changed"
	ServiceDepartureErrorPlug     ServiceEventName = "departure-error-plug"
)

// ServiceEventError is the error discriminator carried by failure events.
type ServiceEventError string

const (
	ServiceErrorStoppedDevice ServiceEventError = "STOPPED_DEVICE"
	ServiceErrorClima         ServiceEventError = "CLIMA"
)

// ServiceEventData is implemented by the payload variants a service event
// can carry. The concrete type depends on the event name.
type ServiceEventData interface {
	serviceData()
}

// ServiceEventBaseData carries the fields common to every service event
// payload.
type ServiceEventBaseData struct {
	UserID string `json:"userId"`
	Vin    string `json:"vin"`
}

func (ServiceEventBaseData) serviceData() {}

// ChargingData is the payload of charge-state events. The numeric fields
// arrive as strings and may be the literal "null" while the vehicle has no
// reading.
type ChargingData struct {
	ServiceEventBaseData
	Mode         model.ChargeMode    `json:"mode"`
	State        model.ChargingState `json:"state"`
	Soc          model.FlexInt       `json:"soc"`
	ChargedRange model.FlexInt       `json:"chargedRange"`
	TimeToFinish model.FlexInt       `json:"timeToFinish"`
}

// ServiceErrorData is the payload of failure events.
type ServiceErrorData struct {
	ServiceEventBaseData
	ErrorCode ServiceEventError `json:"errorCode"`
}

// ServiceEvent reports a vehicle-initiated state change, such as charging
// progress or a completed climatisation run.
type ServiceEvent struct {
	Meta
	Producer string           `json:"producer"`
	Name     ServiceEventName `json:"name"`
	Data     ServiceEventData `json:"data"`
}

func (*ServiceEvent) family() {}

func decodeService(vin string, payload []byte) (Event, error) {
	var head struct {
		Meta
		Producer string           `json:"producer"`
		Name     ServiceEventName `json:"name"`
		Data     json.RawMessage  `json:"data"`
	}
	if err := unmarshalInto(payload, &head); err != nil {
		return nil, err
	}

	ev := &ServiceEvent{Meta: head.Meta, Producer: head.Producer, Name: head.Name}
	ev.Vin, ev.Type = vin, TypeService

	switch head.Name {
	case ServiceChangeSoc, ServiceChargingCompleted:
		data := ChargingData{}
		if err := unmarshalInto(head.Data, &data); err != nil {
			return nil, err
		}
		ev.Data = data
	case ServiceChargingError, ServiceDepartureErrorPlug:
		data := ServiceErrorData{}
		if err := unmarshalInto(head.Data, &data); err != nil {
			return nil, err
		}
		ev.Data = data
	case ServiceChangeAccess, ServiceChangeChargeMode, ServiceChangeLights,
		ServiceChangeOdometer, ServiceChangeRemainingTime,
		ServiceChargingStatusChanged, ServiceClimatisationCompleted,
		ServiceDepartureReady, ServiceDepartureStatusChanged:
		data := ServiceEventBaseData{}
		if len(head.Data) > 0 {
			if err := unmarshalInto(head.Data, &data); err != nil {
				return nil, err
			}
		}
		ev.Data = data
	default:
		return nil, fmt.Errorf("%w: service event %q", ErrUnknownName, head.Name)
	}
	return ev, nil
}
