// Package event defines the typed events delivered by the broker and the
// decoder that turns raw topic/payload pairs into them.
//
// Events are a closed discriminated hierarchy: the topic's event type selects
// the family, then for service and vehicle events the payload's name field
// selects the concrete data shape. Unknown discriminators are decode errors,
// never silently-accepted payloads.
package event

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Type is the event family, taken from the third topic segment.
type Type string

const (
	TypeAccount   Type = "account-event"
	TypeOperation Type = "operation-request"
	TypeService   Type = "service-event"
	TypeVehicle   Type = "vehicle-event"
)

var (
	// ErrMalformedTopic reports a topic that does not follow the
	// {user}/{vin}/{event_type}/{subtopic...} convention.
	ErrMalformedTopic = errors.New("event: malformed topic")

	// ErrUnknownType reports an event family the decoder does not know.
	ErrUnknownType = errors.New("event: unknown event type")

	// ErrUnknownName reports a service or vehicle event name outside the
	// known set.
	ErrUnknownName = errors.New("event: unknown event name")
)

// Meta carries the fields shared by every event. UserID, Vin and Type are
// injected from the topic; the rest comes from the payload.
type Meta struct {
	UserID    string    `json:"-"`
	Vin       string    `json:"-"`
	Type      Type      `json:"-"`
	Version   int       `json:"version"`
	TraceID   string    `json:"traceId"`
	Timestamp time.Time `json:"timestamp"`
}

// EventMeta returns the shared metadata. It also lets Meta satisfy the Event
// interface through embedding.
func (m *Meta) EventMeta() *Meta { return m }

// Event is implemented by the four concrete event families.
type Event interface {
	EventMeta() *Meta
	family()
}

// Decode parses a raw broker message into a typed Event.
//
// The topic is split into {user_id}/{vin}/{event_type}/{subtopic...}; account
// event topics carry no vin and have the form {user_id}/account-event/{subtopic}.
// Vin and event type are injected into the payload before the family-specific
// structural decode.
func Decode(topic string, payload []byte) (Event, error) {
	segments := strings.SplitN(topic, "/", 4)
	if len(segments) < 3 {
		return nil, fmt.Errorf("%w: %q", ErrMalformedTopic, topic)
	}

	vin, typ := segments[1], Type(segments[2])
	if Type(segments[1]) == TypeAccount {
		vin, typ = "", TypeAccount
	}

	var (
		ev  Event
		err error
	)
	switch typ {
	case TypeOperation:
		ev, err = decodeOperation(vin, payload)
	case TypeService:
		ev, err = decodeService(vin, payload)
	case TypeVehicle:
		ev, err = decodeVehicle(vin, payload)
	case TypeAccount:
		ev, err = decodeAccount(payload)
	default:
		return nil, fmt.Errorf("%w: %q in topic %q", ErrUnknownType, typ, topic)
	}
	if err != nil {
		return nil, err
	}

	meta := ev.EventMeta()
	meta.UserID = segments[0]
	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now().UTC()
	}
	return ev, nil
}

func unmarshalInto(payload []byte, target any) error {
	if err := json.Unmarshal(payload, target); err != nil {
		return fmt.Errorf("event: invalid payload: %w", err)
	}
	return nil
}
