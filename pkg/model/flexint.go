package model

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// FlexInt decodes integers that the backend delivers inconsistently: as JSON
// numbers, as quoted numeric strings, or as the literal string "null".
// The zero value is absent.
type FlexInt struct {
	Value int
	Valid bool
}

// NewFlexInt returns a present FlexInt. Mostly useful in tests.
func NewFlexInt(v int) FlexInt {
	return FlexInt{Value: v, Valid: true}
}

func (f *FlexInt) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		f.Value, f.Valid = 0, false
		return nil
	}

	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		if s == "null" || s == "" {
			f.Value, f.Valid = 0, false
			return nil
		}
		v, err := strconv.Atoi(s)
		if err != nil {
			return fmt.Errorf("model: invalid integer string %q: %w", s, err)
		}
		f.Value, f.Valid = v, true
		return nil
	}

	var v int
	if err := json.Unmarshal(b, &v); err != nil {
		return fmt.Errorf("model: invalid integer %s: %w", b, err)
	}
	f.Value, f.Valid = v, true
	return nil
}

func (f FlexInt) MarshalJSON() ([]byte, error) {
	if !f.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(f.Value)
}
