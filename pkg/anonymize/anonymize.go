// Package anonymize scrubs personal data from captured API payloads so they
// can be shared as test fixtures.
package anonymize

import (
	"encoding/json"
	"fmt"
	"regexp"
)

// Replacement values substituted into captured payloads.
const (
	UserID            = "b8bc126c-ee36-402b-8723-2c1c3dff8dec"
	Vin               = "VMOCKAA0AA000000"
	Email             = "driver@example.com"
	Phone             = "+49 1234 567890"
	FirstName         = "John"
	LastName          = "Dough"
	Nickname          = "Johnny D."
	ProfilePictureURL = "https://example.com/profile.jpg"
	DateOfBirth       = "2000-01-01"
	VehicleName       = "Example Car"
	LicensePlate      = "B VC 1234"
	URL               = "https://example.com"

	PartnerName      = "Example Service Partner"
	PartnerNumber    = "1111"
	ServicePartnerID = "DEU11111"

	City        = "Example City"
	Street      = "Example Avenue"
	HouseNumber = "15"
	ZipCode     = "54321"
	CountryCode = "DEU"

	Latitude  = 52.520008
	Longitude = 13.404954
)

// vinPattern matches real vehicle identification numbers by their
// manufacturer prefix.
var vinPattern = regexp.MustCompile(`VTR\w{14}`)

// ReplaceVins substitutes every real vin in s with the fixture vin. Applied
// to urls and error text before they end up in a fixture.
func ReplaceVins(s string) string {
	return vinPattern.ReplaceAllString(s, Vin)
}

// Func rewrites one decoded JSON payload in place.
type Func func(payload map[string]any)

// ForEndpoint returns the anonymizer for the named read endpoint, or nil for
// endpoints whose payloads carry nothing personal.
func ForEndpoint(name string) Func {
	switch name {
	case "info":
		return Info
	case "garage":
		return Garage
	case "user":
		return User
	case "maintenance":
		return Maintenance
	case "positions":
		return Positions
	default:
		return nil
	}
}

// Payload scrubs one captured JSON payload from the named endpoint. Payloads
// of endpoints without an anonymizer pass through unchanged.
func Payload(name string, raw []byte) ([]byte, error) {
	fn := ForEndpoint(name)
	if fn == nil {
		return raw, nil
	}
	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("decode %s payload: %w", name, err)
	}
	fn(payload)
	out, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", name, err)
	}
	return out, nil
}

// Info scrubs the vehicle info payload.
func Info(payload map[string]any) {
	payload["vin"] = Vin
	payload["name"] = VehicleName
	if _, ok := payload["licensePlate"]; ok {
		payload["licensePlate"] = LicensePlate
	}
	if partner, ok := asMap(payload["servicePartner"]); ok {
		partner["servicePartnerId"] = ServicePartnerID
	}
}

// Garage scrubs the vehicle list payload.
func Garage(payload map[string]any) {
	vehicles, ok := payload["vehicles"].([]any)
	if !ok {
		return
	}
	for _, entry := range vehicles {
		if vehicle, ok := asMap(entry); ok {
			vehicle["vin"] = Vin
			vehicle["name"] = VehicleName
		}
	}
}

// User scrubs the user profile payload.
func User(payload map[string]any) {
	payload["email"] = Email
	payload["firstName"] = FirstName
	payload["lastName"] = LastName
	payload["nickname"] = Nickname
	payload["profilePictureUrl"] = ProfilePictureURL
	payload["dateOfBirth"] = DateOfBirth
	payload["phone"] = Phone
}

// Maintenance scrubs service partner and contact details from the
// maintenance report payload.
func Maintenance(payload map[string]any) {
	if partner, ok := asMap(payload["preferredServicePartner"]); ok {
		scrubPartner(partner)
	}
	if pm, ok := asMap(payload["predictiveMaintenance"]); ok {
		if setting, ok := asMap(pm["setting"]); ok {
			setting["email"] = Email
			setting["phone"] = Phone
		}
	}
	if cs, ok := asMap(payload["customerService"]); ok {
		history, _ := cs["bookingHistory"].([]any)
		for _, entry := range history {
			if booking, ok := asMap(entry); ok {
				if partner, ok := asMap(booking["servicePartner"]); ok {
					scrubPartner(partner)
				}
			}
		}
	}
}

// Positions rewrites every reported position to the fixture location.
func Positions(payload map[string]any) {
	positions, ok := payload["positions"].([]any)
	if !ok {
		return
	}
	for _, entry := range positions {
		if position, ok := asMap(entry); ok {
			position["gpsCoordinates"] = locationBlock()
			position["address"] = addressBlock()
		}
	}
}

// scrubPartner overwrites an embedded service partner block with the fixture
// partner.
func scrubPartner(partner map[string]any) {
	partner["name"] = PartnerName
	partner["partnerNumber"] = PartnerNumber
	partner["id"] = ServicePartnerID
	partner["contact"] = map[string]any{
		"phone": Phone,
		"url":   URL,
		"email": Email,
	}
	partner["address"] = addressBlock()
	partner["location"] = locationBlock()
}

func addressBlock() map[string]any {
	return map[string]any{
		"city":        City,
		"street":      Street,
		"houseNumber": HouseNumber,
		"zipCode":     ZipCode,
		"countryCode": CountryCode,
	}
}

func locationBlock() map[string]any {
	return map[string]any{
		"latitude":  Latitude,
		"longitude": Longitude,
	}
}

func asMap(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	return m, ok
}
