package model

// User is the response of the users endpoint. The id doubles as the broker
// connection identity.
type User struct {
	ID                string `json:"id"`
	Email             string `json:"email"`
	FirstName         string `json:"firstName,omitempty"`
	LastName          string `json:"lastName,omitempty"`
	Nickname          string `json:"nickname,omitempty"`
	Phone             string `json:"phone,omitempty"`
	Country           string `json:"country,omitempty"`
	PreferredLanguage string `json:"preferredLanguage,omitempty"`
	ProfilePictureURL string `json:"profilePictureUrl,omitempty"`
	DateOfBirth       string `json:"dateOfBirth,omitempty"`
}
