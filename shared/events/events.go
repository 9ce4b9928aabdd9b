package events

import (
	"encoding/json"
	"time"

	"github.com/xpch/platform/shared/models"
)

// Subjects. Each subject is backed by a Redis stream of the same name.
const (
	UserCreated = "xpch.user.created"

	CountryFound  = "xpch.country.found"
	LocationSaved = "xpch.location.saved"

	BankCreated = "xpch.bank.created"
	BankUpdated = "xpch.bank.updated"
	BankDeleted = "xpch.bank.deleted"
)

// Queue groups. Members of a group compete for messages; every group sees
// every message.
const (
	IdentityGroup   = "identity-service"
	ResourceGroup   = "resource-service"
	SportsGroup     = "sports-service"
	StorefrontGroup = "storefront-service"
)

// Event is the envelope stored in the "event" field of each stream entry.
type Event struct {
	ID        string          `json:"id"`
	Subject   string          `json:"subject"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// Decode unmarshals the event payload into v.
func (e Event) Decode(v any) error {
	return json.Unmarshal(e.Data, v)
}

// User events

type UserPayload struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	FirstName   string `json:"firstName,omitempty"`
	LastName    string `json:"lastName,omitempty"`
	PhoneNumber string `json:"phoneNumber"`
	PhoneCode   string `json:"phoneCode"`
	UserType    string `json:"userType"`
}

type UserCreatedEvent struct {
	User      UserPayload `json:"user"`
	UserType  string      `json:"userType"`
	PhoneCode string      `json:"phoneCode"`
}

// Country events

// CountryFoundEvent tells listeners which country a user's phone code
// resolved to. ID is the user id.
type CountryFoundEvent struct {
	ID      string         `json:"id"`
	Email   string         `json:"email"`
	Country models.Country `json:"country"`
}

// Bank events

type BankEvent struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Code      string `json:"code"`
	IsEnabled bool   `json:"isEnabled"`
}
