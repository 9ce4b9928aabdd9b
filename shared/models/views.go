package models

import "time"

// UserView is the read projection of a user served from the identity cache.
// Credentials, codes and tokens never reach it.
type UserView struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	FirstName   string    `json:"firstName,omitempty"`
	LastName    string    `json:"lastName,omitempty"`
	PhoneNumber string    `json:"phoneNumber"`
	PhoneCode   string    `json:"phoneCode"`
	UserType    string    `json:"userType"`
	IsActivated bool      `json:"isActivated"`
	IsLocked    bool      `json:"isLocked"`
	Roles       []string  `json:"roles"`
	Country     *Country  `json:"country,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// NewUserView projects u, attaching country when it has been resolved.
func NewUserView(u *User, country *Country) *UserView {
	roles := u.Roles
	if roles == nil {
		roles = []string{}
	}
	return &UserView{
		ID:          u.ID,
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		PhoneNumber: u.PhoneNumber,
		PhoneCode:   u.PhoneCode,
		UserType:    u.UserType,
		IsActivated: u.IsActivated,
		IsLocked:    u.IsLocked,
		Roles:       roles,
		Country:     country,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

// CountrySummary names a country alongside a list of its states.
type CountrySummary struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Code2     string `json:"code2"`
	Code3     string `json:"code3"`
	Region    string `json:"region"`
	SubRegion string `json:"subRegion"`
}

type CountryStates struct {
	Country CountrySummary `json:"country"`
	States  []State        `json:"states"`
}

// NewCountryStates projects c into its states view.
func NewCountryStates(c *Country) *CountryStates {
	states := c.States
	if states == nil {
		states = []State{}
	}
	return &CountryStates{
		Country: CountrySummary{
			ID:        c.ID,
			Name:      c.Name,
			Code2:     c.Code2,
			Code3:     c.Code3,
			Region:    c.Region,
			SubRegion: c.SubRegion,
		},
		States: states,
	}
}
