package models

import "time"

const (
	RoleSuperAdmin = "superadmin"
	RoleAdmin      = "admin"
	RoleManager    = "manager"
	RoleUser       = "user"
)

const (
	UserTypeSuperAdmin = "superadmin"
	UserTypeAdmin      = "admin"
	UserTypeUser       = "user"
)

const (
	PasswordTypeSelf        = "self"
	PasswordTypeGenerated   = "generated"
	PasswordTypeSelfChanged = "self-changed"
)

const (
	VerificationPending  = "pending"
	VerificationApproved = "approved"
)

type User struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
	PasswordType string `json:"passwordType"`
	FirstName    string `json:"firstName,omitempty"`
	LastName     string `json:"lastName,omitempty"`
	PhoneNumber  string `json:"phoneNumber"`
	PhoneCode    string `json:"phoneCode"`
	UserType     string `json:"userType"`
	CountryID    string `json:"countryId,omitempty"`

	IsSuper     bool `json:"isSuper"`
	IsActivated bool `json:"isActivated"`
	IsActive    bool `json:"isActive"`

	// EmailCheck mirrors the user's verification record: logins must be
	// confirmed with a mailed code.
	EmailCheck bool `json:"-"`

	LoginLimit int        `json:"loginLimit"`
	IsLocked   bool       `json:"isLocked"`
	LockedAt   *time.Time `json:"lockedAt,omitempty"`

	EmailCode           string     `json:"-"`
	EmailCodeExpire     *time.Time `json:"-"`
	ActivationToken     string     `json:"-"`
	ActivationExpire    *time.Time `json:"-"`
	ResetPasswordToken  string     `json:"-"`
	ResetPasswordExpire *time.Time `json:"-"`

	Roles []string `json:"roles"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// HasRole reports whether the user carries any of the given role names.
func (u *User) HasRole(names ...string) bool {
	for _, have := range u.Roles {
		for _, want := range names {
			if have == want {
				return true
			}
		}
	}
	return false
}

type Role struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
}

type Verification struct {
	ID       string `json:"id"`
	UserID   string `json:"userId"`
	Basic    string `json:"basic"`
	Identity string `json:"ID"`
	Address  string `json:"address"`
	Face     string `json:"face"`
	SMS      bool   `json:"sms"`
	Email    bool   `json:"email"`
}

type State struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	Subdivision string `json:"subdivision"`
}

type Country struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Code2         string    `json:"code2"`
	Code3         string    `json:"code3"`
	Capital       string    `json:"capital"`
	Region        string    `json:"region"`
	SubRegion     string    `json:"subRegion"`
	CurrencyCode  string    `json:"currencyCode"`
	CurrencyImage string    `json:"currencyImage"`
	PhoneCode     string    `json:"phoneCode"`
	Flag          string    `json:"flag"`
	Slug          string    `json:"slug"`
	States        []State   `json:"states"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

const (
	BankTypeNuban = "nuban"

	DefaultBankCountry  = "Nigeria"
	DefaultBankCurrency = "NGN"
)

type Bank struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Code      string    `json:"code"`
	BankID    string    `json:"bankId"`
	Country   string    `json:"country"`
	Currency  string    `json:"currency"`
	Type      string    `json:"type"`
	IsEnabled bool      `json:"isEnabled"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type League struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Code        string    `json:"code"`
	Teams       []string  `json:"teams"`
	Matches     []string  `json:"matches"`
	Fixtures    []string  `json:"fixtures"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Fixture groups matches of a league under a short public reference such as
// "FX-20481937".
type Fixture struct {
	ID          string    `json:"id"`
	FixtureID   string    `json:"fixtureId"`
	Description string    `json:"description"`
	Slug        string    `json:"slug"`
	Matches     []string  `json:"matches"`
	LeagueID    string    `json:"league"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type Team struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Code        string    `json:"code"`
	Leagues     []string  `json:"leagues"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

const (
	MatchTypeHome = "home"
	MatchTypeAway = "away"

	ScoreFullTime = "ft"
)

type Score struct {
	Team  string `json:"team"`
	Type  string `json:"type"`
	Count int    `json:"count"`
}

type Lineup struct {
	Team    string   `json:"team"`
	Players []string `json:"players"`
}

type StatDetails struct {
	Shots        int `json:"shots"`
	Passes       int `json:"passes"`
	PassAccuracy int `json:"passAccuracy"`
	ShotOnTarget int `json:"shotOnTarget"`
	Fouls        int `json:"fouls"`
	RedCards     int `json:"redCards"`
	YellowCards  int `json:"yellowCards"`
	Corner       int `json:"corner"`
	Cross        int `json:"cross"`
	Possession   int `json:"possession"`
	Offsides     int `json:"offsides"`
}

type Stats struct {
	Team    string      `json:"team"`
	Details StatDetails `json:"details"`
}

type Match struct {
	ID         string    `json:"id"`
	MatchType  string    `json:"matchType"`
	Season     string    `json:"season"`
	Stage      string    `json:"stage"`
	DateOfPlay time.Time `json:"dateOfPlay"`
	StartTime  time.Time `json:"startTime"`
	EndTime    time.Time `json:"endTime"`
	Stadium    string    `json:"stadium"`
	HomeTeam   string    `json:"homeTeam"`
	AwayTeam   string    `json:"awayTeam"`
	CountryID  string    `json:"country"`
	LeagueID   string    `json:"league"`
	Teams      []string  `json:"teams"`
	Score      []Score   `json:"score"`
	Lineups    []Lineup  `json:"lineups"`
	Stats      []Stats   `json:"stats"`
	CreatedBy  string    `json:"createdBy"`
	// CreatorEmail receives the kick-off reminder.
	CreatorEmail string    `json:"creatorEmail,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// IncludesTeam reports whether teamID is one of the two sides.
func (m *Match) IncludesTeam(teamID string) bool {
	for _, t := range m.Teams {
		if t == teamID {
			return true
		}
	}
	return false
}

// Shopper is the storefront's copy of an identity user.
type Shopper struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	PhoneNumber string    `json:"phoneNumber"`
	PhoneCode   string    `json:"phoneCode"`
	UserType    string    `json:"userType"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
