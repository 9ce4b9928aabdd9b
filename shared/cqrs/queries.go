package cqrs

// ---------- Identity queries ----------

// GetUserQuery fetches a single user. Admins may read anyone; everyone else
// only themselves.
type GetUserQuery struct {
	UserID           string
	RequestingUserID string
	RequesterRoles   []string
}

// ---------- Resource queries ----------

// GetCountryQuery looks a country up by id, or by phone code when Key
// contains a '+'.
type GetCountryQuery struct {
	Key string
}

// GetBankQuery fetches a single bank by id.
type GetBankQuery struct {
	ID string
}

// ---------- Sports queries ----------

type GetLeagueQuery struct {
	LeagueID string
}

type GetTeamQuery struct {
	TeamID string
}

type GetMatchQuery struct {
	MatchID string
}

type GetFixtureQuery struct {
	FixtureID string
}

// ---------- Storefront queries ----------

type GetShopperQuery struct {
	ShopperID string
}
