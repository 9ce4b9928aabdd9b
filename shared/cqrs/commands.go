package cqrs

import "github.com/xpch/platform/shared/models"

// ---------- Identity commands ----------

type RegisterCommand struct {
	Email       string
	Password    string
	PhoneNumber string
	PhoneCode   string
	FirstName   string
	LastName    string
	Callback    string
}

type LoginCommand struct {
	Email    string
	Password string
	Code     string
}

type ActivateCommand struct {
	Token string
}

type ForgotPasswordCommand struct {
	Email    string
	Callback string
}

type ResetPasswordCommand struct {
	Token    string
	Password string
}

type ForcePasswordCommand struct {
	Email    string
	Password string
}

type AttachRoleCommand struct {
	UserID string
	Roles  []string
}

type DetachRoleCommand struct {
	UserID   string
	RoleName string
}

// ---------- Resource commands ----------

type CreateBankCommand struct {
	Name     string
	Code     string
	BankID   string
	Country  string
	Currency string
	Type     string
}

type SetBankEnabledCommand struct {
	ID      string
	Enabled bool
}

type DeleteBankCommand struct {
	ID string
}

// ---------- Sports commands ----------

type AddLeagueCommand struct {
	Name        string
	Description string
	Code        string
}

type UpdateLeagueCommand struct {
	LeagueID    string
	Name        string
	Description string
	Code        string
}

type AddLeagueTeamCommand struct {
	LeagueID string
	TeamCode string
}

type AddLeagueMatchCommand struct {
	LeagueID string
	MatchID  string
}

type AddTeamLeagueCommand struct {
	TeamID     string
	LeagueCode string
}

type AddTeamCommand struct {
	Name        string
	Description string
	Code        string
	LeagueID    string
}

type UpdateTeamCommand struct {
	TeamID      string
	Name        string
	Description string
	Code        string
}

type AddMatchCommand struct {
	Type         string
	Season       string
	Stage        string
	Date         string
	StartTime    string
	Stadium      string
	HomeTeam     string
	AwayTeam     string
	CountryID    string
	LeagueID     string
	CreatedBy    string
	CreatorEmail string
}

// UpdateMatchLeagueCommand moves a match to the league with LeagueCode.
type UpdateMatchLeagueCommand struct {
	MatchID    string
	LeagueCode string
}

// AddFixtureCommand groups existing matches of a league into a fixture.
// Unknown match ids are skipped.
type AddFixtureCommand struct {
	Description string
	LeagueID    string
	Matches     []string
}

type AddFixtureMatchesCommand struct {
	FixtureID string
	MatchIDs  []string
}

type UpdateFixtureLeagueCommand struct {
	FixtureID  string
	LeagueCode string
}

type AddLeagueFixtureCommand struct {
	LeagueID  string
	FixtureID string
}

type UpdateMatchCommand struct {
	MatchID   string
	Type      string
	Season    string
	Stage     string
	Date      string
	StartTime string
	Stadium   string
	CountryID string
	LeagueID  string
}

// UpdateScoreCommand sets a team's score of the given type. A nil Score
// means the caller sent none.
type UpdateScoreCommand struct {
	MatchID string
	TeamID  string
	Score   *int
	Type    string
}

// UpdateStatsCommand carries only the counters the caller sent; nil fields
// keep their stored value.
type UpdateStatsCommand struct {
	MatchID string
	TeamID  string
	Patch   StatsPatch
}

type StatsPatch struct {
	Shots        *int
	Passes       *int
	PassAccuracy *int
	ShotOnTarget *int
	Fouls        *int
	RedCards     *int
	YellowCards  *int
	Corner       *int
	Cross        *int
	Possession   *int
	Offsides     *int
}

// Apply writes the set fields of p onto d.
func (p StatsPatch) Apply(d *models.StatDetails) {
	set := func(dst *int, v *int) {
		if v != nil {
			*dst = *v
		}
	}
	set(&d.Shots, p.Shots)
	set(&d.Passes, p.Passes)
	set(&d.PassAccuracy, p.PassAccuracy)
	set(&d.ShotOnTarget, p.ShotOnTarget)
	set(&d.Fouls, p.Fouls)
	set(&d.RedCards, p.RedCards)
	set(&d.YellowCards, p.YellowCards)
	set(&d.Corner, p.Corner)
	set(&d.Cross, p.Cross)
	set(&d.Possession, p.Possession)
	set(&d.Offsides, p.Offsides)
}
