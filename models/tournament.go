package models

import "time"

type TournamentFormat string

const (
	FormatSingleElimination TournamentFormat = "single_elimination"
	FormatDoubleElimination TournamentFormat = "double_elimination"
	// FormatRoundRobin is declared for the data model but has no generator;
	// starting a round-robin tournament is rejected.
	FormatRoundRobin TournamentFormat = "round_robin"
)

// TournamentStatus mirrors the ENUM in the database.
type TournamentStatus string

const (
	StatusDraft     TournamentStatus = "draft"
	StatusOpen      TournamentStatus = "open"
	StatusActive    TournamentStatus = "active"
	StatusCompleted TournamentStatus = "completed"
)

// Tournament is the aggregate root. Teams, PendingPlayers and Matches are
// loaded separately and attached by the service layer.
type Tournament struct {
	ID           string           `json:"id" db:"id"`
	Name         string           `json:"name" db:"name"`
	Description  *string          `json:"description,omitempty" db:"description"`
	Game         string           `json:"game" db:"game"`
	Format       TournamentFormat `json:"format" db:"format"`
	TeamSize     int              `json:"team_size" db:"team_size"`
	MaxTeams     int              `json:"max_teams" db:"max_teams"`
	Status       TournamentStatus `json:"status" db:"status"`
	StartDate    time.Time        `json:"start_date" db:"start_date"`
	PrizePool    *string          `json:"prize_pool,omitempty" db:"prize_pool"`
	WinnerTeamID *string          `json:"winner_team_id,omitempty" db:"winner_team_id"`
	LogoKey      *string          `json:"-" db:"logo_key"`
	LogoURL      *string          `json:"logo_url,omitempty" db:"-"`
	CreatedAt    time.Time        `json:"created_at" db:"created_at"`

	Teams          []Team          `json:"teams,omitempty" db:"-"`
	PendingPlayers []PendingPlayer `json:"pending_players,omitempty" db:"-"`
	Matches        []Match         `json:"matches,omitempty" db:"-"`
}

// ValidTeamSize reports whether n is one of the supported team size classes.
func ValidTeamSize(n int) bool {
	return n == 1 || n == 2 || n == 5
}

func ValidFormat(f TournamentFormat) bool {
	switch f {
	case FormatSingleElimination, FormatDoubleElimination, FormatRoundRobin:
		return true
	}
	return false
}
