package models

import "time"

// Team is a bracket entrant. Solo formats wrap a single player in a
// one-person team so the bracket engine only ever deals with teams.
type Team struct {
	ID           string       `json:"id" db:"id"`
	TournamentID string       `json:"tournament_id" db:"tournament_id"`
	Name         string       `json:"name" db:"name"`
	Seed         *int         `json:"seed,omitempty" db:"seed"`
	SkillLevel   int          `json:"skill_level" db:"skill_level"`
	Members      []TeamMember `json:"members,omitempty" db:"-"`
	LogoKey      *string      `json:"-" db:"logo_key"`
	LogoURL      *string      `json:"logo_url,omitempty" db:"-"`
	CreatedAt    time.Time    `json:"created_at" db:"created_at"`
}

// TeamMember keeps the roster denormalized by username. PlayerID is set when
// the username maps to a registered profile, which is what the rating service
// keys on. Guests without a profile still play, they just earn no rating.
type TeamMember struct {
	ID          string  `json:"id" db:"id"`
	TeamID      string  `json:"team_id" db:"team_id"`
	Username    string  `json:"username" db:"username"`
	RivalsLevel int     `json:"rivals_level" db:"rivals_level"`
	PlayerID    *string `json:"player_id,omitempty" db:"player_id"`
}
