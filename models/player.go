package models

import "time"

type PlayerRole string

const (
	RoleAdmin  PlayerRole = "admin"
	RolePlayer PlayerRole = "player"
)

const DefaultRating = 1000

// Player is a registered profile. RivalsLevel is the in-game skill scalar
// (1..500) used by the balancer; Rating is the arena ladder score.
type Player struct {
	ID                string     `json:"id" db:"id"`
	Username          string     `json:"username" db:"username"`
	Email             string     `json:"email,omitempty" db:"email"`
	PasswordHash      string     `json:"-" db:"password_hash"`
	Role              PlayerRole `json:"role" db:"role"`
	RivalsLevel       int        `json:"rivals_level" db:"rivals_level"`
	Rating            int        `json:"rating" db:"rating"`
	Rank              string     `json:"rank" db:"rank"`
	Wins              int        `json:"wins" db:"wins"`
	Losses            int        `json:"losses" db:"losses"`
	TournamentsPlayed int        `json:"tournaments_played" db:"tournaments_played"`
	Achievements      []string   `json:"achievements" db:"achievements"`
	AvatarKey         *string    `json:"-" db:"avatar_key"`
	AvatarURL         *string    `json:"avatar_url,omitempty" db:"-"`
	CreatedAt         time.Time  `json:"created_at" db:"created_at"`
}

// PendingPlayer is an individual signup waiting for the tournament to start.
// The balancer consumes these and forms teams out of them.
type PendingPlayer struct {
	ID           string    `json:"id" db:"id"`
	TournamentID string    `json:"tournament_id" db:"tournament_id"`
	Username     string    `json:"username" db:"username"`
	RivalsLevel  int       `json:"rivals_level" db:"rivals_level"`
	PlayerID     *string   `json:"player_id,omitempty" db:"player_id"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
