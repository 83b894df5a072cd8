package models

import "time"

type MatchStatus string

const (
	// MatchStatusPending means at least one participant slot is still empty.
	MatchStatusPending MatchStatus = "pending"
	// MatchStatusReady means both slots are filled and a result may be reported.
	MatchStatusReady      MatchStatus = "ready"
	MatchStatusInProgress MatchStatus = "in_progress"
	MatchStatusCompleted  MatchStatus = "completed"
	// MatchStatusBye marks an automatic walkover; it never gets played.
	MatchStatusBye MatchStatus = "bye"
)

// BracketSection tags which half of the match graph a match belongs to.
// The round index is local to the section.
type BracketSection string

const (
	SectionWinners    BracketSection = "winners"
	SectionLosers     BracketSection = "losers"
	SectionGrandFinal BracketSection = "grand_final"
)

type MatchSlot string

const (
	SlotA MatchSlot = "A"
	SlotB MatchSlot = "B"
)

// Match is one node of the bracket graph. TeamAID/TeamBID are nil while the
// slot waits on an upstream result. NextMatchID/NextSlot is the winner edge,
// LoserMatchID/LoserSlot the loser-drop edge (double elimination only). The
// terminal match of the bracket has no winner edge.
type Match struct {
	ID           string         `json:"id" db:"id"`
	TournamentID string         `json:"tournament_id" db:"tournament_id"`
	Section      BracketSection `json:"section" db:"section"`
	Round        int            `json:"round" db:"round"`
	MatchIndex   int            `json:"match_index" db:"match_index"`
	TeamAID      *string        `json:"team_a_id,omitempty" db:"team_a_id"`
	TeamBID      *string        `json:"team_b_id,omitempty" db:"team_b_id"`
	ScoreA       int            `json:"score_a" db:"score_a"`
	ScoreB       int            `json:"score_b" db:"score_b"`
	WinnerID     *string        `json:"winner_id,omitempty" db:"winner_id"`
	Status       MatchStatus    `json:"status" db:"status"`
	NextMatchID  *string        `json:"next_match_id,omitempty" db:"next_match_id"`
	NextSlot     *MatchSlot     `json:"next_match_position,omitempty" db:"next_slot"`
	LoserMatchID *string        `json:"loser_match_id,omitempty" db:"loser_match_id"`
	LoserSlot    *MatchSlot     `json:"loser_match_position,omitempty" db:"loser_slot"`
	CreatedAt    time.Time      `json:"created_at" db:"created_at"`
}

// BandedRound reproduces the legacy numeric round encoding (winners 0..99,
// losers 100.., grand final 200) that clients use for display ordering.
func (m *Match) BandedRound() int {
	switch m.Section {
	case SectionLosers:
		return 100 + m.Round
	case SectionGrandFinal:
		return 200
	default:
		return m.Round
	}
}

func (m *Match) HasBothTeams() bool {
	return m.TeamAID != nil && m.TeamBID != nil
}

// TeamInSlot returns the team currently occupying the given slot, or nil.
func (m *Match) TeamInSlot(slot MatchSlot) *string {
	if slot == SlotA {
		return m.TeamAID
	}
	return m.TeamBID
}

// SetTeamInSlot writes a team id into the given slot.
func (m *Match) SetTeamInSlot(slot MatchSlot, teamID string) {
	if slot == SlotA {
		m.TeamAID = &teamID
	} else {
		m.TeamBID = &teamID
	}
}

// OpponentOf returns the id of the other team on the match, or nil when the
// given id is not on the match or the opposing slot is empty.
func (m *Match) OpponentOf(teamID string) *string {
	if m.TeamAID != nil && *m.TeamAID == teamID {
		return m.TeamBID
	}
	if m.TeamBID != nil && *m.TeamBID == teamID {
		return m.TeamAID
	}
	return nil
}

// IsTerminal reports whether the match has no winner edge, i.e. it decides
// the tournament.
func (m *Match) IsTerminal() bool {
	return m.NextMatchID == nil
}
