package brackets

import (
	"errors"
	"fmt"

	"github.com/rivalsarena/arena-server/models"
)

var (
	ErrMatchNotFound = errors.New("match not found in bracket")
	// ErrInvalidMatchState rejects writes against matches whose status
	// forbids them, including a second completion of a decided match.
	ErrInvalidMatchState = errors.New("operation not allowed in current match state")
	// ErrInvalidResult rejects a completing update with a tie score or a
	// winner that is not on the match.
	ErrInvalidResult  = errors.New("invalid match result")
	ErrNegativeScore  = errors.New("scores must not be negative")
	ErrWinnerRequired = errors.New("completing a match requires a winner id")
)

// ResultUpdate describes one reported result. With Complete false only the
// scores change; with Complete true the match is decided and the graph
// advances.
type ResultUpdate struct {
	MatchID  string
	ScoreA   int
	ScoreB   int
	WinnerID *string
	Complete bool
}

// ResultOutcome lists everything a result changed, so the caller can persist
// exactly the dirtied nodes and fire the follow-up side effects.
type ResultOutcome struct {
	Match *models.Match
	// Updated holds every mutated match, the reported one included.
	Updated []*models.Match
	// WinnerTeamID and LoserTeamID are set on completing updates.
	WinnerTeamID string
	LoserTeamID  string
	// TournamentComplete is true when the terminal match was decided;
	// ChampionTeamID then names the tournament winner.
	TournamentComplete bool
	ChampionTeamID     string
}

// ApplyResult validates and applies one result to the graph. Validation runs
// before any mutation: a rejected update leaves the graph untouched. A
// completing update advances the winner over the match's winner edge, drops
// the loser over its loser edge if present, and signals tournament
// completion when the match is terminal. Advancement fires exactly once per
// match; completing an already decided match is rejected.
func ApplyResult(g *Graph, upd ResultUpdate) (*ResultOutcome, error) {
	if upd.ScoreA < 0 || upd.ScoreB < 0 {
		return nil, ErrNegativeScore
	}

	match, ok := g.Get(upd.MatchID)
	if !ok {
		return nil, ErrMatchNotFound
	}

	switch match.Status {
	case models.MatchStatusReady, models.MatchStatusInProgress:
	default:
		return nil, fmt.Errorf("%w: match %s is %s", ErrInvalidMatchState, match.ID, match.Status)
	}

	if !upd.Complete {
		match.ScoreA = upd.ScoreA
		match.ScoreB = upd.ScoreB
		return &ResultOutcome{
			Match:   match,
			Updated: []*models.Match{match},
		}, nil
	}

	if upd.WinnerID == nil {
		return nil, ErrWinnerRequired
	}
	if upd.ScoreA == upd.ScoreB {
		return nil, fmt.Errorf("%w: tie score %d-%d", ErrInvalidResult, upd.ScoreA, upd.ScoreB)
	}
	winnerID := *upd.WinnerID
	loser := match.OpponentOf(winnerID)
	if loser == nil {
		return nil, fmt.Errorf("%w: team %s is not on match %s", ErrInvalidResult, winnerID, match.ID)
	}

	// Resolve both targets before mutating anything, so a corrupt edge
	// cannot leave a half-applied result behind.
	var next, drop *models.Match
	if match.NextMatchID != nil {
		if next, ok = g.Get(*match.NextMatchID); !ok {
			return nil, fmt.Errorf("%w: advancement target %s", ErrMatchNotFound, *match.NextMatchID)
		}
	}
	if match.LoserMatchID != nil {
		if drop, ok = g.Get(*match.LoserMatchID); !ok {
			return nil, fmt.Errorf("%w: loser drop target %s", ErrMatchNotFound, *match.LoserMatchID)
		}
	}

	match.ScoreA = upd.ScoreA
	match.ScoreB = upd.ScoreB
	match.WinnerID = &winnerID
	match.Status = models.MatchStatusCompleted

	outcome := &ResultOutcome{
		Match:        match,
		Updated:      []*models.Match{match},
		WinnerTeamID: winnerID,
		LoserTeamID:  *loser,
	}

	if next != nil {
		fillSlot(next, *match.NextSlot, winnerID)
		outcome.Updated = append(outcome.Updated, next)
	} else {
		outcome.TournamentComplete = true
		outcome.ChampionTeamID = winnerID
	}

	if drop != nil {
		fillSlot(drop, *match.LoserSlot, *loser)
		outcome.Updated = append(outcome.Updated, drop)
	}

	return outcome, nil
}
