package brackets

import (
	"context"
	"errors"
	"math"

	"github.com/google/uuid"
	"github.com/rivalsarena/arena-server/models"
)

var (
	ErrNotEnoughTeams    = errors.New("not enough teams to generate a bracket (minimum 2)")
	ErrUnsupportedFormat = errors.New("unsupported bracket format")
)

type GenerateBracketParams struct {
	Tournament *models.Tournament
	// Teams in seed order; index 0 is the top seed. The generator never
	// reorders them.
	Teams []*models.Team
}

type BracketGenerator interface {
	GenerateBracket(ctx context.Context, params GenerateBracketParams) (*Graph, error)

	GetName() string
}

// GeneratorFor picks the generator matching the tournament format.
func GeneratorFor(format models.TournamentFormat) (BracketGenerator, error) {
	switch format {
	case models.FormatSingleElimination:
		return NewSingleEliminationGenerator(), nil
	case models.FormatDoubleElimination:
		return NewDoubleEliminationGenerator(), nil
	default:
		return nil, ErrUnsupportedFormat
	}
}

// roundsFor returns ceil(log2(n)) for n >= 2.
func roundsFor(n int) int {
	return int(math.Ceil(math.Log2(float64(n))))
}

func newMatch(tournamentID string, section models.BracketSection, round, index int) *models.Match {
	return &models.Match{
		ID:           uuid.NewString(),
		TournamentID: tournamentID,
		Section:      section,
		Round:        round,
		MatchIndex:   index,
		Status:       models.MatchStatusPending,
	}
}

func linkWinner(from, to *models.Match, slot models.MatchSlot) {
	from.NextMatchID = &to.ID
	s := slot
	from.NextSlot = &s
}

func linkLoser(from, to *models.Match, slot models.MatchSlot) {
	from.LoserMatchID = &to.ID
	s := slot
	from.LoserSlot = &s
}

func slotForIndex(index int) models.MatchSlot {
	if index%2 == 0 {
		return models.SlotA
	}
	return models.SlotB
}

// seedRoundZero fills the first winners round from the seeded team list:
// match m gets teams[2m] and teams[2m+1]. Slots past the end of the list stay
// empty and are resolved as byes afterwards.
func seedRoundZero(roundZero []*models.Match, teams []*models.Team) {
	for m, match := range roundZero {
		if 2*m < len(teams) {
			match.SetTeamInSlot(models.SlotA, teams[2*m].ID)
		}
		if 2*m+1 < len(teams) {
			match.SetTeamInSlot(models.SlotB, teams[2*m+1].ID)
		}
		if match.HasBothTeams() {
			match.Status = models.MatchStatusReady
		}
	}
}
