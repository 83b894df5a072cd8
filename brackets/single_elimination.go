package brackets

import (
	"context"

	"github.com/rivalsarena/arena-server/models"
)

type SingleEliminationGenerator struct {
}

func NewSingleEliminationGenerator() BracketGenerator {
	return &SingleEliminationGenerator{}
}

func (g *SingleEliminationGenerator) GetName() string {
	return "SingleElimination"
}

// GenerateBracket builds the full single elimination tree for the seeded team
// list. Every round is allocated up front: round r of a bracket with R rounds
// holds 2^(R-r-1) matches, and match (r, m) advances its winner into
// (r+1, m/2), slot A for even m and slot B for odd m. Round 0 is seeded
// pairwise from the team list; slots left empty by a non-power-of-two field
// are resolved as byes before the graph is returned.
func (g *SingleEliminationGenerator) GenerateBracket(ctx context.Context, params GenerateBracketParams) (*Graph, error) {
	teams := params.Teams
	n := len(teams)
	if n < 2 {
		return nil, ErrNotEnoughTeams
	}

	tournamentID := params.Tournament.ID
	rounds := roundsFor(n)

	graph := NewGraph()
	byRound := make([][]*models.Match, rounds)
	for r := 0; r < rounds; r++ {
		count := 1 << uint(rounds-r-1)
		byRound[r] = make([]*models.Match, count)
		for m := 0; m < count; m++ {
			match := newMatch(tournamentID, models.SectionWinners, r, m)
			byRound[r][m] = match
			graph.Add(match)
		}
	}

	for r := 0; r < rounds-1; r++ {
		for m, match := range byRound[r] {
			linkWinner(match, byRound[r+1][m/2], slotForIndex(m))
		}
	}

	seedRoundZero(byRound[0], teams)
	resolveByes(graph)

	return graph, nil
}
