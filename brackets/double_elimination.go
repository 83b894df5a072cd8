package brackets

import (
	"context"

	"github.com/rivalsarena/arena-server/models"
)

type DoubleEliminationGenerator struct {
}

func NewDoubleEliminationGenerator() BracketGenerator {
	return &DoubleEliminationGenerator{}
}

func (g *DoubleEliminationGenerator) GetName() string {
	return "DoubleElimination"
}

// GenerateBracket builds a winners bracket identical in shape to single
// elimination, a losers bracket of (winnersRounds-1)*2 rounds, and a grand
// final where the two bracket champions meet.
//
// Losers rounds alternate between an entry round, where losers dropped from
// the winners bracket join survivors, and a consolidation round pairing
// losers-bracket winners; round r holds 2^(winnersRounds-2-r/2) matches.
// Winners round 0 drops its loser into losers round 0 at index m/2 (slot by
// parity of m); winners round r>0 drops into losers round r*2-1 at the same
// index, always slot B. A two-team field has no losers bracket at all, so
// the winners final drops its loser straight into the grand final.
func (g *DoubleEliminationGenerator) GenerateBracket(ctx context.Context, params GenerateBracketParams) (*Graph, error) {
	teams := params.Teams
	n := len(teams)
	if n < 2 {
		return nil, ErrNotEnoughTeams
	}

	tournamentID := params.Tournament.ID
	winnersRounds := roundsFor(n)

	graph := NewGraph()

	winners := make([][]*models.Match, winnersRounds)
	for r := 0; r < winnersRounds; r++ {
		count := 1 << uint(winnersRounds-r-1)
		winners[r] = make([]*models.Match, count)
		for m := 0; m < count; m++ {
			match := newMatch(tournamentID, models.SectionWinners, r, m)
			winners[r][m] = match
			graph.Add(match)
		}
	}

	losersRounds := (winnersRounds - 1) * 2
	losers := make([][]*models.Match, 0, losersRounds)
	for r := 0; r < losersRounds; r++ {
		count := 1 << uint(winnersRounds-2-r/2)
		if count < 1 {
			continue
		}
		round := make([]*models.Match, count)
		for m := 0; m < count; m++ {
			match := newMatch(tournamentID, models.SectionLosers, r, m)
			round[m] = match
			graph.Add(match)
		}
		losers = append(losers, round)
	}

	grandFinal := newMatch(tournamentID, models.SectionGrandFinal, 0, 0)
	graph.Add(grandFinal)

	// Winners advancement; the winners champion takes slot A of the final.
	for r := 0; r < winnersRounds-1; r++ {
		for m, match := range winners[r] {
			linkWinner(match, winners[r+1][m/2], slotForIndex(m))
		}
	}
	linkWinner(winners[winnersRounds-1][0], grandFinal, models.SlotA)

	// Losers advancement; the losers champion takes slot B of the final.
	for r := 0; r < len(losers)-1; r++ {
		cur, next := losers[r], losers[r+1]
		for m, match := range cur {
			if len(next) == len(cur) {
				linkWinner(match, next[m], models.SlotA)
			} else {
				linkWinner(match, next[m/2], slotForIndex(m))
			}
		}
	}
	if len(losers) > 0 {
		last := losers[len(losers)-1]
		linkWinner(last[0], grandFinal, models.SlotB)
	}

	// Loser drops out of the winners bracket.
	if len(losers) == 0 {
		linkLoser(winners[0][0], grandFinal, models.SlotB)
	} else {
		for m, match := range winners[0] {
			linkLoser(match, losers[0][m/2], slotForIndex(m))
		}
		for r := 1; r < winnersRounds; r++ {
			entry := losers[r*2-1]
			for m, match := range winners[r] {
				linkLoser(match, entry[m], models.SlotB)
			}
		}
	}

	seedRoundZero(winners[0], teams)
	resolveByes(graph)

	return graph, nil
}
