package brackets

import (
	"context"
	"fmt"
	"testing"

	"github.com/rivalsarena/arena-server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generateDouble(t *testing.T, n int) (*Graph, []*models.Team) {
	t.Helper()
	teams, tournament := seededTeams(n)
	tournament.Format = models.FormatDoubleElimination
	gen := NewDoubleEliminationGenerator()
	graph, err := gen.GenerateBracket(context.Background(), GenerateBracketParams{
		Tournament: tournament,
		Teams:      teams,
	})
	require.NoError(t, err)
	return graph, teams
}

func TestDoubleEliminationFourTeamScenario(t *testing.T) {
	graph, _ := generateDouble(t, 4)

	winners := graph.Section(models.SectionWinners)
	require.Len(t, winners, 2)
	assert.Len(t, winners[0], 2)
	assert.Len(t, winners[1], 1)

	losers := graph.Section(models.SectionLosers)
	require.Len(t, losers, 2)
	assert.Len(t, losers[0], 1)
	assert.Len(t, losers[1], 1)

	final := graph.Section(models.SectionGrandFinal)
	require.Len(t, final, 1)
	grandFinal := final[0][0]
	assert.Equal(t, 200, grandFinal.BandedRound())

	// The loser of winners round-0 match 0 drops into the first losers
	// round, slot A; match 1's loser takes slot B of the same match.
	require.NotNil(t, winners[0][0].LoserMatchID)
	assert.Equal(t, losers[0][0].ID, *winners[0][0].LoserMatchID)
	assert.Equal(t, models.SlotA, *winners[0][0].LoserSlot)
	assert.Equal(t, losers[0][0].ID, *winners[0][1].LoserMatchID)
	assert.Equal(t, models.SlotB, *winners[0][1].LoserSlot)

	// The winners final feeds the grand final's A slot and drops its loser
	// into the last losers round, slot B.
	require.NotNil(t, winners[1][0].NextMatchID)
	assert.Equal(t, grandFinal.ID, *winners[1][0].NextMatchID)
	assert.Equal(t, models.SlotA, *winners[1][0].NextSlot)
	assert.Equal(t, losers[1][0].ID, *winners[1][0].LoserMatchID)
	assert.Equal(t, models.SlotB, *winners[1][0].LoserSlot)

	// Losers bracket converges on the grand final's B slot.
	assert.Equal(t, losers[1][0].ID, *losers[0][0].NextMatchID)
	assert.Equal(t, models.SlotA, *losers[0][0].NextSlot)
	assert.Equal(t, grandFinal.ID, *losers[1][0].NextMatchID)
	assert.Equal(t, models.SlotB, *losers[1][0].NextSlot)
}

func TestDoubleEliminationNoOrphans(t *testing.T) {
	for _, n := range []int{2, 4, 8, 16} {
		t.Run(fmt.Sprintf("%d teams", n), func(t *testing.T) {
			graph, _ := generateDouble(t, n)

			terminal := graph.Terminal()
			require.NotNil(t, terminal)
			assert.Equal(t, models.SectionGrandFinal, terminal.Section)

			// Every other match reaches the grand final by walking winner
			// edges; the walk also proves the graph is acyclic.
			for _, m := range graph.Matches() {
				if m == terminal {
					continue
				}
				require.NotNil(t, m.NextMatchID, "match %s (%s r%d) is an orphan", m.ID, m.Section, m.Round)

				cur := m
				steps := 0
				for cur.NextMatchID != nil {
					next, ok := graph.Get(*cur.NextMatchID)
					require.True(t, ok)
					cur = next
					steps++
					require.LessOrEqual(t, steps, graph.Len(), "cycle detected from match %s", m.ID)
				}
				assert.Equal(t, terminal.ID, cur.ID)
			}
		})
	}
}

func TestDoubleEliminationEightTeamDropLinks(t *testing.T) {
	graph, _ := generateDouble(t, 8)

	winners := graph.Section(models.SectionWinners)
	losers := graph.Section(models.SectionLosers)
	require.Len(t, winners, 3)
	require.Len(t, losers, 4)
	assert.Len(t, losers[0], 2)
	assert.Len(t, losers[1], 2)
	assert.Len(t, losers[2], 1)
	assert.Len(t, losers[3], 1)

	// Round-zero drops pair adjacent losers into the entry round.
	for m, match := range winners[0] {
		require.NotNil(t, match.LoserMatchID)
		assert.Equal(t, losers[0][m/2].ID, *match.LoserMatchID)
		assert.Equal(t, slotForIndex(m), *match.LoserSlot)
	}

	// Later winners rounds drop into the odd losers round at the same
	// index, always as the incoming B side.
	for r := 1; r < len(winners); r++ {
		entry := losers[r*2-1]
		for m, match := range winners[r] {
			require.NotNil(t, match.LoserMatchID)
			assert.Equal(t, entry[m].ID, *match.LoserMatchID)
			assert.Equal(t, models.SlotB, *match.LoserSlot)
		}
	}
}

func TestDoubleEliminationTwoTeams(t *testing.T) {
	graph, teams := generateDouble(t, 2)

	// No losers bracket: the winners final's loser goes straight to the
	// grand final for the rematch.
	assert.Nil(t, graph.Section(models.SectionLosers))

	winners := graph.Section(models.SectionWinners)
	require.Len(t, winners, 1)
	opener := winners[0][0]
	assert.Equal(t, teams[0].ID, *opener.TeamAID)
	assert.Equal(t, teams[1].ID, *opener.TeamBID)
	assert.Equal(t, models.MatchStatusReady, opener.Status)

	grandFinal := graph.Terminal()
	require.NotNil(t, grandFinal)
	assert.Equal(t, grandFinal.ID, *opener.NextMatchID)
	assert.Equal(t, models.SlotA, *opener.NextSlot)
	assert.Equal(t, grandFinal.ID, *opener.LoserMatchID)
	assert.Equal(t, models.SlotB, *opener.LoserSlot)
}

func TestDoubleEliminationByeGeneratesNoLoserDrop(t *testing.T) {
	graph, teams := generateDouble(t, 3)

	winners := graph.Section(models.SectionWinners)
	require.Len(t, winners, 2)

	// T3 walks over: its round-zero match is a bye and the losers match fed
	// by that drop can never receive a team from it.
	byeMatch := winners[0][1]
	assert.Equal(t, models.MatchStatusBye, byeMatch.Status)
	require.NotNil(t, byeMatch.WinnerID)
	assert.Equal(t, teams[2].ID, *byeMatch.WinnerID)

	// The walkover winner is pre-filled into the winners final.
	winnersFinal := winners[1][0]
	require.NotNil(t, winnersFinal.TeamBID)
	assert.Equal(t, teams[2].ID, *winnersFinal.TeamBID)

	// The losers entry match cannot be played (only one loser will ever
	// arrive), so the live drop is routed past it.
	losers := graph.Section(models.SectionLosers)
	require.Len(t, losers, 2)
	assert.Equal(t, models.MatchStatusBye, losers[0][0].Status)
	assert.Nil(t, losers[0][0].WinnerID)

	opener := winners[0][0]
	require.NotNil(t, opener.LoserMatchID)
	assert.Equal(t, losers[1][0].ID, *opener.LoserMatchID, "drop should bypass the dead entry match")
}
