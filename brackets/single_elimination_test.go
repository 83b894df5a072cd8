package brackets

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/rivalsarena/arena-server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seededTeams(n int) ([]*models.Team, *models.Tournament) {
	tournament := &models.Tournament{
		ID:     uuid.NewString(),
		Name:   "Test Cup",
		Format: models.FormatSingleElimination,
		Status: models.StatusOpen,
	}
	teams := make([]*models.Team, n)
	for i := 0; i < n; i++ {
		seed := i + 1
		teams[i] = &models.Team{
			ID:           uuid.NewString(),
			TournamentID: tournament.ID,
			Name:         fmt.Sprintf("T%d", i+1),
			Seed:         &seed,
		}
	}
	return teams, tournament
}

func generateSingle(t *testing.T, n int) (*Graph, []*models.Team) {
	t.Helper()
	teams, tournament := seededTeams(n)
	gen := NewSingleEliminationGenerator()
	graph, err := gen.GenerateBracket(context.Background(), GenerateBracketParams{
		Tournament: tournament,
		Teams:      teams,
	})
	require.NoError(t, err)
	return graph, teams
}

func TestSingleEliminationRejectsTooFewTeams(t *testing.T) {
	teams, tournament := seededTeams(1)
	gen := NewSingleEliminationGenerator()

	_, err := gen.GenerateBracket(context.Background(), GenerateBracketParams{Tournament: tournament, Teams: teams})
	assert.ErrorIs(t, err, ErrNotEnoughTeams)

	_, err = gen.GenerateBracket(context.Background(), GenerateBracketParams{Tournament: tournament, Teams: nil})
	assert.ErrorIs(t, err, ErrNotEnoughTeams)
}

func TestSingleEliminationShape(t *testing.T) {
	testCases := []struct {
		teams          int
		expectedRounds int
	}{
		{teams: 2, expectedRounds: 1},
		{teams: 3, expectedRounds: 2},
		{teams: 4, expectedRounds: 2},
		{teams: 5, expectedRounds: 3},
		{teams: 8, expectedRounds: 3},
		{teams: 13, expectedRounds: 4},
		{teams: 16, expectedRounds: 4},
	}

	for _, tc := range testCases {
		t.Run(fmt.Sprintf("%d teams", tc.teams), func(t *testing.T) {
			graph, _ := generateSingle(t, tc.teams)

			rounds := graph.Section(models.SectionWinners)
			assert.Len(t, rounds, tc.expectedRounds)
			for r, round := range rounds {
				assert.Len(t, round, 1<<uint(tc.expectedRounds-r-1), "round %d", r)
			}

			// Exactly N-1 decisive matches: byes stand in for games nobody
			// plays, so the playable remainder still narrows N teams to one.
			decisive := 0
			for _, m := range graph.Matches() {
				if m.Status != models.MatchStatusBye {
					decisive++
				}
			}
			assert.Equal(t, tc.teams-1, decisive)

			// The final is the single terminal node.
			terminal := graph.Terminal()
			require.NotNil(t, terminal)
			assert.Equal(t, models.SectionWinners, terminal.Section)
			assert.Equal(t, tc.expectedRounds-1, terminal.Round)
			for _, m := range graph.Matches() {
				if m != terminal {
					assert.NotNil(t, m.NextMatchID, "match %s has no advancement target", m.ID)
				}
			}
		})
	}
}

func TestSingleEliminationRoundZeroSeeding(t *testing.T) {
	graph, teams := generateSingle(t, 8)

	round0 := graph.Section(models.SectionWinners)[0]
	require.Len(t, round0, 4)
	for m, match := range round0 {
		require.NotNil(t, match.TeamAID)
		require.NotNil(t, match.TeamBID)
		assert.Equal(t, teams[2*m].ID, *match.TeamAID)
		assert.Equal(t, teams[2*m+1].ID, *match.TeamBID)
		assert.Equal(t, models.MatchStatusReady, match.Status)
	}
}

func TestSingleEliminationAdvancementLinks(t *testing.T) {
	graph, _ := generateSingle(t, 8)

	rounds := graph.Section(models.SectionWinners)
	for r := 0; r < len(rounds)-1; r++ {
		for m, match := range rounds[r] {
			require.NotNil(t, match.NextMatchID)
			assert.Equal(t, rounds[r+1][m/2].ID, *match.NextMatchID)
			if m%2 == 0 {
				assert.Equal(t, models.SlotA, *match.NextSlot)
			} else {
				assert.Equal(t, models.SlotB, *match.NextSlot)
			}
		}
	}
}

func TestSingleEliminationByesForNonPowerOfTwo(t *testing.T) {
	for _, n := range []int{3, 5, 6, 7, 11, 13} {
		t.Run(fmt.Sprintf("%d teams", n), func(t *testing.T) {
			graph, _ := generateSingle(t, n)

			rounds := graph.Section(models.SectionWinners)
			slots := 1 << uint(len(rounds))

			// Every slot the field cannot fill shows up as a missing
			// round-zero participant.
			missing := 0
			for _, match := range rounds[0] {
				if match.TeamAID == nil {
					missing++
				}
				if match.TeamBID == nil {
					missing++
				}
			}
			assert.Equal(t, slots-n, missing)

			// Walkover winners are already propagated into the next round.
			for _, match := range rounds[0] {
				if match.Status != models.MatchStatusBye || match.WinnerID == nil {
					continue
				}
				next, ok := graph.Get(*match.NextMatchID)
				require.True(t, ok)
				assert.Equal(t, *match.WinnerID, *next.TeamInSlot(*match.NextSlot))
			}
		})
	}
}

func TestSingleEliminationFiveTeamScenario(t *testing.T) {
	graph, teams := generateSingle(t, 5)

	rounds := graph.Section(models.SectionWinners)
	require.Len(t, rounds, 3)

	round0 := rounds[0]
	require.Len(t, round0, 4)

	// (T1 vs T2), (T3 vs T4) are playable; T5 gets a walkover.
	assert.Equal(t, teams[0].ID, *round0[0].TeamAID)
	assert.Equal(t, teams[1].ID, *round0[0].TeamBID)
	assert.Equal(t, models.MatchStatusReady, round0[0].Status)
	assert.Equal(t, teams[2].ID, *round0[1].TeamAID)
	assert.Equal(t, teams[3].ID, *round0[1].TeamBID)
	assert.Equal(t, models.MatchStatusReady, round0[1].Status)

	byeMatch := round0[2]
	assert.Equal(t, models.MatchStatusBye, byeMatch.Status)
	require.NotNil(t, byeMatch.WinnerID)
	assert.Equal(t, teams[4].ID, *byeMatch.WinnerID)
	assert.Nil(t, byeMatch.TeamBID)

	// T5 is pre-filled downstream. With no possible opponent from the empty
	// quarter of the draw, the walkover carries T5 all the way into the
	// final's B slot.
	final := rounds[2][0]
	require.NotNil(t, final.TeamBID)
	assert.Equal(t, teams[4].ID, *final.TeamBID)
	assert.Nil(t, final.TeamAID)
	assert.Equal(t, models.MatchStatusPending, final.Status)
}
