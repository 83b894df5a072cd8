package brackets

import (
	"testing"

	"github.com/rivalsarena/arena-server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func completeMatch(t *testing.T, g *Graph, m *models.Match, winnerID string, scoreA, scoreB int) *ResultOutcome {
	t.Helper()
	outcome, err := ApplyResult(g, ResultUpdate{
		MatchID:  m.ID,
		ScoreA:   scoreA,
		ScoreB:   scoreB,
		WinnerID: &winnerID,
		Complete: true,
	})
	require.NoError(t, err)
	return outcome
}

func TestApplyResultScoreOnlyUpdate(t *testing.T) {
	graph, _ := generateSingle(t, 4)
	match := graph.Section(models.SectionWinners)[0][0]

	outcome, err := ApplyResult(graph, ResultUpdate{MatchID: match.ID, ScoreA: 2, ScoreB: 1})
	require.NoError(t, err)

	assert.Equal(t, 2, match.ScoreA)
	assert.Equal(t, 1, match.ScoreB)
	assert.Equal(t, models.MatchStatusReady, match.Status, "score updates must not change status")
	assert.Nil(t, match.WinnerID)
	assert.Len(t, outcome.Updated, 1)
	assert.False(t, outcome.TournamentComplete)
}

func TestApplyResultValidation(t *testing.T) {
	graph, teams := generateSingle(t, 4)
	round0 := graph.Section(models.SectionWinners)[0]
	match := round0[0]
	outsider := teams[3].ID

	testCases := []struct {
		name    string
		update  ResultUpdate
		wantErr error
	}{
		{
			name:    "negative score",
			update:  ResultUpdate{MatchID: match.ID, ScoreA: -1, ScoreB: 0},
			wantErr: ErrNegativeScore,
		},
		{
			name:    "unknown match",
			update:  ResultUpdate{MatchID: "missing", ScoreA: 1, ScoreB: 0},
			wantErr: ErrMatchNotFound,
		},
		{
			name:    "complete without winner",
			update:  ResultUpdate{MatchID: match.ID, ScoreA: 1, ScoreB: 0, Complete: true},
			wantErr: ErrWinnerRequired,
		},
		{
			name:    "tie score",
			update:  ResultUpdate{MatchID: match.ID, ScoreA: 2, ScoreB: 2, WinnerID: match.TeamAID, Complete: true},
			wantErr: ErrInvalidResult,
		},
		{
			name:    "winner not on match",
			update:  ResultUpdate{MatchID: match.ID, ScoreA: 2, ScoreB: 1, WinnerID: &outsider, Complete: true},
			wantErr: ErrInvalidResult,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ApplyResult(graph, tc.update)
			assert.ErrorIs(t, err, tc.wantErr)

			// Rejections leave the graph untouched.
			assert.Equal(t, 0, match.ScoreA)
			assert.Equal(t, 0, match.ScoreB)
			assert.Equal(t, models.MatchStatusReady, match.Status)
			assert.Nil(t, match.WinnerID)
		})
	}
}

func TestApplyResultAdvancesWinner(t *testing.T) {
	graph, teams := generateSingle(t, 4)
	rounds := graph.Section(models.SectionWinners)
	semifinal := rounds[0][0]
	final := rounds[1][0]

	outcome := completeMatch(t, graph, semifinal, teams[0].ID, 2, 0)

	assert.Equal(t, models.MatchStatusCompleted, semifinal.Status)
	assert.Equal(t, teams[0].ID, outcome.WinnerTeamID)
	assert.Equal(t, teams[1].ID, outcome.LoserTeamID)
	assert.False(t, outcome.TournamentComplete)

	require.NotNil(t, final.TeamAID)
	assert.Equal(t, teams[0].ID, *final.TeamAID)
	assert.Equal(t, models.MatchStatusPending, final.Status, "one slot is not enough to be ready")

	completeMatch(t, graph, rounds[0][1], teams[2].ID, 2, 1)
	assert.Equal(t, models.MatchStatusReady, final.Status)
}

func TestApplyResultRejectsDoubleCompletion(t *testing.T) {
	graph, teams := generateSingle(t, 4)
	match := graph.Section(models.SectionWinners)[0][0]
	final := graph.Terminal()

	completeMatch(t, graph, match, teams[0].ID, 2, 0)
	require.NotNil(t, final.TeamAID)

	_, err := ApplyResult(graph, ResultUpdate{
		MatchID:  match.ID,
		ScoreA:   2,
		ScoreB:   0,
		WinnerID: &teams[0].ID,
		Complete: true,
	})
	assert.ErrorIs(t, err, ErrInvalidMatchState)

	// Repeating the call must not re-fire advancement.
	assert.Equal(t, teams[0].ID, *final.TeamAID)
	assert.Nil(t, final.TeamBID)

	// Scoring a bye is rejected the same way.
	graph5, _ := generateSingle(t, 5)
	bye := graph5.Section(models.SectionWinners)[0][2]
	require.Equal(t, models.MatchStatusBye, bye.Status)
	_, err = ApplyResult(graph5, ResultUpdate{MatchID: bye.ID, ScoreA: 1, ScoreB: 0})
	assert.ErrorIs(t, err, ErrInvalidMatchState)
}

func TestEightTeamRoundTripTopSeedWins(t *testing.T) {
	graph, teams := generateSingle(t, 8)

	seedOf := make(map[string]int)
	for i, team := range teams {
		seedOf[team.ID] = i
	}

	var champion string
	completed := false
	for !completed {
		progressed := false
		for _, m := range graph.Matches() {
			if m.Status != models.MatchStatusReady {
				continue
			}
			// Always report the higher-seeded team as winner.
			winner := *m.TeamAID
			if seedOf[*m.TeamBID] < seedOf[*m.TeamAID] {
				winner = *m.TeamBID
			}
			outcome := completeMatch(t, graph, m, winner, 2, 1)
			progressed = true
			if outcome.TournamentComplete {
				champion = outcome.ChampionTeamID
				completed = true
			}
		}
		require.True(t, progressed, "bracket stalled before completion")
	}

	assert.Equal(t, teams[0].ID, champion)
	for _, m := range graph.Matches() {
		assert.Equal(t, models.MatchStatusCompleted, m.Status)
	}
}

func TestDoubleEliminationRunThrough(t *testing.T) {
	graph, teams := generateDouble(t, 4)

	winners := graph.Section(models.SectionWinners)
	losers := graph.Section(models.SectionLosers)
	grandFinal := graph.Terminal()

	// Winners round 0: T1 beats T2, T3 beats T4.
	completeMatch(t, graph, winners[0][0], teams[0].ID, 2, 0)
	completeMatch(t, graph, winners[0][1], teams[2].ID, 2, 1)

	// Both losers land in the losers entry match.
	entry := losers[0][0]
	require.NotNil(t, entry.TeamAID)
	require.NotNil(t, entry.TeamBID)
	assert.Equal(t, teams[1].ID, *entry.TeamAID)
	assert.Equal(t, teams[3].ID, *entry.TeamBID)
	assert.Equal(t, models.MatchStatusReady, entry.Status)

	// Winners final: T1 beats T3; T3 drops into the losers final.
	outcome := completeMatch(t, graph, winners[1][0], teams[0].ID, 2, 1)
	assert.False(t, outcome.TournamentComplete)
	assert.Equal(t, teams[0].ID, *grandFinal.TeamAID)

	losersFinal := losers[1][0]
	assert.Equal(t, teams[2].ID, *losersFinal.TeamBID)

	// Losers bracket: T2 eliminates T4, then beats T3.
	completeMatch(t, graph, entry, teams[1].ID, 2, 0)
	assert.Equal(t, models.MatchStatusReady, losersFinal.Status)
	completeMatch(t, graph, losersFinal, teams[1].ID, 2, 1)

	// Grand final decides the tournament.
	assert.Equal(t, models.MatchStatusReady, grandFinal.Status)
	finalOutcome := completeMatch(t, graph, grandFinal, teams[0].ID, 3, 2)
	assert.True(t, finalOutcome.TournamentComplete)
	assert.Equal(t, teams[0].ID, finalOutcome.ChampionTeamID)
}
