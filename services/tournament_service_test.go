package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rivalsarena/arena-server/brackets"
	"github.com/rivalsarena/arena-server/models"
	"github.com/rivalsarena/arena-server/notify"
	"github.com/rivalsarena/arena-server/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTournamentRepo struct {
	tournaments map[string]*models.Tournament
}

func newFakeTournamentRepo(tournaments ...*models.Tournament) *fakeTournamentRepo {
	repo := &fakeTournamentRepo{tournaments: make(map[string]*models.Tournament)}
	for _, t := range tournaments {
		repo.tournaments[t.ID] = t
	}
	return repo
}

func (r *fakeTournamentRepo) Create(_ context.Context, tournament *models.Tournament) error {
	for _, existing := range r.tournaments {
		if existing.Name == tournament.Name {
			return repositories.ErrTournamentNameConflict
		}
	}
	clone := *tournament
	r.tournaments[tournament.ID] = &clone
	return nil
}

func (r *fakeTournamentRepo) GetByID(_ context.Context, id string) (*models.Tournament, error) {
	tournament, ok := r.tournaments[id]
	if !ok {
		return nil, repositories.ErrTournamentNotFound
	}
	clone := *tournament
	return &clone, nil
}

func (r *fakeTournamentRepo) List(_ context.Context, _ repositories.ListTournamentsFilter) ([]*models.Tournament, error) {
	out := make([]*models.Tournament, 0, len(r.tournaments))
	for _, t := range r.tournaments {
		clone := *t
		out = append(out, &clone)
	}
	return out, nil
}

func (r *fakeTournamentRepo) Update(_ context.Context, tournament *models.Tournament) error {
	if _, ok := r.tournaments[tournament.ID]; !ok {
		return repositories.ErrTournamentNotFound
	}
	clone := *tournament
	r.tournaments[tournament.ID] = &clone
	return nil
}

func (r *fakeTournamentRepo) UpdateStatus(_ context.Context, _ repositories.SQLExecutor, id string, status models.TournamentStatus) error {
	tournament, ok := r.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	tournament.Status = status
	return nil
}

func (r *fakeTournamentRepo) UpdateWinner(_ context.Context, _ repositories.SQLExecutor, id string, winnerTeamID *string) error {
	tournament, ok := r.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	tournament.WinnerTeamID = winnerTeamID
	return nil
}

func (r *fakeTournamentRepo) UpdateLogoKey(_ context.Context, id string, logoKey *string) error {
	tournament, ok := r.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	tournament.LogoKey = logoKey
	return nil
}

func (r *fakeTournamentRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.tournaments[id]; !ok {
		return repositories.ErrTournamentNotFound
	}
	delete(r.tournaments, id)
	return nil
}

type fakePendingRepo struct {
	pending []*models.PendingPlayer
}

func (r *fakePendingRepo) Create(_ context.Context, _ repositories.SQLExecutor, pending *models.PendingPlayer) error {
	for _, existing := range r.pending {
		if existing.TournamentID == pending.TournamentID && existing.Username == pending.Username {
			return repositories.ErrPendingPlayerAlreadyRegistered
		}
	}
	clone := *pending
	r.pending = append(r.pending, &clone)
	return nil
}

func (r *fakePendingRepo) ListByTournament(_ context.Context, tournamentID string) ([]*models.PendingPlayer, error) {
	var out []*models.PendingPlayer
	for _, p := range r.pending {
		if p.TournamentID == tournamentID {
			clone := *p
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *fakePendingRepo) Delete(_ context.Context, id string) error {
	for i, p := range r.pending {
		if p.ID == id {
			r.pending = append(r.pending[:i], r.pending[i+1:]...)
			return nil
		}
	}
	return repositories.ErrPendingPlayerNotFound
}

func (r *fakePendingRepo) DeleteByTournament(_ context.Context, _ repositories.SQLExecutor, tournamentID string) error {
	kept := r.pending[:0]
	for _, p := range r.pending {
		if p.TournamentID != tournamentID {
			kept = append(kept, p)
		}
	}
	r.pending = kept
	return nil
}

func newTestTournamentService(tournamentRepo *fakeTournamentRepo, pendingRepo *fakePendingRepo, playerRepo *fakePlayerRepo) TournamentService {
	return NewTournamentService(
		nil,
		tournamentRepo,
		nil,
		nil,
		pendingRepo,
		playerRepo,
		brackets.NewHub(),
		notify.NopNotifier{},
		nil,
		testLogger(),
	)
}

func openTournament(format models.TournamentFormat, teamSize, maxTeams int) *models.Tournament {
	return &models.Tournament{
		ID:        uuid.NewString(),
		Name:      "Summer Clash",
		Game:      "Marvel Rivals",
		Format:    format,
		TeamSize:  teamSize,
		MaxTeams:  maxTeams,
		Status:    models.StatusOpen,
		StartDate: time.Now().Add(24 * time.Hour),
	}
}

func TestCreateTournamentValidation(t *testing.T) {
	svc := newTestTournamentService(newFakeTournamentRepo(), &fakePendingRepo{}, newFakePlayerRepo())

	testCases := []struct {
		name    string
		input   CreateTournamentInput
		wantErr error
	}{
		{
			name:    "empty name",
			input:   CreateTournamentInput{Name: " ", Format: models.FormatSingleElimination, TeamSize: 1, MaxTeams: 8},
			wantErr: ErrValidationFailed,
		},
		{
			name:    "unknown format",
			input:   CreateTournamentInput{Name: "Cup", Format: "swiss", TeamSize: 1, MaxTeams: 8},
			wantErr: ErrInvalidFormat,
		},
		{
			name:    "unsupported team size",
			input:   CreateTournamentInput{Name: "Cup", Format: models.FormatSingleElimination, TeamSize: 3, MaxTeams: 8},
			wantErr: ErrInvalidTeamSize,
		},
		{
			name:    "max teams too small",
			input:   CreateTournamentInput{Name: "Cup", Format: models.FormatSingleElimination, TeamSize: 1, MaxTeams: 1},
			wantErr: ErrValidationFailed,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tc.input)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestCreateTournamentOpensRegistration(t *testing.T) {
	repo := newFakeTournamentRepo()
	svc := newTestTournamentService(repo, &fakePendingRepo{}, newFakePlayerRepo())

	tournament, err := svc.Create(context.Background(), CreateTournamentInput{
		Name:     "Winter Major",
		Game:     "Marvel Rivals",
		Format:   models.FormatDoubleElimination,
		TeamSize: 2,
		MaxTeams: 8,
	})
	require.NoError(t, err)

	assert.Equal(t, models.StatusOpen, tournament.Status)
	assert.NotEmpty(t, tournament.ID)

	_, err = svc.Create(context.Background(), CreateTournamentInput{
		Name:     "Winter Major",
		Format:   models.FormatSingleElimination,
		TeamSize: 1,
		MaxTeams: 4,
	})
	assert.ErrorIs(t, err, ErrTournamentNameConflict)
}

func TestRegisterPlayerRules(t *testing.T) {
	tournament := openTournament(models.FormatSingleElimination, 1, 2)
	profile := &models.Player{ID: uuid.NewString(), Username: "ziri", Email: "ziri@example.com"}
	repo := newFakeTournamentRepo(tournament)
	pendingRepo := &fakePendingRepo{}
	svc := newTestTournamentService(repo, pendingRepo, newFakePlayerRepo(profile))

	pending, err := svc.RegisterPlayer(context.Background(), tournament.ID, RegisterPlayerInput{Username: "ziri", RivalsLevel: 120})
	require.NoError(t, err)
	require.NotNil(t, pending.PlayerID)
	assert.Equal(t, profile.ID, *pending.PlayerID)

	_, err = svc.RegisterPlayer(context.Background(), tournament.ID, RegisterPlayerInput{Username: "ziri", RivalsLevel: 120})
	assert.ErrorIs(t, err, ErrAlreadyRegistered)

	_, err = svc.RegisterPlayer(context.Background(), tournament.ID, RegisterPlayerInput{Username: "guest", RivalsLevel: 80})
	require.NoError(t, err)

	// Pool capacity is MaxTeams * TeamSize.
	_, err = svc.RegisterPlayer(context.Background(), tournament.ID, RegisterPlayerInput{Username: "overflow", RivalsLevel: 90})
	assert.ErrorIs(t, err, ErrTournamentFull)

	require.NoError(t, repo.UpdateStatus(context.Background(), nil, tournament.ID, models.StatusActive))
	_, err = svc.RegisterPlayer(context.Background(), tournament.ID, RegisterPlayerInput{Username: "late", RivalsLevel: 70})
	assert.ErrorIs(t, err, ErrRegistrationNotOpen)
}

func TestStartRejectsInsufficientTeams(t *testing.T) {
	tournament := openTournament(models.FormatSingleElimination, 1, 8)
	repo := newFakeTournamentRepo(tournament)
	pendingRepo := &fakePendingRepo{pending: []*models.PendingPlayer{
		{ID: uuid.NewString(), TournamentID: tournament.ID, Username: "solo", RivalsLevel: 100},
	}}
	svc := newTestTournamentService(repo, pendingRepo, newFakePlayerRepo())

	_, err := svc.Start(context.Background(), tournament.ID)
	assert.ErrorIs(t, err, ErrInsufficientTeams)

	stored, getErr := repo.GetByID(context.Background(), tournament.ID)
	require.NoError(t, getErr)
	assert.Equal(t, models.StatusOpen, stored.Status, "a failed start must leave registration open")
}

func TestStartRejectsRoundRobin(t *testing.T) {
	tournament := openTournament(models.FormatRoundRobin, 1, 8)
	repo := newFakeTournamentRepo(tournament)
	pendingRepo := &fakePendingRepo{pending: []*models.PendingPlayer{
		{ID: uuid.NewString(), TournamentID: tournament.ID, Username: "a", RivalsLevel: 100},
		{ID: uuid.NewString(), TournamentID: tournament.ID, Username: "b", RivalsLevel: 90},
	}}
	svc := newTestTournamentService(repo, pendingRepo, newFakePlayerRepo())

	_, err := svc.Start(context.Background(), tournament.ID)
	assert.ErrorIs(t, err, ErrFormatNotStartable)
}

func TestUpdateFrozenAfterStart(t *testing.T) {
	tournament := openTournament(models.FormatSingleElimination, 1, 8)
	tournament.Status = models.StatusActive
	repo := newFakeTournamentRepo(tournament)
	svc := newTestTournamentService(repo, &fakePendingRepo{}, newFakePlayerRepo())

	name := "Renamed"
	_, err := svc.Update(context.Background(), tournament.ID, UpdateTournamentInput{Name: &name})
	assert.ErrorIs(t, err, ErrTournamentInvalidStatusTransition)
}
