package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rivalsarena/arena-server/brackets"
	"github.com/rivalsarena/arena-server/models"
	"github.com/rivalsarena/arena-server/notify"
	"github.com/rivalsarena/arena-server/repositories"
	"github.com/rivalsarena/arena-server/storage"
	"golang.org/x/sync/errgroup"
)

type CreateTournamentInput struct {
	Name        string                  `json:"name"`
	Description *string                 `json:"description"`
	Game        string                  `json:"game"`
	Format      models.TournamentFormat `json:"format"`
	TeamSize    int                     `json:"team_size"`
	MaxTeams    int                     `json:"max_teams"`
	StartDate   time.Time               `json:"start_date"`
	PrizePool   *string                 `json:"prize_pool"`
}

type UpdateTournamentInput struct {
	Name        *string                  `json:"name"`
	Description *string                  `json:"description"`
	Game        *string                  `json:"game"`
	Format      *models.TournamentFormat `json:"format"`
	TeamSize    *int                     `json:"team_size"`
	MaxTeams    *int                     `json:"max_teams"`
	StartDate   *time.Time               `json:"start_date"`
	PrizePool   *string                  `json:"prize_pool"`
}

type RegisterPlayerInput struct {
	Username    string  `json:"username"`
	RivalsLevel int     `json:"rivals_level"`
	PlayerID    *string `json:"player_id"`
}

type TournamentService interface {
	Create(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error)
	GetByID(ctx context.Context, id string) (*models.Tournament, error)
	List(ctx context.Context, filter repositories.ListTournamentsFilter) ([]*models.Tournament, error)
	Update(ctx context.Context, id string, input UpdateTournamentInput) (*models.Tournament, error)
	Delete(ctx context.Context, id string) error
	RegisterPlayer(ctx context.Context, tournamentID string, input RegisterPlayerInput) (*models.PendingPlayer, error)
	RemovePendingPlayer(ctx context.Context, tournamentID, pendingID string) error
	RemoveTeam(ctx context.Context, tournamentID, teamID string) error
	Start(ctx context.Context, id string) (*models.Tournament, error)
	UploadLogo(ctx context.Context, id string, file io.Reader, contentType string) (*models.Tournament, error)
}

type tournamentService struct {
	db             *sql.DB
	tournamentRepo repositories.TournamentRepository
	teamRepo       repositories.TeamRepository
	matchRepo      repositories.MatchRepository
	pendingRepo    repositories.PendingPlayerRepository
	playerRepo     repositories.PlayerRepository
	hub            *brackets.Hub
	notifier       notify.Notifier
	uploader       storage.FileUploader
	logger         *slog.Logger
}

func NewTournamentService(
	db *sql.DB,
	tournamentRepo repositories.TournamentRepository,
	teamRepo repositories.TeamRepository,
	matchRepo repositories.MatchRepository,
	pendingRepo repositories.PendingPlayerRepository,
	playerRepo repositories.PlayerRepository,
	hub *brackets.Hub,
	notifier notify.Notifier,
	uploader storage.FileUploader,
	logger *slog.Logger,
) TournamentService {
	return &tournamentService{
		db:             db,
		tournamentRepo: tournamentRepo,
		teamRepo:       teamRepo,
		matchRepo:      matchRepo,
		pendingRepo:    pendingRepo,
		playerRepo:     playerRepo,
		hub:            hub,
		notifier:       notifier,
		uploader:       uploader,
		logger:         logger,
	}
}

func (s *tournamentService) Create(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: tournament name is required", ErrValidationFailed)
	}
	if !models.ValidFormat(input.Format) {
		return nil, ErrInvalidFormat
	}
	if !models.ValidTeamSize(input.TeamSize) {
		return nil, ErrInvalidTeamSize
	}
	if input.MaxTeams < 2 {
		return nil, fmt.Errorf("%w: max teams must be at least 2", ErrValidationFailed)
	}

	tournament := &models.Tournament{
		ID:          uuid.NewString(),
		Name:        name,
		Description: input.Description,
		Game:        strings.TrimSpace(input.Game),
		Format:      input.Format,
		TeamSize:    input.TeamSize,
		MaxTeams:    input.MaxTeams,
		Status:      models.StatusOpen,
		StartDate:   input.StartDate,
		PrizePool:   input.PrizePool,
	}

	if err := s.tournamentRepo.Create(ctx, tournament); err != nil {
		if errors.Is(err, repositories.ErrTournamentNameConflict) {
			return nil, ErrTournamentNameConflict
		}
		return nil, fmt.Errorf("failed to create tournament: %w", err)
	}

	s.announce(func(ctx context.Context) error {
		return s.notifier.TournamentCreated(ctx, tournament)
	})

	return tournament, nil
}

// GetByID loads the tournament aggregate: teams, pending signups and matches
// are fetched in parallel and attached.
func (s *tournamentService) GetByID(ctx context.Context, id string) (*models.Tournament, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to get tournament %s: %w", id, err)
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		teams, err := s.teamRepo.ListByTournament(gCtx, id)
		if err != nil {
			return fmt.Errorf("failed to list teams for tournament %s: %w", id, err)
		}
		tournament.Teams = make([]models.Team, len(teams))
		for i, team := range teams {
			populateTeamLogoURL(team, s.uploader)
			tournament.Teams[i] = *team
		}
		return nil
	})

	g.Go(func() error {
		pending, err := s.pendingRepo.ListByTournament(gCtx, id)
		if err != nil {
			return fmt.Errorf("failed to list pending players for tournament %s: %w", id, err)
		}
		tournament.PendingPlayers = make([]models.PendingPlayer, len(pending))
		for i, p := range pending {
			tournament.PendingPlayers[i] = *p
		}
		return nil
	})

	g.Go(func() error {
		matches, err := s.matchRepo.ListByTournament(gCtx, id)
		if err != nil {
			return fmt.Errorf("failed to list matches for tournament %s: %w", id, err)
		}
		tournament.Matches = make([]models.Match, len(matches))
		for i, m := range matches {
			tournament.Matches[i] = *m
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	populateTournamentLogoURL(tournament, s.uploader)
	return tournament, nil
}

func (s *tournamentService) List(ctx context.Context, filter repositories.ListTournamentsFilter) ([]*models.Tournament, error) {
	tournaments, err := s.tournamentRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list tournaments: %w", err)
	}
	for _, tournament := range tournaments {
		populateTournamentLogoURL(tournament, s.uploader)
	}
	return tournaments, nil
}

func (s *tournamentService) Update(ctx context.Context, id string, input UpdateTournamentInput) (*models.Tournament, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to get tournament %s: %w", id, err)
	}

	// Settings freeze once the bracket exists.
	if tournament.Status != models.StatusDraft && tournament.Status != models.StatusOpen {
		return nil, ErrTournamentInvalidStatusTransition
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: tournament name is required", ErrValidationFailed)
		}
		tournament.Name = name
	}
	if input.Description != nil {
		tournament.Description = input.Description
	}
	if input.Game != nil {
		tournament.Game = strings.TrimSpace(*input.Game)
	}
	if input.Format != nil {
		if !models.ValidFormat(*input.Format) {
			return nil, ErrInvalidFormat
		}
		tournament.Format = *input.Format
	}
	if input.TeamSize != nil {
		if !models.ValidTeamSize(*input.TeamSize) {
			return nil, ErrInvalidTeamSize
		}
		tournament.TeamSize = *input.TeamSize
	}
	if input.MaxTeams != nil {
		if *input.MaxTeams < 2 {
			return nil, fmt.Errorf("%w: max teams must be at least 2", ErrValidationFailed)
		}
		tournament.MaxTeams = *input.MaxTeams
	}
	if input.StartDate != nil {
		tournament.StartDate = *input.StartDate
	}
	if input.PrizePool != nil {
		tournament.PrizePool = input.PrizePool
	}

	if err := s.tournamentRepo.Update(ctx, tournament); err != nil {
		switch {
		case errors.Is(err, repositories.ErrTournamentNotFound):
			return nil, ErrTournamentNotFound
		case errors.Is(err, repositories.ErrTournamentNameConflict):
			return nil, ErrTournamentNameConflict
		}
		return nil, fmt.Errorf("failed to update tournament %s: %w", id, err)
	}
	return tournament, nil
}

func (s *tournamentService) Delete(ctx context.Context, id string) error {
	if err := s.tournamentRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return ErrTournamentNotFound
		}
		return fmt.Errorf("failed to delete tournament %s: %w", id, err)
	}
	return nil
}

func (s *tournamentService) RegisterPlayer(ctx context.Context, tournamentID string, input RegisterPlayerInput) (*models.PendingPlayer, error) {
	username := strings.TrimSpace(input.Username)
	if username == "" {
		return nil, ErrUsernameRequired
	}
	if input.RivalsLevel < 1 || input.RivalsLevel > 500 {
		return nil, ErrInvalidRivalsLevel
	}

	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to get tournament %s: %w", tournamentID, err)
	}
	if tournament.Status != models.StatusOpen {
		return nil, ErrRegistrationNotOpen
	}

	pendingList, err := s.pendingRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending players: %w", err)
	}
	if len(pendingList) >= tournament.MaxTeams*tournament.TeamSize {
		return nil, ErrTournamentFull
	}

	playerID := input.PlayerID
	if playerID == nil {
		// Link the signup to a registered profile when the username matches.
		if player, lookupErr := s.playerRepo.GetByUsername(ctx, username); lookupErr == nil {
			playerID = &player.ID
		} else if !errors.Is(lookupErr, repositories.ErrPlayerNotFound) {
			return nil, fmt.Errorf("failed to look up player %q: %w", username, lookupErr)
		}
	}

	pending := &models.PendingPlayer{
		ID:           uuid.NewString(),
		TournamentID: tournamentID,
		Username:     username,
		RivalsLevel:  input.RivalsLevel,
		PlayerID:     playerID,
	}

	if err := s.pendingRepo.Create(ctx, nil, pending); err != nil {
		switch {
		case errors.Is(err, repositories.ErrPendingPlayerAlreadyRegistered):
			return nil, ErrAlreadyRegistered
		case errors.Is(err, repositories.ErrPendingPlayerTournamentInvalid):
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to register player: %w", err)
	}
	return pending, nil
}

func (s *tournamentService) RemovePendingPlayer(ctx context.Context, tournamentID, pendingID string) error {
	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return ErrTournamentNotFound
		}
		return fmt.Errorf("failed to get tournament %s: %w", tournamentID, err)
	}
	if tournament.Status != models.StatusOpen {
		return ErrRegistrationNotOpen
	}

	if err := s.pendingRepo.Delete(ctx, pendingID); err != nil {
		if errors.Is(err, repositories.ErrPendingPlayerNotFound) {
			return ErrPendingPlayerNotFound
		}
		return fmt.Errorf("failed to remove pending player %s: %w", pendingID, err)
	}
	return nil
}

func (s *tournamentService) RemoveTeam(ctx context.Context, tournamentID, teamID string) error {
	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return ErrTournamentNotFound
		}
		return fmt.Errorf("failed to get tournament %s: %w", tournamentID, err)
	}
	// Teams can only be removed before the bracket locks them in.
	if tournament.Status == models.StatusActive || tournament.Status == models.StatusCompleted {
		return ErrTournamentInvalidStatusTransition
	}

	if err := s.teamRepo.Delete(ctx, nil, teamID); err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return ErrTeamNotFound
		}
		return fmt.Errorf("failed to remove team %s: %w", teamID, err)
	}
	return nil
}

// Start forms teams from the signup pool, generates the bracket and flips the
// tournament to active, all in one transaction. A pool too small to field two
// teams aborts the start and leaves registration open.
func (s *tournamentService) Start(ctx context.Context, id string) (*models.Tournament, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to get tournament %s: %w", id, err)
	}
	if tournament.Status != models.StatusOpen {
		return nil, ErrTournamentInvalidStatusTransition
	}

	generator, err := brackets.GeneratorFor(tournament.Format)
	if err != nil {
		return nil, ErrFormatNotStartable
	}

	pending, err := s.pendingRepo.ListByTournament(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending players: %w", err)
	}

	teams := brackets.BalanceTeams(pending, tournament.TeamSize)
	if len(teams) > tournament.MaxTeams {
		teams = teams[:tournament.MaxTeams]
	}
	if len(teams) < 2 {
		return nil, ErrInsufficientTeams
	}

	graph, err := generator.GenerateBracket(ctx, brackets.GenerateBracketParams{
		Tournament: tournament,
		Teams:      teams,
	})
	if err != nil {
		if errors.Is(err, brackets.ErrNotEnoughTeams) {
			return nil, ErrInsufficientTeams
		}
		return nil, fmt.Errorf("failed to generate bracket for tournament %s: %w", id, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	var txErr error
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		} else if txErr != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				s.logger.ErrorContext(ctx, "rollback failed",
					slog.String("tournament_id", id),
					slog.Any("error", rbErr))
			}
		}
	}()

	for _, team := range teams {
		team.TournamentID = id
		if txErr = s.teamRepo.Create(ctx, tx, team); txErr != nil {
			return nil, fmt.Errorf("failed to persist team %s: %w", team.Name, txErr)
		}
	}

	// Two passes: insert every match node, then write the edges.
	for _, match := range graph.Matches() {
		if txErr = s.matchRepo.Create(ctx, tx, match); txErr != nil {
			return nil, fmt.Errorf("failed to persist match %s: %w", match.ID, txErr)
		}
	}
	for _, match := range graph.Matches() {
		if match.NextMatchID == nil && match.LoserMatchID == nil {
			continue
		}
		if txErr = s.matchRepo.UpdateBracketLinks(ctx, tx, match); txErr != nil {
			return nil, fmt.Errorf("failed to link match %s: %w", match.ID, txErr)
		}
	}

	if txErr = s.pendingRepo.DeleteByTournament(ctx, tx, id); txErr != nil {
		return nil, fmt.Errorf("failed to clear signup pool: %w", txErr)
	}
	if txErr = s.tournamentRepo.UpdateStatus(ctx, tx, id, models.StatusActive); txErr != nil {
		return nil, fmt.Errorf("failed to activate tournament: %w", txErr)
	}

	if txErr = tx.Commit(); txErr != nil {
		return nil, fmt.Errorf("failed to commit tournament start: %w", txErr)
	}

	full, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.hub.BroadcastToRoom(id, brackets.WebSocketMessage{
		Type:    brackets.EventBracketGenerated,
		Payload: full,
		RoomID:  id,
	})

	return full, nil
}

func (s *tournamentService) UploadLogo(ctx context.Context, id string, file io.Reader, contentType string) (*models.Tournament, error) {
	if s.uploader == nil {
		return nil, ErrUploadsDisabled
	}

	tournament, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to get tournament %s: %w", id, err)
	}

	ext, err := GetExtensionFromContentType(contentType)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidationFailed, err)
	}

	oldKey := tournament.LogoKey
	newKey := fmt.Sprintf("tournaments/%s/logo%s", tournament.ID, ext)

	if _, err := s.uploader.Upload(ctx, newKey, contentType, file); err != nil {
		return nil, fmt.Errorf("failed to upload tournament logo: %w", err)
	}
	if err := s.tournamentRepo.UpdateLogoKey(ctx, id, &newKey); err != nil {
		return nil, fmt.Errorf("failed to save tournament logo key: %w", err)
	}
	tournament.LogoKey = &newKey

	if oldKey != nil && *oldKey != newKey {
		if delErr := s.uploader.Delete(ctx, *oldKey); delErr != nil {
			s.logger.WarnContext(ctx, "failed to delete previous tournament logo",
				slog.String("tournament_id", id),
				slog.String("key", *oldKey),
				slog.Any("error", delErr))
		}
	}

	populateTournamentLogoURL(tournament, s.uploader)
	return tournament, nil
}

// announce fires a notification without blocking the request path. Failures
// are logged and otherwise ignored.
func (s *tournamentService) announce(send func(context.Context) error) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := send(ctx); err != nil {
			s.logger.Warn("notification delivery failed", slog.Any("error", err))
		}
	}()
}
