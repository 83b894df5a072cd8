package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/rivalsarena/arena-server/brackets"
	"github.com/rivalsarena/arena-server/models"
	"github.com/rivalsarena/arena-server/notify"
	"github.com/rivalsarena/arena-server/repositories"
)

type ReportResultInput struct {
	ScoreA   int     `json:"score_a"`
	ScoreB   int     `json:"score_b"`
	WinnerID *string `json:"winner_id"`
	Complete bool    `json:"complete"`
}

// MatchUpdateResult is what a reported result changed.
type MatchUpdateResult struct {
	Match              *models.Match   `json:"match"`
	UpdatedMatches     []*models.Match `json:"updated_matches"`
	TournamentComplete bool            `json:"tournament_complete"`
	ChampionTeamID     *string         `json:"champion_team_id,omitempty"`
}

type MatchService interface {
	ListByTournament(ctx context.Context, tournamentID string) ([]*models.Match, error)
	// ReportResult applies one result to the bracket and persists every match
	// it touched. Calls for the same tournament are serialized.
	ReportResult(ctx context.Context, tournamentID, matchID string, input ReportResultInput) (*MatchUpdateResult, error)
}

type matchService struct {
	db             *sql.DB
	tournamentRepo repositories.TournamentRepository
	teamRepo       repositories.TeamRepository
	matchRepo      repositories.MatchRepository
	rating         RatingService
	hub            *brackets.Hub
	notifier       notify.Notifier
	logger         *slog.Logger

	// one mutex per tournament, so concurrent reports cannot interleave
	// advancement writes for the same bracket
	locks sync.Map
}

func NewMatchService(
	db *sql.DB,
	tournamentRepo repositories.TournamentRepository,
	teamRepo repositories.TeamRepository,
	matchRepo repositories.MatchRepository,
	rating RatingService,
	hub *brackets.Hub,
	notifier notify.Notifier,
	logger *slog.Logger,
) MatchService {
	return &matchService{
		db:             db,
		tournamentRepo: tournamentRepo,
		teamRepo:       teamRepo,
		matchRepo:      matchRepo,
		rating:         rating,
		hub:            hub,
		notifier:       notifier,
		logger:         logger,
	}
}

func (s *matchService) ListByTournament(ctx context.Context, tournamentID string) ([]*models.Match, error) {
	matches, err := s.matchRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches for tournament %s: %w", tournamentID, err)
	}
	return matches, nil
}

func (s *matchService) lockFor(tournamentID string) *sync.Mutex {
	mu, _ := s.locks.LoadOrStore(tournamentID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

func (s *matchService) ReportResult(ctx context.Context, tournamentID, matchID string, input ReportResultInput) (*MatchUpdateResult, error) {
	mu := s.lockFor(tournamentID)
	mu.Lock()
	defer mu.Unlock()

	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to get tournament %s: %w", tournamentID, err)
	}
	if tournament.Status != models.StatusActive {
		return nil, ErrTournamentNotActive
	}

	matches, err := s.matchRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load bracket for tournament %s: %w", tournamentID, err)
	}
	graph := brackets.GraphFromMatches(matches)

	outcome, err := brackets.ApplyResult(graph, brackets.ResultUpdate{
		MatchID:  matchID,
		ScoreA:   input.ScoreA,
		ScoreB:   input.ScoreB,
		WinnerID: input.WinnerID,
		Complete: input.Complete,
	})
	if err != nil {
		return nil, err
	}

	teams, err := s.teamRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load teams for tournament %s: %w", tournamentID, err)
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
					slog.String("tournament_id", tournamentID),
					slog.Any("error", rbErr))
			}
		}
	}()

	for _, match := range outcome.Updated {
		if txErr = s.matchRepo.UpdateState(ctx, tx, match); txErr != nil {
			return nil, fmt.Errorf("failed to persist match %s: %w", match.ID, txErr)
		}
	}

	var winnerTeam, loserTeam *models.Team
	if outcome.WinnerTeamID != "" {
		winnerTeam = teamByID(teams, outcome.WinnerTeamID)
		loserTeam = teamByID(teams, outcome.LoserTeamID)

		if winnerTeam != nil && loserTeam != nil {
			if txErr = s.rating.RecordMatchResult(ctx, tx, winnerTeam.Members, loserTeam.Members); txErr != nil {
				return nil, fmt.Errorf("failed to apply rating deltas: %w", txErr)
			}
		}
	}

	var champion *models.Team
	if outcome.TournamentComplete {
		champion = teamByID(teams, outcome.ChampionTeamID)
		championID := outcome.ChampionTeamID

		if txErr = s.tournamentRepo.UpdateWinner(ctx, tx, tournamentID, &championID); txErr != nil {
			return nil, fmt.Errorf("failed to record tournament winner: %w", txErr)
		}
		if txErr = s.tournamentRepo.UpdateStatus(ctx, tx, tournamentID, models.StatusCompleted); txErr != nil {
			return nil, fmt.Errorf("failed to complete tournament: %w", txErr)
		}
		if txErr = s.rating.RecordTournamentPlayed(ctx, tx, teams); txErr != nil {
			return nil, fmt.Errorf("failed to record tournament participation: %w", txErr)
		}
		if champion != nil {
			if txErr = s.rating.RecordChampion(ctx, tx, champion); txErr != nil {
				return nil, fmt.Errorf("failed to record champion: %w", txErr)
			}
		}
	}

	if txErr = tx.Commit(); txErr != nil {
		return nil, fmt.Errorf("failed to commit match result: %w", txErr)
	}

	result := &MatchUpdateResult{
		Match:              outcome.Match,
		UpdatedMatches:     outcome.Updated,
		TournamentComplete: outcome.TournamentComplete,
	}
	if outcome.TournamentComplete {
		championID := outcome.ChampionTeamID
		result.ChampionTeamID = &championID
	}

	s.hub.BroadcastToRoom(tournamentID, brackets.WebSocketMessage{
		Type:    brackets.EventMatchUpdated,
		Payload: result,
		RoomID:  tournamentID,
	})

	if outcome.WinnerTeamID != "" && winnerTeam != nil {
		winnerName := winnerTeam.Name
		loserName := teamDisplayName(teams, &outcome.LoserTeamID)
		match := outcome.Match
		s.announce(func(ctx context.Context) error {
			return s.notifier.MatchCompleted(ctx, tournament, match, winnerName, loserName)
		})
	}

	if outcome.TournamentComplete {
		s.hub.BroadcastToRoom(tournamentID, brackets.WebSocketMessage{
			Type: brackets.EventTournamentCompleted,
			Payload: map[string]interface{}{
				"tournament_id":   tournamentID,
				"winner_team_id":  outcome.ChampionTeamID,
				"winner_team":     champion,
				"completed_match": outcome.Match.ID,
			},
			RoomID: tournamentID,
		})
		if champion != nil {
			s.announce(func(ctx context.Context) error {
				return s.notifier.ChampionCrowned(ctx, tournament, champion)
			})
		}
	}

	return result, nil
}

func (s *matchService) announce(send func(context.Context) error) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := send(ctx); err != nil {
			s.logger.Warn("notification delivery failed", slog.Any("error", err))
		}
	}()
}

func teamByID(teams []*models.Team, id string) *models.Team {
	for _, team := range teams {
		if team.ID == id {
			return team
		}
	}
	return nil
}
