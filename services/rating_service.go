package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/rivalsarena/arena-server/models"
	"github.com/rivalsarena/arena-server/repositories"
)

// RatingPolicy holds the flat ladder deltas applied per decided match.
type RatingPolicy struct {
	WinDelta  int
	LossDelta int
}

func DefaultRatingPolicy() RatingPolicy {
	return RatingPolicy{WinDelta: 25, LossDelta: -15}
}

const (
	achievementFirstWin      = "first_win"
	achievementTenWins       = "ten_wins"
	achievementRating1500    = "rating_1500"
	achievementGrandChampion = "grand_champion"
	achievementTourneyWinner = "tournament_champion"
)

type RatingService interface {
	RankForRating(rating int) string
	// RecordMatchResult applies the rating deltas to every roster member that
	// maps to a registered profile. Guests are skipped.
	RecordMatchResult(ctx context.Context, exec repositories.SQLExecutor, winners, losers []models.TeamMember) error
	// RecordTournamentPlayed bumps tournaments_played once per distinct player
	// across the given teams.
	RecordTournamentPlayed(ctx context.Context, exec repositories.SQLExecutor, teams []*models.Team) error
	RecordChampion(ctx context.Context, exec repositories.SQLExecutor, champion *models.Team) error
	Leaderboard(ctx context.Context, limit int) ([]*models.Player, error)
}

type ratingService struct {
	playerRepo repositories.PlayerRepository
	policy     RatingPolicy
	logger     *slog.Logger
}

func NewRatingService(playerRepo repositories.PlayerRepository, policy RatingPolicy, logger *slog.Logger) RatingService {
	return &ratingService{
		playerRepo: playerRepo,
		policy:     policy,
		logger:     logger,
	}
}

// RankForRating maps a ladder score onto the rank names shown in profiles.
func (s *ratingService) RankForRating(rating int) string {
	switch {
	case rating >= 2000:
		return "Grand Champion"
	case rating >= 1800:
		return "Champion"
	case rating >= 1500:
		return "Diamond"
	case rating >= 1300:
		return "Platinum"
	case rating >= 1100:
		return "Gold"
	case rating >= 1000:
		return "Silver"
	default:
		return "Bronze"
	}
}

func (s *ratingService) RecordMatchResult(ctx context.Context, exec repositories.SQLExecutor, winners, losers []models.TeamMember) error {
	for _, member := range winners {
		if err := s.applyDelta(ctx, exec, member, true); err != nil {
			return err
		}
	}
	for _, member := range losers {
		if err := s.applyDelta(ctx, exec, member, false); err != nil {
			return err
		}
	}
	return nil
}

func (s *ratingService) applyDelta(ctx context.Context, exec repositories.SQLExecutor, member models.TeamMember, won bool) error {
	if member.PlayerID == nil {
		return nil
	}
	player, err := s.playerRepo.GetByID(ctx, *member.PlayerID)
	if err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			s.logger.WarnContext(ctx, "roster member references missing player",
				slog.String("player_id", *member.PlayerID),
				slog.String("username", member.Username))
			return nil
		}
		return fmt.Errorf("failed to load player %s for rating update: %w", *member.PlayerID, err)
	}

	if won {
		player.Rating += s.policy.WinDelta
		player.Wins++
	} else {
		player.Rating += s.policy.LossDelta
		player.Losses++
	}
	if player.Rating < 0 {
		player.Rating = 0
	}
	player.Rank = s.RankForRating(player.Rating)
	s.grantAchievements(player)

	if err := s.playerRepo.UpdateStats(ctx, exec, player); err != nil {
		return fmt.Errorf("failed to persist rating update for player %s: %w", player.ID, err)
	}
	return nil
}

func (s *ratingService) RecordTournamentPlayed(ctx context.Context, exec repositories.SQLExecutor, teams []*models.Team) error {
	seen := make(map[string]struct{})
	for _, team := range teams {
		for _, member := range team.Members {
			if member.PlayerID == nil {
				continue
			}
			if _, dup := seen[*member.PlayerID]; dup {
				continue
			}
			seen[*member.PlayerID] = struct{}{}

			player, err := s.playerRepo.GetByID(ctx, *member.PlayerID)
			if err != nil {
				if errors.Is(err, repositories.ErrPlayerNotFound) {
					continue
				}
				return fmt.Errorf("failed to load player %s: %w", *member.PlayerID, err)
			}
			player.TournamentsPlayed++
			if err := s.playerRepo.UpdateStats(ctx, exec, player); err != nil {
				return fmt.Errorf("failed to persist tournaments_played for player %s: %w", player.ID, err)
			}
		}
	}
	return nil
}

func (s *ratingService) RecordChampion(ctx context.Context, exec repositories.SQLExecutor, champion *models.Team) error {
	for _, member := range champion.Members {
		if member.PlayerID == nil {
			continue
		}
		player, err := s.playerRepo.GetByID(ctx, *member.PlayerID)
		if err != nil {
			if errors.Is(err, repositories.ErrPlayerNotFound) {
				continue
			}
			return fmt.Errorf("failed to load player %s: %w", *member.PlayerID, err)
		}
		if !hasAchievement(player, achievementTourneyWinner) {
			player.Achievements = append(player.Achievements, achievementTourneyWinner)
			if err := s.playerRepo.UpdateStats(ctx, exec, player); err != nil {
				return fmt.Errorf("failed to persist champion achievement for player %s: %w", player.ID, err)
			}
		}
	}
	return nil
}

func (s *ratingService) Leaderboard(ctx context.Context, limit int) ([]*models.Player, error) {
	players, err := s.playerRepo.ListByRating(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load leaderboard: %w", err)
	}
	for _, player := range players {
		player.PasswordHash = ""
	}
	return players, nil
}

func (s *ratingService) grantAchievements(player *models.Player) {
	grant := func(name string) {
		if !hasAchievement(player, name) {
			player.Achievements = append(player.Achievements, name)
		}
	}
	if player.Wins >= 1 {
		grant(achievementFirstWin)
	}
	if player.Wins >= 10 {
		grant(achievementTenWins)
	}
	if player.Rating >= 1500 {
		grant(achievementRating1500)
	}
	if player.Rating >= 2000 {
		grant(achievementGrandChampion)
	}
}

func hasAchievement(player *models.Player, name string) bool {
	for _, a := range player.Achievements {
		if a == name {
			return true
		}
	}
	return false
}
