package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rivalsarena/arena-server/models"
	"github.com/rivalsarena/arena-server/repositories"
	"github.com/rivalsarena/arena-server/utils"
)

const minPasswordLength = 8

type RegisterInput struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	RivalsLevel int    `json:"rivals_level"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*models.Player, error)
	Login(ctx context.Context, input LoginInput) (*models.Player, error)
}

type authService struct {
	playerRepo repositories.PlayerRepository
	rating     RatingService
}

func NewAuthService(playerRepo repositories.PlayerRepository, rating RatingService) AuthService {
	return &authService{
		playerRepo: playerRepo,
		rating:     rating,
	}
}

func (s *authService) Register(ctx context.Context, input RegisterInput) (*models.Player, error) {
	username := strings.TrimSpace(input.Username)
	if username == "" {
		return nil, ErrUsernameRequired
	}
	if len(input.Password) < minPasswordLength {
		return nil, ErrPasswordTooShort
	}
	if input.RivalsLevel < 1 || input.RivalsLevel > 500 {
		return nil, ErrInvalidRivalsLevel
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))
	if !utils.IsValidEmail(email) {
		return nil, ErrInvalidEmail
	}

	hash, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	player := &models.Player{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         models.RolePlayer,
		RivalsLevel:  input.RivalsLevel,
		Rating:       models.DefaultRating,
		Rank:         s.rating.RankForRating(models.DefaultRating),
		Achievements: []string{},
	}

	if err := s.playerRepo.Create(ctx, nil, player); err != nil {
		switch {
		case errors.Is(err, repositories.ErrPlayerUsernameTaken):
			return nil, ErrPlayerUsernameConflict
		case errors.Is(err, repositories.ErrPlayerEmailTaken):
			return nil, ErrPlayerEmailConflict
		}
		return nil, fmt.Errorf("failed to create player: %w", err)
	}

	player.PasswordHash = ""
	return player, nil
}

func (s *authService) Login(ctx context.Context, input LoginInput) (*models.Player, error) {
	player, err := s.playerRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(input.Email)))
	if err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find player by email: %w", err)
	}

	if !utils.CheckPasswordHash(input.Password, player.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	player.PasswordHash = ""
	return player, nil
}
