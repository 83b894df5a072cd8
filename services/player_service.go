package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/rivalsarena/arena-server/models"
	"github.com/rivalsarena/arena-server/repositories"
	"github.com/rivalsarena/arena-server/storage"
)

type PlayerService interface {
	GetByID(ctx context.Context, id string) (*models.Player, error)
	GetByUsername(ctx context.Context, username string) (*models.Player, error)
	UploadAvatar(ctx context.Context, playerID string, file io.Reader, contentType string) (*models.Player, error)
}

type playerService struct {
	playerRepo repositories.PlayerRepository
	uploader   storage.FileUploader
	logger     *slog.Logger
}

func NewPlayerService(playerRepo repositories.PlayerRepository, uploader storage.FileUploader, logger *slog.Logger) PlayerService {
	return &playerService{
		playerRepo: playerRepo,
		uploader:   uploader,
		logger:     logger,
	}
}

func (s *playerService) GetByID(ctx context.Context, id string) (*models.Player, error) {
	player, err := s.playerRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to get player %s: %w", id, err)
	}
	populatePlayerAvatarURL(player, s.uploader)
	return player, nil
}

func (s *playerService) GetByUsername(ctx context.Context, username string) (*models.Player, error) {
	player, err := s.playerRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to get player %q: %w", username, err)
	}
	populatePlayerAvatarURL(player, s.uploader)
	return player, nil
}

func (s *playerService) UploadAvatar(ctx context.Context, playerID string, file io.Reader, contentType string) (*models.Player, error) {
	if s.uploader == nil {
		return nil, ErrUploadsDisabled
	}

	player, err := s.playerRepo.GetByID(ctx, playerID)
	if err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to get player %s: %w", playerID, err)
	}

	ext, err := GetExtensionFromContentType(contentType)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidationFailed, err)
	}

	oldKey := player.AvatarKey
	newKey := fmt.Sprintf("avatars/%s%s", player.ID, ext)

	if _, err := s.uploader.Upload(ctx, newKey, contentType, file); err != nil {
		return nil, fmt.Errorf("failed to upload avatar: %w", err)
	}

	if err := s.playerRepo.UpdateAvatarKey(ctx, player.ID, &newKey); err != nil {
		return nil, fmt.Errorf("failed to save avatar key: %w", err)
	}
	player.AvatarKey = &newKey

	if oldKey != nil && *oldKey != newKey {
		if delErr := s.uploader.Delete(ctx, *oldKey); delErr != nil {
			s.logger.WarnContext(ctx, "failed to delete previous avatar",
				slog.String("player_id", player.ID),
				slog.String("key", *oldKey),
				slog.Any("error", delErr))
		}
	}

	populatePlayerAvatarURL(player, s.uploader)
	return player, nil
}
