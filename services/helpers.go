package services

import (
	"fmt"
	"strings"

	"github.com/rivalsarena/arena-server/models"
	"github.com/rivalsarena/arena-server/storage"
)

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func isValidStatusTransition(current, next models.TournamentStatus) bool {
	if current == next {
		return true
	}
	allowedTransitions := map[models.TournamentStatus][]models.TournamentStatus{
		models.StatusDraft:     {models.StatusOpen},
		models.StatusOpen:      {models.StatusActive},
		models.StatusActive:    {models.StatusCompleted},
		models.StatusCompleted: {},
	}
	for _, allowed := range allowedTransitions[current] {
		if next == allowed {
			return true
		}
	}
	return false
}

func populateTournamentLogoURL(tournament *models.Tournament, uploader storage.FileUploader) {
	if tournament != nil && tournament.LogoKey != nil && *tournament.LogoKey != "" && uploader != nil {
		if url := uploader.GetPublicURL(*tournament.LogoKey); url != "" {
			tournament.LogoURL = &url
		}
	}
}

func populateTeamLogoURL(team *models.Team, uploader storage.FileUploader) {
	if team != nil && team.LogoKey != nil && *team.LogoKey != "" && uploader != nil {
		if url := uploader.GetPublicURL(*team.LogoKey); url != "" {
			team.LogoURL = &url
		}
	}
}

func populatePlayerAvatarURL(player *models.Player, uploader storage.FileUploader) {
	if player == nil {
		return
	}
	player.PasswordHash = ""
	if player.AvatarKey != nil && *player.AvatarKey != "" && uploader != nil {
		if url := uploader.GetPublicURL(*player.AvatarKey); url != "" {
			player.AvatarURL = &url
		}
	}
}

func GetExtensionFromContentType(contentType string) (string, error) {
	switch contentType {
	case "image/jpeg", "image/jpg":
		return ".jpg", nil
	case "image/png":
		return ".png", nil
	case "image/gif":
		return ".gif", nil
	case "image/webp":
		return ".webp", nil
	default:
		return "", fmt.Errorf("could not determine file extension from content type: %q", contentType)
	}
}

// teamDisplayName resolves a nullable team id against the loaded team list.
func teamDisplayName(teams []*models.Team, teamID *string) string {
	if teamID == nil {
		return "TBD"
	}
	for _, team := range teams {
		if team.ID == *teamID {
			return team.Name
		}
	}
	return strings.TrimSpace(*teamID)
}
