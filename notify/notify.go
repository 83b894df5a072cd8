package notify

import (
	"context"

	"github.com/rivalsarena/arena-server/models"
)

// Notifier publishes tournament lifecycle announcements to an external
// channel. Implementations must be safe for concurrent use; callers treat
// delivery as best effort and only log failures.
type Notifier interface {
	TournamentCreated(ctx context.Context, tournament *models.Tournament) error
	MatchCompleted(ctx context.Context, tournament *models.Tournament, match *models.Match, winnerName, loserName string) error
	ChampionCrowned(ctx context.Context, tournament *models.Tournament, champion *models.Team) error
}

// NopNotifier is used when no webhook is configured.
type NopNotifier struct{}

func (NopNotifier) TournamentCreated(context.Context, *models.Tournament) error {
	return nil
}

func (NopNotifier) MatchCompleted(context.Context, *models.Tournament, *models.Match, string, string) error {
	return nil
}

func (NopNotifier) ChampionCrowned(context.Context, *models.Tournament, *models.Team) error {
	return nil
}
