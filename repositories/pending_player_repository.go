package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"
	"github.com/rivalsarena/arena-server/models"
)

var (
	ErrPendingPlayerNotFound          = errors.New("pending player not found")
	ErrPendingPlayerAlreadyRegistered = errors.New("player already registered for this tournament")
	ErrPendingPlayerTournamentInvalid = errors.New("pending player tournament conflict or invalid")
)

type PendingPlayerRepository interface {
	Create(ctx context.Context, exec SQLExecutor, pending *models.PendingPlayer) error
	ListByTournament(ctx context.Context, tournamentID string) ([]*models.PendingPlayer, error)
	Delete(ctx context.Context, id string) error
	DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID string) error
}

type postgresPendingPlayerRepository struct {
	db *sql.DB
}

func NewPostgresPendingPlayerRepository(db *sql.DB) PendingPlayerRepository {
	return &postgresPendingPlayerRepository{db: db}
}

func (r *postgresPendingPlayerRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresPendingPlayerRepository) Create(ctx context.Context, exec SQLExecutor, pending *models.PendingPlayer) error {
	query := `
		INSERT INTO pending_players (id, tournament_id, username, rivals_level, player_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`

	err := r.getExecutor(exec).QueryRowContext(ctx, query,
		pending.ID,
		pending.TournamentID,
		pending.Username,
		pending.RivalsLevel,
		pending.PlayerID,
	).Scan(&pending.CreatedAt)

	return handlePendingPlayerError(err)
}

func (r *postgresPendingPlayerRepository) ListByTournament(ctx context.Context, tournamentID string) ([]*models.PendingPlayer, error) {
	query := `
		SELECT id, tournament_id, username, rivals_level, player_id, created_at
		FROM pending_players
		WHERE tournament_id = $1
		ORDER BY created_at ASC`

	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	pending := make([]*models.PendingPlayer, 0)
	for rows.Next() {
		var p models.PendingPlayer
		if scanErr := rows.Scan(
			&p.ID,
			&p.TournamentID,
			&p.Username,
			&p.RivalsLevel,
			&p.PlayerID,
			&p.CreatedAt,
		); scanErr != nil {
			return nil, scanErr
		}
		pending = append(pending, &p)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return pending, nil
}

func (r *postgresPendingPlayerRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM pending_players WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrPendingPlayerNotFound)
}

// DeleteByTournament clears the signup pool, which happens inside the
// tournament start transaction once teams are formed.
func (r *postgresPendingPlayerRepository) DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID string) error {
	_, err := r.getExecutor(exec).ExecContext(ctx, `DELETE FROM pending_players WHERE tournament_id = $1`, tournamentID)
	return err
}

func handlePendingPlayerError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Code {
		case "23505": // unique_violation
			if pqErr.Constraint == "pending_players_tournament_id_username_key" {
				return ErrPendingPlayerAlreadyRegistered
			}
		case "23503": // foreign_key_violation
			if pqErr.Constraint == "pending_players_tournament_id_fkey" {
				return ErrPendingPlayerTournamentInvalid
			}
		}
	}
	return err
}
