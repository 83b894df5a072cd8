package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"
	"github.com/rivalsarena/arena-server/models"
)

var (
	ErrPlayerNotFound      = errors.New("player not found")
	ErrPlayerUsernameTaken = errors.New("player username already taken")
	ErrPlayerEmailTaken    = errors.New("player email already taken")
)

type PlayerRepository interface {
	Create(ctx context.Context, exec SQLExecutor, player *models.Player) error
	GetByID(ctx context.Context, id string) (*models.Player, error)
	GetByUsername(ctx context.Context, username string) (*models.Player, error)
	GetByEmail(ctx context.Context, email string) (*models.Player, error)
	ListByRating(ctx context.Context, limit int) ([]*models.Player, error)
	UpdateStats(ctx context.Context, exec SQLExecutor, player *models.Player) error
	UpdateAvatarKey(ctx context.Context, id string, avatarKey *string) error
}

type postgresPlayerRepository struct {
	db *sql.DB
}

func NewPostgresPlayerRepository(db *sql.DB) PlayerRepository {
	return &postgresPlayerRepository{db: db}
}

func (r *postgresPlayerRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const playerColumns = `id, username, email, password_hash, role, rivals_level, rating, rank, wins, losses, tournaments_played, achievements, avatar_key, created_at`

func (r *postgresPlayerRepository) Create(ctx context.Context, exec SQLExecutor, player *models.Player) error {
	query := `
		INSERT INTO players
			(id, username, email, password_hash, role, rivals_level, rating, rank, wins, losses, tournaments_played, achievements)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at`

	err := r.getExecutor(exec).QueryRowContext(ctx, query,
		player.ID,
		player.Username,
		player.Email,
		player.PasswordHash,
		player.Role,
		player.RivalsLevel,
		player.Rating,
		player.Rank,
		player.Wins,
		player.Losses,
		player.TournamentsPlayed,
		pq.Array(player.Achievements),
	).Scan(&player.CreatedAt)

	return handlePlayerError(err)
}

func (r *postgresPlayerRepository) GetByID(ctx context.Context, id string) (*models.Player, error) {
	return r.getOne(ctx, `SELECT `+playerColumns+` FROM players WHERE id = $1`, id)
}

func (r *postgresPlayerRepository) GetByUsername(ctx context.Context, username string) (*models.Player, error) {
	return r.getOne(ctx, `SELECT `+playerColumns+` FROM players WHERE username = $1`, username)
}

func (r *postgresPlayerRepository) GetByEmail(ctx context.Context, email string) (*models.Player, error) {
	return r.getOne(ctx, `SELECT `+playerColumns+` FROM players WHERE email = $1`, email)
}

func (r *postgresPlayerRepository) getOne(ctx context.Context, query string, arg interface{}) (*models.Player, error) {
	player := &models.Player{}
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&player.ID,
		&player.Username,
		&player.Email,
		&player.PasswordHash,
		&player.Role,
		&player.RivalsLevel,
		&player.Rating,
		&player.Rank,
		&player.Wins,
		&player.Losses,
		&player.TournamentsPlayed,
		pq.Array(&player.Achievements),
		&player.AvatarKey,
		&player.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlayerNotFound
		}
		return nil, err
	}
	return player, nil
}

// ListByRating returns the leaderboard ordering, best rating first. A limit of
// zero or less returns every player.
func (r *postgresPlayerRepository) ListByRating(ctx context.Context, limit int) ([]*models.Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players ORDER BY rating DESC, wins DESC, username ASC`
	args := []interface{}{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	players := make([]*models.Player, 0)
	for rows.Next() {
		var player models.Player
		if scanErr := rows.Scan(
			&player.ID,
			&player.Username,
			&player.Email,
			&player.PasswordHash,
			&player.Role,
			&player.RivalsLevel,
			&player.Rating,
			&player.Rank,
			&player.Wins,
			&player.Losses,
			&player.TournamentsPlayed,
			pq.Array(&player.Achievements),
			&player.AvatarKey,
			&player.CreatedAt,
		); scanErr != nil {
			return nil, scanErr
		}
		players = append(players, &player)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return players, nil
}

func (r *postgresPlayerRepository) UpdateStats(ctx context.Context, exec SQLExecutor, player *models.Player) error {
	query := `
		UPDATE players
		SET rating = $1, rank = $2, wins = $3, losses = $4, tournaments_played = $5, achievements = $6
		WHERE id = $7`

	result, err := r.getExecutor(exec).ExecContext(ctx, query,
		player.Rating,
		player.Rank,
		player.Wins,
		player.Losses,
		player.TournamentsPlayed,
		pq.Array(player.Achievements),
		player.ID,
	)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}

func (r *postgresPlayerRepository) UpdateAvatarKey(ctx context.Context, id string, avatarKey *string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE players SET avatar_key = $1 WHERE id = $2`, avatarKey, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}

func handlePlayerError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		if pqErr.Code == "23505" { // unique_violation
			switch pqErr.Constraint {
			case "players_username_key":
				return ErrPlayerUsernameTaken
			case "players_email_key":
				return ErrPlayerEmailTaken
			}
		}
	}
	return err
}
