package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"
	"github.com/rivalsarena/arena-server/models"
)

var (
	ErrMatchNotFound          = errors.New("match not found")
	ErrMatchTournamentInvalid = errors.New("match tournament conflict or invalid")
	ErrMatchTeamInvalid       = errors.New("match team conflict or invalid")
)

type MatchRepository interface {
	Create(ctx context.Context, exec SQLExecutor, match *models.Match) error
	UpdateBracketLinks(ctx context.Context, exec SQLExecutor, match *models.Match) error
	GetByID(ctx context.Context, id string) (*models.Match, error)
	ListByTournament(ctx context.Context, tournamentID string) ([]*models.Match, error)
	UpdateState(ctx context.Context, exec SQLExecutor, match *models.Match) error
	DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID string) error
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

func (r *postgresMatchRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const matchColumns = `id, tournament_id, section, round, match_index, team_a_id, team_b_id, score_a, score_b, winner_id, status, next_match_id, next_slot, loser_match_id, loser_slot, created_at`

// Create inserts the match without its bracket edges. Edges reference match
// rows that may not exist yet, so bracket persistence runs two passes: insert
// every node, then UpdateBracketLinks on each.
func (r *postgresMatchRepository) Create(ctx context.Context, exec SQLExecutor, match *models.Match) error {
	query := `
		INSERT INTO matches
			(id, tournament_id, section, round, match_index, team_a_id, team_b_id, score_a, score_b, winner_id, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at`

	err := r.getExecutor(exec).QueryRowContext(ctx, query,
		match.ID,
		match.TournamentID,
		match.Section,
		match.Round,
		match.MatchIndex,
		match.TeamAID,
		match.TeamBID,
		match.ScoreA,
		match.ScoreB,
		match.WinnerID,
		match.Status,
	).Scan(&match.CreatedAt)

	return handleMatchError(err)
}

func (r *postgresMatchRepository) UpdateBracketLinks(ctx context.Context, exec SQLExecutor, match *models.Match) error {
	query := `
		UPDATE matches
		SET next_match_id = $1, next_slot = $2, loser_match_id = $3, loser_slot = $4
		WHERE id = $5`

	result, err := r.getExecutor(exec).ExecContext(ctx, query,
		match.NextMatchID,
		match.NextSlot,
		match.LoserMatchID,
		match.LoserSlot,
		match.ID,
	)
	if err != nil {
		return handleMatchError(err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, id string) (*models.Match, error) {
	match := &models.Match{}
	err := r.db.QueryRowContext(ctx, `SELECT `+matchColumns+` FROM matches WHERE id = $1`, id).Scan(
		&match.ID,
		&match.TournamentID,
		&match.Section,
		&match.Round,
		&match.MatchIndex,
		&match.TeamAID,
		&match.TeamBID,
		&match.ScoreA,
		&match.ScoreB,
		&match.WinnerID,
		&match.Status,
		&match.NextMatchID,
		&match.NextSlot,
		&match.LoserMatchID,
		&match.LoserSlot,
		&match.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	return match, nil
}

func (r *postgresMatchRepository) ListByTournament(ctx context.Context, tournamentID string) ([]*models.Match, error) {
	query := `
		SELECT ` + matchColumns + `
		FROM matches
		WHERE tournament_id = $1
		ORDER BY section ASC, round ASC, match_index ASC`

	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	matches := make([]*models.Match, 0)
	for rows.Next() {
		var match models.Match
		if scanErr := rows.Scan(
			&match.ID,
			&match.TournamentID,
			&match.Section,
			&match.Round,
			&match.MatchIndex,
			&match.TeamAID,
			&match.TeamBID,
			&match.ScoreA,
			&match.ScoreB,
			&match.WinnerID,
			&match.Status,
			&match.NextMatchID,
			&match.NextSlot,
			&match.LoserMatchID,
			&match.LoserSlot,
			&match.CreatedAt,
		); scanErr != nil {
			return nil, scanErr
		}
		matches = append(matches, &match)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return matches, nil
}

// UpdateState persists the mutable result fields of one match, including the
// participant slots that advancement fills in and the rerouted loser edge a
// walkover can leave behind.
func (r *postgresMatchRepository) UpdateState(ctx context.Context, exec SQLExecutor, match *models.Match) error {
	query := `
		UPDATE matches
		SET team_a_id = $1, team_b_id = $2, score_a = $3, score_b = $4, winner_id = $5, status = $6,
		    next_match_id = $7, next_slot = $8, loser_match_id = $9, loser_slot = $10
		WHERE id = $11`

	result, err := r.getExecutor(exec).ExecContext(ctx, query,
		match.TeamAID,
		match.TeamBID,
		match.ScoreA,
		match.ScoreB,
		match.WinnerID,
		match.Status,
		match.NextMatchID,
		match.NextSlot,
		match.LoserMatchID,
		match.LoserSlot,
		match.ID,
	)
	if err != nil {
		return handleMatchError(err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID string) error {
	_, err := r.getExecutor(exec).ExecContext(ctx, `DELETE FROM matches WHERE tournament_id = $1`, tournamentID)
	return err
}

func handleMatchError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		if pqErr.Code == "23503" { // foreign_key_violation
			switch pqErr.Constraint {
			case "matches_tournament_id_fkey":
				return ErrMatchTournamentInvalid
			case "matches_team_a_id_fkey", "matches_team_b_id_fkey", "matches_winner_id_fkey":
				return ErrMatchTeamInvalid
			}
		}
	}
	return err
}
