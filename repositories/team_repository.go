package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"
	"github.com/rivalsarena/arena-server/models"
)

var (
	ErrTeamNotFound          = errors.New("team not found")
	ErrTeamTournamentInvalid = errors.New("team tournament conflict or invalid")
)

type TeamRepository interface {
	Create(ctx context.Context, exec SQLExecutor, team *models.Team) error
	GetByID(ctx context.Context, id string) (*models.Team, error)
	ListByTournament(ctx context.Context, tournamentID string) ([]*models.Team, error)
	UpdateLogoKey(ctx context.Context, id string, logoKey *string) error
	Delete(ctx context.Context, exec SQLExecutor, id string) error
}

type postgresTeamRepository struct {
	db *sql.DB
}

func NewPostgresTeamRepository(db *sql.DB) TeamRepository {
	return &postgresTeamRepository{db: db}
}

func (r *postgresTeamRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

// Create inserts the team row and its members with the same executor, so the
// whole roster lands in one transaction when exec is a *sql.Tx.
func (r *postgresTeamRepository) Create(ctx context.Context, exec SQLExecutor, team *models.Team) error {
	e := r.getExecutor(exec)
	query := `
		INSERT INTO teams (id, tournament_id, name, seed, skill_level, logo_key)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`

	err := e.QueryRowContext(ctx, query,
		team.ID,
		team.TournamentID,
		team.Name,
		team.Seed,
		team.SkillLevel,
		team.LogoKey,
	).Scan(&team.CreatedAt)
	if err != nil {
		return handleTeamError(err)
	}

	memberQuery := `
		INSERT INTO team_members (id, team_id, username, rivals_level, player_id)
		VALUES ($1, $2, $3, $4, $5)`
	for i := range team.Members {
		member := &team.Members[i]
		member.TeamID = team.ID
		if _, err := e.ExecContext(ctx, memberQuery,
			member.ID,
			member.TeamID,
			member.Username,
			member.RivalsLevel,
			member.PlayerID,
		); err != nil {
			return handleTeamError(err)
		}
	}
	return nil
}

func (r *postgresTeamRepository) GetByID(ctx context.Context, id string) (*models.Team, error) {
	query := `
		SELECT id, tournament_id, name, seed, skill_level, logo_key, created_at
		FROM teams
		WHERE id = $1`

	team := &models.Team{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&team.ID,
		&team.TournamentID,
		&team.Name,
		&team.Seed,
		&team.SkillLevel,
		&team.LogoKey,
		&team.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}

	members, err := r.membersByTeamIDs(ctx, []string{team.ID})
	if err != nil {
		return nil, err
	}
	team.Members = members[team.ID]
	return team, nil
}

func (r *postgresTeamRepository) ListByTournament(ctx context.Context, tournamentID string) ([]*models.Team, error) {
	query := `
		SELECT id, tournament_id, name, seed, skill_level, logo_key, created_at
		FROM teams
		WHERE tournament_id = $1
		ORDER BY seed ASC NULLS LAST, created_at ASC`

	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	teams := make([]*models.Team, 0)
	ids := make([]string, 0)
	for rows.Next() {
		var team models.Team
		if scanErr := rows.Scan(
			&team.ID,
			&team.TournamentID,
			&team.Name,
			&team.Seed,
			&team.SkillLevel,
			&team.LogoKey,
			&team.CreatedAt,
		); scanErr != nil {
			return nil, scanErr
		}
		teams = append(teams, &team)
		ids = append(ids, team.ID)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	if len(teams) == 0 {
		return teams, nil
	}

	members, err := r.membersByTeamIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, team := range teams {
		team.Members = members[team.ID]
	}
	return teams, nil
}

func (r *postgresTeamRepository) membersByTeamIDs(ctx context.Context, teamIDs []string) (map[string][]models.TeamMember, error) {
	query := `
		SELECT id, team_id, username, rivals_level, player_id
		FROM team_members
		WHERE team_id = ANY($1)
		ORDER BY username ASC`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(teamIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byTeam := make(map[string][]models.TeamMember)
	for rows.Next() {
		var member models.TeamMember
		if scanErr := rows.Scan(
			&member.ID,
			&member.TeamID,
			&member.Username,
			&member.RivalsLevel,
			&member.PlayerID,
		); scanErr != nil {
			return nil, scanErr
		}
		byTeam[member.TeamID] = append(byTeam[member.TeamID], member)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return byTeam, nil
}

func (r *postgresTeamRepository) UpdateLogoKey(ctx context.Context, id string, logoKey *string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE teams SET logo_key = $1 WHERE id = $2`, logoKey, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}

// Delete removes the team and lets ON DELETE CASCADE take the members.
func (r *postgresTeamRepository) Delete(ctx context.Context, exec SQLExecutor, id string) error {
	result, err := r.getExecutor(exec).ExecContext(ctx, `DELETE FROM teams WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}

func handleTeamError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		if pqErr.Code == "23503" { // foreign_key_violation
			if pqErr.Constraint == "teams_tournament_id_fkey" {
				return ErrTeamTournamentInvalid
			}
		}
	}
	return err
}
