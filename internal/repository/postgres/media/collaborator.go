package media

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"cutroom/internal/domain"
	"cutroom/internal/domain/models"
	mediaRepo "cutroom/internal/domain/repositories/media"
	"cutroom/internal/repository/postgres"
)

// PostgresCollaboratorRepository resolves roles from project ownership and collaborator rows
type PostgresCollaboratorRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
}

// NewCollaboratorRepository creates a new collaborator repository
func NewCollaboratorRepository(config *postgres.RepositoryConfig) mediaRepo.CollaboratorRepository {
	return &PostgresCollaboratorRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// GetRole returns the strongest role the user holds on the project.
// The project owner is always OWNER regardless of collaborator rows.
func (r *PostgresCollaboratorRepository) GetRole(ctx context.Context, projectID, userID string) (models.Role, error) {
	query := fmt.Sprintf(`
		SELECT role FROM (
			SELECT 'OWNER' AS role FROM %s WHERE id = $1 AND owner_id = $2
			UNION ALL
			SELECT role FROM %s WHERE project_id = $1 AND user_id = $2
		) roles
		ORDER BY CASE role
			WHEN 'OWNER' THEN 0
			WHEN 'EDITOR' THEN 1
			WHEN 'REVIEWER' THEN 2
			ELSE 3
		END
		LIMIT 1
	`, r.tables.Projects, r.tables.Collaborators)

	var role string
	executor := postgres.GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, projectID, userID).Scan(&role); err != nil {
		if postgres.IsPgNoRowsError(err) || postgres.IsPgInvalidTextError(err) {
			return "", fmt.Errorf("membership of %s in project %s: %w", userID, projectID, domain.ErrNotFound)
		}
		return "", fmt.Errorf("get collaborator role: %w", err)
	}

	return models.Role(role), nil
}
