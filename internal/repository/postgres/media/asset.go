package media

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"cutroom/internal/domain"
	models "cutroom/internal/domain/models/media"
	mediaRepo "cutroom/internal/domain/repositories/media"
	"cutroom/internal/repository/postgres"
)

const assetColumns = `id, project_id, folder_id, name,
	COALESCE(current_version_id::text, ''), current_version_number, last_version_number, current_blob_key, current_thumbnail_key,
	size_bytes, mime_type, width, height, duration_seconds, created_by, created_at, updated_at`

// PostgresAssetRepository implements the AssetRepository interface
type PostgresAssetRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
}

// NewAssetRepository creates a new asset repository
func NewAssetRepository(config *postgres.RepositoryConfig) mediaRepo.AssetRepository {
	return &PostgresAssetRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

func scanAsset(row pgx.Row) (*models.Asset, error) {
	var a models.Asset
	err := row.Scan(
		&a.ID,
		&a.ProjectID,
		&a.FolderID,
		&a.Name,
		&a.CurrentVersionID,
		&a.CurrentVersionNumber,
		&a.LastVersionNumber,
		&a.CurrentBlobKey,
		&a.CurrentThumbnailKey,
		&a.SizeBytes,
		&a.MimeType,
		&a.Width,
		&a.Height,
		&a.DurationSeconds,
		&a.CreatedBy,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func collectAssets(rows pgx.Rows) ([]models.Asset, error) {
	defer rows.Close()

	assets := []models.Asset{}
	for rows.Next() {
		a, err := scanAsset(rows)
		if err != nil {
			return nil, fmt.Errorf("scan asset: %w", err)
		}
		assets = append(assets, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate assets: %w", err)
	}
	return assets, nil
}

func nullableID(id string) *string {
	if id == "" {
		return nil
	}
	return &id
}

// Create inserts an asset; ID must be set by the caller
func (r *PostgresAssetRepository) Create(ctx context.Context, a *models.Asset) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, project_id, folder_id, name, current_version_id, current_version_number,
			last_version_number, current_blob_key, current_thumbnail_key, size_bytes, mime_type, width, height,
			duration_seconds, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`, r.tables.Assets)

	executor := postgres.GetExecutor(ctx, r.pool)
	_, err := executor.Exec(ctx, query,
		a.ID,
		a.ProjectID,
		a.FolderID,
		a.Name,
		nullableID(a.CurrentVersionID),
		a.CurrentVersionNumber,
		a.LastVersionNumber,
		a.CurrentBlobKey,
		a.CurrentThumbnailKey,
		a.SizeBytes,
		a.MimeType,
		a.Width,
		a.Height,
		a.DurationSeconds,
		a.CreatedBy,
		a.CreatedAt,
		a.UpdatedAt,
	)
	if err != nil {
		if postgres.IsPgForeignKeyError(err) {
			return fmt.Errorf("asset folder or project: %w", domain.ErrNotFound)
		}
		return fmt.Errorf("create asset: %w", err)
	}
	return nil
}

// GetByID retrieves an asset by ID
func (r *PostgresAssetRepository) GetByID(ctx context.Context, id string) (*models.Asset, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, assetColumns, r.tables.Assets)

	executor := postgres.GetExecutor(ctx, r.pool)
	a, err := scanAsset(executor.QueryRow(ctx, query, id))
	if err != nil {
		if postgres.IsPgNoRowsError(err) || postgres.IsPgInvalidTextError(err) {
			return nil, fmt.Errorf("asset %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get asset: %w", err)
	}
	return a, nil
}

// UpdateCurrent writes the current-version pointer fields in one statement.
// The last issued version number only ever moves forward.
func (r *PostgresAssetRepository) UpdateCurrent(ctx context.Context, a *models.Asset) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET current_version_id = $1, current_version_number = $2, current_blob_key = $3,
			current_thumbnail_key = $4, size_bytes = $5, mime_type = $6, width = $7, height = $8,
			duration_seconds = $9, updated_at = $10, last_version_number = GREATEST(last_version_number, $11)
		WHERE id = $12
	`, r.tables.Assets)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query,
		nullableID(a.CurrentVersionID),
		a.CurrentVersionNumber,
		a.CurrentBlobKey,
		a.CurrentThumbnailKey,
		a.SizeBytes,
		a.MimeType,
		a.Width,
		a.Height,
		a.DurationSeconds,
		a.UpdatedAt,
		a.LastVersionNumber,
		a.ID,
	)
	if err != nil {
		return fmt.Errorf("update asset pointer: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("asset %s: %w", a.ID, domain.ErrNotFound)
	}
	return nil
}

// ListByFolders lists assets filed in any of folderIDs
func (r *PostgresAssetRepository) ListByFolders(ctx context.Context, projectID string, folderIDs []string) ([]models.Asset, error) {
	if len(folderIDs) == 0 {
		return []models.Asset{}, nil
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE project_id = $1 AND folder_id = ANY($2::uuid[])
		ORDER BY created_at ASC
	`, assetColumns, r.tables.Assets)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, projectID, folderIDs)
	if err != nil {
		return nil, fmt.Errorf("list assets by folders: %w", err)
	}
	return collectAssets(rows)
}

// GetAllByProject lists every asset in a project
func (r *PostgresAssetRepository) GetAllByProject(ctx context.Context, projectID string) ([]models.Asset, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE project_id = $1
		ORDER BY name ASC
	`, assetColumns, r.tables.Assets)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("get all assets: %w", err)
	}
	return collectAssets(rows)
}

// CountByFolder counts assets filed directly in a folder
func (r *PostgresAssetRepository) CountByFolder(ctx context.Context, folderID string) (int, error) {
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE folder_id = $1`, r.tables.Assets)

	var count int
	executor := postgres.GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, folderID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count assets: %w", err)
	}
	return count, nil
}

// DeleteByIDs deletes assets; asset_versions rows cascade
func (r *PostgresAssetRepository) DeleteByIDs(ctx context.Context, projectID string, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	query := fmt.Sprintf(`
		DELETE FROM %s
		WHERE project_id = $1 AND id = ANY($2::uuid[])
	`, r.tables.Assets)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, projectID, ids)
	if err != nil {
		return 0, fmt.Errorf("delete assets: %w", err)
	}
	return int(result.RowsAffected()), nil
}
