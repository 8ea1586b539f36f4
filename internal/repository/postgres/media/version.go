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

const versionColumns = `id, asset_id, version_number, blob_key, thumbnail_blob_key, size_bytes,
	mime_type, width, height, duration_seconds, change_notes, created_by, created_at`

// PostgresVersionRepository implements the VersionRepository interface
type PostgresVersionRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
}

// NewVersionRepository creates a new version repository
func NewVersionRepository(config *postgres.RepositoryConfig) mediaRepo.VersionRepository {
	return &PostgresVersionRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

func scanVersion(row pgx.Row) (*models.Version, error) {
	var v models.Version
	err := row.Scan(
		&v.ID,
		&v.AssetID,
		&v.VersionNumber,
		&v.BlobKey,
		&v.ThumbnailBlobKey,
		&v.SizeBytes,
		&v.MimeType,
		&v.Width,
		&v.Height,
		&v.DurationSeconds,
		&v.ChangeNotes,
		&v.CreatedBy,
		&v.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func collectVersions(rows pgx.Rows) ([]models.Version, error) {
	defer rows.Close()

	versions := []models.Version{}
	for rows.Next() {
		v, err := scanVersion(rows)
		if err != nil {
			return nil, fmt.Errorf("scan version: %w", err)
		}
		versions = append(versions, *v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate versions: %w", err)
	}
	return versions, nil
}

// Create inserts a version; the (asset_id, version_number) unique key backs up the per-asset lock
func (r *PostgresVersionRepository) Create(ctx context.Context, v *models.Version) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (asset_id, version_number, blob_key, thumbnail_blob_key, size_bytes,
			mime_type, width, height, duration_seconds, change_notes, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at
	`, r.tables.Versions)

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		v.AssetID,
		v.VersionNumber,
		v.BlobKey,
		v.ThumbnailBlobKey,
		v.SizeBytes,
		v.MimeType,
		v.Width,
		v.Height,
		v.DurationSeconds,
		v.ChangeNotes,
		v.CreatedBy,
		v.CreatedAt,
	).Scan(&v.ID, &v.CreatedAt)
	if err != nil {
		if postgres.IsPgDuplicateError(err) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("version %d of asset %s already exists", v.VersionNumber, v.AssetID),
				ResourceType: "version",
			}
		}
		if postgres.IsPgForeignKeyError(err) {
			return fmt.Errorf("asset %s: %w", v.AssetID, domain.ErrNotFound)
		}
		return fmt.Errorf("create version: %w", err)
	}
	return nil
}

// GetByID retrieves a version by ID
func (r *PostgresVersionRepository) GetByID(ctx context.Context, id string) (*models.Version, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, versionColumns, r.tables.Versions)

	executor := postgres.GetExecutor(ctx, r.pool)
	v, err := scanVersion(executor.QueryRow(ctx, query, id))
	if err != nil {
		if postgres.IsPgNoRowsError(err) || postgres.IsPgInvalidTextError(err) {
			return nil, fmt.Errorf("version %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get version: %w", err)
	}
	return v, nil
}

// ListByAsset lists an asset's versions ordered by version number
func (r *PostgresVersionRepository) ListByAsset(ctx context.Context, assetID string) ([]models.Version, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE asset_id = $1
		ORDER BY version_number ASC
	`, versionColumns, r.tables.Versions)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, assetID)
	if err != nil {
		return nil, fmt.Errorf("list versions: %w", err)
	}
	return collectVersions(rows)
}

// ListByAssets lists versions of several assets
func (r *PostgresVersionRepository) ListByAssets(ctx context.Context, assetIDs []string) ([]models.Version, error) {
	if len(assetIDs) == 0 {
		return []models.Version{}, nil
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE asset_id = ANY($1::uuid[])
		ORDER BY asset_id, version_number ASC
	`, versionColumns, r.tables.Versions)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, assetIDs)
	if err != nil {
		return nil, fmt.Errorf("list versions by assets: %w", err)
	}
	return collectVersions(rows)
}

// MaxVersionNumber returns the highest version number for an asset, 0 if none
func (r *PostgresVersionRepository) MaxVersionNumber(ctx context.Context, assetID string) (int, error) {
	query := fmt.Sprintf(`SELECT COALESCE(MAX(version_number), 0) FROM %s WHERE asset_id = $1`, r.tables.Versions)

	var max int
	executor := postgres.GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, assetID).Scan(&max); err != nil {
		return 0, fmt.Errorf("max version number: %w", err)
	}
	return max, nil
}

// Delete deletes a version
func (r *PostgresVersionRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.tables.Versions)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete version: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("version %s: %w", id, domain.ErrNotFound)
	}
	return nil
}
