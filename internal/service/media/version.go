package media

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"cutroom/internal/domain"
	models "cutroom/internal/domain/models/media"
	"cutroom/internal/domain/repositories"
	mediaRepo "cutroom/internal/domain/repositories/media"
	"cutroom/internal/domain/services"
	mediaSvc "cutroom/internal/domain/services/media"
)

type versionService struct {
	folderRepo  mediaRepo.FolderRepository
	assetRepo   mediaRepo.AssetRepository
	versionRepo mediaRepo.VersionRepository
	blobs       services.BlobStore
	txManager   repositories.TransactionManager
	locks       repositories.LockManager
	authorizer  services.Authorizer
	purger      *blobPurger
	logger      *slog.Logger
}

// NewVersionService creates the asset version ledger
func NewVersionService(
	folderRepo mediaRepo.FolderRepository,
	assetRepo mediaRepo.AssetRepository,
	versionRepo mediaRepo.VersionRepository,
	blobs services.BlobStore,
	txManager repositories.TransactionManager,
	locks repositories.LockManager,
	authorizer services.Authorizer,
	blobCfg BlobConfig,
	logger *slog.Logger,
) mediaSvc.VersionService {
	return &versionService{
		folderRepo:  folderRepo,
		assetRepo:   assetRepo,
		versionRepo: versionRepo,
		blobs:       blobs,
		txManager:   txManager,
		locks:       locks,
		authorizer:  authorizer,
		purger:      newBlobPurger(blobs, blobCfg.Concurrency, blobCfg.Timeout, logger),
		logger:      logger,
	}
}

// UploadAsset creates an asset together with version 1
func (s *versionService) UploadAsset(ctx context.Context, req *mediaSvc.UploadAssetRequest) (*models.Asset, error) {
	if req.FolderID != nil && *req.FolderID == "" {
		req.FolderID = nil
	}
	if err := validateUploadAsset(req); err != nil {
		return nil, err
	}

	if err := s.authorizer.Authorize(ctx, req.ActorID, req.ProjectID, services.ActionVersionCreate); err != nil {
		return nil, err
	}

	now := time.Now()
	asset := &models.Asset{
		ID:        uuid.NewString(),
		ProjectID: req.ProjectID,
		FolderID:  req.FolderID,
		Name:      req.Name,
		CreatedBy: req.ActorID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	var written []blobRef
	var version *models.Version
	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		// Filing into a folder takes the project lock first so a concurrent cascade
		// either sees this asset or runs after it and finds the folder gone
		if req.FolderID != nil {
			releaseProject, err := s.locks.Lock(txCtx, repositories.ProjectLockKey(req.ProjectID))
			if err != nil {
				return err
			}
			defer releaseProject()

			if _, err := s.folderRepo.GetByID(txCtx, *req.FolderID, req.ProjectID); err != nil {
				return fmt.Errorf("asset folder: %w", err)
			}
		}

		release, err := s.locks.Lock(txCtx, repositories.AssetLockKey(asset.ID))
		if err != nil {
			return err
		}
		defer release()

		version, written, err = s.storeContent(txCtx, req.ProjectID, asset.ID, 1, &req.VersionContent)
		if err != nil {
			return err
		}
		version.ChangeNotes = req.ChangeNotes
		version.CreatedBy = req.ActorID
		version.CreatedAt = now

		// The asset row must exist before its first version; the pointer ID is filled in after
		asset.PointTo(version)
		asset.LastVersionNumber = version.VersionNumber
		if err := s.assetRepo.Create(txCtx, asset); err != nil {
			return err
		}
		if err := s.versionRepo.Create(txCtx, version); err != nil {
			return err
		}
		asset.PointTo(version)
		return s.assetRepo.UpdateCurrent(txCtx, asset)
	})
	if err != nil {
		s.discard(ctx, written)
		return nil, err
	}

	s.logger.Info("asset uploaded",
		"asset_id", asset.ID,
		"project_id", asset.ProjectID,
		"folder_id", asset.FolderID,
		"version_id", version.ID,
		"size_bytes", asset.SizeBytes,
		"actor_id", req.ActorID,
	)

	return asset, nil
}

// CreateVersion appends the next version and moves the asset's pointer to it
func (s *versionService) CreateVersion(ctx context.Context, req *mediaSvc.CreateVersionRequest) (*models.Version, error) {
	if err := validateCreateVersion(req); err != nil {
		return nil, err
	}

	asset, err := s.assetRepo.GetByID(ctx, req.AssetID)
	if err != nil {
		return nil, err
	}

	if err := s.authorizer.Authorize(ctx, req.ActorID, asset.ProjectID, services.ActionVersionCreate); err != nil {
		return nil, err
	}

	var written []blobRef
	var version *models.Version
	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		release, err := s.locks.Lock(txCtx, repositories.AssetLockKey(asset.ID))
		if err != nil {
			return err
		}
		defer release()

		// Re-read under the lock
		current, err := s.assetRepo.GetByID(txCtx, asset.ID)
		if err != nil {
			return err
		}

		// Numbers freed by deleteVersion are not reissued
		last, err := s.versionRepo.MaxVersionNumber(txCtx, asset.ID)
		if err != nil {
			return err
		}
		next := max(last, current.LastVersionNumber) + 1

		version, written, err = s.storeContent(txCtx, current.ProjectID, current.ID, next, &req.VersionContent)
		if err != nil {
			return err
		}
		version.ChangeNotes = req.ChangeNotes
		version.CreatedBy = req.ActorID
		version.CreatedAt = time.Now()

		if err := s.versionRepo.Create(txCtx, version); err != nil {
			return err
		}

		current.PointTo(version)
		current.LastVersionNumber = next
		current.UpdatedAt = version.CreatedAt
		if err := s.assetRepo.UpdateCurrent(txCtx, current); err != nil {
			return err
		}
		asset = current
		return nil
	})
	if err != nil {
		s.discard(ctx, written)
		return nil, err
	}

	s.logger.Info("version created",
		"asset_id", asset.ID,
		"version_id", version.ID,
		"version_number", version.VersionNumber,
		"size_bytes", version.SizeBytes,
		"actor_id", req.ActorID,
	)

	return version, nil
}

// ListVersions returns the asset's history with the active and latest versions.
// Numbers of deleted versions leave gaps and are never issued again.
func (s *versionService) ListVersions(ctx context.Context, actorID, assetID string) (*models.VersionHistory, error) {
	asset, err := s.assetRepo.GetByID(ctx, assetID)
	if err != nil {
		return nil, err
	}

	if err := s.authorizer.Authorize(ctx, actorID, asset.ProjectID, services.ActionVersionRead); err != nil {
		return nil, err
	}

	versions, err := s.versionRepo.ListByAsset(ctx, assetID)
	if err != nil {
		return nil, err
	}

	history := &models.VersionHistory{
		AssetID:  assetID,
		Versions: versions,
	}
	for i := range versions {
		if asset.IsActive(&versions[i]) {
			history.ActiveVersionID = versions[i].ID
		}
		if versions[i].VersionNumber > history.LatestVersionNumber {
			history.LatestVersionNumber = versions[i].VersionNumber
		}
	}

	return history, nil
}

// RollbackToVersion points the asset at an existing version. History is left untouched.
func (s *versionService) RollbackToVersion(ctx context.Context, actorID, assetID, versionID string) (*models.Asset, error) {
	asset, err := s.assetRepo.GetByID(ctx, assetID)
	if err != nil {
		return nil, err
	}

	if err := s.authorizer.Authorize(ctx, actorID, asset.ProjectID, services.ActionVersionRollback); err != nil {
		return nil, err
	}

	var fromVersion int
	var target *models.Version
	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		release, err := s.locks.Lock(txCtx, repositories.AssetLockKey(assetID))
		if err != nil {
			return err
		}
		defer release()

		target, err = s.versionRepo.GetByID(txCtx, versionID)
		if err != nil {
			return err
		}
		if target.AssetID != assetID {
			return &domain.NotFoundError{
				Message: fmt.Sprintf("version %s does not belong to asset %s", versionID, assetID),
			}
		}

		current, err := s.assetRepo.GetByID(txCtx, assetID)
		if err != nil {
			return err
		}
		fromVersion = current.CurrentVersionNumber

		current.PointTo(target)
		current.UpdatedAt = time.Now()
		if err := s.assetRepo.UpdateCurrent(txCtx, current); err != nil {
			return err
		}
		asset = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("asset rolled back",
		"asset_id", assetID,
		"from_version", fromVersion,
		"to_version", target.VersionNumber,
		"version_id", target.ID,
		"actor_id", actorID,
	)

	return asset, nil
}

// DeleteVersion deletes a version that is not active: blobs first, then the row
func (s *versionService) DeleteVersion(ctx context.Context, actorID, versionID string) (*models.VersionDeletion, error) {
	version, err := s.versionRepo.GetByID(ctx, versionID)
	if err != nil {
		return nil, err
	}
	asset, err := s.assetRepo.GetByID(ctx, version.AssetID)
	if err != nil {
		return nil, err
	}

	if err := s.authorizer.Authorize(ctx, actorID, asset.ProjectID, services.ActionVersionDelete); err != nil {
		return nil, err
	}

	result := &models.VersionDeletion{
		VersionID:     version.ID,
		AssetID:       version.AssetID,
		VersionNumber: version.VersionNumber,
	}

	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		release, err := s.locks.Lock(txCtx, repositories.AssetLockKey(asset.ID))
		if err != nil {
			return err
		}
		defer release()

		// A concurrent delete or rollback may have landed between the unlocked reads and the lock
		version, err = s.versionRepo.GetByID(txCtx, versionID)
		if err != nil {
			return err
		}
		current, err := s.assetRepo.GetByID(txCtx, version.AssetID)
		if err != nil {
			return err
		}

		if current.IsActive(version) {
			return &domain.ForbiddenError{
				Message: fmt.Sprintf("version %d is the active version of asset %s and cannot be deleted", version.VersionNumber, current.ID),
			}
		}

		var refs []blobRef
		for _, ref := range versionBlobRefs(version) {
			if ref.Key == current.CurrentBlobKey || (current.CurrentThumbnailKey != nil && ref.Key == *current.CurrentThumbnailKey) {
				continue
			}
			refs = append(refs, ref)
		}
		result.BlobOutcomes = s.purger.purge(txCtx, refs)
		result.DeletedBlobCount, result.FailedBlobCount = models.CountDeleted(result.BlobOutcomes)

		return s.versionRepo.Delete(txCtx, version.ID)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("version deleted",
		"asset_id", result.AssetID,
		"version_id", result.VersionID,
		"version_number", result.VersionNumber,
		"blobs_deleted", result.DeletedBlobCount,
		"blobs_failed", result.FailedBlobCount,
		"actor_id", actorID,
	)

	return result, nil
}

// CompareVersions describes how version B differs from version A of the same asset
func (s *versionService) CompareVersions(ctx context.Context, actorID, versionIDA, versionIDB string) (*models.VersionComparison, error) {
	a, err := s.versionRepo.GetByID(ctx, versionIDA)
	if err != nil {
		return nil, err
	}
	b, err := s.versionRepo.GetByID(ctx, versionIDB)
	if err != nil {
		return nil, err
	}

	asset, err := s.assetRepo.GetByID(ctx, a.AssetID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizer.Authorize(ctx, actorID, asset.ProjectID, services.ActionVersionRead); err != nil {
		return nil, err
	}

	if a.AssetID != b.AssetID {
		return nil, &domain.ForbiddenError{Message: "versions belong to different assets"}
	}

	return models.Compare(a, b), nil
}

// storeContent writes a version's blobs and returns the unsaved version plus the keys written
func (s *versionService) storeContent(
	ctx context.Context,
	projectID, assetID string,
	versionNumber int,
	content *mediaSvc.VersionContent,
) (*models.Version, []blobRef, error) {
	var written []blobRef

	key := originalKey(projectID, assetID, versionNumber, content.FileName)
	obj, err := s.blobs.Put(ctx, key, content.Content)
	if err != nil {
		return nil, written, fmt.Errorf("store version content: %w", err)
	}
	written = append(written, blobRef{Key: obj.Key, AssetID: assetID, Kind: models.BlobKindOriginal})

	version := &models.Version{
		AssetID:         assetID,
		VersionNumber:   versionNumber,
		BlobKey:         obj.Key,
		SizeBytes:       obj.SizeBytes,
		MediaAttributes: content.Media,
	}

	if content.Thumbnail != nil {
		thumb, err := s.blobs.Put(ctx, thumbnailKey(projectID, assetID, versionNumber), content.Thumbnail)
		if err != nil {
			return nil, written, fmt.Errorf("store version thumbnail: %w", err)
		}
		written = append(written, blobRef{Key: thumb.Key, AssetID: assetID, Kind: models.BlobKindThumbnail})
		version.ThumbnailBlobKey = &thumb.Key
	}

	return version, written, nil
}

// discard removes blobs written by a failed mutation; the caller's context may already be done
func (s *versionService) discard(ctx context.Context, refs []blobRef) {
	if len(refs) == 0 {
		return
	}
	outcomes := s.purger.purge(context.WithoutCancel(ctx), refs)
	if _, failed := models.CountDeleted(outcomes); failed > 0 {
		s.logger.Warn("orphaned blobs left after failed write", "failed_count", failed)
	}
}
