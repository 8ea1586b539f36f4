package media

import (
	"context"
	"fmt"
	"log/slog"

	models "cutroom/internal/domain/models/media"
	"cutroom/internal/domain/repositories"
	mediaRepo "cutroom/internal/domain/repositories/media"
	"cutroom/internal/domain/services"
	mediaSvc "cutroom/internal/domain/services/media"
)

type deletionService struct {
	folderRepo  mediaRepo.FolderRepository
	assetRepo   mediaRepo.AssetRepository
	versionRepo mediaRepo.VersionRepository
	txManager   repositories.TransactionManager
	locks       repositories.LockManager
	authorizer  services.Authorizer
	purger      *blobPurger
	maxDepth    int
	logger      *slog.Logger
}

// NewDeletionService creates the cascading deletion engine
func NewDeletionService(
	folderRepo mediaRepo.FolderRepository,
	assetRepo mediaRepo.AssetRepository,
	versionRepo mediaRepo.VersionRepository,
	blobs services.BlobStore,
	txManager repositories.TransactionManager,
	locks repositories.LockManager,
	authorizer services.Authorizer,
	blobCfg BlobConfig,
	maxDepth int,
	logger *slog.Logger,
) mediaSvc.DeletionService {
	return &deletionService{
		folderRepo:  folderRepo,
		assetRepo:   assetRepo,
		versionRepo: versionRepo,
		txManager:   txManager,
		locks:       locks,
		authorizer:  authorizer,
		purger:      newBlobPurger(blobs, blobCfg.Concurrency, blobCfg.Timeout, logger),
		maxDepth:    maxDepth,
		logger:      logger,
	}
}

// DeleteFolder removes a folder subtree. Blobs go first, then metadata in one transaction,
// so an interruption can leave metadata pointing at missing blobs but never the reverse.
func (s *deletionService) DeleteFolder(ctx context.Context, actorID, folderID string) (*models.DeletionReport, error) {
	root, err := s.folderRepo.GetByIDOnly(ctx, folderID)
	if err != nil {
		return nil, err
	}
	projectID := root.ProjectID

	if err := s.authorizer.Authorize(ctx, actorID, projectID, services.ActionFolderDelete); err != nil {
		return nil, err
	}

	report := &models.DeletionReport{DeletedFolderID: folderID}

	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		release, err := s.locks.Lock(txCtx, repositories.ProjectLockKey(projectID))
		if err != nil {
			return err
		}
		defer release()

		if _, err := s.folderRepo.GetByID(txCtx, folderID, projectID); err != nil {
			return err
		}

		subtree, err := collectSubtree(txCtx, s.folderRepo, projectID, folderID, s.maxDepth)
		if err != nil {
			return err
		}

		assets, err := s.assetRepo.ListByFolders(txCtx, projectID, subtree)
		if err != nil {
			return err
		}

		refs, err := s.blobRefs(txCtx, assets)
		if err != nil {
			return err
		}

		s.logger.Debug("folder subtree collected",
			"folder_id", folderID,
			"folder_count", len(subtree),
			"asset_count", len(assets),
			"blob_count", len(refs),
		)

		report.BlobOutcomes = s.purger.purge(txCtx, refs)
		report.DeletedBlobCount, report.FailedBlobCount = models.CountDeleted(report.BlobOutcomes)

		assetIDs := make([]string, len(assets))
		for i := range assets {
			assetIDs[i] = assets[i].ID
		}
		deletedAssets, err := s.assetRepo.DeleteByIDs(txCtx, projectID, assetIDs)
		if err != nil {
			return fmt.Errorf("delete assets: %w", err)
		}

		if err := s.folderRepo.Delete(txCtx, folderID, projectID); err != nil {
			return err
		}

		report.DeletedChildFolderCount = len(subtree) - 1
		report.DeletedAssetCount = deletedAssets
		return nil
	})
	if err != nil {
		return nil, err
	}

	if report.BlobOutcomes == nil {
		report.BlobOutcomes = []models.BlobOutcome{}
	}

	s.logger.Info("folder deleted",
		"folder_id", folderID,
		"project_id", projectID,
		"child_folder_count", report.DeletedChildFolderCount,
		"asset_count", report.DeletedAssetCount,
		"blobs_deleted", report.DeletedBlobCount,
		"blobs_failed", report.FailedBlobCount,
		"actor_id", actorID,
	)

	return report, nil
}

// blobRefs lists every blob referenced by the assets and their versions
func (s *deletionService) blobRefs(ctx context.Context, assets []models.Asset) ([]blobRef, error) {
	if len(assets) == 0 {
		return nil, nil
	}

	ids := make([]string, len(assets))
	for i := range assets {
		ids[i] = assets[i].ID
	}
	versions, err := s.versionRepo.ListByAssets(ctx, ids)
	if err != nil {
		return nil, err
	}

	byAsset := make(map[string][]models.Version, len(assets))
	for _, v := range versions {
		byAsset[v.AssetID] = append(byAsset[v.AssetID], v)
	}

	var refs []blobRef
	for i := range assets {
		refs = append(refs, assetBlobRefs(&assets[i], byAsset[assets[i].ID])...)
	}
	return refs, nil
}
