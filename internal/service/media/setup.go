package media

import (
	"log/slog"
	"time"

	"cutroom/internal/config"
	"cutroom/internal/domain/repositories"
	mediaRepo "cutroom/internal/domain/repositories/media"
	"cutroom/internal/domain/services"
	mediaSvc "cutroom/internal/domain/services/media"
)

// BlobConfig bounds blob deletions: how many run at once and how long each may take
type BlobConfig struct {
	Concurrency int
	Timeout     time.Duration
}

// Services holds the asset-organization services
type Services struct {
	Folders  mediaSvc.FolderService
	Deletion mediaSvc.DeletionService
	Versions mediaSvc.VersionService
}

// Repositories groups the stores the services read and write
type Repositories struct {
	Folders  mediaRepo.FolderRepository
	Assets   mediaRepo.AssetRepository
	Versions mediaRepo.VersionRepository
}

// SetupServices wires the folder, deletion and version services
func SetupServices(
	repos Repositories,
	blobs services.BlobStore,
	txManager repositories.TransactionManager,
	locks repositories.LockManager,
	authorizer services.Authorizer,
	cfg *config.Config,
	logger *slog.Logger,
) *Services {
	blobCfg := BlobConfig{
		Concurrency: cfg.BlobDeleteConcurrency,
		Timeout:     cfg.BlobOpTimeout,
	}
	maxDepth := cfg.MaxFolderDepth
	if maxDepth <= 0 {
		maxDepth = config.DefaultMaxFolderDepth
	}

	return &Services{
		Folders: NewFolderService(
			repos.Folders,
			repos.Assets,
			txManager,
			locks,
			authorizer,
			maxDepth,
			logger.With("service", "folders"),
		),
		Deletion: NewDeletionService(
			repos.Folders,
			repos.Assets,
			repos.Versions,
			blobs,
			txManager,
			locks,
			authorizer,
			blobCfg,
			maxDepth,
			logger.With("service", "deletion"),
		),
		Versions: NewVersionService(
			repos.Folders,
			repos.Assets,
			repos.Versions,
			blobs,
			txManager,
			locks,
			authorizer,
			blobCfg,
			logger.With("service", "versions"),
		),
	}
}
