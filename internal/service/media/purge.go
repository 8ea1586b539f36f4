package media

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	models "cutroom/internal/domain/models/media"
	"cutroom/internal/domain/services"
)

// blobRef is one blob scheduled for deletion
type blobRef struct {
	Key     string
	AssetID string
	Kind    models.BlobKind
}

// blobPurger deletes blobs concurrently and reports every attempt.
// A failed deletion never stops the others and is never returned as an error.
type blobPurger struct {
	blobs       services.BlobStore
	concurrency int
	timeout     time.Duration
	logger      *slog.Logger
}

func newBlobPurger(blobs services.BlobStore, concurrency int, timeout time.Duration, logger *slog.Logger) *blobPurger {
	if concurrency < 1 {
		concurrency = 1
	}
	return &blobPurger{
		blobs:       blobs,
		concurrency: concurrency,
		timeout:     timeout,
		logger:      logger,
	}
}

// purge attempts every deletion and returns outcomes in the order of refs
func (p *blobPurger) purge(ctx context.Context, refs []blobRef) []models.BlobOutcome {
	outcomes := make([]models.BlobOutcome, len(refs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)

	for i, ref := range refs {
		g.Go(func() error {
			outcome := models.BlobOutcome{
				Key:     ref.Key,
				AssetID: ref.AssetID,
				Kind:    ref.Kind,
			}
			if err := p.deleteOne(gctx, ref.Key); err != nil {
				outcome.Error = err.Error()
				p.logger.Warn("blob purge failed",
					"key", ref.Key,
					"asset_id", ref.AssetID,
					"kind", ref.Kind,
					"error", err,
				)
			} else {
				outcome.Deleted = true
			}
			outcomes[i] = outcome
			return nil
		})
	}
	_ = g.Wait()

	return outcomes
}

func (p *blobPurger) deleteOne(ctx context.Context, key string) error {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}
	return p.blobs.Delete(ctx, key)
}

// assetBlobRefs lists the blobs an asset and its versions reference, without duplicates
func assetBlobRefs(asset *models.Asset, versions []models.Version) []blobRef {
	seen := make(map[string]bool)
	var refs []blobRef

	add := func(key *string, kind models.BlobKind) {
		if key == nil || *key == "" || seen[*key] {
			return
		}
		seen[*key] = true
		refs = append(refs, blobRef{Key: *key, AssetID: asset.ID, Kind: kind})
	}

	add(&asset.CurrentBlobKey, models.BlobKindOriginal)
	add(asset.CurrentThumbnailKey, models.BlobKindThumbnail)
	for i := range versions {
		add(&versions[i].BlobKey, models.BlobKindOriginal)
		add(versions[i].ThumbnailBlobKey, models.BlobKindThumbnail)
	}

	return refs
}

// versionBlobRefs lists the blobs of a single version
func versionBlobRefs(v *models.Version) []blobRef {
	refs := []blobRef{{Key: v.BlobKey, AssetID: v.AssetID, Kind: models.BlobKindOriginal}}
	if v.ThumbnailBlobKey != nil && *v.ThumbnailBlobKey != "" && *v.ThumbnailBlobKey != v.BlobKey {
		refs = append(refs, blobRef{Key: *v.ThumbnailBlobKey, AssetID: v.AssetID, Kind: models.BlobKindThumbnail})
	}
	return refs
}
