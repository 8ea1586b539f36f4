package media

import (
	"context"
	"fmt"

	"cutroom/internal/domain"
	models "cutroom/internal/domain/models/media"
	mediaRepo "cutroom/internal/domain/repositories/media"
)

// walkAncestors visits startID and then each ancestor up to the project root.
// It stops early when visit returns false. The walk never trusts acyclicity:
// a revisited folder or a chain longer than maxDepth is an integrity error.
func walkAncestors(
	ctx context.Context,
	folders mediaRepo.FolderRepository,
	projectID, startID string,
	maxDepth int,
	visit func(*models.Folder) bool,
) error {
	visited := make(map[string]bool)
	currentID := startID

	for depth := 0; ; depth++ {
		if depth >= maxDepth {
			return fmt.Errorf("%w: ancestor chain of folder %s exceeds depth %d", domain.ErrIntegrity, startID, maxDepth)
		}
		if visited[currentID] {
			return fmt.Errorf("%w: ancestor chain of folder %s loops at %s", domain.ErrIntegrity, startID, currentID)
		}
		visited[currentID] = true

		folder, err := folders.GetByID(ctx, currentID, projectID)
		if err != nil {
			return err
		}

		if !visit(folder) || folder.ParentID == nil {
			return nil
		}
		currentID = *folder.ParentID
	}
}

// folderDepth counts the folders from the project root down to folderID, inclusive.
// A root-level folder has depth 1.
func folderDepth(
	ctx context.Context,
	folders mediaRepo.FolderRepository,
	projectID, folderID string,
	maxDepth int,
) (int, error) {
	depth := 0
	err := walkAncestors(ctx, folders, projectID, folderID, maxDepth, func(*models.Folder) bool {
		depth++
		return true
	})
	if err != nil {
		return 0, err
	}
	return depth, nil
}

// collectSubtree returns rootID followed by every descendant folder ID, breadth-first.
func collectSubtree(
	ctx context.Context,
	folders mediaRepo.FolderRepository,
	projectID, rootID string,
	maxDepth int,
) ([]string, error) {
	ids, _, err := walkSubtree(ctx, folders, projectID, rootID, maxDepth)
	return ids, err
}

// walkSubtree returns rootID and its descendants breadth-first, plus the number of
// levels below and including rootID. Folders already seen are skipped; more than
// maxDepth levels is an integrity error.
func walkSubtree(
	ctx context.Context,
	folders mediaRepo.FolderRepository,
	projectID, rootID string,
	maxDepth int,
) ([]string, int, error) {
	ids := []string{rootID}
	visited := map[string]bool{rootID: true}
	level := []string{rootID}
	height := 0

	for len(level) > 0 {
		height++
		if height > maxDepth {
			return nil, 0, fmt.Errorf("%w: subtree of folder %s exceeds depth %d", domain.ErrIntegrity, rootID, maxDepth)
		}

		var next []string
		for _, id := range level {
			parentID := id
			children, err := folders.ListChildren(ctx, &parentID, projectID)
			if err != nil {
				return nil, 0, fmt.Errorf("list children of %s: %w", id, err)
			}
			for _, child := range children {
				if visited[child.ID] {
					continue
				}
				visited[child.ID] = true
				ids = append(ids, child.ID)
				next = append(next, child.ID)
			}
		}
		level = next
	}

	return ids, height, nil
}
