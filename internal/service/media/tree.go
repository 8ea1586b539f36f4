package media

import (
	"sort"

	models "cutroom/internal/domain/models/media"
)

// buildTree nests folders and assets in O(n).
// A folder whose parent is not in the set is left out together with everything below it;
// the number of folders left out is returned.
func buildTree(folders []models.Folder, assets []models.Asset) (*models.Tree, int) {
	folderMap := make(map[string]*models.FolderNode, len(folders))
	var roots []*models.FolderNode

	// First pass: create all folder nodes
	for _, folder := range folders {
		folderMap[folder.ID] = &models.FolderNode{
			ID:          folder.ID,
			Name:        folder.Name,
			ParentID:    folder.ParentID,
			Description: folder.Description,
			CreatedAt:   folder.CreatedAt,
			Folders:     []*models.FolderNode{},
			Assets:      []models.AssetNode{},
		}
	}

	// Second pass: nest folders under their parents
	for _, folder := range folders {
		node := folderMap[folder.ID]
		if folder.ParentID == nil {
			roots = append(roots, node)
			continue
		}
		if parent, exists := folderMap[*folder.ParentID]; exists && parent != node {
			parent.Folders = append(parent.Folders, node)
		}
	}

	// Third pass: file assets
	rootAssets := []models.AssetNode{}
	for _, asset := range assets {
		assetNode := models.AssetNode{
			ID:                   asset.ID,
			Name:                 asset.Name,
			FolderID:             asset.FolderID,
			CurrentVersionNumber: asset.CurrentVersionNumber,
			SizeBytes:            asset.SizeBytes,
			MimeType:             asset.MimeType,
			UpdatedAt:            asset.UpdatedAt,
		}
		if asset.FolderID == nil {
			rootAssets = append(rootAssets, assetNode)
			continue
		}
		if parent, exists := folderMap[*asset.FolderID]; exists {
			parent.Assets = append(parent.Assets, assetNode)
		}
	}

	// Only nodes reachable from a root are returned; a node in a parent loop never is
	reachable := 0
	stack := append([]*models.FolderNode(nil), roots...)
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		reachable++

		node.ChildCount = len(node.Folders)
		node.AssetCount = len(node.Assets)
		sortFolderNodes(node.Folders)
		sortAssetNodes(node.Assets)
		stack = append(stack, node.Folders...)
	}

	sortFolderNodes(roots)
	sortAssetNodes(rootAssets)
	if roots == nil {
		roots = []*models.FolderNode{}
	}

	return &models.Tree{Folders: roots, Assets: rootAssets}, len(folders) - reachable
}

func sortFolderNodes(nodes []*models.FolderNode) {
	sort.SliceStable(nodes, func(i, j int) bool { return nodes[i].Name < nodes[j].Name })
}

func sortAssetNodes(nodes []models.AssetNode) {
	sort.SliceStable(nodes, func(i, j int) bool {
		if nodes[i].Name != nodes[j].Name {
			return nodes[i].Name < nodes[j].Name
		}
		return nodes[i].ID < nodes[j].ID
	})
}
