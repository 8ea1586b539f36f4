package media

import (
	"fmt"
	"path"
	"strings"

	"github.com/google/uuid"
)

// versionKeyPrefix is the blob namespace for one version of an asset
func versionKeyPrefix(projectID, assetID string, versionNumber int) string {
	return fmt.Sprintf("projects/%s/assets/%s/v%d", projectID, assetID, versionNumber)
}

// originalKey builds a fresh key for uploaded content, keeping the file extension
func originalKey(projectID, assetID string, versionNumber int, fileName string) string {
	ext := strings.ToLower(path.Ext(path.Base(strings.ReplaceAll(fileName, "\\", "/"))))
	if len(ext) > 16 || strings.ContainsAny(ext, " /") {
		ext = ""
	}
	return path.Join(versionKeyPrefix(projectID, assetID, versionNumber), uuid.NewString()+ext)
}

// thumbnailKey builds a fresh key for a version's thumbnail
func thumbnailKey(projectID, assetID string, versionNumber int) string {
	return path.Join(versionKeyPrefix(projectID, assetID, versionNumber), "thumb-"+uuid.NewString()+".jpg")
}
