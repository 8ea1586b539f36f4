package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	media "cutroom/internal/domain/models/media"
)

// formatSize renders a byte count like "1.2 GB"; negative deltas keep their sign
func formatSize(n int64) string {
	if n < 0 {
		return "-" + humanize.Bytes(uint64(-n))
	}
	return humanize.Bytes(uint64(n))
}

func formatSizeChange(n int64) string {
	if n > 0 {
		return "+" + formatSize(n)
	}
	return formatSize(n)
}

func formatResolution(attrs media.MediaAttributes) string {
	if attrs.Width == nil || attrs.Height == nil {
		return "-"
	}
	return fmt.Sprintf("%dx%d", *attrs.Width, *attrs.Height)
}

func formatDuration(seconds *float64) string {
	if seconds == nil {
		return "-"
	}
	return (time.Duration(*seconds * float64(time.Second))).Round(time.Millisecond).String()
}

func formatAge(t time.Time, now time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return humanize.RelTime(t, now, "ago", "from now")
}

// treeRows flattens a tree depth-first into indented table rows: name, kind, detail, id
func treeRows(tree *media.Tree) [][]string {
	var rows [][]string
	var walk func(nodes []*media.FolderNode, depth int)
	walk = func(nodes []*media.FolderNode, depth int) {
		for _, n := range nodes {
			indent := strings.Repeat("  ", depth)
			detail := strconv.Itoa(n.ChildCount) + " folders, " + strconv.Itoa(n.AssetCount) + " assets"
			rows = append(rows, []string{indent + n.Name + "/", "folder", detail, n.ID})
			walk(n.Folders, depth+1)
			for _, a := range n.Assets {
				rows = append(rows, assetRow(a, depth+1))
			}
		}
	}
	walk(tree.Folders, 0)
	for _, a := range tree.Assets {
		rows = append(rows, assetRow(a, 0))
	}
	return rows
}

func assetRow(a media.AssetNode, depth int) []string {
	detail := fmt.Sprintf("v%d, %s", a.CurrentVersionNumber, formatSize(a.SizeBytes))
	return []string{strings.Repeat("  ", depth) + a.Name, "asset", detail, a.ID}
}

// versionRows renders a version history with the active version marked
func versionRows(history *media.VersionHistory, now time.Time) [][]string {
	rows := make([][]string, 0, len(history.Versions))
	for _, v := range history.Versions {
		marker := ""
		if v.ID == history.ActiveVersionID {
			marker = "*"
		}
		notes := ""
		if v.ChangeNotes != nil {
			notes = *v.ChangeNotes
		}
		rows = append(rows, []string{
			marker,
			strconv.Itoa(v.VersionNumber),
			formatSize(v.SizeBytes),
			formatResolution(v.MediaAttributes),
			formatDuration(v.DurationSeconds),
			formatAge(v.CreatedAt, now),
			notes,
			v.ID,
		})
	}
	return rows
}

// reportRows summarizes a deletion report, listing only the failed blobs individually
func reportRows(report *media.DeletionReport) [][]string {
	rows := [][]string{
		{"folder", report.DeletedFolderID},
		{"child folders deleted", strconv.Itoa(report.DeletedChildFolderCount)},
		{"assets deleted", strconv.Itoa(report.DeletedAssetCount)},
		{"blobs deleted", strconv.Itoa(report.DeletedBlobCount)},
		{"blobs failed", strconv.Itoa(report.FailedBlobCount)},
	}
	for _, o := range report.BlobOutcomes {
		if !o.Deleted {
			rows = append(rows, []string{"failed " + string(o.Kind), o.Key + ": " + o.Error})
		}
	}
	return rows
}

func formatDurationChange(seconds float64) string {
	d := formatDuration(&seconds)
	if seconds > 0 {
		return "+" + d
	}
	return d
}
