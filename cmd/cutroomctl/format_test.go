package main

import (
	"reflect"
	"strings"
	"testing"
	"time"

	media "cutroom/internal/domain/models/media"
)

func strPtr(s string) *string { return &s }

func TestFormatSize(t *testing.T) {
	tests := []struct {
		name   string
		n      int64
		size   string
		change string
	}{
		{"zero", 0, "0 B", "0 B"},
		{"growth", 5, "5 B", "+5 B"},
		{"shrink", -5, "-5 B", "-5 B"},
		{"megabytes", 1_500_000, "1.5 MB", "+1.5 MB"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatSize(tt.n); got != tt.size {
				t.Errorf("formatSize(%d) = %q, want %q", tt.n, got, tt.size)
			}
			if got := formatSizeChange(tt.n); got != tt.change {
				t.Errorf("formatSizeChange(%d) = %q, want %q", tt.n, got, tt.change)
			}
		})
	}
}

func TestFormatMediaAttributes(t *testing.T) {
	w, h := 1920, 1080
	if got := formatResolution(media.MediaAttributes{Width: &w, Height: &h}); got != "1920x1080" {
		t.Errorf("formatResolution = %q", got)
	}
	if got := formatResolution(media.MediaAttributes{Width: &w}); got != "-" {
		t.Errorf("formatResolution without height = %q, want -", got)
	}

	d := 2.5
	if got := formatDuration(&d); got != "2.5s" {
		t.Errorf("formatDuration = %q, want 2.5s", got)
	}
	if got := formatDuration(nil); got != "-" {
		t.Errorf("formatDuration(nil) = %q, want -", got)
	}
	if got := formatDurationChange(2.5); got != "+2.5s" {
		t.Errorf("formatDurationChange(2.5) = %q", got)
	}
	if got := formatDurationChange(-1.5); got != "-1.5s" {
		t.Errorf("formatDurationChange(-1.5) = %q", got)
	}
}

func TestTreeRows(t *testing.T) {
	a := "a"
	tree := &media.Tree{
		Folders: []*media.FolderNode{{
			ID: "a", Name: "Dailies", ChildCount: 1, AssetCount: 1,
			Folders: []*media.FolderNode{{ID: "b", Name: "Day 1", ParentID: &a}},
			Assets:  []media.AssetNode{{ID: "x", Name: "take1.mov", FolderID: &a, CurrentVersionNumber: 2, SizeBytes: 5}},
		}},
		Assets: []media.AssetNode{{ID: "y", Name: "poster.png", CurrentVersionNumber: 1}},
	}

	want := [][]string{
		{"Dailies/", "folder", "1 folders, 1 assets", "a"},
		{"  Day 1/", "folder", "0 folders, 0 assets", "b"},
		{"  take1.mov", "asset", "v2, 5 B", "x"},
		{"poster.png", "asset", "v1, 0 B", "y"},
	}
	if got := treeRows(tree); !reflect.DeepEqual(got, want) {
		t.Errorf("treeRows =\n%v\nwant\n%v", got, want)
	}

	if got := treeRows(&media.Tree{}); len(got) != 0 {
		t.Errorf("treeRows(empty) = %v, want no rows", got)
	}
}

func TestVersionRows(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	history := &media.VersionHistory{
		AssetID: "asset-1",
		Versions: []media.Version{
			{ID: "v-1", VersionNumber: 1, SizeBytes: 5, CreatedAt: now.Add(-2 * time.Hour)},
			{ID: "v-2", VersionNumber: 2, SizeBytes: 7, ChangeNotes: strPtr("color pass")},
		},
		ActiveVersionID:     "v-1",
		LatestVersionNumber: 2,
	}

	rows := versionRows(history, now)
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if rows[0][0] != "*" || rows[1][0] != "" {
		t.Errorf("active marker = %q/%q, want only the first row marked", rows[0][0], rows[1][0])
	}
	if rows[0][5] != "2 hours ago" {
		t.Errorf("age = %q, want 2 hours ago", rows[0][5])
	}
	if rows[1][5] != "-" {
		t.Errorf("age of zero time = %q, want -", rows[1][5])
	}
	if rows[1][6] != "color pass" || rows[1][7] != "v-2" {
		t.Errorf("row = %v", rows[1])
	}
}

func TestReportRows(t *testing.T) {
	report := &media.DeletionReport{
		DeletedFolderID:         "f-1",
		DeletedChildFolderCount: 2,
		DeletedAssetCount:       3,
		DeletedBlobCount:        1,
		FailedBlobCount:         1,
		BlobOutcomes: []media.BlobOutcome{
			{Key: "ok.mov", AssetID: "x", Kind: media.BlobKindOriginal, Deleted: true},
			{Key: "thumb.jpg", AssetID: "x", Kind: media.BlobKindThumbnail, Error: "permission denied"},
		},
	}

	rows := reportRows(report)
	if len(rows) != 6 {
		t.Fatalf("got %d rows, want 5 summary rows and 1 failure", len(rows))
	}
	if rows[2][1] != "3" {
		t.Errorf("assets deleted = %q, want 3", rows[2][1])
	}
	last := rows[len(rows)-1]
	if last[0] != "failed thumbnail" || !strings.Contains(last[1], "permission denied") {
		t.Errorf("failure row = %v", last)
	}
}

func TestRenderTable_PadsShortRows(t *testing.T) {
	out := renderTable([]string{"Name", "Size"}, [][]string{{"only-name"}}, []columnAlignment{alignLeft, alignRight})
	if !strings.Contains(out, "only-name") || !strings.Contains(strings.ToUpper(out), "SIZE") {
		t.Errorf("unexpected table:\n%s", out)
	}
	if renderTable(nil, nil, nil) != "" {
		t.Error("expected empty output without headers")
	}
}
