package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresuchdata/fba-weekly-summary/internal/storage"
)

func TestBuildSinkNamesArtifactsFromAnchor(t *testing.T) {
	// Artifact names must come from the anchor handed in, never from a fresh
	// clock read: the runner and the files have to agree on the date.
	anchor := time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		format string
		want   []string
	}{
		{"xlsx", []string{"weekly_summary_20260829.xlsx"}},
		{"csv", []string{"weekly_summary_20260829.csv", "discrepancies_20260829.csv", "issues_20260829.csv"}},
		{"both", []string{"weekly_summary_20260829.xlsx", "weekly_summary_20260829.csv", "discrepancies_20260829.csv", "issues_20260829.csv"}},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			reportSink, artifacts, err := buildSink(tt.format, "out", anchor)
			require.NoError(t, err)
			require.NotNil(t, reportSink)

			names := make([]string, len(artifacts))
			for i, a := range artifacts {
				names[i] = filepath.Base(a)
			}
			assert.Equal(t, tt.want, names)
		})
	}
}

func TestBuildSinkRejectsUnknownFormat(t *testing.T) {
	_, _, err := buildSink("pdf", "out", time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC))
	assert.ErrorContains(t, err, `unknown format "pdf"`)
}

type fakeObjectStorage struct {
	existing []storage.ObjectInfo
	listed   []string
	uploaded []string
}

func (f *fakeObjectStorage) ListObjects(_ context.Context, prefix string) ([]storage.ObjectInfo, error) {
	f.listed = append(f.listed, prefix)
	return f.existing, nil
}

func (f *fakeObjectStorage) UploadFile(_ context.Context, key, _ string) error {
	f.uploaded = append(f.uploaded, key)
	return nil
}

func TestUploadArtifactsSkipsExistingKeys(t *testing.T) {
	dir := t.TempDir()
	paths := []string{
		filepath.Join(dir, "weekly_summary_20260829.xlsx"),
		filepath.Join(dir, "discrepancies_20260829.csv"),
	}
	for _, p := range paths {
		require.NoError(t, os.WriteFile(p, []byte("x"), 0644))
	}

	store := &fakeObjectStorage{existing: []storage.ObjectInfo{
		{Key: "reports/2026-08-29/weekly_summary_20260829.xlsx", Size: 1},
	}}

	anchor := time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)
	require.NoError(t, uploadArtifacts(context.Background(), store, anchor, paths))

	assert.Equal(t, []string{"reports/2026-08-29"}, store.listed)
	assert.Equal(t, []string{"reports/2026-08-29/discrepancies_20260829.csv"}, store.uploaded)
}

func TestUploadArtifactsIgnoresMissingFiles(t *testing.T) {
	store := &fakeObjectStorage{}
	anchor := time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)

	require.NoError(t, uploadArtifacts(context.Background(), store, anchor, []string{"/nonexistent/report.xlsx"}))
	assert.Empty(t, store.uploaded)
}
