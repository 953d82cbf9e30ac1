package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/tastelab/tasted/internal/config"
	"github.com/tastelab/tasted/internal/profile"
	"github.com/tastelab/tasted/internal/taxonomy"
)

const testCatalog = `[
  {"id": "m1", "title": "Quiet Fields", "overview": "a calm healing countryside story", "genres": ["Drama"], "release_year": 2018},
  {"id": "m2", "title": "Midnight Chase", "overview": "a tense thrilling pursuit", "genres": ["Thriller"], "release_year": 2021}
]`

func writeCatalog(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.json")
	require.NoError(t, os.WriteFile(path, []byte(testCatalog), 0o600))
	return path
}

func testApp(t *testing.T) *app {
	t.Helper()
	tax := taxonomy.Default()
	return &app{
		cfg:     config.Default(),
		logger:  zaptest.NewLogger(t),
		tax:     tax,
		builder: profile.NewBuilder(tax, nil),
	}
}

func TestLoadCatalog(t *testing.T) {
	items, err := loadCatalog(writeCatalog(t))
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "m1", items[0].ID)
	assert.Equal(t, "Quiet Fields", items[0].Title)
}

func TestLoadCatalogMissingFile(t *testing.T) {
	_, err := loadCatalog(filepath.Join(t.TempDir(), "absent.json"))
	require.Error(t, err)
}

func TestLoadCatalogMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))
	_, err := loadCatalog(path)
	require.Error(t, err)
}

func TestLoadOrBuildIndexWritesAndReusesSnapshot(t *testing.T) {
	a := testApp(t)
	catalogPath := writeCatalog(t)
	snapshotPath := filepath.Join(t.TempDir(), "index.json")

	idx, err := a.loadOrBuildIndex(context.Background(), catalogPath, snapshotPath)
	require.NoError(t, err)
	assert.Equal(t, 2, idx.Len())
	assert.FileExists(t, snapshotPath)

	// Second call must load the snapshot: a missing catalog proves no
	// rebuild happened.
	again, err := a.loadOrBuildIndex(context.Background(), filepath.Join(t.TempDir(), "gone.json"), snapshotPath)
	require.NoError(t, err)
	assert.Equal(t, idx.Len(), again.Len())
}

func TestLoadOrBuildIndexNoSnapshotPath(t *testing.T) {
	a := testApp(t)
	idx, err := a.loadOrBuildIndex(context.Background(), writeCatalog(t), "")
	require.NoError(t, err)
	assert.Equal(t, 2, idx.Len())
}

func TestGeneratorDisabledReturnsNil(t *testing.T) {
	a := testApp(t)
	gen, err := a.generator()
	require.NoError(t, err)
	assert.Nil(t, gen)
}

func TestGeneratorEnabledRequiresKey(t *testing.T) {
	a := testApp(t)
	a.cfg.Generator.Enabled = true
	_, err := a.generator()
	require.Error(t, err)

	a.cfg.Generator.APIKey = "sk-test"
	gen, err := a.generator()
	require.NoError(t, err)
	assert.NotNil(t, gen)
}

func TestScoreCommandEndToEnd(t *testing.T) {
	scoreCatalogPath = writeCatalog(t)
	scoreUserText = "something calm and healing"
	scoreMovieID = "m1"
	scoreBoostTags = nil
	scoreDislikeTags = nil
	scoreCmd.SetContext(context.Background())

	require.NoError(t, runScore(scoreCmd, nil))
}

func TestScoreCommandUnknownMovie(t *testing.T) {
	scoreCatalogPath = writeCatalog(t)
	scoreUserText = "anything"
	scoreMovieID = "nope"

	err := runScore(scoreCmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}
