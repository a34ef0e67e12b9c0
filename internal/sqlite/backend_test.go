package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/devotional/pkg/types"
)

func TestBackend_Attach(t *testing.T) {
	tmpDir := t.TempDir()

	b := NewBackend()
	config := types.Config{
		Backend: types.BackendSQLite,
		DataDir: tmpDir,
	}

	require.NoError(t, b.Attach(config))
	defer b.Detach()

	_, err := os.Stat(filepath.Join(tmpDir, DatabaseFile))
	assert.NoError(t, err, "database file not created")

	assert.ErrorIs(t, b.Attach(config), types.ErrAlreadyAttached)
}

func TestBackend_AttachRejectsBadConfig(t *testing.T) {
	b := NewBackend()
	assert.ErrorIs(t, b.Attach(types.Config{DataDir: t.TempDir()}), types.ErrBackendEmpty)
	assert.ErrorIs(t, b.Attach(types.Config{Backend: "postgres", DataDir: t.TempDir()}), types.ErrBackendUnknown)
}

func TestBackend_Detach(t *testing.T) {
	b := NewBackend()
	require.NoError(t, b.Attach(types.Config{Backend: types.BackendSQLite, DataDir: t.TempDir()}))

	require.NoError(t, b.Detach())
	assert.NoError(t, b.Detach(), "second Detach should not error")

	ctx := context.Background()
	_, err := b.FindArtifact(ctx, testKey("John 3:16", ""))
	assert.ErrorIs(t, err, types.ErrStoreDetached)
	_, err = b.FindVerse(ctx, "2026-01-12", "")
	assert.ErrorIs(t, err, types.ErrStoreDetached)
	assert.ErrorIs(t, b.TouchArtifact(ctx, "id", time.Now()), types.ErrStoreDetached)
}

func TestBackend_DataSurvivesReattach(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	config := types.Config{Backend: types.BackendSQLite, DataDir: dir}

	b := NewBackend()
	require.NoError(t, b.Attach(config))
	stored, err := b.UpsertArtifact(ctx, testKey("Psalm 23:1", ""), testContent("shepherd"), "model-a", time.Now())
	require.NoError(t, err)
	require.NoError(t, b.Detach())

	b2 := NewBackend()
	require.NoError(t, b2.Attach(config))
	defer b2.Detach()

	got, err := b2.FindArtifact(ctx, testKey("Psalm 23:1", ""))
	require.NoError(t, err)
	assert.Equal(t, stored.ID, got.ID)
}
