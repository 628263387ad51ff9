package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresuchdata/inventory-optimizer/internal/storage"
)

type memStorage struct {
	storage.Noop
	objects map[string][]byte
}

func (m *memStorage) UploadObject(_ context.Context, key string, data []byte) error {
	m.objects[key] = data
	return nil
}

func TestWorkbooksIn(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.xlsx", "a.csv", "notes.txt", "c.XLS"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.csv"), 0o755))

	files, err := workbooksIn(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.csv"),
		filepath.Join(dir, "b.xlsx"),
		filepath.Join(dir, "c.XLS"),
	}, files)

	_, err = workbooksIn(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}

func TestUploadResult(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy_results_20240131_part001.csv")
	require.NoError(t, os.WriteFile(path, []byte("a,b\n1,2\n"), 0o644))

	store := &memStorage{objects: map[string][]byte{}}
	require.NoError(t, uploadResult(store)(context.Background(), path))

	assert.Equal(t, []byte("a,b\n1,2\n"), store.objects["results/policy_results_20240131_part001.csv"])
	assert.Error(t, uploadResult(store)(context.Background(), path+".missing"))
}
