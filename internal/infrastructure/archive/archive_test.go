package archive

import (
	"archive/tar"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

func TestCreateAndExtract(t *testing.T) {
	root := filepath.Join(t.TempDir(), "vroot")
	writeTree(t, root, map[string]string{
		"data/app/com.example.app/package.ini":   "descriptor",
		"data/app/com.example.app/signature.ini": "signers",
		"data/system/packages.db":                "db",
	})
	require.NoError(t, os.MkdirAll(filepath.Join(root, "data64", "user"), 0o755))

	a := New(root, filepath.Join(t.TempDir(), "backups"), zap.NewNop())
	b, err := a.Create(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, b.Files)
	assert.FileExists(t, b.Path)
	assert.Greater(t, b.Size, int64(0))
	assert.False(t, b.CreatedAt.IsZero())

	dest := filepath.Join(t.TempDir(), "restored")
	n, err := a.Extract(context.Background(), b.ID, dest)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	got, err := os.ReadFile(filepath.Join(dest, "data", "app", "com.example.app", "package.ini"))
	require.NoError(t, err)
	assert.Equal(t, "descriptor", string(got))
	assert.DirExists(t, filepath.Join(dest, "data64", "user"))
}

func TestBackupDirInsideRootIsSkipped(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"data/a.txt": "a"})

	a := New(root, filepath.Join(root, "backups"), nil)
	first, err := a.Create(context.Background())
	require.NoError(t, err)
	second, err := a.Create(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, first.Files)
	assert.Equal(t, 1, second.Files)
}

func TestListAndDelete(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"x": "1"})
	a := New(root, filepath.Join(t.TempDir(), "backups"), nil)

	list, err := a.List()
	require.NoError(t, err)
	assert.Empty(t, list)

	first, err := a.Create(context.Background())
	require.NoError(t, err)
	second, err := a.Create(context.Background())
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(a.Dir(), "notes.txt"), []byte("x"), 0o644))

	list, err = a.List()
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, first.ID, list[0].ID)
	assert.Equal(t, second.ID, list[1].ID)

	require.NoError(t, a.Delete(first.ID))
	assert.ErrorIs(t, a.Delete(first.ID), ErrNotFound)
	assert.ErrorIs(t, a.Delete("../etc"), ErrNotFound)

	_, err = a.Extract(context.Background(), first.ID, t.TempDir())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestExtractRejectsEscapingEntries(t *testing.T) {
	dir := t.TempDir()
	a := New(t.TempDir(), dir, nil)

	const backupID = "bak_01ARZ3NDEKTSV4RRFFQ69G5FAV"
	f, err := os.Create(filepath.Join(dir, backupID+Extension))
	require.NoError(t, err)
	zw, err := zstd.NewWriter(f)
	require.NoError(t, err)
	tw := tar.NewWriter(zw)
	require.NoError(t, tw.WriteHeader(&tar.Header{Name: "../evil", Mode: 0o644, Size: 1, Typeflag: tar.TypeReg}))
	_, err = tw.Write([]byte("x"))
	require.NoError(t, err)
	require.NoError(t, tw.Close())
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	dest := t.TempDir()
	_, err = a.Extract(context.Background(), backupID, dest)
	assert.ErrorIs(t, err, ErrUnsafePath)
	assert.NoFileExists(t, filepath.Join(filepath.Dir(dest), "evil"))
}

func TestCreateCanceled(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"a": "1", "b": "2"})
	a := New(root, filepath.Join(t.TempDir(), "backups"), nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := a.Create(ctx)
	assert.Error(t, err)

	list, err := a.List()
	require.NoError(t, err)
	assert.Empty(t, list)
}
