package store_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiaot623/fmuweb/domain"
	"github.com/xiaot623/fmuweb/store"
)

func TestDiskStoreRoundTrip(t *testing.T) {
	s, err := store.NewDiskStore(t.TempDir())
	require.NoError(t, err)

	token, err := s.PutPrimary("model.fmu", []byte("fmu-bytes"))
	require.NoError(t, err)

	got, err := s.Get(token)
	require.NoError(t, err)
	assert.Equal(t, "model.fmu", got.Name)
	assert.Equal(t, []byte("fmu-bytes"), got.Data)

	p, err := s.Primary()
	require.NoError(t, err)
	assert.Equal(t, token, p.Token)
}

func TestDiskStorePrimaryReplaceRemovesOldFiles(t *testing.T) {
	root := t.TempDir()
	s, err := store.NewDiskStore(root)
	require.NoError(t, err)

	old, err := s.PutPrimary("model.fmu", []byte("v1"))
	require.NoError(t, err)
	res, err := s.PutResult("result.csv", []byte("r"))
	require.NoError(t, err)

	_, err = s.PutPrimary("model.fmu", []byte("v2"))
	require.NoError(t, err)

	_, statErr := os.Stat(old)
	assert.True(t, os.IsNotExist(statErr), "old primary file should be unlinked")
	_, statErr = os.Stat(res)
	assert.True(t, os.IsNotExist(statErr), "old result file should be unlinked")

	_, err = s.Get(res)
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
}

func TestDiskStoreRejectsPathOutsideRoot(t *testing.T) {
	outside := filepath.Join(t.TempDir(), "secret.txt")
	require.NoError(t, os.WriteFile(outside, []byte("hidden"), 0o644))

	s, err := store.NewDiskStore(t.TempDir())
	require.NoError(t, err)

	// Even though the file exists on disk, a token pointing outside the
	// root is rejected rather than resolved.
	_, err = s.Get(outside)
	assert.Equal(t, domain.KindInvalidInput, domain.KindOf(err))

	escape := filepath.Join(s.Root(), "..", filepath.Base(outside))
	_, err = s.Get(escape)
	assert.Equal(t, domain.KindInvalidInput, domain.KindOf(err))
}

func TestDiskStoreClearCollectsPerItemErrors(t *testing.T) {
	root := t.TempDir()
	s, err := store.NewDiskStore(root)
	require.NoError(t, err)

	r1, err := s.PutResult("a.csv", []byte("a"))
	require.NoError(t, err)
	r2, err := s.PutResult("b.csv", []byte("b"))
	require.NoError(t, err)

	// Delete one file behind the store's back: clear skips it without
	// reporting an error (already gone) and still removes the other.
	require.NoError(t, os.Remove(r1))

	report := s.Clear()
	assert.Equal(t, []string{r2}, report.Removed)
	assert.Empty(t, report.Errors)

	_, err = s.Get(r2)
	assert.Error(t, err)
}

func TestDiskStoreClearEmpty(t *testing.T) {
	s, err := store.NewDiskStore(t.TempDir())
	require.NoError(t, err)
	report := s.Clear()
	assert.Empty(t, report.Removed)
	assert.Empty(t, report.Errors)
}

func TestDiskStoreStripsClientDirectories(t *testing.T) {
	s, err := store.NewDiskStore(t.TempDir())
	require.NoError(t, err)

	token, err := s.PutAuxiliary("../../etc/input.csv", []byte("t,u\n"))
	require.NoError(t, err)
	assert.Contains(t, token, s.Root())

	got, err := s.Get(token)
	require.NoError(t, err)
	assert.Equal(t, []byte("t,u\n"), got.Data)
}

func TestSweepRemovesOnlyStaleFiles(t *testing.T) {
	dir := t.TempDir()

	stale := filepath.Join(dir, "stale.fmu")
	fresh := filepath.Join(dir, "fresh.fmu")
	require.NoError(t, os.WriteFile(stale, []byte("old"), 0o644))
	require.NoError(t, os.WriteFile(fresh, []byte("new"), 0o644))

	past := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(stale, past, past))

	// A subdirectory, stale or not, is never touched.
	sub := filepath.Join(dir, "keep")
	require.NoError(t, os.Mkdir(sub, 0o755))
	require.NoError(t, os.Chtimes(sub, past, past))

	removed := store.Sweep(dir, 24*time.Hour)
	assert.Equal(t, 1, removed)

	_, err := os.Stat(stale)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(fresh)
	assert.NoError(t, err)
	_, err = os.Stat(sub)
	assert.NoError(t, err)
}

func TestSweepMissingDir(t *testing.T) {
	assert.Equal(t, 0, store.Sweep(filepath.Join(t.TempDir(), "absent"), time.Hour))
}
