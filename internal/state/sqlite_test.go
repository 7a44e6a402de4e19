package state

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store := NewSQLiteStore()
	require.NoError(t, store.Open(":memory:"))
	require.NoError(t, store.Migrate())
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteStore_OpenClose(t *testing.T) {
	store := NewSQLiteStore()
	require.NoError(t, store.Open(":memory:"))
	assert.Equal(t, ":memory:", store.Path())
	assert.NoError(t, store.Close())

	assert.NoError(t, NewSQLiteStore().Close(), "closing an unopened store is a no-op")
}

func TestSQLiteStore_Migrate(t *testing.T) {
	store := setupTestStore(t)

	version, err := store.MigrationVersion()
	require.NoError(t, err)
	assert.Equal(t, int64(1), version)

	for _, table := range []string{"batches", "journal"} {
		rows, err := store.db.Query("SELECT 1 FROM " + table + " LIMIT 1")
		require.NoError(t, err, "table %s", table)
		rows.Close()
	}

	// migrating twice is a no-op
	assert.NoError(t, store.Migrate())
}

func TestSQLiteStore_NotOpened(t *testing.T) {
	store := NewSQLiteStore()

	_, err := store.RecordBatch("s", "mysql", []string{"CREATE TABLE t (id INT)"})
	assert.ErrorIs(t, err, ErrNotOpened)
	_, err = store.Journal("s")
	assert.ErrorIs(t, err, ErrNotOpened)
	_, err = store.Batches("s")
	assert.ErrorIs(t, err, ErrNotOpened)
	_, err = store.Clear("s")
	assert.ErrorIs(t, err, ErrNotOpened)
	assert.ErrorIs(t, store.Migrate(), ErrNotOpened)
	_, err = store.MigrationVersion()
	assert.ErrorIs(t, err, ErrNotOpened)
}

func TestSQLiteStore_JournalRoundTrip(t *testing.T) {
	store := setupTestStore(t)

	first, err := store.RecordBatch("shop", "mysql", []string{
		"CREATE TABLE a (id INT)",
		"CREATE TABLE b LIKE a",
	})
	require.NoError(t, err)
	other, err := store.RecordBatch("hr", "oracle", []string{"CREATE TABLE emp (id NUMBER)"})
	require.NoError(t, err)
	second, err := store.RecordBatch("shop", "mysql", []string{"ALTER TABLE a ADD COLUMN x INT"})
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
	assert.NotEqual(t, first, other)

	entries, err := store.Journal("shop")
	require.NoError(t, err)
	require.Len(t, entries, 3)

	var got []string
	for _, e := range entries {
		got = append(got, e.Statement)
		assert.Equal(t, "mysql", e.Dialect)
		assert.False(t, e.RecordedAt.IsZero())
	}
	assert.Equal(t, []string{
		"CREATE TABLE a (id INT)",
		"CREATE TABLE b LIKE a",
		"ALTER TABLE a ADD COLUMN x INT",
	}, got)
	assert.Equal(t, first, entries[1].BatchID)
	assert.Equal(t, 1, entries[1].Seq)
	assert.Equal(t, second, entries[2].BatchID)
	assert.Equal(t, 0, entries[2].Seq)

	batches, err := store.Batches("shop")
	require.NoError(t, err)
	require.Len(t, batches, 2)
	assert.Equal(t, first, batches[0].ID)
	assert.Equal(t, 2, batches[0].Statements)
	assert.Equal(t, "shop", batches[0].Schema)
	assert.Equal(t, 1, batches[1].Statements)
}

func TestSQLiteStore_EmptyBatch(t *testing.T) {
	store := setupTestStore(t)
	_, err := store.RecordBatch("s", "ansi", nil)
	assert.ErrorIs(t, err, ErrEmptyBatch)

	batches, err := store.Batches("s")
	require.NoError(t, err)
	assert.Empty(t, batches)
}

func TestSQLiteStore_Clear(t *testing.T) {
	store := setupTestStore(t)
	for range 2 {
		_, err := store.RecordBatch("shop", "mysql", []string{"CREATE TABLE a (id INT)"})
		require.NoError(t, err)
	}
	_, err := store.RecordBatch("hr", "oracle", []string{"CREATE TABLE emp (id NUMBER)"})
	require.NoError(t, err)

	n, err := store.Clear("shop")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	entries, err := store.Journal("shop")
	require.NoError(t, err)
	assert.Empty(t, entries)

	entries, err = store.Journal("hr")
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	n, err = store.Clear("missing")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSQLiteStore_FilePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")

	store := NewSQLiteStore()
	require.NoError(t, store.Open(path))
	require.NoError(t, store.Migrate())
	_, err := store.RecordBatch("s", "ansi", []string{"CREATE TABLE t (id INT)"})
	require.NoError(t, err)
	require.NoError(t, store.Close())

	reopened := NewSQLiteStore()
	require.NoError(t, reopened.Open(path))
	defer reopened.Close()
	require.NoError(t, reopened.Migrate())

	entries, err := reopened.Journal("s")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "CREATE TABLE t (id INT)", entries[0].Statement)
}
