package sqlite

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/andrei-shtanakov/Vimja/internal/register"
)

func openDB(t *testing.T, path string) *DB {
	t.Helper()
	db, err := NewDB(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestNewDB_CreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "nested", "registers.db")

	openDB(t, path)

	info, err := os.Stat(filepath.Dir(path))
	require.NoError(t, err)
	require.True(t, info.IsDir())
	if runtime.GOOS != "windows" {
		require.Equal(t, os.FileMode(0o700), info.Mode().Perm())
	}
}

func TestNewDB_RunsMigrations(t *testing.T) {
	db := openDB(t, filepath.Join(t.TempDir(), "registers.db"))

	var table string
	err := db.conn.QueryRow(
		"SELECT name FROM sqlite_master WHERE type='table' AND name='registers'",
	).Scan(&table)
	require.NoError(t, err)
	require.Equal(t, "registers", table)

	version, err := db.SchemaVersion()
	require.NoError(t, err)
	require.Equal(t, uint(1), version)
}

func TestNewDB_ReopenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registers.db")
	first, err := NewDB(path)
	require.NoError(t, err)
	require.NoError(t, first.Registers().SaveAll(context.Background(), map[string]register.Register{
		"a": {Text: "kept"},
	}))
	require.NoError(t, first.Close())

	second := openDB(t, path)
	regs, err := second.Registers().LoadAll(context.Background())
	require.NoError(t, err)
	require.Equal(t, "kept", regs["a"].Text)

	// Nothing was pending, so no backup was taken.
	_, err = os.Stat(path + ".bak")
	require.True(t, os.IsNotExist(err))
}

func TestNewDB_BacksUpBeforeMigrating(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registers.db")
	first, err := NewDB(path)
	require.NoError(t, err)
	require.NoError(t, first.Close())

	// Rewind the schema so the migration is pending again.
	raw, err := sql.Open("sqlite3", "file:"+path)
	require.NoError(t, err)
	_, err = raw.Exec("DROP TABLE registers")
	require.NoError(t, err)
	_, err = raw.Exec("PRAGMA user_version = 0")
	require.NoError(t, err)
	require.NoError(t, raw.Close())

	db := openDB(t, path)

	info, err := os.Stat(path + ".bak")
	require.NoError(t, err)
	require.False(t, info.IsDir())

	version, err := db.SchemaVersion()
	require.NoError(t, err)
	require.Equal(t, uint(1), version)
}

func TestNewDB_FreshFileHasNoBackup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registers.db")
	openDB(t, path)

	_, err := os.Stat(path + ".bak")
	require.True(t, os.IsNotExist(err))
}

func TestRegisterRepository_RoundTrip(t *testing.T) {
	repo := openDB(t, filepath.Join(t.TempDir(), "registers.db")).Registers()
	repo.now = func() time.Time { return time.Unix(1_700_000_000, 0) }
	ctx := context.Background()

	regs := map[string]register.Register{
		`"`: {Text: "line one\n", IsLine: true},
		"a": {Text: "alpha"},
		"z": {Text: "zeta\nomega", IsLine: true},
	}
	require.NoError(t, repo.SaveAll(ctx, regs))

	loaded, err := repo.LoadAll(ctx)
	require.NoError(t, err)
	require.Equal(t, regs, loaded)

	at, ok, err := repo.UpdatedAt(ctx, "a")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, int64(1_700_000_000), at.Unix())

	_, ok, err = repo.UpdatedAt(ctx, "q")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestRegisterRepository_SaveAllReplaces(t *testing.T) {
	repo := openDB(t, filepath.Join(t.TempDir(), "registers.db")).Registers()
	ctx := context.Background()

	require.NoError(t, repo.SaveAll(ctx, map[string]register.Register{"a": {Text: "1"}, "b": {Text: "2"}}))
	require.NoError(t, repo.SaveAll(ctx, map[string]register.Register{"b": {Text: "3"}}))

	loaded, err := repo.LoadAll(ctx)
	require.NoError(t, err)
	require.Equal(t, map[string]register.Register{"b": {Text: "3"}}, loaded)

	require.NoError(t, repo.SaveAll(ctx, nil))
	loaded, err = repo.LoadAll(ctx)
	require.NoError(t, err)
	require.Empty(t, loaded)
}

func TestRegisterRepository_StoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registers.db")
	ctx := context.Background()

	store := register.NewStore()
	require.NoError(t, store.Set("a", "yanked", false))
	require.NoError(t, store.Set("b", "whole line", true))

	db := openDB(t, path)
	require.NoError(t, db.Registers().SaveAll(ctx, store.Snapshot()))

	saved, err := db.Registers().LoadAll(ctx)
	require.NoError(t, err)
	next := register.NewStore()
	next.Restore(saved)

	require.Equal(t, store.Names(), next.Names())
	require.Equal(t, register.Register{Text: "whole line", IsLine: true}, next.Get(""))
	require.Equal(t, "yanked", next.Get("a").Text)
}
