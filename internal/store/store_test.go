package store

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestJournal(t *testing.T) (*Journal, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "journal.db")
	j, err := Open(path, "/src")
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })
	return j, path
}

func TestOpenStartsSession(t *testing.T) {
	j, _ := openTestJournal(t)
	_, err := uuid.Parse(j.Session())
	assert.NoError(t, err)

	n, err := j.Count()
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRecordAndCount(t *testing.T) {
	j, _ := openTestJournal(t)

	j.Record(Resize{PanelID: "main", Pane: 0, Width: 14, Height: 5})
	j.Record(Resize{PanelID: "main", Pane: 1, Width: 3, Height: 5})
	j.Flush()

	n, err := j.Count()
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	recent, err := j.Recent(10)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, 1, recent[0].Pane)
	assert.Equal(t, j.Session(), recent[0].Session)
	assert.False(t, recent[0].At.IsZero())
}

func TestLastAcrossSessions(t *testing.T) {
	j, path := openTestJournal(t)
	j.Record(Resize{PanelID: "main", Pane: 0, Width: 14, Height: 5, At: time.Unix(100, 0)})
	j.Flush()
	require.NoError(t, j.Close())

	again, err := Open(path, "/src")
	require.NoError(t, err)
	defer again.Close()
	assert.NotEqual(t, j.Session(), again.Session())

	n, err := again.Count()
	require.NoError(t, err)
	assert.Zero(t, n, "count is per session")

	last, ok, err := again.Last("main", 0)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 14, last.Width)
	assert.Equal(t, int64(100), last.At.Unix())

	_, ok, err = again.Last("main", 3)
	require.NoError(t, err)
	assert.False(t, ok)

	recent, err := again.Recent(10)
	require.NoError(t, err)
	require.Len(t, recent, 1, "recent spans sessions")
	assert.Equal(t, j.Session(), recent[0].Session)
}

func TestOpenReadOnlyStartsNoSession(t *testing.T) {
	j, path := openTestJournal(t)
	j.Record(Resize{PanelID: "main", Pane: 2, Width: 9, Height: 4})
	j.Flush()
	require.NoError(t, j.Close())

	ro, err := OpenReadOnly(path)
	require.NoError(t, err)
	require.NotNil(t, ro)
	assert.Empty(t, ro.Session())

	ro.Record(Resize{PanelID: "main", Pane: 0, Width: 1, Height: 1})
	ro.Flush()

	var sessions, resizes int
	require.NoError(t, ro.db.QueryRow("SELECT COUNT(*) FROM sessions").Scan(&sessions))
	require.NoError(t, ro.db.QueryRow("SELECT COUNT(*) FROM resizes").Scan(&resizes))
	assert.Equal(t, 1, sessions)
	assert.Equal(t, 1, resizes)

	last, ok, err := ro.Last("main", 2)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 9, last.Width)

	require.NoError(t, ro.Close())
	require.NoError(t, ro.Close())
}

func TestOpenReadOnlyMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "none.db")
	ro, err := OpenReadOnly(path)
	require.NoError(t, err)
	assert.Nil(t, ro)

	_, err = os.Stat(path)
	assert.ErrorIs(t, err, fs.ErrNotExist, "nothing is created")
}

func TestCloseIsIdempotent(t *testing.T) {
	j, _ := openTestJournal(t)
	require.NoError(t, j.Close())
	require.NoError(t, j.Close())

	// Records after close are dropped, not panics.
	j.Record(Resize{PanelID: "main"})
	j.Flush()
}

func TestNilJournal(t *testing.T) {
	var j *Journal
	j.Record(Resize{})
	j.Flush()
	n, err := j.Count()
	assert.NoError(t, err)
	assert.Zero(t, n)
	_, ok, err := j.Last("main", 0)
	assert.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, j.Session())
	assert.NoError(t, j.Close())
}
