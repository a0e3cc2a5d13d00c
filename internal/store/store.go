// Package store keeps a SQLite journal of finished panel resizes.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite" // register sqlite driver
)

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	id       TEXT PRIMARY KEY,
	root     TEXT NOT NULL,
	created  INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS resizes (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id  TEXT NOT NULL REFERENCES sessions(id),
	panel_id    TEXT NOT NULL,
	pane        INTEGER NOT NULL,
	width       INTEGER NOT NULL,
	height      INTEGER NOT NULL,
	created     INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_resizes_panel ON resizes(panel_id, pane);
CREATE INDEX IF NOT EXISTS idx_resizes_session ON resizes(session_id);
`

// Journal records finished resizes. A nil *Journal is a valid no-op journal.
type Journal struct {
	mu       sync.Mutex // guards db
	db       *sql.DB
	session  string
	readOnly bool

	sendMu sync.RWMutex // guards saveCh against Close
	closed bool
	saveCh chan saveReq
	done   chan struct{}
}

// Open creates or opens the journal database at path and starts a new
// session for root.
func Open(path, root string) (*Journal, error) {
	db, err := openDB(path)
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	if _, err := db.Exec(
		"INSERT INTO sessions (id, root, created) VALUES (?, ?, ?)",
		id, root, time.Now().Unix(),
	); err != nil {
		db.Close()
		return nil, fmt.Errorf("create session: %w", err)
	}

	j := &Journal{
		db:      db,
		session: id,
		saveCh:  make(chan saveReq, 64),
		done:    make(chan struct{}),
	}
	go j.saveLoop()
	log.Debug().Str("session", id).Str("path", path).Msg("journal opened")
	return j, nil
}

// OpenReadOnly opens an existing journal for reporting. It starts no
// session: Record and Flush do nothing and Count is always zero. A missing
// file yields a nil journal, which reports nothing.
func OpenReadOnly(path string) (*Journal, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	db, err := openDB(path)
	if err != nil {
		return nil, err
	}
	j := &Journal{
		db:       db,
		readOnly: true,
		saveCh:   make(chan saveReq),
		done:     make(chan struct{}),
	}
	close(j.done)
	return j, nil
}

func openDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open journal db: %w", err)
	}

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("pragma %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return db, nil
}

// Session returns the id of the session this journal writes to.
func (j *Journal) Session() string {
	if j == nil {
		return ""
	}
	return j.session
}

// Close drains pending writes and closes the database.
func (j *Journal) Close() error {
	if j == nil {
		return nil
	}
	j.sendMu.Lock()
	if j.closed {
		j.sendMu.Unlock()
		return nil
	}
	j.closed = true
	close(j.saveCh)
	j.sendMu.Unlock()

	<-j.done
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.db.Close()
}
