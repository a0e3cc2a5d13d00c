package store

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

// Resize is one finished drag: the final size of a pane.
type Resize struct {
	Session string
	PanelID string
	Pane    int
	Width   int
	Height  int
	At      time.Time
}

type saveReq struct {
	r     Resize
	flush chan struct{}
}

// Record queues r for persistence in the current session. Non-blocking; a
// full queue drops the record.
func (j *Journal) Record(r Resize) {
	if j == nil || j.readOnly {
		return
	}
	if r.At.IsZero() {
		r.At = time.Now()
	}
	r.Session = j.session

	j.sendMu.RLock()
	defer j.sendMu.RUnlock()
	if j.closed {
		return
	}
	select {
	case j.saveCh <- saveReq{r: r}:
	default:
		log.Warn().Str("panel", r.PanelID).Int("pane", r.Pane).Msg("journal queue full, dropping resize")
	}
}

// Flush blocks until every queued record has been written. Times out after
// 5 seconds.
func (j *Journal) Flush() {
	if j == nil || j.readOnly {
		return
	}
	j.sendMu.RLock()
	defer j.sendMu.RUnlock()
	if j.closed {
		return
	}
	done := make(chan struct{})
	select {
	case j.saveCh <- saveReq{flush: done}:
		<-done
	case <-time.After(5 * time.Second):
		log.Warn().Msg("journal flush timed out waiting to enqueue")
	}
}

func (j *Journal) saveLoop() {
	defer close(j.done)
	for req := range j.saveCh {
		if req.flush != nil {
			close(req.flush)
			continue
		}
		j.write(req.r)
	}
}

func (j *Journal) write(r Resize) {
	j.mu.Lock()
	defer j.mu.Unlock()

	_, err := j.db.Exec(
		`INSERT INTO resizes (session_id, panel_id, pane, width, height, created)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		r.Session, r.PanelID, r.Pane, r.Width, r.Height, r.At.Unix(),
	)
	if err != nil {
		log.Warn().Err(err).Str("panel", r.PanelID).Msg("failed to record resize")
	}
}

// Count returns how many resizes the current session has recorded.
func (j *Journal) Count() (int, error) {
	if j == nil {
		return 0, nil
	}
	j.mu.Lock()
	defer j.mu.Unlock()

	var n int
	err := j.db.QueryRow("SELECT COUNT(*) FROM resizes WHERE session_id = ?", j.session).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count resizes: %w", err)
	}
	return n, nil
}

// Last returns the most recent resize of a pane across all sessions.
func (j *Journal) Last(panelID string, pane int) (Resize, bool, error) {
	if j == nil {
		return Resize{}, false, nil
	}
	recent, err := j.query(
		`SELECT session_id, panel_id, pane, width, height, created FROM resizes
		 WHERE panel_id = ? AND pane = ? ORDER BY id DESC LIMIT 1`,
		panelID, pane,
	)
	if err != nil || len(recent) == 0 {
		return Resize{}, false, err
	}
	return recent[0], true, nil
}

// Recent returns up to limit resizes across all sessions, newest first.
func (j *Journal) Recent(limit int) ([]Resize, error) {
	if j == nil || limit <= 0 {
		return nil, nil
	}
	return j.query(
		`SELECT session_id, panel_id, pane, width, height, created FROM resizes
		 ORDER BY id DESC LIMIT ?`,
		limit,
	)
}

func (j *Journal) query(q string, args ...any) ([]Resize, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	rows, err := j.db.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Resize
	for rows.Next() {
		var r Resize
		var created int64
		if err := rows.Scan(&r.Session, &r.PanelID, &r.Pane, &r.Width, &r.Height, &created); err != nil {
			return nil, err
		}
		r.At = time.Unix(created, 0)
		out = append(out, r)
	}
	return out, rows.Err()
}
