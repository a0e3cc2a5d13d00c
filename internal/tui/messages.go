package tui

import (
	"github.com/xonecas/splitview/internal/filesearch"
)

// ---------------------------------------------------------------------------
// ELM messages
// ---------------------------------------------------------------------------

// flushMsg asks the loop to drain the deferred task queue.
type flushMsg struct{}

type filesListedMsg struct {
	entries []filesearch.Entry
	err     error
}

type fileOpenedMsg struct {
	path    string // relative to the root
	abs     string
	src     string
	lines   []string
	outline []string
	reload  bool
	err     error
}

// fileChangedMsg reports a write to a file in a watched directory.
type fileChangedMsg struct{ abs string }

type journalMsg struct {
	count int
	err   error
}

type resetDoneMsg struct {
	index int
	err   error
}
