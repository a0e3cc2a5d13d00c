package tui

import (
	"path/filepath"

	tea "charm.land/bubbletea/v2"
	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/xonecas/splitview/internal/filesearch"
	"github.com/xonecas/splitview/internal/treesitter"
)

const maxListed = 5000

func (m *Model) listCmd() tea.Cmd {
	l, ctx := m.lister, m.ctx
	return func() tea.Msg {
		entries, err := l.List(ctx, filesearch.Options{Max: maxListed})
		return filesListedMsg{entries: entries, err: err}
	}
}

func (m *Model) openSelected() tea.Cmd {
	e, ok := m.files.Selected()
	if !ok {
		return nil
	}
	return m.openCmd(e.Path, false)
}

// openCmd reads a file, then highlights it and extracts its outline in
// parallel.
func (m *Model) openCmd(rel string, reload bool) tea.Cmd {
	l, r, ctx := m.lister, m.renderer, m.ctx
	return func() tea.Msg {
		msg := fileOpenedMsg{path: rel, reload: reload}
		abs, err := l.Abs(rel)
		if err != nil {
			msg.err = err
			return msg
		}
		msg.abs = abs
		data, err := l.Read(rel)
		if err != nil {
			msg.err = err
			return msg
		}
		msg.src = string(data)

		var syms []treesitter.Symbol
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			msg.lines = r.Lines(rel, msg.src)
			return nil
		})
		g.Go(func() error {
			var err error
			syms, err = treesitter.ParseSource(gctx, rel, data)
			return err
		})
		msg.err = g.Wait()
		msg.outline = treesitter.OutlineLines(syms)
		return msg
	}
}

func (m *Model) handleFileOpened(msg fileOpenedMsg) {
	if msg.err != nil {
		log.Warn().Err(msg.err).Str("path", msg.path).Msg("open failed")
		m.note = msg.err.Error()
		return
	}
	if !msg.reload || m.open == nil || m.open.path != msg.path {
		m.open = &openFile{path: msg.path, abs: msg.abs, base: msg.src}
		m.watch(filepath.Dir(msg.abs))
	}
	m.files.opened = msg.path
	m.preview.SetContent(msg.path, msg.lines)

	outline := make([]string, len(msg.outline))
	for i, line := range msg.outline {
		outline[i] = m.styles.Text.Render(line)
	}
	m.outline.SetLines(outline)
	m.changes.SetLines(diffLines(m.styles, unifiedDiff(msg.path, m.open.base, msg.src)))
	if msg.reload {
		m.note = "reloaded " + msg.path
	}
}

// watch moves the watcher to dir. Editors often replace files by renaming,
// so the directory is watched rather than the file.
func (m *Model) watch(dir string) {
	if m.watcher == nil || dir == m.watching {
		return
	}
	if m.watching != "" {
		if err := m.watcher.Remove(m.watching); err != nil {
			log.Debug().Err(err).Str("dir", m.watching).Msg("unwatch failed")
		}
	}
	if err := m.watcher.Add(dir); err != nil {
		log.Warn().Err(err).Str("dir", dir).Msg("watch failed")
		m.watching = ""
		return
	}
	m.watching = dir
}

// watchCmd waits for the next write in the watched directory.
func (m *Model) watchCmd() tea.Cmd {
	w := m.watcher
	if w == nil {
		return nil
	}
	return func() tea.Msg {
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return nil
				}
				if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) {
					return fileChangedMsg{abs: ev.Name}
				}
			case err, ok := <-w.Errors:
				if !ok {
					return nil
				}
				log.Warn().Err(err).Msg("file watcher error")
			}
		}
	}
}
