// Package filesearch lists the files under a directory, honouring its
// .gitignore, and reads them for preview.
package filesearch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

// MaxFileSize is the largest file List reports and Read returns.
const MaxFileSize = 2 * 1024 * 1024

var (
	ErrBinary   = errors.New("binary file")
	ErrTooLarge = errors.New("file too large")
	ErrOutside  = errors.New("path escapes root")
)

// Entry is one listed file.
type Entry struct {
	Path string // slash-separated, relative to the root
	Size int64
}

// Options narrows a listing.
type Options struct {
	Pattern string // case-insensitive regexp over the relative path; "" lists everything
	Max     int    // 0 = unlimited
}

// Lister walks a root directory.
type Lister struct {
	root   string
	ignore *Ignore
}

// NewLister prepares a lister for root. A broken .gitignore is not fatal;
// the listing is just unfiltered.
func NewLister(root string) (*Lister, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", root, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s: not a directory", root)
	}
	ig, err := LoadIgnore(filepath.Join(abs, ".gitignore"))
	if err != nil {
		ig = nil
	}
	return &Lister{root: abs, ignore: ig}, nil
}

// Root returns the absolute root directory.
func (l *Lister) Root() string { return l.root }

// List returns the matching files sorted by path.
func (l *Lister) List(ctx context.Context, opts Options) ([]Entry, error) {
	var re *regexp.Regexp
	if opts.Pattern != "" {
		var err error
		if re, err = regexp.Compile("(?i)" + opts.Pattern); err != nil {
			return nil, fmt.Errorf("invalid pattern: %w", err)
		}
	}

	var out []Entry
	err := filepath.WalkDir(l.root, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if p == l.root {
			return nil
		}
		rel, err := filepath.Rel(l.root, p)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if d.IsDir() {
			if d.Name() == ".git" || l.ignore.Ignored(rel, true) {
				return filepath.SkipDir
			}
			return nil
		}
		if l.ignore.Ignored(rel, false) || (re != nil && !re.MatchString(rel)) {
			return nil
		}
		info, err := d.Info()
		if err != nil || !info.Mode().IsRegular() || info.Size() > MaxFileSize {
			return nil
		}
		out = append(out, Entry{Path: rel, Size: info.Size()})
		if opts.Max > 0 && len(out) >= opts.Max {
			return filepath.SkipAll
		}
		return nil
	})
	if err != nil && !errors.Is(err, filepath.SkipAll) {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

// Abs resolves a listed path against the root, refusing paths that leave it.
func (l *Lister) Abs(rel string) (string, error) {
	p := filepath.Join(l.root, filepath.FromSlash(rel))
	back, err := filepath.Rel(l.root, p)
	if err != nil || back == ".." || strings.HasPrefix(back, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%s: %w", rel, ErrOutside)
	}
	return p, nil
}

// Read returns the contents of a listed file. Files with NUL bytes are
// reported as ErrBinary.
func (l *Lister) Read(rel string) ([]byte, error) {
	p, err := l.Abs(rel)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(p)
	if err != nil {
		return nil, err
	}
	if info.Size() > MaxFileSize {
		return nil, fmt.Errorf("%s: %w", rel, ErrTooLarge)
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, err
	}
	if bytes.IndexByte(data, 0) >= 0 {
		return nil, fmt.Errorf("%s: %w", rel, ErrBinary)
	}
	return data, nil
}
