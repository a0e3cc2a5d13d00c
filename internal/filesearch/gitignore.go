package filesearch

import (
	"bufio"
	"errors"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
)

// Ignore matches slash-separated relative paths against .gitignore rules.
// A nil *Ignore ignores nothing.
type Ignore struct {
	rules []rule
}

type rule struct {
	re      *regexp.Regexp
	negate  bool
	dirOnly bool
	rooted  bool
}

// LoadIgnore reads the .gitignore at p. A missing file yields an empty
// matcher.
func LoadIgnore(p string) (*Ignore, error) {
	f, err := os.Open(p)
	if errors.Is(err, fs.ErrNotExist) {
		return &Ignore{}, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseIgnore(f)
}

// ParseIgnore reads gitignore rules from r, one per line. Blank lines,
// comments and rules that do not compile are skipped.
func ParseIgnore(r io.Reader) (*Ignore, error) {
	ig := &Ignore{}
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || line[0] == '#' {
			continue
		}
		if ru, ok := compileRule(line); ok {
			ig.rules = append(ig.rules, ru)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return ig, nil
}

// Ignored reports whether p is excluded. The last matching rule wins, so a
// later "!name" re-includes what an earlier rule excluded.
func (ig *Ignore) Ignored(p string, isDir bool) bool {
	if ig == nil {
		return false
	}
	p = filepath.ToSlash(p)
	ignored := false
	for _, ru := range ig.rules {
		if ru.matches(p, isDir) {
			ignored = !ru.negate
		}
	}
	return ignored
}

// Len is the number of compiled rules.
func (ig *Ignore) Len() int {
	if ig == nil {
		return 0
	}
	return len(ig.rules)
}

func (ru rule) matches(p string, isDir bool) bool {
	switch {
	case ru.dirOnly && isDir:
		return ru.re.MatchString(p)
	case ru.dirOnly:
		return ru.re.MatchString(path.Dir(p))
	case ru.rooted:
		return ru.re.MatchString(p)
	default:
		return ru.re.MatchString(p) || ru.re.MatchString(path.Base(p))
	}
}

func compileRule(line string) (rule, bool) {
	var ru rule
	if strings.HasPrefix(line, "!") {
		ru.negate = true
		line = line[1:]
	}
	if strings.HasSuffix(line, "/") {
		ru.dirOnly = true
		line = strings.TrimSuffix(line, "/")
	}
	if strings.HasPrefix(line, "/") {
		ru.rooted = true
		line = line[1:]
	}
	if line == "" {
		return rule{}, false
	}

	var b strings.Builder
	if ru.rooted {
		b.WriteString("^")
	} else {
		b.WriteString("(^|/)")
	}
	globToRegexp(&b, line)
	if ru.rooted {
		b.WriteString("$")
	} else {
		b.WriteString("(/.*)?$")
	}

	re, err := regexp.Compile(b.String())
	if err != nil {
		return rule{}, false
	}
	ru.re = re
	return ru, true
}

// globToRegexp writes the regexp form of a gitignore glob: "*" stays within
// one segment, "**/" spans any number of leading directories.
func globToRegexp(b *strings.Builder, glob string) {
	for i := 0; i < len(glob); i++ {
		c := glob[i]
		switch c {
		case '*':
			if strings.HasPrefix(glob[i:], "**/") {
				b.WriteString("(.*/)?")
				i += 2
			} else if strings.HasPrefix(glob[i:], "**") {
				b.WriteString(".*")
				i++
			} else {
				b.WriteString("[^/]*")
			}
		case '?':
			b.WriteString("[^/]")
		case '[':
			end := strings.IndexByte(glob[i+1:], ']')
			if end < 0 {
				b.WriteString(`\[`)
				continue
			}
			b.WriteString(glob[i : i+end+2])
			i += end + 1
		case '\\':
			if i+1 < len(glob) {
				b.WriteString(regexp.QuoteMeta(glob[i+1 : i+2]))
				i++
			} else {
				b.WriteString(`\\`)
			}
		default:
			b.WriteString(regexp.QuoteMeta(string(c)))
		}
	}
}
