// Package treesitter extracts a symbol outline from source files with
// tree-sitter.
package treesitter

import (
	"fmt"
	"strings"
)

// SymbolKind classifies extracted symbols.
type SymbolKind int

const (
	KindPackage SymbolKind = iota
	KindFunction
	KindMethod
	KindType
	KindStruct
	KindInterface
	KindConst
	KindVar
)

// Symbol represents a single extracted code symbol.
type Symbol struct {
	Name      string
	Kind      SymbolKind
	Signature string
	StartLine int // 1-indexed
	EndLine   int // 1-indexed
	Receiver  string
	Children  []Symbol
}

func (k SymbolKind) String() string {
	switch k {
	case KindPackage:
		return "pkg"
	case KindFunction:
		return "func"
	case KindMethod:
		return "method"
	case KindType:
		return "type"
	case KindStruct:
		return "struct"
	case KindInterface:
		return "iface"
	case KindConst:
		return "const"
	case KindVar:
		return "var"
	}
	return "?"
}

// OutlineLines renders symbols one per line, children indented, each with
// its kind and start line.
func OutlineLines(syms []Symbol) []string {
	var out []string
	var add func(s Symbol, depth int)
	add = func(s Symbol, depth int) {
		name := s.Name
		if s.Receiver != "" {
			name = "(" + s.Receiver + ") " + name
		}
		out = append(out, fmt.Sprintf("%s%-6s %s :%d", strings.Repeat("  ", depth), s.Kind, name, s.StartLine))
		for _, c := range s.Children {
			add(c, depth+1)
		}
	}
	for _, s := range syms {
		add(s, 0)
	}
	return out
}
