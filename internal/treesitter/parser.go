package treesitter

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
)

// grammars maps file extensions to tree-sitter languages.
var grammars = map[string]func() *sitter.Language{
	".go": golang.GetLanguage,
}

// Supported returns true if the file extension has a tree-sitter grammar.
func Supported(path string) bool {
	_, ok := grammars[strings.ToLower(filepath.Ext(path))]
	return ok
}

// ParseSource parses src as the language of path and returns its top-level
// symbols in source order. Unsupported files yield no symbols.
func ParseSource(ctx context.Context, path string, src []byte) ([]Symbol, error) {
	grammar, ok := grammars[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return nil, nil
	}

	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(grammar())

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	defer tree.Close()

	w := walker{src: src}
	root := tree.RootNode()
	for i := range int(root.NamedChildCount()) {
		w.topLevel(root.NamedChild(i))
	}
	return w.syms, nil
}

type walker struct {
	src  []byte
	syms []Symbol
}

func (w *walker) text(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	return n.Content(w.src)
}

func (w *walker) symbol(n *sitter.Node, name string, kind SymbolKind) Symbol {
	return Symbol{
		Name:      name,
		Kind:      kind,
		StartLine: int(n.StartPoint().Row) + 1,
		EndLine:   int(n.EndPoint().Row) + 1,
	}
}

func (w *walker) topLevel(n *sitter.Node) {
	switch n.Type() {
	case "package_clause":
		if id := n.NamedChild(0); id != nil {
			w.syms = append(w.syms, w.symbol(n, w.text(id), KindPackage))
		}
	case "function_declaration":
		s := w.symbol(n, w.text(n.ChildByFieldName("name")), KindFunction)
		s.Signature = w.signature(n, "")
		w.syms = append(w.syms, s)
	case "method_declaration":
		recv := n.ChildByFieldName("receiver")
		s := w.symbol(n, w.text(n.ChildByFieldName("name")), KindMethod)
		s.Receiver = w.receiverType(recv)
		s.Signature = w.signature(n, w.text(recv))
		w.syms = append(w.syms, s)
	case "type_declaration":
		w.eachNamed(n, func(spec *sitter.Node) {
			if spec.Type() == "type_spec" || spec.Type() == "type_alias" {
				w.syms = append(w.syms, w.typeSpec(spec))
			}
		})
	case "const_declaration", "var_declaration":
		kind := KindConst
		if n.Type() == "var_declaration" {
			kind = KindVar
		}
		w.specs(n, kind)
	}
}

// specs collects const and var names; grouped declarations may nest their
// specs one level down.
func (w *walker) specs(n *sitter.Node, kind SymbolKind) {
	w.eachNamed(n, func(c *sitter.Node) {
		switch c.Type() {
		case "const_spec", "var_spec":
			w.eachNamed(c, func(id *sitter.Node) {
				if id.Type() == "identifier" {
					w.syms = append(w.syms, w.symbol(c, w.text(id), kind))
				}
			})
		case "var_spec_list":
			w.specs(c, kind)
		}
	})
}

func (w *walker) typeSpec(spec *sitter.Node) Symbol {
	typ := spec.ChildByFieldName("type")
	s := w.symbol(spec, w.text(spec.ChildByFieldName("name")), KindType)
	if typ == nil {
		return s
	}
	s.Signature = "type " + s.Name + " " + typ.Type()
	switch typ.Type() {
	case "struct_type":
		s.Kind = KindStruct
		w.walk(typ, func(f *sitter.Node) {
			if f.Type() != "field_declaration" {
				return
			}
			if name := f.ChildByFieldName("name"); name != nil {
				field := w.symbol(f, w.text(name), KindVar)
				field.Signature = strings.TrimSpace(w.text(f))
				s.Children = append(s.Children, field)
			}
		})
	case "interface_type":
		s.Kind = KindInterface
		w.eachNamed(typ, func(m *sitter.Node) {
			if m.Type() != "method_elem" && m.Type() != "method_spec" {
				return
			}
			if name := m.ChildByFieldName("name"); name != nil {
				method := w.symbol(m, w.text(name), KindMethod)
				method.Signature = w.text(m)
				s.Children = append(s.Children, method)
			}
		})
	}
	return s
}

func (w *walker) receiverType(recv *sitter.Node) string {
	var typ string
	w.eachNamed(recv, func(p *sitter.Node) {
		if typ == "" && p.Type() == "parameter_declaration" {
			typ = w.text(p.ChildByFieldName("type"))
		}
	})
	return typ
}

func (w *walker) signature(fn *sitter.Node, receiver string) string {
	var b strings.Builder
	b.WriteString("func ")
	if receiver != "" {
		b.WriteString(receiver + " ")
	}
	b.WriteString(w.text(fn.ChildByFieldName("name")))
	b.WriteString(w.text(fn.ChildByFieldName("parameters")))
	if result := fn.ChildByFieldName("result"); result != nil {
		b.WriteString(" " + w.text(result))
	}
	return b.String()
}

func (w *walker) eachNamed(n *sitter.Node, fn func(*sitter.Node)) {
	if n == nil {
		return
	}
	for i := range int(n.NamedChildCount()) {
		fn(n.NamedChild(i))
	}
}

// walk visits every named descendant of n.
func (w *walker) walk(n *sitter.Node, fn func(*sitter.Node)) {
	w.eachNamed(n, func(c *sitter.Node) {
		fn(c)
		w.walk(c, fn)
	})
}
