package treesitter

import (
	"context"
	"strings"
	"testing"
)

const sample = `package main

import "fmt"

const Version = "1.0"

var Debug bool

type Server struct {
	addr string
	port int
}

type Handler interface {
	Handle(req string) string
}

func main() {
	fmt.Println("hello")
}

func (s *Server) Start() error {
	return nil
}
`

func TestParseSourceGo(t *testing.T) {
	syms, err := ParseSource(context.Background(), "test.go", []byte(sample))
	if err != nil {
		t.Fatalf("ParseSource: %v", err)
	}

	type key struct {
		name string
		kind SymbolKind
	}
	got := make(map[key]Symbol)
	for _, s := range syms {
		got[key{s.Name, s.Kind}] = s
	}

	for _, w := range []key{
		{"main", KindPackage},
		{"Version", KindConst},
		{"Debug", KindVar},
		{"Server", KindStruct},
		{"Handler", KindInterface},
		{"main", KindFunction},
		{"Start", KindMethod},
	} {
		if _, ok := got[w]; !ok {
			t.Errorf("missing symbol %q (kind=%v)", w.name, w.kind)
		}
	}

	start := got[key{"Start", KindMethod}]
	if start.Receiver != "*Server" {
		t.Errorf("receiver = %q", start.Receiver)
	}
	if start.Signature != "func (s *Server) Start() error" {
		t.Errorf("signature = %q", start.Signature)
	}
	if start.StartLine != 22 {
		t.Errorf("Start line = %d, want 22", start.StartLine)
	}

	server := got[key{"Server", KindStruct}]
	if len(server.Children) != 2 || server.Children[0].Name != "addr" {
		t.Errorf("struct fields = %+v", server.Children)
	}
	handler := got[key{"Handler", KindInterface}]
	if len(handler.Children) != 1 || handler.Children[0].Name != "Handle" {
		t.Errorf("interface methods = %+v", handler.Children)
	}
}

func TestParseSourceUnsupported(t *testing.T) {
	syms, err := ParseSource(context.Background(), "test.py", []byte("print('hello')"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(syms) != 0 {
		t.Errorf("expected no symbols for unsupported language, got %d", len(syms))
	}
	if Supported("x.py") || !Supported("X.GO") {
		t.Error("Supported is wrong")
	}
}

func TestOutlineLines(t *testing.T) {
	lines := OutlineLines([]Symbol{
		{Name: "main", Kind: KindPackage, StartLine: 1},
		{Name: "Server", Kind: KindStruct, StartLine: 9, Children: []Symbol{
			{Name: "addr", Kind: KindVar, StartLine: 10},
		}},
		{Name: "Start", Kind: KindMethod, Receiver: "*Server", StartLine: 24},
	})
	want := []string{
		"pkg    main :1",
		"struct Server :9",
		"  var    addr :10",
		"method (*Server) Start :24",
	}
	if strings.Join(lines, "\n") != strings.Join(want, "\n") {
		t.Errorf("outline:\n%s", strings.Join(lines, "\n"))
	}
}
