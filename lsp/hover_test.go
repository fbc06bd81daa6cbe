package lsp

import (
	"testing"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/lume-lang/lume-lsp/internal/compiler"
)

func checkSingleFile(t *testing.T, src string) *compiler.Package {
	t.Helper()
	root := t.TempDir()
	dcx := compiler.NewDiagCtx()
	drv, err := compiler.FromRoot(root, dcx)
	if err != nil {
		t.Fatalf("FromRoot: %v", err)
	}
	graph, err := drv.Check(compiler.Options{
		SourceOverrides: []compiler.SourceOverride{
			{Name: compiler.NewRelativeFileName("a.lm"), Content: src},
		},
	})
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	for _, pkg := range graph.All() {
		return pkg
	}
	t.Fatal("expected exactly one package")
	return nil
}

func findLoc(t *testing.T, pkg *compiler.Package, sub string) compiler.Location {
	t.Helper()
	sf := pkg.Sources[0]
	offset := indexOf(sf.Content, sub)
	if offset < 0 {
		t.Fatalf("substring %q not found in source", sub)
	}
	return compiler.Location{File: sf, Start: offset, End: offset}
}

func hoverValue(t *testing.T, hov *protocol.Hover) string {
	t.Helper()
	content, ok := hov.Contents.(protocol.MarkupContent)
	if !ok {
		t.Fatalf("expected MarkupContent, got %T", hov.Contents)
	}
	if content.Kind != protocol.MarkupKindMarkdown {
		t.Errorf("markup kind = %q; want markdown", content.Kind)
	}
	return content.Value
}

func TestHoverResolveStructName(t *testing.T) {
	pkg := checkSingleFile(t, "pub struct Point { x: Int, y: Int }")
	idx, err := SymbolIndexFromHIR(pkg.HIR)
	if err != nil {
		t.Fatalf("SymbolIndexFromHIR: %v", err)
	}

	hr := NewHoverResolver()
	hov, ok := hr.Resolve(pkg, idx, findLoc(t, pkg, "Point"))
	if !ok {
		t.Fatal("expected a hover result")
	}
	if got, want := hoverValue(t, hov), "```lm\npub struct Point\n```"; got != want {
		t.Errorf("hover value = %q; want %q", got, want)
	}
}

func TestHoverGenericEnumVariant(t *testing.T) {
	pkg := checkSingleFile(t, `
pub enum Opt<T> { Some(T), None }

fn one() -> Opt<Int> {
	return Opt::Some(1);
}
`)
	idx, err := SymbolIndexFromHIR(pkg.HIR)
	if err != nil {
		t.Fatalf("SymbolIndexFromHIR: %v", err)
	}

	hr := NewHoverResolver()
	hov, ok := hr.Resolve(pkg, idx, findLoc(t, pkg, "Some(1)"))
	if !ok {
		t.Fatal("expected a hover result for the variant construction")
	}
	if got, want := hoverValue(t, hov), "```lm\nOpt<T>::Some(T)\n```"; got != want {
		t.Errorf("hover value = %q; want %q", got, want)
	}
}

func TestHoverMissOnUnresolvableType(t *testing.T) {
	// "std::io::Reader" produces a Symbol Index entry at the middle "io"
	// segment (see symbolindex_test.go), but this front end has no nested
	// modules to resolve it against; rendering degrades to a miss rather
	// than an error, per the server's "no info" hover contract.
	pkg := checkSingleFile(t, "fn open(r: std::io::Reader) {}")
	idx, err := SymbolIndexFromHIR(pkg.HIR)
	if err != nil {
		t.Fatalf("SymbolIndexFromHIR: %v", err)
	}

	hr := NewHoverResolver()
	if _, ok := hr.Resolve(pkg, idx, findLoc(t, pkg, "io::Reader")); ok {
		t.Fatal("expected no hover result for an unresolvable type path")
	}
}

func TestHoverMissOnEmptyPosition(t *testing.T) {
	pkg := checkSingleFile(t, "pub struct Point { x: Int }")
	idx, err := SymbolIndexFromHIR(pkg.HIR)
	if err != nil {
		t.Fatalf("SymbolIndexFromHIR: %v", err)
	}

	hr := NewHoverResolver()
	loc := compiler.Location{File: pkg.Sources[0], Start: 0, End: 0}
	if _, ok := hr.Resolve(pkg, idx, loc); ok {
		t.Fatal("expected no hover result at whitespace")
	}
}

func TestHoverFunctionSignature(t *testing.T) {
	pkg := checkSingleFile(t, "pub fn add(a: Int, b: Int) -> Int { return a; }")
	idx, err := SymbolIndexFromHIR(pkg.HIR)
	if err != nil {
		t.Fatalf("SymbolIndexFromHIR: %v", err)
	}

	hr := NewHoverResolver()
	hov, ok := hr.Resolve(pkg, idx, findLoc(t, pkg, "add"))
	if !ok {
		t.Fatal("expected a hover result")
	}
	if got, want := hoverValue(t, hov), "```lm\npub add(a: Int, b: Int) -> Int\n```"; got != want {
		t.Errorf("hover value = %q; want %q", got, want)
	}
}
