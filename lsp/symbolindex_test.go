package lsp

import (
	"testing"

	"github.com/lume-lang/lume-lsp/internal/compiler"
)

func parseIndex(t *testing.T, src string) (*compiler.SourceFile, *SymbolIndex) {
	t.Helper()
	sf := &compiler.SourceFile{ID: compiler.NewSourceFileId(), Name: compiler.NewRelativeFileName("a.lm"), Content: src}
	m, errs := compiler.ParseFile(sf)
	if len(errs) != 0 {
		t.Fatalf("unexpected parse errors: %v", errs)
	}
	idx, err := SymbolIndexFromHIR(m)
	if err != nil {
		t.Fatalf("SymbolIndexFromHIR: %v", err)
	}
	return sf, idx
}

func TestSymbolIndexStructDefinitionEntry(t *testing.T) {
	sf, idx := parseIndex(t, "pub struct Point { x: Int, y: Int }")

	offset := indexOf(sf.Content, "Point")
	loc := compiler.Location{File: sf, Start: offset, End: offset}
	entry, ok := idx.LookupPosition(loc)
	if !ok {
		t.Fatal("expected a symbol entry at the struct name")
	}
	if entry.Kind.Kind() != "Type" {
		t.Errorf("kind = %s; want Type", entry.Kind.Kind())
	}
	if entry.Kind.TypeName.String() != "Point" {
		t.Errorf("type name = %s; want Point", entry.Kind.TypeName.String())
	}
}

func TestSymbolIndexFieldTypeReferenceSmallestSpanWins(t *testing.T) {
	sf, idx := parseIndex(t, "pub struct Point { x: Int }")

	// "Int" sits somewhere past "x: "; find it by scanning.
	offset := indexOf(sf.Content, "Int")
	loc := compiler.Location{File: sf, Start: offset, End: offset}
	entry, ok := idx.LookupPosition(loc)
	if !ok {
		t.Fatal("expected a symbol entry at the field type")
	}
	if entry.Kind.Kind() != "Type" || entry.Kind.TypeName.String() != "Int" {
		t.Errorf("entry = %+v; want Type(Int)", entry.Kind)
	}
}

func TestSymbolIndexVariantConstructionCallEntry(t *testing.T) {
	sf, idx := parseIndex(t, `
pub enum Opt<T> { Some(T), None }

fn one() -> Opt<Int> {
	return Opt::Some(1);
}
`)

	offset := indexOf(sf.Content, "Some(1)")
	loc := compiler.Location{File: sf, Start: offset, End: offset}
	entry, ok := idx.LookupPosition(loc)
	if !ok {
		t.Fatal("expected a symbol entry at the variant construction")
	}
	if entry.Kind.Kind() != "Variant" {
		t.Errorf("kind = %s; want Variant", entry.Kind.Kind())
	}
	if entry.Kind.VariantOf.String() != "Opt::Some" {
		t.Errorf("variant name = %s; want Opt::Some", entry.Kind.VariantOf.String())
	}
}

func TestSymbolIndexMiddlePathSegmentResolvesToOwningType(t *testing.T) {
	sf, idx := parseIndex(t, "fn open(r: std::io::Reader) {}")

	offset := indexOf(sf.Content, "io")
	loc := compiler.Location{File: sf, Start: offset, End: offset}
	entry, ok := idx.LookupPosition(loc)
	if !ok {
		t.Fatal("expected a symbol entry at the middle path segment")
	}
	if entry.Kind.Kind() != "Type" {
		t.Errorf("kind = %s; want Type", entry.Kind.Kind())
	}
}

func TestSymbolIndexExtendMerges(t *testing.T) {
	_, idxA := parseIndex(t, "pub struct A {}")
	_, idxB := parseIndex(t, "pub struct B {}")

	idxA.Extend(idxB)
	if len(idxA.entries) < 2 {
		t.Fatalf("expected merged index to carry entries from both, got %d", len(idxA.entries))
	}
}

func indexOf(s, sub string) int {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return i
		}
	}
	return -1
}
