package lsp

import "testing"

func TestVfsOpenAndGet(t *testing.T) {
	v := NewVfs("/ws")
	uri := PathToURI("/ws/main.lm")

	v.Open(uri, "pub struct Point {}", 1)

	doc, ok := v.Get(uri)
	if !ok {
		t.Fatal("expected document to be open")
	}
	if doc.Content != "pub struct Point {}" {
		t.Errorf("content = %q", doc.Content)
	}
	if doc.File.Name.String() != "main.lm" {
		t.Errorf("relative name = %q; want main.lm", doc.File.Name.String())
	}
}

func TestVfsChangeUpdatesContentAndVersion(t *testing.T) {
	v := NewVfs("/ws")
	uri := PathToURI("/ws/main.lm")

	v.Open(uri, "pub struct Point {}", 1)
	v.Change(uri, "pub struct Point { x: Int }", 2)

	doc, ok := v.Get(uri)
	if !ok {
		t.Fatal("expected document to still be open")
	}
	if doc.Version != 2 {
		t.Errorf("version = %d; want 2", doc.Version)
	}
	if doc.Content != "pub struct Point { x: Int }" {
		t.Errorf("content = %q", doc.Content)
	}
}

func TestVfsChangeOnUnopenedDocumentIsNoop(t *testing.T) {
	v := NewVfs("/ws")
	uri := PathToURI("/ws/main.lm")

	v.Change(uri, "anything", 1)

	if _, ok := v.Get(uri); ok {
		t.Fatal("expected document to remain closed")
	}
}

func TestVfsClose(t *testing.T) {
	v := NewVfs("/ws")
	uri := PathToURI("/ws/main.lm")

	v.Open(uri, "pub struct Point {}", 1)
	if !v.Close(uri) {
		t.Fatal("expected Close to report the document was open")
	}
	if _, ok := v.Get(uri); ok {
		t.Fatal("expected document to be gone after Close")
	}
	if v.Close(uri) {
		t.Fatal("expected a second Close to report false")
	}
}

func TestVfsBuildOverridesPreservesInsertionOrder(t *testing.T) {
	v := NewVfs("/ws")
	uriA := PathToURI("/ws/a.lm")
	uriB := PathToURI("/ws/b.lm")

	v.Open(uriB, "pub struct B {}", 1)
	v.Open(uriA, "pub struct A {}", 1)

	overrides := v.BuildOverrides()
	if len(overrides) != 2 {
		t.Fatalf("len(overrides) = %d; want 2", len(overrides))
	}
	if overrides[0].Name.String() != "b.lm" || overrides[1].Name.String() != "a.lm" {
		t.Errorf("override order = [%s, %s]; want [b.lm, a.lm]",
			overrides[0].Name.String(), overrides[1].Name.String())
	}
}

func TestVfsBuildOverridesDropsClosedDocuments(t *testing.T) {
	v := NewVfs("/ws")
	uriA := PathToURI("/ws/a.lm")
	uriB := PathToURI("/ws/b.lm")

	v.Open(uriA, "pub struct A {}", 1)
	v.Open(uriB, "pub struct B {}", 1)
	v.Close(uriA)

	overrides := v.BuildOverrides()
	if len(overrides) != 1 || overrides[0].Name.String() != "b.lm" {
		t.Fatalf("overrides = %+v; want only b.lm", overrides)
	}
}
