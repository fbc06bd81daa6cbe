package lsp

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/lume-lang/lume-lsp/internal/compiler"
)

func newTestWorkspace(t *testing.T) (*Workspace, string) {
	t.Helper()
	root := t.TempDir()
	return NewWorkspace(slog.Default(), root), root
}

func TestCompileWorkspaceIndexesDiskSource(t *testing.T) {
	ws, root := newTestWorkspace(t)
	if err := os.WriteFile(filepath.Join(root, "main.lm"), []byte("pub struct Point { x: Int, y: Int }"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	pubs, clears := ws.CompileWorkspace()
	if len(pubs) != 0 {
		t.Fatalf("expected no diagnostics for valid source, got %v", pubs)
	}
	if len(clears) != 0 {
		t.Fatalf("expected no clears on first compile, got %v", clears)
	}

	uri := PathToURI(filepath.Join(root, "main.lm"))
	_, ok := ws.SourceOf(uri)
	if !ok {
		t.Fatal("expected main.lm to resolve to a checked source file")
	}
	entry, ok := ws.Index().LookupPosition(mustLocAt(t, ws, uri, "Point"))
	if !ok || entry.Kind.Kind() != "Type" {
		t.Fatalf("expected a Type entry at Point, got ok=%v entry=%+v", ok, entry)
	}
}

func TestCompileWorkspaceOverlaySupersedesDisk(t *testing.T) {
	ws, root := newTestWorkspace(t)
	path := filepath.Join(root, "main.lm")
	if err := os.WriteFile(path, []byte("pub struct Point { x: Int }"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	uri := PathToURI(path)

	ws.DocumentOpened(uri, "pub struct Circle { r: Int }", 1)
	ws.CompileWorkspace()

	if _, ok := ws.Index().LookupPosition(mustLocAt(t, ws, uri, "Circle")); !ok {
		t.Fatal("expected the open overlay's content to be checked, not the on-disk content")
	}
	for _, e := range ws.Index().entries {
		if f := e.Location.File; f != nil && f.Content[e.Location.Start:e.Location.End] == "Point" {
			t.Fatal("did not expect the superseded on-disk struct name to appear in the index")
		}
	}
}

func TestCompileWorkspaceClearsStaleDiagnostics(t *testing.T) {
	ws, root := newTestWorkspace(t)
	path := filepath.Join(root, "main.lm")
	uri := PathToURI(path)

	ws.DocumentOpened(uri, "###", 1)
	pubs, _ := ws.CompileWorkspace()
	if len(pubs) == 0 {
		t.Fatal("expected at least one diagnostic for invalid syntax")
	}

	ws.DocumentChanged(uri, "pub struct Point { x: Int }", 2)
	pubs, clears := ws.CompileWorkspace()
	if len(pubs) != 0 {
		t.Fatalf("expected no new diagnostics once the syntax error is fixed, got %v", pubs)
	}
	found := false
	for _, c := range clears {
		if c == uri {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected %s to be cleared, got %v", uri, clears)
	}
}

func TestDocumentClosedRevertsToDiskContent(t *testing.T) {
	ws, root := newTestWorkspace(t)
	path := filepath.Join(root, "main.lm")
	if err := os.WriteFile(path, []byte("pub struct Point { x: Int }"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	uri := PathToURI(path)

	ws.DocumentOpened(uri, "pub struct Circle { r: Int }", 1)
	if !ws.DocumentClosed(uri) {
		t.Fatal("expected DocumentClosed to report the document was open")
	}

	ws.CompileWorkspace()
	if _, ok := ws.Index().LookupPosition(mustLocAt(t, ws, uri, "Point")); !ok {
		t.Fatal("expected on-disk content to be checked again once the overlay entry closed")
	}
}

func TestPackageMissOutsideWorkspace(t *testing.T) {
	ws, _ := newTestWorkspace(t)
	ws.CompileWorkspace()
	if _, ok := ws.Package(PathToURI("/somewhere/else/unrelated.lm")); ok {
		t.Fatal("expected no package match for a URI outside the workspace root")
	}
}

func TestURIPathRoundTrip(t *testing.T) {
	path := "/workspace/pkg/main.lm"
	uri := PathToURI(path)
	got, err := URIToPath(uri)
	if err != nil {
		t.Fatalf("URIToPath: %v", err)
	}
	if got != path {
		t.Errorf("round trip = %q; want %q", got, path)
	}
}

// mustLocAt locates sub within the content backing uri's current checked
// source file, failing the test if either lookup fails.
func mustLocAt(t *testing.T, ws *Workspace, uri, sub string) compiler.Location {
	t.Helper()
	sf, ok := ws.SourceOf(uri)
	if !ok {
		t.Fatalf("%s did not resolve to a checked source file", uri)
	}
	offset := indexOf(sf.Content, sub)
	if offset < 0 {
		t.Fatalf("substring %q not found in %s", sub, uri)
	}
	return compiler.Location{File: sf, Start: offset, End: offset}
}
