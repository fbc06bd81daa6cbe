package lsp

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestNewServer(t *testing.T) {
	root := t.TempDir()
	srv := NewServer(testLogger(), root)

	if srv == nil {
		t.Fatal("NewServer() returned nil")
	}
	if srv.workspace == nil {
		t.Error("server.workspace is nil")
	}
	if srv.server == nil {
		t.Error("server.server is nil")
	}
	if srv.hover == nil {
		t.Error("server.hover is nil")
	}
}

func TestServerClose(t *testing.T) {
	srv := NewServer(testLogger(), t.TempDir())

	if err := srv.Close(); err != nil {
		t.Errorf("first Close() error: %v", err)
	}
	if err := srv.Close(); err != nil {
		t.Errorf("second Close() error: %v", err)
	}
}

func TestInitializeRequiresWorkspaceFolder(t *testing.T) {
	srv := NewServer(testLogger(), t.TempDir())

	_, err := srv.initialize(nil, &protocol.InitializeParams{})
	if err == nil {
		t.Fatal("expected initialize to fail with no workspace folder")
	}
}

func TestInitializeSetsWorkspaceRoot(t *testing.T) {
	root := t.TempDir()
	srv := NewServer(testLogger(), t.TempDir())

	uri := PathToURI(root)
	result, err := srv.initialize(nil, &protocol.InitializeParams{
		WorkspaceFolders: []protocol.WorkspaceFolder{{URI: uri, Name: "root"}},
	})
	if err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if srv.workspace.Root() != filepath.Clean(root) {
		t.Errorf("workspace root = %q; want %q", srv.workspace.Root(), root)
	}

	init, ok := result.(protocol.InitializeResult)
	if !ok {
		t.Fatalf("expected protocol.InitializeResult, got %T", result)
	}
	if !init.Capabilities.HoverProvider.(bool) {
		t.Error("expected HoverProvider to be advertised")
	}
}

func TestDidOpenAndHover(t *testing.T) {
	root := t.TempDir()
	srv := NewServer(testLogger(), root)
	uri := PathToURI(filepath.Join(root, "main.lm"))

	if err := srv.textDocumentDidOpen(nil, &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{
			URI:     uri,
			Text:    "pub struct Point { x: Int, y: Int }",
			Version: 1,
		},
	}); err != nil {
		t.Fatalf("textDocumentDidOpen: %v", err)
	}

	hov, err := srv.textDocumentHover(nil, &protocol.HoverParams{
		TextDocumentPositionParams: protocol.TextDocumentPositionParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: uri},
			Position:     protocol.Position{Line: 0, Character: 11},
		},
	})
	if err != nil {
		t.Fatalf("textDocumentHover: %v", err)
	}
	if hov == nil {
		t.Fatal("expected a hover result")
	}
	content, ok := hov.Contents.(protocol.MarkupContent)
	if !ok {
		t.Fatalf("expected MarkupContent, got %T", hov.Contents)
	}
	if want := "```lm\npub struct Point\n```"; content.Value != want {
		t.Errorf("hover value = %q; want %q", content.Value, want)
	}
}

func TestHoverOnUnknownDocumentIsInvalidParams(t *testing.T) {
	srv := NewServer(testLogger(), t.TempDir())

	_, err := srv.textDocumentHover(nil, &protocol.HoverParams{
		TextDocumentPositionParams: protocol.TextDocumentPositionParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: PathToURI("/nowhere/x.lm")},
			Position:     protocol.Position{Line: 0, Character: 0},
		},
	})
	if err == nil {
		t.Fatal("expected an error for an unknown document")
	}
}

func TestDidChangeThenFixReindexes(t *testing.T) {
	root := t.TempDir()
	srv := NewServer(testLogger(), root)
	uri := PathToURI(filepath.Join(root, "main.lm"))

	if err := srv.textDocumentDidOpen(nil, &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{URI: uri, Text: "###", Version: 1},
	}); err != nil {
		t.Fatalf("textDocumentDidOpen: %v", err)
	}

	if err := srv.textDocumentDidChange(nil, &protocol.DidChangeTextDocumentParams{
		TextDocument: protocol.VersionedTextDocumentIdentifier{
			TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: uri},
			Version:                2,
		},
		ContentChanges: []any{
			protocol.TextDocumentContentChangeEventWhole{Text: "pub struct Point { x: Int }"},
		},
	}); err != nil {
		t.Fatalf("textDocumentDidChange: %v", err)
	}

	if _, ok := srv.workspace.Index().LookupPosition(mustLocAt(t, srv.workspace, uri, "Point")); !ok {
		t.Fatal("expected the fixed source to be reflected in the Symbol Index")
	}
}

func TestDidCloseRevertsToDiskContent(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "main.lm"), []byte("pub struct Point { x: Int }"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	srv := NewServer(testLogger(), root)
	uri := PathToURI(filepath.Join(root, "main.lm"))

	if err := srv.textDocumentDidOpen(nil, &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{URI: uri, Text: "pub struct Circle { r: Int }", Version: 1},
	}); err != nil {
		t.Fatalf("textDocumentDidOpen: %v", err)
	}
	if err := srv.textDocumentDidClose(nil, &protocol.DidCloseTextDocumentParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: uri},
	}); err != nil {
		t.Fatalf("textDocumentDidClose: %v", err)
	}

	if _, ok := srv.workspace.Index().LookupPosition(mustLocAt(t, srv.workspace, uri, "Point")); !ok {
		t.Fatal("expected on-disk content to be checked again once the overlay entry closed")
	}
}

func TestIsLumeURI(t *testing.T) {
	cases := map[string]bool{
		PathToURI("/ws/a.lm"):     true,
		PathToURI("/ws/a.md"):     false,
		PathToURI("/ws/Arcfile"):  false,
		"not-a-uri-at-all":        false,
	}
	for uri, want := range cases {
		if got := isLumeURI(uri); got != want {
			t.Errorf("isLumeURI(%q) = %v; want %v", uri, got, want)
		}
	}
}
