// Package testutil provides a small in-process test harness for driving
// the Lume language server through its glsp protocol.Handler without a
// real stdio transport.
package testutil

import (
	"fmt"
	"net/url"
	"runtime"
	"strings"
	"testing"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

// PathToURI converts a filesystem path to a file:// URI. Kept standalone
// here (rather than importing the lsp package) to avoid a test-only
// import cycle.
func PathToURI(path string) string {
	path = strings.ReplaceAll(path, "\\", "/")
	if runtime.GOOS == "windows" && isWindowsDriveLetter(path) {
		path = "/" + path
	}
	return "file://" + (&url.URL{Path: path}).EscapedPath()
}

func isWindowsDriveLetter(path string) bool {
	return len(path) >= 2 && path[1] == ':' &&
		((path[0] >= 'a' && path[0] <= 'z') || (path[0] >= 'A' && path[0] <= 'Z'))
}

// Harness wraps a protocol.Handler with the bookkeeping needed to drive it
// through an initialize/didOpen/hover test sequence.
type Harness struct {
	t       *testing.T
	handler *protocol.Handler
	Root    string
}

// NewHarness builds a harness rooted at root, wrapping an already
// constructed protocol.Handler.
func NewHarness(t *testing.T, handler *protocol.Handler, root string) *Harness {
	t.Helper()
	return &Harness{t: t, handler: handler, Root: root}
}

// Initialize sends an initialize request with a single workspace folder
// rooted at h.Root.
func (h *Harness) Initialize() {
	h.t.Helper()
	h.InitializeWithFolders([]string{h.Root})
}

// InitializeWithFolders sends an initialize request with the given
// workspace folder paths.
func (h *Harness) InitializeWithFolders(folders []string) {
	h.t.Helper()

	wsFolders := make([]protocol.WorkspaceFolder, len(folders))
	for i, f := range folders {
		wsFolders[i] = protocol.WorkspaceFolder{URI: PathToURI(f), Name: f}
	}

	params := &protocol.InitializeParams{
		WorkspaceFolders: wsFolders,
		Capabilities: protocol.ClientCapabilities{
			TextDocument: &protocol.TextDocumentClientCapabilities{
				Synchronization: &protocol.TextDocumentSyncClientCapabilities{},
				Hover:           &protocol.HoverClientCapabilities{},
			},
		},
	}

	if _, err := h.handler.Initialize(nil, params); err != nil {
		h.t.Fatalf("initialize: %v", err)
	}
	if err := h.handler.Initialized(nil, &protocol.InitializedParams{}); err != nil {
		h.t.Fatalf("initialized: %v", err)
	}
}

// OpenDocument sends a didOpen notification for the given path (relative
// to h.Root) with the given content, returning the document's URI.
func (h *Harness) OpenDocument(path, content string) string {
	h.t.Helper()
	uri := PathToURI(h.Root + "/" + path)
	err := h.handler.TextDocumentDidOpen(nil, &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{
			URI:        uri,
			LanguageID: "lume",
			Version:    1,
			Text:       content,
		},
	})
	if err != nil {
		h.t.Fatalf("didOpen %s: %v", path, err)
	}
	return uri
}

// ChangeDocument sends a didChange notification replacing the whole
// document content.
func (h *Harness) ChangeDocument(uri, content string, version int) {
	h.t.Helper()
	err := h.handler.TextDocumentDidChange(nil, &protocol.DidChangeTextDocumentParams{
		TextDocument: protocol.VersionedTextDocumentIdentifier{
			TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: uri},
			Version:                version,
		},
		ContentChanges: []any{
			protocol.TextDocumentContentChangeEventWhole{Text: content},
		},
	})
	if err != nil {
		h.t.Fatalf("didChange %s: %v", uri, err)
	}
}

// CloseDocument sends a didClose notification.
func (h *Harness) CloseDocument(uri string) {
	h.t.Helper()
	err := h.handler.TextDocumentDidClose(nil, &protocol.DidCloseTextDocumentParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: uri},
	})
	if err != nil {
		h.t.Fatalf("didClose %s: %v", uri, err)
	}
}

// Hover sends a hover request at the given zero-based line/character.
func (h *Harness) Hover(uri string, line, char int) *protocol.Hover {
	h.t.Helper()
	result, err := h.handler.TextDocumentHover(nil, &protocol.HoverParams{
		TextDocumentPositionParams: protocol.TextDocumentPositionParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: uri},
			Position:     protocol.Position{Line: uint32(line), Character: uint32(char)},
		},
	})
	if err != nil {
		h.t.Fatalf("hover %s:%d:%d: %v", uri, line, char, err)
	}
	return result
}

// Handler returns the underlying protocol.Handler for direct access.
func (h *Harness) Handler() *protocol.Handler {
	return h.handler
}

// Close sends a shutdown request. It does not send the exit notification,
// since the server's exit handler ends the process.
func (h *Harness) Close() {
	h.t.Helper()
	if _, err := h.handler.Shutdown(nil); err != nil {
		h.t.Fatalf("shutdown: %v", err)
	}
}

// DocPath joins a harness root and a relative path the way the server's
// own URI-to-path resolution expects it.
func DocPath(root, rel string) string {
	return fmt.Sprintf("%s/%s", root, rel)
}
