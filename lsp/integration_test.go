package lsp

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/lume-lang/lume-lsp/lsp/testutil"
)

// newTestHarness creates a harness driving a real *Server through its
// protocol.Handler, without a stdio transport.
func newTestHarness(t *testing.T, root string) *testutil.Harness {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := NewServer(logger, root)
	return testutil.NewHarness(t, srv.Handler(), root)
}

func TestIntegration_InitializeSuccess(t *testing.T) {
	t.Parallel()
	h := newTestHarness(t, t.TempDir())
	defer h.Close()
	h.Initialize()
}

func TestIntegration_HoverOnUnopenedDiskDocument(t *testing.T) {
	// A file on disk that is not open in the editor is still part of the
	// checked workspace, so hover answers from its on-disk content.
	t.Parallel()

	tmpDir := t.TempDir()
	content := "pub struct Person { name: Int }\n"
	path := filepath.Join(tmpDir, "main.lm")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	h := newTestHarness(t, tmpDir)
	defer h.Close()
	h.Initialize()

	hov := h.Hover(testutil.PathToURI(path), 0, 11)
	testutil.AssertHoverContains(t, hov, "Person")
}

func TestIntegration_OverlayOverridesDisk(t *testing.T) {
	// Documents open in the editor must take precedence over disk content.
	t.Parallel()

	tmpDir := t.TempDir()
	diskContent := "pub struct Person { diskField: Int }\n"
	if err := os.WriteFile(filepath.Join(tmpDir, "main.lm"), []byte(diskContent), 0o600); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	h := newTestHarness(t, tmpDir)
	defer h.Close()
	h.Initialize()

	overlayContent := "pub struct Person { overlayField: Int }\n"
	uri := h.OpenDocument("main.lm", overlayContent)

	// Character 20 is the start of the first field's name.
	hov := h.Hover(uri, 0, 20)
	testutil.AssertHoverContains(t, hov, "overlayField")
}

func TestIntegration_DidChangeRecompilesOverlay(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	h := newTestHarness(t, tmpDir)
	defer h.Close()
	h.Initialize()

	uri := h.OpenDocument("main.lm", "pub struct Point { x: Int }")
	h.ChangeDocument(uri, "pub struct Circle { r: Int }", 2)

	hov := h.Hover(uri, 0, 11)
	testutil.AssertHoverContains(t, hov, "Circle")
}

func TestIntegration_DidCloseRevertsToDiskContent(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	diskContent := "pub struct Point { x: Int }\n"
	if err := os.WriteFile(filepath.Join(tmpDir, "main.lm"), []byte(diskContent), 0o600); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	h := newTestHarness(t, tmpDir)
	defer h.Close()
	h.Initialize()

	uri := h.OpenDocument("main.lm", "pub struct Circle { r: Int }")
	h.CloseDocument(uri)

	// The overlay is gone; the on-disk content is checked again.
	hov := h.Hover(uri, 0, 11)
	testutil.AssertHoverContains(t, hov, "Point")
}

func TestIntegration_HoverKindIsMarkdown(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	h := newTestHarness(t, tmpDir)
	defer h.Close()
	h.Initialize()

	uri := h.OpenDocument("main.lm", "pub struct Point { x: Int }")
	hov := h.Hover(uri, 0, 11)
	testutil.AssertHoverKind(t, hov, protocol.MarkupKindMarkdown)
}
