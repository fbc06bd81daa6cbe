package testutil

import (
	"strings"
	"testing"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

// AssertHoverContains checks that hover result contains expected text.
func AssertHoverContains(t *testing.T, hover *protocol.Hover, expectedText string) {
	t.Helper()

	if hover == nil {
		t.Fatal("expected hover result, got nil")
	}

	content, ok := hover.Contents.(protocol.MarkupContent)
	if !ok {
		t.Fatalf("expected MarkupContent, got %T", hover.Contents)
	}

	if !strings.Contains(content.Value, expectedText) {
		t.Errorf("hover content %q does not contain %q", content.Value, expectedText)
	}
}

// AssertHoverKind checks that hover result has expected markup kind.
func AssertHoverKind(t *testing.T, hover *protocol.Hover, expectedKind protocol.MarkupKind) {
	t.Helper()

	if hover == nil {
		t.Fatal("expected hover result, got nil")
	}

	content, ok := hover.Contents.(protocol.MarkupContent)
	if !ok {
		t.Fatalf("expected MarkupContent, got %T", hover.Contents)
	}

	if content.Kind != expectedKind {
		t.Errorf("hover kind = %q; want %q", content.Kind, expectedKind)
	}
}

// AssertNoHover checks that no hover result was returned.
func AssertNoHover(t *testing.T, hover *protocol.Hover) {
	t.Helper()

	if hover != nil {
		t.Errorf("expected no hover result, got %+v", hover)
	}
}

// AssertLocationLine checks that a location points to the expected line.
func AssertLocationLine(t *testing.T, loc protocol.Location, expectedLine int) {
	t.Helper()

	if int(loc.Range.Start.Line) != expectedLine {
		t.Errorf("location line = %d; want %d", loc.Range.Start.Line, expectedLine)
	}
}

// AssertLocationURI checks that a location has the expected URI suffix.
func AssertLocationURI(t *testing.T, loc protocol.Location, expectedSuffix string) {
	t.Helper()

	if !strings.HasSuffix(loc.URI, expectedSuffix) {
		t.Errorf("location URI %q does not end with %q", loc.URI, expectedSuffix)
	}
}

// AssertDiagnosticCount checks that a specific number of diagnostics were published.
func AssertDiagnosticCount(t *testing.T, diags []protocol.Diagnostic, expectedCount int) {
	t.Helper()

	if len(diags) != expectedCount {
		t.Errorf("diagnostic count = %d; want %d", len(diags), expectedCount)
	}
}

// AssertDiagnosticHasCode checks that a diagnostic with the given code exists.
func AssertDiagnosticHasCode(t *testing.T, diags []protocol.Diagnostic, expectedCode string) {
	t.Helper()

	for _, diag := range diags {
		if diag.Code != nil && diag.Code.Value == expectedCode {
			return
		}
	}
	t.Errorf("no diagnostic with code %q found", expectedCode)
}

// AssertDiagnosticMessageContains checks that some diagnostic's message contains the given text.
func AssertDiagnosticMessageContains(t *testing.T, diags []protocol.Diagnostic, expectedText string) {
	t.Helper()

	for _, diag := range diags {
		if strings.Contains(diag.Message, expectedText) {
			return
		}
	}
	t.Errorf("no diagnostic message contains %q", expectedText)
}

// AssertDiagnosticSeverity checks that a diagnostic with the given code has the expected severity.
func AssertDiagnosticSeverity(t *testing.T, diags []protocol.Diagnostic, code string, expected protocol.DiagnosticSeverity) {
	t.Helper()

	for _, diag := range diags {
		if diag.Code != nil && diag.Code.Value == code {
			if diag.Severity == nil || *diag.Severity != expected {
				t.Errorf("diagnostic %q severity = %v; want %v", code, diag.Severity, expected)
			}
			return
		}
	}
	t.Errorf("no diagnostic with code %q found", code)
}
