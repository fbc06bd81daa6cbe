package lsp

import (
	"net/url"
	"strings"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/lume-lang/lume-lsp/internal/compiler"
)

// lspSourceLume is the "source" field every published diagnostic carries,
// identifying the Lume language server as the origin.
const lspSourceLume = "lume"

// labelledDiagnostic pairs one lowered label with the file URI it resolved
// to; Route uses the first as the primary diagnostic and the rest as
// related information.
type labelledDiagnostic struct {
	uri string
	protocol.Diagnostic
}

// DiagnosticRouter drains a DiagCtx after every compile_workspace and turns
// each diagnostic into one textDocument/publishDiagnostics publication for
// its primary file. Clearing files that had diagnostics last round but have
// none this round is left to the caller, using the file set Route returns.
type DiagnosticRouter struct {
	root string
}

// NewDiagnosticRouter builds a router that resolves relative diagnostic
// source names against root.
func NewDiagnosticRouter(root string) *DiagnosticRouter {
	return &DiagnosticRouter{root: root}
}

// SetRoot updates the workspace root used to resolve relative label sources.
func (r *DiagnosticRouter) SetRoot(root string) {
	r.root = root
}

// DiagnosticPublication is one textDocument/publishDiagnostics call: a URI
// and the single diagnostic it carries. The router never batches multiple
// diagnostics for one file into one notification (spec §4.D step 6); every
// diagnostic gets its own publish, in drain order.
type DiagnosticPublication struct {
	URI        string
	Diagnostic protocol.Diagnostic
}

// Route drains every diagnostic from dcx and lowers each into one
// single-diagnostic publication for its primary file, plus the set of URIs
// that received at least one diagnostic this round. Callers are
// responsible for clearing any URI in prevFiles that is absent from the
// returned currFiles.
func (r *DiagnosticRouter) Route(dcx *compiler.DiagCtx) (pubs []DiagnosticPublication, currFiles map[string]struct{}) {
	currFiles = make(map[string]struct{})

	for _, diag := range dcx.Drain() {
		lowered := r.lowerLabels(diag.Labels)
		if len(lowered) == 0 {
			continue
		}

		primary, related := lowered[0], lowered[1:]

		relatedInfo := make([]protocol.DiagnosticRelatedInformation, 0, len(related))
		for _, rel := range related {
			relatedInfo = append(relatedInfo, protocol.DiagnosticRelatedInformation{
				Location: protocol.Location{URI: rel.uri, Range: rel.Range},
				Message:  rel.Message,
			})
		}

		message := primary.Message
		for _, help := range diag.Help {
			message += "\n" + help
		}

		severity := severityToLSP(diag.Severity)

		var code *protocol.IntegerOrString
		if diag.Code != "" {
			code = &protocol.IntegerOrString{Value: diag.Code}
		}

		source := lspSourceLume
		pubs = append(pubs, DiagnosticPublication{
			URI: primary.uri,
			Diagnostic: protocol.Diagnostic{
				Range:              primary.Range,
				Severity:           &severity,
				Code:               code,
				Source:             &source,
				Message:            message,
				RelatedInformation: relatedInfo,
			},
		})
		currFiles[primary.uri] = struct{}{}
	}

	return pubs, currFiles
}

func severityToLSP(s compiler.Severity) protocol.DiagnosticSeverity {
	switch s {
	case compiler.SeverityNote, compiler.SeverityInfo:
		return protocol.DiagnosticSeverityInformation
	case compiler.SeverityHelp:
		return protocol.DiagnosticSeverityHint
	case compiler.SeverityWarning:
		return protocol.DiagnosticSeverityWarning
	default:
		return protocol.DiagnosticSeverityError
	}
}

// lowerLabels converts compiler Labels, in order, into LSP diagnostics
// paired with their file URIs, skipping any label whose location has no attached source file.
func (r *DiagnosticRouter) lowerLabels(labels []compiler.Label) []labelledDiagnostic {
	out := make([]labelledDiagnostic, 0, len(labels))
	for _, label := range labels {
		if label.Location.File == nil {
			continue
		}
		uri := r.uriForSourceName(label.Location.File.Name.String())
		out = append(out, labelledDiagnostic{
			uri: uri,
			Diagnostic: protocol.Diagnostic{
				Range:   LocationToRange(label.Location, PositionEncodingUTF16),
				Message: label.Message,
			},
		})
	}
	return out
}

// uriForSourceName resolves a diagnostic's source name to a file:// URI,
// joining relative names against the workspace root and treating anything
// that already looks URL-shaped (has a scheme) as absolute.
func (r *DiagnosticRouter) uriForSourceName(name string) string {
	if u, err := url.Parse(name); err == nil && u.Scheme != "" {
		return name
	}
	if strings.HasPrefix(name, "/") {
		return "file://" + name
	}
	return PathToURI(r.root + "/" + name)
}
