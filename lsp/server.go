// Package lsp implements a Language Server Protocol server for the Lume
// programming language: hover information and diagnostics over stdio.
package lsp

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	// commonlog is a required dependency of github.com/tliron/glsp.
	// We silence it in NewServer() via commonlog.Configure(0, nil) because
	// this server uses slog for all logging. The blank import of the "simple"
	// backend is required by glsp at runtime.
	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	_ "github.com/tliron/commonlog/simple" // required backend for glsp
)

const serverName = "lume-lsp"

// publishDiagnosticsMethod is the LSP notification method name for
// textDocument/publishDiagnostics.
const publishDiagnosticsMethod = "textDocument/publishDiagnostics"

// isLumeURI reports whether uri refers to a Lume source file by extension.
func isLumeURI(uri string) bool {
	path, err := URIToPath(uri)
	if err != nil {
		return false
	}
	return strings.ToLower(filepath.Ext(path)) == ".lm"
}

// Server is the Lume language server: it wires a Workspace Controller into
// a glsp protocol.Handler and runs the stdio transport's receive loop.
type Server struct {
	logger    *slog.Logger
	handler   protocol.Handler
	server    *server.Server
	workspace *Workspace
	hover     *HoverResolver

	// shutdownCalled tracks whether shutdown was called before exit (LSP lifecycle)
	shutdownCalled bool

	closeOnce sync.Once
	closeErr  error
}

// NewServer creates a Lume language server. If logger is nil, slog.Default()
// is used. root is the workspace root to compile; it is normally set for
// real from the client's workspace folder during initialize, but a server
// needs *a* root to construct its Workspace with before that happens.
func NewServer(logger *slog.Logger, root string) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		logger:    logger.With(slog.String("component", "server")),
		workspace: NewWorkspace(logger, root),
		hover:     NewHoverResolver(),
	}

	// Silence commonlog - glsp uses it internally but we use slog for all logging.
	commonlog.Configure(0, nil)

	s.handler = protocol.Handler{
		Initialize:    s.initialize,
		Initialized:   s.initialized,
		Shutdown:      s.shutdown,
		Exit:          s.exit,
		SetTrace:      s.setTrace,
		CancelRequest: s.cancelRequest,

		TextDocumentDidOpen:   s.textDocumentDidOpen,
		TextDocumentDidChange: s.textDocumentDidChange,
		TextDocumentDidClose:  s.textDocumentDidClose,
		TextDocumentDidSave:   s.textDocumentDidSave,
		TextDocumentHover:     s.textDocumentHover,
	}

	s.server = server.NewServer(&s.handler, serverName, false)

	return s
}

// Handler returns the protocol handler for testing purposes.
func (s *Server) Handler() *protocol.Handler {
	return &s.handler
}

// RunStdio runs the server using stdio transport.
func (s *Server) RunStdio() error {
	if err := s.server.RunStdio(); err != nil {
		return fmt.Errorf("run stdio: %w", err)
	}
	return nil
}

// Close closes the JSON-RPC connection, causing RunStdio to return.
// This enables graceful shutdown when a signal is received.
//
// Close is idempotent: multiple calls return the same result and do not panic.
// It is safe to call before RunStdio (returns nil if connection not initialized).
func (s *Server) Close() error {
	conn := s.server.GetStdio()
	if conn == nil {
		return nil // Connection not ready, caller can retry
	}
	s.closeOnce.Do(func() {
		if err := conn.Close(); err != nil {
			s.closeErr = fmt.Errorf("close connection: %w", err)
		}
	})
	return s.closeErr
}

// initialize handles the initialize request. A workspace root is required
// (the first workspace folder, else rootUri, else rootPath); without one,
// initialization fails (spec §6, §7: a missing
// workspace root is a fatal internal inconsistency).
func (s *Server) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	s.logger.Info("initialize request received", slog.String("client_name", s.clientName(params)))

	root, ok := s.workspaceRoot(params)
	if !ok {
		return nil, fmt.Errorf("initialize: no workspace folder defined")
	}
	s.workspace.SetRoot(root)
	s.workspace.SetPositionEncoding(PositionEncodingUTF16)

	capabilities := s.handler.CreateServerCapabilities()

	syncKind := protocol.TextDocumentSyncKindFull
	if syncOpts, ok := capabilities.TextDocumentSync.(*protocol.TextDocumentSyncOptions); ok {
		syncOpts.Change = &syncKind
		syncOpts.Save = &protocol.SaveOptions{IncludeText: boolPtr(true)}
	}

	// Reserved: no completion handler is registered, so nothing actually
	// answers textDocument/completion yet.
	capabilities.CompletionProvider = &protocol.CompletionOptions{ResolveProvider: boolPtr(false)}

	version := "dev"
	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    serverName,
			Version: &version,
		},
	}, nil
}

// workspaceRoot extracts the first workspace folder's filesystem path from
// an InitializeParams, in order of preference: WorkspaceFolders, RootURI,
// RootPath. There is no multi-root support: only the first folder is used.
func (s *Server) workspaceRoot(params *protocol.InitializeParams) (string, bool) {
	if len(params.WorkspaceFolders) > 0 {
		if path, err := URIToPath(params.WorkspaceFolders[0].URI); err == nil {
			return path, true
		}
	}
	if params.RootURI != nil {
		if path, err := URIToPath(*params.RootURI); err == nil {
			return path, true
		}
	}
	if params.RootPath != nil {
		return *params.RootPath, true
	}
	return "", false
}

// initialized handles the initialized notification. It performs the
// server's initial workspace compile and publishes whatever diagnostics
// that first compile produces, per spec §6: "after initialize returns, the
// server performs an initial workspace compile."
func (s *Server) initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	s.logger.Info("server initialized", slog.String("root", s.workspace.Root()))
	s.compileAndPublish(ctx)
	return nil
}

// shutdown handles the shutdown request.
func (s *Server) shutdown(ctx *glsp.Context) error {
	s.logger.Info("shutdown request received")
	s.shutdownCalled = true
	protocol.SetTraceValue(protocol.TraceValueOff)
	return nil
}

// exit handles the exit notification per LSP spec.
// Exit code is 0 if shutdown was called first, 1 otherwise.
func (s *Server) exit(_ *glsp.Context) error {
	exitCode := 0
	if !s.shutdownCalled {
		s.logger.Warn("exit called without shutdown")
		exitCode = 1
	}
	s.logger.Info("exit notification received", slog.Int("exit_code", exitCode))
	os.Exit(exitCode)
	return nil // unreachable
}

// setTrace handles the $/setTrace notification.
func (s *Server) setTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

// cancelRequest handles the $/cancelRequest notification. Requests here are
// never cancellable mid-flight (spec §5: no cancellation support), so this
// is a log-only hook.
func (s *Server) cancelRequest(ctx *glsp.Context, params *protocol.CancelParams) error {
	s.logger.Debug("cancelRequest", slog.Any("id", params.ID))
	return nil
}

// textDocumentDidOpen handles textDocument/didOpen: records the opened
// buffer in the VFS and recompiles the whole workspace.
func (s *Server) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	uri := params.TextDocument.URI
	if !isLumeURI(uri) {
		s.logger.Debug("ignoring didOpen for non-Lume file", slog.String("uri", uri))
		return nil
	}
	s.workspace.DocumentOpened(uri, params.TextDocument.Text, int(params.TextDocument.Version))
	s.compileAndPublish(ctx)
	return nil
}

// textDocumentDidChange handles textDocument/didChange. Synchronization is
// FULL, so only the first content change's text is used (spec §6).
func (s *Server) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	uri := params.TextDocument.URI
	if !isLumeURI(uri) {
		s.logger.Debug("ignoring didChange for non-Lume file", slog.String("uri", uri))
		return nil
	}
	if len(params.ContentChanges) == 0 {
		return nil
	}
	text, ok := fullSyncText(params.ContentChanges[0])
	if !ok {
		s.logger.Warn("didChange content change has no text", slog.String("uri", uri))
		return nil
	}
	s.workspace.DocumentChanged(uri, text, int(params.TextDocument.Version))
	s.compileAndPublish(ctx)
	return nil
}

// fullSyncText extracts the text of a single content-change event under
// FULL synchronization, where the whole document is always sent as one
// event carrying only Text (no Range).
func fullSyncText(change any) (string, bool) {
	switch c := change.(type) {
	case protocol.TextDocumentContentChangeEventWhole:
		return c.Text, true
	case protocol.TextDocumentContentChangeEvent:
		return c.Text, true
	default:
		return "", false
	}
}

// textDocumentDidSave handles textDocument/didSave. The client was told
// save.includeText = true, so params.Text is expected to carry the saved
// content; when present it replaces the VFS entry before recompiling.
func (s *Server) textDocumentDidSave(ctx *glsp.Context, params *protocol.DidSaveTextDocumentParams) error {
	uri := params.TextDocument.URI
	if !isLumeURI(uri) {
		return nil
	}
	if params.Text != nil {
		if doc, ok := s.workspace.vfs.Get(uri); ok {
			s.workspace.DocumentChanged(uri, *params.Text, doc.Version)
		}
	}
	s.compileAndPublish(ctx)
	return nil
}

// textDocumentDidClose handles textDocument/didClose: removes the buffer
// from the VFS, reverting later compiles to on-disk content, and
// recompiles so stale overlay-only diagnostics are cleared.
func (s *Server) textDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	uri := params.TextDocument.URI
	if !isLumeURI(uri) {
		return nil
	}
	s.workspace.DocumentClosed(uri)
	s.compileAndPublish(ctx)
	return nil
}

// textDocumentHover handles textDocument/hover. A document unknown to the
// last checked graph is an InvalidParams-shaped failure; an internal
// rendering inconsistency degrades to "no info" per spec §7, never an
// error response.
func (s *Server) textDocumentHover(ctx *glsp.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	uri := params.TextDocument.URI
	pkg, ok := s.workspace.Package(uri)
	if !ok {
		return nil, fmt.Errorf("textDocument/hover: invalid params: %q is not a known document", uri)
	}
	loc, ok := s.workspace.LocationAt(uri, int(params.Position.Line), int(params.Position.Character))
	if !ok {
		return nil, fmt.Errorf("textDocument/hover: invalid params: position out of range")
	}

	hov, ok := s.hover.Resolve(pkg, s.workspace.Index(), loc)
	if !ok {
		s.logger.Debug("hover miss", slog.String("uri", uri))
		return nil, nil
	}
	return hov, nil
}

// compileAndPublish recompiles the workspace and publishes every resulting
// diagnostic and clear, in the order the Workspace Controller produced
// them (diagnostics first, then clears, per spec §5 ordering guarantee b).
func (s *Server) compileAndPublish(ctx *glsp.Context) {
	pubs, clears := s.workspace.CompileWorkspace()
	if ctx == nil {
		return
	}
	for _, pub := range pubs {
		ctx.Notify(publishDiagnosticsMethod, protocol.PublishDiagnosticsParams{
			URI:         pub.URI,
			Diagnostics: []protocol.Diagnostic{pub.Diagnostic},
		})
	}
	for _, uri := range clears {
		ctx.Notify(publishDiagnosticsMethod, protocol.PublishDiagnosticsParams{
			URI:         uri,
			Diagnostics: []protocol.Diagnostic{},
		})
	}
}

func (s *Server) clientName(params *protocol.InitializeParams) string {
	if params.ClientInfo != nil {
		if params.ClientInfo.Version != nil {
			return params.ClientInfo.Name + " " + *params.ClientInfo.Version
		}
		return params.ClientInfo.Name
	}
	return "unknown"
}

func boolPtr(b bool) *bool { return &b }
