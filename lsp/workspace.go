package lsp

import (
	"fmt"
	"log/slog"
	"net/url"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/lume-lang/lume-lsp/internal/compiler"
)

// Workspace is the Workspace Controller (component E): it owns the VFS
// overlay, the most recently checked package graph, the Symbol Index built
// from it, and the rotating pair of error-file sets the Diagnostic Router
// needs to emit clear-publications. It is the only thing that drives
// recompilation, and it does so synchronously on every call to
// CompileWorkspace: no debouncing, no cancellation, no incremental
// reanalysis, no dependency graph, no multi-root workspace, no symlink
// remapping.
type Workspace struct {
	mu sync.RWMutex

	logger *slog.Logger

	root        string
	posEncoding PositionEncoding

	vfs    *Vfs
	router *DiagnosticRouter
	dcx    *compiler.DiagCtx

	graph *compiler.CheckedPackageGraph // nil until the first successful compile
	index *SymbolIndex

	errFiles map[string]struct{} // files carrying at least one diagnostic after the last compile
}

// NewWorkspace builds a Workspace rooted at root. root should be an
// absolute path to a directory; it is the same root the client's
// workspace-folder URI resolves to at initialize time (spec §4.E, §6).
func NewWorkspace(logger *slog.Logger, root string) *Workspace {
	if logger == nil {
		logger = slog.Default()
	}
	root = cleanRoot(root)
	return &Workspace{
		logger:      logger.With(slog.String("component", "workspace")),
		root:        root,
		posEncoding: PositionEncodingUTF16,
		vfs:         NewVfs(root),
		router:      NewDiagnosticRouter(root),
		dcx:         compiler.NewDiagCtx(),
		index:       NewSymbolIndex(),
		errFiles:    make(map[string]struct{}),
	}
}

func cleanRoot(root string) string {
	return strings.TrimSuffix(filepath.Clean(root), string(filepath.Separator))
}

// Root returns the workspace's current root path.
func (w *Workspace) Root() string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.root
}

// SetRoot updates the workspace root, propagating it to the VFS and the
// Diagnostic Router. There is no notion of more than one root (spec §9:
// multi-root workspaces are a Non-goal); a later SetRoot replaces the
// prior root entirely.
func (w *Workspace) SetRoot(root string) {
	root = cleanRoot(root)
	w.mu.Lock()
	w.root = root
	w.mu.Unlock()
	w.vfs.SetRoot(root)
	w.router.SetRoot(root)
}

// SetPositionEncoding records the encoding used to read LSP positions.
// initialize always sets "utf-16": LSP 3.16 has no encoding negotiation.
func (w *Workspace) SetPositionEncoding(enc PositionEncoding) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.posEncoding = enc
}

// PositionEncoding returns the recorded encoding.
func (w *Workspace) PositionEncoding() PositionEncoding {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.posEncoding
}

// DocumentOpened records a newly opened document in the overlay.
func (w *Workspace) DocumentOpened(uri, content string, version int) {
	w.vfs.Open(uri, content, version)
}

// DocumentChanged replaces an open document's content after a full-text
// sync (spec §6: textDocumentSync.change is Full, never Incremental).
func (w *Workspace) DocumentChanged(uri, content string, version int) {
	w.vfs.Change(uri, content, version)
}

// DocumentClosed removes a document from the overlay, reverting later
// compiles to whatever is on disk for that file.
func (w *Workspace) DocumentClosed(uri string) bool {
	return w.vfs.Close(uri)
}

// Package returns the checked package a document URI belongs to (the
// package carries its TypeContext), or false if the workspace has never
// compiled successfully or the URI falls outside every known package's
// sources.
func (w *Workspace) Package(uri string) (*compiler.Package, bool) {
	w.mu.RLock()
	graph := w.graph
	root := w.root
	w.mu.RUnlock()
	if graph == nil {
		return nil, false
	}

	path, err := URIToPath(uri)
	if err != nil {
		return nil, false
	}
	rel := relativeToRoot(path, root)

	for _, pkg := range graph.All() {
		for _, sf := range pkg.Sources {
			if sf.Name.String() == rel {
				return pkg, true
			}
		}
	}
	return nil, false
}

// SourceOf returns the *compiler.SourceFile a document URI resolves to
// within the most recently checked graph, the "source_of_uri" lookup spec
// §4.E describes. It returns false under the same conditions as Package.
func (w *Workspace) SourceOf(uri string) (*compiler.SourceFile, bool) {
	pkg, ok := w.Package(uri)
	if !ok {
		return nil, false
	}
	path, err := URIToPath(uri)
	if err != nil {
		return nil, false
	}
	w.mu.RLock()
	root := w.root
	w.mu.RUnlock()
	rel := relativeToRoot(path, root)
	for _, sf := range pkg.Sources {
		if sf.Name.String() == rel {
			return sf, true
		}
	}
	return nil, false
}

// LocationAt converts an LSP position on a document into a compiler
// Location, resolving the enclosing source file through SourceOf. It
// returns false if the document is unknown to the last checked graph.
func (w *Workspace) LocationAt(uri string, line, char int) (compiler.Location, bool) {
	sf, ok := w.SourceOf(uri)
	if !ok {
		return compiler.Location{}, false
	}
	offset, ok := ByteOffsetFromLSP([]byte(sf.Content), line, char, w.PositionEncoding())
	if !ok {
		return compiler.Location{}, false
	}
	return compiler.Location{File: sf, Start: offset, End: offset}, true
}

// Index returns the Symbol Index built from the most recently checked
// graph. It is empty, never nil, before the first successful compile.
func (w *Workspace) Index() *SymbolIndex {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.index
}

// CompileWorkspace re-typechecks the whole workspace from the VFS's
// current overlay (spec §4.E step-by-step):
//
//  1. the previous round's error-file set becomes "prev", a fresh "curr"
//     starts empty;
//  2. compiler.FromRoot + Driver.Check run against the VFS's overrides;
//  3. on success, the Symbol Index is rebuilt from the returned graph;
//  4. on a hard driver failure, the failure is logged and also emitted
//     into the shared DiagCtx; that diagnostic has no label, so the
//     Diagnostic Router drops it and no publication is made for it;
//  5. the DiagCtx is drained through the Diagnostic Router, producing one
//     publication per diagnostic;
//  6. every file in prev but not in curr gets an empty-list publication,
//     clearing diagnostics the client would otherwise still be showing.
//
// There is no incremental recompilation, no cancellation of a prior call,
// and no debounce: every call recompiles the entire workspace from
// scratch, synchronously, on the caller's goroutine (spec §5).
func (w *Workspace) CompileWorkspace() (pubs []DiagnosticPublication, clears []string) {
	w.mu.Lock()
	root := w.root
	prevFiles := w.errFiles
	overrides := w.vfs.BuildOverrides()
	w.mu.Unlock()

	drv, err := compiler.FromRoot(root, w.dcx)
	if err != nil {
		w.logger.Error("cannot construct compiler driver", slog.String("error", err.Error()))
		w.dcx.Emit(compiler.Diagnostic{Severity: compiler.SeverityError, Message: err.Error()})
	} else if graph, err := drv.Check(compiler.Options{SourceOverrides: overrides}); err != nil {
		w.logger.Error("compile failed", slog.String("error", err.Error()))
		w.dcx.Emit(compiler.Diagnostic{Severity: compiler.SeverityError, Message: err.Error()})
	} else {
		w.rebuildIndex(graph)
	}

	pubs, currFiles := w.router.Route(w.dcx)

	w.mu.Lock()
	w.errFiles = currFiles
	w.mu.Unlock()

	for uri := range prevFiles {
		if _, ok := currFiles[uri]; !ok {
			clears = append(clears, uri)
		}
	}
	return pubs, clears
}

// rebuildIndex replaces the workspace's graph and Symbol Index with ones
// derived from graph, skipping (and logging) any package whose HIR fails
// to traverse rather than failing the whole rebuild.
func (w *Workspace) rebuildIndex(graph *compiler.CheckedPackageGraph) {
	index := NewSymbolIndex()
	for _, pkg := range graph.All() {
		pkgIndex, err := SymbolIndexFromHIR(pkg.HIR)
		if err != nil {
			w.logger.Error("symbol index build failed", slog.String("package", pkg.Name), slog.String("error", err.Error()))
			continue
		}
		index.Extend(pkgIndex)
	}
	w.mu.Lock()
	w.graph = graph
	w.index = index
	w.mu.Unlock()
}

// URIToPath converts a file:// URI to a filesystem path.
//
// On POSIX systems: file:///path/to/file → /path/to/file
// On Windows: file:///C:/path/to/file → C:\path\to\file
//
// UNC paths are not currently supported on Windows.
func URIToPath(uri string) (string, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return "", fmt.Errorf("parse URI %q: %w", uri, err)
	}
	if u.Scheme != "file" {
		return "", fmt.Errorf("not a file URI: %s", uri)
	}

	path := u.Path

	// Windows: file:///C:/path → C:\path
	if runtime.GOOS == "windows" {
		// Remove leading slash before drive letter: /C:/foo → C:/foo
		if len(path) >= 3 && path[0] == '/' && isWindowsDriveLetter(path[1]) && path[2] == ':' {
			path = path[1:]
		}
		// Convert forward slashes to backslashes
		path = filepath.FromSlash(path)
	}

	return path, nil
}

// PathToURI converts a filesystem path to a file:// URI.
//
// On POSIX systems: /path/to/file → file:///path/to/file
// On Windows: C:\path\to\file → file:///C:/path/to/file
//
// UNC paths are not currently supported on Windows.
func PathToURI(path string) string {
	// Ensure absolute path
	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err == nil {
			path = absPath
		}
	}

	// Normalize to forward slashes for URI
	path = filepath.ToSlash(path)

	// Windows: C:/path → /C:/path (add leading slash for URI format)
	if runtime.GOOS == "windows" && len(path) >= 2 && isWindowsDriveLetter(path[0]) && path[1] == ':' {
		path = "/" + path
	}

	// Use url.URL to properly escape the path
	u := url.URL{
		Scheme: "file",
		Path:   path,
	}
	return u.String()
}

// isWindowsDriveLetter reports whether c is a valid Windows drive letter (A-Z, a-z).
func isWindowsDriveLetter(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}
