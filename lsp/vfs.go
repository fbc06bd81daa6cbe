package lsp

import (
	"path/filepath"
	"strings"
	"sync"

	"github.com/lume-lang/lume-lsp/internal/compiler"
)

// Document represents an open document tracked by the virtual file system.
type Document struct {
	URI     string
	Version int
	Content string
	File    *compiler.SourceFile
}

// Vfs holds the in-memory overlay of documents the client currently has
// open. Its contents take precedence over whatever is on disk: whenever
// the workspace is recompiled, every open document's latest buffer is
// fed to the compiler driver as a source override, so edits are visible
// to hover and diagnostics before they are ever saved.
type Vfs struct {
	mu   sync.RWMutex
	root string

	// docs is keyed by URI and preserves insertion order via docOrder,
	// matching the deterministic override ordering the driver expects.
	docs     map[string]*Document
	docOrder []string
}

// NewVfs creates an empty overlay rooted at root.
func NewVfs(root string) *Vfs {
	return &Vfs{
		root: root,
		docs: make(map[string]*Document),
	}
}

// Root returns the workspace root this overlay resolves relative paths
// against.
func (v *Vfs) Root() string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.root
}

// SetRoot updates the workspace root.
func (v *Vfs) SetRoot(root string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.root = root
}

// Open adds or replaces a document in the overlay.
func (v *Vfs) Open(uri, content string, version int) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if _, exists := v.docs[uri]; !exists {
		v.docOrder = append(v.docOrder, uri)
	}

	v.docs[uri] = &Document{
		URI:     uri,
		Version: version,
		Content: content,
		File:    v.sourceFileLocked(uri, content),
	}
}

// Change replaces the content of an already-open document. It is a no-op
// if the document is not currently open.
func (v *Vfs) Change(uri, content string, version int) {
	v.mu.Lock()
	defer v.mu.Unlock()

	doc, ok := v.docs[uri]
	if !ok {
		return
	}
	doc.Version = version
	doc.Content = content
	doc.File = v.sourceFileLocked(uri, content)
}

// Close removes a document from the overlay, returning true if it was open.
func (v *Vfs) Close(uri string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	if _, ok := v.docs[uri]; !ok {
		return false
	}
	delete(v.docs, uri)
	for i, u := range v.docOrder {
		if u == uri {
			v.docOrder = append(v.docOrder[:i], v.docOrder[i+1:]...)
			break
		}
	}
	return true
}

// Get returns the open document for uri, if any.
func (v *Vfs) Get(uri string) (*Document, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	doc, ok := v.docs[uri]
	return doc, ok
}

// sourceFileLocked builds the compiler-facing SourceFile for an overlay
// entry. Callers must hold v.mu.
func (v *Vfs) sourceFileLocked(uri, content string) *compiler.SourceFile {
	return &compiler.SourceFile{
		ID:      compiler.NewSourceFileId(),
		Name:    compiler.NewRelativeFileName(v.relativePathLocked(uri)),
		Content: content,
	}
}

// relativePathLocked resolves a document URI to a path relative to the
// workspace root. Callers must hold v.mu (or a read lock).
func (v *Vfs) relativePathLocked(uri string) string {
	path, err := URIToPath(uri)
	if err != nil {
		return uri
	}
	return relativeToRoot(path, v.root)
}

// BuildOverrides returns the ordered set of source overrides the compiler
// driver should use in place of on-disk content, one per open document, in
// the order documents were first opened.
func (v *Vfs) BuildOverrides() []compiler.SourceOverride {
	v.mu.RLock()
	defer v.mu.RUnlock()

	overrides := make([]compiler.SourceOverride, 0, len(v.docOrder))
	for _, uri := range v.docOrder {
		doc := v.docs[uri]
		overrides = append(overrides, compiler.SourceOverride{
			Name:    compiler.NewRelativeFileName(v.relativePathLocked(uri)),
			Content: doc.Content,
		})
	}
	return overrides
}

// relativeToRoot makes path relative to root if it lives underneath it;
// otherwise it returns path unchanged (as an absolute fallback), matching
// the teacher's build_source_overrides behavior of always producing
// something usable rather than failing the whole overlay build.
func relativeToRoot(path, root string) string {
	if root == "" {
		return filepath.ToSlash(path)
	}
	rel, err := filepath.Rel(root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}
