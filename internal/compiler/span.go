// Package compiler implements a minimal Lume front end: lexer, parser, a
// thin HIR, and a TypeContext query surface. The Semantic Index treats this
// package as an external collaborator it only calls through Driver/
// CheckedPackageGraph/TypeContext; nothing in lsp reaches past that surface.
package compiler

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"
)

// SourceFileId is an opaque, debuggable handle to a source file.
type SourceFileId struct {
	id uuid.UUID
}

func newSourceFileId() SourceFileId {
	return SourceFileId{id: uuid.New()}
}

// NewSourceFileId mints a fresh SourceFileId. Exported for callers outside
// the package (the VFS) that construct SourceFile values for open documents
// before they ever reach a Driver.
func NewSourceFileId() SourceFileId {
	return newSourceFileId()
}

func (s SourceFileId) String() string { return s.id.String() }

// PackageId is an opaque handle to a package within a CheckedPackageGraph.
type PackageId struct {
	id uuid.UUID
}

func newPackageId() PackageId {
	return PackageId{id: uuid.New()}
}

func (p PackageId) String() string { return p.id.String() }

// FileName is either a workspace-relative path or an absolute real path.
// It is always NFC-normalized and forward-slash normalized so two VFS
// entries referring to the same file converge on one map key regardless of
// how the editor composed the path's Unicode.
type FileName struct {
	value    string
	absolute bool
}

// NewRelativeFileName builds a workspace-relative FileName.
func NewRelativeFileName(rel string) FileName {
	return FileName{value: normalizePath(rel), absolute: false}
}

// NewAbsoluteFileName builds an absolute FileName.
func NewAbsoluteFileName(abs string) FileName {
	return FileName{value: normalizePath(abs), absolute: true}
}

func normalizePath(p string) string {
	p = filepath.ToSlash(p)
	return norm.NFC.String(p)
}

// String returns the normalized path string.
func (f FileName) String() string { return f.value }

// IsAbsolute reports whether this FileName carries an absolute real path.
func (f FileName) IsAbsolute() bool { return f.absolute }

// HasSuffix reports whether the FileName ends in the given relative suffix,
// used by source_of_uri's suffix-matching resolution.
func (f FileName) HasSuffix(suffix string) bool {
	return strings.HasSuffix(f.value, normalizePath(suffix))
}

// SourceFile is the compiler-side immutable source record: id, name,
// content, and package assignment.
type SourceFile struct {
	ID      SourceFileId
	Name    FileName
	Content string
	Package PackageId
}

// Location carries a SourceFile handle and a half-open byte range [Start, End).
type Location struct {
	File  *SourceFile
	Start int
	End   int
}

// Len reports the span length in bytes, the tiebreaker used by the Symbol
// Index's smallest-span-wins lookup.
func (l Location) Len() int { return l.End - l.Start }

// Contains reports whether the byte offset q falls within [Start, End]
// inclusive on both ends, per the lookup predicate in §4.C.
func (l Location) Contains(q int) bool {
	return l.Start <= q && q <= l.End
}

func (l Location) String() string {
	if l.File == nil {
		return fmt.Sprintf("<nil>[%d:%d)", l.Start, l.End)
	}
	return fmt.Sprintf("%s[%d:%d)", l.File.Name, l.Start, l.End)
}
