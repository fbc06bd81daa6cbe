package compiler

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Options configures one Driver.Check invocation.
type Options struct {
	// SourceOverrides is the VFS's insertion-ordered FileName -> content
	// map (§3). Entries here supersede on-disk content for the matching
	// file.
	SourceOverrides []SourceOverride
}

// SourceOverride is one entry of the VFS's build_overrides() map, kept as
// an ordered slice (rather than a Go map) since spec §3 requires insertion
// order to be preserved.
type SourceOverride struct {
	Name    FileName
	Content string
}

// Package is one compiled package's checked state: its source files, HIR,
// and TypeContext.
type Package struct {
	ID      PackageId
	Name    string
	Root    string
	Sources []*SourceFile
	HIR     *Map
	tcx     *TypeContext
}

// Tcx returns the package's TypeContext query interface.
func (pkg *Package) Tcx() *TypeContext { return pkg.tcx }

func (pkg *Package) structs() []*StructDef {
	var out []*StructDef
	for _, n := range pkg.HIR.Nodes() {
		if sd, ok := n.(*StructDef); ok {
			out = append(out, sd)
		}
	}
	return out
}

func (pkg *Package) findStruct(name string) *StructDef {
	for _, sd := range pkg.structs() {
		if sd.Name.String() == name || sd.Name.NameSegment().SegmentName() == name {
			return sd
		}
	}
	return nil
}

func (pkg *Package) findTrait(name string) *TraitDef {
	for _, n := range pkg.HIR.Nodes() {
		if td, ok := n.(*TraitDef); ok && (td.Name.String() == name || td.Name.NameSegment().SegmentName() == name) {
			return td
		}
	}
	return nil
}

func (pkg *Package) findEnum(name string) *EnumDef {
	for _, n := range pkg.HIR.Nodes() {
		if ed, ok := n.(*EnumDef); ok && (ed.Name.String() == name || ed.Name.NameSegment().SegmentName() == name) {
			return ed
		}
	}
	return nil
}

func (pkg *Package) findFunction(name string) *Function {
	for _, n := range pkg.HIR.Nodes() {
		if fn, ok := n.(*Function); ok && (fn.Name.String() == name || fn.Name.NameSegment().SegmentName() == name) {
			return fn
		}
	}
	return nil
}

func (pkg *Package) findMethod(name string) *Method {
	for _, n := range pkg.HIR.Nodes() {
		impl, ok := n.(*Impl)
		if !ok {
			continue
		}
		for _, m := range impl.Methods {
			if m.Name.NameSegment().SegmentName() == name {
				return m
			}
		}
	}
	return nil
}

func (pkg *Package) findVarDecl(name string) (*VariableStmt, bool) {
	var found *VariableStmt
	v := &varDeclFinder{name: name, onMatch: func(vs VariableStmt) { found = &vs }}
	_ = Traverse(v, pkg.HIR)
	if found == nil {
		return nil, false
	}
	return found, true
}

type varDeclFinder struct {
	BaseVisitor
	name    string
	onMatch func(VariableStmt)
}

func (f *varDeclFinder) VisitStmt(s *Statement) error {
	if vs, ok := s.Kind.(VariableStmt); ok && vs.Name.Name == f.name {
		f.onMatch(vs)
	}
	return nil
}

func (pkg *Package) findParam(name string) (Parameter, bool) {
	for _, n := range pkg.HIR.Nodes() {
		var params []Parameter
		switch node := n.(type) {
		case *Function:
			params = node.Parameters
		case *Impl:
			for _, m := range node.Methods {
				params = append(params, m.Parameters...)
			}
		}
		for _, p := range params {
			if p.Name.Name == name {
				return p, true
			}
		}
	}
	return Parameter{}, false
}

// CheckedPackageGraph is the opaque output of one successful compilation:
// a mapping from PackageId to checked package state (spec §3).
type CheckedPackageGraph struct {
	Packages map[PackageId]*Package
}

// Package looks up one package by id.
func (g *CheckedPackageGraph) Package(id PackageId) (*Package, bool) {
	pkg, ok := g.Packages[id]
	return pkg, ok
}

// All returns every package in the graph, in a stable order (by root path)
// so diagnostics and index rebuilds are deterministic across runs.
func (g *CheckedPackageGraph) All() []*Package {
	out := make([]*Package, 0, len(g.Packages))
	for _, pkg := range g.Packages {
		out = append(out, pkg)
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1].Root > out[j].Root; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}

// Driver is the compiler front-end entry point: Driver.FromRoot(path, dcx)
// followed by (*Driver).Check(options) is the external-collaborator
// contract the Workspace Controller invokes on every edit (spec §4.E, §6).
type Driver struct {
	root string
	dcx  *DiagCtx
}

// FromRoot constructs a Driver rooted at path, emitting diagnostics into dcx.
func FromRoot(root string, dcx *DiagCtx) (*Driver, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("compiler: workspace root %q: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("compiler: workspace root %q is not a directory", root)
	}
	return &Driver{root: root, dcx: dcx}, nil
}

// Check discovers every ".lm" source file under the workspace root, applies
// options.SourceOverrides in place of on-disk content, parses and
// typechecks each into one package, and returns the resulting graph. Each
// parse error is emitted into dcx as one diagnostic labelled at the start
// of its file; the file's partial HIR is still merged into the package, and
// the graph is still returned with a nil error.
func (d *Driver) Check(opts Options) (*CheckedPackageGraph, error) {
	overrides := make(map[string]string, len(opts.SourceOverrides))
	order := make([]string, 0, len(opts.SourceOverrides))
	for _, o := range opts.SourceOverrides {
		key := o.Name.String()
		if _, exists := overrides[key]; !exists {
			order = append(order, key)
		}
		overrides[key] = o.Content
	}

	diskFiles, err := discoverSources(d.root)
	if err != nil {
		return nil, fmt.Errorf("compiler: discovering sources under %q: %w", d.root, err)
	}
	for _, f := range diskFiles {
		if _, ok := overrides[f]; !ok {
			order = append(order, f)
		}
	}

	graph := &CheckedPackageGraph{Packages: make(map[PackageId]*Package)}
	pkgID := newPackageId()
	pkg := &Package{ID: pkgID, Name: filepath.Base(d.root), Root: d.root, HIR: NewMap()}

	for _, name := range order {
		content, ok := overrides[name]
		if !ok {
			raw, err := os.ReadFile(filepath.Join(d.root, name))
			if err != nil {
				continue
			}
			content = string(raw)
		}
		sf := &SourceFile{ID: newSourceFileId(), Name: NewRelativeFileName(name), Content: content, Package: pkgID}
		pkg.Sources = append(pkg.Sources, sf)

		fileMap, errs := ParseFile(sf)
		for _, e := range errs {
			d.dcx.Emit(Diagnostic{
				Severity: SeverityError,
				Message:  e.Error(),
				Labels:   []Label{{Message: e.Error(), Location: Location{File: sf, Start: 0, End: minInt(1, len(content))}}},
			})
		}
		mergeMap(pkg.HIR, fileMap)
	}

	pkg.tcx = newTypeContext(pkg)
	graph.Packages[pkgID] = pkg
	return graph, nil
}

// mergeMap folds src's declarations, expressions, and statements into dst,
// preserving src's declaration order as a contiguous suffix.
func mergeMap(dst, src *Map) {
	if src == nil {
		return
	}
	for _, n := range src.Nodes() {
		dst.AddNode(n)
	}
	for id, e := range src.expressions {
		dst.expressions[id] = e
	}
	for id, s := range src.statements {
		dst.statements[id] = s
	}
	for id, n := range src.nodes {
		if _, ok := dst.nodes[id]; !ok {
			dst.nodes[id] = n
		}
	}
}

func discoverSources(root string) ([]string, error) {
	var out []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if strings.HasSuffix(path, ".lm") {
			rel, relErr := filepath.Rel(root, path)
			if relErr != nil {
				return relErr
			}
			out = append(out, filepath.ToSlash(rel))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
