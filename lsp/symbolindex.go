package lsp

import "github.com/lume-lang/lume-lsp/internal/compiler"

// SymbolKind is the closed set of things a SymbolEntry can point at.
type SymbolKind struct {
	tag reflectTag

	TypeName   compiler.Path
	Callable   compiler.CallReference
	FieldID    compiler.NodeId
	VariantOf  compiler.Path
	PatternID  compiler.NodeId
	CallID     compiler.NodeId
	MemberOf   compiler.NodeId
	FieldName  compiler.Identifier
	VariableID compiler.NodeId
}

type reflectTag int

const (
	kindType reflectTag = iota
	kindCallable
	kindField
	kindVariant
	kindPattern
	kindCall
	kindMember
	kindVariableRef
)

func typeKind(name compiler.Path) SymbolKind       { return SymbolKind{tag: kindType, TypeName: name} }
func callableKind(ref compiler.CallReference) SymbolKind {
	return SymbolKind{tag: kindCallable, Callable: ref}
}
func fieldKind(id compiler.NodeId) SymbolKind    { return SymbolKind{tag: kindField, FieldID: id} }
func variantKind(name compiler.Path) SymbolKind  { return SymbolKind{tag: kindVariant, VariantOf: name} }
func patternKind(id compiler.NodeId) SymbolKind  { return SymbolKind{tag: kindPattern, PatternID: id} }
func callKind(id compiler.NodeId) SymbolKind     { return SymbolKind{tag: kindCall, CallID: id} }
func memberKind(callee compiler.NodeId, field compiler.Identifier) SymbolKind {
	return SymbolKind{tag: kindMember, MemberOf: callee, FieldName: field}
}
func variableRefKind(id compiler.NodeId) SymbolKind {
	return SymbolKind{tag: kindVariableRef, VariableID: id}
}

// Kind reports which variant this SymbolKind holds, as a string for
// logging and test assertions.
func (k SymbolKind) Kind() string {
	switch k.tag {
	case kindType:
		return "Type"
	case kindCallable:
		return "Callable"
	case kindField:
		return "Field"
	case kindVariant:
		return "Variant"
	case kindPattern:
		return "Pattern"
	case kindCall:
		return "Call"
	case kindMember:
		return "Member"
	case kindVariableRef:
		return "VariableReference"
	default:
		return "unknown"
	}
}

// SymbolEntry binds one HIR-derived symbol to the source location it should
// be looked up at.
type SymbolEntry struct {
	Location compiler.Location
	Kind     SymbolKind
}

// SymbolIndex is the ordered, deduplicated set of symbol entries for one or
// more packages, supporting smallest-span-wins positional lookup.
type SymbolIndex struct {
	entries []SymbolEntry
	seen    map[string]struct{}
}

// NewSymbolIndex builds an empty index.
func NewSymbolIndex() *SymbolIndex {
	return &SymbolIndex{seen: make(map[string]struct{})}
}

// SymbolIndexFromHIR traverses m with a LocationVisitor and returns the
// resulting index.
func SymbolIndexFromHIR(m *compiler.Map) (*SymbolIndex, error) {
	v := &locationVisitor{idx: NewSymbolIndex(), m: m}
	if err := compiler.Traverse(v, m); err != nil {
		return nil, err
	}
	return v.idx, nil
}

func entryKey(e SymbolEntry) string {
	name := ""
	if e.Location.File != nil {
		name = e.Location.File.Name.String()
	}
	return name + "|" + e.Kind.Kind() + "|" + itoa(e.Location.Start) + "|" + itoa(e.Location.End)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// insert adds an entry, deduplicating on (file, kind, span).
func (idx *SymbolIndex) insert(e SymbolEntry) {
	key := entryKey(e)
	if _, ok := idx.seen[key]; ok {
		return
	}
	idx.seen[key] = struct{}{}
	idx.entries = append(idx.entries, e)
}

// Extend merges other's entries into idx.
func (idx *SymbolIndex) Extend(other *SymbolIndex) {
	if other == nil {
		return
	}
	for _, e := range other.entries {
		idx.insert(e)
	}
}

// LookupPosition returns the smallest-span entry in the same file whose
// range contains the byte offset loc.Start, per the §4.C lookup predicate:
// among all entries with Start <= q <= End, the one with the shortest span
// wins.
func (idx *SymbolIndex) LookupPosition(loc compiler.Location) (SymbolEntry, bool) {
	var best *SymbolEntry
	for i := range idx.entries {
		e := idx.entries[i]
		if e.Location.File == nil || loc.File == nil || e.Location.File.ID != loc.File.ID {
			continue
		}
		if !e.Location.Contains(loc.Start) {
			continue
		}
		if best == nil || e.Location.Len() < best.Location.Len() {
			best = &idx.entries[i]
		}
	}
	if best == nil {
		return SymbolEntry{}, false
	}
	return *best, true
}

// locationVisitor is the HIR visitor that populates a SymbolIndex, grounded
// on the traversal rules in §4.C: every named, referenced, or pattern-bound
// position in the tree gets exactly one entry, at the position a hover
// request there should resolve against.
type locationVisitor struct {
	compiler.BaseVisitor
	idx *SymbolIndex
	m   *compiler.Map
}

func (v *locationVisitor) VisitType(t *compiler.Type) error {
	v.idx.insert(SymbolEntry{Location: t.Location, Kind: typeKind(t.Name)})
	return nil
}

func (v *locationVisitor) VisitNode(n compiler.Node) error {
	switch node := n.(type) {
	case *compiler.Function:
		v.idx.insert(SymbolEntry{
			Location: node.Name.NameSegment().SegmentLocation(),
			Kind:     callableKind(compiler.CallReference{Function: node}),
		})
	case *compiler.Method:
		v.idx.insert(SymbolEntry{
			Location: node.Name.NameSegment().SegmentLocation(),
			Kind:     callableKind(compiler.CallReference{Method: node}),
		})
	case *compiler.TraitMethodDef:
		v.idx.insert(SymbolEntry{
			Location: node.Name.NameSegment().SegmentLocation(),
			Kind:     callableKind(compiler.CallReference{TraitDef: node}),
		})
	case *compiler.TraitMethodImpl:
		v.idx.insert(SymbolEntry{
			Location: node.Name.NameSegment().SegmentLocation(),
			Kind:     callableKind(compiler.CallReference{TraitImp: node}),
		})
	case *compiler.StructDef:
		v.idx.insert(SymbolEntry{Location: node.Name.NameSegment().SegmentLocation(), Kind: typeKind(node.Name)})
	case *compiler.TraitDef:
		v.idx.insert(SymbolEntry{Location: node.Name.NameSegment().SegmentLocation(), Kind: typeKind(node.Name)})
	case *compiler.EnumDef:
		v.idx.insert(SymbolEntry{Location: node.Name.NameSegment().SegmentLocation(), Kind: typeKind(node.Name)})
	case *compiler.Field:
		v.idx.insert(SymbolEntry{Location: node.Name.Location, Kind: fieldKind(node.ID)})
	}
	return nil
}

func (v *locationVisitor) VisitExpr(e *compiler.Expression) error {
	switch expr := e.Kind.(type) {
	case compiler.ConstructExpr:
		v.idx.insert(SymbolEntry{Location: expr.Path.NameSegment().SegmentLocation(), Kind: typeKind(expr.Path)})
	case compiler.StaticCallExpr:
		v.idx.insert(SymbolEntry{Location: expr.Name.NameSegment().SegmentLocation(), Kind: callKind(e.ID)})
	case compiler.InstanceCallExpr:
		v.idx.insert(SymbolEntry{Location: expr.Name.SegmentLocation(), Kind: callKind(e.ID)})
	case compiler.IntrinsicCallExpr:
		v.idx.insert(SymbolEntry{Location: e.Location, Kind: callKind(e.ID)})
	case compiler.MemberExpr:
		v.idx.insert(SymbolEntry{Location: expr.Name.Location, Kind: memberKind(expr.Callee, expr.Name)})
	case compiler.VariantExpr:
		v.idx.insert(SymbolEntry{Location: expr.Name.NameSegment().SegmentLocation(), Kind: variantKind(expr.Name)})
	case compiler.VariableExpr:
		v.idx.insert(SymbolEntry{Location: e.Location, Kind: variableRefKind(e.ID)})
	}
	return nil
}

func (v *locationVisitor) VisitPath(p *compiler.Path) error {
	current, ok := *p, true
	for ok {
		if _, isType := current.NameSegment().(compiler.TypeSegment); isType {
			v.idx.insert(SymbolEntry{
				Location: current.NameSegment().SegmentLocation(),
				Kind:     typeKind(current),
			})
		}
		current, ok = current.Parent()
	}
	return nil
}

func (v *locationVisitor) VisitPattern(p *compiler.Pattern) error {
	// Registered so a later hover query can resolve this pattern by id
	// through tcx.HirNode: patterns aren't part of the declaration-level
	// node set Traverse starts from, so nothing else puts them in the map.
	v.m.RegisterNode(p)

	switch pat := p.Kind.(type) {
	case compiler.VariantPattern:
		v.idx.insert(SymbolEntry{Location: pat.Name.NameSegment().SegmentLocation(), Kind: variantKind(pat.Name)})
	case compiler.IdentifierPattern, compiler.LiteralPattern, compiler.WildcardPattern:
		v.idx.insert(SymbolEntry{Location: p.Location, Kind: patternKind(p.ID)})
	}
	return nil
}
