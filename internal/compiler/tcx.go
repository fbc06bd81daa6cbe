package compiler

import "fmt"

// CallReference discriminates a callable as either a free function or a
// method, the shape spec §3's Glossary names explicitly.
type CallReference struct {
	Function *Function
	Method   *Method
	TraitDef *TraitMethodDef
	TraitImp *TraitMethodImpl
}

// Name returns the callable's unqualified name.
func (c CallReference) Name() string {
	switch {
	case c.Function != nil:
		return c.Function.Name.String()
	case c.Method != nil:
		return c.Method.Name.String()
	case c.TraitDef != nil:
		return c.TraitDef.Name.String()
	case c.TraitImp != nil:
		return c.TraitImp.Name.String()
	default:
		return ""
	}
}

func (c CallReference) visibility() Visibility {
	switch {
	case c.Function != nil:
		return c.Function.Visibility
	case c.Method != nil:
		return c.Method.Visibility
	case c.TraitDef != nil:
		return c.TraitDef.Visibility
	case c.TraitImp != nil:
		return c.TraitImp.Visibility
	default:
		return VisibilityPrivate
	}
}

func (c CallReference) params() []Parameter {
	switch {
	case c.Function != nil:
		return c.Function.Parameters
	case c.Method != nil:
		return c.Method.Parameters
	case c.TraitDef != nil:
		return c.TraitDef.Parameters
	case c.TraitImp != nil:
		return c.TraitImp.Parameters
	default:
		return nil
	}
}

func (c CallReference) returnType() *Type {
	switch {
	case c.Function != nil:
		return c.Function.ReturnType
	case c.Method != nil:
		return c.Method.ReturnType
	case c.TraitDef != nil:
		return c.TraitDef.ReturnType
	case c.TraitImp != nil:
		return c.TraitImp.ReturnType
	default:
		return nil
	}
}

// TypeDatabase offers field lookups scoped to a declared struct type.
type TypeDatabase struct {
	pkg *Package
}

// FindField resolves instanceType's field named fieldName, if any.
func (tdb TypeDatabase) FindField(instanceType Type, fieldName string) (*Field, *StructDef, bool) {
	sd := tdb.pkg.findStruct(instanceType.Name.String())
	if sd == nil {
		return nil, nil, false
	}
	for _, f := range sd.Fields {
		if f.Name.Name == fieldName {
			return f, sd, true
		}
	}
	return nil, nil, false
}

// TypeContext is the per-package query interface spec §3 enumerates
// verbatim. Each method name is kept as close as idiomatic Go allows to the
// spec's own naming (FindType ~ find_type, CallableOf ~ callable_of, etc.).
type TypeContext struct {
	pkg *Package
}

func newTypeContext(pkg *Package) *TypeContext {
	return &TypeContext{pkg: pkg}
}

// Tdb returns the type database for field lookups.
func (tcx *TypeContext) Tdb() TypeDatabase { return TypeDatabase{pkg: tcx.pkg} }

// FindType resolves a type definition node by qualified name.
func (tcx *TypeContext) FindType(name string) (Node, bool) {
	if sd := tcx.pkg.findStruct(name); sd != nil {
		return sd, true
	}
	if td := tcx.pkg.findTrait(name); td != nil {
		return td, true
	}
	if ed := tcx.pkg.findEnum(name); ed != nil {
		return ed, true
	}
	return nil, false
}

// HirNode resolves any node by id within this package's HIR.
func (tcx *TypeContext) HirNode(id NodeId) (Node, bool) {
	return tcx.pkg.HIR.Node(id)
}

// HirExpr resolves an expression by id.
func (tcx *TypeContext) HirExpr(id NodeId) (*Expression, bool) {
	e, err := tcx.pkg.HIR.ExpectExpression(id)
	if err != nil {
		return nil, false
	}
	return e, true
}

// HirCallExpr resolves id as a call expression specifically (static,
// instance, or intrinsic); returns false for any other expression kind.
func (tcx *TypeContext) HirCallExpr(id NodeId) (*Expression, bool) {
	e, ok := tcx.HirExpr(id)
	if !ok {
		return nil, false
	}
	switch e.Kind.(type) {
	case StaticCallExpr, InstanceCallExpr, IntrinsicCallExpr:
		return e, true
	default:
		return nil, false
	}
}

// CallableOf resolves a CallReference to its declaring node.
func (tcx *TypeContext) CallableOf(ref CallReference) (CallReference, bool) {
	if ref.Function != nil || ref.Method != nil || ref.TraitDef != nil || ref.TraitImp != nil {
		return ref, true
	}
	return CallReference{}, false
}

// ProbeCallable resolves a call expression's callee to the declaration it
// invokes, by name lookup across the package's functions and methods.
func (tcx *TypeContext) ProbeCallable(e *Expression) (CallReference, bool) {
	switch k := e.Kind.(type) {
	case StaticCallExpr:
		if fn := tcx.pkg.findFunction(k.Name.String()); fn != nil {
			return CallReference{Function: fn}, true
		}
	case InstanceCallExpr:
		if m := tcx.pkg.findMethod(k.Name.Name.Name); m != nil {
			return CallReference{Method: m}, true
		}
	}
	return CallReference{}, false
}

// EnumDefOfName resolves the enum type declaring the given qualified name
// (typically the parent of a variant path).
func (tcx *TypeContext) EnumDefOfName(name string) (*EnumDef, bool) {
	ed := tcx.pkg.findEnum(name)
	return ed, ed != nil
}

// EnumCaseWithName resolves a single case within the variant's parent enum
// by the variant's own qualified path.
func (tcx *TypeContext) EnumCaseWithName(path Path) (*EnumDef, *EnumCase, bool) {
	parent, ok := path.Parent()
	if !ok {
		return nil, nil, false
	}
	ed := tcx.pkg.findEnum(parent.String())
	if ed == nil {
		return nil, nil, false
	}
	caseName := path.NameSegment().SegmentName()
	for i := range ed.Cases {
		if ed.Cases[i].Name.Name == caseName {
			return ed, &ed.Cases[i], true
		}
	}
	return nil, nil, false
}

// OwningStructOfField resolves the struct declaring the given field node.
func (tcx *TypeContext) OwningStructOfField(field *Field) (*StructDef, bool) {
	for _, sd := range tcx.pkg.structs() {
		for _, f := range sd.Fields {
			if f.ID == field.ID {
				return sd, true
			}
		}
	}
	return nil, false
}

// TypeOf resolves the static type of an expression. This is a best-effort
// resolution: literals resolve to their literal kind's builtin type name,
// variables resolve through a `let` declaration's type annotation or a
// parameter's type, member accesses resolve through the callee's field
// type, and anything else (call expressions included) yields false.
func (tcx *TypeContext) TypeOf(id NodeId) (Type, bool) {
	e, ok := tcx.HirExpr(id)
	if !ok {
		return Type{}, false
	}
	switch k := e.Kind.(type) {
	case LiteralExpr:
		return builtinType(k.Value.Kind, e.Location), true
	case VariableExpr:
		if decl, ok := tcx.pkg.findVarDecl(k.Name); ok && decl.DeclaredType != nil {
			return *decl.DeclaredType, true
		}
		if param, ok := tcx.pkg.findParam(k.Name); ok {
			return param.ParamType, true
		}
		return Type{}, false
	case MemberExpr:
		calleeType, ok := tcx.TypeOf(k.Callee)
		if !ok {
			return Type{}, false
		}
		if field, _, ok := tcx.Tdb().FindField(calleeType, k.Name.Name); ok {
			return field.FieldType, true
		}
		return Type{}, false
	default:
		return Type{}, false
	}
}

// TypeOfPattern resolves the static type bound by a pattern: the literal's
// type for a literal pattern, the enum's type for a variant pattern.
func (tcx *TypeContext) TypeOfPattern(p *Pattern) (Type, bool) {
	switch k := p.Kind.(type) {
	case LiteralPattern:
		return tcx.TypeOf(k.Literal)
	case VariantPattern:
		if parent, ok := k.Name.Parent(); ok {
			return tcx.NewNamedType(parent.String(), p.Location), true
		}
		return Type{}, false
	default:
		return Type{}, false
	}
}

// SigToString renders a callable's signature, e.g. "name(p1: T1) -> R".
// The fullyQualified flag has no effect: this front end has no
// nested-module paths to qualify the name with, and generic parameters are
// not rendered.
func (tcx *TypeContext) SigToString(name string, ref CallReference, fullyQualified bool) string {
	params := ref.params()
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = fmt.Sprintf("%s: %s", p.Name.Name, p.ParamType.Name.String())
	}
	sig := name + "(" + joinComma(parts) + ")"
	if ret := ref.returnType(); ret != nil {
		sig += " -> " + ret.Name.String()
	}
	return sig
}

// VisibilityOf returns a callable's visibility qualifier, formatted with a
// trailing space when public (empty prefix otherwise), matching §4.F's
// "{vis} {signature}" rendering rule.
func (tcx *TypeContext) VisibilityOf(ref CallReference) string {
	return visPrefix(ref.visibility())
}

// NewNamedType builds a synthetic Type reference for a bare name, used when
// rendering a type that has no direct source Location of its own (e.g. a
// pattern's resolved type).
func (tcx *TypeContext) NewNamedType(name string, at Location) Type {
	return Type{Name: Path{Name: NamespaceSegment{Name: Identifier{Name: name, Location: at}}}, Location: at}
}

// MkTypeRefFrom builds a Type reference from a parameter's declared type,
// relocated to the given use-site id's expression location.
func (tcx *TypeContext) MkTypeRefFrom(paramType Type, useSiteID NodeId) Type {
	if e, ok := tcx.HirExpr(useSiteID); ok {
		return Type{Name: paramType.Name, Location: e.Location}
	}
	return paramType
}

func builtinType(kind string, at Location) Type {
	name := map[string]string{"int": "Int", "float": "Float", "string": "String", "bool": "Bool"}[kind]
	if name == "" {
		name = "Unknown"
	}
	return Type{Name: Path{Name: NamespaceSegment{Name: Identifier{Name: name, Location: at}}}, Location: at}
}

func visPrefix(v Visibility) string {
	if v == VisibilityPublic {
		return "pub "
	}
	return ""
}

func joinComma(parts []string) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += ", "
		}
		out += p
	}
	return out
}

// Parent returns the path with its final segment removed, and whether that
// path is non-empty (a variant's enum parent, for instance).
func (p Path) Parent() (Path, bool) {
	segs := p.Segments()
	if len(segs) < 2 {
		return Path{}, false
	}
	rest := segs[:len(segs)-1]
	return Path{Root: rest[:len(rest)-1], Name: rest[len(rest)-1]}, true
}

// NameSegment returns the path's final segment.
func (p Path) NameSegment() PathSegment { return p.Name }
