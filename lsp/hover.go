package lsp

import (
	"fmt"
	"strings"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/lume-lang/lume-lsp/internal/compiler"
)

// HoverResolver renders a Symbol Index entry into the Markdown snippet a
// textDocument/hover response carries, consulting a package's TypeContext
// for the declarations an entry merely points at.
type HoverResolver struct{}

// NewHoverResolver builds a resolver. It carries no state of its own; every
// query is answered fresh from the package and index passed to Resolve.
func NewHoverResolver() *HoverResolver {
	return &HoverResolver{}
}

// Resolve looks up loc in idx and renders the hit, if any, as a *protocol.Hover
// whose content is a single fenced "lm" code block. A miss, or an entry this
// resolver cannot render (its HIR node vanished since the index was built),
// yields (nil, false) rather than an error: spec §7 treats hover failures as
// "no info", never as a protocol error.
func (hr *HoverResolver) Resolve(pkg *compiler.Package, idx *SymbolIndex, loc compiler.Location) (*protocol.Hover, bool) {
	entry, ok := idx.LookupPosition(loc)
	if !ok {
		return nil, false
	}

	text, ok := hr.render(pkg, entry.Kind)
	if !ok {
		return nil, false
	}

	return &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.MarkupKindMarkdown,
			Value: "```lm\n" + text + "\n```",
		},
	}, true
}

func (hr *HoverResolver) render(pkg *compiler.Package, kind SymbolKind) (string, bool) {
	tcx := pkg.Tcx()

	switch kind.Kind() {
	case "Type":
		return renderType(pkg, kind.TypeName)
	case "Callable":
		ref, ok := tcx.CallableOf(kind.Callable)
		if !ok {
			return "", false
		}
		return renderCallable(tcx, ref), true
	case "Member":
		return renderMember(tcx, kind.MemberOf, kind.FieldName)
	case "Variant":
		return renderVariant(tcx, kind.VariantOf)
	case "Pattern":
		return renderPattern(tcx, kind.PatternID)
	case "Field":
		return renderField(tcx, kind.FieldID)
	case "Call":
		return renderCall(tcx, kind.CallID)
	case "VariableReference":
		return renderVariableReference(tcx, kind.VariableID)
	default:
		return "", false
	}
}

// renderType formats a type definition header: "{vis} struct [builtin ]{name}"
// for structs, "{vis} trait {name}" for traits, "{vis} enum {name}" for enums.
func renderType(pkg *compiler.Package, name compiler.Path) (string, bool) {
	node, ok := pkg.Tcx().FindType(name.String())
	if !ok {
		return "", false
	}
	switch n := node.(type) {
	case *compiler.StructDef:
		builtin := ""
		if n.Builtin {
			builtin = "builtin "
		}
		return fmt.Sprintf("%sstruct %s%s", visPrefix(n.Visibility), builtin, n.Name.String()+typeParamSuffix(n.TypeParameters)), true
	case *compiler.TraitDef:
		return fmt.Sprintf("%strait %s", visPrefix(n.Visibility), n.Name.String()+typeParamSuffix(n.TypeParameters)), true
	case *compiler.EnumDef:
		return fmt.Sprintf("%senum %s", visPrefix(n.Visibility), n.Name.String()+typeParamSuffix(n.TypeParameters)), true
	default:
		return "", false
	}
}

// renderCallable formats "{vis} {signature}", the signature fully qualified.
func renderCallable(tcx *compiler.TypeContext, ref compiler.CallReference) string {
	vis := tcx.VisibilityOf(ref)
	sig := tcx.SigToString(ref.Name(), ref, true)
	return vis + sig
}

// renderMember formats "{vis} {name}: {typeName}" for a field accessed
// through a member expression.
func renderMember(tcx *compiler.TypeContext, callee compiler.NodeId, field compiler.Identifier) (string, bool) {
	calleeType, ok := tcx.TypeOf(callee)
	if !ok {
		return "", false
	}
	declared, _, ok := tcx.Tdb().FindField(calleeType, field.Name)
	if !ok {
		return "", false
	}
	return fmt.Sprintf("%s%s: %s", visPrefix(declared.Visibility), field.Name, declared.FieldType.Name.String()), true
}

// renderVariant formats "{EnumName}::{CaseName}[(p1, p2, …)]".
func renderVariant(tcx *compiler.TypeContext, name compiler.Path) (string, bool) {
	parent, ok := name.Parent()
	if !ok {
		return "", false
	}
	ed, cs, ok := tcx.EnumCaseWithName(name)
	if !ok {
		return "", false
	}

	params := make([]string, len(cs.ParameterTypes))
	for i, p := range cs.ParameterTypes {
		params[i] = p.Name.String()
	}

	caseText := cs.Name.Name
	if len(params) > 0 {
		caseText += "(" + strings.Join(params, ", ") + ")"
	}

	enumName := ed.Name.String() + typeParamSuffix(ed.TypeParameters)
	_ = parent
	return enumName + "::" + caseText, true
}

// renderPattern resolves the pattern's bound type and renders just the type
// name.
func renderPattern(tcx *compiler.TypeContext, id compiler.NodeId) (string, bool) {
	node, ok := tcx.HirNode(id)
	if !ok {
		return "", false
	}
	p, ok := node.(*compiler.Pattern)
	if !ok {
		return "", false
	}
	typ, ok := tcx.TypeOfPattern(p)
	if !ok {
		return "", false
	}
	return typ.Name.String(), true
}

// renderField formats "{OwnerName}\n\n{fieldName}: {fieldType};".
func renderField(tcx *compiler.TypeContext, id compiler.NodeId) (string, bool) {
	node, ok := tcx.HirNode(id)
	if !ok {
		return "", false
	}
	field, ok := node.(*compiler.Field)
	if !ok {
		return "", false
	}
	owner, ok := tcx.OwningStructOfField(field)
	if !ok {
		return "", false
	}
	return fmt.Sprintf("%s\n\n%s: %s;", owner.Name.String(), field.Name.Name, field.FieldType.Name.String()), true
}

// renderCall resolves the call expression's callee and delegates to the
// Callable rendering.
func renderCall(tcx *compiler.TypeContext, id compiler.NodeId) (string, bool) {
	expr, ok := tcx.HirCallExpr(id)
	if !ok {
		return "", false
	}
	ref, ok := tcx.ProbeCallable(expr)
	if !ok {
		return "", false
	}
	return renderCallable(tcx, ref), true
}

// renderVariableReference formats "let {name}: {type};", taking the type
// from TypeOf: a `let` declaration's type annotation, else the type of a
// parameter of the same name. A variable bound only by a pattern, or only
// by a `let` without a type annotation, gets no hover.
func renderVariableReference(tcx *compiler.TypeContext, id compiler.NodeId) (string, bool) {
	expr, ok := tcx.HirExpr(id)
	if !ok {
		return "", false
	}
	v, ok := expr.Kind.(compiler.VariableExpr)
	if !ok {
		return "", false
	}
	typ, ok := tcx.TypeOf(id)
	if !ok {
		return "", false
	}
	return fmt.Sprintf("let %s: %s;", v.Name, typ.Name.String()), true
}

// typeParamSuffix renders a definition's generic parameter list, e.g.
// "<T, U>", or the empty string when there are none.
func typeParamSuffix(tps []compiler.TypeParameter) string {
	if len(tps) == 0 {
		return ""
	}
	names := make([]string, len(tps))
	for i, tp := range tps {
		names[i] = tp.Name.Name
	}
	return "<" + strings.Join(names, ", ") + ">"
}
