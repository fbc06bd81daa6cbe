package compiler

// NodeId is an opaque handle into a Map's arena. HIR children are referenced
// by id, never by owning pointer, so the visitor never holds a reference
// that outlives the arena.
type NodeId uint64

// Visibility is a declaration's visibility qualifier.
type Visibility int

const (
	VisibilityPrivate Visibility = iota
	VisibilityPublic
)

func (v Visibility) String() string {
	if v == VisibilityPublic {
		return "pub"
	}
	return ""
}

// Identifier is a bare name with a source location.
type Identifier struct {
	Name     string
	Location Location
}

// PathSegment is one component of a qualified Path. Exactly one of the
// embedded kinds is set, discriminated with a type switch by callers.
type PathSegment interface {
	SegmentName() string
	SegmentLocation() Location
}

// NamespaceSegment names a module/namespace component of a path.
type NamespaceSegment struct {
	Name Identifier
}

func (s NamespaceSegment) SegmentName() string       { return s.Name.Name }
func (s NamespaceSegment) SegmentLocation() Location { return s.Name.Location }

// TypeSegment names a type component of a path, with optional type arguments.
type TypeSegment struct {
	Name          Identifier
	TypeArguments []Type
	Location      Location
}

func (s TypeSegment) SegmentName() string       { return s.Name.Name }
func (s TypeSegment) SegmentLocation() Location { return s.Location }

// CallableSegment names a function/method component of a path, with
// optional type arguments.
type CallableSegment struct {
	Name          Identifier
	TypeArguments []Type
	Location      Location
}

func (s CallableSegment) SegmentName() string       { return s.Name.Name }
func (s CallableSegment) SegmentLocation() Location { return s.Location }

// VariantSegment names an enum-variant component of a path.
type VariantSegment struct {
	Name     Identifier
	Location Location
}

func (s VariantSegment) SegmentName() string       { return s.Name.Name }
func (s VariantSegment) SegmentLocation() Location { return s.Location }

// Path is a qualified name: zero or more leading segments plus a final name
// segment.
type Path struct {
	Root []PathSegment
	Name PathSegment
}

// Segments returns the full segment list in order, Root first then Name.
func (p Path) Segments() []PathSegment {
	out := make([]PathSegment, 0, len(p.Root)+1)
	out = append(out, p.Root...)
	out = append(out, p.Name)
	return out
}

// String renders the path "a::b::c" the way diagnostics and hover text do.
func (p Path) String() string {
	segs := p.Segments()
	names := make([]string, len(segs))
	for i, s := range segs {
		names[i] = s.SegmentName()
	}
	out := names[0]
	for _, n := range names[1:] {
		out += "::" + n
	}
	return out
}

// Type is a type reference: a path plus the location of that reference.
type Type struct {
	Name     Path
	Location Location
}

// TypeParameter is a generic parameter with its constraint bounds.
type TypeParameter struct {
	Name        Identifier
	Constraints []Type
}

// Parameter is a function/method value parameter.
type Parameter struct {
	Name      Identifier
	ParamType Type
}

// Block is a sequence of statement ids.
type Block struct {
	Statements []NodeId
}

// Node is implemented by every declaration-level HIR shape the visitor's
// visit_node hook dispatches over: Function, Method, TraitMethodDef,
// TraitMethodImpl, Impl, TraitImpl, StructDef, TraitDef, EnumDef, Field.
// A Go type switch over this closed set is the idiomatic rendition of the
// "tagged variant, not dynamic type test" dispatch the HIR visitor requires.
type Node interface {
	nodeID() NodeId
}

// Function is a free function declaration.
type Function struct {
	ID             NodeId
	Name           Path
	TypeParameters []TypeParameter
	Parameters     []Parameter
	Block          *Block
	ReturnType     *Type
	Visibility     Visibility
}

func (f *Function) nodeID() NodeId { return f.ID }

// Method is a struct method declaration (inside an Impl).
type Method struct {
	ID             NodeId
	Name           Path
	TypeParameters []TypeParameter
	Parameters     []Parameter
	Block          *Block
	ReturnType     *Type
	Visibility     Visibility
}

func (m *Method) nodeID() NodeId { return m.ID }

// TraitMethodDef is a method signature declared by a trait.
type TraitMethodDef struct {
	ID             NodeId
	Name           Path
	TypeParameters []TypeParameter
	Parameters     []Parameter
	Block          *Block // nil when the trait provides no default body
	ReturnType     *Type
	Visibility     Visibility
}

func (m *TraitMethodDef) nodeID() NodeId { return m.ID }

// TraitMethodImpl is a method implementing a trait method inside a TraitImpl.
type TraitMethodImpl struct {
	ID             NodeId
	Name           Path
	TypeParameters []TypeParameter
	Parameters     []Parameter
	Block          *Block
	ReturnType     *Type
	Visibility     Visibility
}

func (m *TraitMethodImpl) nodeID() NodeId { return m.ID }

// Impl is an inherent `impl Target { ... }` block.
type Impl struct {
	ID             NodeId
	Target         Type
	TypeParameters []TypeParameter
	Methods        []*Method
}

func (i *Impl) nodeID() NodeId { return i.ID }

// TraitImpl is an `impl Trait for Target { ... }` block.
type TraitImpl struct {
	ID             NodeId
	Trait          Type
	Target         Type
	TypeParameters []TypeParameter
	Methods        []*TraitMethodImpl
}

func (t *TraitImpl) nodeID() NodeId { return t.ID }

// Field is a struct field declaration.
type Field struct {
	ID           NodeId
	Name         Identifier
	FieldType    Type
	DefaultValue *NodeId // expression id, if the field has a default
	Visibility   Visibility
}

func (f *Field) nodeID() NodeId { return f.ID }

// StructDef is a struct type definition.
type StructDef struct {
	ID             NodeId
	Name           Path
	TypeParameters []TypeParameter
	Fields         []*Field
	Visibility     Visibility
	Builtin        bool
}

func (s *StructDef) nodeID() NodeId { return s.ID }

// TraitDef is a trait type definition.
type TraitDef struct {
	ID             NodeId
	Name           Path
	TypeParameters []TypeParameter
	Methods        []*TraitMethodDef
	Visibility     Visibility
}

func (t *TraitDef) nodeID() NodeId { return t.ID }

// EnumCase is one variant of an enum, with its parameter types (empty for a
// unit variant).
type EnumCase struct {
	Name           Identifier
	ParameterTypes []Type
}

// EnumDef is an enum type definition.
type EnumDef struct {
	ID             NodeId
	Name           Path
	TypeParameters []TypeParameter
	Cases          []EnumCase
	Visibility     Visibility
}

func (e *EnumDef) nodeID() NodeId { return e.ID }

// StatementKind is implemented by each statement shape.
type StatementKind interface {
	isStatementKind()
}

type VariableStmt struct {
	Name         Identifier
	DeclaredType *Type
	Initializer  *NodeId
}
type BreakStmt struct{}
type ContinueStmt struct{}
type FinalStmt struct{ Value *NodeId }
type ReturnStmt struct{ Value *NodeId }
type InfiniteLoopStmt struct{ Block Block }
type IteratorLoopStmt struct {
	Collection NodeId
	Block      Block
}
type ExpressionStmt struct{ Expr NodeId }

func (VariableStmt) isStatementKind()     {}
func (BreakStmt) isStatementKind()        {}
func (ContinueStmt) isStatementKind()     {}
func (FinalStmt) isStatementKind()        {}
func (ReturnStmt) isStatementKind()       {}
func (InfiniteLoopStmt) isStatementKind() {}
func (IteratorLoopStmt) isStatementKind() {}
func (ExpressionStmt) isStatementKind()   {}

// Statement is a statement node: an id, its kind, and its location.
type Statement struct {
	ID       NodeId
	Kind     StatementKind
	Location Location
}

func (s *Statement) nodeID() NodeId { return s.ID }

// ExpressionKind is implemented by each expression shape.
type ExpressionKind interface {
	isExpressionKind()
}

type AssignmentExpr struct{ Target, Value NodeId }
type CastExpr struct {
	Source NodeId
	Target Type
}
type ConstructField struct {
	Name  Identifier
	Value NodeId
}
type ConstructExpr struct {
	Path   Path
	Fields []ConstructField
}
type StaticCallExpr struct {
	Name      Path
	Arguments []NodeId
}
type InstanceCallExpr struct {
	Name      CallableSegment
	Callee    NodeId
	Arguments []NodeId
}
type IntrinsicCallExpr struct {
	Op        string
	Arguments []NodeId
}
type IfCase struct {
	Condition *NodeId // nil for a trailing `else`
	Block     Block
}
type IfExpr struct{ Cases []IfCase }
type IsExpr struct {
	Target  NodeId
	Pattern Pattern
}
type MemberExpr struct {
	Callee NodeId
	Name   Identifier
}
type ScopeExpr struct{ Body []NodeId }
type SwitchCase struct {
	Pattern Pattern
	Branch  NodeId
}
type SwitchExpr struct {
	Operand NodeId
	Cases   []SwitchCase
}
type VariantExpr struct {
	Name      Path
	Arguments []NodeId
}
type LiteralValue struct {
	// Raw holds the literal's source text for rendering purposes; Kind
	// distinguishes int/float/string/bool so the front end need not carry
	// a richer literal-value representation the spec doesn't ask for.
	Kind string
	Raw  string
}
type LiteralExpr struct{ Value LiteralValue }
type VariableExpr struct{ Name string }

func (AssignmentExpr) isExpressionKind()    {}
func (CastExpr) isExpressionKind()          {}
func (ConstructExpr) isExpressionKind()     {}
func (StaticCallExpr) isExpressionKind()    {}
func (InstanceCallExpr) isExpressionKind()  {}
func (IntrinsicCallExpr) isExpressionKind() {}
func (IfExpr) isExpressionKind()            {}
func (IsExpr) isExpressionKind()            {}
func (MemberExpr) isExpressionKind()        {}
func (ScopeExpr) isExpressionKind()         {}
func (SwitchExpr) isExpressionKind()        {}
func (VariantExpr) isExpressionKind()       {}
func (LiteralExpr) isExpressionKind()       {}
func (VariableExpr) isExpressionKind()      {}

// Expression is an expression node: an id, its kind, and its location.
type Expression struct {
	ID       NodeId
	Kind     ExpressionKind
	Location Location
}

func (e *Expression) nodeID() NodeId { return e.ID }

// PatternKind is implemented by each pattern shape.
type PatternKind interface {
	isPatternKind()
}

type IdentifierPattern struct{ Name Identifier }
type LiteralPattern struct{ Literal NodeId }
type VariantPattern struct {
	Name   Path
	Fields []*Pattern
}
type WildcardPattern struct{}

func (IdentifierPattern) isPatternKind() {}
func (LiteralPattern) isPatternKind()    {}
func (VariantPattern) isPatternKind()    {}
func (WildcardPattern) isPatternKind()   {}

// Pattern is a pattern node: an id, its kind, and its location.
type Pattern struct {
	ID       NodeId
	Kind     PatternKind
	Location Location
}

func (p *Pattern) nodeID() NodeId { return p.ID }

// Map is the HIR arena: the compiler owns it, the visitor only borrows it
// for the lifetime of one traversal.
type Map struct {
	order       []NodeId
	nodes       map[NodeId]Node
	expressions map[NodeId]*Expression
	statements  map[NodeId]*Statement
	next        NodeId
}

// NewMap returns an empty HIR arena.
func NewMap() *Map {
	return &Map{
		nodes:       make(map[NodeId]Node),
		expressions: make(map[NodeId]*Expression),
		statements:  make(map[NodeId]*Statement),
	}
}

// NextID allocates a fresh NodeId.
func (m *Map) NextID() NodeId {
	m.next++
	return m.next
}

// AddNode registers a top-level declaration node, reachable both through
// Nodes() (traversal order) and Node (by-id lookup).
func (m *Map) AddNode(n Node) {
	m.order = append(m.order, n.nodeID())
	m.nodes[n.nodeID()] = n
}

// RegisterNode registers a nested declaration node (a Method inside an
// Impl, a Field inside a StructDef) so it remains reachable via Node/
// HirNode for SymbolKind payloads that carry its id, without making it a
// second top-level traversal root.
func (m *Map) RegisterNode(n Node) {
	m.nodes[n.nodeID()] = n
}

// AddExpression registers an expression, reachable later via
// ExpectExpression.
func (m *Map) AddExpression(e *Expression) {
	m.expressions[e.ID] = e
}

// AddStatement registers a statement, reachable later via ExpectStatement.
func (m *Map) AddStatement(s *Statement) {
	m.statements[s.ID] = s
}

// Nodes returns top-level declaration nodes in declaration order.
func (m *Map) Nodes() []Node {
	out := make([]Node, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.nodes[id])
	}
	return out
}

// Node looks up any node (declaration, expression, or statement) by id.
func (m *Map) Node(id NodeId) (Node, bool) {
	if n, ok := m.nodes[id]; ok {
		return n, true
	}
	if e, ok := m.expressions[id]; ok {
		return e, true
	}
	if s, ok := m.statements[id]; ok {
		return s, true
	}
	return nil, false
}

// ExpectExpression resolves a body expression id, as body expressions are
// referenced by id rather than owned directly.
func (m *Map) ExpectExpression(id NodeId) (*Expression, error) {
	e, ok := m.expressions[id]
	if !ok {
		return nil, errNodeNotFound("expression", id)
	}
	return e, nil
}

// ExpectStatement resolves a body statement id.
func (m *Map) ExpectStatement(id NodeId) (*Statement, error) {
	s, ok := m.statements[id]
	if !ok {
		return nil, errNodeNotFound("statement", id)
	}
	return s, nil
}
