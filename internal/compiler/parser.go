package compiler

import "fmt"

// Parser is a hand-written recursive-descent front end for Lume source,
// producing a *Map directly (no separate untyped-AST stage) rather than
// via a generated ANTLR parser — see DESIGN.md for why antlr4-go is not
// wired in. It follows the teacher's own schema/internal/parse style: a
// manual token stream with a small lookahead window.
type Parser struct {
	file   *SourceFile
	toks   []Token
	pos    int
	m      *Map
	errors []error
}

// ParseFile parses file.Content into a fresh HIR Map. Parse errors are
// collected, not returned eagerly, so that one malformed declaration does
// not prevent the rest of the file from producing symbols. The caller
// (Driver.Check) emits each error into a DiagCtx; a non-empty list does not
// fail the compile.
func ParseFile(file *SourceFile) (*Map, []error) {
	lex := NewLexer(file.Content)
	toks, err := lex.Tokenize()
	if err != nil {
		return nil, []error{err}
	}
	p := &Parser{file: file, toks: toks, m: NewMap()}
	p.parseProgram()
	return p.m, p.errors
}

func (p *Parser) cur() Token {
	if p.pos >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.pos]
}

func (p *Parser) peek(n int) Token {
	i := p.pos + n
	if i >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[i]
}

func (p *Parser) advance() Token {
	t := p.cur()
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *Parser) atEOF() bool { return p.cur().Kind == TokEOF }

func (p *Parser) isPunct(s string) bool {
	t := p.cur()
	return t.Kind == TokPunct && t.Text == s
}

func (p *Parser) isKeyword(s string) bool {
	t := p.cur()
	return t.Kind == TokKeyword && t.Text == s
}

func (p *Parser) errf(at Token, format string, args ...any) {
	p.errors = append(p.errors, fmt.Errorf("%s: %s", p.loc(at), fmt.Sprintf(format, args...)))
}

func (p *Parser) expectPunct(s string) Token {
	if p.isPunct(s) {
		return p.advance()
	}
	p.errf(p.cur(), "expected %q, found %q", s, p.cur().Text)
	return p.cur()
}

func (p *Parser) loc(t Token) Location {
	return Location{File: p.file, Start: t.Start, End: t.End}
}

func (p *Parser) locRange(start, end Token) Location {
	return Location{File: p.file, Start: start.Start, End: end.End}
}

func (p *Parser) ident() Identifier {
	t := p.cur()
	if t.Kind != TokIdent {
		p.errf(t, "expected identifier, found %q", t.Text)
		p.advance()
		return Identifier{Name: t.Text, Location: p.loc(t)}
	}
	p.advance()
	return Identifier{Name: t.Text, Location: p.loc(t)}
}

// parseProgram parses the top-level item* entry point.
func (p *Parser) parseProgram() {
	for !p.atEOF() {
		before := p.pos
		p.parseItem()
		if p.pos == before {
			// Guard against an unrecognized token stalling the loop.
			p.errf(p.cur(), "unexpected token %q", p.cur().Text)
			p.advance()
		}
	}
}

func (p *Parser) parseVisibility() Visibility {
	if p.isKeyword("pub") {
		p.advance()
		return VisibilityPublic
	}
	return VisibilityPrivate
}

func (p *Parser) parseItem() {
	vis := p.parseVisibility()
	switch {
	case p.isKeyword("struct"):
		p.parseStruct(vis)
	case p.isKeyword("enum"):
		p.parseEnum(vis)
	case p.isKeyword("trait"):
		p.parseTrait(vis)
	case p.isKeyword("impl"):
		p.parseImpl()
	case p.isKeyword("fn"):
		p.parseFunction(vis)
	default:
		p.errf(p.cur(), "expected an item (struct/enum/trait/impl/fn), found %q", p.cur().Text)
		p.advance()
	}
}

func (p *Parser) parseGenerics() []TypeParameter {
	if !p.isPunct("<") {
		return nil
	}
	p.advance()
	var out []TypeParameter
	for !p.isPunct(">") && !p.atEOF() {
		name := p.ident()
		var constraints []Type
		if p.isPunct(":") {
			p.advance()
			constraints = append(constraints, p.parseType())
			for p.isPunct("+") {
				p.advance()
				constraints = append(constraints, p.parseType())
			}
		}
		out = append(out, TypeParameter{Name: name, Constraints: constraints})
		if p.isPunct(",") {
			p.advance()
		}
	}
	p.expectPunct(">")
	return out
}

func (p *Parser) parseTypeArguments() []Type {
	if !p.isPunct("<") {
		return nil
	}
	p.advance()
	var out []Type
	for !p.isPunct(">") && !p.atEOF() {
		out = append(out, p.parseType())
		if p.isPunct(",") {
			p.advance()
		}
	}
	p.expectPunct(">")
	return out
}

// parsePath parses a::b::c<...> style qualified names. Every segment, the
// leading ones included, is built by makeSegment with the kind the caller
// passes in lastKind (type vs value vs variant), each with its own location
// and type arguments, so a type path's middle segments are TypeSegments.
func (p *Parser) parsePath(lastKind string) Path {
	first := p.ident()
	var root []PathSegment
	lastSeg := p.makeSegment(first, lastKind)
	for p.isPunct("::") {
		root = append(root, lastSeg)
		p.advance()
		name := p.ident()
		lastSeg = p.makeSegment(name, lastKind)
	}
	return Path{Root: root, Name: lastSeg}
}

func toNamespaceIfPlain(seg PathSegment) PathSegment {
	if ns, ok := seg.(NamespaceSegment); ok {
		return ns
	}
	switch s := seg.(type) {
	case TypeSegment:
		return NamespaceSegment{Name: s.Name}
	case CallableSegment:
		return NamespaceSegment{Name: s.Name}
	case VariantSegment:
		return NamespaceSegment{Name: s.Name}
	default:
		return seg
	}
}

func (p *Parser) makeSegment(name Identifier, kind string) PathSegment {
	switch kind {
	case "type":
		targs := p.parseTypeArguments()
		end := name
		loc := name.Location
		if len(targs) > 0 {
			loc = Location{File: p.file, Start: name.Location.Start, End: p.toks[p.pos-1].End}
		}
		_ = end
		return TypeSegment{Name: name, TypeArguments: targs, Location: loc}
	case "callable":
		targs := p.parseTypeArguments()
		loc := name.Location
		if len(targs) > 0 {
			loc = Location{File: p.file, Start: name.Location.Start, End: p.toks[p.pos-1].End}
		}
		return CallableSegment{Name: name, TypeArguments: targs, Location: loc}
	case "variant":
		return VariantSegment{Name: name, Location: name.Location}
	default:
		return NamespaceSegment{Name: name}
	}
}

func (p *Parser) parseType() Type {
	path := p.parsePath("type")
	segs := path.Segments()
	last := segs[len(segs)-1]
	return Type{Name: path, Location: last.SegmentLocation()}
}

func (p *Parser) parseStruct(vis Visibility) {
	p.advance() // 'struct'
	name := p.ident()
	typeParams := p.parseGenerics()
	p.expectPunct("{")
	var fields []*Field
	for !p.isPunct("}") && !p.atEOF() {
		fieldVis := p.parseVisibility()
		fname := p.ident()
		p.expectPunct(":")
		ftype := p.parseType()
		f := &Field{ID: p.m.NextID(), Name: fname, FieldType: ftype, Visibility: fieldVis}
		if p.isPunct("=") {
			p.advance()
			valID := p.parseExpr()
			f.DefaultValue = &valID
		}
		p.m.RegisterNode(f)
		fields = append(fields, f)
		if p.isPunct(",") {
			p.advance()
		}
	}
	p.expectPunct("}")
	def := &StructDef{
		ID:             p.m.NextID(),
		Name:           Path{Name: NamespaceSegment{Name: name}},
		TypeParameters: typeParams,
		Fields:         fields,
		Visibility:     vis,
	}
	p.m.AddNode(def)
}

func (p *Parser) parseEnum(vis Visibility) {
	p.advance() // 'enum'
	name := p.ident()
	typeParams := p.parseGenerics()
	p.expectPunct("{")
	var cases []EnumCase
	for !p.isPunct("}") && !p.atEOF() {
		cname := p.ident()
		var params []Type
		if p.isPunct("(") {
			p.advance()
			for !p.isPunct(")") && !p.atEOF() {
				params = append(params, p.parseType())
				if p.isPunct(",") {
					p.advance()
				}
			}
			p.expectPunct(")")
		}
		cases = append(cases, EnumCase{Name: cname, ParameterTypes: params})
		if p.isPunct(",") {
			p.advance()
		}
	}
	p.expectPunct("}")
	def := &EnumDef{
		ID:             p.m.NextID(),
		Name:           Path{Name: NamespaceSegment{Name: name}},
		TypeParameters: typeParams,
		Cases:          cases,
		Visibility:     vis,
	}
	p.m.AddNode(def)
}

func (p *Parser) parseTrait(vis Visibility) {
	p.advance() // 'trait'
	name := p.ident()
	typeParams := p.parseGenerics()
	p.expectPunct("{")
	var methods []*TraitMethodDef
	for !p.isPunct("}") && !p.atEOF() {
		p.expectKeyword("fn")
		mname := p.ident()
		mtp := p.parseGenerics()
		params := p.parseParamList()
		ret := p.parseReturnType()
		var block *Block
		if p.isPunct("{") {
			block = p.parseBlock()
		} else {
			p.expectPunct(";")
		}
		def := &TraitMethodDef{
			ID:             p.m.NextID(),
			Name:           Path{Name: NamespaceSegment{Name: mname}},
			TypeParameters: mtp,
			Parameters:     params,
			Block:          block,
			ReturnType:     ret,
			Visibility:     VisibilityPublic,
		}
		p.m.RegisterNode(def)
		methods = append(methods, def)
	}
	p.expectPunct("}")
	def := &TraitDef{
		ID:             p.m.NextID(),
		Name:           Path{Name: NamespaceSegment{Name: name}},
		TypeParameters: typeParams,
		Methods:        methods,
		Visibility:     vis,
	}
	p.m.AddNode(def)
}

func (p *Parser) expectKeyword(s string) {
	if p.isKeyword(s) {
		p.advance()
		return
	}
	p.errf(p.cur(), "expected keyword %q, found %q", s, p.cur().Text)
}

func (p *Parser) parseImpl() {
	p.advance() // 'impl'
	typeParams := p.parseGenerics()
	first := p.parseType()
	if p.isKeyword("for") {
		p.advance()
		target := p.parseType()
		p.expectPunct("{")
		var methods []*TraitMethodImpl
		for !p.isPunct("}") && !p.atEOF() {
			vis := p.parseVisibility()
			p.expectKeyword("fn")
			mname := p.ident()
			mtp := p.parseGenerics()
			params := p.parseParamList()
			ret := p.parseReturnType()
			block := p.parseBlock()
			m := &TraitMethodImpl{
				ID:             p.m.NextID(),
				Name:           Path{Name: NamespaceSegment{Name: mname}},
				TypeParameters: mtp,
				Parameters:     params,
				Block:          block,
				ReturnType:     ret,
				Visibility:     vis,
			}
			p.m.RegisterNode(m)
			methods = append(methods, m)
		}
		p.expectPunct("}")
		p.m.AddNode(&TraitImpl{
			ID:             p.m.NextID(),
			Trait:          first,
			Target:         target,
			TypeParameters: typeParams,
			Methods:        methods,
		})
		return
	}
	p.expectPunct("{")
	var methods []*Method
	for !p.isPunct("}") && !p.atEOF() {
		vis := p.parseVisibility()
		p.expectKeyword("fn")
		mname := p.ident()
		mtp := p.parseGenerics()
		params := p.parseParamList()
		ret := p.parseReturnType()
		block := p.parseBlock()
		m := &Method{
			ID:             p.m.NextID(),
			Name:           Path{Name: NamespaceSegment{Name: mname}},
			TypeParameters: mtp,
			Parameters:     params,
			Block:          block,
			ReturnType:     ret,
			Visibility:     vis,
		}
		p.m.RegisterNode(m)
		methods = append(methods, m)
	}
	p.expectPunct("}")
	p.m.AddNode(&Impl{
		ID:             p.m.NextID(),
		Target:         first,
		TypeParameters: typeParams,
		Methods:        methods,
	})
}

func (p *Parser) parseFunction(vis Visibility) {
	p.advance() // 'fn'
	name := p.ident()
	typeParams := p.parseGenerics()
	params := p.parseParamList()
	ret := p.parseReturnType()
	block := p.parseBlock()
	p.m.AddNode(&Function{
		ID:             p.m.NextID(),
		Name:           Path{Name: NamespaceSegment{Name: name}},
		TypeParameters: typeParams,
		Parameters:     params,
		Block:          block,
		ReturnType:     ret,
		Visibility:     vis,
	})
}

func (p *Parser) parseParamList() []Parameter {
	p.expectPunct("(")
	var out []Parameter
	for !p.isPunct(")") && !p.atEOF() {
		name := p.ident()
		p.expectPunct(":")
		ptype := p.parseType()
		out = append(out, Parameter{Name: name, ParamType: ptype})
		if p.isPunct(",") {
			p.advance()
		}
	}
	p.expectPunct(")")
	return out
}

func (p *Parser) parseReturnType() *Type {
	if !p.isPunct("->") {
		return nil
	}
	p.advance()
	t := p.parseType()
	return &t
}

func (p *Parser) parseBlock() *Block {
	p.expectPunct("{")
	var stmts []NodeId
	for !p.isPunct("}") && !p.atEOF() {
		stmts = append(stmts, p.parseStmt())
	}
	p.expectPunct("}")
	return &Block{Statements: stmts}
}

func (p *Parser) parseStmt() NodeId {
	start := p.cur()
	id := p.m.NextID()
	var kind StatementKind
	switch {
	case p.isKeyword("let"):
		p.advance()
		name := p.ident()
		var declType *Type
		if p.isPunct(":") {
			p.advance()
			t := p.parseType()
			declType = &t
		}
		var init *NodeId
		if p.isPunct("=") {
			p.advance()
			v := p.parseExpr()
			init = &v
		}
		p.expectPunct(";")
		kind = VariableStmt{Name: name, DeclaredType: declType, Initializer: init}
	case p.isKeyword("break"):
		p.advance()
		p.expectPunct(";")
		kind = BreakStmt{}
	case p.isKeyword("continue"):
		p.advance()
		p.expectPunct(";")
		kind = ContinueStmt{}
	case p.isKeyword("return"):
		p.advance()
		var val *NodeId
		if !p.isPunct(";") {
			v := p.parseExpr()
			val = &v
		}
		p.expectPunct(";")
		kind = ReturnStmt{Value: val}
	case p.isKeyword("loop"):
		p.advance()
		block := p.parseBlock()
		kind = InfiniteLoopStmt{Block: *block}
	case p.isKeyword("for"):
		p.advance()
		p.ident() // loop variable name; not retained, collection/body is what the visitor walks
		p.expectKeyword("in")
		coll := p.parseExpr()
		block := p.parseBlock()
		kind = IteratorLoopStmt{Collection: coll, Block: *block}
	default:
		e := p.parseExpr()
		p.expectPunct(";")
		kind = ExpressionStmt{Expr: e}
	}
	end := p.toks[p.pos-1]
	stmt := &Statement{ID: id, Kind: kind, Location: p.locRange(start, end)}
	p.m.AddStatement(stmt)
	return id
}

// parseExpr parses an expression and returns its NodeId once registered.
func (p *Parser) parseExpr() NodeId {
	return p.parseAssignment()
}

func (p *Parser) parseAssignment() NodeId {
	left := p.parseIsExpr()
	if p.isPunct("=") {
		start := p.exprLoc(left).Start
		p.advance()
		right := p.parseAssignment()
		end := p.exprLoc(right).End
		return p.newExpr(AssignmentExpr{Target: left, Value: right}, start, end)
	}
	return left
}

func (p *Parser) parseIsExpr() NodeId {
	left := p.parseCast()
	for p.isKeyword("is") {
		start := p.exprLoc(left).Start
		p.advance()
		pat := p.parsePattern()
		end := p.toks[p.pos-1].End
		left = p.newExpr(IsExpr{Target: left, Pattern: pat}, start, end)
	}
	return left
}

func (p *Parser) parseCast() NodeId {
	left := p.parseBinary(0)
	for p.isKeyword("as") {
		start := p.exprLoc(left).Start
		p.advance()
		t := p.parseType()
		left = p.newExpr(CastExpr{Source: left, Target: t}, start, t.Location.End)
	}
	return left
}

var binaryOps = map[string]int{
	"*": 3, "/": 3,
	"+": 2, "-": 2,
	"==": 1, "<": 1, ">": 1,
}

func (p *Parser) parseBinary(minPrec int) NodeId {
	left := p.parseUnaryPostfix()
	for {
		t := p.cur()
		if t.Kind != TokPunct {
			return left
		}
		prec, ok := binaryOps[t.Text]
		if !ok || prec < minPrec {
			return left
		}
		op := t.Text
		p.advance()
		right := p.parseBinary(prec + 1)
		start := p.exprLoc(left).Start
		end := p.exprLoc(right).End
		left = p.newExpr(IntrinsicCallExpr{Op: op, Arguments: []NodeId{left, right}}, start, end)
	}
}

func (p *Parser) parseUnaryPostfix() NodeId {
	e := p.parsePrimary()
	for {
		switch {
		case p.isPunct("."):
			start := p.exprLoc(e).Start
			p.advance()
			name := p.ident()
			e = p.newExpr(MemberExpr{Callee: e, Name: name}, start, name.Location.End)
		case p.isPunct("("):
			start := p.exprLoc(e).Start
			args := p.parseArgList()
			end := p.toks[p.pos-1].End
			e = p.buildCallFrom(e, args, start, end)
		default:
			return e
		}
	}
}

func (p *Parser) parseArgList() []NodeId {
	p.expectPunct("(")
	var out []NodeId
	for !p.isPunct(")") && !p.atEOF() {
		out = append(out, p.parseExpr())
		if p.isPunct(",") {
			p.advance()
		}
	}
	p.expectPunct(")")
	return out
}

// buildCallFrom turns a callee expression plus an argument list into the
// appropriate call-expression kind: a bare path callee becomes a static
// call, a member-access callee becomes an instance call.
func (p *Parser) buildCallFrom(callee NodeId, args []NodeId, start, end int) NodeId {
	ce, _ := p.m.ExpectExpression(callee)
	if ce != nil {
		if ve, ok := ce.Kind.(VariableExpr); ok {
			name := Path{Name: NamespaceSegment{Name: Identifier{Name: ve.Name, Location: ce.Location}}}
			return p.newExpr(StaticCallExpr{Name: name, Arguments: args}, start, end)
		}
		if me, ok := ce.Kind.(MemberExpr); ok {
			seg := CallableSegment{Name: me.Name, Location: me.Name.Location}
			return p.newExpr(InstanceCallExpr{Name: seg, Callee: me.Callee, Arguments: args}, start, end)
		}
		if ve, ok := ce.Kind.(VariantExpr); ok {
			return p.newExpr(VariantExpr{Name: ve.Name, Arguments: args}, start, end)
		}
	}
	return p.newExpr(InstanceCallExpr{Name: CallableSegment{}, Callee: callee, Arguments: args}, start, end)
}

func (p *Parser) parsePrimary() NodeId {
	t := p.cur()
	switch {
	case t.Kind == TokInt:
		p.advance()
		return p.newExpr(LiteralExpr{Value: LiteralValue{Kind: "int", Raw: t.Text}}, t.Start, t.End)
	case t.Kind == TokFloat:
		p.advance()
		return p.newExpr(LiteralExpr{Value: LiteralValue{Kind: "float", Raw: t.Text}}, t.Start, t.End)
	case t.Kind == TokString:
		p.advance()
		return p.newExpr(LiteralExpr{Value: LiteralValue{Kind: "string", Raw: t.Text}}, t.Start, t.End)
	case t.Kind == TokKeyword && (t.Text == "true" || t.Text == "false"):
		p.advance()
		return p.newExpr(LiteralExpr{Value: LiteralValue{Kind: "bool", Raw: t.Text}}, t.Start, t.End)
	case p.isKeyword("if"):
		return p.parseIfExpr()
	case p.isKeyword("switch"):
		return p.parseSwitchExpr()
	case p.isPunct("{"):
		return p.parseScopeExpr()
	case p.isPunct("("):
		p.advance()
		e := p.parseExpr()
		p.expectPunct(")")
		return e
	case t.Kind == TokIdent:
		return p.parsePathOrConstruct()
	default:
		p.errf(t, "unexpected token %q in expression", t.Text)
		p.advance()
		return p.newExpr(LiteralExpr{Value: LiteralValue{Kind: "error", Raw: t.Text}}, t.Start, t.End)
	}
}

// parsePathOrConstruct parses an identifier, possibly qualified with `::`
// segments, then decides between a bare VariableExpr, a variant-construction
// `Path(args)` (handled by the postfix call rule), or a `Path { fields }`
// construct expression.
func (p *Parser) parsePathOrConstruct() NodeId {
	start := p.cur()
	path := p.parsePathValue()
	if p.isPunct("{") && pathLooksLikeType(path) {
		return p.parseConstruct(path, start)
	}
	segs := path.Segments()
	if len(segs) == 1 {
		if ns, ok := segs[0].(NamespaceSegment); ok {
			return p.newExpr(VariableExpr{Name: ns.Name.Name}, start.Start, ns.Name.Location.End)
		}
	}
	end := segs[len(segs)-1].SegmentLocation().End
	return p.newExpr(VariantExpr{Name: path, Arguments: nil}, start.Start, end)
}

// parsePathValue parses a qualified name in value position: every segment,
// the last one included, is a NamespaceSegment, whether or not `(` follows.
func (p *Parser) parsePathValue() Path {
	first := p.ident()
	var root []PathSegment
	last := PathSegment(NamespaceSegment{Name: first})
	for p.isPunct("::") {
		root = append(root, last)
		p.advance()
		name := p.ident()
		last = NamespaceSegment{Name: name}
	}
	return Path{Root: root, Name: last}
}

func pathLooksLikeType(p Path) bool {
	segs := p.Segments()
	name := segs[len(segs)-1].SegmentName()
	return len(name) > 0 && name[0] >= 'A' && name[0] <= 'Z'
}

func (p *Parser) parseConstruct(path Path, start Token) NodeId {
	p.expectPunct("{")
	var fields []ConstructField
	for !p.isPunct("}") && !p.atEOF() {
		name := p.ident()
		p.expectPunct(":")
		val := p.parseExpr()
		fields = append(fields, ConstructField{Name: name, Value: val})
		if p.isPunct(",") {
			p.advance()
		}
	}
	end := p.cur()
	p.expectPunct("}")
	return p.newExpr(ConstructExpr{Path: path, Fields: fields}, start.Start, end.End)
}

func (p *Parser) parseIfExpr() NodeId {
	start := p.cur()
	var cases []IfCase
	p.expectKeyword("if")
	cond := p.parseExpr()
	block := p.parseBlock()
	cases = append(cases, IfCase{Condition: &cond, Block: *block})
	for p.isKeyword("else") {
		p.advance()
		if p.isKeyword("if") {
			p.advance()
			c := p.parseExpr()
			b := p.parseBlock()
			cases = append(cases, IfCase{Condition: &c, Block: *b})
		} else {
			b := p.parseBlock()
			cases = append(cases, IfCase{Condition: nil, Block: *b})
			break
		}
	}
	end := p.toks[p.pos-1]
	return p.newExpr(IfExpr{Cases: cases}, start.Start, end.End)
}

func (p *Parser) parseSwitchExpr() NodeId {
	start := p.cur()
	p.advance() // 'switch'
	operand := p.parseExpr()
	p.expectPunct("{")
	var cases []SwitchCase
	for !p.isPunct("}") && !p.atEOF() {
		pat := p.parsePattern()
		p.expectPunct("=>")
		branch := p.parseExpr()
		cases = append(cases, SwitchCase{Pattern: pat, Branch: branch})
		if p.isPunct(",") {
			p.advance()
		}
	}
	end := p.cur()
	p.expectPunct("}")
	return p.newExpr(SwitchExpr{Operand: operand, Cases: cases}, start.Start, end.End)
}

func (p *Parser) parseScopeExpr() NodeId {
	start := p.cur()
	p.expectPunct("{")
	var body []NodeId
	for !p.isPunct("}") && !p.atEOF() {
		body = append(body, p.parseStmt())
	}
	end := p.cur()
	p.expectPunct("}")
	return p.newExpr(ScopeExpr{Body: body}, start.Start, end.End)
}

func (p *Parser) parsePattern() Pattern {
	t := p.cur()
	switch {
	case t.Kind == TokIdent && t.Text == "_":
		p.advance()
		return Pattern{ID: p.m.NextID(), Kind: WildcardPattern{}, Location: p.loc(t)}
	case t.Kind == TokInt || t.Kind == TokFloat || t.Kind == TokString ||
		(t.Kind == TokKeyword && (t.Text == "true" || t.Text == "false")):
		lit := p.parsePrimary()
		le, _ := p.m.ExpectExpression(lit)
		return Pattern{ID: p.m.NextID(), Kind: LiteralPattern{Literal: lit}, Location: le.Location}
	case t.Kind == TokIdent:
		path := p.parsePathValue()
		if p.isPunct("(") {
			p.advance()
			var fields []*Pattern
			for !p.isPunct(")") && !p.atEOF() {
				sub := p.parsePattern()
				fields = append(fields, &sub)
				if p.isPunct(",") {
					p.advance()
				}
			}
			end := p.cur()
			p.expectPunct(")")
			return Pattern{ID: p.m.NextID(), Kind: VariantPattern{Name: path, Fields: fields}, Location: p.locRange(t, end)}
		}
		segs := path.Segments()
		if len(segs) == 1 {
			return Pattern{ID: p.m.NextID(), Kind: IdentifierPattern{Name: segs[0].(NamespaceSegment).Name}, Location: segs[0].SegmentLocation()}
		}
		return Pattern{ID: p.m.NextID(), Kind: VariantPattern{Name: path}, Location: segs[len(segs)-1].SegmentLocation()}
	default:
		p.errf(t, "unexpected token %q in pattern", t.Text)
		p.advance()
		return Pattern{ID: p.m.NextID(), Kind: WildcardPattern{}, Location: p.loc(t)}
	}
}

func (p *Parser) newExpr(kind ExpressionKind, start, end int) NodeId {
	id := p.m.NextID()
	e := &Expression{ID: id, Kind: kind, Location: Location{File: p.file, Start: start, End: end}}
	p.m.AddExpression(e)
	return id
}

func (p *Parser) exprLoc(id NodeId) Location {
	e, _ := p.m.ExpectExpression(id)
	return e.Location
}
