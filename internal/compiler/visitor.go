package compiler

// Visitor is a double-dispatch capability set over the HIR. Every hook
// defaults to a no-op (via BaseVisitor); a visitor overrides only the hooks
// it cares about. Returning a non-nil error short-circuits the rest of the
// traversal with that error.
type Visitor interface {
	VisitNode(n Node) error
	VisitType(t *Type) error
	VisitStmt(s *Statement) error
	VisitExpr(e *Expression) error
	VisitPattern(p *Pattern) error
	VisitPath(p *Path) error
	VisitIdentifier(id *Identifier) error
}

// BaseVisitor implements Visitor with no-op defaults. Concrete visitors
// embed it and override only the hooks they need, the Go rendition of the
// HIR visitor trait's per-hook defaults.
type BaseVisitor struct{}

func (BaseVisitor) VisitNode(Node) error             { return nil }
func (BaseVisitor) VisitType(*Type) error             { return nil }
func (BaseVisitor) VisitStmt(*Statement) error        { return nil }
func (BaseVisitor) VisitExpr(*Expression) error       { return nil }
func (BaseVisitor) VisitPattern(*Pattern) error       { return nil }
func (BaseVisitor) VisitPath(*Path) error             { return nil }
func (BaseVisitor) VisitIdentifier(*Identifier) error { return nil }

// Traverse walks every top-level declaration in m, dispatching to v.
func Traverse(v Visitor, m *Map) error {
	for _, n := range m.Nodes() {
		if err := traverseNode(v, m, n); err != nil {
			return err
		}
	}
	return nil
}

func traverseNode(v Visitor, m *Map, n Node) error {
	if err := v.VisitNode(n); err != nil {
		return err
	}
	switch node := n.(type) {
	case *Function:
		return traverseCallableLike(v, m, node.Name, node.TypeParameters, node.Parameters, node.Block, node.ReturnType)
	case *Method:
		return traverseCallableLike(v, m, node.Name, node.TypeParameters, node.Parameters, node.Block, node.ReturnType)
	case *TraitMethodDef:
		return traverseCallableLike(v, m, node.Name, node.TypeParameters, node.Parameters, node.Block, node.ReturnType)
	case *TraitMethodImpl:
		return traverseCallableLike(v, m, node.Name, node.TypeParameters, node.Parameters, node.Block, node.ReturnType)
	case *Impl:
		if err := traverseType(v, &node.Target); err != nil {
			return err
		}
		if err := traverseTypeParameters(v, node.TypeParameters); err != nil {
			return err
		}
		for _, method := range node.Methods {
			if err := traverseNode(v, m, method); err != nil {
				return err
			}
		}
		return nil
	case *TraitImpl:
		if err := traverseType(v, &node.Trait); err != nil {
			return err
		}
		if err := traverseType(v, &node.Target); err != nil {
			return err
		}
		if err := traverseTypeParameters(v, node.TypeParameters); err != nil {
			return err
		}
		for _, method := range node.Methods {
			if err := traverseNode(v, m, method); err != nil {
				return err
			}
		}
		return nil
	case *StructDef:
		if err := traversePath(v, &node.Name); err != nil {
			return err
		}
		if err := traverseTypeParameters(v, node.TypeParameters); err != nil {
			return err
		}
		for _, f := range node.Fields {
			if err := traverseNode(v, m, f); err != nil {
				return err
			}
		}
		return nil
	case *TraitDef:
		if err := traversePath(v, &node.Name); err != nil {
			return err
		}
		if err := traverseTypeParameters(v, node.TypeParameters); err != nil {
			return err
		}
		for _, method := range node.Methods {
			if err := traverseNode(v, m, method); err != nil {
				return err
			}
		}
		return nil
	case *EnumDef:
		if err := traversePath(v, &node.Name); err != nil {
			return err
		}
		if err := traverseTypeParameters(v, node.TypeParameters); err != nil {
			return err
		}
		for i := range node.Cases {
			c := &node.Cases[i]
			if err := v.VisitIdentifier(&c.Name); err != nil {
				return err
			}
			for j := range c.ParameterTypes {
				if err := traverseType(v, &c.ParameterTypes[j]); err != nil {
					return err
				}
			}
		}
		return nil
	case *Field:
		if err := v.VisitIdentifier(&node.Name); err != nil {
			return err
		}
		if err := traverseType(v, &node.FieldType); err != nil {
			return err
		}
		if node.DefaultValue != nil {
			return traverseExprByID(v, m, *node.DefaultValue)
		}
		return nil
	}
	return nil
}

func traverseCallableLike(v Visitor, m *Map, name Path, typeParams []TypeParameter, params []Parameter, block *Block, ret *Type) error {
	if err := traversePath(v, &name); err != nil {
		return err
	}
	if err := traverseTypeParameters(v, typeParams); err != nil {
		return err
	}
	for i := range params {
		p := &params[i]
		if err := v.VisitIdentifier(&p.Name); err != nil {
			return err
		}
		if err := traverseType(v, &p.ParamType); err != nil {
			return err
		}
	}
	if block != nil {
		if err := traverseBlock(v, m, *block); err != nil {
			return err
		}
	}
	if ret != nil {
		if err := traverseType(v, ret); err != nil {
			return err
		}
	}
	return nil
}

func traverseTypeParameters(v Visitor, tps []TypeParameter) error {
	for i := range tps {
		tp := &tps[i]
		if err := v.VisitIdentifier(&tp.Name); err != nil {
			return err
		}
		for j := range tp.Constraints {
			if err := traverseType(v, &tp.Constraints[j]); err != nil {
				return err
			}
		}
	}
	return nil
}

func traverseBlock(v Visitor, m *Map, b Block) error {
	for _, id := range b.Statements {
		stmt, err := m.ExpectStatement(id)
		if err != nil {
			return err
		}
		if err := traverseStmt(v, m, stmt); err != nil {
			return err
		}
	}
	return nil
}

func traverseStmt(v Visitor, m *Map, s *Statement) error {
	if err := v.VisitStmt(s); err != nil {
		return err
	}
	switch k := s.Kind.(type) {
	case VariableStmt:
		if err := v.VisitIdentifier(&k.Name); err != nil {
			return err
		}
		if k.DeclaredType != nil {
			if err := traverseType(v, k.DeclaredType); err != nil {
				return err
			}
		}
		if k.Initializer != nil {
			return traverseExprByID(v, m, *k.Initializer)
		}
		return nil
	case BreakStmt, ContinueStmt:
		return nil
	case FinalStmt:
		if k.Value != nil {
			return traverseExprByID(v, m, *k.Value)
		}
		return nil
	case ReturnStmt:
		if k.Value != nil {
			return traverseExprByID(v, m, *k.Value)
		}
		return nil
	case InfiniteLoopStmt:
		return traverseBlock(v, m, k.Block)
	case IteratorLoopStmt:
		if err := traverseExprByID(v, m, k.Collection); err != nil {
			return err
		}
		return traverseBlock(v, m, k.Block)
	case ExpressionStmt:
		return traverseExprByID(v, m, k.Expr)
	}
	return nil
}

func traverseExprByID(v Visitor, m *Map, id NodeId) error {
	e, err := m.ExpectExpression(id)
	if err != nil {
		return err
	}
	return traverseExpr(v, m, e)
}

func traverseExpr(v Visitor, m *Map, e *Expression) error {
	if err := v.VisitExpr(e); err != nil {
		return err
	}
	switch k := e.Kind.(type) {
	case AssignmentExpr:
		if err := traverseExprByID(v, m, k.Target); err != nil {
			return err
		}
		return traverseExprByID(v, m, k.Value)
	case CastExpr:
		if err := traverseExprByID(v, m, k.Source); err != nil {
			return err
		}
		return traverseType(v, &k.Target)
	case ConstructExpr:
		if err := traversePath(v, &k.Path); err != nil {
			return err
		}
		for _, f := range k.Fields {
			if err := v.VisitIdentifier(&f.Name); err != nil {
				return err
			}
			if err := traverseExprByID(v, m, f.Value); err != nil {
				return err
			}
		}
		return nil
	case StaticCallExpr:
		if err := traversePath(v, &k.Name); err != nil {
			return err
		}
		return traverseExprList(v, m, k.Arguments)
	case InstanceCallExpr:
		if err := traverseExprByID(v, m, k.Callee); err != nil {
			return err
		}
		for _, ta := range k.Name.TypeArguments {
			if err := traverseType(v, &ta); err != nil {
				return err
			}
		}
		return traverseExprList(v, m, k.Arguments)
	case IntrinsicCallExpr:
		return traverseExprList(v, m, k.Arguments)
	case IfExpr:
		for _, c := range k.Cases {
			if c.Condition != nil {
				if err := traverseExprByID(v, m, *c.Condition); err != nil {
					return err
				}
			}
			if err := traverseBlock(v, m, c.Block); err != nil {
				return err
			}
		}
		return nil
	case IsExpr:
		if err := traverseExprByID(v, m, k.Target); err != nil {
			return err
		}
		return traversePattern(v, m, &k.Pattern)
	case MemberExpr:
		if err := traverseExprByID(v, m, k.Callee); err != nil {
			return err
		}
		return v.VisitIdentifier(&k.Name)
	case ScopeExpr:
		for _, id := range k.Body {
			stmt, err := m.ExpectStatement(id)
			if err != nil {
				return err
			}
			if err := traverseStmt(v, m, stmt); err != nil {
				return err
			}
		}
		return nil
	case SwitchExpr:
		if err := traverseExprByID(v, m, k.Operand); err != nil {
			return err
		}
		for _, c := range k.Cases {
			if err := traversePattern(v, m, &c.Pattern); err != nil {
				return err
			}
			if err := traverseExprByID(v, m, c.Branch); err != nil {
				return err
			}
		}
		return nil
	case VariantExpr:
		if err := traversePath(v, &k.Name); err != nil {
			return err
		}
		return traverseExprList(v, m, k.Arguments)
	case LiteralExpr, VariableExpr:
		return nil
	}
	return nil
}

func traverseExprList(v Visitor, m *Map, ids []NodeId) error {
	for _, id := range ids {
		if err := traverseExprByID(v, m, id); err != nil {
			return err
		}
	}
	return nil
}

func traversePattern(v Visitor, m *Map, p *Pattern) error {
	if err := v.VisitPattern(p); err != nil {
		return err
	}
	switch k := p.Kind.(type) {
	case IdentifierPattern:
		return v.VisitIdentifier(&k.Name)
	case LiteralPattern:
		return traverseExprByID(v, m, k.Literal)
	case VariantPattern:
		if err := traversePath(v, &k.Name); err != nil {
			return err
		}
		for _, sub := range k.Fields {
			if err := traversePattern(v, m, sub); err != nil {
				return err
			}
		}
		return nil
	case WildcardPattern:
		return nil
	}
	return nil
}

func traverseType(v Visitor, t *Type) error {
	if err := v.VisitType(t); err != nil {
		return err
	}
	return traversePath(v, &t.Name)
}

func traversePath(v Visitor, p *Path) error {
	if err := v.VisitPath(p); err != nil {
		return err
	}
	for _, seg := range p.Segments() {
		switch s := seg.(type) {
		case NamespaceSegment:
			if err := v.VisitIdentifier(&s.Name); err != nil {
				return err
			}
		case TypeSegment:
			if err := v.VisitIdentifier(&s.Name); err != nil {
				return err
			}
			for i := range s.TypeArguments {
				if err := traverseType(v, &s.TypeArguments[i]); err != nil {
					return err
				}
			}
		case CallableSegment:
			if err := v.VisitIdentifier(&s.Name); err != nil {
				return err
			}
			for i := range s.TypeArguments {
				if err := traverseType(v, &s.TypeArguments[i]); err != nil {
					return err
				}
			}
		case VariantSegment:
			if err := v.VisitIdentifier(&s.Name); err != nil {
				return err
			}
		}
	}
	return nil
}
