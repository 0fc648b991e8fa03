package ralph

// VarDecl is one binding slot inside a VarDefStmt: either a named,
// possibly-mutable local or an anonymous slot that only pops its value
// (§4.3 "VarDef").
type VarDecl struct {
	Named     bool
	Ident     Identifier
	IsMutable bool
	IsUnused  bool
}

// VarDefStmt declares one or more locals from the flattened type
// sequence of its right-hand side: len(Decls) must equal len(rhs-types)
// and named slots are stored right-to-left (§4.3).
type VarDefStmt struct {
	Decls []VarDecl
	Rhs   []Expr
}

func (st *VarDefStmt) Check(s *State) error {
	rhsTypes, err := flattenTypeOf(s, st.Rhs)
	if err != nil {
		return err
	}
	if len(st.Decls) != len(rhsTypes) {
		return NewError(KindType, "variable declaration expects %d values, got %d", len(st.Decls), len(rhsTypes))
	}
	for i, d := range st.Decls {
		if !d.Named {
			continue
		}
		if _, err := s.AddLocalVariable(d.Ident, rhsTypes[i], d.IsMutable, d.IsUnused); err != nil {
			return err
		}
	}
	return nil
}

func (st *VarDefStmt) Emit(s *State) ([]Instr, error) {
	rhsTypes, err := flattenTypeOf(s, st.Rhs)
	if err != nil {
		return nil, err
	}
	out, err := emitAll(s, st.Rhs)
	if err != nil {
		return nil, err
	}
	// the locals bound by Check lived in that pass's scope frames; bind
	// them again here so codegen has their slots
	entries := make([]*VariableEntry, len(st.Decls))
	for i, d := range st.Decls {
		if d.Named {
			if entries[i], err = s.AddLocalVariable(d.Ident, rhsTypes[i], d.IsMutable, d.IsUnused); err != nil {
				return nil, err
			}
		}
	}
	for i := len(st.Decls) - 1; i >= 0; i-- {
		d := st.Decls[i]
		if !d.Named {
			for w := 0; w < flattenLength(rhsTypes[i]); w++ {
				out = append(out, Instr{Op: OpPop})
			}
			continue
		}
		for w := flattenLength(rhsTypes[i]) - 1; w >= 0; w-- {
			out = append(out, storeSlot(VarLocal, entries[i].Index+w))
		}
	}
	return out, nil
}

// AssignTarget is the tagged-variant assignment left-hand side:
// VariableTarget or ArrayElementTarget (§3, §4.3).
type AssignTarget interface {
	typeOf(s *State) (Type, error)
	emitStore(s *State) ([]Instr, error)
}

// VariableTarget assigns a bound identifier directly.
type VariableTarget struct {
	Ident Identifier
}

func (t *VariableTarget) typeOf(s *State) (Type, error) {
	v, err := s.GetVariable(t.Ident, true)
	if err != nil {
		return Type{}, err
	}
	return v.Type, nil
}

func (t *VariableTarget) emitStore(s *State) ([]Instr, error) {
	return s.GenStoreCode(t.Ident)
}

// ArrayElementTarget assigns a single element of an array-typed
// variable, indexed by a chain of compile-time constants.
type ArrayElementTarget struct {
	Array   Expr
	Indexes []Expr
}

func (t *ArrayElementTarget) constIndexes(s *State) ([]int, error) {
	ae := &ArrayElement{Array: t.Array, Indexes: t.Indexes}
	return ae.constIndexes(s)
}

func (t *ArrayElementTarget) typeOf(s *State) (Type, error) {
	ts, err := t.Array.TypeOf(s)
	if err != nil {
		return Type{}, err
	}
	if len(ts) != 1 || ts[0].Tag != TFixedArray {
		return Type{}, NewError(KindType, "assignment target is not an array element")
	}
	idx, err := t.constIndexes(s)
	if err != nil {
		return Type{}, err
	}
	return GetArrayElementType(ts[0], idx)
}

func (t *ArrayElementTarget) emitStore(s *State) ([]Instr, error) {
	v, ok := t.Array.(*VariableExpr)
	if !ok {
		return nil, NewError(KindType, "array assignment target must reference a variable directly")
	}
	ref, err := s.GetArrayRef(v.Ident)
	if err != nil {
		return nil, err
	}
	if _, err := s.GetVariable(v.Ident, true); err != nil {
		return nil, err
	}
	idx, err := t.constIndexes(s)
	if err != nil {
		return nil, err
	}
	elemType, err := GetArrayElementType(ref.Type, idx)
	if err != nil {
		return nil, err
	}
	offset := flatSlotOffset(ref.Type, idx)
	width := flattenLength(elemType)
	out := make([]Instr, 0, width)
	for i := width - 1; i >= 0; i-- {
		out = append(out, storeSlot(ref.Kind, ref.Index+offset+i))
	}
	return out, nil
}

// AssignStmt assigns one or more right-hand expressions into one or
// more targets, matched positionally by flattened type (§3, §4.3).
type AssignStmt struct {
	Targets []AssignTarget
	Rhs     []Expr
}

func (st *AssignStmt) Check(s *State) error {
	targetTypes := make([]Type, len(st.Targets))
	for i, t := range st.Targets {
		ty, err := t.typeOf(s)
		if err != nil {
			return err
		}
		targetTypes[i] = ty
	}
	rhsTypes, err := flattenTypeOf(s, st.Rhs)
	if err != nil {
		return err
	}
	if !typesEqual(targetTypes, rhsTypes) {
		return ErrAssignTypeMismatch(targetTypes, rhsTypes)
	}
	return nil
}

func (st *AssignStmt) Emit(s *State) ([]Instr, error) {
	out, err := emitAll(s, st.Rhs)
	if err != nil {
		return nil, err
	}
	for i := len(st.Targets) - 1; i >= 0; i-- {
		store, err := st.Targets[i].emitStore(s)
		if err != nil {
			return nil, err
		}
		out = append(out, store...)
	}
	return out, nil
}

// ExprStmt wraps a value-producing expression used for its side
// effects alone (a bare call statement): its result is type-checked
// then discarded (popped) in full (§4.3).
type ExprStmt struct {
	Expr Expr
}

func (st *ExprStmt) Check(s *State) error {
	_, err := st.Expr.TypeOf(s)
	return err
}

func (st *ExprStmt) Emit(s *State) ([]Instr, error) {
	ts, err := st.Expr.TypeOf(s)
	if err != nil {
		return nil, err
	}
	out, err := st.Expr.Emit(s)
	if err != nil {
		return nil, err
	}
	for i := 0; i < flattenLengthAll(ts); i++ {
		out = append(out, Instr{Op: OpPop})
	}
	return out, nil
}

// StmtBranch is one `cond { body }` arm of an IfElseStatement.
type StmtBranch struct {
	Cond Expr
	Body []Stmt
}

// IfElseStatement is the statement form of if/else: the else clause is
// optional (§3, §4.3).
type IfElseStatement struct {
	Branches []StmtBranch
	Else     []Stmt
}

func (st *IfElseStatement) Check(s *State) error {
	for _, b := range st.Branches {
		ct, err := b.Cond.TypeOf(s)
		if err != nil {
			return err
		}
		if len(ct) != 1 || ct[0].Tag != TBool {
			return ErrConditionNotBool(ct[0])
		}
		s.EnterBlock()
		err = checkAll(s, b.Body)
		s.ExitBlock()
		if err != nil {
			return err
		}
	}
	if st.Else != nil {
		s.EnterBlock()
		err := checkAll(s, st.Else)
		s.ExitBlock()
		if err != nil {
			return err
		}
	}
	return nil
}

func (st *IfElseStatement) Emit(s *State) ([]Instr, error) {
	branches := make([]layoutBranch, len(st.Branches))
	for i, b := range st.Branches {
		cond, err := b.Cond.Emit(s)
		if err != nil {
			return nil, err
		}
		s.EnterBlock()
		body, err := emitAllStmts(s, b.Body)
		s.ExitBlock()
		if err != nil {
			return nil, err
		}
		branches[i] = layoutBranch{cond: cond, body: body}
	}
	var elseBody []Instr
	if st.Else != nil {
		s.EnterBlock()
		var err error
		elseBody, err = emitAllStmts(s, st.Else)
		s.ExitBlock()
		if err != nil {
			return nil, err
		}
	}
	return layoutIfElse(branches, elseBody)
}

// While is `while (cond) { body }` (§3, §4.3).
type While struct {
	Cond Expr
	Body []Stmt
}

func (st *While) Check(s *State) error {
	ct, err := st.Cond.TypeOf(s)
	if err != nil {
		return err
	}
	if len(ct) != 1 || ct[0].Tag != TBool {
		return ErrConditionNotBool(ct[0])
	}
	s.EnterBlock()
	err = checkAll(s, st.Body)
	s.ExitBlock()
	return err
}

func (st *While) Emit(s *State) ([]Instr, error) {
	cond, err := st.Cond.Emit(s)
	if err != nil {
		return nil, err
	}
	s.EnterBlock()
	body, err := emitAllStmts(s, st.Body)
	s.ExitBlock()
	if err != nil {
		return nil, err
	}
	return layoutWhile(cond, body)
}

// ForLoop is `for (init; cond; update) { body }`, with init's scope
// spanning condition, update, and body (§3, §4.3).
type ForLoop struct {
	Init   Stmt
	Cond   Expr
	Update Stmt
	Body   []Stmt
}

func (st *ForLoop) Check(s *State) error {
	s.EnterBlock()
	defer s.ExitBlock()
	if err := st.Init.Check(s); err != nil {
		return err
	}
	ct, err := st.Cond.TypeOf(s)
	if err != nil {
		return err
	}
	if len(ct) != 1 || ct[0].Tag != TBool {
		return ErrConditionNotBool(ct[0])
	}
	if err := checkAll(s, st.Body); err != nil {
		return err
	}
	return st.Update.Check(s)
}

func (st *ForLoop) Emit(s *State) ([]Instr, error) {
	s.EnterBlock()
	defer s.ExitBlock()
	init, err := st.Init.Emit(s)
	if err != nil {
		return nil, err
	}
	cond, err := st.Cond.Emit(s)
	if err != nil {
		return nil, err
	}
	body, err := emitAllStmts(s, st.Body)
	if err != nil {
		return nil, err
	}
	update, err := st.Update.Emit(s)
	if err != nil {
		return nil, err
	}
	return layoutFor(init, cond, body, update)
}

// ReturnStmt returns zero or more values, matched against the
// enclosing function's declared return types (§3, §4.3).
type ReturnStmt struct {
	Exprs []Expr
}

func (st *ReturnStmt) Check(s *State) error {
	types, err := flattenTypeOf(s, st.Exprs)
	if err != nil {
		return err
	}
	return s.CheckReturn(types)
}

func (st *ReturnStmt) Emit(s *State) ([]Instr, error) {
	out, err := emitAll(s, st.Exprs)
	if err != nil {
		return nil, err
	}
	return append(out, Instr{Op: OpReturn}), nil
}

// EmitEvent emits one declared event with scalar-typed, positionally
// matched arguments (§3, §4.3, §4.5 "Emit-event").
type EmitEvent struct {
	EventId Identifier
	Args    []Expr
}

func (st *EmitEvent) lookup(s *State) (*EventDef, error) {
	def, ok := s.Events[st.EventId]
	if !ok {
		return nil, ErrUndefinedIdentifier(st.EventId)
	}
	return def, nil
}

func (st *EmitEvent) Check(s *State) error {
	def, err := st.lookup(s)
	if err != nil {
		return err
	}
	if len(st.Args) != len(def.Fields) {
		return NewError(KindType, "event %s expects %d arguments, got %d", st.EventId, len(def.Fields), len(st.Args))
	}
	for i, a := range st.Args {
		ts, err := a.TypeOf(s)
		if err != nil {
			return err
		}
		if len(ts) != 1 || !ts[0].IsScalar() {
			return NewError(KindType, "event arguments must not be array-typed")
		}
		if !ts[0].Equal(def.Fields[i].Type) {
			return NewError(KindType, "event %s argument %d type mismatch", st.EventId, i)
		}
	}
	return nil
}

func (st *EmitEvent) Emit(s *State) ([]Instr, error) {
	def, err := st.lookup(s)
	if err != nil {
		return nil, err
	}
	out := []Instr{{Op: OpU256Const, Index: def.Index}}
	args, err := emitAll(s, st.Args)
	if err != nil {
		return nil, err
	}
	out = append(out, args...)
	out = append(out, Instr{Op: OpLogN, Index: len(st.Args)})
	return out, nil
}

// Debug is a string-interpolation trace statement, elided entirely
// (including its interpolated expressions' side effects and call-graph
// edges) unless the compilation enables debug output — the one
// optimization this core performs (§4.3, §9 open question a).
type Debug struct {
	Parts          []string
	Interpolations []Expr
}

func (st *Debug) Check(s *State) error {
	for _, e := range st.Interpolations {
		if _, err := e.TypeOf(s); err != nil {
			return err
		}
	}
	return nil
}

func (st *Debug) Emit(s *State) ([]Instr, error) {
	if !s.AllowDebug {
		return nil, nil
	}
	out, err := emitAll(s, st.Interpolations)
	if err != nil {
		return nil, err
	}
	out = append(out, Instr{Op: OpDebug, Index: len(st.Interpolations), Parts: st.Parts})
	return out, nil
}
