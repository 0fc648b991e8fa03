package ralph

// Expr is the tagged-variant expression node (§4.3). Every variant
// implements type-of (memoized, pure aside from the memo cell) and emit
// (appends instructions producing its declared result, left to right).
type Expr interface {
	TypeOf(s *State) ([]Type, error)
	Emit(s *State) ([]Instr, error)
}

// Stmt is the tagged-variant statement node (§4.3): check plus emit, no
// value of its own.
type Stmt interface {
	Check(s *State) error
	Emit(s *State) ([]Instr, error)
}

// typeMemo is the write-once memo cell backing "each node's type is
// computed once and cached" (§4.3, §9 "interior mutability for memoized
// type fields can use a write-once cell").
type typeMemo struct {
	computed bool
	types    []Type
}

func (m *typeMemo) get(compute func() ([]Type, error)) ([]Type, error) {
	if m.computed {
		return m.types, nil
	}
	t, err := compute()
	if err != nil {
		return nil, err
	}
	m.computed = true
	m.types = t
	return t, nil
}

// flattenTypeOf type-ofs a list of expressions and concatenates their
// result tuples into one flat Seq<Type> — the "rhs-types" convention
// VarDef/Assign/ReturnStmt/EmitEvent all share (§4.3).
func flattenTypeOf(s *State, exprs []Expr) ([]Type, error) {
	var out []Type
	for _, e := range exprs {
		ts, err := e.TypeOf(s)
		if err != nil {
			return nil, err
		}
		out = append(out, ts...)
	}
	return out, nil
}

func emitAll(s *State, exprs []Expr) ([]Instr, error) {
	var out []Instr
	for _, e := range exprs {
		is, err := e.Emit(s)
		if err != nil {
			return nil, err
		}
		out = append(out, is...)
	}
	return out, nil
}

func checkAll(s *State, stmts []Stmt) error {
	for _, st := range stmts {
		if err := st.Check(s); err != nil {
			return err
		}
	}
	return nil
}

func emitAllStmts(s *State, stmts []Stmt) ([]Instr, error) {
	var out []Instr
	for _, st := range stmts {
		is, err := st.Emit(s)
		if err != nil {
			return nil, err
		}
		out = append(out, is...)
	}
	return out, nil
}

// ApproveEntry is one (token, amount) pair inside an approve-assets
// block (§4.4 "preapproved-assets attribute").
type ApproveEntry struct {
	Token  Expr
	Amount Expr
}

// ApproveAssets is the optional `{ address -> token: amount, ... }`
// block written at a call site. A nil *ApproveAssets means the call has
// no braces at all; a non-nil one with zero Entries means empty braces
// were written (the two are distinguished by the
// ApprovedAssetsNotAccepted / MissingBracesForApprovedAssets checks,
// §4.4).
type ApproveAssets struct {
	Address Expr
	Entries []ApproveEntry
}

func checkApproveAssets(s *State, approve *ApproveAssets, callee *FunctionDef) error {
	if approve == nil {
		if callee.UsePreapprovedAssets {
			return ErrMissingBracesForApprovedAssets(callee.Id)
		}
		return nil
	}
	if !callee.UsePreapprovedAssets {
		return ErrApprovedAssetsNotAccepted(callee.Id)
	}
	if _, err := approve.Address.TypeOf(s); err != nil {
		return err
	}
	for _, e := range approve.Entries {
		if _, err := e.Token.TypeOf(s); err != nil {
			return err
		}
		if _, err := e.Amount.TypeOf(s); err != nil {
			return err
		}
	}
	return nil
}

// emitApproveAssets lowers an approve-assets block to the per-entry
// Approve{Alph,Token} sequence (§4.5 "Approve-assets blocks"): the
// address expression is emitted exactly once, then duplicated with
// Dup (count-1) times so every entry consumes its own copy, instead of
// re-emitting the full address bytecode per entry. Specializes on the
// ALPHTokenId sentinel the same way transfer/remaining built-ins do.
func emitApproveAssets(s *State, approve *ApproveAssets) ([]Instr, error) {
	if approve == nil || len(approve.Entries) == 0 {
		return nil, nil
	}
	addr, err := approve.Address.Emit(s)
	if err != nil {
		return nil, err
	}
	out := append([]Instr{}, addr...)
	for i := 0; i < len(approve.Entries)-1; i++ {
		out = append(out, Instr{Op: OpDup})
	}
	for _, entry := range approve.Entries {
		if !isALPHTokenId(entry.Token) {
			tok, err := entry.Token.Emit(s)
			if err != nil {
				return nil, err
			}
			out = append(out, tok...)
		}
		amt, err := entry.Amount.Emit(s)
		if err != nil {
			return nil, err
		}
		out = append(out, amt...)
		if isALPHTokenId(entry.Token) {
			out = append(out, Instr{Op: OpApproveAlph})
			continue
		}
		out = append(out, Instr{Op: OpApproveToken})
	}
	return out, nil
}

func isALPHTokenId(e Expr) bool {
	_, ok := e.(*ALPHTokenIdExpr)
	return ok
}
