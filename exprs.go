package ralph

import "math/big"

// ConstExpr is a literal value (§3, §4.3).
type ConstExpr struct {
	Value Val
	memo  typeMemo
}

func (e *ConstExpr) TypeOf(s *State) ([]Type, error) {
	return e.memo.get(func() ([]Type, error) {
		return []Type{FromVal(e.Value)}, nil
	})
}

func (e *ConstExpr) Emit(s *State) ([]Instr, error) {
	return []Instr{constInstr(e.Value)}, nil
}

// VariableExpr references a bound identifier (local, field, template,
// or constant), resolved through the scope chain (§3, §4.2).
type VariableExpr struct {
	Ident Identifier
	memo  typeMemo
}

func (e *VariableExpr) TypeOf(s *State) ([]Type, error) {
	return e.memo.get(func() ([]Type, error) {
		t, err := s.GetType(e.Ident)
		if err != nil {
			return nil, err
		}
		return []Type{t}, nil
	})
}

func (e *VariableExpr) Emit(s *State) ([]Instr, error) {
	return s.GenLoadCode(e.Ident)
}

// EnumFieldSelector references (enumId, field) into an enum's member
// list (§3, §4.3).
type EnumFieldSelector struct {
	EnumId Identifier
	Field  Identifier
	memo   typeMemo
}

func (e *EnumFieldSelector) lookup(s *State) (EnumField, error) {
	def, ok := s.Enums[e.EnumId]
	if !ok {
		return EnumField{}, ErrUndefinedIdentifier(e.EnumId)
	}
	f, ok := def.field(e.Field)
	if !ok {
		return EnumField{}, ErrUndefinedIdentifier(e.Field)
	}
	return f, nil
}

func (e *EnumFieldSelector) TypeOf(s *State) ([]Type, error) {
	return e.memo.get(func() ([]Type, error) {
		f, err := e.lookup(s)
		if err != nil {
			return nil, err
		}
		return []Type{FromVal(f.Value)}, nil
	})
}

func (e *EnumFieldSelector) Emit(s *State) ([]Instr, error) {
	f, err := e.lookup(s)
	if err != nil {
		return nil, err
	}
	return []Instr{constInstr(f.Value)}, nil
}

// CreateArray is an array literal: non-empty, homogeneous, scalar-typed
// elements (§3, §4.3 "Array literal requires non-empty, homogeneous,
// scalar-typed elements").
type CreateArray struct {
	Elems []Expr
	memo  typeMemo
}

func (e *CreateArray) TypeOf(s *State) ([]Type, error) {
	return e.memo.get(func() ([]Type, error) {
		if len(e.Elems) == 0 {
			return nil, NewError(KindType, "array literal must not be empty")
		}
		first, err := e.Elems[0].TypeOf(s)
		if err != nil {
			return nil, err
		}
		if len(first) != 1 || !first[0].IsScalar() {
			return nil, NewError(KindType, "array literal elements must be scalar-typed")
		}
		elemType := first[0]
		for _, el := range e.Elems[1:] {
			ts, err := el.TypeOf(s)
			if err != nil {
				return nil, err
			}
			if len(ts) != 1 || !ts[0].Equal(elemType) {
				return nil, NewError(KindType, "array literal elements must be homogeneous")
			}
		}
		return []Type{FixedArray(elemType, len(e.Elems))}, nil
	})
}

func (e *CreateArray) Emit(s *State) ([]Instr, error) {
	return emitAll(s, e.Elems)
}

// ArrayElement indexes into an array-typed expression via a chain of
// indexes, each of which must be a U256 ConstExpr.
type ArrayElement struct {
	Array   Expr
	Indexes []Expr
	memo    typeMemo
}

func (e *ArrayElement) constIndexes(s *State) ([]int, error) {
	out := make([]int, len(e.Indexes))
	for i, ix := range e.Indexes {
		ts, err := ix.TypeOf(s)
		if err != nil {
			return nil, err
		}
		if len(ts) != 1 || ts[0].Tag != TU256 {
			return nil, NewError(KindType, "array index must be U256")
		}
		c, ok := ix.(*ConstExpr)
		if !ok {
			return nil, NewError(KindType, "array index must be a compile-time constant")
		}
		out[i] = int(c.Value.Int.Int64())
	}
	return out, nil
}

func (e *ArrayElement) TypeOf(s *State) ([]Type, error) {
	return e.memo.get(func() ([]Type, error) {
		base, err := e.Array.TypeOf(s)
		if err != nil {
			return nil, err
		}
		if len(base) != 1 || base[0].Tag != TFixedArray {
			return nil, NewError(KindType, "indexed expression is not an array")
		}
		idx, err := e.constIndexes(s)
		if err != nil {
			return nil, err
		}
		elem, err := GetArrayElementType(base[0], idx)
		if err != nil {
			return nil, err
		}
		return []Type{elem}, nil
	})
}

func (e *ArrayElement) Emit(s *State) ([]Instr, error) {
	ref, preamble, err := s.GetOrCreateArrayRef(e.Array)
	if err != nil {
		return nil, err
	}
	idx, err := e.constIndexes(s)
	if err != nil {
		return nil, err
	}
	elemType, err := GetArrayElementType(ref.Type, idx)
	if err != nil {
		return nil, err
	}
	offset := flatSlotOffset(ref.Type, idx)
	width := flattenLength(elemType)
	out := append([]Instr{}, preamble...)
	for i := 0; i < width; i++ {
		out = append(out, loadSlot(ref.Kind, ref.Index+offset+i, s))
	}
	return out, nil
}

func loadSlot(kind VarKind, index int, s *State) Instr {
	switch kind {
	case VarLocal:
		return Instr{Op: OpLoadLocal, Index: index}
	case VarField:
		return Instr{Op: OpLoadField, Index: index}
	case VarTemplate:
		return Instr{Op: OpLoadTemplate, Index: index}
	}
	panic("array storage must be Local, Field, or Template")
}

func storeSlot(kind VarKind, index int) Instr {
	switch kind {
	case VarLocal:
		return Instr{Op: OpStoreLocal, Index: index}
	case VarField:
		return Instr{Op: OpStoreField, Index: index}
	}
	panic("array assignment target must be Local or Field")
}

// UnaryOpExpr applies a prefix operator (§3, §6).
type UnaryOpExpr struct {
	Op      UnaryOperator
	Operand Expr
	memo    typeMemo
}

func (e *UnaryOpExpr) TypeOf(s *State) ([]Type, error) {
	return e.memo.get(func() ([]Type, error) {
		ts, err := e.Operand.TypeOf(s)
		if err != nil {
			return nil, err
		}
		if len(ts) != 1 {
			return nil, NewError(KindType, "operand of %s must be a single value", e.Op)
		}
		t, _, err := unaryResultType(e.Op, ts[0])
		if err != nil {
			return nil, err
		}
		return []Type{t}, nil
	})
}

func (e *UnaryOpExpr) Emit(s *State) ([]Instr, error) {
	ts, err := e.Operand.TypeOf(s)
	if err != nil {
		return nil, err
	}
	_, op, err := unaryResultType(e.Op, ts[0])
	if err != nil {
		return nil, err
	}
	operand, err := e.Operand.Emit(s)
	if err != nil {
		return nil, err
	}
	return append(operand, Instr{Op: op}), nil
}

// BinOpExpr applies an infix operator (§3, §6). A constant-folds the
// product of two same-type integer literals at compile time via
// bigfft-accelerated big.Int multiply instead of emitting the
// multiplication (SPEC_FULL.md §1 "domain stack" constant-folding note).
type BinOpExpr struct {
	Op          BinaryOperator
	Left, Right Expr
	memo        typeMemo
}

func (e *BinOpExpr) operandTypes(s *State) (Type, Type, error) {
	lt, err := e.Left.TypeOf(s)
	if err != nil {
		return Type{}, Type{}, err
	}
	rt, err := e.Right.TypeOf(s)
	if err != nil {
		return Type{}, Type{}, err
	}
	if len(lt) != 1 || len(rt) != 1 {
		return Type{}, Type{}, NewError(KindType, "operands of %s must be single values", e.Op)
	}
	return lt[0], rt[0], nil
}

func (e *BinOpExpr) TypeOf(s *State) ([]Type, error) {
	return e.memo.get(func() ([]Type, error) {
		lt, rt, err := e.operandTypes(s)
		if err != nil {
			return nil, err
		}
		t, _, err := binaryResultType(e.Op, lt, rt)
		if err != nil {
			return nil, err
		}
		return []Type{t}, nil
	})
}

func (e *BinOpExpr) foldableConstMul() (Val, Val, bool) {
	if e.Op != OpMul {
		return Val{}, Val{}, false
	}
	lc, lok := e.Left.(*ConstExpr)
	rc, rok := e.Right.(*ConstExpr)
	if !lok || !rok || lc.Value.Tag != rc.Value.Tag {
		return Val{}, Val{}, false
	}
	if lc.Value.Tag != TI256 && lc.Value.Tag != TU256 {
		return Val{}, Val{}, false
	}
	return lc.Value, rc.Value, true
}

func (e *BinOpExpr) Emit(s *State) ([]Instr, error) {
	if l, r, ok := e.foldableConstMul(); ok {
		folded, err := foldMul(l, r)
		if err != nil {
			return nil, err
		}
		return []Instr{constInstr(folded)}, nil
	}
	lt, rt, err := e.operandTypes(s)
	if err != nil {
		return nil, err
	}
	_, op, err := binaryResultType(e.Op, lt, rt)
	if err != nil {
		return nil, err
	}
	left, err := e.Left.Emit(s)
	if err != nil {
		return nil, err
	}
	right, err := e.Right.Emit(s)
	if err != nil {
		return nil, err
	}
	out := append(append([]Instr{}, left...), right...)
	out = append(out, Instr{Op: op})
	if e.Op == OpNeqOp && (lt.Tag == TByteVec || lt.Tag == TAddress) {
		out = append(out, Instr{Op: OpBoolNot})
	}
	return out, nil
}

// ContractConv reinterprets a ByteVec address as a named contract's id
// — a type-level conversion only, no extra instruction (§3, §4.3).
type ContractConv struct {
	Target  TypeId
	Address Expr
	memo    typeMemo
}

func (e *ContractConv) TypeOf(s *State) ([]Type, error) {
	return e.memo.get(func() ([]Type, error) {
		ts, err := e.Address.TypeOf(s)
		if err != nil {
			return nil, err
		}
		if len(ts) != 1 || ts[0].Tag != TByteVec {
			return nil, NewError(KindType, "contract conversion requires a ByteVec address")
		}
		info, ok := s.Contracts[e.Target]
		if !ok {
			return nil, ErrUnknownContractType(e.Target)
		}
		if !info.isInstantiable() {
			return nil, ErrNonInstantiableContract(e.Target)
		}
		return []Type{Contract(e.Target)}, nil
	})
}

func (e *ContractConv) Emit(s *State) ([]Instr, error) {
	return e.Address.Emit(s)
}

// CallExpr invokes a function visible in the current unit (including
// built-ins) without an object receiver (§3, §4.3, §4.5 "Calls").
type CallExpr struct {
	Func    FuncId
	Approve *ApproveAssets
	Args    []Expr
	memo    typeMemo
}

func (e *CallExpr) resolve(s *State) (*FunctionDef, error) {
	if fn, ok := lookupBuiltin(e.Func.Name); ok {
		return fn, nil
	}
	fn, ok := s.Functions[ContractFuncId{Contract: s.CurrentContract, Func: e.Func}]
	if !ok {
		return nil, ErrUndefinedIdentifier(e.Func.Name)
	}
	return fn, nil
}

func (e *CallExpr) TypeOf(s *State) ([]Type, error) {
	return e.memo.get(func() ([]Type, error) {
		fn, err := e.resolve(s)
		if err != nil {
			return nil, err
		}
		if err := checkApproveAssets(s, e.Approve, fn); err != nil {
			return nil, err
		}
		argTypes, err := flattenTypeOf(s, e.Args)
		if err != nil {
			return nil, err
		}
		want := make([]Type, len(fn.Args))
		for i, a := range fn.Args {
			want[i] = a.Type
		}
		if !typesEqual(want, argTypes) {
			return nil, NewError(KindType, "argument type mismatch calling %s", e.Func)
		}
		return fn.ReturnTypes, nil
	})
}

func (e *CallExpr) Emit(s *State) ([]Instr, error) {
	fn, err := e.resolve(s)
	if err != nil {
		return nil, err
	}
	approve, err := emitApproveAssets(s, e.Approve)
	if err != nil {
		return nil, err
	}

	if e.Func.BuiltIn {
		if spec, ok := specializableBuiltins[e.Func.Name]; ok && isALPHTokenId(e.Args[spec.tokenIdArgIndex]) {
			filtered := make([]Expr, 0, len(e.Args)-1)
			for i, a := range e.Args {
				if i != spec.tokenIdArgIndex {
					filtered = append(filtered, a)
				}
			}
			args, err := emitAll(s, filtered)
			if err != nil {
				return nil, err
			}
			return append(append(approve, args...), Instr{Op: spec.alphOp}), nil
		}
	}

	args, err := emitAll(s, e.Args)
	if err != nil {
		return nil, err
	}
	out := append(approve, args...)
	if fn.IsVariadic {
		out = append(out, Instr{Op: OpU256Const, Index: len(e.Args)})
	}
	if !e.Func.BuiltIn {
		if s.currentFuncAttrs != nil {
			s.AddInternalCall(s.currentFuncAttrs.Id.Name, e.Func.Name)
		}
		return append(out, Instr{Op: OpCallLocal, FuncName: e.Func.Name}), nil
	}
	return append(out, builtinInstr(e.Func.Name)), nil
}

// ContractStaticCallExpr invokes a named contract's static function
// without an object receiver on the stack (§3, §4.3).
type ContractStaticCallExpr struct {
	Contract TypeId
	Func     FuncId
	Approve  *ApproveAssets
	Args     []Expr
	memo     typeMemo
}

func (e *ContractStaticCallExpr) resolve(s *State) (*FunctionDef, error) {
	info, ok := s.Contracts[e.Contract]
	if !ok {
		return nil, ErrUnknownContractType(e.Contract)
	}
	fn, ok := info.Functions[e.Func.Name]
	if !ok {
		return nil, ErrUndefinedIdentifier(e.Func.Name)
	}
	if !fn.IsStatic {
		return nil, ErrStaticMismatch(e.Func, true)
	}
	return fn, nil
}

func (e *ContractStaticCallExpr) TypeOf(s *State) ([]Type, error) {
	return e.memo.get(func() ([]Type, error) {
		fn, err := e.resolve(s)
		if err != nil {
			return nil, err
		}
		if err := checkApproveAssets(s, e.Approve, fn); err != nil {
			return nil, err
		}
		argTypes, err := flattenTypeOf(s, e.Args)
		if err != nil {
			return nil, err
		}
		want := make([]Type, len(fn.Args))
		for i, a := range fn.Args {
			want[i] = a.Type
		}
		if !typesEqual(want, argTypes) {
			return nil, NewError(KindType, "argument type mismatch calling %s", e.Func)
		}
		return fn.ReturnTypes, nil
	})
}

func (e *ContractStaticCallExpr) Emit(s *State) ([]Instr, error) {
	fn, err := e.resolve(s)
	if err != nil {
		return nil, err
	}
	approve, err := emitApproveAssets(s, e.Approve)
	if err != nil {
		return nil, err
	}
	args, err := emitAll(s, e.Args)
	if err != nil {
		return nil, err
	}
	s.AddExternalCall(e.Contract, e.Func.Name)
	out := append(approve, args...)
	out = append(out, Instr{Op: OpU256Const, Index: len(e.Args)})
	out = append(out, Instr{Op: OpU256Const, Index: len(fn.ReturnTypes)})
	out = append(out, Instr{Op: OpConstByteVec, Val: ValByteVec([]byte(e.Contract))})
	out = append(out, Instr{Op: OpCallExternal, TypeId: e.Contract, FuncName: e.Func.Name})
	return out, nil
}

// ContractCallExpr invokes a function on an object-typed expression
// (§3, §4.3, §4.5 "external contract call").
type ContractCallExpr struct {
	Object  Expr
	Func    Identifier
	Approve *ApproveAssets
	Args    []Expr
	memo    typeMemo
}

func (e *ContractCallExpr) resolve(s *State) (TypeId, *ContractInfo, *FunctionDef, error) {
	ts, err := e.Object.TypeOf(s)
	if err != nil {
		return "", nil, nil, err
	}
	if len(ts) != 1 || ts[0].Tag != TContract {
		return "", nil, nil, NewError(KindType, "contract call target must be a contract-typed expression")
	}
	id := ts[0].Contract
	info, ok := s.Contracts[id]
	if !ok {
		return "", nil, nil, ErrUnknownContractType(id)
	}
	fn, ok := info.Functions[e.Func]
	if !ok {
		return "", nil, nil, ErrUndefinedIdentifier(e.Func)
	}
	if fn.IsStatic {
		return "", nil, nil, ErrStaticMismatch(NewFuncId(e.Func), false)
	}
	return id, info, fn, nil
}

func (e *ContractCallExpr) TypeOf(s *State) ([]Type, error) {
	return e.memo.get(func() ([]Type, error) {
		_, _, fn, err := e.resolve(s)
		if err != nil {
			return nil, err
		}
		if err := checkApproveAssets(s, e.Approve, fn); err != nil {
			return nil, err
		}
		argTypes, err := flattenTypeOf(s, e.Args)
		if err != nil {
			return nil, err
		}
		want := make([]Type, len(fn.Args))
		for i, a := range fn.Args {
			want[i] = a.Type
		}
		if !typesEqual(want, argTypes) {
			return nil, NewError(KindType, "argument type mismatch calling %s", e.Func)
		}
		return fn.ReturnTypes, nil
	})
}

func (e *ContractCallExpr) Emit(s *State) ([]Instr, error) {
	id, info, fn, err := e.resolve(s)
	if err != nil {
		return nil, err
	}
	approve, err := emitApproveAssets(s, e.Approve)
	if err != nil {
		return nil, err
	}
	args, err := emitAll(s, e.Args)
	if err != nil {
		return nil, err
	}
	obj, err := e.Object.Emit(s)
	if err != nil {
		return nil, err
	}
	s.AddExternalCall(id, e.Func)
	if info.Kind == KindInterface {
		if s.currentFuncAttrs != nil {
			s.AddInterfaceFuncCall(s.currentFuncAttrs.Id.Name)
		}
	}
	out := append(approve, args...)
	out = append(out, Instr{Op: OpU256Const, Index: len(e.Args)})
	out = append(out, Instr{Op: OpU256Const, Index: len(fn.ReturnTypes)})
	out = append(out, obj...)
	out = append(out, Instr{Op: OpCallExternal, TypeId: id, FuncName: e.Func})
	return out, nil
}

// ExprBranch is one `cond -> body` arm of an IfElseExpr.
type ExprBranch struct {
	Cond Expr
	Body Expr
}

// IfElseExpr is the expression form of if/else: every branch's body and
// the mandatory else must agree on type (§3, §4.3).
type IfElseExpr struct {
	Branches []ExprBranch
	Else     Expr
	memo     typeMemo
}

func (e *IfElseExpr) TypeOf(s *State) ([]Type, error) {
	return e.memo.get(func() ([]Type, error) {
		if e.Else == nil {
			return nil, NewError(KindType, "if-else expression requires an else branch")
		}
		var result []Type
		for _, b := range e.Branches {
			ct, err := b.Cond.TypeOf(s)
			if err != nil {
				return nil, err
			}
			if len(ct) != 1 || ct[0].Tag != TBool {
				return nil, ErrConditionNotBool(ct[0])
			}
			bt, err := b.Body.TypeOf(s)
			if err != nil {
				return nil, err
			}
			if result == nil {
				result = bt
			} else if !typesEqual(result, bt) {
				return nil, NewError(KindType, "if-else branches must agree on type")
			}
		}
		et, err := e.Else.TypeOf(s)
		if err != nil {
			return nil, err
		}
		if result != nil && !typesEqual(result, et) {
			return nil, NewError(KindType, "if-else branches must agree on type")
		}
		return et, nil
	})
}

func (e *IfElseExpr) Emit(s *State) ([]Instr, error) {
	branches := make([]layoutBranch, len(e.Branches))
	for i, b := range e.Branches {
		cond, err := b.Cond.Emit(s)
		if err != nil {
			return nil, err
		}
		body, err := b.Body.Emit(s)
		if err != nil {
			return nil, err
		}
		branches[i] = layoutBranch{cond: cond, body: body}
	}
	elseBody, err := e.Else.Emit(s)
	if err != nil {
		return nil, err
	}
	return layoutIfElse(branches, elseBody)
}

// ParenExpr is a transparent grouping node: it neither memoizes nor
// adds instructions of its own.
type ParenExpr struct {
	Inner Expr
}

func (e *ParenExpr) TypeOf(s *State) ([]Type, error) { return e.Inner.TypeOf(s) }
func (e *ParenExpr) Emit(s *State) ([]Instr, error)  { return e.Inner.Emit(s) }

// ALPHTokenIdExpr is the ByteVec sentinel identifying the native token
// (§3, §4.5 "native-token specialization").
type ALPHTokenIdExpr struct{}

func (e *ALPHTokenIdExpr) TypeOf(s *State) ([]Type, error) { return []Type{ByteVec()}, nil }
func (e *ALPHTokenIdExpr) Emit(s *State) ([]Instr, error) {
	return []Instr{{Op: OpALPHTokenId}}, nil
}

// intLiteralU256 is a small helper the tests use to build ConstExpr
// U256 nodes without repeating the ValU256 plumbing.
func intLiteralU256(n int64) *ConstExpr {
	v, err := ValU256(big.NewInt(n))
	if err != nil {
		panic(err)
	}
	return &ConstExpr{Value: v}
}
