package ralph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateArrayRequiresHomogeneousScalarElements(t *testing.T) {
	s := NewState(DefaultCompilerOptions())

	mixed := &CreateArray{Elems: []Expr{intLiteralU256(1), &ConstExpr{Value: ValBool(true)}}}
	_, err := mixed.TypeOf(s)
	assert.Error(t, err, "mixed-type array literal must be rejected")

	empty := &CreateArray{}
	_, err = empty.TypeOf(s)
	assert.Error(t, err, "empty array literal must be rejected")

	ok := &CreateArray{Elems: []Expr{intLiteralU256(1), intLiteralU256(2), intLiteralU256(3)}}
	ts, err := ok.TypeOf(s)
	require.NoError(t, err)
	require.Len(t, ts, 1)
	assert.Equal(t, TFixedArray, ts[0].Tag)
	assert.Equal(t, 3, ts[0].Size)
}

func TestArrayElementRejectsNonConstantIndex(t *testing.T) {
	s := NewState(DefaultCompilerOptions())
	s.EnterFunction(&FunctionDef{Id: NewFuncId("f")})
	defer s.ExitFunction()

	_, err := s.AddLocalVariable("arr", FixedArray(U256(), 3), false, false)
	require.NoError(t, err)
	_, err = s.AddLocalVariable("i", U256(), false, false)
	require.NoError(t, err)

	elem := &ArrayElement{
		Array:   &VariableExpr{Ident: "arr"},
		Indexes: []Expr{&VariableExpr{Ident: "i"}},
	}
	_, err = elem.TypeOf(s)
	assert.Error(t, err, "non-constant array index must be rejected")
}

func TestArrayElementResolvesConstantIndexType(t *testing.T) {
	s := NewState(DefaultCompilerOptions())
	s.EnterFunction(&FunctionDef{Id: NewFuncId("f")})
	defer s.ExitFunction()

	_, err := s.AddLocalVariable("arr", FixedArray(U256(), 3), false, false)
	require.NoError(t, err)

	elem := &ArrayElement{Array: &VariableExpr{Ident: "arr"}, Indexes: []Expr{intLiteralU256(1)}}
	ts, err := elem.TypeOf(s)
	require.NoError(t, err)
	require.Len(t, ts, 1)
	assert.True(t, ts[0].Equal(U256()))
}

func TestIfElseExprRequiresElseAndAgreeingBranchTypes(t *testing.T) {
	s := NewState(DefaultCompilerOptions())

	noElse := &IfElseExpr{
		Branches: []ExprBranch{{Cond: &ConstExpr{Value: ValBool(true)}, Body: intLiteralU256(1)}},
	}
	_, err := noElse.TypeOf(s)
	assert.Error(t, err, "if-else expression without else must be rejected")

	mismatched := &IfElseExpr{
		Branches: []ExprBranch{{Cond: &ConstExpr{Value: ValBool(true)}, Body: intLiteralU256(1)}},
		Else:     &ConstExpr{Value: ValBool(false)},
	}
	_, err = mismatched.TypeOf(s)
	assert.Error(t, err, "branch/else type disagreement must be rejected")

	ok := &IfElseExpr{
		Branches: []ExprBranch{{Cond: &ConstExpr{Value: ValBool(true)}, Body: intLiteralU256(1)}},
		Else:     intLiteralU256(2),
	}
	ts, err := ok.TypeOf(s)
	require.NoError(t, err)
	assert.True(t, ts[0].Equal(U256()))
}

func TestBinOpExprFoldsConstantMultiply(t *testing.T) {
	s := NewState(DefaultCompilerOptions())
	e := &BinOpExpr{Op: OpMul, Left: intLiteralU256(6), Right: intLiteralU256(7)}

	instrs, err := e.Emit(s)
	require.NoError(t, err)
	require.Len(t, instrs, 1, "constant multiply should fold to a single const instruction")
	assert.Equal(t, int64(42), instrs[0].Val.Int.Int64())
}

func TestBinOpExprByteVecNeqSynthesizesBoolNot(t *testing.T) {
	s := NewState(DefaultCompilerOptions())
	e := &BinOpExpr{
		Op:    OpNeqOp,
		Left:  &ConstExpr{Value: ValByteVec([]byte("a"))},
		Right: &ConstExpr{Value: ValByteVec([]byte("b"))},
	}
	instrs, err := e.Emit(s)
	require.NoError(t, err)
	require.Len(t, instrs, 4)
	assert.Equal(t, OpByteVecEq, instrs[2].Op)
	assert.Equal(t, OpBoolNot, instrs[3].Op)
}

func TestContractConvRejectsUnknownOrNonInstantiableTarget(t *testing.T) {
	s := NewState(DefaultCompilerOptions())
	s.Contracts = map[TypeId]*ContractInfo{
		"Iface": {Kind: KindInterface},
	}
	addr := &ConstExpr{Value: ValByteVec([]byte("x"))}

	unknown := &ContractConv{Target: "Missing", Address: addr}
	_, err := unknown.TypeOf(s)
	assert.Error(t, err)

	notInstantiable := &ContractConv{Target: "Iface", Address: addr}
	_, err = notInstantiable.TypeOf(s)
	assert.Error(t, err)
}

func TestContractStaticCallExprRejectsNonStaticFunction(t *testing.T) {
	s := NewState(DefaultCompilerOptions())
	s.Contracts = map[TypeId]*ContractInfo{
		"Token": {
			Kind: KindContract,
			Functions: map[Identifier]*FunctionDef{
				"supply": {Id: NewFuncId("supply"), IsStatic: false},
			},
		},
	}
	call := &ContractStaticCallExpr{Contract: "Token", Func: NewFuncId("supply")}
	_, err := call.TypeOf(s)
	assert.Error(t, err)
}
