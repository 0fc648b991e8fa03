package ralph

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func panicCall() Stmt {
	return &ExprStmt{Expr: &CallExpr{Func: NewBuiltInFuncId("panic")}}
}

func TestSequenceAlwaysReturnsPlainReturn(t *testing.T) {
	body := []Stmt{&ReturnStmt{Exprs: []Expr{&ConstExpr{Value: ValBool(true)}}}}
	assert.True(t, sequenceAlwaysReturns(body))
}

func TestSequenceAlwaysReturnsPanicCall(t *testing.T) {
	assert.True(t, sequenceAlwaysReturns([]Stmt{panicCall()}))
}

func TestSequenceAlwaysReturnsExhaustiveIfElse(t *testing.T) {
	ifElse := &IfElseStatement{
		Branches: []StmtBranch{
			{Cond: &ConstExpr{Value: ValBool(true)}, Body: []Stmt{&ReturnStmt{}}},
		},
		Else: []Stmt{panicCall()},
	}
	assert.True(t, sequenceAlwaysReturns([]Stmt{ifElse}))
}

func TestSequenceAlwaysReturnsFalseWithoutElse(t *testing.T) {
	ifElse := &IfElseStatement{
		Branches: []StmtBranch{
			{Cond: &ConstExpr{Value: ValBool(true)}, Body: []Stmt{&ReturnStmt{}}},
		},
		Else: nil,
	}
	assert.False(t, sequenceAlwaysReturns([]Stmt{ifElse}), "missing else can always fall through")
}

func TestSequenceAlwaysReturnsFalseForBareLoop(t *testing.T) {
	loop := &While{Cond: &ConstExpr{Value: ValBool(true)}, Body: []Stmt{&ReturnStmt{}}}
	assert.False(t, sequenceAlwaysReturns([]Stmt{loop}), "a loop body returning is not provably exhaustive")
}

func TestCheckFunctionRejectsMissingReturn(t *testing.T) {
	s := NewState(DefaultCompilerOptions())
	fn := &FunctionDef{
		Id:          NewFuncId("f"),
		ReturnTypes: []Type{U256()},
		Body:        []Stmt{},
	}
	err := CheckFunction(s, fn)
	assert.Error(t, err)
}

func TestCheckFunctionAcceptsAbstract(t *testing.T) {
	s := NewState(DefaultCompilerOptions())
	fn := &FunctionDef{Id: NewFuncId("f"), ReturnTypes: []Type{U256()}}
	assert.NoError(t, CheckFunction(s, fn))
}
