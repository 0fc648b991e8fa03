package ralph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateLocalVariableLifecycle(t *testing.T) {
	s := NewState(DefaultCompilerOptions())
	fn := &FunctionDef{Id: NewFuncId("f")}
	s.EnterFunction(fn)

	entry, err := s.AddLocalVariable("x", U256(), true, false)
	require.NoError(t, err)
	assert.Equal(t, 0, entry.Index)

	_, err = s.AddLocalVariable("x", U256(), true, false)
	assert.Error(t, err, "duplicate local declaration must fail")

	_, err = s.GetVariable("y", false)
	assert.Error(t, err, "undefined identifier must fail")

	_, err = s.GetVariable("x", true)
	require.NoError(t, err)
	assert.True(t, entry.accessed.assigned)

	s.ExitFunction()
}

func TestImmutableAssignmentRejected(t *testing.T) {
	s := NewState(DefaultCompilerOptions())
	fn := &FunctionDef{Id: NewFuncId("f")}
	s.EnterFunction(fn)
	_, err := s.AddLocalVariable("x", U256(), false, false)
	require.NoError(t, err)

	_, err = s.GetVariable("x", true)
	require.Error(t, err)
	assert.Equal(t, KindMutability, err.(CompileError).Kind())
}

func TestArrayElementTypeAndOffset(t *testing.T) {
	arr := FixedArray(FixedArray(U256(), 2), 3)
	elem, err := GetArrayElementType(arr, []int{1, 0})
	require.NoError(t, err)
	assert.True(t, elem.Equal(U256()))

	_, err = GetArrayElementType(arr, []int{3, 0})
	assert.Error(t, err, "out of range index must fail")

	assert.Equal(t, 2, flatSlotOffset(arr, []int{1, 0}))
	assert.Equal(t, 3, flatSlotOffset(arr, []int{1, 1}))
}

func TestBlockScopingSharesLocalCounter(t *testing.T) {
	s := NewState(DefaultCompilerOptions())
	fn := &FunctionDef{Id: NewFuncId("f")}
	s.EnterFunction(fn)

	_, err := s.AddLocalVariable("a", U256(), false, false)
	require.NoError(t, err)

	s.EnterBlock()
	b, err := s.AddLocalVariable("b", U256(), false, false)
	require.NoError(t, err)
	assert.Equal(t, 1, b.Index)
	s.ExitBlock()

	assert.Equal(t, 2, s.LocalsLength())
	s.ExitFunction()
}
