package ralph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLayoutIfElseSingleBranch(t *testing.T) {
	branches := []layoutBranch{
		{cond: []Instr{{Op: OpConstBool}}, body: []Instr{{Op: OpConstU256}}},
	}
	out, err := layoutIfElse(branches, nil)
	require.NoError(t, err)

	// cond, IfFalse(end), body — no else, no trailing jump needed.
	require.Len(t, out, 3)
	assert.Equal(t, OpIfFalse, out[1].Op)
	assert.Equal(t, 1, out[1].Offset)
}

func TestLayoutIfElseWithElseJumpsPastBranches(t *testing.T) {
	branches := []layoutBranch{
		{cond: []Instr{{Op: OpConstBool}}, body: []Instr{{Op: OpConstU256}}},
	}
	elseBody := []Instr{{Op: OpConstI256}}
	out, err := layoutIfElse(branches, elseBody)
	require.NoError(t, err)

	// cond, IfFalse, body, Jump(end), else-body
	require.Len(t, out, 5)
	assert.Equal(t, OpJump, out[3].Op)
	assert.Equal(t, 1, out[3].Offset, "jump must skip exactly the else body")
	assert.Equal(t, OpIfFalse, out[1].Op)
	assert.Equal(t, 2, out[1].Offset, "IfFalse must land on the else body's first instruction")
}

func TestLayoutWhileBacksJumpToCondition(t *testing.T) {
	cond := []Instr{{Op: OpConstBool}}
	body := []Instr{{Op: OpConstU256}, {Op: OpPop}}
	out, err := layoutWhile(cond, body)
	require.NoError(t, err)

	require.Len(t, out, 5)
	assert.Equal(t, OpIfFalse, out[1].Op)
	assert.Equal(t, OpJump, out[4].Op)
	assert.Equal(t, -5, out[4].Offset, "back-jump must land exactly on the condition's first instruction")
}

func TestCheckBranchOffsetRejectsTooLong(t *testing.T) {
	assert.NoError(t, checkBranchOffset(255))
	assert.NoError(t, checkBranchOffset(-255))
	assert.Error(t, checkBranchOffset(256))
	assert.Error(t, checkBranchOffset(-256))
}
