package ralph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmitApproveAssetsDupsAddressPerExtraEntry(t *testing.T) {
	s := NewState(DefaultCompilerOptions())
	approve := &ApproveAssets{
		Address: &ConstExpr{Value: ValByteVec([]byte("addr"))},
		Entries: []ApproveEntry{
			{Token: &ALPHTokenIdExpr{}, Amount: intLiteralU256(1)},
			{Token: &ConstExpr{Value: ValByteVec([]byte("tok"))}, Amount: intLiteralU256(2)},
		},
	}
	instrs, err := emitApproveAssets(s, approve)
	require.NoError(t, err)

	dups := 0
	for _, i := range instrs {
		if i.Op == OpDup {
			dups++
		}
	}
	assert.Equal(t, len(approve.Entries)-1, dups, "address must be duplicated exactly entries-1 times")

	// addr (once), Dup, entry1's amount+ApproveAlph, entry2's
	// token+amount+ApproveToken.
	require.Len(t, instrs, 7)
	assert.Equal(t, OpConstByteVec, instrs[0].Op, "address emitted once")
	assert.Equal(t, OpDup, instrs[1].Op)
	assert.Equal(t, OpApproveAlph, instrs[3].Op)
	assert.Equal(t, OpApproveToken, instrs[6].Op)
}

func TestEmitApproveAssetsNilAndEmptyProduceNoInstructions(t *testing.T) {
	s := NewState(DefaultCompilerOptions())

	instrs, err := emitApproveAssets(s, nil)
	require.NoError(t, err)
	assert.Empty(t, instrs)

	emptyBraces := &ApproveAssets{Address: &ConstExpr{Value: ValByteVec([]byte("addr"))}}
	instrs, err = emitApproveAssets(s, emptyBraces)
	require.NoError(t, err)
	assert.Empty(t, instrs, "empty braces must not leak an unconsumed address onto the stack")
}

func TestCheckApproveAssetsBracesRequirement(t *testing.T) {
	s := NewState(DefaultCompilerOptions())
	wantsAssets := &FunctionDef{Id: NewFuncId("f"), UsePreapprovedAssets: true}
	noAssets := &FunctionDef{Id: NewFuncId("g")}
	approve := &ApproveAssets{Address: &ConstExpr{Value: ValByteVec([]byte("addr"))}}

	assert.Error(t, checkApproveAssets(s, nil, wantsAssets), "missing braces on a preapproved-assets callee must fail")
	assert.Error(t, checkApproveAssets(s, approve, noAssets), "braces on a callee that doesn't accept them must fail")
	assert.NoError(t, checkApproveAssets(s, nil, noAssets))
	assert.NoError(t, checkApproveAssets(s, approve, wantsAssets))
}
