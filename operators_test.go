package ralph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnaryResultTypeNegFoldsU256ToI256(t *testing.T) {
	rt, op, err := unaryResultType(OpNeg, U256())
	require.NoError(t, err)
	assert.True(t, rt.Equal(I256()))
	assert.Equal(t, OpI256Neg, op)
}

func TestUnaryResultTypeRejectsMismatch(t *testing.T) {
	_, _, err := unaryResultType(OpNot, U256())
	assert.Error(t, err)
}

func TestBinaryResultTypeArithRequiresMatchingIntegerTypes(t *testing.T) {
	rt, op, err := binaryResultType(OpAdd, U256(), U256())
	require.NoError(t, err)
	assert.True(t, rt.Equal(U256()))
	assert.Equal(t, OpU256Add, op)

	_, _, err = binaryResultType(OpAdd, U256(), I256())
	assert.Error(t, err, "mixed-sign arithmetic must be rejected")
}

func TestBinaryResultTypeComparisonRequiresSameType(t *testing.T) {
	_, _, err := binaryResultType(OpLtOp, ByteVec(), ByteVec())
	assert.Error(t, err, "ordering comparisons are not defined for ByteVec")

	rt, op, err := binaryResultType(OpEqOp, ByteVec(), ByteVec())
	require.NoError(t, err)
	assert.True(t, rt.Equal(Bool()))
	assert.Equal(t, OpByteVecEq, op)
}

func TestBinaryResultTypeConcatRequiresByteVec(t *testing.T) {
	rt, op, err := binaryResultType(OpConcat, ByteVec(), ByteVec())
	require.NoError(t, err)
	assert.True(t, rt.Equal(ByteVec()))
	assert.Equal(t, OpByteVecConcat, op)

	_, _, err = binaryResultType(OpConcat, U256(), U256())
	assert.Error(t, err)
}
