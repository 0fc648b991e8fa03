package ralph

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypeEqual(t *testing.T) {
	arr3 := FixedArray(U256(), 3)
	arr3b := FixedArray(U256(), 3)
	arr4 := FixedArray(U256(), 4)
	nested := FixedArray(arr3, 2)

	assert.True(t, U256().Equal(U256()))
	assert.False(t, U256().Equal(I256()))
	assert.True(t, arr3.Equal(arr3b))
	assert.False(t, arr3.Equal(arr4))
	assert.True(t, nested.Equal(FixedArray(arr3, 2)))
	assert.True(t, Contract("Token").Equal(Contract("Token")))
	assert.False(t, Contract("Token").Equal(Contract("NFT")))
}

func TestFlattenLength(t *testing.T) {
	tests := []struct {
		name string
		t    Type
		want int
	}{
		{"scalar", U256(), 1},
		{"flat array", FixedArray(U256(), 3), 3},
		{"nested array", FixedArray(FixedArray(U256(), 2), 3), 6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, flattenLength(tt.t))
		})
	}
}

func TestValU256Range(t *testing.T) {
	_, err := ValU256(big.NewInt(-1))
	assert.Error(t, err)

	maxU256 := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))
	_, err = ValU256(maxU256)
	assert.NoError(t, err)

	tooBig := new(big.Int).Add(maxU256, big.NewInt(1))
	_, err = ValU256(tooBig)
	assert.Error(t, err)
}

func TestValI256Range(t *testing.T) {
	minI256 := new(big.Int).Lsh(big.NewInt(-1), 255)
	_, err := ValI256(minI256)
	assert.NoError(t, err)

	tooSmall := new(big.Int).Sub(minI256, big.NewInt(1))
	_, err = ValI256(tooSmall)
	assert.Error(t, err)
}

func TestFoldMulUsesBigfft(t *testing.T) {
	a, err := ValU256(big.NewInt(6))
	require.NoError(t, err)
	b, err := ValU256(big.NewInt(7))
	require.NoError(t, err)

	product, err := foldMul(a, b)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(42), product.Int)
}
