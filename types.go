package ralph

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/remyoudompheng/bigfft"
)

// TypeTag discriminates the closed set of source-language types (§3).
type TypeTag int

const (
	TBool TypeTag = iota
	TI256
	TU256
	TByteVec
	TAddress
	TFixedArray
	TContract
)

// Type is the tagged-variant lattice member. Equality is structural:
// arrays compare on (elem, size), contracts on TypeId — see Equal.
type Type struct {
	Tag      TypeTag
	Elem     *Type  // set iff Tag == TFixedArray
	Size     int    // set iff Tag == TFixedArray, >= 1
	Contract TypeId // set iff Tag == TContract
}

func Bool() Type    { return Type{Tag: TBool} }
func I256() Type    { return Type{Tag: TI256} }
func U256() Type    { return Type{Tag: TU256} }
func ByteVec() Type { return Type{Tag: TByteVec} }
func Address() Type { return Type{Tag: TAddress} }

func FixedArray(elem Type, size int) Type {
	if size < 1 {
		panic("FixedArray size must be >= 1")
	}
	return Type{Tag: TFixedArray, Elem: &elem, Size: size}
}

func Contract(id TypeId) Type {
	return Type{Tag: TContract, Contract: id}
}

// Equal implements the lattice's structural equality.
func (t Type) Equal(other Type) bool {
	if t.Tag != other.Tag {
		return false
	}
	switch t.Tag {
	case TFixedArray:
		return t.Size == other.Size && t.Elem.Equal(*other.Elem)
	case TContract:
		return t.Contract == other.Contract
	default:
		return true
	}
}

func typesEqual(a, b []Type) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

// IsScalar reports whether a value of this type occupies exactly one
// stack slot on its own (i.e. is not itself an array).
func (t Type) IsScalar() bool {
	return t.Tag != TFixedArray
}

// signature renders the stable textual form used for error messages and
// ABIs (§4.1).
func signature(t Type) string {
	switch t.Tag {
	case TBool:
		return "Bool"
	case TI256:
		return "I256"
	case TU256:
		return "U256"
	case TByteVec:
		return "ByteVec"
	case TAddress:
		return "Address"
	case TFixedArray:
		return fmt.Sprintf("[%s;%d]", signature(*t.Elem), t.Size)
	case TContract:
		return string(t.Contract)
	}
	panic("unreachable")
}

func (t Type) String() string { return signature(t) }

// flattenLength returns the count of stack slots a value of T occupies:
// scalars=1, arrays = size*flattenLength(elem).
func flattenLength(t Type) int {
	if t.Tag != TFixedArray {
		return 1
	}
	return t.Size * flattenLength(*t.Elem)
}

func flattenLengthAll(ts []Type) int {
	total := 0
	for _, t := range ts {
		total += flattenLength(t)
	}
	return total
}

// Val is a constant literal of a non-array type, carrying its type tag
// and payload (§3). Payload representation is an Open Question decision
// (see DESIGN.md): bool for Bool, *big.Int for I256/U256, []byte for
// ByteVec/Address.
type Val struct {
	Tag   TypeTag
	Bool  bool
	Int   *big.Int
	Bytes []byte
}

var (
	minI256 = new(big.Int).Lsh(big.NewInt(-1), 255)
	maxI256 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 255), big.NewInt(1))
	maxU256 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))
)

func ValBool(v bool) Val { return Val{Tag: TBool, Bool: v} }

func ValI256(v *big.Int) (Val, error) {
	if v.Cmp(minI256) < 0 || v.Cmp(maxI256) > 0 {
		return Val{}, NewError(KindType, "I256 literal out of range: %s", v.String())
	}
	return Val{Tag: TI256, Int: new(big.Int).Set(v)}, nil
}

func ValU256(v *big.Int) (Val, error) {
	if v.Sign() < 0 || v.Cmp(maxU256) > 0 {
		return Val{}, NewError(KindType, "U256 literal out of range: %s", v.String())
	}
	return Val{Tag: TU256, Int: new(big.Int).Set(v)}, nil
}

func ValByteVec(b []byte) Val { return Val{Tag: TByteVec, Bytes: b} }
func ValAddress(b []byte) Val { return Val{Tag: TAddress, Bytes: b} }

// FromVal returns the non-array Type of a constant value (§4.1).
func FromVal(v Val) Type {
	switch v.Tag {
	case TBool:
		return Bool()
	case TI256:
		return I256()
	case TU256:
		return U256()
	case TByteVec:
		return ByteVec()
	case TAddress:
		return Address()
	}
	panic("unreachable")
}

// foldMul constant-folds the multiplication of two I256/U256 literals
// using bigfft's accelerated big.Int multiply, re-validating the
// product against the operand type's range.
func foldMul(a, b Val) (Val, error) {
	if a.Tag != b.Tag || (a.Tag != TI256 && a.Tag != TU256) {
		panic("foldMul requires two same-tag integer Vals")
	}
	product := bigfft.Mul(a.Int, b.Int)
	if a.Tag == TI256 {
		return ValI256(product)
	}
	return ValU256(product)
}

// encodeVal returns the byte encoding of a constant value (§6). The
// encodeImmFields/encodeMutFields/encodeFields helpers encode field
// types through encodeType and do not call it.
func encodeVal(v Val) []byte {
	switch v.Tag {
	case TBool:
		if v.Bool {
			return []byte{1}
		}
		return []byte{0}
	case TI256, TU256:
		return v.Int.Bytes()
	case TByteVec, TAddress:
		return v.Bytes
	}
	panic("unreachable")
}

// stdInterfaceIdPrefix is the fixed ASCII prefix every std interface id
// must carry (§3, §9 open question b).
const stdInterfaceIdPrefix = "ALPH"

func hasStdInterfaceIdPrefix(id []byte) bool {
	return strings.HasPrefix(string(id), stdInterfaceIdPrefix)
}
