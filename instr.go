package ralph

import "fmt"

// Opcode names the VM's opaque alphabet (§6). The core names these
// opcodes but never interprets them — execution is an external
// collaborator.
type Opcode int

const (
	OpLoadLocal Opcode = iota
	OpStoreLocal
	OpLoadField
	OpStoreField
	OpLoadTemplate
	OpConstBool
	OpConstI256
	OpConstU256
	OpConstByteVec
	OpConstAddress
	OpU256Const
	OpPop
	OpDup
	OpReturn
	OpIfTrue
	OpIfFalse
	OpJump
	OpCallLocal
	OpCallExternal
	OpLogN
	OpApproveAlph
	OpApproveToken
	OpTransferAlph
	OpTransferAlphFromSelf
	OpTransferAlphToSelf
	OpTransferToken
	OpTransferTokenFromSelf
	OpTransferTokenToSelf
	OpAlphRemaining
	OpTokenRemaining
	OpALPHTokenId
	OpDebug
	OpCheckCaller
	OpPanic
	OpMigrate

	// per-type arithmetic/logical opcodes (§6: "arithmetic/logical
	// per-type opcodes")
	OpI256Add
	OpI256Sub
	OpI256Mul
	OpI256Div
	OpI256Mod
	OpI256Neg
	OpU256Add
	OpU256Sub
	OpU256Mul
	OpU256Div
	OpU256Mod
	OpBoolNot
	OpBoolAnd
	OpBoolOr
	OpEq
	OpNeq
	OpLt
	OpLe
	OpGt
	OpGe
	OpByteVecConcat
	OpByteVecEq
)

// Instr is one emitted instruction: a mnemonic plus the operands it
// needs. Never a raw byte stream — per §6 the VM layer owns
// serialization; the core only names opcodes (see DESIGN.md Open
// Question "Instruction encoding").
type Instr struct {
	Op       Opcode
	Index    int    // local/field/template slot index, U256Const value, LogN arg count, DEBUG interpolation count
	Offset   int    // signed relative offset for IfTrue/IfFalse/Jump
	Val      Val    // operand for Const* opcodes
	TypeId   TypeId // operand for CallExternal
	FuncName Identifier
	Parts    []string // DEBUG string parts
}

func (i Instr) String() string {
	switch i.Op {
	case OpLoadLocal:
		return fmt.Sprintf("LoadLocal(%d)", i.Index)
	case OpStoreLocal:
		return fmt.Sprintf("StoreLocal(%d)", i.Index)
	case OpLoadField:
		return fmt.Sprintf("LoadField(%d)", i.Index)
	case OpStoreField:
		return fmt.Sprintf("StoreField(%d)", i.Index)
	case OpLoadTemplate:
		return fmt.Sprintf("LoadTemplate(%d)", i.Index)
	case OpU256Const:
		return fmt.Sprintf("U256Const(%d)", i.Index)
	case OpIfTrue:
		return fmt.Sprintf("IfTrue(%d)", i.Offset)
	case OpIfFalse:
		return fmt.Sprintf("IfFalse(%d)", i.Offset)
	case OpJump:
		return fmt.Sprintf("Jump(%d)", i.Offset)
	case OpCallExternal:
		return fmt.Sprintf("CallExternal(%s, %s)", i.TypeId, i.FuncName)
	case OpLogN:
		return fmt.Sprintf("Log%d", i.Index)
	default:
		return opcodeName(i.Op)
	}
}

func opcodeName(op Opcode) string {
	names := map[Opcode]string{
		OpConstBool: "ConstBool", OpConstI256: "ConstI256", OpConstU256: "ConstU256",
		OpConstByteVec: "ConstByteVec", OpConstAddress: "ConstAddress",
		OpPop: "Pop", OpDup: "Dup", OpReturn: "Return", OpCallLocal: "CallLocal",
		OpApproveAlph: "ApproveAlph", OpApproveToken: "ApproveToken",
		OpTransferAlph: "TransferAlph", OpTransferAlphFromSelf: "TransferAlphFromSelf",
		OpTransferAlphToSelf: "TransferAlphToSelf",
		OpTransferToken:      "TransferToken", OpTransferTokenFromSelf: "TransferTokenFromSelf",
		OpTransferTokenToSelf: "TransferTokenToSelf",
		OpAlphRemaining:       "AlphRemaining", OpTokenRemaining: "TokenRemaining",
		OpALPHTokenId: "ALPHTokenId", OpDebug: "DEBUG", OpCheckCaller: "CheckCaller",
		OpPanic: "Panic", OpMigrate: "Migrate",
		OpI256Add: "I256Add", OpI256Sub: "I256Sub", OpI256Mul: "I256Mul", OpI256Div: "I256Div", OpI256Mod: "I256Mod", OpI256Neg: "I256Neg",
		OpU256Add: "U256Add", OpU256Sub: "U256Sub", OpU256Mul: "U256Mul", OpU256Div: "U256Div", OpU256Mod: "U256Mod",
		OpBoolNot: "BoolNot", OpBoolAnd: "BoolAnd", OpBoolOr: "BoolOr",
		OpEq: "Eq", OpNeq: "Neq", OpLt: "Lt", OpLe: "Le", OpGt: "Gt", OpGe: "Ge",
		OpByteVecConcat: "ByteVecConcat", OpByteVecEq: "ByteVecEq",
	}
	if n, ok := names[op]; ok {
		return n
	}
	panic("unreachable")
}

// maxBranchOffset is the largest absolute relative-jump offset the VM's
// one-byte offset encoding allows (§4.5).
const maxBranchOffset = 255

func checkBranchOffset(offset int) error {
	abs := offset
	if abs < 0 {
		abs = -abs
	}
	if abs > maxBranchOffset {
		return ErrBranchTooLong(offset)
	}
	return nil
}
