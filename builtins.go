package ralph

// builtins.go is the built-in function table (DESIGN.md Open Question
// "built-in function table"): the fixed set of compiler-known
// functions every unit can call without a user definition, each paired
// with the opcode its call site lowers to.

var builtinTable = map[Identifier]*FunctionDef{
	"checkCaller": {
		Id:       NewBuiltInFuncId("checkCaller"),
		Args:     []Argument{{Ident: "condition", Type: Bool()}},
		IsPublic: false,
	},
	"panic": {
		Id:          NewBuiltInFuncId("panic"),
		Args:        nil,
		ReturnTypes: nil,
		IsVariadic:  true,
	},
	"migrate": {
		Id:   NewBuiltInFuncId("migrate"),
		Args: []Argument{{Ident: "code", Type: ByteVec()}},
	},
	"transferToken": {
		Id: NewBuiltInFuncId("transferToken"),
		Args: []Argument{
			{Ident: "from", Type: Address()},
			{Ident: "to", Type: Address()},
			{Ident: "tokenId", Type: ByteVec()},
			{Ident: "amount", Type: U256()},
		},
	},
	"transferTokenFromSelf": {
		Id: NewBuiltInFuncId("transferTokenFromSelf"),
		Args: []Argument{
			{Ident: "to", Type: Address()},
			{Ident: "tokenId", Type: ByteVec()},
			{Ident: "amount", Type: U256()},
		},
		UseAssetsInContract: true,
	},
	"transferTokenToSelf": {
		Id: NewBuiltInFuncId("transferTokenToSelf"),
		Args: []Argument{
			{Ident: "from", Type: Address()},
			{Ident: "tokenId", Type: ByteVec()},
			{Ident: "amount", Type: U256()},
		},
		UseAssetsInContract: true,
	},
	"tokenRemaining": {
		Id:          NewBuiltInFuncId("tokenRemaining"),
		Args:        []Argument{{Ident: "address", Type: Address()}, {Ident: "tokenId", Type: ByteVec()}},
		ReturnTypes: []Type{U256()},
	},
	"approveToken": {
		Id: NewBuiltInFuncId("approveToken"),
		Args: []Argument{
			{Ident: "address", Type: Address()},
			{Ident: "tokenId", Type: ByteVec()},
			{Ident: "amount", Type: U256()},
		},
	},
}

func lookupBuiltin(name Identifier) (*FunctionDef, bool) {
	fn, ok := builtinTable[name]
	return fn, ok
}

// nativeTokenSpecial names, for each built-in taking a tokenId
// argument, that argument's position and the opcode substituted when
// the call site passes the ALPHTokenId sentinel there (§4.5
// "native-token specialization").
type nativeTokenSpecial struct {
	tokenIdArgIndex int
	alphOp          Opcode
}

var specializableBuiltins = map[Identifier]nativeTokenSpecial{
	"transferToken":         {2, OpTransferAlph},
	"transferTokenFromSelf": {1, OpTransferAlphFromSelf},
	"transferTokenToSelf":   {1, OpTransferAlphToSelf},
	"tokenRemaining":        {1, OpAlphRemaining},
	"approveToken":          {1, OpApproveAlph},
}

// builtinInstr maps a resolved built-in call to its opcode.
func builtinInstr(name Identifier) Instr {
	switch name {
	case "checkCaller":
		return Instr{Op: OpCheckCaller}
	case "panic":
		return Instr{Op: OpPanic}
	case "migrate":
		return Instr{Op: OpMigrate}
	case "transferToken":
		return Instr{Op: OpTransferToken}
	case "transferTokenFromSelf":
		return Instr{Op: OpTransferTokenFromSelf}
	case "transferTokenToSelf":
		return Instr{Op: OpTransferTokenToSelf}
	case "tokenRemaining":
		return Instr{Op: OpTokenRemaining}
	case "approveToken":
		return Instr{Op: OpApproveToken}
	}
	panic("unknown builtin: " + string(name))
}
