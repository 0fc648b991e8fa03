package ralph

import "fmt"

// Identifier is a plain source-level name. TypeId names a user-declared
// contract/interface/script. FuncId pairs a function name with a flag
// marking it built-in, per §3.
type Identifier string

type TypeId string

type FuncId struct {
	Name    Identifier
	BuiltIn bool
}

func NewFuncId(name Identifier) FuncId {
	return FuncId{Name: name}
}

func NewBuiltInFuncId(name Identifier) FuncId {
	return FuncId{Name: name, BuiltIn: true}
}

func (f FuncId) String() string {
	if f.BuiltIn {
		return fmt.Sprintf("%s!", f.Name)
	}
	return string(f.Name)
}

// ContractFuncId qualifies a FuncId with the contract it is declared
// on, used as a symbol-table key (§4.2: "functions by (optional type
// id, func id)").
type ContractFuncId struct {
	Contract TypeId // empty for functions with no enclosing contract
	Func     FuncId
}
