package ralph

import "fmt"

// WarningKind discriminates the advisory diagnostics the checker and
// orchestrator accumulate. Warnings never abort compilation (§7).
type WarningKind int

const (
	WarnUnusedVariable WarningKind = iota
	WarnUnassignedMutableLocal
	WarnUnusedField
	WarnUnassignedMutableField
	WarnUnusedConstant
	WarnUnusedPrivateFunction
	WarnNoCheckExternalCaller
)

// Warning is an append-only, non-fatal diagnostic (§4.2 "Warnings: an
// append-only list").
type Warning struct {
	Kind WarningKind
	Msg  string
}

func (w Warning) String() string {
	return w.Msg
}

func NewUnusedVariableWarning(ident Identifier) Warning {
	return Warning{Kind: WarnUnusedVariable, Msg: fmt.Sprintf("unused variable: %s", ident)}
}

func NewUnassignedMutableLocalWarning(ident Identifier) Warning {
	return Warning{Kind: WarnUnassignedMutableLocal, Msg: fmt.Sprintf("mutable variable is never assigned: %s", ident)}
}

func NewUnusedFieldWarning(ident Identifier) Warning {
	return Warning{Kind: WarnUnusedField, Msg: fmt.Sprintf("unused field: %s", ident)}
}

func NewUnassignedMutableFieldWarning(ident Identifier) Warning {
	return Warning{Kind: WarnUnassignedMutableField, Msg: fmt.Sprintf("mutable field is never assigned: %s", ident)}
}

func NewUnusedConstantWarning(ident Identifier) Warning {
	return Warning{Kind: WarnUnusedConstant, Msg: fmt.Sprintf("unused constant: %s", ident)}
}

func NewUnusedPrivateFunctionWarning(id FuncId) Warning {
	return Warning{Kind: WarnUnusedPrivateFunction, Msg: fmt.Sprintf("unused private function: %s", id)}
}

func NewNoCheckExternalCallerWarning(id FuncId) Warning {
	return Warning{
		Kind: WarnNoCheckExternalCaller,
		Msg:  fmt.Sprintf("public function %s does not check its external caller", id),
	}
}
