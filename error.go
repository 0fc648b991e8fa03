package ralph

import "fmt"

// Kind categorizes a CompileError without requiring callers to match on
// message text. See SPEC_FULL.md §7.
type Kind int

const (
	KindType Kind = iota
	KindName
	KindMutability
	KindAsset
	KindStaticMethod
	KindLayout
	KindInterfaceOnly
)

func (k Kind) String() string {
	switch k {
	case KindType:
		return "type error"
	case KindName:
		return "name error"
	case KindMutability:
		return "mutability error"
	case KindAsset:
		return "asset-attribute error"
	case KindStaticMethod:
		return "static-method error"
	case KindLayout:
		return "layout error"
	case KindInterfaceOnly:
		return "interface-only error"
	}
	panic("unreachable")
}

// CompileError is the single user-facing failure category: a
// human-readable message tagged with the kind of rule it violated.
type CompileError struct {
	kind Kind
	msg  string
}

func NewError(kind Kind, format string, args ...interface{}) CompileError {
	return CompileError{
		kind: kind,
		msg:  fmt.Sprintf(format, args...),
	}
}

func (e CompileError) Kind() Kind {
	return e.kind
}

func (e CompileError) Error() string {
	return fmt.Sprintf("%s: %s", e.kind, e.msg)
}

// Named error constructors, one per concrete kind enumerated in §7 and
// referenced by name throughout §4.

func ErrUndefinedIdentifier(ident Identifier) CompileError {
	return NewError(KindName, "undefined identifier: %s", ident)
}

func ErrDuplicateDefinition(ident Identifier) CompileError {
	return NewError(KindName, "duplicate definition: %s", ident)
}

func ErrImmutableAssignment(ident Identifier) CompileError {
	return NewError(KindMutability, "assignment to immutable variable: %s", ident)
}

func ErrArrayIndexOutOfRange(index, size int) CompileError {
	return NewError(KindType, "array index out of range: %d (size %d)", index, size)
}

func ErrOperatorTypeMismatch(op string, operands []Type) CompileError {
	return NewError(KindType, "operator %s cannot be applied to operand types %v", op, signatures(operands))
}

func ErrConditionNotBool(t Type) CompileError {
	return NewError(KindType, "condition must be Bool, got %s", signature(t))
}

func ErrReturnTypeMismatch(expected, got []Type) CompileError {
	return NewError(KindType, "return type mismatch: expected %v, got %v", signatures(expected), signatures(got))
}

func ErrAssignTypeMismatch(targets, rhs []Type) CompileError {
	return NewError(KindType, "assignment type mismatch: targets %v, rhs %v", signatures(targets), signatures(rhs))
}

func ErrUnknownContractType(id TypeId) CompileError {
	return NewError(KindName, "unknown contract type: %s", id)
}

func ErrNonInstantiableContract(id TypeId) CompileError {
	return NewError(KindName, "contract is not instantiable: %s", id)
}

func ErrCyclicInheritance(id TypeId) CompileError {
	return NewError(KindName, "cyclic inheritance detected at: %s", id)
}

func ErrInheritanceFieldsMismatch(child, parent TypeId) CompileError {
	return NewError(KindName, "inheritance fields mismatch: %s does not match parent %s", child, parent)
}

func ErrInterfaceNotChained(ids []TypeId) CompileError {
	return NewError(KindName, "interfaces are not strictly chained: %v", ids)
}

func ErrSignatureMismatch(id FuncId) CompileError {
	return NewError(KindName, "signature mismatch for function: %s", id)
}

func ErrUnimplementedMethods(contract TypeId, funcs []FuncId) CompileError {
	return NewError(KindName, "contract %s has unimplemented methods: %v", contract, funcs)
}

func ErrApprovedAssetsNotAccepted(callee FuncId) CompileError {
	return NewError(KindAsset, "callee %s does not accept preapproved assets", callee)
}

func ErrMissingBracesForApprovedAssets(callee FuncId) CompileError {
	return NewError(KindAsset, "callee %s requires preapproved assets braces", callee)
}

func ErrMissingUpdateFields(fn FuncId) CompileError {
	return NewError(KindMutability, "function %s assigns a field without useUpdateFields", fn)
}

func ErrStaticMismatch(id FuncId, wantStatic bool) CompileError {
	if wantStatic {
		return NewError(KindStaticMethod, "function %s is not static", id)
	}
	return NewError(KindStaticMethod, "function %s is static and cannot be called on an instance", id)
}

func ErrBranchTooLong(offset int) CompileError {
	return NewError(KindLayout, "branch offset too long: %d (max 255)", offset)
}

func ErrInterfaceOnlyDeclaration(kind, id string) CompileError {
	return NewError(KindInterfaceOnly, "%s cannot be declared on an interface: %s", kind, id)
}

func ErrInvalidTxScriptMethods(name Identifier) CompileError {
	return NewError(KindName, "invalid tx script methods in %s: first method must be public, rest private", name)
}

func signatures(ts []Type) []string {
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = signature(t)
	}
	return out
}
