package ralph

import "github.com/cznic/mathutil"

// Phase distinguishes the two passes a unit goes through (§4.2): Check
// and CodeGen. CompileUnit sets PhaseCodeGen before it emits, so the
// call-graph edges that Emit records come from that pass; no Emit
// method reads Phase, and calling Emit in PhaseCheck is not rejected.
type Phase int

const (
	PhaseCheck Phase = iota
	PhaseCodeGen
)

// externalCallKey identifies one external-call edge by its target
// (calleeTypeId.calleeFuncId), §4.2; the calling type is not part of
// the key.
type externalCallKey struct {
	Callee   TypeId
	FuncName Identifier
}

// CallGraph holds the edge tables the orchestrator's static analyses
// consult (§4.2, §4.6): internal calls (both directions, to let
// propagation walk callers of a callee), external calls, and which
// scopes contain at least one interface-func call.
type CallGraph struct {
	internalCalls         map[Identifier]map[Identifier]bool
	internalCallsReversed map[Identifier]map[Identifier]bool
	externalCalls         map[externalCallKey]bool
	interfaceFuncCallSet  map[Identifier]bool
}

func newCallGraph() CallGraph {
	return CallGraph{
		internalCalls:         map[Identifier]map[Identifier]bool{},
		internalCallsReversed: map[Identifier]map[Identifier]bool{},
		externalCalls:         map[externalCallKey]bool{},
		interfaceFuncCallSet:  map[Identifier]bool{},
	}
}

func (g *CallGraph) addInternalCall(caller, callee Identifier) {
	if g.internalCalls[caller] == nil {
		g.internalCalls[caller] = map[Identifier]bool{}
	}
	g.internalCalls[caller][callee] = true
	if g.internalCallsReversed[callee] == nil {
		g.internalCallsReversed[callee] = map[Identifier]bool{}
	}
	g.internalCallsReversed[callee][caller] = true
}

func (g *CallGraph) addExternalCall(callee TypeId, funcName Identifier) {
	g.externalCalls[externalCallKey{Callee: callee, FuncName: funcName}] = true
}

func (g *CallGraph) addInterfaceFuncCall(scope Identifier) {
	g.interfaceFuncCallSet[scope] = true
}

// State is the per-compilation mutable context threaded by reference
// through every type-of/check/emit call (§4.2). One State compiles one
// unit and is discarded afterward (§5).
type State struct {
	Phase      Phase
	AllowDebug bool
	Options    CompilerOptions

	// CurrentContract is the TypeId of the unit currently being
	// compiled; empty for a TxScript/AssetScript with no contract
	// identity of its own.
	CurrentContract TypeId

	unitScope *Scope
	scope     *Scope

	// Functions is the symbol table of (optional contract, func)
	// signatures visible to call sites, keyed the way §4.2 describes.
	Functions map[ContractFuncId]*FunctionDef

	// Contracts is the (kind, function table) lookup used by
	// ContractConv/ContractStaticCallExpr/ContractCallExpr.
	Contracts map[TypeId]*ContractInfo

	// Enums is the unit-local enum table EnumFieldSelector resolves
	// against.
	Enums map[Identifier]*EnumDef

	// Events is the current unit's merged, index-assigned event table
	// EmitEvent resolves against (§4.5 "Emit-event").
	Events map[Identifier]*EventDef

	CallGraph CallGraph
	Warnings  []Warning

	// fields is the ordered list of field variable entries registered
	// for this unit; checked for unused/unassigned-mutable after all
	// functions (§4.4 step 3).
	fields []*VariableEntry

	// currentFuncLocals accumulates every local (and its nested-block
	// shadow) declared while checking the function currently being
	// walked; reset at the start of each function.
	currentFuncLocals []*VariableEntry

	// currentReturnTypes is the declared return-type tuple of the
	// function currently being checked, consulted by check-return.
	currentReturnTypes []Type

	// currentFuncAttrs is the attribute set of the function currently
	// being checked, consulted by the approve-assets / useUpdateFields
	// cross-checks (§4.4).
	currentFuncAttrs *FunctionDef

	// constants holds the compile-time Val bound to each VarConstant
	// entry (VariableEntry itself only carries the entry's Type).
	constants map[Identifier]Val
}

func NewState(opts CompilerOptions) *State {
	root := newUnitScope()
	return &State{
		Phase:      PhaseCheck,
		AllowDebug: opts.AllowDebug,
		Options:    opts,
		unitScope:  root,
		scope:      root,
		Functions:  map[ContractFuncId]*FunctionDef{},
		Contracts:  map[TypeId]*ContractInfo{},
		Enums:      map[Identifier]*EnumDef{},
		Events:     map[Identifier]*EventDef{},
		CallGraph:  newCallGraph(),
		constants:  map[Identifier]Val{},
	}
}

// EnterFunction pushes a function scope, resets per-function
// bookkeeping, and records the declared return types and attributes
// for the duration of the body check (§4.4 step 2).
func (s *State) EnterFunction(fn *FunctionDef) {
	s.scope = s.unitScope.pushFunction(fn.Id.Name)
	s.currentFuncLocals = nil
	s.currentReturnTypes = fn.ReturnTypes
	s.currentFuncAttrs = fn
}

func (s *State) ExitFunction() {
	s.scope = s.unitScope
	s.currentFuncLocals = nil
	s.currentReturnTypes = nil
	s.currentFuncAttrs = nil
}

func (s *State) EnterBlock() {
	s.scope = s.scope.pushBlock()
}

func (s *State) ExitBlock() {
	s.scope = s.scope.Parent
}

func (s *State) LocalsLength() int {
	return s.scope.localsLength()
}

// GetType returns the type of a resolved identifier (§4.2).
func (s *State) GetType(ident Identifier) (Type, error) {
	v, err := s.GetVariable(ident, false)
	if err != nil {
		return Type{}, err
	}
	return v.Type, nil
}

// GetVariable resolves ident through the scope chain, marking it
// accessed (read) or requiring mutability (write). Fails with
// UndefinedIdentifier or ImmutableAssignment (§4.2).
func (s *State) GetVariable(ident Identifier, isWrite bool) (*VariableEntry, error) {
	v, ok := s.scope.lookup(ident)
	if !ok {
		return nil, ErrUndefinedIdentifier(ident)
	}
	if isWrite {
		if !v.IsMutable {
			return nil, ErrImmutableAssignment(ident)
		}
		if v.Kind == VarField && s.currentFuncAttrs != nil && !s.currentFuncAttrs.UseUpdateFields {
			return nil, ErrMissingUpdateFields(s.currentFuncAttrs.Id)
		}
		v.accessed.assigned = true
	} else {
		v.accessed.read = true
	}
	return v, nil
}

func (s *State) addVariable(kind VarKind, ident Identifier, t Type, isMutable, isUnused, isGenerated bool) (*VariableEntry, error) {
	if s.scope.declares(ident) {
		return nil, ErrDuplicateDefinition(ident)
	}
	entry := &VariableEntry{
		Ident:       ident,
		Kind:        kind,
		Type:        t,
		IsMutable:   isMutable,
		IsUnused:    isUnused,
		IsGenerated: isGenerated,
	}
	switch kind {
	case VarLocal:
		entry.Index = s.scope.nextLocalIndex(flattenLength(t))
		s.currentFuncLocals = append(s.currentFuncLocals, entry)
	case VarField:
		entry.Index = flattenLengthAll(fieldTypes(s.fields))
		s.fields = append(s.fields, entry)
	case VarTemplate:
		entry.Index = len(s.templates())
	case VarConstant:
		entry.Index = 0
	}
	s.scope.Vars[ident] = entry
	return entry, nil
}

func fieldTypes(fields []*VariableEntry) []Type {
	ts := make([]Type, len(fields))
	for i, f := range fields {
		ts[i] = f.Type
	}
	return ts
}

func (s *State) templates() []*VariableEntry {
	var out []*VariableEntry
	for _, v := range s.unitScope.Vars {
		if v.Kind == VarTemplate {
			out = append(out, v)
		}
	}
	return out
}

func (s *State) AddLocalVariable(ident Identifier, t Type, isMutable, isUnused bool) (*VariableEntry, error) {
	return s.addVariable(VarLocal, ident, t, isMutable, isUnused, false)
}

func (s *State) AddGeneratedLocalVariable(t Type) (*VariableEntry, error) {
	ident := Identifier(generatedIdent())
	return s.addVariable(VarLocal, ident, t, false, true, true)
}

func (s *State) AddFieldVariable(ident Identifier, t Type, isMutable, isUnused bool) (*VariableEntry, error) {
	return s.addVariable(VarField, ident, t, isMutable, isUnused, false)
}

func (s *State) AddTemplateVariable(ident Identifier, t Type) (*VariableEntry, error) {
	return s.addVariable(VarTemplate, ident, t, false, false, false)
}

func (s *State) AddConstantVariable(ident Identifier, v Val) (*VariableEntry, error) {
	entry, err := s.addVariable(VarConstant, ident, FromVal(v), false, false, false)
	if err != nil {
		return nil, err
	}
	s.constants[ident] = v
	return entry, nil
}

var generatedCounter int

func generatedIdent() string {
	generatedCounter++
	return genLocalPrefix(generatedCounter)
}

func genLocalPrefix(n int) string {
	const prefix = "$gen"
	digits := []byte{}
	if n == 0 {
		digits = []byte{'0'}
	}
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	return prefix + string(digits)
}

// GenLoadCode returns the instruction sequence loading ident's value
// (§4.2).
func (s *State) GenLoadCode(ident Identifier) ([]Instr, error) {
	v, err := s.GetVariable(ident, false)
	if err != nil {
		return nil, err
	}
	return s.genLoadEntry(v), nil
}

func (s *State) genLoadEntry(v *VariableEntry) []Instr {
	width := flattenLength(v.Type)
	instrs := make([]Instr, 0, width)
	for i := 0; i < width; i++ {
		switch v.Kind {
		case VarLocal:
			instrs = append(instrs, Instr{Op: OpLoadLocal, Index: v.Index + i})
		case VarField:
			instrs = append(instrs, Instr{Op: OpLoadField, Index: v.Index + i})
		case VarTemplate:
			instrs = append(instrs, Instr{Op: OpLoadTemplate, Index: v.Index + i})
		case VarConstant:
			// constants are scalar by construction (§3 Val is always
			// non-array), so this loop body runs exactly once.
			instrs = append(instrs, constInstr(s.constantValue(v)))
		}
	}
	return instrs
}

// constants stores the Val bound to each VarConstant entry; kept
// separate from VariableEntry (which only carries a Type) because Val
// carries the payload emit needs.
func (s *State) constantValue(v *VariableEntry) Val {
	if cv, ok := s.constants[v.Ident]; ok {
		return cv
	}
	panic("constant value missing for " + string(v.Ident))
}

// GenStoreCode returns the instruction sequence storing the top of
// stack into ident (§4.2).
func (s *State) GenStoreCode(ident Identifier) ([]Instr, error) {
	v, err := s.GetVariable(ident, true)
	if err != nil {
		return nil, err
	}
	width := flattenLength(v.Type)
	instrs := make([]Instr, 0, width)
	// stored in reverse so the rightmost (last-pushed) slot is written
	// first, matching the VarDef "named slots are stored in reverse"
	// rule (§4.3) generalized to plain assignment.
	for i := width - 1; i >= 0; i-- {
		switch v.Kind {
		case VarLocal:
			instrs = append(instrs, Instr{Op: OpStoreLocal, Index: v.Index + i})
		case VarField:
			instrs = append(instrs, Instr{Op: OpStoreField, Index: v.Index + i})
		default:
			panic("store target must be Local or Field")
		}
	}
	return instrs, nil
}

func constInstr(v Val) Instr {
	switch v.Tag {
	case TBool:
		return Instr{Op: OpConstBool, Val: v}
	case TI256:
		return Instr{Op: OpConstI256, Val: v}
	case TU256:
		return Instr{Op: OpConstU256, Val: v}
	case TByteVec:
		return Instr{Op: OpConstByteVec, Val: v}
	case TAddress:
		return Instr{Op: OpConstAddress, Val: v}
	}
	panic("unreachable")
}

// ArrayRef describes the base storage of an array-typed variable so
// ArrayElement can compute a contiguous slot range (§4.2).
type ArrayRef struct {
	Kind  VarKind
	Index int
	Type  Type // the full array type at the base
}

func (s *State) GetArrayRef(ident Identifier) (ArrayRef, error) {
	v, err := s.GetVariable(ident, false)
	if err != nil {
		return ArrayRef{}, err
	}
	if v.Type.Tag != TFixedArray {
		return ArrayRef{}, NewError(KindType, "%s is not an array", ident)
	}
	return ArrayRef{Kind: v.Kind, Index: v.Index, Type: v.Type}, nil
}

// GetOrCreateArrayRef returns an ArrayRef for an arbitrary array-typed
// expression: if it is a bare Variable, the existing storage is reused;
// otherwise the expression is spilled to a freshly generated local so
// it becomes indexable (§4.2).
func (s *State) GetOrCreateArrayRef(expr Expr) (ArrayRef, []Instr, error) {
	if v, ok := expr.(*VariableExpr); ok {
		ref, err := s.GetArrayRef(v.Ident)
		return ref, nil, err
	}
	t, err := expr.TypeOf(s)
	if err != nil {
		return ArrayRef{}, nil, err
	}
	if len(t) != 1 || t[0].Tag != TFixedArray {
		return ArrayRef{}, nil, NewError(KindType, "expression is not an array")
	}
	entry, err := s.AddGeneratedLocalVariable(t[0])
	if err != nil {
		return ArrayRef{}, nil, err
	}
	instrs, err := expr.Emit(s)
	if err != nil {
		return ArrayRef{}, nil, err
	}
	for i := flattenLength(entry.Type) - 1; i >= 0; i-- {
		instrs = append(instrs, storeSlot(VarLocal, entry.Index+i))
	}
	return ArrayRef{Kind: entry.Kind, Index: entry.Index, Type: entry.Type}, instrs, nil
}

// GetArrayElementType descends through a chain of constant indexes,
// validating each level is a FixedArray and each index in range.
func GetArrayElementType(base Type, indexes []int) (Type, error) {
	cur := base
	for _, idx := range indexes {
		if cur.Tag != TFixedArray {
			return Type{}, NewError(KindType, "too many indexes for array type %s", signature(base))
		}
		// mathutil.Clamp bounds idx into the valid slot range; an index
		// surviving the clamp unchanged is in range, anything else is not.
		if clamped := mathutil.Clamp(idx, 0, cur.Size-1); clamped != idx {
			return Type{}, ErrArrayIndexOutOfRange(idx, cur.Size)
		}
		cur = *cur.Elem
	}
	return cur, nil
}

// flatSlotOffset computes the contiguous-slot offset of a constant
// index chain within an array's storage, for sub-array and scalar loads
// alike.
func flatSlotOffset(base Type, indexes []int) int {
	offset := 0
	cur := base
	for _, idx := range indexes {
		stride := flattenLength(*cur.Elem)
		offset += idx * stride
		cur = *cur.Elem
	}
	return offset
}

func (s *State) AddInternalCall(caller, callee Identifier) {
	s.CallGraph.addInternalCall(caller, callee)
}

func (s *State) AddExternalCall(typeId TypeId, funcId Identifier) {
	s.CallGraph.addExternalCall(typeId, funcId)
}

func (s *State) AddInterfaceFuncCall(scope Identifier) {
	s.CallGraph.addInterfaceFuncCall(scope)
}

// CheckReturn validates a ReturnStmt's expression types against the
// currently-checked function's declared return types (§4.3).
func (s *State) CheckReturn(types []Type) error {
	if !typesEqual(s.currentReturnTypes, types) {
		return ErrReturnTypeMismatch(s.currentReturnTypes, types)
	}
	return nil
}

// CheckArguments validates a function's argument list has no duplicate
// names, then binds each as a local (§4.4 step 2).
func (s *State) CheckArguments(args []Argument) error {
	seen := map[Identifier]bool{}
	for _, a := range args {
		if seen[a.Ident] {
			return ErrDuplicateDefinition(a.Ident)
		}
		seen[a.Ident] = true
	}
	for _, a := range args {
		entry, err := s.AddLocalVariable(a.Ident, a.Type, a.IsMutable, a.IsUnused)
		if err != nil {
			return err
		}
		entry.accessed.read = a.IsUnused // an arg explicitly marked unused never warns
	}
	return nil
}

// CheckUnusedLocalVars reports every non-generated, non-opted-out local
// declared in the function just checked that was never read (§4.2).
func (s *State) CheckUnusedLocalVars() {
	if s.Options.IgnoreUnusedVariablesWarnings {
		return
	}
	for _, v := range s.currentFuncLocals {
		if v.IsGenerated || v.IsUnused {
			continue
		}
		if !v.accessed.read {
			s.Warnings = append(s.Warnings, NewUnusedVariableWarning(v.Ident))
		}
	}
}

// CheckUnassignedLocalMutableVars reports every mutable local that was
// declared mutable but never reassigned (§4.2).
func (s *State) CheckUnassignedLocalMutableVars() {
	for _, v := range s.currentFuncLocals {
		if v.IsGenerated || !v.IsMutable {
			continue
		}
		if !v.accessed.assigned {
			s.Warnings = append(s.Warnings, NewUnassignedMutableLocalWarning(v.Ident))
		}
	}
}

// CheckUnusedFields reports every non-opted-out field never read across
// any function of the unit (§4.4 step 3).
func (s *State) CheckUnusedFields() {
	if s.Options.IgnoreUnusedFieldsWarnings {
		return
	}
	for _, f := range s.fields {
		if f.IsGenerated || f.IsUnused {
			continue
		}
		if !f.accessed.read {
			s.Warnings = append(s.Warnings, NewUnusedFieldWarning(f.Ident))
		}
	}
}

// CheckUnassignedMutableFields reports every mutable field that was
// never assigned by any function of the unit (§4.4 step 3).
func (s *State) CheckUnassignedMutableFields() {
	if s.Options.IgnoreUpdateFieldsCheckWarnings {
		return
	}
	for _, f := range s.fields {
		if f.IsGenerated || !f.IsMutable {
			continue
		}
		if !f.accessed.assigned {
			s.Warnings = append(s.Warnings, NewUnassignedMutableFieldWarning(f.Ident))
		}
	}
}

func (s *State) Fields() []*VariableEntry {
	return s.fields
}
