package ralph

import (
	"bytes"
	"sort"
)

// orchestrator.go is the Multi-Unit Orchestrator (§4.6): it takes the
// full set of units a compilation unit was parsed into, rejects
// duplicate type ids, walks each unit's inheritance closure (DFS,
// cycle-checked), validates inherited field forwarding, merges each
// concrete unit's function/event/constant/enum tables across its
// closure (extractDefs), and drives the two-phase check/emit of every
// concrete Contract and TxScript.

// Orchestrator holds every unit of one compilation (possibly spanning
// several source files — out of scope here, see SPEC_FULL.md §2) keyed
// by type id.
type Orchestrator struct {
	Units   map[TypeId]*Unit
	Options CompilerOptions
}

func NewOrchestrator(units []*Unit, opts CompilerOptions) (*Orchestrator, error) {
	m := make(map[TypeId]*Unit, len(units))
	for _, u := range units {
		if _, dup := m[u.Id]; dup {
			return nil, ErrDuplicateDefinition(Identifier(u.Id))
		}
		m[u.Id] = u
	}
	return &Orchestrator{Units: m, Options: opts}, nil
}

// closure returns id's ancestors in dependency order (each parent
// before its child) followed by id itself, via DFS with a visiting set
// for cycle detection (§4.6).
func (o *Orchestrator) closure(id TypeId) ([]TypeId, error) {
	visited := map[TypeId]bool{}
	visiting := map[TypeId]bool{}
	var order []TypeId

	var visit func(TypeId) error
	visit = func(cur TypeId) error {
		if visiting[cur] {
			return ErrCyclicInheritance(cur)
		}
		if visited[cur] {
			return nil
		}
		unit, ok := o.Units[cur]
		if !ok {
			return ErrUnknownContractType(cur)
		}
		visiting[cur] = true
		for _, spec := range unit.Inherits {
			parent, ok := o.Units[spec.Parent]
			if !ok {
				return ErrUnknownContractType(spec.Parent)
			}
			if !parent.isInheritable() {
				return ErrInterfaceOnlyDeclaration("non-inheritable parent", string(spec.Parent))
			}
			if err := visit(spec.Parent); err != nil {
				return err
			}
			if err := validateFieldForward(unit, spec, parent); err != nil {
				return err
			}
		}
		visiting[cur] = false
		visited[cur] = true
		order = append(order, cur)
		return nil
	}

	if err := visit(id); err != nil {
		return nil, err
	}
	return order, nil
}

// validateFieldForward checks that an `extends Parent(a, b, ...)` site
// forwards exactly the parent's field count, each naming a field or
// template var of the child with the matching type (§4.6).
func validateFieldForward(child *Unit, spec InheritSpec, parent *Unit) error {
	if len(spec.FieldArgs) != len(parent.Fields) {
		return ErrInheritanceFieldsMismatch(child.Id, parent.Id)
	}
	for i, arg := range spec.FieldArgs {
		t, ok := lookupUnitMemberType(child, arg)
		if !ok {
			return ErrUndefinedIdentifier(arg)
		}
		if !t.Equal(parent.Fields[i].Type) {
			return ErrInheritanceFieldsMismatch(child.Id, parent.Id)
		}
	}
	return nil
}

func lookupUnitMemberType(u *Unit, ident Identifier) (Type, bool) {
	for _, f := range u.Fields {
		if f.Ident == ident {
			return f.Type, true
		}
	}
	for _, t := range u.TemplateVars {
		if t.Ident == ident {
			return t.Type, true
		}
	}
	return Type{}, false
}

func containsArg(args []Argument, ident Identifier) bool {
	for _, a := range args {
		if a.Ident == ident {
			return true
		}
	}
	return false
}

func signatureEqual(a, b *FunctionDef) bool {
	if a.IsPublic != b.IsPublic || a.IsStatic != b.IsStatic || len(a.Args) != len(b.Args) || len(a.ReturnTypes) != len(b.ReturnTypes) {
		return false
	}
	for i := range a.Args {
		if !a.Args[i].Type.Equal(b.Args[i].Type) {
			return false
		}
	}
	for i := range a.ReturnTypes {
		if !a.ReturnTypes[i].Equal(b.ReturnTypes[i]) {
			return false
		}
	}
	return true
}

// mergedUnit is the flattened result of extractDefs: one unit's
// inheritance closure reduced to a single function/event/constant/enum
// table plus its accumulated field list (§4.6).
type mergedUnit struct {
	Closure        []TypeId
	Fields         []Argument
	TemplateVars   []Argument
	Functions      []*FunctionDef
	Events         []*EventDef
	Constants      []*ConstantDef
	Enums          []*EnumDef
	StdInterfaceId []byte
	IsAbstract     bool
	Kind           ContractKind
}

// extractDefs merges id's full inheritance closure into one unit,
// validating the interface chain along the way (§4.6).
func (o *Orchestrator) extractDefs(id TypeId) (*mergedUnit, error) {
	order, err := o.closure(id)
	if err != nil {
		return nil, err
	}

	var interfaces []TypeId
	for _, a := range order {
		if o.Units[a].Kind == KindInterface {
			interfaces = append(interfaces, a)
		}
	}
	sort.Slice(interfaces, func(i, j int) bool {
		ci, _ := o.closure(interfaces[i])
		cj, _ := o.closure(interfaces[j])
		return len(ci) < len(cj)
	})
	if err := o.validateInterfaceChain(interfaces); err != nil {
		return nil, err
	}

	// Merge in interfaces (chain order) first, then contract ancestors,
	// then id itself last — §4.6 "events (interfaces first, then
	// contracts)" — rather than the raw DFS closure order, which follows
	// whatever order a unit's `extends` clause happens to list parents in
	// and gives no such guarantee.
	var contractParents []TypeId
	for _, a := range order {
		if a == id || o.Units[a].Kind == KindInterface {
			continue
		}
		contractParents = append(contractParents, a)
	}
	mergeOrder := make([]TypeId, 0, len(order))
	mergeOrder = append(mergeOrder, interfaces...)
	mergeOrder = append(mergeOrder, contractParents...)
	mergeOrder = append(mergeOrder, id)

	funcs := map[Identifier]*FunctionDef{}
	var funcOrder []Identifier
	events := map[Identifier]*EventDef{}
	var eventOrder []Identifier
	consts := map[Identifier]*ConstantDef{}
	var constOrder []Identifier
	enums := map[Identifier]*EnumDef{}
	var enumOrder []Identifier
	var fields []Argument
	var templates []Argument
	var stdId []byte

	for _, tid := range mergeOrder {
		u := o.Units[tid]
		for _, f := range u.Fields {
			if !containsArg(fields, f.Ident) {
				fields = append(fields, f)
			}
		}
		for _, t := range u.TemplateVars {
			if !containsArg(templates, t.Ident) {
				templates = append(templates, t)
			}
		}
		for _, fn := range u.Functions {
			if existing, ok := funcs[fn.Id.Name]; ok {
				if !signatureEqual(existing, fn) {
					return nil, ErrSignatureMismatch(fn.Id)
				}
				// a concrete override replaces an abstract declaration;
				// a more-derived concrete definition (later in closure
				// order) replaces an earlier one of the same signature.
				if !fn.IsAbstract() {
					funcs[fn.Id.Name] = fn
				}
				continue
			}
			funcs[fn.Id.Name] = fn
			funcOrder = append(funcOrder, fn.Id.Name)
		}
		for _, ev := range u.Events {
			if _, ok := events[ev.Id]; !ok {
				events[ev.Id] = ev
				eventOrder = append(eventOrder, ev.Id)
			}
		}
		for _, c := range u.Constants {
			if _, ok := consts[c.Id]; !ok {
				constOrder = append(constOrder, c.Id)
			}
			consts[c.Id] = c
		}
		for _, en := range u.Enums {
			if _, ok := enums[en.Id]; !ok {
				enumOrder = append(enumOrder, en.Id)
			}
			enums[en.Id] = en
		}
		if len(u.StdInterfaceId) > 0 {
			stdId = u.StdInterfaceId
		}
	}

	self := o.Units[id]
	var unimplemented []FuncId
	orderedFuncs := make([]*FunctionDef, 0, len(funcOrder))
	for _, fid := range funcOrder {
		fn := funcs[fid]
		if !self.IsAbstract && self.Kind == KindContract && fn.IsAbstract() {
			unimplemented = append(unimplemented, fn.Id)
		}
		orderedFuncs = append(orderedFuncs, fn)
	}
	if len(unimplemented) > 0 {
		return nil, ErrUnimplementedMethods(id, unimplemented)
	}

	orderedEvents := make([]*EventDef, 0, len(eventOrder))
	for i, eid := range eventOrder {
		// copy so the index assigned here does not leak into the parent
		// unit's own EventDef, which other merges share
		ev := *events[eid]
		ev.Index = i
		orderedEvents = append(orderedEvents, &ev)
	}

	orderedConsts := make([]*ConstantDef, 0, len(constOrder))
	for _, cid := range constOrder {
		orderedConsts = append(orderedConsts, consts[cid])
	}
	orderedEnums := make([]*EnumDef, 0, len(enumOrder))
	for _, eid := range enumOrder {
		orderedEnums = append(orderedEnums, enums[eid])
	}

	return &mergedUnit{
		Closure:        order,
		Fields:         fields,
		TemplateVars:   templates,
		Functions:      orderedFuncs,
		Events:         orderedEvents,
		Constants:      orderedConsts,
		Enums:          orderedEnums,
		StdInterfaceId: stdId,
		IsAbstract:     self.IsAbstract,
		Kind:           self.Kind,
	}, nil
}

// validateInterfaceChain enforces that a unit's interface ancestors
// form one strict chain (no branching) and that std-interface-ids
// extend monotonically along it (§4.6, §9 open question b).
func (o *Orchestrator) validateInterfaceChain(interfaces []TypeId) error {
	for i := 1; i < len(interfaces); i++ {
		cur := o.Units[interfaces[i]]
		prev := interfaces[i-1]
		linked := false
		for _, spec := range cur.Inherits {
			if spec.Parent == prev {
				linked = true
				break
			}
		}
		if !linked {
			return ErrInterfaceNotChained(interfaces)
		}
	}

	var prevId []byte
	for _, iid := range interfaces {
		u := o.Units[iid]
		if len(u.StdInterfaceId) == 0 {
			continue
		}
		if !hasStdInterfaceIdPrefix(u.StdInterfaceId) {
			return NewError(KindName, "std interface id must start with %q: %s", stdInterfaceIdPrefix, iid)
		}
		if prevId != nil && (!bytes.HasPrefix(u.StdInterfaceId, prevId) || len(u.StdInterfaceId) == len(prevId)) {
			return NewError(KindName, "std interface id must extend its parent's: %s", iid)
		}
		prevId = u.StdInterfaceId
	}
	return nil
}

// BuildContractInfos merges every non-script unit's closure and
// exposes the result as the (kind, function table) lookup State.Contracts
// needs for cross-contract resolution (§4.2, §4.6).
func (o *Orchestrator) BuildContractInfos() (map[TypeId]*ContractInfo, error) {
	out := map[TypeId]*ContractInfo{}
	for id, u := range o.Units {
		if u.Kind == KindTxScript || u.Kind == KindAssetScript {
			continue
		}
		merged, err := o.extractDefs(id)
		if err != nil {
			return nil, err
		}
		funcTable := map[Identifier]*FunctionDef{}
		for _, fn := range merged.Functions {
			funcTable[fn.Id.Name] = fn
		}
		out[id] = &ContractInfo{
			Kind:       u.Kind,
			IsAbstract: u.IsAbstract,
			Functions:  funcTable,
			Fields:     merged.Fields,
			StdID:      merged.StdInterfaceId,
		}
	}
	return out, nil
}

// CompileResult bundles one unit's compiled output with the warnings
// accumulated while producing it.
type CompileResult struct {
	Contract *CompiledContract
	Script   *CompiledScript
	Warnings []Warning
}

// CompileUnit runs the full two-phase pipeline (check, then codegen)
// for one concrete Contract or TxScript id: merge its closure, seed a
// fresh State with its fields/templates/constants/enums/events/contract
// table, check every function, flip to codegen, emit every function,
// then run the whole-compilation sweeps (unused-private-function,
// check-external-caller) that need the completed call graph (§4.4 step
// 3, §4.6).
func (o *Orchestrator) CompileUnit(id TypeId) (*CompileResult, error) {
	unit, ok := o.Units[id]
	if !ok {
		return nil, ErrUnknownContractType(id)
	}
	if unit.Kind == KindInterface || (unit.Kind == KindContract && unit.IsAbstract) {
		return nil, ErrNonInstantiableContract(id)
	}
	merged, err := o.extractDefs(id)
	if err != nil {
		return nil, err
	}
	contracts, err := o.BuildContractInfos()
	if err != nil {
		return nil, err
	}

	s := NewState(o.Options)
	s.CurrentContract = id
	s.Contracts = contracts
	for _, en := range merged.Enums {
		s.Enums[en.Id] = en
	}
	for _, ev := range merged.Events {
		s.Events[ev.Id] = ev
	}
	for _, f := range merged.Fields {
		if _, err := s.AddFieldVariable(f.Ident, f.Type, f.IsMutable, f.IsUnused); err != nil {
			return nil, err
		}
	}
	for _, t := range merged.TemplateVars {
		if _, err := s.AddTemplateVariable(t.Ident, t.Type); err != nil {
			return nil, err
		}
	}
	for _, c := range merged.Constants {
		if _, err := s.AddConstantVariable(c.Id, c.Value); err != nil {
			return nil, err
		}
	}

	if unit.Kind == KindTxScript {
		if err := validateTxScriptMethods(unit.Id, merged.Functions); err != nil {
			return nil, err
		}
	}

	if err := CheckUnit(s, merged.Functions); err != nil {
		return nil, err
	}

	s.Phase = PhaseCodeGen
	methods := make([]Method, 0, len(merged.Functions))
	localsLength := map[Identifier]int{}
	for _, fn := range merged.Functions {
		if fn.IsAbstract() {
			continue
		}
		s.EnterFunction(fn)
		if err := s.CheckArguments(fn.Args); err != nil {
			s.ExitFunction()
			return nil, err
		}
		instrs, err := emitAllStmts(s, fn.Body)
		if err != nil {
			s.ExitFunction()
			return nil, err
		}
		localsLength[fn.Id.Name] = s.LocalsLength()
		methods = append(methods, BuildMethod(s, fn, s.LocalsLength(), instrs))
		s.ExitFunction()
	}

	o.checkExternalCaller(s, merged.Functions)
	o.checkUnusedPrivateFunctions(s, merged.Functions)
	o.checkUnusedConstants(s, merged.Constants)

	result := &CompileResult{Warnings: s.Warnings}
	if unit.Kind == KindTxScript {
		result.Script = &CompiledScript{TemplateTypes: argTypes(merged.TemplateVars), Methods: methods}
		return result, nil
	}
	result.Contract = &CompiledContract{
		Id:             id,
		FieldTypes:     argTypes(merged.Fields),
		ImmFields:      encodeImmFields(s.Fields()),
		MutFields:      encodeMutFields(s.Fields()),
		Fields:         encodeFields(s.Fields()),
		Events:         merged.Events,
		StdInterfaceId: merged.StdInterfaceId,
		Methods:        methods,
	}
	return result, nil
}

// validateTxScriptMethods enforces that a TxScript's first method is
// public and every subsequent method is private (§4.4 "invalid tx
// script methods").
func validateTxScriptMethods(name TypeId, funcs []*FunctionDef) error {
	for i, fn := range funcs {
		wantPublic := i == 0
		if fn.IsPublic != wantPublic {
			return ErrInvalidTxScriptMethods(Identifier(name))
		}
	}
	return nil
}

// checkExternalCaller runs the fixed-point propagation deciding which
// public functions are considered to check their external caller: a
// function satisfies this directly by calling checkCaller! or an
// interface function, or transitively by calling another function that
// does (§4.6). Unsatisfied public functions that didn't opt out get a
// warning.
func (o *Orchestrator) checkExternalCaller(s *State, funcs []*FunctionDef) {
	if s.Options.IgnoreCheckExternalCallerWarnings {
		return
	}
	checks := map[Identifier]bool{}
	for _, fn := range funcs {
		if s.CallGraph.interfaceFuncCallSet[fn.Id.Name] {
			checks[fn.Id.Name] = true
		}
	}
	for _, m := range funcs {
		if usesCheckCaller(m) {
			checks[m.Id.Name] = true
		}
	}

	changed := true
	for changed {
		changed = false
		for callee, callers := range s.CallGraph.internalCallsReversed {
			if !checks[callee] {
				continue
			}
			for caller := range callers {
				if !checks[caller] {
					checks[caller] = true
					changed = true
				}
			}
		}
	}

	for _, fn := range funcs {
		if !fn.IsPublic || !fn.UseCheckExternalCaller || fn.IsAbstract() {
			continue
		}
		if !checks[fn.Id.Name] {
			s.Warnings = append(s.Warnings, NewNoCheckExternalCallerWarning(fn.Id))
		}
	}
}

// callsBuiltin reports whether fn's body directly calls the named
// built-in anywhere in its statement tree (§4.6 "direct built-in call"
// detection shared by the check-external-caller and simple-view-function
// determinations).
func callsBuiltin(fn *FunctionDef, name Identifier) bool {
	found := false
	var walk func(Stmt)
	walkExpr := func(e Expr) {
		if call, ok := e.(*CallExpr); ok && call.Func.BuiltIn && call.Func.Name == name {
			found = true
		}
	}
	walk = func(st Stmt) {
		switch v := st.(type) {
		case *ExprStmt:
			walkExpr(v.Expr)
		case *IfElseStatement:
			for _, b := range v.Branches {
				for _, s := range b.Body {
					walk(s)
				}
			}
			for _, s := range v.Else {
				walk(s)
			}
		case *While:
			for _, s := range v.Body {
				walk(s)
			}
		case *ForLoop:
			walk(v.Init)
			for _, s := range v.Body {
				walk(s)
			}
			walk(v.Update)
		}
	}
	for _, st := range fn.Body {
		walk(st)
	}
	return found
}

func usesCheckCaller(fn *FunctionDef) bool {
	return callsBuiltin(fn, "checkCaller")
}

// checkUnusedPrivateFunctions warns on every private function never
// targeted by an internal-call edge — computed only after emission,
// since call-graph edges are recorded at emit time, including ones
// under unreachable branches (§4.2, §9 open question a).
func (o *Orchestrator) checkUnusedPrivateFunctions(s *State, funcs []*FunctionDef) {
	if s.Options.IgnoreUnusedPrivateFunctionsWarnings {
		return
	}
	for _, fn := range funcs {
		if fn.IsPublic || fn.IsAbstract() {
			continue
		}
		if len(s.CallGraph.internalCallsReversed[fn.Id.Name]) == 0 {
			s.Warnings = append(s.Warnings, NewUnusedPrivateFunctionWarning(fn.Id))
		}
	}
}

func (o *Orchestrator) checkUnusedConstants(s *State, consts []*ConstantDef) {
	if s.Options.IgnoreUnusedConstantsWarnings {
		return
	}
	for _, c := range consts {
		if v, ok := s.scope.lookup(c.Id); ok && !v.accessed.read {
			s.Warnings = append(s.Warnings, NewUnusedConstantWarning(c.Id))
		}
	}
}

// IsSimpleViewFunction reports whether fn qualifies as a read-only view
// function (§4.6 "simple view function" determination): it does not
// update fields, does not use preapproved or in-contract assets, makes
// no interface-func call, and never calls the built-in migrate. Fed
// into BuildMethod so the resulting Method's ABI entry records it.
func IsSimpleViewFunction(s *State, fn *FunctionDef) bool {
	if fn.UseUpdateFields || fn.UsePreapprovedAssets || fn.UseAssetsInContract {
		return false
	}
	if s.CallGraph.interfaceFuncCallSet[fn.Id.Name] {
		return false
	}
	return !callsBuiltin(fn, "migrate")
}
