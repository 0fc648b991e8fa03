package ralph

// VarKind discriminates where a variable entry's storage lives (§3).
type VarKind int

const (
	VarLocal VarKind = iota
	VarField
	VarTemplate
	VarConstant
)

// VariableEntry is a scope binding: kind, type, mutability, and the
// bookkeeping flags the checker needs to report unused/unassigned
// variables (§3, §4.2).
type VariableEntry struct {
	Ident       Identifier
	Kind        VarKind
	Type        Type
	IsMutable   bool
	IsUnused    bool // declared isUnused flag (user opted out of the warning)
	IsGenerated bool
	Index       int // storage index: local slot / field index / template index

	accessed assignTracker
}

// assignTracker records, for a single variable across one function body,
// whether it was ever read and whether it was ever assigned (written
// after its initial declaration). check-unused-local-vars and
// check-unassigned-local-mutable-vars consult this (§4.2).
type assignTracker struct {
	read     bool
	assigned bool
}

// Scope is one frame of the scope stack: a map of bindings with a
// parent link, walked bottom-up on lookup. The unit frame (fields,
// templates, constants) sits at the root; each function pushes a child
// frame for its own locals, and nested blocks push further children
// (§4.2, §9 "a stack of frames with parent links").
type Scope struct {
	Parent *Scope
	Vars   map[Identifier]*VariableEntry

	// FuncId names the function this frame belongs to, empty for the
	// unit-level root frame; block frames carry their enclosing
	// function's id.
	FuncId Identifier

	// localCounter is the next local slot index, owned by the
	// function-level frame and shared by all of its nested block frames.
	localCounter *int
}

func newUnitScope() *Scope {
	return &Scope{Vars: map[Identifier]*VariableEntry{}}
}

func (s *Scope) pushFunction(funcId Identifier) *Scope {
	counter := 0
	return &Scope{
		Parent:       s,
		Vars:         map[Identifier]*VariableEntry{},
		FuncId:       funcId,
		localCounter: &counter,
	}
}

func (s *Scope) pushBlock() *Scope {
	return &Scope{
		Parent:       s,
		Vars:         map[Identifier]*VariableEntry{},
		FuncId:       s.FuncId,
		localCounter: s.localCounter,
	}
}

// lookup walks the scope chain from s upward, returning the nearest
// binding for ident.
func (s *Scope) lookup(ident Identifier) (*VariableEntry, bool) {
	for sc := s; sc != nil; sc = sc.Parent {
		if v, ok := sc.Vars[ident]; ok {
			return v, true
		}
	}
	return nil, false
}

// declares reports whether ident is already bound in this exact frame
// (not ancestors) — used for the unique-name-per-scope rule.
func (s *Scope) declares(ident Identifier) bool {
	_, ok := s.Vars[ident]
	return ok
}

// nextLocalIndex hands out the next local storage slot for the
// enclosing function frame, flattened by the type's slot width.
func (s *Scope) nextLocalIndex(width int) int {
	idx := *s.localCounter
	*s.localCounter += width
	return idx
}

func (s *Scope) localsLength() int {
	if s.localCounter == nil {
		return 0
	}
	return *s.localCounter
}
