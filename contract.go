package ralph

// Argument is a function parameter or a contract's declared field
// (ident, type, isMutable, isUnused) — §3.
type Argument struct {
	Ident     Identifier
	Type      Type
	IsMutable bool
	IsUnused  bool
}

// FunctionDef is a function's signature plus its body (empty for
// abstract functions) and the attribute set the checker/emitter
// cross-reference (§3, §4.4, §4.5).
type FunctionDef struct {
	Id          FuncId
	IsPublic    bool
	Args        []Argument
	ReturnTypes []Type
	Body        []Stmt

	UsePreapprovedAssets   bool
	UseAssetsInContract    bool
	UseCheckExternalCaller bool // true requests the external-caller check; the zero value false exempts the function from the NoCheckExternalCaller warning
	UseUpdateFields        bool

	// IsStatic marks a contract-level function callable without an
	// instance (ContractStaticCallExpr target).
	IsStatic bool
	// IsVariadic marks a built-in whose call site emits a trailing
	// U256Const(argc) (§4.5 "Calls").
	IsVariadic bool
}

func (f *FunctionDef) IsAbstract() bool {
	return f.Body == nil
}

// EventField is one (name, type) pair of an event's ordered field list.
type EventField struct {
	Name Identifier
	Type Type
}

// EventDef binds an id to an ordered field list and, once merged into a
// contract, a 0-based index (§3, §4.5 "Emit-event").
type EventDef struct {
	Id     Identifier
	Fields []EventField
	Index  int
}

// ConstantDef binds a name to a compile-time Val (§3).
type ConstantDef struct {
	Id    Identifier
	Value Val
}

// EnumField is one named, valued member of an enum (§3).
type EnumField struct {
	Name  Identifier
	Value Val
}

// EnumDef binds an enum id to its member list; EnumFieldSelector
// expressions reference (enumId, field) pairs into it.
type EnumDef struct {
	Id     Identifier
	Fields []EnumField
}

func (e *EnumDef) field(name Identifier) (EnumField, bool) {
	for _, f := range e.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return EnumField{}, false
}

// ContractKind discriminates the four contract-like unit shapes (§3).
type ContractKind int

const (
	KindTxScript ContractKind = iota
	KindContract
	KindInterface
	KindAssetScript
)

func (k ContractKind) String() string {
	switch k {
	case KindTxScript:
		return "TxScript"
	case KindContract:
		return "Contract"
	case KindInterface:
		return "Interface"
	case KindAssetScript:
		return "AssetScript"
	}
	panic("unreachable")
}

// InheritSpec names one parent a unit extends, along with the
// positional field-forwarding arguments written at the extends site
// (e.g. `extends P(x)`), validated against the parent's field list
// (§4.6).
type InheritSpec struct {
	Parent    TypeId
	FieldArgs []Identifier
}

// Unit is the tagged-variant contract-like unit: TxScript | Contract |
// Interface | AssetScript (§3). The Multi-Unit Orchestrator consumes a
// set of Units and produces CompiledContract/CompiledScript per
// concrete one.
type Unit struct {
	Kind ContractKind
	Id   TypeId

	Inherits     []InheritSpec
	TemplateVars []Argument
	Fields       []Argument
	Functions    []*FunctionDef
	Events       []*EventDef
	Constants    []*ConstantDef
	Enums        []*EnumDef

	IsAbstract bool

	// StdInterfaceId is the optional "ALPH"-prefixed bytevector this
	// unit declares (contracts and interfaces only).
	StdInterfaceId []byte
	// StdIdEnabledSet/StdIdEnabled carry the unit's declared
	// std-id-enabled flag (set or not, and its value). extractDefs does
	// not read them; they are not folded across the inheritance chain.
	StdIdEnabledSet bool
	StdIdEnabled    bool
}

// isInheritable reports whether other units may list u as a parent:
// interfaces always are, contracts only when abstract, scripts never
// (§4.6 "Every inheriting parent must be marked inheritable").
func (u *Unit) isInheritable() bool {
	switch u.Kind {
	case KindInterface:
		return true
	case KindContract:
		return u.IsAbstract
	default:
		return false
	}
}

// ContractInfo is the per-type-id symbol-table entry State exposes to
// AST nodes needing to resolve another contract's shape (§4.2: "contract
// info (kind, function table) by type id").
type ContractInfo struct {
	Kind       ContractKind
	IsAbstract bool
	Functions  map[Identifier]*FunctionDef
	Fields     []Argument
	StdID      []byte
}

func (c *ContractInfo) isInstantiable() bool {
	return c.Kind == KindContract && !c.IsAbstract
}
