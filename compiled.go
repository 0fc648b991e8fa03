package ralph

// compiled.go defines the compiler's terminal output shapes (§5) and
// the byte-level field encoding the orchestrator attaches to them.

// Method is one compiled function: its call-site attributes plus the
// final, offset-patched instruction sequence (§4.5, §5).
type Method struct {
	IsPublic               bool
	UsePreapprovedAssets   bool
	UseAssetsInContract    bool
	UseCheckExternalCaller bool
	UseUpdateFields        bool
	IsSimpleViewFunction   bool
	ArgsLength             int
	LocalsLength           int
	ReturnLength           int
	Instrs                 []Instr
}

func argTypes(args []Argument) []Type {
	ts := make([]Type, len(args))
	for i, a := range args {
		ts[i] = a.Type
	}
	return ts
}

// BuildMethod assembles a Method from a checked/emitted FunctionDef.
// IsSimpleViewFunction is read off s's call graph, which by this point
// already holds the edges fn's own emission recorded (§4.6 "simple
// view function" determination feeds ABI emission).
func BuildMethod(s *State, fn *FunctionDef, localsLength int, instrs []Instr) Method {
	return Method{
		IsPublic:               fn.IsPublic,
		UsePreapprovedAssets:   fn.UsePreapprovedAssets,
		UseAssetsInContract:    fn.UseAssetsInContract,
		UseCheckExternalCaller: fn.UseCheckExternalCaller,
		UseUpdateFields:        fn.UseUpdateFields,
		IsSimpleViewFunction:   IsSimpleViewFunction(s, fn),
		ArgsLength:             flattenLengthAll(argTypes(fn.Args)),
		LocalsLength:           localsLength,
		ReturnLength:           flattenLengthAll(fn.ReturnTypes),
		Instrs:                 instrs,
	}
}

// CompiledContract is the terminal output of compiling a Contract unit
// (§5): its field layout, merged events, and method table.
type CompiledContract struct {
	Id             TypeId
	FieldTypes     []Type
	ImmFields      []byte
	MutFields      []byte
	Fields         []byte
	Events         []*EventDef
	StdInterfaceId []byte
	Methods        []Method
}

// CompiledScript is the terminal output of compiling a TxScript unit
// (§5): its template parameters and method table (always exactly the
// methods declared, first public and rest private per §4.4).
type CompiledScript struct {
	TemplateTypes []Type
	Methods       []Method
}

// encodeType serializes a Type's shape: a tag byte, with FixedArray
// recursing on (size, elem) and Contract carrying its TypeId bytes
// (§6 field/ABI encoding).
func encodeType(t Type) []byte {
	switch t.Tag {
	case TBool:
		return []byte{0}
	case TI256:
		return []byte{1}
	case TU256:
		return []byte{2}
	case TByteVec:
		return []byte{3}
	case TAddress:
		return []byte{4}
	case TFixedArray:
		out := []byte{5, byte(t.Size)}
		return append(out, encodeType(*t.Elem)...)
	case TContract:
		out := []byte{6}
		return append(out, []byte(t.Contract)...)
	}
	panic("unreachable")
}

func encodeFieldTypes(fields []*VariableEntry, want func(*VariableEntry) bool) []byte {
	var out []byte
	for _, f := range fields {
		if want(f) {
			out = append(out, encodeType(f.Type)...)
		}
	}
	return out
}

// encodeImmFields/encodeMutFields/encodeFields split a unit's field
// list by mutability for storage layout, and concatenate all of them
// for the combined ABI encoding (§5 "Fields").
func encodeImmFields(fields []*VariableEntry) []byte {
	return encodeFieldTypes(fields, func(f *VariableEntry) bool { return !f.IsMutable })
}

func encodeMutFields(fields []*VariableEntry) []byte {
	return encodeFieldTypes(fields, func(f *VariableEntry) bool { return f.IsMutable })
}

func encodeFields(fields []*VariableEntry) []byte {
	return encodeFieldTypes(fields, func(*VariableEntry) bool { return true })
}
