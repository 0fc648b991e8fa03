package ralph_test

import (
	"testing"

	"github.com/ross-weir/alephium"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mintingContract() *ralph.Unit {
	mint := &ralph.FunctionDef{
		Id:       ralph.NewFuncId("mint"),
		IsPublic: true,
		Args:     []ralph.Argument{{Ident: "amount", Type: ralph.U256()}},
		Body: []ralph.Stmt{
			&ralph.AssignStmt{
				Targets: []ralph.AssignTarget{&ralph.VariableTarget{Ident: "supply"}},
				Rhs: []ralph.Expr{&ralph.BinOpExpr{
					Op:    ralph.OpAdd,
					Left:  &ralph.VariableExpr{Ident: "supply"},
					Right: &ralph.VariableExpr{Ident: "amount"},
				}},
			},
		},
		UseUpdateFields: true,
	}
	supply := &ralph.FunctionDef{
		Id:          ralph.NewFuncId("supply"),
		IsPublic:    true,
		ReturnTypes: []ralph.Type{ralph.U256()},
		Body: []ralph.Stmt{
			&ralph.ReturnStmt{Exprs: []ralph.Expr{&ralph.VariableExpr{Ident: "supply"}}},
		},
	}
	return &ralph.Unit{
		Kind:      ralph.KindContract,
		Id:        "Token",
		Fields:    []ralph.Argument{{Ident: "supply", Type: ralph.U256(), IsMutable: true}},
		Functions: []*ralph.FunctionDef{mint, supply},
	}
}

func TestCompileUnitProducesMethodPerFunction(t *testing.T) {
	orch, err := ralph.NewOrchestrator([]*ralph.Unit{mintingContract()}, ralph.DefaultCompilerOptions())
	require.NoError(t, err)

	result, err := orch.CompileUnit("Token")
	require.NoError(t, err)
	require.NotNil(t, result.Contract)
	assert.Len(t, result.Contract.Methods, 2)
	assert.True(t, result.Contract.Methods[0].UseUpdateFields)
	assert.NotEmpty(t, result.Contract.Methods[0].Instrs)
}

func TestDuplicateUnitIdRejected(t *testing.T) {
	a := &ralph.Unit{Kind: ralph.KindContract, Id: "Token"}
	b := &ralph.Unit{Kind: ralph.KindContract, Id: "Token"}
	_, err := ralph.NewOrchestrator([]*ralph.Unit{a, b}, ralph.DefaultCompilerOptions())
	assert.Error(t, err)
}

func TestCyclicInheritanceRejected(t *testing.T) {
	a := &ralph.Unit{
		Kind: ralph.KindInterface, Id: "A",
		Inherits: []ralph.InheritSpec{{Parent: "B"}},
	}
	b := &ralph.Unit{
		Kind: ralph.KindInterface, Id: "B",
		Inherits: []ralph.InheritSpec{{Parent: "A"}},
	}
	orch, err := ralph.NewOrchestrator([]*ralph.Unit{a, b}, ralph.DefaultCompilerOptions())
	require.NoError(t, err)

	_, err = orch.BuildContractInfos()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cyclic inheritance")
}

func TestAbstractContractIsNotACompileTarget(t *testing.T) {
	abstractParent := &ralph.Unit{
		Kind:       ralph.KindContract,
		Id:         "Base",
		IsAbstract: true,
	}
	orch, err := ralph.NewOrchestrator([]*ralph.Unit{abstractParent}, ralph.DefaultCompilerOptions())
	require.NoError(t, err)

	_, err = orch.CompileUnit("Base")
	assert.Error(t, err)
}

func TestExtractDefsMergesEventsInterfacesBeforeContracts(t *testing.T) {
	base := &ralph.Unit{
		Kind:       ralph.KindContract,
		Id:         "BaseContract",
		IsAbstract: true,
		Events: []*ralph.EventDef{
			{Id: "ContractEvent", Fields: []ralph.EventField{{Name: "x", Type: ralph.U256()}}},
		},
	}
	iface := &ralph.Unit{
		Kind: ralph.KindInterface,
		Id:   "Iface",
		Events: []*ralph.EventDef{
			{Id: "InterfaceEvent", Fields: []ralph.EventField{{Name: "y", Type: ralph.U256()}}},
		},
	}
	// BaseContract listed before Iface in the extends clause on purpose —
	// the merge order must still put the interface's event first.
	child := &ralph.Unit{
		Kind: ralph.KindContract,
		Id:   "Child",
		Inherits: []ralph.InheritSpec{
			{Parent: "BaseContract"},
			{Parent: "Iface"},
		},
	}
	orch, err := ralph.NewOrchestrator([]*ralph.Unit{base, iface, child}, ralph.DefaultCompilerOptions())
	require.NoError(t, err)

	result, err := orch.CompileUnit("Child")
	require.NoError(t, err)
	require.Len(t, result.Contract.Events, 2)
	assert.Equal(t, ralph.Identifier("InterfaceEvent"), result.Contract.Events[0].Id)
	assert.Equal(t, 0, result.Contract.Events[0].Index)
	assert.Equal(t, ralph.Identifier("ContractEvent"), result.Contract.Events[1].Id)
	assert.Equal(t, 1, result.Contract.Events[1].Index)
}

func TestUnimplementedAbstractMethodRejected(t *testing.T) {
	base := &ralph.Unit{
		Kind:       ralph.KindContract,
		Id:         "Base",
		IsAbstract: true,
		Functions: []*ralph.FunctionDef{
			{Id: ralph.NewFuncId("f"), IsPublic: true},
		},
	}
	child := &ralph.Unit{
		Kind:     ralph.KindContract,
		Id:       "Child",
		Inherits: []ralph.InheritSpec{{Parent: "Base"}},
	}
	orch, err := ralph.NewOrchestrator([]*ralph.Unit{base, child}, ralph.DefaultCompilerOptions())
	require.NoError(t, err)

	_, err = orch.CompileUnit("Child")
	assert.Error(t, err)
}
