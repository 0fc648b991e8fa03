// Command ralphdump compiles a small, hand-built contract and prints
// its merged method table and warnings. It exists to exercise the
// orchestrator end to end without a parser front end (§2 "parsing is
// an external collaborator").
package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/ross-weir/alephium"
)

func main() {
	configPath := flag.String("config", "", "path to a .properties compiler-options file")
	flag.Parse()

	opts, err := ralph.LoadCompilerOptions(*configPath)
	if err != nil {
		log.Fatalf("loading compiler options: %v", err)
	}

	units := []*ralph.Unit{sampleToken()}
	orch, err := ralph.NewOrchestrator(units, opts)
	if err != nil {
		log.Fatalf("building orchestrator: %v", err)
	}

	result, err := orch.CompileUnit("Token")
	if err != nil {
		log.Fatalf("compiling Token: %v", err)
	}

	fmt.Printf("compiled contract %s: %d method(s)\n", result.Contract.Id, len(result.Contract.Methods))
	for _, m := range result.Contract.Methods {
		fmt.Printf("  method: public=%v args=%d locals=%d returns=%d instrs=%d\n",
			m.IsPublic, m.ArgsLength, m.LocalsLength, m.ReturnLength, len(m.Instrs))
	}
	for _, w := range result.Warnings {
		fmt.Printf("warning: %s\n", w)
	}
}

// sampleToken builds the AST for:
//
//	Contract Token(mut supply: U256) {
//	    pub fn mint(amount: U256) -> () {
//	        supply = supply + amount
//	    }
//	    pub fn supply() -> U256 {
//	        return supply
//	    }
//	}
func sampleToken() *ralph.Unit {
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
