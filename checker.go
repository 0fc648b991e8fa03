package ralph

// checker.go is the Semantic Checker (§4.4): the per-function driver
// that pushes a function scope, type-checks every statement, and
// verifies the exhaustive-return property, plus the per-unit
// unused/unassigned sweeps run after every function has been checked.

// CheckFunction type-checks one function body in isolation. Abstract
// functions (no body) are a no-op — their signature alone is checked
// by the orchestrator's override-matching pass (§4.6).
func CheckFunction(s *State, fn *FunctionDef) error {
	if fn.IsAbstract() {
		return nil
	}
	s.EnterFunction(fn)
	defer s.ExitFunction()

	if err := s.CheckArguments(fn.Args); err != nil {
		return err
	}
	if err := checkAll(s, fn.Body); err != nil {
		return err
	}
	if len(fn.ReturnTypes) > 0 && !sequenceAlwaysReturns(fn.Body) {
		return NewError(KindType, "missing return statement in function %s", fn.Id)
	}

	s.CheckUnusedLocalVars()
	s.CheckUnassignedLocalMutableVars()
	return nil
}

// CheckUnit runs CheckFunction over every concrete function of a
// merged unit, then the whole-unit field sweeps (§4.4 step 3).
func CheckUnit(s *State, functions []*FunctionDef) error {
	for _, fn := range functions {
		if err := CheckFunction(s, fn); err != nil {
			return err
		}
	}
	s.CheckUnusedFields()
	s.CheckUnassignedMutableFields()
	return nil
}

// sequenceAlwaysReturns reports whether some statement in the sequence
// guarantees control never falls through past it — a ReturnStmt, a
// panic! call, or an if/else whose every branch (and mandatory else)
// does the same (§4.4 "every execution path ends in a return or a
// panic call").
func sequenceAlwaysReturns(stmts []Stmt) bool {
	for _, st := range stmts {
		if stmtAlwaysReturns(st) {
			return true
		}
	}
	return false
}

func stmtAlwaysReturns(st Stmt) bool {
	switch v := st.(type) {
	case *ReturnStmt:
		return true
	case *ExprStmt:
		return isPanicCall(v.Expr)
	case *IfElseStatement:
		if v.Else == nil {
			return false
		}
		for _, b := range v.Branches {
			if !sequenceAlwaysReturns(b.Body) {
				return false
			}
		}
		return sequenceAlwaysReturns(v.Else)
	}
	return false
}

func isPanicCall(e Expr) bool {
	call, ok := e.(*CallExpr)
	return ok && call.Func.BuiltIn && call.Func.Name == "panic"
}
