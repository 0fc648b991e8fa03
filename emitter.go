package ralph

// emitter.go holds the control-flow code-layout algorithms shared by
// the expression and statement forms of if/else and by while/for
// (§4.5). Every relative jump offset is counted from the instruction
// immediately following the jump itself, and every offset is
// range-checked against maxBranchOffset before being returned.

// layoutBranch is one `cond -> body` arm shared by IfElseExpr and
// IfElseStatement layout.
type layoutBranch struct {
	cond []Instr
	body []Instr
}

// layoutIfElse assembles branches in order, each guarded by an IfFalse
// that skips to the next branch (or the else/end), with an
// unconditional Jump to the end after every body except when it is the
// last segment and nothing follows it. elseBody may be nil (no else
// clause, valid only for the statement form).
func layoutIfElse(branches []layoutBranch, elseBody []Instr) ([]Instr, error) {
	var out []Instr
	var endJumps []int
	for i, b := range branches {
		out = append(out, b.cond...)
		ifFalsePos := len(out)
		out = append(out, Instr{Op: OpIfFalse})
		out = append(out, b.body...)

		needsEndJump := i < len(branches)-1 || len(elseBody) > 0
		var jumpPos = -1
		if needsEndJump {
			jumpPos = len(out)
			out = append(out, Instr{Op: OpJump})
		}

		offset := len(out) - (ifFalsePos + 1)
		if err := checkBranchOffset(offset); err != nil {
			return nil, err
		}
		out[ifFalsePos].Offset = offset

		if jumpPos >= 0 {
			endJumps = append(endJumps, jumpPos)
		}
	}
	out = append(out, elseBody...)
	for _, jp := range endJumps {
		offset := len(out) - (jp + 1)
		if err := checkBranchOffset(offset); err != nil {
			return nil, err
		}
		out[jp].Offset = offset
	}
	return out, nil
}

// layoutWhile assembles `while (cond) { body }`: condition re-evaluated
// before each iteration, an IfFalse escaping to the end, and a trailing
// back-Jump to the condition (§4.5).
func layoutWhile(cond, body []Instr) ([]Instr, error) {
	var out []Instr
	out = append(out, cond...)
	ifFalsePos := len(out)
	out = append(out, Instr{Op: OpIfFalse})
	out = append(out, body...)
	backJumpPos := len(out)
	out = append(out, Instr{Op: OpJump})

	backOffset := 0 - (backJumpPos + 1)
	if err := checkBranchOffset(backOffset); err != nil {
		return nil, err
	}
	out[backJumpPos].Offset = backOffset

	endOffset := len(out) - (ifFalsePos + 1)
	if err := checkBranchOffset(endOffset); err != nil {
		return nil, err
	}
	out[ifFalsePos].Offset = endOffset
	return out, nil
}

// layoutFor assembles `for (init; cond; update) { body }`: init runs
// once, then the same condition/body/update/back-jump shape as while,
// with update folded in before the back-jump (§4.5).
func layoutFor(init, cond, body, update []Instr) ([]Instr, error) {
	var out []Instr
	out = append(out, init...)
	loopStart := len(out)
	out = append(out, cond...)
	ifFalsePos := len(out)
	out = append(out, Instr{Op: OpIfFalse})
	out = append(out, body...)
	out = append(out, update...)
	backJumpPos := len(out)
	out = append(out, Instr{Op: OpJump})

	backOffset := loopStart - (backJumpPos + 1)
	if err := checkBranchOffset(backOffset); err != nil {
		return nil, err
	}
	out[backJumpPos].Offset = backOffset

	endOffset := len(out) - (ifFalsePos + 1)
	if err := checkBranchOffset(endOffset); err != nil {
		return nil, err
	}
	out[ifFalsePos].Offset = endOffset
	return out, nil
}
