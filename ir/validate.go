package ir

import (
	"fmt"
)

// ValidationError represents a validation error.
type ValidationError struct {
	Message string
	// Line is the offending instruction, or -1 for program-level errors.
	Line int
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Line >= 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// Validator validates IR programs.
type Validator struct {
	program *Program
	errors  []ValidationError
	context validationContext
}

// validationContext holds the control-flow nesting seen so far.
type validationContext struct {
	line  int
	stack []Opcode
	ended bool
}

// Validate checks the program for structural correctness.
// Returns validation errors if any, or nil if the program is valid.
//
// The live-range analysis trusts its input; Validate exists so that
// front ends and tests can catch malformed streams before analysis.
func Validate(program *Program) ([]ValidationError, error) {
	if program == nil {
		return nil, fmt.Errorf("program is nil")
	}

	v := &Validator{
		program: program,
		errors:  make([]ValidationError, 0),
	}

	v.ValidateProgram()

	if len(v.errors) > 0 {
		return v.errors, nil
	}
	return nil, nil
}

// ValidateProgram validates the complete program.
func (v *Validator) ValidateProgram() {
	if v.program.NumTemps < 0 {
		v.addProgramError(fmt.Sprintf("negative temporary count %d", v.program.NumTemps))
	}
	for i, size := range v.program.ArraySizes {
		if size == 0 {
			v.addProgramError(fmt.Sprintf("array %d has zero length", i+1))
		}
	}

	for i := range v.program.Instructions {
		v.context.line = i
		v.validateInstruction(&v.program.Instructions[i])
	}

	if len(v.context.stack) > 0 {
		v.addProgramError(fmt.Sprintf("%d control-flow block(s) not closed", len(v.context.stack)))
	}
}

// validateInstruction checks one instruction and tracks block nesting.
//
//nolint:gocyclo,cyclop // One case per control-flow opcode
func (v *Validator) validateInstruction(in *Instruction) {
	if v.context.ended {
		v.addError("instruction after END")
		return
	}

	if n := in.Op.NumSrc(); n >= 0 {
		if len(in.Src) != n {
			v.addError(fmt.Sprintf("%s expects %d source operand(s), got %d", in.Op, n, len(in.Src)))
		}
		if len(in.Dst) != 0 {
			v.addError(fmt.Sprintf("%s has no destination operands", in.Op))
		}
	} else {
		if in.Name == "" {
			v.addError("general instruction without mnemonic")
		}
		if len(in.Dst) > 2 {
			v.addError(fmt.Sprintf("%d destination operands, at most 2 allowed", len(in.Dst)))
		}
		if len(in.Src) > 4 {
			v.addError(fmt.Sprintf("%d source operands, at most 4 allowed", len(in.Src)))
		}
		if want := DstCount(in.Name); len(in.Src)+len(in.Dst) > 0 && len(in.Dst) != want {
			v.addError(fmt.Sprintf("%s writes %d destination(s), got %d", in.Name, want, len(in.Dst)))
		}
	}

	for i := range in.Dst {
		v.validateDst(&in.Dst[i])
	}
	for i := range in.Src {
		v.validateSrc(&in.Src[i])
	}
	for i := range in.TexOffsets {
		v.validateSrc(&in.TexOffsets[i])
	}
	if in.Resource != nil {
		v.validateSrc(in.Resource)
	}

	switch in.Op {
	case OpBeginLoop, OpIf, OpUIf, OpSwitch:
		v.push(in.Op)
	case OpEndLoop:
		v.expectTop(in.Op, OpBeginLoop)
		v.pop()
	case OpElse:
		if !v.expectTop(in.Op, OpIf, OpUIf) {
			return
		}
		v.context.stack[len(v.context.stack)-1] = OpElse
	case OpEndIf:
		v.expectTop(in.Op, OpIf, OpUIf, OpElse)
		v.pop()
	case OpCase, OpDefault:
		if v.top() == OpCase || v.top() == OpDefault {
			v.pop()
		}
		if v.expectTop(in.Op, OpSwitch) {
			v.push(in.Op)
		}
	case OpEndSwitch:
		if v.top() == OpCase || v.top() == OpDefault {
			v.pop()
		}
		v.expectTop(in.Op, OpSwitch)
		v.pop()
	case OpBreak:
		if !v.inBreakable() {
			v.addError("BRK outside of loop or switch")
		}
	case OpEnd:
		v.context.ended = true
	}
}

func (v *Validator) validateSrc(s *SrcOperand) {
	v.validateRegister(s.File, s.Index, s.ArrayID, s.RelAddr != nil)
	if s.RelAddr != nil {
		v.validateSrc(s.RelAddr)
	}
	if s.RelAddr2 != nil {
		v.validateSrc(s.RelAddr2)
	}
}

func (v *Validator) validateDst(d *DstOperand) {
	v.validateRegister(d.File, d.Index, d.ArrayID, d.RelAddr != nil)
	if d.WriteMask == WriteMaskNone {
		v.addError(fmt.Sprintf("%s[%d] has an empty writemask", d.File, d.Index))
	}
	if d.RelAddr != nil {
		v.validateSrc(d.RelAddr)
	}
	if d.RelAddr2 != nil {
		v.validateSrc(d.RelAddr2)
	}
}

func (v *Validator) validateRegister(file File, index int, arrayID uint32, indirect bool) {
	switch file {
	case FileTemporary:
		if index < 0 || index >= v.program.NumTemps {
			v.addError(fmt.Sprintf("temporary %d out of range [0, %d)", index, v.program.NumTemps))
		}
	case FileArray:
		if arrayID == 0 || int(arrayID) > len(v.program.ArraySizes) {
			v.addError(fmt.Sprintf("array id %d out of range [1, %d]", arrayID, len(v.program.ArraySizes)))
			return
		}
		if !indirect && (index < 0 || uint32(index) >= v.program.ArraySizes[arrayID-1]) {
			v.addError(fmt.Sprintf("array %d index %d out of range [0, %d)", arrayID, index, v.program.ArraySizes[arrayID-1]))
		}
	case FileNull:
		v.addError("operand without register file")
	}
}

func (v *Validator) push(op Opcode) {
	v.context.stack = append(v.context.stack, op)
}

func (v *Validator) pop() {
	if n := len(v.context.stack); n > 0 {
		v.context.stack = v.context.stack[:n-1]
	}
}

func (v *Validator) top() Opcode {
	if n := len(v.context.stack); n > 0 {
		return v.context.stack[n-1]
	}
	return OpGeneral
}

// expectTop reports an error unless the innermost open block is one of want.
func (v *Validator) expectTop(op Opcode, want ...Opcode) bool {
	top := v.top()
	for _, w := range want {
		if top == w {
			return true
		}
	}
	if top == OpGeneral {
		v.addError(fmt.Sprintf("%s without open block", op))
	} else {
		v.addError(fmt.Sprintf("%s inside %s block", op, top))
	}
	return false
}

func (v *Validator) inBreakable() bool {
	for _, op := range v.context.stack {
		if op == OpBeginLoop || op == OpSwitch {
			return true
		}
	}
	return false
}

func (v *Validator) addError(msg string) {
	v.errors = append(v.errors, ValidationError{Message: msg, Line: v.context.line})
}

func (v *Validator) addProgramError(msg string) {
	v.errors = append(v.errors, ValidationError{Message: msg, Line: -1})
}
