package ir

// Opcode classifies an instruction for control-flow purposes.
// Every arithmetic, texture or memory instruction is OpGeneral; the
// remaining opcodes shape the structured control flow.
type Opcode uint8

const (
	OpGeneral   Opcode = iota
	OpBeginLoop        // BGNLOOP
	OpEndLoop          // ENDLOOP
	OpIf               // IF: float condition
	OpUIf              // UIF: integer condition
	OpElse             // ELSE
	OpEndIf            // ENDIF
	OpSwitch           // SWITCH
	OpCase             // CASE
	OpDefault          // DEFAULT
	OpEndSwitch        // ENDSWITCH
	OpBreak            // BRK
	OpCall             // CAL
	OpReturn           // RET
	OpEnd              // END
)

var opcodeNames = [...]string{
	OpGeneral:   "",
	OpBeginLoop: "BGNLOOP",
	OpEndLoop:   "ENDLOOP",
	OpIf:        "IF",
	OpUIf:       "UIF",
	OpElse:      "ELSE",
	OpEndIf:     "ENDIF",
	OpSwitch:    "SWITCH",
	OpCase:      "CASE",
	OpDefault:   "DEFAULT",
	OpEndSwitch: "ENDSWITCH",
	OpBreak:     "BRK",
	OpCall:      "CAL",
	OpReturn:    "RET",
	OpEnd:       "END",
}

// String returns the assembly mnemonic. OpGeneral has no fixed mnemonic
// and prints as "OP".
func (op Opcode) String() string {
	if op == OpGeneral {
		return "OP"
	}
	if int(op) < len(opcodeNames) {
		return opcodeNames[op]
	}
	return "UNKNOWN"
}

// LookupOpcode returns the control-flow opcode with the given mnemonic.
// Any other mnemonic is an OpGeneral instruction and reports false.
func LookupOpcode(mnemonic string) (Opcode, bool) {
	for i := OpBeginLoop; int(i) < len(opcodeNames); i++ {
		if opcodeNames[i] == mnemonic {
			return i, true
		}
	}
	return OpGeneral, false
}

// IsBlockOpen reports whether the opcode opens a new control-flow region.
func (op Opcode) IsBlockOpen() bool {
	switch op {
	case OpBeginLoop, OpIf, OpUIf, OpElse, OpSwitch, OpCase, OpDefault:
		return true
	}
	return false
}

// IsSubroutine reports whether the opcode transfers control to or from a
// subroutine. Register analysis does not follow subroutine calls.
func (op Opcode) IsSubroutine() bool {
	return op == OpCall || op == OpReturn
}

// NumSrc returns the fixed number of source operands of a control-flow
// opcode, or -1 for OpGeneral whose operand count is instruction specific.
func (op Opcode) NumSrc() int {
	switch op {
	case OpGeneral:
		return -1
	case OpIf, OpUIf, OpSwitch, OpCase:
		return 1
	}
	return 0
}
