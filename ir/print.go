package ir

import (
	"strconv"
	"strings"

	"github.com/gogpu/gputypes"
)

// twoDstMnemonics lists the general instructions that write two
// destinations at once.
var twoDstMnemonics = map[string]bool{
	"DFRACEXP": true,
	"UADDC":    true,
	"USUBB":    true,
	"UMUL_EXT": true,
	"IMUL_EXT": true,
}

// noDstMnemonics lists the general instructions without a destination.
var noDstMnemonics = map[string]bool{
	"NOP":     true,
	"KILL":    true,
	"KILL_IF": true,
	"BARRIER": true,
	"MEMBAR":  true,
	"EMIT":    true,
	"ENDPRIM": true,
}

// DstCount returns how many of the leading operands of a general
// instruction with the given mnemonic are destinations.
func DstCount(mnemonic string) int {
	switch {
	case twoDstMnemonics[mnemonic]:
		return 2
	case noDstMnemonics[mnemonic]:
		return 0
	}
	return 1
}

// StageName returns the assembly name of a shader stage.
func StageName(stage gputypes.ShaderStage) string {
	switch stage {
	case gputypes.ShaderStageVertex:
		return "vertex"
	case gputypes.ShaderStageFragment:
		return "fragment"
	case gputypes.ShaderStageCompute:
		return "compute"
	}
	return ""
}

// LookupStage returns the shader stage with the given assembly name.
func LookupStage(name string) (gputypes.ShaderStage, bool) {
	switch name {
	case "vertex":
		return gputypes.ShaderStageVertex, true
	case "fragment":
		return gputypes.ShaderStageFragment, true
	case "compute":
		return gputypes.ShaderStageCompute, true
	}
	return gputypes.ShaderStageNone, false
}

// String returns the assembly text of the program.
func (p *Program) String() string {
	var sb strings.Builder
	if p.Name != "" {
		sb.WriteString(".name ")
		sb.WriteString(p.Name)
		sb.WriteByte('\n')
	}
	if name := StageName(p.Stage); name != "" {
		sb.WriteString(".stage ")
		sb.WriteString(name)
		sb.WriteByte('\n')
	}
	sb.WriteString(".temps ")
	sb.WriteString(strconv.Itoa(p.NumTemps))
	sb.WriteByte('\n')
	for i, size := range p.ArraySizes {
		sb.WriteString(".array ")
		sb.WriteString(strconv.Itoa(i + 1))
		sb.WriteByte(' ')
		sb.WriteString(strconv.FormatUint(uint64(size), 10))
		sb.WriteByte('\n')
	}

	// Indentation only; the parser ignores leading whitespace.
	var open []Opcode
	pop := func(op Opcode) {
		if n := len(open); n > 0 && open[n-1] == op {
			open = open[:n-1]
		}
	}
	for i := range p.Instructions {
		in := &p.Instructions[i]
		switch in.Op {
		case OpEndLoop:
			pop(OpBeginLoop)
		case OpEndIf, OpElse:
			pop(OpIf)
		case OpCase, OpDefault:
			pop(OpCase)
		case OpEndSwitch:
			pop(OpCase)
			pop(OpSwitch)
		}
		sb.WriteString(strings.Repeat("  ", len(open)))
		sb.WriteString(in.String())
		sb.WriteByte('\n')
		switch in.Op {
		case OpBeginLoop, OpSwitch:
			open = append(open, in.Op)
		case OpIf, OpUIf, OpElse:
			open = append(open, OpIf)
		case OpCase, OpDefault:
			open = append(open, OpCase)
		}
	}
	return sb.String()
}

// String returns the assembly text of a single instruction.
func (in *Instruction) String() string {
	var sb strings.Builder
	sb.WriteString(in.Mnemonic())
	sep := " "
	for i := range in.Dst {
		sb.WriteString(sep)
		sb.WriteString(in.Dst[i].String())
		sep = ", "
	}
	for i := range in.Src {
		sb.WriteString(sep)
		sb.WriteString(in.Src[i].String())
		sep = ", "
	}
	if len(in.TexOffsets) > 0 {
		sb.WriteString(" OFFSET(")
		for i := range in.TexOffsets {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(in.TexOffsets[i].String())
		}
		sb.WriteByte(')')
	}
	if in.Resource != nil {
		sb.WriteString(" RES(")
		sb.WriteString(in.Resource.String())
		sb.WriteByte(')')
	}
	return sb.String()
}

// String returns the assembly text of the operand.
func (s *SrcOperand) String() string {
	var sb strings.Builder
	writeRegister(&sb, s.File, s.Index, s.ArrayID, s.RelAddr, s.RelAddr2)
	if s.Swizzle != SwizzleXYZW {
		sb.WriteByte('.')
		sb.WriteString(s.Swizzle.String())
	}
	return sb.String()
}

// String returns the assembly text of the operand.
func (d *DstOperand) String() string {
	var sb strings.Builder
	writeRegister(&sb, d.File, d.Index, d.ArrayID, d.RelAddr, d.RelAddr2)
	if d.WriteMask != WriteMaskXYZW && d.WriteMask != WriteMaskNone {
		sb.WriteByte('.')
		sb.WriteString(d.WriteMask.String())
	}
	return sb.String()
}

func writeRegister(sb *strings.Builder, file File, index int, arrayID uint32, rel, rel2 *SrcOperand) {
	sb.WriteString(file.String())
	if file == FileArray {
		sb.WriteByte('(')
		sb.WriteString(strconv.FormatUint(uint64(arrayID), 10))
		sb.WriteByte(')')
	}
	sb.WriteByte('[')
	if rel != nil {
		sb.WriteString(rel.String())
		if index != 0 {
			if index > 0 {
				sb.WriteByte('+')
			}
			sb.WriteString(strconv.Itoa(index))
		}
	} else {
		sb.WriteString(strconv.Itoa(index))
	}
	sb.WriteByte(']')
	if rel2 != nil {
		sb.WriteByte('[')
		sb.WriteString(rel2.String())
		sb.WriteByte(']')
	}
}
