package ir

import (
	"github.com/gogpu/gputypes"
)

// Program is a shader in IR form.
type Program struct {
	// Name is an optional label used in diagnostics.
	Name string

	// Stage is the pipeline stage the shader was translated for.
	Stage gputypes.ShaderStage

	// NumTemps is the number of temporary registers.
	NumTemps int

	// ArraySizes holds the declared length of each array register.
	// Array id i+1 has length ArraySizes[i].
	ArraySizes []uint32

	// Instructions is the instruction stream. The index of an instruction
	// is its line.
	Instructions []Instruction
}

// NumArrays returns the number of declared arrays.
func (p *Program) NumArrays() int {
	return len(p.ArraySizes)
}

// Clone returns a deep copy of the program.
func (p *Program) Clone() *Program {
	out := &Program{
		Name:         p.Name,
		Stage:        p.Stage,
		NumTemps:     p.NumTemps,
		ArraySizes:   append([]uint32(nil), p.ArraySizes...),
		Instructions: make([]Instruction, len(p.Instructions)),
	}
	for i := range p.Instructions {
		out.Instructions[i] = p.Instructions[i].Clone()
	}
	return out
}

// File is the register file an operand refers to.
type File uint8

const (
	FileNull      File = iota
	FileTemporary      // TEMP: 4-component temporary
	FileArray          // ARRAY(id): temporary array
	FileInput          // IN
	FileOutput         // OUT
	FileConstant       // CONST
	FileImmediate      // IMM
	FileAddress        // ADDR
	FileSampler        // SAMP
	FileSamplerView    // SVIEW
	FileBuffer         // BUFFER
	FileImage          // IMAGE
)

var fileNames = [...]string{
	FileNull:        "NULL",
	FileTemporary:   "TEMP",
	FileArray:       "ARRAY",
	FileInput:       "IN",
	FileOutput:      "OUT",
	FileConstant:    "CONST",
	FileImmediate:   "IMM",
	FileAddress:     "ADDR",
	FileSampler:     "SAMP",
	FileSamplerView: "SVIEW",
	FileBuffer:      "BUFFER",
	FileImage:       "IMAGE",
}

// String returns the assembly name of the file.
func (f File) String() string {
	if int(f) < len(fileNames) {
		return fileNames[f]
	}
	return "UNKNOWN"
}

// IsOther reports whether the file is neither a temporary nor an array.
// Registers in other files are never renamed.
func (f File) IsOther() bool {
	return f != FileTemporary && f != FileArray
}

// LookupFile returns the file with the given assembly name.
func LookupFile(name string) (File, bool) {
	for i, n := range fileNames {
		if n == name {
			return File(i), true
		}
	}
	return FileNull, false
}

// SrcOperand is a source operand.
type SrcOperand struct {
	File    File
	Index   int
	ArrayID uint32 // 1-based, only for FileArray
	Swizzle Swizzle

	// RelAddr is the indirect address added to Index.
	RelAddr *SrcOperand

	// RelAddr2 is the second-dimension indirect address.
	RelAddr2 *SrcOperand
}

// Clone returns a deep copy of the operand.
func (s SrcOperand) Clone() SrcOperand {
	if s.RelAddr != nil {
		r := s.RelAddr.Clone()
		s.RelAddr = &r
	}
	if s.RelAddr2 != nil {
		r := s.RelAddr2.Clone()
		s.RelAddr2 = &r
	}
	return s
}

// DstOperand is a destination operand.
type DstOperand struct {
	File      File
	Index     int
	ArrayID   uint32 // 1-based, only for FileArray
	WriteMask WriteMask

	RelAddr  *SrcOperand
	RelAddr2 *SrcOperand
}

// Clone returns a deep copy of the operand.
func (d DstOperand) Clone() DstOperand {
	if d.RelAddr != nil {
		r := d.RelAddr.Clone()
		d.RelAddr = &r
	}
	if d.RelAddr2 != nil {
		r := d.RelAddr2.Clone()
		d.RelAddr2 = &r
	}
	return d
}

// Instruction is a single IR instruction.
type Instruction struct {
	Op Opcode

	// Name is the mnemonic of an OpGeneral instruction (MOV, MAD, TEX...).
	// Control-flow opcodes ignore it.
	Name string

	Dst        []DstOperand // 0-2
	Src        []SrcOperand // 0-4
	TexOffsets []SrcOperand
	Resource   *SrcOperand
}

// Mnemonic returns the assembly mnemonic of the instruction.
func (in *Instruction) Mnemonic() string {
	if in.Op == OpGeneral {
		return in.Name
	}
	return in.Op.String()
}

// Clone returns a deep copy of the instruction.
func (in Instruction) Clone() Instruction {
	out := in
	if in.Dst != nil {
		out.Dst = make([]DstOperand, len(in.Dst))
		for i := range in.Dst {
			out.Dst[i] = in.Dst[i].Clone()
		}
	}
	if in.Src != nil {
		out.Src = make([]SrcOperand, len(in.Src))
		for i := range in.Src {
			out.Src[i] = in.Src[i].Clone()
		}
	}
	if in.TexOffsets != nil {
		out.TexOffsets = make([]SrcOperand, len(in.TexOffsets))
		for i := range in.TexOffsets {
			out.TexOffsets[i] = in.TexOffsets[i].Clone()
		}
	}
	if in.Resource != nil {
		r := in.Resource.Clone()
		out.Resource = &r
	}
	return out
}
