package ir

import (
	"testing"

	"github.com/gogpu/gputypes"
)

func tempDst(index int, mask WriteMask) DstOperand {
	return DstOperand{File: FileTemporary, Index: index, WriteMask: mask}
}

func tempSrc(index int) SrcOperand {
	return SrcOperand{File: FileTemporary, Index: index, Swizzle: SwizzleXYZW}
}

func inSrc(index int) SrcOperand {
	return SrcOperand{File: FileInput, Index: index, Swizzle: SwizzleXYZW}
}

func mov(dst DstOperand, src SrcOperand) Instruction {
	return Instruction{Name: "MOV", Dst: []DstOperand{dst}, Src: []SrcOperand{src}}
}

func TestOpcode(t *testing.T) {
	for op := OpBeginLoop; op <= OpEnd; op++ {
		got, ok := LookupOpcode(op.String())
		if !ok || got != op {
			t.Errorf("LookupOpcode(%q) = %v, %v, want %v", op.String(), got, ok, op)
		}
	}
	if _, ok := LookupOpcode("MOV"); ok {
		t.Error("LookupOpcode(MOV) reported a control-flow opcode")
	}

	opens := map[Opcode]bool{
		OpBeginLoop: true, OpIf: true, OpUIf: true, OpElse: true,
		OpSwitch: true, OpCase: true, OpDefault: true,
	}
	for op := OpGeneral; op <= OpEnd; op++ {
		if got := op.IsBlockOpen(); got != opens[op] {
			t.Errorf("%v.IsBlockOpen() = %v, want %v", op, got, opens[op])
		}
	}
	if !OpCall.IsSubroutine() || !OpReturn.IsSubroutine() || OpEnd.IsSubroutine() {
		t.Error("IsSubroutine misclassifies CAL/RET/END")
	}
}

func TestFile(t *testing.T) {
	for f := FileNull; f <= FileImage; f++ {
		got, ok := LookupFile(f.String())
		if !ok || got != f {
			t.Errorf("LookupFile(%q) = %v, %v, want %v", f.String(), got, ok, f)
		}
	}
	if FileTemporary.IsOther() || FileArray.IsOther() || !FileConstant.IsOther() {
		t.Error("IsOther misclassifies files")
	}
}

func TestDstCount(t *testing.T) {
	tests := []struct {
		mnemonic string
		want     int
	}{
		{"MOV", 1},
		{"TEX", 1},
		{"DFRACEXP", 2},
		{"UMUL_EXT", 2},
		{"KILL_IF", 0},
		{"BARRIER", 0},
	}
	for _, tt := range tests {
		if got := DstCount(tt.mnemonic); got != tt.want {
			t.Errorf("DstCount(%q) = %d, want %d", tt.mnemonic, got, tt.want)
		}
	}
}

func TestStage(t *testing.T) {
	for _, stage := range []gputypes.ShaderStage{
		gputypes.ShaderStageVertex,
		gputypes.ShaderStageFragment,
		gputypes.ShaderStageCompute,
	} {
		got, ok := LookupStage(StageName(stage))
		if !ok || got != stage {
			t.Errorf("LookupStage(%q) = %v, %v, want %v", StageName(stage), got, ok, stage)
		}
	}
	if name := StageName(gputypes.ShaderStageNone); name != "" {
		t.Errorf("StageName(None) = %q, want empty", name)
	}
}

func TestClone(t *testing.T) {
	rel := tempSrc(1)
	p := &Program{
		NumTemps:   2,
		ArraySizes: []uint32{4},
		Instructions: []Instruction{
			mov(DstOperand{File: FileArray, ArrayID: 1, WriteMask: WriteMaskX, RelAddr: &rel}, inSrc(0)),
		},
	}

	c := p.Clone()
	c.ArraySizes[0] = 8
	c.Instructions[0].Dst[0].RelAddr.Index = 0
	c.Instructions[0].Src[0].Index = 3

	if p.ArraySizes[0] != 4 {
		t.Error("Clone shares ArraySizes")
	}
	if p.Instructions[0].Dst[0].RelAddr.Index != 1 {
		t.Error("Clone shares indirect operands")
	}
	if p.Instructions[0].Src[0].Index != 0 {
		t.Error("Clone shares source operands")
	}
}

func TestInstructionString(t *testing.T) {
	addr := SrcOperand{File: FileAddress, Swizzle: MakeSwizzle(CompX, CompX, CompX, CompX)}
	res := SrcOperand{File: FileBuffer, Index: 2, Swizzle: SwizzleXYZW}

	tests := []struct {
		name string
		in   Instruction
		want string
	}{
		{
			name: "general",
			in:   mov(tempDst(0, WriteMaskX|WriteMaskY), inSrc(1)),
			want: "MOV TEMP[0].xy, IN[1]",
		},
		{
			name: "control flow",
			in:   Instruction{Op: OpUIf, Src: []SrcOperand{{File: FileTemporary, Swizzle: MakeSwizzle(CompY, CompY, CompY, CompY)}}},
			want: "UIF TEMP[0].yyyy",
		},
		{
			name: "indirect",
			in: mov(
				DstOperand{File: FileArray, ArrayID: 2, Index: -1, WriteMask: WriteMaskXYZW, RelAddr: &addr},
				SrcOperand{File: FileConstant, Index: 3, Swizzle: SwizzleXYZW, RelAddr: &addr, RelAddr2: &addr},
			),
			want: "MOV ARRAY(2)[ADDR[0].xxxx-1], CONST[ADDR[0].xxxx+3][ADDR[0].xxxx]",
		},
		{
			name: "offsets and resource",
			in: Instruction{
				Name:       "LOAD",
				Dst:        []DstOperand{tempDst(1, WriteMaskXYZW)},
				Src:        []SrcOperand{tempSrc(0)},
				TexOffsets: []SrcOperand{inSrc(0), inSrc(1)},
				Resource:   &res,
			},
			want: "LOAD TEMP[1], TEMP[0] OFFSET(IN[0], IN[1]) RES(BUFFER[2])",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.in.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestProgramString(t *testing.T) {
	p := &Program{
		Name:       "p",
		Stage:      gputypes.ShaderStageVertex,
		NumTemps:   1,
		ArraySizes: []uint32{2},
		Instructions: []Instruction{
			{Op: OpBeginLoop},
			{Op: OpIf, Src: []SrcOperand{inSrc(0)}},
			mov(tempDst(0, WriteMaskXYZW), inSrc(0)),
			{Op: OpBreak},
			{Op: OpEndIf},
			{Op: OpEndLoop},
			{Op: OpEnd},
		},
	}
	want := `.name p
.stage vertex
.temps 1
.array 1 2
BGNLOOP
  IF IN[0]
    MOV TEMP[0], IN[0]
    BRK
  ENDIF
ENDLOOP
END
`
	if got := p.String(); got != want {
		t.Errorf("String() =\n%s\nwant\n%s", got, want)
	}
}
