// Package ir defines the shader instruction IR analysed by regmerge.
//
// The IR is a flat, already-translated instruction list in the style of a
// register-based shader assembly:
//   - Flat: There is no control-flow graph. Structured control flow is
//     expressed by block-opening and block-closing opcodes (BGNLOOP/ENDLOOP,
//     IF/ELSE/ENDIF, SWITCH/CASE/DEFAULT/ENDSWITCH) embedded in the stream.
//   - Register based: Operands reference virtual registers by file and index.
//     Temporaries are 4-component vectors whose components live independently;
//     arrays are groups of registers addressed as a whole, usually indirectly.
//   - Line indexed: The position of an instruction in Program.Instructions is
//     its line. All live ranges are expressed in lines.
//
// # Structure
//
// A Program holds:
//   - NumTemps: The number of temporaries (TEMP[0] .. TEMP[NumTemps-1])
//   - ArraySizes: The declared length of every array (array id i+1 has
//     length ArraySizes[i]; array ids are 1-based)
//   - Instructions: The instruction stream, terminated by END
//
// Each Instruction has up to two destination operands, up to four source
// operands, optional texture-offset operands and an optional resource operand.
// Source and destination operands may carry one or two indirect-address
// sub-operands, which are themselves source operands.
//
// # Text Form
//
// Program.String prints the assembly text accepted by the asm package, so a
// program can be dumped, edited and parsed back.
package ir
