// Package asm parses the textual assembly form of the shader IR.
//
// The format is line oriented. Each line holds one directive or one
// instruction; '#' starts a comment running to the end of the line.
//
//	.name blur
//	.stage fragment
//	.temps 4
//	.array 1 8
//	MOV TEMP[0].x, IN[0].xxxx
//	MOV ARRAY(1)[ADDR[0].x+2].zw, TEMP[0].xxxx
//	IF TEMP[0].xxxx
//	  TEX TEMP[1], TEMP[0].xyyy, SAMP[0] OFFSET(TEMP[2].xyyy)
//	ENDIF
//	END
//
// Destination suffixes are writemasks; source suffixes are swizzles of one
// to four components where a short swizzle repeats its last component
// (".x" reads "xxxx"). Control-flow mnemonics (BGNLOOP, IF, SWITCH, ...)
// map to their opcodes; every other mnemonic is a general instruction whose
// leading operands are destinations, as many as ir.DstCount reports.
//
// The .temps and .array directives are optional. Without them the number of
// temporaries and the array lengths are inferred from the highest index used.
//
// Program.String in package ir prints this format, so
//
//	p2, err := asm.Parse(p.String())
//
// yields a program equal to p.
package asm
