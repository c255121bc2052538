// Copyright 2026 The GoGPU Authors
// SPDX-License-Identifier: MIT

package liverange

import (
	"fmt"

	"github.com/gogpu/regmerge/ir"
)

// recorder classifies every register reference of the scanned instructions
// as a read or a write of a temporary component or an array.
type recorder struct {
	tree       *scopeTree
	temps      []tempAccess
	arrays     []arrayAccess
	maxNesting int
}

func newRecorder(tree *scopeTree, ntemps, narrays, maxNesting int) *recorder {
	r := &recorder{
		tree:       tree,
		temps:      make([]tempAccess, ntemps),
		arrays:     make([]arrayAccess, narrays),
		maxNesting: maxNesting,
	}
	for i := range r.temps {
		r.temps[i] = newTempAccess()
	}
	for i := range r.arrays {
		r.arrays[i] = newArrayAccess()
	}
	return r
}

func (r *recorder) recordRead(src *ir.SrcOperand, line int, s scopeRef) {
	if src == nil {
		return
	}
	mask := src.Swizzle.ReadMask()

	switch src.File {
	case ir.FileTemporary:
		r.temp(src.Index).recordRead(r.tree, line, s, mask)
	case ir.FileArray:
		r.array(src.ArrayID).record(r.tree, line, s, mask, false)
	}

	r.recordRead(src.RelAddr, line, s)
	r.recordRead(src.RelAddr2, line, s)
}

// recordWrite records a destination. When the instruction has more than
// one destination an array access is recorded with the full mask: the
// components of one destination cannot be relocated without the other.
func (r *recorder) recordWrite(dst *ir.DstOperand, line int, s scopeRef, canReswizzle bool) {
	switch dst.File {
	case ir.FileTemporary:
		r.temp(dst.Index).recordWrite(r.tree, line, s, dst.WriteMask, r.maxNesting)
	case ir.FileArray:
		mask := ir.WriteMaskXYZW
		if canReswizzle {
			mask = dst.WriteMask
		}
		r.array(dst.ArrayID).record(r.tree, line, s, mask, true)
	}

	r.recordRead(dst.RelAddr, line, s)
	r.recordRead(dst.RelAddr2, line, s)
}

// recordInstruction records all operands of a general instruction.
func (r *recorder) recordInstruction(in *ir.Instruction, line int, s scopeRef) {
	for i := range in.Src {
		r.recordRead(&in.Src[i], line, s)
	}
	for i := range in.TexOffsets {
		r.recordRead(&in.TexOffsets[i], line, s)
	}
	for i := range in.Dst {
		r.recordWrite(&in.Dst[i], line, s, len(in.Dst) == 1)
	}
	r.recordRead(in.Resource, line, s)
}

func (r *recorder) temp(index int) *tempAccess {
	if index < 0 || index >= len(r.temps) {
		panic(fmt.Sprintf("liverange: temporary %d out of range [0, %d)", index, len(r.temps)))
	}
	return &r.temps[index]
}

func (r *recorder) array(id uint32) *arrayAccess {
	if id == 0 || int(id) > len(r.arrays) {
		panic(fmt.Sprintf("liverange: array id %d out of range [1, %d]", id, len(r.arrays)))
	}
	return &r.arrays[id-1]
}
