// Copyright 2026 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package remap rewrites a program according to register and array merge
// plans.
package remap

import (
	"fmt"

	"github.com/gogpu/regmerge/ir"
	"github.com/gogpu/regmerge/merge"
)

// Apply returns a copy of p with temporaries renamed through regs and arrays
// retargeted through arrays. A nil regs or arrays leaves that file alone.
// When any temporary is renamed, NumTemps shrinks to one past the highest
// temporary still referenced.
//
// Every operand is rewritten, including texture offsets, the resource operand
// and indirect addresses at any depth. Array destinations get their writemask
// mapped; when a single-destination instruction writes relocated array
// components, the lanes of its sources are moved along with them.
func Apply(p *ir.Program, regs []merge.RegisterRemap, arrays *merge.ArrayPlan) *ir.Program {
	out := p.Clone()

	r := &remapper{regs: regs}
	if arrays != nil && arrays.Changed() {
		r.arrays = arrays
	}
	if len(r.regs) != 0 && len(r.regs) != p.NumTemps {
		panic(fmt.Sprintf("remap: %d register remaps for %d temporaries", len(r.regs), p.NumTemps))
	}
	if !renamesAny(r.regs) {
		r.regs = nil
	}

	for i := range out.Instructions {
		r.instruction(&out.Instructions[i])
	}

	if r.renamed {
		out.NumTemps = r.maxTemp + 1
	}
	if r.arrays != nil {
		out.ArraySizes = append([]uint32(nil), r.arrays.Sizes...)
	}
	return out
}

func renamesAny(regs []merge.RegisterRemap) bool {
	for _, m := range regs {
		if m.Valid {
			return true
		}
	}
	return false
}

type remapper struct {
	regs    []merge.RegisterRemap
	arrays  *merge.ArrayPlan
	renamed bool
	maxTemp int
}

func (r *remapper) instruction(in *ir.Instruction) {
	if r.arrays != nil && len(in.Dst) == 1 && in.Dst[0].File == ir.FileArray {
		if m, ok := r.arrayRemap(in.Dst[0].ArrayID); ok && m.MovesComponents() {
			for i := range in.Src {
				in.Src[i].Swizzle = m.MoveReadSwizzle(in.Src[i].Swizzle)
			}
		}
	}

	for i := range in.Src {
		r.src(&in.Src[i])
	}
	for i := range in.TexOffsets {
		r.src(&in.TexOffsets[i])
	}
	for i := range in.Dst {
		r.dst(&in.Dst[i])
	}
	if in.Resource != nil {
		r.src(in.Resource)
	}
}

func (r *remapper) src(s *ir.SrcOperand) {
	switch s.File {
	case ir.FileTemporary:
		s.Index = r.temp(s.Index)
	case ir.FileArray:
		if m, ok := r.arrayRemap(s.ArrayID); ok {
			s.ArrayID = m.Target
			s.Swizzle = m.MapSwizzle(s.Swizzle)
		}
	}
	if s.RelAddr != nil {
		r.src(s.RelAddr)
	}
	if s.RelAddr2 != nil {
		r.src(s.RelAddr2)
	}
}

func (r *remapper) dst(d *ir.DstOperand) {
	switch d.File {
	case ir.FileTemporary:
		d.Index = r.temp(d.Index)
	case ir.FileArray:
		if m, ok := r.arrayRemap(d.ArrayID); ok {
			d.ArrayID = m.Target
			d.WriteMask = m.MapWriteMask(d.WriteMask)
		}
	}
	if d.RelAddr != nil {
		r.src(d.RelAddr)
	}
	if d.RelAddr2 != nil {
		r.src(d.RelAddr2)
	}
}

func (r *remapper) temp(index int) int {
	if len(r.regs) == 0 {
		return index
	}
	if index < 0 || index >= len(r.regs) {
		panic(fmt.Sprintf("remap: temporary %d out of range [0,%d)", index, len(r.regs)))
	}
	if m := r.regs[index]; m.Valid {
		index = m.Target
	}
	r.renamed = true
	r.maxTemp = max(r.maxTemp, index)
	return index
}

func (r *remapper) arrayRemap(id uint32) (merge.ArrayRemap, bool) {
	if r.arrays == nil {
		return merge.ArrayRemap{}, false
	}
	if id == 0 || int(id) > len(r.arrays.Remaps) {
		panic(fmt.Sprintf("remap: array %d out of range [1,%d]", id, len(r.arrays.Remaps)))
	}
	m := r.arrays.Remaps[id-1]
	if m.Target == 0 {
		return m, false
	}
	return m, true
}
