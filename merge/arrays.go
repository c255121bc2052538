// Copyright 2026 The GoGPU Authors
// SPDX-License-Identifier: MIT

package merge

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/gogpu/regmerge/ir"
	"github.com/gogpu/regmerge/liverange"
)

// Discarded marks a component that has no place in the target array.
const Discarded int8 = -1

// ArrayOptions configures the array planner.
type ArrayOptions struct {
	// Interleave enables packing arrays with overlapping live ranges into
	// the free components of another array.
	Interleave bool

	// Logger receives one debug record per merge decision. Nil disables
	// logging.
	Logger *slog.Logger
}

// ArrayRemap tells where an array goes.
//
// Target is the new array id, or 0 if the array keeps its id. Swizzle maps
// each component of the original array to a component of the target, or to
// Discarded.
type ArrayRemap struct {
	Target  uint32  `yaml:"target"`
	Swizzle [4]int8 `yaml:"swizzle,flow"`
	Merged  bool    `yaml:"merged"`
}

var identitySwizzle = [4]int8{0, 1, 2, 3}

// ArrayPlan is the result of the array planner.
type ArrayPlan struct {
	// Remaps has one entry per array, Remaps[i] describes array id i+1.
	Remaps []ArrayRemap

	// NumArrays is the number of arrays after merging.
	NumArrays int

	// Sizes holds the declared length of each surviving array, Sizes[i]
	// is the length of new array id i+1. Nil when nothing was merged.
	Sizes []uint32

	// Merged counts the arrays folded into another array.
	Merged int
}

// Changed reports whether the plan renumbers any array.
func (p *ArrayPlan) Changed() bool {
	return p.Merged > 0
}

// arrayRange is the planner's view of one used array.
type arrayRange struct {
	id      uint32
	length  uint32
	begin   int
	end     int
	mask    ir.WriteMask
	target  int // index into planner.ranges, -1 for a root
	swizzle [4]int8
}

func (r *arrayRange) mapped() bool {
	return r.target >= 0
}

// timeDoesntOverlap reports whether the inclusive access intervals are
// disjoint.
func (r *arrayRange) timeDoesntOverlap(o *arrayRange) bool {
	return o.begin > r.end || r.begin > o.end
}

type arrayPlanner struct {
	ranges []arrayRange
	log    *slog.Logger
}

// mergeStrategy tries to fold one of the two arrays into the other.
type mergeStrategy func(p *arrayPlanner, a, b int) bool

// Arrays plans the merging and interleaving of arrays.
//
// Used arrays are sorted by the begin of their live range and passed through
// an equal-mask merge and an interleave pass until neither changes anything,
// followed by one merge pass that ignores access masks. Surviving arrays are
// renumbered densely in begin order.
func Arrays(ranges []liverange.ArrayRange, opts ArrayOptions) ArrayPlan {
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	plan := ArrayPlan{
		Remaps:    make([]ArrayRemap, len(ranges)),
		NumArrays: len(ranges),
	}
	for i := range plan.Remaps {
		plan.Remaps[i].Swizzle = identitySwizzle
	}

	p := &arrayPlanner{log: log}
	for _, r := range ranges {
		if r.Unused() {
			continue
		}
		p.ranges = append(p.ranges, arrayRange{
			id:      r.ID,
			length:  r.Length,
			begin:   r.Begin,
			end:     r.End,
			mask:    r.AccessMask,
			target:  -1,
			swizzle: identitySwizzle,
		})
	}
	if len(p.ranges) < 2 {
		return plan
	}
	sort.SliceStable(p.ranges, func(i, j int) bool {
		if p.ranges[i].begin != p.ranges[j].begin {
			return p.ranges[i].begin < p.ranges[j].begin
		}
		return p.ranges[i].id < p.ranges[j].id
	})

	merged := 0
	for {
		n := p.run(mergeIfEqualMask, false)
		if opts.Interleave {
			n += p.run(interleaveOverlapping, true)
		}
		if n == 0 {
			break
		}
		merged += n
	}
	merged += p.run(mergeDisjoint, false)

	if merged == 0 {
		return plan
	}
	p.finalize(&plan)
	plan.Merged = merged
	return plan
}

// run applies strategy to every pair of unmapped arrays and returns the
// number of merges. With restart set it returns after the first merge.
func (p *arrayPlanner) run(strategy mergeStrategy, restart bool) int {
	n := 0
	for i := range p.ranges {
		if p.ranges[i].mapped() {
			continue
		}
		for j := i + 1; j < len(p.ranges); j++ {
			if p.ranges[j].mapped() {
				continue
			}
			if !strategy(p, i, j) {
				continue
			}
			n++
			if restart {
				return n
			}
			if p.ranges[i].mapped() {
				break
			}
		}
	}
	return n
}

func mergeIfEqualMask(p *arrayPlanner, a, b int) bool {
	if p.ranges[a].mask != p.ranges[b].mask {
		return false
	}
	return mergeDisjoint(p, a, b)
}

func mergeDisjoint(p *arrayPlanner, a, b int) bool {
	if !p.ranges[a].timeDoesntOverlap(&p.ranges[b]) {
		return false
	}
	p.merge(a, b)
	return true
}

func interleaveOverlapping(p *arrayPlanner, a, b int) bool {
	ra, rb := &p.ranges[a], &p.ranges[b]
	if ra.mask.Count()+rb.mask.Count() > 4 {
		return false
	}
	if ra.timeDoesntOverlap(rb) {
		return false
	}
	p.interleave(a, b)
	return true
}

// merge folds the shorter array into the longer one. On equal length the
// array that begins first survives.
func (p *arrayPlanner) merge(a, b int) {
	if p.ranges[a].length < p.ranges[b].length {
		a, b = b, a
	}
	p.log.Debug("merge array",
		"array", p.ranges[b].id, "into", p.ranges[a].id)
	p.ranges[a].mask |= p.ranges[b].mask
	p.mergeLiveRangeFrom(a, b)
}

// interleave packs the components of the shorter array into the free
// components of the longer one.
func (p *arrayPlanner) interleave(a, b int) {
	if p.ranges[a].length < p.ranges[b].length {
		a, b = b, a
	}
	p.interleaveInto(b, a)
	p.log.Debug("interleave array",
		"array", p.ranges[b].id, "into", p.ranges[a].id,
		"swizzle", p.ranges[b].swizzle)
}

// interleaveInto assigns every used component of src the lowest component
// still free in dst.
func (p *arrayPlanner) interleaveInto(src, dst int) {
	s, d := &p.ranges[src], &p.ranges[dst]
	for i := range s.swizzle {
		s.swizzle[i] = Discarded
	}

	used := d.mask
	k := 0
	for i := ir.CompX; i <= ir.CompW; i++ {
		if !s.mask.Has(i) {
			continue
		}
		for k < 4 && used.Has(ir.Component(k)) {
			k++
		}
		if k >= 4 {
			panic(fmt.Sprintf("merge: array %d does not fit into array %d", s.id, d.id))
		}
		s.swizzle[i] = int8(k)
		used |= 1 << k
	}
	d.mask = used
	p.mergeLiveRangeFrom(dst, src)
}

func (p *arrayPlanner) mergeLiveRangeFrom(dst, src int) {
	d, s := &p.ranges[dst], &p.ranges[src]
	s.target = dst
	d.begin = min(d.begin, s.begin)
	d.end = max(d.end, s.end)
}

// root follows the target chain of i to the array that was not merged.
func (p *arrayPlanner) root(i int) int {
	for steps := 0; p.ranges[i].mapped(); steps++ {
		if steps > len(p.ranges) {
			panic(fmt.Sprintf("merge: cycle in target chain of array %d", p.ranges[i].id))
		}
		i = p.ranges[i].target
	}
	return i
}

// remapComponent maps component c of array i through every swizzle on its
// target chain.
func (p *arrayPlanner) remapComponent(i int, c int8) int8 {
	for steps := 0; p.ranges[i].mapped() && c >= 0; steps++ {
		if steps > len(p.ranges) {
			panic(fmt.Sprintf("merge: cycle in target chain of array %d", p.ranges[i].id))
		}
		c = p.ranges[i].swizzle[c]
		i = p.ranges[i].target
	}
	return c
}

func (p *arrayPlanner) finalize(plan *ArrayPlan) {
	// Roots are numbered in the order of their merged begin. A longer
	// array may survive a merge and take over an earlier begin.
	var roots []int
	for i := range p.ranges {
		if !p.ranges[i].mapped() {
			roots = append(roots, i)
		}
	}
	sort.SliceStable(roots, func(i, j int) bool {
		a, b := &p.ranges[roots[i]], &p.ranges[roots[j]]
		if a.begin != b.begin {
			return a.begin < b.begin
		}
		return a.id < b.id
	})

	newID := make([]uint32, len(p.ranges))
	for n, i := range roots {
		newID[i] = uint32(n + 1)
		plan.Sizes = append(plan.Sizes, p.ranges[i].length)
	}
	plan.NumArrays = len(roots)

	for i := range p.ranges {
		r := &p.ranges[i]
		remap := ArrayRemap{
			Target: newID[p.root(i)],
			Merged: r.mapped(),
		}
		for c := range remap.Swizzle {
			remap.Swizzle[c] = p.remapComponent(i, int8(c))
		}
		plan.Remaps[r.id-1] = remap
	}
}

// MapWriteMask translates a destination writemask of the original array to
// the target array.
func (r ArrayRemap) MapWriteMask(mask ir.WriteMask) ir.WriteMask {
	var out ir.WriteMask
	for c := ir.CompX; c <= ir.CompW; c++ {
		if mask.Has(c) && r.Swizzle[c] >= 0 {
			out |= 1 << r.Swizzle[c]
		}
	}
	return out
}

// MapSwizzle translates a source swizzle reading the original array so that
// every lane selects the relocated component.
func (r ArrayRemap) MapSwizzle(s ir.Swizzle) ir.Swizzle {
	out := s
	for lane := range 4 {
		if c := r.Swizzle[s.Get(lane)]; c >= 0 {
			out = out.Set(lane, ir.Component(c))
		}
	}
	return out
}

// MoveReadSwizzle relocates the lanes of a source swizzle of an instruction
// whose destination components were moved by r, so that each result lane
// still feeds the same destination component.
func (r ArrayRemap) MoveReadSwizzle(s ir.Swizzle) ir.Swizzle {
	var out ir.Swizzle
	for lane := range 4 {
		if c := r.Swizzle[lane]; c >= 0 {
			out = out.Set(int(c), s.Get(lane))
		}
	}
	return out
}

// MovesComponents reports whether the remap relocates any component.
func (r ArrayRemap) MovesComponents() bool {
	for c, s := range r.Swizzle {
		if s >= 0 && int(s) != c {
			return true
		}
	}
	return false
}

// SwizzleString returns the target component of each original component,
// with '_' for discarded ones, e.g. "z_w_".
func (r ArrayRemap) SwizzleString() string {
	var b [4]byte
	for c, s := range r.Swizzle {
		if s < 0 {
			b[c] = '_'
		} else {
			b[c] = ir.Component(s).String()[0]
		}
	}
	return string(b[:])
}
