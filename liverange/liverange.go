// Copyright 2026 The GoGPU Authors
// SPDX-License-Identifier: MIT

package liverange

import (
	"fmt"
	"log/slog"

	"github.com/gogpu/regmerge/ir"
)

// DefaultMaxIfElseNesting is the deepest if/else nesting inside a loop at
// which conditional writes are still paired. Deeper writes are treated as
// conditional.
const DefaultMaxIfElseNesting = 32

// maxIfElseNestingLimit is the number of bits in componentAccess.ifWriteFlags.
const maxIfElseNestingLimit = 64

// Options configures the analysis.
type Options struct {
	// MaxIfElseNesting bounds if/else write pairing. Zero selects
	// DefaultMaxIfElseNesting; values above 64 are clamped.
	MaxIfElseNesting int

	// Logger receives debug records for scopes and resolved ranges.
	// Nil disables logging.
	Logger *slog.Logger
}

// RegisterRange is the live range of a temporary: the value must be
// preserved from Begin up to End. (-1, -1) marks an unused register.
type RegisterRange struct {
	Begin int `yaml:"begin"`
	End   int `yaml:"end"`
}

var unusedRange = RegisterRange{Begin: -1, End: -1}

// Unused reports whether the register is never written.
func (r RegisterRange) Unused() bool {
	return r.Begin < 0
}

// String returns "(begin,end)".
func (r RegisterRange) String() string {
	return fmt.Sprintf("(%d,%d)", r.Begin, r.End)
}

// ArrayRange is the live range of an array: it is accessed from Begin to
// End inclusive. AccessMask is the union of all accessed components.
type ArrayRange struct {
	ID         uint32       `yaml:"id"`
	Length     uint32       `yaml:"length"`
	Begin      int          `yaml:"begin"`
	End        int          `yaml:"end"`
	AccessMask ir.WriteMask `yaml:"mask"`
}

// Unused reports whether the array is never accessed.
func (r ArrayRange) Unused() bool {
	return r.Begin < 0
}

// UsedComponents returns the number of accessed components.
func (r ArrayRange) UsedComponents() int {
	return r.AccessMask.Count()
}

// Ranges holds the result of one analysis run.
type Ranges struct {
	// Registers has one entry per temporary.
	Registers []RegisterRange

	// Arrays has one entry per array, Arrays[i] describes array id i+1.
	Arrays []ArrayRange
}

// analysisContext is the state of one forward scan: the scope tree being
// built, the current scope and the per-kind id counters.
type analysisContext struct {
	tree     *scopeTree
	rec      *recorder
	cur      scopeRef
	line     int
	loopID   int
	ifID     int
	switchID int
	log      *slog.Logger
}

// Compute runs the live-range analysis over p.
//
// It returns an *UnsupportedOpcodeError (matching ErrUnsupportedOpcode) if
// the program contains a subroutine call or return; no ranges are produced
// in that case.
func Compute(p *ir.Program, opts Options) (*Ranges, error) {
	if p == nil {
		return nil, fmt.Errorf("liverange: program is nil")
	}

	maxNesting := opts.MaxIfElseNesting
	switch {
	case maxNesting <= 0:
		maxNesting = DefaultMaxIfElseNesting
	case maxNesting > maxIfElseNestingLimit:
		maxNesting = maxIfElseNestingLimit
	}
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	// Count scopes up front so the arena never grows, and reject
	// subroutines before any state is built.
	nScopes := 1
	for line := range p.Instructions {
		op := p.Instructions[line].Op
		if op.IsSubroutine() {
			return nil, &UnsupportedOpcodeError{Line: line, Op: op}
		}
		if op.IsBlockOpen() {
			nScopes++
		}
	}

	tree := newScopeTree(nScopes)
	ctx := &analysisContext{
		tree:   tree,
		rec:    newRecorder(tree, p.NumTemps, p.NumArrays(), maxNesting),
		loopID: 1,
		ifID:   1,
		log:    log,
	}
	ctx.cur = tree.create(noScope, scopeOuter, 0, 0, 0)

	ctx.scan(p.Instructions)

	ranges := &Ranges{
		Registers: make([]RegisterRange, p.NumTemps),
		Arrays:    make([]ArrayRange, p.NumArrays()),
	}
	for i := range ctx.rec.temps {
		ranges.Registers[i] = ctx.rec.temps[i].liveRange(tree)
		if !ranges.Registers[i].Unused() {
			log.Debug("temporary live range", "temp", i, "range", ranges.Registers[i].String())
		}
	}
	for i := range ctx.rec.arrays {
		acc := &ctx.rec.arrays[i]
		begin, end := acc.liveRange(tree)
		ranges.Arrays[i] = ArrayRange{
			ID:         uint32(i + 1),
			Length:     p.ArraySizes[i],
			Begin:      begin,
			End:        end,
			AccessMask: acc.mask,
		}
		log.Debug("array live range", "array", i+1, "begin", begin, "end", end, "mask", acc.mask.String())
	}
	return ranges, nil
}

// scan builds the scope tree and records all accesses in one pass.
//
//nolint:gocyclo,cyclop // One case per control-flow opcode
func (c *analysisContext) scan(instructions []ir.Instruction) {
	t := c.tree
	atEnd := false

	for line := range instructions {
		c.line = line
		in := &instructions[line]

		switch in.Op {
		case ir.OpBeginLoop:
			c.open(c.cur, scopeLoopBody, c.loopID, t.at(c.cur).depth+1, line)
			c.loopID++

		case ir.OpEndLoop:
			c.close(line)

		case ir.OpIf, ir.OpUIf:
			c.readSources(in, c.cur)
			c.open(c.cur, scopeIfBranch, c.ifID, t.at(c.cur).depth+1, line+1)
			c.ifID++

		case ir.OpElse:
			ifScope := c.cur
			if t.at(ifScope).kind != scopeIfBranch {
				panic(fmt.Sprintf("liverange: line %d: ELSE outside of IF", line))
			}
			t.setEnd(ifScope, line-1)
			c.cur = t.parent(ifScope)
			c.open(c.cur, scopeElseBranch, t.at(ifScope).id, t.at(ifScope).depth, line+1)

		case ir.OpEndIf:
			c.close(line - 1)

		case ir.OpSwitch:
			// The selector is read before the switch is entered.
			c.readSources(in, c.cur)
			c.open(c.cur, scopeSwitchBody, c.switchID, t.at(c.cur).depth+1, line)
			c.switchID++

		case ir.OpCase, ir.OpDefault:
			switchScope := c.switchScope()
			if in.Op == ir.OpCase {
				c.readSources(in, switchScope)
			}
			// The previous case falls through if it was not closed by BRK.
			if c.cur != switchScope && t.at(c.cur).end < 0 {
				t.setEnd(c.cur, line-1)
			}
			kind := scopeSwitchCase
			if in.Op == ir.OpDefault {
				kind = scopeSwitchDefault
			}
			c.open(switchScope, kind, t.at(switchScope).id, t.at(switchScope).depth+1, line)

		case ir.OpEndSwitch:
			if k := t.at(c.cur).kind; k == scopeSwitchCase || k == scopeSwitchDefault {
				if t.at(c.cur).end < 0 {
					t.setEnd(c.cur, line-1)
				}
				c.cur = t.parent(c.cur)
			}
			c.close(line)

		case ir.OpBreak:
			if t.breakIsForSwitchCase(c.cur) {
				if k := t.at(c.cur).kind; (k == scopeSwitchCase || k == scopeSwitchDefault) && t.at(c.cur).end < 0 {
					t.setEnd(c.cur, line-1)
				}
			} else {
				t.setLoopBreakLine(c.cur, line)
			}

		case ir.OpEnd:
			c.closeAll(line)
			atEnd = true

		default:
			c.rec.recordInstruction(in, line, c.cur)
		}

		if atEnd {
			break
		}
	}

	// A stream without END still closes every open region.
	if !atEnd {
		c.closeAll(max(len(instructions)-1, 0))
	}
}

// open creates a scope and makes it current.
func (c *analysisContext) open(parent scopeRef, kind scopeKind, id, depth, begin int) {
	c.cur = c.tree.create(parent, kind, id, depth, begin)
	c.log.Debug("scope opened", "line", c.line, "scope", c.tree.describe(c.cur))
}

// close ends the current scope at line and returns to its parent.
func (c *analysisContext) close(line int) {
	c.tree.setEnd(c.cur, line)
	c.log.Debug("scope closed", "line", c.line, "scope", c.tree.describe(c.cur))
	parent := c.tree.parent(c.cur)
	if parent == noScope {
		panic(fmt.Sprintf("liverange: line %d: unbalanced block end", c.line))
	}
	c.cur = parent
}

// closeAll ends the current scope and every open ancestor at line.
func (c *analysisContext) closeAll(line int) {
	for s := c.cur; s != noScope; s = c.tree.parent(s) {
		if c.tree.at(s).end < 0 {
			c.tree.setEnd(s, line)
		}
	}
}

// switchScope returns the switch body that a CASE or DEFAULT belongs to.
func (c *analysisContext) switchScope() scopeRef {
	s := c.cur
	if c.tree.at(s).kind != scopeSwitchBody {
		s = c.tree.parent(s)
	}
	if s == noScope || c.tree.at(s).kind != scopeSwitchBody {
		panic(fmt.Sprintf("liverange: line %d: CASE outside of SWITCH", c.line))
	}
	return s
}

func (c *analysisContext) readSources(in *ir.Instruction, s scopeRef) {
	for i := range in.Src {
		c.rec.recordRead(&in.Src[i], c.line, s)
	}
}
