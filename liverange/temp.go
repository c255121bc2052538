// Copyright 2026 The GoGPU Authors
// SPDX-License-Identifier: MIT

package liverange

import (
	"math"

	"github.com/gogpu/regmerge/ir"
)

// componentAccess tracks the accesses of one scalar component of a
// temporary.
type componentAccess struct {
	firstWrite int
	lastWrite  int
	firstRead  int
	lastRead   int

	firstWriteScope scopeRef
	firstReadScope  scopeRef
	lastReadScope   scopeRef

	cond conditionality

	// ifWriteFlags has bit n set while the component was written in an if
	// branch at if/else nesting level n but not yet in the matching else.
	ifWriteFlags  uint64
	nextIfElseLvl int

	// unpairedIf is the last if branch written without a write in the
	// corresponding else branch.
	unpairedIf scopeRef

	// writtenInElse resolves read-before-write inside the current else.
	writtenInElse bool
}

func newComponentAccess() componentAccess {
	return componentAccess{
		firstWrite:      -1,
		lastWrite:       -1,
		firstRead:       math.MaxInt,
		lastRead:        -1,
		firstWriteScope: noScope,
		firstReadScope:  noScope,
		lastReadScope:   noScope,
		cond:            untouched,
		unpairedIf:      noScope,
	}
}

func (a *componentAccess) recordWrite(t *scopeTree, line int, s scopeRef, maxNesting int) {
	a.lastWrite = line

	if a.firstWrite < 0 {
		a.firstWrite = line
		a.firstWriteScope = s

		// A first write outside of any branch, or in a branch that is not
		// inside a loop, dominates all later reads.
		c := t.enclosingConditional(s)
		if c == noScope || t.innermostLoop(c) == noScope {
			a.cond = unconditional
		}
	}

	if a.cond.settled() {
		return
	}

	if a.nextIfElseLvl >= maxNesting {
		a.cond = conditional
		return
	}

	ifelse := t.inIfElse(s)
	if ifelse == noScope {
		return
	}
	if loop := t.innermostLoop(ifelse); loop != noScope && !a.cond.resolvedIn(t.at(loop).id) {
		a.recordIfElseWrite(t, ifelse)
	}
}

func (a *componentAccess) recordIfElseWrite(t *scopeTree, s scopeRef) {
	if t.at(s).kind == scopeIfBranch {
		a.cond = unresolved
		a.writtenInElse = false
		a.recordIfWrite(t, s)
	} else {
		a.writtenInElse = true
		a.recordElseWrite(t, s)
	}
}

func (a *componentAccess) recordIfWrite(t *scopeTree, s scopeRef) {
	// Only the first write in an if branch counts, unless the branch is
	// nested in the else sibling of the branch written last: that write may
	// complete the pair one level up.
	if a.unpairedIf == noScope ||
		(t.at(a.unpairedIf).id != t.at(s).id && t.isChildOfIfElseIDSibling(s, a.unpairedIf)) {
		a.ifWriteFlags |= 1 << uint(a.nextIfElseLvl)
		a.unpairedIf = s
		a.nextIfElseLvl++
	}
}

func (a *componentAccess) recordElseWrite(t *scopeTree, s scopeRef) {
	if a.nextIfElseLvl == 0 || a.unpairedIf == noScope {
		a.cond = conditional
		return
	}

	mask := uint64(1) << uint(a.nextIfElseLvl-1)
	if a.ifWriteFlags&mask == 0 || t.at(s).id != t.at(a.unpairedIf).id {
		// No write in the if branch that belongs to this else.
		a.cond = conditional
		return
	}

	a.nextIfElseLvl--
	a.ifWriteFlags &^= mask

	// Both branches write: the pair acts like a single write in the parent
	// scope. If the parent is itself an if/else branch with a pending write
	// one level up, resolution continues there.
	parentIfElse := t.inParentIfElse(s)
	if a.nextIfElseLvl > 0 && a.ifWriteFlags&(1<<uint(a.nextIfElseLvl-1)) != 0 {
		a.unpairedIf = parentIfElse
	} else {
		a.unpairedIf = noScope
	}

	a.firstWriteScope = t.parent(s)

	if parentIfElse != noScope && t.isInLoop(parentIfElse) {
		a.recordIfElseWrite(t, parentIfElse)
		return
	}
	if loop := t.innermostLoop(s); loop != noScope {
		a.cond = unconditionalIn(t.at(loop).id)
	} else {
		a.cond = unconditional
	}
}

func (a *componentAccess) recordRead(t *scopeTree, line int, s scopeRef) {
	a.lastReadScope = s
	a.lastRead = line

	if a.firstRead > line {
		a.firstRead = line
		a.firstReadScope = s
	}

	if a.cond.settled() {
		return
	}

	ifelse := t.inIfElse(s)
	if ifelse == noScope {
		return
	}
	loop := t.innermostLoop(ifelse)
	if loop == noScope || a.cond.resolvedIn(t.at(loop).id) {
		return
	}

	if a.unpairedIf != noScope {
		// Written in this branch or an enclosing one before the read.
		if t.isChildOf(s, a.unpairedIf) {
			return
		}
		if t.at(ifelse).kind == scopeIfBranch {
			if t.at(a.unpairedIf).id == t.at(s).id {
				return
			}
		} else if a.writtenInElse {
			return
		}
	}

	// Read before the write in a branch inside a loop: the value of the
	// previous iteration may be read.
	a.cond = conditional
}

// liveRange resolves the minimal live range of the component.
func (a *componentAccess) liveRange(t *scopeTree) RegisterRange {
	if a.firstWriteScope == noScope {
		return unusedRange
	}
	if a.lastReadScope == noScope {
		return RegisterRange{Begin: a.firstWrite, End: a.lastWrite + 1}
	}

	firstWrite := a.firstWrite
	lastRead := a.lastRead
	firstWriteScope := a.firstWriteScope
	lastReadScope := a.lastReadScope

	keepForFullLoop := false
	enclosingFirstRead := a.firstReadScope
	enclosingFirstWrite := a.firstWriteScope

	// Read before write inside a loop: the value must survive the loop.
	if a.firstRead <= a.firstWrite && t.isInLoop(a.firstReadScope) {
		keepForFullLoop = true
		enclosingFirstRead = t.outermostLoop(a.firstReadScope)
	}

	// A conditional write in a loop must survive the outermost loop if the
	// last read is not inside the same branch.
	if c := t.enclosingConditional(enclosingFirstWrite); c != noScope &&
		!t.containsRangeOf(c, lastReadScope) &&
		(t.isSwitchCaseInLoop(c) || a.cond.conditionalInLoop()) {
		if loop := t.outermostLoop(c); loop != noScope {
			keepForFullLoop = true
			enclosingFirstWrite = loop
		}
	}

	// The scope shared by the first write, the first read before write and
	// the last read.
	enclosing := enclosingFirstRead
	if t.containsRangeOf(enclosingFirstWrite, enclosing) {
		enclosing = enclosingFirstWrite
	}
	if t.containsRangeOf(lastReadScope, enclosing) {
		enclosing = lastReadScope
	}
	for !t.containsRangeOf(enclosing, enclosingFirstWrite) || !t.containsRangeOf(enclosing, lastReadScope) {
		enclosing = t.parent(enclosing)
		if enclosing == noScope {
			panic("liverange: no scope encloses all accesses of a temporary")
		}
	}

	// Move the last read up to the shared scope. Leaving a loop extends the
	// range to the loop end: the loop may run again before the read.
	for t.at(enclosing).depth < t.at(lastReadScope).depth {
		if t.isLoop(lastReadScope) {
			lastRead = t.at(lastReadScope).end
		}
		lastReadScope = t.parent(lastReadScope)
	}

	propagate := func() {
		sc := t.at(firstWriteScope)
		firstWrite = sc.begin
		lastRead = max(lastRead, sc.end)
	}

	if keepForFullLoop && t.isLoop(firstWriteScope) {
		propagate()
	}

	// Move the first write up to the shared scope.
	for t.at(enclosing).depth < t.at(firstWriteScope).depth {
		// A BRK before the write may skip it on the last iteration.
		if t.at(firstWriteScope).breakLine < firstWrite {
			keepForFullLoop = true
			propagate()
		}

		firstWriteScope = t.parent(firstWriteScope)

		if keepForFullLoop && t.isLoop(firstWriteScope) {
			propagate()
		}
	}

	// A write after the last read is dead but must not be clobbered by a
	// register that starts at the same line.
	if a.lastWrite >= lastRead {
		lastRead = a.lastWrite + 1
	}

	return RegisterRange{Begin: firstWrite, End: lastRead}
}

// tempAccess tracks the four components of one temporary.
type tempAccess struct {
	comp       [4]componentAccess
	accessMask ir.WriteMask
}

func newTempAccess() tempAccess {
	var ta tempAccess
	for i := range ta.comp {
		ta.comp[i] = newComponentAccess()
	}
	return ta
}

func (ta *tempAccess) recordWrite(t *scopeTree, line int, s scopeRef, mask ir.WriteMask, maxNesting int) {
	ta.accessMask |= mask
	for c := ir.CompX; c <= ir.CompW; c++ {
		if mask.Has(c) {
			ta.comp[c].recordWrite(t, line, s, maxNesting)
		}
	}
}

func (ta *tempAccess) recordRead(t *scopeTree, line int, s scopeRef, mask ir.WriteMask) {
	ta.accessMask |= mask
	for c := ir.CompX; c <= ir.CompW; c++ {
		if mask.Has(c) {
			ta.comp[c].recordRead(t, line, s)
		}
	}
}

// liveRange is the union of the live ranges of all accessed components.
func (ta *tempAccess) liveRange(t *scopeTree) RegisterRange {
	result := unusedRange
	for c := ir.CompX; c <= ir.CompW; c++ {
		if !ta.accessMask.Has(c) {
			continue
		}
		lr := ta.comp[c].liveRange(t)
		if lr.Begin >= 0 && (result.Begin < 0 || result.Begin > lr.Begin) {
			result.Begin = lr.Begin
		}
		if lr.End > result.End {
			result.End = lr.End
		}
	}
	return result
}
