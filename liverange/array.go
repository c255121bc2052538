// Copyright 2026 The GoGPU Authors
// SPDX-License-Identifier: MIT

package liverange

import (
	"github.com/gogpu/regmerge/ir"
)

// arrayAccess tracks the accesses of one array as a whole.
type arrayAccess struct {
	firstAccess      int
	lastAccess       int
	firstAccessScope scopeRef
	lastAccessScope  scopeRef
	mask             ir.WriteMask

	// conditionalInLoop is set by any access in an if/else branch inside
	// a loop.
	conditionalInLoop bool

	// readFirstInLoop is set when the array is read inside a loop before
	// any write. The read may see the value of the previous iteration.
	readFirstInLoop bool
	written         bool
}

func newArrayAccess() arrayAccess {
	return arrayAccess{
		firstAccess:      -1,
		lastAccess:       -1,
		firstAccessScope: noScope,
		lastAccessScope:  noScope,
	}
}

func (a *arrayAccess) record(t *scopeTree, line int, s scopeRef, mask ir.WriteMask, write bool) {
	if a.firstAccessScope == noScope {
		a.firstAccess = line
		a.firstAccessScope = s
	}
	a.lastAccessScope = s
	a.lastAccess = line
	a.mask |= mask
	if t.inIfElse(s) != noScope && t.innermostLoop(s) != noScope {
		a.conditionalInLoop = true
	}
	if write {
		a.written = true
	} else if !a.written && t.innermostLoop(s) != noScope {
		a.readFirstInLoop = true
	}
}

// liveRange resolves the live range [first, last] of the array. Unlike
// temporaries the end is the last accessing line itself.
func (a *arrayAccess) liveRange(t *scopeTree) (begin, end int) {
	first, last := a.firstAccess, a.lastAccess
	shared, other := a.firstAccessScope, a.lastAccessScope
	if shared == noScope {
		return first, last
	}

	// An array kept alive across iterations spans the whole outermost loop,
	// even when all its accesses share one scope.
	if a.conditionalInLoop || a.readFirstInLoop {
		if loop := t.outermostLoop(shared); loop != noScope {
			shared = loop
		} else if loop := t.outermostLoop(other); loop != noScope {
			other = loop
		}
		first = min(first, t.at(shared).begin)
		last = max(last, t.at(shared).end)
	}

	if shared == other {
		return first, last
	}
	if t.containsRangeOf(other, shared) {
		shared = other
	} else {
		for !t.containsRangeOf(shared, other) {
			if t.isLoop(shared) {
				last = max(last, t.at(shared).end)
			}
			shared = t.parent(shared)
			if shared == noScope {
				panic("liverange: no scope encloses all accesses of an array")
			}
		}
	}

	for other != shared {
		if t.isLoop(other) {
			last = max(last, t.at(other).end)
		}
		other = t.parent(other)
		if other == noScope {
			panic("liverange: array access scope is not nested in the shared scope")
		}
	}

	return first, last
}
