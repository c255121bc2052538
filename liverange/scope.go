// Copyright 2026 The GoGPU Authors
// SPDX-License-Identifier: MIT

package liverange

import (
	"fmt"
	"math"
)

// scopeKind is the kind of control-flow region a scope represents.
type scopeKind uint8

const (
	scopeOuter scopeKind = iota
	scopeLoopBody
	scopeIfBranch
	scopeElseBranch
	scopeSwitchBody
	scopeSwitchCase
	scopeSwitchDefault
)

// String returns a human-readable scope kind name.
func (k scopeKind) String() string {
	switch k {
	case scopeOuter:
		return "outer"
	case scopeLoopBody:
		return "loop"
	case scopeIfBranch:
		return "if"
	case scopeElseBranch:
		return "else"
	case scopeSwitchBody:
		return "switch"
	case scopeSwitchCase:
		return "case"
	case scopeSwitchDefault:
		return "default"
	default:
		return "unknown"
	}
}

// scopeRef indexes a scope in its scopeTree.
type scopeRef int32

const noScope scopeRef = -1

// noBreak marks a loop without BRK.
const noBreak = math.MaxInt

// scope is one structured control-flow region.
type scope struct {
	kind scopeKind

	// id is shared by an if/else pair and by all case/default branches
	// of one switch.
	id    int
	depth int

	begin int
	end   int // -1 while open

	// breakLine is the first line of a BRK leaving this loop.
	breakLine int

	parent scopeRef
}

// scopeTree owns all scopes of one analysis run. Scopes reference their
// parent by index and are never freed individually.
type scopeTree struct {
	scopes []scope
}

func newScopeTree(capacity int) *scopeTree {
	return &scopeTree{scopes: make([]scope, 0, capacity)}
}

func (t *scopeTree) create(parent scopeRef, kind scopeKind, id, depth, begin int) scopeRef {
	t.scopes = append(t.scopes, scope{
		kind:      kind,
		id:        id,
		depth:     depth,
		begin:     begin,
		end:       -1,
		breakLine: noBreak,
		parent:    parent,
	})
	return scopeRef(len(t.scopes) - 1)
}

func (t *scopeTree) at(s scopeRef) *scope {
	return &t.scopes[s]
}

func (t *scopeTree) parent(s scopeRef) scopeRef {
	return t.scopes[s].parent
}

func (t *scopeTree) isLoop(s scopeRef) bool {
	return t.scopes[s].kind == scopeLoopBody
}

func (t *scopeTree) isConditional(s scopeRef) bool {
	switch t.scopes[s].kind {
	case scopeIfBranch, scopeElseBranch, scopeSwitchCase, scopeSwitchDefault:
		return true
	}
	return false
}

func (t *scopeTree) isInLoop(s scopeRef) bool {
	return t.innermostLoop(s) != noScope
}

func (t *scopeTree) innermostLoop(s scopeRef) scopeRef {
	for ; s != noScope; s = t.parent(s) {
		if t.isLoop(s) {
			return s
		}
	}
	return noScope
}

func (t *scopeTree) outermostLoop(s scopeRef) scopeRef {
	loop := noScope
	for ; s != noScope; s = t.parent(s) {
		if t.isLoop(s) {
			loop = s
		}
	}
	return loop
}

// enclosingConditional returns s itself or its nearest conditional ancestor.
func (t *scopeTree) enclosingConditional(s scopeRef) scopeRef {
	for ; s != noScope; s = t.parent(s) {
		if t.isConditional(s) {
			return s
		}
	}
	return noScope
}

// inIfElse returns s itself or its nearest if/else ancestor.
func (t *scopeTree) inIfElse(s scopeRef) scopeRef {
	for ; s != noScope; s = t.parent(s) {
		if k := t.scopes[s].kind; k == scopeIfBranch || k == scopeElseBranch {
			return s
		}
	}
	return noScope
}

// inParentIfElse is inIfElse starting at the parent of s.
func (t *scopeTree) inParentIfElse(s scopeRef) scopeRef {
	if p := t.parent(s); p != noScope {
		return t.inIfElse(p)
	}
	return noScope
}

// isChildOf reports whether other is a strict ancestor of s.
func (t *scopeTree) isChildOf(s, other scopeRef) bool {
	for p := t.parent(s); p != noScope; p = t.parent(p) {
		if p == other {
			return true
		}
	}
	return false
}

// isChildOfIfElseIDSibling reports whether s is nested in the if/else
// sibling of other (same id, different scope) rather than in other itself.
func (t *scopeTree) isChildOfIfElseIDSibling(s, other scopeRef) bool {
	for p := t.inParentIfElse(s); p != noScope; p = t.inParentIfElse(p) {
		if p == other {
			return false
		}
		if t.scopes[p].id == t.scopes[other].id {
			return true
		}
	}
	return false
}

func (t *scopeTree) containsRangeOf(s, other scopeRef) bool {
	a, b := &t.scopes[s], &t.scopes[other]
	return a.begin <= b.begin && a.end >= b.end
}

func (t *scopeTree) isSwitchCaseInLoop(s scopeRef) bool {
	k := t.scopes[s].kind
	return (k == scopeSwitchCase || k == scopeSwitchDefault) && t.isInLoop(s)
}

// breakIsForSwitchCase reports whether a BRK in s leaves a switch case
// rather than a loop: the nearest breakable ancestor decides.
func (t *scopeTree) breakIsForSwitchCase(s scopeRef) bool {
	for ; s != noScope; s = t.parent(s) {
		switch t.scopes[s].kind {
		case scopeLoopBody:
			return false
		case scopeSwitchBody, scopeSwitchCase, scopeSwitchDefault:
			return true
		}
	}
	return false
}

// setLoopBreakLine records a BRK on the innermost loop enclosing s.
func (t *scopeTree) setLoopBreakLine(s scopeRef, line int) {
	if loop := t.innermostLoop(s); loop != noScope {
		t.scopes[loop].breakLine = min(t.scopes[loop].breakLine, line)
	}
}

func (t *scopeTree) setEnd(s scopeRef, line int) {
	t.scopes[s].end = line
}

func (t *scopeTree) describe(s scopeRef) string {
	sc := &t.scopes[s]
	return fmt.Sprintf("%s#%d[%d,%d]@%d", sc.kind, sc.id, sc.begin, sc.end, sc.depth)
}
