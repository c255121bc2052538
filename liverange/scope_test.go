// Copyright 2026 The GoGPU Authors
// SPDX-License-Identifier: MIT

package liverange

import "testing"

// buildTree builds
//
//	outer
//	  loop#1
//	    if#1
//	    else#1
//	      if#2
//	      switch#0
//	        case#0
//	          loop#2
func buildTree() (t *scopeTree, outer, loop, ifS, elseS, inner, sw, cs, loop2 scopeRef) {
	t = newScopeTree(8)
	outer = t.create(noScope, scopeOuter, 0, 0, 0)
	loop = t.create(outer, scopeLoopBody, 1, 1, 0)
	ifS = t.create(loop, scopeIfBranch, 1, 2, 2)
	t.setEnd(ifS, 3)
	elseS = t.create(loop, scopeElseBranch, 1, 2, 5)
	inner = t.create(elseS, scopeIfBranch, 2, 3, 6)
	t.setEnd(inner, 7)
	sw = t.create(elseS, scopeSwitchBody, 0, 3, 9)
	cs = t.create(sw, scopeSwitchCase, 0, 4, 10)
	loop2 = t.create(cs, scopeLoopBody, 2, 5, 11)
	t.setEnd(loop2, 12)
	t.setEnd(cs, 13)
	t.setEnd(sw, 14)
	t.setEnd(elseS, 15)
	t.setEnd(loop, 16)
	t.setEnd(outer, 17)
	return
}

func TestScopeTreeQueries(t *testing.T) {
	tree, outer, loop, ifS, elseS, inner, sw, cs, loop2 := buildTree()

	if got := tree.innermostLoop(inner); got != loop {
		t.Errorf("innermostLoop(inner) = %d, want %d", got, loop)
	}
	if got := tree.innermostLoop(loop2); got != loop2 {
		t.Errorf("innermostLoop(loop2) = %d, want %d", got, loop2)
	}
	if got := tree.outermostLoop(loop2); got != loop {
		t.Errorf("outermostLoop(loop2) = %d, want %d", got, loop)
	}
	if got := tree.outermostLoop(outer); got != noScope {
		t.Errorf("outermostLoop(outer) = %d, want none", got)
	}
	if got := tree.enclosingConditional(loop2); got != cs {
		t.Errorf("enclosingConditional(loop2) = %d, want %d", got, cs)
	}
	if got := tree.enclosingConditional(loop); got != noScope {
		t.Errorf("enclosingConditional(loop) = %d, want none", got)
	}
	if got := tree.inIfElse(sw); got != elseS {
		t.Errorf("inIfElse(switch) = %d, want %d", got, elseS)
	}
	if got := tree.inParentIfElse(inner); got != elseS {
		t.Errorf("inParentIfElse(inner) = %d, want %d", got, elseS)
	}
	if got := tree.inParentIfElse(ifS); got != noScope {
		t.Errorf("inParentIfElse(if) = %d, want none", got)
	}

	if !tree.isChildOf(loop2, loop) || tree.isChildOf(loop, loop2) || tree.isChildOf(loop, loop) {
		t.Error("isChildOf must test strict ancestry")
	}
	if !tree.isChildOfIfElseIDSibling(inner, ifS) {
		t.Error("inner is nested in the else sibling of if#1")
	}
	if tree.isChildOfIfElseIDSibling(inner, elseS) {
		t.Error("inner is nested in else#1 itself")
	}

	if !tree.containsRangeOf(loop, inner) || tree.containsRangeOf(inner, loop) {
		t.Error("containsRangeOf mismatch")
	}
	if !tree.isSwitchCaseInLoop(cs) || tree.isSwitchCaseInLoop(sw) {
		t.Error("isSwitchCaseInLoop mismatch")
	}
	if got := tree.at(inner).depth; got != 3 {
		t.Errorf("depth(inner) = %d, want 3", got)
	}
}

func TestBreakTarget(t *testing.T) {
	tree, _, loop, ifS, _, _, sw, cs, loop2 := buildTree()

	tests := []struct {
		name string
		s    scopeRef
		want bool
	}{
		{"if in loop", ifS, false},
		{"switch body", sw, true},
		{"case", cs, true},
		{"loop in case", loop2, false},
	}
	for _, tt := range tests {
		if got := tree.breakIsForSwitchCase(tt.s); got != tt.want {
			t.Errorf("%s: breakIsForSwitchCase = %v, want %v", tt.name, got, tt.want)
		}
	}

	tree.setLoopBreakLine(ifS, 4)
	tree.setLoopBreakLine(ifS, 3)
	tree.setLoopBreakLine(ifS, 8)
	if got := tree.at(loop).breakLine; got != 3 {
		t.Errorf("breakLine = %d, want 3", got)
	}
	if got := tree.at(loop2).breakLine; got != noBreak {
		t.Errorf("inner loop breakLine = %d, want none", got)
	}
}

func TestScopeDescribe(t *testing.T) {
	tree, _, _, _, elseS, _, _, _, _ := buildTree()
	if got, want := tree.describe(elseS), "else#1[5,15]@2"; got != want {
		t.Errorf("describe = %q, want %q", got, want)
	}
}
