// Copyright 2026 The GoGPU Authors
// SPDX-License-Identifier: MIT

package liverange

import "strconv"

// condKind is the resolution state of the first write of a component.
type condKind uint8

const (
	// condUntouched: not written in an if/else branch inside a loop yet.
	condUntouched condKind = iota

	// condUnresolved: written in an if branch inside a loop, the matching
	// else branch has not written it (yet).
	condUnresolved

	// condConditional: the dominant write may be skipped by an iteration.
	condConditional

	// condUnconditional: the write happens on every path, either globally
	// (loopID 0) or within the loop with the given id.
	condUnconditional
)

// String returns a human-readable state name.
func (k condKind) String() string {
	switch k {
	case condUntouched:
		return "untouched"
	case condUnresolved:
		return "unresolved"
	case condConditional:
		return "conditional"
	case condUnconditional:
		return "unconditional"
	default:
		return "unknown"
	}
}

// conditionality is the tagged state Untouched | Unresolved | Conditional |
// Unconditional(loopID). Loop ids start at 1, so loopID 0 of an
// Unconditional state means the write dominates regardless of any loop.
type conditionality struct {
	kind   condKind
	loopID int
}

var (
	untouched     = conditionality{kind: condUntouched}
	unresolved    = conditionality{kind: condUnresolved}
	conditional   = conditionality{kind: condConditional}
	unconditional = conditionality{kind: condUnconditional}
)

func unconditionalIn(loopID int) conditionality {
	return conditionality{kind: condUnconditional, loopID: loopID}
}

// settled reports whether no later access can change the state.
func (c conditionality) settled() bool {
	return c.kind == condConditional || (c.kind == condUnconditional && c.loopID == 0)
}

// resolvedIn reports whether the write was resolved as unconditional for
// the loop with the given id.
func (c conditionality) resolvedIn(loopID int) bool {
	return c.kind == condUnconditional && c.loopID == loopID
}

// conditionalInLoop reports whether the write inside a loop is conditional
// or could not be resolved.
func (c conditionality) conditionalInLoop() bool {
	return c.kind == condConditional || c.kind == condUnresolved
}

func (c conditionality) String() string {
	if c.kind == condUnconditional && c.loopID != 0 {
		return "unconditional(loop " + strconv.Itoa(c.loopID) + ")"
	}
	return c.kind.String()
}
