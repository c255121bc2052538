// Copyright 2026 The GoGPU Authors
// SPDX-License-Identifier: MIT

package liverange

import (
	"errors"
	"fmt"

	"github.com/gogpu/regmerge/ir"
)

// ErrUnsupportedOpcode is reported for programs the analysis cannot follow.
// Callers must keep the original register allocation.
var ErrUnsupportedOpcode = errors.New("unsupported opcode")

// UnsupportedOpcodeError locates the instruction that aborted the analysis.
type UnsupportedOpcodeError struct {
	Line int
	Op   ir.Opcode
}

// Error implements the error interface.
func (e *UnsupportedOpcodeError) Error() string {
	return fmt.Sprintf("line %d: %s: subroutines are not followed by register analysis", e.Line, e.Op)
}

// Unwrap makes errors.Is(err, ErrUnsupportedOpcode) hold.
func (e *UnsupportedOpcodeError) Unwrap() error {
	return ErrUnsupportedOpcode
}
