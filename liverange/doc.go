// Copyright 2026 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package liverange computes the live ranges of temporaries and array
// registers in an ir.Program.
//
// # Overview
//
// The input is a flat instruction stream whose control flow is structured
// but implicit: loops, if/else and switch/case regions are delimited by
// opcodes in the stream and there is no control-flow graph. A single forward
// scan builds a tree of scopes (one per region) and, in lock-step, records
// every read and write of a temporary component or an array together with
// the line and the innermost scope of the access.
//
// From these records a live range is resolved per scalar component of every
// temporary and per array:
//
//	  0: BGNLOOP
//	  1: IF TEMP[9].x
//	  2:   MOV TEMP[2].x, IN[0]     <- conditional write
//	  3: ENDIF
//	  4: ...
//	  5: ADD OUT[0], TEMP[2].x, ...  <- may read the value of a previous iteration
//	  6: ENDLOOP
//
// A write is only dominant if it happens on every path through the enclosing
// loop iteration. Writes in an if branch are paired with writes in the
// matching else branch (transitively through nested if/else pairs); when no
// pairing completes, the write is conditional and the component must be kept
// alive for the whole loop, as in the example above where TEMP[2].x lives
// over [0, 6].
//
// # Failure
//
// Subroutine calls (CAL) and returns (RET) are not followed. A program that
// contains either is rejected with ErrUnsupportedOpcode; callers must then
// keep the original register allocation, which is always correct.
package liverange
