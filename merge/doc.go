// Copyright 2026 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package merge plans the coalescing of temporaries and arrays whose live
// ranges allow them to share storage.
//
// Registers merges temporaries with disjoint live ranges into shared slots.
// Arrays merges arrays with disjoint live ranges and interleaves arrays with
// overlapping live ranges whose used components fit into one 4-component
// array, producing a swizzle map per merged array.
//
// The planners only produce remapping tables; package remap applies them to
// a program.
package merge
