// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package secret holds authorization keys outside the Go heap.
//
// A [Buffer] is an anonymous mmap region locked into RAM (mlock) and
// excluded from core dumps (MADV_DONTDUMP). Close zeros, unlocks and
// unmaps it. Senders keep the platform authorization key in a Buffer and
// convert it to a string only at the moment a request header is written.
//
// Constructors: [NewFromBytes] copies and zeros its source; [ReadFile]
// loads a key file (or stdin for "-") with surrounding whitespace
// trimmed.
//
// Depends on golang.org/x/sys/unix.
package secret
