// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock abstracts the current time for testability.
//
// Extensions stamp timestamps into outbound resources (journey storage
// dates, schedule times relative to now). Production code injects
// [Real]; tests inject [Fake] and control the reading explicitly.
package clock
