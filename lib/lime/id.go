// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package lime

import "github.com/google/uuid"

// NewID returns a random envelope identifier. Command responses are
// correlated to requests by this value.
func NewID() string {
	return uuid.NewString()
}
