// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import "time"

// Clock reports the current time. Extensions that stamp dates into
// documents (contacts-journey entries, for one) read it from a Clock so
// tests can pin it.
type Clock interface {
	Now() time.Time
}

// Real returns the wall clock.
func Real() Clock { return wallClock{} }

type wallClock struct{}

func (wallClock) Now() time.Time { return time.Now() }
