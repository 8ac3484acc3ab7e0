// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package transport

import (
	"context"

	"github.com/bureau-foundation/blip/lib/lime"
)

// Sender dispatches envelopes to the platform. Implementations must be
// safe for concurrent use.
type Sender interface {
	// ProcessCommand sends a command and returns the platform's
	// response command. A response with status "failure" is returned
	// with a nil error; interpreting it is the caller's job.
	ProcessCommand(ctx context.Context, command *lime.Command) (*lime.Command, error)

	// SendCommand sends a command without waiting for its response.
	SendCommand(ctx context.Context, command *lime.Command) error

	// SendMessage delivers a message.
	SendMessage(ctx context.Context, message *lime.Message) error

	// SendNotification delivers a notification.
	SendNotification(ctx context.Context, notification *lime.Notification) error
}

// Envelope kinds, used in socket frames and metric labels.
const (
	KindCommand      = "command"
	KindMessage      = "message"
	KindNotification = "notification"
)
