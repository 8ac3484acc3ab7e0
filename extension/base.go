// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package extension

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"reflect"

	"github.com/bureau-foundation/blip/lib/clock"
	"github.com/bureau-foundation/blip/lib/lime"
	"github.com/bureau-foundation/blip/transport"
)

// Config is the construction input shared by every extension.
type Config struct {
	// Sender dispatches commands and messages. Required.
	Sender transport.Sender

	// To overrides the extension's default destination node.
	To lime.Node

	// Logger receives dispatch logs at debug level. Defaults to
	// slog.Default().
	Logger *slog.Logger

	// Clock stamps times into documents. Defaults to the wall clock.
	Clock clock.Clock
}

// Base carries an extension's sender and destination and builds and
// dispatches its commands. Its fields are fixed at construction, so a
// Base is safe for concurrent use.
type Base struct {
	sender transport.Sender
	to     lime.Node
	logger *slog.Logger
	clock  clock.Clock
}

// NewBase resolves config against the extension's default destination.
func NewBase(config Config, defaultTo lime.Node) (Base, error) {
	if config.Sender == nil {
		return Base{}, fmt.Errorf("extension: sender is required")
	}
	base := Base{
		sender: config.Sender,
		to:     config.To,
		logger: config.Logger,
		clock:  config.Clock,
	}
	if base.to.IsZero() {
		base.to = defaultTo
	}
	if base.logger == nil {
		base.logger = slog.Default()
	}
	if base.clock == nil {
		base.clock = clock.Real()
	}
	return base, nil
}

// To returns the destination node of the extension's commands.
func (b *Base) To() lime.Node { return b.to }

// Clock returns the extension's clock.
func (b *Base) Clock() clock.Clock { return b.clock }

// Logger returns the extension's logger.
func (b *Base) Logger() *slog.Logger { return b.logger }

// GetCommand builds a GET command for uri.
func (b *Base) GetCommand(uri string) *lime.Command {
	return &lime.Command{To: b.to, Method: lime.MethodGet, URI: uri}
}

// DeleteCommand builds a DELETE command for uri.
func (b *Base) DeleteCommand(uri string) *lime.Command {
	return &lime.Command{To: b.to, Method: lime.MethodDelete, URI: uri}
}

// SetCommand builds a SET command carrying resource. An empty mediaType
// means application/json. resource may be a json.RawMessage, which is
// sent as is.
func (b *Base) SetCommand(uri string, resource any, mediaType string) (*lime.Command, error) {
	return b.resourceCommand(lime.MethodSet, uri, resource, mediaType)
}

// MergeCommand builds a MERGE command carrying resource.
func (b *Base) MergeCommand(uri string, resource any, mediaType string) (*lime.Command, error) {
	return b.resourceCommand(lime.MethodMerge, uri, resource, mediaType)
}

// ObserveCommand builds an OBSERVE command carrying resource, for
// fire-and-forget delivery through Send.
func (b *Base) ObserveCommand(uri string, resource any, mediaType string) (*lime.Command, error) {
	return b.resourceCommand(lime.MethodObserve, uri, resource, mediaType)
}

func (b *Base) resourceCommand(method lime.Method, uri string, resource any, mediaType string) (*lime.Command, error) {
	if isNil(resource) {
		return nil, &ArgumentError{Argument: "resource", Problem: "is required"}
	}
	encoded, err := encodeResource(resource)
	if err != nil {
		return nil, fmt.Errorf("extension: encoding %s resource for %s: %w", method, uri, err)
	}
	if mediaType == "" {
		mediaType = lime.MediaTypeJSON
	}
	return &lime.Command{
		To:       b.to,
		Method:   method,
		URI:      uri,
		Type:     mediaType,
		Resource: encoded,
	}, nil
}

// Process dispatches command and waits for its response. It validates
// the command, assigns an id when there is none, defaults the
// destination, and calls the sender exactly once. A response with status
// "failure" is returned as a *FailureError.
func (b *Base) Process(ctx context.Context, command *lime.Command) (*lime.Command, error) {
	if err := b.prepare(command); err != nil {
		return nil, err
	}

	b.logger.Debug("dispatching command",
		"method", command.Method,
		"uri", command.URI,
		"to", command.To.String(),
		"id", command.ID,
	)

	response, err := b.sender.ProcessCommand(ctx, command)
	if err != nil {
		return nil, fmt.Errorf("extension: %s %s: %w", command.Method, command.URI, err)
	}
	if response == nil {
		return nil, fmt.Errorf("extension: %s %s: sender returned no response", command.Method, command.URI)
	}
	if response.ID != "" && response.ID != command.ID {
		return nil, fmt.Errorf("extension: %s %s: response id %q does not match command id %q",
			command.Method, command.URI, response.ID, command.ID)
	}

	if response.IsFailure() {
		reason := lime.Reason{Code: lime.ReasonGeneralError, Description: "failure without reason"}
		if response.Reason != nil {
			reason = *response.Reason
		}
		b.logger.Debug("command failed",
			"method", command.Method,
			"uri", command.URI,
			"id", command.ID,
			"reason", reason.String(),
		)
		return nil, &FailureError{Method: command.Method, URI: command.URI, To: command.To, Reason: reason}
	}
	return response, nil
}

// Send dispatches command without waiting for a response.
func (b *Base) Send(ctx context.Context, command *lime.Command) error {
	if err := b.prepare(command); err != nil {
		return err
	}
	b.logger.Debug("sending command",
		"method", command.Method,
		"uri", command.URI,
		"to", command.To.String(),
		"id", command.ID,
	)
	if err := b.sender.SendCommand(ctx, command); err != nil {
		return fmt.Errorf("extension: %s %s: %w", command.Method, command.URI, err)
	}
	return nil
}

// SendMessage delivers message, assigning an id when there is none.
func (b *Base) SendMessage(ctx context.Context, message *lime.Message) error {
	if message == nil {
		return &ArgumentError{Argument: "message", Problem: "is required"}
	}
	if err := RequireNode("message.to", message.To); err != nil {
		return err
	}
	if message.ID == "" {
		message.ID = lime.NewID()
	}
	b.logger.Debug("sending message", "to", message.To.String(), "type", message.Type, "id", message.ID)
	if err := b.sender.SendMessage(ctx, message); err != nil {
		return fmt.Errorf("extension: sending message to %s: %w", message.To, err)
	}
	return nil
}

func (b *Base) prepare(command *lime.Command) error {
	if command == nil {
		return &ArgumentError{Argument: "command", Problem: "is required"}
	}
	if command.Method == "" {
		return &ArgumentError{Argument: "command.method", Problem: "is required"}
	}
	if err := RequireText("command.uri", command.URI); err != nil {
		return err
	}
	if (command.Method == lime.MethodSet || command.Method == lime.MethodMerge) && !command.HasResource() {
		return &ArgumentError{Argument: "command.resource", Problem: fmt.Sprintf("is required for %s", command.Method)}
	}
	if command.ID == "" {
		command.ID = lime.NewID()
	}
	if command.To.IsZero() {
		command.To = b.to
	}
	return nil
}

func encodeResource(resource any) (json.RawMessage, error) {
	if raw, ok := resource.(json.RawMessage); ok {
		if !json.Valid(raw) {
			return nil, fmt.Errorf("resource is not valid JSON")
		}
		return raw, nil
	}
	return json.Marshal(resource)
}

// isNil reports whether value is nil or a nil pointer, map, slice or
// interface.
func isNil(value any) bool {
	if value == nil {
		return true
	}
	reflected := reflect.ValueOf(value)
	switch reflected.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface:
		return reflected.IsNil()
	}
	return false
}
