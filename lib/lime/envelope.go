// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package lime

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Method is the verb of a command.
type Method string

const (
	MethodGet       Method = "get"
	MethodSet       Method = "set"
	MethodMerge     Method = "merge"
	MethodDelete    Method = "delete"
	MethodObserve   Method = "observe"
	MethodSubscribe Method = "subscribe"
)

// Status is the outcome carried by a command response.
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailure Status = "failure"
	StatusPending Status = "pending"
)

// Event is the kind of a notification.
type Event string

const (
	EventAccepted   Event = "accepted"
	EventDispatched Event = "dispatched"
	EventReceived   Event = "received"
	EventConsumed   Event = "consumed"
	EventFailed     Event = "failed"
)

// Reason codes used by the platform. Only the codes that callers branch
// on are named here.
const (
	ReasonGeneralError            = 1
	ReasonCommandProcessingError  = 61
	ReasonCommandResourceNotFound = 67
	ReasonCommandInvalidArgument  = 68
)

// Reason describes why a command or message failed.
type Reason struct {
	Code        int    `json:"code"`
	Description string `json:"description,omitempty"`
}

func (r Reason) String() string {
	if r.Description == "" {
		return fmt.Sprintf("code %d", r.Code)
	}
	return fmt.Sprintf("%s (code %d)", r.Description, r.Code)
}

// Command is a request/response envelope. Requests carry Method, URI and
// optionally Type and Resource. Responses echo the ID and add Status and,
// on failure, Reason.
type Command struct {
	ID       string          `json:"id,omitempty"`
	From     Node            `json:"from,omitzero"`
	To       Node            `json:"to,omitzero"`
	Method   Method          `json:"method"`
	URI      string          `json:"uri,omitempty"`
	Type     string          `json:"type,omitempty"`
	Resource json.RawMessage `json:"resource,omitempty"`
	Status   Status          `json:"status,omitempty"`
	Reason   *Reason         `json:"reason,omitempty"`
}

// HasResource reports whether the command carries a non-null resource.
func (c *Command) HasResource() bool {
	return hasValue(c.Resource)
}

// DecodeResource unmarshals the resource into target. Returns an error
// if the command has no resource.
func (c *Command) DecodeResource(target any) error {
	if !c.HasResource() {
		return fmt.Errorf("lime: command %s %s has no resource", c.Method, c.URI)
	}
	if err := json.Unmarshal(c.Resource, target); err != nil {
		return fmt.Errorf("lime: decoding %s resource of %s %s: %w", c.Type, c.Method, c.URI, err)
	}
	return nil
}

// IsFailure reports whether the command is a failure response.
func (c *Command) IsFailure() bool {
	return c.Status == StatusFailure
}

// Message delivers content to a node without expecting a response.
type Message struct {
	ID      string          `json:"id,omitempty"`
	From    Node            `json:"from,omitzero"`
	To      Node            `json:"to,omitzero"`
	Type    string          `json:"type"`
	Content json.RawMessage `json:"content"`
}

// NewMessage builds a message to the given node with a fresh ID.
func NewMessage(to Node, content Content) *Message {
	return &Message{
		ID:      NewID(),
		To:      to,
		Type:    content.Type,
		Content: content.Value,
	}
}

// Document returns the message content paired with its media type.
func (m *Message) Document() Content {
	return Content{Type: m.Type, Value: m.Content}
}

// Notification reports a delivery event for a previously sent message.
// ID is the ID of the message it refers to.
type Notification struct {
	ID     string  `json:"id,omitempty"`
	From   Node    `json:"from,omitzero"`
	To     Node    `json:"to,omitzero"`
	Event  Event   `json:"event"`
	Reason *Reason `json:"reason,omitempty"`
}

func hasValue(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null"))
}
