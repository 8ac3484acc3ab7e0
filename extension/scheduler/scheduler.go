// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package scheduler schedules messages for later delivery.
//
// A schedule may carry a name, which is the handle used to cancel or
// look it up afterwards.
package scheduler

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/bureau-foundation/blip/extension"
	"github.com/bureau-foundation/blip/lib/lime"
)

// MediaTypeSchedule is the type of a schedule resource.
const MediaTypeSchedule = "application/vnd.iris.schedule+json"

// TimeLayout is the wire format of a schedule's delivery time.
const TimeLayout = "2006-01-02T15:04:05.000Z07:00"

var defaultTo = lime.MustPostmaster("scheduler.msging.net")

// DefaultTo returns the scheduler service node.
func DefaultTo() lime.Node { return defaultTo }

const (
	messagesURI = "/messages"
	messageURI  = "/messages/{0}"
)

// ScheduledMessage is a message waiting for its delivery time.
type ScheduledMessage struct {
	Name    string        `json:"name,omitempty"`
	When    time.Time     `json:"when"`
	Message *lime.Message `json:"message"`
	Status  string        `json:"status,omitempty"`

	// Extras holds members not covered by the fields above.
	Extras map[string]json.RawMessage `json:"-"`
}

type scheduledMessage ScheduledMessage

// UnmarshalJSON decodes a schedule, keeping unknown members in Extras.
func (s *ScheduledMessage) UnmarshalJSON(data []byte) error {
	var decoded scheduledMessage
	extras, err := extension.UnmarshalWithExtras(data, &decoded)
	if err != nil {
		return err
	}
	*s = ScheduledMessage(decoded)
	s.Extras = extras
	return nil
}

// MarshalJSON encodes a schedule with its Extras.
func (s ScheduledMessage) MarshalJSON() ([]byte, error) {
	return extension.MarshalWithExtras(scheduledMessage(s), s.Extras)
}

type schedule struct {
	When    string        `json:"when"`
	Message *lime.Message `json:"message"`
	Name    string        `json:"name,omitempty"`
}

// Extension is the scheduler client.
type Extension struct {
	base extension.Base
}

// New creates a scheduler extension.
func New(config extension.Config) (*Extension, error) {
	base, err := extension.NewBase(config, defaultTo)
	if err != nil {
		return nil, err
	}
	return &Extension{base: base}, nil
}

// Schedule arranges for message to be delivered at when. The message
// gets an id if it has none. name is optional.
func (e *Extension) Schedule(ctx context.Context, when time.Time, message *lime.Message, name string) (*lime.Command, error) {
	if when.IsZero() {
		return nil, &extension.ArgumentError{Argument: "when", Problem: "is required"}
	}
	if message == nil {
		return nil, &extension.ArgumentError{Argument: "message", Problem: "is required"}
	}
	if err := extension.RequireNode("message.to", message.To); err != nil {
		return nil, err
	}
	if message.ID == "" {
		message.ID = lime.NewID()
	}
	resource := schedule{
		When:    when.UTC().Format(TimeLayout),
		Message: message,
		Name:    name,
	}
	command, err := e.base.SetCommand(messagesURI, resource, MediaTypeSchedule)
	if err != nil {
		return nil, err
	}
	return e.base.Process(ctx, command)
}

// Cancel removes the schedule called name.
func (e *Extension) Cancel(ctx context.Context, name string) (*lime.Command, error) {
	if err := extension.RequireText("name", name); err != nil {
		return nil, err
	}
	return e.base.Process(ctx, e.base.DeleteCommand(extension.BuildURI(messageURI, name)))
}

// GetScheduledMessages lists pending schedules.
func (e *Extension) GetScheduledMessages(ctx context.Context, page extension.Page) (*extension.DocumentCollection[ScheduledMessage], error) {
	uri := extension.BuildResourceQuery(messagesURI, page.QueryWithDefaults())
	response, err := e.base.Process(ctx, e.base.GetCommand(uri))
	if err != nil {
		return nil, err
	}
	return extension.DecodeCollection[ScheduledMessage](response)
}

// GetScheduledMessage fetches the schedule called name.
func (e *Extension) GetScheduledMessage(ctx context.Context, name string) (*ScheduledMessage, error) {
	if err := extension.RequireText("name", name); err != nil {
		return nil, err
	}
	response, err := e.base.Process(ctx, e.base.GetCommand(extension.BuildURI(messageURI, name)))
	if err != nil {
		return nil, err
	}
	var scheduled ScheduledMessage
	if err := response.DecodeResource(&scheduled); err != nil {
		return nil, fmt.Errorf("scheduler: %w", err)
	}
	return &scheduled, nil
}
