// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package threads manages group conversation threads and their
// participants.
package threads

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/bureau-foundation/blip/extension"
	"github.com/bureau-foundation/blip/lib/lime"
)

var defaultTo = lime.MustPostmaster("threads.msging.net")

// DefaultTo returns the threads service node.
func DefaultTo() lime.Node { return defaultTo }

const (
	threadsURI      = "/threads"
	threadURI       = "/threads/{0}"
	participantsURI = "/threads/{0}/participants"
	participantURI  = "/threads/{0}/participants/{1}"
)

// Thread is a group conversation.
type Thread struct {
	ID            string          `json:"id,omitempty"`
	OwnerIdentity lime.Identity   `json:"ownerIdentity,omitzero"`
	Participants  []lime.Identity `json:"participants"`
	CreatedDate   string          `json:"createdDate,omitempty"`

	// Extras holds members not covered by the fields above.
	Extras map[string]json.RawMessage `json:"-"`
}

type thread Thread

// UnmarshalJSON decodes a thread, keeping unknown members in Extras.
func (t *Thread) UnmarshalJSON(data []byte) error {
	var decoded thread
	extras, err := extension.UnmarshalWithExtras(data, &decoded)
	if err != nil {
		return err
	}
	*t = Thread(decoded)
	t.Extras = extras
	return nil
}

// MarshalJSON encodes a thread with its Extras.
func (t Thread) MarshalJSON() ([]byte, error) {
	return extension.MarshalWithExtras(thread(t), t.Extras)
}

type newThread struct {
	Participants []lime.Identity `json:"participants"`
}

type participant struct {
	Value lime.Identity `json:"value"`
}

// Extension is the threads client.
type Extension struct {
	base extension.Base
}

// New creates a threads extension.
func New(config extension.Config) (*Extension, error) {
	base, err := extension.NewBase(config, defaultTo)
	if err != nil {
		return nil, err
	}
	return &Extension{base: base}, nil
}

// CreateThread starts a thread among participants.
func (e *Extension) CreateThread(ctx context.Context, participants []lime.Identity) (*Thread, error) {
	if len(participants) == 0 {
		return nil, &extension.ArgumentError{Argument: "participants", Problem: "cannot be empty"}
	}
	for index, identity := range participants {
		if err := extension.RequireIdentity(fmt.Sprintf("participants[%d]", index), identity); err != nil {
			return nil, err
		}
	}
	command, err := e.base.SetCommand(threadsURI, newThread{Participants: participants}, lime.MediaTypeJSON)
	if err != nil {
		return nil, err
	}
	return e.processThread(ctx, command)
}

// GetThread fetches the thread with threadID.
func (e *Extension) GetThread(ctx context.Context, threadID string) (*Thread, error) {
	if err := extension.RequireText("threadId", threadID); err != nil {
		return nil, err
	}
	return e.processThread(ctx, e.base.GetCommand(extension.BuildURI(threadURI, threadID)))
}

// GetThreads lists threads.
func (e *Extension) GetThreads(ctx context.Context, page extension.Page) (*extension.DocumentCollection[Thread], error) {
	uri := extension.BuildResourceQuery(threadsURI, page.QueryWithDefaults())
	response, err := e.base.Process(ctx, e.base.GetCommand(uri))
	if err != nil {
		return nil, err
	}
	return extension.DecodeCollection[Thread](response)
}

// AddParticipant adds identity to the thread with threadID.
func (e *Extension) AddParticipant(ctx context.Context, threadID string, identity lime.Identity) (*lime.Command, error) {
	if err := extension.RequireText("threadId", threadID); err != nil {
		return nil, err
	}
	if err := extension.RequireIdentity("participant", identity); err != nil {
		return nil, err
	}
	uri := extension.BuildURI(participantsURI, threadID)
	command, err := e.base.SetCommand(uri, participant{Value: identity}, lime.MediaTypeIdentityJSON)
	if err != nil {
		return nil, err
	}
	return e.base.Process(ctx, command)
}

// RemoveParticipant removes identity from the thread with threadID.
func (e *Extension) RemoveParticipant(ctx context.Context, threadID string, identity lime.Identity) (*lime.Command, error) {
	if err := extension.RequireText("threadId", threadID); err != nil {
		return nil, err
	}
	if err := extension.RequireIdentity("participant", identity); err != nil {
		return nil, err
	}
	uri := extension.BuildURI(participantURI, threadID, identity.String())
	return e.base.Process(ctx, e.base.DeleteCommand(uri))
}

// DeleteThread removes the thread with threadID.
func (e *Extension) DeleteThread(ctx context.Context, threadID string) (*lime.Command, error) {
	if err := extension.RequireText("threadId", threadID); err != nil {
		return nil, err
	}
	return e.base.Process(ctx, e.base.DeleteCommand(extension.BuildURI(threadURI, threadID)))
}

func (e *Extension) processThread(ctx context.Context, command *lime.Command) (*Thread, error) {
	response, err := e.base.Process(ctx, command)
	if err != nil {
		return nil, err
	}
	var decoded Thread
	if err := response.DecodeResource(&decoded); err != nil {
		return nil, fmt.Errorf("threads: %w", err)
	}
	return &decoded, nil
}
