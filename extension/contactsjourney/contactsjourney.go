// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package contactsjourney records the states contacts pass through in
// a flow, feeding the analytics service's journey reports.
package contactsjourney

import (
	"context"
	"time"

	"github.com/bureau-foundation/blip/extension"
	"github.com/bureau-foundation/blip/lib/lime"
)

var defaultTo = lime.MustPostmaster("analytics.msging.net")

// DefaultTo returns the analytics service node.
func DefaultTo() lime.Node { return defaultTo }

const journeyURI = "/contacts-journey"

// Entry is one state transition. StateID and StateName are required.
type Entry struct {
	StateID           string
	StateName         string
	PreviousStateID   string
	PreviousStateName string
	ContactIdentity   lime.Identity
}

type journeyNode struct {
	CurrentStateID    string         `json:"currentStateId"`
	CurrentStateName  string         `json:"currentStateName"`
	PreviousStateID   string         `json:"previousStateId,omitempty"`
	PreviousStateName string         `json:"previousStateName,omitempty"`
	ContactIdentity   *lime.Identity `json:"contactIdentity,omitempty"`
	StorageDate       time.Time      `json:"storageDate"`
}

// Extension is the contacts journey client.
type Extension struct {
	base extension.Base
}

// New creates a contacts journey extension.
func New(config extension.Config) (*Extension, error) {
	base, err := extension.NewBase(config, defaultTo)
	if err != nil {
		return nil, err
	}
	return &Extension{base: base}, nil
}

// Add records entry, stamped with the current time. With fireAndForget
// the entry is sent as an observe command and no response is awaited;
// otherwise it is set and the call waits for the service to accept it.
func (e *Extension) Add(ctx context.Context, entry Entry, fireAndForget bool) error {
	if err := extension.RequireText("stateId", entry.StateID); err != nil {
		return err
	}
	if err := extension.RequireText("stateName", entry.StateName); err != nil {
		return err
	}
	node := journeyNode{
		CurrentStateID:    entry.StateID,
		CurrentStateName:  entry.StateName,
		PreviousStateID:   entry.PreviousStateID,
		PreviousStateName: entry.PreviousStateName,
		StorageDate:       e.base.Clock().Now().UTC(),
	}
	if !entry.ContactIdentity.IsZero() {
		node.ContactIdentity = &entry.ContactIdentity
	}

	if fireAndForget {
		command, err := e.base.ObserveCommand(journeyURI, node, lime.MediaTypeJSON)
		if err != nil {
			return err
		}
		return e.base.Send(ctx, command)
	}
	command, err := e.base.SetCommand(journeyURI, node, lime.MediaTypeJSON)
	if err != nil {
		return err
	}
	_, err = e.base.Process(ctx, command)
	return err
}
