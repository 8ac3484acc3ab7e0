// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package delegation lets a bot delegate sending a message to another
// identity, which then delivers it on the bot's behalf.
package delegation

import (
	"context"
	"encoding/json"

	"github.com/bureau-foundation/blip/extension"
	"github.com/bureau-foundation/blip/lib/lime"
)

var defaultTo = lime.MustPostmaster("delegation.msging.net")

// DefaultTo returns the delegation service node.
func DefaultTo() lime.Node { return defaultTo }

const delegationsURI = "/delegations"

type delegatedMessage struct {
	From    lime.Node       `json:"from,omitzero"`
	To      lime.Node       `json:"to"`
	Content json.RawMessage `json:"content"`
	Type    string          `json:"type"`
}

type delegationRequest struct {
	Message        delegatedMessage `json:"message"`
	TargetIdentity lime.Identity    `json:"targetIdentity"`
}

// Extension is the delegation client.
type Extension struct {
	base extension.Base
}

// New creates a delegation extension.
func New(config extension.Config) (*Extension, error) {
	base, err := extension.NewBase(config, defaultTo)
	if err != nil {
		return nil, err
	}
	return &Extension{base: base}, nil
}

// Delegate asks target to deliver message.
func (e *Extension) Delegate(ctx context.Context, message *lime.Message, target lime.Identity) (*lime.Command, error) {
	if message == nil {
		return nil, &extension.ArgumentError{Argument: "message", Problem: "is required"}
	}
	if err := extension.RequireNode("message.to", message.To); err != nil {
		return nil, err
	}
	if err := extension.RequireIdentity("targetIdentity", target); err != nil {
		return nil, err
	}
	request := delegationRequest{
		Message: delegatedMessage{
			From:    message.From,
			To:      message.To,
			Content: message.Content,
			Type:    message.Type,
		},
		TargetIdentity: target,
	}
	command, err := e.base.SetCommand(delegationsURI, request, lime.MediaTypeJSON)
	if err != nil {
		return nil, err
	}
	return e.base.Process(ctx, command)
}

// GetDelegations lists active delegations as raw documents.
func (e *Extension) GetDelegations(ctx context.Context, page extension.Page) (*extension.DocumentCollection[json.RawMessage], error) {
	uri := extension.BuildResourceQuery(delegationsURI, page.QueryWithDefaults())
	response, err := e.base.Process(ctx, e.base.GetCommand(uri))
	if err != nil {
		return nil, err
	}
	return extension.DecodeCollection[json.RawMessage](response)
}
