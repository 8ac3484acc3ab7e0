// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package builder reads and publishes conversation flows in the BLiP
// builder service. Flows are opaque JSON documents here.
package builder

import (
	"context"
	"encoding/json"

	"github.com/bureau-foundation/blip/extension"
	"github.com/bureau-foundation/blip/lib/lime"
)

var defaultTo = lime.MustPostmaster("builder.msging.net")

// DefaultTo returns the builder service node.
func DefaultTo() lime.Node { return defaultTo }

const (
	flowsURI = "/flows"
	flowURI  = "/flows/{0}"
)

// Extension is the builder client.
type Extension struct {
	base extension.Base
}

// New creates a builder extension.
func New(config extension.Config) (*Extension, error) {
	base, err := extension.NewBase(config, defaultTo)
	if err != nil {
		return nil, err
	}
	return &Extension{base: base}, nil
}

// GetFlow fetches the flow with id.
func (e *Extension) GetFlow(ctx context.Context, id string) (*lime.Command, error) {
	if err := extension.RequireText("id", id); err != nil {
		return nil, err
	}
	return e.base.Process(ctx, e.base.GetCommand(extension.BuildURI(flowURI, id)))
}

// SetFlow publishes flow. The flow document carries its own id.
func (e *Extension) SetFlow(ctx context.Context, flow any) (*lime.Command, error) {
	command, err := e.base.SetCommand(flowsURI, flow, lime.MediaTypeJSON)
	if err != nil {
		return nil, err
	}
	return e.base.Process(ctx, command)
}

// DeleteFlow removes the flow with id.
func (e *Extension) DeleteFlow(ctx context.Context, id string) (*lime.Command, error) {
	if err := extension.RequireText("id", id); err != nil {
		return nil, err
	}
	return e.base.Process(ctx, e.base.DeleteCommand(extension.BuildURI(flowURI, id)))
}

// GetFlows lists flows as raw documents.
func (e *Extension) GetFlows(ctx context.Context, page extension.Page) (*extension.DocumentCollection[json.RawMessage], error) {
	uri := extension.BuildResourceQuery(flowsURI, page.QueryWithDefaults())
	response, err := e.base.Process(ctx, e.base.GetCommand(uri))
	if err != nil {
		return nil, err
	}
	return extension.DecodeCollection[json.RawMessage](response)
}
