// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package resource manages a bot's named resources: texts, media links
// and other documents that flows refer to by name.
package resource

import (
	"context"

	"github.com/bureau-foundation/blip/extension"
	"github.com/bureau-foundation/blip/lib/lime"
)

var defaultTo = lime.MustPostmaster("msging.net")

// DefaultTo returns the node that stores resources.
func DefaultTo() lime.Node { return defaultTo }

const (
	resourcesURI = "/resources"
	resourceURI  = "/resources/{0}"
)

// Extension is the resource client.
type Extension struct {
	base extension.Base
}

// New creates a resource extension.
func New(config extension.Config) (*Extension, error) {
	base, err := extension.NewBase(config, defaultTo)
	if err != nil {
		return nil, err
	}
	return &Extension{base: base}, nil
}

// Get fetches the resource called id.
func (e *Extension) Get(ctx context.Context, id string) (*lime.Command, error) {
	if err := extension.RequireText("id", id); err != nil {
		return nil, err
	}
	return e.base.Process(ctx, e.base.GetCommand(extension.BuildURI(resourceURI, id)))
}

// Set stores document as the resource called id. An empty mediaType
// means application/json.
func (e *Extension) Set(ctx context.Context, id string, document any, mediaType string) (*lime.Command, error) {
	if err := extension.RequireText("id", id); err != nil {
		return nil, err
	}
	command, err := e.base.SetCommand(extension.BuildURI(resourceURI, id), document, mediaType)
	if err != nil {
		return nil, err
	}
	return e.base.Process(ctx, command)
}

// Delete removes the resource called id.
func (e *Extension) Delete(ctx context.Context, id string) (*lime.Command, error) {
	if err := extension.RequireText("id", id); err != nil {
		return nil, err
	}
	return e.base.Process(ctx, e.base.DeleteCommand(extension.BuildURI(resourceURI, id)))
}

// GetAll lists resource names. Paging parameters are sent only when set.
func (e *Extension) GetAll(ctx context.Context, page extension.Page, query extension.Query) (*extension.DocumentCollection[string], error) {
	uri := extension.BuildResourceQuery(resourcesURI, page.Query().With(query))
	response, err := e.base.Process(ctx, e.base.GetCommand(uri))
	if err != nil {
		return nil, err
	}
	return extension.DecodeCollection[string](response)
}
