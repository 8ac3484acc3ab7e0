// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package bucket stores JSON documents in the BLiP bucket service, a
// key/value store for sharing data between extensions or keeping
// per-user context.
package bucket

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/bureau-foundation/blip/extension"
	"github.com/bureau-foundation/blip/lib/lime"
)

var defaultTo = lime.MustPostmaster("bucket.msging.net")

// DefaultTo returns the bucket service node.
func DefaultTo() lime.Node { return defaultTo }

const (
	bucketsURI = "/buckets"
	bucketURI  = "/buckets/{0}"
)

// SetOptions tunes Set.
type SetOptions struct {
	// Expiration removes the document after this long. Zero keeps it.
	Expiration time.Duration

	// Type is the document's media type. Defaults to application/json.
	Type string

	// Query carries any further query parameters.
	Query extension.Query
}

// Extension is the bucket client.
type Extension struct {
	base extension.Base
}

// New creates a bucket extension.
func New(config extension.Config) (*Extension, error) {
	base, err := extension.NewBase(config, defaultTo)
	if err != nil {
		return nil, err
	}
	return &Extension{base: base}, nil
}

// Get fetches the document stored under id.
func (e *Extension) Get(ctx context.Context, id string, query extension.Query) (*lime.Command, error) {
	if err := extension.RequireText("id", id); err != nil {
		return nil, err
	}
	uri := extension.BuildResourceQuery(extension.BuildURI(bucketURI, id), query)
	return e.base.Process(ctx, e.base.GetCommand(uri))
}

// GetIDs lists stored document ids. The page defaults to the first 100.
func (e *Extension) GetIDs(ctx context.Context, page extension.Page, query extension.Query) (*extension.DocumentCollection[string], error) {
	uri := extension.BuildResourceQuery(bucketsURI, page.QueryWithDefaults().With(query))
	response, err := e.base.Process(ctx, e.base.GetCommand(uri))
	if err != nil {
		return nil, err
	}
	return extension.DecodeCollection[string](response)
}

// Set stores document under id.
func (e *Extension) Set(ctx context.Context, id string, document any, options SetOptions) (*lime.Command, error) {
	if err := extension.RequireText("id", id); err != nil {
		return nil, err
	}
	query := options.Query
	if options.Expiration > 0 {
		query = query.With(extension.Query{
			"expiration": strconv.FormatInt(options.Expiration.Milliseconds(), 10),
		})
	}
	uri := extension.BuildResourceQuery(extension.BuildURI(bucketURI, id), query)
	command, err := e.base.SetCommand(uri, document, options.Type)
	if err != nil {
		return nil, err
	}
	return e.base.Process(ctx, command)
}

// Delete removes the document stored under id.
func (e *Extension) Delete(ctx context.Context, id string, query extension.Query) (*lime.Command, error) {
	if err := extension.RequireText("id", id); err != nil {
		return nil, err
	}
	uri := extension.BuildResourceQuery(extension.BuildURI(bucketURI, id), query)
	return e.base.Process(ctx, e.base.DeleteCommand(uri))
}

type textDocument struct {
	Text string `json:"text"`
}

// SetText stores text under id as {"text": text}.
func (e *Extension) SetText(ctx context.Context, id, text string, expiration time.Duration) (*lime.Command, error) {
	return e.Set(ctx, id, textDocument{Text: text}, SetOptions{Expiration: expiration})
}

// GetText returns the text stored under id. A document without text
// yields "". Documents stored as a bare JSON string are accepted too.
func (e *Extension) GetText(ctx context.Context, id string) (string, error) {
	response, err := e.Get(ctx, id, nil)
	if err != nil {
		return "", err
	}
	if !response.HasResource() {
		return "", nil
	}
	resource := bytes.TrimSpace(response.Resource)
	if resource[0] == '"' {
		var text string
		if err := json.Unmarshal(resource, &text); err != nil {
			return "", fmt.Errorf("bucket: decoding text %s: %w", id, err)
		}
		return text, nil
	}
	var document textDocument
	if err := json.Unmarshal(resource, &document); err != nil {
		return "", fmt.Errorf("bucket: decoding text %s: %w", id, err)
	}
	return document.Text, nil
}
