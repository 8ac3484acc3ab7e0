// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package media obtains upload and refreshed download links from the
// BLiP media service.
package media

import (
	"context"
	"fmt"

	"github.com/bureau-foundation/blip/extension"
	"github.com/bureau-foundation/blip/lib/lime"
)

var defaultTo = lime.MustPostmaster("media.msging.net")

// DefaultTo returns the media service node.
func DefaultTo() lime.Node { return defaultTo }

const (
	uploadURI  = "/upload-media-uri"
	refreshURI = "/refresh-media-uri"
)

// Extension is the media client.
type Extension struct {
	base extension.Base
}

// New creates a media extension.
func New(config extension.Config) (*Extension, error) {
	base, err := extension.NewBase(config, defaultTo)
	if err != nil {
		return nil, err
	}
	return &Extension{base: base}, nil
}

// GetUploadURI returns a one-time URI to upload a media file to.
func (e *Extension) GetUploadURI(ctx context.Context) (string, error) {
	response, err := e.base.Process(ctx, e.base.GetCommand(uploadURI))
	if err != nil {
		return "", err
	}
	return decodeURI(response)
}

// RefreshMediaURI returns a fresh download URI for the media with id,
// whose previous link has expired.
func (e *Extension) RefreshMediaURI(ctx context.Context, id string) (string, error) {
	if err := extension.RequireText("id", id); err != nil {
		return "", err
	}
	command, err := e.base.SetCommand(refreshURI, id, lime.MediaTypeText)
	if err != nil {
		return "", err
	}
	response, err := e.base.Process(ctx, command)
	if err != nil {
		return "", err
	}
	return decodeURI(response)
}

func decodeURI(response *lime.Command) (string, error) {
	var uri string
	if err := response.DecodeResource(&uri); err != nil {
		return "", fmt.Errorf("media: %w", err)
	}
	return uri, nil
}
