// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package lime

import (
	"encoding/json"
	"fmt"
)

// Common media types. Service-specific types are declared by the
// extensions that use them.
const (
	MediaTypeJSON         = "application/json"
	MediaTypeText         = "text/plain"
	MediaTypeIdentity     = "application/vnd.lime.identity"
	MediaTypeIdentityJSON = "application/vnd.lime.identity+json"
	MediaTypeSelect       = "application/vnd.lime.select+json"
	MediaTypeCollection   = "application/vnd.lime.collection+json"
)

// Content is a document value paired with its media type.
type Content struct {
	Type  string
	Value json.RawMessage
}

// NewContent marshals value to JSON and tags it with mediaType.
func NewContent(mediaType string, value any) (Content, error) {
	if mediaType == "" {
		return Content{}, fmt.Errorf("lime: content media type is empty")
	}
	encoded, err := json.Marshal(value)
	if err != nil {
		return Content{}, fmt.Errorf("lime: encoding %s content: %w", mediaType, err)
	}
	return Content{Type: mediaType, Value: encoded}, nil
}

// PlainText returns a text/plain content. Plain text travels as a JSON
// string.
func PlainText(text string) Content {
	encoded, _ := json.Marshal(text)
	return Content{Type: MediaTypeText, Value: encoded}
}

// IsZero reports whether the content has neither a type nor a value.
func (c Content) IsZero() bool {
	return c.Type == "" && !hasValue(c.Value)
}
