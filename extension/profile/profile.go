// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package profile configures a bot's channel profile: the get-started
// button, the greeting and the persistent menu.
//
// Reading a setting that was never configured is not an error: the Get
// operations return nil in that case.
package profile

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/bureau-foundation/blip/extension"
	"github.com/bureau-foundation/blip/lib/lime"
)

var defaultTo = lime.MustPostmaster("msging.net")

// DefaultTo returns the node that stores profile settings.
func DefaultTo() lime.Node { return defaultTo }

const (
	getStartedURI     = "/profile/get-started"
	greetingURI       = "/profile/greeting"
	persistentMenuURI = "/profile/persistent-menu"
)

// PlainText is a text setting.
type PlainText struct {
	Text string `json:"text"`

	// Extras holds members not covered by the fields above.
	Extras map[string]json.RawMessage `json:"-"`
}

type plainText PlainText

// UnmarshalJSON accepts a bare JSON string or an object with a text
// member.
func (p *PlainText) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		*p = PlainText{}
		return json.Unmarshal(trimmed, &p.Text)
	}
	var decoded plainText
	extras, err := extension.UnmarshalWithExtras(data, &decoded)
	if err != nil {
		return err
	}
	*p = PlainText(decoded)
	p.Extras = extras
	return nil
}

// MarshalJSON encodes the setting as an object with its Extras.
func (p PlainText) MarshalJSON() ([]byte, error) {
	return extension.MarshalWithExtras(plainText(p), p.Extras)
}

// DocumentSelect is a menu: an optional header, its options and the
// scope in which it is shown.
type DocumentSelect struct {
	Header  json.RawMessage   `json:"header,omitempty"`
	Options []json.RawMessage `json:"options"`
	Scope   string            `json:"scope,omitempty"`

	// Extras holds members not covered by the fields above.
	Extras map[string]json.RawMessage `json:"-"`
}

type documentSelect DocumentSelect

// UnmarshalJSON decodes a menu, keeping unknown members in Extras.
func (d *DocumentSelect) UnmarshalJSON(data []byte) error {
	var decoded documentSelect
	extras, err := extension.UnmarshalWithExtras(data, &decoded)
	if err != nil {
		return err
	}
	*d = DocumentSelect(decoded)
	d.Extras = extras
	return nil
}

// MarshalJSON encodes a menu with its Extras.
func (d DocumentSelect) MarshalJSON() ([]byte, error) {
	if d.Options == nil {
		d.Options = []json.RawMessage{}
	}
	return extension.MarshalWithExtras(documentSelect(d), d.Extras)
}

// Extension is the profile client.
type Extension struct {
	base extension.Base
}

// New creates a profile extension.
func New(config extension.Config) (*Extension, error) {
	base, err := extension.NewBase(config, defaultTo)
	if err != nil {
		return nil, err
	}
	return &Extension{base: base}, nil
}

// GetGetStarted returns the get-started document, or nil when none is
// configured.
func (e *Extension) GetGetStarted(ctx context.Context) (*lime.Content, error) {
	response, err := e.get(ctx, getStartedURI)
	if err != nil || response == nil {
		return nil, err
	}
	return &lime.Content{Type: response.Type, Value: response.Resource}, nil
}

// SetGetStarted configures the get-started document.
func (e *Extension) SetGetStarted(ctx context.Context, content lime.Content) (*lime.Command, error) {
	if content.IsZero() {
		return nil, &extension.ArgumentError{Argument: "getStarted", Problem: "is required"}
	}
	return e.set(ctx, getStartedURI, content.Value, content.Type)
}

// DeleteGetStarted removes the get-started document.
func (e *Extension) DeleteGetStarted(ctx context.Context) (*lime.Command, error) {
	return e.base.Process(ctx, e.base.DeleteCommand(getStartedURI))
}

// GetGreeting returns the greeting, or nil when none is configured.
func (e *Extension) GetGreeting(ctx context.Context) (*PlainText, error) {
	var greeting PlainText
	found, err := e.getDecoded(ctx, greetingURI, &greeting)
	if err != nil || !found {
		return nil, err
	}
	return &greeting, nil
}

// SetGreeting configures the greeting. It is sent as plain text.
func (e *Extension) SetGreeting(ctx context.Context, greeting PlainText) (*lime.Command, error) {
	if err := extension.RequireText("greeting.text", greeting.Text); err != nil {
		return nil, err
	}
	content := lime.PlainText(greeting.Text)
	return e.set(ctx, greetingURI, content.Value, content.Type)
}

// DeleteGreeting removes the greeting.
func (e *Extension) DeleteGreeting(ctx context.Context) (*lime.Command, error) {
	return e.base.Process(ctx, e.base.DeleteCommand(greetingURI))
}

// GetPersistentMenu returns the persistent menu, or nil when none is
// configured.
func (e *Extension) GetPersistentMenu(ctx context.Context) (*DocumentSelect, error) {
	var menu DocumentSelect
	found, err := e.getDecoded(ctx, persistentMenuURI, &menu)
	if err != nil || !found {
		return nil, err
	}
	return &menu, nil
}

// SetPersistentMenu configures the persistent menu.
func (e *Extension) SetPersistentMenu(ctx context.Context, menu *DocumentSelect) (*lime.Command, error) {
	return e.set(ctx, persistentMenuURI, menu, lime.MediaTypeSelect)
}

// DeletePersistentMenu removes the persistent menu.
func (e *Extension) DeletePersistentMenu(ctx context.Context) (*lime.Command, error) {
	return e.base.Process(ctx, e.base.DeleteCommand(persistentMenuURI))
}

func (e *Extension) set(ctx context.Context, uri string, resource any, mediaType string) (*lime.Command, error) {
	command, err := e.base.SetCommand(uri, resource, mediaType)
	if err != nil {
		return nil, err
	}
	return e.base.Process(ctx, command)
}

// get returns nil without error when the setting is missing, either as a
// not-found failure or as a success without a resource.
func (e *Extension) get(ctx context.Context, uri string) (*lime.Command, error) {
	response, err := e.base.Process(ctx, e.base.GetCommand(uri))
	if err != nil {
		if extension.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	if !response.HasResource() {
		return nil, nil
	}
	return response, nil
}

func (e *Extension) getDecoded(ctx context.Context, uri string, target any) (bool, error) {
	response, err := e.get(ctx, uri)
	if err != nil || response == nil {
		return false, err
	}
	if err := response.DecodeResource(target); err != nil {
		return false, fmt.Errorf("profile: %w", err)
	}
	return true, nil
}
