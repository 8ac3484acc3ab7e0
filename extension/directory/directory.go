// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package directory looks up public account information. Each domain
// answers for its own accounts, so every query goes to the postmaster
// of the queried identity's domain.
package directory

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/bureau-foundation/blip/extension"
	"github.com/bureau-foundation/blip/lib/lime"
)

const accountURI = "lime://{0}/accounts/{1}"

// Account is a directory entry.
type Account struct {
	Identity lime.Identity `json:"identity"`
	FullName string        `json:"fullName,omitempty"`
	PhotoURI string        `json:"photoUri,omitempty"`
	InboxURI string        `json:"inboxUri,omitempty"`

	// Extras holds members not covered by the fields above, such as
	// email, city or gender when the domain exposes them.
	Extras map[string]json.RawMessage `json:"-"`
}

type account Account

// UnmarshalJSON decodes an account, keeping unknown members in Extras.
func (a *Account) UnmarshalJSON(data []byte) error {
	var decoded account
	extras, err := extension.UnmarshalWithExtras(data, &decoded)
	if err != nil {
		return err
	}
	*a = Account(decoded)
	a.Extras = extras
	return nil
}

// MarshalJSON encodes an account with its Extras.
func (a Account) MarshalJSON() ([]byte, error) {
	return extension.MarshalWithExtras(account(a), a.Extras)
}

// Extension is the directory client. It has no fixed destination.
type Extension struct {
	base extension.Base
}

// New creates a directory extension. config.To is ignored.
func New(config extension.Config) (*Extension, error) {
	config.To = lime.Node{}
	base, err := extension.NewBase(config, lime.Node{})
	if err != nil {
		return nil, err
	}
	return &Extension{base: base}, nil
}

// GetAccount fetches the directory entry for identity from
// postmaster@<identity's domain>.
func (e *Extension) GetAccount(ctx context.Context, identity lime.Identity) (*Account, error) {
	if err := extension.RequireIdentity("identity", identity); err != nil {
		return nil, err
	}
	if err := extension.RequireText("identity.name", identity.Name()); err != nil {
		return nil, err
	}
	to, err := lime.Postmaster(identity.Domain())
	if err != nil {
		return nil, fmt.Errorf("directory: %w", err)
	}
	command := e.base.GetCommand(extension.BuildURI(accountURI, identity.Domain(), identity.Name()))
	command.To = to

	response, err := e.base.Process(ctx, command)
	if err != nil {
		return nil, err
	}
	var found Account
	if err := response.DecodeResource(&found); err != nil {
		return nil, fmt.Errorf("directory: %w", err)
	}
	return &found, nil
}
