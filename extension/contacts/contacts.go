// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package contacts manages the contact roster kept by the BLiP CRM
// service.
package contacts

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/bureau-foundation/blip/extension"
	"github.com/bureau-foundation/blip/lib/lime"
)

// MediaTypeContact is the type of a contact resource.
const MediaTypeContact = "application/vnd.lime.contact+json"

var defaultTo = lime.MustPostmaster("crm.msging.net")

// DefaultTo returns the CRM service node.
func DefaultTo() lime.Node { return defaultTo }

const (
	contactsURI = "/contacts"
	contactURI  = "/contacts/{0}"
)

// Contact is one entry of the roster.
type Contact struct {
	Identity    lime.Identity `json:"identity"`
	Name        string        `json:"name,omitempty"`
	Email       string        `json:"email,omitempty"`
	PhoneNumber string        `json:"phoneNumber,omitempty"`
	PhotoURI    string        `json:"photoUri,omitempty"`
	City        string        `json:"city,omitempty"`
	Gender      string        `json:"gender,omitempty"`
	Culture     string        `json:"culture,omitempty"`
	Source      string        `json:"source,omitempty"`
	Group       string        `json:"group,omitempty"`

	// Custom holds the free-form attributes stored under the contact's
	// "extras" member.
	Custom map[string]string `json:"extras,omitempty"`

	// Extras holds members not covered by the fields above.
	Extras map[string]json.RawMessage `json:"-"`
}

type contact Contact

// UnmarshalJSON decodes a contact, keeping unknown members in Extras.
func (c *Contact) UnmarshalJSON(data []byte) error {
	var decoded contact
	extras, err := extension.UnmarshalWithExtras(data, &decoded)
	if err != nil {
		return err
	}
	*c = Contact(decoded)
	c.Extras = extras
	return nil
}

// MarshalJSON encodes a contact with its Extras.
func (c Contact) MarshalJSON() ([]byte, error) {
	return extension.MarshalWithExtras(contact(c), c.Extras)
}

// Extension is the contacts client.
type Extension struct {
	base extension.Base
}

// New creates a contacts extension.
func New(config extension.Config) (*Extension, error) {
	base, err := extension.NewBase(config, defaultTo)
	if err != nil {
		return nil, err
	}
	return &Extension{base: base}, nil
}

// Get fetches the contact for identity.
func (e *Extension) Get(ctx context.Context, identity lime.Identity, query extension.Query) (*Contact, error) {
	uri, err := contactResource(identity, query)
	if err != nil {
		return nil, err
	}
	response, err := e.base.Process(ctx, e.base.GetCommand(uri))
	if err != nil {
		return nil, err
	}
	var decoded Contact
	if err := response.DecodeResource(&decoded); err != nil {
		return nil, fmt.Errorf("contacts: %w", err)
	}
	return &decoded, nil
}

// GetContacts lists contacts. Only the non-zero page fields are sent,
// leaving the page size to the service.
func (e *Extension) GetContacts(ctx context.Context, page extension.Page, query extension.Query) (*extension.DocumentCollection[Contact], error) {
	uri := extension.BuildResourceQuery(contactsURI, page.Query().With(query))
	response, err := e.base.Process(ctx, e.base.GetCommand(uri))
	if err != nil {
		return nil, err
	}
	return extension.DecodeCollection[Contact](response)
}

// Set creates or replaces the contact for identity.
func (e *Extension) Set(ctx context.Context, identity lime.Identity, value *Contact, query extension.Query) (*lime.Command, error) {
	return e.write(ctx, lime.MethodSet, identity, value, query)
}

// Merge updates the given fields of the contact for identity, leaving
// the others untouched.
func (e *Extension) Merge(ctx context.Context, identity lime.Identity, value *Contact, query extension.Query) (*lime.Command, error) {
	return e.write(ctx, lime.MethodMerge, identity, value, query)
}

// Delete removes the contact for identity.
func (e *Extension) Delete(ctx context.Context, identity lime.Identity, query extension.Query) (*lime.Command, error) {
	uri, err := contactResource(identity, query)
	if err != nil {
		return nil, err
	}
	return e.base.Process(ctx, e.base.DeleteCommand(uri))
}

func (e *Extension) write(ctx context.Context, method lime.Method, identity lime.Identity, value *Contact, query extension.Query) (*lime.Command, error) {
	uri, err := contactResource(identity, query)
	if err != nil {
		return nil, err
	}
	var command *lime.Command
	if method == lime.MethodMerge {
		command, err = e.base.MergeCommand(uri, value, MediaTypeContact)
	} else {
		command, err = e.base.SetCommand(uri, value, MediaTypeContact)
	}
	if err != nil {
		return nil, err
	}
	return e.base.Process(ctx, command)
}

func contactResource(identity lime.Identity, query extension.Query) (string, error) {
	if err := extension.RequireIdentity("identity", identity); err != nil {
		return "", err
	}
	return extension.BuildResourceQuery(extension.BuildURI(contactURI, identity.String()), query), nil
}
