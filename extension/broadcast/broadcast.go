// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package broadcast manages distribution lists and sends messages to
// every recipient of a list at once.
//
// A list named "news" is addressed as news@broadcast.msging.net. Its
// recipients are plain identities.
package broadcast

import (
	"context"
	"fmt"

	"github.com/bureau-foundation/blip/extension"
	"github.com/bureau-foundation/blip/lib/lime"
)

// Domain hosts distribution list identities.
const Domain = "broadcast.msging.net"

// MediaTypeDistributionList is the type of a list creation resource.
const MediaTypeDistributionList = "application/vnd.iris.distribution-list+json"

var defaultTo = lime.MustPostmaster(Domain)

// DefaultTo returns the broadcast service node.
func DefaultTo() lime.Node { return defaultTo }

const (
	listsURI      = "/lists"
	listURI       = "/lists/{0}"
	recipientsURI = "/lists/{0}/recipients"
	recipientURI  = "/lists/{0}/recipients/{1}"
)

// Extension is the broadcast client.
type Extension struct {
	base extension.Base
}

// New creates a broadcast extension.
func New(config extension.Config) (*Extension, error) {
	base, err := extension.NewBase(config, defaultTo)
	if err != nil {
		return nil, err
	}
	return &Extension{base: base}, nil
}

// ListIdentity returns the identity of the list named listName.
func ListIdentity(listName string) (lime.Identity, error) {
	if err := extension.RequireText("listName", listName); err != nil {
		return lime.Identity{}, err
	}
	identity, err := lime.NewIdentity(listName, Domain)
	if err != nil {
		return lime.Identity{}, &extension.ArgumentError{
			Argument: "listName",
			Problem:  fmt.Sprintf("is not a valid identity name: %v", err),
		}
	}
	return identity, nil
}

type distributionList struct {
	Identity lime.Identity `json:"identity"`
}

type recipient struct {
	Value lime.Identity `json:"value"`
}

// CreateDistributionList creates the list named listName.
func (e *Extension) CreateDistributionList(ctx context.Context, listName string) (*lime.Command, error) {
	identity, err := ListIdentity(listName)
	if err != nil {
		return nil, err
	}
	command, err := e.base.SetCommand(listsURI, distributionList{Identity: identity}, MediaTypeDistributionList)
	if err != nil {
		return nil, err
	}
	return e.base.Process(ctx, command)
}

// GetDistributionLists lists the identities of the caller's lists.
func (e *Extension) GetDistributionLists(ctx context.Context, page extension.Page) (*extension.DocumentCollection[lime.Identity], error) {
	uri := extension.BuildResourceQuery(listsURI, page.QueryWithDefaults())
	response, err := e.base.Process(ctx, e.base.GetCommand(uri))
	if err != nil {
		return nil, err
	}
	return extension.DecodeCollection[lime.Identity](response)
}

// DeleteDistributionList removes the list named listName.
func (e *Extension) DeleteDistributionList(ctx context.Context, listName string) (*lime.Command, error) {
	identity, err := ListIdentity(listName)
	if err != nil {
		return nil, err
	}
	return e.base.Process(ctx, e.base.DeleteCommand(extension.BuildURI(listURI, identity.String())))
}

// AddRecipient adds recipient to the list named listName.
func (e *Extension) AddRecipient(ctx context.Context, listName string, recipientIdentity lime.Identity) (*lime.Command, error) {
	identity, err := ListIdentity(listName)
	if err != nil {
		return nil, err
	}
	if err := extension.RequireIdentity("recipient", recipientIdentity); err != nil {
		return nil, err
	}
	uri := extension.BuildURI(recipientsURI, identity.String())
	command, err := e.base.SetCommand(uri, recipient{Value: recipientIdentity}, lime.MediaTypeIdentityJSON)
	if err != nil {
		return nil, err
	}
	return e.base.Process(ctx, command)
}

// DeleteRecipient removes recipient from the list named listName.
func (e *Extension) DeleteRecipient(ctx context.Context, listName string, recipientIdentity lime.Identity) (*lime.Command, error) {
	uri, err := recipientResource(listName, recipientIdentity)
	if err != nil {
		return nil, err
	}
	return e.base.Process(ctx, e.base.DeleteCommand(uri))
}

// HasRecipient reports whether recipient belongs to the list named
// listName. A not-found failure means false; any other failure is
// returned as an error.
func (e *Extension) HasRecipient(ctx context.Context, listName string, recipientIdentity lime.Identity) (bool, error) {
	uri, err := recipientResource(listName, recipientIdentity)
	if err != nil {
		return false, err
	}
	if _, err := e.base.Process(ctx, e.base.GetCommand(uri)); err != nil {
		if extension.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// GetRecipients lists the recipients of the list named listName.
func (e *Extension) GetRecipients(ctx context.Context, listName string, page extension.Page) (*extension.DocumentCollection[lime.Identity], error) {
	identity, err := ListIdentity(listName)
	if err != nil {
		return nil, err
	}
	uri := extension.BuildResourceQuery(extension.BuildURI(recipientsURI, identity.String()), page.QueryWithDefaults())
	response, err := e.base.Process(ctx, e.base.GetCommand(uri))
	if err != nil {
		return nil, err
	}
	return extension.DecodeCollection[lime.Identity](response)
}

// SendMessage delivers content to every recipient of the list named
// listName and returns the sent message.
func (e *Extension) SendMessage(ctx context.Context, listName string, content lime.Content) (*lime.Message, error) {
	identity, err := ListIdentity(listName)
	if err != nil {
		return nil, err
	}
	if content.IsZero() {
		return nil, &extension.ArgumentError{Argument: "content", Problem: "is required"}
	}
	message := lime.NewMessage(identity.ToNode(), content)
	if err := e.base.SendMessage(ctx, message); err != nil {
		return nil, err
	}
	return message, nil
}

func recipientResource(listName string, recipientIdentity lime.Identity) (string, error) {
	identity, err := ListIdentity(listName)
	if err != nil {
		return "", err
	}
	if err := extension.RequireIdentity("recipient", recipientIdentity); err != nil {
		return "", err
	}
	return extension.BuildURI(recipientURI, identity.String(), recipientIdentity.String()), nil
}
