// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package tunnel relays envelopes between bots through the BLiP tunnel
// service and manages the tunnels themselves.
package tunnel

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/bureau-foundation/blip/extension"
	"github.com/bureau-foundation/blip/lib/lime"
)

var defaultTo = lime.MustPostmaster("tunnel.msging.net")

// DefaultTo returns the tunnel service node.
func DefaultTo() lime.Node { return defaultTo }

const (
	messagesURI      = "/messages"
	notificationsURI = "/notifications"
	tunnelsURI       = "/tunnels"
	tunnelURI        = "/tunnels/{0}"
)

// Tunnel links a source identity to a destination identity.
type Tunnel struct {
	ID                  string        `json:"id,omitempty"`
	Name                string        `json:"name,omitempty"`
	SourceIdentity      lime.Identity `json:"sourceIdentity,omitzero"`
	DestinationIdentity lime.Identity `json:"destinationIdentity,omitzero"`

	// Extras holds members not covered by the fields above.
	Extras map[string]json.RawMessage `json:"-"`
}

type tunnel Tunnel

// UnmarshalJSON decodes a tunnel, keeping unknown members in Extras.
func (t *Tunnel) UnmarshalJSON(data []byte) error {
	var decoded tunnel
	extras, err := extension.UnmarshalWithExtras(data, &decoded)
	if err != nil {
		return err
	}
	*t = Tunnel(decoded)
	t.Extras = extras
	return nil
}

// MarshalJSON encodes a tunnel with its Extras.
func (t Tunnel) MarshalJSON() ([]byte, error) {
	return extension.MarshalWithExtras(tunnel(t), t.Extras)
}

type forwardedMessage struct {
	Message             *lime.Message `json:"message"`
	DestinationIdentity lime.Identity `json:"destinationIdentity"`
}

type forwardedNotification struct {
	Notification        *lime.Notification `json:"notification"`
	DestinationIdentity lime.Identity      `json:"destinationIdentity"`
}

type newTunnel struct {
	SourceIdentity      lime.Identity `json:"sourceIdentity"`
	DestinationIdentity lime.Identity `json:"destinationIdentity"`
	Name                string        `json:"name,omitempty"`
}

// Extension is the tunnel client.
type Extension struct {
	base extension.Base
}

// New creates a tunnel extension.
func New(config extension.Config) (*Extension, error) {
	base, err := extension.NewBase(config, defaultTo)
	if err != nil {
		return nil, err
	}
	return &Extension{base: base}, nil
}

// ForwardMessage relays message to destination.
func (e *Extension) ForwardMessage(ctx context.Context, message *lime.Message, destination lime.Identity) (*lime.Command, error) {
	if message == nil {
		return nil, &extension.ArgumentError{Argument: "message", Problem: "is required"}
	}
	if err := extension.RequireIdentity("destinationIdentity", destination); err != nil {
		return nil, err
	}
	return e.set(ctx, messagesURI, forwardedMessage{Message: message, DestinationIdentity: destination})
}

// ForwardNotification relays notification to destination.
func (e *Extension) ForwardNotification(ctx context.Context, notification *lime.Notification, destination lime.Identity) (*lime.Command, error) {
	if notification == nil {
		return nil, &extension.ArgumentError{Argument: "notification", Problem: "is required"}
	}
	if err := extension.RequireIdentity("destinationIdentity", destination); err != nil {
		return nil, err
	}
	return e.set(ctx, notificationsURI, forwardedNotification{Notification: notification, DestinationIdentity: destination})
}

// CreateTunnel links source to destination. name is optional.
func (e *Extension) CreateTunnel(ctx context.Context, source, destination lime.Identity, name string) (*Tunnel, error) {
	if err := extension.RequireIdentity("sourceIdentity", source); err != nil {
		return nil, err
	}
	if err := extension.RequireIdentity("destinationIdentity", destination); err != nil {
		return nil, err
	}
	response, err := e.set(ctx, tunnelsURI, newTunnel{SourceIdentity: source, DestinationIdentity: destination, Name: name})
	if err != nil {
		return nil, err
	}
	return decodeTunnel(response)
}

// GetTunnel fetches the tunnel with tunnelID.
func (e *Extension) GetTunnel(ctx context.Context, tunnelID string) (*Tunnel, error) {
	if err := extension.RequireText("tunnelId", tunnelID); err != nil {
		return nil, err
	}
	response, err := e.base.Process(ctx, e.base.GetCommand(extension.BuildURI(tunnelURI, tunnelID)))
	if err != nil {
		return nil, err
	}
	return decodeTunnel(response)
}

// DeleteTunnel removes the tunnel with tunnelID.
func (e *Extension) DeleteTunnel(ctx context.Context, tunnelID string) (*lime.Command, error) {
	if err := extension.RequireText("tunnelId", tunnelID); err != nil {
		return nil, err
	}
	return e.base.Process(ctx, e.base.DeleteCommand(extension.BuildURI(tunnelURI, tunnelID)))
}

// GetTunnels lists tunnels.
func (e *Extension) GetTunnels(ctx context.Context, page extension.Page) (*extension.DocumentCollection[Tunnel], error) {
	uri := extension.BuildResourceQuery(tunnelsURI, page.QueryWithDefaults())
	response, err := e.base.Process(ctx, e.base.GetCommand(uri))
	if err != nil {
		return nil, err
	}
	return extension.DecodeCollection[Tunnel](response)
}

func (e *Extension) set(ctx context.Context, uri string, resource any) (*lime.Command, error) {
	command, err := e.base.SetCommand(uri, resource, lime.MediaTypeJSON)
	if err != nil {
		return nil, err
	}
	return e.base.Process(ctx, command)
}

// decodeTunnel returns an empty Tunnel for a response without a
// resource.
func decodeTunnel(response *lime.Command) (*Tunnel, error) {
	var decoded Tunnel
	if !response.HasResource() {
		return &decoded, nil
	}
	if err := response.DecodeResource(&decoded); err != nil {
		return nil, fmt.Errorf("tunnel: %w", err)
	}
	return &decoded, nil
}
