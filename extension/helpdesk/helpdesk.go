// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package helpdesk hands conversations over to human agents through
// BLiP Desk and manages the resulting tickets.
//
// A customer's messages reach agents by being forwarded to an identity
// in the desk domain whose name is the escaped customer node. Agent
// replies arrive from that same domain, which is what IsFromAgent
// checks.
package helpdesk

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/bureau-foundation/blip/extension"
	"github.com/bureau-foundation/blip/lib/lime"
)

// Domain is the BLiP Desk domain.
const Domain = "desk.msging.net"

// MediaTypeTicket is the type of a ticket resource.
const MediaTypeTicket = "application/vnd.iris.ticket+json"

// Ticket statuses.
const (
	StatusWaiting      = "Waiting"
	StatusOpen         = "Open"
	StatusAssigned     = "Assigned"
	StatusClosedClient = "ClosedClient"
)

// forwardIDPrefix marks the ids of forwarded messages.
const forwardIDPrefix = "fwd:"

var defaultTo = lime.MustPostmaster(Domain)

// DefaultTo returns the desk service node.
func DefaultTo() lime.Node { return defaultTo }

const (
	ticketsURI                     = "/tickets"
	customerTicketURI              = "/tickets/{0}"
	changeStatusURI                = "/tickets/change-status"
	changeStatusWithoutRedirectURI = "/tickets/change-status-without-redirect"
)

// Ticket is a support ticket.
type Ticket struct {
	ID               string          `json:"id,omitempty"`
	SequentialID     int             `json:"sequentialId,omitempty"`
	Status           string          `json:"status,omitempty"`
	Team             string          `json:"team,omitempty"`
	CustomerIdentity lime.Identity   `json:"customerIdentity,omitzero"`
	AgentIdentity    lime.Identity   `json:"agentIdentity,omitzero"`
	Context          json.RawMessage `json:"context,omitempty"`

	// Extras holds members not covered by the fields above.
	Extras map[string]json.RawMessage `json:"-"`
}

type ticket Ticket

// UnmarshalJSON decodes a ticket, keeping unknown members in Extras.
func (t *Ticket) UnmarshalJSON(data []byte) error {
	var decoded ticket
	extras, err := extension.UnmarshalWithExtras(data, &decoded)
	if err != nil {
		return err
	}
	*t = Ticket(decoded)
	t.Extras = extras
	return nil
}

// MarshalJSON encodes a ticket with its Extras.
func (t Ticket) MarshalJSON() ([]byte, error) {
	return extension.MarshalWithExtras(ticket(t), t.Extras)
}

type statusChange struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// Extension is the helpdesk client.
type Extension struct {
	base extension.Base
}

// New creates a helpdesk extension.
func New(config extension.Config) (*Extension, error) {
	base, err := extension.NewBase(config, defaultTo)
	if err != nil {
		return nil, err
	}
	return &Extension{base: base}, nil
}

// ForwardMessageToAgent forwards a customer's message to the desk.
// The forwarded copy has id "fwd:<original id>" and is addressed to the
// desk identity of the sender. It returns the forwarded message.
func (e *Extension) ForwardMessageToAgent(ctx context.Context, message *lime.Message) (*lime.Message, error) {
	if message == nil {
		return nil, &extension.ArgumentError{Argument: "message", Problem: "is required"}
	}
	if err := extension.RequireNode("message.from", message.From); err != nil {
		return nil, err
	}
	deskIdentity, err := lime.NewIdentity(extension.Escape(message.From.String()), Domain)
	if err != nil {
		return nil, fmt.Errorf("helpdesk: desk identity for %s: %w", message.From, err)
	}
	id := message.ID
	if id == "" {
		id = lime.NewID()
	}
	forwarded := &lime.Message{
		ID:      forwardIDPrefix + id,
		To:      deskIdentity.ToNode(),
		Type:    message.Type,
		Content: message.Content,
	}
	if err := e.base.SendMessage(ctx, forwarded); err != nil {
		return nil, err
	}
	return forwarded, nil
}

// IsFromAgent reports whether message is an agent's reply relayed by
// the desk.
func IsFromAgent(message *lime.Message) bool {
	return message != nil && message.From.Domain() == Domain
}

// CreateTicket opens a ticket for customer. ticketContext is shown to
// the agent as the ticket's initial context and is required.
func (e *Extension) CreateTicket(ctx context.Context, customer lime.Identity, ticketContext lime.Content) (*Ticket, error) {
	if err := extension.RequireIdentity("customerIdentity", customer); err != nil {
		return nil, err
	}
	if ticketContext.IsZero() {
		return nil, &extension.ArgumentError{Argument: "context", Problem: "is required"}
	}
	uri := extension.BuildURI(customerTicketURI, customer.String())
	command, err := e.base.SetCommand(uri, ticketContext.Value, ticketContext.Type)
	if err != nil {
		return nil, err
	}
	return e.processTicket(ctx, command)
}

// CreateTicketWithData opens a ticket from a prepared document.
func (e *Extension) CreateTicketWithData(ctx context.Context, data *Ticket) (*Ticket, error) {
	command, err := e.base.SetCommand(ticketsURI, data, MediaTypeTicket)
	if err != nil {
		return nil, err
	}
	return e.processTicket(ctx, command)
}

// CloseTicketAsUser closes the ticket on the customer's behalf. The
// desk then redirects the customer back to the bot.
func (e *Extension) CloseTicketAsUser(ctx context.Context, ticketID string) (*lime.Command, error) {
	return e.closeTicket(ctx, changeStatusURI, ticketID)
}

// CloseTicketAsUserWithoutRedirect closes the ticket on the customer's
// behalf without the desk's redirect message.
func (e *Extension) CloseTicketAsUserWithoutRedirect(ctx context.Context, ticketID string) (*lime.Command, error) {
	return e.closeTicket(ctx, changeStatusWithoutRedirectURI, ticketID)
}

// GetUserOpenTicket returns the customer's ticket in status Open, or nil
// when there is none.
func (e *Extension) GetUserOpenTicket(ctx context.Context, customer lime.Identity) (*Ticket, error) {
	if err := extension.RequireIdentity("customerIdentity", customer); err != nil {
		return nil, err
	}
	filter := fmt.Sprintf("customerIdentity eq '%s' and status eq '%s'", customer, StatusOpen)
	return e.firstTicket(ctx, filter)
}

// GetCustomerActiveTicket returns the customer's ticket that is Open,
// Waiting or Assigned, or nil when there is none.
func (e *Extension) GetCustomerActiveTicket(ctx context.Context, customer lime.Identity) (*Ticket, error) {
	if err := extension.RequireIdentity("customerIdentity", customer); err != nil {
		return nil, err
	}
	filter := fmt.Sprintf("customerIdentity eq '%s' and (status eq '%s' or status eq '%s' or status eq '%s')",
		customer, StatusOpen, StatusWaiting, StatusAssigned)
	return e.firstTicket(ctx, filter)
}

func (e *Extension) closeTicket(ctx context.Context, uri, ticketID string) (*lime.Command, error) {
	if err := extension.RequireText("ticketId", ticketID); err != nil {
		return nil, err
	}
	command, err := e.base.SetCommand(uri, statusChange{ID: ticketID, Status: StatusClosedClient}, MediaTypeTicket)
	if err != nil {
		return nil, err
	}
	return e.base.Process(ctx, command)
}

func (e *Extension) processTicket(ctx context.Context, command *lime.Command) (*Ticket, error) {
	response, err := e.base.Process(ctx, command)
	if err != nil {
		return nil, err
	}
	var created Ticket
	if err := response.DecodeResource(&created); err != nil {
		return nil, fmt.Errorf("helpdesk: %w", err)
	}
	return &created, nil
}

func (e *Extension) firstTicket(ctx context.Context, filter string) (*Ticket, error) {
	uri := extension.BuildResourceQuery(ticketsURI, extension.Query{"$filter": filter})
	response, err := e.base.Process(ctx, e.base.GetCommand(uri))
	if err != nil {
		return nil, err
	}
	tickets, err := extension.DecodeCollection[Ticket](response)
	if err != nil {
		return nil, err
	}
	if len(tickets.Items) == 0 {
		return nil, nil
	}
	return &tickets.Items[0], nil
}
