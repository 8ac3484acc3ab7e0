// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package helpdesk

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/bureau-foundation/blip/extension"
	"github.com/bureau-foundation/blip/extension/extensiontest"
	"github.com/bureau-foundation/blip/lib/lime"
)

var customer = lime.MustParseIdentity("ana@wa.gw.msging.net")

func newExtension(t *testing.T) (*Extension, *extensiontest.Sender) {
	t.Helper()
	sender := extensiontest.NewSender()
	ext, err := New(extension.Config{Sender: sender})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return ext, sender
}

func TestForwardMessageToAgent(t *testing.T) {
	ext, sender := newExtension(t)
	message := &lime.Message{
		ID:      "m-1",
		From:    lime.MustParseNode("ana@wa.gw.msging.net/phone"),
		To:      lime.MustParseNode("bot@msging.net"),
		Type:    lime.MediaTypeText,
		Content: json.RawMessage(`"I need help"`),
	}

	forwarded, err := ext.ForwardMessageToAgent(context.Background(), message)
	if err != nil {
		t.Fatalf("ForwardMessageToAgent: %v", err)
	}
	messages := sender.Messages()
	if len(messages) != 1 {
		t.Fatalf("messages = %d", len(messages))
	}
	sent := messages[0]
	if sent.ID != "fwd:m-1" || forwarded.ID != sent.ID {
		t.Errorf("id = %q", sent.ID)
	}
	if sent.To.String() != "ana%40wa.gw.msging.net%2Fphone@desk.msging.net" {
		t.Errorf("to = %s", sent.To)
	}
	if sent.Type != lime.MediaTypeText || string(sent.Content) != `"I need help"` {
		t.Errorf("content = %s %s", sent.Type, sent.Content)
	}
}

func TestForwardRequiresSender(t *testing.T) {
	ext, sender := newExtension(t)
	if _, err := ext.ForwardMessageToAgent(context.Background(), &lime.Message{ID: "x"}); !errors.Is(err, extension.ErrInvalidArgument) {
		t.Errorf("error = %v", err)
	}
	if _, err := ext.ForwardMessageToAgent(context.Background(), nil); !errors.Is(err, extension.ErrInvalidArgument) {
		t.Errorf("nil message error = %v", err)
	}
	if sender.Dispatches() != 0 {
		t.Errorf("dispatches = %d", sender.Dispatches())
	}
}

func TestIsFromAgent(t *testing.T) {
	tests := []struct {
		name    string
		message *lime.Message
		want    bool
	}{
		{"agent", &lime.Message{From: lime.MustParseNode("ana%40wa.gw.msging.net@desk.msging.net/agent")}, true},
		{"customer", &lime.Message{From: lime.MustParseNode("ana@wa.gw.msging.net")}, false},
		{"no sender", &lime.Message{}, false},
		{"nil", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsFromAgent(tt.message); got != tt.want {
				t.Errorf("IsFromAgent = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCreateTicket(t *testing.T) {
	ext, sender := newExtension(t)
	sender.RespondWith(`{"id":"t-1","sequentialId":12,"status":"Waiting","customerIdentity":"ana@wa.gw.msging.net","priority":2}`, MediaTypeTicket)

	created, err := ext.CreateTicket(context.Background(), customer, lime.PlainText("order #99 is late"))
	if err != nil {
		t.Fatalf("CreateTicket: %v", err)
	}
	if created.ID != "t-1" || created.SequentialID != 12 || created.Status != StatusWaiting || created.CustomerIdentity != customer {
		t.Errorf("ticket = %+v", created)
	}
	if string(created.Extras["priority"]) != "2" {
		t.Errorf("extras = %v", created.Extras)
	}
	command := sender.LastCommand()
	if command.Method != lime.MethodSet || command.URI != "/tickets/ana%40wa.gw.msging.net" || command.To != DefaultTo() {
		t.Errorf("command = %s %s to %s", command.Method, command.URI, command.To)
	}
	if command.Type != lime.MediaTypeText || string(command.Resource) != `"order #99 is late"` {
		t.Errorf("type = %q resource = %s", command.Type, command.Resource)
	}
}

func TestCreateTicketValidation(t *testing.T) {
	ext, sender := newExtension(t)
	ctx := context.Background()
	if _, err := ext.CreateTicket(ctx, customer, lime.Content{}); !errors.Is(err, extension.ErrInvalidArgument) {
		t.Errorf("missing context = %v", err)
	}
	if _, err := ext.CreateTicket(ctx, lime.Identity{}, lime.PlainText("x")); !errors.Is(err, extension.ErrInvalidArgument) {
		t.Errorf("missing customer = %v", err)
	}
	if _, err := ext.CreateTicketWithData(ctx, nil); !errors.Is(err, extension.ErrInvalidArgument) {
		t.Errorf("nil ticket = %v", err)
	}
	if _, err := ext.CloseTicketAsUser(ctx, " "); !errors.Is(err, extension.ErrInvalidArgument) {
		t.Errorf("blank ticket id = %v", err)
	}
	if sender.Dispatches() != 0 {
		t.Errorf("dispatches = %d", sender.Dispatches())
	}
}

func TestCreateTicketWithData(t *testing.T) {
	ext, sender := newExtension(t)
	sender.RespondWith(`{"id":"t-2","status":"Open"}`, MediaTypeTicket)

	created, err := ext.CreateTicketWithData(context.Background(), &Ticket{
		CustomerIdentity: customer,
		Team:             "billing",
	})
	if err != nil {
		t.Fatalf("CreateTicketWithData: %v", err)
	}
	if created.ID != "t-2" {
		t.Errorf("ticket = %+v", created)
	}
	command := sender.LastCommand()
	if command.URI != "/tickets" || command.Type != MediaTypeTicket {
		t.Errorf("command = %s %s", command.URI, command.Type)
	}
	if string(command.Resource) != `{"team":"billing","customerIdentity":"ana@wa.gw.msging.net"}` {
		t.Errorf("resource = %s", command.Resource)
	}
}

func TestCloseTicket(t *testing.T) {
	tests := []struct {
		name  string
		close func(*Extension) (*lime.Command, error)
		uri   string
	}{
		{
			name:  "with redirect",
			close: func(ext *Extension) (*lime.Command, error) { return ext.CloseTicketAsUser(context.Background(), "t-1") },
			uri:   "/tickets/change-status",
		},
		{
			name: "without redirect",
			close: func(ext *Extension) (*lime.Command, error) {
				return ext.CloseTicketAsUserWithoutRedirect(context.Background(), "t-1")
			},
			uri: "/tickets/change-status-without-redirect",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ext, sender := newExtension(t)
			if _, err := tt.close(ext); err != nil {
				t.Fatalf("close: %v", err)
			}
			command := sender.LastCommand()
			if command.Method != lime.MethodSet || command.URI != tt.uri {
				t.Errorf("command = %s %s", command.Method, command.URI)
			}
			if string(command.Resource) != `{"id":"t-1","status":"ClosedClient"}` {
				t.Errorf("resource = %s", command.Resource)
			}
		})
	}
}

func TestTicketQueries(t *testing.T) {
	ext, sender := newExtension(t)
	ctx := context.Background()

	sender.RespondWith(`{"items":[{"id":"first","status":"Open"},{"id":"second","status":"Open"}]}`, lime.MediaTypeCollection)
	open, err := ext.GetUserOpenTicket(ctx, customer)
	if err != nil {
		t.Fatalf("GetUserOpenTicket: %v", err)
	}
	if open == nil || open.ID != "first" {
		t.Errorf("open = %+v", open)
	}
	want := "/tickets?$filter=customerIdentity%20eq%20%27ana%40wa.gw.msging.net%27%20and%20status%20eq%20%27Open%27"
	if uri := sender.LastCommand().URI; uri != want {
		t.Errorf("uri = %s\nwant %s", uri, want)
	}

	sender.RespondWith(`{"items":[],"total":0}`, lime.MediaTypeCollection)
	active, err := ext.GetCustomerActiveTicket(ctx, customer)
	if err != nil || active != nil {
		t.Errorf("GetCustomerActiveTicket on empty = %+v, %v", active, err)
	}
	want = "/tickets?$filter=customerIdentity%20eq%20%27ana%40wa.gw.msging.net%27%20and%20%28status%20eq%20%27Open%27%20or%20status%20eq%20%27Waiting%27%20or%20status%20eq%20%27Assigned%27%29"
	if uri := sender.LastCommand().URI; uri != want {
		t.Errorf("uri = %s\nwant %s", uri, want)
	}
}
