// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package extension_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/bureau-foundation/blip/extension"
	"github.com/bureau-foundation/blip/extension/extensiontest"
	"github.com/bureau-foundation/blip/lib/lime"
)

var serviceNode = lime.MustPostmaster("service.msging.net")

func newBase(t *testing.T, sender *extensiontest.Sender) extension.Base {
	t.Helper()
	base, err := extension.NewBase(extension.Config{Sender: sender}, serviceNode)
	if err != nil {
		t.Fatalf("NewBase: %v", err)
	}
	return base
}

func TestNewBase(t *testing.T) {
	if _, err := extension.NewBase(extension.Config{}, serviceNode); err == nil {
		t.Error("expected error without sender")
	}

	sender := extensiontest.NewSender()
	base := newBase(t, sender)
	if base.To() != serviceNode {
		t.Errorf("default To = %s", base.To())
	}
	if base.Logger() == nil || base.Clock() == nil {
		t.Error("logger and clock should default")
	}

	override := lime.MustPostmaster("other.example.net")
	overridden, err := extension.NewBase(extension.Config{Sender: sender, To: override}, serviceNode)
	if err != nil {
		t.Fatalf("NewBase: %v", err)
	}
	if overridden.To() != override {
		t.Errorf("overridden To = %s", overridden.To())
	}
}

func TestCommandConstructors(t *testing.T) {
	base := newBase(t, extensiontest.NewSender())

	get := base.GetCommand("/items")
	if get.Method != lime.MethodGet || get.URI != "/items" || get.To != serviceNode || get.HasResource() {
		t.Errorf("GetCommand = %+v", get)
	}
	del := base.DeleteCommand("/items/1")
	if del.Method != lime.MethodDelete || del.HasResource() {
		t.Errorf("DeleteCommand = %+v", del)
	}

	set, err := base.SetCommand("/items", map[string]string{"name": "a"}, "")
	if err != nil {
		t.Fatalf("SetCommand: %v", err)
	}
	if set.Method != lime.MethodSet || set.Type != lime.MediaTypeJSON || string(set.Resource) != `{"name":"a"}` {
		t.Errorf("SetCommand = %+v (%s)", set, set.Resource)
	}

	merge, err := base.MergeCommand("/items", json.RawMessage(`{"x":1}`), "application/vnd.example+json")
	if err != nil {
		t.Fatalf("MergeCommand: %v", err)
	}
	if merge.Method != lime.MethodMerge || merge.Type != "application/vnd.example+json" || string(merge.Resource) != `{"x":1}` {
		t.Errorf("MergeCommand = %+v", merge)
	}

	observe, err := base.ObserveCommand("/events", "text", lime.MediaTypeText)
	if err != nil {
		t.Fatalf("ObserveCommand: %v", err)
	}
	if observe.Method != lime.MethodObserve || string(observe.Resource) != `"text"` {
		t.Errorf("ObserveCommand = %+v", observe)
	}
}

func TestSetCommand_NilResource(t *testing.T) {
	base := newBase(t, extensiontest.NewSender())

	var nilMap map[string]any
	var nilPointer *struct{}
	for _, resource := range []any{nil, nilMap, nilPointer, json.RawMessage(nil)} {
		_, err := base.SetCommand("/items", resource, "")
		if !errors.Is(err, extension.ErrInvalidArgument) {
			t.Errorf("SetCommand(%#v) error = %v, want invalid argument", resource, err)
		}
	}
	if _, err := base.SetCommand("/items", json.RawMessage(`{broken`), ""); err == nil {
		t.Error("expected error for invalid raw JSON")
	}
}

func TestProcess_Success(t *testing.T) {
	sender := extensiontest.NewSender()
	sender.RespondWith(`{"text":"hi"}`, lime.MediaTypeJSON)
	base := newBase(t, sender)

	command := &lime.Command{Method: lime.MethodGet, URI: "/greeting"}
	response, err := base.Process(context.Background(), command)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if command.ID == "" {
		t.Error("Process did not assign an id")
	}
	if command.To != serviceNode {
		t.Errorf("Process did not default To: %s", command.To)
	}
	if response.ID != command.ID || string(response.Resource) != `{"text":"hi"}` {
		t.Errorf("response = %+v", response)
	}
	if sender.Dispatches() != 1 {
		t.Errorf("dispatches = %d, want 1", sender.Dispatches())
	}
}

func TestProcess_KeepsExplicitIDAndDestination(t *testing.T) {
	sender := extensiontest.NewSender()
	base := newBase(t, sender)
	elsewhere := lime.MustParseNode("postmaster@elsewhere.net/instance")

	command := &lime.Command{ID: "fixed", To: elsewhere, Method: lime.MethodGet, URI: "/x"}
	if _, err := base.Process(context.Background(), command); err != nil {
		t.Fatalf("Process: %v", err)
	}
	recorded := sender.LastCommand()
	if recorded.ID != "fixed" || recorded.To != elsewhere {
		t.Errorf("recorded = %+v", recorded)
	}
}

func TestProcess_Failure(t *testing.T) {
	sender := extensiontest.NewSender()
	sender.FailWith(lime.ReasonCommandResourceNotFound, "Resource not found")
	base := newBase(t, sender)

	_, err := base.Process(context.Background(), base.GetCommand("/items/1"))
	var failure *extension.FailureError
	if !errors.As(err, &failure) {
		t.Fatalf("expected *FailureError, got %v", err)
	}
	if failure.Method != lime.MethodGet || failure.URI != "/items/1" || failure.To != serviceNode {
		t.Errorf("failure = %+v", failure)
	}
	if !extension.IsNotFound(err) {
		t.Error("IsNotFound = false")
	}
	if extension.ReasonCode(err) != lime.ReasonCommandResourceNotFound {
		t.Errorf("ReasonCode = %d", extension.ReasonCode(err))
	}
}

func TestProcess_FailureWithoutReason(t *testing.T) {
	sender := extensiontest.NewSender()
	sender.Handle(func(command *lime.Command) (*lime.Command, error) {
		return &lime.Command{ID: command.ID, Method: command.Method, Status: lime.StatusFailure}, nil
	})
	base := newBase(t, sender)

	_, err := base.Process(context.Background(), base.GetCommand("/x"))
	if extension.ReasonCode(err) != lime.ReasonGeneralError {
		t.Errorf("ReasonCode = %d, want %d", extension.ReasonCode(err), lime.ReasonGeneralError)
	}
}

func TestProcess_TransportError(t *testing.T) {
	sender := extensiontest.NewSender()
	transportErr := errors.New("connection reset")
	sender.ErrorWith(transportErr)
	base := newBase(t, sender)

	_, err := base.Process(context.Background(), base.GetCommand("/x"))
	if !errors.Is(err, transportErr) {
		t.Fatalf("expected wrapped transport error, got %v", err)
	}
	if extension.IsNotFound(err) {
		t.Error("transport error reported as not found")
	}
}

func TestProcess_IDMismatch(t *testing.T) {
	sender := extensiontest.NewSender()
	sender.Handle(func(command *lime.Command) (*lime.Command, error) {
		return &lime.Command{ID: "someone-else", Status: lime.StatusSuccess}, nil
	})
	base := newBase(t, sender)

	if _, err := base.Process(context.Background(), base.GetCommand("/x")); err == nil {
		t.Fatal("expected error for mismatched response id")
	}
}

func TestProcess_Validation(t *testing.T) {
	tests := []struct {
		name    string
		command *lime.Command
	}{
		{"nil command", nil},
		{"missing method", &lime.Command{URI: "/x"}},
		{"empty uri", &lime.Command{Method: lime.MethodGet}},
		{"blank uri", &lime.Command{Method: lime.MethodGet, URI: "  "}},
		{"set without resource", &lime.Command{Method: lime.MethodSet, URI: "/x"}},
		{"merge with null resource", &lime.Command{Method: lime.MethodMerge, URI: "/x", Resource: json.RawMessage("null")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sender := extensiontest.NewSender()
			base := newBase(t, sender)
			_, err := base.Process(context.Background(), tt.command)
			if !errors.Is(err, extension.ErrInvalidArgument) {
				t.Fatalf("error = %v, want invalid argument", err)
			}
			if sender.Dispatches() != 0 {
				t.Errorf("dispatches = %d, want 0", sender.Dispatches())
			}
		})
	}
}

func TestSend(t *testing.T) {
	sender := extensiontest.NewSender()
	base := newBase(t, sender)

	command, err := base.ObserveCommand("/events", map[string]string{"a": "b"}, "")
	if err != nil {
		t.Fatalf("ObserveCommand: %v", err)
	}
	if err := base.Send(context.Background(), command); err != nil {
		t.Fatalf("Send: %v", err)
	}
	sent := sender.SentCommands()
	if len(sent) != 1 || sent[0].ID == "" || sent[0].Method != lime.MethodObserve {
		t.Fatalf("sent = %+v", sent)
	}
	if len(sender.Commands()) != 0 {
		t.Error("Send should not process the command")
	}
	if err := base.Send(context.Background(), &lime.Command{Method: lime.MethodObserve}); !errors.Is(err, extension.ErrInvalidArgument) {
		t.Errorf("Send without uri error = %v", err)
	}
}

func TestSendMessage(t *testing.T) {
	sender := extensiontest.NewSender()
	base := newBase(t, sender)

	message := &lime.Message{To: lime.MustParseNode("user@0mn.io"), Type: lime.MediaTypeText, Content: json.RawMessage(`"hi"`)}
	if err := base.SendMessage(context.Background(), message); err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if message.ID == "" {
		t.Error("SendMessage did not assign an id")
	}
	if got := sender.Messages(); len(got) != 1 || got[0].ID != message.ID {
		t.Errorf("messages = %+v", got)
	}
	if err := base.SendMessage(context.Background(), &lime.Message{}); !errors.Is(err, extension.ErrInvalidArgument) {
		t.Errorf("SendMessage without destination error = %v", err)
	}
	if err := base.SendMessage(context.Background(), nil); !errors.Is(err, extension.ErrInvalidArgument) {
		t.Errorf("SendMessage(nil) error = %v", err)
	}
}
