// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package contactsjourney

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/bureau-foundation/blip/extension"
	"github.com/bureau-foundation/blip/extension/extensiontest"
	"github.com/bureau-foundation/blip/lib/clock"
	"github.com/bureau-foundation/blip/lib/lime"
)

var epoch = time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)

func newExtension(t *testing.T) (*Extension, *extensiontest.Sender) {
	t.Helper()
	sender := extensiontest.NewSender()
	ext, err := New(extension.Config{Sender: sender, Clock: clock.Fake(epoch)})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return ext, sender
}

type journey struct {
	CurrentStateID   string  `json:"currentStateId"`
	CurrentStateName string  `json:"currentStateName"`
	PreviousStateID  *string `json:"previousStateId"`
	ContactIdentity  *string `json:"contactIdentity"`
	StorageDate      string  `json:"storageDate"`
}

func TestAddWaitsForResponse(t *testing.T) {
	ext, sender := newExtension(t)
	entry := Entry{
		StateID:         "welcome",
		StateName:       "Welcome",
		PreviousStateID: "start",
		ContactIdentity: lime.MustParseIdentity("ana@msging.net"),
	}
	if err := ext.Add(context.Background(), entry, false); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if len(sender.Commands()) != 1 || len(sender.SentCommands()) != 0 {
		t.Fatalf("processed = %d sent = %d", len(sender.Commands()), len(sender.SentCommands()))
	}
	command := sender.LastCommand()
	if command.Method != lime.MethodSet || command.URI != "/contacts-journey" || command.To != DefaultTo() {
		t.Errorf("command = %s %s to %s", command.Method, command.URI, command.To)
	}
	var decoded journey
	if err := json.Unmarshal(command.Resource, &decoded); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if decoded.CurrentStateID != "welcome" || decoded.CurrentStateName != "Welcome" {
		t.Errorf("journey = %+v", decoded)
	}
	if decoded.PreviousStateID == nil || *decoded.PreviousStateID != "start" {
		t.Errorf("previous state = %v", decoded.PreviousStateID)
	}
	if decoded.ContactIdentity == nil || *decoded.ContactIdentity != "ana@msging.net" {
		t.Errorf("contact identity = %v", decoded.ContactIdentity)
	}
	if decoded.StorageDate != "2026-10-17T09:00:00Z" {
		t.Errorf("storage date = %s", decoded.StorageDate)
	}
}

func TestAddFireAndForget(t *testing.T) {
	ext, sender := newExtension(t)
	if err := ext.Add(context.Background(), Entry{StateID: "s", StateName: "S"}, true); err != nil {
		t.Fatalf("Add: %v", err)
	}
	sent := sender.SentCommands()
	if len(sent) != 1 || len(sender.Commands()) != 0 {
		t.Fatalf("sent = %d processed = %d", len(sent), len(sender.Commands()))
	}
	if sent[0].Method != lime.MethodObserve || sent[0].URI != "/contacts-journey" || sent[0].ID == "" {
		t.Errorf("sent = %+v", sent[0])
	}
	var decoded journey
	if err := json.Unmarshal(sent[0].Resource, &decoded); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if decoded.PreviousStateID != nil || decoded.ContactIdentity != nil {
		t.Errorf("optional members present: %s", sent[0].Resource)
	}
}

func TestAddRequiresState(t *testing.T) {
	ext, sender := newExtension(t)
	for _, entry := range []Entry{{StateName: "S"}, {StateID: "s", StateName: " "}} {
		if err := ext.Add(context.Background(), entry, false); !errors.Is(err, extension.ErrInvalidArgument) {
			t.Errorf("Add(%+v) = %v", entry, err)
		}
	}
	if sender.Dispatches() != 0 {
		t.Errorf("dispatches = %d", sender.Dispatches())
	}
}

func TestAddPropagatesFailure(t *testing.T) {
	ext, sender := newExtension(t)
	sender.FailWith(lime.ReasonCommandProcessingError, "analytics unavailable")
	err := ext.Add(context.Background(), Entry{StateID: "s", StateName: "S"}, false)
	if extension.ReasonCode(err) != lime.ReasonCommandProcessingError {
		t.Errorf("error = %v", err)
	}
}
