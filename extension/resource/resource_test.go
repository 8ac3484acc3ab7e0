// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package resource

import (
	"context"
	"errors"
	"testing"

	"github.com/bureau-foundation/blip/extension"
	"github.com/bureau-foundation/blip/extension/extensiontest"
	"github.com/bureau-foundation/blip/lib/lime"
)

func newExtension(t *testing.T) (*Extension, *extensiontest.Sender) {
	t.Helper()
	sender := extensiontest.NewSender()
	ext, err := New(extension.Config{Sender: sender})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return ext, sender
}

func TestSet(t *testing.T) {
	ext, sender := newExtension(t)
	if _, err := ext.Set(context.Background(), "welcome text", "Olá!", lime.MediaTypeText); err != nil {
		t.Fatalf("Set: %v", err)
	}
	command := sender.LastCommand()
	if command.Method != lime.MethodSet || command.URI != "/resources/welcome%20text" {
		t.Errorf("command = %s %s", command.Method, command.URI)
	}
	if command.To.String() != "postmaster@msging.net" {
		t.Errorf("to = %s", command.To)
	}
	if command.Type != lime.MediaTypeText || string(command.Resource) != `"Olá!"` {
		t.Errorf("type = %q resource = %s", command.Type, command.Resource)
	}
}

func TestGetAndDelete(t *testing.T) {
	ext, sender := newExtension(t)
	sender.RespondWith(`"Olá!"`, lime.MediaTypeText)

	response, err := ext.Get(context.Background(), "welcome")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if response.Type != lime.MediaTypeText || string(response.Resource) != `"Olá!"` {
		t.Errorf("response = %+v", response)
	}
	if _, err := ext.Delete(context.Background(), "welcome"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if command := sender.LastCommand(); command.Method != lime.MethodDelete || command.URI != "/resources/welcome" {
		t.Errorf("delete = %s %s", command.Method, command.URI)
	}
}

func TestGetAll(t *testing.T) {
	ext, sender := newExtension(t)
	sender.RespondWith(`{"items":["welcome","farewell"]}`, lime.MediaTypeCollection)

	names, err := ext.GetAll(context.Background(), extension.Page{Take: 20}, extension.Query{"$filter": "startswith(name,'w')"})
	if err != nil {
		t.Fatalf("GetAll: %v", err)
	}
	if names.Total != 2 || names.Items[0] != "welcome" || names.Items[1] != "farewell" {
		t.Errorf("names = %+v", names)
	}
	want := "/resources?$filter=startswith%28name%2C%27w%27%29&$take=20"
	if uri := sender.LastCommand().URI; uri != want {
		t.Errorf("uri = %s, want %s", uri, want)
	}
}

func TestGetAllWithoutPaging(t *testing.T) {
	ext, sender := newExtension(t)
	sender.RespondWith(`{"items":[]}`, lime.MediaTypeCollection)

	if _, err := ext.GetAll(context.Background(), extension.Page{}, nil); err != nil {
		t.Fatalf("GetAll: %v", err)
	}
	if uri := sender.LastCommand().URI; uri != "/resources" {
		t.Errorf("uri = %s, want /resources", uri)
	}
}

func TestValidation(t *testing.T) {
	ext, sender := newExtension(t)
	ctx := context.Background()
	if _, err := ext.Get(ctx, ""); !errors.Is(err, extension.ErrInvalidArgument) {
		t.Errorf("Get blank = %v", err)
	}
	if _, err := ext.Set(ctx, "x", nil, ""); !errors.Is(err, extension.ErrInvalidArgument) {
		t.Errorf("Set nil = %v", err)
	}
	if _, err := ext.Delete(ctx, " "); !errors.Is(err, extension.ErrInvalidArgument) {
		t.Errorf("Delete blank = %v", err)
	}
	if sender.Dispatches() != 0 {
		t.Errorf("dispatches = %d", sender.Dispatches())
	}
}
