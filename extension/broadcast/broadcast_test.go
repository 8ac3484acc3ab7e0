// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package broadcast

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/bureau-foundation/blip/extension"
	"github.com/bureau-foundation/blip/extension/extensiontest"
	"github.com/bureau-foundation/blip/lib/lime"
)

var ana = lime.MustParseIdentity("ana@msging.net")

func newExtension(t *testing.T) (*Extension, *extensiontest.Sender) {
	t.Helper()
	sender := extensiontest.NewSender()
	ext, err := New(extension.Config{Sender: sender})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return ext, sender
}

func TestListIdentity(t *testing.T) {
	identity, err := ListIdentity("news")
	if err != nil {
		t.Fatalf("ListIdentity: %v", err)
	}
	if identity.String() != "news@broadcast.msging.net" {
		t.Errorf("identity = %s", identity)
	}
	for _, name := range []string{"", "  ", "news@other.net", "a/b", "tab\tname"} {
		if _, err := ListIdentity(name); !errors.Is(err, extension.ErrInvalidArgument) {
			t.Errorf("ListIdentity(%q) error = %v", name, err)
		}
	}
}

func TestCreateDistributionList(t *testing.T) {
	ext, sender := newExtension(t)
	if _, err := ext.CreateDistributionList(context.Background(), "news"); err != nil {
		t.Fatalf("CreateDistributionList: %v", err)
	}
	command := sender.LastCommand()
	if command.Method != lime.MethodSet || command.URI != "/lists" || command.To != DefaultTo() {
		t.Errorf("command = %s %s to %s", command.Method, command.URI, command.To)
	}
	if command.Type != MediaTypeDistributionList || string(command.Resource) != `{"identity":"news@broadcast.msging.net"}` {
		t.Errorf("type = %q resource = %s", command.Type, command.Resource)
	}
}

func TestListNameWithSpaces(t *testing.T) {
	ext, sender := newExtension(t)
	ctx := context.Background()
	if _, err := ext.CreateDistributionList(ctx, "My List"); err != nil {
		t.Fatalf("CreateDistributionList: %v", err)
	}
	if got := string(sender.LastCommand().Resource); got != `{"identity":"My List@broadcast.msging.net"}` {
		t.Errorf("resource = %s", got)
	}
	if _, err := ext.DeleteDistributionList(ctx, "My List"); err != nil {
		t.Fatalf("DeleteDistributionList: %v", err)
	}
	if got := sender.LastCommand().URI; got != "/lists/My%20List%40broadcast.msging.net" {
		t.Errorf("uri = %s", got)
	}
	if sender.Dispatches() != 2 {
		t.Errorf("dispatches = %d, want 2", sender.Dispatches())
	}
}

func TestRecipientCommands(t *testing.T) {
	ext, sender := newExtension(t)
	ctx := context.Background()

	if _, err := ext.AddRecipient(ctx, "news", ana); err != nil {
		t.Fatalf("AddRecipient: %v", err)
	}
	added := sender.LastCommand()
	if added.Method != lime.MethodSet || added.URI != "/lists/news%40broadcast.msging.net/recipients" {
		t.Errorf("add = %s %s", added.Method, added.URI)
	}
	if added.Type != lime.MediaTypeIdentityJSON || string(added.Resource) != `{"value":"ana@msging.net"}` {
		t.Errorf("add type = %q resource = %s", added.Type, added.Resource)
	}

	if _, err := ext.DeleteRecipient(ctx, "news", ana); err != nil {
		t.Fatalf("DeleteRecipient: %v", err)
	}
	removed := sender.LastCommand()
	if removed.Method != lime.MethodDelete ||
		removed.URI != "/lists/news%40broadcast.msging.net/recipients/ana%40msging.net" {
		t.Errorf("delete = %s %s", removed.Method, removed.URI)
	}

	if _, err := ext.DeleteDistributionList(ctx, "news"); err != nil {
		t.Fatalf("DeleteDistributionList: %v", err)
	}
	if uri := sender.LastCommand().URI; uri != "/lists/news%40broadcast.msging.net" {
		t.Errorf("delete list uri = %s", uri)
	}
}

func TestHasRecipient(t *testing.T) {
	ext, sender := newExtension(t)
	ctx := context.Background()

	found, err := ext.HasRecipient(ctx, "news", ana)
	if err != nil || !found {
		t.Fatalf("HasRecipient on success = %v, %v", found, err)
	}
	if command := sender.LastCommand(); command.Method != lime.MethodGet {
		t.Errorf("method = %s", command.Method)
	}

	sender.FailWith(lime.ReasonCommandResourceNotFound, "Resource not found")
	found, err = ext.HasRecipient(ctx, "news", ana)
	if err != nil || found {
		t.Errorf("HasRecipient on not found = %v, %v", found, err)
	}

	sender.FailWith(lime.ReasonCommandProcessingError, "Internal error")
	if _, err := ext.HasRecipient(ctx, "news", ana); extension.ReasonCode(err) != lime.ReasonCommandProcessingError {
		t.Errorf("HasRecipient on other failure error = %v", err)
	}

	broken := fmt.Errorf("connection reset")
	sender.ErrorWith(broken)
	if _, err := ext.HasRecipient(ctx, "news", ana); !errors.Is(err, broken) {
		t.Errorf("HasRecipient on transport error = %v", err)
	}
}

func TestGetRecipients(t *testing.T) {
	ext, sender := newExtension(t)
	sender.RespondWith(`{"itemType":"application/vnd.lime.identity","items":["a@msging.net","b@msging.net","c@msging.net"],"total":3}`,
		lime.MediaTypeCollection)

	recipients, err := ext.GetRecipients(context.Background(), "news", extension.Page{Take: 3})
	if err != nil {
		t.Fatalf("GetRecipients: %v", err)
	}
	if recipients.Total != 3 || len(recipients.Items) != 3 {
		t.Fatalf("recipients = %+v", recipients)
	}
	for index, want := range []string{"a@msging.net", "b@msging.net", "c@msging.net"} {
		if got := recipients.Items[index].String(); got != want {
			t.Errorf("item %d = %s, want %s", index, got, want)
		}
	}
	if uri := sender.LastCommand().URI; uri != "/lists/news%40broadcast.msging.net/recipients?$skip=0&$take=3" {
		t.Errorf("uri = %s", uri)
	}
}

func TestGetDistributionLists(t *testing.T) {
	ext, sender := newExtension(t)
	sender.RespondWith(`{"items":["news@broadcast.msging.net"]}`, lime.MediaTypeCollection)

	lists, err := ext.GetDistributionLists(context.Background(), extension.Page{})
	if err != nil {
		t.Fatalf("GetDistributionLists: %v", err)
	}
	if lists.Total != 1 || lists.Items[0].Name() != "news" {
		t.Errorf("lists = %+v", lists)
	}
	if uri := sender.LastCommand().URI; uri != "/lists?$skip=0&$take=100" {
		t.Errorf("uri = %s", uri)
	}
}

func TestSendMessage(t *testing.T) {
	ext, sender := newExtension(t)
	message, err := ext.SendMessage(context.Background(), "news", lime.PlainText("hello all"))
	if err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	messages := sender.Messages()
	if len(messages) != 1 || sender.Dispatches() != 1 {
		t.Fatalf("messages = %d dispatches = %d", len(messages), sender.Dispatches())
	}
	sent := messages[0]
	if sent.To.String() != "news@broadcast.msging.net" || sent.Type != lime.MediaTypeText || string(sent.Content) != `"hello all"` {
		t.Errorf("sent = %+v", sent)
	}
	if sent.ID == "" || sent.ID != message.ID {
		t.Errorf("id = %q, returned %q", sent.ID, message.ID)
	}

	if _, err := ext.SendMessage(context.Background(), "news", lime.Content{}); !errors.Is(err, extension.ErrInvalidArgument) {
		t.Errorf("empty content error = %v", err)
	}
}

func TestBlankArgumentsAreRejected(t *testing.T) {
	ext, sender := newExtension(t)
	ctx := context.Background()

	calls := []struct {
		name string
		call func() error
	}{
		{"Create", func() error { _, err := ext.CreateDistributionList(ctx, " "); return err }},
		{"Delete", func() error { _, err := ext.DeleteDistributionList(ctx, ""); return err }},
		{"AddRecipient", func() error { _, err := ext.AddRecipient(ctx, "news", lime.Identity{}); return err }},
		{"DeleteRecipient", func() error { _, err := ext.DeleteRecipient(ctx, "", ana); return err }},
		{"HasRecipient", func() error { _, err := ext.HasRecipient(ctx, "news", lime.Identity{}); return err }},
		{"GetRecipients", func() error { _, err := ext.GetRecipients(ctx, "\n", extension.Page{}); return err }},
		{"SendMessage", func() error { _, err := ext.SendMessage(ctx, "", lime.PlainText("x")); return err }},
	}
	for _, tt := range calls {
		if err := tt.call(); !errors.Is(err, extension.ErrInvalidArgument) {
			t.Errorf("%s: error = %v, want invalid argument", tt.name, err)
		}
	}
	if sender.Dispatches() != 0 {
		t.Errorf("dispatches = %d, want 0", sender.Dispatches())
	}
}
