// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package lime_test

import (
	"encoding/json"
	"testing"

	"github.com/bureau-foundation/blip/lib/lime"
)

func TestParseNode(t *testing.T) {
	tests := []struct {
		name         string
		raw          string
		wantName     string
		wantDomain   string
		wantInstance string
		wantErr      bool
	}{
		{name: "full", raw: "bot@msging.net/default", wantName: "bot", wantDomain: "msging.net", wantInstance: "default"},
		{name: "no-instance", raw: "postmaster@bucket.msging.net", wantName: "postmaster", wantDomain: "bucket.msging.net"},
		{name: "bare-domain", raw: "msging.net", wantDomain: "msging.net"},
		{name: "escaped-name", raw: "alice%40mail.com@tunnel.msging.net", wantName: "alice%40mail.com", wantDomain: "tunnel.msging.net"},
		{name: "instance-with-slash", raw: "bot@msging.net/a/b", wantName: "bot", wantDomain: "msging.net", wantInstance: "a/b"},
		{name: "empty", raw: "", wantErr: true},
		{name: "empty-domain", raw: "bot@", wantErr: true},
		{name: "double-at", raw: "a@b@msging.net", wantErr: true},
		{name: "name-with-space", raw: "My List@broadcast.msging.net", wantName: "My List", wantDomain: "broadcast.msging.net"},
		{name: "name-with-tab", raw: "my\tbot@msging.net", wantErr: true},
		{name: "domain-space", raw: "bot@msging .net", wantErr: true},
		{name: "instance-space", raw: "bot@msging.net/my instance", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node, err := lime.ParseNode(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got node %v", node)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if node.Name() != tt.wantName {
				t.Errorf("Name() = %q, want %q", node.Name(), tt.wantName)
			}
			if node.Domain() != tt.wantDomain {
				t.Errorf("Domain() = %q, want %q", node.Domain(), tt.wantDomain)
			}
			if node.Instance() != tt.wantInstance {
				t.Errorf("Instance() = %q, want %q", node.Instance(), tt.wantInstance)
			}
			if node.String() != tt.raw {
				t.Errorf("String() = %q, want %q", node.String(), tt.raw)
			}
			if node.IsZero() {
				t.Error("IsZero() = true for valid node")
			}
		})
	}
}

func TestParseIdentity(t *testing.T) {
	identity, err := lime.ParseIdentity("sales@broadcast.msging.net")
	if err != nil {
		t.Fatalf("ParseIdentity: %v", err)
	}
	if identity.Name() != "sales" || identity.Domain() != "broadcast.msging.net" {
		t.Errorf("unexpected identity parts: %q %q", identity.Name(), identity.Domain())
	}
	if identity.ToNode().String() != "sales@broadcast.msging.net" {
		t.Errorf("ToNode() = %q", identity.ToNode())
	}

	if _, err := lime.ParseIdentity("sales@broadcast.msging.net/instance"); err == nil {
		t.Error("expected error for identity with instance")
	}
}

func TestNodeEquality(t *testing.T) {
	first := lime.MustParseNode("postmaster@scheduler.msging.net")
	second := lime.MustPostmaster("scheduler.msging.net")
	if first != second {
		t.Errorf("%v != %v", first, second)
	}
	if first.Identity() != lime.MustParseIdentity("postmaster@scheduler.msging.net") {
		t.Error("Identity() does not match parsed identity")
	}
}

func TestNodeJSON(t *testing.T) {
	type wrapper struct {
		To   lime.Node     `json:"to"`
		From lime.Node     `json:"from,omitzero"`
		Who  lime.Identity `json:"who"`
	}

	original := wrapper{
		To:  lime.MustParseNode("bot@msging.net/default"),
		Who: lime.MustParseIdentity("alice@wa.gw.msging.net"),
	}
	data, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	want := `{"to":"bot@msging.net/default","who":"alice@wa.gw.msging.net"}`
	if string(data) != want {
		t.Errorf("Marshal = %s, want %s", data, want)
	}

	var decoded wrapper
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if decoded != original {
		t.Errorf("round trip = %+v, want %+v", decoded, original)
	}

	if err := json.Unmarshal([]byte(`{"to":"bad\tnode@x"}`), &decoded); err == nil {
		t.Error("expected error for invalid node")
	}
}
