// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package lime

import (
	"fmt"
	"strings"
)

// PostmasterName is the conventional name of a domain's administrative
// identity. Platform services listen on postmaster@<service domain>.
const PostmasterName = "postmaster"

// Identity is a validated name@domain address. The name may be empty, in
// which case the identity is the bare domain.
//
// Identity is an immutable value type. The zero value is not valid; use
// IsZero to check.
type Identity struct {
	name   string
	domain string
}

// NewIdentity validates and builds an identity from its parts.
func NewIdentity(name, domain string) (Identity, error) {
	if err := validateName(name); err != nil {
		return Identity{}, err
	}
	if err := validateDomain(domain); err != nil {
		return Identity{}, err
	}
	return Identity{name: name, domain: domain}, nil
}

// ParseIdentity parses "name@domain" or a bare "domain".
func ParseIdentity(raw string) (Identity, error) {
	if raw == "" {
		return Identity{}, fmt.Errorf("lime: identity is empty")
	}
	if strings.Contains(raw, "/") {
		return Identity{}, fmt.Errorf("lime: identity %q must not contain an instance", raw)
	}
	name, domain := splitIdentity(raw)
	return NewIdentity(name, domain)
}

// MustParseIdentity is like ParseIdentity but panics on error. Use in
// tests and static initialization where the input is known-valid.
func MustParseIdentity(raw string) Identity {
	identity, err := ParseIdentity(raw)
	if err != nil {
		panic(fmt.Sprintf("lime.MustParseIdentity(%q): %v", raw, err))
	}
	return identity
}

// Name returns the name part, which may be empty.
func (i Identity) Name() string { return i.name }

// Domain returns the domain part.
func (i Identity) Domain() string { return i.domain }

// IsZero reports whether the Identity is the zero value.
func (i Identity) IsZero() bool { return i.domain == "" }

// String returns the canonical form: "name@domain", or "domain" when the
// name is empty.
func (i Identity) String() string {
	if i.name == "" {
		return i.domain
	}
	return i.name + "@" + i.domain
}

// ToNode returns the node for this identity with no instance.
func (i Identity) ToNode() Node {
	return Node{identity: i}
}

// MarshalText implements encoding.TextMarshaler.
func (i Identity) MarshalText() ([]byte, error) {
	return []byte(i.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. An empty input
// produces the zero value.
func (i *Identity) UnmarshalText(data []byte) error {
	if len(data) == 0 {
		*i = Identity{}
		return nil
	}
	parsed, err := ParseIdentity(string(data))
	if err != nil {
		return err
	}
	*i = parsed
	return nil
}

// Node is a validated name@domain/instance address: an identity plus an
// optional instance naming one of its connected endpoints.
//
// Node is an immutable value type. The zero value is not valid; use
// IsZero to check.
type Node struct {
	identity Identity
	instance string
}

// NewNode validates and builds a node from its parts.
func NewNode(name, domain, instance string) (Node, error) {
	identity, err := NewIdentity(name, domain)
	if err != nil {
		return Node{}, err
	}
	if err := validateInstance(instance); err != nil {
		return Node{}, err
	}
	return Node{identity: identity, instance: instance}, nil
}

// ParseNode parses "name@domain/instance". The name and instance parts
// are optional.
func ParseNode(raw string) (Node, error) {
	if raw == "" {
		return Node{}, fmt.Errorf("lime: node is empty")
	}
	identityPart, instance, _ := strings.Cut(raw, "/")
	name, domain := splitIdentity(identityPart)
	return NewNode(name, domain, instance)
}

// MustParseNode is like ParseNode but panics on error.
func MustParseNode(raw string) Node {
	node, err := ParseNode(raw)
	if err != nil {
		panic(fmt.Sprintf("lime.MustParseNode(%q): %v", raw, err))
	}
	return node
}

// Postmaster returns the postmaster node of a domain, e.g.
// postmaster@bucket.msging.net.
func Postmaster(domain string) (Node, error) {
	return NewNode(PostmasterName, domain, "")
}

// MustPostmaster is like Postmaster but panics on error. Use for
// well-known service addresses.
func MustPostmaster(domain string) Node {
	node, err := Postmaster(domain)
	if err != nil {
		panic(fmt.Sprintf("lime.MustPostmaster(%q): %v", domain, err))
	}
	return node
}

// Identity returns the node's identity (the node without its instance).
func (n Node) Identity() Identity { return n.identity }

// Name returns the name part, which may be empty.
func (n Node) Name() string { return n.identity.name }

// Domain returns the domain part.
func (n Node) Domain() string { return n.identity.domain }

// Instance returns the instance part, which may be empty.
func (n Node) Instance() string { return n.instance }

// IsZero reports whether the Node is the zero value.
func (n Node) IsZero() bool { return n.identity.IsZero() }

// String returns the canonical form "name@domain/instance", omitting
// empty parts.
func (n Node) String() string {
	if n.instance == "" {
		return n.identity.String()
	}
	return n.identity.String() + "/" + n.instance
}

// MarshalText implements encoding.TextMarshaler.
func (n Node) MarshalText() ([]byte, error) {
	return []byte(n.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. An empty input
// produces the zero value.
func (n *Node) UnmarshalText(data []byte) error {
	if len(data) == 0 {
		*n = Node{}
		return nil
	}
	parsed, err := ParseNode(string(data))
	if err != nil {
		return err
	}
	*n = parsed
	return nil
}

// splitIdentity splits at the last '@'. Without an '@' the whole string
// is the domain.
func splitIdentity(raw string) (name, domain string) {
	index := strings.LastIndexByte(raw, '@')
	if index < 0 {
		return "", raw
	}
	return raw[:index], raw[index+1:]
}
