// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package client bundles every extension behind one value sharing a
// single sender.
//
// Destinations are resolved once, at construction: an extension whose
// name appears in the domains map talks to postmaster@<domain>, every
// other extension keeps its built-in destination.
//
//	cfg, err := config.Load()
//	...
//	blip, err := client.FromConfig(cfg, client.ConfigOptions{Logger: logger})
//	...
//	defer blip.Close()
//	response, err := blip.Bucket.Get(ctx, "session", nil)
package client

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/bureau-foundation/blip/extension"
	"github.com/bureau-foundation/blip/extension/broadcast"
	"github.com/bureau-foundation/blip/extension/bucket"
	"github.com/bureau-foundation/blip/extension/builder"
	"github.com/bureau-foundation/blip/extension/contacts"
	"github.com/bureau-foundation/blip/extension/contactsjourney"
	"github.com/bureau-foundation/blip/extension/delegation"
	"github.com/bureau-foundation/blip/extension/directory"
	"github.com/bureau-foundation/blip/extension/eventtracker"
	"github.com/bureau-foundation/blip/extension/helpdesk"
	"github.com/bureau-foundation/blip/extension/media"
	"github.com/bureau-foundation/blip/extension/profile"
	"github.com/bureau-foundation/blip/extension/resource"
	"github.com/bureau-foundation/blip/extension/scheduler"
	"github.com/bureau-foundation/blip/extension/threads"
	"github.com/bureau-foundation/blip/extension/tunnel"
	"github.com/bureau-foundation/blip/lib/clock"
	"github.com/bureau-foundation/blip/lib/lime"
	"github.com/bureau-foundation/blip/transport"
)

// Extension names, as used in the domains map.
const (
	NameBroadcast       = "broadcast"
	NameBucket          = "bucket"
	NameBuilder         = "builder"
	NameContacts        = "contacts"
	NameContactsJourney = "contactsjourney"
	NameDelegation      = "delegation"
	NameEventTracker    = "eventtracker"
	NameHelpDesk        = "helpdesk"
	NameMedia           = "media"
	NameProfile         = "profile"
	NameResource        = "resource"
	NameScheduler       = "scheduler"
	NameThreads         = "threads"
	NameTunnel          = "tunnel"

	nameDirectory = "directory"
)

// Names lists every extension name accepted in the domains map. The
// directory extension is absent: it addresses each query to the queried
// identity's own domain.
var Names = []string{
	NameBroadcast, NameBucket, NameBuilder, NameContacts, NameContactsJourney,
	NameDelegation, NameEventTracker, NameHelpDesk, NameMedia, NameProfile,
	NameResource, NameScheduler, NameThreads, NameTunnel,
}

// Options configures New.
type Options struct {
	// Domains maps extension names to the domain of their postmaster.
	Domains map[string]string

	// Logger is passed to every extension. Defaults to slog.Default().
	Logger *slog.Logger

	// Clock is passed to every extension. Defaults to the wall clock.
	Clock clock.Clock
}

// Client holds one instance of each extension. All of them share the
// sender given to New. A Client is safe for concurrent use.
type Client struct {
	sender transport.Sender
	closer io.Closer

	Broadcast       *broadcast.Extension
	Bucket          *bucket.Extension
	Builder         *builder.Extension
	Contacts        *contacts.Extension
	ContactsJourney *contactsjourney.Extension
	Delegation      *delegation.Extension
	Directory       *directory.Extension
	EventTracker    *eventtracker.Extension
	HelpDesk        *helpdesk.Extension
	Media           *media.Extension
	Profile         *profile.Extension
	Resource        *resource.Extension
	Scheduler       *scheduler.Extension
	Threads         *threads.Extension
	Tunnel          *tunnel.Extension
}

// New builds every extension over sender.
func New(sender transport.Sender, options Options) (*Client, error) {
	if sender == nil {
		return nil, fmt.Errorf("client: sender is required")
	}
	destinations, err := resolveDomains(options.Domains)
	if err != nil {
		return nil, err
	}
	configFor := func(name string) extension.Config {
		return extension.Config{
			Sender: sender,
			To:     destinations[name],
			Logger: options.Logger,
			Clock:  options.Clock,
		}
	}

	client := &Client{sender: sender}
	if client.Broadcast, err = broadcast.New(configFor(NameBroadcast)); err != nil {
		return nil, creating(NameBroadcast, err)
	}
	if client.Bucket, err = bucket.New(configFor(NameBucket)); err != nil {
		return nil, creating(NameBucket, err)
	}
	if client.Builder, err = builder.New(configFor(NameBuilder)); err != nil {
		return nil, creating(NameBuilder, err)
	}
	if client.Contacts, err = contacts.New(configFor(NameContacts)); err != nil {
		return nil, creating(NameContacts, err)
	}
	if client.ContactsJourney, err = contactsjourney.New(configFor(NameContactsJourney)); err != nil {
		return nil, creating(NameContactsJourney, err)
	}
	if client.Delegation, err = delegation.New(configFor(NameDelegation)); err != nil {
		return nil, creating(NameDelegation, err)
	}
	if client.Directory, err = directory.New(configFor(nameDirectory)); err != nil {
		return nil, creating(nameDirectory, err)
	}
	if client.EventTracker, err = eventtracker.New(configFor(NameEventTracker)); err != nil {
		return nil, creating(NameEventTracker, err)
	}
	if client.HelpDesk, err = helpdesk.New(configFor(NameHelpDesk)); err != nil {
		return nil, creating(NameHelpDesk, err)
	}
	if client.Media, err = media.New(configFor(NameMedia)); err != nil {
		return nil, creating(NameMedia, err)
	}
	if client.Profile, err = profile.New(configFor(NameProfile)); err != nil {
		return nil, creating(NameProfile, err)
	}
	if client.Resource, err = resource.New(configFor(NameResource)); err != nil {
		return nil, creating(NameResource, err)
	}
	if client.Scheduler, err = scheduler.New(configFor(NameScheduler)); err != nil {
		return nil, creating(NameScheduler, err)
	}
	if client.Threads, err = threads.New(configFor(NameThreads)); err != nil {
		return nil, creating(NameThreads, err)
	}
	if client.Tunnel, err = tunnel.New(configFor(NameTunnel)); err != nil {
		return nil, creating(NameTunnel, err)
	}
	return client, nil
}

func creating(name string, err error) error {
	return fmt.Errorf("client: creating %s extension: %w", name, err)
}

// Sender returns the sender shared by the extensions.
func (c *Client) Sender() transport.Sender { return c.sender }

// Close releases the sender's resources when the client created the
// sender itself (FromConfig). It is a no-op otherwise.
func (c *Client) Close() error {
	if c.closer == nil {
		return nil
	}
	return c.closer.Close()
}

// resolveDomains turns the domains map into postmaster nodes. Unknown
// extension names are rejected so that a typo in configuration does
// not silently fall back to the default destination.
func resolveDomains(domains map[string]string) (map[string]lime.Node, error) {
	known := make(map[string]bool, len(Names))
	for _, name := range Names {
		known[name] = true
	}
	destinations := make(map[string]lime.Node, len(domains))
	for name, domain := range domains {
		if !known[name] {
			return nil, fmt.Errorf("client: unknown extension %q in domains", name)
		}
		if domain == "" {
			continue
		}
		node, err := lime.Postmaster(domain)
		if err != nil {
			return nil, fmt.Errorf("client: domain for %s: %w", name, err)
		}
		destinations[name] = node
	}
	return destinations, nil
}
