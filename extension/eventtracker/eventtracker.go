// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package eventtracker records custom analytics events and reads back
// their aggregated counts.
//
// Events are grouped by category and action. Counts are kept per day,
// so report filters take calendar dates.
package eventtracker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/bureau-foundation/blip/extension"
	"github.com/bureau-foundation/blip/lib/lime"
)

// MediaTypeEventTrack is the type of a tracked event.
const MediaTypeEventTrack = "application/vnd.iris.eventTrack+json"

// DateLayout is the wire format of report date filters.
const DateLayout = "2006-01-02"

var defaultTo = lime.MustPostmaster("analytics.msging.net")

// DefaultTo returns the analytics service node.
func DefaultTo() lime.Node { return defaultTo }

const (
	eventsURI        = "/events"
	eventCategoryURI = "/events/{0}"
	eventActionURI   = "/events/{0}/{1}"
)

// TrackOptions are the optional parts of a tracked event.
type TrackOptions struct {
	// Identity attributes the event to a contact.
	Identity lime.Identity

	// Extras are free-form attributes stored with the event.
	Extras map[string]string
}

// ActionsFilter narrows a report. Zero fields are not sent.
type ActionsFilter struct {
	Page  extension.Page
	Start time.Time
	End   time.Time
}

func (f ActionsFilter) query() extension.Query {
	query := f.Page.Query()
	if !f.Start.IsZero() {
		query["startDate"] = f.Start.Format(DateLayout)
	}
	if !f.End.IsZero() {
		query["endDate"] = f.End.Format(DateLayout)
	}
	return query
}

// Event is one row of a report: a category, optionally an action, and
// how many times it was tracked.
type Event struct {
	Category    string `json:"category"`
	Action      string `json:"action,omitempty"`
	Count       int    `json:"count,omitempty"`
	StorageDate string `json:"storageDate,omitempty"`

	// Extras holds members not covered by the fields above.
	Extras map[string]json.RawMessage `json:"-"`
}

type event Event

// UnmarshalJSON decodes a report row, keeping unknown members in Extras.
func (e *Event) UnmarshalJSON(data []byte) error {
	var decoded event
	extras, err := extension.UnmarshalWithExtras(data, &decoded)
	if err != nil {
		return err
	}
	*e = Event(decoded)
	e.Extras = extras
	return nil
}

// MarshalJSON encodes a report row with its Extras.
func (e Event) MarshalJSON() ([]byte, error) {
	return extension.MarshalWithExtras(event(e), e.Extras)
}

type track struct {
	Category string            `json:"category"`
	Action   string            `json:"action"`
	Extras   map[string]string `json:"extras,omitempty"`
	Identity *lime.Identity    `json:"identity,omitempty"`
}

// Extension is the event tracker client.
type Extension struct {
	base extension.Base
}

// New creates an event tracker extension.
func New(config extension.Config) (*Extension, error) {
	base, err := extension.NewBase(config, defaultTo)
	if err != nil {
		return nil, err
	}
	return &Extension{base: base}, nil
}

// Track records one occurrence of category/action.
func (e *Extension) Track(ctx context.Context, category, action string, options TrackOptions) (*lime.Command, error) {
	if err := extension.RequireText("category", category); err != nil {
		return nil, err
	}
	if err := extension.RequireText("action", action); err != nil {
		return nil, err
	}
	resource := track{Category: category, Action: action, Extras: options.Extras}
	if !options.Identity.IsZero() {
		resource.Identity = &options.Identity
	}
	command, err := e.base.SetCommand(eventsURI, resource, MediaTypeEventTrack)
	if err != nil {
		return nil, err
	}
	return e.base.Process(ctx, command)
}

// GetCategories lists tracked categories.
func (e *Extension) GetCategories(ctx context.Context, page extension.Page, query extension.Query) (*extension.DocumentCollection[Event], error) {
	return e.report(ctx, extension.BuildResourceQuery(eventsURI, page.Query().With(query)))
}

// GetActions lists the daily action counts of category.
func (e *Extension) GetActions(ctx context.Context, category string, filter ActionsFilter, query extension.Query) (*extension.DocumentCollection[Event], error) {
	if err := extension.RequireText("category", category); err != nil {
		return nil, err
	}
	uri := extension.BuildURI(eventCategoryURI, category)
	return e.report(ctx, extension.BuildResourceQuery(uri, filter.query().With(query)))
}

// GetActionCounts lists the daily counts of one action of category.
func (e *Extension) GetActionCounts(ctx context.Context, category, action string, filter ActionsFilter) (*extension.DocumentCollection[Event], error) {
	if err := extension.RequireText("category", category); err != nil {
		return nil, err
	}
	if err := extension.RequireText("action", action); err != nil {
		return nil, err
	}
	uri := extension.BuildURI(eventActionURI, category, action)
	return e.report(ctx, extension.BuildResourceQuery(uri, filter.query()))
}

func (e *Extension) report(ctx context.Context, uri string) (*extension.DocumentCollection[Event], error) {
	response, err := e.base.Process(ctx, e.base.GetCommand(uri))
	if err != nil {
		return nil, err
	}
	return extension.DecodeCollection[Event](response)
}
