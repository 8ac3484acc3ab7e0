// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package extension

import (
	"encoding/json"
	"fmt"

	"github.com/bureau-foundation/blip/lib/lime"
)

// DocumentCollection is a page of documents returned by a collection
// query, with items in the order the platform sent them.
type DocumentCollection[T any] struct {
	ItemType string `json:"itemType,omitempty"`
	Items    []T    `json:"items"`
	// Total is the number of documents available. It defaults to
	// len(Items) when the platform omits it.
	Total int `json:"total"`
}

// UnmarshalJSON decodes a collection and fills in a missing total.
func (c *DocumentCollection[T]) UnmarshalJSON(data []byte) error {
	var wire struct {
		ItemType string `json:"itemType"`
		Items    []T    `json:"items"`
		Total    *int   `json:"total"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	c.ItemType = wire.ItemType
	c.Items = wire.Items
	if wire.Total != nil {
		c.Total = *wire.Total
	} else {
		c.Total = len(wire.Items)
	}
	return nil
}

// DecodeCollection decodes the collection carried by response. A
// response without a resource yields an empty collection.
func DecodeCollection[T any](response *lime.Command) (*DocumentCollection[T], error) {
	collection := &DocumentCollection[T]{}
	if !response.HasResource() {
		return collection, nil
	}
	if err := json.Unmarshal(response.Resource, collection); err != nil {
		return nil, fmt.Errorf("extension: decoding collection from %s: %w", response.URI, err)
	}
	return collection, nil
}
