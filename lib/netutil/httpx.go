// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package netutil bounds HTTP response reads for the BLiP HTTP API.
//
// Every response body read goes through [ReadResponse], [DecodeResponse]
// or [ErrorBody], which stop at [MaxResponseSize]. Command responses are
// small JSON documents; the bound only matters when a proxy or gateway
// misbehaves.
package netutil

import (
	"encoding/json"
	"fmt"
	"io"
)

// MaxResponseSize is the largest response body read from the API: 32 MB.
const MaxResponseSize int64 = 32 << 20

// ReadResponse reads a response body up to MaxResponseSize bytes.
func ReadResponse(body io.Reader) ([]byte, error) {
	return io.ReadAll(io.LimitReader(body, MaxResponseSize))
}

// DecodeResponse reads a response body up to MaxResponseSize bytes and
// JSON-decodes it into v.
func DecodeResponse(body io.Reader, v any) error {
	data, err := ReadResponse(body)
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}
	return json.Unmarshal(data, v)
}

// ErrorBody returns an error response body as a string for diagnostics.
// Read errors are ignored; a partial body is still useful.
func ErrorBody(body io.Reader) string {
	data, _ := ReadResponse(body)
	return string(data)
}
