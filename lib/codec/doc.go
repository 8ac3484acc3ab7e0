// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec is the CBOR configuration for the local gateway socket.
//
// The BLiP HTTP API speaks JSON. The gateway socket used by
// transport.SocketSender speaks CBOR, so envelopes cross a format
// boundary there: command resources arrive from extensions as raw JSON
// and are transcoded with [FromJSON] before encoding, and response
// resources are transcoded back with [ToJSON].
//
// The encoder uses Core Deterministic Encoding (RFC 8949 §4.2). Types
// implementing encoding.TextMarshaler (lime.Node, lime.Identity) encode
// as CBOR text strings.
//
//	data, err := codec.Marshal(value)
//	err = codec.Unmarshal(data, &value)
//
// Stream use on a connection:
//
//	encoder := codec.NewEncoder(conn)
//	decoder := codec.NewDecoder(conn)
//
// fxamacker/cbor reads `json` struct tags when `cbor` tags are absent.
// Types shared by both formats carry only `json` tags.
package codec
