// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package transport delivers LIME envelopes to the BLiP platform.
//
// [Sender] is the boundary the extension layer depends on: one method
// for request/response commands and three fire-and-forget methods for
// commands, messages and notifications. Extensions never see a concrete
// transport.
//
// Two implementations are provided:
//
//   - [HTTPSender] posts JSON envelopes to the BLiP HTTP API
//     ({base}/commands, {base}/messages, {base}/notifications) with an
//     "Authorization: Key ..." header. The key lives in a
//     secret.Buffer. An optional x/time/rate limiter paces requests.
//   - [SocketSender] talks CBOR to a local gateway over a unix socket,
//     one request per connection. Command resources are transcoded
//     between JSON and CBOR at the socket boundary.
//
// [Instrument] wraps any Sender with prometheus metrics and an
// OpenTelemetry span per command.
//
// Senders hold no session state and never retry. A failed request is
// reported to the caller unchanged; a command response with status
// "failure" is not an error at this layer.
package transport
