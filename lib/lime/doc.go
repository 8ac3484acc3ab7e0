// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package lime provides the envelope model of the LIME protocol as used
// by the BLiP messaging platform.
//
// Addressing uses two immutable value types. [Identity] is name@domain
// and identifies a user, a bot, or a service domain. [Node] is
// name@domain/instance and identifies one addressable endpoint of an
// identity. Both validate at construction, marshal to their canonical
// string form via encoding.TextMarshaler, and compare with ==.
//
// Three envelope types travel between a client and the platform:
//
//   - [Command] -- a request/response envelope (get, set, merge, delete,
//     observe, subscribe) carrying a URI, an optional resource, and on
//     the response side a status and failure [Reason].
//   - [Message] -- fire-and-forget content delivered to a node.
//   - [Notification] -- delivery events about a previously sent message.
//
// Resources and message contents are held as raw JSON so that callers
// decode them into their own types. [Content] pairs a raw value with its
// media type.
//
// This package performs no I/O. Transports live in the transport package.
package lime
