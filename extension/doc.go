// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package extension is the shared contract behind every BLiP extension.
//
// An extension is a thin facade over one platform service. It builds
// LIME commands addressed to the service's postmaster node, dispatches
// them through a transport.Sender and reshapes the response. Every
// extension embeds a [Base], which provides:
//
//   - URI construction: [BuildURI] substitutes {0}, {1}, ... with
//     segments percent-encoded exactly once, and [BuildResourceQuery]
//     appends a query string from a [Query], skipping empty values.
//   - Command construction: GetCommand, DeleteCommand, SetCommand,
//     MergeCommand and ObserveCommand, addressed to the extension's
//     destination node.
//   - A single dispatch point, [Base.Process], which validates the
//     command, assigns a correlation id, calls the sender once and turns
//     a failure response into a [*FailureError].
//
// Nothing in this package retries, caches or holds state between calls.
//
// # Errors
//
// Validation problems are reported as [*ArgumentError] before anything
// is sent; errors.Is(err, [ErrInvalidArgument]) matches them. Failure
// responses are [*FailureError] carrying the platform's reason;
// [IsNotFound] recognizes the "resource not found" reason. Transport
// errors are wrapped with %w and otherwise untouched.
//
// Individual operations may map a not-found failure to an absent result
// (broadcast membership checks, profile reads). Each such operation
// documents it; the base never does.
package extension
