// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package extension

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bureau-foundation/blip/lib/lime"
)

// ErrInvalidArgument matches every *ArgumentError under errors.Is.
var ErrInvalidArgument = errors.New("invalid argument")

// ArgumentError reports a missing or malformed argument. It is returned
// before any command is dispatched.
type ArgumentError struct {
	Argument string
	Problem  string
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("extension: %s %s", e.Argument, e.Problem)
}

// Is reports whether target is ErrInvalidArgument.
func (e *ArgumentError) Is(target error) bool {
	return target == ErrInvalidArgument
}

// RequireText returns an *ArgumentError when value is empty or only
// whitespace.
func RequireText(argument, value string) error {
	if strings.TrimSpace(value) == "" {
		return &ArgumentError{Argument: argument, Problem: "cannot be empty or whitespace"}
	}
	return nil
}

// RequireIdentity returns an *ArgumentError when identity is the zero
// value.
func RequireIdentity(argument string, identity lime.Identity) error {
	if identity.IsZero() {
		return &ArgumentError{Argument: argument, Problem: "is required"}
	}
	return nil
}

// RequireNode returns an *ArgumentError when node is the zero value.
func RequireNode(argument string, node lime.Node) error {
	if node.IsZero() {
		return &ArgumentError{Argument: argument, Problem: "is required"}
	}
	return nil
}

// FailureError is a command answered with status "failure".
//
//	var failure *FailureError
//	if errors.As(err, &failure) && failure.Reason.Code == lime.ReasonCommandResourceNotFound { ... }
type FailureError struct {
	Method lime.Method
	URI    string
	To     lime.Node
	Reason lime.Reason
}

func (e *FailureError) Error() string {
	return fmt.Sprintf("extension: %s %s to %s failed: %s", e.Method, e.URI, e.To, e.Reason)
}

// IsNotFound reports whether err is a failure whose reason is "resource
// not found": code 67, or a description containing "not found" in any
// case.
func IsNotFound(err error) bool {
	var failure *FailureError
	if !errors.As(err, &failure) {
		return false
	}
	if failure.Reason.Code == lime.ReasonCommandResourceNotFound {
		return true
	}
	return strings.Contains(strings.ToLower(failure.Reason.Description), "not found")
}

// ReasonCode returns the reason code of a *FailureError in err's chain,
// or 0 when there is none.
func ReasonCode(err error) int {
	var failure *FailureError
	if errors.As(err, &failure) {
		return failure.Reason.Code
	}
	return 0
}
