// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package extension_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/bureau-foundation/blip/extension"
	"github.com/bureau-foundation/blip/lib/lime"
)

func TestRequireText(t *testing.T) {
	for _, value := range []string{"", " ", "\t\n"} {
		err := extension.RequireText("id", value)
		if !errors.Is(err, extension.ErrInvalidArgument) {
			t.Errorf("RequireText(%q) = %v", value, err)
		}
		var argumentErr *extension.ArgumentError
		if !errors.As(err, &argumentErr) || argumentErr.Argument != "id" {
			t.Errorf("RequireText(%q) argument = %+v", value, argumentErr)
		}
	}
	if err := extension.RequireText("id", "x"); err != nil {
		t.Errorf("RequireText(x) = %v", err)
	}
}

func TestRequireIdentityAndNode(t *testing.T) {
	if err := extension.RequireIdentity("identity", lime.Identity{}); !errors.Is(err, extension.ErrInvalidArgument) {
		t.Errorf("RequireIdentity(zero) = %v", err)
	}
	if err := extension.RequireIdentity("identity", lime.MustParseIdentity("a@b.c")); err != nil {
		t.Errorf("RequireIdentity(valid) = %v", err)
	}
	if err := extension.RequireNode("to", lime.Node{}); !errors.Is(err, extension.ErrInvalidArgument) {
		t.Errorf("RequireNode(zero) = %v", err)
	}
}

func TestIsNotFound(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"code 67", &extension.FailureError{Reason: lime.Reason{Code: 67}}, true},
		{"description", &extension.FailureError{Reason: lime.Reason{Code: 1, Description: "Resource NOT FOUND"}}, true},
		{"wrapped", fmt.Errorf("outer: %w", &extension.FailureError{Reason: lime.Reason{Code: 67}}), true},
		{"other failure", &extension.FailureError{Reason: lime.Reason{Code: 61, Description: "timeout"}}, false},
		{"plain error", errors.New("not found"), false},
		{"nil", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extension.IsNotFound(tt.err); got != tt.want {
				t.Errorf("IsNotFound = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFailureErrorMessage(t *testing.T) {
	err := &extension.FailureError{
		Method: lime.MethodDelete,
		URI:    "/messages/daily",
		To:     lime.MustPostmaster("scheduler.msging.net"),
		Reason: lime.Reason{Code: 67, Description: "Resource not found"},
	}
	want := "extension: delete /messages/daily to postmaster@scheduler.msging.net failed: Resource not found (code 67)"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
	if extension.ReasonCode(errors.New("x")) != 0 {
		t.Error("ReasonCode of a plain error should be 0")
	}
}
