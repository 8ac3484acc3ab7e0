// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package netutil

import (
	"bytes"
	"fmt"
	"testing"
)

func TestReadResponse(t *testing.T) {
	t.Run("normal body", func(t *testing.T) {
		data, err := ReadResponse(bytes.NewReader([]byte(`{"status":"success"}`)))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if string(data) != `{"status":"success"}` {
			t.Fatalf("got %q", data)
		}
	})

	t.Run("bounded", func(t *testing.T) {
		oversized := bytes.Repeat([]byte("x"), int(MaxResponseSize)+10)
		data, err := ReadResponse(bytes.NewReader(oversized))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if int64(len(data)) != MaxResponseSize {
			t.Fatalf("read %d bytes, want %d", len(data), MaxResponseSize)
		}
	})

	t.Run("read error propagates", func(t *testing.T) {
		if _, err := ReadResponse(&failReader{}); err == nil {
			t.Fatal("expected error from failing reader")
		}
	})
}

func TestDecodeResponse(t *testing.T) {
	var command struct {
		ID     string `json:"id"`
		Method string `json:"method"`
	}
	body := bytes.NewReader([]byte(`{"id":"1","method":"get"}`))
	if err := DecodeResponse(body, &command); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if command.ID != "1" || command.Method != "get" {
		t.Fatalf("decoded %+v", command)
	}

	if err := DecodeResponse(bytes.NewReader([]byte(`not json`)), &command); err == nil {
		t.Fatal("expected error for invalid JSON")
	}
	if err := DecodeResponse(&failReader{}, &command); err == nil {
		t.Fatal("expected error from failing reader")
	}
}

func TestErrorBody(t *testing.T) {
	if got := ErrorBody(bytes.NewReader([]byte("Unauthorized"))); got != "Unauthorized" {
		t.Fatalf("got %q", got)
	}
	if got := ErrorBody(&failReader{}); got != "" {
		t.Fatalf("expected empty from failing reader, got %q", got)
	}
}

type failReader struct{}

func (*failReader) Read([]byte) (int, error) {
	return 0, fmt.Errorf("simulated read failure")
}
