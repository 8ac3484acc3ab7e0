// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package transport

import (
	"errors"
	"fmt"
)

// HTTPError is returned by HTTPSender for a non-2xx response.
//
//	var httpErr *HTTPError
//	if errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusUnauthorized { ... }
type HTTPError struct {
	StatusCode int
	// Path is the API path that was posted to.
	Path string
	// Body is the response body, for diagnostics.
	Body string
}

func (e *HTTPError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("transport: %s returned HTTP %d", e.Path, e.StatusCode)
	}
	return fmt.Sprintf("transport: %s returned HTTP %d: %s", e.Path, e.StatusCode, e.Body)
}

// GatewayError is returned by SocketSender when the gateway answers
// with ok=false.
type GatewayError struct {
	Kind    string
	Message string
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("transport: gateway rejected %s: %s", e.Kind, e.Message)
}

// IsHTTPStatus reports whether err is an *HTTPError with the given
// status code.
func IsHTTPStatus(err error, statusCode int) bool {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode == statusCode
	}
	return false
}
