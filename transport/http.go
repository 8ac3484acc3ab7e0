// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/bureau-foundation/blip/lib/lime"
	"github.com/bureau-foundation/blip/lib/netutil"
	"github.com/bureau-foundation/blip/lib/secret"
	"github.com/bureau-foundation/blip/lib/version"
)

// HTTPConfig configures an HTTPSender.
type HTTPConfig struct {
	// BaseURL is the API root, e.g. "https://http.msging.net".
	BaseURL string

	// Key is the bot authorization key, sent as "Authorization: Key
	// <key>". The sender takes ownership and closes it on Close.
	Key *secret.Buffer

	// HTTPClient is the client used for requests. Defaults to a client
	// with Timeout.
	HTTPClient *http.Client

	// Timeout applies when HTTPClient is nil. Zero means no timeout
	// beyond the request context.
	Timeout time.Duration

	// Limiter paces requests when non-nil.
	Limiter *rate.Limiter

	Logger *slog.Logger
}

// HTTPSender sends envelopes to the BLiP HTTP API.
type HTTPSender struct {
	baseURL    string
	key        *secret.Buffer
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// NewHTTPSender creates a sender for the HTTP API.
func NewHTTPSender(config HTTPConfig) (*HTTPSender, error) {
	if config.BaseURL == "" {
		return nil, fmt.Errorf("transport: base URL is required")
	}
	if config.Key == nil {
		return nil, fmt.Errorf("transport: authorization key is required")
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: config.Timeout}
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &HTTPSender{
		baseURL:    strings.TrimRight(config.BaseURL, "/"),
		key:        config.Key,
		httpClient: httpClient,
		limiter:    config.Limiter,
		logger:     logger,
	}, nil
}

// NewLimiter returns a limiter allowing rps requests per second with the
// given burst, or nil when rps is not positive.
func NewLimiter(rps float64, burst int) *rate.Limiter {
	if rps <= 0 {
		return nil
	}
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(rps), burst)
}

// ProcessCommand posts command to /commands and decodes the response
// command from the body.
func (s *HTTPSender) ProcessCommand(ctx context.Context, command *lime.Command) (*lime.Command, error) {
	response, err := s.post(ctx, "/commands", command)
	if err != nil {
		return nil, err
	}
	defer response.Body.Close()

	var decoded lime.Command
	if err := netutil.DecodeResponse(response.Body, &decoded); err != nil {
		return nil, fmt.Errorf("transport: decoding response to %s %s: %w", command.Method, command.URI, err)
	}
	return &decoded, nil
}

// SendCommand posts command to /commands and discards the response.
func (s *HTTPSender) SendCommand(ctx context.Context, command *lime.Command) error {
	return s.postAndDiscard(ctx, "/commands", command)
}

// SendMessage posts message to /messages.
func (s *HTTPSender) SendMessage(ctx context.Context, message *lime.Message) error {
	return s.postAndDiscard(ctx, "/messages", message)
}

// SendNotification posts notification to /notifications.
func (s *HTTPSender) SendNotification(ctx context.Context, notification *lime.Notification) error {
	return s.postAndDiscard(ctx, "/notifications", notification)
}

// Close releases the authorization key.
func (s *HTTPSender) Close() error {
	return s.key.Close()
}

func (s *HTTPSender) postAndDiscard(ctx context.Context, path string, envelope any) error {
	response, err := s.post(ctx, path, envelope)
	if err != nil {
		return err
	}
	defer response.Body.Close()
	if _, err := netutil.ReadResponse(response.Body); err != nil {
		return fmt.Errorf("transport: failed to read response body: %w", err)
	}
	return nil
}

// post sends envelope to path. On a 2xx status the caller owns the
// response body; any other status is returned as an *HTTPError.
func (s *HTTPSender) post(ctx context.Context, path string, envelope any) (*http.Response, error) {
	encoded, err := json.Marshal(envelope)
	if err != nil {
		return nil, fmt.Errorf("transport: failed to encode envelope: %w", err)
	}

	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("transport: rate limiter: %w", err)
		}
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+path, bytes.NewReader(encoded))
	if err != nil {
		return nil, fmt.Errorf("transport: failed to create request: %w", err)
	}
	request.Header.Set("Content-Type", "application/json")
	request.Header.Set("Authorization", "Key "+s.key.String())
	request.Header.Set("User-Agent", version.UserAgent())

	response, err := s.httpClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("transport: request to POST %s failed: %w", path, err)
	}

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		defer response.Body.Close()
		s.logger.Debug("blip request rejected", "path", path, "status", response.StatusCode)
		return nil, &HTTPError{
			StatusCode: response.StatusCode,
			Path:       path,
			Body:       strings.TrimSpace(netutil.ErrorBody(response.Body)),
		}
	}
	return response, nil
}
