// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"

	"github.com/bureau-foundation/blip/lib/clock"
	"github.com/bureau-foundation/blip/lib/config"
	"github.com/bureau-foundation/blip/transport"
)

// ConfigOptions carries the runtime dependencies FromConfig cannot read
// from a configuration file.
type ConfigOptions struct {
	// Logger is used by the sender and every extension. Defaults to
	// slog.Default().
	Logger *slog.Logger

	// Clock is passed to every extension.
	Clock clock.Clock

	// HTTPClient overrides the HTTP transport's client.
	HTTPClient *http.Client

	// Registerer and TracerProvider receive instrumentation when
	// metrics are enabled. They default to the global prometheus
	// registerer and otel provider.
	Registerer     prometheus.Registerer
	TracerProvider trace.TracerProvider
}

// FromConfig validates cfg, builds the configured sender and returns a
// Client over it. The caller must Close the client to release the
// authorization key.
func FromConfig(cfg *config.Config, options ConfigOptions) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("client: invalid configuration: %w", err)
	}
	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}

	sender, closer, err := newSender(cfg, options, logger)
	if err != nil {
		return nil, err
	}

	if cfg.Metrics.Enabled {
		instrumented, err := transport.Instrument(sender, transport.InstrumentConfig{
			Registerer:     options.Registerer,
			TracerProvider: options.TracerProvider,
		})
		if err != nil {
			closeQuietly(closer, logger)
			return nil, fmt.Errorf("client: instrumenting sender: %w", err)
		}
		sender = instrumented
	}

	client, err := New(sender, Options{Domains: cfg.Domains, Logger: logger, Clock: options.Clock})
	if err != nil {
		closeQuietly(closer, logger)
		return nil, err
	}
	client.closer = closer
	logger.Debug("blip client ready",
		"transport", cfg.Transport.Kind,
		"environment", cfg.Environment,
		"metrics", cfg.Metrics.Enabled,
	)
	return client, nil
}

func newSender(cfg *config.Config, options ConfigOptions, logger *slog.Logger) (transport.Sender, io.Closer, error) {
	switch cfg.Transport.Kind {
	case config.TransportHTTP:
		key, err := cfg.AuthorizationKey()
		if err != nil {
			return nil, nil, fmt.Errorf("client: %w", err)
		}
		sender, err := transport.NewHTTPSender(transport.HTTPConfig{
			BaseURL:    cfg.Transport.URL,
			Key:        key,
			HTTPClient: options.HTTPClient,
			Timeout:    cfg.Transport.Timeout,
			Limiter:    transport.NewLimiter(cfg.Transport.RateLimit, cfg.Transport.Burst()),
			Logger:     logger,
		})
		if err != nil {
			key.Close()
			return nil, nil, fmt.Errorf("client: %w", err)
		}
		return sender, sender, nil

	case config.TransportSocket:
		sender, err := transport.NewSocketSender(transport.SocketConfig{
			Path:            cfg.Transport.SocketPath,
			ResponseTimeout: cfg.Transport.Timeout,
			Logger:          logger,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("client: %w", err)
		}
		return sender, nil, nil

	default:
		return nil, nil, fmt.Errorf("client: unknown transport kind %q", cfg.Transport.Kind)
	}
}

func closeQuietly(closer io.Closer, logger *slog.Logger) {
	if closer == nil {
		return
	}
	if err := closer.Close(); err != nil {
		logger.Warn("closing sender", "error", err)
	}
}
