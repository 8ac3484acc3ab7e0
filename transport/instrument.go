// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package transport

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/bureau-foundation/blip/lib/lime"
)

const instrumentationName = "github.com/bureau-foundation/blip/transport"

// Metric status labels for blip_commands_total.
const (
	statusSuccess = "success"
	statusFailure = "failure"
	statusError   = "error"
)

// InstrumentConfig configures Instrument.
type InstrumentConfig struct {
	// Registerer receives the collectors. Defaults to
	// prometheus.DefaultRegisterer.
	Registerer prometheus.Registerer

	// TracerProvider creates the span tracer. Defaults to the global
	// otel provider.
	TracerProvider trace.TracerProvider
}

// InstrumentedSender decorates a Sender with metrics and tracing.
type InstrumentedSender struct {
	next     Sender
	tracer   trace.Tracer
	commands *prometheus.CounterVec
	duration *prometheus.HistogramVec
	sent     *prometheus.CounterVec
}

// Instrument wraps next. Collectors already registered on the
// Registerer (from an earlier Instrument call) are reused.
func Instrument(next Sender, config InstrumentConfig) (*InstrumentedSender, error) {
	registerer := config.Registerer
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	provider := config.TracerProvider
	if provider == nil {
		provider = otel.GetTracerProvider()
	}

	commands := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "blip_commands_total",
		Help: "Commands processed, by method and outcome.",
	}, []string{"method", "status"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "blip_command_duration_seconds",
		Help:    "Round-trip time of processed commands.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method"})
	sent := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "blip_envelopes_sent_total",
		Help: "Fire-and-forget envelopes sent, by kind.",
	}, []string{"kind"})

	var err error
	if commands, err = register(registerer, commands); err != nil {
		return nil, err
	}
	if duration, err = register(registerer, duration); err != nil {
		return nil, err
	}
	if sent, err = register(registerer, sent); err != nil {
		return nil, err
	}

	return &InstrumentedSender{
		next:     next,
		tracer:   provider.Tracer(instrumentationName),
		commands: commands,
		duration: duration,
		sent:     sent,
	}, nil
}

func register[C prometheus.Collector](registerer prometheus.Registerer, collector C) (C, error) {
	if err := registerer.Register(collector); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return collector, fmt.Errorf("transport: registering metrics: %w", err)
	}
	return collector, nil
}

// ProcessCommand forwards to the wrapped sender inside a "blip.command"
// span and records the outcome.
func (s *InstrumentedSender) ProcessCommand(ctx context.Context, command *lime.Command) (*lime.Command, error) {
	ctx, span := s.tracer.Start(ctx, "blip.command", trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(commandAttributes(command)...))
	defer span.End()

	method := string(command.Method)
	started := time.Now()
	response, err := s.next.ProcessCommand(ctx, command)
	s.duration.WithLabelValues(method).Observe(time.Since(started).Seconds())

	switch {
	case err != nil:
		s.commands.WithLabelValues(method, statusError).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	case response != nil && response.IsFailure():
		s.commands.WithLabelValues(method, statusFailure).Inc()
		description := "command failed"
		if response.Reason != nil {
			description = response.Reason.String()
			span.SetAttributes(attribute.Int("blip.reason.code", response.Reason.Code))
		}
		span.SetStatus(codes.Error, description)
	default:
		s.commands.WithLabelValues(method, statusSuccess).Inc()
	}
	return response, err
}

// SendCommand forwards a fire-and-forget command.
func (s *InstrumentedSender) SendCommand(ctx context.Context, command *lime.Command) error {
	ctx, span := s.tracer.Start(ctx, "blip.command.send", trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(commandAttributes(command)...))
	defer span.End()
	return s.finishSend(span, KindCommand, s.next.SendCommand(ctx, command))
}

// SendMessage forwards a message.
func (s *InstrumentedSender) SendMessage(ctx context.Context, message *lime.Message) error {
	ctx, span := s.tracer.Start(ctx, "blip.message", trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(
			attribute.String("blip.to", message.To.String()),
			attribute.String("blip.type", message.Type),
		))
	defer span.End()
	return s.finishSend(span, KindMessage, s.next.SendMessage(ctx, message))
}

// SendNotification forwards a notification.
func (s *InstrumentedSender) SendNotification(ctx context.Context, notification *lime.Notification) error {
	ctx, span := s.tracer.Start(ctx, "blip.notification", trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(
			attribute.String("blip.to", notification.To.String()),
			attribute.String("blip.event", string(notification.Event)),
		))
	defer span.End()
	return s.finishSend(span, KindNotification, s.next.SendNotification(ctx, notification))
}

func (s *InstrumentedSender) finishSend(span trace.Span, kind string, err error) error {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	s.sent.WithLabelValues(kind).Inc()
	return nil
}

func commandAttributes(command *lime.Command) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("blip.method", string(command.Method)),
		attribute.String("blip.uri", command.URI),
		attribute.String("blip.to", command.To.String()),
	}
}
