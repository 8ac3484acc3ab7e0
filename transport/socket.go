// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package transport

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"time"

	"github.com/bureau-foundation/blip/lib/codec"
	"github.com/bureau-foundation/blip/lib/lime"
)

const (
	// defaultDialTimeout covers only the connect phase.
	defaultDialTimeout = 5 * time.Second

	// defaultResponseTimeout bounds the exchange after connecting.
	defaultResponseTimeout = 45 * time.Second

	// maxFrameSize bounds a single CBOR response.
	maxFrameSize = 4 << 20
)

// SocketConfig configures a SocketSender.
type SocketConfig struct {
	// Path is the gateway's unix socket.
	Path string

	// DialTimeout defaults to 5s.
	DialTimeout time.Duration

	// ResponseTimeout defaults to 45s.
	ResponseTimeout time.Duration

	Logger *slog.Logger
}

// SocketSender sends envelopes to a local gateway over a unix socket.
// Each call opens a connection, writes one CBOR request frame, reads one
// response frame and closes the connection.
//
// Request frame:  {kind, command | message | notification}
// Response frame: {ok, error, command}
type SocketSender struct {
	path            string
	dialTimeout     time.Duration
	responseTimeout time.Duration
	logger          *slog.Logger
}

// NewSocketSender creates a sender for the gateway socket at config.Path.
func NewSocketSender(config SocketConfig) (*SocketSender, error) {
	if config.Path == "" {
		return nil, fmt.Errorf("transport: socket path is required")
	}
	sender := &SocketSender{
		path:            config.Path,
		dialTimeout:     config.DialTimeout,
		responseTimeout: config.ResponseTimeout,
		logger:          config.Logger,
	}
	if sender.dialTimeout <= 0 {
		sender.dialTimeout = defaultDialTimeout
	}
	if sender.responseTimeout <= 0 {
		sender.responseTimeout = defaultResponseTimeout
	}
	if sender.logger == nil {
		sender.logger = slog.Default()
	}
	return sender, nil
}

// socketRequest is the request frame. Exactly one payload is set,
// matching Kind.
type socketRequest struct {
	Kind         string              `cbor:"kind"`
	Command      *socketCommand      `cbor:"command,omitempty"`
	Message      *socketMessage      `cbor:"message,omitempty"`
	Notification *socketNotification `cbor:"notification,omitempty"`
	// Await is false for fire-and-forget commands.
	Await bool `cbor:"await,omitempty"`
}

type socketResponse struct {
	OK      bool           `cbor:"ok"`
	Error   string         `cbor:"error,omitempty"`
	Command *socketCommand `cbor:"command,omitempty"`
}

// socketCommand is lime.Command with a CBOR resource and nodes as text.
type socketCommand struct {
	ID       string           `cbor:"id,omitempty"`
	From     string           `cbor:"from,omitempty"`
	To       string           `cbor:"to,omitempty"`
	Method   string           `cbor:"method"`
	URI      string           `cbor:"uri,omitempty"`
	Type     string           `cbor:"type,omitempty"`
	Resource codec.RawMessage `cbor:"resource,omitempty"`
	Status   string           `cbor:"status,omitempty"`
	Reason   *lime.Reason     `cbor:"reason,omitempty"`
}

type socketMessage struct {
	ID      string           `cbor:"id,omitempty"`
	From    string           `cbor:"from,omitempty"`
	To      string           `cbor:"to,omitempty"`
	Type    string           `cbor:"type"`
	Content codec.RawMessage `cbor:"content,omitempty"`
}

type socketNotification struct {
	ID     string       `cbor:"id,omitempty"`
	From   string       `cbor:"from,omitempty"`
	To     string       `cbor:"to,omitempty"`
	Event  string       `cbor:"event"`
	Reason *lime.Reason `cbor:"reason,omitempty"`
}

// ProcessCommand sends command to the gateway and returns its response.
func (s *SocketSender) ProcessCommand(ctx context.Context, command *lime.Command) (*lime.Command, error) {
	frame, err := encodeCommand(command)
	if err != nil {
		return nil, err
	}
	response, err := s.roundTrip(ctx, socketRequest{Kind: KindCommand, Command: frame, Await: true})
	if err != nil {
		return nil, err
	}
	if response.Command == nil {
		return nil, fmt.Errorf("transport: gateway returned no command for %s %s", command.Method, command.URI)
	}
	return decodeCommand(response.Command)
}

// SendCommand sends command without waiting for the platform response.
// The gateway still acknowledges receipt.
func (s *SocketSender) SendCommand(ctx context.Context, command *lime.Command) error {
	frame, err := encodeCommand(command)
	if err != nil {
		return err
	}
	_, err = s.roundTrip(ctx, socketRequest{Kind: KindCommand, Command: frame})
	return err
}

// SendMessage delivers message through the gateway.
func (s *SocketSender) SendMessage(ctx context.Context, message *lime.Message) error {
	content, err := codec.FromJSON(message.Content)
	if err != nil {
		return fmt.Errorf("transport: message content: %w", err)
	}
	frame := &socketMessage{
		ID:      message.ID,
		From:    nodeText(message.From),
		To:      nodeText(message.To),
		Type:    message.Type,
		Content: content,
	}
	_, err = s.roundTrip(ctx, socketRequest{Kind: KindMessage, Message: frame})
	return err
}

// SendNotification delivers notification through the gateway.
func (s *SocketSender) SendNotification(ctx context.Context, notification *lime.Notification) error {
	frame := &socketNotification{
		ID:     notification.ID,
		From:   nodeText(notification.From),
		To:     nodeText(notification.To),
		Event:  string(notification.Event),
		Reason: notification.Reason,
	}
	_, err := s.roundTrip(ctx, socketRequest{Kind: KindNotification, Notification: frame})
	return err
}

func (s *SocketSender) roundTrip(ctx context.Context, request socketRequest) (*socketResponse, error) {
	dialer := net.Dialer{Timeout: s.dialTimeout}
	conn, err := dialer.DialContext(ctx, "unix", s.path)
	if err != nil {
		return nil, fmt.Errorf("transport: connecting to %s: %w", s.path, err)
	}
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(s.responseTimeout))
	// Honor cancellation while blocked on the socket.
	stop := context.AfterFunc(ctx, func() {
		conn.SetDeadline(time.Now())
	})
	defer stop()

	if err := codec.NewEncoder(conn).Encode(request); err != nil {
		return nil, fmt.Errorf("transport: writing %s frame: %w", request.Kind, err)
	}
	if unixConn, ok := conn.(*net.UnixConn); ok {
		unixConn.CloseWrite()
	}

	var response socketResponse
	if err := codec.NewDecoder(io.LimitReader(conn, maxFrameSize)).Decode(&response); err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("transport: reading %s response: %w", request.Kind, ctx.Err())
		}
		return nil, fmt.Errorf("transport: reading %s response: %w", request.Kind, err)
	}

	if !response.OK {
		s.logger.Debug("gateway rejected envelope", "kind", request.Kind, "error", response.Error)
		return nil, &GatewayError{Kind: request.Kind, Message: response.Error}
	}
	return &response, nil
}

func encodeCommand(command *lime.Command) (*socketCommand, error) {
	resource, err := codec.FromJSON(command.Resource)
	if err != nil {
		return nil, fmt.Errorf("transport: command resource: %w", err)
	}
	return &socketCommand{
		ID:       command.ID,
		From:     nodeText(command.From),
		To:       nodeText(command.To),
		Method:   string(command.Method),
		URI:      command.URI,
		Type:     command.Type,
		Resource: resource,
		Status:   string(command.Status),
		Reason:   command.Reason,
	}, nil
}

func decodeCommand(frame *socketCommand) (*lime.Command, error) {
	resource, err := codec.ToJSON(frame.Resource)
	if err != nil {
		return nil, fmt.Errorf("transport: response resource: %w", err)
	}
	command := &lime.Command{
		ID:       frame.ID,
		Method:   lime.Method(frame.Method),
		URI:      frame.URI,
		Type:     frame.Type,
		Resource: resource,
		Status:   lime.Status(frame.Status),
		Reason:   frame.Reason,
	}
	if frame.From != "" {
		if command.From, err = lime.ParseNode(frame.From); err != nil {
			return nil, fmt.Errorf("transport: response from: %w", err)
		}
	}
	if frame.To != "" {
		if command.To, err = lime.ParseNode(frame.To); err != nil {
			return nil, fmt.Errorf("transport: response to: %w", err)
		}
	}
	return command, nil
}

func nodeText(node lime.Node) string {
	if node.IsZero() {
		return ""
	}
	return node.String()
}
