// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package extensiontest provides a recording transport.Sender for
// extension tests.
//
//	sender := extensiontest.NewSender()
//	sender.RespondWith(`{"items":["a@b.c"],"total":1}`, lime.MediaTypeCollection)
//	ext, _ := broadcast.New(extension.Config{Sender: sender})
//	...
//	command := sender.LastCommand()
package extensiontest

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/bureau-foundation/blip/lib/lime"
)

// Handler answers a processed command.
type Handler func(command *lime.Command) (*lime.Command, error)

// Sender records every envelope it is given. Processed commands are
// answered by the current Handler, which defaults to an empty success.
// Recorded envelopes are copies, so later mutation by the caller does
// not affect them.
type Sender struct {
	mu            sync.Mutex
	handler       Handler
	processed     []*lime.Command
	sent          []*lime.Command
	messages      []*lime.Message
	notifications []*lime.Notification
}

// NewSender returns a Sender that answers every command with success.
func NewSender() *Sender {
	return &Sender{handler: func(command *lime.Command) (*lime.Command, error) {
		return Success(command, "", nil), nil
	}}
}

// Handle replaces the response handler.
func (s *Sender) Handle(handler Handler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handler = handler
}

// RespondWith answers every command with success carrying resource,
// given as a JSON document.
func (s *Sender) RespondWith(resource string, mediaType string) {
	s.Handle(func(command *lime.Command) (*lime.Command, error) {
		return Success(command, mediaType, json.RawMessage(resource)), nil
	})
}

// FailWith answers every command with a failure carrying the reason.
func (s *Sender) FailWith(code int, description string) {
	s.Handle(func(command *lime.Command) (*lime.Command, error) {
		return Failure(command, code, description), nil
	})
}

// ErrorWith makes every call fail with err, as a broken transport would.
func (s *Sender) ErrorWith(err error) {
	s.Handle(func(*lime.Command) (*lime.Command, error) {
		return nil, err
	})
}

// ProcessCommand records command and returns the handler's answer.
func (s *Sender) ProcessCommand(_ context.Context, command *lime.Command) (*lime.Command, error) {
	s.mu.Lock()
	s.processed = append(s.processed, cloneCommand(command))
	handler := s.handler
	s.mu.Unlock()
	return handler(command)
}

// SendCommand records command. It fails only when ErrorWith is active.
func (s *Sender) SendCommand(_ context.Context, command *lime.Command) error {
	s.mu.Lock()
	s.sent = append(s.sent, cloneCommand(command))
	handler := s.handler
	s.mu.Unlock()
	return transportError(handler, command)
}

// SendMessage records message.
func (s *Sender) SendMessage(_ context.Context, message *lime.Message) error {
	s.mu.Lock()
	copied := *message
	copied.Content = append(json.RawMessage(nil), message.Content...)
	s.messages = append(s.messages, &copied)
	handler := s.handler
	s.mu.Unlock()
	return transportError(handler, &lime.Command{})
}

// SendNotification records notification.
func (s *Sender) SendNotification(_ context.Context, notification *lime.Notification) error {
	s.mu.Lock()
	copied := *notification
	s.notifications = append(s.notifications, &copied)
	handler := s.handler
	s.mu.Unlock()
	return transportError(handler, &lime.Command{})
}

// Commands returns the processed commands in dispatch order.
func (s *Sender) Commands() []*lime.Command {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*lime.Command(nil), s.processed...)
}

// SentCommands returns the fire-and-forget commands in order.
func (s *Sender) SentCommands() []*lime.Command {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*lime.Command(nil), s.sent...)
}

// Messages returns the sent messages in order.
func (s *Sender) Messages() []*lime.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*lime.Message(nil), s.messages...)
}

// Notifications returns the sent notifications in order.
func (s *Sender) Notifications() []*lime.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*lime.Notification(nil), s.notifications...)
}

// Dispatches returns the number of envelopes of any kind the sender saw.
func (s *Sender) Dispatches() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.processed) + len(s.sent) + len(s.messages) + len(s.notifications)
}

// LastCommand returns the most recent processed command, or nil.
func (s *Sender) LastCommand() *lime.Command {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.processed) == 0 {
		return nil
	}
	return s.processed[len(s.processed)-1]
}

// Success builds a success response correlated with command.
func Success(command *lime.Command, mediaType string, resource json.RawMessage) *lime.Command {
	return &lime.Command{
		ID:       command.ID,
		From:     command.To,
		Method:   command.Method,
		Status:   lime.StatusSuccess,
		Type:     mediaType,
		Resource: resource,
	}
}

// Failure builds a failure response correlated with command.
func Failure(command *lime.Command, code int, description string) *lime.Command {
	return &lime.Command{
		ID:     command.ID,
		From:   command.To,
		Method: command.Method,
		Status: lime.StatusFailure,
		Reason: &lime.Reason{Code: code, Description: description},
	}
}

// transportError runs handler for its error only; fire-and-forget
// envelopes have no response.
func transportError(handler Handler, command *lime.Command) error {
	_, err := handler(command)
	return err
}

func cloneCommand(command *lime.Command) *lime.Command {
	copied := *command
	copied.Resource = append(json.RawMessage(nil), command.Resource...)
	if command.Reason != nil {
		reason := *command.Reason
		copied.Reason = &reason
	}
	return &copied
}
