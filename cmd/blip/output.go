// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"golang.org/x/term"

	"github.com/bureau-foundation/blip/lib/config"
)

// output writes command results as JSON, one value per line. Values are
// indented when the writer is a terminal.
type output struct {
	writer io.Writer
	indent bool
}

func newOutput(writer io.Writer) *output {
	return &output{writer: writer, indent: isTerminal(writer)}
}

func (o *output) write(value any) error {
	encoder := json.NewEncoder(o.writer)
	if o.indent {
		encoder.SetIndent("", "  ")
	}
	if err := encoder.Encode(value); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}

// newLogger builds the CLI logger from the log section of the
// configuration. Without an explicit format, stderr output is text on a
// terminal and JSON otherwise.
func newLogger(logConfig config.LogConfig, writer io.Writer) (*slog.Logger, error) {
	level, err := logConfig.SlogLevel()
	if err != nil {
		return nil, err
	}
	options := &slog.HandlerOptions{Level: level}

	format := logConfig.Format
	if format == "" {
		format = "json"
		if isTerminal(writer) {
			format = "text"
		}
	}
	switch format {
	case "text":
		return slog.New(slog.NewTextHandler(writer, options)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(writer, options)), nil
	default:
		return nil, fmt.Errorf("log.format must be one of: [text json], got %q", format)
	}
}

func isTerminal(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	return ok && term.IsTerminal(int(file.Fd()))
}
