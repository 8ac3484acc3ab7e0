// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/pflag"
)

// command is one node of the CLI tree. A command either dispatches to
// subcommands by its first positional argument or runs with exactly
// len(args) positional arguments.
type command struct {
	name    string
	summary string

	// args names the positional arguments shown in usage.
	args []string

	// flags binds the command's flags. Nil means no flags.
	flags func(*pflag.FlagSet)

	subcommands []*command

	run func(ctx context.Context, args []string) error

	parent *command
}

func (c *command) execute(ctx context.Context, args []string, help io.Writer) error {
	if len(args) > 0 && isHelpFlag(args[0]) {
		c.printHelp(help, nil)
		return nil
	}

	if len(c.subcommands) > 0 {
		if len(args) == 0 {
			c.printHelp(help, nil)
			return fmt.Errorf("%s: subcommand required", c.fullName())
		}
		for _, sub := range c.subcommands {
			if sub.name == args[0] {
				sub.parent = c
				return sub.execute(ctx, args[1:], help)
			}
		}
		return fmt.Errorf("unknown command %q\n\nRun '%s --help' for usage.", args[0], c.fullName())
	}

	flagSet := pflag.NewFlagSet(c.fullName(), pflag.ContinueOnError)
	flagSet.SetOutput(io.Discard)
	if c.flags != nil {
		c.flags(flagSet)
	}
	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			c.printHelp(help, flagSet)
			return nil
		}
		return fmt.Errorf("%s: %w\n\nRun '%s --help' for usage.", c.fullName(), err, c.fullName())
	}
	if flagSet.NArg() != len(c.args) {
		return fmt.Errorf("usage: %s", c.usage())
	}
	return c.run(ctx, flagSet.Args())
}

func (c *command) fullName() string {
	if c.parent == nil {
		return c.name
	}
	return c.parent.fullName() + " " + c.name
}

func (c *command) usage() string {
	var builder strings.Builder
	builder.WriteString(c.fullName())
	if len(c.subcommands) > 0 {
		builder.WriteString(" <command>")
	}
	if c.flags != nil {
		builder.WriteString(" [flags]")
	}
	for _, arg := range c.args {
		builder.WriteString(" <" + arg + ">")
	}
	return builder.String()
}

func (c *command) printHelp(w io.Writer, flagSet *pflag.FlagSet) {
	fmt.Fprintf(w, "Usage: %s\n", c.usage())
	if c.summary != "" {
		fmt.Fprintf(w, "\n%s\n", c.summary)
	}
	if len(c.subcommands) > 0 {
		fmt.Fprintf(w, "\nCommands:\n")
		table := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		for _, sub := range c.subcommands {
			fmt.Fprintf(table, "  %s\t%s\n", sub.name, sub.summary)
		}
		table.Flush()
	}
	if flagSet == nil && c.flags != nil {
		flagSet = pflag.NewFlagSet(c.fullName(), pflag.ContinueOnError)
		c.flags(flagSet)
	}
	if flagSet != nil && flagSet.HasFlags() {
		fmt.Fprintf(w, "\nFlags:\n%s", flagSet.FlagUsages())
	}
}

func isHelpFlag(arg string) bool {
	return arg == "-h" || arg == "--help" || arg == "help"
}
