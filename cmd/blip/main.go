// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// blip sends commands to the BLiP platform from the shell.
//
// Configuration comes from the file named by --config or BLIP_CONFIG,
// falling back to the built-in defaults (HTTP transport to
// https://http.msging.net). The authorization key is read from
// BLIP_AUTHORIZATION_KEY, which may be set in a .env file:
//
//	blip bucket get my-document
//	blip broadcast add news 5531999999999@wa.gw.msging.net
//	blip command get /contacts --to postmaster@crm.msging.net
//
// Results are printed as JSON on stdout.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/bureau-foundation/blip/client"
	"github.com/bureau-foundation/blip/lib/config"
	"github.com/bureau-foundation/blip/lib/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	var (
		configPath  string
		envFile     string
		showVersion bool
	)
	flagSet := pflag.NewFlagSet("blip", pflag.ContinueOnError)
	flagSet.SetOutput(io.Discard)
	// Global flags come before the command; everything after belongs to it.
	flagSet.SetInterspersed(false)
	flagSet.StringVar(&configPath, "config", "", "path to the blip configuration file (default: $BLIP_CONFIG)")
	flagSet.StringVar(&envFile, "env-file", ".env", "dotenv file loaded into the environment if it exists")
	flagSet.BoolVar(&showVersion, "version", false, "print version information and exit")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			root := newApp(stdout, stderr, nil).root()
			root.printHelp(stderr, nil)
			fmt.Fprintf(stderr, "\nGlobal flags:\n%s", flagSet.FlagUsages())
			return nil
		}
		return err
	}
	if showVersion {
		fmt.Fprintf(stdout, "blip %s\n", version.Full())
		return nil
	}
	if err := loadEnvFile(envFile); err != nil {
		return err
	}

	app := newApp(stdout, stderr, func() (*client.Client, error) {
		return connect(configPath, stderr)
	})
	defer app.close()
	return app.root().execute(ctx, flagSet.Args(), stderr)
}

// loadEnvFile loads path into the process environment. Variables
// already set are not overwritten. A missing file is not an error.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

func loadConfig(path string) (*config.Config, error) {
	switch {
	case path != "":
		return config.LoadFile(path)
	case os.Getenv("BLIP_CONFIG") != "":
		return config.Load()
	default:
		return config.Default(), nil
	}
}

func connect(configPath string, stderr io.Writer) (*client.Client, error) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, err
	}
	logger, err := newLogger(cfg.Log, stderr)
	if err != nil {
		return nil, err
	}
	return client.FromConfig(cfg, client.ConfigOptions{Logger: logger})
}
