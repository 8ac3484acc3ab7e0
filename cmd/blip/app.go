// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/tidwall/jsonc"

	"github.com/bureau-foundation/blip/client"
	"github.com/bureau-foundation/blip/extension"
	"github.com/bureau-foundation/blip/extension/bucket"
	"github.com/bureau-foundation/blip/lib/lime"
)

// app holds what every command needs: a lazily built client and the
// output writer. The client is only built when a command runs, so help
// works without configuration.
type app struct {
	out     *output
	stderr  io.Writer
	connect func() (*client.Client, error)
	client  *client.Client
}

func newApp(stdout, stderr io.Writer, connect func() (*client.Client, error)) *app {
	return &app{out: newOutput(stdout), stderr: stderr, connect: connect}
}

func (a *app) blip() (*client.Client, error) {
	if a.client != nil {
		return a.client, nil
	}
	if a.connect == nil {
		return nil, fmt.Errorf("no client configured")
	}
	blip, err := a.connect()
	if err != nil {
		return nil, err
	}
	a.client = blip
	return blip, nil
}

func (a *app) close() {
	if a.client == nil {
		return
	}
	if err := a.client.Close(); err != nil {
		fmt.Fprintf(a.stderr, "warning: closing client: %v\n", err)
	}
}

// withClient adapts a run function that needs the client.
func (a *app) withClient(run func(ctx context.Context, blip *client.Client, args []string) (any, error)) func(context.Context, []string) error {
	return func(ctx context.Context, args []string) error {
		blip, err := a.blip()
		if err != nil {
			return err
		}
		result, err := run(ctx, blip, args)
		if err != nil {
			return err
		}
		return a.out.write(result)
	}
}

func (a *app) root() *command {
	root := &command{
		name:    "blip",
		summary: "Send commands to the BLiP platform and print the results as JSON.",
		subcommands: []*command{
			a.rawCommand(),
			a.bucketCommand(),
			a.broadcastCommand(),
			a.schedulerCommand(),
			a.directoryCommand(),
			a.mediaCommand(),
		},
	}
	return root
}

// resourceInput reads a command resource from --resource or
// --resource-file. Both accept JSON with comments and trailing commas.
type resourceInput struct {
	inline    string
	file      string
	mediaType string
}

func (r *resourceInput) bind(flagSet *pflag.FlagSet, defaultType string) {
	flagSet.StringVar(&r.inline, "resource", "", "resource document as JSON")
	flagSet.StringVar(&r.file, "resource-file", "", "read the resource document from a JSON or JSONC file (- for stdin)")
	flagSet.StringVar(&r.mediaType, "type", defaultType, "media type of the resource")
}

// read returns the resource, or nil when neither flag was given.
func (r *resourceInput) read(stdin io.Reader) (json.RawMessage, error) {
	var data []byte
	switch {
	case r.inline != "" && r.file != "":
		return nil, fmt.Errorf("--resource and --resource-file are mutually exclusive")
	case r.file == "-":
		read, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("reading resource from stdin: %w", err)
		}
		data = read
	case r.file != "":
		read, err := os.ReadFile(r.file)
		if err != nil {
			return nil, fmt.Errorf("reading resource: %w", err)
		}
		data = read
	case r.inline != "":
		data = []byte(r.inline)
	default:
		return nil, nil
	}
	data = jsonc.ToJSON(data)
	if !json.Valid(data) {
		return nil, fmt.Errorf("resource is not valid JSON")
	}
	return json.RawMessage(data), nil
}

func bindPage(flagSet *pflag.FlagSet, page *extension.Page) {
	flagSet.IntVar(&page.Skip, "skip", 0, "number of items to skip")
	flagSet.IntVar(&page.Take, "take", 0, "number of items to return (default: service default)")
}

var rawMethods = []lime.Method{
	lime.MethodGet,
	lime.MethodSet,
	lime.MethodMerge,
	lime.MethodDelete,
	lime.MethodObserve,
}

func parseMethod(raw string) (lime.Method, error) {
	for _, method := range rawMethods {
		if strings.EqualFold(raw, string(method)) {
			return method, nil
		}
	}
	return "", fmt.Errorf("unknown method %q (want get, set, merge, delete or observe)", raw)
}

func (a *app) rawCommand() *command {
	var (
		to       string
		resource resourceInput
	)
	return &command{
		name:    "command",
		summary: "Send a raw command and print the response envelope",
		args:    []string{"method", "uri"},
		flags: func(flagSet *pflag.FlagSet) {
			flagSet.StringVar(&to, "to", "postmaster@msging.net", "destination node")
			resource.bind(flagSet, "")
		},
		run: a.withClient(func(ctx context.Context, blip *client.Client, args []string) (any, error) {
			method, err := parseMethod(args[0])
			if err != nil {
				return nil, err
			}
			destination, err := lime.ParseNode(to)
			if err != nil {
				return nil, fmt.Errorf("--to: %w", err)
			}
			document, err := resource.read(os.Stdin)
			if err != nil {
				return nil, err
			}
			mediaType := resource.mediaType
			if document != nil && mediaType == "" {
				mediaType = lime.MediaTypeJSON
			}
			base, err := extension.NewBase(extension.Config{Sender: blip.Sender(), To: destination}, destination)
			if err != nil {
				return nil, err
			}
			return base.Process(ctx, &lime.Command{
				To:       destination,
				Method:   method,
				URI:      args[1],
				Type:     mediaType,
				Resource: document,
			})
		}),
	}
}

func (a *app) bucketCommand() *command {
	var (
		page       extension.Page
		resource   resourceInput
		expiration time.Duration
	)
	return &command{
		name:    "bucket",
		summary: "Store and fetch documents in the bucket",
		subcommands: []*command{
			{
				name:    "get",
				summary: "Print the document stored under an id",
				args:    []string{"id"},
				run: a.withClient(func(ctx context.Context, blip *client.Client, args []string) (any, error) {
					response, err := blip.Bucket.Get(ctx, args[0], nil)
					if err != nil {
						return nil, err
					}
					return response.Resource, nil
				}),
			},
			{
				name:    "set",
				summary: "Store a document under an id",
				args:    []string{"id"},
				flags: func(flagSet *pflag.FlagSet) {
					resource.bind(flagSet, lime.MediaTypeJSON)
					flagSet.DurationVar(&expiration, "expiration", 0, "remove the document after this long")
				},
				run: a.withClient(func(ctx context.Context, blip *client.Client, args []string) (any, error) {
					document, err := resource.read(os.Stdin)
					if err != nil {
						return nil, err
					}
					if document == nil {
						return nil, fmt.Errorf("--resource or --resource-file is required")
					}
					return blip.Bucket.Set(ctx, args[0], document, bucket.SetOptions{
						Expiration: expiration,
						Type:       resource.mediaType,
					})
				}),
			},
			{
				name:    "delete",
				summary: "Remove the document stored under an id",
				args:    []string{"id"},
				run: a.withClient(func(ctx context.Context, blip *client.Client, args []string) (any, error) {
					return blip.Bucket.Delete(ctx, args[0], nil)
				}),
			},
			{
				name:    "ids",
				summary: "List stored document ids",
				flags:   func(flagSet *pflag.FlagSet) { bindPage(flagSet, &page) },
				run: a.withClient(func(ctx context.Context, blip *client.Client, _ []string) (any, error) {
					return blip.Bucket.GetIDs(ctx, page, nil)
				}),
			},
		},
	}
}

func (a *app) broadcastCommand() *command {
	var page extension.Page
	recipient := func(raw string) (lime.Identity, error) {
		identity, err := lime.ParseIdentity(raw)
		if err != nil {
			return lime.Identity{}, fmt.Errorf("recipient: %w", err)
		}
		return identity, nil
	}
	return &command{
		name:    "broadcast",
		summary: "Manage distribution lists",
		subcommands: []*command{
			{
				name:    "lists",
				summary: "List distribution lists",
				flags:   func(flagSet *pflag.FlagSet) { bindPage(flagSet, &page) },
				run: a.withClient(func(ctx context.Context, blip *client.Client, _ []string) (any, error) {
					return blip.Broadcast.GetDistributionLists(ctx, page)
				}),
			},
			{
				name:    "create",
				summary: "Create a distribution list",
				args:    []string{"list"},
				run: a.withClient(func(ctx context.Context, blip *client.Client, args []string) (any, error) {
					return blip.Broadcast.CreateDistributionList(ctx, args[0])
				}),
			},
			{
				name:    "delete",
				summary: "Delete a distribution list",
				args:    []string{"list"},
				run: a.withClient(func(ctx context.Context, blip *client.Client, args []string) (any, error) {
					return blip.Broadcast.DeleteDistributionList(ctx, args[0])
				}),
			},
			{
				name:    "recipients",
				summary: "List the recipients of a distribution list",
				args:    []string{"list"},
				flags:   func(flagSet *pflag.FlagSet) { bindPage(flagSet, &page) },
				run: a.withClient(func(ctx context.Context, blip *client.Client, args []string) (any, error) {
					return blip.Broadcast.GetRecipients(ctx, args[0], page)
				}),
			},
			{
				name:    "add",
				summary: "Add a recipient to a distribution list",
				args:    []string{"list", "identity"},
				run: a.withClient(func(ctx context.Context, blip *client.Client, args []string) (any, error) {
					identity, err := recipient(args[1])
					if err != nil {
						return nil, err
					}
					return blip.Broadcast.AddRecipient(ctx, args[0], identity)
				}),
			},
			{
				name:    "remove",
				summary: "Remove a recipient from a distribution list",
				args:    []string{"list", "identity"},
				run: a.withClient(func(ctx context.Context, blip *client.Client, args []string) (any, error) {
					identity, err := recipient(args[1])
					if err != nil {
						return nil, err
					}
					return blip.Broadcast.DeleteRecipient(ctx, args[0], identity)
				}),
			},
			{
				name:    "has",
				summary: "Print whether an identity is a recipient of a distribution list",
				args:    []string{"list", "identity"},
				run: a.withClient(func(ctx context.Context, blip *client.Client, args []string) (any, error) {
					identity, err := recipient(args[1])
					if err != nil {
						return nil, err
					}
					return blip.Broadcast.HasRecipient(ctx, args[0], identity)
				}),
			},
		},
	}
}

func (a *app) schedulerCommand() *command {
	var (
		page     extension.Page
		text     string
		resource resourceInput
	)
	return &command{
		name:    "scheduler",
		summary: "Schedule messages for later delivery",
		subcommands: []*command{
			{
				name:    "schedule",
				summary: "Schedule a message to a node at an RFC 3339 time",
				args:    []string{"name", "when", "to"},
				flags: func(flagSet *pflag.FlagSet) {
					flagSet.StringVar(&text, "text", "", "plain text content")
					resource.bind(flagSet, lime.MediaTypeJSON)
				},
				run: a.withClient(func(ctx context.Context, blip *client.Client, args []string) (any, error) {
					when, err := time.Parse(time.RFC3339, args[1])
					if err != nil {
						return nil, fmt.Errorf("when: %w", err)
					}
					to, err := lime.ParseNode(args[2])
					if err != nil {
						return nil, fmt.Errorf("to: %w", err)
					}
					content, err := messageContent(text, &resource)
					if err != nil {
						return nil, err
					}
					return blip.Scheduler.Schedule(ctx, when, lime.NewMessage(to, content), args[0])
				}),
			},
			{
				name:    "cancel",
				summary: "Cancel a scheduled message",
				args:    []string{"name"},
				run: a.withClient(func(ctx context.Context, blip *client.Client, args []string) (any, error) {
					return blip.Scheduler.Cancel(ctx, args[0])
				}),
			},
			{
				name:    "list",
				summary: "List scheduled messages",
				flags:   func(flagSet *pflag.FlagSet) { bindPage(flagSet, &page) },
				run: a.withClient(func(ctx context.Context, blip *client.Client, _ []string) (any, error) {
					return blip.Scheduler.GetScheduledMessages(ctx, page)
				}),
			},
			{
				name:    "get",
				summary: "Print a scheduled message",
				args:    []string{"name"},
				run: a.withClient(func(ctx context.Context, blip *client.Client, args []string) (any, error) {
					scheduled, err := blip.Scheduler.GetScheduledMessage(ctx, args[0])
					if err != nil {
						return nil, err
					}
					return scheduled, nil
				}),
			},
		},
	}
}

// messageContent builds the content of a scheduled message from --text
// or the resource flags.
func messageContent(text string, resource *resourceInput) (lime.Content, error) {
	document, err := resource.read(os.Stdin)
	if err != nil {
		return lime.Content{}, err
	}
	switch {
	case text != "" && document != nil:
		return lime.Content{}, fmt.Errorf("--text and a resource are mutually exclusive")
	case text != "":
		return lime.PlainText(text), nil
	case document != nil:
		return lime.Content{Type: resource.mediaType, Value: document}, nil
	default:
		return lime.Content{}, fmt.Errorf("--text, --resource or --resource-file is required")
	}
}

func (a *app) directoryCommand() *command {
	return &command{
		name:    "directory",
		summary: "Query the account directory",
		subcommands: []*command{
			{
				name:    "account",
				summary: "Print the directory account of an identity",
				args:    []string{"identity"},
				run: a.withClient(func(ctx context.Context, blip *client.Client, args []string) (any, error) {
					identity, err := lime.ParseIdentity(args[0])
					if err != nil {
						return nil, fmt.Errorf("identity: %w", err)
					}
					return blip.Directory.GetAccount(ctx, identity)
				}),
			},
		},
	}
}

func (a *app) mediaCommand() *command {
	return &command{
		name:    "media",
		summary: "Media upload helpers",
		subcommands: []*command{
			{
				name:    "upload-uri",
				summary: "Print a pre-signed media upload URI",
				run: a.withClient(func(ctx context.Context, blip *client.Client, _ []string) (any, error) {
					return blip.Media.GetUploadURI(ctx)
				}),
			},
		},
	}
}
