package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/shivamsri07/mutisend-sdk/pkg/logging"
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	log, err := logging.New(os.Stderr, os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := newApp(log).RunContext(ctx, os.Args); err != nil {
		log.WithError(err).Error("multisend failed")
		os.Exit(1)
	}
}

func newApp(log *logrus.Logger) *cli.App {
	return &cli.App{
		Name:      "multisend",
		Usage:     "batch native and ERC20 transfers through a multi-send proxy",
		UsageText: "multisend [command] [flags]",
		Commands: []*cli.Command{
			{
				Name:   "preview",
				Usage:  "estimate gas and show the cost of each speed tier",
				Flags:  transferFlags,
				Action: func(c *cli.Context) error { return runPreview(c, log) },
			},
			{
				Name:  "send",
				Usage: "execute the queued transfers as one transaction",
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:  "tier",
						Usage: "force a speed tier (slow, average, fast) instead of the congestion based choice",
					},
				}, transferFlags...),
				Action: func(c *cli.Context) error { return runSend(c, log) },
			},
			{
				Name:      "decode",
				Usage:     "print the transfers packed in an encoded batch",
				ArgsUsage: "HEX",
				Action:    runDecode,
			},
			{
				Name:  "history",
				Usage: "list recently executed batches",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "limit", Value: 20, Usage: "number of batches to show"},
				},
				Action: func(c *cli.Context) error { return runHistory(c, log) },
			},
			{
				Name:   "schema",
				Usage:  "migrate the history database and print its schema version",
				Action: func(c *cli.Context) error { return runSchema(c, log) },
			},
		},
	}
}
