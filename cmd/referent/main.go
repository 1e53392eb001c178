package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"Referent/internal/app"
	"Referent/internal/config"
	"Referent/internal/logging"
	"Referent/internal/usecase"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cliApp := &cli.App{
		Name:  "referent",
		Usage: "summarize, outline or repost web articles with an LLM",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to a YAML config file",
				EnvVars: []string{"REFERENT_CONFIG"},
			},
		},
		Action: serveAction,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "start the HTTP API",
				Action: serveAction,
			},
			{
				Name:      "extract",
				Usage:     "print title, date and body of an article as JSON",
				ArgsUsage: "<url>",
				Action:    extractAction,
			},
			{
				Name:      "run",
				Usage:     "extract an article and apply an action to it",
				ArgsUsage: "<url>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "action",
						Aliases: []string{"a"},
						Value:   "summarize",
						Usage:   "summarize, theses or telegram_post",
					},
				},
				Action: runAction,
			},
		},
	}

	if err := cliApp.RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func serveAction(c *cli.Context) error {
	cfg := config.Load(c.String("config"))
	logger := logging.New(cfg.Logging)

	if err := app.New(cfg, logger).Run(c.Context); err != nil {
		logger.Error("application stopped", "error", err)
		return err
	}
	return nil
}

func extractAction(c *cli.Context) error {
	service, err := oneShotService(c)
	if err != nil {
		return err
	}

	article, err := service.Extract(c.Context, c.Args().First())
	if err != nil {
		return cli.Exit(usecase.Classify(err).Message, 1)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(article)
}

func runAction(c *cli.Context) error {
	service, err := oneShotService(c)
	if err != nil {
		return err
	}

	res, err := service.Run(c.Context, c.Args().First(), c.String("action"))
	if err != nil {
		return cli.Exit(usecase.Classify(err).Message, 1)
	}

	fmt.Fprintln(os.Stdout, res.Result)
	return nil
}

// oneShotService logs to stderr so stdout carries only the result.
func oneShotService(c *cli.Context) (*usecase.Service, error) {
	if c.NArg() != 1 {
		return nil, cli.Exit("exactly one <url> argument is required", 2)
	}
	cfg := config.Load(c.String("config"))
	logger := logging.NewWithWriter(os.Stderr, cfg.Logging.Level, cfg.Logging.Format)
	return app.New(cfg, logger).Service(), nil
}

