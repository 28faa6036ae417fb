package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "faqbot",
		Usage: "Answer questions from a FAQ corpus using TF-IDF similarity",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to YAML or TOML config file (default ./faqbot.yaml or ~/.config/faqbot/config.yaml)",
			},
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: func(c *cli.Context) error {
			_ = godotenv.Load()
			return setupLogger(c)
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Serve the HTTP API",
				Action: serveCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "addr", Usage: "Listen address (overrides server.addr)"},
					&cli.BoolFlag{Name: "watch", Usage: "Reload when the JSON corpus file changes"},
				},
			},
			{
				Name:      "ask",
				Usage:     "Ask a single question",
				ArgsUsage: "QUESTION",
				Action:    askCommand,
			},
			{
				Name:      "topk",
				Usage:     "Show the best matches for a question",
				ArgsUsage: "QUESTION",
				Action:    topkCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "k", Usage: "Number of matches (default engine.top_k)"},
				},
			},
			{
				Name:   "reindex",
				Usage:  "Rebuild the index from the corpus and save it",
				Action: reindexCommand,
			},
			{
				Name:      "import",
				Usage:     "Load a JSON corpus file into the SQLite corpus",
				ArgsUsage: "FILE.json",
				Action:    importCommand,
			},
			{
				Name:   "console",
				Usage:  "Ask questions interactively",
				Action: consoleCommand,
			},
			faqCommand(),
			{
				Name:   "consultations",
				Usage:  "Show recently asked questions logged in the SQLite corpus",
				Action: consultationsCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "limit", Aliases: []string{"n"}, Value: 20, Usage: "Number of questions to show"},
				},
			},
		},
	}
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
