package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v2"

	"faqbot/internal/corpus"
	"faqbot/internal/domain"
)

func faqCommand() *cli.Command {
	return &cli.Command{
		Name:  "faq",
		Usage: "Inspect and edit corpus entries",
		Subcommands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List entries in corpus order",
				Action: faqListCommand,
			},
			{
				Name:      "show",
				Usage:     "Show one entry of the SQLite corpus",
				ArgsUsage: "ID",
				Action:    faqShowCommand,
			},
			{
				Name:   "add",
				Usage:  "Add or replace an entry in the SQLite corpus and reindex",
				Action: faqAddCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "id", Usage: "Entry id (default a new UUID)"},
					&cli.StringFlag{Name: "question", Aliases: []string{"q"}, Required: true},
					&cli.StringFlag{Name: "answer", Aliases: []string{"a"}, Required: true},
				},
			},
			{
				Name:      "rm",
				Usage:     "Remove an entry from the SQLite corpus and reindex",
				ArgsUsage: "ID",
				Action:    faqRemoveCommand,
			},
			{
				Name:   "export",
				Usage:  "Write the corpus as JSON",
				Action: faqExportCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "Output file (default stdout)"},
				},
			},
		},
	}
}

// withDB assembles the app and fails unless the corpus lives in SQLite.
func withDB(c *cli.Context, command string) (*app, error) {
	a, err := assemble(c)
	if err != nil {
		return nil, err
	}
	if a.db == nil {
		a.Close()
		return nil, fmt.Errorf("%s needs corpus.type sqlite, got %q", command, a.cfg.Corpus.Type)
	}
	return a, nil
}

func faqListCommand(c *cli.Context) error {
	a, err := assemble(c)
	if err != nil {
		return err
	}
	defer a.Close()

	entries, err := a.source.Snapshot(c.Context)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\n", e.ID, e.Question)
	}
	return tw.Flush()
}

func faqShowCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected exactly one entry id")
	}
	a, err := withDB(c, "faq show")
	if err != nil {
		return err
	}
	defer a.Close()

	e, err := a.db.Get(c.Context, c.Args().First())
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "id: %s\nq:  %s\na:  %s\n", e.ID, e.Question, e.Answer)
	return nil
}

func faqAddCommand(c *cli.Context) error {
	a, err := withDB(c, "faq add")
	if err != nil {
		return err
	}
	defer a.Close()

	e, err := a.db.Upsert(c.Context, domain.Entry{
		ID:       c.String("id"),
		Question: c.String("question"),
		Answer:   c.String("answer"),
	})
	if err != nil {
		return err
	}
	n, err := a.svc.ReloadFrom(c.Context, a.source)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "stored %s, indexed %d entries\n", e.ID, n)
	return nil
}

func faqRemoveCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected exactly one entry id")
	}
	a, err := withDB(c, "faq rm")
	if err != nil {
		return err
	}
	defer a.Close()

	id := c.Args().First()
	if err := a.db.Delete(c.Context, id); err != nil {
		return err
	}
	n, err := a.svc.ReloadFrom(c.Context, a.source)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "removed %s, indexed %d entries\n", id, n)
	return nil
}

func faqExportCommand(c *cli.Context) error {
	a, err := assemble(c)
	if err != nil {
		return err
	}
	defer a.Close()

	entries, err := a.source.Snapshot(c.Context)
	if err != nil {
		return err
	}
	path := c.String("out")
	if path == "" {
		return corpus.Encode(c.App.Writer, entries)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := corpus.Encode(f, entries); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "exported %d entries to %s\n", len(entries), path)
	return nil
}

func consultationsCommand(c *cli.Context) error {
	a, err := withDB(c, "consultations")
	if err != nil {
		return err
	}
	defer a.Close()

	log, err := a.db.Consultations(c.Context, c.Int("limit"))
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
	for _, r := range log {
		fmt.Fprintf(tw, "%s\t%s\t%.3f\t%s\t%q\n",
			r.CreatedAt.Local().Format(time.DateTime), r.Outcome, r.Score, r.EntryID, r.Query)
	}
	return tw.Flush()
}
