package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v2"

	"faqbot/internal/api"
	"faqbot/internal/corpus"
	"faqbot/internal/tui"
	"faqbot/internal/watch"
)

func serveCommand(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := ready(c)
	if err != nil {
		return err
	}
	defer a.Close()

	addr := a.cfg.Server.Addr
	if c.IsSet("addr") {
		addr = c.String("addr")
	}
	handler := api.NewHandler(a.svc, a.source,
		api.WithLogger(slog.Default()),
		api.WithReloadLimit(a.cfg.Server.ReloadRate, a.cfg.Server.ReloadBurst))
	srv := &http.Server{
		Addr:              addr,
		Handler:           api.NewRouter(handler),
		ReadHeaderTimeout: 10 * time.Second,
	}

	if a.cfg.Watch.Enabled || c.Bool("watch") {
		if src, ok := a.source.(*corpus.JSONFile); ok {
			w := watch.New(src.Path(), a.reload,
				watch.WithLogger(slog.Default()),
				watch.WithDebounce(time.Duration(a.cfg.Watch.DebounceMS)*time.Millisecond))
			go func() {
				if err := w.Run(ctx); err != nil {
					slog.Error("corpus watcher stopped", "err", err)
				}
			}()
		} else {
			slog.Warn("watching is only supported for json corpora", "type", a.cfg.Corpus.Type)
		}
	}

	errCh := make(chan error, 1)
	go func() {
		st := a.svc.Stats()
		slog.Info("listening", "addr", addr, "items", st.Items, "version", st.Version)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func askCommand(c *cli.Context) error {
	question := strings.Join(c.Args().Slice(), " ")
	a, err := ready(c)
	if err != nil {
		return err
	}
	defer a.Close()

	out := a.svc.Ask(c.Context, question)
	w := c.App.Writer
	fmt.Fprintln(w, out.Message)
	if out.Answered() {
		fmt.Fprintf(w, "matched %q (score %.3f)\n", out.Match.Question, out.Score)
	} else if out.Score > 0 {
		fmt.Fprintf(w, "best score %.3f is below %.2f\n", out.Score, a.svc.Threshold())
	}
	return nil
}

func topkCommand(c *cli.Context) error {
	question := strings.Join(c.Args().Slice(), " ")
	a, err := ready(c)
	if err != nil {
		return err
	}
	defer a.Close()

	for i, m := range a.svc.TopK(c.Context, question, c.Int("k")) {
		fmt.Fprintf(c.App.Writer, "%2d. %.3f  %s\n", i+1, m.Score, m.Question)
	}
	return nil
}

func reindexCommand(c *cli.Context) error {
	a, err := assemble(c)
	if err != nil {
		return err
	}
	defer a.Close()

	n, err := a.svc.ReloadFrom(c.Context, a.source)
	if err != nil {
		return err
	}
	if a.cfg.Index.Type == "none" {
		slog.Warn("index.type is none, the rebuilt index was not saved")
	}
	fmt.Fprintf(c.App.Writer, "indexed %d entries (%d terms)\n", n, a.svc.Stats().Terms)
	return nil
}

func importCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected exactly one JSON file")
	}
	a, err := assemble(c)
	if err != nil {
		return err
	}
	defer a.Close()
	if a.db == nil {
		return fmt.Errorf("import needs corpus.type sqlite, got %q", a.cfg.Corpus.Type)
	}

	entries, err := corpus.NewJSONFile(c.Args().First()).Snapshot(c.Context)
	if err != nil {
		return err
	}
	stored, err := a.db.Import(c.Context, entries)
	if err != nil {
		return err
	}
	if _, err := a.svc.ReloadFrom(c.Context, a.source); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "imported %d entries into %s\n", len(stored), a.db.Path())
	return nil
}

func consoleCommand(c *cli.Context) error {
	a, err := ready(c)
	if err != nil {
		return err
	}
	defer a.Close()

	st := a.svc.Stats()
	subtitle := fmt.Sprintf("%d entries, %d terms, index v%d, threshold %.2f",
		st.Items, st.Terms, st.Version, a.svc.Threshold())
	p := tea.NewProgram(tui.New(a.svc, a.cfg.Engine.TopK, subtitle), tea.WithAltScreen())
	_, err = p.Run()
	return err
}
