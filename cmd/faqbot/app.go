package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/urfave/cli/v2"

	"faqbot/internal/config"
	"faqbot/internal/corpus"
	corpussqlite "faqbot/internal/corpus/sqlite"
	"faqbot/internal/domain"
	"faqbot/internal/index"
	"faqbot/internal/service"
	"faqbot/internal/vectorstore"
	badgerstore "faqbot/internal/vectorstore/badger"
	filestore "faqbot/internal/vectorstore/file"
	"faqbot/internal/vectorstore/memory"
)

// app is everything a command needs, assembled from the config.
type app struct {
	cfg     *config.AppConfig
	svc     *service.FAQServiceImpl
	source  domain.CorpusSource
	db      *corpussqlite.Store
	closers []io.Closer
}

func loadConfig(c *cli.Context) (*config.AppConfig, error) {
	var (
		cfg *config.AppConfig
		err error
	)
	if path := c.String("config"); path != "" {
		cfg, err = config.Load(path)
	} else {
		cfg, _, err = config.LoadDefault()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := config.ApplyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// assemble wires corpus, index storage and service without loading the index.
func assemble(c *cli.Context) (*app, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}
	logger := slog.Default()
	a := &app{cfg: cfg}

	var svcOpts []service.Option
	switch cfg.Corpus.Type {
	case "json":
		a.source = corpus.NewJSONFile(cfg.Corpus.Path)
	case "sqlite":
		db, err := corpussqlite.Open(cfg.Corpus.Path)
		if err != nil {
			return nil, err
		}
		a.db = db
		a.source = db
		a.closers = append(a.closers, db)
		svcOpts = append(svcOpts, service.WithRecorder(db))
	}

	store, err := openStorage(cfg.Index, logger)
	if err != nil {
		a.Close()
		return nil, err
	}
	if store != nil {
		a.closers = append(a.closers, store)
		svcOpts = append(svcOpts, service.WithStorage(store))
	}

	settings, err := cfg.Engine.Settings()
	if err != nil {
		a.Close()
		return nil, err
	}
	coord, err := index.NewCoordinator(settings,
		index.WithLogger(logger),
		index.WithWorkers(cfg.Engine.BuildWorkers))
	if err != nil {
		a.Close()
		return nil, err
	}
	svcOpts = append(svcOpts,
		service.WithLogger(logger),
		service.WithTopK(cfg.Engine.TopK),
		service.WithMessages(cfg.Engine.DeferMessage, cfg.Engine.EmptyMessage))
	a.svc = service.NewFAQService(coord, cfg.Engine.Gate(), svcOpts...)
	return a, nil
}

// ready assembles the app and loads the index from storage or the corpus.
func ready(c *cli.Context) (*app, error) {
	a, err := assemble(c)
	if err != nil {
		return nil, err
	}
	if err := a.svc.Warm(c.Context, a.source); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func openStorage(cfg config.IndexConfig, logger *slog.Logger) (vectorstore.Storage, error) {
	switch cfg.Type {
	case "file":
		return filestore.NewStorage(cfg.Path)
	case "badger":
		return badgerstore.Open(cfg.Path, logger)
	case "memory":
		return memory.NewStorage(), nil
	default:
		return nil, nil
	}
}

func (a *app) reload(ctx context.Context) error {
	_, err := a.svc.ReloadFrom(ctx, a.source)
	return err
}

func (a *app) Close() {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i].Close())
	}
	if err := errors.Join(errs...); err != nil {
		slog.Warn("error while closing", "err", err)
	}
}
