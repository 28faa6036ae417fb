package index

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"faqbot/internal/domain"
	"faqbot/internal/embedding/tfidf"
)

// Build creates a new generation from a corpus snapshot. It shares nothing
// with any published generation. Analysis and encoding fan out over a pool
// of workers; results stay aligned with corpus order.
func Build(ctx context.Context, entries []domain.Entry, settings Settings, workers int) (*Generation, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	if workers < 1 {
		workers = runtime.NumCPU()
	}
	snapshot := make([]domain.Entry, len(entries))
	copy(snapshot, entries)

	analyzer := tfidf.NewAnalyzer(settings.Config)
	terms := make([][]string, len(snapshot))
	err := parallel(ctx, workers, len(snapshot), func(i int) {
		terms[i] = analyzer.Terms(documentText(snapshot[i], settings.IndexAnswers))
	})
	if err != nil {
		return nil, fmt.Errorf("analyzing corpus: %w", err)
	}

	vocab := tfidf.BuildVocabulary(terms, settings.MinDF, settings.MaxDF)
	encoder := tfidf.NewEncoder(analyzer, vocab, settings.SublinearTF)

	vectors := make([]tfidf.Vector, len(snapshot))
	err = parallel(ctx, workers, len(snapshot), func(i int) {
		vectors[i] = encoder.EncodeTerms(terms[i])
	})
	if err != nil {
		return nil, fmt.Errorf("encoding corpus: %w", err)
	}

	return &Generation{
		builtAt:  time.Now().UTC(),
		settings: settings,
		encoder:  encoder,
		entries:  snapshot,
		vectors:  vectors,
	}, nil
}

// parallel runs fn(0..n-1) on an ants pool and waits for all submitted tasks.
// Submission stops early when ctx is done.
func parallel(ctx context.Context, workers, n int, fn func(i int)) error {
	if n == 0 {
		return ctx.Err()
	}
	if workers > n {
		workers = n
	}
	pool, err := ants.NewPool(workers)
	if err != nil {
		return err
	}
	defer pool.Release()

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		if ctx.Err() != nil {
			break
		}
		i := i
		wg.Add(1)
		if err := pool.Submit(func() {
			defer wg.Done()
			fn(i)
		}); err != nil {
			wg.Done()
			wg.Wait()
			return err
		}
	}
	wg.Wait()
	return ctx.Err()
}
