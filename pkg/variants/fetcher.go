package variants

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// FetcherConfig holds search page fetcher configuration.
type FetcherConfig struct {
	// MaxConcurrency is the maximum number of parallel page requests.
	MaxConcurrency int

	// Timeout bounds a single page fetch.
	Timeout time.Duration

	// PageSize is the number of hits requested per page.
	PageSize int
}

// DefaultFetcherConfig returns a configuration sized for the MyVariant
// fair-use budget (10 req/s shared with all other traffic).
func DefaultFetcherConfig() FetcherConfig {
	return FetcherConfig{
		MaxConcurrency: 5,
		Timeout:        15 * time.Second,
		PageSize:       50,
	}
}

// PageFetcher fetches a single page of query hits at an offset and reports
// the total number of hits for the query.
type PageFetcher interface {
	FetchPage(ctx context.Context, query string, offset, limit int) (hits []Variant, total int, err error)
}

// pageResult is the outcome of fetching one page.
type pageResult struct {
	Offset int
	Hits   []Variant
	Err    error
}

// PagedFetcher fans a query's result pages out over a worker pool.
type PagedFetcher struct {
	fetcher PageFetcher
	config  FetcherConfig
}

// NewPagedFetcher creates a paged fetcher.
func NewPagedFetcher(fetcher PageFetcher, config FetcherConfig) *PagedFetcher {
	if config.MaxConcurrency <= 0 {
		config.MaxConcurrency = 5
	}
	if config.Timeout <= 0 {
		config.Timeout = 15 * time.Second
	}
	if config.PageSize <= 0 {
		config.PageSize = 50
	}

	return &PagedFetcher{
		fetcher: fetcher,
		config:  config,
	}
}

// FetchAll fetches up to maxResults hits for query. The first page is fetched
// synchronously to learn the total; remaining pages are distributed across
// the worker pool. Failed pages are skipped: the assembled hits are returned
// together with an error describing the shortfall.
func (pf *PagedFetcher) FetchAll(ctx context.Context, query string, maxResults int) ([]Variant, error) {
	start := time.Now()

	firstHits, total, err := pf.fetcher.FetchPage(ctx, query, 0, pf.config.PageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch first page: %w", err)
	}

	want := total
	if maxResults > 0 && maxResults < want {
		want = maxResults
	}

	log.Info().
		Str("query", query).
		Int("total", total).
		Int("want", want).
		Msg("Starting paged variant fetch")

	// Single page covers everything requested
	if want <= len(firstHits) || len(firstHits) == 0 {
		hits := firstHits
		if want < len(hits) {
			hits = hits[:want]
		}
		log.Info().
			Str("query", query).
			Int("hits", len(hits)).
			Dur("duration", time.Since(start)).
			Msg("Fetch complete (single page)")
		return hits, nil
	}

	pages := make(map[int][]Variant)
	pages[0] = firstHits
	var pagesMu sync.Mutex

	offsetQueue := make(chan int, pf.config.MaxConcurrency*2)
	results := make(chan pageResult, pf.config.MaxConcurrency*2)

	go func() {
		for offset := pf.config.PageSize; offset < want; offset += pf.config.PageSize {
			offsetQueue <- offset
		}
		close(offsetQueue)
	}()

	var wg sync.WaitGroup
	for i := 0; i < pf.config.MaxConcurrency; i++ {
		wg.Add(1)
		go pf.worker(ctx, query, offsetQueue, results, &wg, i)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	var failed []error
	fetched := 1
	for result := range results {
		if result.Err != nil {
			log.Warn().
				Err(result.Err).
				Int("offset", result.Offset).
				Msg("Page fetch failed")
			failed = append(failed, result.Err)
			continue
		}

		pagesMu.Lock()
		pages[result.Offset] = result.Hits
		fetched++
		pagesMu.Unlock()
	}

	hits := assemblePages(pages, want)

	log.Info().
		Str("query", query).
		Int("pages", fetched).
		Int("hits", len(hits)).
		Dur("duration", time.Since(start)).
		Msg("Fetch complete")

	if len(failed) > 0 {
		return hits, fmt.Errorf("%d of %d pages failed (partial data: %d hits): %w",
			len(failed), len(failed)+fetched, len(hits), failed[0])
	}
	return hits, nil
}

// worker processes page offsets from the queue.
func (pf *PagedFetcher) worker(ctx context.Context, query string, offsets <-chan int, results chan<- pageResult, wg *sync.WaitGroup, workerID int) {
	defer wg.Done()
	pagesProcessed := 0

	for offset := range offsets {
		select {
		case <-ctx.Done():
			log.Debug().
				Int("worker_id", workerID).
				Int("pages_processed", pagesProcessed).
				Msg("Worker stopping (context cancelled)")
			return
		default:
		}

		pageCtx, cancel := context.WithTimeout(ctx, pf.config.Timeout)
		hits, _, err := pf.fetcher.FetchPage(pageCtx, query, offset, pf.config.PageSize)
		cancel()

		select {
		case results <- pageResult{Offset: offset, Hits: hits, Err: err}:
		case <-ctx.Done():
			return
		}

		pagesProcessed++
	}

	if pagesProcessed > 0 {
		log.Debug().
			Int("worker_id", workerID).
			Int("pages_processed", pagesProcessed).
			Msg("Worker completed")
	}
}

// assemblePages flattens fetched pages in offset order and truncates to want.
func assemblePages(pages map[int][]Variant, want int) []Variant {
	offsets := make([]int, 0, len(pages))
	for offset := range pages {
		offsets = append(offsets, offset)
	}
	sort.Ints(offsets)

	hits := make([]Variant, 0, want)
	for _, offset := range offsets {
		hits = append(hits, pages[offset]...)
	}
	if len(hits) > want {
		hits = hits[:want]
	}
	return hits
}
