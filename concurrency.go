package linetl

import (
	"context"
	"sync"
	"time"
)

// DefaultProgressEvery is how many completions pass between progress reports.
const DefaultProgressEvery = 10

// UnitFunc translates unit i of a run.
type UnitFunc func(ctx context.Context, i int) error

// LimitOptions configures RunLimited.
type LimitOptions struct {
	Limit         int           // Maximum units in flight (min 1)
	Delay         time.Duration // Pause after each unit, taken while holding its slot
	OnProgress    ProgressFunc
	ProgressEvery int // Report every N completions (default 10); the last one is always reported
}

// RunLimited runs fn for units 0..n-1 with at most opts.Limit in flight.
// OnProgress is never called concurrently.
// After the first error or an abort no further units are started; units
// already running are waited for. It returns the first error, or the abort
// error when the run was aborted.
func RunLimited(abort *AbortState, n int, opts LimitOptions, fn UnitFunc) error {
	limit := max(opts.Limit, 1)
	every := opts.ProgressEvery
	if every <= 0 {
		every = DefaultProgressEvery
	}

	ctx := abort.Context()
	sem := make(chan struct{}, limit)
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error

		progressMu sync.Mutex
		done       int
	)

	failed := func() bool {
		mu.Lock()
		defer mu.Unlock()
		return firstErr != nil
	}

dispatch:
	for i := 0; i < n; i++ {
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			break dispatch
		}
		if failed() || abort.Aborted() {
			<-sem
			break
		}

		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()

			if err := fn(ctx, i); err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
			}

			// Reports run one at a time with increasing counts.
			progressMu.Lock()
			done++
			completed := done
			if opts.OnProgress != nil && (completed%every == 0 || completed == n) {
				opts.OnProgress(completed, n)
			}
			progressMu.Unlock()

			if opts.Delay > 0 && completed < n {
				select {
				case <-time.After(opts.Delay):
				case <-ctx.Done():
				}
			}
		}(i)
	}

	wg.Wait()

	if firstErr != nil {
		return firstErr
	}
	return abort.Err()
}

// PrefetchCached looks up the cache keys of texts in parallel and returns the
// hits by index. Texts sharing a key are looked up once.
func PrefetchCached(ctx context.Context, cache TranslationCache, texts []string, suffix string) map[int]string {
	hits := make(map[int]string)
	if cache == nil || len(texts) == 0 {
		return hits
	}

	byKey := make(map[string][]int)
	for i, text := range texts {
		if !HasTranslatableText(text) {
			continue
		}
		key := CacheKey(text, suffix)
		byKey[key] = append(byKey[key], i)
	}

	type lookupResult struct {
		key   string
		value string
		found bool
	}

	results := make(chan lookupResult, len(byKey))
	var wg sync.WaitGroup
	for key := range byKey {
		wg.Add(1)
		go func(k string) {
			defer wg.Done()
			val, ok := cache.Get(ctx, k)
			results <- lookupResult{key: k, value: val, found: ok}
		}(key)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	for r := range results {
		if !r.found {
			continue
		}
		for _, i := range byKey[r.key] {
			hits[i] = r.value
		}
	}
	return hits
}
