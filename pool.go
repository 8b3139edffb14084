package book2pdf

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Worker pool sizing constants.
const (
	// MinWorkers ensures at least one chapter is fetched at a time.
	MinWorkers = 1

	// MaxWorkers caps concurrent chapter downloads.
	MaxWorkers = 8

	// cpuDivisor leaves headroom for the browser used during assembly.
	cpuDivisor = 2
)

// ResolveWorkers determines the fetch pool size.
// Priority: explicit workers > GOMAXPROCS-based calculation.
func ResolveWorkers(workers int) int {
	if workers > 0 {
		return workers
	}

	// GOMAXPROCS is adjusted by automaxprocs in containers.
	n := runtime.GOMAXPROCS(0) / cpuDivisor

	if n < MinWorkers {
		return MinWorkers
	}
	if n > MaxWorkers {
		return MaxWorkers
	}
	return n
}

// chapterFunc processes one chapter. Failures are reported in the result.
type chapterFunc func(ctx context.Context, c Chapter) ChapterResult

// fanOut runs fn over chapters with at most workers goroutines and returns
// results indexed like chapters. Chapters not started before ctx is done
// are marked with ctx.Err().
func fanOut(ctx context.Context, workers int, chapters []Chapter, fn chapterFunc) []ChapterResult {
	if len(chapters) == 0 {
		return nil
	}

	if workers > len(chapters) {
		workers = len(chapters)
	}

	results := make([]ChapterResult, len(chapters))
	jobs := make(chan int, len(chapters))
	for i := range chapters {
		jobs <- i
	}
	close(jobs)

	var g errgroup.Group
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			for idx := range jobs {
				if err := ctx.Err(); err != nil {
					results[idx] = ChapterResult{Chapter: chapters[idx], Err: err}
					continue
				}
				results[idx] = fn(ctx, chapters[idx])
			}
			return nil
		})
	}

	// Workers record failures in results and never return an error.
	_ = g.Wait()
	return results
}
