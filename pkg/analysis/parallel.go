package analysis

import (
	"context"
	"sync"

	"github.com/depscout/depscout/pkg/requirements"
)

// maxWorkers bounds the evaluation pool. Each requirement is one task;
// small sets spawn fewer workers.
const maxWorkers = 10

// Analyzer fans the requirement set out to the Detector concurrently
// and aggregates the results.
type Analyzer struct {
	Detector *Detector
}

type detection struct {
	conflicts   []Conflict
	suggestions []string
}

// Analyze evaluates every requirement against the full set using a
// bounded worker pool of min(10, len(reqs)) goroutines. Tasks share
// only read access to the requirement slice and the provider; results
// are gathered on a channel, so no conflict list is appended from two
// goroutines.
//
// Aggregation order across requirements is not guaranteed, but for a
// fixed input the aggregated content is deterministic: each task
// depends only on immutable inputs.
func (a *Analyzer) Analyze(ctx context.Context, reqs []requirements.Requirement) ([]Conflict, []string) {
	if len(reqs) == 0 {
		return nil, nil
	}

	workers := min(maxWorkers, len(reqs))
	jobs := make(chan requirements.Requirement, len(reqs))
	results := make(chan detection, len(reqs))

	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for req := range jobs {
				conflicts, suggestions := a.Detector.Detect(ctx, req, reqs)
				results <- detection{conflicts: conflicts, suggestions: suggestions}
			}
		}()
	}

	for _, req := range reqs {
		jobs <- req
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	var allConflicts []Conflict
	var allSuggestions []string
	for r := range results {
		allConflicts = append(allConflicts, r.conflicts...)
		allSuggestions = append(allSuggestions, r.suggestions...)
	}
	return allConflicts, allSuggestions
}
