package filters

import (
	"reflect"

	"github.com/YuminosukeSato/adafilt/core/model"
	"github.com/YuminosukeSato/adafilt/core/parallel"
	"github.com/YuminosukeSato/adafilt/pkg/errors"
)

// Job is one batch run for RunParallel.
type Job struct {
	Filter model.BatchRunner
	D      []float64
	X      [][]float64
}

// JobResult holds the outcome of the Job with the same index.
type JobResult struct {
	History *model.History
	Err     error
}

// RunParallel runs independent filters concurrently on up to workers
// goroutines (workers <= 0 means one per CPU). Every job must own its
// filter; use Clone to fan one filter out over several batches. A panic in
// a job is returned as that job's *errors.PanicError.
func RunParallel(jobs []Job, workers int) ([]JobResult, error) {
	seen := make(map[any]int, len(jobs))
	for i, j := range jobs {
		if j.Filter == nil {
			return nil, errors.NewValidationError("jobs", "filter must not be nil", i)
		}
		key := ownerOf(j.Filter)
		if key == nil {
			continue
		}
		if prev, ok := seen[key]; ok {
			return nil, errors.NewValidationError("jobs",
				"a filter cannot be shared between jobs", []int{prev, i})
		}
		seen[key] = i
	}

	results := make([]JobResult, len(jobs))
	parallel.ParallelizeWithWorkers(len(jobs), workers, func(start, end int) {
		for i := start; i < end; i++ {
			results[i] = runJob(jobs[i])
		}
	})
	return results, nil
}

// ownerOf returns the value that owns r's mutable state. FilterGNGD and
// FilterAP share their state with the embedded *AdaptiveFilter, so both
// resolve to that pointer. nil means r cannot be compared.
func ownerOf(r model.BatchRunner) any {
	if b, ok := r.(interface{ base() *AdaptiveFilter }); ok {
		return b.base()
	}
	if !reflect.TypeOf(r).Comparable() {
		return nil
	}
	return r
}

func runJob(j Job) (res JobResult) {
	defer errors.Recover(&res.Err, "RunParallel")
	res.History, res.Err = j.Filter.Run(j.D, j.X)
	return res
}
