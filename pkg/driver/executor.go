package driver

import (
	"context"
	"fmt"
	"sync"
)

// caseTask produces the result of a single case.
type caseTask func(ctx context.Context) *CaseResult

// caseExecutor abstracts how a batch of case tasks is scheduled. Results are
// returned in task order whatever the scheduling.
type caseExecutor interface {
	Run(ctx context.Context, tasks []caseTask) []*CaseResult
}

// serialExecutor runs tasks one after another on the calling goroutine.
type serialExecutor struct{}

func (serialExecutor) Run(ctx context.Context, tasks []caseTask) []*CaseResult {
	results := make([]*CaseResult, len(tasks))
	for i, task := range tasks {
		results[i] = safeInvoke(ctx, task)
	}
	return results
}

// poolExecutor runs tasks on a fixed number of worker goroutines.
type poolExecutor struct {
	workers int
}

func newPoolExecutor(workers int) *poolExecutor {
	if workers < 1 {
		workers = 1
	}
	return &poolExecutor{workers: workers}
}

func (e *poolExecutor) Run(ctx context.Context, tasks []caseTask) []*CaseResult {
	results := make([]*CaseResult, len(tasks))
	indexes := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < e.workers && w < len(tasks); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indexes {
				results[i] = safeInvoke(ctx, tasks[i])
			}
		}()
	}
	for i := range tasks {
		indexes <- i
	}
	close(indexes)
	wg.Wait()
	return results
}

// safeInvoke runs task, turning a panic into a framework error on the result.
func safeInvoke(ctx context.Context, task caseTask) (result *CaseResult) {
	defer func() {
		if r := recover(); r != nil {
			result = &CaseResult{Err: fmt.Errorf("panic: %v", r)}
		}
	}()
	return task(ctx)
}
