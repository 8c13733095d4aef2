package eventsync

import (
	"context"
	"fmt"
	"sync"

	"github.com/marketbridge/marketbridge/internal/logging"
	"github.com/marketbridge/marketbridge/internal/model"
)

// Status is the coarse-grained result of one processed notification.
type Status string

const (
	StatusOK      Status = "OK"
	StatusPartial Status = "PARTIAL"
	StatusFailed  Status = "FAILED"
)

// Result is the only value returned to the transport: the three-way
// status plus the underlying failure causes for diagnostics. The causes
// are for logs only and never leave the process in a response body.
type Result struct {
	Status   Status
	Failures []error
}

// Outcome is one settled branch of a fan-out stage: either a value or an
// error, labeled for diagnostics.
type Outcome[T any] struct {
	Label string
	Value T
	Err   error
}

// task is one branch of a fan-out stage.
type task[T any] struct {
	label string
	run   func(ctx context.Context) (T, error)
}

// settleAll launches every task concurrently and waits for all of them to
// settle. A failing branch never cancels or blocks its siblings; a panic
// inside a branch is captured as that branch's error.
func settleAll[T any](ctx context.Context, tasks []task[T]) []Outcome[T] {
	outcomes := make([]Outcome[T], len(tasks))

	var wg sync.WaitGroup
	for i, tk := range tasks {
		wg.Add(1)
		go func(i int, tk task[T]) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					outcomes[i] = Outcome[T]{Label: tk.label, Err: fmt.Errorf("panic: %v", r)}
				}
			}()
			value, err := tk.run(ctx)
			outcomes[i] = Outcome[T]{Label: tk.label, Value: value, Err: err}
		}(i, tk)
	}
	wg.Wait()

	return outcomes
}

// aggregate folds the settled outcomes of one pass into a Result. An
// empty list is OK: absence of interest is normal, not an error. Every
// rejection is logged with its cause before folding.
func aggregate[T any](ctx context.Context, log *logging.Logger, pass string, msg *model.Message, outcomes []Outcome[T]) Result {
	if len(outcomes) == 0 {
		return Result{Status: StatusOK}
	}

	var failures []error
	for _, o := range outcomes {
		if o.Err == nil {
			continue
		}
		log.ErrorContext(ctx, "outcome rejected",
			logging.Pass(pass),
			logging.MessageID(msg.ID),
			logging.ResourceType(msg.Resource.TypeID),
			logging.Processor(o.Label),
			logging.Error(o.Err),
		)
		failures = append(failures, fmt.Errorf("%s: %w", o.Label, o.Err))
	}

	switch {
	case len(failures) == 0:
		return Result{Status: StatusOK}
	case len(failures) == len(outcomes):
		return Result{Status: StatusFailed, Failures: failures}
	default:
		return Result{Status: StatusPartial, Failures: failures}
	}
}

// combine merges the generation and delivery pass results into the final
// status. A generation-side partial failure survives into the final
// result even when every delivery succeeded.
func combine(generation, delivery Result) Result {
	failures := append(append([]error(nil), generation.Failures...), delivery.Failures...)

	status := delivery.Status
	if status != StatusFailed && generation.Status == StatusPartial {
		status = StatusPartial
	}
	return Result{Status: status, Failures: failures}
}
