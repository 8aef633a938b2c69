package actions

import (
	"github.com/pkg/errors"
)

// Outcome classifies how an invocation of an action ended.
// Suspended is not a failure: the work is still in flight at the engine and a
// redelivered trigger is expected to resume it. Callers must not burn retry
// budgets on it as if the job were broken.
type Outcome string

const (
	OutcomeCompleted Outcome = "completed"
	OutcomeFailed    Outcome = "failed"
	OutcomeSuspended Outcome = "suspended"
)

var (
	// ErrBudgetExceeded means the invocation ran out of wall-clock budget while the
	// engine was still working. Distinguishable from real failure via errors.Is.
	ErrBudgetExceeded = errors.New("invocation budget exceeded while query still running")

	// ErrQueryFailed means the engine reported a terminal failure state for the job.
	ErrQueryFailed = errors.New("query reached a terminal failure state")
)

// Runner is the contract between the cmd harnesses (CLI, Lambda, web) and an action.
type Runner interface {
	Run() (interface{}, error)
}
