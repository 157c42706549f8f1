// Package classify turns a pipeline iteration's result into the exit-code
// and stats-bucket taxonomy spec.md §6 and §9 define, mirroring
// original_source/workload/src/code.rs's Code enum.
package classify

import "fmt"

// Kind enumerates every way a pipeline iteration can conclude.
type Kind int

const (
	// Success means the iteration executed and every check passed.
	Success Kind = iota
	// InvalidStep means the sampler drew a step whose precondition never
	// held within the bounded re-draw budget (spec.md §4.5.1).
	InvalidStep
	// Fatal means a Check contradicted the model: the chain diverged from
	// prediction (spec.md §7).
	Fatal
	// BuildFailure means build_task or build_checks returned an error.
	BuildFailure
	// Execution means the chain rejected or partially failed the tx.
	Execution
	// Broadcast means submission itself failed or timed out; spec.md §7
	// says this never fails the run, only the iteration.
	Broadcast
	// Other is a catch-all for unclassified errors.
	Other
	// NoTask means the step produced zero tasks.
	NoTask
	// EmptyBatch means a composite step's inner draws all failed.
	EmptyBatch
	// StateFatal means the model itself could not be loaded or persisted;
	// terminates the worker.
	StateFatal
	// InitFatal means worker bootstrap (funding, initial accounts) failed
	// unrecoverably; terminates the worker.
	InitFatal
	// Skip means the iteration was intentionally not attempted (e.g.
	// --no-check bootstrap paths that still count as progress).
	Skip
)

func (k Kind) String() string {
	switch k {
	case Success:
		return "success"
	case InvalidStep:
		return "invalid_step"
	case Fatal:
		return "fatal"
	case BuildFailure:
		return "build_failure"
	case Execution:
		return "execution"
	case Broadcast:
		return "broadcast"
	case NoTask:
		return "no_task"
	case EmptyBatch:
		return "empty_batch"
	case StateFatal:
		return "state_fatal"
	case InitFatal:
		return "init_fatal"
	case Skip:
		return "skip"
	default:
		return "other"
	}
}

// ExitCode maps a Kind to the process exit code spec.md §6 assigns it.
func (k Kind) ExitCode() int {
	switch k {
	case Success, InvalidStep:
		return 0
	case Fatal:
		return 1
	case BuildFailure:
		return 2
	case Execution:
		return 3
	case Broadcast:
		return 4
	case NoTask:
		return 6
	case EmptyBatch:
		return 7
	case StateFatal:
		return 8
	case InitFatal:
		return 9
	default:
		return 5
	}
}

// Bucket is the coarser success/skip/fatal/acceptable/unexpected bucketing
// C9's per-step counters use (spec.md §4.9).
type Bucket int

const (
	BucketSuccess Bucket = iota
	BucketSkip
	BucketFatal
	BucketAcceptable
	BucketUnexpected
)

func (b Bucket) String() string {
	switch b {
	case BucketSuccess:
		return "success"
	case BucketSkip:
		return "skip"
	case BucketFatal:
		return "fatal"
	case BucketAcceptable:
		return "acceptable_failures"
	default:
		return "unexpected_failures"
	}
}

// Outcome is the fully classified result of one pipeline iteration, carrying
// enough detail to both drive process exit status and feed C9's stats and
// the fault-framework JSON details blob (spec.md §7 "User-visible failure").
type Outcome struct {
	Kind    Kind
	Step    string
	Err     error
	Details map[string]any
}

// Bucket derives the C9 counter bucket for this outcome. IbcTransfer and
// InvalidShielded task errors are pre-classified Acceptable by the caller
// before constructing Outcome (spec.md §4.9).
func (o Outcome) Bucket(acceptable bool) Bucket {
	switch o.Kind {
	case Success:
		return BucketSuccess
	case InvalidStep, NoTask, Skip:
		return BucketSkip
	case Fatal, StateFatal, InitFatal:
		return BucketFatal
	default:
		if acceptable {
			return BucketAcceptable
		}
		return BucketUnexpected
	}
}

func (o Outcome) String() string {
	if o.Err != nil {
		return fmt.Sprintf("%s[%s]: %v", o.Step, o.Kind, o.Err)
	}
	return fmt.Sprintf("%s[%s]", o.Step, o.Kind)
}
