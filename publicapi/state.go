package publicapi

// PipelineState represents where a single action invocation is in its
// lifecycle. The pipeline is a single-slot state machine: one job in flight
// at a time.
type PipelineState string

const (
	// StateIdle means no action is in flight
	StateIdle PipelineState = "idle"
	// StateBuilding means the selection is being validated
	StateBuilding PipelineState = "building"
	// StateAwaitingSignatures means unsigned transactions were received and
	// are being signed
	StateAwaitingSignatures PipelineState = "awaiting_signatures"
	// StateSubmitting means the signed batch is being sent for execution
	StateSubmitting PipelineState = "submitting"
	// StateAwaitingJob means the job was accepted and the pipeline is
	// waiting for its terminal notification
	StateAwaitingJob PipelineState = "awaiting_job"
	// StateResolved is terminal success
	StateResolved PipelineState = "resolved"
	// StateFailed is terminal failure
	StateFailed PipelineState = "failed"
	// StateTimedOut is terminal, reached when no notification arrived within
	// the window
	StateTimedOut PipelineState = "timed_out"
)

func (s PipelineState) String() string {
	return string(s)
}

// IsTerminal reports whether the state ends an invocation
func (s PipelineState) IsTerminal() bool {
	switch s {
	case StateResolved, StateFailed, StateTimedOut:
		return true
	default:
		return false
	}
}
