package orchestrator

import (
	"errors"
	"fmt"

	"smart-grocery-be/pkg/planner"
)

var (
	// ErrStageExecutionFailed is a non-fatal turn failure. The session is not
	// advanced and the same stage runs again on the next message.
	ErrStageExecutionFailed = errors.New("stage execution failed")
	// ErrTurnTimeout means the turn ran out of time. The session keeps its
	// pre-turn state.
	ErrTurnTimeout = errors.New("turn timed out")
	// ErrSessionLock means the shared session lock could not be reached.
	ErrSessionLock = errors.New("session lock unavailable")
	// ErrInvalidStateTransition is never returned to callers of AdvanceTurn;
	// it is reported as a user-visible prompt instead.
	ErrInvalidStateTransition = errors.New("invalid state transition")
	ErrInvalidMessage         = errors.New("invalid message")
)

// TurnError carries the stage a turn failed in.
type TurnError struct {
	Kind  error
	Stage planner.Stage
	Err   error
}

func (e *TurnError) Error() string {
	if e.Stage != "" {
		return fmt.Sprintf("%v: %s: %v", e.Kind, e.Stage, e.Err)
	}
	return fmt.Sprintf("%v: %v", e.Kind, e.Err)
}

// Unwrap exposes both the kind and the cause to errors.Is.
func (e *TurnError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}
