package service

import (
	"errors"
	"fmt"

	domain "github.com/oggyb/wa-dispatch/internal/domain/dispatch"
)

// ErrTextNotDelivered is returned when the gateway rejected the text message
// and the service is configured to treat that as a failed request.
var ErrTextNotDelivered = errors.New("text message was not delivered")

// DispatchError is returned when a send step failed outright. Partial holds
// the steps completed before the failure; the rest stay not-sent.
type DispatchError struct {
	Step    string
	Partial *domain.Outcome
	Err     error
}

func (e *DispatchError) Error() string {
	return fmt.Sprintf("dispatch %s: %v", e.Step, e.Err)
}

func (e *DispatchError) Unwrap() error { return e.Err }

// PersistenceError is returned when the outcome could not be recorded. The
// message itself may already have been delivered.
type PersistenceError struct {
	Outcome *domain.Outcome
	Err     error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("record dispatch %s: %v", e.Outcome.ID, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
