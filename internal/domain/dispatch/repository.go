package dispatch

import "context"

// Repository is the record sink for dispatch outcomes.
//
// Outcomes are append-only: there is no update or delete.
type Repository interface {
	// Save inserts one outcome.
	Save(ctx context.Context, o *Outcome) error

	// List returns a page of outcomes, newest first, and the total count.
	List(ctx context.Context, page, limit int) ([]*Outcome, int64, error)
}
