package db

import "context"

// DB is a generic database port so repositories do not depend on
// a concrete driver.
type DB interface {
	Conn() any
	Ping(ctx context.Context) error
	Close() error
}
