package app

import (
	"context"
	"fmt"
)

// Pinger is the minimal interface for a store client capable of Ping.
type Pinger interface{ Ping(ctx context.Context) error }

// BuildReadinessChecks returns three readiness checks: the relational
// store, the document store, and the report cache. A nil client yields
// a check that always fails, keeping the instance out of rotation
// until wiring is complete.
func BuildReadinessChecks(db, mongo, cache Pinger) (
	func(ctx context.Context) error,
	func(ctx context.Context) error,
	func(ctx context.Context) error,
) {
	probe := func(name string, p Pinger) func(ctx context.Context) error {
		return func(ctx context.Context) error {
			if p == nil {
				return fmt.Errorf("%s not configured", name)
			}
			return p.Ping(ctx)
		}
	}
	return probe("db", db), probe("mongo", mongo), probe("redis", cache)
}
