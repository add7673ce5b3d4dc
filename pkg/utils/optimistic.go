package utils

import "context"

// AttemptFunc performs the remote half of an optimistic mutation.
type AttemptFunc func(ctx context.Context) error

// Optimistic applies a local change, runs attempt, and reverts the local change if attempt fails.
// - apply runs before attempt, unconditionally.
// - revert runs only when attempt returns an error (or panics, in which case the panic is re-thrown).
// The attempt error is returned unchanged.
func Optimistic(ctx context.Context, apply func(), attempt AttemptFunc, revert func()) (err error) {
	apply()

	defer func() {
		if p := recover(); p != nil {
			revert()
			panic(p)
		}
		if err != nil {
			revert()
		}
	}()

	err = attempt(ctx)
	return err
}
