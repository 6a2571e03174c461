// Package async provides small helpers for work that runs outside the
// caller's goroutine.
//
// Run starts a function and returns a Future that can be awaited with a
// context or a timeout. Panics inside the function complete the future with
// ErrPanic.
//
//	f := async.Run(ctx, func(ctx context.Context) (Result, error) {
//	    return client.Call(ctx, "generateCertificate", payload)
//	})
//	res, err := f.Await(ctx)
//
// Runner executes fire-and-forget tasks such as follow-up notifications.
// Tasks are detached from the caller's cancellation, bounded by a timeout,
// and drained by Shutdown when the process stops.
package async
