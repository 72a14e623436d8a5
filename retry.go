package gkv

import (
	"context"
	log "log/slog"
	"time"

	"github.com/sethvargo/go-retry"
)

// RetryOnConflict executes task with Fibonacci backoff up to 5 retries,
// retrying only when the task fails with a CommitConflict. Any other error
// is returned immediately. If retries are exhausted, gaveUpTask is invoked
// (when not nil) and the final error is returned.
//
// Use it to wrap a whole transactional unit of work, e.g. a
// RunTransaction closure doing read-modify-write on contended handles.
func RetryOnConflict(ctx context.Context, task func(ctx context.Context) error, gaveUpTask func(ctx context.Context)) error {
	b := retry.NewFibonacci(50 * time.Millisecond)
	err := retry.Do(ctx, retry.WithMaxRetries(5, b), func(ctx context.Context) error {
		if err := task(ctx); err != nil {
			if IsCommitConflict(err) {
				return retry.RetryableError(err)
			}
			return err
		}
		return nil
	})
	if err != nil {
		if IsCommitConflict(err) {
			log.Warn(err.Error() + ", gave up")
			if gaveUpTask != nil {
				gaveUpTask(ctx)
			}
		}
		return err
	}
	return nil
}
