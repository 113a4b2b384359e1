package services

import (
	"context"
	"time"

	"investmentapp/src/utils"

	"github.com/sethvargo/go-retry"
)

const defaultConflictBackoff = 10 * time.Millisecond

// retryOnConflict runs fn again once when it fails with a ConflictError.
// fn must open its own transaction so the second run starts clean and takes
// the update path; a second conflict is returned to the caller.
func retryOnConflict(ctx context.Context, backoff time.Duration, fn func(ctx context.Context) error) error {
	if backoff <= 0 {
		backoff = defaultConflictBackoff
	}
	b := retry.WithMaxRetries(1, retry.NewConstant(backoff))
	return retry.Do(ctx, b, func(ctx context.Context) error {
		err := fn(ctx)
		if utils.IsConflict(err) {
			utils.LoggerFromContext(ctx).WithError(err).Debug("unique constraint hit, retrying")
			return retry.RetryableError(err)
		}
		return err
	})
}
