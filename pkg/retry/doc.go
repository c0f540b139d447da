// Package retry runs an operation with exponential backoff.
//
// Outputters use it for delivery to remote endpoints:
//
//	cfg := retry.DefaultConfig()
//	cfg.Retryable = errors.IsTransient
//	err := retry.Do(ctx, cfg, func(ctx context.Context) error {
//	    return post(ctx, body)
//	})
//
// An error wrapped with NonRetryable, or rejected by Config.Retryable, ends the
// loop immediately and is returned as is. Cancelling ctx interrupts a pending
// backoff.
package retry
