// Package llm wraps the chat model APIs behind a streaming session.
package llm

import (
	"context"
	"errors"
	"fmt"
)

// ErrTransport indicates the model API call failed: network, auth, or
// rate limit. The underlying cause is preserved in the chain.
// Check with errors.Is().
var ErrTransport = errors.New("model transport failure")

// wrapTransport tags provider errors with ErrTransport. Context
// cancellation is a caller decision, not a transport failure, and passes
// through untouched so callers can tell an abort from an outage.
func wrapTransport(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrTransport, err)
}
