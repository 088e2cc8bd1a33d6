// Package oracle defines the generative knowledge service used as a fallback
// data source, and the strict decoding applied to its replies.
//
// The oracle is non-deterministic and may fail. Callers treat any transport
// error or undecodable reply as "no result" and never retry automatically.
package oracle

import (
	"context"
	"time"

	"github.com/agentstation/carryon/pkg/errors"
)

// Kinds of oracle requests, used for logging and metrics.
const (
	KindItem    = "item"
	KindWeights = "weights"
)

// Request is one generation request.
type Request struct {
	// Kind identifies the contract of the request (KindItem, KindWeights).
	Kind string
	// SystemInstruction fixes the reply contract.
	SystemInstruction string
	// Prompt is the per-call input.
	Prompt string
}

// Oracle generates a text reply for a request.
type Oracle interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// Func adapts a function to the Oracle interface.
type Func func(ctx context.Context, req Request) (string, error)

// Generate calls f.
func (f Func) Generate(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}

// Unavailable is an oracle that always fails. It stands in when no API key is configured.
var Unavailable Oracle = Func(func(context.Context, Request) (string, error) {
	return "", errors.ErrOracleUnavailable
})

// WithTimeout bounds every call to o by d. A non-positive d returns o unchanged.
func WithTimeout(o Oracle, d time.Duration) Oracle {
	if d <= 0 {
		return o
	}
	return Func(func(ctx context.Context, req Request) (string, error) {
		ctx, cancel := context.WithTimeout(ctx, d)
		defer cancel()

		reply, err := o.Generate(ctx, req)
		if err != nil && ctx.Err() != nil {
			return "", errors.ErrTimeout
		}
		return reply, err
	})
}
