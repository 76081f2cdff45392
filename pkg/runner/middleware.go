package runner

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/gambit/pkg/domain"
)

// Middleware wraps an InteractionProvider.
type Middleware func(InteractionProvider) InteractionProvider

// Chain applies middlewares so that the first one is the outermost.
func Chain(p InteractionProvider, mws ...Middleware) InteractionProvider {
	for i := len(mws) - 1; i >= 0; i-- {
		p = mws[i](p)
	}
	return p
}

// LoggingMiddleware logs every request and its answer.
func LoggingMiddleware(logger *slog.Logger) Middleware {
	return func(next InteractionProvider) InteractionProvider {
		return ProviderFunc(func(ctx context.Context, req domain.InteractionRequest) (domain.InteractionResponse, error) {
			logger.Debug("interaction requested", "session_id", req.SessionID, "type", req.Type, "prompt", req.Prompt)
			resp, err := next.Provide(ctx, req)
			if err != nil {
				logger.Warn("interaction failed", "session_id", req.SessionID, "err", err)
				return resp, err
			}
			logger.Debug("interaction answered", "session_id", req.SessionID, "cancelled", resp.Cancelled, "data", resp.Data)
			return resp, nil
		})
	}
}

// EchoMiddleware writes each prompt and answer to w. Useful with non-interactive
// providers so a transcript is visible.
func EchoMiddleware(w io.Writer) Middleware {
	return func(next InteractionProvider) InteractionProvider {
		return ProviderFunc(func(ctx context.Context, req domain.InteractionRequest) (domain.InteractionResponse, error) {
			resp, err := next.Provide(ctx, req)
			if err != nil {
				return resp, err
			}
			if resp.Cancelled {
				fmt.Fprintf(w, "%s -> cancelled\n", req.Prompt)
				return resp, nil
			}
			fmt.Fprintf(w, "%s -> %v\n", req.Prompt, resp.Data[variable(req)])
			return resp, nil
		})
	}
}
