package runner

import "log/slog"

// DefaultMaxRounds bounds how many times one command may suspend.
const DefaultMaxRounds = 32

// Option defines a functional option for configuring the Runner.
type Option func(*Runner)

// WithProvider configures the InteractionProvider.
func WithProvider(p InteractionProvider, mws ...Middleware) Option {
	return func(r *Runner) {
		r.provider = Chain(p, mws...)
	}
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.logger = logger
	}
}

// WithMaxRounds bounds the number of suspensions per command.
func WithMaxRounds(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.maxRounds = n
		}
	}
}

// WithSignals cancels the run on SIGINT or SIGTERM.
func WithSignals(enabled bool) Option {
	return func(r *Runner) {
		r.signals = enabled
	}
}

// WithResultHook is called with every intermediate and final result.
func WithResultHook(fn ResultHook) Option {
	return func(r *Runner) {
		r.onResult = fn
	}
}
