// Package middleware decorates a ports.SessionStore: encryption at rest and
// masking of sensitive variables for read-only views.
package middleware

import "github.com/aretw0/gambit/pkg/ports"

// Middleware wraps a SessionStore.
type Middleware func(ports.SessionStore) ports.SessionStore

// Chain applies mws to store so that the first middleware is the outermost.
func Chain(store ports.SessionStore, mws ...Middleware) ports.SessionStore {
	for i := len(mws) - 1; i >= 0; i-- {
		store = mws[i](store)
	}
	return store
}
