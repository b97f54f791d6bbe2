// Package middleware decorates tutorial stores with cross-cutting behavior.
package middleware

import "github.com/aretw0/viben/pkg/ports"

// Middleware allows wrapping a TutorialStore to add behavior.
type Middleware func(ports.TutorialStore) ports.TutorialStore

// Chain applies middlewares so the first one is the outermost.
func Chain(store ports.TutorialStore, mws ...Middleware) ports.TutorialStore {
	for i := len(mws) - 1; i >= 0; i-- {
		store = mws[i](store)
	}
	return store
}
