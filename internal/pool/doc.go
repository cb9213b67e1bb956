// Package pool implements a bounded, elastic goroutine pool.
//
// A Pool runs a single handler function over submitted items with at most
// Config.Size handlers executing at once. Workers are started lazily as work
// arrives, torn down after Config.IdleTimeout without work, and started again
// when new work shows up. Shutdown is terminal.
//
//	p := pool.New(pool.Config{Size: 4, IdleTimeout: 5 * time.Second}, handle, onPanic)
//	defer p.Shutdown()
//
//	results, err := p.Submit(items) // results[i] belongs to items[i]
//
// A handler is expected to turn its own failures into values of R. Submit
// only returns an error for infrastructure faults, currently ErrClosed.
package pool
