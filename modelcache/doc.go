// Package modelcache provides a generic, thread-safe memoized loader for
// expensive-to-load model handles.
//
// Models take seconds to minutes to load and must be shared across concurrent
// jobs, so the cache guarantees at most one load per distinct key: the first
// caller performs the load while later callers for the same key wait for its
// result, and callers for other keys proceed independently. Loaded entries
// live for the process lifetime and are never evicted.
//
// Failed loads are never memoized. The key is removed before the error is
// delivered, so the next call retries the load; this allows recovery (say,
// after installing a missing backend dependency) without a process restart.
//
//	cache := modelcache.New(func(ctx context.Context, name string) (*Model, error) {
//		return loadModel(ctx, name)
//	})
//	model, err := cache.GetOrLoad(ctx, "small.en")
package modelcache
