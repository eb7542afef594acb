package cache

import "context"

// Fetch returns the cached value for key or calls load and caches its result.
// A failing cache never fails the read; observe sees hit, miss or error.
func Fetch[T any](ctx context.Context, c Cache, key string, observe func(key, result string), load func(context.Context) (T, error)) (T, error) {
	if observe == nil {
		observe = func(string, string) {}
	}

	var cached T

	ok, err := c.Get(ctx, key, &cached)

	switch {
	case err != nil:
		observe(key, "error")
	case ok:
		observe(key, "hit")
		return cached, nil
	default:
		observe(key, "miss")
	}

	v, err := load(ctx)
	if err != nil {
		var zero T
		return zero, err
	}

	// best effort, the next read will try again
	_ = c.Set(ctx, key, v)

	return v, nil
}
