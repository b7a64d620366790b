package config

import "context"

type pathKey struct{}

// WithPath returns a context that pins the configuration file path,
// bypassing discovery from the working directory.
func WithPath(ctx context.Context, path string) context.Context {
	return context.WithValue(ctx, pathKey{}, path)
}

// PathFromContext returns the pinned configuration file path, if any.
func PathFromContext(ctx context.Context) (string, bool) {
	path, ok := ctx.Value(pathKey{}).(string)
	return path, ok
}
