package utils

// ContextKey is the key type for values the middlewares attach to a request context.
type ContextKey string
