// Package source provides the upstream product catalog collaborators:
// the remote store API client, a Postgres-backed mirror, and a Redis
// read-through cache that can wrap either.
package source

import (
	"context"
	"errors"
	"fmt"

	"catalog-service/internal/models"
)

// Source delivers product and category collections from an upstream
// catalog. Implementations return a *NetworkError for transport,
// timeout and non-success failures.
type Source interface {
	Products(ctx context.Context) ([]models.Product, error)
	ProductsByCategory(ctx context.Context, category string) ([]models.Product, error)
	Categories(ctx context.Context) ([]string, error)
}

// NetworkError is a failed upstream fetch. The catalog engine records
// its message as the user-visible error; it never crosses a command
// boundary as a panic or thrown error.
type NetworkError struct {
	Endpoint string
	Err      error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("store API fetch failed (%s): %v", e.Endpoint, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// IsNetworkError reports whether err is (or wraps) a NetworkError.
func IsNetworkError(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}
