// Package answer provides the sources that stream research answers to the
// server: the Gemini API and an offline simulator.
package answer

import (
	"context"
	"errors"
	"io"
	"strings"
)

// ErrEmptyQuery is returned for blank queries. Its text is shown to users.
var ErrEmptyQuery = errors.New("Query is required")

// maxErrorBodySize caps how much of an error response is read.
const maxErrorBodySize = 4 << 10

// Source streams the answer to a query as text fragments. Stream calls emit
// for every fragment in order and stops at the first emit error.
type Source interface {
	Name() string
	Stream(ctx context.Context, query string, emit func(fragment string) error) error
}

// Collect streams query from src and returns the joined answer.
func Collect(ctx context.Context, src Source, query string) (string, error) {
	var b strings.Builder
	err := src.Stream(ctx, query, func(fragment string) error {
		b.WriteString(fragment)
		return nil
	})
	return b.String(), err
}

// CheckQuery trims query and rejects blank input.
func CheckQuery(query string) (string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return "", ErrEmptyQuery
	}
	return query, nil
}

func readLimitedBody(r io.Reader, maxBytes int64) ([]byte, error) {
	return io.ReadAll(io.LimitReader(r, maxBytes))
}
