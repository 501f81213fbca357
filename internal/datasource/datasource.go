// Package datasource defines where raw dataset bytes come from.
package datasource

import (
	"context"
	"io"
)

// Source opens a dataset for reading. The caller closes the stream.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
}
