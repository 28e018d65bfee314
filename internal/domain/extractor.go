package domain

import (
	"context"
	"io"
)

// DocumentExtractor turns an uploaded document into plain text
type DocumentExtractor interface {
	// Extract reads r to the end and returns its text. The extension of
	// filename selects the format.
	Extract(ctx context.Context, r io.Reader, filename string) (string, error)
}
