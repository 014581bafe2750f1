package document

import (
	"errors"
	"fmt"
)

var (
	// ErrDocumentLoad matches every LoadError.
	ErrDocumentLoad = errors.New("document load failed")

	// ErrUnsupportedFormat is returned for files that are neither PDF nor plain text.
	ErrUnsupportedFormat = errors.New("unsupported document format")

	// ErrEncrypted is returned for password-protected PDFs.
	ErrEncrypted = errors.New("document is encrypted")

	// ErrNotAFile is returned when the path names a directory or other non-regular file.
	ErrNotAFile = errors.New("not a regular file")
)

// LoadError aborts a document load. The reader keeps its previous words.
type LoadError struct {
	// Path is the document that failed to load.
	Path string

	// Op is the stage that failed (stat, open, extract).
	Op string

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *LoadError) Error() string {
	return fmt.Sprintf("document: %s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *LoadError) Unwrap() error {
	return e.Err
}

// Is matches ErrDocumentLoad in addition to the wrapped error chain.
func (e *LoadError) Is(target error) bool {
	return target == ErrDocumentLoad
}

func loadError(path, op string, err error) error {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		return err
	}
	return &LoadError{Path: path, Op: op, Err: err}
}
