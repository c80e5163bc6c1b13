package assistant

import (
	"errors"
	"fmt"
)

var (
	ErrMissingCredential   = errors.New("credential is required")
	ErrNoActiveDocument    = errors.New("no document loaded")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrEmptyFileName       = errors.New("file name is empty")
	ErrUnknownMode         = errors.New("unknown processing mode")
	ErrEmptyQuestion       = errors.New("question is empty")
)

// ConstructionError reports a collaborator that could not be built. The
// handle stays unset so the next call retries construction.
type ConstructionError struct {
	Collaborator string
	Err          error
}

func (e *ConstructionError) Error() string {
	return fmt.Sprintf("failed to load %s: %v", e.Collaborator, e.Err)
}

func (e *ConstructionError) Unwrap() error {
	return e.Err
}
