package builder

import (
	"errors"
	"fmt"

	"github.com/goliatone/go-site-builder/internal/schema"
)

var (
	ErrSessionEmpty      = errors.New("builder: no document loaded")
	ErrSessionCommitted  = errors.New("builder: session already committed")
	ErrBlockNotFound     = errors.New("builder: block not found")
	ErrUnsupportedKind   = errors.New("builder: kind not available for this document type")
	ErrNotHierarchical   = errors.New("builder: document type does not support nesting")
	ErrInvalidParent     = errors.New("builder: target cannot hold children")
	ErrCyclicReparent    = errors.New("builder: block cannot move under itself or its descendants")
	ErrNameNotSupported  = errors.New("builder: kind does not carry a name")
	ErrValidationFailed  = errors.New("builder: block config is invalid")
	ErrCommitterRequired = errors.New("builder: committer is required")
)

// OperationError describes a rejected edit. The document is left exactly as it was.
type OperationError struct {
	Op      string
	BlockID string
	Issues  schema.ValidationErrors
	Err     error
}

func (e *OperationError) Error() string {
	if e == nil {
		return ""
	}
	msg := fmt.Sprintf("builder: %s", e.Op)
	if e.BlockID != "" {
		msg += fmt.Sprintf(" %s", e.BlockID)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if len(e.Issues) > 0 {
		msg += " (" + e.Issues.Error() + ")"
	}
	return msg
}

func (e *OperationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func opError(op, blockID string, err error) error {
	return &OperationError{Op: op, BlockID: blockID, Err: err}
}
