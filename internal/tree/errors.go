package tree

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrDanglingParentReference = errors.New("tree: parent reference does not resolve")
	ErrCyclicParentReference   = errors.New("tree: parent reference creates a cycle")
	ErrForwardReference        = errors.New("tree: parent reference points to a later block")
	ErrDuplicateBlockID        = errors.New("tree: duplicate block id")
	ErrMissingBlockID          = errors.New("tree: block id is required")
)

// ReferenceError pins a structural failure to the block that caused it.
type ReferenceError struct {
	BlockID   string
	Index     int
	ParentRef string
	Err       error
}

func (e *ReferenceError) Error() string {
	if e == nil {
		return ""
	}
	if e.ParentRef == "" {
		return fmt.Sprintf("%v (block %q at %d)", e.Err, e.BlockID, e.Index)
	}
	return fmt.Sprintf("%v (block %q at %d, parent %q)", e.Err, e.BlockID, e.Index, e.ParentRef)
}

func (e *ReferenceError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// StructureError aggregates every structural failure found in a document.
type StructureError struct {
	Issues []*ReferenceError
}

func (e *StructureError) Error() string {
	if e == nil || len(e.Issues) == 0 {
		return "tree: invalid structure"
	}
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		parts = append(parts, issue.Error())
	}
	return strings.Join(parts, "; ")
}

// Unwrap exposes the individual issues so errors.Is matches any of the sentinels.
func (e *StructureError) Unwrap() []error {
	if e == nil {
		return nil
	}
	out := make([]error, 0, len(e.Issues))
	for _, issue := range e.Issues {
		out = append(out, issue)
	}
	return out
}

// IssuesFor returns the issues attached to blockID.
func (e *StructureError) IssuesFor(blockID string) []*ReferenceError {
	if e == nil {
		return nil
	}
	var out []*ReferenceError
	for _, issue := range e.Issues {
		if issue.BlockID == blockID {
			out = append(out, issue)
		}
	}
	return out
}

func asStructureError(issues []*ReferenceError) error {
	if len(issues) == 0 {
		return nil
	}
	return &StructureError{Issues: issues}
}
