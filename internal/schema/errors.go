package schema

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/goliatone/go-site-builder/internal/document"
)

var (
	ErrUnknownDocumentType = errors.New("schema: unknown document type")
	ErrUnsupportedKind     = errors.New("schema: unsupported block kind")
)

const (
	CodeUnsupportedKind = "kind.unsupported"
	CodeConfigDecode    = "config.decode"
	CodeConfigInvalid   = "config.invalid"
	CodePlacementRoot   = "placement.root_only"
	CodePlacementChild  = "placement.child_only"
	CodeParentNoChild   = "placement.parent_not_container"
)

// ValidationError reports a single field level violation of a block's kind constraints.
type ValidationError struct {
	BlockID string        `json:"blockId,omitempty"`
	Kind    document.Kind `json:"kind"`
	Field   string        `json:"field"`
	Code    string        `json:"code"`
	Message string        `json:"message"`
}

func (e ValidationError) Error() string {
	location := e.Field
	if location == "" {
		location = "config"
	}
	if e.BlockID != "" {
		return fmt.Sprintf("block %s (%s) %s: %s", e.BlockID, e.Kind, location, e.Message)
	}
	return fmt.Sprintf("%s %s: %s", e.Kind, location, e.Message)
}

// ValidationErrors is the error returned when one or more block constraints fail.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "schema: validation failed"
	}
	parts := make([]string, 0, len(e))
	for _, issue := range e {
		parts = append(parts, issue.Error())
	}
	return strings.Join(parts, "; ")
}

// WithBlockID stamps the block id on every issue.
func (e ValidationErrors) WithBlockID(id string) ValidationErrors {
	for i := range e {
		e[i].BlockID = id
	}
	return e
}

// Fields returns the sorted set of fields that failed.
func (e ValidationErrors) Fields() []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(e))
	for _, issue := range e {
		if _, ok := seen[issue.Field]; ok {
			continue
		}
		seen[issue.Field] = struct{}{}
		out = append(out, issue.Field)
	}
	sort.Strings(out)
	return out
}

func issuesFromError(kind document.Kind, prefix string, err error) ValidationErrors {
	if err == nil {
		return nil
	}
	var errs validation.Errors
	if errors.As(err, &errs) {
		keys := make([]string, 0, len(errs))
		for key := range errs {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		var out ValidationErrors
		for _, key := range keys {
			out = append(out, issuesFromError(kind, joinField(prefix, key), errs[key])...)
		}
		return out
	}
	var coded validation.Error
	if errors.As(err, &coded) {
		return ValidationErrors{{
			Kind:    kind,
			Field:   prefix,
			Code:    coded.Code(),
			Message: coded.Message(),
		}}
	}
	return ValidationErrors{{
		Kind:    kind,
		Field:   prefix,
		Code:    CodeConfigInvalid,
		Message: err.Error(),
	}}
}

func joinField(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}
