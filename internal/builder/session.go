package builder

import (
	"context"
	"strings"

	"github.com/goliatone/go-site-builder/internal/document"
	"github.com/goliatone/go-site-builder/internal/logging"
	"github.com/goliatone/go-site-builder/internal/normalizer"
	"github.com/goliatone/go-site-builder/internal/schema"
	"github.com/goliatone/go-site-builder/internal/tree"
	"github.com/goliatone/go-site-builder/pkg/interfaces"
)

// State tracks where a session is in its lifecycle.
type State string

const (
	StateEmpty      State = "empty"
	StateLoaded     State = "loaded"
	StateEditing    State = "editing"
	StateValidating State = "validating"
	StateCommitted  State = "committed"
)

// Committer persists a normalised document and returns the stored copy.
type Committer interface {
	Commit(ctx context.Context, doc document.Document) (*document.Document, error)
}

// CommitterFunc adapts a function into a Committer.
type CommitterFunc func(ctx context.Context, doc document.Document) (*document.Document, error)

func (fn CommitterFunc) Commit(ctx context.Context, doc document.Document) (*document.Document, error) {
	return fn(ctx, doc)
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the session logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithStrictCommit refuses to commit documents that still carry validation issues.
func WithStrictCommit(strict bool) Option {
	return func(s *Session) {
		s.strict = strict
	}
}

// Session owns one document while an operator edits it. Every operation works on a copy and
// swaps it in only after the copy normalises cleanly, so a rejected operation leaves the
// document untouched. A Session is not safe for concurrent use.
type Session struct {
	normalizer *normalizer.Normalizer
	logger     interfaces.Logger
	strict     bool

	state   State
	doc     document.Document
	table   *schema.Table
	issues  schema.ValidationErrors
	renamed []normalizer.Rename
	issued  map[string]struct{}
}

// NewSession creates an empty session.
func NewSession(n *normalizer.Normalizer, opts ...Option) *Session {
	if n == nil {
		n = normalizer.New()
	}
	s := &Session{
		normalizer: n,
		logger:     logging.NoOp(),
		state:      StateEmpty,
		issued:     map[string]struct{}{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	return s.state
}

// Document returns a snapshot of the working document.
func (s *Session) Document() document.Document {
	return s.doc.Clone()
}

// Issues returns the validation issues of the working document.
func (s *Session) Issues() schema.ValidationErrors {
	return append(schema.ValidationErrors(nil), s.issues...)
}

// Renamed returns the name rewrites applied by the last normalisation.
func (s *Session) Renamed() []normalizer.Rename {
	return append([]normalizer.Rename(nil), s.renamed...)
}

// Start loads an empty document of the given type.
func (s *Session) Start(docType document.Type, documentID string) error {
	return s.Load(document.Document{ID: documentID, Type: docType})
}

// Load normalises doc and makes it the working document. Structurally broken documents are
// refused and the session keeps its previous state.
func (s *Session) Load(doc document.Document) error {
	if s.state == StateCommitted {
		return ErrSessionCommitted
	}
	table, err := s.normalizer.Table(doc.Type)
	if err != nil {
		return err
	}
	result, err := s.normalizer.Normalize(doc)
	if err != nil {
		s.logger.Warn("builder.load.rejected", "document_id", doc.ID, "error", err)
		return err
	}
	s.table = table
	s.issued = map[string]struct{}{}
	s.apply(result)
	s.state = StateLoaded
	s.logger.Debug("builder.load", "document_id", result.Document.ID, "blocks", len(result.Document.Blocks))
	return nil
}

// Validate re-runs normalisation and returns the current issues.
func (s *Session) Validate() (schema.ValidationErrors, error) {
	if err := s.editable(); err != nil {
		return nil, err
	}
	result, err := s.normalizer.Normalize(s.doc)
	if err != nil {
		return nil, err
	}
	s.apply(result)
	s.state = StateValidating
	return s.Issues(), nil
}

// Commit normalises the working document and hands it to committer. On success the session
// becomes read only; on failure it returns to editing.
func (s *Session) Commit(ctx context.Context, committer Committer) (*document.Document, error) {
	if err := s.editable(); err != nil {
		return nil, err
	}
	if committer == nil {
		return nil, ErrCommitterRequired
	}
	s.state = StateValidating
	result, err := s.normalizer.Normalize(s.doc)
	if err != nil {
		s.state = StateEditing
		return nil, err
	}
	if s.strict && len(result.Issues) > 0 {
		s.state = StateEditing
		return nil, &OperationError{Op: "commit", Issues: result.Issues, Err: ErrValidationFailed}
	}

	logger := logging.WithDocumentContext(s.logger, result.Document.ID, string(result.Document.Type), "commit")
	saved, err := committer.Commit(ctx, result.Document)
	if err != nil {
		s.state = StateEditing
		logger.Error("builder.commit.failed", "error", err)
		return nil, err
	}
	if saved == nil {
		saved = &result.Document
	}
	s.doc = saved.Clone()
	s.issues = result.Issues
	s.state = StateCommitted
	logger.Info("builder.commit", "version", saved.Version)
	out := saved.Clone()
	return &out, nil
}

func (s *Session) apply(result *normalizer.Result) {
	s.doc = result.Document
	s.issues = result.Issues
	s.renamed = result.Renamed
	for _, block := range s.doc.Blocks {
		s.issued[block.ID] = struct{}{}
	}
}

func (s *Session) editable() error {
	switch s.state {
	case StateEmpty:
		return ErrSessionEmpty
	case StateCommitted:
		return ErrSessionCommitted
	default:
		return nil
	}
}

// edit runs fn against a copy of the working document and swaps the copy in when the result
// is structurally sound.
func (s *Session) edit(op string, fn func(forest *tree.Forest, doc *document.Document) error) error {
	if err := s.editable(); err != nil {
		return err
	}
	working := s.doc.Clone()
	forest, err := tree.Build(working.Blocks)
	if err != nil {
		return opError(op, "", err)
	}
	if err := fn(forest, &working); err != nil {
		s.logger.Debug("builder.op.rejected", "op", op, "error", err)
		return err
	}
	working.Blocks = forest.Flatten()
	if cycles := tree.CheckCycles(working.Blocks); len(cycles) > 0 {
		return opError(op, cycles[0].BlockID, &tree.StructureError{Issues: cycles})
	}
	result, err := s.normalizer.Normalize(working)
	if err != nil {
		return opError(op, "", err)
	}
	s.apply(result)
	s.state = StateEditing
	return nil
}

func (s *Session) newID(forest *tree.Forest) (string, error) {
	return s.normalizer.NewBlockID(func(id string) bool {
		if _, ok := s.issued[id]; ok {
			return true
		}
		return forest.Find(id) != nil
	})
}

func (s *Session) lookup(op string, forest *tree.Forest, id string) (*tree.Node, error) {
	node := forest.Find(strings.TrimSpace(id))
	if node == nil {
		return nil, opError(op, id, ErrBlockNotFound)
	}
	return node, nil
}
