// Package tagging is the application layer around the annotation
// pipeline: it acquires the external-service connections for the
// duration of one dataset pass, guarantees their release on every exit
// path, and optionally persists the produced annotations.
package tagging

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ashishbaghudana/relna/internal/annotation"
	"github.com/ashishbaghudana/relna/internal/domain/corpus"
	"github.com/ashishbaghudana/relna/internal/infrastructure/monitoring/logging"
	"github.com/ashishbaghudana/relna/pkg/errors"
)

// ScopedResource is a connection acquired for one dataset pass and
// released unconditionally when the pass ends, error or not.
type ScopedResource interface {
	Open(ctx context.Context) error
	Close() error
}

// Run describes one completed tagging pass.
type Run struct {
	ID               string
	StartedAt        time.Time
	CompletedAt      time.Time
	Documents        int
	Entities         int
	Gold             bool
	UseNormalization bool
}

// AnnotationRecord is the persisted form of one produced entity.
type AnnotationRecord struct {
	RunID        string
	DocumentID   string
	PartIndex    int
	Offset       int
	Text         string
	Category     string
	Confidence   float64
	PrimaryID    string
	SecondaryIDs []string
	Gold         bool
}

// Repository persists tagging runs and their annotations.
type Repository interface {
	SaveRun(ctx context.Context, run *Run, records []*AnnotationRecord) error
}

// Service orchestrates dataset-level tagging passes.
type Service struct {
	tagger    *annotation.Tagger
	resources []ScopedResource
	repo      Repository
	logger    logging.Logger
}

// ServiceOption customises service construction.
type ServiceOption func(*Service)

// WithResources registers the scoped connections opened around each
// pass, in open order.
func WithResources(resources ...ScopedResource) ServiceOption {
	return func(s *Service) { s.resources = append(s.resources, resources...) }
}

// WithRepository enables annotation persistence.
func WithRepository(repo Repository) ServiceOption {
	return func(s *Service) { s.repo = repo }
}

// WithServiceLogger overrides the no-op default logger.
func WithServiceLogger(l logging.Logger) ServiceOption {
	return func(s *Service) { s.logger = l.Named("tagging") }
}

// NewService builds a Service around a constructed tagger.
func NewService(tagger *annotation.Tagger, opts ...ServiceOption) (*Service, error) {
	if tagger == nil {
		return nil, errors.NewInvalidInputError("tagger is required")
	}
	s := &Service{
		tagger: tagger,
		logger: logging.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// partCursor remembers how many annotations each part held before the
// pass so the pass's own output can be identified afterwards.
type partCursor struct {
	part      *corpus.Part
	docID     string
	partIndex int
	gold      int
	predicted int
}

// Run executes one tagging pass over the dataset. All registered scoped
// resources are opened before the first document and closed on every
// exit path. When a repository is configured, the annotations produced
// by this pass are persisted under a fresh run id.
func (s *Service) Run(ctx context.Context, ds *corpus.Dataset, gold, useNormalization bool) (*Run, error) {
	run := &Run{
		ID:               uuid.New().String(),
		StartedAt:        time.Now(),
		Documents:        len(ds.Documents),
		Gold:             gold,
		UseNormalization: useNormalization,
	}
	s.logger.Info("tagging pass starting",
		logging.String("run_id", run.ID),
		logging.Int("documents", run.Documents),
		logging.Bool("gold", gold),
		logging.Bool("use_normalization", useNormalization))

	release, err := s.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	cursors := snapshotCursors(ds)

	if err := s.tagger.Tag(ctx, ds, gold, useNormalization); err != nil {
		return nil, err
	}
	run.CompletedAt = time.Now()

	records := collectRecords(run, cursors)
	run.Entities = len(records)

	if s.repo != nil {
		if err := s.repo.SaveRun(ctx, run, records); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "persisting run "+run.ID)
		}
	}

	s.logger.Info("tagging pass completed",
		logging.String("run_id", run.ID),
		logging.Int("entities", run.Entities),
		logging.Duration("elapsed", run.CompletedAt.Sub(run.StartedAt)))
	return run, nil
}

// acquire opens every registered resource, closing the already-opened
// ones when a later open fails. The returned release function closes all
// resources and is safe to defer unconditionally.
func (s *Service) acquire(ctx context.Context) (func(), error) {
	opened := make([]ScopedResource, 0, len(s.resources))
	release := func() {
		for i := len(opened) - 1; i >= 0; i-- {
			if err := opened[i].Close(); err != nil {
				s.logger.Warn("resource close failed", logging.Err(err))
			}
		}
	}

	for _, r := range s.resources {
		if err := r.Open(ctx); err != nil {
			release()
			return nil, errors.Wrap(err, errors.ErrCodeExternalService, "opening scoped resource")
		}
		opened = append(opened, r)
	}
	return release, nil
}

func snapshotCursors(ds *corpus.Dataset) []partCursor {
	var cursors []partCursor
	for _, id := range ds.DocumentIDs() {
		doc := ds.Documents[id]
		for i, part := range doc.Parts {
			cursors = append(cursors, partCursor{
				part:      part,
				docID:     id,
				partIndex: i,
				gold:      len(part.Annotations),
				predicted: len(part.PredictedAnnotations),
			})
		}
	}
	return cursors
}

// collectRecords turns the entities appended since the snapshot into
// persistence records.
func collectRecords(run *Run, cursors []partCursor) []*AnnotationRecord {
	var records []*AnnotationRecord
	for _, c := range cursors {
		for _, e := range c.part.Annotations[c.gold:] {
			records = append(records, toRecord(run.ID, c, e, true))
		}
		for _, e := range c.part.PredictedAnnotations[c.predicted:] {
			records = append(records, toRecord(run.ID, c, e, false))
		}
	}
	return records
}

func toRecord(runID string, c partCursor, e *corpus.Entity, gold bool) *AnnotationRecord {
	return &AnnotationRecord{
		RunID:        runID,
		DocumentID:   c.docID,
		PartIndex:    c.partIndex,
		Offset:       e.Offset,
		Text:         e.Text,
		Category:     string(e.Category),
		Confidence:   e.Confidence,
		PrimaryID:    e.Normalization.PrimaryID,
		SecondaryIDs: e.Normalization.SecondaryIDs,
		Gold:         gold,
	}
}
