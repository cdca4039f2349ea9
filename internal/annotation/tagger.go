// Package annotation implements the relna cross-reference tagging
// pipeline: gene mentions from an external recognizer are normalized to
// protein identifiers, cross-referenced against ontology-term membership,
// aligned to part-local offsets, and stored as gold or predicted entity
// annotations on the document.
package annotation

import (
	"context"
	"strings"
	"time"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/ashishbaghudana/relna/internal/domain/corpus"
	"github.com/ashishbaghudana/relna/internal/infrastructure/monitoring/logging"
	"github.com/ashishbaghudana/relna/pkg/errors"
)

// GeneMention is a single gene mention produced by the recognizer. Offset
// is document-global, in the coordinate space of Document.Text. Mentions
// live only for the duration of one pipeline run.
type GeneMention struct {
	Offset    int
	Text      string
	PrimaryID string
}

// GeneRecognizer locates gene mentions. Full-text documents are submitted
// as text; abstract-only documents are fetched by their identifier.
type GeneRecognizer interface {
	FetchByText(ctx context.Context, text string) ([]GeneMention, error)
	FetchByDocumentID(ctx context.Context, docID string) ([]GeneMention, error)
}

// IdentifierNormalizer maps primary (gene) identifiers to secondary
// (protein) identifiers. Called at most once per document with the full
// deduplicated id set. Ids absent from the returned mapping simply had no
// normalization; that is not an error.
type IdentifierNormalizer interface {
	Normalize(ctx context.Context, primaryIDs mapset.Set[string]) (map[string][]string, error)
}

// OntologyResolver maps secondary identifiers to the ontology terms they
// are annotated with. Called at most once per document with the full
// deduplicated secondary id set.
type OntologyResolver interface {
	Resolve(ctx context.Context, secondaryIDs mapset.Set[string]) (map[string][]string, error)
}

// RetrievalMode selects how gene mentions are acquired for a document.
type RetrievalMode int

const (
	// RetrieveByID fetches recognizer output stored under the document id.
	RetrieveByID RetrievalMode = iota

	// RetrieveByText submits the document's concatenated text.
	RetrieveByText
)

// RetrievalModeFunc decides the retrieval mode for a document. The default
// implementation is a marker-substring heuristic; injecting a different
// predicate replaces the heuristic without touching the orchestrator.
type RetrievalModeFunc func(doc *corpus.Document) RetrievalMode

// MarkerRetrievalMode returns the default predicate: a document whose
// concatenated text contains marker is assumed to be full text and is
// retrieved by text, everything else by document id.
func MarkerRetrievalMode(marker string) RetrievalModeFunc {
	return func(doc *corpus.Document) RetrievalMode {
		if marker != "" && strings.Contains(doc.Text(), marker) {
			return RetrieveByText
		}
		return RetrieveByID
	}
}

// DefaultFullTextMarker is the substring whose presence marks a document
// as full text rather than abstract-only.
const DefaultFullTextMarker = "Conclusion"

// DefaultConfidence is assigned to every produced entity; the recognizer
// supplies no confidence score of its own.
const DefaultConfidence = 0.5

// Metrics receives pipeline telemetry. The prometheus-backed
// implementation lives in the monitoring layer; a no-op is used when
// nothing is injected.
type Metrics interface {
	ObserveDocument(target, outcome string, elapsed time.Duration)
	ObserveStage(stage string, elapsed time.Duration)
	CountMentions(recognized, dropped int)
	CountEntity(category string)
	CountLookupMiss(stage string)
}

type noopMetrics struct{}

func (noopMetrics) ObserveDocument(string, string, time.Duration) {}
func (noopMetrics) ObserveStage(string, time.Duration)            {}
func (noopMetrics) CountMentions(int, int)                        {}
func (noopMetrics) CountEntity(string)                            {}
func (noopMetrics) CountLookupMiss(string)                        {}

// Stage label values reported to Metrics.
const (
	stageRecognition   = "recognition"
	stageNormalization = "normalization"
	stageOntology      = "ontology"
)

// Tagger drives the end-to-end pipeline per document. All intermediate
// state (mentions, id sets, mappings) is local to a single document run,
// so one Tagger may process documents from several goroutines as long as
// no two runs share a document.
type Tagger struct {
	recognizer GeneRecognizer
	normalizer IdentifierNormalizer
	ontology   OntologyResolver
	targets    *TargetTermSet
	mode       RetrievalModeFunc
	confidence float64
	logger     logging.Logger
	metrics    Metrics
}

// TaggerOption customises Tagger construction.
type TaggerOption func(*Tagger)

// WithLogger injects a structured logger.
func WithLogger(l logging.Logger) TaggerOption {
	return func(t *Tagger) { t.logger = l }
}

// WithMetrics injects a pipeline metrics sink.
func WithMetrics(m Metrics) TaggerOption {
	return func(t *Tagger) { t.metrics = m }
}

// WithRetrievalMode replaces the default marker-substring predicate.
func WithRetrievalMode(f RetrievalModeFunc) TaggerOption {
	return func(t *Tagger) { t.mode = f }
}

// WithConfidence overrides the default entity confidence.
func WithConfidence(c float64) TaggerOption {
	return func(t *Tagger) { t.confidence = c }
}

// NewTagger constructs a Tagger. The recognizer and the target term set
// are required; normalizer and ontology resolver may be nil only when
// normalization is never requested.
func NewTagger(
	recognizer GeneRecognizer,
	normalizer IdentifierNormalizer,
	ontology OntologyResolver,
	targets *TargetTermSet,
	opts ...TaggerOption,
) (*Tagger, error) {
	if recognizer == nil {
		return nil, errors.NewInvalidInputError("gene recognizer is required")
	}
	if targets == nil {
		return nil, errors.NewInvalidInputError("target term set is required")
	}

	t := &Tagger{
		recognizer: recognizer,
		normalizer: normalizer,
		ontology:   ontology,
		targets:    targets,
		mode:       MarkerRetrievalMode(DefaultFullTextMarker),
		confidence: DefaultConfidence,
		logger:     logging.NewNopLogger(),
		metrics:    noopMetrics{},
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// Tag runs the pipeline over every document in the dataset, in document-id
// order. Produced entities are appended to each part's gold annotations
// when writeAsGold is true, otherwise to its predicted annotations. With
// useNormalization false the cross-reference stages are skipped and every
// entity carries a primary-id-only bundle.
//
// The first document whose recognition fails aborts the pass; the returned
// error names the document. Re-running over an unchanged dataset appends a
// second copy of every entity (no cross-run deduplication).
func (t *Tagger) Tag(ctx context.Context, ds *corpus.Dataset, writeAsGold, useNormalization bool) error {
	for _, id := range ds.DocumentIDs() {
		if err := t.TagDocument(ctx, ds.Documents[id], writeAsGold, useNormalization); err != nil {
			return errors.Wrap(err, errors.ErrCodeDocumentTagging, "tagging document "+id)
		}
	}
	return nil
}

// TagDocument runs the pipeline for one document.
func (t *Tagger) TagDocument(ctx context.Context, doc *corpus.Document, writeAsGold, useNormalization bool) error {
	target := "predicted"
	if writeAsGold {
		target = "gold"
	}
	started := time.Now()
	outcome := "error"
	defer func() {
		t.metrics.ObserveDocument(target, outcome, time.Since(started))
	}()

	mentions, err := t.fetchMentions(ctx, doc)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeRecognizerFailure, "gene recognition failed")
	}
	t.logger.Debug("gene mentions fetched",
		logging.String("document", doc.ID),
		logging.Int("mentions", len(mentions)))

	secondary, err := t.normalizeIdentifiers(ctx, mentions, useNormalization)
	if err != nil {
		return err
	}

	terms, err := t.resolveOntologyTerms(ctx, secondary)
	if err != nil {
		return err
	}

	aligner := newOffsetAligner(doc.PartLengths())
	dropped := 0
	for _, mention := range mentions {
		partIdx, local, ok := aligner.align(mention.Offset)
		if !ok {
			// The recognizer may reference material outside the loaded
			// parts; such mentions are skipped, not reported.
			dropped++
			continue
		}

		bundle := buildBundle(mention.PrimaryID, secondary)
		if useNormalization && !bundle.HasSecondaryIDs() {
			t.metrics.CountLookupMiss(stageNormalization)
		}
		if terms != nil && bundle.HasSecondaryIDs() && !anyTermsKnown(bundle, terms) {
			t.metrics.CountLookupMiss(stageOntology)
		}

		entity := &corpus.Entity{
			Category:      classify(bundle, terms, t.targets),
			Offset:        local,
			Text:          mention.Text,
			Confidence:    t.confidence,
			Normalization: bundle,
			// Normalized-text derivation (stemming) is deferred.
			NormalizedText: "",
		}
		if err := doc.Parts[partIdx].AddAnnotation(entity, writeAsGold); err != nil {
			return err
		}
		t.metrics.CountEntity(string(entity.Category))
	}

	t.metrics.CountMentions(len(mentions), dropped)
	if dropped > 0 {
		t.logger.Debug("mentions outside loaded parts dropped",
			logging.String("document", doc.ID),
			logging.Int("dropped", dropped))
	}
	outcome = "ok"
	return nil
}

// anyTermsKnown reports whether at least one of the bundle's secondary
// ids has an ontology-term entry.
func anyTermsKnown(bundle corpus.IdentifierBundle, terms map[string][]string) bool {
	for _, sid := range bundle.SecondaryIDs {
		if len(terms[sid]) > 0 {
			return true
		}
	}
	return false
}

func (t *Tagger) fetchMentions(ctx context.Context, doc *corpus.Document) ([]GeneMention, error) {
	started := time.Now()
	defer func() { t.metrics.ObserveStage(stageRecognition, time.Since(started)) }()

	if t.mode(doc) == RetrieveByText {
		return t.recognizer.FetchByText(ctx, doc.Text())
	}
	return t.recognizer.FetchByDocumentID(ctx, doc.ID)
}

// normalizeIdentifiers performs the single batched primary→secondary call
// for one document. All mentions' primary ids are deduplicated into one
// set so the external service is contacted at most once per document.
func (t *Tagger) normalizeIdentifiers(ctx context.Context, mentions []GeneMention, useNormalization bool) (map[string][]string, error) {
	if !useNormalization || t.normalizer == nil || len(mentions) == 0 {
		return nil, nil
	}

	primary := mapset.NewThreadUnsafeSet[string]()
	for _, m := range mentions {
		if m.PrimaryID != "" {
			primary.Add(m.PrimaryID)
		}
	}
	if primary.Cardinality() == 0 {
		return nil, nil
	}

	started := time.Now()
	mapping, err := t.normalizer.Normalize(ctx, primary)
	t.metrics.ObserveStage(stageNormalization, time.Since(started))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeExternalService, "identifier normalization failed")
	}
	return mapping, nil
}

// resolveOntologyTerms performs the single batched secondary→terms call.
// Skipped entirely when the normalization stage produced no secondary ids.
func (t *Tagger) resolveOntologyTerms(ctx context.Context, secondary map[string][]string) (map[string][]string, error) {
	if t.ontology == nil || len(secondary) == 0 {
		return nil, nil
	}

	ids := mapset.NewThreadUnsafeSet[string]()
	for _, list := range secondary {
		for _, id := range list {
			ids.Add(id)
		}
	}
	if ids.Cardinality() == 0 {
		return nil, nil
	}

	started := time.Now()
	terms, err := t.ontology.Resolve(ctx, ids)
	t.metrics.ObserveStage(stageOntology, time.Since(started))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeExternalService, "ontology term resolution failed")
	}
	return terms, nil
}
