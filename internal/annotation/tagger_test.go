package annotation

import (
	"context"
	stderrors "errors"
	"fmt"
	"sort"
	"testing"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/ashishbaghudana/relna/internal/domain/corpus"
	"github.com/ashishbaghudana/relna/pkg/errors"
)

// =========================================================================
// Mocks
// =========================================================================

type mockRecognizer struct {
	byTextFn    func(ctx context.Context, text string) ([]GeneMention, error)
	byIDFn      func(ctx context.Context, docID string) ([]GeneMention, error)
	byTextCalls int
	byIDCalls   int
}

func (m *mockRecognizer) FetchByText(ctx context.Context, text string) ([]GeneMention, error) {
	m.byTextCalls++
	if m.byTextFn != nil {
		return m.byTextFn(ctx, text)
	}
	return nil, nil
}

func (m *mockRecognizer) FetchByDocumentID(ctx context.Context, docID string) ([]GeneMention, error) {
	m.byIDCalls++
	if m.byIDFn != nil {
		return m.byIDFn(ctx, docID)
	}
	return nil, nil
}

type mockNormalizer struct {
	fn      func(ctx context.Context, ids mapset.Set[string]) (map[string][]string, error)
	calls   int
	lastIDs []string
}

func (m *mockNormalizer) Normalize(ctx context.Context, ids mapset.Set[string]) (map[string][]string, error) {
	m.calls++
	m.lastIDs = ids.ToSlice()
	sort.Strings(m.lastIDs)
	if m.fn != nil {
		return m.fn(ctx, ids)
	}
	return map[string][]string{}, nil
}

type mockOntology struct {
	fn      func(ctx context.Context, ids mapset.Set[string]) (map[string][]string, error)
	calls   int
	lastIDs []string
}

func (m *mockOntology) Resolve(ctx context.Context, ids mapset.Set[string]) (map[string][]string, error) {
	m.calls++
	m.lastIDs = ids.ToSlice()
	sort.Strings(m.lastIDs)
	if m.fn != nil {
		return m.fn(ctx, ids)
	}
	return map[string][]string{}, nil
}

func twoPartDocument() *corpus.Document {
	return &corpus.Document{
		ID: "PMC1",
		Parts: []*Part{
			{Text: "AAAA"},
			{Text: "Conclusion BBBB"},
		},
	}
}

// Part alias keeps the fixture readable.
type Part = corpus.Part

func newTestTagger(t *testing.T, rec GeneRecognizer, norm IdentifierNormalizer, ont OntologyResolver, terms ...string) *Tagger {
	t.Helper()
	tagger, err := NewTagger(rec, norm, ont, NewTargetTermSet(terms...))
	if err != nil {
		t.Fatalf("NewTagger: %v", err)
	}
	return tagger
}

// =========================================================================
// Orchestration
// =========================================================================

func TestTargetTermHitReclassifiesMention(t *testing.T) {
	// Mention at global offset 11 lands in part 1 at local offset 6;
	// G1 → P1 → GO:TARGET which is in the target set.
	rec := &mockRecognizer{byTextFn: func(_ context.Context, _ string) ([]GeneMention, error) {
		return []GeneMention{{Offset: 11, Text: "BBBB", PrimaryID: "G1"}}, nil
	}}
	norm := &mockNormalizer{fn: func(_ context.Context, _ mapset.Set[string]) (map[string][]string, error) {
		return map[string][]string{"G1": {"P1"}}, nil
	}}
	ont := &mockOntology{fn: func(_ context.Context, _ mapset.Set[string]) (map[string][]string, error) {
		return map[string][]string{"P1": {"GO:TARGET"}}, nil
	}}
	tagger := newTestTagger(t, rec, norm, ont, "GO:TARGET")

	doc := twoPartDocument()
	if err := tagger.TagDocument(context.Background(), doc, false, true); err != nil {
		t.Fatalf("TagDocument: %v", err)
	}

	if len(doc.Parts[0].PredictedAnnotations) != 0 {
		t.Error("part 0 should hold no entities")
	}
	anns := doc.Parts[1].PredictedAnnotations
	if len(anns) != 1 {
		t.Fatalf("part 1 has %d entities, want 1", len(anns))
	}
	e := anns[0]
	if e.Offset != 6 {
		t.Errorf("local offset = %d, want 6", e.Offset)
	}
	if e.Category != corpus.CategoryTranscriptionFactor {
		t.Errorf("category = %q, want transcription factor", e.Category)
	}
	if e.Confidence != 0.5 {
		t.Errorf("confidence = %v, want 0.5", e.Confidence)
	}
	if e.NormalizedText != "" {
		t.Errorf("normalized text = %q, want empty", e.NormalizedText)
	}
	if e.Normalization.PrimaryID != "G1" || len(e.Normalization.SecondaryIDs) != 1 || e.Normalization.SecondaryIDs[0] != "P1" {
		t.Errorf("bundle = %+v", e.Normalization)
	}
}

func TestOntologyMissKeepsDefaultCategoryAndBundle(t *testing.T) {
	// Same as above but the ontology service returns no entry for P1: the
	// entity is still created, default category, secondary ids retained.
	rec := &mockRecognizer{byTextFn: func(_ context.Context, _ string) ([]GeneMention, error) {
		return []GeneMention{{Offset: 11, Text: "BBBB", PrimaryID: "G1"}}, nil
	}}
	norm := &mockNormalizer{fn: func(_ context.Context, _ mapset.Set[string]) (map[string][]string, error) {
		return map[string][]string{"G1": {"P1"}}, nil
	}}
	ont := &mockOntology{}
	tagger := newTestTagger(t, rec, norm, ont, "GO:TARGET")

	doc := twoPartDocument()
	if err := tagger.TagDocument(context.Background(), doc, false, true); err != nil {
		t.Fatalf("TagDocument: %v", err)
	}

	anns := doc.Parts[1].PredictedAnnotations
	if len(anns) != 1 {
		t.Fatalf("got %d entities, want 1", len(anns))
	}
	if anns[0].Category != corpus.CategoryProtein {
		t.Errorf("category = %q, want protein", anns[0].Category)
	}
	if got := anns[0].Normalization.SecondaryIDs; len(got) != 1 || got[0] != "P1" {
		t.Errorf("secondary ids = %v, want [P1]", got)
	}
}

func TestNormalizationMissYieldsPrimaryOnlyBundle(t *testing.T) {
	rec := &mockRecognizer{byTextFn: func(_ context.Context, _ string) ([]GeneMention, error) {
		return []GeneMention{{Offset: 0, Text: "AAAA", PrimaryID: "G9"}}, nil
	}}
	norm := &mockNormalizer{} // empty mapping: no entry for G9
	ont := &mockOntology{}
	tagger := newTestTagger(t, rec, norm, ont, "GO:TARGET")

	doc := twoPartDocument()
	if err := tagger.TagDocument(context.Background(), doc, false, true); err != nil {
		t.Fatalf("TagDocument: %v", err)
	}

	anns := doc.Parts[0].PredictedAnnotations
	if len(anns) != 1 {
		t.Fatalf("got %d entities, want 1", len(anns))
	}
	if anns[0].Normalization.HasSecondaryIDs() {
		t.Errorf("bundle should carry only the primary id, got %+v", anns[0].Normalization)
	}
	if anns[0].Category != corpus.CategoryProtein {
		t.Errorf("category = %q, want protein", anns[0].Category)
	}
	if ont.calls != 0 {
		t.Errorf("ontology called %d times; empty secondary set must skip the call", ont.calls)
	}
}

func TestUnalignableMentionIsSilentlyDropped(t *testing.T) {
	rec := &mockRecognizer{byTextFn: func(_ context.Context, _ string) ([]GeneMention, error) {
		return []GeneMention{{Offset: 1000, Text: "XXXX", PrimaryID: "G1"}}, nil
	}}
	tagger := newTestTagger(t, rec, &mockNormalizer{}, &mockOntology{}, "GO:TARGET")

	doc := twoPartDocument()
	if err := tagger.TagDocument(context.Background(), doc, false, true); err != nil {
		t.Fatalf("TagDocument: %v", err)
	}
	for i, p := range doc.Parts {
		if len(p.PredictedAnnotations) != 0 || len(p.Annotations) != 0 {
			t.Errorf("part %d unexpectedly annotated", i)
		}
	}
}

func TestEmptyDocumentProducesNothing(t *testing.T) {
	rec := &mockRecognizer{byIDFn: func(_ context.Context, _ string) ([]GeneMention, error) {
		return []GeneMention{{Offset: 0, Text: "X", PrimaryID: "G1"}}, nil
	}}
	norm := &mockNormalizer{}
	tagger := newTestTagger(t, rec, norm, &mockOntology{}, "GO:TARGET")

	doc := &corpus.Document{ID: "EMPTY"}
	if err := tagger.TagDocument(context.Background(), doc, false, false); err != nil {
		t.Fatalf("TagDocument: %v", err)
	}
	if len(doc.Parts) != 0 {
		t.Fatal("fixture error")
	}
	if norm.calls != 0 {
		t.Error("normalization must not run when it is not requested")
	}
}

func TestRetrievalModeHeuristic(t *testing.T) {
	rec := &mockRecognizer{}
	tagger := newTestTagger(t, rec, nil, nil, "GO:TARGET")

	// "Conclusion" appears in part 1 → full-text retrieval.
	if err := tagger.TagDocument(context.Background(), twoPartDocument(), false, false); err != nil {
		t.Fatal(err)
	}
	if rec.byTextCalls != 1 || rec.byIDCalls != 0 {
		t.Errorf("byText=%d byID=%d, want 1 and 0", rec.byTextCalls, rec.byIDCalls)
	}

	// Abstract-only document → retrieval by id.
	abstract := &corpus.Document{ID: "PMID42", Parts: []*Part{{Text: "short abstract"}}}
	if err := tagger.TagDocument(context.Background(), abstract, false, false); err != nil {
		t.Fatal(err)
	}
	if rec.byIDCalls != 1 {
		t.Errorf("byID=%d, want 1", rec.byIDCalls)
	}
}

func TestInjectedRetrievalModeReplacesHeuristic(t *testing.T) {
	rec := &mockRecognizer{}
	tagger, err := NewTagger(rec, nil, nil, NewTargetTermSet("GO:TARGET"),
		WithRetrievalMode(func(_ *corpus.Document) RetrievalMode { return RetrieveByID }))
	if err != nil {
		t.Fatal(err)
	}
	// Contains "Conclusion" but the injected predicate forces by-id.
	if err := tagger.TagDocument(context.Background(), twoPartDocument(), false, false); err != nil {
		t.Fatal(err)
	}
	if rec.byTextCalls != 0 || rec.byIDCalls != 1 {
		t.Errorf("byText=%d byID=%d, want 0 and 1", rec.byTextCalls, rec.byIDCalls)
	}
}

func TestCrossReferenceCallsAreBatchedOncePerDocument(t *testing.T) {
	// Three mentions over two distinct primary ids: the normalizer must be
	// called exactly once with the deduplicated set, the ontology resolver
	// exactly once with the deduplicated secondary ids.
	rec := &mockRecognizer{byTextFn: func(_ context.Context, _ string) ([]GeneMention, error) {
		return []GeneMention{
			{Offset: 0, Text: "AAAA", PrimaryID: "G1"},
			{Offset: 5, Text: "Conclusion", PrimaryID: "G2"},
			{Offset: 16, Text: "BBBB", PrimaryID: "G1"},
		}, nil
	}}
	norm := &mockNormalizer{fn: func(_ context.Context, _ mapset.Set[string]) (map[string][]string, error) {
		return map[string][]string{"G1": {"P1", "P2"}, "G2": {"P2"}}, nil
	}}
	ont := &mockOntology{}
	tagger := newTestTagger(t, rec, norm, ont, "GO:TARGET")

	if err := tagger.TagDocument(context.Background(), twoPartDocument(), false, true); err != nil {
		t.Fatal(err)
	}
	if norm.calls != 1 {
		t.Errorf("normalizer called %d times, want 1", norm.calls)
	}
	if fmt.Sprint(norm.lastIDs) != "[G1 G2]" {
		t.Errorf("normalizer ids = %v, want [G1 G2]", norm.lastIDs)
	}
	if ont.calls != 1 {
		t.Errorf("ontology called %d times, want 1", ont.calls)
	}
	if fmt.Sprint(ont.lastIDs) != "[P1 P2]" {
		t.Errorf("ontology ids = %v, want [P1 P2]", ont.lastIDs)
	}
}

func TestGoldFlagSelectsCollection(t *testing.T) {
	rec := &mockRecognizer{byTextFn: func(_ context.Context, _ string) ([]GeneMention, error) {
		return []GeneMention{{Offset: 0, Text: "AAAA", PrimaryID: "G1"}}, nil
	}}
	tagger := newTestTagger(t, rec, nil, nil, "GO:TARGET")

	doc := twoPartDocument()
	if err := tagger.TagDocument(context.Background(), doc, true, false); err != nil {
		t.Fatal(err)
	}
	if len(doc.Parts[0].Annotations) != 1 || len(doc.Parts[0].PredictedAnnotations) != 0 {
		t.Errorf("gold=%d predicted=%d, want 1 and 0",
			len(doc.Parts[0].Annotations), len(doc.Parts[0].PredictedAnnotations))
	}
}

func TestSecondRunDuplicatesPredictedEntities(t *testing.T) {
	rec := &mockRecognizer{byTextFn: func(_ context.Context, _ string) ([]GeneMention, error) {
		return []GeneMention{{Offset: 0, Text: "AAAA", PrimaryID: "G1"}}, nil
	}}
	tagger := newTestTagger(t, rec, nil, nil, "GO:TARGET")

	ds := corpus.NewDataset()
	ds.Add(twoPartDocument())

	for i := 0; i < 2; i++ {
		if err := tagger.Tag(context.Background(), ds, false, false); err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
	}
	// No cross-run deduplication: the count doubles.
	if got := len(ds.Documents["PMC1"].Parts[0].PredictedAnnotations); got != 2 {
		t.Errorf("predicted entities after two runs = %d, want 2", got)
	}
}

func TestRecognizerFailureIsFatalAndNamesDocument(t *testing.T) {
	rec := &mockRecognizer{byTextFn: func(_ context.Context, _ string) ([]GeneMention, error) {
		return nil, fmt.Errorf("gnormplus unreachable")
	}}
	tagger := newTestTagger(t, rec, nil, nil, "GO:TARGET")

	ds := corpus.NewDataset()
	ds.Add(twoPartDocument())

	err := tagger.Tag(context.Background(), ds, false, false)
	if !errors.IsCode(err, errors.ErrCodeRecognizerFailure) {
		t.Errorf("err = %v, want ErrCodeRecognizerFailure in chain", err)
	}
	if !errors.IsCode(err, errors.ErrCodeDocumentTagging) {
		t.Errorf("err = %v, want ErrCodeDocumentTagging wrapper", err)
	}
	var ae *errors.AppError
	if !stderrors.As(err, &ae) || ae.Message != "tagging document PMC1" {
		t.Errorf("outer error should name the document, got %v", err)
	}
}

func TestNormalizerFailurePropagates(t *testing.T) {
	rec := &mockRecognizer{byTextFn: func(_ context.Context, _ string) ([]GeneMention, error) {
		return []GeneMention{{Offset: 0, Text: "AAAA", PrimaryID: "G1"}}, nil
	}}
	norm := &mockNormalizer{fn: func(_ context.Context, _ mapset.Set[string]) (map[string][]string, error) {
		return nil, fmt.Errorf("uniprot timeout")
	}}
	tagger := newTestTagger(t, rec, norm, &mockOntology{}, "GO:TARGET")

	err := tagger.TagDocument(context.Background(), twoPartDocument(), false, true)
	if !errors.IsCode(err, errors.ErrCodeExternalService) {
		t.Errorf("err = %v, want ErrCodeExternalService", err)
	}
}

func TestNewTaggerRequiresRecognizerAndTerms(t *testing.T) {
	if _, err := NewTagger(nil, nil, nil, NewTargetTermSet()); err == nil {
		t.Error("nil recognizer must be rejected")
	}
	if _, err := NewTagger(&mockRecognizer{}, nil, nil, nil); err == nil {
		t.Error("nil term set must be rejected")
	}
}
