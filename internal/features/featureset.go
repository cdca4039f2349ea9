// Package features generates sparse relation features over tokenized
// sentences. An Edge is a candidate relation between two entities in one
// sentence; generators attach named features to edges through a shared
// FeatureSet that maps names to stable numeric indices.
package features

import (
	"sort"
	"sync"

	"github.com/ashishbaghudana/relna/internal/domain/corpus"
)

// FeatureSet assigns 1-based numeric indices to feature names. In
// training mode generators add unseen names; in prediction mode unseen
// names are ignored so feature vectors stay aligned with the trained
// model.
type FeatureSet struct {
	mu      sync.RWMutex
	indices map[string]int
}

func NewFeatureSet() *FeatureSet {
	return &FeatureSet{indices: map[string]int{}}
}

// Add returns the index for name, assigning the next free index when the
// name is new.
func (fs *FeatureSet) Add(name string) int {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if idx, ok := fs.indices[name]; ok {
		return idx
	}
	idx := len(fs.indices) + 1
	fs.indices[name] = idx
	return idx
}

// Index returns the index for name, or false when the name is unknown.
func (fs *FeatureSet) Index(name string) (int, bool) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	idx, ok := fs.indices[name]
	return idx, ok
}

// Len returns the number of named features.
func (fs *FeatureSet) Len() int {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	return len(fs.indices)
}

// Names returns all feature names sorted by index.
func (fs *FeatureSet) Names() []string {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	names := make([]string, 0, len(fs.indices))
	for name := range fs.indices {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		return fs.indices[names[i]] < fs.indices[names[j]]
	})
	return names
}

// Edge is a candidate relation between two entities inside one sentence
// of a part. Features holds the sparse feature vector keyed by
// FeatureSet index.
type Edge struct {
	Part       *corpus.Part
	SentenceID int
	E1, E2     *corpus.Entity
	Features   map[int]float64
}

// NewEdge builds an edge with an empty feature vector.
func NewEdge(part *corpus.Part, sentenceID int, e1, e2 *corpus.Entity) *Edge {
	return &Edge{
		Part:       part,
		SentenceID: sentenceID,
		E1:         e1,
		E2:         e2,
		Features:   map[int]float64{},
	}
}

// Sentence returns the edge's token sequence, or nil when the part has
// not been tokenized.
func (e *Edge) Sentence() []corpus.Token {
	if e.SentenceID < 0 || e.SentenceID >= len(e.Part.Sentences) {
		return nil
	}
	return e.Part.Sentences[e.SentenceID]
}

// Generator attaches features to edges.
type Generator interface {
	Generate(edges []*Edge) error
}

// setFeature records a named feature on the edge. Training mode assigns
// new indices; prediction mode drops names the feature set has not seen.
func setFeature(fs *FeatureSet, training bool, edge *Edge, name string, value float64) {
	if training {
		edge.Features[fs.Add(name)] = value
		return
	}
	if idx, ok := fs.Index(name); ok {
		edge.Features[idx] = value
	}
}
