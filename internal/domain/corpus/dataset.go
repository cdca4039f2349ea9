package corpus

import (
	"encoding/json"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/ashishbaghudana/relna/pkg/errors"
)

// PartSeparator is the single character assumed between consecutive parts
// when a document is viewed as one concatenated text. Document-global
// offsets produced by the gene recognizer account for it.
const PartSeparator = " "

// Part is a contiguous text span within a Document. It owns two ordered
// annotation collections: gold annotations and predicted annotations. The
// text, and therefore the part's length, is fixed once loaded.
type Part struct {
	Text string `json:"text"`

	// Sentences holds the tokenized sentences of the part, populated by
	// the feature layer when relation features are generated. Token
	// offsets are part-local.
	Sentences [][]Token `json:"sentences,omitempty"`

	Annotations          []*Entity `json:"annotations,omitempty"`
	PredictedAnnotations []*Entity `json:"predicted_annotations,omitempty"`
}

// Token is a single token within a sentence. Start is the part-local byte
// offset of the token's first character.
type Token struct {
	Word    string `json:"word"`
	Start   int    `json:"start"`
	IsPunct bool   `json:"is_punct,omitempty"`
}

// End returns the exclusive end offset of the token within its part.
func (t Token) End() int { return t.Start + len(t.Word) }

// Length returns the part's size in bytes of UTF-8 text. Offsets across
// the pipeline are byte offsets; for the ASCII corpora relna processes
// these coincide with character offsets.
func (p *Part) Length() int {
	return len(p.Text)
}

// AddAnnotation appends e to the gold collection when gold is true,
// otherwise to the predicted collection, after validating the annotation
// invariants. An entity is owned by exactly one collection; the caller
// must not append the same Entity twice.
func (p *Part) AddAnnotation(e *Entity, gold bool) error {
	if err := e.validate(p); err != nil {
		return err
	}
	if gold {
		p.Annotations = append(p.Annotations, e)
	} else {
		p.PredictedAnnotations = append(p.PredictedAnnotations, e)
	}
	return nil
}

// EntitiesInSentence returns the entities of the given category whose
// offset falls inside sentence si. Both annotation collections are
// consulted, gold first.
func (p *Part) EntitiesInSentence(si int, category EntityCategory) []*Entity {
	if si < 0 || si >= len(p.Sentences) {
		return nil
	}
	sent := p.Sentences[si]
	if len(sent) == 0 {
		return nil
	}
	lo := sent[0].Start
	hi := sent[len(sent)-1].End()

	var out []*Entity
	for _, coll := range [][]*Entity{p.Annotations, p.PredictedAnnotations} {
		for _, e := range coll {
			if e.Category == category && e.Offset >= lo && e.Offset < hi {
				out = append(out, e)
			}
		}
	}
	return out
}

// Document is an ordered sequence of parts identified by a document key.
type Document struct {
	ID    string  `json:"id"`
	Parts []*Part `json:"parts"`
}

// Text returns the document's concatenated text with PartSeparator between
// consecutive parts. It is the text submitted for full-text gene
// recognition, and the coordinate space of document-global offsets.
func (d *Document) Text() string {
	texts := make([]string, len(d.Parts))
	for i, p := range d.Parts {
		texts[i] = p.Text
	}
	return strings.Join(texts, PartSeparator)
}

// PartLengths returns the ordered part lengths used for offset alignment.
func (d *Document) PartLengths() []int {
	lengths := make([]int, len(d.Parts))
	for i, p := range d.Parts {
		lengths[i] = p.Length()
	}
	return lengths
}

// Dataset is a collection of documents keyed by document id.
type Dataset struct {
	Documents map[string]*Document `json:"documents"`
}

// NewDataset returns an empty dataset.
func NewDataset() *Dataset {
	return &Dataset{Documents: make(map[string]*Document)}
}

// Add inserts doc under its id, replacing any existing document with the
// same id.
func (ds *Dataset) Add(doc *Document) {
	if ds.Documents == nil {
		ds.Documents = make(map[string]*Document)
	}
	ds.Documents[doc.ID] = doc
}

// DocumentIDs returns the dataset's document ids in sorted order, giving
// every multi-document pass a deterministic iteration order.
func (ds *Dataset) DocumentIDs() []string {
	ids := make([]string, 0, len(ds.Documents))
	for id := range ds.Documents {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ReadJSON decodes a dataset from r.
func ReadJSON(r io.Reader) (*Dataset, error) {
	ds := NewDataset()
	if err := json.NewDecoder(r).Decode(ds); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeCorpusParseFailed, "failed to decode dataset JSON")
	}
	// Document ids live on the map keys in the JSON form; mirror them onto
	// the documents so both access paths agree.
	for id, doc := range ds.Documents {
		doc.ID = id
	}
	return ds, nil
}

// LoadJSON reads a dataset from the JSON file at path.
func LoadJSON(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeCorpusParseFailed, "failed to open dataset file")
	}
	defer f.Close()
	return ReadJSON(f)
}

// WriteJSON encodes the dataset to w with indentation, suitable for
// inspection of annotated corpora.
func (ds *Dataset) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(ds); err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to encode dataset JSON")
	}
	return nil
}

// SaveJSON writes the dataset to the file at path, truncating any existing
// content.
func (ds *Dataset) SaveJSON(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to create dataset file")
	}
	defer f.Close()
	return ds.WriteJSON(f)
}
