// Package corpus implements the document model shared by the relna
// annotation pipeline and feature generators: datasets of documents split
// into parts, with gold and predicted entity annotations. All invariant
// enforcement for annotations lives here; acquisition of mentions and
// cross-reference data is handled by the annotation and infrastructure
// layers.
package corpus

import (
	"fmt"

	"github.com/ashishbaghudana/relna/pkg/errors"
)

// EntityCategory classifies an annotated entity.
type EntityCategory string

const (
	// CategoryProtein is the default category for a recognized gene or
	// protein mention.
	CategoryProtein EntityCategory = "protein"

	// CategoryTranscriptionFactor marks a protein whose cross-referenced
	// ontology terms include a target term.
	CategoryTranscriptionFactor EntityCategory = "transcription_factor"
)

// IdentifierBundle is the normalization record attached to an Entity.
// PrimaryID is always present; SecondaryIDs is nil unless the
// identifier-normalization stage produced a mapping for the primary id.
type IdentifierBundle struct {
	PrimaryID    string   `json:"primary_id"`
	SecondaryIDs []string `json:"secondary_ids,omitempty"`
}

// HasSecondaryIDs reports whether the normalization stage succeeded for
// this bundle's primary id.
func (b IdentifierBundle) HasSecondaryIDs() bool {
	return len(b.SecondaryIDs) > 0
}

// Entity is a single annotation placed on a Part. Entities are immutable
// once appended to an annotation collection.
type Entity struct {
	Category   EntityCategory `json:"category"`
	Offset     int            `json:"offset"`
	Text       string         `json:"text"`
	Confidence float64        `json:"confidence"`

	Normalization  IdentifierBundle `json:"normalization"`
	NormalizedText string           `json:"normalized_text,omitempty"`
}

// End returns the exclusive end offset of the entity within its part.
func (e *Entity) End() int {
	return e.Offset + len(e.Text)
}

// validate enforces the annotation invariants against the owning part:
// the offset window must lie inside the part and confidence must be a
// probability.
func (e *Entity) validate(p *Part) error {
	if e.Offset < 0 || e.Offset >= p.Length() {
		return errors.New(errors.ErrCodeEntityOffsetInvalid,
			fmt.Sprintf("entity offset %d outside part of length %d", e.Offset, p.Length()))
	}
	if e.Confidence < 0 || e.Confidence > 1 {
		return errors.New(errors.ErrCodeValidation,
			fmt.Sprintf("entity confidence %v outside [0,1]", e.Confidence))
	}
	return nil
}
