package annotation

import (
	"github.com/ashishbaghudana/relna/internal/domain/corpus"
)

// buildBundle assembles the normalization record for one mention. When the
// primary→secondary mapping is absent or carries no entry for primaryID,
// the bundle holds only the primary id; that is the tolerated
// partial-failure path, not an error. When an entry exists, every mapped
// secondary id is retained (a primary id may map to several).
func buildBundle(primaryID string, secondary map[string][]string) corpus.IdentifierBundle {
	bundle := corpus.IdentifierBundle{PrimaryID: primaryID}
	if secondary == nil {
		return bundle
	}
	ids, ok := secondary[primaryID]
	if !ok || len(ids) == 0 {
		return bundle
	}
	bundle.SecondaryIDs = append([]string(nil), ids...)
	return bundle
}
