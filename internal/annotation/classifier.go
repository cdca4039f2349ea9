package annotation

import (
	"github.com/ashishbaghudana/relna/internal/domain/corpus"
)

// classify selects the entity category for one mention. The mention's
// bundle contributes its secondary ids; the union of ontology terms those
// ids resolve to is tested against the target set. A non-empty
// intersection yields the transcription-factor category, anything else the
// default protein category.
//
// A nil terms mapping and secondary ids absent from it are treated as
// resolving to no terms; both are degrade-gracefully paths.
func classify(bundle corpus.IdentifierBundle, terms map[string][]string, targets *TargetTermSet) corpus.EntityCategory {
	if terms == nil || targets == nil {
		return corpus.CategoryProtein
	}
	for _, secondary := range bundle.SecondaryIDs {
		for _, term := range terms[secondary] {
			if targets.Contains(term) {
				return corpus.CategoryTranscriptionFactor
			}
		}
	}
	return corpus.CategoryProtein
}
