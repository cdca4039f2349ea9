package annotation

import (
	"bufio"
	"os"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/ashishbaghudana/relna/pkg/errors"
)

// TargetTermSet is the set of ontology-term identifiers whose membership
// re-classifies a mention. Loaded once at tagger construction and
// read-only thereafter, so it is safe to share across concurrent document
// runs.
type TargetTermSet struct {
	terms mapset.Set[string]
}

// NewTargetTermSet builds a term set from explicit identifiers. Intended
// for tests and embedded term lists.
func NewTargetTermSet(terms ...string) *TargetTermSet {
	s := mapset.NewThreadUnsafeSet[string]()
	for _, t := range terms {
		if t = strings.TrimSpace(t); t != "" {
			s.Add(t)
		}
	}
	return &TargetTermSet{terms: s}
}

// LoadTargetTermSet reads a newline-delimited term file. Blank lines and
// surrounding whitespace are ignored. A missing or unreadable file is a
// configuration error, fatal before any document is processed.
func LoadTargetTermSet(path string) (*TargetTermSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeTermListUnreadable, "cannot open target term list")
	}
	defer f.Close()

	s := mapset.NewThreadUnsafeSet[string]()
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			s.Add(line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeTermListUnreadable, "cannot read target term list")
	}
	return &TargetTermSet{terms: s}, nil
}

// Contains reports whether term is in the target set. The test is flat set
// membership against the loaded list; no closure over the term hierarchy
// is computed, so a list intended to cover descendants must enumerate
// them.
func (s *TargetTermSet) Contains(term string) bool {
	return s.terms.Contains(term)
}

// Size returns the number of loaded terms.
func (s *TargetTermSet) Size() int {
	return s.terms.Cardinality()
}
