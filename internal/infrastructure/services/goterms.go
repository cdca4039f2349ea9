package services

import (
	"context"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/ashishbaghudana/relna/internal/infrastructure/monitoring/logging"
)

// GOTermsClient resolves protein accessions to the ontology terms they
// are annotated with. One Resolve call covers a whole document's
// deduplicated accession set.
type GOTermsClient struct {
	*httpService
}

// NewGOTermsClient builds the ontology adapter. Open it before use.
func NewGOTermsClient(cfg *ServiceConfig, log logging.Logger) (*GOTermsClient, error) {
	svc, err := newHTTPService("goterms", cfg, log)
	if err != nil {
		return nil, err
	}
	return &GOTermsClient{httpService: svc}, nil
}

// Resolve maps protein accessions to ontology term ids. Accessions with
// no annotations are absent from the result; that is not an error.
func (g *GOTermsClient) Resolve(ctx context.Context, secondaryIDs mapset.Set[string]) (map[string][]string, error) {
	if secondaryIDs == nil || secondaryIDs.Cardinality() == 0 {
		return map[string][]string{}, nil
	}

	req := struct {
		ProteinIDs []string `json:"protein_ids"`
	}{ProteinIDs: sortedSlice(secondaryIDs)}

	var resp struct {
		Terms map[string][]string `json:"terms"`
	}
	if err := g.doJSON(ctx, "POST", "/terms", req, &resp); err != nil {
		return nil, err
	}
	if resp.Terms == nil {
		return map[string][]string{}, nil
	}
	return resp.Terms, nil
}
