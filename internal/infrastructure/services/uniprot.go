package services

import (
	"context"
	"sort"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/ashishbaghudana/relna/internal/infrastructure/monitoring/logging"
)

// UniprotClient maps gene identifiers to protein accessions over HTTP.
// One Normalize call covers a whole document's deduplicated id set.
type UniprotClient struct {
	*httpService
}

// NewUniprotClient builds the normalizer adapter. Open it before use.
func NewUniprotClient(cfg *ServiceConfig, log logging.Logger) (*UniprotClient, error) {
	svc, err := newHTTPService("uniprot", cfg, log)
	if err != nil {
		return nil, err
	}
	return &UniprotClient{httpService: svc}, nil
}

// Normalize resolves the given gene ids to protein accessions. Ids with
// no known mapping are absent from the result; that is not an error.
func (u *UniprotClient) Normalize(ctx context.Context, primaryIDs mapset.Set[string]) (map[string][]string, error) {
	if primaryIDs == nil || primaryIDs.Cardinality() == 0 {
		return map[string][]string{}, nil
	}

	req := struct {
		GeneIDs []string `json:"gene_ids"`
	}{GeneIDs: sortedSlice(primaryIDs)}

	var resp struct {
		Mappings map[string][]string `json:"mappings"`
	}
	if err := u.doJSON(ctx, "POST", "/mapping", req, &resp); err != nil {
		return nil, err
	}
	if resp.Mappings == nil {
		return map[string][]string{}, nil
	}
	return resp.Mappings, nil
}

// sortedSlice keeps request payloads deterministic, which keeps request
// logs and cassette-style test fixtures stable.
func sortedSlice(ids mapset.Set[string]) []string {
	out := ids.ToSlice()
	sort.Strings(out)
	return out
}
