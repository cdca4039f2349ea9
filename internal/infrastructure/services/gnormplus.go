package services

import (
	"context"
	"fmt"
	"net/url"

	"github.com/ashishbaghudana/relna/internal/annotation"
	"github.com/ashishbaghudana/relna/internal/infrastructure/monitoring/logging"
)

// GNormPlusClient recognizes gene mentions over HTTP. Full-text documents
// are submitted as raw text; abstract-only documents are fetched by PMID
// so the recognizer can pull the abstract itself.
type GNormPlusClient struct {
	*httpService
}

// NewGNormPlusClient builds the recognizer adapter. Open it before use.
func NewGNormPlusClient(cfg *ServiceConfig, log logging.Logger) (*GNormPlusClient, error) {
	svc, err := newHTTPService("gnormplus", cfg, log)
	if err != nil {
		return nil, err
	}
	return &GNormPlusClient{httpService: svc}, nil
}

type geneMentionPayload struct {
	Offset int    `json:"offset"`
	Text   string `json:"text"`
	GeneID string `json:"gene_id"`
}

type recognizeResponse struct {
	Mentions []geneMentionPayload `json:"mentions"`
}

// FetchByText submits document text for recognition. Returned offsets are
// document-global.
func (g *GNormPlusClient) FetchByText(ctx context.Context, text string) ([]annotation.GeneMention, error) {
	req := struct {
		Text string `json:"text"`
	}{Text: text}

	var resp recognizeResponse
	if err := g.doJSON(ctx, "POST", "/annotate", req, &resp); err != nil {
		return nil, err
	}
	return toMentions(resp.Mentions), nil
}

// FetchByDocumentID asks the recognizer to annotate the abstract behind a
// document identifier.
func (g *GNormPlusClient) FetchByDocumentID(ctx context.Context, docID string) ([]annotation.GeneMention, error) {
	path := fmt.Sprintf("/annotate/pmid/%s", url.PathEscape(docID))

	var resp recognizeResponse
	if err := g.doJSON(ctx, "GET", path, nil, &resp); err != nil {
		return nil, err
	}
	return toMentions(resp.Mentions), nil
}

func toMentions(payloads []geneMentionPayload) []annotation.GeneMention {
	mentions := make([]annotation.GeneMention, 0, len(payloads))
	for _, p := range payloads {
		mentions = append(mentions, annotation.GeneMention{
			Offset:    p.Offset,
			Text:      p.Text,
			PrimaryID: p.GeneID,
		})
	}
	return mentions
}
