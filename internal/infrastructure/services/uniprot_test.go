package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeSendsSortedIDBatch(t *testing.T) {
	var gotBody struct {
		GeneIDs []string `json:"gene_ids"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/mapping", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"mappings": map[string][]string{"672": {"P38398"}},
		})
	}))
	defer srv.Close()

	client, err := NewUniprotClient(&ServiceConfig{BaseURL: srv.URL}, nil)
	require.NoError(t, err)
	require.NoError(t, client.Open(context.Background()))
	defer client.Close()

	mapping, err := client.Normalize(context.Background(),
		mapset.NewThreadUnsafeSet("7157", "672"))
	require.NoError(t, err)
	assert.Equal(t, []string{"672", "7157"}, gotBody.GeneIDs)
	assert.Equal(t, map[string][]string{"672": {"P38398"}}, mapping)
}

func TestNormalizeEmptySetSkipsRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected for an empty id set")
	}))
	defer srv.Close()

	client, err := NewUniprotClient(&ServiceConfig{BaseURL: srv.URL}, nil)
	require.NoError(t, err)
	require.NoError(t, client.Open(context.Background()))
	defer client.Close()

	mapping, err := client.Normalize(context.Background(), mapset.NewThreadUnsafeSet[string]())
	require.NoError(t, err)
	assert.Empty(t, mapping)
}

func TestNormalizeNilMappingsBecomesEmptyMap(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client, err := NewUniprotClient(&ServiceConfig{BaseURL: srv.URL}, nil)
	require.NoError(t, err)
	require.NoError(t, client.Open(context.Background()))
	defer client.Close()

	mapping, err := client.Normalize(context.Background(), mapset.NewThreadUnsafeSet("672"))
	require.NoError(t, err)
	assert.NotNil(t, mapping)
	assert.Empty(t, mapping)
}

func TestResolveSendsProteinBatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/terms", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"terms": map[string][]string{"P38398": {"GO:0003700", "GO:0005634"}},
		})
	}))
	defer srv.Close()

	client, err := NewGOTermsClient(&ServiceConfig{BaseURL: srv.URL}, nil)
	require.NoError(t, err)
	require.NoError(t, client.Open(context.Background()))
	defer client.Close()

	terms, err := client.Resolve(context.Background(), mapset.NewThreadUnsafeSet("P38398"))
	require.NoError(t, err)
	assert.Equal(t, []string{"GO:0003700", "GO:0005634"}, terms["P38398"])
}

func TestResolveEmptySetSkipsRequest(t *testing.T) {
	client, err := NewGOTermsClient(&ServiceConfig{BaseURL: "http://localhost:1"}, nil)
	require.NoError(t, err)
	require.NoError(t, client.Open(context.Background()))
	defer client.Close()

	terms, err := client.Resolve(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, terms)
}
