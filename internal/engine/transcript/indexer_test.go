// internal/engine/transcript/indexer_test.go
package transcript

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"segment-insights/internal/common/errors"
	"segment-insights/internal/common/logger"
	"segment-insights/internal/engine/intent"
)

func newESClient(t *testing.T, handler http.HandlerFunc) *elasticsearch.Client {
	t.Helper()

	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{ts.URL}})
	require.NoError(t, err)
	return client
}

func TestIndex(t *testing.T) {
	var gotPath string
	var gotDoc map[string]interface{}

	client := newESClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		gotPath = r.URL.Path
		body, _ := io.ReadAll(r.Body)
		json.Unmarshal(body, &gotDoc)
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"result":"created"}`))
	})

	ix := NewIndexer(client, "chat-transcripts", logger.NewTestLogger(t))
	entry := Entry{
		SessionID: "s1",
		Query:     "compare segment 0 and 1",
		Response:  "segment 1 wins",
		Intent:    intent.Comparison,
		Segments:  []int{0, 1},
	}
	require.NoError(t, ix.Index(context.Background(), entry))

	assert.True(t, strings.HasPrefix(gotPath, "/chat-transcripts/_doc/s1-"))
	assert.Equal(t, "compare segment 0 and 1", gotDoc["query"])
	assert.Equal(t, "comparison", gotDoc["intent"])
	assert.Equal(t, false, gotDoc["fallback"])
	assert.NotEmpty(t, gotDoc["timestamp"])
}

func TestIndex_ErrorResponse(t *testing.T) {
	client := newESClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"error":"unavailable"}`))
	})

	ix := NewIndexer(client, "chat-transcripts", logger.NewTestLogger(t))
	err := ix.Index(context.Background(), Entry{SessionID: "s1"})
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeTranscriptIndexError, errors.CodeOf(err))
}
