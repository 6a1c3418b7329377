// internal/engine/transcript/indexer.go
package transcript

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"segment-insights/internal/common/errors"
	"segment-insights/internal/common/logger"
	"segment-insights/internal/engine/intent"
)

// Entry is one audited chat exchange.
type Entry struct {
	SessionID string        `json:"session_id"`
	Query     string        `json:"query"`
	Response  string        `json:"response"`
	Intent    intent.Intent `json:"intent"`
	Segments  []int         `json:"segments"`
	Fallback  bool          `json:"fallback"`
	Timestamp time.Time     `json:"timestamp"`
}

// Indexer writes chat exchanges to Elasticsearch for offline audit.
// Indexing is best effort; callers log the error and move on.
type Indexer struct {
	client *elasticsearch.Client
	index  string
	logger logger.Logger
}

func NewIndexer(client *elasticsearch.Client, index string, log logger.Logger) *Indexer {
	return &Indexer{
		client: client,
		index:  index,
		logger: log.With(map[string]interface{}{
			"component": "transcript",
		}),
	}
}

// Index writes one entry. The document id combines session and time so
// replays do not collide.
func (ix *Indexer) Index(ctx context.Context, entry Entry) error {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}

	body, err := json.Marshal(entry)
	if err != nil {
		return errors.NewTranscriptIndexError(err)
	}

	req := esapi.IndexRequest{
		Index:      ix.index,
		DocumentID: fmt.Sprintf("%s-%d", entry.SessionID, entry.Timestamp.UnixNano()),
		Body:       bytes.NewReader(body),
	}
	res, err := req.Do(ctx, ix.client)
	if err != nil {
		return errors.NewTranscriptIndexError(err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return errors.NewTranscriptIndexError(fmt.Errorf("index response: %s", res.Status()))
	}

	ix.logger.Debug("transcript entry indexed", map[string]interface{}{
		"sessionId": entry.SessionID,
		"intent":    string(entry.Intent),
	})
	return nil
}
