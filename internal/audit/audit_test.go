package audit

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"autoassign-worker/internal/common/database"
	"autoassign-worker/internal/common/logger"
	"autoassign-worker/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRecorder(t *testing.T, handler http.HandlerFunc) (*Recorder, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)

	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{server.URL}})
	require.NoError(t, err)

	es := &database.ElasticsearchClient{Client: client}
	return NewRecorder(es, "vendor-autoassign-runs", logger.NewTestLogger(t)), server
}

func TestRecorder_Record(t *testing.T) {
	t.Run("indexes outcome document by run id", func(t *testing.T) {
		var gotPath string
		var gotDoc map[string]interface{}

		recorder, server := newTestRecorder(t, func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			body, _ := io.ReadAll(r.Body)
			json.Unmarshal(body, &gotDoc)
			w.Header().Set("X-Elastic-Product", "Elasticsearch")
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusCreated)
			w.Write([]byte(`{"result": "created"}`))
		})
		defer server.Close()

		recorder.Record(context.Background(), &models.RunOutcome{
			RunID:      "run-1",
			SourceKey:  "videos/clip.mp4",
			Status:     models.DecisionAssigned,
			Category:   "Plumbing",
			VendorID:   "V-1",
			DurationMS: 420,
			Timestamp:  time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		})

		assert.Equal(t, "/vendor-autoassign-runs/_doc/run-1", gotPath)
		assert.Equal(t, "videos/clip.mp4", gotDoc["source_key"])
		assert.Equal(t, "Assigned", gotDoc["status"])
	})

	t.Run("index failure never panics", func(t *testing.T) {
		recorder, server := newTestRecorder(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Elastic-Product", "Elasticsearch")
			w.WriteHeader(http.StatusServiceUnavailable)
		})
		defer server.Close()

		assert.NotPanics(t, func() {
			recorder.Record(context.Background(), &models.RunOutcome{RunID: "run-2"})
		})
	})

	t.Run("nil recorder is a no-op", func(t *testing.T) {
		var recorder *Recorder
		assert.NotPanics(t, func() {
			recorder.Record(context.Background(), &models.RunOutcome{RunID: "run-3"})
		})
	})
}
