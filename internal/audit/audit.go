// Package audit ships per-run outcome documents to Elasticsearch so operators
// can follow assignment decisions without grepping logs.
package audit

import (
	"bytes"
	"context"
	"encoding/json"

	"autoassign-worker/internal/common/database"
	"autoassign-worker/internal/common/logger"
	"autoassign-worker/internal/models"
)

// Recorder indexes run outcomes. Every method is best-effort: indexing
// failures are logged and never change a decision.
type Recorder struct {
	es     *database.ElasticsearchClient
	index  string
	logger logger.Logger
}

func NewRecorder(es *database.ElasticsearchClient, index string, log logger.Logger) *Recorder {
	return &Recorder{es: es, index: index, logger: log}
}

// Record indexes one run outcome document, keyed by run id.
func (r *Recorder) Record(ctx context.Context, outcome *models.RunOutcome) {
	if r == nil || r.es == nil {
		return
	}

	body, err := json.Marshal(outcome)
	if err != nil {
		r.logger.Warn("failed to marshal run outcome", map[string]interface{}{"error": err.Error()})
		return
	}

	res, err := r.es.Client.Index(
		r.index,
		bytes.NewReader(body),
		r.es.Client.Index.WithContext(ctx),
		r.es.Client.Index.WithDocumentID(outcome.RunID),
	)
	if err != nil {
		r.logger.Warn("failed to index run outcome", map[string]interface{}{
			"run_id": outcome.RunID,
			"error":  err.Error(),
		})
		return
	}
	defer res.Body.Close()

	if res.IsError() {
		r.logger.Warn("run outcome rejected by elasticsearch", map[string]interface{}{
			"run_id": outcome.RunID,
			"status": res.Status(),
		})
		return
	}

	r.logger.Debug("run outcome indexed", map[string]interface{}{
		"run_id": outcome.RunID,
		"index":  r.index,
		"status": string(outcome.Status),
	})
}
