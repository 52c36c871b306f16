package signals

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"autoassign-worker/internal/common/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Notify(t *testing.T) {
	t.Run("posts transcript with lowercased project id", func(t *testing.T) {
		var keywordsBody, emergencyBody map[string]string

		keywords := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&keywordsBody))
			w.Write([]byte(`{"detected": []}`))
		}))
		defer keywords.Close()

		emergency := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&emergencyBody))
			w.Write([]byte(`{"emergency": false}`))
		}))
		defer emergency.Close()

		client := NewClient(keywords.URL, emergency.URL, true, true, 5*time.Second, logger.NewTestLogger(t))
		client.Notify(context.Background(), "leaking pipe under the sink", "PRJ-ABC")

		assert.Equal(t, "leaking pipe under the sink", keywordsBody["text"])
		assert.Equal(t, "prj-abc", keywordsBody["project_id"])
		assert.Equal(t, keywordsBody, emergencyBody)
	})

	t.Run("disabled detectors are skipped", func(t *testing.T) {
		called := false
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
		}))
		defer server.Close()

		client := NewClient(server.URL, server.URL, false, false, 5*time.Second, logger.NewNoOpLogger())
		client.Notify(context.Background(), "text", "PRJ-1")

		assert.False(t, called)
	})

	t.Run("failing detector never propagates", func(t *testing.T) {
		client := NewClient("http://127.0.0.1:0", "http://127.0.0.1:0", true, true, time.Second, logger.NewNoOpLogger())
		assert.NotPanics(t, func() {
			client.Notify(context.Background(), "text", "PRJ-1")
		})
	})
}
