package projects

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"autoassign-worker/internal/common/errors"
	"autoassign-worker/internal/common/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_SetProjectType(t *testing.T) {
	t.Run("posts type change with nptoken header", func(t *testing.T) {
		var gotPath, gotToken string
		var gotBody map[string]string

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path + "?" + r.URL.RawQuery
			gotToken = r.Header.Get("nptoken")
			require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client := NewClient(server.URL, "TOKEN-1", "USER-1", 5*time.Second, logger.NewTestLogger(t))
		err := client.SetProjectType(context.Background(), "PRJ-1", "TYPE-9", "Auto ML Process")
		require.NoError(t, err)

		assert.Equal(t, "/projects/project/PRJ-1/projecttype?userId=USER-1", gotPath)
		assert.Equal(t, "TOKEN-1", gotToken)
		assert.Equal(t, "Auto ML Process", gotBody["changeReason"])
		assert.Equal(t, "TYPE-9", gotBody["projectTypeId"])
	})

	t.Run("non-200 is an external call failure", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer server.Close()

		client := NewClient(server.URL, "TOKEN-1", "USER-1", 5*time.Second, logger.NewNoOpLogger())
		err := client.SetProjectType(context.Background(), "PRJ-1", "TYPE-9", "Auto ML Process")
		require.Error(t, err)

		var stdErr *errors.StandardError
		require.ErrorAs(t, err, &stdErr)
		assert.Equal(t, errors.ErrCodeExternalCallFailed, stdErr.Code)
		assert.True(t, stdErr.Retryable)
	})
}

func TestClient_AssignToPro(t *testing.T) {
	t.Run("lowercases pro and incident ids", func(t *testing.T) {
		var gotBody map[string]string

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client := NewClient(server.URL, "TOKEN-1", "USER-1", 5*time.Second, logger.NewTestLogger(t))
		err := client.AssignToPro(context.Background(), "cat-1", "VENDOR-ABC", "INCIDENT-XYZ")
		require.NoError(t, err)

		assert.Equal(t, "cat-1", gotBody["categoryId"])
		assert.Equal(t, "vendor-abc", gotBody["proId"])
		assert.Equal(t, "incident-xyz", gotBody["incidentId"])
	})

	t.Run("client error is not retryable", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnprocessableEntity)
		}))
		defer server.Close()

		client := NewClient(server.URL, "TOKEN-1", "USER-1", 5*time.Second, logger.NewNoOpLogger())
		err := client.AssignToPro(context.Background(), "cat-1", "V-1", "I-1")
		require.Error(t, err)

		var stdErr *errors.StandardError
		require.ErrorAs(t, err, &stdErr)
		assert.False(t, stdErr.Retryable)
	})
}
