package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeycloakClient_GetAccessToken(t *testing.T) {
	t.Run("fetches token with password grant", func(t *testing.T) {
		var gotPath string
		var gotForm map[string]string

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			require.NoError(t, r.ParseForm())
			gotForm = map[string]string{
				"grant_type": r.Form.Get("grant_type"),
				"client_id":  r.Form.Get("client_id"),
				"username":   r.Form.Get("username"),
				"password":   r.Form.Get("password"),
			}
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]interface{}{
				"access_token": "token-1",
				"expires_in":   300,
			})
		}))
		defer server.Close()

		client := NewKeycloakClient(server.URL, "ProdRealm", "prod-client", "svc-user", "svc-pass")
		token, err := client.GetAccessToken(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "token-1", token)
		assert.Equal(t, "/realms/ProdRealm/protocol/openid-connect/token", gotPath)
		assert.Equal(t, map[string]string{
			"grant_type": "password",
			"client_id":  "prod-client",
			"username":   "svc-user",
			"password":   "svc-pass",
		}, gotForm)
	})

	t.Run("caches token until expiry", func(t *testing.T) {
		calls := 0
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls++
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]interface{}{
				"access_token": "token-cached",
				"expires_in":   300,
			})
		}))
		defer server.Close()

		client := NewKeycloakClient(server.URL, "Realm", "client", "user", "pass")
		for i := 0; i < 3; i++ {
			token, err := client.GetAccessToken(context.Background())
			require.NoError(t, err)
			assert.Equal(t, "token-cached", token)
		}
		assert.Equal(t, 1, calls)
	})

	t.Run("invalidate forces a refetch", func(t *testing.T) {
		calls := 0
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls++
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]interface{}{
				"access_token": "token",
				"expires_in":   300,
			})
		}))
		defer server.Close()

		client := NewKeycloakClient(server.URL, "Realm", "client", "user", "pass")
		_, err := client.GetAccessToken(context.Background())
		require.NoError(t, err)
		client.Invalidate()
		_, err = client.GetAccessToken(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 2, calls)
	})

	t.Run("non-200 is an authentication error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error": "invalid_grant"}`))
		}))
		defer server.Close()

		client := NewKeycloakClient(server.URL, "Realm", "client", "user", "bad-pass")
		_, err := client.GetAccessToken(context.Background())
		assert.Error(t, err)
	})
}
