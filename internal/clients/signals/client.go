// Package signals posts the video transcript to the keyword and emergency
// detectors. Both calls are fire-and-forget: the run never fails on them.
package signals

import (
	"context"
	"strings"
	"time"

	httpclient "autoassign-worker/internal/common/http"
	"autoassign-worker/internal/common/logger"
)

type Client struct {
	keywordsURL      string
	emergencyURL     string
	keywordsEnabled  bool
	emergencyEnabled bool
	httpClient       *httpclient.Client
	logger           logger.Logger
}

func NewClient(keywordsURL, emergencyURL string, keywordsEnabled, emergencyEnabled bool, timeout time.Duration, log logger.Logger) *Client {
	return &Client{
		keywordsURL:      keywordsURL,
		emergencyURL:     emergencyURL,
		keywordsEnabled:  keywordsEnabled,
		emergencyEnabled: emergencyEnabled,
		httpClient:       httpclient.NewClient(timeout),
		logger:           log,
	}
}

type signalPayload struct {
	Text      string `json:"text"`
	ProjectID string `json:"project_id"`
}

// Notify posts the transcript to every enabled detector. Responses are logged
// and discarded.
func (c *Client) Notify(ctx context.Context, text, projectID string) {
	payload := signalPayload{
		Text:      text,
		ProjectID: strings.ToLower(projectID),
	}

	if c.keywordsEnabled {
		c.post(ctx, "keywords", c.keywordsURL, payload)
	}
	if c.emergencyEnabled {
		c.post(ctx, "emergency", c.emergencyURL, payload)
	}
}

func (c *Client) post(ctx context.Context, name, url string, payload signalPayload) {
	status, body, err := c.httpClient.PostJSON(ctx, url, payload, nil)
	if err != nil {
		c.logger.Warn("signal call failed", map[string]interface{}{
			"signal": name,
			"error":  err.Error(),
		})
		return
	}
	c.logger.Info("signal call completed", map[string]interface{}{
		"signal":   name,
		"status":   status,
		"response": string(body),
	})
}
