// Package vendors talks to the vendor directory and the ranking service.
package vendors

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"autoassign-worker/internal/common/auth"
	"autoassign-worker/internal/common/errors"
	httpclient "autoassign-worker/internal/common/http"
	"autoassign-worker/internal/common/logger"
	"autoassign-worker/internal/models"
)

// Client resolves candidate vendors for a category and ranks them.
type Client struct {
	directoryURL string
	rankingURL   string
	userID       string
	tokens       *auth.KeycloakClient
	httpClient   *httpclient.Client
	logger       logger.Logger
}

func NewClient(directoryURL, rankingURL, userID string, tokens *auth.KeycloakClient, timeout time.Duration, log logger.Logger) *Client {
	return &Client{
		directoryURL: directoryURL,
		rankingURL:   rankingURL,
		userID:       userID,
		tokens:       tokens,
		httpClient:   httpclient.NewClient(timeout),
		logger:       log,
	}
}

// VendorsByCategory lists the account ids of vendors serving a category.
func (c *Client) VendorsByCategory(ctx context.Context, categoryID, incidentID string) ([]string, error) {
	token, err := c.tokens.GetAccessToken(ctx)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s?categoryId=%s&incidentId=%s&userId=%s", c.directoryURL, categoryID, incidentID, c.userID)
	headers := map[string]string{
		"Accept":        "application/json",
		"Authorization": "Bearer " + token,
	}

	status, body, err := c.httpClient.GetJSON(ctx, url, headers)
	if err != nil {
		return nil, errors.NewExternalCallFailedError("vendor-directory", err)
	}
	if status != http.StatusOK {
		return nil, errors.NewExternalStatusError("vendor-directory", status, string(body))
	}

	var accounts []models.VendorAccount
	if err := json.Unmarshal(body, &accounts); err != nil {
		return nil, errors.NewExternalCallFailedError("vendor-directory", err)
	}

	ids := make([]string, 0, len(accounts))
	for _, a := range accounts {
		ids = append(ids, a.AccountID)
	}

	c.logger.Info("vendor directory listed candidates", map[string]interface{}{
		"category_id": categoryID,
		"count":       len(ids),
	})
	return ids, nil
}

type rankingRequest struct {
	Category        string   `json:"category"`
	LocationID      string   `json:"location_id"`
	IncidentID      string   `json:"incident_id"`
	PossibleVendors []string `json:"possible_vendors"`
}

// RankVendors submits the candidate list for ranking. The response is keyed
// by rank as a string, "1" being the best match.
func (c *Client) RankVendors(ctx context.Context, category, locationID, incidentID string, possibleVendors []string) (map[string]models.VendorCandidate, error) {
	status, body, err := c.httpClient.PostJSON(ctx, c.rankingURL, rankingRequest{
		Category:        category,
		LocationID:      locationID,
		IncidentID:      incidentID,
		PossibleVendors: possibleVendors,
	}, nil)
	if err != nil {
		return nil, errors.NewExternalCallFailedError("vendor-ranking", err)
	}
	if status != http.StatusOK {
		return nil, errors.NewExternalStatusError("vendor-ranking", status, string(body))
	}

	var ranking map[string]models.VendorCandidate
	if err := json.Unmarshal(body, &ranking); err != nil {
		return nil, errors.NewExternalCallFailedError("vendor-ranking", err)
	}

	c.logger.Info("ranking returned candidates", map[string]interface{}{
		"category": category,
		"count":    len(ranking),
	})
	return ranking, nil
}
