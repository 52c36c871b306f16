// Package projects talks to the projects service: project type updates and
// pro assignment.
package projects

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"autoassign-worker/internal/common/errors"
	httpclient "autoassign-worker/internal/common/http"
	"autoassign-worker/internal/common/logger"
)

// Client calls the projects service. Every call carries the nptoken header.
type Client struct {
	baseURL    string
	token      string
	userID     string
	httpClient *httpclient.Client
	logger     logger.Logger
}

func NewClient(baseURL, token, userID string, timeout time.Duration, log logger.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		token:      token,
		userID:     userID,
		httpClient: httpclient.NewClient(timeout),
		logger:     log,
	}
}

type setProjectTypeRequest struct {
	ChangeReason  string `json:"changeReason"`
	ProjectTypeID string `json:"projectTypeId"`
}

// SetProjectType updates the project's type ahead of the assignment.
func (c *Client) SetProjectType(ctx context.Context, projectID, projectTypeID, changeReason string) error {
	url := fmt.Sprintf("%s/projects/project/%s/projecttype?userId=%s", c.baseURL, projectID, c.userID)

	status, body, err := c.httpClient.PostJSON(ctx, url, setProjectTypeRequest{
		ChangeReason:  changeReason,
		ProjectTypeID: projectTypeID,
	}, c.headers())
	if err != nil {
		return errors.NewExternalCallFailedError("projects-service", err)
	}
	if status != http.StatusOK {
		return errors.NewExternalStatusError("projects-service", status, string(body))
	}

	c.logger.Info("project type updated", map[string]interface{}{
		"project_id":      projectID,
		"project_type_id": projectTypeID,
	})
	return nil
}

type assignToProRequest struct {
	CategoryID string `json:"categoryId"`
	ProID      string `json:"proId"`
	IncidentID string `json:"incidentId"`
}

// AssignToPro assigns the project to the selected vendor. Pro and incident
// ids go over the wire lowercased; the service rejects the uppercase forms
// the databases hand back.
func (c *Client) AssignToPro(ctx context.Context, categoryID, proID, incidentID string) error {
	url := fmt.Sprintf("%s/projects/assign-project-to-pro?userId=%s", c.baseURL, c.userID)

	status, body, err := c.httpClient.PostJSON(ctx, url, assignToProRequest{
		CategoryID: categoryID,
		ProID:      strings.ToLower(proID),
		IncidentID: strings.ToLower(incidentID),
	}, c.headers())
	if err != nil {
		return errors.NewExternalCallFailedError("projects-service", err)
	}
	if status != http.StatusOK {
		return errors.NewExternalStatusError("projects-service", status, string(body))
	}

	c.logger.Info("project assigned to pro", map[string]interface{}{
		"incident_id": strings.ToLower(incidentID),
		"pro_id":      strings.ToLower(proID),
	})
	return nil
}

func (c *Client) headers() map[string]string {
	return map[string]string{"nptoken": c.token}
}
