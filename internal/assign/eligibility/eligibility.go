// Package eligibility decides whether a project may be assigned automatically.
// Checks run in a fixed order and the first failing check wins.
package eligibility

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"autoassign-worker/internal/models"
)

// Options carries the configurable knobs of the rule pipeline.
type Options struct {
	// ConfidenceThreshold is the minimum classifier score of the best label.
	// A score exactly at the threshold passes.
	ConfidenceThreshold float64
	// UnassignedStatuses are the project statuses still open for automatic
	// assignment.
	UnassignedStatuses []string
	// PortalBaseURL is the property-manager portal root used to build the
	// video link shown to the selected vendor.
	PortalBaseURL string
}

// Result is the outcome of the rule pipeline. When Eligible is false, Status
// and Reason say which rule stopped the run.
type Result struct {
	Eligible        bool
	Status          models.DecisionStatus
	Reason          string
	VideoDisplayURL string
}

// Evaluate runs the ordered eligibility checks. A nil project always yields
// NotFound regardless of the other inputs.
func Evaluate(project *models.ProjectRecord, property *models.PropertyRecord, prediction *models.PredictionResult, opts Options) Result {
	if project == nil {
		return Result{
			Status: models.DecisionNotFound,
			Reason: "no project matched the uploaded video",
		}
	}

	if property == nil {
		return Result{
			Status: models.DecisionNotEligible,
			Reason: "property has a home warranty or is inactive",
		}
	}

	if !autoAssignEnabled(project.AdditionalInfo) {
		return Result{
			Status: models.DecisionNotEligible,
			Reason: "automatic assignment disabled for this property",
		}
	}

	if !statusAllows(project.StatusString, opts.UnassignedStatuses) {
		return Result{
			Status: models.DecisionNotEligible,
			Reason: "project already assigned by a property manager",
		}
	}

	score := prediction.Confidence()
	if score < opts.ConfidenceThreshold {
		return Result{
			Status: models.DecisionNoConfidentPrediction,
			Reason: fmt.Sprintf("confidence %.4f below threshold %.4f", score, opts.ConfidenceThreshold),
		}
	}

	return Result{
		Eligible:        true,
		VideoDisplayURL: BuildVideoDisplayURL(opts.PortalBaseURL, project.VideoURL),
	}
}

// autoAssignEnabled reads the autoAssign flag out of the property additional
// info JSON. Only an explicit false blocks; a missing blob, malformed JSON or
// a missing key all count as enabled.
func autoAssignEnabled(additionalInfo string) bool {
	if additionalInfo == "" {
		return true
	}

	var info map[string]interface{}
	if err := json.Unmarshal([]byte(additionalInfo), &info); err != nil {
		return true
	}

	if v, ok := info["autoAssign"].(bool); ok {
		return v
	}
	return true
}

func statusAllows(status string, allowed []string) bool {
	for _, s := range allowed {
		if status == s {
			return true
		}
	}
	return false
}

// BuildVideoDisplayURL builds the portal link the vendor opens to watch the
// uploaded video.
func BuildVideoDisplayURL(portalBase, videoURL string) string {
	full := strings.TrimSuffix(portalBase, "/") + "/videoVendor/?video=" + url.QueryEscape(videoURL)
	return ForceHTTPS(full)
}

// ForceHTTPS normalizes a URL so it carries exactly one https:// scheme.
// Upstream systems occasionally hand over bare hosts or doubled schemes like
// "https://http://host"; both collapse to a single https prefix.
func ForceHTTPS(raw string) string {
	for {
		switch {
		case strings.HasPrefix(raw, "https://"):
			raw = strings.TrimPrefix(raw, "https://")
		case strings.HasPrefix(raw, "http://"):
			raw = strings.TrimPrefix(raw, "http://")
		default:
			return "https://" + raw
		}
	}
}
