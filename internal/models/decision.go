// internal/models/decision.go
package models

import "time"

// DecisionStatus is the terminal outcome of one assignment run.
type DecisionStatus string

const (
	DecisionAssigned              DecisionStatus = "Assigned"
	DecisionNoConfidentPrediction DecisionStatus = "NoConfidentPrediction"
	DecisionNoVendorFound         DecisionStatus = "NoVendorFound"
	DecisionNotEligible           DecisionStatus = "NotEligible"
	DecisionNotFound              DecisionStatus = "NotFound"
)

// AssignmentDecision records what a run decided and why.
type AssignmentDecision struct {
	Status    DecisionStatus   `json:"status"`
	Reason    string           `json:"reason,omitempty"`
	ProjectID string           `json:"project_id,omitempty"`
	Category  string           `json:"category,omitempty"`
	Vendor    *VendorCandidate `json:"vendor,omitempty"`
}

// RunOutcome is the audit-index document written after every run.
type RunOutcome struct {
	RunID      string         `json:"run_id"`
	SourceKey  string         `json:"source_key"`
	ProjectID  string         `json:"project_id,omitempty"`
	Status     DecisionStatus `json:"status"`
	Reason     string         `json:"reason,omitempty"`
	Category   string         `json:"category,omitempty"`
	VendorID   string         `json:"vendor_id,omitempty"`
	ErrorCode  string         `json:"error_code,omitempty"`
	DurationMS int64          `json:"duration_ms"`
	Timestamp  time.Time      `json:"timestamp"`
}
