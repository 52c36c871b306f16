// internal/assign/orchestrator/config.go
package orchestrator

// Config carries the business knobs of one orchestrator instance.
type Config struct {
	ConfidenceThreshold float64
	UnassignedStatuses  []string
	PortalBaseURL       string
	ProjectTypeID       string
	ChangeReason        string
	// DryRun evaluates everything but skips the write steps.
	DryRun bool
}
