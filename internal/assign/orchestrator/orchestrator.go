// Package orchestrator runs one vendor assignment end to end. The step order
// is fixed; nothing writes state before the project-type update, and the
// write steps are deliberately not transactional.
package orchestrator

import (
	"context"
	stderrors "errors"
	"strings"
	"time"

	"autoassign-worker/internal/assign/category"
	"autoassign-worker/internal/assign/eligibility"
	"autoassign-worker/internal/assign/selection"
	"autoassign-worker/internal/common/errors"
	"autoassign-worker/internal/common/logger"
	"autoassign-worker/internal/common/metrics"
	"autoassign-worker/internal/common/observability"
	"autoassign-worker/internal/models"
	"autoassign-worker/internal/notifications"

	"github.com/google/uuid"
)

// PredictionFetcher reads the classifier output for a video key.
type PredictionFetcher interface {
	Fetch(ctx context.Context, key string) (*models.PredictionResult, error)
}

// ProjectStore looks up tenant projects in the operational store.
type ProjectStore interface {
	FindByVideoKey(ctx context.Context, key string) (*models.ProjectRecord, error)
}

// PropertyStore looks up property details in the reporting store.
type PropertyStore interface {
	FindByPlanID(ctx context.Context, planID string) (*models.PropertyRecord, error)
}

// CategoryStore resolves category names to ids in the reporting store.
type CategoryStore interface {
	FindIDByName(ctx context.Context, name string) (string, error)
}

// AuditStore flags assigned videos in the reporting store.
type AuditStore interface {
	MarkAutomaticAssignment(ctx context.Context, key string) error
}

// ProjectsAPI is the projects service.
type ProjectsAPI interface {
	SetProjectType(ctx context.Context, projectID, projectTypeID, changeReason string) error
	AssignToPro(ctx context.Context, categoryID, proID, incidentID string) error
}

// VendorAPI is the vendor directory plus the ranking service.
type VendorAPI interface {
	VendorsByCategory(ctx context.Context, categoryID, incidentID string) ([]string, error)
	RankVendors(ctx context.Context, category, locationID, incidentID string, possibleVendors []string) (map[string]models.VendorCandidate, error)
}

// SignalSender posts the transcript to the keyword/emergency detectors.
type SignalSender interface {
	Notify(ctx context.Context, text, projectID string)
}

// VendorNotifier emails the selected vendor.
type VendorNotifier interface {
	NotifyVendor(ctx context.Context, a notifications.Assignment) error
}

// OutcomeRecorder ships run outcomes to the audit index.
type OutcomeRecorder interface {
	Record(ctx context.Context, outcome *models.RunOutcome)
}

// DedupGuard claims source keys so redelivered events run at most once.
type DedupGuard interface {
	TryAcquire(ctx context.Context, sourceKey string) bool
	Release(ctx context.Context, sourceKey string)
}

// Orchestrator wires the collaborators of one assignment run.
type Orchestrator struct {
	cfg         Config
	predictions PredictionFetcher
	projects    ProjectStore
	properties  PropertyStore
	categories  CategoryStore
	videoAudit  AuditStore
	projectsAPI ProjectsAPI
	vendorsAPI  VendorAPI
	signals     SignalSender
	notifier    VendorNotifier
	outcomes    OutcomeRecorder
	guard       DedupGuard
	obs         *observability.Observability
	logger      logger.Logger
}

type Deps struct {
	Predictions PredictionFetcher
	Projects    ProjectStore
	Properties  PropertyStore
	Categories  CategoryStore
	VideoAudit  AuditStore
	ProjectsAPI ProjectsAPI
	VendorsAPI  VendorAPI
	Signals     SignalSender
	Notifier    VendorNotifier
	Outcomes    OutcomeRecorder
	Guard       DedupGuard
	Obs         *observability.Observability
	Logger      logger.Logger
}

func New(cfg Config, deps Deps) *Orchestrator {
	return &Orchestrator{
		cfg:         cfg,
		predictions: deps.Predictions,
		projects:    deps.Projects,
		properties:  deps.Properties,
		categories:  deps.Categories,
		videoAudit:  deps.VideoAudit,
		projectsAPI: deps.ProjectsAPI,
		vendorsAPI:  deps.VendorsAPI,
		signals:     deps.Signals,
		notifier:    deps.Notifier,
		outcomes:    deps.Outcomes,
		guard:       deps.Guard,
		obs:         deps.Obs,
		logger:      deps.Logger,
	}
}

// Run executes one assignment for an event. Handled outcomes come back as a
// decision; technical failures come back as a StandardError with a nil
// decision, which makes the event eligible for redelivery.
func (o *Orchestrator) Run(ctx context.Context, event models.AssignmentEvent) (*models.AssignmentDecision, error) {
	runID := uuid.NewString()
	started := time.Now()
	log := o.logger.WithFields(map[string]interface{}{
		"run_id": runID,
		"key":    event.SourceKey,
	})

	if o.guard != nil && !o.guard.TryAcquire(ctx, event.SourceKey) {
		decision := &models.AssignmentDecision{
			Status: models.DecisionNotEligible,
			Reason: "event already processed",
		}
		o.finish(ctx, runID, event, nil, decision, nil, started)
		return decision, nil
	}

	decision, project, err := o.run(ctx, event, log)
	if err != nil {
		// Let redelivery retry from a clean slate.
		if o.guard != nil {
			o.guard.Release(ctx, event.SourceKey)
		}
	}
	o.finish(ctx, runID, event, project, decision, err, started)
	return decision, err
}

func (o *Orchestrator) run(ctx context.Context, event models.AssignmentEvent, log logger.Logger) (*models.AssignmentDecision, *models.ProjectRecord, error) {
	// Step 1: prediction blob.
	prediction, err := o.predictions.Fetch(ctx, event.SourceKey)
	if err != nil {
		var stdErr *errors.StandardError
		if stderrors.As(err, &stdErr) && stdErr.Code == errors.ErrCodePredictionInvalid {
			log.Warn("prediction payload invalid", map[string]interface{}{"details": stdErr.Details})
			return &models.AssignmentDecision{
				Status: models.DecisionNotFound,
				Reason: "prediction payload failed validation",
			}, nil, nil
		}
		return nil, nil, err
	}
	if prediction == nil {
		return &models.AssignmentDecision{
			Status: models.DecisionNotFound,
			Reason: "no prediction stored for this video",
		}, nil, nil
	}

	// Steps 2-3: project and property lookups.
	project, err := o.projects.FindByVideoKey(ctx, event.SourceKey)
	if err != nil {
		return nil, nil, err
	}

	var property *models.PropertyRecord
	if project != nil {
		property, err = o.properties.FindByPlanID(ctx, project.PropertyPlanID)
		if err != nil {
			return nil, project, err
		}
		if property != nil {
			project.Address = property.Address
			project.LocationID = property.LocationID
			project.Location = property.Location
			project.AdditionalInfo = property.AdditionalInfo
		}
	}

	// Step 4: eligibility.
	elig := eligibility.Evaluate(project, property, prediction, eligibility.Options{
		ConfidenceThreshold: o.cfg.ConfidenceThreshold,
		UnassignedStatuses:  o.cfg.UnassignedStatuses,
		PortalBaseURL:       o.cfg.PortalBaseURL,
	})
	if !elig.Eligible {
		log.Info("project not eligible for automatic assignment", map[string]interface{}{
			"status": string(elig.Status),
			"reason": elig.Reason,
		})
		return &models.AssignmentDecision{Status: elig.Status, Reason: elig.Reason}, project, nil
	}

	log.Info("project eligible", map[string]interface{}{
		"project_id":     project.ProjectID,
		"project_number": project.ProjectNumber,
		"address":        project.Address,
		"location":       project.Location,
	})

	// Step 5: normalize category to the API form.
	apiCategory := category.ToAPI(prediction.Best)

	// Step 6: transcript signals, fire-and-forget.
	if o.signals != nil {
		o.signals.Notify(ctx, event.Text, project.ProjectID)
	}

	// Step 7: candidate vendors. A directory failure degrades to an empty
	// candidate list; the ranking service falls back to its own pool.
	possibleVendors := o.findPossibleVendors(ctx, apiCategory, project.ProjectID, log)

	// Step 8: ranking and selection.
	ranking, err := o.vendorsAPI.RankVendors(ctx, apiCategory, project.LocationID, project.ProjectID, possibleVendors)
	if err != nil {
		metrics.ExternalCallErrors.WithLabelValues("vendor-ranking").Inc()
		return nil, project, err
	}

	vendor, ok := selection.SelectTop(ranking)
	if !ok {
		log.Warn("no vendor at top rank", map[string]interface{}{"category": apiCategory})
		return &models.AssignmentDecision{
			Status:   models.DecisionNoVendorFound,
			Reason:   "ranking returned no usable vendor",
			Category: apiCategory,
		}, project, nil
	}

	log.Info("vendor selected", map[string]interface{}{
		"vendor":    vendor.Name,
		"vendor_id": vendor.VendorID,
	})

	// Step 9: normalize category to the SQL form for the write path.
	sqlCategory := category.ToSQL(apiCategory)

	decision := &models.AssignmentDecision{
		Status:    models.DecisionAssigned,
		ProjectID: project.ProjectID,
		Category:  sqlCategory,
		Vendor:    vendor,
	}

	if o.cfg.DryRun {
		log.Info("dry run, skipping write steps", nil)
		decision.Reason = "dry run"
		return decision, project, nil
	}

	// Step 10: project type update. First write; abort on failure.
	if err := o.projectsAPI.SetProjectType(ctx, project.ProjectID, o.cfg.ProjectTypeID, o.cfg.ChangeReason); err != nil {
		metrics.ExternalCallErrors.WithLabelValues("projects-service").Inc()
		return nil, project, err
	}

	// Step 11: category id for the assignment call.
	categoryID, err := o.categories.FindIDByName(ctx, sqlCategory)
	if err != nil {
		return nil, project, err
	}
	if categoryID == "" {
		return nil, project, errors.NewQueryExecutionFailedError("category_id_by_name",
			stderrors.New("no category row for "+sqlCategory))
	}

	// Step 12: the assignment itself. The projects service wants the id in
	// lower case here, unlike the directory lookup.
	if err := o.projectsAPI.AssignToPro(ctx, strings.ToLower(categoryID), vendor.VendorID, project.ProjectID); err != nil {
		metrics.ExternalCallErrors.WithLabelValues("projects-service").Inc()
		return nil, project, err
	}

	// Step 13: audit flag. The assignment already happened, so a failure here
	// downgrades to a warning instead of undoing the decision.
	if err := o.videoAudit.MarkAutomaticAssignment(ctx, event.SourceKey); err != nil {
		log.WithError(err).Warn("assignment done but audit flag update failed", nil)
	}

	// Step 14: vendor notification, config-gated.
	if o.notifier != nil {
		if err := o.notifier.NotifyVendor(ctx, notifications.Assignment{
			Vendor:        vendor,
			ProjectNumber: project.ProjectNumber,
			Category:      sqlCategory,
			Address:       project.Address,
			VideoURL:      elig.VideoDisplayURL,
		}); err != nil {
			log.WithError(err).Warn("vendor notification failed", nil)
		}
	}

	return decision, project, nil
}

// findPossibleVendors resolves the category id and lists candidate account
// ids. Failures are logged and yield an empty list.
func (o *Orchestrator) findPossibleVendors(ctx context.Context, apiCategory, incidentID string, log logger.Logger) []string {
	sqlCategory := category.ToSQL(apiCategory)

	categoryID, err := o.categories.FindIDByName(ctx, sqlCategory)
	if err != nil || categoryID == "" {
		log.Warn("category id lookup failed, ranking without candidates", map[string]interface{}{
			"category": sqlCategory,
		})
		return nil
	}

	candidates, err := o.vendorsAPI.VendorsByCategory(ctx, categoryID, incidentID)
	if err != nil {
		metrics.ExternalCallErrors.WithLabelValues("vendor-directory").Inc()
		log.WithError(err).Warn("vendor directory call failed, ranking without candidates", nil)
		return nil
	}
	return candidates
}

// finish records metrics and ships the outcome document.
func (o *Orchestrator) finish(ctx context.Context, runID string, event models.AssignmentEvent, project *models.ProjectRecord, decision *models.AssignmentDecision, runErr error, started time.Time) {
	duration := time.Since(started)

	outcome := &models.RunOutcome{
		RunID:      runID,
		SourceKey:  event.SourceKey,
		DurationMS: duration.Milliseconds(),
		Timestamp:  time.Now().UTC(),
	}
	if project != nil {
		outcome.ProjectID = project.ProjectID
	}

	status := "failed"
	if decision != nil {
		status = string(decision.Status)
		outcome.Status = decision.Status
		outcome.Reason = decision.Reason
		outcome.Category = decision.Category
		if decision.Vendor != nil {
			outcome.VendorID = decision.Vendor.VendorID
		}
		metrics.RunsCompleted.WithLabelValues(status).Inc()
	}
	if runErr != nil {
		code := "UNKNOWN"
		var stdErr *errors.StandardError
		if stderrors.As(runErr, &stdErr) {
			code = string(stdErr.Code)
		}
		outcome.ErrorCode = code
		metrics.RunsFailed.WithLabelValues(code).Inc()
	}
	metrics.RunDuration.WithLabelValues(status).Observe(duration.Seconds())

	if o.obs != nil {
		o.obs.RecordRun(ctx, status)
		o.obs.RecordRunDuration(ctx, duration, status)
	}

	if o.outcomes != nil {
		o.outcomes.Record(ctx, outcome)
	}
}
