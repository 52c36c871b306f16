// internal/models/project.go
package models

// ProjectRecord is the operational-store view of a tenant maintenance project,
// joined with the file row that matched the uploaded video.
type ProjectRecord struct {
	ProjectID      string
	PropertyPlanID string
	ProjectNumber  string
	StatusString   string
	Address        string
	VideoURL       string
	LocationID     string
	Location       string
	// AdditionalInfo is the raw property_additional_info JSON; the autoAssign
	// flag lives inside it.
	AdditionalInfo string
}

// PropertyRecord is the reporting-store view of the property behind a plan.
type PropertyRecord struct {
	PropertyPlanID string
	Address        string
	AdditionalInfo string
	LocationID     string
	Location       string
}
