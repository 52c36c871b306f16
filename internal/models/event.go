// internal/models/event.go
package models

// AssignmentEvent is the queue message that triggers one run: the S3 key of
// the uploaded video plus the transcript text extracted from it.
type AssignmentEvent struct {
	SourceKey string `json:"source_key"`
	Text      string `json:"text"`
}
