// internal/models/prediction.go
package models

import "time"

// PredictionResult is the classifier output stored next to the uploaded video.
// The wire field "probabilites" carries the producer's spelling; renaming it
// would break every blob already in the bucket.
type PredictionResult struct {
	Best          string             `json:"best"`
	Probabilities map[string]float64 `json:"probabilites"`
	LastModified  time.Time          `json:"-"`
}

// Confidence returns the score of the best label, 0 when absent.
func (p *PredictionResult) Confidence() float64 {
	if p == nil || p.Probabilities == nil {
		return 0
	}
	return p.Probabilities[p.Best]
}
