// Package selection extracts the winning vendor from a ranking response.
package selection

import "autoassign-worker/internal/models"

// topRank is the ranking service's key for the best vendor.
const topRank = "1"

// SelectTop returns the rank-1 vendor from the ranking map. A nil or empty
// map, or a map without the top rank, yields (nil, false).
func SelectTop(ranking map[string]models.VendorCandidate) (*models.VendorCandidate, bool) {
	if len(ranking) == 0 {
		return nil, false
	}

	candidate, ok := ranking[topRank]
	if !ok {
		return nil, false
	}
	return &candidate, true
}
