// internal/models/vendor.go
package models

// VendorCandidate is one entry of the ranking service response. JSON field
// names are the ranking service's contract.
type VendorCandidate struct {
	Name              string  `json:"Vendor"`
	VendorID          string  `json:"Vendor_ID"`
	WeightedAverage   float64 `json:"Weighted Average"`
	CompletedProjects int     `json:"Completed Projects"`
	AverageCost       float64 `json:"Average Vendor Cost"`
	Email             string  `json:"Email"`
	CategoryID        string  `json:"Category ID"`
}

// VendorAccount is one entry of the vendor-directory response.
type VendorAccount struct {
	AccountID string `json:"accountId"`
}
