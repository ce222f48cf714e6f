package dto

// VendorFilter contains query parameters for the vendor catalogue.
type VendorFilter struct {
	Q         string
	Category  string
	Location  string
	MinRating *float64
	Page      int
	PerPage   int
}

// ImportSummary reports the outcome of a CSV vendor import.
type ImportSummary struct {
	Inserted int `json:"inserted"`
	Updated  int `json:"updated"`
	Total    int `json:"total"`
}
