package models

// Stats aggregates a sequence of records. Totals and the average load time
// only consider successful (status 200) records.
type Stats struct {
	Total          int     `json:"total_urls"`
	Successful     int     `json:"successful"`
	Failed         int     `json:"failed"`
	TotalWords     int     `json:"total_words"`
	TotalLinks     int     `json:"total_links"`
	TotalImages    int     `json:"total_images"`
	AvgLoadSeconds float64 `json:"avg_load_time"`

	// SuccessRate is Successful/Total as a percentage, 0 for an empty set.
	SuccessRate float64 `json:"success_rate"`
}
