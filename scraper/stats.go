package scraper

import "github.com/use-agent/gleaner/models"

// ComputeStats folds records into session statistics. Word, link, image
// and load-time figures only count successful records.
func ComputeStats(records []models.ScrapedRecord) models.Stats {
	var st models.Stats
	var loadSum float64
	for i := range records {
		r := &records[i]
		st.Total++
		if !r.Succeeded() {
			st.Failed++
			continue
		}
		st.Successful++
		st.TotalWords += r.WordCount
		st.TotalLinks += r.LinksFound
		st.TotalImages += r.ImagesFound
		loadSum += r.LoadTimeSeconds
	}
	if st.Successful > 0 {
		st.AvgLoadSeconds = loadSum / float64(st.Successful)
	}
	if st.Total > 0 {
		st.SuccessRate = float64(st.Successful) / float64(st.Total) * 100
	}
	return st
}
