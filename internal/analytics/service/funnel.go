package service

import (
	"math"

	"leadflow_backend/internal/analytics/repository"
)

// FunnelStage is one step of the conversion funnel with its rate relative to
// the previous stage.
type FunnelStage struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
	Rate  int    `json:"rate"`
}

// BuildFunnel turns milestone counts into the ordered funnel. The first
// stage's rate is 100 by convention; a stage following an empty one has rate
// 0 rather than a division by zero.
func BuildFunnel(counts repository.MilestoneCounts) []FunnelStage {
	ordered := []FunnelStage{
		{Name: "Scraped", Count: counts.Scraped},
		{Name: "Qualified", Count: counts.Qualified},
		{Name: "Contacted", Count: counts.Contacted},
		{Name: "Responded", Count: counts.Responded},
		{Name: "Calls", Count: counts.Calls},
		{Name: "Proposals", Count: counts.Proposals},
		{Name: "Won", Count: counts.Won},
	}

	for i := range ordered {
		if i == 0 {
			ordered[i].Rate = 100
			continue
		}
		prev := ordered[i-1].Count
		if prev == 0 {
			ordered[i].Rate = 0
			continue
		}
		ordered[i].Rate = int(math.Round(float64(ordered[i].Count) / float64(prev) * 100))
	}
	return ordered
}
