package bracket

import "math"

type Progress struct {
	TotalMatches         int
	CompletedMatches     int
	CompletionPercentage float64
}

// ComputeProgress counts the matches created so far. Future rounds are unknown until earlier
// rounds resolve, so the total grows as the bracket advances.
func ComputeProgress(matches []Match) Progress {
	p := Progress{TotalMatches: len(matches)}
	for i := range matches {
		if matches[i].IsCompleted() {
			p.CompletedMatches++
		}
	}
	if p.TotalMatches > 0 {
		pct := float64(p.CompletedMatches) / float64(p.TotalMatches) * 100
		p.CompletionPercentage = math.Round(pct*10) / 10
	}
	return p
}
