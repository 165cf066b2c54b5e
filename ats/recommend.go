package ats

import "fmt"

// Band is a coarse presentation bucket for a score.
type Band string

const (
	BandHigh   Band = "high"
	BandMedium Band = "medium"
	BandLow    Band = "low"
)

// BandFor maps a score to its band: 70 and above is high, 40 up to 70 is
// medium, below 40 is low.
func BandFor(score float64) Band {
	switch {
	case score >= 70:
		return BandHigh
	case score >= 40:
		return BandMedium
	default:
		return BandLow
	}
}

var bandSummaries = map[Band]string{
	BandHigh:   "Strong keyword alignment with the job description.",
	BandMedium: "Partial keyword alignment; covering the missing keywords would strengthen the match.",
	BandLow:    "Weak keyword alignment; the résumé misses most of the job's key requirements.",
}

// recommend lists up to limit missing keywords followed by the band summary.
func recommend(r *Result, limit int) []string {
	n := min(len(r.MissingKeywords), limit)
	out := make([]string, 0, n+1)
	for _, kw := range r.MissingKeywords[:n] {
		out = append(out, fmt.Sprintf("Add experience with %s to the résumé if you have it.", kw))
	}
	return append(out, bandSummaries[r.Band()])
}
