package session

import (
	"fmt"
	"strings"

	"github.com/amishk599/atscan/internal/model"
)

// FormatScore renders a fractional ATS score as a percentage with two
// decimals (0.873 -> "87.30%"), or "N/A" when the service sent no score.
func FormatScore(score *float64) string {
	if score == nil {
		return "N/A"
	}
	return fmt.Sprintf("%.2f%%", *score*100)
}

// DisplaySkills returns the skills uppercased for display, in service order.
// The input slice is not modified.
func DisplaySkills(skills []string) []string {
	out := make([]string, len(skills))
	for i, s := range skills {
		out[i] = strings.ToUpper(s)
	}
	return out
}

// ResultLines renders a prediction as the lines of the results panel.
func ResultLines(r model.PredictionResult) []string {
	lines := []string{
		"Category : " + r.Category,
		"ATS Score : " + FormatScore(r.ATSScore),
		"Highlighted Skills :",
	}
	lines = append(lines, DisplaySkills(r.HighlightedSkills)...)
	return append(lines, "Suggested Role : "+r.SuggestedRole)
}
