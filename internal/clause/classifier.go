package clause

import (
	"regexp"
	"strings"

	"legalai-assistant/internal/model"
)

const (
	maxClauses        = 15
	minClauseLen      = 20
	maxClauseLen      = 500
	defaultConfidence = 0.8
)

// clausePatterns locate clause-like spans. Order matters: it is the
// tie-break order when the total cap is reached.
var clausePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(\d+\.\d+)\s+([A-Z][^.]*\.)`),
	regexp.MustCompile(`(?i)(Section\s+\d+)\s+([A-Z][^.]*\.)`),
	regexp.MustCompile(`(?i)(Article\s+(?:[IVXLCDM]+|\d+))\s+([A-Z][^.]*\.)`),
	regexp.MustCompile(`(?i)(\([a-z]\))\s+([A-Z][^.]*\.)`),
	regexp.MustCompile(`(?i)(Paragraph\s+\d+)\s+([A-Z][^.]*\.)`),
}

var criticalKeywords = []string{
	"termination", "terminate", "penalty", "liability", "breach",
	"exclusion", "exclude", "forfeit", "void", "default", "indemnif",
	"limitation", "waive", "waiver",
}

var supportiveKeywords = []string{
	"benefit", "coverage", "covered", "right", "refund", "guarantee",
	"warranty", "protection", "entitle", "compensat", "reimburse",
}

// Extract applies the structural patterns to text and returns the surviving
// clauses in detection order. Safe for concurrent use; no shared state.
func Extract(text string) []model.Clause {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var clauses []model.Clause
	seen := make(map[string]bool)

	for _, pattern := range clausePatterns {
		for _, match := range pattern.FindAllStringSubmatch(text, -1) {
			if len(clauses) >= maxClauses {
				return clauses
			}

			number := strings.TrimSpace(match[1])
			body := strings.TrimSpace(match[2])
			if len(body) < minClauseLen || len(body) > maxClauseLen {
				continue
			}
			if seen[body] {
				continue
			}
			seen[body] = true

			clauses = append(clauses, model.Clause{
				Number:     number,
				Text:       body,
				Confidence: defaultConfidence,
				Type:       Classify(body),
			})
		}
	}
	return clauses
}

// Classify labels a clause by keyword. Critical keywords win over
// supportive ones when both are present.
func Classify(text string) model.ClauseType {
	lowered := strings.ToLower(text)
	for _, kw := range criticalKeywords {
		if strings.Contains(lowered, kw) {
			return model.ClauseCritical
		}
	}
	for _, kw := range supportiveKeywords {
		if strings.Contains(lowered, kw) {
			return model.ClauseSupportive
		}
	}
	return model.ClauseNeutral
}
