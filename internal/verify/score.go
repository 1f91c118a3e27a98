package verify

import (
	"math"
	"regexp"
	"strings"

	"github.com/pablasso/planfirst/internal/plan"
)

const (
	baseScore    = 50.0
	keywordBonus = 30.0
	changeBonus  = 20.0
	maxKeywords  = 10
)

var nonAlphanumeric = regexp.MustCompile(`[^a-z0-9\s]+`)

var stopWords = map[string]bool{
	"about": true, "after": true, "also": true, "been": true, "before": true,
	"being": true, "between": true, "both": true, "could": true, "does": true,
	"each": true, "file": true, "from": true, "have": true, "into": true,
	"just": true, "like": true, "make": true, "more": true, "most": true,
	"must": true, "need": true, "only": true, "other": true, "over": true,
	"same": true, "should": true, "some": true, "such": true, "than": true,
	"that": true, "their": true, "them": true, "then": true, "there": true,
	"these": true, "they": true, "this": true, "those": true, "through": true,
	"under": true, "until": true, "upon": true, "very": true, "were": true,
	"what": true, "when": true, "where": true, "which": true, "while": true,
	"will": true, "with": true, "within": true, "would": true, "your": true,
}

// Keywords lowercases text, deletes every non-alphanumeric character, splits
// on whitespace, drops stop words and tokens of three characters or fewer,
// and returns the first ten that remain. Identifiers and paths collapse into
// a single token: "parse_config" becomes "parseconfig".
func Keywords(text string) []string {
	cleaned := nonAlphanumeric.ReplaceAllString(strings.ToLower(text), "")

	var words []string
	for _, w := range strings.Fields(cleaned) {
		if len(w) <= 3 || stopWords[w] {
			continue
		}
		words = append(words, w)
		if len(words) == maxKeywords {
			break
		}
	}
	return words
}

// MatchPercentage scores how well content reflects a task: 50 for existing,
// up to 30 for description keywords found, and up to 20 for changes whose
// code snippets are present. The result is clamped to [0, 100].
func MatchPercentage(task plan.Task, content string) int {
	lower := strings.ToLower(content)
	score := baseScore

	keywords := Keywords(task.Description)
	score += float64(countFound(keywords, lower)) / float64(max(len(keywords), 1)) * keywordBonus

	var total, matched int
	for _, c := range task.Changes {
		if strings.TrimSpace(c.Code) == "" {
			continue
		}
		total++
		kw := Keywords(c.Code)
		// a change counts when more than half its keywords appear
		if len(kw) > 0 && countFound(kw, lower)*2 > len(kw) {
			matched++
		}
	}
	if total > 0 {
		score += float64(matched) / float64(total) * changeBonus
	}

	return min(max(int(math.Round(score)), 0), 100)
}

func countFound(keywords []string, lowerContent string) int {
	found := 0
	for _, k := range keywords {
		if strings.Contains(lowerContent, k) {
			found++
		}
	}
	return found
}
