package extract

import (
	"fmt"
	"math"

	"github.com/pablasso/planfirst/internal/plan"
)

// estimateComplexity applies exclusive thresholds on file, phase and word
// counts. Larger inputs never lower the tier.
func estimateComplexity(files, phases, words int) plan.Complexity {
	switch {
	case files > 10 || phases > 5 || words > 2000:
		return plan.ComplexityHigh
	case files > 5 || phases > 2 || words > 1000:
		return plan.ComplexityMedium
	default:
		return plan.ComplexityLow
	}
}

var hoursPerPhase = map[plan.Complexity]int{
	plan.ComplexityLow:    2,
	plan.ComplexityMedium: 6,
	plan.ComplexityHigh:   16,
}

// estimateTime renders hours under a working day, days under a working week
// and weeks beyond that.
func estimateTime(c plan.Complexity, phases int) string {
	hours := hoursPerPhase[c] * phases
	switch {
	case hours < 8:
		return plural(hours, "hour")
	case hours < 40:
		return plural(int(math.Ceil(float64(hours)/8)), "day")
	default:
		return plural(int(math.Ceil(float64(hours)/40)), "week")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
