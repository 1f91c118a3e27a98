package verify

import "fmt"

const maxFileRecommendations = 3

func summarize(results []TaskVerification) Summary {
	s := Summary{TotalTasks: len(results)}
	for _, r := range results {
		switch r.Status {
		case StatusPass:
			s.TasksCompleted++
		case StatusPartial:
			s.TasksPartial++
		case StatusFail:
			s.TasksMissing++
		}
		for _, issue := range r.Issues {
			switch issue.Severity {
			case SeverityCritical, SeverityError:
				s.CriticalIssues++
			case SeverityWarning:
				s.Warnings++
			}
		}
	}
	return s
}

// overallStatus fails on any critical issue, or when more than half the
// tasks are missing. Fewer missing tasks only make the run partial.
func overallStatus(s Summary) Status {
	switch {
	case s.CriticalIssues > 0 || float64(s.TasksMissing) > float64(s.TotalTasks)/2:
		return StatusFail
	case s.TasksPartial > 0 || s.TasksMissing > 0:
		return StatusPartial
	default:
		return StatusPass
	}
}

func recommendations(s Summary, results []TaskVerification) []string {
	var recs []string
	if s.TasksMissing > 0 {
		recs = append(recs, fmt.Sprintf("Implement %d missing task(s)", s.TasksMissing))
	}
	if s.TasksPartial > 0 {
		recs = append(recs, fmt.Sprintf("Complete %d partially implemented task(s)", s.TasksPartial))
	}
	if s.CriticalIssues > 0 {
		recs = append(recs, "Address critical issues before proceeding")
	}

	if s.TasksMissing > 0 && s.TasksMissing <= maxFileRecommendations {
		for _, r := range results {
			if r.Status == StatusFail {
				recs = append(recs, fmt.Sprintf("Review implementation of %s", r.File))
			}
		}
	}

	if len(recs) == 0 {
		recs = append(recs, "All tasks verified. The implementation matches the plan")
	}
	return recs
}
