package verify

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummarize(t *testing.T) {
	results := []TaskVerification{
		{Status: StatusPass},
		{Status: StatusPartial, Issues: []Issue{{Severity: SeverityWarning}}},
		{Status: StatusFail, Issues: []Issue{{Severity: SeverityError}, {Severity: SeverityInfo}}},
		{Status: StatusError, Issues: []Issue{{Severity: SeverityCritical}}},
	}

	assert.Equal(t, Summary{
		TotalTasks:     4,
		TasksCompleted: 1,
		TasksPartial:   1,
		TasksMissing:   1,
		CriticalIssues: 2,
		Warnings:       1,
	}, summarize(results))
}

func TestRecommendations(t *testing.T) {
	t.Run("all good", func(t *testing.T) {
		recs := recommendations(Summary{TotalTasks: 2, TasksCompleted: 2}, nil)
		assert.Equal(t, []string{"All tasks verified. The implementation matches the plan"}, recs)
	})

	t.Run("few failures name files", func(t *testing.T) {
		results := []TaskVerification{
			{File: "a.go", Status: StatusFail},
			{File: "b.go", Status: StatusPartial},
			{File: "c.go", Status: StatusFail},
		}
		s := Summary{TotalTasks: 3, TasksPartial: 1, TasksMissing: 2, CriticalIssues: 2}

		assert.Equal(t, []string{
			"Implement 2 missing task(s)",
			"Complete 1 partially implemented task(s)",
			"Address critical issues before proceeding",
			"Review implementation of a.go",
			"Review implementation of c.go",
		}, recommendations(s, results))
	})

	t.Run("many failures skip file lines", func(t *testing.T) {
		var results []TaskVerification
		for _, f := range []string{"a", "b", "c", "d"} {
			results = append(results, TaskVerification{File: f, Status: StatusFail})
		}
		s := Summary{TotalTasks: 4, TasksMissing: 4}

		assert.Equal(t, []string{"Implement 4 missing task(s)"}, recommendations(s, results))
	})
}

func TestErrorResult(t *testing.T) {
	res := ErrorResult("plan01", "", fixedNow, errors.New("plan.json missing"))

	assert.Equal(t, StatusError, res.OverallStatus)
	assert.True(t, res.OverallStatus.Failed())
	assert.Contains(t, res.Recommendations[0], "plan.json missing")
	assert.False(t, StatusPartial.Failed())
}
