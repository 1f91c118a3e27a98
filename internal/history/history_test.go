package history

import (
	"context"
	"testing"
	"time"

	"github.com/pablasso/planfirst/internal/verify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func result(planID string, status verify.Status, at time.Time) *verify.Result {
	return &verify.Result{
		PlanID:          planID,
		PhaseID:         "phase-1",
		Timestamp:       at,
		OverallStatus:   status,
		TaskResults:     []verify.TaskVerification{{TaskID: "task-1", File: "a.go", Status: status, Issues: []verify.Issue{}, MatchPercentage: 80}},
		Summary:         verify.Summary{TotalTasks: 1, TasksCompleted: 1},
		Recommendations: []string{"All tasks verified. The implementation matches the plan"},
	}
}

func TestRecordAndList(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	store, err := Open(":memory:", zap.New(core))
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	base := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	for i, status := range []verify.Status{verify.StatusFail, verify.StatusPartial, verify.StatusPass} {
		id, err := store.Record(ctx, result("abc123", status, base.Add(time.Duration(i)*time.Minute)))
		require.NoError(t, err)
		assert.Len(t, id, 36)
	}
	_, err = store.Record(ctx, result("other", verify.StatusPass, base))
	require.NoError(t, err)

	runs, err := store.List(ctx, "abc123", 0)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, verify.StatusPass, runs[0].OverallStatus)
	assert.Equal(t, verify.StatusFail, runs[2].OverallStatus)
	assert.True(t, runs[0].CreatedAt.Equal(base.Add(2*time.Minute)))
	assert.Equal(t, "phase-1", runs[0].PhaseID)
	assert.Equal(t, 1, runs[0].Summary.TasksCompleted)
	require.NotNil(t, runs[0].Result)
	assert.Equal(t, 80, runs[0].Result.TaskResults[0].MatchPercentage)

	limited, err := store.List(ctx, "abc123", 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)

	none, err := store.List(ctx, "missing", 10)
	require.NoError(t, err)
	assert.Empty(t, none)

	assert.Equal(t, 4, logs.FilterMessage("verification run recorded").Len())
}

func TestOpen_CreatesFile(t *testing.T) {
	dir := t.TempDir() + "/.planfirst"
	store, err := Open(dir, nil)
	require.NoError(t, err)
	require.NoError(t, store.Close())
	assert.FileExists(t, dir+"/"+FileName)

	// reopening keeps earlier rows
	store, err = Open(dir, nil)
	require.NoError(t, err)
	defer store.Close()
	_, err = store.Record(context.Background(), result("abc123", verify.StatusPass, time.Now()))
	require.NoError(t, err)
}
