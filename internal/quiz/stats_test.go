package quiz_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mathathon/mathathon-server/internal/quiz"
)

func TestComputeStats(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	modA, err := store.CreateModule(ctx, "Algebra", "algebra")
	require.NoError(t, err)
	modB, err := store.CreateModule(ctx, "Bearings", "bearings")
	require.NoError(t, err)

	taken := 300
	mockAttempt := func(mod quiz.Module, user string, score float64) quiz.Attempt {
		return quiz.Attempt{
			Username: user, ModuleID: mod.ID, Type: quiz.TypeMock,
			DatetimeISO: "2024-01-15T10:30:00.000Z",
			Score:       &score, TimeTakenSeconds: &taken, Details: "[]",
		}
	}
	for _, a := range []quiz.Attempt{
		mockAttempt(modA, "alice", 80),
		mockAttempt(modA, "bob", 60),
		mockAttempt(modA, "alice", 100),
		mockAttempt(modB, "carol", 50),
	} {
		_, err := store.CreateAttempt(ctx, a)
		require.NoError(t, err)
	}

	stats, err := quiz.ComputeStats(ctx, store)
	require.NoError(t, err)

	assert.Equal(t, 2, stats.Overview.TotalModules)
	assert.Equal(t, 4, stats.Overview.TotalAttempts)
	assert.Equal(t, 3, stats.Overview.UniqueUsers)
	assert.Equal(t, 4, stats.Overview.MockAttempts)
	assert.Equal(t, 0, stats.Overview.RevisionAttempts)
	assert.EqualValues(t, 0, stats.Overview.TotalQuestions)

	require.Len(t, stats.ModuleStats, 2)
	algebra, bearings := stats.ModuleStats[0], stats.ModuleStats[1]
	assert.Equal(t, "Algebra", algebra.ModuleName)
	assert.Equal(t, 3, algebra.Attempts)
	assert.Equal(t, 3, algebra.MockAttempts)
	assert.Equal(t, 80.0, algebra.AverageScore)
	assert.Equal(t, "Bearings", bearings.ModuleName)
	assert.Equal(t, 1, bearings.Attempts)
	assert.Equal(t, 50.0, bearings.AverageScore)
}

func TestComputeStatsRounding(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	mod, err := store.CreateModule(ctx, "Calculus", "calculus")
	require.NoError(t, err)

	taken := 120
	for _, s := range []float64{70, 65, 62} {
		score := s
		_, err := store.CreateAttempt(ctx, quiz.Attempt{
			Username: "dave", ModuleID: mod.ID, Type: quiz.TypeMock,
			DatetimeISO: "2024-02-01T09:00:00.000Z",
			Score:       &score, TimeTakenSeconds: &taken, Details: "[]",
		})
		require.NoError(t, err)
	}
	_, err = store.CreateAttempt(ctx, quiz.Attempt{
		Username: "dave", ModuleID: mod.ID, Type: quiz.TypeRevision,
		DatetimeISO: "2024-02-02T09:00:00.000Z", Details: "{}",
	})
	require.NoError(t, err)

	stats, err := quiz.ComputeStats(ctx, store)
	require.NoError(t, err)
	require.Len(t, stats.ModuleStats, 1)
	ms := stats.ModuleStats[0]
	// (70+65+62)/3 = 65.666... rounds to 65.67; revision attempts don't dilute it.
	assert.Equal(t, 65.67, ms.AverageScore)
	assert.Equal(t, 4, ms.Attempts)
	assert.Equal(t, 1, ms.RevisionAttempts)
	assert.Equal(t, 1, stats.Overview.UniqueUsers)
}

func TestComputeStatsNoMockAttempts(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	mod, err := store.CreateModule(ctx, "Geometry", "geometry")
	require.NoError(t, err)
	_, err = store.CreateAttempt(ctx, quiz.Attempt{
		Username: "eve", ModuleID: mod.ID, Type: quiz.TypeRevision,
		DatetimeISO: "2024-03-01T10:00:00.000Z", Details: "{}",
	})
	require.NoError(t, err)

	stats, err := quiz.ComputeStats(ctx, store)
	require.NoError(t, err)
	require.Len(t, stats.ModuleStats, 1)
	assert.Equal(t, 0.0, stats.ModuleStats[0].AverageScore)
}
