package app

import (
	"testing"
	"time"

	"routine_review_service/internal/domain/activity"
	"routine_review_service/internal/domain/review"
	"routine_review_service/internal/domain/user"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// June 2025 starts on a Sunday and has 30 days, which makes the Sunday-first
// repeat mask easy to reason about in these tests.
var (
	juneStart = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	juneEnd   = time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)
)

func TestMonthlyTargetCount(t *testing.T) {
	tests := map[string]struct {
		mask string
		want int
	}{
		"sundays only":    {mask: "1000000", want: 5},  // Jun 1, 8, 15, 22, 29
		"mondays only":    {mask: "0100000", want: 5},  // Jun 2, 9, 16, 23, 30
		"every day":       {mask: "1111111", want: 30},
		"no days":         {mask: "0000000", want: 0},
		"mask too short":  {mask: "101", want: 0},
		"mask too long":   {mask: "11111111", want: 0},
		"empty mask":      {mask: "", want: 0},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, monthlyTargetCount(tc.mask, juneStart, juneEnd))
		})
	}
}

func TestAchievementRateCappedAt100(t *testing.T) {
	// Completed more times than the monthly target: per-routine rate must be
	// exactly 100, never above.
	rate := achievementRate([]activity.RoutineCompletions{
		{RoutineID: 1, RepeatDays: "1111111", Completions: 45},
	}, juneStart, juneEnd)
	assert.Equal(t, 100, rate)
}

func TestAchievementRateAveragesPerRoutine(t *testing.T) {
	rate := achievementRate([]activity.RoutineCompletions{
		{RoutineID: 1, RepeatDays: "1111111", Completions: 15}, // 50%
		{RoutineID: 2, RepeatDays: "1111111", Completions: 30}, // 100%
	}, juneStart, juneEnd)
	assert.Equal(t, 75, rate)
}

func TestAchievementRateSkipsZeroTargetRoutines(t *testing.T) {
	rate := achievementRate([]activity.RoutineCompletions{
		{RoutineID: 1, RepeatDays: "0000000", Completions: 10}, // no scheduled day
		{RoutineID: 2, RepeatDays: "1111111", Completions: 30}, // 100%
	}, juneStart, juneEnd)
	assert.Equal(t, 100, rate)

	assert.Equal(t, 0, achievementRate(nil, juneStart, juneEnd))
}

func testBatchData(userID int64) *batchData {
	return &batchData{
		users:              map[int64]*user.User{userID: {ID: userID, Nickname: "mina"}},
		activityCounts:     map[int64]map[activity.Type]int{},
		scores:             map[int64]int64{},
		groupCounts:        map[int64]int{},
		routineCompletions: map[int64][]activity.RoutineCompletions{},
		previousSnapshots:  map[int64]*review.Snapshot{},
	}
}

func TestBuildSnapshotDeltas(t *testing.T) {
	data := testBatchData(7)
	data.scores[7] = 150
	data.groupCounts[7] = 3
	data.previousSnapshots[7] = &review.Snapshot{TotalScore: 100, ParticipatingGroups: 2}

	snap, err := buildSnapshot(7, "2025-06", data, time.Now())
	require.NoError(t, err)

	assert.Equal(t, 50, snap.ScoreDifference)
	assert.Equal(t, 1, snap.GroupDifference)
	require.Len(t, snap.Achievements, 2)
	assert.Contains(t, snap.Achievements[0], "50")
	assert.Contains(t, snap.Achievements[0], "(100 → 150)")
	assert.Contains(t, snap.Achievements[1], "1 new group")
}

func TestBuildSnapshotNegativeDeltasYieldNoAchievements(t *testing.T) {
	data := testBatchData(7)
	data.scores[7] = 80
	data.groupCounts[7] = 1
	data.previousSnapshots[7] = &review.Snapshot{TotalScore: 100, ParticipatingGroups: 2}

	snap, err := buildSnapshot(7, "2025-06", data, time.Now())
	require.NoError(t, err)

	assert.Equal(t, -20, snap.ScoreDifference)
	assert.Equal(t, -1, snap.GroupDifference)
	assert.Empty(t, snap.Achievements)
}

func TestBuildSnapshotFirstMonth(t *testing.T) {
	data := testBatchData(7)
	data.scores[7] = 120

	snap, err := buildSnapshot(7, "2025-06", data, time.Now())
	require.NoError(t, err)

	assert.Equal(t, 0, snap.ScoreDifference)
	assert.Equal(t, 0, snap.GroupDifference)
	require.Len(t, snap.Achievements, 2)
	assert.Contains(t, snap.Achievements[0], "First month")
	assert.Contains(t, snap.Achievements[1], "120")
	// No delta-phrased entry even though the score is positive.
	for _, a := range snap.Achievements {
		assert.NotContains(t, a, "last month")
	}
}

func TestBuildSnapshotFirstMonthZeroScore(t *testing.T) {
	snap, err := buildSnapshot(7, "2025-06", testBatchData(7), time.Now())
	require.NoError(t, err)
	require.Len(t, snap.Achievements, 1)
	assert.Contains(t, snap.Achievements[0], "First month")
}

func TestBuildSnapshotZeroDefaults(t *testing.T) {
	// A user with no activity at all still gets a complete snapshot.
	snap, err := buildSnapshot(7, "2025-06", testBatchData(7), time.Now())
	require.NoError(t, err)

	assert.Equal(t, int64(7), snap.UserID)
	assert.Equal(t, "mina", snap.Nickname)
	assert.Equal(t, "2025-06", snap.MonthYear)
	assert.Zero(t, snap.TotalScore)
	assert.Zero(t, snap.ParticipatingGroups)
	assert.Zero(t, snap.PersonalRoutineAchievementRate)
	assert.Zero(t, snap.TotalAuthCount)
	assert.Zero(t, snap.PersonalRoutineCount)
	assert.Zero(t, snap.GroupAuthCount)
	assert.Zero(t, snap.DailyChecklistCount)
}

func TestBuildSnapshotCountSums(t *testing.T) {
	data := testBatchData(7)
	data.activityCounts[7] = map[activity.Type]int{
		activity.TypePersonalRoutineComplete: 4,
		activity.TypeGroupAuthComplete:       3,
		activity.TypeDailyChecklist:          2,
	}

	snap, err := buildSnapshot(7, "2025-06", data, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 4, snap.PersonalRoutineCount)
	assert.Equal(t, 3, snap.GroupAuthCount)
	assert.Equal(t, 2, snap.DailyChecklistCount)
	assert.Equal(t, 9, snap.TotalAuthCount)
}

func TestBuildSnapshotMissingUserIsFatal(t *testing.T) {
	_, err := buildSnapshot(99, "2025-06", testBatchData(7), time.Now())
	assert.Error(t, err)
}

func TestBuildSnapshotInvalidMonth(t *testing.T) {
	_, err := buildSnapshot(7, "2025-6", testBatchData(7), time.Now())
	assert.Error(t, err)
}
