package app

import (
	"strings"
	"testing"

	"routine_review_service/internal/domain/review"

	"github.com/stretchr/testify/assert"
)

func TestFallbackMessageTotality(t *testing.T) {
	// Zero-value snapshot still renders a complete message.
	msg := FallbackMessage(&review.Snapshot{})
	assert.NotEmpty(t, msg)
	assert.Contains(t, msg, "Monthly Routine Report")
}

func TestFallbackMessageDeterministic(t *testing.T) {
	snap := &review.Snapshot{
		UserID: 1, Nickname: "mina", MonthYear: "2025-06",
		TotalScore: 150, ParticipatingGroups: 3,
		PersonalRoutineAchievementRate: 85,
		TotalAuthCount:                 9, PersonalRoutineCount: 4, GroupAuthCount: 3, DailyChecklistCount: 2,
		ScoreDifference: 50, GroupDifference: 1,
	}
	assert.Equal(t, FallbackMessage(snap), FallbackMessage(snap))
}

func TestFallbackMessageIdentityFields(t *testing.T) {
	msg := FallbackMessage(&review.Snapshot{Nickname: "mina", MonthYear: "2025-06"})
	assert.Contains(t, msg, "mina")
	assert.Contains(t, msg, "2025-06")
}

func TestFallbackMessageDeltaArrows(t *testing.T) {
	base := review.Snapshot{Nickname: "mina", MonthYear: "2025-06", TotalScore: 100}

	up := base
	up.ScoreDifference = 25
	assert.Contains(t, FallbackMessage(&up), "📈 up 25 points!")

	down := base
	down.ScoreDifference = -10
	assert.Contains(t, FallbackMessage(&down), "📉 down 10 points")

	flat := base
	assert.Contains(t, FallbackMessage(&flat), "➡️ unchanged")

	groups := base
	groups.GroupDifference = 2
	assert.Contains(t, FallbackMessage(&groups), "👥 +2 new groups!")
}

func TestFallbackMessageRateTiers(t *testing.T) {
	tests := map[string]struct {
		rate int
		want string
	}{
		"at 90":    {rate: 90, want: "flawless month"},
		"above 90": {rate: 97, want: "flawless month"},
		"at 80":    {rate: 80, want: "Remarkable consistency"},
		"at 70":    {rate: 70, want: "persistence shows"},
		"at 50":    {rate: 50, want: "More than half"},
		"below 50": {rate: 49, want: "Small starts"},
		"zero":     {rate: 0, want: "Small starts"},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			msg := FallbackMessage(&review.Snapshot{PersonalRoutineAchievementRate: tc.rate})
			assert.Contains(t, msg, tc.want)
		})
	}
}

func TestFallbackMessageRateShownOnlyWithRoutines(t *testing.T) {
	withRoutines := FallbackMessage(&review.Snapshot{PersonalRoutineCount: 3, PersonalRoutineAchievementRate: 60})
	assert.Contains(t, withRoutines, "achievement rate 60%")

	withoutRoutines := FallbackMessage(&review.Snapshot{PersonalRoutineCount: 0, PersonalRoutineAchievementRate: 60})
	assert.NotContains(t, withoutRoutines, "achievement rate")
}

func TestFallbackMessageClosingKeyedOnScoreDelta(t *testing.T) {
	up := FallbackMessage(&review.Snapshot{ScoreDifference: 5})
	assert.Contains(t, up, "grown since last month")
	assert.False(t, strings.Contains(up, "Consistency is the finest talent"))

	flat := FallbackMessage(&review.Snapshot{})
	assert.Contains(t, flat, "Consistency is the finest talent")
}
