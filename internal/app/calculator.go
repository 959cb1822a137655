// internal/app/calculator.go
package app

import (
	"fmt"
	"math"
	"time"

	"routine_review_service/internal/domain/activity"
	"routine_review_service/internal/domain/review"
	"routine_review_service/internal/domain/user"
)

// batchData holds everything a batch run preloads: one query per source,
// keyed by user id, so snapshot computation touches no external system.
type batchData struct {
	users              map[int64]*user.User
	activityCounts     map[int64]map[activity.Type]int
	scores             map[int64]int64
	groupCounts        map[int64]int
	routineCompletions map[int64][]activity.RoutineCompletions
	previousSnapshots  map[int64]*review.Snapshot
}

// buildSnapshot computes one user's review snapshot from preloaded maps.
// Every lookup except the user record itself has a zero default: a user with
// no activity this month still gets an all-zero snapshot.
func buildSnapshot(userID int64, monthYear string, data *batchData, now time.Time) (*review.Snapshot, error) {
	u := data.users[userID]
	if u == nil {
		return nil, fmt.Errorf("user %d missing from preloaded roster", userID)
	}

	start, end, err := review.MonthBounds(monthYear)
	if err != nil {
		return nil, fmt.Errorf("invalid month %q: %w", monthYear, err)
	}

	counts := data.activityCounts[userID]
	personalRoutineCount := counts[activity.TypePersonalRoutineComplete]
	groupAuthCount := counts[activity.TypeGroupAuthComplete]
	dailyChecklistCount := counts[activity.TypeDailyChecklist]
	totalAuthCount := personalRoutineCount + groupAuthCount + dailyChecklistCount

	currentScore := int(data.scores[userID])
	currentGroups := data.groupCounts[userID]
	rate := achievementRate(data.routineCompletions[userID], start, end)

	scoreDifference := 0
	groupDifference := 0
	var achievements []string

	if prev := data.previousSnapshots[userID]; prev != nil {
		scoreDifference = currentScore - prev.TotalScore
		groupDifference = currentGroups - prev.ParticipatingGroups

		if scoreDifference > 0 {
			achievements = append(achievements, fmt.Sprintf("Up %d points from last month! (%d → %d)",
				scoreDifference, prev.TotalScore, currentScore))
		}
		if groupDifference > 0 {
			achievements = append(achievements, fmt.Sprintf("Joined %d new groups and widened the challenge!", groupDifference))
		}
	} else {
		achievements = append(achievements, "First month on RoutineIt complete! 🎉")
		if currentScore > 0 {
			achievements = append(achievements, fmt.Sprintf("Scored %d points in your first month!", currentScore))
		}
	}

	return &review.Snapshot{
		UserID:                         userID,
		Nickname:                       u.Nickname,
		MonthYear:                      monthYear,
		TotalScore:                     currentScore,
		ParticipatingGroups:            currentGroups,
		PersonalRoutineAchievementRate: rate,
		TotalAuthCount:                 totalAuthCount,
		PersonalRoutineCount:           personalRoutineCount,
		GroupAuthCount:                 groupAuthCount,
		DailyChecklistCount:            dailyChecklistCount,
		ScoreDifference:                scoreDifference,
		GroupDifference:                groupDifference,
		Achievements:                   achievements,
		CreatedAt:                      now,
	}, nil
}

// achievementRate averages the per-routine completion ratios, each capped at
// 100. Routines whose mask yields no scheduled day in the month are skipped.
func achievementRate(completions []activity.RoutineCompletions, monthStart, monthEnd time.Time) int {
	var rates []float64
	for _, rc := range completions {
		target := monthlyTargetCount(rc.RepeatDays, monthStart, monthEnd)
		if target > 0 {
			rates = append(rates, math.Min(100, float64(rc.Completions)/float64(target)*100))
		}
	}
	if len(rates) == 0 {
		return 0
	}
	sum := 0.0
	for _, r := range rates {
		sum += r
	}
	return int(sum / float64(len(rates)))
}

// monthlyTargetCount counts the calendar days in [monthStart, monthEnd] whose
// weekday bit is set in the routine's Sunday-first 7-character repeat mask.
func monthlyTargetCount(repeatDays string, monthStart, monthEnd time.Time) int {
	if len(repeatDays) != 7 {
		return 0
	}
	target := 0
	for d := monthStart; !d.After(monthEnd); d = d.AddDate(0, 0, 1) {
		if repeatDays[int(d.Weekday())] == '1' {
			target++
		}
	}
	return target
}
