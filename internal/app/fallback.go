// internal/app/fallback.go
package app

import (
	"fmt"
	"strings"

	"routine_review_service/internal/domain/review"
)

// FallbackMessage renders the deterministic review narrative used whenever AI
// generation is unavailable or too slow. It is pure and total: built from the
// snapshot fields alone, it never fails.
func FallbackMessage(snap *review.Snapshot) string {
	var b strings.Builder

	b.WriteString("🎊 " + snap.MonthYear + " Monthly Routine Report 🎊\n\n")
	b.WriteString("Hello, " + snap.Nickname + "!\n")
	b.WriteString("Here is how your routines went this month.\n\n")

	b.WriteString("📈 This Month's Results\n")
	fmt.Fprintf(&b, "• Total score: %d points", snap.TotalScore)
	switch {
	case snap.ScoreDifference > 0:
		fmt.Fprintf(&b, " (📈 up %d points!)", snap.ScoreDifference)
	case snap.ScoreDifference < 0:
		fmt.Fprintf(&b, " (📉 down %d points)", -snap.ScoreDifference)
	default:
		b.WriteString(" (➡️ unchanged)")
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "• Groups joined: %d", snap.ParticipatingGroups)
	if snap.GroupDifference > 0 {
		fmt.Fprintf(&b, " (👥 +%d new groups!)", snap.GroupDifference)
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "• Total check-ins: %d\n", snap.TotalAuthCount)

	b.WriteString("📊 Activity Breakdown\n")
	fmt.Fprintf(&b, "🎯 Personal routines: %d", snap.PersonalRoutineCount)
	if snap.PersonalRoutineCount > 0 {
		fmt.Fprintf(&b, " (achievement rate %d%%)", snap.PersonalRoutineAchievementRate)
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "👥 Group check-ins: %d\n", snap.GroupAuthCount)
	fmt.Fprintf(&b, "✅ Daily checklists: %d\n", snap.DailyChecklistCount)
	fmt.Fprintf(&b, "• Groups joined: %d\n\n", snap.ParticipatingGroups)

	switch {
	case snap.PersonalRoutineAchievementRate >= 90:
		b.WriteString("🎉 Over 90% of your personal routines done. A flawless month!\n\n")
	case snap.PersonalRoutineAchievementRate >= 80:
		b.WriteString("⭐ Over 80% of your personal routines done. Remarkable consistency!\n\n")
	case snap.PersonalRoutineAchievementRate >= 70:
		b.WriteString("💪 70% of your personal routines done. Your persistence shows!\n\n")
	case snap.PersonalRoutineAchievementRate >= 50:
		b.WriteString("🌟 More than half of your personal routines done. Push it higher next month!\n\n")
	default:
		b.WriteString("💪 Give your personal routines more focus. Small starts make big changes!\n\n")
	}

	if snap.ScoreDifference > 0 {
		b.WriteString("💪 You've grown since last month. Keep this momentum going!\n\n")
	} else {
		b.WriteString("💪 Consistency is the finest talent. See you strong next month!\n\n")
	}

	b.WriteString("Keep growing with us next month! 🌱\n")
	b.WriteString("Open RoutineIt to see more 👆")

	return b.String()
}
