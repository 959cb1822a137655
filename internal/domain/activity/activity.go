package activity

// Type identifies the kind of a completed user activity.
type Type string

const (
	TypePersonalRoutineComplete Type = "PERSONAL_ROUTINE_COMPLETE"
	TypeGroupAuthComplete       Type = "GROUP_AUTH_COMPLETE"
	TypeDailyChecklist          Type = "DAILY_CHECKLIST"
)

// RoutineCompletions aggregates one user's completions of a single personal
// routine within a month, together with the routine's repeat mask.
type RoutineCompletions struct {
	RoutineID int64
	// RepeatDays is a 7-character mask, Sunday first, '1' marking the
	// weekdays the routine is scheduled on.
	RepeatDays  string
	Completions int
}
