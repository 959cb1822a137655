package review

import "time"

// Snapshot is the computed monthly review document for one user. Exactly one
// snapshot is authoritative per (UserID, MonthYear) key in the store;
// recomputation overwrites, never appends.
//
// MessageSent=false marks a provisional save: the fallback message is stored
// and AI enrichment is still pending. A later successful generation overwrites
// the document in place with MessageSent=true.
type Snapshot struct {
	UserID    int64  `json:"userId"`
	Nickname  string `json:"nickname"`
	MonthYear string `json:"monthYear"` // YYYY-MM

	TotalScore          int `json:"totalScore"`
	ParticipatingGroups int `json:"participatingGroups"`

	// Average of per-routine completion ratios, each capped at 100.
	PersonalRoutineAchievementRate int `json:"personalRoutineAchievementRate"`

	// TotalAuthCount is always the sum of the three per-type counts below.
	TotalAuthCount       int `json:"totalAuthCount"`
	PersonalRoutineCount int `json:"personalRoutineCount"`
	GroupAuthCount       int `json:"groupAuthCount"`
	DailyChecklistCount  int `json:"dailyChecklistCount"`

	// Current minus previous month; zero when no previous snapshot exists.
	ScoreDifference int `json:"scoreDifference"`
	GroupDifference int `json:"groupDifference"`

	Achievements []string `json:"achievements"`

	MessageContent string    `json:"messageContent"`
	MessageSent    bool      `json:"messageSent"`
	CreatedAt      time.Time `json:"createdAt"`
}
