package model

import "time"

// ActivitySubmission is a completed activity waiting for its XP award.
// ID makes a submission idempotent: resubmitting the same ID is a no-op.
type ActivitySubmission struct {
	ID          string       `json:"id" validate:"required"`
	UserID      string       `json:"userId" validate:"required"`
	Activity    ActivityData `json:"activity"`
	SubmittedAt time.Time    `json:"submittedAt"`
}

// Award is the XP granted for one submission.
type Award struct {
	SubmissionID string       `json:"submissionId"`
	UserID       string       `json:"userId"`
	ActivityType ActivityType `json:"activityType"`
	Difficulty   Difficulty   `json:"difficulty"`
	TotalXP      int          `json:"totalXP"`
	BonusXP      int          `json:"bonusXP"`
	AwardedAt    time.Time    `json:"awardedAt"`
}

// XPStanding is a user's accumulated XP and position among all users.
type XPStanding struct {
	Rank       int    `json:"rank"`
	UserID     string `json:"userId"`
	TotalXP    int    `json:"totalXP"`
	Activities int    `json:"activities"`
}

// IntakeStats describes the asynchronous award pipeline.
type IntakeStats struct {
	Workers       int   `json:"workers"`
	QueueCapacity int   `json:"queueCapacity"`
	QueueLength   int   `json:"queueLength"`
	DedupeEntries int64 `json:"dedupeEntries"`
	Processed     int64 `json:"processed"`
	Failed        int64 `json:"failed"`
	Users         int   `json:"users"`
}
