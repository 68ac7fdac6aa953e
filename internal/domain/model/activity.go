package model

// ActivityType identifies the kind of support activity being rewarded.
type ActivityType string

// Activity types.
const (
	ActivityTicketCompletion      ActivityType = "ticket_completion"
	ActivityVerification          ActivityType = "verification"
	ActivityDocumentation         ActivityType = "documentation"
	ActivityCustomerCommunication ActivityType = "customer_communication"
	ActivityLearningProgress      ActivityType = "learning_progress"
	ActivityKnowledgeSearch       ActivityType = "knowledge_search"
)

// ActivityTypes lists every activity type.
var ActivityTypes = []ActivityType{
	ActivityTicketCompletion,
	ActivityVerification,
	ActivityDocumentation,
	ActivityCustomerCommunication,
	ActivityLearningProgress,
	ActivityKnowledgeSearch,
}

// Difficulty is the scenario difficulty of a support exercise.
type Difficulty string

// Scenario difficulties, in increasing order.
const (
	DifficultyStarter      Difficulty = "starter"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

// Difficulties lists every difficulty from easiest to hardest.
var Difficulties = []Difficulty{DifficultyStarter, DifficultyIntermediate, DifficultyAdvanced}

// ExperienceLevel describes how seasoned the trainee is.
type ExperienceLevel string

// Experience levels.
const (
	ExperienceBeginner     ExperienceLevel = "beginner"
	ExperienceIntermediate ExperienceLevel = "intermediate"
	ExperienceExpert       ExperienceLevel = "expert"
)

// ExperienceLevels lists every experience level.
var ExperienceLevels = []ExperienceLevel{ExperienceBeginner, ExperienceIntermediate, ExperienceExpert}

// TimeOfDay buckets when the activity took place.
type TimeOfDay string

// Time-of-day buckets.
const (
	TimeMorning   TimeOfDay = "morning"
	TimeAfternoon TimeOfDay = "afternoon"
	TimeEvening   TimeOfDay = "evening"
	TimeNight     TimeOfDay = "night"
)

// TimesOfDay lists every time-of-day bucket.
var TimesOfDay = []TimeOfDay{TimeMorning, TimeAfternoon, TimeEvening, TimeNight}

// TimeOfDayAt buckets an hour of the day (0-23).
func TimeOfDayAt(hour int) TimeOfDay {
	switch {
	case hour >= 5 && hour < 12:
		return TimeMorning
	case hour >= 12 && hour < 17:
		return TimeAfternoon
	case hour >= 17 && hour < 22:
		return TimeEvening
	default:
		return TimeNight
	}
}

// ScoringContext carries the facts context rules are matched against.
// Empty fields never match a rule that constrains them.
type ScoringContext struct {
	ActivityType   ActivityType    `json:"activityType,omitempty"`
	Difficulty     Difficulty      `json:"difficulty,omitempty"`
	UserExperience ExperienceLevel `json:"userExperience,omitempty"`
	TimeOfDay      TimeOfDay       `json:"timeOfDay,omitempty"`
}

// ActivityData is a completed activity submitted for XP calculation.
type ActivityData struct {
	Type               ActivityType       `json:"type" validate:"required,oneof=ticket_completion verification documentation customer_communication learning_progress knowledge_search"`
	ScenarioDifficulty Difficulty         `json:"scenarioDifficulty" validate:"required,oneof=starter intermediate advanced"`
	PerformanceMetrics PerformanceMetrics `json:"performanceMetrics"`
	AdditionalContext  map[string]bool    `json:"additionalContext,omitempty"`
}

// Flag reports whether an additional context flag is set.
func (a ActivityData) Flag(name string) bool {
	return a.AdditionalContext[name]
}

// Context flags understood by the bonus rules.
const (
	FlagInnovativeApproach = "innovativeApproach"
)
