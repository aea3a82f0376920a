package engine

import "time"

// GoalType is the classification bucket that drives the planning heuristics.
type GoalType string

// Goal type constants.
const (
	GoalWeightLoss     GoalType = "weight_loss"
	GoalMuscleBuilding GoalType = "muscle_building"
	GoalEndurance      GoalType = "endurance"
	GoalGeneralFitness GoalType = "general_fitness"
)

// ExperienceLevel represents the inferred training experience of a user.
type ExperienceLevel string

// Experience level constants.
const (
	ExperienceBeginner     ExperienceLevel = "beginner"
	ExperienceIntermediate ExperienceLevel = "intermediate"
	ExperienceAdvanced     ExperienceLevel = "advanced"
)

// ExerciseType distinguishes cardio work from resistance work.
type ExerciseType string

// Exercise type constants.
const (
	ExerciseCardio     ExerciseType = "cardio"
	ExerciseStrength   ExerciseType = "strength"
	ExerciseFunctional ExerciseType = "functional"
)

// IsCardio reports whether the type counts as cardio for scoring, volume and
// progression purposes. Strength and functional exercises both count as
// resistance work.
func (t ExerciseType) IsCardio() bool {
	return t == ExerciseCardio
}

// Goal is a user's fitness goal. It is read-only input to the engine; the
// direction (increase vs. decrease toward target) is inferred from whether
// InitialValue is below or above TargetValue.
type Goal struct {
	ID           string
	UserID       string
	Title        string
	Description  string
	InitialValue float64
	CurrentValue float64
	TargetValue  float64
	Unit         string
	TargetDate   *time.Time
}

// HistoryEntry is one past workout. The engine only uses these in aggregate.
type HistoryEntry struct {
	Date            time.Time
	DurationMinutes int
}

// HistorySummary aggregates a user's workout history.
type HistorySummary struct {
	TotalWorkouts      int
	AvgWorkoutsPerWeek float64
	Experience         ExperienceLevel
}

// Recommendations is the planning envelope derived from a goal.
type Recommendations struct {
	WorkoutsPerWeek       int
	CardioToStrengthRatio float64
	AvgDurationMinutes    int
	RestDaysPerWeek       int
}

// Analysis is the full derived view of a goal used by the selector and the
// schedule generator.
type Analysis struct {
	GoalType        GoalType
	Experience      ExperienceLevel
	TimeframeDays   int
	Recommendations Recommendations
}

// Exercise is one exercise entry inside a template or a generated session.
// Sets/Reps/WeightKg apply to resistance exercises, DurationMinutes and
// DistanceKm to cardio. A zero WeightKg means a bodyweight exercise.
type Exercise struct {
	Name            string
	Type            ExerciseType
	Sets            int
	Reps            int
	WeightKg        float64
	DurationMinutes int
	DistanceKm      float64
	RestSeconds     int
}

// Template is a reusable workout blueprint. Read-only input; the engine never
// mutates templates, it copies their exercises into generated sessions.
type Template struct {
	ID                       string
	UserID                   string
	Public                   bool
	Name                     string
	DescriptionMarkdown      string
	EstimatedDurationMinutes int
	Exercises                []Exercise
}

// CardioFraction returns the share of cardio exercises in the template,
// between 0 (all resistance) and 1 (all cardio). Empty templates count as
// balanced.
func (t Template) CardioFraction() float64 {
	if len(t.Exercises) == 0 {
		return 0.5
	}
	cardio := 0
	for _, ex := range t.Exercises {
		if ex.Type.IsCardio() {
			cardio++
		}
	}
	return float64(cardio) / float64(len(t.Exercises))
}

// DominantType returns the exercise type that the template leans toward.
func (t Template) DominantType() ExerciseType {
	if t.CardioFraction() > 0.5 {
		return ExerciseCardio
	}
	return ExerciseStrength
}

// WorkoutTypeRest marks a rest-day session slot.
const WorkoutTypeRest = "rest"

// SessionSlot is one calendar day's entry in a generated week: either a rest
// day or a workout instance of a template.
type SessionSlot struct {
	DayOfWeek    int    // 0=Sunday .. 6=Saturday
	DayName      string
	WorkoutType  string // WorkoutTypeRest or the template's dominant type
	TemplateID   string
	TemplateName string
	Exercises    []Exercise
	WeekNumber   int
	SessionOrder int // 1-based order among the week's workouts, 0 for rest days
}

// IsRest reports whether the slot is a rest day.
func (s SessionSlot) IsRest() bool {
	return s.WorkoutType == WorkoutTypeRest
}

// WeekSchedule is one generated week: exactly seven slots, Sunday-first.
type WeekSchedule struct {
	WeekNumber            int
	Sessions              []SessionSlot
	EstimatedWeeklyVolume float64
}

const daysPerWeek = 7

// dayNames is the canonical Sunday-first weekday table. Rest-day distribution
// and schedule generation must agree on this indexing.
var dayNames = [daysPerWeek]string{
	"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday",
}

// DayName returns the English weekday name for a Sunday-first index, or the
// empty string for an out-of-range index.
func DayName(dayOfWeek int) string {
	if dayOfWeek < 0 || dayOfWeek >= daysPerWeek {
		return ""
	}
	return dayNames[dayOfWeek]
}
