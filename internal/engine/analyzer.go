// Package engine implements the rule-based workout plan generator: goal
// analysis, template selection, multi-week schedule layout and progressive
// overload. It is pure, synchronous computation over in-memory data; the only
// randomness (template tie-breaks) lives behind the injectable source held by
// a Planner.
package engine

import (
	"math"
	"strings"
	"time"
)

// Goal analysis constants.
const (
	// DefaultTimeframeDays is the planning horizon when a goal has no target
	// date: twelve weeks.
	DefaultTimeframeDays = 84

	beginnerMinWorkoutsPerWeek = 3

	intermediateWorkoutCount = 50
	advancedWorkoutCount     = 100
	advancedWeeklyCadence    = 6.0

	beginnerDurationFactor = 0.8
	advancedDurationFactor = 1.2

	hoursPerDay  = 24
	hoursPerWeek = 24 * 7
)

// classificationRule maps a keyword vocabulary to a goal type. Rules are
// evaluated in slice order and the first match wins, so the precedence is
// explicit rather than an accident of map iteration.
type classificationRule struct {
	goalType GoalType
	keywords []string
}

var classificationRules = []classificationRule{
	{
		goalType: GoalWeightLoss,
		keywords: []string{"lose", "loss", "fat", "slim", "cut", "shred", "lean"},
	},
	{
		goalType: GoalMuscleBuilding,
		keywords: []string{"build", "muscle", "gain", "bulk", "mass", "strength", "strong", "hypertrophy"},
	},
	{
		goalType: GoalEndurance,
		keywords: []string{"run", "marathon", "endurance", "stamina", "cardio", "cycling", "swim", "5k", "10k", "triathlon"},
	},
}

// baseRecommendations is the fixed recommendation envelope per goal type,
// before experience adjustments. RestDaysPerWeek is derived, not stored.
var baseRecommendations = map[GoalType]Recommendations{
	GoalWeightLoss:     {WorkoutsPerWeek: 5, CardioToStrengthRatio: 0.65, AvgDurationMinutes: 45},
	GoalMuscleBuilding: {WorkoutsPerWeek: 4, CardioToStrengthRatio: 0.3, AvgDurationMinutes: 60},
	GoalEndurance:      {WorkoutsPerWeek: 5, CardioToStrengthRatio: 0.8, AvgDurationMinutes: 50},
	GoalGeneralFitness: {WorkoutsPerWeek: 4, CardioToStrengthRatio: 0.5, AvgDurationMinutes: 45},
}

// ClassifyGoal classifies a goal by matching its title and description
// against the keyword rules, in rule order. Goals with no keyword match fall
// back to unit and direction heuristics, and finally to general fitness.
func ClassifyGoal(goal Goal) GoalType {
	text := strings.ToLower(goal.Title + " " + goal.Description)
	for _, rule := range classificationRules {
		for _, keyword := range rule.keywords {
			if strings.Contains(text, keyword) {
				return rule.goalType
			}
		}
	}

	switch {
	case isMassUnit(goal.Unit) && goal.TargetValue < goal.InitialValue:
		return GoalWeightLoss
	case isMassUnit(goal.Unit) && goal.TargetValue > goal.InitialValue:
		return GoalMuscleBuilding
	case isDistanceUnit(goal.Unit):
		return GoalEndurance
	default:
		return GoalGeneralFitness
	}
}

func isMassUnit(unit string) bool {
	switch strings.ToLower(unit) {
	case "kg", "lb", "lbs", "g":
		return true
	default:
		return false
	}
}

func isDistanceUnit(unit string) bool {
	switch strings.ToLower(unit) {
	case "km", "mi", "m", "miles", "steps":
		return true
	default:
		return false
	}
}

// AnalyzeWorkoutHistory aggregates past workouts into a summary. An empty
// history always yields a beginner summary, never an error.
func AnalyzeWorkoutHistory(history []HistoryEntry) HistorySummary {
	total := len(history)
	if total == 0 {
		return HistorySummary{
			TotalWorkouts:      0,
			AvgWorkoutsPerWeek: 0,
			Experience:         ExperienceBeginner,
		}
	}

	oldest := history[0].Date
	for _, entry := range history[1:] {
		if entry.Date.Before(oldest) {
			oldest = entry.Date
		}
	}

	weeks := time.Since(oldest).Hours() / hoursPerWeek
	if weeks < 1 {
		weeks = 1
	}
	avgPerWeek := float64(total) / weeks

	var experience ExperienceLevel
	switch {
	case total >= advancedWorkoutCount || avgPerWeek >= advancedWeeklyCadence:
		experience = ExperienceAdvanced
	case total >= intermediateWorkoutCount:
		experience = ExperienceIntermediate
	default:
		experience = ExperienceBeginner
	}

	return HistorySummary{
		TotalWorkouts:      total,
		AvgWorkoutsPerWeek: avgPerWeek,
		Experience:         experience,
	}
}

// AnalyzeGoal derives the full analysis for a goal: its type, the user's
// experience level from history, the planning timeframe and the adjusted
// recommendation envelope. It is total: any goal and any history produce a
// complete analysis.
func AnalyzeGoal(goal Goal, history []HistoryEntry) Analysis {
	goalType := ClassifyGoal(goal)
	summary := AnalyzeWorkoutHistory(history)

	rec := baseRecommendations[goalType]
	rec = adjustForExperience(rec, summary.Experience)
	rec.RestDaysPerWeek = daysPerWeek - rec.WorkoutsPerWeek

	return Analysis{
		GoalType:        goalType,
		Experience:      summary.Experience,
		TimeframeDays:   timeframeDays(goal.TargetDate),
		Recommendations: rec,
	}
}

// adjustForExperience lowers the weekly frequency for beginners to avoid
// overtraining newcomers and scales session duration with experience.
func adjustForExperience(rec Recommendations, level ExperienceLevel) Recommendations {
	switch level {
	case ExperienceBeginner:
		if rec.WorkoutsPerWeek-1 >= beginnerMinWorkoutsPerWeek {
			rec.WorkoutsPerWeek--
		}
		rec.AvgDurationMinutes = int(float64(rec.AvgDurationMinutes) * beginnerDurationFactor)
	case ExperienceAdvanced:
		rec.AvgDurationMinutes = int(float64(rec.AvgDurationMinutes) * advancedDurationFactor)
	case ExperienceIntermediate:
	}
	return rec
}

// timeframeDays returns the days until the target date, or the default
// horizon when the date is absent or already past.
func timeframeDays(targetDate *time.Time) int {
	if targetDate == nil {
		return DefaultTimeframeDays
	}
	days := int(math.Ceil(time.Until(*targetDate).Hours() / hoursPerDay))
	if days < 1 {
		return DefaultTimeframeDays
	}
	return days
}
