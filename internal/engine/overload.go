package engine

import "math"

// Progression constants.
const (
	// DefaultDeloadFrequency inserts a recovery week every fourth week.
	DefaultDeloadFrequency = 4

	// maxWeeklyIncrease caps week-over-week weight growth regardless of the
	// strategy, so cumulative progression never jumps more than 10%.
	maxWeeklyIncrease = 0.10

	deloadSetFactor    = 0.7
	deloadWeightFactor = 0.65
)

// Strategy holds the per-goal-type progression parameters.
type Strategy struct {
	// WeeklyWeightIncrease is the fractional weight increase per week.
	WeeklyWeightIncrease float64
	MinReps              int
	MaxReps              int
	RestSeconds          int
}

var progressionStrategies = map[GoalType]Strategy{
	GoalMuscleBuilding: {WeeklyWeightIncrease: 0.05, MinReps: 8, MaxReps: 12, RestSeconds: 90},
	GoalEndurance:      {WeeklyWeightIncrease: 0, MinReps: 12, MaxReps: 20, RestSeconds: 45},
	GoalWeightLoss:     {WeeklyWeightIncrease: 0, MinReps: 10, MaxReps: 15, RestSeconds: 45},
	GoalGeneralFitness: {WeeklyWeightIncrease: 0.025, MinReps: 8, MaxReps: 12, RestSeconds: 60},
}

// ProgressionStrategy returns the progression parameters for a goal type.
// Unknown types get the general fitness strategy.
func ProgressionStrategy(goalType GoalType) Strategy {
	if strategy, ok := progressionStrategies[goalType]; ok {
		return strategy
	}
	return progressionStrategies[GoalGeneralFitness]
}

// WeeklyTarget is the computed sets/reps/weight for one week of an exercise's
// progression.
type WeeklyTarget struct {
	Week     int
	Sets     int
	Reps     int
	WeightKg float64
}

// CalculateProgression computes the per-week targets for an exercise over
// weeksCount weeks. Week 1 is the unchanged baseline. From week 2 on, reps
// are clamped into the strategy's range and weight grows by the strategy's
// weekly increase, capped at maxWeeklyIncrease. Bodyweight exercises (zero
// baseline weight) stay at zero weight; cardio exercises repeat their
// baseline every week.
func CalculateProgression(ex Exercise, weeksCount int, goalType GoalType) []WeeklyTarget {
	if weeksCount < 1 {
		return nil
	}

	strategy := ProgressionStrategy(goalType)
	increase := math.Min(strategy.WeeklyWeightIncrease, maxWeeklyIncrease)

	targets := make([]WeeklyTarget, 0, weeksCount)
	targets = append(targets, WeeklyTarget{Week: 1, Sets: ex.Sets, Reps: ex.Reps, WeightKg: ex.WeightKg})

	reps := ex.Reps
	if !ex.Type.IsCardio() {
		reps = clampReps(ex.Reps, strategy)
	}
	weight := ex.WeightKg
	for week := 2; week <= weeksCount; week++ {
		if !ex.Type.IsCardio() && weight > 0 {
			weight *= 1 + increase
		}
		targets = append(targets, WeeklyTarget{Week: week, Sets: ex.Sets, Reps: reps, WeightKg: weight})
	}
	return targets
}

func clampReps(reps int, strategy Strategy) int {
	if reps < strategy.MinReps {
		return strategy.MinReps
	}
	if reps > strategy.MaxReps {
		return strategy.MaxReps
	}
	return reps
}

// ApplyProgressiveOverload returns a copy of exercises adjusted for the given
// week. Cardio exercises pass through unchanged; resistance exercises get the
// sets/reps/weight computed for that week.
func ApplyProgressiveOverload(exercises []Exercise, weekNumber int, goalType GoalType) []Exercise {
	if weekNumber < 1 {
		weekNumber = 1
	}

	out := make([]Exercise, len(exercises))
	for i, ex := range exercises {
		if ex.Type.IsCardio() {
			out[i] = ex
			continue
		}
		target := CalculateProgression(ex, weekNumber, goalType)[weekNumber-1]
		ex.Sets = target.Sets
		ex.Reps = target.Reps
		ex.WeightKg = target.WeightKg
		out[i] = ex
	}
	return out
}

// IsDeloadWeek reports whether weekNumber falls on a deload week, i.e. is a
// positive multiple of frequency.
func IsDeloadWeek(weekNumber, frequency int) bool {
	return weekNumber > 0 && frequency > 0 && weekNumber%frequency == 0
}

// ApplyDeload reduces sets and weight of resistance exercises for a recovery
// week. Cardio exercises pass through unchanged.
func ApplyDeload(exercises []Exercise) []Exercise {
	out := make([]Exercise, len(exercises))
	for i, ex := range exercises {
		if ex.Type.IsCardio() {
			out[i] = ex
			continue
		}
		sets := int(float64(ex.Sets) * deloadSetFactor)
		if sets < 1 {
			sets = 1
		}
		ex.Sets = sets
		ex.WeightKg *= deloadWeightFactor
		out[i] = ex
	}
	return out
}

// CalculateVolume sums sets x reps x weight over resistance exercises.
// Cardio contributes zero regardless of duration or distance.
func CalculateVolume(exercises []Exercise) float64 {
	var volume float64
	for _, ex := range exercises {
		if ex.Type.IsCardio() {
			continue
		}
		volume += float64(ex.Sets) * float64(ex.Reps) * ex.WeightKg
	}
	return volume
}
