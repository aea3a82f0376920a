package engine

import (
	"errors"
	"fmt"
	"sort"
)

// Plan length bounds. The host validates these before calling the engine;
// GenerateMultiWeekPlan enforces them again since it is the one operation
// that can fail.
const (
	MinPlanWeeks = 1
	MaxPlanWeeks = 12
)

// ErrWeeksCount is returned when a requested plan length falls outside
// [MinPlanWeeks, MaxPlanWeeks].
var ErrWeeksCount = errors.New("weeks count out of range")

// preferredRestDays is the deterministic order rest days are assigned:
// Sunday first, then Wednesday, then Friday.
var preferredRestDays = [3]int{0, 3, 5}

// DistributeRestDays returns the sorted day-of-week indices (0=Sunday) that
// should be rest days. The first three rest days follow the preference
// order; any further rest days fill the largest remaining gaps in the week
// so rest stays evenly spaced. workoutCount caps the rest days that can be
// assigned when the two counts disagree.
func DistributeRestDays(restCount, workoutCount int) []int {
	if restCount < 0 {
		restCount = 0
	}
	if restCount > daysPerWeek {
		restCount = daysPerWeek
	}
	if workoutCount >= 0 && restCount > daysPerWeek-workoutCount {
		restCount = daysPerWeek - workoutCount
	}

	rest := make(map[int]bool, restCount)
	for _, day := range preferredRestDays {
		if len(rest) == restCount {
			break
		}
		rest[day] = true
	}
	for len(rest) < restCount {
		rest[furthestFreeDay(rest)] = true
	}

	days := make([]int, 0, len(rest))
	for day := range rest {
		days = append(days, day)
	}
	sort.Ints(days)
	return days
}

// furthestFreeDay returns the non-rest day with the largest circular distance
// to the nearest rest day, lowest index on ties.
func furthestFreeDay(rest map[int]bool) int {
	bestDay := -1
	bestDist := -1
	for day := range daysPerWeek {
		if rest[day] {
			continue
		}
		dist := daysPerWeek
		for restDay := range rest {
			d := abs(day - restDay)
			if d > daysPerWeek-d {
				d = daysPerWeek - d
			}
			if d < dist {
				dist = d
			}
		}
		if dist > bestDist {
			bestDay = day
			bestDist = dist
		}
	}
	return bestDay
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// GenerateMultiWeekPlan lays out the full calendar for a plan: for every week
// it assigns rest days, fills the remaining days with selected templates and
// applies the week's progression (and deload, on deload weeks) to the copied
// exercises. Every week has exactly seven slots covering days 0..6.
//
// preferredDays optionally names the user's workout days (0=Sunday); when
// provided, rest days are the complement of that set instead of the
// deterministic distribution.
func (p *Planner) GenerateMultiWeekPlan(
	weeksCount int,
	analysis Analysis,
	templates []Template,
	preferredDays []int,
) ([]WeekSchedule, error) {
	if weeksCount < MinPlanWeeks || weeksCount > MaxPlanWeeks {
		return nil, fmt.Errorf("%w: %d outside [%d, %d]", ErrWeeksCount, weeksCount, MinPlanWeeks, MaxPlanWeeks)
	}

	restSet := make(map[int]bool)
	for _, day := range p.resolveRestDays(analysis, preferredDays) {
		restSet[day] = true
	}

	weeks := make([]WeekSchedule, 0, weeksCount)
	for week := 1; week <= weeksCount; week++ {
		weeks = append(weeks, p.generateWeek(week, analysis, templates, restSet))
	}
	return weeks, nil
}

// resolveRestDays derives the week's rest days from the recommendation
// envelope, or from the complement of the user's preferred workout days.
func (p *Planner) resolveRestDays(analysis Analysis, preferredDays []int) []int {
	if len(preferredDays) > 0 {
		workout := make(map[int]bool, len(preferredDays))
		for _, day := range preferredDays {
			if day >= 0 && day < daysPerWeek {
				workout[day] = true
			}
		}
		var rest []int
		for day := range daysPerWeek {
			if !workout[day] {
				rest = append(rest, day)
			}
		}
		return rest
	}

	restCount := analysis.Recommendations.RestDaysPerWeek
	if rec := analysis.Recommendations; rec.WorkoutsPerWeek > 0 {
		restCount = daysPerWeek - rec.WorkoutsPerWeek
	}
	return DistributeRestDays(restCount, daysPerWeek-restCount)
}

// generateWeek produces one WeekSchedule. Template ids used earlier in the
// week feed the selector's recency penalty so a single available template
// still fills every workout day instead of failing.
func (p *Planner) generateWeek(
	week int,
	analysis Analysis,
	templates []Template,
	restSet map[int]bool,
) WeekSchedule {
	sessions := make([]SessionSlot, 0, daysPerWeek)
	used := make(map[string]bool)
	order := 0
	deload := IsDeloadWeek(week, DefaultDeloadFrequency)
	var volume float64

	for day := range daysPerWeek {
		if restSet[day] {
			sessions = append(sessions, restSlot(day, week))
			continue
		}

		tmpl := p.SelectTemplate(templates, analysis, used)
		if tmpl == nil {
			// Nothing to fill the day with.
			sessions = append(sessions, restSlot(day, week))
			continue
		}
		used[tmpl.ID] = true
		order++

		exercises := ApplyProgressiveOverload(tmpl.Exercises, week, analysis.GoalType)
		if deload {
			exercises = ApplyDeload(exercises)
		}
		volume += CalculateVolume(exercises)

		sessions = append(sessions, SessionSlot{
			DayOfWeek:    day,
			DayName:      DayName(day),
			WorkoutType:  string(tmpl.DominantType()),
			TemplateID:   tmpl.ID,
			TemplateName: tmpl.Name,
			Exercises:    exercises,
			WeekNumber:   week,
			SessionOrder: order,
		})
	}

	return WeekSchedule{
		WeekNumber:            week,
		Sessions:              sessions,
		EstimatedWeeklyVolume: volume,
	}
}

func restSlot(day, week int) SessionSlot {
	return SessionSlot{
		DayOfWeek:    day,
		DayName:      DayName(day),
		WorkoutType:  WorkoutTypeRest,
		TemplateID:   "",
		TemplateName: "",
		Exercises:    nil,
		WeekNumber:   week,
		SessionOrder: 0,
	}
}
