// Package plan owns workout plan lifecycle: generating plans from goals with
// the engine, persisting them and tracking how closely the user follows them.
package plan

import (
	"time"

	"github.com/google/uuid"
	"github.com/mkarvon/fitplan/internal/engine"
)

// User is an account that owns goals, templates and plans.
type User struct {
	ID          uuid.UUID
	DisplayName string
}

// SessionStatus tracks what happened to a scheduled session.
type SessionStatus string

const (
	StatusPending   SessionStatus = "pending"
	StatusCompleted SessionStatus = "completed"
	StatusSkipped   SessionStatus = "skipped"
	StatusModified  SessionStatus = "modified"
)

// Valid reports whether the status is one the storage layer accepts.
func (s SessionStatus) Valid() bool {
	switch s {
	case StatusPending, StatusCompleted, StatusSkipped, StatusModified:
		return true
	}
	return false
}

// Session is a scheduled engine slot plus its completion state.
type Session struct {
	engine.SessionSlot
	Status      SessionStatus
	CompletedAt *time.Time
}

// Week is one stored week of a plan.
type Week struct {
	WeekNumber            int
	Sessions              []Session
	EstimatedWeeklyVolume float64
}

// Plan is a persisted multi-week workout plan. Seed records the randomness
// used at generation time so a plan can be reproduced exactly.
type Plan struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	GoalID     uuid.UUID
	WeeksCount int
	Active     bool
	Seed       uint64
	CreatedAt  time.Time
	Weeks      []Week
}

// Summary is the listing view of a plan without its sessions.
type Summary struct {
	ID         uuid.UUID
	GoalID     uuid.UUID
	WeeksCount int
	Active     bool
	CreatedAt  time.Time
}

// SessionRef addresses one session inside a plan.
type SessionRef struct {
	PlanID     uuid.UUID
	WeekNumber int
	DayOfWeek  int
}

// WeekStats is the per-week adherence breakdown. Rest days are not scheduled
// work, so they are excluded from the denominator; skipped and modified
// sessions stay in it.
type WeekStats struct {
	WeekNumber    int
	Workouts      int
	Completed     int
	Skipped       int
	Modified      int
	AdherenceRate float64
}

// Stats is the adherence report for a whole plan.
type Stats struct {
	PlanID        uuid.UUID
	Workouts      int
	Completed     int
	AdherenceRate float64
	Weeks         []WeekStats
}
