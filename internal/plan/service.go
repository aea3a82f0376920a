package plan

import (
	"context"
	"encoding/binary"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/mkarvon/fitplan/internal/engine"
	"github.com/mkarvon/fitplan/internal/errors"
	"golang.org/x/sync/errgroup"
)

// Sentinel errors returned by the service and its repository.
var (
	ErrNotFound      = errors.NewSentinel("not found")
	ErrInvalidStatus = errors.NewSentinel("invalid session status")
)

// Repository is the persistence surface the service needs. Implemented by
// the pgx-backed repository in this package; tests use a fake.
type Repository interface {
	UserByAPIKey(ctx context.Context, apiKey string) (User, error)

	Goal(ctx context.Context, userID, goalID uuid.UUID) (engine.Goal, error)
	ListGoals(ctx context.Context, userID uuid.UUID) ([]engine.Goal, error)
	ListHistory(ctx context.Context, userID uuid.UUID) ([]engine.HistoryEntry, error)

	ListTemplates(ctx context.Context, userID uuid.UUID) ([]engine.Template, error)
	Template(ctx context.Context, userID, templateID uuid.UUID) (engine.Template, error)
	UpdateTemplateDescription(ctx context.Context, templateID uuid.UUID, markdown string) error

	CreatePlan(ctx context.Context, p Plan) error
	Plan(ctx context.Context, userID, planID uuid.UUID) (Plan, error)
	ListPlans(ctx context.Context, userID uuid.UUID) ([]Summary, error)
	ActivatePlan(ctx context.Context, userID, planID uuid.UUID) error
	UpdateSessionStatus(
		ctx context.Context, userID uuid.UUID, ref SessionRef, status SessionStatus, completedAt *time.Time,
	) error
}

// Service handles the business logic for workout plan management.
type Service struct {
	repo      Repository
	logger    *slog.Logger
	describer describer
	seed      uint64
	now       func() time.Time
}

// NewService creates a new plan service. A zero seed means every plan gets
// its own seed derived from its ID; a non-zero seed makes generation fully
// reproducible across plans. An empty openaiAPIKey disables LLM template
// descriptions in favor of a static fallback.
func NewService(repo Repository, logger *slog.Logger, openaiAPIKey string, seed uint64) *Service {
	var d describer = fallbackDescriber{}
	if openaiAPIKey != "" {
		d = newLLMDescriber(openaiAPIKey, logger)
	}
	return &Service{
		repo:      repo,
		logger:    logger,
		describer: d,
		seed:      seed,
		now:       time.Now,
	}
}

// AuthenticateAPIKey resolves an API key to a user.
func (s *Service) AuthenticateAPIKey(ctx context.Context, apiKey string) (User, error) {
	user, err := s.repo.UserByAPIKey(ctx, apiKey)
	if err != nil {
		return User{}, errors.Wrap(err, "authenticate api key")
	}
	return user, nil
}

// GeneratePlan analyzes the goal against the user's workout history, generates
// a multi-week schedule and persists it as the user's new active plan.
func (s *Service) GeneratePlan(
	ctx context.Context, userID, goalID uuid.UUID, weeksCount int, preferredDays []int,
) (Plan, error) {
	var (
		goal      engine.Goal
		history   []engine.HistoryEntry
		templates []engine.Template
	)

	// The three inputs are independent reads.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if goal, err = s.repo.Goal(gctx, userID, goalID); err != nil {
			return errors.Wrap(err, "load goal", slog.String("goal_id", goalID.String()))
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if history, err = s.repo.ListHistory(gctx, userID); err != nil {
			return errors.Wrap(err, "load workout history")
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if templates, err = s.repo.ListTemplates(gctx, userID); err != nil {
			return errors.Wrap(err, "load templates")
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return Plan{}, err
	}

	planID := uuid.New()
	seed := s.seed
	if seed == 0 {
		seed = binary.BigEndian.Uint64(planID[:8])
	}

	analysis := engine.AnalyzeGoal(goal, history)
	weeks, err := engine.NewPlanner(seed).GenerateMultiWeekPlan(weeksCount, analysis, templates, preferredDays)
	if err != nil {
		return Plan{}, errors.Wrap(err, "generate schedule", slog.Int("weeks_count", weeksCount))
	}

	p := Plan{
		ID:         planID,
		UserID:     userID,
		GoalID:     goalID,
		WeeksCount: weeksCount,
		Active:     true,
		Seed:       seed,
		CreatedAt:  s.now(),
		Weeks:      pendingWeeks(weeks),
	}

	if err := s.repo.CreatePlan(ctx, p); err != nil {
		return Plan{}, errors.Wrap(err, "persist plan", slog.String("plan_id", planID.String()))
	}

	s.logger.InfoContext(ctx, "generated plan",
		slog.String("plan_id", planID.String()),
		slog.String("goal_type", string(analysis.GoalType)),
		slog.String("experience", string(analysis.Experience)),
		slog.Int("weeks_count", weeksCount))

	return p, nil
}

// pendingWeeks converts generated schedules into stored weeks with every
// session pending.
func pendingWeeks(weeks []engine.WeekSchedule) []Week {
	stored := make([]Week, 0, len(weeks))
	for _, week := range weeks {
		sessions := make([]Session, 0, len(week.Sessions))
		for _, slot := range week.Sessions {
			sessions = append(sessions, Session{
				SessionSlot: slot,
				Status:      StatusPending,
				CompletedAt: nil,
			})
		}
		stored = append(stored, Week{
			WeekNumber:            week.WeekNumber,
			Sessions:              sessions,
			EstimatedWeeklyVolume: week.EstimatedWeeklyVolume,
		})
	}
	return stored
}

// GetPlan retrieves a plan with all its sessions.
func (s *Service) GetPlan(ctx context.Context, userID, planID uuid.UUID) (Plan, error) {
	p, err := s.repo.Plan(ctx, userID, planID)
	if err != nil {
		return Plan{}, errors.Wrap(err, "get plan", slog.String("plan_id", planID.String()))
	}
	return p, nil
}

// ListPlans lists the user's plans, newest first.
func (s *Service) ListPlans(ctx context.Context, userID uuid.UUID) ([]Summary, error) {
	summaries, err := s.repo.ListPlans(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "list plans")
	}
	return summaries, nil
}

// ActivatePlan makes the given plan the user's active plan, deactivating any
// other.
func (s *Service) ActivatePlan(ctx context.Context, userID, planID uuid.UUID) error {
	if err := s.repo.ActivatePlan(ctx, userID, planID); err != nil {
		return errors.Wrap(err, "activate plan", slog.String("plan_id", planID.String()))
	}
	return nil
}

// UpdateSessionStatus records what happened to a scheduled session. Completed
// sessions get a completion timestamp, any other status clears it.
func (s *Service) UpdateSessionStatus(
	ctx context.Context, userID uuid.UUID, ref SessionRef, status SessionStatus,
) error {
	if !status.Valid() {
		return errors.Wrap(ErrInvalidStatus, "update session status", slog.String("status", string(status)))
	}

	var completedAt *time.Time
	if status == StatusCompleted {
		now := s.now()
		completedAt = &now
	}

	if err := s.repo.UpdateSessionStatus(ctx, userID, ref, status, completedAt); err != nil {
		return errors.Wrap(err, "update session status",
			slog.String("plan_id", ref.PlanID.String()),
			slog.Int("week_number", ref.WeekNumber),
			slog.Int("day_of_week", ref.DayOfWeek))
	}
	return nil
}

// AdherenceStats computes per-week and overall adherence for a plan. Rest
// days carry no scheduled work and are excluded; skipped and modified
// sessions count against adherence.
func (s *Service) AdherenceStats(ctx context.Context, userID, planID uuid.UUID) (Stats, error) {
	p, err := s.repo.Plan(ctx, userID, planID)
	if err != nil {
		return Stats{}, errors.Wrap(err, "get plan for stats", slog.String("plan_id", planID.String()))
	}

	stats := Stats{PlanID: p.ID, Workouts: 0, Completed: 0, AdherenceRate: 0, Weeks: nil}
	for _, week := range p.Weeks {
		ws := WeekStats{
			WeekNumber: week.WeekNumber, Workouts: 0, Completed: 0, Skipped: 0, Modified: 0, AdherenceRate: 0,
		}
		for _, session := range week.Sessions {
			if session.IsRest() {
				continue
			}
			ws.Workouts++
			switch session.Status {
			case StatusCompleted:
				ws.Completed++
			case StatusSkipped:
				ws.Skipped++
			case StatusModified:
				ws.Modified++
			case StatusPending:
			}
		}
		if ws.Workouts > 0 {
			ws.AdherenceRate = float64(ws.Completed) / float64(ws.Workouts)
		}
		stats.Workouts += ws.Workouts
		stats.Completed += ws.Completed
		stats.Weeks = append(stats.Weeks, ws)
	}
	if stats.Workouts > 0 {
		stats.AdherenceRate = float64(stats.Completed) / float64(stats.Workouts)
	}
	return stats, nil
}

// ListGoals lists the user's goals.
func (s *Service) ListGoals(ctx context.Context, userID uuid.UUID) ([]engine.Goal, error) {
	goals, err := s.repo.ListGoals(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "list goals")
	}
	return goals, nil
}

// ListTemplates lists the templates visible to the user, public ones
// included.
func (s *Service) ListTemplates(ctx context.Context, userID uuid.UUID) ([]engine.Template, error) {
	templates, err := s.repo.ListTemplates(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "list templates")
	}
	return templates, nil
}

// GetTemplate retrieves one template, generating and persisting a description
// when it doesn't have one yet.
func (s *Service) GetTemplate(ctx context.Context, userID, templateID uuid.UUID) (engine.Template, error) {
	tmpl, err := s.repo.Template(ctx, userID, templateID)
	if err != nil {
		return engine.Template{}, errors.Wrap(err, "get template", slog.String("template_id", templateID.String()))
	}

	if tmpl.DescriptionMarkdown == "" {
		tmpl.DescriptionMarkdown = s.describeTemplate(ctx, tmpl)
		if err := s.repo.UpdateTemplateDescription(ctx, templateID, tmpl.DescriptionMarkdown); err != nil {
			return engine.Template{}, errors.Wrap(err, "save template description")
		}
	}

	return tmpl, nil
}

// describeTemplate never fails: when the LLM is unavailable or errors, the
// static fallback description is used instead.
func (s *Service) describeTemplate(ctx context.Context, tmpl engine.Template) string {
	markdown, err := s.describer.Describe(ctx, tmpl)
	if err != nil {
		s.logger.WarnContext(ctx, "template description generation failed, using fallback",
			errors.SlogError(err))
		return fallbackDescriber{}.describe(tmpl)
	}
	return markdown
}
