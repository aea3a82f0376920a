package engine

import (
	"math"
	"math/rand/v2"
)

// Template scoring constants.
const (
	scoreBase                = 10.0
	typeFitWeight            = 60.0
	durationFitWeight        = 30.0
	durationToleranceMinutes = 30.0
	recencyPenalty           = 25.0
	maxScore                 = 100.0

	// tieBreakMargin is the score distance from the top within which
	// candidates count as equivalent and are picked between at random.
	tieBreakMargin = 5.0
)

// Planner runs the stochastic parts of plan generation. The random source is
// injected so the same seed reproduces the same plan.
type Planner struct {
	rng *rand.Rand
}

// NewPlanner constructs a Planner with a PCG source seeded from seed.
func NewPlanner(seed uint64) *Planner {
	return &Planner{rng: rand.New(rand.NewPCG(seed, seed))}
}

// ScoreTemplate rates how well a template fits the analysis on a [0, 100]
// scale. The type-fit term dominates; duration fit tapers to zero outside the
// tolerance window; templates already used this week take a fixed penalty so
// repeats are deprioritized but still possible with a small pool.
func ScoreTemplate(tmpl Template, analysis Analysis, usedIDs map[string]bool) float64 {
	score := scoreBase

	ratio := analysis.Recommendations.CardioToStrengthRatio
	score += typeFitWeight * (1 - math.Abs(tmpl.CardioFraction()-ratio))

	diff := math.Abs(float64(tmpl.EstimatedDurationMinutes - analysis.Recommendations.AvgDurationMinutes))
	if diff < durationToleranceMinutes {
		score += durationFitWeight * (1 - diff/durationToleranceMinutes)
	}

	if usedIDs[tmpl.ID] {
		score -= recencyPenalty
	}

	return math.Min(math.Max(score, 0), maxScore)
}

// SelectTemplate picks one template for a session slot. All candidates are
// scored and one of the near-top candidates is chosen at random, which
// introduces variety across weeks instead of always picking the single best
// match. Returns nil for an empty pool.
func (p *Planner) SelectTemplate(templates []Template, analysis Analysis, usedIDs map[string]bool) *Template {
	if len(templates) == 0 {
		return nil
	}

	scores := make([]float64, len(templates))
	best := math.Inf(-1)
	for i, tmpl := range templates {
		scores[i] = ScoreTemplate(tmpl, analysis, usedIDs)
		if scores[i] > best {
			best = scores[i]
		}
	}

	var candidates []int
	for i, score := range scores {
		if score >= best-tieBreakMargin {
			candidates = append(candidates, i)
		}
	}

	chosen := templates[candidates[p.rng.IntN(len(candidates))]]
	return &chosen
}

// SelectTemplates picks up to count templates without duplicating ids.
// It returns fewer than count when the pool has fewer distinct templates.
func (p *Planner) SelectTemplates(templates []Template, analysis Analysis, count int) []Template {
	selected := make([]Template, 0, max(count, 0))
	used := make(map[string]bool)

	for len(selected) < count {
		var pool []Template
		for _, tmpl := range templates {
			if !used[tmpl.ID] {
				pool = append(pool, tmpl)
			}
		}
		tmpl := p.SelectTemplate(pool, analysis, used)
		if tmpl == nil {
			break
		}
		used[tmpl.ID] = true
		selected = append(selected, *tmpl)
	}

	return selected
}
