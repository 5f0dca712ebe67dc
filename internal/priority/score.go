package priority

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/metalagman/triage/internal/task"
)

const (
	maxExplanationParts   = 3
	maxRecommendationWhys = 2
)

// ScoreBreakdown holds the factor scores behind a priority score, each
// rounded to one decimal.
type ScoreBreakdown struct {
	Urgency     float64 `json:"urgency_score"`
	Importance  float64 `json:"importance_score"`
	Effort      float64 `json:"effort_score"`
	Dependency  float64 `json:"dependency_score"`
	BlocksCount int     `json:"blocks_count"`
	WeightsUsed Weights `json:"weights_used"`
}

// ScoredTask is a task with its computed priority. Rank and Recommendation
// are only set by Suggest.
type ScoredTask struct {
	task.Task
	PriorityScore         float64        `json:"priority_score"`
	Breakdown             ScoreBreakdown `json:"score_breakdown"`
	Explanation           string         `json:"explanation"`
	HasCircularDependency bool           `json:"has_circular_dependency"`
	Rank                  int            `json:"rank,omitempty"`
	Recommendation        string         `json:"recommendation,omitempty"`
}

func scoreTask(t task.Task, today task.Date, g *Graph, w Weights) ScoredTask {
	days := today.DaysUntil(t.DueDate)
	blocks := g.BlocksCount(t.ID)

	urgency := UrgencyScore(days)
	importance := ImportanceScore(t.Importance)
	effort := EffortScore(t.EstimatedHours)
	dependency := DependencyScore(blocks)
	total := urgency*w.Urgency + importance*w.Importance + effort*w.Effort + dependency*w.Dependency

	return ScoredTask{
		Task:          t,
		PriorityScore: round1(total),
		Breakdown: ScoreBreakdown{
			Urgency:     round1(urgency),
			Importance:  round1(importance),
			Effort:      round1(effort),
			Dependency:  round1(dependency),
			BlocksCount: blocks,
			WeightsUsed: w,
		},
		Explanation:           explain(t, days, blocks),
		HasCircularDependency: g.InCycle(t.ID),
	}
}

// explain lists the most salient factors: deadline, importance, blocking
// work and effort, in that order, at most three of them.
func explain(t task.Task, days, blocks int) string {
	var parts []string
	switch {
	case days < 0:
		parts = append(parts, fmt.Sprintf("OVERDUE by %s", plural(-days, "day")))
	case days == 0:
		parts = append(parts, "Due today")
	case days <= 3:
		parts = append(parts, fmt.Sprintf("Due in %s", plural(days, "day")))
	case days <= 7:
		parts = append(parts, fmt.Sprintf("Due this week (%s)", plural(days, "day")))
	}

	switch {
	case t.Importance >= 8:
		parts = append(parts, fmt.Sprintf("High importance (%d/10)", t.Importance))
	case t.Importance >= 6:
		parts = append(parts, fmt.Sprintf("Medium importance (%d/10)", t.Importance))
	}

	if blocks > 0 {
		parts = append(parts, fmt.Sprintf("Blocks %s", plural(blocks, "task")))
	}

	hours := strconv.FormatFloat(t.EstimatedHours, 'f', -1, 64)
	switch {
	case t.EstimatedHours > 0 && t.EstimatedHours <= 2:
		parts = append(parts, fmt.Sprintf("Quick task (%sh)", hours))
	case t.EstimatedHours >= 8:
		parts = append(parts, fmt.Sprintf("Large task (%sh)", hours))
	}

	if len(parts) == 0 {
		return "Standard priority task"
	}
	if len(parts) > maxExplanationParts {
		parts = parts[:maxExplanationParts]
	}
	return strings.Join(parts, " | ")
}

type reason struct {
	label        string
	contribution float64
}

// recommend names the one or two strongest qualifying factors of a ranked task.
func recommend(st ScoredTask, rank int) string {
	b := st.Breakdown
	w := b.WeightsUsed
	var reasons []reason
	if b.Urgency >= 9 {
		reasons = append(reasons, reason{"urgent deadline", b.Urgency * w.Urgency})
	}
	if b.Importance >= 8 {
		reasons = append(reasons, reason{"high impact", b.Importance * w.Importance})
	}
	if b.Effort >= 8 {
		reasons = append(reasons, reason{"quick completion", b.Effort * w.Effort})
	}
	if b.Dependency >= 7 {
		reasons = append(reasons, reason{"unblocks other work", b.Dependency * w.Dependency})
	}
	if len(reasons) == 0 {
		return fmt.Sprintf("Recommended #%d based on balanced priority factors", rank)
	}

	sort.SliceStable(reasons, func(i, j int) bool {
		return reasons[i].contribution > reasons[j].contribution
	})
	if len(reasons) > maxRecommendationWhys {
		reasons = reasons[:maxRecommendationWhys]
	}
	labels := make([]string, 0, len(reasons))
	for _, r := range reasons {
		labels = append(labels, r.label)
	}
	return fmt.Sprintf("Recommended #%d due to: %s", rank, strings.Join(labels, ", "))
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return strconv.Itoa(n) + " " + noun + "s"
}
