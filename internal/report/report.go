// Package report renders analysis results for the terminal.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/metalagman/triage/internal/analysis"
	"github.com/metalagman/triage/internal/priority"
	"github.com/metalagman/triage/internal/task"
)

// cycleMarker flags tasks that sit on a dependency cycle.
const cycleMarker = "⟳"

// JSON writes v as indented JSON.
func JSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return nil
}

// Analysis renders a ranked task table.
func Analysis(w io.Writer, res *priority.AnalysisResult) error {
	out := lipgloss.JoinVertical(lipgloss.Left,
		heading(res.Strategy, res.Source, res.TotalTasks),
		rankingTable(res.Tasks),
	)
	return write(w, out)
}

// Suggestions renders one card per suggested task.
func Suggestions(w io.Writer, res *priority.SuggestionResult) error {
	blocks := []string{heading(res.Strategy, res.Source, res.TotalTasks)}
	for _, st := range res.Suggestions {
		blocks = append(blocks, card(st))
	}
	return write(w, lipgloss.JoinVertical(lipgloss.Left, blocks...))
}

// Comparison renders the score and position of every task under each
// strategy side by side.
func Comparison(w io.Writer, results []*priority.AnalysisResult) error {
	if len(results) == 0 {
		return write(w, styleLabel.Render("nothing to compare"))
	}

	type cell struct {
		pos   int
		score float64
	}
	byID := make(map[task.ID][]cell)
	titles := make(map[task.ID]string)
	for col, res := range results {
		for pos, st := range res.Tasks {
			if _, ok := byID[st.ID]; !ok {
				byID[st.ID] = make([]cell, len(results))
				titles[st.ID] = st.Title
			}
			byID[st.ID][col] = cell{pos: pos + 1, score: st.PriorityScore}
		}
	}

	headers := []string{"ID", "Title"}
	for _, res := range results {
		headers = append(headers, res.Strategy.String())
	}
	t := newTable(headers...)
	// Rows follow the first strategy's ranking.
	for _, st := range results[0].Tasks {
		row := []string{st.ID.String(), titles[st.ID]}
		for _, c := range byID[st.ID] {
			row = append(row, fmt.Sprintf("#%d %s", c.pos, scoreStyle(c.score).Render(formatScore(c.score))))
		}
		t.Row(row...)
	}

	title := styleTitle.Render("Strategy comparison") + " " +
		styleLabel.Render(fmt.Sprintf("(%s, %d tasks)", results[0].Source, results[0].TotalTasks))
	return write(w, lipgloss.JoinVertical(lipgloss.Left, title, t.String()))
}

// Plan renders a dependency-first ordering, or the cycles preventing one.
func Plan(w io.Writer, plan *analysis.Plan) error {
	var b strings.Builder
	if len(plan.Cycles) > 0 {
		b.WriteString(styleWarning.Render("Dependency cycles prevent an ordering:"))
		for _, c := range plan.Cycles {
			b.WriteString("\n  " + cycleMarker + " " + joinIDs(c, " → "))
		}
		return write(w, b.String())
	}
	b.WriteString(styleTitle.Render("Dependency order") + " " + styleLabel.Render("("+string(plan.Source)+")"))
	for i, id := range plan.Order {
		b.WriteString(fmt.Sprintf("\n  %2d. %s", i+1, id))
	}
	return write(w, b.String())
}

// Strategies renders the strategy catalog and marks the default.
func Strategies(w io.Writer, def priority.Strategy) error {
	t := newTable("Strategy", "Urgency", "Importance", "Effort", "Dependencies", "Description")
	for _, info := range priority.Catalog() {
		name := info.Name
		if name == def.String() {
			name += " *"
		}
		t.Row(name,
			formatWeight(info.Weights.Urgency),
			formatWeight(info.Weights.Importance),
			formatWeight(info.Weights.Effort),
			formatWeight(info.Weights.Dependency),
			info.Description,
		)
	}
	return write(w, lipgloss.JoinVertical(lipgloss.Left, t.String(), styleLabel.Render("* default")))
}

// Tasks renders stored tasks.
func Tasks(w io.Writer, tasks []task.Task) error {
	if len(tasks) == 0 {
		return write(w, styleLabel.Render("no tasks"))
	}
	t := newTable("ID", "Title", "Due", "Hours", "Importance", "Depends on")
	for _, tk := range tasks {
		t.Row(tk.ID.String(), tk.Title, tk.DueDate.String(),
			strconv.FormatFloat(tk.EstimatedHours, 'f', -1, 64),
			strconv.Itoa(tk.Importance), joinIDs(tk.Dependencies, ", "))
	}
	return write(w, t.String())
}

func heading(s priority.Strategy, src priority.Source, total int) string {
	return styleTitle.Render(s.String()) + " " +
		styleLabel.Render(fmt.Sprintf("(%s, %d tasks)", src, total))
}

func rankingTable(tasks []priority.ScoredTask) string {
	t := newTable("#", "ID", "Title", "Due", "Score", "Why")
	for i, st := range tasks {
		title := st.Title
		if st.HasCircularDependency {
			title += " " + cycleMarker
		}
		t.Row(strconv.Itoa(i+1), st.ID.String(), title, st.DueDate.String(),
			scoreStyle(st.PriorityScore).Render(formatScore(st.PriorityScore)), st.Explanation)
	}
	return t.String()
}

func card(st priority.ScoredTask) string {
	b := st.Breakdown
	lines := []string{
		styleTitle.Render(fmt.Sprintf("#%d %s", st.Rank, st.Title)) + " " +
			scoreStyle(st.PriorityScore).Render(formatScore(st.PriorityScore)),
		styleLabel.Render("id ") + st.ID.String() + styleLabel.Render("  due ") + st.DueDate.String(),
		styleLabel.Render(fmt.Sprintf("urgency %s  importance %s  effort %s  dependencies %s",
			formatScore(b.Urgency), formatScore(b.Importance), formatScore(b.Effort), formatScore(b.Dependency))),
		st.Recommendation,
	}
	if st.Explanation != "" {
		lines = append(lines, styleLabel.Render(st.Explanation))
	}
	if st.HasCircularDependency {
		lines = append(lines, styleWarning.Render(cycleMarker+" part of a dependency cycle"))
	}
	return styleCard.Render(strings.Join(lines, "\n"))
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(styleLabel).
		Headers(headers...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return styleHeader
			}
			return styleCell
		})
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}

func formatWeight(v float64) string {
	return strconv.FormatFloat(v*100, 'f', 0, 64) + "%"
}

func joinIDs(ids []task.ID, sep string) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = id.String()
	}
	return strings.Join(parts, sep)
}

func write(w io.Writer, s string) error {
	if _, err := fmt.Fprintln(w, s); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}
