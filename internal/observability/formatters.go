// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jonathan/capacity-planner/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 64
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer

	box      lipgloss.Style
	title    lipgloss.Style
	dim      lipgloss.Style
	severity map[types.Severity]lipgloss.Style
	risk     map[types.RiskLevel]lipgloss.Style
}

// NewPrinter creates a new Printer that writes to the given writer. Colors are only
// emitted when out is a terminal.
func NewPrinter(out io.Writer) *Printer {
	r := lipgloss.NewRenderer(out)
	fg := func(c string) lipgloss.Style { return r.NewStyle().Foreground(lipgloss.Color(c)) }

	return &Printer{
		out: out,
		box: r.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("241")).
			Padding(0, 1).
			Width(boxWidth - 2),
		title: r.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		dim:   fg("240"),
		severity: map[types.Severity]lipgloss.Style{
			types.SeverityWarning:  fg("214"),
			types.SeverityCritical: fg("208"),
			types.SeveritySevere:   fg("196").Bold(true),
		},
		risk: map[types.RiskLevel]lipgloss.Style{
			types.RiskLow:      fg("86"),
			types.RiskMedium:   fg("214"),
			types.RiskHigh:     fg("208"),
			types.RiskCritical: fg("196").Bold(true),
		},
	}
}

// printBox prints a bordered box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	body := p.title.Render(title) + "\n\n" + content
	fmt.Fprintln(p.out, p.box.Render(body))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// PrintForecast outputs the headline numbers, bottlenecks, burnout risks and the
// capacity table of a forecast.
func (p *Printer) PrintForecast(result *types.ResourceForecastResult) {
	if result == nil {
		return
	}

	scope := result.ProjectID
	if scope == "" {
		scope = "portfolio"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Scope:        %s\n", scope))
	sb.WriteString(fmt.Sprintf("Horizon:      %d weeks\n", result.WeeksAhead))
	sb.WriteString(fmt.Sprintf("Resources:    %d (%d over-allocated)\n", result.Summary.TotalResources, result.Summary.OverAllocatedCount))
	sb.WriteString(fmt.Sprintf("Average load: %.2f%%", result.Summary.AverageUtilization))
	p.printBox("FORECAST SUMMARY", sb.String())

	p.PrintBottlenecks(result.Bottlenecks)
	p.PrintBurnoutRisks(result.BurnoutRisks)
	p.PrintCapacity(result.CapacityForecast)
	p.PrintSuggestions(result.RebalanceSuggestions)
}

// PrintBottlenecks lists flagged resource-weeks, worst first as given.
func (p *Printer) PrintBottlenecks(bottlenecks []types.BottleneckPrediction) {
	if len(bottlenecks) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Over-capacity weeks: %d\n\n", len(bottlenecks)))

	count := min(len(bottlenecks), maxItemsToShow)
	for i := 0; i < count; i++ {
		b := bottlenecks[i]
		sev := p.severity[b.Severity].Render(strings.ToUpper(b.Severity.String()))
		sb.WriteString(fmt.Sprintf("%s  %s  %6.1f%%  %s\n", b.Week, truncate(b.ResourceName, 20), b.Utilization, sev))

		names := make([]string, 0, len(b.ContributingTasks))
		for _, t := range b.ContributingTasks {
			names = append(names, fmt.Sprintf("%s %.1fh", t.TaskName, t.HoursPerWeek))
		}
		if len(names) > 0 {
			sb.WriteString(p.dim.Render("    "+truncate(strings.Join(names, ", "), boxWidth-10)) + "\n")
		}
	}
	if len(bottlenecks) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more", len(bottlenecks)-maxItemsToShow))
	}

	p.printBox("BOTTLENECKS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintBurnoutRisks lists resources with sustained overload.
func (p *Printer) PrintBurnoutRisks(risks []types.BurnoutRisk) {
	if len(risks) == 0 {
		return
	}

	var sb strings.Builder
	for i, r := range risks {
		level := p.risk[r.RiskLevel].Render(strings.ToUpper(r.RiskLevel.String()))
		sb.WriteString(fmt.Sprintf("• %s: %d consecutive weeks, avg %.1f%%  %s", truncate(r.ResourceName, 24), r.ConsecutiveOverloadWeeks, r.AverageUtilization, level))
		if i < len(risks)-1 {
			sb.WriteString("\n")
		}
	}

	p.printBox("BURNOUT RISKS", sb.String())
}

// PrintCapacity outputs one row per horizon week.
func (p *Printer) PrintCapacity(weeks []types.CapacityWeek) {
	if len(weeks) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString(p.dim.Render(fmt.Sprintf("%-10s %9s %9s %9s %9s", "week", "capacity", "allocated", "surplus", "deficit")))
	for _, w := range weeks {
		sb.WriteString(fmt.Sprintf("\n%-10s %9.1f %9.1f %9.1f %9.1f", w.Week, w.TotalCapacity, w.TotalAllocated, w.Surplus, w.Deficit))
	}

	p.printBox("CAPACITY FORECAST", sb.String())
}

// PrintSuggestions outputs advisory rebalance suggestions.
func (p *Printer) PrintSuggestions(suggestions []types.RebalanceSuggestion) {
	if len(suggestions) == 0 {
		return
	}

	var sb strings.Builder
	count := min(len(suggestions), maxItemsToShow)
	for i := 0; i < count; i++ {
		s := suggestions[i]
		sb.WriteString(fmt.Sprintf("%d. [%s] %s\n", i+1, s.Type, truncate(s.Description, boxWidth-12)))
		sb.WriteString(p.dim.Render(fmt.Sprintf("   impact: %s (confidence %d%%)", truncate(s.EstimatedImpact, 30), s.Confidence)))
		if i < count-1 {
			sb.WriteString("\n")
		}
	}
	if len(suggestions) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more", len(suggestions)-maxItemsToShow))
	}

	p.printBox("REBALANCE SUGGESTIONS", sb.String())
}

// PrintMatches outputs the ranked candidates for a task.
func (p *Printer) PrintMatches(task *types.Task, matches []types.SkillMatch) {
	if task == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Task: %s (%s)\n\n", truncate(task.Name, 40), task.ID))
	if len(matches) == 0 {
		sb.WriteString("No active resources")
	}

	count := min(len(matches), maxItemsToShow)
	for i := 0; i < count; i++ {
		m := matches[i]
		sb.WriteString(fmt.Sprintf("#%d  %-20s score %3d  available %5.1fh", i+1, truncate(m.ResourceName, 20), m.MatchScore, m.AvailableCapacity))
		if len(m.MatchedSkills) > 0 {
			sb.WriteString("\n" + p.dim.Render("    "+truncate(strings.Join(m.MatchedSkills, ", "), 40)))
		}
		if i < count-1 {
			sb.WriteString("\n")
		}
	}
	if len(matches) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more", len(matches)-maxItemsToShow))
	}

	p.printBox("SKILL MATCHES", sb.String())
}
