package reporter

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/YahyaHajji/Pert-Diagram-generation/internal/planner"
	"github.com/YahyaHajji/Pert-Diagram-generation/internal/ui"
)

var (
	borderColor   = lipgloss.Color("#666666")
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5FAFAF")).Padding(0, 1)
	cellStyle     = lipgloss.NewStyle().Padding(0, 1)
	criticalStyle = cellStyle.Foreground(lipgloss.Color("#AF5F5F")).Bold(true)
)

// Reporter renders a computed plan for the terminal.
type Reporter struct {
	Plan *planner.ProjectPlan
}

// New creates a new Reporter.
func New(plan *planner.ProjectPlan) *Reporter {
	return &Reporter{Plan: plan}
}

// PrintSchedule writes the project summary, the waves, and the task table.
func (r *Reporter) PrintSchedule(w io.Writer) {
	fmt.Fprint(w, r.Summary())
	fmt.Fprintln(w)

	for _, wave := range r.Plan.Waves {
		fmt.Fprintf(w, "🌊 %s %d %s\n", ui.BoldWhite("Wave"), wave.Index+1,
			ui.Dim(fmt.Sprintf("(starts at %s, %d tasks)", r.Plan.Format(wave.Start), len(wave.TaskIDs))))
		for _, id := range wave.TaskIDs {
			row, _ := r.Plan.Row(id)
			fmt.Fprintf(w, "  %s %s %s\n", ui.CriticalMarker(row.Critical), ui.TaskPrefix(id),
				ui.Dim(fmt.Sprintf("dur %s, float %s", r.Plan.Format(row.Duration), r.Plan.Format(row.Float))))
		}
	}
	if len(r.Plan.Waves) > 0 {
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, r.Table())
}

// Summary returns the headline block: duration, critical path(s) and counts.
func (r *Reporter) Summary() string {
	var b strings.Builder
	s := r.Plan.Summary

	fmt.Fprintf(&b, "🎯 %s\n", ui.BoldCyan("PERT Project Schedule"))
	fmt.Fprintf(&b, "%s\n", ui.Cyan("═════════════════════"))
	fmt.Fprintf(&b, "Plan:      %s\n", ui.Dim(r.Plan.ID))
	fmt.Fprintf(&b, "Duration:  %s %s\n", ui.Bold(r.Plan.Format(s.ProjectDuration)), r.Plan.Config.Unit)
	fmt.Fprintf(&b, "Tasks:     %d total, %s\n", s.NumTasks, ui.BoldYellow(fmt.Sprintf("%d critical", s.NumCriticalTasks)))
	if s.CriticalPath != "" {
		fmt.Fprintf(&b, "⚡ Critical path: %s\n", ui.BoldYellow(s.CriticalPath))
	}
	if len(r.Plan.CriticalPaths) > 1 {
		for _, p := range r.Plan.CriticalPaths[1:] {
			fmt.Fprintf(&b, "   also:          %s\n", ui.Yellow(strings.Join(p, planner.PathSeparator)))
		}
	}
	if r.Plan.Truncated {
		fmt.Fprintf(&b, "   %s\n", ui.Dim("(critical path list truncated)"))
	}
	return b.String()
}

// Table renders the task table with critical rows highlighted.
func (r *Reporter) Table() string {
	rows := make([][]string, 0, len(r.Plan.Rows))
	for _, row := range r.Plan.Rows {
		crit := ""
		if row.Critical {
			crit = "⚡"
		}
		rows = append(rows, []string{
			row.TaskID,
			r.Plan.Format(row.Duration),
			strings.Join(row.Dependencies, ", "),
			r.Plan.Format(row.EST),
			r.Plan.Format(row.EFT),
			r.Plan.Format(row.LST),
			r.Plan.Format(row.LFT),
			ui.FloatBadge(row.Float, r.Plan.Format(row.Float)),
			crit,
		})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(borderColor)).
		Headers("TASK", "DUR", "DEPENDS ON", "EST", "EFT", "LST", "LFT", "FLOAT", "CRIT").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if row >= 0 && row < len(r.Plan.Rows) && r.Plan.Rows[row].Critical {
				return criticalStyle
			}
			return cellStyle
		})
	return t.String()
}

// JSON returns the machine-readable schedule.
func (r *Reporter) JSON() ([]byte, error) {
	type output struct {
		PlanID          string        `json:"plan_id"`
		ProjectDuration float64       `json:"project_duration"`
		Unit            string        `json:"unit"`
		CriticalPath    []string      `json:"critical_path"`
		CriticalPaths   [][]string    `json:"critical_paths"`
		Truncated       bool          `json:"truncated,omitempty"`
		TotalTasks      int           `json:"total_tasks"`
		CriticalTasks   int           `json:"critical_tasks"`
		Tasks           []planner.Row `json:"tasks"`
	}

	o := output{
		PlanID:          r.Plan.ID,
		ProjectDuration: r.Plan.Summary.ProjectDuration,
		Unit:            r.Plan.Config.Unit,
		CriticalPath:    r.Plan.CriticalPath,
		CriticalPaths:   r.Plan.CriticalPaths,
		Truncated:       r.Plan.Truncated,
		TotalTasks:      r.Plan.Summary.NumTasks,
		CriticalTasks:   r.Plan.Summary.NumCriticalTasks,
		Tasks:           r.Plan.Rows,
	}
	if o.CriticalPath == nil {
		o.CriticalPath = []string{}
	}
	if o.CriticalPaths == nil {
		o.CriticalPaths = [][]string{}
	}
	if o.Tasks == nil {
		o.Tasks = []planner.Row{}
	}

	return json.MarshalIndent(o, "", "  ")
}
