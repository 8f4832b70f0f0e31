package planner

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/YahyaHajji/Pert-Diagram-generation/internal/cpm"
	"github.com/YahyaHajji/Pert-Diagram-generation/internal/project"
)

// PathSeparator joins task ids when a critical path is shown as text.
const PathSeparator = " → "

// FromTasks runs the scheduling pipeline on tasks and returns the plan
// alongside the schedule it was generated from.
func FromTasks(tasks []project.Task, config PlanConfig, opts ...cpm.Option) (*ProjectPlan, *cpm.Schedule, error) {
	sched, err := cpm.Compute(tasks, opts...)
	if err != nil {
		return nil, nil, err
	}
	return Generate(sched, config), sched, nil
}

// Generate creates a ProjectPlan from a computed schedule.
func Generate(sched *cpm.Schedule, config PlanConfig) *ProjectPlan {
	if config.Unit == "" {
		config.Unit = "days"
	}
	if config.Precision <= 0 {
		config.Precision = 1
	}
	if config.PageSize <= 0 {
		config.PageSize = 40
	}

	now := time.Now()
	plan := &ProjectPlan{
		ID:           fmt.Sprintf("pert-%s", strings.SplitN(uuid.NewString(), "-", 2)[0]),
		CreatedAt:    now,
		CriticalPath: append([]string(nil), sched.CriticalPath...),
		Truncated:    sched.Truncated,
		Config:       config,
		Summary: Summary{
			ProjectDuration:  sched.ProjectDuration,
			CriticalPath:     strings.Join(sched.CriticalPath, PathSeparator),
			NumTasks:         len(sched.Entries),
			NumCriticalTasks: len(sched.CriticalTasks),
		},
	}

	for _, p := range sched.CriticalPaths {
		plan.CriticalPaths = append(plan.CriticalPaths, append([]string(nil), p...))
	}

	for _, e := range sched.Rows() {
		plan.Rows = append(plan.Rows, Row{
			TaskID:       e.TaskID,
			Duration:     e.Duration,
			Dependencies: append([]string{}, e.Predecessors...),
			EST:          e.EST,
			EFT:          e.EFT,
			LST:          e.LST,
			LFT:          e.LFT,
			Float:        e.Float,
			Critical:     e.IsCritical,
			Wave:         e.Wave,
		})
	}

	for _, w := range sched.Waves {
		plan.Waves = append(plan.Waves, PlanWave{
			Index:   w.Index,
			Start:   w.Start,
			TaskIDs: append([]string(nil), w.TaskIDs...),
		})
	}

	return plan
}

// Row returns the row for id.
func (p *ProjectPlan) Row(id string) (Row, bool) {
	for _, r := range p.Rows {
		if r.TaskID == id {
			return r, true
		}
	}
	return Row{}, false
}

// Pages splits the rows into chunks of the configured page size.
func (p *ProjectPlan) Pages() [][]Row {
	size := p.Config.PageSize
	if size <= 0 {
		size = len(p.Rows)
	}
	var pages [][]Row
	for start := 0; start < len(p.Rows); start += size {
		end := start + size
		if end > len(p.Rows) {
			end = len(p.Rows)
		}
		pages = append(pages, p.Rows[start:end])
	}
	return pages
}

// FormatDuration prints integral values without decimals and everything
// else with the given precision: 3 -> "3", 2.5 -> "2.5".
func FormatDuration(v float64, precision int) string {
	if v == math.Trunc(v) && !math.IsInf(v, 0) {
		return strconv.FormatFloat(v, 'f', 0, 64)
	}
	return strconv.FormatFloat(v, 'f', precision, 64)
}

// Format applies FormatDuration with the plan's precision.
func (p *ProjectPlan) Format(v float64) string {
	return FormatDuration(v, p.Config.Precision)
}
