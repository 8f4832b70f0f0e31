package planner

import "time"

// ProjectPlan is the presentation model of a computed schedule: one row per
// task plus the project summary. It is what the export, report and viewer
// collaborators consume.
type ProjectPlan struct {
	ID            string     `json:"id"`
	CreatedAt     time.Time  `json:"created_at"`
	Summary       Summary    `json:"summary"`
	Rows          []Row      `json:"rows"`
	Waves         []PlanWave `json:"waves"`
	CriticalPath  []string   `json:"critical_path"`
	CriticalPaths [][]string `json:"critical_paths"`
	Truncated     bool       `json:"truncated,omitempty"`
	Config        PlanConfig `json:"config"`
}

// Summary holds the headline numbers of a project.
type Summary struct {
	ProjectDuration  float64 `json:"project_duration"`
	CriticalPath     string  `json:"critical_path"`
	NumTasks         int     `json:"num_tasks"`
	NumCriticalTasks int     `json:"num_critical_tasks"`
}

// Row is one line of the task table.
type Row struct {
	TaskID       string   `json:"task"`
	Duration     float64  `json:"duration"`
	Dependencies []string `json:"dependencies"`
	EST          float64  `json:"est"`
	EFT          float64  `json:"eft"`
	LST          float64  `json:"lst"`
	LFT          float64  `json:"lft"`
	Float        float64  `json:"float"`
	Critical     bool     `json:"critical"`
	Wave         int      `json:"wave"`
}

// PlanWave is a group of tasks that may start at the same time.
type PlanWave struct {
	Index   int      `json:"index"`
	Start   float64  `json:"start"`
	TaskIDs []string `json:"task_ids"`
}

// PlanConfig holds presentation settings.
type PlanConfig struct {
	Unit               string `json:"unit"`
	Precision          int    `json:"precision"`
	PageSize           int    `json:"page_size"`
	ReportTemplatePath string `json:"report_template_path,omitempty"`
}
