package planner

import (
	"bytes"
	"os"
	"strings"
	"text/template"
)

const defaultReportTemplate = `PERT PROJECT REPORT
===================

Plan: {{.Plan.ID}}
Date: {{.Date}}

PROJECT SUMMARY
Total Duration: {{dur .Plan.Summary.ProjectDuration}} {{.Plan.Config.Unit}}
Critical Path:  {{.Plan.Summary.CriticalPath}}
{{- range $i, $p := .Alternates}}
Also Critical:  {{path $p}}
{{- end}}
{{- if .Plan.Truncated}}
(critical path list truncated)
{{- end}}
Total Tasks:    {{.Plan.Summary.NumTasks}}
Critical Tasks: {{.Plan.Summary.NumCriticalTasks}}
{{range .Pages}}{{if gt .Number 1}}` + "\f" + `{{end}}
TASK DETAILS
------------

{{printf "%-10s %-10s %-8s %-8s %-8s %-8s %-8s %-8s %s" "Task" "Duration" "EST" "EFT" "LST" "LFT" "Float" "Critical" "Dependencies"}}
{{printf "%-10s %-10s %-8s %-8s %-8s %-8s %-8s %-8s %s" "----------" "----------" "--------" "--------" "--------" "--------" "--------" "--------" "--------------------"}}
{{range .Rows}}{{printf "%-10s %-10s %-8s %-8s %-8s %-8s %-8s %-8s %s" .TaskID (dur .Duration) (dur .EST) (dur .EFT) (dur .LST) (dur .LFT) (dur .Float) (yesno .Critical) (join .Dependencies)}}
{{end}}
Page {{.Number}} of {{.Total}}
{{end}}`

// ReportData is what report templates are executed with.
type ReportData struct {
	Plan       *ProjectPlan
	Date       string
	Alternates [][]string // critical chains other than the preferred one
	Pages      []ReportPage
}

// ReportPage is one page of the task table.
type ReportPage struct {
	Number int
	Total  int
	Rows   []Row
}

// RenderReport renders the paginated text report using either a custom
// template file or the default. Pages are separated by form feeds.
func RenderReport(plan *ProjectPlan, templatePath string) (string, error) {
	tmplStr := defaultReportTemplate
	if templatePath != "" {
		content, err := os.ReadFile(templatePath)
		if err != nil {
			return "", err
		}
		tmplStr = string(content)
	}

	funcs := template.FuncMap{
		"dur":   plan.Format,
		"join":  func(ids []string) string { return strings.Join(ids, ", ") },
		"path":  func(ids []string) string { return strings.Join(ids, PathSeparator) },
		"yesno": yesNo,
	}
	tmpl, err := template.New("report").Funcs(funcs).Parse(tmplStr)
	if err != nil {
		return "", err
	}

	data := ReportData{
		Plan: plan,
		Date: plan.CreatedAt.Format("2006-01-02 15:04:05"),
	}
	if len(plan.CriticalPaths) > 1 {
		data.Alternates = plan.CriticalPaths[1:]
	}
	pages := plan.Pages()
	if len(pages) == 0 {
		pages = [][]Row{nil}
	}
	for i, rows := range pages {
		data.Pages = append(data.Pages, ReportPage{Number: i + 1, Total: len(pages), Rows: rows})
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
