// Package export writes the task table of a computed plan in tabular
// formats (CSV for spreadsheets, JSON for other tools).
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/YahyaHajji/Pert-Diagram-generation/internal/planner"
)

// Format names an export format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// Header is the first CSV record.
var Header = []string{"Task", "Duration", "Dependencies", "EST", "EFT", "LST", "LFT", "Float", "Critical"}

// ParseFormat validates a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatCSV, FormatJSON:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported export format %q (use csv or json)", s)
	}
}

// Write dispatches to the writer for f.
func Write(w io.Writer, plan *planner.ProjectPlan, f Format) error {
	switch f {
	case FormatCSV:
		return WriteCSV(w, plan)
	case FormatJSON:
		return WriteJSON(w, plan)
	default:
		return fmt.Errorf("unsupported export format %q", f)
	}
}

// WriteCSV writes one record per task in topological order. Dependencies
// are joined with commas inside a single quoted field.
func WriteCSV(w io.Writer, plan *planner.ProjectPlan) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range plan.Rows {
		record := []string{
			r.TaskID,
			plan.Format(r.Duration),
			strings.Join(r.Dependencies, ","),
			plan.Format(r.EST),
			plan.Format(r.EFT),
			plan.Format(r.LST),
			plan.Format(r.LFT),
			plan.Format(r.Float),
			strconv.FormatBool(r.Critical),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv row %s: %w", r.TaskID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// document is the JSON export shape.
type document struct {
	Summary       planner.Summary `json:"summary"`
	CriticalPaths [][]string      `json:"critical_paths"`
	Truncated     bool            `json:"truncated,omitempty"`
	Tasks         []planner.Row   `json:"tasks"`
}

// WriteJSON writes the summary, every critical chain, and the task rows.
func WriteJSON(w io.Writer, plan *planner.ProjectPlan) error {
	doc := document{
		Summary:       plan.Summary,
		CriticalPaths: plan.CriticalPaths,
		Truncated:     plan.Truncated,
		Tasks:         plan.Rows,
	}
	if doc.CriticalPaths == nil {
		doc.CriticalPaths = [][]string{}
	}
	if doc.Tasks == nil {
		doc.Tasks = []planner.Row{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode json export: %w", err)
	}
	return nil
}
