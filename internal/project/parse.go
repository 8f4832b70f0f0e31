package project

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"
)

// Load reads a project file. YAML is chosen by extension; anything else is
// parsed as JSON.
func Load(path string) ([]Task, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read project file: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ParseYAML(data)
	default:
		return ParseJSON(data)
	}
}

// ParseJSON accepts either a bare array of tasks or an object with a
// "tasks" array. Field names follow the ones exported by the web form:
// "id" or "task_id", "duration" as number or text, and dependencies as an
// array or a comma separated string under "predecessors", "dependencies"
// or "deps".
func ParseJSON(data []byte) ([]Task, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("parse project: invalid JSON")
	}
	root := gjson.ParseBytes(data)
	list := root
	if root.IsObject() {
		list = root.Get("tasks")
	}
	if !list.IsArray() {
		return nil, fmt.Errorf("parse project: expected an array of tasks")
	}

	var tasks []Task
	var perr error
	list.ForEach(func(key, item gjson.Result) bool {
		t, err := taskFromJSON(item)
		if err != nil {
			perr = fmt.Errorf("parse project: task #%d: %w", key.Int(), err)
			return false
		}
		tasks = append(tasks, t)
		return true
	})
	if perr != nil {
		return nil, perr
	}
	return tasks, nil
}

func taskFromJSON(item gjson.Result) (Task, error) {
	if !item.IsObject() {
		return Task{}, fmt.Errorf("expected an object")
	}
	id := item.Get("id")
	if !id.Exists() {
		id = item.Get("task_id")
	}
	t := Task{ID: strings.TrimSpace(id.String())}

	dur := item.Get("duration")
	switch dur.Type {
	case gjson.Number:
		t.Duration = dur.Float()
	case gjson.String:
		d, err := ParseDuration(dur.String())
		if err != nil {
			return Task{}, err
		}
		t.Duration = d
	case gjson.Null:
		return Task{}, &FieldError{TaskID: t.ID, Field: "duration", Reason: "is required"}
	default:
		return Task{}, fmt.Errorf("duration must be a number")
	}

	for _, key := range []string{"predecessors", "dependencies", "deps"} {
		deps := item.Get(key)
		if !deps.Exists() {
			continue
		}
		if deps.IsArray() {
			for _, d := range deps.Array() {
				if s := strings.TrimSpace(d.String()); s != "" {
					t.Predecessors = append(t.Predecessors, s)
				}
			}
		} else {
			t.Predecessors = SplitDependencies(deps.String())
		}
		break
	}
	return t, nil
}

type yamlTask struct {
	ID           string   `yaml:"id"`
	TaskID       string   `yaml:"task_id"`
	Duration     *float64 `yaml:"duration"`
	Predecessors []string `yaml:"predecessors"`
	Dependencies []string `yaml:"dependencies"`
}

type yamlProject struct {
	Tasks []yamlTask `yaml:"tasks"`
}

// ParseYAML accepts a document with a top level "tasks" list or a bare list.
func ParseYAML(data []byte) ([]Task, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse project: %w", err)
	}
	if len(doc.Content) == 0 {
		return nil, nil
	}

	var raw []yamlTask
	switch doc.Content[0].Kind {
	case yaml.SequenceNode:
		if err := doc.Content[0].Decode(&raw); err != nil {
			return nil, fmt.Errorf("parse project: %w", err)
		}
	case yaml.MappingNode:
		var p yamlProject
		if err := doc.Content[0].Decode(&p); err != nil {
			return nil, fmt.Errorf("parse project: %w", err)
		}
		raw = p.Tasks
	default:
		return nil, fmt.Errorf("parse project: expected a list of tasks")
	}

	tasks := make([]Task, 0, len(raw))
	for i, r := range raw {
		id := r.ID
		if id == "" {
			id = r.TaskID
		}
		id = strings.TrimSpace(id)
		if r.Duration == nil {
			return nil, fmt.Errorf("parse project: task #%d: %w", i, &FieldError{TaskID: id, Field: "duration", Reason: "is required"})
		}
		deps := r.Predecessors
		if len(deps) == 0 {
			deps = r.Dependencies
		}
		tasks = append(tasks, Task{ID: id, Duration: *r.Duration, Predecessors: deps})
	}
	return tasks, nil
}

// ParseTaskInput converts the three text fields of the task entry form
// into a Task. The result is validated as a record; cross-task checks are
// left to graph construction.
func ParseTaskInput(id, durationText, depsText string) (Task, error) {
	t := Task{ID: strings.TrimSpace(id)}
	if t.ID == "" {
		return Task{}, &FieldError{Field: "id", Reason: "is required"}
	}
	d, err := ParseDuration(durationText)
	if err != nil {
		return Task{}, &FieldError{TaskID: t.ID, Field: "duration", Reason: err.Error()}
	}
	t.Duration = d
	t.Predecessors = SplitDependencies(depsText)
	if err := t.Validate(); err != nil {
		return Task{}, err
	}
	return t, nil
}

// ParseDuration parses a duration written as plain decimal text.
func ParseDuration(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("must be a number")
	}
	d, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("must be a number")
	}
	return d, nil
}

// SplitDependencies splits "A, B,,C" into [A B C].
func SplitDependencies(s string) []string {
	var deps []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			deps = append(deps, p)
		}
	}
	return deps
}
