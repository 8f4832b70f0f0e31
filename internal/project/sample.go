package project

import (
	"encoding/json"

	"gopkg.in/yaml.v3"
)

// Sample returns the demonstration project. A fresh slice is returned on
// every call.
func Sample() []Task {
	return []Task{
		{ID: "A", Duration: 3},
		{ID: "B", Duration: 4, Predecessors: []string{"A"}},
		{ID: "C", Duration: 2, Predecessors: []string{"A"}},
		{ID: "D", Duration: 5, Predecessors: []string{"B"}},
		{ID: "E", Duration: 6, Predecessors: []string{"C"}},
		{ID: "F", Duration: 4, Predecessors: []string{"D", "E"}},
		{ID: "G", Duration: 3, Predecessors: []string{"F"}},
	}
}

type document struct {
	Tasks []Task `json:"tasks" yaml:"tasks"`
}

// MarshalJSON renders tasks in the format ParseJSON reads.
func MarshalJSON(tasks []Task) ([]byte, error) {
	return json.MarshalIndent(document{Tasks: tasks}, "", "  ")
}

// MarshalYAML renders tasks in the format ParseYAML reads.
func MarshalYAML(tasks []Task) ([]byte, error) {
	return yaml.Marshal(document{Tasks: tasks})
}
