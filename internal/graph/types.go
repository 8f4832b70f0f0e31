package graph

import "github.com/YahyaHajji/Pert-Diagram-generation/internal/project"

// TaskGraph is a validated directed acyclic graph of tasks. An edge p -> s
// exists iff s lists p as a predecessor.
type TaskGraph struct {
	Tasks  map[string]*project.Task
	Adj    map[string][]string // task -> successors
	RevAdj map[string][]string // task -> predecessors
	Roots  []string            // tasks with no predecessors
	Leaves []string            // tasks with no successors
	Order  []string            // topological order, ties broken by id
}
