package graph

import (
	"container/heap"
	"fmt"
	"sort"

	"github.com/YahyaHajji/Pert-Diagram-generation/internal/project"
)

// Build validates the task records and assembles them into a TaskGraph.
// Records are checked individually first, then for duplicate ids, unknown
// predecessors and finally cycles. The caller's slice is not retained.
func Build(tasks []project.Task) (*TaskGraph, error) {
	g := &TaskGraph{
		Tasks:  make(map[string]*project.Task, len(tasks)),
		Adj:    make(map[string][]string),
		RevAdj: make(map[string][]string),
	}

	for i := range tasks {
		if err := tasks[i].Validate(); err != nil {
			return nil, &InvalidTaskError{TaskID: tasks[i].ID, Err: err}
		}
	}

	// Index all tasks
	for i := range tasks {
		id := tasks[i].ID
		if _, ok := g.Tasks[id]; ok {
			return nil, &DuplicateIDError{ID: id}
		}
		t := tasks[i].Clone()
		g.Tasks[id] = &t
	}

	// Resolve predecessors in input order so the first bad reference is the
	// one reported.
	for i := range tasks {
		id := tasks[i].ID
		seen := make(map[string]bool, len(tasks[i].Predecessors))
		for _, pred := range tasks[i].Predecessors {
			if _, ok := g.Tasks[pred]; !ok {
				return nil, &UnknownDependencyError{TaskID: id, DependencyID: pred}
			}
			if seen[pred] {
				continue
			}
			seen[pred] = true
			g.Adj[pred] = append(g.Adj[pred], id)
			g.RevAdj[id] = append(g.RevAdj[id], pred)
		}
	}

	// Sort adjacency lists for deterministic ordering
	for k := range g.Adj {
		sort.Strings(g.Adj[k])
	}
	for k := range g.RevAdj {
		sort.Strings(g.RevAdj[k])
	}
	for _, t := range g.Tasks {
		t.Predecessors = g.RevAdj[t.ID]
	}

	for id := range g.Tasks {
		if len(g.RevAdj[id]) == 0 {
			g.Roots = append(g.Roots, id)
		}
		if len(g.Adj[id]) == 0 {
			g.Leaves = append(g.Leaves, id)
		}
	}
	sort.Strings(g.Roots)
	sort.Strings(g.Leaves)

	if cycle := g.DetectCycle(); cycle != nil {
		return nil, &CycleError{Cycle: cycle}
	}

	order, err := g.topoSort()
	if err != nil {
		return nil, err
	}
	g.Order = order

	return g, nil
}

// DetectCycle returns the cycle path if one exists, or nil if the graph is acyclic.
// Uses DFS with coloring: white (unvisited), gray (in progress), black (done).
// The traversal keeps an explicit stack so deep chains cannot exhaust the
// goroutine stack.
func (g *TaskGraph) DetectCycle() []string {
	const (
		white = 0
		gray  = 1
		black = 2
	)

	type frame struct {
		node string
		next int
	}

	color := make(map[string]int, len(g.Tasks))

	// Sort keys for deterministic detection
	ids := make([]string, 0, len(g.Tasks))
	for id := range g.Tasks {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, start := range ids {
		if color[start] != white {
			continue
		}
		stack := []frame{{node: start}}
		color[start] = gray

		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			succ := g.Adj[top.node]
			if top.next >= len(succ) {
				color[top.node] = black
				stack = stack[:len(stack)-1]
				continue
			}
			next := succ[top.next]
			top.next++

			switch color[next] {
			case gray:
				// The in-progress path from next to the top of the stack
				// plus the closing edge is the cycle.
				var cycle []string
				for i := len(stack) - 1; i >= 0; i-- {
					if stack[i].node == next {
						for _, f := range stack[i:] {
							cycle = append(cycle, f.node)
						}
						break
					}
				}
				return append(cycle, next)
			case white:
				color[next] = gray
				stack = append(stack, frame{node: next})
			}
		}
	}
	return nil
}

type idHeap []string

func (h idHeap) Len() int           { return len(h) }
func (h idHeap) Less(i, j int) bool { return h[i] < h[j] }
func (h idHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *idHeap) Push(x any)        { *h = append(*h, x.(string)) }
func (h *idHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// topoSort performs Kahn's algorithm. The ready set is a min-heap so that
// among tasks that are ready at the same time the smallest id comes first.
func (g *TaskGraph) topoSort() ([]string, error) {
	inDegree := make(map[string]int, len(g.Tasks))
	ready := &idHeap{}
	for id := range g.Tasks {
		inDegree[id] = len(g.RevAdj[id])
		if inDegree[id] == 0 {
			*ready = append(*ready, id)
		}
	}
	heap.Init(ready)

	order := make([]string, 0, len(g.Tasks))
	for ready.Len() > 0 {
		node := heap.Pop(ready).(string)
		order = append(order, node)
		for _, succ := range g.Adj[node] {
			inDegree[succ]--
			if inDegree[succ] == 0 {
				heap.Push(ready, succ)
			}
		}
	}

	if len(order) != len(g.Tasks) {
		return nil, fmt.Errorf("topological sort failed: %d of %d tasks sorted", len(order), len(g.Tasks))
	}
	return order, nil
}

// TaskCount returns the number of tasks in the graph.
func (g *TaskGraph) TaskCount() int {
	return len(g.Tasks)
}

// Predecessors returns the direct predecessors of id, sorted.
func (g *TaskGraph) Predecessors(id string) []string {
	return g.RevAdj[id]
}

// Successors returns the direct successors of id, sorted.
func (g *TaskGraph) Successors(id string) []string {
	return g.Adj[id]
}

// TopoOrder returns the deterministic topological order.
func (g *TaskGraph) TopoOrder() []string {
	return g.Order
}

// Duration returns the duration of id, or 0 for an unknown id.
func (g *TaskGraph) Duration(id string) float64 {
	if t, ok := g.Tasks[id]; ok {
		return t.Duration
	}
	return 0
}
