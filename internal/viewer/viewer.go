// Package viewer turns a computed plan into a diagram: a normalised node
// and edge model, Graphviz DOT and ASCII renderings, and an HTTP API that
// serves them.
package viewer

import (
	"sort"
	"time"

	"github.com/YahyaHajji/Pert-Diagram-generation/internal/planner"
)

// GraphNode is a task annotated with its schedule entry.
type GraphNode struct {
	ID         string  `json:"id"`
	Duration   float64 `json:"duration"`
	EST        float64 `json:"est"`
	EFT        float64 `json:"eft"`
	LST        float64 `json:"lst"`
	LFT        float64 `json:"lft"`
	Float      float64 `json:"float"`
	IsCritical bool    `json:"is_critical"`
	WaveIndex  int     `json:"wave_index"`
}

// GraphEdge is a dependency. Critical is set when the edge lies on a
// reported critical chain.
type GraphEdge struct {
	From     string `json:"from"`
	To       string `json:"to"`
	Critical bool   `json:"critical"`
}

type GraphMetadata struct {
	ID              string  `json:"id"`
	CreatedAt       string  `json:"created_at"`
	ProjectDuration float64 `json:"project_duration"`
	Unit            string  `json:"unit"`
	TotalTasks      int     `json:"total_tasks"`
	TotalWaves      int     `json:"total_waves"`
}

type Graph struct {
	Nodes         []GraphNode   `json:"nodes"`
	Edges         []GraphEdge   `json:"edges"`
	CriticalPath  []string      `json:"critical_path"`
	CriticalPaths [][]string    `json:"critical_paths"`
	Metadata      GraphMetadata `json:"metadata"`
}

// ToGraph converts a plan into the Graph the renderers consume. Nodes
// follow the plan's topological row order; edges are grouped by their
// target in the same order.
func ToGraph(plan *planner.ProjectPlan) *Graph {
	onChain := make(map[[2]string]bool)
	for _, p := range plan.CriticalPaths {
		for i := 0; i+1 < len(p); i++ {
			onChain[[2]string{p[i], p[i+1]}] = true
		}
	}

	nodes := make([]GraphNode, 0, len(plan.Rows))
	edges := make([]GraphEdge, 0)
	for _, r := range plan.Rows {
		nodes = append(nodes, GraphNode{
			ID:         r.TaskID,
			Duration:   r.Duration,
			EST:        r.EST,
			EFT:        r.EFT,
			LST:        r.LST,
			LFT:        r.LFT,
			Float:      r.Float,
			IsCritical: r.Critical,
			WaveIndex:  r.Wave,
		})
		for _, pred := range r.Dependencies {
			edges = append(edges, GraphEdge{
				From:     pred,
				To:       r.TaskID,
				Critical: onChain[[2]string{pred, r.TaskID}],
			})
		}
	}

	cp := append([]string{}, plan.CriticalPath...)
	cps := make([][]string, 0, len(plan.CriticalPaths))
	for _, p := range plan.CriticalPaths {
		cps = append(cps, append([]string(nil), p...))
	}

	return &Graph{
		Nodes:         nodes,
		Edges:         edges,
		CriticalPath:  cp,
		CriticalPaths: cps,
		Metadata: GraphMetadata{
			ID:              plan.ID,
			CreatedAt:       plan.CreatedAt.Format(time.RFC3339),
			ProjectDuration: plan.Summary.ProjectDuration,
			Unit:            plan.Config.Unit,
			TotalTasks:      len(plan.Rows),
			TotalWaves:      len(plan.Waves),
		},
	}
}

// successors returns the adjacency list implied by the edges, each list
// sorted by id.
func (g *Graph) successors() map[string][]string {
	adj := make(map[string][]string, len(g.Nodes))
	for _, e := range g.Edges {
		adj[e.From] = append(adj[e.From], e.To)
	}
	for id := range adj {
		sort.Strings(adj[id])
	}
	return adj
}

func (g *Graph) node(id string) (GraphNode, bool) {
	for _, n := range g.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return GraphNode{}, false
}
