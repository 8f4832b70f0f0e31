package cpm

import (
	"fmt"
	"math"
	"sort"

	"github.com/YahyaHajji/Pert-Diagram-generation/internal/graph"
	"github.com/YahyaHajji/Pert-Diagram-generation/internal/project"
)

// Epsilon is the relative tolerance for comparing times. The absolute
// tolerance of a schedule is Epsilon scaled by its duration (see
// Tolerance); floats within it are reported as exactly zero.
const Epsilon = 1e-9

// Tolerance returns the absolute tolerance for a schedule of the given
// duration. Rounding error in EST+d-d grows with the magnitude of the
// times, so a fixed bound stops absorbing it on long projects.
func Tolerance(projectDuration float64) float64 {
	return Epsilon * math.Max(1, math.Abs(projectDuration))
}

// DefaultMaxCriticalPaths bounds chain enumeration on graphs with many
// parallel zero-float branches.
const DefaultMaxCriticalPaths = 64

type options struct {
	maxPaths int
}

// Option tunes Analyze and Compute.
type Option func(*options)

// WithMaxCriticalPaths caps the number of critical chains reported. A value
// of zero or less removes the cap.
func WithMaxCriticalPaths(n int) Option {
	return func(o *options) { o.maxPaths = n }
}

// Compute runs the whole pipeline: build, forward, backward, extract.
func Compute(tasks []project.Task, opts ...Option) (*Schedule, error) {
	g, err := graph.Build(tasks)
	if err != nil {
		return nil, err
	}
	return Analyze(g, opts...)
}

// Analyze performs critical path method analysis on a validated task graph.
func Analyze(g *graph.TaskGraph, opts ...Option) (*Schedule, error) {
	o := options{maxPaths: DefaultMaxCriticalPaths}
	for _, opt := range opts {
		opt(&o)
	}

	order := g.TopoOrder()
	if len(order) != g.TaskCount() {
		return nil, fmt.Errorf("%w: topological order covers %d of %d tasks", ErrInternal, len(order), g.TaskCount())
	}

	fwd := Forward(g)
	total := ProjectDuration(fwd)
	bwd := Backward(g, fwd, total)

	floats, paths, truncated, err := extract(g, fwd, bwd, o.maxPaths)
	if err != nil {
		return nil, err
	}

	result := &Schedule{
		Entries:         make(map[string]Entry, len(order)),
		ProjectDuration: total,
		CriticalPaths:   paths,
		Truncated:       truncated,
		TopoOrder:       append([]string(nil), order...),
	}

	for _, id := range order {
		f := floats[id]
		result.Entries[id] = Entry{
			TaskID:       id,
			Duration:     g.Duration(id),
			Predecessors: append([]string(nil), g.Predecessors(id)...),
			EST:          fwd[id].EST,
			EFT:          fwd[id].EFT,
			LST:          bwd[id].LST,
			LFT:          bwd[id].LFT,
			Float:        f,
			IsCritical:   f == 0,
		}
		if f == 0 {
			result.CriticalTasks = append(result.CriticalTasks, id)
		}
	}
	if len(paths) > 0 {
		result.CriticalPath = append([]string(nil), paths[0]...)
	}

	result.Waves = computeWaves(result)

	return result, nil
}

// Forward computes earliest start and finish times. Tasks are visited in
// topological order so every predecessor is final before it is read.
func Forward(g *graph.TaskGraph) map[string]Earliest {
	fwd := make(map[string]Earliest, g.TaskCount())
	for _, id := range g.TopoOrder() {
		// ES = max(EF of all predecessors)
		es := 0.0
		for _, pred := range g.Predecessors(id) {
			if ef := fwd[pred].EFT; ef > es {
				es = ef
			}
		}
		fwd[id] = Earliest{EST: es, EFT: es + g.Duration(id)}
	}
	return fwd
}

// ProjectDuration is the latest earliest finish over all tasks, or zero for
// an empty project.
func ProjectDuration(fwd map[string]Earliest) float64 {
	total := 0.0
	for _, e := range fwd {
		if e.EFT > total {
			total = e.EFT
		}
	}
	return total
}

// Backward computes latest start and finish times in reverse topological
// order. Every task without successors is anchored to projectDuration, not
// to its own EFT, which is what gives non-critical sinks their float.
func Backward(g *graph.TaskGraph, fwd map[string]Earliest, projectDuration float64) map[string]Latest {
	order := g.TopoOrder()
	bwd := make(map[string]Latest, len(order))
	for i := len(order) - 1; i >= 0; i-- {
		id := order[i]
		lf := projectDuration
		if succ := g.Successors(id); len(succ) > 0 {
			lf = math.Inf(1)
			for _, s := range succ {
				if ls := bwd[s].LST; ls < lf {
					lf = ls
				}
			}
		}
		bwd[id] = Latest{LST: lf - g.Duration(id), LFT: lf}
	}
	return bwd
}

// Extract derives per-task float and the critical chains from the two
// passes, reporting at most DefaultMaxCriticalPaths chains.
func Extract(g *graph.TaskGraph, fwd map[string]Earliest, bwd map[string]Latest) (map[string]float64, []Path, error) {
	floats, paths, _, err := extract(g, fwd, bwd, DefaultMaxCriticalPaths)
	return floats, paths, err
}

func extract(g *graph.TaskGraph, fwd map[string]Earliest, bwd map[string]Latest, maxPaths int) (map[string]float64, []Path, bool, error) {
	order := g.TopoOrder()
	tol := Tolerance(ProjectDuration(fwd))
	floats := make(map[string]float64, len(order))
	for _, id := range order {
		f := bwd[id].LST - fwd[id].EST
		if f < -tol {
			return nil, nil, false, &InvariantViolationError{TaskID: id, Float: f}
		}
		if f <= tol {
			f = 0
		}
		floats[id] = f
	}

	// Tight critical edges: both ends critical and no gap between them.
	next := make(map[string][]string)
	for _, id := range order {
		if floats[id] != 0 {
			continue
		}
		for _, s := range g.Successors(id) {
			if floats[s] == 0 && math.Abs(fwd[id].EFT-fwd[s].EST) <= tol {
				next[id] = append(next[id], s)
			}
		}
	}

	paths, truncated := enumerateChains(g.Roots, floats, next, maxPaths)
	return floats, paths, truncated, nil
}

// enumerateChains walks every chain of tight critical edges starting at a
// critical root. Roots and successors are visited in id order, so chains
// come out ordered by id at each branch point. An explicit stack keeps long
// chains off the goroutine stack.
func enumerateChains(roots []string, floats map[string]float64, next map[string][]string, maxPaths int) ([]Path, bool) {
	type frame struct {
		node string
		i    int
	}

	var paths []Path
	for _, root := range roots {
		if floats[root] != 0 {
			continue
		}
		stack := []frame{{node: root}}
		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			succ := next[top.node]

			if len(succ) == 0 {
				if maxPaths > 0 && len(paths) == maxPaths {
					return paths, true
				}
				p := make(Path, len(stack))
				for i, f := range stack {
					p[i] = f.node
				}
				paths = append(paths, p)
				stack = stack[:len(stack)-1]
				continue
			}
			if top.i >= len(succ) {
				stack = stack[:len(stack)-1]
				continue
			}
			s := succ[top.i]
			top.i++
			stack = append(stack, frame{node: s})
		}
	}
	return paths, false
}

// computeWaves groups tasks by their earliest start time. Start times
// closer than the schedule tolerance to the first start of a wave join
// that wave.
func computeWaves(result *Schedule) []Wave {
	tol := Tolerance(result.ProjectDuration)

	ids := append([]string(nil), result.TopoOrder...)
	sort.SliceStable(ids, func(a, b int) bool {
		return result.Entries[ids[a]].EST < result.Entries[ids[b]].EST
	})

	var groups [][]string
	var starts []float64
	for _, id := range ids {
		es := result.Entries[id].EST
		if n := len(starts); n == 0 || es-starts[n-1] > tol {
			starts = append(starts, es)
			groups = append(groups, nil)
		}
		groups[len(groups)-1] = append(groups[len(groups)-1], id)
	}

	waves := make([]Wave, len(groups))
	for i, taskIDs := range groups {
		sort.Strings(taskIDs)

		hasCritical := false
		for _, id := range taskIDs {
			e := result.Entries[id]
			e.Wave = i
			result.Entries[id] = e
			if e.IsCritical {
				hasCritical = true
			}
		}

		// Sort critical tasks first within wave
		sort.SliceStable(taskIDs, func(a, b int) bool {
			aCrit := result.Entries[taskIDs[a]].IsCritical
			bCrit := result.Entries[taskIDs[b]].IsCritical
			return aCrit && !bCrit
		})

		waves[i] = Wave{
			Index:      i,
			Start:      starts[i],
			TaskIDs:    taskIDs,
			IsCritical: hasCritical,
		}
	}

	return waves
}
