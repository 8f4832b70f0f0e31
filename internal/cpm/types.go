package cpm

// Schedule holds the complete critical path analysis of one task set.
// It is built fresh by Analyze and never modified afterwards.
type Schedule struct {
	Entries         map[string]Entry `json:"entries"`
	ProjectDuration float64          `json:"project_duration"`
	CriticalPath    []string         `json:"critical_path"`  // preferred chain
	CriticalPaths   []Path           `json:"critical_paths"` // every maximal zero-float chain
	CriticalTasks   []string         `json:"critical_tasks"` // zero-float tasks in topological order
	Truncated       bool             `json:"truncated,omitempty"`
	Waves           []Wave           `json:"waves"`
	TopoOrder       []string         `json:"topo_order"`
}

// Entry holds the scheduling info for a single task.
type Entry struct {
	TaskID       string   `json:"task_id"`
	Duration     float64  `json:"duration"`
	Predecessors []string `json:"predecessors,omitempty"`
	EST          float64  `json:"est"`
	EFT          float64  `json:"eft"`
	LST          float64  `json:"lst"`
	LFT          float64  `json:"lft"`
	Float        float64  `json:"float"`
	IsCritical   bool     `json:"is_critical"`
	Wave         int      `json:"wave"`
}

// Path is an ordered chain of task ids from a source to a sink.
type Path []string

// Earliest is the forward pass result for one task.
type Earliest struct {
	EST, EFT float64
}

// Latest is the backward pass result for one task.
type Latest struct {
	LST, LFT float64
}

// Wave represents a group of tasks that share an earliest start time and
// can therefore run in parallel.
type Wave struct {
	Index      int      `json:"index"`
	Start      float64  `json:"start"`
	TaskIDs    []string `json:"task_ids"`
	IsCritical bool     `json:"is_critical"` // true if wave contains critical tasks
}

// Entry returns the entry for id.
func (s *Schedule) Entry(id string) (Entry, bool) {
	e, ok := s.Entries[id]
	return e, ok
}

// IsCritical reports whether id has zero float.
func (s *Schedule) IsCritical(id string) bool {
	return s.Entries[id].IsCritical
}

// Rows returns the entries in topological order.
func (s *Schedule) Rows() []Entry {
	rows := make([]Entry, 0, len(s.TopoOrder))
	for _, id := range s.TopoOrder {
		rows = append(rows, s.Entries[id])
	}
	return rows
}

// CriticalEdge reports whether the edge from -> to lies on a reported
// critical chain.
func (s *Schedule) CriticalEdge(from, to string) bool {
	for _, p := range s.CriticalPaths {
		for i := 0; i+1 < len(p); i++ {
			if p[i] == from && p[i+1] == to {
				return true
			}
		}
	}
	return false
}
