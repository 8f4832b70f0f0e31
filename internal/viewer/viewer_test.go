package viewer

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/YahyaHajji/Pert-Diagram-generation/internal/planner"
	"github.com/YahyaHajji/Pert-Diagram-generation/internal/project"
)

func init() {
	gin.SetMode(gin.TestMode)
	color.NoColor = true
}

func sampleGraph(t *testing.T) *Graph {
	t.Helper()
	plan, _, err := planner.FromTasks(project.Sample(), planner.PlanConfig{})
	require.NoError(t, err)
	return ToGraph(plan)
}

func TestToGraph(t *testing.T) {
	g := sampleGraph(t)

	require.Len(t, g.Nodes, 7)
	require.Len(t, g.Edges, 7)
	assert.Equal(t, "A", g.Nodes[0].ID)
	assert.Equal(t, []string{"A", "B", "D", "F", "G"}, g.CriticalPath)
	assert.Equal(t, float64(19), g.Metadata.ProjectDuration)
	assert.Equal(t, 7, g.Metadata.TotalTasks)

	critical := map[string]bool{}
	for _, e := range g.Edges {
		critical[e.From+"->"+e.To] = e.Critical
	}
	assert.True(t, critical["A->B"])
	assert.True(t, critical["F->G"])
	assert.False(t, critical["A->C"])
	assert.False(t, critical["E->F"])

	c, ok := g.node("C")
	require.True(t, ok)
	assert.False(t, c.IsCritical)
	assert.Equal(t, float64(1), c.Float)
	assert.Equal(t, 1, c.WaveIndex)
}

func TestToGraph_Empty(t *testing.T) {
	plan, _, err := planner.FromTasks(nil, planner.PlanConfig{})
	require.NoError(t, err)

	g := ToGraph(plan)
	assert.Empty(t, g.Nodes)
	assert.NotNil(t, g.Edges)
	assert.NotNil(t, g.CriticalPath)
}

func TestWriteDOT(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteDOT(&buf, sampleGraph(t), 1))
	dot := buf.String()

	assert.True(t, strings.HasPrefix(dot, "digraph pert {"))
	assert.Contains(t, dot, `"A" [label="A\nDur: 3\nEST: 0 | LST: 0", style="rounded,bold", color=red];`)
	assert.Contains(t, dot, `"C" [label="C\nDur: 2\nEST: 3 | LST: 4"];`)
	assert.Contains(t, dot, `"A" -> "B" [color=red, penwidth=2];`)
	assert.Contains(t, dot, `"A" -> "C";`)
	assert.True(t, strings.HasSuffix(dot, "}\n"))
}

func TestWriteASCII(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteASCII(&buf, sampleGraph(t), 1))
	out := buf.String()

	assert.Contains(t, out, "Wave 1 at 0")
	assert.Contains(t, out, "Wave 2 at 3")
	assert.Contains(t, out, "[A]")
	assert.Contains(t, out, "└══→ B")
	assert.Contains(t, out, "└──→ C")
	assert.Contains(t, out, "Critical path: A → B → D → F → G")
}

func newTestServer() *Server {
	return New(Options{Logger: zerolog.Nop(), MaxCriticalPaths: 64})
}

func do(s *Server, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

const scenarioOne = `{"tasks":[
	{"id":"A","duration":3},
	{"id":"B","duration":2,"predecessors":["A"]},
	{"id":"C","duration":4,"predecessors":["A"]},
	{"id":"D","duration":1,"predecessors":["B","C"]}
]}`

func TestServer_PostSchedule(t *testing.T) {
	s := newTestServer()

	w := do(s, http.MethodPost, "/schedule", scenarioOne)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	body := gjson.Parse(w.Body.String())
	assert.Equal(t, float64(8), body.Get("metadata.project_duration").Float())
	assert.Equal(t, `["A","C","D"]`, body.Get("critical_path").Raw)
	assert.Equal(t, int64(4), body.Get("nodes.#").Int())

	w = do(s, http.MethodGet, "/tasks/B", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(2), gjson.Get(w.Body.String(), "float").Float())
	assert.False(t, gjson.Get(w.Body.String(), "is_critical").Bool())

	w = do(s, http.MethodGet, "/tasks/Z", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestServer_NoScheduleLoaded(t *testing.T) {
	s := newTestServer()

	for _, path := range []string{"/graph", "/plan", "/report", "/dot", "/export/csv"} {
		w := do(s, http.MethodGet, path, "")
		assert.Equal(t, http.StatusNotFound, w.Code, path)
		assert.Equal(t, "not_found", gjson.Get(w.Body.String(), "kind").String(), path)
	}
}

func TestServer_ValidationErrors(t *testing.T) {
	cases := []struct {
		name string
		body string
		kind string
		ids  []string
	}{
		{
			name: "cycle",
			body: `[{"id":"A","duration":1,"predecessors":["B"]},{"id":"B","duration":1,"predecessors":["A"]}]`,
			kind: "cycle",
			ids:  []string{"A", "B"},
		},
		{
			name: "unknown dependency",
			body: `[{"id":"X","duration":1,"predecessors":["Y"]}]`,
			kind: "unknown_dependency",
			ids:  []string{"X", "Y"},
		},
		{
			name: "duplicate id",
			body: `[{"id":"T1","duration":1},{"id":"T1","duration":2}]`,
			kind: "duplicate_id",
			ids:  []string{"T1"},
		},
		{
			name: "negative duration",
			body: `[{"id":"A","duration":-1}]`,
			kind: "invalid_task",
			ids:  []string{"A"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := do(newTestServer(), http.MethodPost, "/schedule", tc.body)
			require.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())

			body := gjson.Parse(w.Body.String())
			assert.Equal(t, tc.kind, body.Get("kind").String())
			var ids []string
			for _, id := range body.Get("task_ids").Array() {
				ids = append(ids, id.String())
			}
			assert.Equal(t, tc.ids, ids)
			assert.NotEmpty(t, body.Get("error").String())
		})
	}
}

func TestServer_BadRequests(t *testing.T) {
	s := newTestServer()

	w := do(s, http.MethodPost, "/schedule", `{not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "parse", gjson.Get(w.Body.String(), "kind").String())

	w = do(s, http.MethodPost, "/schedule?max_critical_paths=lots", scenarioOne)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	require.Equal(t, http.StatusCreated, do(s, http.MethodPost, "/sample", "").Code)
	w = do(s, http.MethodGet, "/export/xlsx", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestServer_MaxCriticalPathsQuery(t *testing.T) {
	s := newTestServer()
	body := `[{"id":"A","duration":1},{"id":"B","duration":1,"predecessors":["A"]},{"id":"C","duration":1,"predecessors":["A"]}]`

	w := do(s, http.MethodPost, "/schedule?max_critical_paths=1", body)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, int64(1), gjson.Get(w.Body.String(), "critical_paths.#").Int())

	w = do(s, http.MethodGet, "/plan", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, gjson.Get(w.Body.String(), "truncated").Bool())

	for _, v := range []string{"0", "-1", "two"} {
		w = do(s, http.MethodPost, "/schedule?max_critical_paths="+v, body)
		assert.Equal(t, http.StatusBadRequest, w.Code, v)
		assert.Equal(t, "bad_request", gjson.Get(w.Body.String(), "kind").String(), v)
	}

	// Rejected requests leave the stored schedule alone.
	w = do(s, http.MethodGet, "/plan", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, gjson.Get(w.Body.String(), "truncated").Bool())
}

func TestServer_Outputs(t *testing.T) {
	s := newTestServer()
	require.Equal(t, http.StatusCreated, do(s, http.MethodPost, "/sample", "").Code)

	w := do(s, http.MethodGet, "/export/csv", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, w.Header().Get("Content-Disposition"), "pert_tasks.csv")
	assert.True(t, strings.HasPrefix(w.Body.String(), "Task,Duration,Dependencies"))

	w = do(s, http.MethodGet, "/export/json", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(7), gjson.Get(w.Body.String(), "tasks.#").Int())

	w = do(s, http.MethodGet, "/report", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "PERT PROJECT REPORT")

	w = do(s, http.MethodGet, "/dot", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"F" -> "G" [color=red, penwidth=2];`)

	w = do(s, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestServer_LoadReplacesPlan(t *testing.T) {
	s := newTestServer()
	_, err := s.Load(project.Sample())
	require.NoError(t, err)

	_, err = s.Load([]project.Task{{ID: "solo", Duration: 2}})
	require.NoError(t, err)

	w := do(s, http.MethodGet, "/graph", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(1), gjson.Get(w.Body.String(), "nodes.#").Int())
	assert.Equal(t, "solo", gjson.Get(w.Body.String(), "nodes.0.id").String())
}
