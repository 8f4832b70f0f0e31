package viewer

import (
	"fmt"
	"io"
	"strings"

	"github.com/YahyaHajji/Pert-Diagram-generation/internal/planner"
	"github.com/YahyaHajji/Pert-Diagram-generation/internal/ui"
)

// WriteDOT renders the graph as Graphviz DOT. Critical nodes and the edges
// of critical chains are drawn bold red; labels carry duration, EST and LST.
func WriteDOT(w io.Writer, g *Graph, precision int) error {
	dur := func(v float64) string { return planner.FormatDuration(v, precision) }

	var b strings.Builder
	b.WriteString("digraph pert {\n")
	b.WriteString("  rankdir=LR;\n")
	b.WriteString("  node [shape=box, style=rounded];\n")
	b.WriteString("\n")

	for _, n := range g.Nodes {
		label := fmt.Sprintf("%s\\nDur: %s\\nEST: %s | LST: %s", n.ID, dur(n.Duration), dur(n.EST), dur(n.LST))
		attrs := fmt.Sprintf(`label="%s"`, escapeDOT(label))
		if n.IsCritical {
			attrs += `, style="rounded,bold", color=red`
		}
		fmt.Fprintf(&b, "  %q [%s];\n", n.ID, attrs)
	}

	b.WriteString("\n")

	for _, e := range g.Edges {
		style := ""
		if e.Critical {
			style = ` [color=red, penwidth=2]`
		}
		fmt.Fprintf(&b, "  %q -> %q%s;\n", e.From, e.To, style)
	}

	b.WriteString("}\n")
	_, err := io.WriteString(w, b.String())
	return err
}

// escapeDOT quotes characters that would end a DOT string. The "\n" line
// breaks in labels are kept.
func escapeDOT(s string) string {
	return strings.ReplaceAll(s, `"`, `\"`)
}

// WriteASCII prints the tasks wave by wave with their outgoing edges.
func WriteASCII(w io.Writer, g *Graph, precision int) error {
	dur := func(v float64) string { return planner.FormatDuration(v, precision) }
	adj := g.successors()

	waves := make(map[int][]GraphNode)
	maxWave := -1
	for _, n := range g.Nodes {
		waves[n.WaveIndex] = append(waves[n.WaveIndex], n)
		if n.WaveIndex > maxWave {
			maxWave = n.WaveIndex
		}
	}

	critical := make(map[[2]string]bool)
	for _, e := range g.Edges {
		if e.Critical {
			critical[[2]string{e.From, e.To}] = true
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🔗 %s\n", ui.BoldCyan("Task Dependency Graph"))
	fmt.Fprintln(&b, ui.Cyan("═══════════════════════"))
	fmt.Fprintln(&b)

	for i := 0; i <= maxWave; i++ {
		nodes := waves[i]
		if len(nodes) == 0 {
			continue
		}
		fmt.Fprintf(&b, "%s 🌊 Wave %d at %s %s\n", ui.Cyan("──"), i+1, dur(nodes[0].EST), ui.Cyan("──────────────────────────"))
		for _, n := range nodes {
			fmt.Fprintf(&b, "  %s [%s] %s\n", ui.CriticalMarker(n.IsCritical), ui.BoldMagenta(n.ID),
				ui.Dim(fmt.Sprintf("dur %s, float %s", dur(n.Duration), dur(n.Float))))
			for _, succ := range adj[n.ID] {
				arrow := ui.Dim("└──→")
				if critical[[2]string{n.ID, succ}] {
					arrow = ui.BoldRed("└══→")
				}
				fmt.Fprintf(&b, "      %s %s\n", arrow, ui.Magenta(succ))
			}
		}
		fmt.Fprintln(&b)
	}

	if len(g.CriticalPath) > 0 {
		fmt.Fprintf(&b, "⚡ Critical path: %s\n", ui.BoldYellow(strings.Join(g.CriticalPath, planner.PathSeparator)))
	}

	_, err := io.WriteString(w, b.String())
	return err
}
