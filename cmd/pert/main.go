package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/YahyaHajji/Pert-Diagram-generation/internal/config"
	"github.com/YahyaHajji/Pert-Diagram-generation/internal/cpm"
	"github.com/YahyaHajji/Pert-Diagram-generation/internal/export"
	"github.com/YahyaHajji/Pert-Diagram-generation/internal/graph"
	"github.com/YahyaHajji/Pert-Diagram-generation/internal/logging"
	"github.com/YahyaHajji/Pert-Diagram-generation/internal/planner"
	"github.com/YahyaHajji/Pert-Diagram-generation/internal/project"
	"github.com/YahyaHajji/Pert-Diagram-generation/internal/reporter"
	"github.com/YahyaHajji/Pert-Diagram-generation/internal/ui"
	"github.com/YahyaHajji/Pert-Diagram-generation/internal/viewer"
)

var (
	flagConfig   string
	flagJSON     bool
	flagLogLevel string
	flagNoColor  bool
	flagSample   bool
	flagTasks    []string
	flagOutput   string
	flagTemplate string
	flagAddr     string

	cfg *config.Config
	log zerolog.Logger
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "pert",
		Short: "Compute PERT/CPM schedules and critical paths",
		Long: `pert reads a project as a list of tasks with durations and dependencies,
computes earliest and latest start/finish times, float and the critical path,
and renders the result as a table, report, export or diagram.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: setup,
	}

	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file (default ./pert.yaml)")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Machine-readable JSON output")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(analyzeCmd())
	rootCmd.AddCommand(sampleCmd())
	rootCmd.AddCommand(exportCmd())
	rootCmd.AddCommand(reportCmd())
	rootCmd.AddCommand(vizCmd())
	rootCmd.AddCommand(serveCmd())

	if err := rootCmd.Execute(); err != nil {
		printError(os.Stderr, err)
		os.Exit(1)
	}
}

// setup loads configuration and builds the logger before any command runs.
func setup(cmd *cobra.Command, args []string) error {
	var opts []config.Option
	if flagConfig != "" {
		opts = append(opts, config.WithConfigFile(flagConfig))
	}
	var err error
	cfg, err = config.Load(opts...)
	if err != nil {
		return err
	}
	if flagLogLevel != "" {
		cfg.Log.Level = flagLogLevel
	}
	if flagNoColor {
		cfg.Log.NoColor = true
	}
	if flagJSON || flagNoColor {
		ui.SetEnabled(false)
	}

	log = logging.WithComponent(logging.New(cfg.Log), "cli")
	log.Debug().Str("command", cmd.Name()).Msg("config loaded")
	return nil
}

// addInputFlags registers the flags shared by every command that reads a
// project.
func addInputFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&flagSample, "sample", false, "Use the built-in sample project")
	cmd.Flags().StringArrayVar(&flagTasks, "task", nil, `Inline task as "ID:DURATION[:DEP1,DEP2]" (repeatable)`)
}

// loadTasks resolves the project from a file argument ("-" for stdin),
// inline --task flags, or the sample.
func loadTasks(args []string) ([]project.Task, error) {
	switch {
	case flagSample:
		log.Debug().Msg("using sample project")
		return project.Sample(), nil

	case len(flagTasks) > 0:
		tasks := make([]project.Task, 0, len(flagTasks))
		for _, raw := range flagTasks {
			parts := strings.SplitN(raw, ":", 3)
			if len(parts) < 2 {
				return nil, fmt.Errorf("task %q: expected ID:DURATION[:DEPS]", raw)
			}
			deps := ""
			if len(parts) == 3 {
				deps = parts[2]
			}
			t, err := project.ParseTaskInput(parts[0], parts[1], deps)
			if err != nil {
				return nil, fmt.Errorf("task %q: %w", raw, err)
			}
			tasks = append(tasks, t)
		}
		return tasks, nil

	case len(args) == 1 && args[0] == "-":
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return project.ParseJSON(data)

	case len(args) == 1:
		tasks, err := project.Load(args[0])
		if err != nil {
			return nil, err
		}
		log.Debug().Str("file", args[0]).Int("tasks", len(tasks)).Msg("project loaded")
		return tasks, nil
	}
	return nil, fmt.Errorf("no project given: pass a file, --task flags, or --sample")
}

// schedule runs the pipeline with the configured settings. Without a
// loaded config it uses the defaults.
func schedule(tasks []project.Task) (*planner.ProjectPlan, error) {
	pc := planner.PlanConfig{}
	maxPaths := cpm.DefaultMaxCriticalPaths
	if cfg != nil {
		pc = cfg.PlanConfig()
		maxPaths = cfg.MaxCriticalPaths
	}
	plan, _, err := planner.FromTasks(tasks, pc, cpm.WithMaxCriticalPaths(maxPaths))
	if err != nil {
		return nil, fmt.Errorf("schedule project: %w", err)
	}
	return plan, nil
}

// buildPlan is shared logic for every command that needs a schedule.
func buildPlan(args []string) (*planner.ProjectPlan, error) {
	tasks, err := loadTasks(args)
	if err != nil {
		return nil, err
	}

	plan, err := schedule(tasks)
	if err != nil {
		return nil, err
	}

	log.Info().
		Int("tasks", plan.Summary.NumTasks).
		Float64("duration", plan.Summary.ProjectDuration).
		Str("critical_path", plan.Summary.CriticalPath).
		Msg("schedule computed")
	return plan, nil
}

func analyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze [file]",
		Short: "Compute the schedule and print it",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, err := buildPlan(args)
			if err != nil {
				return err
			}

			rpt := reporter.New(plan)
			if flagJSON {
				data, err := rpt.JSON()
				if err != nil {
					return err
				}
				fmt.Println(string(data))
				return nil
			}

			ui.PrintLogo(os.Stderr)
			rpt.PrintSchedule(os.Stdout)
			return nil
		},
	}
	addInputFlags(cmd)
	return cmd
}

func sampleCmd() *cobra.Command {
	var flagFormat string

	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Print the built-in sample project",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				data []byte
				err  error
			)
			switch strings.ToLower(flagFormat) {
			case "json":
				data, err = project.MarshalJSON(project.Sample())
			case "yaml", "yml":
				data, err = project.MarshalYAML(project.Sample())
			default:
				return fmt.Errorf("unsupported sample format %q (use json or yaml)", flagFormat)
			}
			if err != nil {
				return err
			}
			return writeOutput(string(data))
		},
	}
	cmd.Flags().StringVar(&flagFormat, "format", "json", "Output format (json, yaml)")
	cmd.Flags().StringVarP(&flagOutput, "output", "o", "", "Write to file instead of stdout")
	return cmd
}

func exportCmd() *cobra.Command {
	var flagFormat string

	cmd := &cobra.Command{
		Use:   "export [file]",
		Short: "Export the task table as CSV or JSON",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := export.ParseFormat(flagFormat)
			if err != nil {
				return err
			}
			plan, err := buildPlan(args)
			if err != nil {
				return err
			}

			var b strings.Builder
			if err := export.Write(&b, plan, f); err != nil {
				return err
			}
			return writeOutput(b.String())
		},
	}
	addInputFlags(cmd)
	cmd.Flags().StringVar(&flagFormat, "format", "csv", "Export format (csv, json)")
	cmd.Flags().StringVarP(&flagOutput, "output", "o", "", "Write to file instead of stdout")
	return cmd
}

func reportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report [file]",
		Short: "Render the paginated text report",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if flagTemplate != "" {
				cfg.Report.Template = flagTemplate
			}
			plan, err := buildPlan(args)
			if err != nil {
				return err
			}

			report, err := planner.RenderReport(plan, plan.Config.ReportTemplatePath)
			if err != nil {
				return fmt.Errorf("render report: %w", err)
			}
			return writeOutput(report)
		},
	}
	addInputFlags(cmd)
	cmd.Flags().StringVar(&flagTemplate, "template", "", "Custom report template path")
	cmd.Flags().StringVarP(&flagOutput, "output", "o", "", "Write to file instead of stdout")
	return cmd
}

func vizCmd() *cobra.Command {
	var flagFormat string

	cmd := &cobra.Command{
		Use:   "viz [file]",
		Short: "Print the dependency diagram (ASCII or Graphviz DOT)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, err := buildPlan(args)
			if err != nil {
				return err
			}
			g := viewer.ToGraph(plan)

			if flagJSON {
				return outputJSON(g)
			}

			var b strings.Builder
			switch strings.ToLower(flagFormat) {
			case "dot":
				err = viewer.WriteDOT(&b, g, plan.Config.Precision)
			case "ascii":
				err = viewer.WriteASCII(&b, g, plan.Config.Precision)
			default:
				return fmt.Errorf("unsupported diagram format %q (use ascii or dot)", flagFormat)
			}
			if err != nil {
				return err
			}
			return writeOutput(b.String())
		},
	}
	addInputFlags(cmd)
	cmd.Flags().StringVar(&flagFormat, "format", "ascii", "Output format (ascii, dot)")
	cmd.Flags().StringVarP(&flagOutput, "output", "o", "", "Write to file instead of stdout")
	return cmd
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve [file]",
		Short: "Serve the scheduling HTTP API",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			addr := cfg.Server.Addr
			if flagAddr != "" {
				addr = flagAddr
			}

			srv := viewer.New(viewer.Options{
				Logger:           logging.WithComponent(log, "server"),
				Plan:             cfg.PlanConfig(),
				MaxCriticalPaths: cfg.MaxCriticalPaths,
			})

			if flagSample || len(flagTasks) > 0 || len(args) > 0 {
				tasks, err := loadTasks(args)
				if err != nil {
					return err
				}
				if _, err := srv.Load(tasks); err != nil {
					return fmt.Errorf("schedule project: %w", err)
				}
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			fmt.Fprintf(os.Stderr, "🚀 %s listening on %s\n", ui.BoldCyan("pert:"), ui.Bold(addr))
			return srv.Run(ctx, addr)
		},
	}
	addInputFlags(cmd)
	cmd.Flags().StringVar(&flagAddr, "addr", "", "Listen address (default from config, :8080)")
	return cmd
}

// --- Output helpers ---

func outputJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

// writeOutput prints s, or writes it to --output when set.
func writeOutput(s string) error {
	if flagOutput == "" {
		fmt.Print(s)
		return nil
	}
	if err := os.WriteFile(flagOutput, []byte(s), 0644); err != nil {
		return fmt.Errorf("write %s: %w", flagOutput, err)
	}
	fmt.Fprintf(os.Stderr, "%s wrote %s\n", ui.Green("✓"), flagOutput)
	return nil
}

// printError reports a failure, naming the offending task ids when the
// project itself is invalid.
func printError(w io.Writer, err error) {
	ids := graph.TaskIDs(err)
	kind := graph.Kind(err)
	if kind == "" && errors.Is(err, cpm.ErrInternal) {
		kind = "internal"
	}

	if flagJSON {
		out := struct {
			Error   string   `json:"error"`
			Kind    string   `json:"kind,omitempty"`
			TaskIDs []string `json:"task_ids,omitempty"`
		}{err.Error(), kind, ids}
		data, _ := json.Marshal(out)
		fmt.Fprintln(w, string(data))
		return
	}

	fmt.Fprintf(w, "%s %s\n", ui.BoldRed("✗ error:"), err)
	if len(ids) > 0 {
		fmt.Fprintf(w, "  %s %s\n", ui.Dim("tasks:"), ui.BoldMagenta(strings.Join(ids, ", ")))
	}
	var cyc *graph.CycleError
	if errors.As(err, &cyc) {
		fmt.Fprintf(w, "  %s %s\n", ui.Dim("cycle:"), ui.Yellow(strings.Join(cyc.Cycle, planner.PathSeparator)))
	}
}
