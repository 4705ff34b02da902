package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/phanxgames/riftplot"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Global flags
	configPath string
	verbose    bool
	debounce   time.Duration
	stereo     string
	debug      bool

	// run flags
	scriptPath string
	hz         int
	maxTicks   uint64

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "riftplot [scene.go]",
	Short: "riftplot - live-coded 3D math plots",
	Long: `riftplot evaluates Go scene source into a 3D plot and re-renders it
while you edit. The scene file is followed for changes; F5 or Ctrl+Enter
evaluates immediately and F2 toggles the side-by-side stereo view.`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config := zap.NewProductionConfig()
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = config.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		rc := riftplot.RunConfig{Config: cfg, Logger: logger, Debug: debug}
		if len(args) == 1 {
			rc.Source = args[0]
		}
		if rc.Source == "" && cfg.Editor.Source == "" {
			rc.InitialSource = defaultScene
		}
		return riftplot.Run(cmd.Context(), rc)
	},
}

var checkCmd = &cobra.Command{
	Use:   "check <scene.go>",
	Short: "Validate and evaluate a scene without opening a window",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		graph := riftplot.NewSceneGraph(logger)
		ev := riftplot.NewEvaluator(graph, logger)
		if err := ev.Check(string(data)); err != nil {
			return fmt.Errorf("%s: %w", args[0], err)
		}
		if err := ev.Evaluate(string(data)); err != nil {
			return fmt.Errorf("%s: %w", args[0], err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: ok, %d nodes\n", args[0], graph.NodeCount())
		if verbose {
			fmt.Fprint(cmd.OutOrStdout(), graph.Dump())
		}
		return nil
	},
}

var runCmd = &cobra.Command{
	Use:   "run [scene.go]",
	Short: "Evaluate a scene headlessly, optionally driven by a script",
	Long: `run drives the sandbox without a window. With --script it plays the
YAML or JSON script and exits when it finishes or an expectation fails;
otherwise it evaluates the scene once and reports the result.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		s, err := riftplot.NewSandbox(riftplot.Options{Config: cfg, Logger: logger})
		if err != nil {
			return err
		}
		s.SetDebugMode(debug)

		hc := riftplot.HeadlessConfig{Hz: hz, Ticks: maxTicks}
		if scriptPath != "" {
			data, err := os.ReadFile(scriptPath)
			if err != nil {
				return err
			}
			r, err := riftplot.LoadScript(data)
			if err != nil {
				return err
			}
			s.SetScriptRunner(r)
			hc.StopWhenScriptDone = true
		}
		if len(args) == 1 {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			if err := s.Evaluate(string(data)); err != nil {
				return err
			}
			logger.Info("scene evaluated", zap.Int("nodes", s.Graph().NodeCount()))
		}
		if scriptPath == "" && hc.Ticks == 0 {
			hc.Ticks = 1
		}
		if err := riftplot.RunHeadless(cmd.Context(), s, hc); err != nil {
			return err
		}
		stats := s.Scheduler().Stats()
		fmt.Fprintf(cmd.OutOrStdout(), "frames: %d  errors: %d  nodes: %d\n",
			stats.Frames, stats.Errors, s.Graph().NodeCount())
		for _, p := range s.Screenshots() {
			fmt.Fprintln(cmd.OutOrStdout(), p)
		}
		return nil
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the configuration file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default configuration to --config",
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := os.Stat(configPath); err == nil {
			return fmt.Errorf("%s already exists", configPath)
		}
		if err := riftplot.DefaultConfig().Save(configPath); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", configPath)
		return nil
	},
}

// loadConfig reads --config and applies flag overrides.
func loadConfig(cmd *cobra.Command) (*riftplot.Config, error) {
	cfg, err := riftplot.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("debounce") {
		cfg.Editor.Debounce = debounce.String()
	}
	switch stereo {
	case "":
	case "on":
		cfg.Stereo.Enabled = true
	case "off":
		cfg.Stereo.Enabled = false
	default:
		return nil, fmt.Errorf("--stereo must be on or off, got %q", stereo)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// defaultScene is shown when no scene file is given.
const defaultScene = `view := mathbox.Cartesian(plot.Props{"range": [][]float64{{-3, 3}, {-1, 1}, {-1, 1}}})
view.Axis(plot.Props{"axis": 1})
view.Axis(plot.Props{"axis": 2})
view.Grid(plot.Props{"axes": []int{1, 2}, "opacity": 0.25})
view.Curve(func(x float64) float64 { return math.Sin(x) }, plot.Props{"color": "#3090ff", "width": 3})
`

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "riftplot.yaml", "configuration file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().DurationVar(&debounce, "debounce", riftplot.DefaultDebounce, "quiet period before re-evaluating an edit")
	rootCmd.PersistentFlags().StringVar(&stereo, "stereo", "", "stereo support: on or off")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "log per-frame stats and scene tree warnings")

	runCmd.Flags().StringVar(&scriptPath, "script", "", "automation script (YAML or JSON)")
	runCmd.Flags().IntVar(&hz, "hz", 60, "headless tick rate")
	runCmd.Flags().Uint64Var(&maxTicks, "ticks", 0, "stop after this many ticks (0: until the script ends)")

	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(checkCmd, runCmd, configCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}
