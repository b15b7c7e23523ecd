package cli

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/patchbay/internal/synth"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	ConfigPath string
	Rate       float64
	FrameRate  float64
	Duration   float64
	Patch      string
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Build a demo patch and step it at the configured rate",
		Long: `Build a demo patch and drive it for a fixed duration.

The host loop polls at the configured frame rate; the rate adapter converts
elapsed wall time into logical steps so the patch is evaluated at its own
rate regardless of the frame cadence. The final introspection snapshot is
printed when the run completes.

Example:
  patchbay run --patch demo --rate 1000 --duration 2
  patchbay run --config host.yaml --verbose`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPatch(opts, cmd)
		},
	}

	def := DefaultHostConfig()
	cmd.Flags().StringVar(&opts.ConfigPath, "config", "", "path to YAML host config")
	cmd.Flags().Float64Var(&opts.Rate, "rate", def.Rate, "logical steps per second")
	cmd.Flags().Float64Var(&opts.FrameRate, "frame-rate", def.FrameRate, "host polling cadence in frames per second")
	cmd.Flags().Float64Var(&opts.Duration, "duration", def.Duration, "seconds to run")
	cmd.Flags().StringVar(&opts.Patch, "patch", def.Patch, "demo patch to build")

	return cmd
}

func runPatch(opts *RunOptions, cmd *cobra.Command) error {
	// Configure logging based on verbose flag
	logLevel := slog.LevelInfo
	if opts.Verbose {
		logLevel = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))

	cfg := DefaultHostConfig()
	if opts.ConfigPath != "" {
		var err error
		cfg, err = LoadHostConfig(opts.ConfigPath)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to load host config", err)
		}
	}

	// Flags override the config file.
	flags := cmd.Flags()
	if flags.Changed("rate") {
		cfg.Rate = opts.Rate
	}
	if flags.Changed("frame-rate") {
		cfg.FrameRate = opts.FrameRate
	}
	if flags.Changed("duration") {
		cfg.Duration = opts.Duration
	}
	if flags.Changed("patch") {
		cfg.Patch = opts.Patch
	}
	if err := cfg.Validate(); err != nil {
		return WrapExitError(ExitCommandError, "invalid configuration", err)
	}

	s := synth.New(cfg.Rate)
	if err := BuildPatch(s, cfg.Patch); err != nil {
		return WrapExitError(ExitCommandError, "failed to build patch", err)
	}
	slog.Info("patch built", "patch", cfg.Patch, "modules", len(s.Modules()), "rate", cfg.Rate)

	adapter := synth.NewRateAdapter(s.Rate())
	frames := int(cfg.Duration*cfg.FrameRate + 0.5)
	period := time.Duration(float64(time.Second) / cfg.FrameRate)
	ticker := time.NewTicker(period)
	defer ticker.Stop()
	start := time.Now()

	steps := driveFrames(s, adapter, frames, func() float64 {
		<-ticker.C
		return time.Since(start).Seconds()
	})
	slog.Info("run complete", "frames", frames, "steps", steps)

	infos, err := s.Snapshot()
	if err != nil {
		return WrapExitError(ExitFailure, "failed to snapshot patch", err)
	}

	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
	if opts.Format == "json" {
		return formatter.Success(infos)
	}
	return formatter.Success(renderSnapshot(infos))
}

// driveFrames polls now() once per frame and advances the synth by however
// many logical steps fell due, passing each batch a contiguous slice of the
// logical timeline. Returns the total steps performed.
//
// now() is injected so tests can drive the loop with synthetic time.
func driveFrames(s *synth.Synth, adapter *synth.RateAdapter, frames int, now func() float64) int {
	total := 0
	tick := 0.0
	for i := 0; i < frames; i++ {
		n := adapter.StepsDue(now())
		s.Run(n, tick, tick+float64(n))
		tick += float64(n)
		total += n
		slog.Debug("frame", "frame", i, "steps", n)
	}
	return total
}

// renderSnapshot formats the introspection snapshot for humans.
func renderSnapshot(infos []synth.ModuleInfo) string {
	var b strings.Builder
	for i, mi := range infos {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%s (%s)\n", mi.Name, mi.Handle)
		for _, in := range mi.Inputs {
			fmt.Fprintf(&b, "  in  %s: %s", in.Name, in.Type)
			if in.Source != nil {
				fmt.Fprintf(&b, " <- %s.%s", in.Source.Module, in.Source.Port)
			} else {
				fmt.Fprintf(&b, " (default %s)", string(in.Default))
			}
			b.WriteString("\n")
		}
		for _, out := range mi.Outputs {
			fmt.Fprintf(&b, "  out %s: %s", out.Name, out.Type)
			if out.Value != nil {
				fmt.Fprintf(&b, " = %s", string(out.Value))
			}
			b.WriteString("\n")
		}
		for _, set := range mi.Settings {
			fmt.Fprintf(&b, "  set %s (%s)", set.Name, set.Kind)
			if set.Value != nil {
				fmt.Fprintf(&b, " = %s", string(set.Value))
			}
			b.WriteString("\n")
		}
		if mi.LastError != "" {
			fmt.Fprintf(&b, "  error: %s\n", mi.LastError)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
