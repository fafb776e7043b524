package main

import (
	"context"
	"fmt"
	"log"
	"math"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"orrery/celestial"
)

func newRootCommand(cfg *Config) *cobra.Command {
	root := &cobra.Command{
		Use:   "orrery",
		Short: "Solar system orbit simulation",
		Long: `orrery propagates the solar system catalog with a fixed-iteration Kepler
solver and a naive pairwise perturbation, and serves the result to viewers.`,
		SilenceUsage: true,
	}
	cfg.bindSimulationFlags(root)

	root.AddCommand(
		newServeCommand(cfg),
		newSimulateCommand(cfg),
		newWatchCommand(cfg),
	)
	return root
}

func newServeCommand(cfg *Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the simulation and stream it to viewers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Validate(); err != nil {
				return err
			}
			bodies, err := loadBodies(*cfg)
			if err != nil {
				return err
			}
			return runServe(*cfg, bodies)
		},
	}
	cfg.bindServeFlags(cmd)
	return cmd
}

func runServe(cfg Config, bodies []celestial.Body) error {
	server := NewServer(cfg, bodies)

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(signals)

	if err := server.Start(); err != nil {
		return fmt.Errorf("start server: %w", err)
	}

	<-signals
	log.Println("Shutting down servers...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}

	log.Println("Server shutdown complete")
	return nil
}

type simulateOptions struct {
	frames       int
	frameSeconds float64
	plotBody     string
	plotWidth    int
	plotHeight   int
}

func newSimulateCommand(cfg *Config) *cobra.Command {
	opts := simulateOptions{
		frames:     600,
		plotBody:   "earth",
		plotWidth:  60,
		plotHeight: 12,
	}

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run frames headless with a synthetic clock and print a report",
		Example: `  orrery simulate --frames 1000 --frame-seconds 0.5 --body mars
  orrery simulate --no-perturbation --catalog bodies.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.frames < 1 {
				return fmt.Errorf("--frames must be at least 1, got %d", opts.frames)
			}
			if !cmd.Flags().Changed("frame-seconds") {
				if cfg.FPS <= 0 {
					return fmt.Errorf("fps must be positive, got %v", cfg.FPS)
				}
				opts.frameSeconds = 1 / cfg.FPS
			}
			if !(opts.frameSeconds >= 0) || math.IsInf(opts.frameSeconds, 0) {
				return fmt.Errorf("--frame-seconds must be finite and not negative, got %v", opts.frameSeconds)
			}

			bodies, err := loadBodies(*cfg)
			if err != nil {
				return err
			}
			sim := NewSimulation(bodies, !cfg.NoPerturbation)
			report, err := RunHeadless(sim, opts.frames, opts.frameSeconds, opts.plotBody)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), report.Render(opts.plotWidth, opts.plotHeight))
			return err
		},
	}

	f := cmd.Flags()
	f.IntVar(&opts.frames, "frames", opts.frames, "number of frames to run")
	f.Float64Var(&opts.frameSeconds, "frame-seconds", 0, "synthetic seconds per frame (default 1/fps)")
	f.StringVar(&opts.plotBody, "body", opts.plotBody, "body whose distance from the Sun is plotted")
	f.IntVar(&opts.plotWidth, "plot-width", opts.plotWidth, "plot width in columns")
	f.IntVar(&opts.plotHeight, "plot-height", opts.plotHeight, "plot height in rows")
	return cmd
}

func newWatchCommand(cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Run the simulation live in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.FPS <= 0 {
				return fmt.Errorf("fps must be positive, got %v", cfg.FPS)
			}
			bodies, err := loadBodies(*cfg)
			if err != nil {
				return err
			}
			sim := NewSimulation(bodies, !cfg.NoPerturbation)
			model := NewWatchModel(sim, celestial.SystemClock{}, cfg.FPS, !cfg.NoPerturbation)

			_, err = tea.NewProgram(model, tea.WithAltScreen()).Run()
			return err
		},
	}
}

// loadBodies returns the configured catalog, or the built-in one.
func loadBodies(cfg Config) ([]celestial.Body, error) {
	if cfg.CatalogPath == "" {
		return celestial.SolarSystemBodies(), nil
	}
	bodies, err := celestial.LoadCatalog(cfg.CatalogPath)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	return bodies, nil
}
