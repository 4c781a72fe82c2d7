package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/ddsim/dd2d/internal/analysis"
	"github.com/ddsim/dd2d/internal/config"
	"github.com/ddsim/dd2d/internal/crystal"
	"github.com/ddsim/dd2d/internal/input"
	"github.com/ddsim/dd2d/internal/metrics"
	"github.com/ddsim/dd2d/internal/server"
	"github.com/ddsim/dd2d/internal/sim"
	"github.com/ddsim/dd2d/internal/storage"
	"github.com/ddsim/dd2d/internal/tensor"
	"github.com/ddsim/dd2d/internal/viz"
)

var (
	dataDir    string
	configFile string
	preset     string
	label      string

	structureFile    string
	orientationsFile string
	tessellationFile string
	single           bool

	iterations int
	stride     int
	tauCRSS    float64
	maxDt      float64
	appliedXY  float64

	traceIndex int
	serveAddr  string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "dd2d",
		Short: "discrete dislocation dynamics in two dimensions",
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".dd2d", "data directory")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a simulation",
		RunE:  runSimulation,
	}
	addSimFlags(runCmd)
	runCmd.Flags().StringVar(&label, "label", "run", "label for the stored run")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot defect population and mean position",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "write snapshot rows to stdout as CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "write run data to stdout as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "frequency analysis of a defect trajectory",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().IntVar(&traceIndex, "index", 0, "dislocation index to trace")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run with live terminal visualization",
		RunE:  runLive,
	}
	addSimFlags(liveCmd)

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "run and stream frames over websockets",
		RunE:  runServe,
	}
	addSimFlags(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "listen address")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list named configuration presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range config.ListPresets() {
				fmt.Println(name)
			}
			return nil
		},
	}

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, exportCSVCmd, exportJSONCmd, analyzeCmd, liveCmd, serveCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addSimFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "named preset")
	cmd.Flags().StringVar(&structureFile, "structure", "", "slip plane structure file")
	cmd.Flags().StringVar(&orientationsFile, "orientations", "", "grain orientations file")
	cmd.Flags().StringVar(&tessellationFile, "tessellation", "", "grain boundary file")
	cmd.Flags().BoolVar(&single, "single", false, "single slip plane mode")
	cmd.Flags().IntVar(&iterations, "iterations", 0, "iteration budget")
	cmd.Flags().IntVar(&stride, "stride", 0, "snapshot stride")
	cmd.Flags().Float64Var(&tauCRSS, "tau-crss", 0, "critical resolved shear stress")
	cmd.Flags().Float64Var(&maxDt, "max-dt", 0, "time increment cap")
	cmd.Flags().Float64Var(&appliedXY, "applied-xy", 0, "applied shear stress")
}

// loadConfig resolves preset, then config file, then CLI flag overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		p, err := config.GetPreset(preset)
		if err != nil {
			return nil, err
		}
		cfg = p
	}

	if configFile != "" {
		c, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = c
	}

	if cmd.Flags().Changed("iterations") {
		cfg.Iterations = iterations
	}
	if cmd.Flags().Changed("stride") {
		cfg.SnapshotStride = stride
	}
	if cmd.Flags().Changed("tau-crss") {
		cfg.TauCRSS = tauCRSS
	}
	if cmd.Flags().Changed("max-dt") {
		cfg.MaxDt = maxDt
	}
	if cmd.Flags().Changed("applied-xy") {
		cfg.AppliedStress.XY = appliedXY
	}
	if cmd.Flags().Changed("structure") {
		cfg.Files.Structure = structureFile
	}
	if cmd.Flags().Changed("orientations") {
		cfg.Files.Orientations = orientationsFile
	}
	if cmd.Flags().Changed("tessellation") {
		cfg.Files.Tessellation = tessellationFile
	}

	return cfg, nil
}

func simConfig(cfg *config.Config) sim.Config {
	return sim.Config{
		Mu:             cfg.Mu,
		Nu:             cfg.Nu,
		Drag:           cfg.Drag,
		TauCRSS:        cfg.TauCRSS,
		MinDistance:    cfg.MinDistance,
		ReactionRadius: cfg.ReactionRadius,
		MaxDt:          cfg.MaxDt,
		Iterations:     cfg.Iterations,
		SnapshotStride: cfg.SnapshotStride,
	}
}

func appliedStress(cfg *config.Config) tensor.Stress {
	return tensor.Stress{
		XX: cfg.AppliedStress.XX,
		YY: cfg.AppliedStress.YY,
		ZZ: cfg.AppliedStress.ZZ,
		XY: cfg.AppliedStress.XY,
		YZ: cfg.AppliedStress.YZ,
		ZX: cfg.AppliedStress.ZX,
	}
}

// buildPolycrystal assembles the structure. Single mode, or the
// absence of an orientations file, yields one grain with one plane.
// Otherwise each orientation gets a grain carrying its own copy of the
// structure file's plane, with boundaries from the tessellation file
// when one is given.
func buildPolycrystal(cfg *config.Config) (*crystal.Polycrystal, error) {
	if cfg.Files.Structure == "" {
		return nil, fmt.Errorf("no structure file (use --structure or a config file)")
	}

	pc := crystal.NewPolycrystal()

	if single || cfg.Files.Orientations == "" {
		sp, err := input.ReadSlipPlane(cfg.Files.Structure)
		if err != nil {
			return nil, err
		}
		g := crystal.NewGrain()
		g.AddSlipPlane(sp)
		pc.AddGrain(g)
	} else {
		orientations, err := input.ReadOrientations(cfg.Files.Orientations)
		if err != nil {
			return nil, err
		}
		for range orientations {
			sp, err := input.ReadSlipPlane(cfg.Files.Structure)
			if err != nil {
				return nil, err
			}
			g := crystal.NewGrain()
			g.AddSlipPlane(sp)
			pc.AddGrain(g)
		}
		pc.SetGrainOrientations(orientations)

		if cfg.Files.Tessellation != "" {
			polygons, err := input.ReadTessellation(cfg.Files.Tessellation)
			if err != nil {
				return nil, err
			}
			pc.SetGrainBoundaries(polygons)
		}
	}

	pc.SetAppliedStress(appliedStress(cfg))
	return pc, nil
}

func buildStepper(cfg *config.Config) (*sim.Stepper, error) {
	pc, err := buildPolycrystal(cfg)
	if err != nil {
		return nil, err
	}
	stepper := sim.New(pc)
	stepper.AddMetric(metrics.NewDislocationCount())
	stepper.AddMetric(metrics.NewMeanVelocity())
	stepper.AddMetric(metrics.NewPlasticStrainRate())
	return stepper, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	stepper, err := buildStepper(cfg)
	if err != nil {
		return err
	}

	fmt.Println("running simulation...")
	start := time.Now()

	result, err := stepper.Run(context.Background(), simConfig(cfg))
	if err != nil {
		return err
	}

	elapsed := time.Since(start)

	runID, err := st.Save(label, simConfig(cfg), result)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d\n", result.StepsTaken)
	fmt.Printf("nucleated: %d  annihilated: %d\n", result.Nucleated, result.Annihilated)
	fmt.Println("\nmetrics:")
	for name, val := range result.Metrics {
		fmt.Printf("  %s: %.6e\n", name, val)
	}

	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tLABEL\tTIME\tSTEPS\tNUCLEATED\tANNIHILATED")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\n",
			run.ID,
			run.Label,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.StepsTaken,
			run.Nucleated,
			run.Annihilated,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	_, snaps, err := st.LoadSnapshots(args[0])
	if err != nil {
		return err
	}
	if len(snaps) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("snapshots: %d\n\n", len(snaps))

	fmt.Println(viz.PlotSeries(analysis.PopulationCurve(snaps), "dislocation count", 80, 10))
	fmt.Println()
	fmt.Println(viz.PlotSeries(analysis.MeanPositions(snaps), "mean line coordinate", 80, 10))
	return nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	times, snaps, err := st.LoadSnapshots(args[0])
	if err != nil {
		return err
	}

	w := csv.NewWriter(os.Stdout)
	defer w.Flush()
	for i, snap := range snaps {
		row := make([]string, 0, len(snap)+1)
		row = append(row, strconv.FormatFloat(times[i], 'e', 9, 64))
		for _, v := range snap {
			row = append(row, strconv.FormatFloat(v, 'e', 9, 64))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	times, snaps, err := st.LoadSnapshots(args[0])
	if err != nil {
		return err
	}

	out := struct {
		Meta          *storage.RunMetadata `json:"meta"`
		SnapshotTimes []float64            `json:"snapshot_times"`
		Snapshots     [][]float64          `json:"snapshots"`
	}{meta, times, snaps}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	_, snaps, err := st.LoadSnapshots(args[0])
	if err != nil {
		return err
	}

	trace := analysis.Trace(snaps, traceIndex)
	if len(trace) < 2 {
		return fmt.Errorf("not enough samples for dislocation %d", traceIndex)
	}

	spectrum := analysis.PowerSpectrum(trace)
	bin, mag := analysis.DominantFrequency(trace)

	fmt.Printf("samples: %d\n", len(trace))
	fmt.Printf("dominant bin: %d (magnitude %.6e)\n\n", bin, mag)
	fmt.Println(viz.PlotSeries(spectrum, "power spectrum", 80, 10))
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	stepper, err := buildStepper(cfg)
	if err != nil {
		return err
	}
	return viz.Run(stepper, simConfig(cfg))
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	stepper, err := buildStepper(cfg)
	if err != nil {
		return err
	}

	hub := server.NewHub()
	stepper.AddObserver(hub)

	go func() {
		if _, err := stepper.Run(context.Background(), simConfig(cfg)); err != nil {
			fmt.Fprintln(os.Stderr, "simulation error:", err)
		}
	}()

	fmt.Printf("serving on %s (websocket at /ws)\n", serveAddr)
	return hub.Serve(serveAddr)
}
