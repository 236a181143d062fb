package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/ljmd/internal/analysis"
	"github.com/san-kum/ljmd/internal/automation"
	"github.com/san-kum/ljmd/internal/compute"
	"github.com/san-kum/ljmd/internal/config"
	"github.com/san-kum/ljmd/internal/dynamo"
	"github.com/san-kum/ljmd/internal/experiment"
	"github.com/san-kum/ljmd/internal/export"
	"github.com/san-kum/ljmd/internal/integrators"
	"github.com/san-kum/ljmd/internal/metrics"
	"github.com/san-kum/ljmd/internal/models"
	"github.com/san-kum/ljmd/internal/optim"
	"github.com/san-kum/ljmd/internal/storage"
	"github.com/san-kum/ljmd/internal/thermostat"
	"github.com/san-kum/ljmd/internal/viz"
)

var (
	dataDir     string
	configFile  string
	preset      string
	model       string
	kernel      string
	integrator  string
	particles   int
	density     float64
	boxSize     float64
	temperature float64
	dt          float64
	steps       int
	sampleEvery int
	seed        int64
	// thermostat
	thermo        string
	thermoEvery   int
	collisionRate float64
	// output
	theme        string
	svgPath      string
	snapshotPath string
	outPath      string
	// ensemble and sweep
	replicas   int
	sweepParam string
	sweepMin   float64
	sweepMax   float64
	sweepN     int
	// tune
	tuneParams []string
	tuneLo     []float64
	tuneHi     []float64
	tunePoints int
	tuneMetric string
	// bench
	benchReps int
	// analyze
	skipFrac float64
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "ljmd",
		Short:        "Lennard-Jones molecular dynamics lab",
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".ljmd", "data directory")

	runCmd := &cobra.Command{
		Use:   "run [preset]",
		Short: "run a simulation and store its energy series",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	addRunFlags(runCmd)
	runCmd.Flags().StringVar(&snapshotPath, "snapshot", "", "write the final configuration as svg")

	liveCmd := &cobra.Command{
		Use:   "live [preset]",
		Short: "run with live terminal visualization",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	addRunFlags(liveCmd)
	liveCmd.Flags().StringVar(&theme, "theme", "phosphor", fmt.Sprintf("colour theme %v", viz.ThemeNames()))

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "time the force kernels",
		RunE:  benchKernels,
	}
	benchCmd.Flags().IntVar(&benchReps, "reps", 20, "force evaluations per size")
	benchCmd.Flags().Float64Var(&density, "density", config.DefaultDensity, "number density")
	benchCmd.Flags().Int64Var(&seed, "seed", config.DefaultSeed, "random seed")

	verifyCmd := &cobra.Command{
		Use:   "verify [preset]",
		Short: "check that scalar and lane kernels agree",
		Args:  cobra.MaximumNArgs(1),
		RunE:  verifyKernels,
	}
	addRunFlags(verifyCmd)

	compareCmd := &cobra.Command{
		Use:   "compare [integrator] ...",
		Short: "compare integrators on the same initial state",
		Args:  cobra.MinimumNArgs(1),
		RunE:  compareIntegrators,
	}
	addRunFlags(compareCmd)

	analyzeCmd := &cobra.Command{
		Use:   "analyze [preset]",
		Short: "run and report diffusion and spectral analysis",
		Args:  cobra.MaximumNArgs(1),
		RunE:  analyzeRun,
	}
	addRunFlags(analyzeCmd)
	analyzeCmd.Flags().Float64Var(&skipFrac, "skip", 0.2, "fraction of MSD lags excluded from the fit")

	ensembleCmd := &cobra.Command{
		Use:   "ensemble [preset]",
		Short: "run independent replicas in parallel",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runEnsemble,
	}
	addRunFlags(ensembleCmd)
	ensembleCmd.Flags().IntVar(&replicas, "n", 4, "number of replicas")

	sweepCmd := &cobra.Command{
		Use:   "sweep [preset]",
		Short: "sweep one parameter across a range",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSweep,
	}
	addRunFlags(sweepCmd)
	sweepCmd.Flags().StringVar(&sweepParam, "param", "temperature", fmt.Sprintf("parameter %v", config.Params()))
	sweepCmd.Flags().Float64Var(&sweepMin, "min", 0.5, "first value")
	sweepCmd.Flags().Float64Var(&sweepMax, "max", 2.0, "last value")
	sweepCmd.Flags().IntVar(&sweepN, "points", 4, "number of values")

	tuneCmd := &cobra.Command{
		Use:   "tune [preset]",
		Short: "grid search parameters minimizing a metric",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runTune,
	}
	addRunFlags(tuneCmd)
	tuneCmd.Flags().StringSliceVar(&tuneParams, "param", []string{"dt"}, fmt.Sprintf("parameters %v", config.Params()))
	tuneCmd.Flags().Float64SliceVar(&tuneLo, "lo", []float64{0.001}, "lower bound per parameter")
	tuneCmd.Flags().Float64SliceVar(&tuneHi, "hi", []float64{0.01}, "upper bound per parameter")
	tuneCmd.Flags().IntVar(&tunePoints, "points", 5, "values per parameter")
	tuneCmd.Flags().StringVar(&tuneMetric, "metric", "energy_drift", "metric to minimize")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a yaml scenario",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot the energies of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&svgPath, "svg", "", "write the plot as svg (- for stdout)")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export the energy series to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export metadata and series to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default stdout)")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tMODEL\tN\tRHO\tT\tDT\tSTEPS")
			for _, name := range config.ListPresets() {
				p := config.GetPreset(name)
				fmt.Fprintf(w, "%s\t%s\t%d\t%.3f\t%.2f\t%.4f\t%d\n",
					name, p.Model, p.Particles, p.Density, p.Temperature, p.Dt, p.Steps)
			}
			return w.Flush()
		},
	}

	kernelsCmd := &cobra.Command{
		Use:   "kernels",
		Short: "list force kernels",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Printf("isa: %s\n", compute.DetectISA())
			fmt.Printf("auto: %s\n", compute.AutoSelectBackend().Name())
			fmt.Printf("active: %s\n\n", compute.GetBackend().Description())
			for _, name := range compute.ListBackends() {
				if name == "auto" {
					continue
				}
				b, err := compute.ByName(name)
				if err != nil {
					fmt.Printf("  %-8s %v\n", name, err)
					continue
				}
				fmt.Printf("  %-8s %s\n", name, b.Description())
			}
			return nil
		},
	}

	rootCmd.AddCommand(runCmd, liveCmd, benchCmd, verifyCmd, compareCmd, analyzeCmd, ensembleCmd,
		sweepCmd, tuneCmd, scenarioCmd, listCmd, plotCmd, exportCmd, exportCSVCmd, exportJSONCmd, presetsCmd, kernelsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().StringVar(&model, "model", "fluid", fmt.Sprintf("initial state %v", config.Models()))
	cmd.Flags().StringVar(&kernel, "kernel", "auto", fmt.Sprintf("force kernel %v", compute.ListBackends()))
	cmd.Flags().StringVar(&integrator, "integrator", "verlet", fmt.Sprintf("integrator %v", integrators.Names()))
	cmd.Flags().IntVarP(&particles, "particles", "n", config.DefaultParticles, "number of particles")
	cmd.Flags().Float64Var(&density, "density", config.DefaultDensity, "number density")
	cmd.Flags().Float64Var(&boxSize, "box", 0, "box edge (overrides density)")
	cmd.Flags().Float64VarP(&temperature, "temperature", "T", config.DefaultTemperature, "initial temperature")
	cmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep")
	cmd.Flags().IntVar(&steps, "steps", config.DefaultSteps, "number of steps")
	cmd.Flags().IntVar(&sampleEvery, "sample-every", config.DefaultSampleEvery, "steps between samples")
	cmd.Flags().Int64Var(&seed, "seed", config.DefaultSeed, "random seed")
	cmd.Flags().StringVar(&thermo, "thermostat", "none", fmt.Sprintf("heat bath %v", thermostat.Names()))
	cmd.Flags().IntVar(&thermoEvery, "thermostat-every", 1, "steps between rescales or single collisions")
	cmd.Flags().Float64Var(&collisionRate, "collision-rate", 0, "andersen collision frequency")
}

// resolveConfig layers preset, config file and explicitly set flags, in
// that order.
func resolveConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	name := preset
	if len(args) > 0 {
		name = args[0]
	}

	cfg := config.DefaultConfig()
	if name != "" {
		cfg = config.GetPreset(name)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", name, config.ListPresets())
		}
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	f := cmd.Flags()
	if f.Changed("model") {
		cfg.Model = model
	}
	if f.Changed("kernel") {
		cfg.Kernel = kernel
	}
	if f.Changed("integrator") {
		cfg.Integrator = integrator
	}
	if f.Changed("particles") {
		cfg.Particles = particles
	}
	if f.Changed("density") {
		cfg.Density = density
		cfg.BoxSize = 0
	}
	if f.Changed("box") {
		cfg.BoxSize = boxSize
	}
	if f.Changed("temperature") {
		cfg.Temperature = temperature
	}
	if f.Changed("dt") {
		cfg.Dt = dt
	}
	if f.Changed("steps") {
		cfg.Steps = steps
	}
	if f.Changed("sample-every") {
		cfg.SampleEvery = sampleEvery
	}
	if f.Changed("seed") {
		cfg.Seed = seed
	}
	if f.Changed("thermostat") {
		cfg.Thermostat = thermo
	}
	if f.Changed("thermostat-every") {
		cfg.ThermostatEvery = thermoEvery
	}
	if f.Changed("collision-rate") {
		cfg.CollisionRate = collisionRate
	}

	return cfg, cfg.Validate()
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	exp, err := experiment.New(cfg)
	if err != nil {
		return err
	}

	exp.GetSimulator().AddObserver(&progress{steps: cfg.Steps, last: -1})

	ctx, cancel := signalContext()
	defer cancel()

	fmt.Printf("running %d particles (%s, rho=%.3f, box=%.3f) with %s/%s...\n",
		cfg.Particles, cfg.Model, metrics.Density(cfg.Particles, exp.BoxSize()), exp.BoxSize(),
		exp.Backend().Name(), cfg.Integrator)
	start := time.Now()

	result, err := exp.Run(ctx)
	if err != nil {
		return err
	}

	elapsed := time.Since(start)

	runID, err := st.Save(cfg, exp.Backend().Name(), result)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v (%.0f steps/s)\n", elapsed, float64(result.StepsTaken)/elapsed.Seconds())
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d\n", result.StepsTaken)
	for _, e := range result.Errors {
		fmt.Printf("error: %v\n", e)
	}
	printMetrics(result)

	if snapshotPath != "" {
		svg := export.SnapshotSVG(exp.Particles().Pos, exp.BoxSize(), viz.NewCamera(), 60, 30, 4)
		if err := export.WriteSVG(os.Stdout, snapshotPath, svg); err != nil {
			return err
		}
	}

	return nil
}

func printMetrics(result *dynamo.Result) {
	fmt.Println("\nmetrics:")
	fmt.Printf("  %-18s %.6e\n", "final_drift", result.EnergyDrift)
	for _, m := range metrics.Default() {
		if v, ok := result.Metrics[m.Name()]; ok {
			fmt.Printf("  %-18s %.6f\n", m.Name(), v)
		}
	}
}

func runLive(cmd *cobra.Command, args []string) error {
	viz.SetTheme(theme)
	if len(args) == 0 && preset == "" && configFile == "" && !anyRunFlagChanged(cmd) {
		return viz.RunPicker()
	}

	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	exp, err := experiment.New(cfg)
	if err != nil {
		return err
	}

	name := cfg.Name
	if name == "" {
		name = cfg.Model
	}
	return viz.Run(exp, name)
}

func anyRunFlagChanged(cmd *cobra.Command) bool {
	for _, name := range []string{"model", "kernel", "integrator", "particles", "density", "box",
		"temperature", "dt", "steps", "sample-every", "seed", "thermostat", "thermostat-every", "collision-rate"} {
		if cmd.Flags().Changed(name) {
			return true
		}
	}
	return false
}

// progress draws a bar on stderr as samples arrive.
type progress struct {
	steps int
	last  int
}

func (p *progress) OnStep(s dynamo.Sample, _ *dynamo.Particles) {
	pct := int(100 * float64(s.Step) / float64(p.steps))
	if pct == p.last && s.Step != p.steps {
		return
	}
	p.last = pct
	fmt.Fprintf(os.Stderr, "\r%s %3d%%", viz.ProgressBar(float64(s.Step)/float64(p.steps), 40), pct)
	if s.Step == p.steps {
		fmt.Fprintln(os.Stderr)
	}
}

func benchKernels(cmd *cobra.Command, args []string) error {
	sizes := []int{108, 256, 500, 864, 2048}

	fmt.Printf("isa: %s, density %.3f\n\n", compute.DetectISA(), density)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "N\tKERNEL\tTIME/CALL\tPAIRS/SEC\tSPEEDUP")

	for _, n := range sizes {
		p, box, err := models.NewFluid(models.FluidSpec{
			Particles:    n,
			Density:      density,
			Temperature:  config.DefaultTemperature,
			Mass:         config.DefaultMass,
			Perturbation: 0.05,
			Seed:         seed,
		})
		if err != nil {
			return err
		}
		pairs := float64(n*(n-1)) / 2

		var base time.Duration
		for _, name := range []string{"scalar", "lanes"} {
			b, err := compute.ByName(name)
			if err != nil {
				return err
			}

			b.Forces(p.Pos, p.Force, box)
			per, err := timePerCall(benchReps, func() { b.Forces(p.Pos, p.Force, box) })
			if err != nil {
				return err
			}
			if name == "scalar" {
				base = per
			}

			fmt.Fprintf(w, "%d\t%s\t%v\t%.3g\t%.2fx\n",
				n, name, per, pairs/per.Seconds(), base.Seconds()/per.Seconds())
		}
	}

	return w.Flush()
}

// timePerCall runs fn reps times and returns the mean duration of a call.
func timePerCall(reps int, fn func()) (time.Duration, error) {
	if reps < 1 {
		return 0, fmt.Errorf("%w: reps must be positive, got %d", dynamo.ErrParameterBounds, reps)
	}
	start := time.Now()
	for i := 0; i < reps; i++ {
		fn()
	}
	return time.Since(start) / time.Duration(reps), nil
}

func verifyKernels(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}

	p, box, err := models.Build(cfg.Model, experiment.FluidSpec(cfg, cfg.Seed))
	if err != nil {
		return err
	}

	scalar, _ := compute.ByName("scalar")
	lanes, _ := compute.ByName("lanes")

	fs := dynamo.NewVectors(p.Len())
	fl := dynamo.NewVectors(p.Len())
	scalar.Forces(p.Pos, fs, box)
	lanes.Forces(p.Pos, fl, box)

	maxDiff, maxForce := 0.0, 0.0
	for i := 0; i < p.Len(); i++ {
		maxDiff = math.Max(maxDiff, math.Abs(fs.X[i]-fl.X[i]))
		maxDiff = math.Max(maxDiff, math.Abs(fs.Y[i]-fl.Y[i]))
		maxDiff = math.Max(maxDiff, math.Abs(fs.Z[i]-fl.Z[i]))
		maxForce = math.Max(maxForce, math.Abs(fs.X[i])+math.Abs(fs.Y[i])+math.Abs(fs.Z[i]))
	}
	es, el := scalar.Energy(p.Pos, box), lanes.Energy(p.Pos, box)

	fmt.Printf("particles: %d, box: %.4f\n", p.Len(), box)
	fmt.Printf("max |force diff|: %.3e (max |f| %.3e)\n", maxDiff, maxForce)
	fmt.Printf("energy: scalar %.12f lanes %.12f\n", es, el)

	const tol = 1e-9
	if maxDiff > tol*math.Max(1, maxForce) || math.Abs(es-el) > tol*math.Max(1, math.Abs(es)) {
		return fmt.Errorf("kernels disagree beyond %.0e", tol)
	}
	fmt.Println("ok")
	return nil
}

func compareIntegrators(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, nil)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	fmt.Printf("comparing integrators (N=%d, dt=%.4f, steps=%d)\n\n", cfg.Particles, cfg.Dt, cfg.Steps)
	fmt.Printf("%-12s  %-12s  %-12s  %-12s\n", "integrator", "final_E/N", "energy_drift", "time_ms")
	fmt.Println(strings.Repeat("-", 54))

	for _, name := range args {
		c := *cfg
		c.Integrator = name

		exp, err := experiment.New(&c)
		if err != nil {
			fmt.Printf("%-12s  error: %v\n", name, err)
			continue
		}

		start := time.Now()
		result, err := exp.Run(ctx)
		elapsed := time.Since(start)
		if err != nil {
			fmt.Printf("%-12s  error: %v\n", name, err)
			continue
		}

		final := result.Total[len(result.Total)-1] / float64(c.Particles)
		fmt.Printf("%-12s  %12.6f  %12.2e  %12.2f\n", name, final, result.EnergyDrift, float64(elapsed.Microseconds())/1000)
	}

	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}

	exp, err := experiment.New(cfg)
	if err != nil {
		return err
	}
	rec := analysis.NewRecorder(1)
	exp.GetSimulator().AddObserver(rec)

	ctx, cancel := signalContext()
	defer cancel()

	result, err := exp.Run(ctx)
	if err != nil {
		return err
	}

	frames := rec.Frames()
	if len(frames) < 4 {
		return fmt.Errorf("need at least 4 samples, got %d", len(frames))
	}
	interval := rec.Interval()

	msd := analysis.MSD(frames)
	vacf := analysis.VACF(frames)
	dEinstein := analysis.EinsteinDiffusion(msd, interval, skipFrac)
	dGreenKubo := analysis.GreenKuboDiffusion(vacf, interval)

	fmt.Printf("samples: %d (every %.4f)\n\n", len(frames), interval)

	fmt.Println(asciigraph.Plot(msd,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption("mean squared displacement"),
	))
	fmt.Println()

	fmt.Println(asciigraph.Plot(analysis.Normalize(vacf),
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption("normalized velocity autocorrelation"),
	))
	fmt.Println()

	fmt.Printf("diffusion (Einstein):   %.5f\n", dEinstein)
	fmt.Printf("diffusion (Green-Kubo): %.5f\n", dGreenKubo)

	if freq := analysis.DominantFrequency(analysis.KineticSeries(frames, cfg.Mass), interval); freq > 0 {
		fmt.Printf("kinetic energy dominant frequency: %.4f (period %.4f)\n", freq, 1/freq)
	}
	printMetrics(result)
	return nil
}

func runEnsemble(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	fmt.Printf("running %d replicas from seed %d...\n", replicas, cfg.Seed)
	start := time.Now()
	results, err := experiment.RunEnsemble(ctx, cfg, replicas)
	if err != nil {
		return err
	}
	fmt.Printf("completed in %v\n\n", time.Since(start))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "METRIC\tMEAN\tSTDDEV")
	for _, s := range experiment.Summarize(results) {
		fmt.Fprintf(w, "%s\t%.6g\t%.3g\n", s.Name, s.Mean, s.StdDev)
	}
	return w.Flush()
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	results, err := automation.RunSweep(ctx, &automation.ParameterSweep{
		Base:      cfg,
		ParamName: sweepParam,
		ParamMin:  sweepMin,
		ParamMax:  sweepMax,
		NumSteps:  sweepN,
	}, os.Stderr)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tT\tP\tU/N\tDRIFT\n", strings.ToUpper(sweepParam))
	for _, r := range results {
		fmt.Fprintf(w, "%.4f\t%.4f\t%.4f\t%.4f\t%.2e\n",
			r.ParamValue, r.MeanTemperature, r.MeanPressure, r.MeanPotential, r.EnergyDrift)
	}
	return w.Flush()
}

func runTune(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	if len(tuneLo) != len(tuneParams) || len(tuneHi) != len(tuneParams) {
		return fmt.Errorf("need one --lo and --hi per --param")
	}

	ranges := make([][]float64, len(tuneParams))
	for i := range tuneParams {
		ranges[i] = optim.Linspace(tuneLo[i], tuneHi[i], tunePoints)
	}
	g, err := optim.NewGridSearch(tuneParams, ranges)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	best, all, err := g.Search(ctx, cfg, optim.MetricObjective(tuneMetric))
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\t%s\n", strings.ToUpper(strings.Join(tuneParams, "\t")), strings.ToUpper(tuneMetric))
	for _, p := range all {
		for _, name := range tuneParams {
			fmt.Fprintf(w, "%.5g\t", p.Params[name])
		}
		if p.Err != nil {
			fmt.Fprintf(w, "error: %v\n", p.Err)
			continue
		}
		fmt.Fprintf(w, "%.4e\n", p.Score)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Printf("\nbest: %v (%s %.4e)\n", best.Params, tuneMetric, best.Score)
	return nil
}

func runScenario(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	fmt.Printf("scenario: %s (%d steps)\n", sc.Name, len(sc.Steps))
	results, err := automation.RunScenario(ctx, sc, os.Stdout)
	if err != nil {
		return err
	}

	for _, r := range results {
		runID, err := st.Save(r.Config, r.Kernel, r.Result)
		if err != nil {
			return err
		}
		fmt.Printf("  saved %s (drift %.2e)\n", runID, r.Result.EnergyDrift)
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
	fmt.Fprintln(w, "ID\tMODEL\tTIME\tN\tSTEPS\tDT\tKERNEL\tINTEG\tDRIFT")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%.4f\t%s\t%s\t%.2e\n",
			run.ID,
			run.Model,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Particles,
			run.StepsTaken,
			run.Dt,
			run.Kernel,
			run.Integrator,
			run.EnergyDrift,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	series, err := st.LoadSeries(runID)
	if err != nil {
		return err
	}

	if len(series.Times) == 0 {
		return fmt.Errorf("no data to plot")
	}

	if svgPath != "" {
		svg := export.SeriesToSVG(series.Times, export.EnergyLines(series), 800, 400)
		return export.WriteSVG(os.Stdout, svgPath, svg)
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("model: %s, N=%d\n", meta.Model, meta.Particles)
	fmt.Printf("samples: %d\n\n", len(series.Times))

	perParticle := func(v []float64) []float64 {
		out := make([]float64, len(v))
		for i := range v {
			out[i] = v[i] / float64(meta.Particles)
		}
		return out
	}

	for _, l := range export.EnergyLines(series) {
		fmt.Println(asciigraph.Plot(perParticle(l.Values),
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(l.Name+" energy per particle"),
		))
		fmt.Println()
	}

	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func exportCSV(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	series, err := st.LoadSeries(args[0])
	if err != nil {
		return err
	}

	if len(series.Times) == 0 {
		return fmt.Errorf("no data to export")
	}

	w := csv.NewWriter(os.Stdout)
	defer w.Flush()

	if err := w.Write([]string{"time", "kinetic", "potential", "total"}); err != nil {
		return err
	}

	f := func(v float64) string { return strconv.FormatFloat(v, 'f', 8, 64) }
	for i := range series.Times {
		row := []string{f(series.Times[i]), f(series.Kinetic[i]), f(series.Potential[i]), f(series.Total[i])}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	if outPath != "" {
		return st.ExportJSONFile(outPath, args[0])
	}
	return st.ExportJSON(os.Stdout, args[0])
}
