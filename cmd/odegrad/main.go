package main

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/diff/fd"

	"github.com/san-kum/odegrad/internal/analysis"
	"github.com/san-kum/odegrad/internal/config"
	"github.com/san-kum/odegrad/internal/experiment"
	"github.com/san-kum/odegrad/internal/export"
	"github.com/san-kum/odegrad/internal/neuralode"
	"github.com/san-kum/odegrad/internal/optim"
	"github.com/san-kum/odegrad/internal/solvers"
	"github.com/san-kum/odegrad/internal/storage"
	"github.com/san-kum/odegrad/internal/tensor"
	"github.com/san-kum/odegrad/internal/train"
	"github.com/san-kum/odegrad/internal/viz"
)

var (
	dataDir    string
	t0         float64
	t1         float64
	gridPoints int
	solverName string
	x0Flag     []float64
	stateShape []int
	seed       int64
	compile    bool
	configFile string
	preset     string
	// grad
	fdCheck bool
	// train
	optName    string
	learnRate  float64
	momentum   float64
	epochs     int
	numSamples int
	targetSeed int64
	live       bool
	// search
	lrGrid       []float64
	momentumGrid []float64
	// convergence
	solverNames []string
	gridSizes   []int
	refPoints   int
	// phase plot axes
	xAxis int
	yAxis int
	// analyze
	component int
	// export-svg
	svgOut  string
	svgDots bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "odegrad",
		Short: "neural ode gradient lab",
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".odegrad", "data directory")

	runCmd := &cobra.Command{
		Use:   "run [model]",
		Short: "integrate a model forward and save the trajectory",
		Args:  cobra.ExactArgs(1),
		RunE:  runModel,
	}
	addSolveFlags(runCmd)
	runCmd.Flags().BoolVar(&compile, "compile", false, "precompile the dynamics")
	runCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	runCmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")

	gradCmd := &cobra.Command{
		Use:   "grad [model]",
		Short: "run the adjoint pass and report gradients",
		Args:  cobra.ExactArgs(1),
		RunE:  gradModel,
	}
	addSolveFlags(gradCmd)
	gradCmd.Flags().BoolVar(&fdCheck, "fd-check", false, "compare dL/dx0 against finite differences")
	gradCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	gradCmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")

	trainCmd := &cobra.Command{
		Use:   "train [model]",
		Short: "fit a model's parameters to a reference flow",
		Args:  cobra.ExactArgs(1),
		RunE:  trainModel,
	}
	addSolveFlags(trainCmd)
	trainCmd.Flags().StringVar(&optName, "opt", "adam", "optimizer (sgd, adam)")
	trainCmd.Flags().Float64Var(&learnRate, "lr", 0.05, "learning rate")
	trainCmd.Flags().Float64Var(&momentum, "momentum", 0.0, "sgd momentum")
	trainCmd.Flags().IntVar(&epochs, "epochs", 200, "training epochs")
	trainCmd.Flags().IntVar(&numSamples, "samples", 4, "training samples")
	trainCmd.Flags().Int64Var(&targetSeed, "target-seed", 7, "seed for the reference dynamics")
	trainCmd.Flags().BoolVar(&live, "live", false, "live training monitor")
	trainCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	trainCmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")

	searchCmd := &cobra.Command{
		Use:   "search [model]",
		Short: "grid-search training hyperparameters",
		Args:  cobra.ExactArgs(1),
		RunE:  searchHyperparams,
	}
	addSolveFlags(searchCmd)
	searchCmd.Flags().StringVar(&optName, "opt", "adam", "optimizer (sgd, adam)")
	searchCmd.Flags().Float64SliceVar(&lrGrid, "lr-grid", []float64{0.01, 0.05, 0.1}, "learning rates to try")
	searchCmd.Flags().Float64SliceVar(&momentumGrid, "momentum-grid", []float64{0, 0.5, 0.9}, "momenta to try (sgd only)")
	searchCmd.Flags().IntVar(&epochs, "epochs", 200, "training epochs per grid point")
	searchCmd.Flags().IntVar(&numSamples, "samples", 4, "training samples")
	searchCmd.Flags().Int64Var(&targetSeed, "target-seed", 7, "seed for the reference dynamics")

	convergenceCmd := &cobra.Command{
		Use:   "convergence [model]",
		Short: "measure per-stepper convergence order",
		Args:  cobra.ExactArgs(1),
		RunE:  runConvergence,
	}
	convergenceCmd.Flags().Float64Var(&t0, "t0", 0.0, "interval start")
	convergenceCmd.Flags().Float64Var(&t1, "t1", 1.0, "interval end")
	convergenceCmd.Flags().Float64SliceVar(&x0Flag, "x0", nil, "initial state (flat)")
	convergenceCmd.Flags().Int64Var(&seed, "seed", time.Now().UnixNano(), "random seed")
	convergenceCmd.Flags().StringSliceVar(&solverNames, "solvers", []string{"euler", "rk2", "rk4"}, "steppers to study")
	convergenceCmd.Flags().IntSliceVar(&gridSizes, "sizes", []int{25, 50, 100, 200}, "grid sizes")
	convergenceCmd.Flags().IntVar(&refPoints, "ref-points", 800, "reference grid size")

	compareCmd := &cobra.Command{
		Use:   "compare [model] [solver1] [solver2] ...",
		Short: "compare steppers on the same model",
		Args:  cobra.MinimumNArgs(2),
		RunE:  compareSolvers,
	}
	compareCmd.Flags().Float64Var(&t0, "t0", 0.0, "interval start")
	compareCmd.Flags().Float64Var(&t1, "t1", 1.0, "interval end")
	compareCmd.Flags().IntVar(&gridPoints, "points", 100, "grid points")
	compareCmd.Flags().Float64SliceVar(&x0Flag, "x0", nil, "initial state (flat)")
	compareCmd.Flags().Int64Var(&seed, "seed", time.Now().UnixNano(), "random seed")
	compareCmd.Flags().IntVar(&refPoints, "ref-points", 800, "reference grid size")

	benchCmd := &cobra.Command{
		Use:   "bench [model]",
		Short: "benchmark forward solves",
		Args:  cobra.ExactArgs(1),
		RunE:  benchModel,
	}
	benchCmd.Flags().Float64Var(&t0, "t0", 0.0, "interval start")
	benchCmd.Flags().Float64Var(&t1, "t1", 1.0, "interval end")
	benchCmd.Flags().StringVar(&solverName, "solver", "rk4", "stepper")
	benchCmd.Flags().Int64Var(&seed, "seed", 42, "random seed")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list saved runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot saved trajectory components",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	phaseCmd := &cobra.Command{
		Use:   "phase [run_id]",
		Short: "phase space plot",
		Args:  cobra.ExactArgs(1),
		RunE:  phasePlot,
	}
	phaseCmd.Flags().IntVar(&xAxis, "x-axis", 0, "state index for x-axis")
	phaseCmd.Flags().IntVar(&yAxis, "y-axis", 1, "state index for y-axis")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "frequency analysis of a saved run",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().IntVar(&component, "component", 0, "state component to analyze")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run data to CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return storage.New(dataDir).ExportCSV(os.Stdout, args[0])
		},
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return storage.New(dataDir).ExportJSON(os.Stdout, args[0])
		},
	}

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "export a saved trajectory as SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().IntVar(&xAxis, "x-axis", 0, "state index for x-axis")
	exportSVGCmd.Flags().IntVar(&yAxis, "y-axis", 1, "state index for y-axis")
	exportSVGCmd.Flags().StringVar(&svgOut, "out", "", "output file (default stdout)")
	exportSVGCmd.Flags().BoolVar(&svgDots, "dots", false, "render braille dots instead of a polyline")

	modelsCmd := &cobra.Command{
		Use:   "models",
		Short: "list available models",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range experiment.NewRegistry().ListModels() {
				fmt.Println(name)
			}
			return nil
		},
	}

	presetsCmd := &cobra.Command{
		Use:   "presets [model]",
		Short: "list available presets for a model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			presets := config.ListPresets(args[0])
			if len(presets) == 0 {
				fmt.Printf("no presets for model: %s\n", args[0])
				return nil
			}
			fmt.Printf("presets for %s:\n", args[0])
			for _, p := range presets {
				fmt.Printf("  %s\n", p)
			}
			return nil
		},
	}

	rootCmd.AddCommand(runCmd, gradCmd, trainCmd, searchCmd, convergenceCmd, compareCmd,
		benchCmd, listCmd, plotCmd, phaseCmd, analyzeCmd, exportCSVCmd, exportJSONCmd,
		exportSVGCmd, modelsCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addSolveFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&t0, "t0", 0.0, "interval start")
	cmd.Flags().Float64Var(&t1, "t1", 1.0, "interval end")
	cmd.Flags().IntVar(&gridPoints, "points", 100, "grid points")
	cmd.Flags().StringVar(&solverName, "solver", "rk4", "stepper (euler, rk2, rk4)")
	cmd.Flags().Float64SliceVar(&x0Flag, "x0", nil, "initial state (flat)")
	cmd.Flags().Int64Var(&seed, "seed", time.Now().UnixNano(), "random seed")
}

// resolveConfig folds preset and config file values into the flag
// variables. Presets apply unconditionally; config file values only
// fill in flags the user did not set.
func resolveConfig(cmd *cobra.Command, model string) error {
	if preset != "" {
		cfg := config.GetPreset(model, preset)
		if cfg == nil {
			return fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(model))
		}
		solverName = cfg.Solver
		t0 = cfg.T0
		t1 = cfg.T1
		gridPoints = cfg.GridPoints
		x0Flag = cfg.InitState
		stateShape = cfg.StateShape
		seed = cfg.Seed
		compile = cfg.Compile
		if cfg.Train.Optimizer != "" {
			optName = cfg.Train.Optimizer
			learnRate = cfg.Train.LearningRate
			momentum = cfg.Train.Momentum
			epochs = cfg.Train.Epochs
		}
	}

	if configFile != "" {
		cfg, err := config.Load(configFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if !cmd.Flags().Changed("solver") {
			solverName = cfg.Solver
		}
		if !cmd.Flags().Changed("t0") {
			t0 = cfg.T0
		}
		if !cmd.Flags().Changed("t1") {
			t1 = cfg.T1
		}
		if !cmd.Flags().Changed("points") {
			gridPoints = cfg.GridPoints
		}
		if !cmd.Flags().Changed("x0") && len(cfg.InitState) > 0 {
			x0Flag = cfg.InitState
			stateShape = cfg.StateShape
		}
		if cfg.Seed != 0 && !cmd.Flags().Changed("seed") {
			seed = cfg.Seed
		}
		if cfg.Compile && cmd.Flags().Lookup("compile") != nil && !cmd.Flags().Changed("compile") {
			compile = true
		}
		if cfg.Train.Optimizer != "" && cmd.Flags().Lookup("opt") != nil {
			if !cmd.Flags().Changed("opt") {
				optName = cfg.Train.Optimizer
			}
			if !cmd.Flags().Changed("lr") {
				learnRate = cfg.Train.LearningRate
			}
			if !cmd.Flags().Changed("momentum") {
				momentum = cfg.Train.Momentum
			}
			if !cmd.Flags().Changed("epochs") {
				epochs = cfg.Train.Epochs
			}
		}
	}

	return nil
}

func experimentConfig(model string) experiment.Config {
	return experiment.Config{
		Model:      model,
		Solver:     solverName,
		T0:         t0,
		T1:         t1,
		GridPoints: gridPoints,
		InitState:  x0Flag,
		StateShape: stateShape,
		Seed:       seed,
		Compile:    compile,
	}
}

func runModel(cmd *cobra.Command, args []string) error {
	model := args[0]
	if err := resolveConfig(cmd, model); err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	exp := experiment.New(experimentConfig(model))
	if err := exp.Setup(experiment.NewRegistry()); err != nil {
		return err
	}

	fmt.Printf("integrating %s with %s over [%g, %g], %d points...\n",
		model, solverName, t0, t1, gridPoints)

	result, err := exp.Run(context.Background())
	if err != nil {
		return err
	}

	runID, err := st.Save(result)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", result.Elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("states: %d\n", len(result.States))
	fmt.Println("\nmetrics:")
	for name, val := range result.Metrics {
		fmt.Printf("  %s: %.6f\n", name, val)
	}

	return nil
}

func gradModel(cmd *cobra.Command, args []string) error {
	model := args[0]
	if err := resolveConfig(cmd, model); err != nil {
		return err
	}

	exp := experiment.New(experimentConfig(model))
	if err := exp.Setup(experiment.NewRegistry()); err != nil {
		return err
	}
	ode := exp.ODE()
	x0 := exp.InitState()

	final, err := ode.Forward(x0)
	if err != nil {
		return err
	}

	// Endpoint loss L = 0.5*|xN|^2, so dL/dxN is the endpoint itself.
	x0rec, dLdx0, dLdW, err := ode.Backward(final, final)
	if err != nil {
		return err
	}

	fmt.Printf("adjoint pass: %s with %s, %d points\n\n", model, solverName, gridPoints)
	fmt.Printf("endpoint norm:        %.6e\n", final.Norm())
	fmt.Printf("dL/dx0 norm:          %.6e\n", dLdx0.Norm())
	fmt.Printf("reconstruction error: %.3e\n", x0rec.MaxDiff(x0))
	if len(dLdW) == 0 {
		fmt.Println("parameters:           none")
	} else {
		fmt.Println("\nparameter gradients:")
		for i, g := range dLdW {
			fmt.Printf("  dL/dW[%d] %s  norm %.6e\n", i, g.ShapeString(), g.Norm())
		}
	}

	if fdCheck {
		return fdCheckGradient(ode, x0, dLdx0)
	}
	return nil
}

// fdCheckGradient prints adjoint vs central-difference entries of
// dL/dx0 for L = 0.5*|xN|^2.
func fdCheckGradient(ode *neuralode.NeuralODE, x0, dLdx0 tensor.Tensor) error {
	if x0.Len() > 12 {
		fmt.Printf("\nfd check skipped: state has %d entries\n", x0.Len())
		return nil
	}

	phi := func(v []float64) float64 {
		out, err := ode.Forward(tensor.FromSlice(v, x0.Shape()...))
		if err != nil {
			return math.NaN()
		}
		return 0.5 * out.Dot(out)
	}
	grad := fd.Gradient(nil, phi, x0.Data, &fd.Settings{Formula: fd.Central})

	fmt.Println("\nfd check (central differences):")
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "INDEX\tADJOINT\tFD\tABS DIFF")
	worst := 0.0
	for i := range grad {
		diff := math.Abs(dLdx0.Data[i] - grad[i])
		if diff > worst {
			worst = diff
		}
		fmt.Fprintf(w, "%d\t%.8e\t%.8e\t%.2e\n", i, dLdx0.Data[i], grad[i], diff)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("worst difference: %.2e\n", worst)
	return nil
}

func trainModel(cmd *cobra.Command, args []string) error {
	model := args[0]
	if err := resolveConfig(cmd, model); err != nil {
		return err
	}

	reg := experiment.NewRegistry()
	exp := experiment.New(experimentConfig(model))
	if err := exp.Setup(reg); err != nil {
		return err
	}

	samples, err := referenceSamples(reg, model, exp.InitState().Shape())
	if err != nil {
		return err
	}

	opt, err := buildOptimizer()
	if err != nil {
		return err
	}
	trainer := train.New(exp.ODE(), opt)

	if live {
		m := viz.NewMonitor(trainer, samples, epochs, model)
		p := tea.NewProgram(m)
		if _, err := p.Run(); err != nil {
			return err
		}
		return nil
	}

	fmt.Printf("training %s: %s lr=%g, %d epochs, %d samples\n\n",
		model, opt.Name(), learnRate, epochs, numSamples)

	interval := epochs / 10
	if interval < 1 {
		interval = 1
	}
	trainer.OnEpoch = func(e train.Epoch) {
		if e.Index == 0 || (e.Index+1)%interval == 0 {
			fmt.Printf("epoch %4d  loss %.6e\n", e.Index+1, e.Loss)
		}
	}

	losses, err := trainer.Run(context.Background(), samples, epochs)
	if err != nil {
		return err
	}

	fmt.Printf("\nloss: %.6e -> %.6e\n\n", losses[0], losses[len(losses)-1])
	fmt.Println(viz.PlotLoss(losses))
	return nil
}

// referenceSamples integrates random initial states through a fresh
// copy of the model seeded differently, so training has a reachable
// target flow.
func referenceSamples(reg *experiment.Registry, model string, shape []int) ([]train.Sample, error) {
	rng := rand.New(rand.NewSource(targetSeed))
	truth, err := reg.GetModel(model, rng)
	if err != nil {
		return nil, err
	}
	truthODE, err := neuralode.NewFromSolver(truth, solvers.Linspace(t0, t1, gridPoints), solverName)
	if err != nil {
		return nil, err
	}

	samples := make([]train.Sample, numSamples)
	for i := range samples {
		x0 := tensor.Randn(rng, 1.0, shape...)
		target, err := truthODE.Forward(x0)
		if err != nil {
			return nil, err
		}
		samples[i] = train.Sample{X0: x0, Target: target}
	}
	return samples, nil
}

func buildOptimizer() (train.Optimizer, error) {
	switch optName {
	case "sgd":
		if momentum > 0 {
			return train.NewSGDWithMomentum(learnRate, momentum), nil
		}
		return train.NewSGD(learnRate), nil
	case "adam":
		return train.NewAdam(learnRate), nil
	}
	return nil, fmt.Errorf("unknown optimizer: %s", optName)
}

func searchHyperparams(cmd *cobra.Command, args []string) error {
	model := args[0]

	reg := experiment.NewRegistry()
	base := experiment.New(experimentConfig(model))
	if err := base.Setup(reg); err != nil {
		return err
	}
	samples, err := referenceSamples(reg, model, base.InitState().Shape())
	if err != nil {
		return err
	}

	names := []string{"lr"}
	ranges := [][]float64{lrGrid}
	if optName == "sgd" {
		names = append(names, "momentum")
		ranges = append(ranges, momentumGrid)
	}
	search := optim.NewGridSearch(names, ranges)

	fmt.Printf("searching %d grid points (%s, %d epochs each)...\n", search.Size(), optName, epochs)

	objective := func(ctx context.Context, params map[string]float64) (float64, error) {
		// Fresh model per point so every evaluation starts from the
		// same seeded weights.
		exp := experiment.New(experimentConfig(model))
		if err := exp.Setup(reg); err != nil {
			return 0, err
		}
		opt, err := pointOptimizer(params)
		if err != nil {
			return 0, err
		}
		trainer := train.New(exp.ODE(), opt)
		losses, err := trainer.Run(ctx, samples, epochs)
		if err != nil {
			return 0, err
		}
		loss := losses[len(losses)-1]
		fmt.Printf("  %s  loss=%.3e\n", formatParams(params), loss)
		return loss, nil
	}

	bestParams, bestLoss, err := search.Search(context.Background(), objective)
	if err != nil {
		return err
	}

	fmt.Printf("\nbest: %s (loss %.3e)\n", formatParams(bestParams), bestLoss)
	return nil
}

func pointOptimizer(params map[string]float64) (train.Optimizer, error) {
	switch optName {
	case "sgd":
		if params["momentum"] > 0 {
			return train.NewSGDWithMomentum(params["lr"], params["momentum"]), nil
		}
		return train.NewSGD(params["lr"]), nil
	case "adam":
		return train.NewAdam(params["lr"]), nil
	}
	return nil, fmt.Errorf("unknown optimizer: %s", optName)
}

func formatParams(params map[string]float64) string {
	s := fmt.Sprintf("lr=%-8g", params["lr"])
	if m, ok := params["momentum"]; ok {
		s += fmt.Sprintf(" momentum=%-6g", m)
	}
	return s
}

func runConvergence(cmd *cobra.Command, args []string) error {
	model := args[0]

	reg := experiment.NewRegistry()
	rng := rand.New(rand.NewSource(seed))
	dyn, err := reg.GetModel(model, rng)
	if err != nil {
		return err
	}
	x0, err := resolveState(reg, model, rng)
	if err != nil {
		return err
	}

	reference, err := analysis.ReferenceEndpoint(dyn, t0, t1, x0, refPoints)
	if err != nil {
		return err
	}

	studies, err := analysis.CompareSteppers(dyn, solverNames, t0, t1, x0, gridSizes, reference)
	if err != nil {
		return err
	}

	fmt.Printf("convergence study: %s over [%g, %g], reference rk4 with %d points\n\n",
		model, t0, t1, refPoints)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SOLVER\tPOINTS\tH\tERROR\tRATIO")
	for _, study := range studies {
		ratios := study.Ratios()
		for i, p := range study.Points {
			ratio := ""
			if i > 0 {
				ratio = fmt.Sprintf("%.1f", ratios[i-1])
			}
			fmt.Fprintf(w, "%s\t%d\t%.5f\t%.3e\t%s\n", study.Solver, p.GridPoints, p.H, p.Err, ratio)
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Println()
	for _, study := range studies {
		fmt.Printf("%s: estimated order %.2f\n", study.Solver, study.EstimatedOrder())
	}

	fmt.Println()
	fmt.Println(viz.PlotConvergence(studies))
	return nil
}

func compareSolvers(cmd *cobra.Command, args []string) error {
	model := args[0]
	steppers := args[1:]

	reg := experiment.NewRegistry()
	rng := rand.New(rand.NewSource(seed))
	dyn, err := reg.GetModel(model, rng)
	if err != nil {
		return err
	}
	x0, err := resolveState(reg, model, rng)
	if err != nil {
		return err
	}

	reference, err := analysis.ReferenceEndpoint(dyn, t0, t1, x0, refPoints)
	if err != nil {
		return err
	}

	grid := solvers.Linspace(t0, t1, gridPoints)
	fmt.Printf("comparing steppers for %s (%d points over [%g, %g])\n\n", model, gridPoints, t0, t1)
	fmt.Printf("%-8s  %-14s  %-12s  %-10s\n", "solver", "endpoint_norm", "err_vs_ref", "time_ms")
	fmt.Println(strings.Repeat("-", 50))

	for _, name := range steppers {
		ode, err := neuralode.NewFromSolver(dyn, grid, name)
		if err != nil {
			fmt.Printf("%-8s  error: %v\n", name, err)
			continue
		}

		start := time.Now()
		final, err := ode.Forward(x0)
		elapsed := time.Since(start)
		if err != nil {
			fmt.Printf("%-8s  error: %v\n", name, err)
			continue
		}

		fmt.Printf("%-8s  %14.6f  %12.2e  %10.2f\n",
			name, final.Norm(), final.MaxDiff(reference), float64(elapsed.Microseconds())/1000)
	}

	return nil
}

func benchModel(cmd *cobra.Command, args []string) error {
	model := args[0]

	sizes := []int{100, 1000, 5000}
	reg := experiment.NewRegistry()

	fmt.Printf("benchmarking %s with %s\n\n", model, solverName)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "POINTS\tCOMPILED\tSTEPS\tTIME\tSTEPS/SEC")

	for _, n := range sizes {
		for _, precompiled := range []bool{false, true} {
			cfg := experiment.Config{
				Model:      model,
				Solver:     solverName,
				T0:         t0,
				T1:         t1,
				GridPoints: n,
				Seed:       seed,
				Compile:    precompiled,
			}

			exp := experiment.New(cfg)
			if err := exp.Setup(reg); err != nil {
				return err
			}
			result, err := exp.Run(context.Background())
			if err != nil {
				return err
			}

			steps := len(result.States) - 1
			rate := 0.0
			if s := result.Elapsed.Seconds(); s > 0 {
				rate = float64(steps) / s
			}
			fmt.Fprintf(w, "%d\t%v\t%d\t%v\t%.0f\n", n, precompiled, steps, result.Elapsed, rate)
		}
	}

	return w.Flush()
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
	fmt.Fprintln(w, "ID\tMODEL\tSOLVER\tPOINTS\tTIME\tELAPSED")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%.3fs\n",
			run.ID,
			run.Model,
			run.Solver,
			run.GridPoints,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.ElapsedSec,
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

	states, _, err := st.LoadStates(runID)
	if err != nil {
		return err
	}
	if len(states) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("model: %s\n", meta.Model)
	fmt.Printf("samples: %d\n\n", len(states))

	numVars := len(states[0])
	maxPlots := 6
	if numVars > maxPlots {
		numVars = maxPlots
	}

	for c := 0; c < numVars; c++ {
		fmt.Println(viz.PlotSeries(states, c, fmt.Sprintf("x%d vs time", c)))
		fmt.Println()
	}

	return nil
}

func phasePlot(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	states, _, err := st.LoadStates(runID)
	if err != nil {
		return err
	}

	fmt.Printf("phase space plot: %s\n", meta.ID)
	fmt.Printf("model: %s\n\n", meta.Model)

	out, err := viz.PhasePlot(states, xAxis, yAxis, 70, 20)
	if err != nil {
		return err
	}
	fmt.Println(out)
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	states, times, err := st.LoadStates(runID)
	if err != nil {
		return err
	}
	if len(states) < 2 {
		return fmt.Errorf("run too short to analyze")
	}
	if len(states[0]) <= component {
		return fmt.Errorf("run has no component x%d", component)
	}

	data := make([]float64, len(states))
	for i := range states {
		data[i] = states[i][component]
	}

	span := times[len(times)-1] - times[0]
	if span <= 0 {
		return fmt.Errorf("degenerate time span")
	}
	sampleRate := float64(len(data)-1) / span

	fmt.Printf("frequency analysis: %s\n", meta.ID)
	fmt.Printf("model: %s, component x%d, sample rate %.2f per time unit\n\n", meta.Model, component, sampleRate)

	ps := analysis.PowerSpectrum(data)
	if len(ps) >= 8 {
		fmt.Println(viz.PlotSpectrum(ps[:len(ps)/2], "spectrum magnitude, low bins"))
		fmt.Println()
	}

	freq, power := analysis.DominantFrequency(data, sampleRate)
	if power < 1e-9 {
		fmt.Println("no dominant frequency, signal is flat")
		return nil
	}
	fmt.Printf("dominant frequency: %.4f cycles per time unit (power %.2f)\n", freq, power)
	fmt.Printf("period: %.4f time units\n", 1/freq)
	return nil
}

func exportSVG(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	states, times, err := st.LoadStates(args[0])
	if err != nil {
		return err
	}
	if len(states) == 0 {
		return fmt.Errorf("run has no states")
	}

	var doc string
	if svgDots {
		canvas, err := viz.PhaseCanvas(states, xAxis, yAxis, 70, 20)
		if err != nil {
			return err
		}
		doc = export.CanvasToSVG(canvas, 4)
	} else {
		xs := make([]float64, len(states))
		ys := make([]float64, len(states))
		if len(states[0]) == 1 {
			// Scalar runs plot against time instead of a phase pair.
			for i := range states {
				xs[i] = times[i]
				ys[i] = states[i][0]
			}
		} else {
			if len(states[0]) <= xAxis || len(states[0]) <= yAxis {
				return fmt.Errorf("state dimension too small for axes x%d/x%d", xAxis, yAxis)
			}
			for i := range states {
				xs[i] = states[i][xAxis]
				ys[i] = states[i][yAxis]
			}
		}
		doc = export.TrajectoryToSVG(xs, ys, 800, 600, "#00ff88")
	}

	if svgOut == "" {
		fmt.Println(doc)
		return nil
	}
	if err := os.WriteFile(svgOut, []byte(doc), 0644); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", svgOut)
	return nil
}

func resolveState(reg *experiment.Registry, model string, rng *rand.Rand) (tensor.Tensor, error) {
	if len(x0Flag) > 0 {
		return tensor.FromSlice(x0Flag, len(x0Flag)), nil
	}
	return reg.DefaultState(model, rng)
}
