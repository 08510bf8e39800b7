package main

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/odelab/internal/analysis"
	"github.com/san-kum/odelab/internal/compare"
	"github.com/san-kum/odelab/internal/config"
	"github.com/san-kum/odelab/internal/integrators"
	"github.com/san-kum/odelab/internal/models"
	"github.com/san-kum/odelab/internal/runner"
	"github.com/san-kum/odelab/internal/store"
	"github.com/san-kum/odelab/internal/viz"
)

var (
	dataDir    string
	configFile string
	method     string
	stepSize   float64
	adaptive   bool
	atol       float64
	rtol       float64
	halvings   int
	normName   string
	timeout    time.Duration
	saveRun    bool
	asJSON     bool
	plot       bool
	frameRate  int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "odelab",
		Short: "numerical ODE method comparison lab",
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".odelab", "data directory")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")

	modelsCmd := &cobra.Command{
		Use:   "models",
		Short: "list available models",
		RunE:  listModels,
	}

	runCmd := &cobra.Command{
		Use:   "run [model]",
		Short: "integrate one model with one method",
		Args:  cobra.ExactArgs(1),
		RunE:  runModel,
	}
	runCmd.Flags().StringVar(&method, "method", "rk4", "integration method (euler|rk4|rk45)")
	runCmd.Flags().Float64Var(&stepSize, "h", 0.1, "fixed step size")
	runCmd.Flags().BoolVar(&adaptive, "adaptive", false, "use adaptive stepping")
	runCmd.Flags().Float64Var(&atol, "atol", 1e-8, "absolute tolerance (adaptive)")
	runCmd.Flags().Float64Var(&rtol, "rtol", 1e-8, "relative tolerance (adaptive)")
	runCmd.Flags().BoolVar(&plot, "plot", false, "plot the trajectory")
	runCmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "wall-clock limit")

	compareCmd := &cobra.Command{
		Use:   "compare [model] [method...]",
		Short: "compare methods on the same model",
		Args:  cobra.MinimumNArgs(2),
		RunE:  compareMethods,
	}
	compareCmd.Flags().Float64Var(&stepSize, "h", 0.1, "fixed step size")
	compareCmd.Flags().Float64Var(&atol, "atol", 1e-8, "absolute tolerance (rk45)")
	compareCmd.Flags().Float64Var(&rtol, "rtol", 1e-8, "relative tolerance (rk45)")
	compareCmd.Flags().StringVar(&normName, "norm", "max", "error norm (max|rms)")
	compareCmd.Flags().BoolVar(&saveRun, "save", false, "persist the comparison")
	compareCmd.Flags().BoolVar(&asJSON, "json", false, "print result as JSON")
	compareCmd.Flags().DurationVar(&timeout, "timeout", time.Minute, "wall-clock limit")

	convergeCmd := &cobra.Command{
		Use:   "converge [model] [method]",
		Short: "estimate empirical convergence order",
		Args:  cobra.ExactArgs(2),
		RunE:  convergeMethod,
	}
	convergeCmd.Flags().Float64Var(&stepSize, "h", 0.5, "starting step size")
	convergeCmd.Flags().IntVar(&halvings, "halvings", 4, "number of step-size halvings")
	convergeCmd.Flags().StringVar(&normName, "norm", "max", "error norm (max|rms)")
	convergeCmd.Flags().DurationVar(&timeout, "timeout", time.Minute, "wall-clock limit")

	runsCmd := &cobra.Command{
		Use:   "runs",
		Short: "list saved comparisons",
		RunE:  listRuns,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export a saved comparison as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	liveCmd := &cobra.Command{
		Use:   "live [model]",
		Short: "watch an integration live in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE:  runLive,
	}
	liveCmd.Flags().StringVar(&method, "method", "rk4", "integration method")
	liveCmd.Flags().Float64Var(&stepSize, "h", 0.01, "fixed step size")
	liveCmd.Flags().IntVar(&frameRate, "fps", 30, "frame rate")

	rootCmd.AddCommand(modelsCmd, runCmd, compareCmd, convergeCmd, runsCmd, exportCmd, liveCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func loadRegistry() (*models.Registry, *config.Config, error) {
	cfg := config.DefaultConfig()
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, nil, err
		}
		cfg = loaded
	}
	reg, err := cfg.BuildRegistry()
	if err != nil {
		return nil, nil, err
	}
	return reg, cfg, nil
}

func listModels(cmd *cobra.Command, args []string) error {
	reg, _, err := loadRegistry()
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tDIM\tEQUATION")
	for s := range reg.List() {
		m, _ := reg.Get(s.ID)
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", s.ID, s.Name, s.Dim, m.Equation)
	}
	return w.Flush()
}

func policyFromFlags() runner.StepPolicy {
	if adaptive || method == "rk45" {
		return runner.AdaptiveStep(atol, rtol)
	}
	return runner.FixedStep(stepSize)
}

func runModel(cmd *cobra.Command, args []string) error {
	reg, _, err := loadRegistry()
	if err != nil {
		return err
	}
	m, err := reg.Get(args[0])
	if err != nil {
		return err
	}
	st, err := integrators.New(method)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	start := time.Now()
	tr, err := runner.Run(ctx, m, st, policyFromFlags())
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	last, y := tr.Last()
	fmt.Printf("%s | %s | %d points | %v\n", m.ID, st.Name(), tr.Len(), elapsed)
	if tr.Rejected > 0 {
		fmt.Printf("accepted %d, rejected %d\n", tr.Accepted, tr.Rejected)
	}
	fmt.Printf("y(%g) = %v\n", last, []float64(y))

	if m.Analytic != nil {
		e := analysis.GlobalError(tr, analysis.AnalyticRef(m.Analytic), analysis.MaxAbs)
		fmt.Printf("global error (max): %.3e\n", e)
	}

	if plot {
		series := make([]float64, tr.Len())
		for i, s := range tr.States {
			series[i] = s[0]
		}
		fmt.Println()
		fmt.Println(asciigraph.Plot(series,
			asciigraph.Height(12),
			asciigraph.Width(80),
			asciigraph.Caption("y0"),
		))
	}
	return nil
}

func compareMethods(cmd *cobra.Command, args []string) error {
	reg, cfg, err := loadRegistry()
	if err != nil {
		return err
	}

	reqs := make([]compare.RunRequest, 0, len(args)-1)
	for _, name := range args[1:] {
		pol := runner.FixedStep(stepSize)
		if name == "rk45" {
			pol = runner.AdaptiveStep(atol, rtol)
		}
		reqs = append(reqs, compare.RunRequest{Method: name, Policy: pol})
	}

	svc := compare.New(reg,
		compare.WithNorm(analysis.Norm(normName)),
		compare.WithWorkers(cfg.Workers),
	)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	cmp, err := svc.Compare(ctx, args[0], reqs)
	if err != nil {
		return err
	}

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(cmp); err != nil {
			return err
		}
	} else {
		printComparison(cmp)
	}

	if saveRun {
		runID, err := store.New(dataDir).Save(cmp)
		if err != nil {
			return err
		}
		fmt.Printf("\nsaved as %s\n", runID)
	}
	return nil
}

func printComparison(cmp *compare.Comparison) {
	fmt.Printf("%s: %s\n\n", cmp.ModelID, cmp.Equation)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "METHOD\tPOLICY\tORDER\tSTEPS\tREJECTED\tERROR\tTIME")
	for _, r := range cmp.Results {
		if !r.OK() {
			fmt.Fprintf(w, "%s\t%s\t%d\t-\t-\tFAILED: %s\t-\n", r.Method, r.Policy, r.Order, r.Error)
			continue
		}
		errStr := "n/a"
		if r.GlobalError != nil {
			errStr = fmt.Sprintf("%.3e", *r.GlobalError)
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%s\t%.2fms\n",
			r.Method, r.Policy, r.Order, r.Steps, r.Rejected, errStr, r.Millis)
	}
	w.Flush()

	if cmp.Best != "" {
		fmt.Printf("\nbest: %s (%s)\n", cmp.Best, cmp.BestReason)
	}
}

func convergeMethod(cmd *cobra.Command, args []string) error {
	reg, _, err := loadRegistry()
	if err != nil {
		return err
	}
	m, err := reg.Get(args[0])
	if err != nil {
		return err
	}
	st, err := integrators.New(args[1])
	if err != nil {
		return err
	}
	norm := analysis.Norm(normName)
	if err := norm.Validate(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	study, err := analysis.Converge(ctx, m, st, stepSize, halvings, norm)
	if err != nil {
		return err
	}

	fmt.Printf("%s / %s (theoretical order %d)\n\n", m.ID, st.Name(), st.Order())

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "H\tERROR\tOBSERVED ORDER")
	for i := range study.Steps {
		orderStr := "-"
		if i > 0 && i-1 < len(study.Orders) {
			orderStr = fmt.Sprintf("%.3f", study.Orders[i-1])
		}
		fmt.Fprintf(w, "%.5f\t%.3e\t%s\n", study.Steps[i], study.Errors[i], orderStr)
	}
	w.Flush()

	if len(study.Errors) > 1 {
		logErrs := make([]float64, len(study.Errors))
		for i, e := range study.Errors {
			logErrs[i] = math.Log10(e)
		}
		fmt.Println()
		fmt.Println(asciigraph.Plot(logErrs,
			asciigraph.Height(10),
			asciigraph.Width(60),
			asciigraph.Caption("log10(error) per halving"),
		))
	}

	fmt.Printf("\nobserved order: %.3f\n", study.ObservedOrder)
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	runs, err := store.New(dataDir).List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no saved runs")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tMODEL\tMETHODS\tBEST\tWHEN")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%v\t%s\t%s\n",
			r.ID, r.Model, r.Methods, r.Best, r.Timestamp.Format(time.RFC3339))
	}
	return w.Flush()
}

func exportRun(cmd *cobra.Command, args []string) error {
	cmp, err := store.New(dataDir).LoadComparison(args[0])
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(cmp)
}

func runLive(cmd *cobra.Command, args []string) error {
	reg, _, err := loadRegistry()
	if err != nil {
		return err
	}
	m, err := reg.Get(args[0])
	if err != nil {
		return err
	}
	st, err := integrators.New(method)
	if err != nil {
		return err
	}
	return viz.Run(m, st, stepSize, frameRate)
}
