// Command modalsynth drives pkg/driver.Synthesize from the command line,
// loading goal theories from pkg/theories by name and reporting accepted
// axioms plus the completeness verdict.
package main

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/gitrdm/modalsynth/internal/obslog"
	"github.com/gitrdm/modalsynth/internal/parallel"
	"github.com/gitrdm/modalsynth/pkg/config"
	"github.com/gitrdm/modalsynth/pkg/driver"
	"github.com/gitrdm/modalsynth/pkg/theories"
)

var (
	logLevel       string
	logFile        string
	goalTheoryName string
	atom           string
	modalDepth     int
	modelSizeBound int
	timeoutSeconds int
	batchFile      string
	workers        int
)

func main() {
	root := &cobra.Command{
		Use:   "modalsynth",
		Short: "Counterexample-guided synthesizer of modal-logic axiomatizations",
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&logFile, "log-file", "", "optional log file path, in addition to stdout")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Synthesize an axiomatization for a single named goal theory",
		RunE:  runOne,
	}
	runCmd.Flags().StringVar(&goalTheoryName, "goal-theory", "", fmt.Sprintf("goal theory name (one of %v)", theories.Names()))
	runCmd.Flags().StringVar(&atom, "atom", "p", "the propositional letter (exactly one is supported)")
	runCmd.Flags().IntVar(&modalDepth, "modal-depth", 3, "modal/boolean nesting depth bound")
	runCmd.Flags().IntVar(&modelSizeBound, "model-size-bound", 4, "world carrier size bound")
	runCmd.Flags().IntVar(&timeoutSeconds, "timeout", 60, "search timeout in seconds")
	_ = runCmd.MarkFlagRequired("goal-theory")

	batchCmd := &cobra.Command{
		Use:   "batch",
		Short: "Run every experiment in a YAML batch file concurrently",
		RunE:  runBatch,
	}
	batchCmd.Flags().StringVar(&batchFile, "file", "", "path to a batch YAML file")
	batchCmd.Flags().IntVar(&workers, "workers", 4, "number of concurrent workers")
	batchCmd.Flags().IntVar(&timeoutSeconds, "timeout", 60, "per-experiment search timeout in seconds")
	_ = batchCmd.MarkFlagRequired("file")

	root.AddCommand(runCmd, batchCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runOne(cmd *cobra.Command, args []string) error {
	if err := obslog.Init(logLevel, logFile); err != nil {
		return fmt.Errorf("modalsynth: %w", err)
	}

	exp := config.Experiment{
		Name:           "cli-run",
		GoalTheory:     theories.Name(goalTheoryName),
		Atoms:          []string{atom},
		ModalDepth:     modalDepth,
		ModelSizeBound: modelSizeBound,
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), time.Duration(timeoutSeconds)*time.Second)
	defer cancel()

	result, err := synthesizeExperiment(ctx, exp)
	if err != nil {
		return err
	}
	printResult(exp, result)
	return nil
}

func runBatch(cmd *cobra.Command, args []string) error {
	if err := obslog.Init(logLevel, logFile); err != nil {
		return fmt.Errorf("modalsynth: %w", err)
	}

	batch, err := config.LoadBatch(batchFile)
	if err != nil {
		return err
	}

	pool := parallel.NewWorkerPool(workers)
	defer pool.Shutdown()

	type outcome struct {
		exp    config.Experiment
		result driver.Result
		err    error
	}
	outcomes := make([]outcome, len(batch.Experiments))

	var wg sync.WaitGroup
	for i, exp := range batch.Experiments {
		i, exp := i, exp
		wg.Add(1)
		err := pool.Submit(cmd.Context(), func() {
			defer wg.Done()
			runCtx, cancel := context.WithTimeout(cmd.Context(), time.Duration(timeoutSeconds)*time.Second)
			defer cancel()
			result, err := synthesizeExperiment(runCtx, exp)
			outcomes[i] = outcome{exp: exp, result: result, err: err}
		})
		if err != nil {
			wg.Done()
			fmt.Fprintf(os.Stderr, "experiment %q: submit failed: %v\n", exp.Name, err)
		}
	}
	wg.Wait()

	for _, o := range outcomes {
		if o.err != nil {
			fmt.Fprintf(os.Stderr, "experiment %q failed: %v\n", o.exp.Name, o.err)
			continue
		}
		printResult(o.exp, o.result)
	}
	return nil
}

func synthesizeExperiment(ctx context.Context, exp config.Experiment) (driver.Result, error) {
	goalTheory, frame, ok := theories.Lookup(exp.GoalTheory)
	if !ok {
		return driver.Result{}, fmt.Errorf("modalsynth: unknown goal theory %q", exp.GoalTheory)
	}

	return driver.Synthesize(ctx, driver.Params{
		TrivialTheory:  frame.Trivial(),
		GoalTheory:     goalTheory,
		WorldSort:      frame.WorldSort,
		Accessibility:  frame.Accessibility,
		Proposition:    frame.Proposition,
		Atoms:          exp.Atoms,
		ModalDepth:     exp.ModalDepth,
		ModelSizeBound: exp.ModelSizeBound,
	})
}

func printResult(exp config.Experiment, result driver.Result) {
	fmt.Printf("experiment %q (goal theory %s, run %s)\n", exp.Name, exp.GoalTheory, result.RunID)
	if len(result.TrueFormulas) == 0 {
		fmt.Println("  no axioms accepted")
	}
	for _, f := range result.TrueFormulas {
		fmt.Printf("  accepted: %s\n", f)
	}
	fmt.Printf("  complete: %v\n", result.Complete)
}
