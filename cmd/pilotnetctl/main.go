package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"pilotnet/internal/dataset"
	"pilotnet/internal/model"
	"pilotnet/internal/storage"
	"pilotnet/internal/trainer"
	pilotapi "pilotnet/pkg/pilotnet"
)

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("missing command")
	}

	switch args[0] {
	case "train":
		return runTrain(ctx, args[1:])
	case "infer":
		return runInfer(ctx, args[1:])
	case "dataset":
		return runDataset(ctx, args[1:])
	case "runs":
		return runRuns(ctx, args[1:])
	case "history":
		return runHistory(ctx, args[1:])
	default:
		return usageError(fmt.Sprintf("unknown command: %s", args[0]))
	}
}

func usageError(msg string) error {
	return fmt.Errorf("%s\nusage: pilotnetctl <train|infer|dataset|runs|history> [flags]", msg)
}

func runTrain(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("train", flag.ContinueOnError)
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "pilotnet.db", "sqlite database path")
	configPath := fs.String("config", "", "optional JSON config file")
	runID := fs.String("run-id", "", "training run id (generated when empty)")
	datasetPath := fs.String("dataset", "", "recorded drive csv path")
	epochs := fs.Int("epochs", 0, "epoch budget")
	alpha := fs.Float64("alpha", 0, "initial learning rate")
	seed := fs.Int64("seed", 0, "weight init seed (time-based when 0)")
	inputs := fs.Int("inputs", 0, "sensor count")
	outputs := fs.Int("outputs", 0, "control count")
	hidden := fs.Int("hidden", 0, "hidden layer count")
	width := fs.Int("width", 0, "neurons per hidden layer")
	resume := fs.Bool("resume", false, "resume from the run's latest checkpoint")
	quiet := fs.Bool("quiet", false, "suppress per-epoch progress")
	if err := fs.Parse(args); err != nil {
		return err
	}

	req, err := loadOrDefaultTrainRequest(*configPath)
	if err != nil {
		return err
	}
	applyTrainFlags(&req, flagsSet(fs), trainFlagValues{
		runID:   *runID,
		dataset: *datasetPath,
		epochs:  *epochs,
		alpha:   *alpha,
		seed:    *seed,
		inputs:  *inputs,
		outputs: *outputs,
		hidden:  *hidden,
		width:   *width,
		resume:  *resume,
	})
	if req.Epochs == 0 {
		req.Epochs = 1000
	}
	// Recorded drives always carry 5 sensors and 2 controls, so a
	// mismatched topology can only fail mid-epoch. Reject it up front.
	if req.Topology != (model.Topology{}) &&
		(req.Topology.InputCount != dataset.SensorCount || req.Topology.OutputCount != dataset.ControlCount) {
		return fmt.Errorf("recordings carry %d sensors and %d controls; got -inputs=%d -outputs=%d",
			dataset.SensorCount, dataset.ControlCount, req.Topology.InputCount, req.Topology.OutputCount)
	}
	if !*quiet {
		req.Progress = func(report trainer.EpochReport) {
			status := "accept"
			if !report.Accepted {
				status = "reject"
			}
			fmt.Printf("epoch %d/%d %s sse=%.6f alpha=%.3f progress=%.1f%%\n",
				report.Epoch, req.Epochs, status, report.LastAcceptedSSE, report.Alpha, 100*report.Progress)
		}
	}

	client, err := pilotapi.New(ctx, pilotapi.Options{StoreKind: *storeKind, DBPath: *dbPath})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	summary, err := client.Train(ctx, req)
	if err != nil {
		return err
	}

	fmt.Printf("run %s: trained %s samples (%s filtered) for %d epochs, sse=%.6f alpha=%.3f\n",
		summary.RunID,
		humanize.Comma(int64(summary.Samples)),
		humanize.Comma(int64(summary.Filtered)),
		summary.Epochs, summary.FinalSSE, summary.FinalAlpha)
	return nil
}

func runInfer(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("infer", flag.ContinueOnError)
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "pilotnet.db", "sqlite database path")
	runID := fs.String("run-id", "", "training run id")
	sensors := fs.String("sensors", "", "comma separated sensor readings in [0,1]")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *runID == "" {
		return errors.New("-run-id is required")
	}

	readings, err := parseSensors(*sensors)
	if err != nil {
		return err
	}

	client, err := pilotapi.New(ctx, pilotapi.Options{StoreKind: *storeKind, DBPath: *dbPath})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	command, err := client.Infer(ctx, pilotapi.InferRequest{RunID: *runID, Sensors: readings})
	if err != nil {
		return err
	}
	fmt.Printf("steering=%.4f throttle=%.4f\n", command[0], command[1])
	return nil
}

func runDataset(_ context.Context, args []string) error {
	fs := flag.NewFlagSet("dataset", flag.ContinueOnError)
	datasetPath := fs.String("dataset", "", "recorded drive csv path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *datasetPath == "" {
		return errors.New("-dataset is required")
	}

	_, stats, err := dataset.LoadFile(*datasetPath)
	if err != nil {
		return err
	}
	fmt.Printf("lines=%s eligible=%s filtered=%s\n",
		humanize.Comma(int64(stats.Lines)),
		humanize.Comma(int64(stats.Eligible)),
		humanize.Comma(int64(stats.Filtered)))
	return nil
}

func runRuns(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("runs", flag.ContinueOnError)
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "pilotnet.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := pilotapi.New(ctx, pilotapi.Options{StoreKind: *storeKind, DBPath: *dbPath})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	runs, err := client.Runs(ctx)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no training runs")
		return nil
	}
	for _, run := range runs {
		age := run.CreatedAtUTC
		if t, err := time.Parse(time.RFC3339, run.CreatedAtUTC); err == nil {
			age = humanize.Time(t)
		}
		fmt.Printf("%s  %s  samples=%s epochs=%d sse=%.6f alpha=%.3f\n",
			run.ID, age, humanize.Comma(int64(run.Samples)), run.Epochs, run.FinalSSE, run.FinalAlpha)
	}
	return nil
}

func runHistory(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("history", flag.ContinueOnError)
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "pilotnet.db", "sqlite database path")
	runID := fs.String("run-id", "", "training run id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *runID == "" {
		return errors.New("-run-id is required")
	}

	client, err := pilotapi.New(ctx, pilotapi.Options{StoreKind: *storeKind, DBPath: *dbPath})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	history, ok, err := client.History(ctx, *runID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("no history for run %s", *runID)
	}
	for _, epoch := range history {
		status := "reject"
		if epoch.Accepted {
			status = "accept"
		}
		fmt.Printf("epoch %d %s sse=%.6f alpha=%.3f\n", epoch.Epoch, status, epoch.SSE, epoch.Alpha)
	}
	return nil
}

func parseSensors(s string) ([]float64, error) {
	if s == "" {
		return nil, errors.New("-sensors is required")
	}
	parts := strings.Split(s, ",")
	readings := make([]float64, len(parts))
	for i, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, fmt.Errorf("sensor %d: %q is not a number", i+1, part)
		}
		readings[i] = v
	}
	return readings, nil
}

func flagsSet(fs *flag.FlagSet) map[string]bool {
	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) {
		set[f.Name] = true
	})
	return set
}
