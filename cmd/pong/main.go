// Package main provides the pong CLI: generate training data, train the
// agent, and watch or benchmark it.
package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/born-ml/tinynn/internal/config"
	"github.com/born-ml/tinynn/internal/inference"
	"github.com/born-ml/tinynn/internal/pong"
	"github.com/born-ml/tinynn/internal/tensor"
)

const version = "v0.1.0"

func usage() {
	fmt.Fprintf(os.Stderr, "tinynn pong %s\n\n", version)
	fmt.Fprintln(os.Stderr, "Usage: pong <command> [flags]")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  generate   Write the synthetic training grid to a CSV file")
	fmt.Fprintln(os.Stderr, "  train      Train the agent and save its weights")
	fmt.Fprintln(os.Stderr, "  simulate   Let a trained agent play")
	fmt.Fprintln(os.Stderr, "  predict    Score a sample file with parallel inference")
	fmt.Fprintln(os.Stderr, "  version    Show version")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Run 'pong <command> -h' for command flags.")
}

func main() {
	log.SetFlags(0)
	log.SetPrefix("pong: ")

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	args := os.Args[2:]
	switch os.Args[1] {
	case "generate":
		err = runGenerate(args)
	case "train":
		err = runTrain(args)
	case "simulate":
		err = runSimulate(args)
	case "predict":
		err = runPredict(args)
	case "version":
		fmt.Printf("tinynn pong %s\n", version)
	case "-h", "--help", "help":
		usage()
	default:
		usage()
		os.Exit(2)
	}

	if err != nil {
		log.Fatal(err)
	}
}

func runGenerate(args []string) error {
	fs := flag.NewFlagSet("generate", flag.ExitOnError)
	out := fs.String("out", "pong_data.csv", "Output CSV file")
	_ = fs.Parse(args)

	samples := pong.GenerateSamples()
	if err := pong.WriteSamplesFile(*out, samples); err != nil {
		return err
	}
	log.Printf("wrote %d samples to %s", len(samples), *out)
	return nil
}

func runTrain(args []string) error {
	fs := flag.NewFlagSet("train", flag.ExitOnError)
	cfgPath := fs.String("config", "", "YAML training config (optional)")
	data := fs.String("data", "", "Sample CSV file (overrides config)")
	out := fs.String("out", "", "Model directory (overrides config)")
	epochs := fs.Int("epochs", 0, "Training epochs (overrides config)")
	lr := fs.Float64("lr", 0, "Learning rate (overrides config)")
	hidden := fs.Int("hidden", 0, "Hidden units (overrides config)")
	snapshot := fs.String("snapshot", "", "Also write a binary snapshot to this file")
	_ = fs.Parse(args)

	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		return err
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "data":
			cfg.DataPath = *data
		case "out":
			cfg.ModelDir = *out
		case "epochs":
			cfg.Epochs = *epochs
		case "lr":
			cfg.LearningRate = *lr
		case "hidden":
			cfg.Hidden = *hidden
		}
	})
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := log.New(os.Stderr, "", log.LstdFlags)
	samples := pong.LoadSamples(cfg.DataPath, logger)
	log.Printf("loaded %d samples from %s", len(samples), cfg.DataPath)

	//nolint:gosec // weight initialization is not security-critical
	net := pong.NewModel(cfg.Hidden, rand.New(rand.NewSource(cfg.Seed)))
	history, err := pong.Train(net, samples, cfg, logger)
	if err != nil {
		return err
	}
	log.Printf("final loss %g after %d epochs", history[len(history)-1], len(history))

	if err := os.MkdirAll(cfg.ModelDir, 0o750); err != nil {
		return err
	}
	if err := pong.SaveModel(net, cfg.ModelDir); err != nil {
		return err
	}
	log.Printf("saved weights to %s and %s",
		filepath.Join(cfg.ModelDir, pong.HiddenWeightsFile), filepath.Join(cfg.ModelDir, pong.OutputWeightsFile))

	if *snapshot != "" {
		if err := net.SaveSnapshot(*snapshot); err != nil {
			return err
		}
		log.Printf("saved snapshot to %s", *snapshot)
	}
	return nil
}

// loadConfig reads path, or returns the defaults when path is empty.
func loadConfig(path string) (config.Training, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

// runtimeConfig loads the config and applies the -model, -data and -workers
// overrides shared by simulate and predict.
func runtimeConfig(fs *flag.FlagSet, path, modelDir, data string, workers int) (config.Training, error) {
	cfg, err := loadConfig(path)
	if err != nil {
		return cfg, err
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "model":
			cfg.ModelDir = modelDir
		case "data":
			cfg.DataPath = data
		case "workers":
			cfg.Workers = workers
		}
	})
	if cfg.Workers < 1 {
		return cfg, fmt.Errorf("%w: workers must be positive, got %d", config.ErrInvalid, cfg.Workers)
	}
	return cfg, nil
}

func runSimulate(args []string) error {
	fs := flag.NewFlagSet("simulate", flag.ExitOnError)
	cfgPath := fs.String("config", "", "YAML config for model_dir and workers (optional)")
	modelDir := fs.String("model", "", "Model directory (overrides config)")
	steps := fs.Int("steps", 500, "Ticks per episode")
	episodes := fs.Int("episodes", 1, "Independent episodes to play")
	seed := fs.Int64("seed", 1, "Seed of the first episode")
	workers := fs.Int("workers", 0, "Parallel episodes (overrides config)")
	verbose := fs.Bool("v", false, "Print every tick of a single episode")
	_ = fs.Parse(args)

	cfg, err := runtimeConfig(fs, *cfgPath, *modelDir, "", *workers)
	if err != nil {
		return err
	}
	net, err := pong.LoadModel(cfg.ModelDir)
	if err != nil {
		return err
	}

	if *verbose {
		//nolint:gosec // game physics is not security-critical
		env := pong.NewEnv(rand.New(rand.NewSource(*seed)))
		fmt.Printf("%6s %7s %10s %8s %8s %9s\n", "step", "action", "reward", "ball_x", "ball_y", "paddle_y")
		res, err := pong.Simulate(pong.NewAgent(net), env, *steps, func(step, action int, reward float64, s pong.State) {
			fmt.Printf("%6d %7d %10.4f %8.4f %8.4f %9.4f\n", step, action, reward, s.BallX, s.BallY, s.PaddleY)
		})
		if err != nil {
			return err
		}
		printResult(res)
		return nil
	}

	results, err := pong.Evaluate(net, *episodes, *steps, *seed, cfg.Parallel())
	if err != nil {
		return err
	}
	var total pong.Result
	for _, r := range results {
		total.Steps += r.Steps
		total.Hits += r.Hits
		total.Misses += r.Misses
		total.TotalReward += r.TotalReward
	}
	printResult(total)
	return nil
}

func printResult(r pong.Result) {
	fmt.Printf("steps:  %d\n", r.Steps)
	fmt.Printf("hits:   %d\n", r.Hits)
	fmt.Printf("misses: %d\n", r.Misses)
	fmt.Printf("reward: %.2f\n", r.TotalReward)
	if events := r.Hits + r.Misses; events > 0 {
		fmt.Printf("hit rate: %.1f%%\n", 100*float64(r.Hits)/float64(events))
	}
}

func runPredict(args []string) error {
	fs := flag.NewFlagSet("predict", flag.ExitOnError)
	cfgPath := fs.String("config", "", "YAML config for data, model_dir and workers (optional)")
	modelDir := fs.String("model", "", "Model directory (overrides config)")
	data := fs.String("data", "", "Sample CSV file (overrides config)")
	workers := fs.Int("workers", 0, "Inference workers (overrides config)")
	_ = fs.Parse(args)

	cfg, err := runtimeConfig(fs, *cfgPath, *modelDir, *data, *workers)
	if err != nil {
		return err
	}
	net, err := pong.LoadModel(cfg.ModelDir)
	if err != nil {
		return err
	}
	samples := pong.LoadSamples(cfg.DataPath, log.Default())
	if len(samples) == 0 {
		return fmt.Errorf("no samples in %s", cfg.DataPath)
	}

	x := tensor.New[float32](len(samples), 3)
	for i, s := range samples {
		if err := x.SetRows(i, pong.Observe(pong.State{BallX: s.BallX, BallY: s.BallY, PaddleY: s.PaddleY})); err != nil {
			return err
		}
	}

	d := inference.NewDispatcher[float32](net, cfg.Parallel())
	defer d.Close()

	out, err := d.RunBatch(x)
	if err != nil {
		return err
	}

	var rewarded, agreed int
	counts := map[int]int{}
	for i, s := range samples {
		row, err := out.Row(i)
		if err != nil {
			return err
		}
		action := pong.ActionFromScores(row.Raw())
		counts[action]++
		if s.Reward > 0 {
			rewarded++
			if action == s.Action {
				agreed++
			}
		}
	}

	fmt.Printf("samples: %d (%d workers)\n", len(samples), d.Workers())
	fmt.Printf("actions: down=%d stay=%d up=%d\n", counts[pong.ActionDown], counts[pong.ActionStay], counts[pong.ActionUp])
	if rewarded > 0 {
		fmt.Printf("agreement with rewarded actions: %.1f%% (%d/%d)\n",
			100*float64(agreed)/float64(rewarded), agreed, rewarded)
	}
	return nil
}
