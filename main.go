package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"

	"spherecull/app"
	"spherecull/config"
	"spherecull/hal"
	"spherecull/internal/buildinfo"
)

func main() {
	var (
		hcfg       hal.HeadlessConfig
		configPath string
		envPath    string
		variant    string
		seed       uint64
		points     int
		budget     int
		recordDir  string
		indexPath  string
		observe    string
		snapPath   string
	)
	flag.BoolVar(&hcfg.Enabled, "headless", false, "Run without a window.")
	flag.IntVar(&hcfg.Hz, "hz", 60, "Tick rate in headless mode.")
	flag.Uint64Var(&hcfg.Ticks, "ticks", 0, "Stop after N ticks in headless mode (0 = run forever).")
	flag.BoolVar(&hcfg.Unthrottled, "fast", false, "Headless: run frames back to back (deltas stay 1/hz).")
	flag.StringVar(&configPath, "config", "", "YAML config file (optional).")
	flag.StringVar(&envPath, "env", ".env", "dotenv file (optional).")
	flag.StringVar(&variant, "variant", "", "Selection rule: centroid or triangle.")
	flag.Uint64Var(&seed, "seed", 0, "RNG seed (0 = time based).")
	flag.IntVar(&points, "points", 0, "Initial point count (0 = variant default).")
	flag.IntVar(&budget, "budget", 0, "Per-round sample budget.")
	flag.StringVar(&recordDir, "record", "", "Directory for rounds-*.jsonl.zst logs.")
	flag.StringVar(&indexPath, "index", "", "SQLite run index path.")
	flag.StringVar(&observe, "observe", "", "Websocket observer listen address (loopback clients only).")
	flag.StringVar(&snapPath, "snapshot", "", "Write a PNG of the final point set here.")
	flag.Parse()

	logger := log.New(os.Stdout, "[spherecull] ", log.LstdFlags|log.Lmicroseconds)
	logger.Printf("build %s", buildinfo.String())

	if err := config.LoadEnv(envPath); err != nil {
		logger.Fatalf("env: %v", err)
	}
	cfg := config.Defaults()
	if configPath != "" {
		c, err := config.Load(configPath)
		if err != nil {
			logger.Fatalf("config: %v", err)
		}
		cfg = c
	}
	if err := cfg.ApplyEnv(); err != nil {
		logger.Fatalf("config: %v", err)
	}

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "variant":
			cfg.Variant = variant
		case "seed":
			cfg.Seed = seed
		case "points":
			cfg.Points = points
		case "budget":
			cfg.Budget = budget
		case "record":
			cfg.Record.Dir = recordDir
		case "index":
			cfg.Record.Index = indexPath
		case "observe":
			cfg.Observe.Addr = observe
		case "snapshot":
			cfg.Snapshot.Path = snapPath
		case "hz":
			cfg.Headless.Hz = hcfg.Hz
		case "ticks":
			cfg.Headless.Ticks = hcfg.Ticks
		}
	})
	hcfg.Hz = cfg.Headless.Hz
	hcfg.Ticks = cfg.Headless.Ticks
	hcfg.Width, hcfg.Height = cfg.Window.Width, cfg.Window.Height

	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var a *app.App
	newApp := func(h hal.HAL) func() error {
		var err error
		a, err = app.New(ctx, h, cfg, logger)
		if err != nil {
			return func() error { return err }
		}
		return a.StepFunc()
	}

	var err error
	if hcfg.Enabled {
		err = hal.RunHeadless(ctx, newApp, hcfg)
	} else {
		err = hal.RunWindow(newApp, hal.WindowConfig{
			Title:  "spherecull",
			Width:  cfg.Window.Width,
			Height: cfg.Window.Height,
			Scale:  cfg.Window.Scale,
		})
	}
	if errors.Is(err, context.Canceled) {
		err = nil
	}

	if a != nil {
		if cerr := a.Close(context.Background()); cerr != nil {
			logger.Printf("close: %v", cerr)
		}
		logger.Printf("stopped: rounds=%d live=%d", a.State().Round(), a.State().Live())
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
