package hal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"
)

// HeadlessConfig controls the no-window host runner.
type HeadlessConfig struct {
	Enabled    bool
	Hz         int
	Ticks      uint64
	StepBudget int
	Width      int
	Height     int

	// Unthrottled runs frames back to back instead of on a ticker.
	// Frame deltas stay fixed at 1/Hz either way.
	Unthrottled bool

	Log io.Writer
}

// RunHeadless runs the app without opening a window.
func RunHeadless(ctx context.Context, newApp func(HAL) func() error, cfg HeadlessConfig) error {
	if cfg.Hz <= 0 {
		cfg.Hz = 60
	}
	if cfg.StepBudget <= 0 {
		cfg.StepBudget = 1
	}

	d := time.Second / time.Duration(cfg.Hz)
	if d <= 0 {
		return fmt.Errorf("invalid headless hz: %d", cfg.Hz)
	}

	h := newHost(Options{Width: cfg.Width, Height: cfg.Height, FixedDelta: d, Log: cfg.Log})
	step := newApp(h)

	var tickC <-chan time.Time
	if !cfg.Unthrottled {
		t := time.NewTicker(d)
		defer t.Stop()
		tickC = t.C
	}

	var tick uint64
	for {
		if tickC != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-tickC:
			}
		} else if err := ctx.Err(); err != nil {
			return err
		}

		for i := 0; i < cfg.StepBudget; i++ {
			h.clk.step()
			if step != nil {
				if err := step(); err != nil {
					if errors.Is(err, ErrQuit) {
						return nil
					}
					return err
				}
			}
			tick++
			if cfg.Ticks > 0 && tick >= cfg.Ticks {
				return nil
			}
		}
	}
}
