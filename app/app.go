// Package app wires a run together: simulation, renderer, recorders and the
// observer stream. The host calls the step function once per frame.
package app

import (
	"context"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"spherecull/config"
	"spherecull/geom"
	"spherecull/hal"
	"spherecull/internal/buildinfo"
	"spherecull/observer"
	"spherecull/record"
	"spherecull/render"
	"spherecull/render/snapshot"
	"spherecull/sim"
)

const (
	orbitSpeed = 1.5 // rad/s while an arrow key is held
	zoomStep   = 0.5
)

type App struct {
	h   hal.HAL
	cfg config.Config
	log *log.Logger

	state *sim.State

	fb       hal.Framebuffer
	target   *render.RGB565Target
	renderer *render.Renderer
	hud      *render.HUD
	cam      render.Camera
	orbit    render.OrbitController

	held   map[hal.KeyCode]bool
	paused bool

	rounds   *record.RoundLogger
	index    *record.Index
	runID    int64
	observer *observer.Server
	cancel   context.CancelFunc

	mu           sync.Mutex
	lastSurvivor *geom.Vec3

	closeOnce sync.Once
}

// New validates cfg and builds a run on h. Side systems named in cfg are
// opened here; Close releases them.
func New(ctx context.Context, h hal.HAL, cfg config.Config, logger *log.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	state, err := sim.New(cfg.Sim(), h.Logger())
	if err != nil {
		return nil, err
	}

	a := &App{
		h:     h,
		cfg:   cfg,
		log:   logger,
		state: state,
		cam:   render.DefaultCamera(),
		orbit: render.DefaultOrbit(),
		held:  make(map[hal.KeyCode]bool),
	}
	state.Observe(a)

	if d := h.Display(); d != nil {
		if fb := d.Framebuffer(); fb != nil {
			a.fb = fb
			a.target = render.NewFramebufferTarget(fb)
			a.renderer = render.NewRenderer(fb.Width(), fb.Height())
			a.hud = render.NewHUD(fb)
		}
	}

	ctx, a.cancel = context.WithCancel(ctx)
	if err := a.openSinks(ctx); err != nil {
		a.cancel()
		a.closeSinks()
		return nil, err
	}

	logger.Printf("spherecull %s: variant=%s points=%d budget=%d period=%v seed=%d",
		buildinfo.Short(), cfg.Variant, state.Live(), cfg.Budget, cfg.Period(), state.Config().Seed)
	return a, nil
}

func (a *App) openSinks(ctx context.Context) error {
	if dir := a.cfg.Record.Dir; dir != "" {
		a.rounds = record.NewRoundLogger(dir)
		a.state.Observe(a.rounds)
		a.log.Printf("recording rounds to %s", dir)
	}
	if path := a.cfg.Record.Index; path != "" {
		idx, err := record.OpenIndex(path)
		if err != nil {
			return fmt.Errorf("open index: %w", err)
		}
		a.index = idx
		a.state.Observe(idx)
		if err := a.beginRun(ctx); err != nil {
			return err
		}
	}
	if addr := a.cfg.Observe.Addr; addr != "" {
		srv := observer.NewServer(a.log)
		bound, done, err := srv.Serve(ctx, addr)
		if err != nil {
			return fmt.Errorf("observer listen: %w", err)
		}
		go func() {
			if err := <-done; err != nil {
				a.log.Printf("observer: %v", err)
			}
		}()
		a.observer = srv
		a.state.Observe(srv)
		a.publish()
		a.log.Printf("observer listening on ws://%s/v1/observe", bound)
	}
	return nil
}

func (a *App) beginRun(ctx context.Context) error {
	if a.index == nil {
		return nil
	}
	cfg := a.state.Config()
	id, err := a.index.BeginRun(ctx, record.RunInfo{Variant: cfg.Variant, Seed: cfg.Seed, Points: cfg.Points, Budget: cfg.Budget})
	if err != nil {
		return err
	}
	a.runID = id
	if a.rounds != nil {
		a.rounds.SetRun(id)
	}
	return nil
}

func (a *App) finishRun(ctx context.Context) error {
	if a.index == nil || a.runID == 0 {
		return nil
	}
	err := a.index.FinishRun(ctx, a.runID, a.state.Round(), a.Survivor())
	a.runID = 0
	return err
}

// ObserveRound tracks the latest survivor for the run summary.
func (a *App) ObserveRound(r sim.Report) {
	if r.SurvivorPos == nil {
		return
	}
	pos := *r.SurvivorPos
	a.mu.Lock()
	a.lastSurvivor = &pos
	a.mu.Unlock()
}

// Survivor returns the last remaining point if only one is left, otherwise
// the survivor of the latest round.
func (a *App) Survivor() *geom.Vec3 {
	if a.state.Live() == 1 {
		pos := a.state.Points()[0].Pos
		return &pos
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lastSurvivor
}

func (a *App) State() *sim.State { return a.state }
func (a *App) Paused() bool      { return a.paused }

// Step runs one host frame.
func (a *App) Step() error {
	if err := a.pollInput(); err != nil {
		return err
	}

	var delta time.Duration
	if c := a.h.Clock(); c != nil {
		delta = c.Delta()
	}
	a.updateOrbit(delta)

	if !a.paused {
		a.state.Step(delta)
	}
	a.publish()
	return a.draw()
}

func (a *App) draw() error {
	if a.target == nil {
		return nil
	}
	a.orbit.Apply(&a.cam)
	a.renderer.Draw(a.target, a.cam, a.state.Points())
	a.hud.Draw(a.statusLines()...)
	return a.fb.Present()
}

func (a *App) statusLines() []string {
	cfg := a.state.Config()
	lines := []string{
		fmt.Sprintf("%s  seed %d", strings.ToUpper(cfg.Variant), cfg.Seed),
		fmt.Sprintf("live %d  round %d", a.state.Live(), a.state.Round()),
		fmt.Sprintf("next %s  tick %d", a.state.Phase(), a.state.Tick()),
	}
	if a.paused {
		lines = append(lines, "PAUSED")
	}
	return lines
}

func (a *App) publish() {
	if a.observer == nil {
		return
	}
	cfg := a.state.Config()
	a.observer.SetState(observer.State{
		Variant: cfg.Variant,
		Seed:    cfg.Seed,
		Tick:    a.state.Tick(),
		Round:   a.state.Round(),
		Phase:   a.state.Phase().String(),
		Live:    a.state.Live(),
		Paused:  a.paused,
	})
}

// Reseed restarts the run with seed. With an index open the old run is
// finished and a new one begins.
func (a *App) Reseed(ctx context.Context, seed uint64) error {
	if err := a.finishRun(ctx); err != nil {
		return err
	}
	a.mu.Lock()
	a.lastSurvivor = nil
	a.mu.Unlock()
	a.state.Reset(seed)
	a.h.Logger().WriteLineString(fmt.Sprintf("reseeded: seed=%d", seed))
	return a.beginRun(ctx)
}

// Close finishes the run: the index row is stamped, the final snapshot is
// rendered and uploaded, and every sink is closed.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	a.closeOnce.Do(func() {
		if err := a.finishRun(ctx); err != nil {
			errs = append(errs, err)
		}
		if err := a.writeSnapshot(ctx); err != nil {
			errs = append(errs, err)
		}
		if a.rounds != nil {
			if err := a.rounds.Err(); err != nil {
				errs = append(errs, fmt.Errorf("round log: %w", err))
			}
		}
		if a.index != nil {
			if err := a.index.Err(); err != nil {
				errs = append(errs, fmt.Errorf("index: %w", err))
			}
		}
		errs = append(errs, a.closeSinks()...)
		a.cancel()
	})
	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}

func (a *App) closeSinks() []error {
	var errs []error
	if a.rounds != nil {
		if err := a.rounds.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if a.index != nil {
		if err := a.index.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

func (a *App) writeSnapshot(ctx context.Context) error {
	sc := a.cfg.Snapshot
	if sc.Path == "" {
		return nil
	}
	opts := snapshot.DefaultOptions()
	opts.Width, opts.Height, opts.Supersample = sc.Width, sc.Height, sc.Supersample
	img := snapshot.Render(a.state.Points(), opts)
	if err := snapshot.SavePNG(sc.Path, img); err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}
	a.log.Printf("snapshot written to %s", sc.Path)

	if !sc.S3.Enabled() {
		return nil
	}
	up, err := snapshot.NewUploader(snapshot.S3Config{
		Bucket:    sc.S3.Bucket,
		Region:    sc.S3.Region,
		Endpoint:  sc.S3.Endpoint,
		Prefix:    sc.S3.Prefix,
		AccessKey: sc.S3.AccessKey,
		SecretKey: sc.S3.SecretKey,
	})
	if err != nil {
		return err
	}
	data, err := snapshot.EncodePNG(img)
	if err != nil {
		return err
	}
	key, err := up.Upload(ctx, filepath.Base(sc.Path), data)
	if err != nil {
		return err
	}
	a.log.Printf("snapshot uploaded to s3://%s/%s", sc.S3.Bucket, key)
	return nil
}
