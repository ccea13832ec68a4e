// Package config loads run settings from a yaml file, an optional .env file
// and SPHERECULL_* environment variables. Command-line flags are applied on
// top by main.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strconv"
	"time"

	"spherecull/sim"
	"spherecull/sim/clock"
	"spherecull/sim/cull"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

var ErrUnknownVariant = errors.New("unknown variant")

type Config struct {
	Variant  string `yaml:"variant"`
	Points   int    `yaml:"points"`
	Budget   int    `yaml:"budget"`
	PeriodMs int    `yaml:"period_ms"`
	Seed     uint64 `yaml:"seed"`

	Window   Window   `yaml:"window"`
	Headless Headless `yaml:"headless"`
	Record   Record   `yaml:"record"`
	Observe  Observe  `yaml:"observe"`
	Snapshot Snapshot `yaml:"snapshot"`
}

type Window struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
	Scale  int `yaml:"scale"`
}

type Headless struct {
	Hz    int    `yaml:"hz"`
	Ticks uint64 `yaml:"ticks"`
}

type Record struct {
	// Dir receives rounds-*.jsonl.zst files. Empty disables recording.
	Dir string `yaml:"dir"`
	// Index is the sqlite run index path. Empty disables indexing.
	Index string `yaml:"index"`
}

type Observe struct {
	// Addr is the websocket listen address, e.g. 127.0.0.1:8787. Empty disables it.
	Addr string `yaml:"addr"`
}

type Snapshot struct {
	// Path is where the final PNG is written. Empty disables snapshots.
	Path        string `yaml:"path"`
	Width       int    `yaml:"width"`
	Height      int    `yaml:"height"`
	Supersample int    `yaml:"supersample"`
	S3          S3     `yaml:"s3"`
}

type S3 struct {
	Bucket   string `yaml:"bucket"`
	Region   string `yaml:"region"`
	Endpoint string `yaml:"endpoint"`
	Prefix   string `yaml:"prefix"`

	AccessKey string `yaml:"-"`
	SecretKey string `yaml:"-"`
}

// Enabled reports whether uploads are configured.
func (s S3) Enabled() bool { return s.Bucket != "" }

func Defaults() Config {
	return Config{
		Variant:  "centroid",
		Budget:   cull.DefaultBudget,
		PeriodMs: int(clock.DefaultPeriod / time.Millisecond),
		Window:   Window{Width: 320, Height: 320, Scale: 2},
		Headless: Headless{Hz: 60},
		Snapshot: Snapshot{Width: 800, Height: 800, Supersample: 2, S3: S3{Region: "us-east-1"}},
	}
}

// Load reads a yaml file over Defaults.
func Load(path string) (Config, error) {
	cfg := Defaults()
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	cfg.fill()
	return cfg, nil
}

func (c *Config) fill() {
	d := Defaults()
	if c.Variant == "" {
		c.Variant = d.Variant
	}
	if c.Budget <= 0 {
		c.Budget = d.Budget
	}
	if c.PeriodMs <= 0 {
		c.PeriodMs = d.PeriodMs
	}
	if c.Window.Width <= 0 {
		c.Window.Width = d.Window.Width
	}
	if c.Window.Height <= 0 {
		c.Window.Height = d.Window.Height
	}
	if c.Window.Scale <= 0 {
		c.Window.Scale = d.Window.Scale
	}
	if c.Headless.Hz <= 0 {
		c.Headless.Hz = d.Headless.Hz
	}
	if c.Snapshot.Width <= 0 {
		c.Snapshot.Width = d.Snapshot.Width
	}
	if c.Snapshot.Height <= 0 {
		c.Snapshot.Height = d.Snapshot.Height
	}
	if c.Snapshot.Supersample <= 0 {
		c.Snapshot.Supersample = d.Snapshot.Supersample
	}
	if c.Snapshot.S3.Region == "" {
		c.Snapshot.S3.Region = d.Snapshot.S3.Region
	}
}

// Validate rejects variants no strategy is registered for.
func (c Config) Validate() error {
	if !slices.Contains(cull.Names(), c.Variant) {
		return fmt.Errorf("%w: %q (have %v)", ErrUnknownVariant, c.Variant, cull.Names())
	}
	if c.Points < 0 {
		return fmt.Errorf("points must be >= 0, got %d", c.Points)
	}
	return nil
}

func (c Config) Period() time.Duration { return time.Duration(c.PeriodMs) * time.Millisecond }

// Sim converts the run settings for sim.New.
func (c Config) Sim() sim.Config {
	return sim.Config{
		Variant: c.Variant,
		Points:  c.Points,
		Budget:  c.Budget,
		Period:  c.Period(),
		Seed:    c.Seed,
	}
}

// LoadEnv loads .env style files into the process environment. Missing files
// are skipped; with no arguments ".env" is tried.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("%s: %w", f, err)
		}
	}
	return nil
}

// ApplyEnv overrides cfg with SPHERECULL_* variables and standard AWS
// credentials.
func (c *Config) ApplyEnv() error {
	str := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}
	num := func(key string, dst *int) error {
		v, ok := os.LookupEnv(key)
		if !ok || v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = n
		return nil
	}

	str("SPHERECULL_VARIANT", &c.Variant)
	if err := num("SPHERECULL_POINTS", &c.Points); err != nil {
		return err
	}
	if err := num("SPHERECULL_BUDGET", &c.Budget); err != nil {
		return err
	}
	if err := num("SPHERECULL_PERIOD_MS", &c.PeriodMs); err != nil {
		return err
	}
	if v, ok := os.LookupEnv("SPHERECULL_SEED"); ok && v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("SPHERECULL_SEED: %w", err)
		}
		c.Seed = seed
	}
	str("SPHERECULL_RECORD_DIR", &c.Record.Dir)
	str("SPHERECULL_INDEX", &c.Record.Index)
	str("SPHERECULL_OBSERVE_ADDR", &c.Observe.Addr)
	str("SPHERECULL_SNAPSHOT", &c.Snapshot.Path)
	str("SPHERECULL_S3_BUCKET", &c.Snapshot.S3.Bucket)
	str("SPHERECULL_S3_REGION", &c.Snapshot.S3.Region)
	str("SPHERECULL_S3_ENDPOINT", &c.Snapshot.S3.Endpoint)
	str("SPHERECULL_S3_PREFIX", &c.Snapshot.S3.Prefix)
	str("AWS_ACCESS_KEY_ID", &c.Snapshot.S3.AccessKey)
	str("AWS_SECRET_ACCESS_KEY", &c.Snapshot.S3.SecretKey)

	c.fill()
	return nil
}
