// Package config loads qgadget settings from YAML.
package config

import (
	"os"
	"strconv"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"qgadget/gadget"
	"qgadget/subst"
)

// DefaultPath is read when no --config flag is given.
const DefaultPath = "qgadget.yaml"

// Config is the file layout.
type Config struct {
	Merge      MergeConfig      `yaml:"merge"`
	Substitute SubstituteConfig `yaml:"substitute"`
	Log        LogConfig        `yaml:"log"`
}

type MergeConfig struct {
	Placement          string `yaml:"placement"` // first | last
	MoveAcrossBlockers bool   `yaml:"move_across_blockers"`
	DropZeroAngles     bool   `yaml:"drop_zero_angles"`
}

type SubstituteConfig struct {
	DropZeroRotations bool `yaml:"drop_zero_rotations"`
}

type LogConfig struct {
	Debug bool `yaml:"debug"`
}

// Default returns the settings used when no file is present.
func Default() Config {
	return Config{Merge: MergeConfig{Placement: "first"}}
}

// Load reads path over the defaults, then applies QGADGET_* environment
// overrides. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return cfg, errors.Wrapf(err, "read config %s", path)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, errors.Wrapf(err, "parse config %s", path)
		}
	}

	fromEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return cfg, errors.Wrapf(err, "config %s", path)
	}
	return cfg, nil
}

func fromEnv(cfg *Config) {
	if v := os.Getenv("QGADGET_PLACEMENT"); v != "" {
		cfg.Merge.Placement = v
	}
	if v := os.Getenv("QGADGET_DEBUG"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Log.Debug = b
		}
	}
}

// Validate rejects unknown enum values.
func (c Config) Validate() error {
	switch c.Merge.Placement {
	case "", "first", "last":
		return nil
	}
	return errors.Errorf("merge.placement must be first or last, got %q", c.Merge.Placement)
}

// MergeOptions converts the merge section.
func (c Config) MergeOptions(log *zap.Logger) gadget.Options {
	opts := gadget.Options{
		MoveAcrossBlockers: c.Merge.MoveAcrossBlockers,
		DropZeroAngles:     c.Merge.DropZeroAngles,
		Logger:             log,
	}
	if c.Merge.Placement == "last" {
		opts.Placement = gadget.PlaceAtLast
	}
	return opts
}

// SubstituteOptions converts the substitute section.
func (c Config) SubstituteOptions(log *zap.Logger) subst.Options {
	return subst.Options{DropZeroRotations: c.Substitute.DropZeroRotations, Logger: log}
}

// Logger builds the process logger: development output when debugging,
// production JSON otherwise.
func (c Config) Logger() (*zap.Logger, error) {
	if c.Log.Debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// Save writes c to path.
func (c Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "marshal config")
	}
	return errors.Wrapf(os.WriteFile(path, data, 0o644), "write config %s", path)
}
