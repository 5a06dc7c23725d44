// Package config loads the YAML configuration shared by the CLI and the
// scenario harness.
//
// Values may reference environment variables as ${NAME} or
// ${NAME:-fallback}; substitution happens on the raw text before parsing.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/adt/internal/cqueue"
	"github.com/roach88/adt/internal/logging"
	"github.com/roach88/adt/internal/objpool"
	"github.com/roach88/adt/internal/state"
)

// Config is the root of a configuration file.
type Config struct {
	Log           logging.Config      `yaml:"log"`
	CircularQueue CircularQueueConfig `yaml:"circular_queue"`
	ObjectPool    ObjectPoolConfig    `yaml:"object_pool"`
}

// CircularQueueConfig holds defaults for circular queues built by the
// harness.
type CircularQueueConfig struct {
	MaxSize   int  `yaml:"max_size"`
	Overwrite bool `yaml:"overwrite"`
}

// ObjectPoolConfig holds defaults for object pools built by the harness.
type ObjectPoolConfig struct {
	StartSize          int     `yaml:"start_size"`
	MaxSize            int     `yaml:"max_size"`
	AutoIncrease       bool    `yaml:"auto_increase"`
	IncreaseBreakPoint float64 `yaml:"increase_break_point"`
	IncreaseFactor     float64 `yaml:"increase_factor"`
}

// Default returns the configuration used when no file is given. Container
// defaults match freshly constructed containers.
func Default() Config {
	return Config{
		Log: logging.Default(),
		CircularQueue: CircularQueueConfig{
			MaxSize: state.DefaultCircularQueueMaxSize,
		},
		ObjectPool: ObjectPoolConfig{
			StartSize:          state.DefaultObjectPoolStartSize,
			MaxSize:            state.DefaultObjectPoolMaxSize,
			IncreaseBreakPoint: state.DefaultObjectPoolIncreaseBreakPoint,
			IncreaseFactor:     state.DefaultObjectPoolIncreaseFactor,
		},
	}
}

// Load reads path over the defaults. Unknown keys are an error.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes configuration text over the defaults and validates it.
func Parse(data []byte) (Config, error) {
	cfg := Default()

	expanded := SubstituteEnv(string(data))
	dec := yaml.NewDecoder(strings.NewReader(expanded))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks container defaults with the same rules the containers
// apply to their state. All problems are returned together.
func (c Config) Validate() error {
	var errs []error
	if c.CircularQueue.MaxSize < 1 {
		errs = append(errs, errors.New("circular_queue.max_size must be an integer >= 1"))
	}
	if c.CircularQueue.MaxSize > state.MaxCapacity {
		errs = append(errs, fmt.Errorf("circular_queue.max_size must be an integer <= %d", state.MaxCapacity))
	}
	if c.ObjectPool.StartSize < 0 {
		errs = append(errs, errors.New("object_pool.start_size must be an integer >= 0"))
	}
	if c.ObjectPool.MaxSize < 1 {
		errs = append(errs, errors.New("object_pool.max_size must be an integer >= 1"))
	}
	if c.ObjectPool.MaxSize > state.MaxCapacity {
		errs = append(errs, fmt.Errorf("object_pool.max_size must be an integer <= %d", state.MaxCapacity))
	}
	if !state.ValidBreakPoint(c.ObjectPool.IncreaseBreakPoint) {
		errs = append(errs, errors.New("object_pool.increase_break_point must be a number between 0 and 1"))
	}
	if !state.ValidIncreaseFactor(c.ObjectPool.IncreaseFactor) {
		errs = append(errs, errors.New("object_pool.increase_factor must be a number > 1"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// CircularQueueOptions converts the defaults into options for a queue of T.
func CircularQueueOptions[T any](c CircularQueueConfig) []cqueue.Option[T] {
	return []cqueue.Option[T]{
		cqueue.WithMaxSize[T](c.MaxSize),
		cqueue.WithOverwrite[T](c.Overwrite),
	}
}

// Options converts the defaults into object pool options.
func (c ObjectPoolConfig) Options() []objpool.Option {
	return []objpool.Option{
		objpool.WithStartSize(c.StartSize),
		objpool.WithMaxSize(c.MaxSize),
		objpool.WithAutoIncrease(c.AutoIncrease),
		objpool.WithIncreaseBreakPoint(c.IncreaseBreakPoint),
		objpool.WithIncreaseFactor(c.IncreaseFactor),
	}
}

var envRef = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(:-([^}]*))?\}`)

// SubstituteEnv replaces ${NAME} with the value of NAME, and
// ${NAME:-fallback} with fallback when NAME is unset or empty. Substituted
// text is not scanned again.
func SubstituteEnv(content string) string {
	return envRef.ReplaceAllStringFunc(content, func(ref string) string {
		m := envRef.FindStringSubmatch(ref)
		if v := os.Getenv(m[1]); v != "" {
			return v
		}
		return m[3]
	})
}
