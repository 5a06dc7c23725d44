package objpool

import (
	"go.uber.org/zap"
)

// Option configures an ObjectPool at construction.
//
// The snapshot is applied first, then each override that passes its own
// check. Invalid overrides are dropped silently.
type Option func(*settings)

type settings struct {
	snapshot     string
	startSize    *int
	maxSize      *int
	autoIncrease *bool
	breakPoint   *float64
	factor       *float64
	instanceArgs []any
	reset        any
	logger       *zap.Logger
}

// WithSnapshot restores the pool's counters and settings from snapshot
// text. The snapshot's objectCount becomes the start size. An empty string
// is ignored.
func WithSnapshot(snapshot string) Option {
	return func(s *settings) {
		s.snapshot = snapshot
	}
}

// WithStartSize sets how many instances are built up front. Ignored unless
// n >= 0.
func WithStartSize(n int) Option {
	return func(s *settings) {
		s.startSize = &n
	}
}

// WithMaxSize caps the number of instances. Ignored unless
// 1 <= n <= state.MaxCapacity.
func WithMaxSize(n int) Option {
	return func(s *settings) {
		s.maxSize = &n
	}
}

// WithAutoIncrease enables growth on allocation.
func WithAutoIncrease(on bool) Option {
	return func(s *settings) {
		s.autoIncrease = &on
	}
}

// WithIncreaseBreakPoint sets the utilization above which allocation grows
// the pool. Ignored unless within [0, 1].
func WithIncreaseBreakPoint(f float64) Option {
	return func(s *settings) {
		s.breakPoint = &f
	}
}

// WithIncreaseFactor sets the growth multiplier. Ignored unless > 1.
func WithIncreaseFactor(f float64) Option {
	return func(s *settings) {
		s.factor = &f
	}
}

// WithInstanceArgs sets the arguments passed to the factory for every new
// instance.
func WithInstanceArgs(args ...any) Option {
	return func(s *settings) {
		s.instanceArgs = append([]any{}, args...)
	}
}

// WithReset sets the function that cleans an instance on release. Without
// it, instances must implement Cleaner. Ignored when fn is nil; New fails
// with ErrResetType when T is not the pool's element type.
func WithReset[T any](fn func(T)) Option {
	return func(s *settings) {
		if fn != nil {
			s.reset = fn
		}
	}
}

// WithLogger sets the logger used for debug events. Defaults to a no-op
// logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *settings) {
		s.logger = logger
	}
}
