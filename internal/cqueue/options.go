package cqueue

import (
	"go.uber.org/zap"
)

// Option configures a CircularQueue of T at construction.
//
// Options are applied in two passes: the snapshot first, then every
// per-field override. An override that fails its own check is dropped and
// the snapshot or default value stays.
type Option[T any] func(*settings[T])

type settings[T any] struct {
	snapshot  string
	maxSize   *int
	size      *int
	front     *int
	rear      *int
	overwrite *bool
	elements  []T
	logger    *zap.Logger
}

// WithSnapshot restores state from serialized snapshot text. An empty
// string is ignored. A snapshot that fails validation aborts construction.
func WithSnapshot[T any](snapshot string) Option[T] {
	return func(s *settings[T]) {
		s.snapshot = snapshot
	}
}

// WithMaxSize sets the capacity. Ignored unless 1 <= n <= state.MaxCapacity.
func WithMaxSize[T any](n int) Option[T] {
	return func(s *settings[T]) {
		s.maxSize = &n
	}
}

// WithSize sets the live element count. Ignored unless 0 <= n <= maxSize.
func WithSize[T any](n int) Option[T] {
	return func(s *settings[T]) {
		s.size = &n
	}
}

// WithFront sets the front cursor. It is wrapped into [0, maxSize).
func WithFront[T any](n int) Option[T] {
	return func(s *settings[T]) {
		s.front = &n
	}
}

// WithRear sets the rear cursor. It is wrapped into [0, maxSize).
func WithRear[T any](n int) Option[T] {
	return func(s *settings[T]) {
		s.rear = &n
	}
}

// WithOverwrite sets whether a push on a full queue evicts the oldest
// element.
func WithOverwrite[T any](overwrite bool) Option[T] {
	return func(s *settings[T]) {
		s.overwrite = &overwrite
	}
}

// WithElements sets the backing storage. Ignored when elems is nil.
func WithElements[T any](elems []T) Option[T] {
	return func(s *settings[T]) {
		if elems != nil {
			s.elements = elems
		}
	}
}

// WithLogger sets the logger used for debug events. Defaults to a no-op
// logger.
func WithLogger[T any](logger *zap.Logger) Option[T] {
	return func(s *settings[T]) {
		s.logger = logger
	}
}
