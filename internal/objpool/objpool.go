package objpool

import (
	"errors"
	"fmt"
	"iter"
	"math"

	"go.uber.org/zap"

	"github.com/roach88/adt/internal/ir"
	"github.com/roach88/adt/internal/query"
	"github.com/roach88/adt/internal/state"
)

var (
	// ErrNilFactory is returned by New when no factory is given.
	ErrNilFactory = errors.New("objpool: factory must not be nil")

	// ErrResetType is returned by New when WithReset was given a function
	// for a different element type.
	ErrResetType = errors.New("objpool: reset function does not match the element type")

	// ErrInvalidState is returned by Stringify when the state record no
	// longer passes validation.
	ErrInvalidState = errors.New("objpool: state is not valid")
)

// Factory builds one instance from the pool's instance args.
type Factory[T any] func(args ...any) T

// Cleaner is implemented by instances that know how to reset themselves
// before going back into the pool.
type Cleaner interface {
	Clean()
}

// slot is one entry of the used list. A released entry stays behind as a
// tombstone (live == false) until the list is compacted.
type slot[T any] struct {
	obj  T
	live bool
}

// ObjectPool hands out pre-built instances and takes them back.
//
// INVARIANTS:
//   - objectCount == len(pool) + live entries of used
//   - objectCount <= maxSize
//   - an instance is in pool or live in used, never both
//
// Mutating operations are silent no-ops when the state is invalid.
// An ObjectPool is not safe for concurrent use.
type ObjectPool[T comparable] struct {
	state   state.ObjectPool
	pool    []T
	used    []slot[T]
	wasted  int
	factory Factory[T]
	reset   func(T)
	logger  *zap.Logger
}

// New builds a pool and fills it with startSize instances.
//
// Errors: ErrNilFactory, ErrResetType, or a *state.SnapshotError for a snapshot that does
// not validate.
func New[T comparable](factory Factory[T], opts ...Option) (*ObjectPool[T], error) {
	if factory == nil {
		return nil, ErrNilFactory
	}

	var cfg settings
	for _, opt := range opts {
		opt(&cfg)
	}

	st := state.DefaultObjectPool()
	if cfg.snapshot != "" {
		decoded, err := state.DecodeObjectPool([]byte(cfg.snapshot))
		if err != nil {
			return nil, fmt.Errorf("objpool: %w", err)
		}
		st = fromSnapshot(decoded)
	}

	if cfg.startSize != nil && *cfg.startSize >= 0 {
		st.StartSize = *cfg.startSize
	}
	if cfg.maxSize != nil && *cfg.maxSize >= 1 && *cfg.maxSize <= state.MaxCapacity {
		st.MaxSize = *cfg.maxSize
	}
	if cfg.autoIncrease != nil {
		st.AutoIncrease = *cfg.autoIncrease
	}
	if cfg.breakPoint != nil && state.ValidBreakPoint(*cfg.breakPoint) {
		st.IncreaseBreakPoint = *cfg.breakPoint
	}
	if cfg.factor != nil && state.ValidIncreaseFactor(*cfg.factor) {
		st.IncreaseFactor = *cfg.factor
	}
	if cfg.instanceArgs != nil {
		st.InstanceArgs = cfg.instanceArgs
	}

	logger := cfg.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	p := &ObjectPool[T]{
		state:   st,
		pool:    []T{},
		used:    []slot[T]{},
		factory: factory,
		logger:  logger,
	}
	if cfg.reset != nil {
		fn, ok := cfg.reset.(func(T))
		if !ok {
			return nil, ErrResetType
		}
		p.reset = fn
	}

	p.IncreaseCapacity(st.StartSize)
	return p, nil
}

// fromSnapshot keeps a snapshot's settings and turns its objectCount into
// the start size; the instances themselves are rebuilt.
func fromSnapshot(decoded state.ObjectPool) state.ObjectPool {
	st := state.DefaultObjectPool()
	st.AutoIncrease = decoded.AutoIncrease
	st.StartSize = decoded.ObjectCount
	st.MaxSize = decoded.MaxSize
	st.IncreaseBreakPoint = decoded.IncreaseBreakPoint
	st.IncreaseFactor = decoded.IncreaseFactor
	st.InstanceArgs = decoded.InstanceArgs
	return st
}

func (p *ObjectPool[T]) valid() bool {
	return p.state.IsValid()
}

// IncreaseCapacity builds up to n new instances, stopping at maxSize.
// n <= 0 is a no-op.
func (p *ObjectPool[T]) IncreaseCapacity(n int) {
	if !p.valid() || n <= 0 {
		return
	}

	built := 0
	for ; built < n && p.state.ObjectCount < p.state.MaxSize; built++ {
		p.pool = append(p.pool, p.factory(p.state.InstanceArgs...))
		p.state.ObjectCount++
	}
	if built > 0 {
		p.logger.Debug("object pool capacity increased",
			zap.Int("built", built),
			zap.Int("object_count", p.state.ObjectCount),
			zap.Int("max_size", p.state.MaxSize),
		)
	}
}

// grow raises objectCount to ceil(objectCount*increaseFactor), at least one
// more than now.
func (p *ObjectPool[T]) grow() {
	target := int(math.Ceil(float64(p.state.ObjectCount) * p.state.IncreaseFactor))
	if target <= p.state.ObjectCount {
		target = p.state.ObjectCount + 1
	}
	p.IncreaseCapacity(target - p.state.ObjectCount)
}

// take moves one free instance to used without any growth.
func (p *ObjectPool[T]) take() (T, bool) {
	var zero T
	last := len(p.pool) - 1
	if last < 0 {
		return zero, false
	}
	obj := p.pool[last]
	p.pool[last] = zero
	p.pool = p.pool[:last]
	p.used = append(p.used, slot[T]{obj: obj, live: true})
	return obj, true
}

// Allocate hands out one instance. With autoIncrease on, the pool grows
// first if allocating would push utilization above the break point.
// Returns false when no instance is free.
func (p *ObjectPool[T]) Allocate() (T, bool) {
	if !p.valid() {
		var zero T
		return zero, false
	}
	if p.state.AutoIncrease && p.IsAboveThreshold(1) {
		p.grow()
	}
	return p.take()
}

// AllocateMultiple hands out up to n instances; n < 1 counts as 1. Growth
// happens once, before any instance is taken.
func (p *ObjectPool[T]) AllocateMultiple(n int) []T {
	out := []T{}
	if !p.valid() {
		return out
	}
	if n < 1 {
		n = 1
	}

	if p.state.AutoIncrease {
		for p.IsAboveThreshold(n) && p.state.ObjectCount < p.state.MaxSize {
			p.grow()
		}
	}

	for i := 0; i < n; i++ {
		obj, ok := p.take()
		if !ok {
			break
		}
		out = append(out, obj)
	}
	return out
}

// cleaner returns the clean function for obj, or nil if it has none.
func (p *ObjectPool[T]) cleaner(obj T) func() {
	if p.reset != nil {
		return func() { p.reset(obj) }
	}
	if c, ok := any(obj).(Cleaner); ok {
		return c.Clean
	}
	return nil
}

// usedIndex finds obj among live used entries.
func (p *ObjectPool[T]) usedIndex(obj T) int {
	for i, s := range p.used {
		if s.live && s.obj == obj {
			return i
		}
	}
	return -1
}

// Release cleans obj and returns it to the pool. It is a no-op when obj
// cannot be cleaned or was not allocated from this pool. Reports whether
// obj went back into the pool.
func (p *ObjectPool[T]) Release(obj T) bool {
	clean := p.cleaner(obj)
	if clean == nil || !p.valid() {
		return false
	}
	i := p.usedIndex(obj)
	if i < 0 {
		return false
	}

	p.used[i] = slot[T]{}
	p.wasted++
	clean()
	p.pool = append(p.pool, obj)

	if p.ShouldCleanUsed() {
		p.CleanUsed()
	}
	return true
}

// ReleaseMultiple releases each of objs.
func (p *ObjectPool[T]) ReleaseMultiple(objs []T) {
	for _, obj := range objs {
		p.Release(obj)
	}
}

// ShouldCleanUsed reports whether tombstones are dense enough to compact:
// len(used)/max(wasted, 1) < ln(len(used)).
func (p *ObjectPool[T]) ShouldCleanUsed() bool {
	n := float64(len(p.used))
	return n/float64(max(p.wasted, 1)) < math.Log(n)
}

// CleanUsed drops tombstones from the used list.
func (p *ObjectPool[T]) CleanUsed() {
	live := p.used[:0]
	for _, s := range p.used {
		if s.live {
			live = append(live, s)
		}
	}
	clear(p.used[len(live):])
	p.logger.Debug("object pool used list compacted",
		zap.Int("removed", len(p.used)-len(live)),
		zap.Int("remaining", len(live)),
	)
	p.used = live
	p.wasted = 0
}

// Utilization is the fraction of instances that would be checked out after
// pending more allocations: (objectCount - (free - pending)) / objectCount.
// +Inf when objectCount is 0, NaN when the state is invalid.
func (p *ObjectPool[T]) Utilization(pending int) float64 {
	if !p.valid() {
		return math.NaN()
	}
	if p.state.ObjectCount == 0 {
		return math.Inf(1)
	}
	count := float64(p.state.ObjectCount)
	free := float64(len(p.pool) - pending)
	return (count - free) / count
}

// IsAboveThreshold reports Utilization(pending) > increaseBreakPoint.
func (p *ObjectPool[T]) IsAboveThreshold(pending int) bool {
	return p.Utilization(pending) > p.state.IncreaseBreakPoint
}

// Free returns the number of instances ready for allocation.
func (p *ObjectPool[T]) Free() int {
	return len(p.pool)
}

// InUse returns the live allocated instances in allocation order.
func (p *ObjectPool[T]) InUse() []T {
	out := []T{}
	for _, s := range p.used {
		if s.live {
			out = append(out, s.obj)
		}
	}
	return out
}

// ObjectCount returns the number of instances the pool tracks.
func (p *ObjectPool[T]) ObjectCount() int {
	return p.state.ObjectCount
}

// ClearElements drops every instance and zeroes objectCount. Settings are
// untouched.
func (p *ObjectPool[T]) ClearElements() *ObjectPool[T] {
	p.pool = []T{}
	p.used = []slot[T]{}
	p.wasted = 0
	p.state.ObjectCount = 0
	return p
}

// Reset drops every instance, restores the default growth settings and
// refills to startSize. maxSize, startSize and instanceArgs are kept.
func (p *ObjectPool[T]) Reset() *ObjectPool[T] {
	p.ClearElements()
	p.state.Type = state.TypeObjectPool
	p.state.AutoIncrease = false
	p.state.IncreaseFactor = state.DefaultObjectPoolIncreaseFactor
	p.state.IncreaseBreakPoint = state.DefaultObjectPoolIncreaseBreakPoint
	p.IncreaseCapacity(p.state.StartSize)
	return p
}

// Stringify returns the canonical JSON snapshot with pool and used
// redacted to empty arrays.
func (p *ObjectPool[T]) Stringify() (string, error) {
	if !p.valid() {
		return "", ErrInvalidState
	}
	obj, err := p.state.ToIRObject()
	if err != nil {
		return "", fmt.Errorf("objpool: stringify: %w", err)
	}
	data, err := ir.MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("objpool: stringify: %w", err)
	}
	return string(data), nil
}

// Restore replaces the pool with one built from a snapshot: every current
// instance is dropped and objectCount new ones are built. On error the pool
// is left unchanged.
func (p *ObjectPool[T]) Restore(snapshot string) error {
	decoded, err := state.DecodeObjectPool([]byte(snapshot))
	if err != nil {
		return fmt.Errorf("objpool: %w", err)
	}
	p.ClearElements()
	p.state = fromSnapshot(decoded)
	p.IncreaseCapacity(p.state.StartSize)
	p.logger.Debug("object pool restored",
		zap.Int("object_count", p.state.ObjectCount),
		zap.Int("max_size", p.state.MaxSize),
	)
	return nil
}

// State returns a copy of the state record.
func (p *ObjectPool[T]) State() state.ObjectPool {
	return p.state.Clone()
}

// Stats is a point-in-time view of the pool's counters.
type Stats struct {
	ObjectCount int     `json:"objectCount"`
	MaxSize     int     `json:"maxSize"`
	Free        int     `json:"free"`
	InUse       int     `json:"inUse"`
	Tombstones  int     `json:"tombstones"`
	Utilization float64 `json:"utilization"`
}

// Stats returns the pool's counters.
func (p *ObjectPool[T]) Stats() Stats {
	return Stats{
		ObjectCount: p.state.ObjectCount,
		MaxSize:     p.state.MaxSize,
		Free:        len(p.pool),
		InUse:       len(p.used) - p.wasted,
		Tombstones:  p.wasted,
		Utilization: p.Utilization(0),
	}
}

// Query returns live allocated instances matching filter, in allocation
// order. Each result's Delete releases the instance.
func (p *ObjectPool[T]) Query(filter query.Filter[T], opts query.Options) []query.Result[T] {
	return query.Run[T](source[T]{p}, filter, opts)
}

// source adapts a pool's used list to query.Source.
type source[T comparable] struct {
	p *ObjectPool[T]
}

func (s source[T]) Elements() iter.Seq[T] {
	return func(yield func(T) bool) {
		if !s.p.valid() {
			return
		}
		for _, sl := range s.p.used {
			if sl.live && !yield(sl.obj) {
				return
			}
		}
	}
}

func (s source[T]) Locate(e T) (int, bool) {
	i := s.p.usedIndex(e)
	return i, i >= 0
}

func (s source[T]) Remove(e T) (T, bool) {
	if !s.p.Release(e) {
		var zero T
		return zero, false
	}
	return e, true
}
