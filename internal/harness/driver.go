package harness

import (
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/roach88/adt/internal/config"
	"github.com/roach88/adt/internal/cqueue"
	"github.com/roach88/adt/internal/ir"
	"github.com/roach88/adt/internal/metrics"
	"github.com/roach88/adt/internal/objpool"
	"github.com/roach88/adt/internal/query"
	"github.com/roach88/adt/internal/state"
)

// containerOps lists the operations each container accepts.
var containerOps = map[string]map[string]bool{
	ContainerCircularQueue: {
		"push": true, "pop": true, "front": true, "rear": true,
		"get_index": true, "wrap_index": true, "size": true,
		"is_empty": true, "is_full": true, "query": true,
		"query_delete": true, "clear": true, "reset": true,
		"stringify": true, "restore": true,
	},
	ContainerObjectPool: {
		"allocate": true, "allocate_multiple": true, "release": true,
		"increase_capacity": true, "clean_used": true, "stats": true,
		"query": true, "clear": true, "reset": true,
		"stringify": true, "restore": true,
	},
}

// outcome is what one operation produced.
type outcome struct {
	Case   string
	Result map[string]any
}

func ok(result map[string]any) outcome {
	return outcome{Case: CaseOK, Result: result}
}

// driver runs named operations against one container.
type driver interface {
	apply(op string, args map[string]any) (outcome, error)
	snapshot() (ir.IRObject, error)
	register(c *metrics.Collector, name string)
}

func newDriver(s *Scenario, cfg config.Config, logger *zap.Logger) (driver, error) {
	switch s.Container {
	case ContainerCircularQueue:
		return newQueueDriver(s, cfg.CircularQueue, logger)
	case ContainerObjectPool:
		return newPoolDriver(s, cfg.ObjectPool, logger)
	default:
		return nil, fmt.Errorf("unknown container %q", s.Container)
	}
}

// queueDriver drives a circular queue of integers.
type queueDriver struct {
	q *cqueue.CircularQueue[int64]
}

func newQueueDriver(s *Scenario, defaults config.CircularQueueConfig, logger *zap.Logger) (*queueDriver, error) {
	var opts []cqueue.Option[int64]
	if s.Snapshot == "" {
		opts = append(opts, config.CircularQueueOptions[int64](defaults)...)
	}
	opts = append(opts, cqueue.WithSnapshot[int64](s.Snapshot), cqueue.WithLogger[int64](logger))

	o := s.Options
	if o.MaxSize != nil {
		opts = append(opts, cqueue.WithMaxSize[int64](*o.MaxSize))
	}
	if o.Overwrite != nil {
		opts = append(opts, cqueue.WithOverwrite[int64](*o.Overwrite))
	}
	if o.Size != nil {
		opts = append(opts, cqueue.WithSize[int64](*o.Size))
	}
	if o.Front != nil {
		opts = append(opts, cqueue.WithFront[int64](*o.Front))
	}
	if o.Rear != nil {
		opts = append(opts, cqueue.WithRear[int64](*o.Rear))
	}
	if o.Elements != nil {
		opts = append(opts, cqueue.WithElements(o.Elements))
	}

	q, err := cqueue.New[int64](opts...)
	if err != nil {
		return nil, err
	}
	return &queueDriver{q: q}, nil
}

func (d *queueDriver) register(c *metrics.Collector, name string) {
	c.AddQueue(name, d.q)
}

func (d *queueDriver) snapshot() (ir.IRObject, error) {
	return d.q.State().ToIRObject()
}

func valueOutcome(v int64, found bool) outcome {
	if !found {
		return outcome{Case: CaseEmpty}
	}
	return ok(map[string]any{"value": v})
}

func (d *queueDriver) apply(op string, args map[string]any) (outcome, error) {
	switch op {
	case "push":
		v, err := intArg(args, "value")
		if err != nil {
			return outcome{}, err
		}
		if !d.q.Push(v) {
			return outcome{Case: CaseRejected}, nil
		}
		return ok(map[string]any{"size": int64(d.q.Size())}), nil

	case "pop":
		return valueOutcome(d.q.Pop()), nil
	case "front":
		return valueOutcome(d.q.Front()), nil
	case "rear":
		return valueOutcome(d.q.Rear()), nil

	case "get_index":
		n, err := intArg(args, "n")
		if err != nil {
			return outcome{}, err
		}
		return valueOutcome(d.q.GetIndex(int(n))), nil

	case "wrap_index":
		n, err := intArg(args, "n")
		if err != nil {
			return outcome{}, err
		}
		return ok(map[string]any{"index": int64(d.q.WrapIndex(int(n)))}), nil

	case "size":
		return ok(map[string]any{"size": int64(d.q.Size())}), nil
	case "is_empty":
		return ok(map[string]any{"result": d.q.IsEmpty()}), nil
	case "is_full":
		return ok(map[string]any{"result": d.q.IsFull()}), nil

	case "query":
		filter, opts, err := queueFilter(args)
		if err != nil {
			return outcome{}, err
		}
		values := []any{}
		for _, r := range d.q.Query(filter, opts) {
			values = append(values, r.Element)
		}
		return ok(map[string]any{"values": values}), nil

	case "query_delete":
		v, err := intArg(args, "value")
		if err != nil {
			return outcome{}, err
		}
		results := d.q.Query(query.Equal(v), query.Options{Limit: 1})
		if len(results) == 0 {
			return outcome{Case: CaseNotFound}, nil
		}
		removed, found := results[0].Delete()
		if !found {
			return outcome{Case: CaseNotFound}, nil
		}
		return ok(map[string]any{"value": removed, "size": int64(d.q.Size())}), nil

	case "clear":
		d.q.ClearElements()
		return ok(nil), nil
	case "reset":
		d.q.Reset()
		return ok(nil), nil

	case "stringify":
		s, err := d.q.Stringify()
		if err != nil {
			return outcome{Case: CaseRejected}, nil
		}
		return ok(map[string]any{"snapshot": s}), nil

	case "restore":
		s, err := stringArg(args, "snapshot")
		if err != nil {
			return outcome{}, err
		}
		if err := d.q.Restore(s); err != nil {
			return rejected(err), nil
		}
		return ok(nil), nil
	}
	return outcome{}, fmt.Errorf("unknown op %q", op)
}

// queueFilter builds a filter from optional min, max and limit args.
func queueFilter(args map[string]any) (query.Filter[int64], query.Options, error) {
	var filters []query.Filter[int64]
	if _, set := args["min"]; set {
		lo, err := intArg(args, "min")
		if err != nil {
			return nil, query.Options{}, err
		}
		filters = append(filters, func(v int64) bool { return v >= lo })
	}
	if _, set := args["max"]; set {
		hi, err := intArg(args, "max")
		if err != nil {
			return nil, query.Options{}, err
		}
		filters = append(filters, func(v int64) bool { return v <= hi })
	}

	var opts query.Options
	if _, set := args["limit"]; set {
		limit, err := floatArg(args, "limit")
		if err != nil {
			return nil, query.Options{}, err
		}
		opts.Limit = limit
	}
	return query.All(filters...), opts, nil
}

// item is the instance type the pool driver hands out. Tag comes from the
// pool's instance args and is cleared on release.
type item struct {
	ID  int64
	Tag string
}

func (it *item) Clean() {
	it.Tag = ""
}

// poolDriver drives an object pool of items, naming each by its ID.
type poolDriver struct {
	p      *objpool.ObjectPool[*item]
	byID   map[int64]*item
	nextID int64
}

func newPoolDriver(s *Scenario, defaults config.ObjectPoolConfig, logger *zap.Logger) (*poolDriver, error) {
	d := &poolDriver{byID: map[int64]*item{}}

	var opts []objpool.Option
	if s.Snapshot == "" {
		opts = append(opts, defaults.Options()...)
	}
	opts = append(opts, objpool.WithSnapshot(s.Snapshot), objpool.WithLogger(logger))

	o := s.Options
	if o.StartSize != nil {
		opts = append(opts, objpool.WithStartSize(*o.StartSize))
	}
	if o.MaxSize != nil {
		opts = append(opts, objpool.WithMaxSize(*o.MaxSize))
	}
	if o.AutoIncrease != nil {
		opts = append(opts, objpool.WithAutoIncrease(*o.AutoIncrease))
	}
	if o.IncreaseBreakPoint != nil {
		opts = append(opts, objpool.WithIncreaseBreakPoint(*o.IncreaseBreakPoint))
	}
	if o.IncreaseFactor != nil {
		opts = append(opts, objpool.WithIncreaseFactor(*o.IncreaseFactor))
	}
	if o.InstanceArgs != nil {
		opts = append(opts, objpool.WithInstanceArgs(o.InstanceArgs...))
	}

	p, err := objpool.New(d.build, opts...)
	if err != nil {
		return nil, err
	}
	d.p = p
	return d, nil
}

// build is the pool factory. IDs count up from 1 in construction order.
func (d *poolDriver) build(args ...any) *item {
	d.nextID++
	it := &item{ID: d.nextID}
	if len(args) > 0 {
		it.Tag = fmt.Sprint(args[0])
	}
	d.byID[it.ID] = it
	return it
}

func (d *poolDriver) register(c *metrics.Collector, name string) {
	c.AddPool(name, d.p)
}

func (d *poolDriver) snapshot() (ir.IRObject, error) {
	return d.p.State().ToIRObject()
}

func (d *poolDriver) apply(op string, args map[string]any) (outcome, error) {
	switch op {
	case "allocate":
		it, found := d.p.Allocate()
		if !found {
			return outcome{Case: CaseExhausted}, nil
		}
		return ok(map[string]any{"id": it.ID, "tag": it.Tag}), nil

	case "allocate_multiple":
		n, err := intArg(args, "n")
		if err != nil {
			return outcome{}, err
		}
		ids := []any{}
		for _, it := range d.p.AllocateMultiple(int(n)) {
			ids = append(ids, it.ID)
		}
		return ok(map[string]any{"ids": ids}), nil

	case "release":
		id, err := intArg(args, "id")
		if err != nil {
			return outcome{}, err
		}
		it, known := d.byID[id]
		if !known {
			return outcome{Case: CaseNotFound}, nil
		}
		if !d.p.Release(it) {
			return outcome{Case: CaseRejected}, nil
		}
		return ok(nil), nil

	case "increase_capacity":
		n, err := intArg(args, "n")
		if err != nil {
			return outcome{}, err
		}
		d.p.IncreaseCapacity(int(n))
		return ok(map[string]any{"object_count": int64(d.p.ObjectCount())}), nil

	case "clean_used":
		d.p.CleanUsed()
		return ok(nil), nil

	case "stats":
		s := d.p.Stats()
		result := map[string]any{
			"object_count": int64(s.ObjectCount),
			"max_size":     int64(s.MaxSize),
			"free":         int64(s.Free),
			"in_use":       int64(s.InUse),
			"tombstones":   int64(s.Tombstones),
		}
		if !math.IsNaN(s.Utilization) && !math.IsInf(s.Utilization, 0) {
			result["utilization"] = s.Utilization
		}
		return ok(result), nil

	case "query":
		var opts query.Options
		if _, set := args["limit"]; set {
			limit, err := floatArg(args, "limit")
			if err != nil {
				return outcome{}, err
			}
			opts.Limit = limit
		}
		ids := []any{}
		for _, r := range d.p.Query(nil, opts) {
			ids = append(ids, r.Element.ID)
		}
		return ok(map[string]any{"ids": ids}), nil

	case "clear":
		d.p.ClearElements()
		return ok(nil), nil
	case "reset":
		d.p.Reset()
		return ok(nil), nil

	case "stringify":
		s, err := d.p.Stringify()
		if err != nil {
			return outcome{Case: CaseRejected}, nil
		}
		return ok(map[string]any{"snapshot": s}), nil

	case "restore":
		s, err := stringArg(args, "snapshot")
		if err != nil {
			return outcome{}, err
		}
		if err := d.p.Restore(s); err != nil {
			return rejected(err), nil
		}
		return ok(nil), nil
	}
	return outcome{}, fmt.Errorf("unknown op %q", op)
}

// rejected reports snapshot errors message by message.
func rejected(err error) outcome {
	var msgs []any
	var se *state.SnapshotError
	if errors.As(err, &se) {
		for _, m := range se.Messages() {
			msgs = append(msgs, m)
		}
	} else {
		msgs = append(msgs, err.Error())
	}
	return outcome{Case: CaseRejected, Result: map[string]any{"errors": msgs}}
}
