// internal/sched/dispatcher.go

package sched

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"dispatchsim/internal/mem"
)

var (
	ErrInvalidPriority   = errors.New("invalid priority")
	ErrInvalidDescriptor = errors.New("invalid descriptor")
	ErrDuplicateJob      = errors.New("duplicate job id")
)

// Summary counts what happened during a run.
type Summary struct {
	Admitted  int
	Rejected  int
	Completed int
	Steps     int   // dispatches, idle steps excluded
	Ticks     int64 // sim clock at the time of the snapshot
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithSink registers sinks that receive every emitted event, in order.
func WithSink(sinks ...Sink) Option {
	return func(d *Dispatcher) { d.sinks = append(d.sinks, sinks...) }
}

// Dispatcher admits jobs against a fixed memory pool and runs them under a
// multilevel feedback discipline. It is not safe for concurrent use; each
// instance is a self-contained simulation.
type Dispatcher struct {
	quantum  int64             // ticks a feedback job runs before being demoted
	maxLevel Level             // lowest feedback level a job can be demoted to
	clock    TickClock         // sim clock, advanced by executed slices
	alloc    *mem.Allocator    // memory pool
	queues   *FeedbackQueueSet // real-time lane + feedback levels
	jobs     map[JobID]*Job    // admitted jobs that have not completed
	sinks    []Sink            // event consumers
	summary  Summary
}

// New creates a new Dispatcher with the given configuration.
func New(cfg Config, opts ...Option) (*Dispatcher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var allocOpts []mem.Option
	if cfg.Coalesce {
		allocOpts = append(allocOpts, mem.WithCoalescing())
	}
	alloc, err := mem.New(cfg.MemorySize, allocOpts...)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidConfig, err.Error())
	}

	d := &Dispatcher{
		quantum:  cfg.Quantum,
		maxLevel: Level(cfg.MaxLevel),
		alloc:    alloc,
		queues:   NewFeedbackQueueSet(cfg.FeedbackLevels),
		jobs:     make(map[JobID]*Job),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Admit turns a descriptor into a queued job if its priority is valid and the
// pool can hold its memory request. A rejected descriptor is never reconsidered.
func (d *Dispatcher) Admit(desc Descriptor) Event {
	if desc.Priority < MinPriority || desc.Priority > MaxPriority {
		return d.reject(desc.ID, errors.Wrapf(ErrInvalidPriority, "priority class %d", desc.Priority))
	}
	if desc.ExecTime <= 0 || desc.Memory <= 0 {
		return d.reject(desc.ID, errors.Wrapf(ErrInvalidDescriptor,
			"exec time %d, memory %d", desc.ExecTime, desc.Memory))
	}
	if _, dup := d.jobs[desc.ID]; dup {
		return d.reject(desc.ID, errors.Wrapf(ErrDuplicateJob, "job %d is still active", desc.ID))
	}

	region, err := d.alloc.Allocate(desc.Memory)
	if err != nil {
		return d.reject(desc.ID, err)
	}

	j := newJob(desc, region)
	d.jobs[j.ID] = j
	d.queues.Insert(j)
	d.summary.Admitted++
	return d.emit(Event{Kind: EventAdmitted, JobID: j.ID})
}

func (d *Dispatcher) reject(id JobID, reason error) Event {
	d.summary.Rejected++
	return d.emit(Event{Kind: EventRejected, JobID: id, Reason: reason})
}

// Step makes exactly one scheduling decision and returns the events it
// produced: Idle alone, Executed followed by Demoted, or Executed followed
// by Completed.
func (d *Dispatcher) Step() []Event {
	// 1) pick the next job
	j, ok := d.queues.SelectNext()
	if !ok {
		return []Event{d.emit(Event{Kind: EventIdle})}
	}
	d.summary.Steps++

	// 2) real-time jobs run to completion, feedback jobs get one quantum
	slice := j.Remaining
	if !j.Level.RealTime() && d.quantum < slice {
		slice = d.quantum
	}

	// 3) run the slice
	j.Remaining -= slice
	j.Dispatches++
	d.clock.Advance(slice)
	events := []Event{d.emit(Event{
		Kind:      EventExecuted,
		JobID:     j.ID,
		Slice:     slice,
		Remaining: j.Remaining,
	})}

	// 4) quantum expired: demote and requeue at the tail of the new level
	if !j.Done() {
		from := j.Level
		j.Level = d.demote(from)
		d.queues.Insert(j)
		return append(events, d.emit(Event{Kind: EventDemoted, JobID: j.ID, From: from, To: j.Level}))
	}

	// 5) finished: give the memory back and forget the job
	if err := d.alloc.Release(j.Region); err != nil {
		panic(fmt.Sprintf("job %d: %+v", j.ID, err))
	}
	delete(d.jobs, j.ID)
	d.summary.Completed++
	return append(events, d.emit(Event{Kind: EventCompleted, JobID: j.ID}))
}

// demote moves a feedback level one step down, never past maxLevel and never up.
func (d *Dispatcher) demote(l Level) Level {
	if l < d.maxLevel {
		return l + 1
	}
	return l
}

// Run steps until every lane is empty.
func (d *Dispatcher) Run(ctx context.Context) (Summary, error) {
	for {
		// check shutdown between steps, a step itself never blocks
		if err := ctx.Err(); err != nil {
			return d.Summary(), errors.WithStack(err)
		}
		if events := d.Step(); events[0].Kind == EventIdle {
			return d.Summary(), nil
		}
	}
}

func (d *Dispatcher) emit(ev Event) Event {
	ev.Tick = d.clock.Count()
	for _, s := range d.sinks {
		s.Handle(ev)
	}
	return ev
}

// Summary returns the counters of the run so far.
func (d *Dispatcher) Summary() Summary {
	s := d.summary
	s.Ticks = d.clock.Count()
	return s
}

// Now is the current sim tick.
func (d *Dispatcher) Now() int64 { return d.clock.Count() }

// Pending is the number of queued jobs.
func (d *Dispatcher) Pending() int { return d.queues.Len() }

// Active is the number of admitted jobs that have not completed.
func (d *Dispatcher) Active() int { return len(d.jobs) }

// HeldMemory is the sum of memory requests of all active jobs.
func (d *Dispatcher) HeldMemory() int {
	sum := 0
	for _, j := range d.jobs {
		sum += j.Memory
	}
	return sum
}

// Allocator exposes the memory pool for observation.
func (d *Dispatcher) Allocator() *mem.Allocator { return d.alloc }
