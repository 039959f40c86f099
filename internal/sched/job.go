package sched

import (
	"fmt"

	"dispatchsim/internal/mem"
)

// JobID uniquely identifies a job in the dispatcher.
type JobID uint64

// Priority classes accepted on admission.
const (
	PriorityRealTime = 0
	MinPriority      = 0
	MaxPriority      = FeedbackLevels
)

// Descriptor is one immutable record of the dispatch list.
type Descriptor struct {
	ID        JobID `yaml:"id"`
	Arrival   int64 `yaml:"arrival"`             // informational, all jobs are known up front
	Priority  int   `yaml:"priority"`            // 0 = real-time, 1..3 = initial feedback level
	ExecTime  int64 `yaml:"exec_time"`           // ticks required
	Memory    int   `yaml:"memory"`              // pool units requested
	Resources int   `yaml:"resources,omitempty"` // carried through, ignored by the dispatcher
}

// Level is the lane a job is queued on.
type Level int

const LevelRealTime Level = -1

func (l Level) RealTime() bool { return l == LevelRealTime }

func (l Level) String() string {
	if l.RealTime() {
		return "rt"
	}
	return fmt.Sprintf("L%d", int(l))
}

// levelFor maps a priority class onto its starting lane.
func levelFor(priority int) Level {
	if priority == PriorityRealTime {
		return LevelRealTime
	}
	return Level(priority - 1)
}

// Job is the runtime state of an admitted descriptor. It is owned by the
// Dispatcher from admission until completion.
type Job struct {
	Descriptor
	Remaining  int64      // ticks left, never increases
	Level      Level      // current lane
	Region     mem.Region // memory held until completion
	Dispatches int        // number of slices run so far
}

// newJob creates a job for an admitted descriptor.
// NOTE: the region must already be allocated.
func newJob(d Descriptor, region mem.Region) *Job {
	return &Job{
		Descriptor: d,
		Remaining:  d.ExecTime,
		Level:      levelFor(d.Priority),
		Region:     region,
	}
}

// Done reports whether the job has no time left.
func (j *Job) Done() bool { return j.Remaining == 0 }
