package sched

import (
	"github.com/emirpasic/gods/queues/linkedlistqueue"
)

// FeedbackQueueSet holds the real-time lane and the feedback levels. Every
// lane is FIFO; lanes are served in strict priority order.
type FeedbackQueueSet struct {
	realtime *linkedlistqueue.Queue
	levels   []*linkedlistqueue.Queue // index 0 is the highest feedback level
}

// NewFeedbackQueueSet creates empty lanes for the real-time class and the
// given number of feedback levels.
func NewFeedbackQueueSet(levels int) *FeedbackQueueSet {
	qs := &FeedbackQueueSet{
		realtime: linkedlistqueue.New(),
		levels:   make([]*linkedlistqueue.Queue, levels),
	}
	for i := range qs.levels {
		qs.levels[i] = linkedlistqueue.New()
	}
	return qs
}

// Insert appends the job to the tail of the lane its Level names.
func (qs *FeedbackQueueSet) Insert(j *Job) {
	qs.lane(j.Level).Enqueue(j)
}

// SelectNext detaches the head of the highest-priority non-empty lane.
// The bool is false when every lane is empty.
func (qs *FeedbackQueueSet) SelectNext() (*Job, bool) {
	if v, ok := qs.realtime.Dequeue(); ok {
		return v.(*Job), true
	}
	for _, q := range qs.levels {
		if v, ok := q.Dequeue(); ok {
			return v.(*Job), true
		}
	}
	return nil, false
}

// Len is the number of queued jobs across all lanes.
func (qs *FeedbackQueueSet) Len() int {
	n := qs.realtime.Size()
	for _, q := range qs.levels {
		n += q.Size()
	}
	return n
}

// LevelLen is the number of jobs queued on one lane.
func (qs *FeedbackQueueSet) LevelLen(l Level) int {
	return qs.lane(l).Size()
}

func (qs *FeedbackQueueSet) Empty() bool { return qs.Len() == 0 }

// Jobs lists queued jobs in the order SelectNext would return them,
// assuming no further inserts.
func (qs *FeedbackQueueSet) Jobs() []*Job {
	out := make([]*Job, 0, qs.Len())
	for _, q := range append([]*linkedlistqueue.Queue{qs.realtime}, qs.levels...) {
		for _, v := range q.Values() {
			out = append(out, v.(*Job))
		}
	}
	return out
}

func (qs *FeedbackQueueSet) lane(l Level) *linkedlistqueue.Queue {
	if l.RealTime() {
		return qs.realtime
	}
	return qs.levels[l]
}
