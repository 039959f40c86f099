// internal/sched/dispatchEvent.go

package sched

import (
	"fmt"

	"github.com/pkg/errors"
)

// EventKind represents the type of dispatcher event
type EventKind int

const (
	EventIdle EventKind = iota
	EventAdmitted
	EventRejected
	EventExecuted
	EventDemoted
	EventCompleted
)

// Event is emitted on every admission decision and every step
type Event struct {
	Tick      int64 // sim clock when the event was produced
	Kind      EventKind
	JobID     JobID
	Slice     int64 // Executed only
	Remaining int64 // Executed only
	From, To  Level // Demoted only
	Reason    error // Rejected only
}

func (k EventKind) String() string {
	switch k {
	case EventIdle:
		return "Idle"
	case EventAdmitted:
		return "Admitted"
	case EventRejected:
		return "Rejected"
	case EventExecuted:
		return "Executed"
	case EventDemoted:
		return "Demoted"
	case EventCompleted:
		return "Completed"
	default:
		return "Unknown"
	}
}

// ReasonText is the short cause of a rejection, without wrapping context.
func (e Event) ReasonText() string {
	if e.Reason == nil {
		return ""
	}
	return errors.Cause(e.Reason).Error()
}

func (e Event) String() string {
	switch e.Kind {
	case EventIdle:
		return "Idle"
	case EventRejected:
		return fmt.Sprintf("Rejected{id=%d, reason=%s}", e.JobID, e.ReasonText())
	case EventExecuted:
		return fmt.Sprintf("Executed{id=%d, slice=%d, remaining=%d}", e.JobID, e.Slice, e.Remaining)
	case EventDemoted:
		return fmt.Sprintf("Demoted{id=%d, %s->%s}", e.JobID, e.From, e.To)
	default:
		return fmt.Sprintf("%s{id=%d}", e.Kind, e.JobID)
	}
}
