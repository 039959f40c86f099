package sched

import (
	"github.com/sirupsen/logrus"
)

// Sink consumes dispatcher events. Handle is called synchronously from
// Admit and Step, in emission order.
type Sink interface {
	Handle(ev Event)
}

// SinkFunc adapts a function to a Sink.
type SinkFunc func(ev Event)

func (f SinkFunc) Handle(ev Event) { f(ev) }

// LogSink writes every event as a structured log line.
type LogSink struct {
	log logrus.FieldLogger
}

func NewLogSink(log logrus.FieldLogger) *LogSink {
	return &LogSink{log: log}
}

func (s *LogSink) Handle(ev Event) {
	entry := s.log.WithFields(logrus.Fields{
		"tick":  ev.Tick,
		"event": ev.Kind.String(),
	})
	if ev.Kind != EventIdle {
		entry = entry.WithField("job", ev.JobID)
	}

	switch ev.Kind {
	case EventIdle:
		entry.Debug("No job to execute")
	case EventAdmitted:
		entry.Info("Job admitted")
	case EventRejected:
		entry.WithField("reason", ev.ReasonText()).Warn("Job rejected")
	case EventExecuted:
		entry.WithFields(logrus.Fields{
			"slice":     ev.Slice,
			"remaining": ev.Remaining,
		}).Infof("Executing job %d for %d ticks", ev.JobID, ev.Slice)
	case EventDemoted:
		entry.WithFields(logrus.Fields{
			"from": ev.From.String(),
			"to":   ev.To.String(),
		}).Debug("Job demoted")
	case EventCompleted:
		entry.Info("Job completed")
	}
}
