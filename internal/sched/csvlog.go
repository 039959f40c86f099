package sched

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"

	"github.com/pkg/errors"
)

var csvHeader = []string{"run", "tick", "event", "job_id", "slice", "remaining", "from", "to", "reason"}

// CSVSink appends one row per event to a CSV stream.
type CSVSink struct {
	run    string
	w      *csv.Writer
	closer io.Closer
}

// NewCSVSink writes the header to w and returns a sink tagging rows with run.
func NewCSVSink(w io.Writer, run string) (*CSVSink, error) {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return nil, errors.WithStack(err)
	}
	cw.Flush()
	return &CSVSink{run: run, w: cw}, cw.Error()
}

// CreateCSVSink opens the given file path for CSV logging of events.
func CreateCSVSink(path, run string) (*CSVSink, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	s, err := NewCSVSink(f, run)
	if err != nil {
		f.Close()
		return nil, err
	}
	s.closer = f
	return s, nil
}

func (s *CSVSink) Handle(ev Event) {
	rec := []string{
		s.run,
		strconv.FormatInt(ev.Tick, 10),
		ev.Kind.String(),
		"", "", "", "", "",
		ev.ReasonText(),
	}
	if ev.Kind != EventIdle {
		rec[3] = strconv.FormatUint(uint64(ev.JobID), 10)
	}
	switch ev.Kind {
	case EventExecuted:
		rec[4] = strconv.FormatInt(ev.Slice, 10)
		rec[5] = strconv.FormatInt(ev.Remaining, 10)
	case EventDemoted:
		rec[6] = ev.From.String()
		rec[7] = ev.To.String()
	}
	// write errors surface in Close
	_ = s.w.Write(rec)
	s.w.Flush()
}

// Close flushes pending rows and closes the file opened by CreateCSVSink.
func (s *CSVSink) Close() error {
	s.w.Flush()
	err := s.w.Error()
	if s.closer != nil {
		if cerr := s.closer.Close(); err == nil {
			err = cerr
		}
	}
	return errors.WithStack(err)
}
