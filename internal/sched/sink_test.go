package sched

import (
	"bytes"
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogSink(t *testing.T) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	_, err := Simulate(context.Background(), DefaultConfig(), scenario, WithSink(NewLogSink(logger)))
	require.NoError(t, err)

	entries := hook.AllEntries()
	require.NotEmpty(t, entries)

	var rejected *logrus.Entry
	for _, e := range entries {
		if e.Data["event"] == EventRejected.String() {
			rejected = e
		}
	}
	require.NotNil(t, rejected)
	assert.Equal(t, logrus.WarnLevel, rejected.Level)
	assert.Equal(t, JobID(3), rejected.Data["job"])
	assert.Equal(t, "insufficient memory", rejected.Data["reason"])

	first := entries[0]
	assert.Equal(t, "Job admitted", first.Message)
	assert.Equal(t, int64(0), first.Data["tick"])

	last := hook.LastEntry()
	assert.Equal(t, logrus.DebugLevel, last.Level)
	assert.Equal(t, "No job to execute", last.Message)
	assert.NotContains(t, last.Data, "job")
}

func TestCSVSink(t *testing.T) {
	var buf bytes.Buffer
	s, err := NewCSVSink(&buf, "run-1")
	require.NoError(t, err)

	_, err = Simulate(context.Background(), DefaultConfig(), scenario, WithSink(s))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	// header, 3 admissions, 8 step events, idle
	require.Len(t, rows, 13)
	assert.Equal(t, csvHeader, rows[0])
	assert.Equal(t, []string{"run-1", "0", "Rejected", "3", "", "", "", "", "insufficient memory"}, rows[3])
	assert.Equal(t, []string{"run-1", "7", "Executed", "2", "2", "3", "", "", ""}, rows[6])
	assert.Equal(t, []string{"run-1", "7", "Demoted", "2", "", "", "L0", "L1", ""}, rows[7])
	assert.Equal(t, []string{"run-1", "10", "Idle", "", "", "", "", "", ""}, rows[12])
}

func TestCreateCSVSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.csv")
	s, err := CreateCSVSink(path, "r")
	require.NoError(t, err)
	s.Handle(Event{Kind: EventAdmitted, JobID: 9})
	require.NoError(t, s.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "r,0,Admitted,9,,,,,\n")

	_, err = CreateCSVSink(filepath.Join(t.TempDir(), "missing", "events.csv"), "r")
	assert.Error(t, err)
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewMetrics(reg)
	require.NoError(t, err)

	_, err = Simulate(context.Background(), DefaultConfig(), scenario, WithSink(m))
	require.NoError(t, err)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.events.WithLabelValues("Admitted")))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.events.WithLabelValues("Executed")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.events.WithLabelValues("Completed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.rejected.WithLabelValues("insufficient memory")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.demotions.WithLabelValues("L2")))
	assert.Equal(t, 10.0, testutil.ToFloat64(m.ticks))

	// a second set of collectors cannot be registered on the same registry
	_, err = NewMetrics(reg)
	assert.Error(t, err)
}
