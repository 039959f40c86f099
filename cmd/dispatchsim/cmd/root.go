package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"dispatchsim/internal/job"
	"dispatchsim/internal/sched"
)

func RootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "dispatchsim [flags] DISPATCH_LIST...",
		Short:        "Simulate a host dispatcher with a memory pool and multilevel feedback queues.",
		Args:         cobra.MinimumNArgs(1),
		RunE:         runSimulations,
		SilenceUsage: true,
	}
	cmd.Flags().String("config", "", "YAML file with dispatcher settings.")
	cmd.Flags().String("logLevel", "", "Log level, overrides the config file.")
	cmd.Flags().Bool("coalesce", false, "Merge adjacent free memory regions on release.")
	cmd.Flags().String("eventLog", "", "Write events as CSV to this path. With several inputs the run id is appended to the file name.")
	cmd.Flags().Bool("showMetrics", false, "Log event counters once all runs are done.")
	return cmd
}

func runSimulations(cmd *cobra.Command, args []string) error {
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return err
	}
	cfg, err := sched.Load(configPath)
	if err != nil {
		return err
	}
	if err := applyFlags(cmd, &cfg); err != nil {
		return err
	}
	showMetrics, err := cmd.Flags().GetBool("showMetrics")
	if err != nil {
		return err
	}

	log := logrus.New()
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return errors.WithStack(err)
	}
	log.SetLevel(level)

	reg := prometheus.NewRegistry()
	metrics, err := sched.NewMetrics(reg)
	if err != nil {
		return err
	}

	// Every input file is an independent simulation.
	g, ctx := errgroup.WithContext(cmd.Context())
	for _, path := range args {
		path := path
		g.Go(func() error {
			run := uuid.NewString()
			runLog := log.WithFields(logrus.Fields{"run": run, "input": filepath.Base(path)})

			descs, err := job.Load(path, runLog)
			if err != nil {
				return err
			}

			sinks := []sched.Sink{sched.NewLogSink(runLog), metrics}
			if cfg.EventLog != "" {
				csvSink, err := sched.CreateCSVSink(eventLogPath(cfg.EventLog, run, len(args)), run)
				if err != nil {
					return err
				}
				defer csvSink.Close()
				sinks = append(sinks, csvSink)
			}

			summary, err := sched.Simulate(ctx, cfg, descs, sched.WithSink(sinks...))
			if err != nil {
				return err
			}
			runLog.WithFields(logrus.Fields{
				"admitted":  summary.Admitted,
				"rejected":  summary.Rejected,
				"completed": summary.Completed,
				"steps":     summary.Steps,
				"ticks":     summary.Ticks,
			}).Info("Simulation complete")
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.WithError(err).Error("Simulation failed")
		return err
	}

	if showMetrics {
		return logMetrics(log, reg)
	}
	return nil
}

func applyFlags(cmd *cobra.Command, cfg *sched.Config) error {
	if cmd.Flags().Changed("logLevel") {
		v, err := cmd.Flags().GetString("logLevel")
		if err != nil {
			return err
		}
		cfg.LogLevel = v
	}
	if cmd.Flags().Changed("coalesce") {
		v, err := cmd.Flags().GetBool("coalesce")
		if err != nil {
			return err
		}
		cfg.Coalesce = v
	}
	if cmd.Flags().Changed("eventLog") {
		v, err := cmd.Flags().GetString("eventLog")
		if err != nil {
			return err
		}
		cfg.EventLog = v
	}
	return nil
}

// eventLogPath keeps runs from clobbering each other's CSV file.
func eventLogPath(path, run string, runs int) string {
	if runs == 1 {
		return path
	}
	ext := filepath.Ext(path)
	return fmt.Sprintf("%s-%s%s", strings.TrimSuffix(path, ext), run, ext)
}

func logMetrics(log logrus.FieldLogger, reg *prometheus.Registry) error {
	families, err := reg.Gather()
	if err != nil {
		return errors.WithStack(err)
	}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			labels := make([]string, 0, len(m.GetLabel()))
			for _, l := range m.GetLabel() {
				labels = append(labels, l.GetName()+"="+l.GetValue())
			}
			log.WithField("labels", strings.Join(labels, ",")).
				Infof("%s %v", mf.GetName(), m.GetCounter().GetValue())
		}
	}
	return nil
}
