package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/and161185/custommetrics/cmd/agent/collector"
	"github.com/and161185/custommetrics/internal/buildinfo"
	"github.com/and161185/custommetrics/internal/client"
	"github.com/and161185/custommetrics/internal/config"
	"github.com/and161185/custommetrics/model"
	"go.uber.org/zap"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

var errUsage = errors.New("either -n or -host is required")

type agentFlags struct {
	name        string
	value       float64
	at          int64
	host        bool
	cpuInterval time.Duration
}

func main() {
	buildinfo.PrintBuildInfo(buildVersion, buildDate, buildCommit)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(2)
	}
}

func run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("agent", flag.ContinueOnError)
	var af agentFlags
	fs.StringVar(&af.name, "n", "", "Metric name")
	fs.Float64Var(&af.value, "v", 0, "Metric value")
	fs.Int64Var(&af.at, "at", 0, "Collection time in Unix seconds, now when 0")
	fs.BoolVar(&af.host, "host", false, "Send Go runtime and host metrics")
	fs.DurationVar(&af.cpuInterval, "cpu-interval", time.Second, "CPU sampling interval for -host")

	cfg, err := config.NewClientConfig(fs, args)
	if err != nil {
		return err
	}
	if af.name == "" && !af.host {
		return errUsage
	}

	logger, err := config.NewLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	c, err := client.NewClient(cfg, logger)
	if err != nil {
		return err
	}

	msg, err := buildMessage(ctx, af, cfg.InstanceID)
	if err != nil {
		return err
	}

	rep, err := c.SendMetrics(ctx, msg)
	if err != nil {
		return err
	}
	logReport(logger, rep, len(msg.DataPoints()))
	return nil
}

func buildMessage(ctx context.Context, af agentFlags, instanceID string) (*model.Message, error) {
	at := time.Now()
	if af.at != 0 {
		at = time.Unix(af.at, 0)
	}

	msg := model.NewMessage()
	if af.name != "" {
		p, err := model.NewPoint(af.name, af.value, at)
		if err != nil {
			return nil, err
		}
		p.InstanceID = instanceID
		msg.AddDataPoint(p)
	}

	if af.host {
		for _, p := range collector.CollectRuntimeMetrics(at, instanceID) {
			msg.AddDataPoint(p)
		}
		host, err := collector.CollectHostMetrics(ctx, at, instanceID, af.cpuInterval)
		if err != nil {
			return nil, fmt.Errorf("collect host metrics: %w", err)
		}
		for _, p := range host {
			msg.AddDataPoint(p)
		}
	}
	return msg, nil
}

func logReport(logger *zap.SugaredLogger, rep *client.Report, points int) {
	switch {
	case rep.Local:
		logger.Infow("metrics logged locally", "points", points)
	case rep.Delivered():
		logger.Infow("metrics delivered", "points", points, "status", rep.StatusCode)
	default:
		logger.Warnw("metrics not delivered", "points", points, "status", rep.StatusCode, "error", rep.Err)
	}
}
