package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/and161185/custommetrics/internal/buildinfo"
	"github.com/and161185/custommetrics/internal/config"
	"github.com/and161185/custommetrics/internal/gateway"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	buildinfo.PrintBuildInfo(buildVersion, buildDate, buildCommit)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	config, err := config.NewGatewayConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(2)
	}

	config.Logger.Infof("Gateway config: Addr=%s, APIKey set=%t, LogLevel=%s",
		config.Addr,
		config.APIKey != "",
		config.LogLevel,
	)

	gw := gateway.NewGateway(config, nil)
	if err := gw.Run(ctx); err != nil {
		config.Logger.Fatal(err)
	}
}
