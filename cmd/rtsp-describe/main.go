package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rtsp-describe/internal/config"
	"github.com/rtsp-describe/pkg/logger"
	"github.com/rtsp-describe/pkg/metrics"
	"github.com/rtsp-describe/pkg/rtsp"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cfg, err := config.Parse(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(stderr, "configuration error: %v\n", err)
		return 2
	}

	log := logger.NewWithWriter(stderr, cfg.Level())
	log.Debug("%s", cfg)

	recorder := metrics.NewRecorder()
	client := rtsp.NewClient(cfg.Timeout)
	client.UserAgent = cfg.UserAgent
	client.ReadSize = cfg.ReadSize
	client.Logger = log
	client.Metrics = recorder
	client.OnChallenge = func(header string) {
		log.Info("server challenge: Digest %s", header)
	}

	response, err := client.Describe(ctx, cfg.RTSPURL, cfg.Username, cfg.Password)

	if cfg.MetricsFile != "" {
		if werr := recorder.WriteTextfile(cfg.MetricsFile); werr != nil {
			log.Warn("write metrics to %s: %v", cfg.MetricsFile, werr)
		}
	}

	if err != nil {
		log.Error("%v", err)
		return 1
	}

	fmt.Fprint(stdout, response)
	return 0
}
