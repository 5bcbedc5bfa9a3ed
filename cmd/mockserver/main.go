// Command mockserver serves the document service API from built-in fixtures.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bekirdag/secdeck/internal/config"
	"github.com/bekirdag/secdeck/internal/logging"
	"github.com/bekirdag/secdeck/internal/mockapi"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		exit(err)
	}

	var (
		addr    string
		latency time.Duration
		logFile string
	)
	flag.StringVar(&addr, "addr", cfg.MockAddr, "listen address")
	flag.DurationVar(&latency, "latency", 0, "artificial delay added to every response")
	flag.StringVar(&logFile, "log", "", "also write JSON logs to this file")
	flag.Parse()

	log, err := logging.NewConsole(logFile, cfg.Debug)
	if err != nil {
		exit(fmt.Errorf("init logger: %w", err))
	}
	defer func() { _ = log.Sync() }()

	srv := mockapi.New(mockapi.DefaultFixtures(), mockapi.WithLogger(log), mockapi.WithLatency(latency))

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-stop
		log.Info("shutting down")
		if err := srv.Shutdown(); err != nil {
			log.Error("shutdown failed", zap.Error(err))
		}
	}()

	if err := srv.Listen(addr); err != nil {
		log.Error("listen failed", zap.Error(err))
		_ = log.Sync()
		os.Exit(1)
	}
}

func exit(err error) {
	fmt.Fprintf(os.Stderr, "mockserver: %v\n", err)
	os.Exit(1)
}
