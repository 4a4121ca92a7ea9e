package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/legamerdc/cathy"
	"github.com/legamerdc/cathy/internal/logging"
	"github.com/legamerdc/cathy/server"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
)

func main() {
	flags := pflag.NewFlagSet("cathy-server", pflag.ExitOnError)
	configPath := flags.String("config", "", "path to a YAML config file")
	flags.String("address", cathy.DefaultAddress, "listen address")
	flags.String("log-level", "info", "log level")
	flags.Bool("reuse-port", false, "set SO_REUSEPORT on the listener")
	flags.Parse(os.Args[1:])

	cfg, err := cathy.LoadConfig(*configPath, flags)
	if err != nil {
		logrus.WithError(err).Fatal("cathy-server: load config")
	}
	if err := logging.Setup(cfg.LogLevel, os.Stderr); err != nil {
		logrus.WithError(err).Fatal("cathy-server: setup logging")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv, err := server.Start(cfg)
	if err != nil {
		logrus.WithError(err).Fatal("cathy-server: start")
	}
	<-ctx.Done()

	shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Stop(shutdown); err != nil {
		logrus.WithError(err).Error("cathy-server: stop")
	}
}
