package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"

	"github.com/graybat-go/graybat/signaling"
)

var (
	appName = "graybat-signaling-server"
	appSha  = "populated-at-link-time"
	logger  *logrus.Entry
)

func main() {
	host, _ := os.Hostname()
	rootLogger := logrus.New()
	rootLogger.SetFormatter(new(logrus.JSONFormatter))
	logger = rootLogger.WithFields(logrus.Fields{
		"app":  appName,
		"sha":  appSha,
		"host": host,
	})

	if err := makeApp().Run(os.Args); err != nil {
		logger.WithField("err", err).Error("shutting down due to error")
		_ = os.Stderr.Sync()
		os.Exit(1)
	}
}

func makeApp() *cli.App {
	app := cli.NewApp()
	app.Name = appName
	app.Version = appSha
	app.Usage = "runs the GrayBat signaling service used by the socket transport backend (spec.md §6)"
	app.Flags = []cli.Flag{
		cli.IntFlag{
			Name:  "port",
			Value: 5000,
			Usage: "port the signaling gRPC service listens on",
		},
		cli.StringFlag{
			Name:  "ip",
			Value: "localhost",
			Usage: "interface the signaling gRPC service binds to",
		},
		cli.IntFlag{
			Name:  "metrics-port",
			Value: 0,
			Usage: "port to expose Prometheus /metrics on; 0 disables it",
		},
	}
	app.Action = runMain
	return app
}

func runMain(appCtx *cli.Context) error {
	srv := signaling.NewServer(signaling.ServerConfig{
		IP:          appCtx.String("ip"),
		Port:        appCtx.Int("port"),
		MetricsPort: appCtx.Int("metrics-port"),
		Logger:      logger,
	})

	if err := srv.Start(); err != nil {
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	s := <-sigCh
	logger.WithField("signal", s.String()).Info("shutting down due to signal")
	return srv.Close()
}
