package app

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/JiscSD/rdss-datacite-transcoder/version"

	"github.com/oklog/run"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

func NewCmdServer(logger logrus.FieldLogger, config *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "server",
		Short: "Start the application server",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger.WithField("v", version.VERSION).Info("Starting server...")
			return doServer(logger, config)
		},
	}
}

func doServer(logger logrus.FieldLogger, config *Config) error {
	t, err := newTranscoder(logger, config)
	if err != nil {
		return err
	}

	var g run.Group
	{
		ln, err := net.Listen("tcp", config.Server.Addr)
		if err != nil {
			return err
		}
		logger.WithField("addr", ln.Addr().String()).Info("HTTP server listening")

		srv := &http.Server{
			Handler:           newRouter(logger.WithField("component", "api"), t, newMetrics()),
			ReadHeaderTimeout: 10 * time.Second,
		}
		g.Add(func() error {
			return srv.Serve(ln)
		}, func(error) {
			ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			srv.Shutdown(ctx)
		})
	}
	{
		cancel := make(chan struct{})

		g.Add(func() error {
			err := interrupt(cancel, func() {
				logger.WithFields(logrus.Fields{
					"schema_version":  config.Schema.DefaultVersion,
					"validation_mode": config.Schema.ValidationMode,
					"legacy":          t.legacy != nil,
				}).Info("Server status")
			})
			logger.Warn("Shutting down...")
			return err
		}, func(error) {
			close(cancel)
		})
	}

	return g.Run()
}
