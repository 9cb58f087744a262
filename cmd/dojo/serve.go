package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/okian/dojo/internal/adapters/notify"
	"github.com/okian/dojo/pkg/logger"
	"github.com/okian/dojo/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 10 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE: func(cmd *cobra.Command, _ []string) error {
		// Root context with cancel on SIGINT/SIGTERM.
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		log := logger.Named("serve")

		addr := serveAddr
		if addr == "" {
			addr = cfg.Addr
		}

		store, err := openStore(ctx, cfg)
		if err != nil {
			return eris.Wrap(err, "open store")
		}
		defer func() {
			if err := store.Close(); err != nil {
				log.Error(ctx, "store close failed", logger.Error(err))
			}
		}()

		svc, bus := newService(cfg, store)
		defer func() {
			if err := svc.Close(); err != nil {
				log.Error(ctx, "service close failed", logger.Error(err))
			}
		}()

		srv := &http.Server{
			Addr:              addr,
			Handler:           newRouter(ctx, cfg, svc),
			ReadTimeout:       readTimeout,
			WriteTimeout:      writeTimeout,
			IdleTimeout:       idleTimeout,
			ReadHeaderTimeout: readHeaderTimeout,
		}

		g, gctx := errgroup.WithContext(ctx)

		g.Go(func() error {
			log.Info(gctx, "starting HTTP server", logger.String("addr", addr), logger.String("store", cfg.Store))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return eris.Wrap(err, "server listen")
			}
			return nil
		})

		g.Go(func() error {
			<-gctx.Done()
			log.Info(gctx, "shutting down server...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return eris.Wrap(err, "server shutdown")
			}
			return nil
		})

		g.Go(func() error { return metrics.RunSystemCollector(gctx) })

		if bus != nil {
			for _, topic := range []string{notify.TopicBoutsConfirmed, notify.TopicResultRecorded, notify.TopicCompetitorPromoted} {
				g.Go(func() error { return logEvents(gctx, bus, topic) })
			}
		}

		if err := g.Wait(); err != nil {
			return err
		}
		log.Info(ctx, "server stopped")
		return nil
	},
}

// logEvents writes every message on topic to the debug log until ctx ends.
func logEvents(ctx context.Context, bus *notify.Bus, topic string) error {
	msgs, err := bus.Subscribe(ctx, topic)
	if err != nil {
		return eris.Wrapf(err, "subscribe %s", topic)
	}
	log := logger.Named("events")
	for msg := range msgs {
		log.Debug(ctx, "domain event",
			logger.String("topic", topic),
			logger.String("uuid", msg.UUID),
			logger.String("payload", string(msg.Payload)),
		)
		msg.Ack()
	}
	return nil
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config)")
	rootCmd.AddCommand(serveCmd)
}
