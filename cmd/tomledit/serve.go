package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/scott-cotton/cli"

	"github.com/kevinwang15/tomledit/server"
)

func serve(cfg *ServeConfig, cc *cli.Context, args []string) error {
	_, err := cfg.Serve.Parse(cc, args)
	if err != nil {
		return err
	}
	s, err := cfg.Settings()
	if err != nil {
		return err
	}
	if cfg.Addr != "" {
		s.Server.Addr = cfg.Addr
	}
	ctx, cancel := signalContext()
	defer cancel()

	srv := server.New(&server.Options{
		Config: s,
		Log: slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
			Level: s.LogLevel,
		})),
	})
	return srv.ListenAndServe(ctx)
}

// signalContext returns a context that is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()
	return ctx, cancel
}
