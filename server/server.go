package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"

	"github.com/kevinwang15/tomledit"
	"github.com/kevinwang15/tomledit/internal/config"
)

// Server exposes normalize and patch over HTTP. Documents travel as plain
// TOML text; errors are returned as plain text.
type Server struct {
	Options Options

	patcher *tomledit.Patcher
}

// New creates a new Server instance.
func New(opts *Options) *Server {
	if opts.Config == nil {
		opts.Config = config.Default()
	}
	if opts.Log == nil {
		opts.Log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: opts.Config.LogLevel,
		}))
	}
	return &Server{
		Options: *opts,
		patcher: tomledit.NewPatcher(
			tomledit.WithLogger(opts.Log),
			tomledit.Strict(opts.Config.Strict),
		),
	}
}

// Routes configures the HTTP routes for the server
func (s *Server) Routes() http.Handler {
	router := mux.NewRouter()
	router.Use(s.logRequests, s.limitBody)
	router.HandleFunc("/normalize", s.handleNormalize).Methods(http.MethodPost)
	router.HandleFunc("/patch", s.handlePatch).Methods(http.MethodPost)
	router.HandleFunc("/jsonpatch", s.handleJSONPatch).Methods(http.MethodPost)
	router.HandleFunc("/changes", s.handleChanges).Methods(http.MethodPost)
	router.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}).Methods(http.MethodGet)
	return router
}

// Serve accepts connections on l until ctx is done.
func (s *Server) Serve(ctx context.Context, l net.Listener) error {
	srv := &http.Server{
		Handler:     s.Routes(),
		ReadTimeout: s.Options.Config.Server.ReadTimeout,
	}
	errc := make(chan error, 1)
	go func() {
		errc <- srv.Serve(l)
	}()
	s.Options.Log.Info("serving", "addr", l.Addr().String())

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// ListenAndServe listens on the configured address.
func (s *Server) ListenAndServe(ctx context.Context) error {
	l, err := net.Listen("tcp", s.Options.Config.Server.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, l)
}
