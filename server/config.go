package server

import (
	"log/slog"

	"github.com/kevinwang15/tomledit/internal/config"
)

// Options configures a Server.
type Options struct {
	Config *config.Config
	Log    *slog.Logger
}
