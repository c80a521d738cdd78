package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/scott-cotton/cli"

	"github.com/kevinwang15/tomledit"
	"github.com/kevinwang15/tomledit/internal/config"
)

type MainConfig struct {
	ConfigFile string `cli:"name=config desc='configuration file (yaml)'"`
	Verbose    bool   `cli:"name=v desc='log every applied instruction'"`
	Color      bool   `cli:"name=color desc='color diff output'"`
	Lax        bool   `cli:"name=lax desc='skip the strict TOML validation pass'"`

	Out      string
	CloseOut func() error

	settings *config.Config

	Main *cli.Command
}

// Settings loads the configuration file once and applies the flags on top.
func (cfg *MainConfig) Settings() (*config.Config, error) {
	if cfg.settings != nil {
		return cfg.settings, nil
	}
	s, err := config.Load(cfg.ConfigFile)
	if err != nil {
		return nil, err
	}
	if cfg.Verbose {
		s.LogLevel = slog.LevelDebug
	}
	if cfg.Lax {
		s.Strict = false
	}
	if cfg.Color {
		s.Output.Color = "always"
	}
	cfg.settings = s
	return s, nil
}

func (cfg *MainConfig) patcher() (*tomledit.Patcher, error) {
	s, err := cfg.Settings()
	if err != nil {
		return nil, err
	}
	return tomledit.NewPatcher(
		tomledit.WithLogger(newLogger(os.Stderr, s.LogLevel)),
		tomledit.Strict(s.Strict),
	), nil
}

// colored reports whether diff output to w gets colors.
func (cfg *MainConfig) colored(w io.Writer) bool {
	s, err := cfg.Settings()
	if err != nil {
		return false
	}
	switch s.Output.Color {
	case "always":
		return true
	case "never":
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd())
}

func (cfg *MainConfig) outOpt(cc *cli.Context, a string) (any, error) {
	cfg.Out = a
	if a == "-" {
		return nil, nil
	}
	f, err := os.OpenFile(cfg.Out, os.O_CREATE|os.O_TRUNC|os.O_RDWR, 0644)
	if err != nil {
		return nil, err
	}
	cc.Out = f
	cfg.CloseOut = f.Close
	return nil, nil
}

// EditConfig holds the options shared by the commands that rewrite
// documents.
type EditConfig struct {
	InPlace bool `cli:"name=i desc='rewrite the files in place'"`
	Diff    bool `cli:"name=d desc='print a diff instead of the result'"`
}

type NormalizeConfig struct {
	*MainConfig
	Check bool `cli:"name=c aliases=check desc='only report whether the files change'"`

	Normalize *cli.Command
}

type PatchConfig struct {
	*MainConfig
	EditConfig

	Patch *cli.Command
}

type JSONPatchConfig struct {
	*MainConfig
	EditConfig

	JSONPatch *cli.Command
}

type ApplyConfig struct {
	*MainConfig
	EditConfig

	Apply *cli.Command
}

type GetConfig struct {
	*MainConfig
	Format string `cli:"name=f aliases=format desc='output format: toml, yaml or json'"`

	Get *cli.Command
}

type ChangesConfig struct {
	*MainConfig

	Changes *cli.Command
}

type DumpConfig struct {
	*MainConfig

	Dump *cli.Command
}

type ServeConfig struct {
	*MainConfig
	Addr string `cli:"name=addr desc='listen address (overrides the config file)'"`

	Serve *cli.Command
}

type WatchConfig struct {
	*MainConfig

	Watch *cli.Command
}

type InitConfig struct {
	*MainConfig
	Force bool `cli:"name=f desc='overwrite an existing file'"`

	Init *cli.Command
}

func usagef(format string, args ...any) error {
	return fmt.Errorf("%w: %s", cli.ErrUsage, fmt.Sprintf(format, args...))
}
