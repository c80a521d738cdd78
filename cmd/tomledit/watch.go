package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/scott-cotton/cli"

	"github.com/kevinwang15/tomledit"
)

func watch(cfg *WatchConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Watch.Parse(cc, args)
	if err != nil {
		return err
	}
	if len(args) != 2 {
		return usagef("watch needs <changes.yaml> and <file.toml>")
	}
	s, err := cfg.Settings()
	if err != nil {
		return err
	}
	log := newLogger(os.Stderr, s.LogLevel)
	p := tomledit.NewPatcher(tomledit.WithLogger(log), tomledit.Strict(s.Strict))

	ctx, cancel := signalContext()
	defer cancel()
	return watchChanges(ctx, p, log, args[0], args[1])
}

// watchChanges applies the change set in changesFile to target once and
// then again after every write to changesFile, until ctx is done. The
// directory is watched so that editors replacing the file are seen too.
func watchChanges(ctx context.Context, p *tomledit.Patcher, log *slog.Logger, changesFile, target string) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()
	if err := w.Add(filepath.Dir(changesFile)); err != nil {
		return err
	}
	if err := applyChanges(p, changesFile, target); err != nil {
		log.Error("apply failed", "changes", changesFile, "error", err)
	}
	want := filepath.Clean(changesFile)
	for {
		select {
		case <-ctx.Done():
			return nil
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watching %s: %w", changesFile, err)
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != want || ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if err := applyChanges(p, changesFile, target); err != nil {
				log.Error("apply failed", "changes", changesFile, "error", err)
				continue
			}
			log.Info("applied", "changes", changesFile, "target", target)
		}
	}
}

func applyChanges(p *tomledit.Patcher, changesFile, target string) error {
	changes, err := os.ReadFile(changesFile)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(target)
	if err != nil {
		return err
	}
	out, err := p.PatchYAML(string(data), changes)
	if err != nil {
		return err
	}
	if out == string(data) {
		return nil
	}
	fi, err := os.Stat(target)
	if err != nil {
		return err
	}
	return os.WriteFile(target, []byte(out), fi.Mode().Perm())
}
