package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/scott-cotton/cli"
)

var errNotNormalized = errors.New("not normalized")

func normalize(cfg *NormalizeConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Normalize.Parse(cc, args)
	if err != nil {
		return err
	}
	p, err := cfg.patcher()
	if err != nil {
		return err
	}
	if !cfg.Check {
		return editFiles(cfg.MainConfig, EditConfig{}, cc.Out, args, p.Normalize)
	}
	if len(args) == 0 {
		args = []string{stdinName}
	}
	var changed int
	for _, file := range args {
		data, err := readInput(file)
		if err != nil {
			return err
		}
		out, err := p.Normalize(string(data))
		if err != nil {
			return fmt.Errorf("%s: %w", file, err)
		}
		if out != string(data) {
			fmt.Fprintln(cc.Out, file)
			changed++
		}
	}
	if changed > 0 {
		return fmt.Errorf("%d file(s) %w", changed, errNotNormalized)
	}
	return nil
}

func patch(cfg *PatchConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Patch.Parse(cc, args)
	if err != nil {
		return err
	}
	if len(args) < 2 {
		return usagef("patch needs <paths> and <values>")
	}
	p, err := cfg.patcher()
	if err != nil {
		return err
	}
	paths, values := args[0], args[1]
	return editFiles(cfg.MainConfig, cfg.EditConfig, cc.Out, args[2:], func(text string) (string, error) {
		return p.Patch(text, paths, values)
	})
}

func jsonPatch(cfg *JSONPatchConfig, cc *cli.Context, args []string) error {
	args, err := cfg.JSONPatch.Parse(cc, args)
	if err != nil {
		return err
	}
	if len(args) < 1 {
		return usagef("jsonpatch needs a patch file")
	}
	ops, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	p, err := cfg.patcher()
	if err != nil {
		return err
	}
	return editFiles(cfg.MainConfig, cfg.EditConfig, cc.Out, args[1:], func(text string) (string, error) {
		return p.PatchJSON(text, ops)
	})
}

func apply(cfg *ApplyConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Apply.Parse(cc, args)
	if err != nil {
		return err
	}
	if len(args) < 1 {
		return usagef("apply needs a change set file")
	}
	changes, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	p, err := cfg.patcher()
	if err != nil {
		return err
	}
	return editFiles(cfg.MainConfig, cfg.EditConfig, cc.Out, args[1:], func(text string) (string, error) {
		return p.PatchYAML(text, changes)
	})
}
