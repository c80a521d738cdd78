package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/scott-cotton/cli"
	"github.com/wI2L/jsondiff"

	"github.com/kevinwang15/tomledit"
	"github.com/kevinwang15/tomledit/internal/config"
	"github.com/kevinwang15/tomledit/tomldoc"
)

func changes(cfg *ChangesConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Changes.Parse(cc, args)
	if err != nil {
		return err
	}
	if len(args) != 2 {
		return usagef("changes needs exactly two files")
	}
	before, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	after, err := os.ReadFile(args[1])
	if err != nil {
		return err
	}
	ops, err := tomledit.Changes(string(before), string(after))
	if err != nil {
		return err
	}
	if ops == nil {
		ops = jsondiff.Patch{}
	}
	out, err := json.MarshalIndent(ops, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cc.Out, string(out))
	return err
}

func dump(cfg *DumpConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Dump.Parse(cc, args)
	if err != nil {
		return err
	}
	if len(args) > 1 {
		return usagef("dump takes at most one file")
	}
	file := stdinName
	if len(args) == 1 {
		file = args[0]
	}
	data, err := readInput(file)
	if err != nil {
		return err
	}
	s, err := cfg.Settings()
	if err != nil {
		return err
	}
	doc, err := tomldoc.Parse(data, tomldoc.Strict(s.Strict))
	if err != nil {
		return err
	}
	return tomldoc.Dump(cc.Out, doc)
}

func initConfig(cfg *InitConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Init.Parse(cc, args)
	if err != nil {
		return err
	}
	if len(args) != 1 {
		return usagef("init needs a file name")
	}
	if _, err := os.Stat(args[0]); err == nil && !cfg.Force {
		return fmt.Errorf("%s already exists; use -f to overwrite", args[0])
	}
	return config.SaveDefault(args[0])
}
