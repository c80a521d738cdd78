package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/scott-cotton/cli"

	"github.com/kevinwang15/tomledit"
	"github.com/kevinwang15/tomledit/tomldoc"
)

func get(cfg *GetConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Get.Parse(cc, args)
	if err != nil {
		return err
	}
	if len(args) < 1 || len(args) > 2 {
		return usagef("get needs <path> and at most one file")
	}
	var path tomledit.Path
	if args[0] != "" && args[0] != "." {
		path, err = tomledit.ParsePath(args[0])
		if err != nil {
			return err
		}
	}
	file := stdinName
	if len(args) == 2 {
		file = args[1]
	}
	data, err := readInput(file)
	if err != nil {
		return err
	}
	doc, err := tomledit.Parse(data)
	if err != nil {
		return err
	}
	return writeItem(cc.Out, doc, path, cfg.Format)
}

func writeItem(w io.Writer, doc *tomldoc.Document, path tomledit.Path, format string) error {
	var (
		out []byte
		err error
	)
	switch format {
	case "yaml", "y":
		out, err = tomledit.ExportYAML(doc, path)
	case "json", "j":
		out, err = tomledit.ExportJSON(doc, path)
		out = append(out, '\n')
	case "toml", "t", "":
		out, err = tomlItem(doc, path)
	default:
		return usagef("unknown format %q", format)
	}
	if err != nil {
		return err
	}
	_, err = w.Write(out)
	return err
}

func tomlItem(doc *tomldoc.Document, path tomledit.Path) ([]byte, error) {
	if len(path) == 0 {
		return doc.Bytes(), nil
	}
	switch it := tomledit.Resolve(doc, path).(type) {
	case nil:
		return nil, fmt.Errorf("%s: %w", path, tomledit.ErrNotFound)
	case *tomldoc.Value:
		return []byte(it.Repr() + "\n"), nil
	default:
		return nil, errors.New(path.String() + " is a " + it.Kind().String() + "; use -f yaml or -f json")
	}
}
