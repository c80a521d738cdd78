package main

import (
	"fmt"
	"io"
	"os"
)

const stdinName = "-"

func readInput(file string) ([]byte, error) {
	if file == "" || file == stdinName {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(file)
}

// editFunc rewrites the text of one document.
type editFunc func(text string) (string, error)

// editFiles runs edit over every file, or over stdin when files is empty,
// and writes the result to w, back to the file, or as a diff.
func editFiles(cfg *MainConfig, ec EditConfig, w io.Writer, files []string, edit editFunc) error {
	if len(files) == 0 {
		files = []string{stdinName}
	}
	for _, file := range files {
		if err := editFile(cfg, ec, w, file, edit); err != nil {
			return fmt.Errorf("%s: %w", file, err)
		}
	}
	return nil
}

func editFile(cfg *MainConfig, ec EditConfig, w io.Writer, file string, edit editFunc) error {
	data, err := readInput(file)
	if err != nil {
		return err
	}
	before := string(data)
	after, err := edit(before)
	if err != nil {
		return err
	}
	switch {
	case ec.Diff:
		s, err := cfg.Settings()
		if err != nil {
			return err
		}
		writeDiff(w, file, before, after, s.Output.DiffContext, cfg.colored(w))
		return nil
	case ec.InPlace && file != stdinName:
		if after == before {
			return nil
		}
		fi, err := os.Stat(file)
		if err != nil {
			return err
		}
		return os.WriteFile(file, []byte(after), fi.Mode().Perm())
	default:
		_, err := io.WriteString(w, after)
		return err
	}
}
