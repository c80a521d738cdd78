package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	diffpatch "github.com/sergi/go-diff/diffmatchpatch"
)

type diffLine struct {
	op   diffpatch.Operation
	text string
}

// lineDiff compares before and after line by line.
func lineDiff(before, after string) []diffLine {
	dmp := diffpatch.New()
	a, b, lines := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)
	var res []diffLine
	for _, d := range diffs {
		text := strings.TrimSuffix(d.Text, "\n")
		for _, l := range strings.Split(text, "\n") {
			res = append(res, diffLine{op: d.Type, text: l})
		}
	}
	return res
}

// writeDiff prints the changed lines of a document with up to context
// unchanged lines around each change. Nothing is written when the texts are
// equal.
func writeDiff(w io.Writer, name, before, after string, context int, colored bool) {
	if before == after {
		return
	}
	add := color.New(color.FgGreen)
	del := color.New(color.FgRed)
	hdr := color.New(color.FgCyan, color.Bold)
	for _, c := range []*color.Color{add, del, hdr} {
		if colored {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}

	lines := lineDiff(before, after)
	show := make([]bool, len(lines))
	for i, l := range lines {
		if l.op == diffpatch.DiffEqual {
			continue
		}
		for j := max(0, i-context); j <= min(len(lines)-1, i+context); j++ {
			show[j] = true
		}
	}

	hdr.Fprintf(w, "--- %s\n+++ %s\n", name, name)
	gap := false
	for i, l := range lines {
		if !show[i] {
			gap = true
			continue
		}
		if gap {
			hdr.Fprintln(w, "...")
			gap = false
		}
		switch l.op {
		case diffpatch.DiffInsert:
			add.Fprintf(w, "+%s\n", l.text)
		case diffpatch.DiffDelete:
			del.Fprintf(w, "-%s\n", l.text)
		default:
			fmt.Fprintf(w, " %s\n", l.text)
		}
	}
}
