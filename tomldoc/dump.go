package tomldoc

import (
	"fmt"
	"io"
	"strings"
)

// Dump writes an indented outline of the document tree to w, one node per
// line, with the rendering flags of every table. It is meant for debugging.
func Dump(w io.Writer, d *Document) error {
	return dumpTable(w, "(root)", d.root, 0)
}

func dumpTable(w io.Writer, name string, t *Table, depth int) error {
	var flags []string
	if t.implicit {
		flags = append(flags, "implicit")
	}
	if t.dotted {
		flags = append(flags, "dotted")
	}
	if t.inline {
		flags = append(flags, "inline")
	}
	if _, err := fmt.Fprintf(w, "%s%s: table pos=%d [%s]\n", strings.Repeat("  ", depth), name, t.position, strings.Join(flags, ",")); err != nil {
		return err
	}
	for _, e := range t.entries {
		if err := dumpItem(w, e.key.name, e.item, depth+1); err != nil {
			return err
		}
	}
	return nil
}

func dumpItem(w io.Writer, name string, it Item, depth int) error {
	switch x := it.(type) {
	case *Value:
		_, err := fmt.Fprintf(w, "%s%s: %s %s\n", strings.Repeat("  ", depth), name, x.typ, x.Repr())
		return err
	case *Table:
		return dumpTable(w, name, x, depth)
	case *ArrayOfTables:
		if _, err := fmt.Fprintf(w, "%s%s: array-of-tables len=%d\n", strings.Repeat("  ", depth), name, len(x.tables)); err != nil {
			return err
		}
		for i, t := range x.tables {
			if err := dumpTable(w, fmt.Sprintf("[%d]", i), t, depth+1); err != nil {
				return err
			}
		}
	}
	return nil
}
