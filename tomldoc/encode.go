package tomldoc

import (
	"bytes"
	"io"
	"slices"
	"strings"
)

const (
	defaultHeaderPrefix = "\n"
	defaultKeySuffix    = " "
	defaultValuePrefix  = " "
	defaultInlineKey    = " "
)

// Document is a parsed TOML document.
type Document struct {
	root *Table
	// bom is the byte order mark the source started with, if any.
	bom string
	// trailing holds the whitespace and comments after the last line.
	trailing string
}

// New returns an empty document.
func New() *Document {
	return &Document{root: &Table{position: 0}}
}

// Root returns the top-level table.
func (d *Document) Root() *Table { return d.root }

func (d *Document) String() string {
	var sb strings.Builder
	d.encode(&sb)
	return sb.String()
}

func (d *Document) Bytes() []byte {
	var buf bytes.Buffer
	d.encode(&buf)
	return buf.Bytes()
}

func (d *Document) WriteTo(w io.Writer) (int64, error) {
	var buf bytes.Buffer
	d.encode(&buf)
	return buf.WriteTo(w)
}

type writer interface {
	io.Writer
	io.StringWriter
	io.ByteWriter
}

type tableRef struct {
	pos   int
	table *Table
	path  []*Key
	aot   bool
}

// tables lists the tables that own a header, root first, ordered by their
// position in the source. Tables without a position follow the table
// visited before them.
func (d *Document) tables() []tableRef {
	var (
		res  []tableRef
		last int
	)
	var visit func(t *Table, path []*Key, aot bool)
	visit = func(t *Table, path []*Key, aot bool) {
		if !t.dotted {
			if t.position >= 0 {
				last = t.position
			}
			res = append(res, tableRef{pos: last, table: t, path: path, aot: aot})
		}
		for _, e := range t.entries {
			p := append(slices.Clip(path), e.key)
			switch it := e.item.(type) {
			case *Table:
				if !it.inline {
					visit(it, p, false)
				}
			case *ArrayOfTables:
				for _, at := range it.tables {
					visit(at, p, true)
				}
			}
		}
	}
	visit(d.root, nil, false)
	slices.SortStableFunc(res, func(a, b tableRef) int { return a.pos - b.pos })
	return res
}

func (d *Document) encode(w writer) {
	w.WriteString(d.bom)
	first := true
	for _, ref := range d.tables() {
		t := ref.table
		vals := t.values()
		switch {
		case len(ref.path) == 0:
			if len(vals) > 0 {
				first = false
			}
		case ref.aot:
			encodeHeader(w, t, ref.path, "[[", "]]", first)
			first = false
		case !t.implicit || len(vals) > 0:
			encodeHeader(w, t, ref.path, "[", "]", first)
			first = false
		}
		for _, kv := range vals {
			encodeKeyPath(w, kv.keys, "", defaultKeySuffix)
			w.WriteByte('=')
			encodeValueItem(w, kv.item, defaultValuePrefix, "")
			w.WriteByte('\n')
		}
	}
	w.WriteString(d.trailing)
}

func encodeHeader(w writer, t *Table, path []*Key, lb, rb string, first bool) {
	def := defaultHeaderPrefix
	if first {
		def = ""
	}
	w.WriteString(t.decor.prefixOr(def))
	w.WriteString(lb)
	if t.header != "" {
		w.WriteString(t.header)
	} else {
		for i, k := range path {
			if i > 0 {
				w.WriteByte('.')
			}
			w.WriteString(k.Repr())
		}
	}
	w.WriteString(rb)
	w.WriteString(t.decor.suffixOr(""))
	w.WriteByte('\n')
}

// encodeKeyPath writes the keys of one key/value line. The decor around the
// whole path lives on the last key.
func encodeKeyPath(w writer, keys []*Key, defPrefix, defSuffix string) {
	leaf := &keys[len(keys)-1].leaf
	for i, k := range keys {
		if i == 0 {
			w.WriteString(leaf.prefixOr(defPrefix))
		} else {
			w.WriteByte('.')
			w.WriteString(k.dotted.prefixOr(""))
		}
		w.WriteString(k.Repr())
		if i == len(keys)-1 {
			w.WriteString(leaf.suffixOr(defSuffix))
		} else {
			w.WriteString(k.dotted.suffixOr(""))
		}
	}
}

func encodeValueItem(w writer, it Item, defPrefix, defSuffix string) {
	switch x := it.(type) {
	case *Value:
		w.WriteString(x.decor.prefixOr(defPrefix))
		w.WriteString(x.Repr())
		w.WriteString(x.decor.suffixOr(defSuffix))
	case *Table:
		w.WriteString(x.decor.prefixOr(defPrefix))
		encodeInline(w, x)
		w.WriteString(x.decor.suffixOr(defSuffix))
	}
}

func encodeInline(w writer, t *Table) {
	w.WriteByte('{')
	w.WriteString(t.preamble)
	vals := t.values()
	for i, kv := range vals {
		if i > 0 {
			w.WriteByte(',')
		}
		suffix := ""
		if i == len(vals)-1 {
			suffix = " "
		}
		encodeKeyPath(w, kv.keys, defaultInlineKey, defaultInlineKey)
		w.WriteByte('=')
		encodeValueItem(w, kv.item, defaultValuePrefix, suffix)
	}
	w.WriteByte('}')
}
