package tomldoc

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/pelletier/go-toml/v2/unstable"
)

type ParseOption func(*parseOpts)

type parseOpts struct {
	strict bool
}

// Strict enables the semantic validation pass run after the structural
// parse. It is on by default.
func Strict(v bool) ParseOption {
	return func(o *parseOpts) { o.strict = v }
}

const byteOrderMark = "\ufeff"

// Parse reads a TOML document. The returned document renders back to src
// byte for byte, except for line endings after key/value lines and headers,
// which are written as "\n".
func Parse(src []byte, opts ...ParseOption) (*Document, error) {
	o := &parseOpts{strict: true}
	for _, opt := range opts {
		opt(o)
	}
	var bom string
	if bytes.HasPrefix(src, []byte(byteOrderMark)) {
		bom, src = byteOrderMark, src[len(byteOrderMark):]
	}
	p := &parser{src: src, pd: newPosDoc(src)}
	doc, err := p.parse()
	if err != nil {
		return nil, err
	}
	doc.bom = bom
	if o.strict {
		if err := validate(src); err != nil {
			return nil, err
		}
	}
	return doc, nil
}

// parser builds the document tree from the expressions of an
// unstable.Parser. The scanner decodes keys and strings and reports syntax
// errors; the parser recovers the text between nodes as decor.
type parser struct {
	src []byte
	up  unstable.Parser
	pd  *posDoc

	// i is the offset just past the last expression and its newline.
	i int

	root *Table
	cur  *Table

	seq      int
	position int
}

func (p *parser) nextSeq() int {
	p.seq++
	return p.seq
}

// offset returns the position of b, which must be a slice of the source.
func (p *parser) offset(b []byte) int {
	if b == nil {
		return len(p.src)
	}
	return cap(p.src) - cap(b)
}

func end(r unstable.Range) int { return int(r.Offset + r.Length) }

func (p *parser) text(from, to int) string { return string(p.src[from:to]) }

func (p *parser) skipWS(i int) int {
	for i < len(p.src) && (p.src[i] == ' ' || p.src[i] == '\t') {
		i++
	}
	return i
}

// skipArrayTrivia skips whitespace, newlines, comments and commas between
// array elements.
func (p *parser) skipArrayTrivia(i int) int {
	for i < len(p.src) {
		switch p.src[i] {
		case ' ', '\t', '\r', '\n', ',':
			i++
		case '#':
			for i < len(p.src) && p.src[i] != '\n' {
				i++
			}
		default:
			return i
		}
	}
	return i
}

func (p *parser) syntaxErr(err error) error {
	var pe *unstable.ParserError
	if errors.As(err, &pe) {
		return p.pd.errAt(p.offset(pe.Highlight), ErrSyntax, pe.Message)
	}
	return p.pd.errAt(len(p.src), ErrSyntax, err.Error())
}

func (p *parser) parse() (*Document, error) {
	p.root = NewTable()
	p.root.position = 0
	p.cur = p.root
	p.up.KeepComments = true
	p.up.Reset(p.src)
	for p.up.NextExpression() {
		e := p.up.Expression()
		var err error
		switch e.Kind {
		case unstable.Table, unstable.ArrayTable:
			err = p.header(e)
		case unstable.KeyValue:
			err = p.keyValue(e)
		}
		if err != nil {
			return nil, err
		}
	}
	if err := p.up.Error(); err != nil {
		return nil, p.syntaxErr(err)
	}
	return &Document{root: p.root, trailing: p.text(p.i, len(p.src))}, nil
}

// lineEnd returns the whitespace and comment after an expression ending at
// off, and moves the cursor past the newline of that line.
func (p *parser) lineEnd(e *unstable.Node, off int) string {
	stop := p.skipWS(off)
	if c := e.Next(); c != nil && c.Kind == unstable.Comment {
		stop = end(c.Raw)
		if p.src[stop-1] == '\r' {
			stop--
		}
	}
	p.i = stop
	switch {
	case bytes.HasPrefix(p.src[stop:], []byte("\r\n")):
		p.i += 2
	case bytes.HasPrefix(p.src[stop:], []byte("\n")):
		p.i++
	}
	return p.text(off, stop)
}

// keys converts the key segments of an expression. The whitespace around
// dots goes to the segments' dotted decor and the whitespace after the last
// segment to its leaf suffix. It returns the offsets of the first segment
// and just past the last one.
func (p *parser) keys(it unstable.Iterator) ([]*Key, int, int) {
	var (
		keys       []*Key
		start, pos int
	)
	for it.Next() {
		n := it.Node()
		k := &Key{name: string(n.Data), repr: p.text(int(n.Raw.Offset), end(n.Raw))}
		if len(keys) == 0 {
			start = int(n.Raw.Offset)
		} else {
			gap := p.src[pos:n.Raw.Offset]
			dot := bytes.IndexByte(gap, '.')
			keys[len(keys)-1].dotted.SetSuffix(string(gap[:dot]))
			k.dotted.SetPrefix(string(gap[dot+1:]))
		}
		keys = append(keys, k)
		pos = end(n.Raw)
	}
	keys[len(keys)-1].leaf.SetSuffix(p.text(pos, p.skipWS(pos)))
	return keys, start, pos
}

func (p *parser) header(e *unstable.Node) error {
	aot := e.Kind == unstable.ArrayTable
	open := "["
	if aot {
		open = "[["
	}
	keys, keyStart, keyEnd := p.keys(e.Key())
	start := p.i + bytes.LastIndex(p.src[p.i:keyStart], []byte(open))
	closing := p.skipWS(keyEnd)

	p.position++
	t := NewTable()
	t.position = p.position
	t.header = p.text(start+len(open), closing)
	t.decor.SetPrefix(p.text(p.i, start))
	t.decor.SetSuffix(p.lineEnd(e, closing+len(open)))

	parent, err := p.descend(keys[:len(keys)-1], start)
	if err != nil {
		return err
	}
	last := keys[len(keys)-1]
	switch ex := parent.Get(last.name).(type) {
	case nil:
		if aot {
			a := NewArrayOfTables()
			a.Append(t)
			parent.insertEntry(last, a, p.nextSeq())
		} else {
			parent.insertEntry(last, t, p.nextSeq())
		}
	case *ArrayOfTables:
		if !aot {
			return p.pd.errAt(start, ErrDuplicateTable, fmt.Sprintf("%q is already an array of tables", t.header))
		}
		ex.Append(t)
	case *Table:
		if aot || !ex.implicit || ex.dotted || ex.inline {
			return p.pd.errAt(start, ErrDuplicateTable, fmt.Sprintf("table %q is already defined", t.header))
		}
		ex.implicit = false
		ex.position = t.position
		ex.header = t.header
		ex.decor = t.decor
		t = ex
	default:
		return p.pd.errAt(start, ErrDuplicateKey, fmt.Sprintf("key %q is already a value", last.name))
	}
	p.cur = t
	return nil
}

// descend walks a header's parent keys from the root, creating implicit
// tables along the way. Arrays of tables are entered through their last
// element.
func (p *parser) descend(keys []*Key, at int) (*Table, error) {
	t := p.root
	for _, k := range keys {
		switch ex := t.Get(k.name).(type) {
		case nil:
			nt := NewTable()
			nt.implicit = true
			t.insertEntry(k, nt, p.nextSeq())
			t = nt
		case *Table:
			if ex.inline {
				return nil, p.pd.errAt(at, ErrDuplicateKey, fmt.Sprintf("inline table %q cannot be extended", k.name))
			}
			t = ex
		case *ArrayOfTables:
			t = ex.tables[len(ex.tables)-1]
		default:
			return nil, p.pd.errAt(at, ErrDuplicateKey, fmt.Sprintf("key %q is already a value", k.name))
		}
	}
	return t, nil
}

func (p *parser) keyValue(e *unstable.Node) error {
	keys, start, keyEnd := p.keys(e.Key())
	keys[len(keys)-1].leaf.SetPrefix(p.text(p.i, start))
	eq := p.skipWS(keyEnd)
	vstart := p.skipWS(eq + 1)
	val, vend, err := p.value(e.Value(), vstart)
	if err != nil {
		return err
	}
	d := itemDecor(val)
	d.SetPrefix(p.text(eq+1, vstart))
	d.SetSuffix(p.lineEnd(e, vend))
	return p.insertDotted(p.cur, keys, val, start)
}

// insertDotted stores val under a possibly dotted key, creating dotted
// tables for the leading segments.
func (p *parser) insertDotted(t *Table, keys []*Key, val Item, at int) error {
	for _, k := range keys[:len(keys)-1] {
		switch ex := t.Get(k.name).(type) {
		case nil:
			nt := NewTable()
			nt.implicit = true
			nt.dotted = true
			t.insertEntry(k, nt, p.nextSeq())
			t = nt
		case *Table:
			if ex.inline || !ex.implicit {
				return p.pd.errAt(at, ErrDuplicateKey, fmt.Sprintf("table %q cannot be extended with dotted keys", k.name))
			}
			t = ex
		default:
			return p.pd.errAt(at, ErrDuplicateKey, fmt.Sprintf("key %q is already defined", k.name))
		}
	}
	leaf := keys[len(keys)-1]
	if t.Contains(leaf.name) {
		return p.pd.errAt(at, ErrDuplicateKey, fmt.Sprintf("duplicate key %q", leaf.name))
	}
	t.insertEntry(leaf, val, p.nextSeq())
	if len(keys) > 1 {
		t.entries[len(t.entries)-1].line = keys
	}
	return nil
}

// value converts a value node starting at start. It returns the item and
// the offset just past it.
func (p *parser) value(n *unstable.Node, start int) (Item, int, error) {
	switch n.Kind {
	case unstable.String:
		return &Value{typ: String, s: string(n.Data), repr: p.text(int(n.Raw.Offset), end(n.Raw))}, end(n.Raw), nil
	case unstable.Bool:
		return &Value{typ: Bool, b: string(n.Data) == "true", repr: string(n.Data)}, p.offset(n.Data) + len(n.Data), nil
	case unstable.Integer, unstable.Float:
		lit := p.src[n.Raw.Offset:end(n.Raw)]
		x, err := number(lit)
		if err != nil {
			msg := strings.TrimPrefix(err.Error(), "toml: ")
			return nil, 0, p.pd.errAt(start, ErrBadValue, fmt.Sprintf("invalid number %q: %s", lit, msg))
		}
		v := &Value{repr: string(lit)}
		switch x := x.(type) {
		case int64:
			v.typ, v.i = Integer, x
		case float64:
			v.typ, v.f = Float, x
		default:
			return nil, 0, p.pd.errAt(start, ErrBadValue, fmt.Sprintf("invalid number %q", lit))
		}
		return v, end(n.Raw), nil
	case unstable.LocalDate, unstable.LocalTime, unstable.LocalDateTime, unstable.DateTime:
		return &Value{typ: Datetime, s: string(n.Data), repr: string(n.Data)}, p.offset(n.Data) + len(n.Data), nil
	case unstable.Array:
		return p.array(n, start)
	case unstable.InlineTable:
		return p.inlineTable(n)
	}
	return nil, 0, p.pd.errAt(start, ErrBadValue, fmt.Sprintf("unexpected %s", n.Kind))
}

// number decodes an integer or float literal.
func number(lit []byte) (any, error) {
	var v struct {
		N any `toml:"n"`
	}
	if err := toml.Unmarshal(append([]byte("n = "), lit...), &v); err != nil {
		return nil, err
	}
	return v.N, nil
}

func (p *parser) array(n *unstable.Node, start int) (Item, int, error) {
	var elems []Item
	i := start + 1
	it := n.Children()
	for it.Next() {
		c := it.Node()
		if c.Kind == unstable.Comment {
			continue
		}
		i = p.skipArrayTrivia(i)
		el, next, err := p.value(c, i)
		if err != nil {
			return nil, 0, err
		}
		elems = append(elems, el)
		i = next
	}
	i = p.skipArrayTrivia(i) + 1
	return &Value{typ: Array, elems: elems, repr: p.text(start, i)}, i, nil
}

func (p *parser) inlineTable(n *unstable.Node) (Item, int, error) {
	t := NewInlineTable()
	i := int(n.Raw.Offset) + 1
	empty := true
	it := n.Children()
	for it.Next() {
		kv := it.Node()
		keys, start, keyEnd := p.keys(kv.Key())
		keys[len(keys)-1].leaf.SetPrefix(p.text(i, start))
		eq := p.skipWS(keyEnd)
		vstart := p.skipWS(eq + 1)
		val, vend, err := p.value(kv.Value(), vstart)
		if err != nil {
			return nil, 0, err
		}
		after := p.skipWS(vend)
		d := itemDecor(val)
		d.SetPrefix(p.text(eq+1, vstart))
		d.SetSuffix(p.text(vend, after))
		if err := p.insertDotted(t, keys, val, start); err != nil {
			return nil, 0, err
		}
		// past the ',' or the closing '}'
		i = after + 1
		empty = false
	}
	if empty {
		closing := p.skipWS(i)
		t.preamble = p.text(i, closing)
		i = closing + 1
	}
	return t, i, nil
}
