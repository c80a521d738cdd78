package tomldoc

import (
	"iter"
	"math"
	"slices"
	"strings"
)

// newSeq orders entries added after parsing behind every parsed entry.
const newSeq = math.MaxInt

type entry struct {
	key  *Key
	item Item
	seq  int
	// line holds the keys as written on a dotted key/value line.
	line []*Key
}

// Table is an ordered mapping of unique keys to items.
type Table struct {
	entries []*entry

	implicit bool
	dotted   bool
	inline   bool
	// nested marks tables below an inline table; they render inside its braces.
	nested bool

	position int
	decor    Decor
	header   string
	preamble string
}

func (*Table) Kind() Kind { return KindTable }
func (*Table) item() {}

// NewTable returns an empty table rendered with its own [header].
func NewTable() *Table {
	return &Table{position: -1}
}

// NewInlineTable returns an empty table rendered as { ... }.
func NewInlineTable() *Table {
	return &Table{position: -1, inline: true}
}

func (t *Table) IsImplicit() bool { return t.implicit }
func (t *Table) SetImplicit(v bool) { t.implicit = v }
func (t *Table) IsDotted() bool { return t.dotted }
func (t *Table) SetDotted(v bool) { t.dotted = v }
func (t *Table) IsInline() bool { return t.inline }
func (t *Table) Position() int { return t.position }
func (t *Table) Decor() *Decor { return &t.decor }
func (t *Table) Len() int { return len(t.entries) }

func (t *Table) find(key string) int {
	return slices.IndexFunc(t.entries, func(e *entry) bool {
		return e.key.name == key
	})
}

// Get returns the item stored under key, or nil.
func (t *Table) Get(key string) Item {
	if i := t.find(key); i >= 0 {
		return t.entries[i].item
	}
	return nil
}

func (t *Table) Contains(key string) bool {
	return t.find(key) >= 0
}

// Key returns the key object of an entry, which carries its decor.
func (t *Table) Key(key string) *Key {
	if i := t.find(key); i >= 0 {
		return t.entries[i].key
	}
	return nil
}

func (t *Table) Keys() []string {
	res := make([]string, 0, len(t.entries))
	for _, e := range t.entries {
		res = append(res, e.key.name)
	}
	return res
}

// All iterates over the entries in table order.
func (t *Table) All() iter.Seq2[string, Item] {
	return func(yield func(string, Item) bool) {
		for _, e := range t.entries {
			if !yield(e.key.name, e.item) {
				return
			}
		}
	}
}

// Insert stores it under key and returns the previous item. An existing
// entry keeps its key, its decor and its place; a new entry is appended.
func (t *Table) Insert(key string, it Item) Item {
	if i := t.find(key); i >= 0 {
		e := t.entries[i]
		old := e.item
		e.item = it
		t.adopt(it)
		return old
	}
	if t.inline {
		t.releaseTrailing()
	}
	t.insertEntry(NewKey(key), it, newSeq)
	return nil
}

// Remove deletes key and returns the removed item, or nil.
func (t *Table) Remove(key string) Item {
	i := t.find(key)
	if i < 0 {
		return nil
	}
	old := t.entries[i].item
	if t.inline {
		t.handOverTrailing(old)
	}
	t.entries = slices.Delete(t.entries, i, i+1)
	return old
}

// handOverTrailing passes the decor after the last entry of an inline table
// to the entry before it when the last one is about to be removed.
func (t *Table) handOverTrailing(last Item) {
	vals := t.values()
	n := len(vals)
	if n < 2 || vals[n-1].item != last {
		return
	}
	from, to := itemDecor(last), itemDecor(vals[n-2].item)
	if from == nil || to == nil {
		return
	}
	to.suffix = from.suffix
}

func (t *Table) insertEntry(k *Key, it Item, seq int) {
	t.adopt(it)
	t.entries = append(t.entries, &entry{key: k, item: it, seq: seq})
}

// adopt marks tables placed below an inline table so they render as dotted
// keys inside the braces.
func (t *Table) adopt(it Item) {
	if !t.inline && !t.nested {
		return
	}
	child, ok := it.(*Table)
	if !ok {
		return
	}
	child.markNested()
}

func (t *Table) markNested() {
	t.nested = true
	if !t.inline {
		t.dotted = true
	}
	for _, e := range t.entries {
		if child, ok := e.item.(*Table); ok {
			child.markNested()
		}
	}
}

// releaseTrailing drops the whitespace kept before the closing brace of an
// inline table so that a new last entry does not inherit it.
func (t *Table) releaseTrailing() {
	vals := t.values()
	if len(vals) == 0 {
		return
	}
	d := itemDecor(vals[len(vals)-1].item)
	if d == nil {
		return
	}
	if s, ok := d.Suffix(); ok && strings.TrimSpace(s) == "" {
		d.suffix = nil
	}
}

type keyValue struct {
	keys []*Key
	item Item
	seq  int
}

// values returns the key/value lines of t in source order, flattening
// dotted sub-tables into key paths.
func (t *Table) values() []keyValue {
	var res []keyValue
	t.appendValues(nil, &res)
	slices.SortStableFunc(res, func(a, b keyValue) int {
		switch {
		case a.seq < b.seq:
			return -1
		case a.seq > b.seq:
			return 1
		}
		return 0
	})
	return res
}

func (t *Table) appendValues(parent []*Key, res *[]keyValue) {
	for _, e := range t.entries {
		path := append(slices.Clip(parent), e.key)
		line := path
		if e.line != nil {
			line = e.line
		}
		switch it := e.item.(type) {
		case *Value:
			*res = append(*res, keyValue{keys: line, item: it, seq: e.seq})
		case *Table:
			switch {
			case it.inline:
				*res = append(*res, keyValue{keys: line, item: it, seq: e.seq})
			case it.dotted:
				it.appendValues(path, res)
			}
		}
	}
}

// HasValues reports whether the table holds key/value lines, directly or
// through dotted keys.
func (t *Table) HasValues() bool {
	return len(t.values()) > 0
}

func itemDecor(it Item) *Decor {
	switch x := it.(type) {
	case *Value:
		return &x.decor
	case *Table:
		return &x.decor
	}
	return nil
}

// Indent returns the whitespace in front of the first key/value line of the
// table and whether it is known. Entries of inline tables are never indented.
func (t *Table) Indent() (string, bool) {
	if t.inline || t.nested {
		return "", true
	}
	vals := t.values()
	if len(vals) == 0 {
		return "", false
	}
	p, _ := vals[0].keys[len(vals[0].keys)-1].leaf.Prefix()
	if i := strings.LastIndexByte(p, '\n'); i >= 0 {
		p = p[i+1:]
	}
	return p, true
}
