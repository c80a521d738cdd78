package tomledit

import (
	"log/slog"

	"github.com/kevinwang15/tomledit/tomldoc"
)

// Strategies reported in debug logs.
const (
	strategyOverwrite = "overwrite"
	strategyRoot      = "root"
	strategyNested    = "nested"
	strategyDotted    = "dotted"
	strategyDelete    = "delete"
	strategyNoop      = "noop"
)

// A target holding a table is removed once; the second pass always finds
// the path empty.
const maxPasses = 2

type applier struct {
	doc    *tomldoc.Document
	indent string
	log    *slog.Logger
}

func newApplier(doc *tomldoc.Document, log *slog.Logger) *applier {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	a := &applier{doc: doc, log: log}
	if st, ok := lookup(doc); ok {
		a.indent = st.indent
	} else {
		a.indent = detectIndent(doc)
	}
	return a
}

func (a *applier) apply(in Instruction) {
	if len(in.Path) == 0 {
		return
	}
	var strategy string
	if in.IsDelete() {
		strategy = a.delete(in.Path)
	} else {
		strategy = a.set(in.Path, *in.Value)
	}
	a.log.Debug("applied instruction",
		"index", in.Index, "path", in.Path.String(), "op", in.op(), "strategy", strategy)
}

func (a *applier) set(path Path, v Scalar) string {
	for range maxPasses {
		switch cur := Resolve(a.doc, path).(type) {
		case *tomldoc.Value:
			a.overwrite(path, cur.Decor(), v)
			return strategyOverwrite
		case *tomldoc.Table:
			if cur.IsInline() {
				a.overwrite(path, cur.Decor(), v)
				return strategyOverwrite
			}
			a.detach(path)
		case *tomldoc.ArrayOfTables:
			a.detach(path)
		default:
			return a.insert(path, v)
		}
	}
	panic("tomledit: table at " + path.String() + " survived removal")
}

// overwrite replaces the item at path in place. The whitespace before the
// old value is kept; anything after it, such as a comment, is dropped.
func (a *applier) overwrite(path Path, old *tomldoc.Decor, v Scalar) {
	nv := v.Value()
	if p, ok := old.Prefix(); ok {
		nv.Decor().SetPrefix(p)
	}
	parent, _ := resolveTable(a.doc, path.Parent())
	parent.Insert(path.Last(), nv)
}

func (a *applier) detach(path Path) {
	if parent, ok := resolveTable(a.doc, path.Parent()); ok {
		parent.Remove(path.Last())
	}
}

// insert creates path, which holds nothing yet.
func (a *applier) insert(path Path, v Scalar) string {
	if len(path) == 1 {
		a.put(a.doc.Root(), path.Last(), v)
		return strategyRoot
	}
	parents := path.Parent()
	switch Resolve(a.doc, parents).(type) {
	case *tomldoc.Value, *tomldoc.Table:
		a.put(a.ensure(parents), path.Last(), v)
		return strategyNested
	}
	// The parent is missing or is an array of tables. If the grandparent
	// is a table that shows up in the output, write "parent.key = value"
	// into it instead of opening a new [header].
	if len(path) > 2 {
		if gp, ok := resolveTable(a.doc, parents.Parent()); ok && hosts(gp) {
			dt := tomldoc.NewTable()
			dt.SetImplicit(true)
			dt.SetDotted(true)
			dt.Insert(path.Last(), v.Value())
			if ind := a.indentFor(gp); ind != "" {
				dt.Key(path.Last()).LeafDecor().SetPrefix(ind)
			}
			gp.Insert(parents.Last(), dt)
			return strategyDotted
		}
	}
	a.put(a.ensure(parents), path.Last(), v)
	return strategyNested
}

// hosts reports whether key/value lines added to t are rendered where t
// itself is written.
func hosts(t *tomldoc.Table) bool {
	return !t.IsImplicit() || t.IsDotted() || t.IsInline()
}

// ensure walks parents from the root and returns the last table, creating
// implicit tables for missing segments and for segments holding anything
// but a table.
func (a *applier) ensure(parents Path) *tomldoc.Table {
	cur := a.doc.Root()
	for _, seg := range parents {
		next, ok := cur.Get(seg).(*tomldoc.Table)
		if !ok {
			next = tomldoc.NewTable()
			next.SetImplicit(true)
			cur.Insert(seg, next)
		}
		cur = next
	}
	return cur
}

func (a *applier) put(t *tomldoc.Table, key string, v Scalar) {
	nv := v.Value()
	if old, ok := t.Get(key).(*tomldoc.Value); ok {
		if p, ok := old.Decor().Prefix(); ok {
			nv.Decor().SetPrefix(p)
		}
	}
	isNew := !t.Contains(key)
	t.Insert(key, nv)
	if isNew {
		if ind := a.indentFor(t); ind != "" {
			t.Key(key).LeafDecor().SetPrefix(ind)
		}
	}
}

// indentFor returns the indentation of a new key/value line in t.
func (a *applier) indentFor(t *tomldoc.Table) string {
	if t == a.doc.Root() {
		return ""
	}
	if ind, ok := t.Indent(); ok {
		return ind
	}
	return a.indent
}

func (a *applier) delete(path Path) string {
	parent, ok := resolveTable(a.doc, path.Parent())
	if !ok || parent.Remove(path.Last()) == nil {
		return strategyNoop
	}
	return strategyDelete
}
