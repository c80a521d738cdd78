package tomledit

import (
	"runtime"
	"strings"
	"sync"

	"github.com/kevinwang15/tomledit/tomldoc"
)

type docState struct {
	mu     sync.RWMutex
	indent string // indentation of key/value lines under [headers]
}

var (
	regMu sync.Mutex
	reg   = map[*tomldoc.Document]*docState{}
)

func register(doc *tomldoc.Document, st *docState) {
	regMu.Lock()
	reg[doc] = st
	regMu.Unlock()

	runtime.SetFinalizer(doc, func(d *tomldoc.Document) {
		regMu.Lock()
		delete(reg, d)
		regMu.Unlock()
	})
}

func lookup(doc *tomldoc.Document) (*docState, bool) {
	regMu.Lock()
	st, ok := reg[doc]
	regMu.Unlock()
	return st, ok
}

// lockDoc takes the write lock of a document returned by Parse. Documents
// built elsewhere are not guarded.
func lockDoc(doc *tomldoc.Document) func() {
	st, ok := lookup(doc)
	if !ok {
		return func() {}
	}
	st.mu.Lock()
	return st.mu.Unlock
}

// Parse reads TOML data. The returned document may be edited with Set,
// Delete, EnsurePath and the JSON Patch helpers from several goroutines.
func Parse(data []byte) (*tomldoc.Document, error) {
	doc, err := tomldoc.Parse(data)
	if err != nil {
		return nil, parseErr(err)
	}
	register(doc, &docState{indent: detectIndent(doc)})
	return doc, nil
}

// Marshal encodes the document, reproducing the original text of every
// line that was not edited.
func Marshal(doc *tomldoc.Document) ([]byte, error) {
	st, ok := lookup(doc)
	if !ok {
		return doc.Bytes(), nil
	}
	st.mu.RLock()
	defer st.mu.RUnlock()
	return doc.Bytes(), nil
}

// EnsurePath returns the table at the nested keys, creating implicit tables
// when missing. Values in the way are replaced by tables; arrays of tables
// are entered through their last element.
func EnsurePath(doc *tomldoc.Document, first string, rest ...string) *tomldoc.Table {
	defer lockDoc(doc)()

	cur := doc.Root()
	for _, k := range append([]string{first}, rest...) {
		switch x := cur.Get(k).(type) {
		case *tomldoc.Table:
			cur = x
			continue
		case *tomldoc.ArrayOfTables:
			if x.Len() > 0 {
				cur = x.Tables()[x.Len()-1]
				continue
			}
		}
		t := tomldoc.NewTable()
		t.SetImplicit(true)
		cur.Insert(k, t)
		cur = t
	}
	return cur
}

// Set writes v at path the way a single patch instruction would.
func Set(doc *tomldoc.Document, path Path, v Scalar) {
	defer lockDoc(doc)()
	newApplier(doc, nil).apply(Instruction{Path: path, Value: &v})
}

// Delete removes path. Missing paths are ignored.
func Delete(doc *tomldoc.Document, path Path) {
	defer lockDoc(doc)()
	newApplier(doc, nil).apply(Instruction{Path: path})
}

// Apply applies one planned instruction.
func Apply(doc *tomldoc.Document, in Instruction) {
	defer lockDoc(doc)()
	newApplier(doc, nil).apply(in)
}

// Get returns the value at path as a plain Go value, or false when there is
// none.
func Get(doc *tomldoc.Document, path Path) (any, bool) {
	if st, ok := lookup(doc); ok {
		st.mu.RLock()
		defer st.mu.RUnlock()
	}
	it := Resolve(doc, path)
	if it == nil {
		return nil, false
	}
	return tomldoc.PlainItem(it), true
}

// detectIndent returns the indentation used for the key/value lines of the
// document's [header] tables: the most common one, or the greatest common
// number of spaces when every table is indented differently.
func detectIndent(doc *tomldoc.Document) string {
	var indents []string
	var walk func(t *tomldoc.Table, root bool)
	walk = func(t *tomldoc.Table, root bool) {
		if !root && !t.IsDotted() && !t.IsInline() {
			if ind, ok := t.Indent(); ok {
				indents = append(indents, ind)
			}
		}
		for _, it := range t.All() {
			switch x := it.(type) {
			case *tomldoc.Table:
				walk(x, false)
			case *tomldoc.ArrayOfTables:
				for _, at := range x.Tables() {
					walk(at, false)
				}
			}
		}
	}
	walk(doc.Root(), true)

	if len(indents) == 0 {
		return ""
	}
	counts := map[string]int{}
	best := indents[0]
	for _, ind := range indents {
		counts[ind]++
		if counts[ind] > counts[best] {
			best = ind
		}
	}
	if len(counts) == 1 || counts[""] > 0 {
		return best
	}

	// Every table is indented, by differing amounts: nested tables are
	// probably indented by depth.
	result := -1
	for _, ind := range indents {
		n := leadingSpaces(ind)
		if n != len(ind) {
			return best
		}
		if result < 0 {
			result = n
			continue
		}
		result = gcd(result, n)
	}
	if result > 0 && result <= 8 {
		return strings.Repeat(" ", result)
	}
	return best
}

func gcd(a, b int) int {
	if a < 0 {
		a = -a
	}
	if b < 0 {
		b = -b
	}
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func leadingSpaces(s string) int {
	i := 0
	for i < len(s) && s[i] == ' ' {
		i++
	}
	return i
}
