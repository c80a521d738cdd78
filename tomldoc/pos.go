package tomldoc

import "sort"

// posDoc maps byte offsets of a source to line and column numbers.
type posDoc struct {
	d []byte
	n []int
}

func newPosDoc(d []byte) *posDoc {
	p := &posDoc{d: d}
	for i, c := range d {
		if c == '\n' {
			p.n = append(p.n, i)
		}
	}
	return p
}

// lineCol returns the 1-based line and column of offset off.
func (p *posDoc) lineCol(off int) (int, int) {
	N := len(p.n)
	di := sort.Search(N, func(i int) bool {
		return p.n[i] >= off
	})
	if di == 0 {
		return 1, off + 1
	}
	return di + 1, off - p.n[di-1]
}

func (p *posDoc) errAt(off int, err error, msg string) *ParseError {
	line, col := p.lineCol(off)
	return &ParseError{Line: line, Col: col, Msg: msg, Err: err}
}
