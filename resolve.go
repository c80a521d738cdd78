package tomledit

import "github.com/kevinwang15/tomledit/tomldoc"

// Resolve returns the item at path, or nil when some segment is missing or
// crosses something that is not a table. The empty path is the root table.
// Inline tables are tables here; arrays of tables are not entered.
func Resolve(doc *tomldoc.Document, path Path) tomldoc.Item {
	var cur tomldoc.Item = doc.Root()
	for _, seg := range path {
		t, ok := cur.(*tomldoc.Table)
		if !ok {
			return nil
		}
		if cur = t.Get(seg); cur == nil {
			return nil
		}
	}
	return cur
}

func resolveTable(doc *tomldoc.Document, path Path) (*tomldoc.Table, bool) {
	t, ok := Resolve(doc, path).(*tomldoc.Table)
	return t, ok
}
