package tomldoc

// Plain converts the document to nested Go values: map[string]any for
// tables, []any for arrays and arrays of tables, and the scalar types
// returned by [Value.Interface].
func (d *Document) Plain() map[string]any {
	return plainTable(d.root)
}

func plainTable(t *Table) map[string]any {
	res := make(map[string]any, len(t.entries))
	for _, e := range t.entries {
		res[e.key.name] = PlainItem(e.item)
	}
	return res
}

// PlainItem converts a single item like [Document.Plain] does.
func PlainItem(it Item) any {
	switch x := it.(type) {
	case *Value:
		return x.Interface()
	case *Table:
		return plainTable(x)
	case *ArrayOfTables:
		res := make([]any, 0, len(x.tables))
		for _, t := range x.tables {
			res = append(res, plainTable(t))
		}
		return res
	}
	return nil
}
