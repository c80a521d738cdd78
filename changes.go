package tomledit

import (
	"encoding/json"

	"github.com/wI2L/jsondiff"

	"github.com/kevinwang15/tomledit/tomldoc"
)

// Changes compares two documents by content and returns the RFC 6902
// operations that turn before into after. Formatting and comments are
// ignored.
func Changes(before, after string) (jsondiff.Patch, error) {
	a, err := plainJSON(before)
	if err != nil {
		return nil, err
	}
	b, err := plainJSON(after)
	if err != nil {
		return nil, err
	}
	return jsondiff.CompareJSON(a, b)
}

func plainJSON(text string) ([]byte, error) {
	doc, err := tomldoc.Parse([]byte(text))
	if err != nil {
		return nil, parseErr(err)
	}
	return json.Marshal(jsonSafe(doc.Plain()))
}
