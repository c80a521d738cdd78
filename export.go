package tomledit

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kevinwang15/tomledit/tomldoc"
)

// ExportYAML renders the item at path as YAML, keeping key order. An empty
// path exports the whole document.
func ExportYAML(doc *tomldoc.Document, path Path) ([]byte, error) {
	it := Resolve(doc, path)
	if it == nil {
		return nil, ErrNotFound
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(yamlNode(it)); err != nil {
		_ = enc.Close()
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func yamlNode(it tomldoc.Item) *yaml.Node {
	switch x := it.(type) {
	case *tomldoc.Table:
		n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		if x.IsInline() {
			n.Style = yaml.FlowStyle
		}
		for k, v := range x.All() {
			n.Content = append(n.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k},
				yamlNode(v))
		}
		return n
	case *tomldoc.ArrayOfTables:
		n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, t := range x.Tables() {
			n.Content = append(n.Content, yamlNode(t))
		}
		return n
	case *tomldoc.Value:
		return yamlValue(x)
	}
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
}

func yamlValue(v *tomldoc.Value) *yaml.Node {
	switch v.Type() {
	case tomldoc.Bool:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(v.Bool())}
	case tomldoc.Integer:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.FormatInt(v.Int(), 10)}
	case tomldoc.Float:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: yamlFloat(v.Float())}
	case tomldoc.Array:
		n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq", Style: yaml.FlowStyle}
		for _, e := range v.Elems() {
			n.Content = append(n.Content, yamlNode(e))
		}
		return n
	}
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v.Str()}
}

func yamlFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return ".nan"
	case math.IsInf(f, 1):
		return ".inf"
	case math.IsInf(f, -1):
		return "-.inf"
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}

// ExportJSON renders the item at path as indented JSON. Infinities and NaN
// have no JSON spelling and are written as the strings "inf", "-inf" and
// "nan".
func ExportJSON(doc *tomldoc.Document, path Path) ([]byte, error) {
	it := Resolve(doc, path)
	if it == nil {
		return nil, ErrNotFound
	}
	return json.MarshalIndent(jsonSafe(tomldoc.PlainItem(it)), "", "  ")
}

func jsonSafe(v any) any {
	switch x := v.(type) {
	case map[string]any:
		for k, e := range x {
			x[k] = jsonSafe(e)
		}
		return x
	case []any:
		for i, e := range x {
			x[i] = jsonSafe(e)
		}
		return x
	case float64:
		switch {
		case math.IsNaN(x):
			return "nan"
		case math.IsInf(x, 1):
			return "inf"
		case math.IsInf(x, -1):
			return "-inf"
		}
	}
	return v
}
