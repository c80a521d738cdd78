package tomledit

import (
	"fmt"

	gyaml "github.com/goccy/go-yaml"
)

// PlanYAML reads a change set written as a YAML mapping from dotted paths
// to values, for example
//
//	server.port: 8080
//	server.tls: null
//	log:
//	  level: debug
//
// Nested mappings extend the path of their key, null deletes. Instructions
// are numbered in document order and sorted like those of [Plan].
func PlanYAML(data []byte) ([]Instruction, error) {
	var ms gyaml.MapSlice
	if err := gyaml.UnmarshalWithOptions(data, &ms, gyaml.UseOrderedMap()); err != nil {
		return nil, fmt.Errorf("tomledit: failed to parse change set: %w", err)
	}
	var res []Instruction
	if err := flattenChanges(ms, nil, &res); err != nil {
		return nil, err
	}
	SortInstructions(res)
	return res, nil
}

func flattenChanges(ms gyaml.MapSlice, prefix Path, res *[]Instruction) error {
	for _, it := range ms {
		raw := keyString(it.Key)
		rel, err := ParsePath(raw)
		if err != nil {
			return &PathError{Index: len(*res), Path: raw}
		}
		path := append(append(Path(nil), prefix...), rel...)
		switch v := it.Value.(type) {
		case gyaml.MapSlice:
			if err := flattenChanges(v, path, res); err != nil {
				return err
			}
		case nil:
			*res = append(*res, Instruction{Index: len(*res), Path: path})
		default:
			s, err := ScalarOf(v)
			if err != nil {
				return fmt.Errorf("tomledit: change %s: %w", path, err)
			}
			*res = append(*res, Instruction{Index: len(*res), Path: path, Value: &s})
		}
	}
	return nil
}

func keyString(k any) string {
	switch vv := k.(type) {
	case string:
		return vv
	case fmt.Stringer:
		return vv.String()
	default:
		return fmt.Sprint(k)
	}
}

// PatchYAML applies a YAML change set to text.
func (p *Patcher) PatchYAML(text string, changes []byte) (string, error) {
	doc, err := p.parse(text)
	if err != nil {
		return "", err
	}
	ins, err := PlanYAML(changes)
	if err != nil {
		return "", err
	}
	p.ApplyAll(doc, ins)
	return doc.String(), nil
}
