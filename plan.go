package tomledit

import (
	"cmp"
	"slices"
	"strings"
)

// Instruction is one planned update. A nil Value deletes the path.
type Instruction struct {
	Index int
	Path  Path
	Value *Scalar
}

func (in Instruction) IsDelete() bool { return in.Value == nil }

func (in Instruction) op() string {
	if in.IsDelete() {
		return "delete"
	}
	return "set"
}

// Plan pairs the comma separated paths with the comma separated values and
// returns the instructions in the order they must be applied. Nothing is
// returned unless every path is well formed.
func Plan(paths, values string) ([]Instruction, error) {
	ps, vs := splitList(paths), splitList(values)
	if len(ps) != len(vs) {
		return nil, ErrCountMismatch
	}
	res := make([]Instruction, 0, len(ps))
	for i, raw := range ps {
		p, err := ParsePath(raw)
		if err != nil {
			return nil, &PathError{Index: i, Path: raw}
		}
		in := Instruction{Index: i, Path: p}
		if v, ok := ParseValue(vs[i]); ok {
			in.Value = &v
		}
		res = append(res, in)
	}
	SortInstructions(res)
	return res, nil
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}

// SortInstructions orders instructions deepest path first. Instructions of
// equal depth keep their input order.
func SortInstructions(ins []Instruction) {
	slices.SortStableFunc(ins, func(a, b Instruction) int {
		if c := cmp.Compare(len(b.Path), len(a.Path)); c != 0 {
			return c
		}
		return cmp.Compare(a.Index, b.Index)
	})
}
