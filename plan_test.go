package tomledit

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParsePath(t *testing.T) {
	p, err := ParsePath("a.b-c.d_e")
	if err != nil {
		t.Fatalf("ParsePath: %v", err)
	}
	if diff := cmp.Diff(Path{"a", "b-c", "d_e"}, p); diff != "" {
		t.Fatalf("path mismatch (-want +got):\n%s", diff)
	}
	if p.String() != "a.b-c.d_e" || p.Last() != "d_e" || p.Parent().String() != "a.b-c" {
		t.Fatalf("accessors: %q %q %q", p.String(), p.Last(), p.Parent().String())
	}
	for _, bad := range []string{"", ".", "a.", ".a", "a..b"} {
		if _, err := ParsePath(bad); !errors.Is(err, ErrMalformedPath) {
			t.Errorf("ParsePath(%q): want ErrMalformedPath, got %v", bad, err)
		}
	}
	if p, err := ParsePath("a b. c"); err != nil || len(p) != 2 || p[0] != "a b" || p[1] != " c" {
		t.Errorf("segments are not trimmed: %q, %v", p, err)
	}
}

func TestPlanOrdersDeepestFirst(t *testing.T) {
	ins, err := Plan("a,b.c.d,e.f,g.h.i,j", "1,2,3,4,5")
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	var got []int
	for _, in := range ins {
		got = append(got, in.Index)
	}
	if diff := cmp.Diff([]int{1, 3, 2, 0, 4}, got); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestPlanValues(t *testing.T) {
	ins, err := Plan("x,y", "$undefined, hi ")
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if !ins[0].IsDelete() || ins[0].op() != "delete" {
		t.Fatalf("first instruction should delete: %+v", ins[0])
	}
	if ins[1].IsDelete() || *ins[1].Value != String("hi") {
		t.Fatalf("second instruction: %+v", ins[1])
	}
}

func TestSortInstructionsEmpty(t *testing.T) {
	var ins []Instruction
	SortInstructions(ins)
	if len(ins) != 0 {
		t.Fatal("expected no instructions")
	}
}

func TestSortInstructionsSingle(t *testing.T) {
	v := Int(1)
	ins := []Instruction{{Index: 0, Path: Path{"a", "b"}, Value: &v}}
	SortInstructions(ins)
	if len(ins) != 1 || ins[0].Path.String() != "a.b" {
		t.Fatalf("unexpected result %+v", ins)
	}
}

func TestPlanCountMismatch(t *testing.T) {
	if _, err := Plan("a,b", "1"); !errors.Is(err, ErrCountMismatch) {
		t.Fatalf("want ErrCountMismatch, got %v", err)
	}
	// A mismatch is reported before any path is checked.
	if _, err := Plan("a..b,c", "1"); !errors.Is(err, ErrCountMismatch) {
		t.Fatalf("want ErrCountMismatch, got %v", err)
	}
}
