package value

import (
	"testing"
	"time"
)

func TestEqual(t *testing.T) {
	shared := map[string]any{"a": 1}
	tests := []struct {
		name string
		a, b any
		want bool
	}{
		{"nil", nil, nil, true},
		{"nil vs value", nil, 0, false},
		{"ints", 1, 1, true},
		{"int vs float", 1, 1.0, false},
		{"strings", "x", "x", true},
		{"sequence of record", []any{1, map[string]any{"a": 1}}, []any{1, map[string]any{"a": 1}}, true},
		{"sequence length", []any{1}, []any{1, 2}, false},
		{"sequence element", []any{1, 2}, []any{1, 3}, false},
		{"same record", shared, shared, true},
		{"records", map[string]any{"a": 1, "b": "x"}, map[string]any{"b": "x", "a": 1}, true},
		{"explicit nil key", map[string]any{"a": 1}, map[string]any{"a": 1, "b": nil}, false},
		{"nil key both sides", map[string]any{"b": nil}, map[string]any{"b": nil}, true},
		{"record vs sequence", map[string]any{}, []any{}, false},
		{"dates", time.Unix(0, 0), time.Unix(0, 0), true},
		{"dates in other zones", time.Unix(0, 0).UTC(), time.Unix(0, 0).In(time.FixedZone("x", 3600)), true},
		{"different dates", time.Unix(0, 0), time.Unix(1, 0), false},
		{"typed style maps", map[string]string{"width": "1px"}, map[string]string{"width": "1px"}, true},
		{"typed style maps differ", map[string]string{"width": "1px"}, map[string]string{"width": "2px"}, false},
		{"string slices", []string{"a", "b"}, []string{"a", "b"}, true},
		{"nested typed in any", []any{[]string{"a"}}, []any{[]string{"a"}}, true},
		{"uncomparable funcs", func() {}, func() {}, false},
	}
	for _, tt := range tests {
		if got := Equal(tt.a, tt.b); got != tt.want {
			t.Errorf("%s: Equal(%v, %v) = %v, want %v", tt.name, tt.a, tt.b, got, tt.want)
		}
	}
}

func TestEqualPointers(t *testing.T) {
	type opt struct{ X int }
	if !Equal(&opt{1}, &opt{1}) {
		t.Error("pointers to equal structs should be equal")
	}
	if Equal(&opt{1}, &opt{2}) {
		t.Error("pointers to different structs should differ")
	}
	var p *opt
	if !Equal(p, (*opt)(nil)) {
		t.Error("typed nil pointers should be equal")
	}
}

func TestSame(t *testing.T) {
	m := map[string]any{"a": 1}
	m2 := map[string]any{"a": 1}
	s := []any{1, 2}
	if !Same(m, m) {
		t.Error("map should be the same as itself")
	}
	if Same(m, m2) {
		t.Error("distinct maps reported the same")
	}
	if !Same(s, s) {
		t.Error("slice should be the same as itself")
	}
	if Same(s, s[:1]) {
		t.Error("resliced slice reported the same")
	}
	if !Same("x", "x") || Same("x", "y") {
		t.Error("scalar identity is ==")
	}
	if Same(m, s) {
		t.Error("different types reported the same")
	}
}
