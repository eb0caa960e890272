// Package optic implements composable lenses over immutable nested
// data built from records (map[string]any) and sequences ([]any).
//
// A Lens is a single higher-order function parameterized by an
// interpretation of the focus: wrapped in an identity Functor it
// rewrites the whole, wrapped in a constant Functor it reads the focus
// and leaves the whole alone. View and Over pick the interpretation.
//
// Lenses compose like functions:
//
//	name := optic.Compose(optic.Property("items"), optic.Index(3), optic.Property("name"))
//	name = optic.Path("items", 3, "name") // same lens
//
// All reads and writes are total. A missing or mistyped container is
// read as an empty record or sequence, and Over synthesizes it.
package optic

import "fmt"

// Functor is the interpretation a Lens runs under.
type Functor interface {
	Map(f func(any) any) Functor
}

// Lens focuses on a part of a whole.
type Lens func(f func(any) Functor) func(any) Functor

type identity struct{ x any }

func (i identity) Map(f func(any) any) Functor { return identity{f(i.x)} }

type constant struct{ x any }

func (c constant) Map(func(any) any) Functor { return c }

// Property focuses on the field key of a record.
func Property(key string) Lens {
	return func(f func(any) Functor) func(any) Functor {
		return func(whole any) Functor {
			rec, _ := whole.(map[string]any)
			return f(rec[key]).Map(func(v any) any {
				out := make(map[string]any, len(rec)+1)
				for k, x := range rec {
					out[k] = x
				}
				out[key] = v
				return out
			})
		}
	}
}

// Index focuses on position i of a sequence. Writing past the end pads
// the sequence with nil.
//
// Negative positions always read nil and writes to them are dropped, so
// the set-then-view law does not hold there: View(Set(s, Index(-1), v),
// Index(-1)) is nil for every v.
func Index(i int) Lens {
	return func(f func(any) Functor) func(any) Functor {
		return func(whole any) Functor {
			seq, _ := whole.([]any)
			var focus any
			if i >= 0 && i < len(seq) {
				focus = seq[i]
			}
			return f(focus).Map(func(v any) any {
				if i < 0 {
					if seq == nil {
						return []any{}
					}
					return seq
				}
				n := len(seq)
				if i >= n {
					n = i + 1
				}
				out := make([]any, n)
				copy(out, seq)
				out[i] = v
				return out
			})
		}
	}
}

// Compose chains lenses, outermost first. With no lenses it returns the
// identity lens, which focuses on the whole.
func Compose(lenses ...Lens) Lens {
	return func(f func(any) Functor) func(any) Functor {
		for i := len(lenses) - 1; i >= 0; i-- {
			f = lenses[i](f)
		}
		return f
	}
}

// Path builds a lens from path segments: strings select record fields,
// ints select sequence positions. Any other segment is a programming
// error and panics.
func Path(segments ...any) Lens {
	lenses := make([]Lens, len(segments))
	for i, seg := range segments {
		switch s := seg.(type) {
		case string:
			lenses[i] = Property(s)
		case int:
			lenses[i] = Index(s)
		default:
			panic(fmt.Sprintf("optic: path segment %d has type %T, want string or int", i, seg))
		}
	}
	return Compose(lenses...)
}

// View returns the part of whole that l focuses on.
func View(whole any, l Lens) any {
	return l(func(x any) Functor { return constant{x} })(whole).(constant).x
}

// Over returns a copy of whole with the focus of l replaced by f of it.
// Containers off the focus path are shared with whole.
func Over(whole any, l Lens, f func(any) any) any {
	return l(func(x any) Functor { return identity{f(x)} })(whole).(identity).x
}

// Set returns a copy of whole with the focus of l replaced by v.
func Set(whole any, l Lens, v any) any {
	return Over(whole, l, func(any) any { return v })
}
