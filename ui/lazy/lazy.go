// Package lazy memoizes slow data loads for components.
//
// A component that needs remote or expensive data holds a *Value and
// calls Get while rendering. The first call runs the loader and blocks
// the render pass until it finishes; concurrent calls share that one
// load and later calls return the cached result.
package lazy

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Value is a lazily loaded, memoized value.
type Value[T any] struct {
	load  func(context.Context) (T, error)
	group singleflight.Group

	mu   sync.Mutex
	done bool
	val  T
}

// New returns a Value loaded by load on first use.
func New[T any](load func(context.Context) (T, error)) *Value[T] {
	return &Value[T]{load: load}
}

// Of returns a Value that is already loaded.
func Of[T any](v T) *Value[T] {
	return &Value[T]{done: true, val: v}
}

// Get returns the value, loading it if needed. A failed load is not
// cached; the next Get tries again.
//
// Cancelling ctx abandons the wait but not the load, which other
// callers may share.
func (v *Value[T]) Get(ctx context.Context) (T, error) {
	if val, ok := v.Peek(); ok {
		return val, nil
	}
	ch := v.group.DoChan("", func() (any, error) {
		if val, ok := v.Peek(); ok {
			return val, nil
		}
		val, err := v.load(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		v.mu.Lock()
		v.val, v.done = val, true
		v.mu.Unlock()
		return val, nil
	})
	select {
	case r := <-ch:
		if r.Err != nil {
			var zero T
			return zero, r.Err
		}
		val, _ := r.Val.(T)
		return val, nil
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Peek returns the value if it has been loaded.
func (v *Value[T]) Peek() (T, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.val, v.done
}
