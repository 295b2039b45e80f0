// Package mocker provides useful tools that can be used in unit tests
package mocker

import (
	"sync/atomic"
	"testing"

	"github.com/aknopov/around"
)

// Tests quite often require to replace original functions or state variables by the mock ones.
// Function below preserves and restores an item (function or variable).
//
// This function should be used like
//
//	defer mocker.ReplaceItem(&orgVal, newVal)()
//
// - note extra brackets.
func ReplaceItem[T any](orgVal *T, newVal T) func() {
	saveVal := *orgVal
	*orgVal = newVal
	return func() { *orgVal = saveVal }
}

// Wraps function members of `target` for the duration of the test `t`.
// Members are restored by test cleanup.
func Intercept(t testing.TB, target any, factories ...around.Factory) {
	t.Helper()
	t.Cleanup(around.Install(target, factories...))
}

// Same as Intercept with factories given as a map.
func InterceptMap(t testing.TB, target any, factories map[string]any) {
	t.Helper()
	t.Cleanup(around.Around(target, factories))
}

// Wraps a function variable for the duration of the test `t`.
func WrapFunc[F any](t testing.TB, fn *F, factory func(next F) F) {
	t.Helper()
	t.Cleanup(around.Wrap(fn, factory))
}

// Counts calls of the member by wrapping it; the original is still called.
// Works with any function signature. The returned function reads the counter
// and is safe to use while the member is called from other goroutines.
func Spy(t testing.TB, target any, name string) func() int {
	t.Helper()
	count := new(atomic.Int64)
	Intercept(t, target, around.On(name, func(next any) any {
		return countCalls(next, count)
	}))
	return func() int { return int(count.Load()) }
}
