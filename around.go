// Package around intercepts function-typed members of Go values and restores them on demand.
//
// A member is any settable location holding a function: an exported func field of a struct
// reached through a pointer, or an entry of a map with string keys. Typical use
//
//	defer around.Install(&svc, around.On("Greet", func(next func() string) func() string {
//		return func() string { return next() + "!" }
//	}))()
//
// - note extra brackets.
package around

import (
	"maps"
	"reflect"
	"slices"
)

// Wrapper factory for one member
type Factory struct {
	Name string
	// Wrap is a function of one argument (the original member) returning the replacement.
	Wrap any
}

// Ordered list of factories; processing follows the list order
type Factories []Factory

// original member saved by Install
type entry struct {
	name      string
	slot      slot
	original  reflect.Value
	installed uintptr
}

// Creates a factory for the member `name`
func On(name string, wrap any) Factory {
	return Factory{Name: name, Wrap: wrap}
}

// Converts a map of factories to a list sorted by member name.
func FromMap(factories map[string]any) Factories {
	ret := make(Factories, 0, len(factories))
	for _, name := range slices.Sorted(maps.Keys(factories)) {
		ret = append(ret, On(name, factories[name]))
	}
	return ret
}

// Same as Install with factories given as a map (processed in sorted name order).
func Around(target any, factories map[string]any) func() {
	return Install(target, FromMap(factories)...)
}

// Replaces named function members of `target` with wrappers built by `factories`
// and returns a function that reverts them.
//
//   - target - pointer to struct or map with string keys
//
//   - factories - wrapper factories; a factory is applied only when it is a function
//     of one argument and one result and the member currently holds a non-nil function
//
//     return reverter; it restores a member only if the wrapper is still in place, and
//     does nothing when called again
func Install(target any, factories ...Factory) func() {
	targetVal := reflect.ValueOf(target)
	return install(factories, func(name string) slot { return lookup(targetVal, name) })
}

// Typed form of Install for a single function variable. The compiler checks that the
// factory returns a function of the original's type.
func Wrap[F any](fn *F, factory func(next F) F) func() {
	if fn == nil || factory == nil {
		return func() {}
	}
	name := reflect.TypeFor[F]().String()
	return install(Factories{On(name, factory)}, func(string) slot { return varSlot(reflect.ValueOf(fn)) })
}

func install(factories Factories, resolve func(name string) slot) func() {
	originals := make([]entry, 0, len(factories))
	seen := make(map[string]struct{}, len(factories))

	for _, factory := range factories {
		if _, ok := seen[factory.Name]; ok {
			logger.Debug().Str("member", factory.Name).Msg("member is already wrapped, factory skipped")
			continue
		}

		if e, ok := installOne(factory, resolve); ok {
			originals = append(originals, e)
			seen[factory.Name] = struct{}{}
		}
	}

	return func() {
		for _, e := range originals {
			current := callable(e.slot.get())
			if !current.IsValid() || funcIdentity(current) != e.installed {
				logger.Debug().Str("member", e.name).Msg("member was replaced again, left in place")
				continue
			}
			e.slot.set(e.original)
		}
		originals = nil
	}
}

func installOne(factory Factory, resolve func(name string) slot) (entry, bool) {
	wrap := callable(reflect.ValueOf(factory.Wrap))
	if !wrap.IsValid() || !isFactoryType(wrap.Type()) {
		logger.Debug().Str("member", factory.Name).Msg("factory is not a function of one argument")
		return entry{}, false
	}

	aSlot := resolve(factory.Name)
	if aSlot == nil {
		logger.Debug().Str("member", factory.Name).Msg("no such member")
		return entry{}, false
	}

	original := aSlot.get()
	next := callable(original)
	if !next.IsValid() {
		logger.Debug().Str("member", factory.Name).Msg("member is not a function")
		return entry{}, false
	}
	if !next.Type().AssignableTo(wrap.Type().In(0)) {
		logger.Debug().Str("member", factory.Name).Stringer("type", next.Type()).Msg("factory does not accept member type")
		return entry{}, false
	}

	wrapper := callable(wrap.Call([]reflect.Value{next})[0])
	if !wrapper.IsValid() || !wrapper.Type().AssignableTo(aSlot.typ()) {
		logger.Debug().Str("member", factory.Name).Msg("factory result is not assignable to member")
		return entry{}, false
	}

	// captureless closures and top-level functions are shared values; each installation needs its own
	wrapper = forwarder(wrapper)
	aSlot.set(wrapper)
	return entry{name: factory.Name, slot: aSlot, original: original, installed: funcIdentity(wrapper)}, true
}

func isFactoryType(t reflect.Type) bool {
	return t.NumIn() == 1 && t.NumOut() == 1 && !t.IsVariadic()
}
