package around

import "reflect"

// Settable location of a member
type slot interface {
	// Returns a copy of the current value or invalid value if the member is gone
	get() reflect.Value
	set(val reflect.Value)
	typ() reflect.Type
}

type fieldSlot struct {
	field reflect.Value
}

type mapSlot struct {
	m   reflect.Value
	key reflect.Value
}

// Finds member `name` of the target. Returns nil if the target has no such settable member.
func lookup(target reflect.Value, name string) slot {
	if target.Kind() == reflect.Pointer {
		if target.IsNil() {
			return nil
		}
		target = target.Elem()
	}

	switch target.Kind() {
	case reflect.Struct:
		return fieldSlotOf(target, name)
	case reflect.Map:
		return mapSlotOf(target, name)
	default:
		return nil
	}
}

func fieldSlotOf(aStruct reflect.Value, name string) slot {
	sf, ok := aStruct.Type().FieldByName(name)
	if !ok || !sf.IsExported() {
		return nil
	}
	// embedded nil pointers give an error
	field, err := aStruct.FieldByIndexErr(sf.Index)
	if err != nil || !field.CanSet() {
		return nil
	}
	return &fieldSlot{field}
}

func mapSlotOf(aMap reflect.Value, name string) slot {
	keyType := aMap.Type().Key()
	if keyType.Kind() != reflect.String || aMap.IsNil() {
		return nil
	}
	key := reflect.ValueOf(name).Convert(keyType)
	if !aMap.MapIndex(key).IsValid() {
		return nil
	}
	return &mapSlot{aMap, key}
}

// Slot of a function variable behind a pointer
func varSlot(ptr reflect.Value) slot {
	if ptr.Kind() != reflect.Pointer || ptr.IsNil() || ptr.Elem().Kind() != reflect.Func {
		return nil
	}
	return &fieldSlot{ptr.Elem()}
}

func (s *fieldSlot) get() reflect.Value {
	return copyValue(s.field)
}

func (s *fieldSlot) set(val reflect.Value) {
	s.field.Set(val)
}

func (s *fieldSlot) typ() reflect.Type {
	return s.field.Type()
}

func (s *mapSlot) get() reflect.Value {
	return s.m.MapIndex(s.key)
}

func (s *mapSlot) set(val reflect.Value) {
	s.m.SetMapIndex(s.key, val)
}

func (s *mapSlot) typ() reflect.Type {
	return s.m.Type().Elem()
}

// Returns the function held by `val` (directly or through an interface),
// or invalid value if there is no non-nil function.
func callable(val reflect.Value) reflect.Value {
	if val.Kind() == reflect.Interface {
		if val.IsNil() {
			return reflect.Value{}
		}
		val = val.Elem()
	}
	if val.Kind() != reflect.Func || val.IsNil() {
		return reflect.Value{}
	}
	return val
}

// Identity of a function value - address of the closure it refers to.
// reflect.Value.Pointer gives the code pointer, which is shared by closures of one literal.
func funcIdentity(fn reflect.Value) uintptr {
	return *(*uintptr)(copyValue(fn).Addr().UnsafePointer())
}

// New function value of the same type calling `fn`
func forwarder(fn reflect.Value) reflect.Value {
	variadic := fn.Type().IsVariadic()
	return reflect.MakeFunc(fn.Type(), func(args []reflect.Value) []reflect.Value {
		if variadic {
			return fn.CallSlice(args)
		}
		return fn.Call(args)
	})
}

func copyValue(val reflect.Value) reflect.Value {
	ret := reflect.New(val.Type()).Elem()
	ret.Set(val)
	return ret
}
