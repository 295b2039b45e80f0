package mocker

import (
	"reflect"
	"sync/atomic"
)

func countCalls(next any, count *atomic.Int64) any {
	nextVal := reflect.ValueOf(next)
	variadic := nextVal.Type().IsVariadic()
	return reflect.MakeFunc(nextVal.Type(), func(args []reflect.Value) []reflect.Value {
		count.Add(1)
		if variadic {
			return nextVal.CallSlice(args)
		}
		return nextVal.Call(args)
	}).Interface()
}
