// Package timing measures latencies of function members intercepted with package around.
package timing

import (
	"fmt"
	"io"
	"reflect"
	"sync"
	"time"

	"github.com/aknopov/around"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

var (
	now     = time.Now
	errType = reflect.TypeFor[error]()
)

// Collected call times of one member
type methodFixture struct {
	runtimes []time.Duration
	fails    int
}

// Records execution times of wrapped calls. Safe for concurrent calls of the wrappers.
type Recorder struct {
	lock     sync.Mutex // `fixtures` and `names` guard
	fixtures map[string]*methodFixture
	names    []string
	logger   zerolog.Logger
}

func NewRecorder() *Recorder {
	return &Recorder{fixtures: make(map[string]*methodFixture), logger: zerolog.Nop()}
}

// Sets logger for failed calls
func (r *Recorder) SetLogger(logger zerolog.Logger) *Recorder {
	r.logger = logger
	return r
}

// Returns wrapper factory for member `name`. The wrapper calls the original and records
// its duration; a call fails when its last result is a non-nil error. Anything but a non-nil
// function is returned unchanged.
func (r *Recorder) Factory(name string) func(next any) any {
	return func(next any) any {
		nextVal := reflect.ValueOf(next)
		if nextVal.Kind() != reflect.Func || nextVal.IsNil() {
			return next
		}
		return r.timed(name, nextVal)
	}
}

// Factories for all `names`, in the given order
func (r *Recorder) Factories(names ...string) around.Factories {
	ret := make(around.Factories, 0, len(names))
	for _, name := range names {
		ret = append(ret, around.On(name, r.Factory(name)))
	}
	return ret
}

// Wraps members `names` of `target` and returns reverter
func (r *Recorder) Install(target any, names ...string) func() {
	return around.Install(target, r.Factories(names...)...)
}

func (r *Recorder) timed(name string, next reflect.Value) any {
	fnType := next.Type()
	failIdx := -1
	if n := fnType.NumOut(); n > 0 && fnType.Out(n-1) == errType {
		failIdx = n - 1
	}

	return reflect.MakeFunc(fnType, func(args []reflect.Value) []reflect.Value {
		start := now()
		var results []reflect.Value
		if fnType.IsVariadic() {
			results = next.CallSlice(args)
		} else {
			results = next.Call(args)
		}
		execTime := now().Sub(start)

		var err error
		if failIdx >= 0 && !results[failIdx].IsNil() {
			err = results[failIdx].Interface().(error)
		}
		r.record(name, execTime, err)

		return results
	}).Interface()
}

func (r *Recorder) record(name string, execTime time.Duration, err error) {
	r.lock.Lock()
	defer r.lock.Unlock()

	fixture, ok := r.fixtures[name]
	if !ok {
		fixture = &methodFixture{runtimes: make([]time.Duration, 0)}
		r.fixtures[name] = fixture
		r.names = append(r.names, name)
	}
	fixture.runtimes = append(fixture.runtimes, execTime)
	if err != nil {
		fixture.fails++
		r.logger.Debug().Str("method", name).Err(err).Dur("time", execTime).Msg("call failed")
	}
}

// Names of members called so far, in order of the first call
func (r *Recorder) Names() []string {
	r.lock.Lock()
	defer r.lock.Unlock()
	return append([]string(nil), r.names...)
}

// Statistics of every called member
func (r *Recorder) Stats() map[string]RunStats {
	r.lock.Lock()
	defer r.lock.Unlock()

	ret := make(map[string]RunStats, len(r.fixtures))
	for name, fixture := range r.fixtures {
		ret[name] = calcStats(fixture.runtimes, fixture.fails)
	}
	return ret
}

// Discards collected times
func (r *Recorder) Reset() {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.fixtures = make(map[string]*methodFixture)
	r.names = nil
}

// Writes statistics as YAML document
func (r *Recorder) Report(w io.Writer) error {
	encoder := yaml.NewEncoder(w)
	if err := encoder.Encode(r.Stats()); err != nil {
		return fmt.Errorf("failed to encode statistics: %v", err)
	}
	return encoder.Close()
}
