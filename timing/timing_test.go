package timing

import (
	"bytes"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aknopov/around/mocker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const (
	Step     = 10 * time.Millisecond
	Parallel = 10
)

var errTest = errors.New("test error")

type store struct {
	Get  func(key string) (string, error)
	Join func(sep string, parts ...string) string
	Size int
}

func newStore() *store {
	return &store{
		Get: func(key string) (string, error) {
			if key == "" {
				return "", errTest
			}
			return "value-" + key, nil
		},
		Join: func(sep string, parts ...string) string { return strings.Join(parts, sep) },
		Size: 1,
	}
}

// Clock advancing by `Step` on each reading
func fakeClock() func() time.Time {
	var lock sync.Mutex
	tick := time.Unix(0, 0)
	return func() time.Time {
		lock.Lock()
		defer lock.Unlock()
		ret := tick
		tick = tick.Add(Step)
		return ret
	}
}

func TestCalcStats(t *testing.T) {
	assertT := assert.New(t)

	runtimes := []time.Duration{0, 1000000, 2000000, 3000000, 4000000, 5000000, 6000000, 7000000, 8000000, 9000000}
	oneStat := calcStats(runtimes, 3)

	assertT.Equal(10, oneStat.Count)
	assertT.Equal(time.Duration(45000000), oneStat.TotalTime)
	assertT.Equal(time.Duration(0), oneStat.MinTime)
	assertT.Equal(time.Duration(4500000), oneStat.AvgTime)
	assertT.Equal(time.Duration(5000000), oneStat.MedTime)
	assertT.Equal(time.Duration(9000000), oneStat.MaxTime)
	assertT.Equal(time.Duration(3027650), oneStat.StdDev)
	assertT.Equal(3, oneStat.Fails)
	assertT.Equal(runtimes, oneStat.Values)
}

func TestCalcStatsSmallSamples(t *testing.T) {
	assertT := assert.New(t)

	empty := calcStats(nil, 0)
	assertT.Equal(0, empty.Count)
	assertT.Equal(time.Duration(0), empty.AvgTime)

	single := calcStats([]time.Duration{Step}, 1)
	assertT.Equal(1, single.Count)
	assertT.Equal(Step, single.AvgTime)
	assertT.Equal(Step, single.MedTime)
	assertT.Equal(time.Duration(0), single.StdDev)
	assertT.Equal(1, single.Fails)
}

func TestRecorder(t *testing.T) {
	assertT := assert.New(t)
	defer mocker.ReplaceItem(&now, fakeClock())()

	target := newStore()
	recorder := NewRecorder()
	revert := recorder.Install(target, "Get", "Join", "Size", "Missing")

	val, err := target.Get("a")
	assertT.NoError(err)
	assertT.Equal("value-a", val)
	_, err = target.Get("")
	assertT.ErrorIs(err, errTest)
	assertT.Equal("a,b,c", target.Join(",", "a", "b", "c"))

	revert()
	_, _ = target.Get("b")

	assertT.Equal([]string{"Get", "Join"}, recorder.Names())
	stats := recorder.Stats()
	require.Len(t, stats, 2)

	getStats := stats["Get"]
	assertT.Equal(2, getStats.Count)
	assertT.Equal(1, getStats.Fails)
	assertT.Equal(Step, getStats.AvgTime)
	assertT.Equal(2*Step, getStats.TotalTime)

	joinStats := stats["Join"]
	assertT.Equal(1, joinStats.Count)
	assertT.Equal(0, joinStats.Fails)
}

func TestRecorderConcurrent(t *testing.T) {
	assertT := assert.New(t)

	target := newStore()
	recorder := NewRecorder()
	mocker.Intercept(t, target, recorder.Factories("Get")...)

	waitGroup := sync.WaitGroup{}
	for i := 0; i < Parallel; i++ {
		waitGroup.Add(1)
		go func() {
			defer waitGroup.Done()
			_, _ = target.Get("k")
		}()
	}
	waitGroup.Wait()

	assertT.Equal(Parallel, recorder.Stats()["Get"].Count)

	recorder.Reset()
	assertT.Empty(recorder.Stats())
	assertT.Empty(recorder.Names())
}

func TestReport(t *testing.T) {
	assertT := assert.New(t)
	defer mocker.ReplaceItem(&now, fakeClock())()

	table := map[string]func() error{"ping": func() error { return nil }}
	recorder := NewRecorder()
	defer recorder.Install(table, "ping")()

	assertT.NoError(table["ping"]())

	var buf bytes.Buffer
	require.NoError(t, recorder.Report(&buf))

	parsed := make(map[string]map[string]any)
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &parsed))
	assertT.Contains(parsed, "ping")
	assertT.Equal(1, parsed["ping"]["count"])
	assertT.Equal("10ms", parsed["ping"]["avg_time"])
}

func TestFactoryNonFunction(t *testing.T) {
	assertT := assert.New(t)

	factory := NewRecorder().Factory("Get")
	var nilFn func()

	assertT.NotPanics(func() {
		assertT.Nil(factory(nil))
		assertT.Equal(5, factory(5))
		assertT.Nil(factory(nilFn))
	})
}
