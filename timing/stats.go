package timing

import (
	"math"
	"sort"
	"time"

	"github.com/ericlagergren/decimal"
)

// Statistics of calls of one member
type RunStats struct {
	Count     int             `json:"count" yaml:"count"`
	TotalTime time.Duration   `json:"sum_time" yaml:"sum_time"`
	AvgTime   time.Duration   `json:"avg_time" yaml:"avg_time"`
	MinTime   time.Duration   `json:"min_time" yaml:"min_time"`
	MaxTime   time.Duration   `json:"max_time" yaml:"max_time"`
	MedTime   time.Duration   `json:"med_time" yaml:"med_time"`
	StdDev    time.Duration   `json:"stdev_time" yaml:"stdev_time"`
	Fails     int             `json:"fails" yaml:"fails"`
	Values    []time.Duration `json:"times" yaml:"times,omitempty"`
}

func calcStats(runtimes []time.Duration, fails int) RunStats {
	var stats RunStats
	stats.Fails = fails
	stats.Values = append([]time.Duration(nil), runtimes...)

	testCount := len(runtimes)
	stats.Count = testCount
	if testCount == 0 {
		return stats
	}

	sorttimes := make([]time.Duration, testCount)
	copy(sorttimes, runtimes)
	sort.Slice(sorttimes, func(i, j int) bool { return sorttimes[i] < sorttimes[j] })

	precCtx := decimal.Context128
	sum := new(decimal.Big)
	sum2 := new(decimal.Big)
	bigT := new(decimal.Big)
	for _, t := range sorttimes {
		bigT.SetUint64(uint64(t))
		precCtx.Add(sum, sum, bigT)
		precCtx.Add(sum2, sum2, precCtx.Mul(bigT, bigT, bigT))
	}

	fSum := big2float(sum)
	fCount := float64(testCount)
	stats.TotalTime = time.Duration(fSum)
	stats.AvgTime = time.Duration(fSum / fCount)
	stats.MinTime = sorttimes[0]
	stats.MedTime = sorttimes[testCount/2]
	stats.MaxTime = sorttimes[testCount-1]
	if testCount > 1 {
		variance := big2float(sum2)/(fCount-1) - fSum*fSum/fCount/(fCount-1)
		stats.StdDev = time.Duration(math.Sqrt(math.Max(variance, 0)))
	}

	return stats
}

func big2float(val *decimal.Big) float64 {
	conv, _ := val.Float64()
	return conv
}
