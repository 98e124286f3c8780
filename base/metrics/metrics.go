/*Package metrics wraps datadog-go to faciliate metric recording
Following are naming convention of metric:
- Internal process time: *.time
- External latency: *.latency
- Error: *.err
- Warning: *.warn
*/
package metrics

import (
	"fmt"
	"sync"
	"time"

	"github.com/DataDog/datadog-go/statsd"
	"github.com/spf13/viper"

	"github.com/decentraland/land-auction/base/env"
	"github.com/decentraland/land-auction/base/log"
)

const (
	// TagValueNA is used for tags whose values are not available.
	TagValueNA = "n/a"

	// ddRate is the rate to pass metrics to the datadog agent. 1 means always
	ddRate = 1
	// buffer 10 counters before sending to statsd
	bufferMetrics = 10
)

// Ender provides interface for BumpTime
type Ender interface {
	End()
}

// Service provides interface for metrics
type Service interface {
	BumpAvg(key string, val float64, tags ...string)
	BumpSum(key string, val float64, tags ...string)
	BumpHistogram(key string, val float64, tags ...string)

	BumpTime(key string, tags ...string) Ender
}

type statsCli interface {
	Gauge(name string, value float64, tags []string, rate float64) error
	Count(name string, value int64, tags []string, rate float64) error
	Histogram(name string, value float64, tags []string, rate float64) error
	TimeInMilliseconds(name string, value float64, tags []string, rate float64) error
}

var (
	initOnce sync.Once
	client   statsCli
)

func initClient() {
	host := viper.GetString("datadog_host")
	if host == "" {
		// no agent configured, metrics fall through to debug logs
		client = &LogClient{}
		return
	}
	addr := fmt.Sprintf("%s:%d", host, 8125)
	log.Log().WithField("addr", addr).Info("connecting to datadog agent")
	c, err := statsd.NewBuffered(addr, bufferMetrics)
	if err != nil {
		log.Log().WithFields(log.Fields{"addr": addr, "err": err}).Panic("can't talk to datadog agent")
	}
	client = c
}

// New creates a metric client with package name as prefix
func New(pkgName string) Service {
	return &Metrics{
		pkgName: pkgName,
		ddTags: []string{
			// using host removes all tags associated with host
			// ref: https://docs.datadoghq.com/developers/dogstatsd/data_types/#host-tag-key
			"host:",
			"pod:" + env.PodName(),
			"env:" + viper.GetString("env_name"),
			"app:" + viper.GetString("app_name"),
		},
	}
}

// Metrics sends counters, gauges and timings to the datadog agent.
type Metrics struct {
	pkgName string
	ddTags  []string
}

// BumpAvg bumps the average for the given key.
func (mt *Metrics) BumpAvg(key string, val float64, tags ...string) {
	initOnce.Do(initClient)
	// datadog has no plain average, gauge is the closest fit
	if err := client.Gauge(mt.pkgName+`.`+key, val, append(mt.ddTags, parseTag(tags)...), ddRate); err != nil {
		log.Log().WithFields(log.Fields{"err": err, "key": key, "val": val, "func": "BumpAvg"}).Error("Bump fail")
	}
}

// BumpSum bumps the sum for the given key.
func (mt *Metrics) BumpSum(key string, val float64, tags ...string) {
	initOnce.Do(initClient)
	if err := client.Count(mt.pkgName+`.`+key, int64(val), append(mt.ddTags, parseTag(tags)...), ddRate); err != nil {
		log.Log().WithFields(log.Fields{"err": err, "key": key, "val": val, "func": "BumpSum"}).Error("Bump fail")
	}
}

// BumpHistogram bumps the histogram for the given key.
func (mt *Metrics) BumpHistogram(key string, val float64, tags ...string) {
	initOnce.Do(initClient)
	if err := client.Histogram(mt.pkgName+`.`+key, val, append(mt.ddTags, parseTag(tags)...), ddRate); err != nil {
		log.Log().WithFields(log.Fields{"err": err, "key": key, "val": val, "func": "BumpHistogram"}).Error("Bump fail")
	}
}

// BumpTime starts a timer for the given key. Calling End() on the returned
// value records the duration:
//
//	defer s.BumpTime("my.function").End()
func (mt *Metrics) BumpTime(key string, tags ...string) Ender {
	initOnce.Do(initClient)
	return &timeTracker{
		start: time.Now(),
		key:   mt.pkgName + `.` + key,
		tags:  append(mt.ddTags, parseTag(tags)...),
	}
}

func parseTag(tags []string) []string {
	if tags == nil {
		return nil
	}
	if len(tags)%2 != 0 {
		log.Log().WithField("tags", tags).Panic("tag length needs to be multiple of 2")
	}
	arr := make([]string, len(tags)/2)
	for i := 0; i < len(tags); i += 2 {
		arr[i/2] = tags[i] + ":" + tags[i+1]
	}
	return arr
}

type timeTracker struct {
	start time.Time
	key   string
	tags  []string
}

func (t *timeTracker) End() {
	d := time.Since(t.start)
	dur := float64(d/time.Millisecond) + float64(d%time.Millisecond)*1e-6
	if err := client.TimeInMilliseconds(t.key, dur, t.tags, ddRate); err != nil {
		log.Log().WithFields(log.Fields{"err": err, "key": t.key, "val": dur, "func": "BumpTime"}).Error("Bump fail")
	}
}
