package goGate

import (
	"sync/atomic"
	"time"
)

// MetricID indexes an engine counter or histogram.
type MetricID uint16

const (
	// One counter per terminal resolver status.
	MetricResolveMissingToken MetricID = iota
	MetricResolveInvalidAuthToken
	MetricResolveAuthenticated
	MetricResolveInvalidRefreshToken
	MetricResolveAuthRefreshMismatch
	MetricResolveRefreshTokenReused
	MetricResolveUserNotFound
	MetricResolveUserSuspended
	// MetricResolveRotated counts AUTHENTICATED verdicts that minted a new pair.
	MetricResolveRotated
	// MetricResolveDependencyFailure counts resolutions that ended in ErrDependencyUnavailable.
	MetricResolveDependencyFailure

	MetricLoginSuccess
	MetricLoginFailure
	MetricLoginRateLimited
	MetricLoginSuspended
	MetricPasswordRehash

	MetricAccountCreationSuccess
	MetricAccountCreationDuplicate
	MetricAccountCreationRateLimited

	MetricLogout

	// MetricResolveLatency is the only histogram.
	MetricResolveLatency
	metricIDCount
)

const (
	histBucketCount = 8
	cacheLineSize   = 64
)

type metricHistogram struct {
	buckets [histBucketCount]uint64
}

type paddedCounter struct {
	value uint64
	_     [cacheLineSize - 8]byte
}

// Metrics is a fixed set of lock-free counters. A nil or disabled Metrics
// ignores every update.
type Metrics struct {
	enabled       bool
	enableLatency bool
	counters      [metricIDCount]paddedCounter
	histograms    [metricIDCount]metricHistogram
}

// MetricsSnapshot is a point-in-time copy of every counter and histogram.
type MetricsSnapshot struct {
	Counters   map[MetricID]uint64
	Histograms map[MetricID][]uint64
}

// NewMetrics returns a Metrics configured by cfg.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{
		enabled:       cfg.Enabled,
		enableLatency: cfg.Enabled && cfg.EnableLatencyHistograms,
	}
}

func (m *Metrics) Enabled() bool {
	return m != nil && m.enabled
}

func (m *Metrics) LatencyEnabled() bool {
	return m != nil && m.enableLatency
}

// Inc adds one to counter id.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= metricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, 1)
}

// Observe records d in the histogram for id.
func (m *Metrics) Observe(id MetricID, d time.Duration) {
	if m == nil || !m.enableLatency || id != MetricResolveLatency {
		return
	}

	b := bucketIndex(d)
	atomic.AddUint64(&m.histograms[id].buckets[b], 1)
}

// Value returns the current value of counter id.
func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || id >= metricIDCount {
		return 0
	}
	return atomic.LoadUint64(&m.counters[id].value)
}

// Snapshot copies all counters and, when enabled, the latency histogram.
func (m *Metrics) Snapshot() MetricsSnapshot {
	if m == nil || !m.enabled {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}

	s := MetricsSnapshot{
		Counters:   make(map[MetricID]uint64, int(metricIDCount)),
		Histograms: make(map[MetricID][]uint64, 1),
	}

	for id := MetricID(0); id < metricIDCount; id++ {
		if id == MetricResolveLatency {
			continue
		}
		s.Counters[id] = atomic.LoadUint64(&m.counters[id].value)
	}

	if m.enableLatency {
		buckets := make([]uint64, histBucketCount)
		for i := 0; i < histBucketCount; i++ {
			buckets[i] = atomic.LoadUint64(&m.histograms[MetricResolveLatency].buckets[i])
		}
		s.Histograms[MetricResolveLatency] = buckets
	}

	return s
}

func bucketIndex(d time.Duration) int {
	ms := d.Milliseconds()

	switch {
	case ms <= 5:
		return 0
	case ms <= 10:
		return 1
	case ms <= 25:
		return 2
	case ms <= 50:
		return 3
	case ms <= 100:
		return 4
	case ms <= 250:
		return 5
	case ms <= 500:
		return 6
	default:
		return 7
	}
}

var statusMetric = map[AuthStatus]MetricID{
	StatusMissingToken:        MetricResolveMissingToken,
	StatusInvalidAuthToken:    MetricResolveInvalidAuthToken,
	StatusAuthenticated:       MetricResolveAuthenticated,
	StatusInvalidRefreshToken: MetricResolveInvalidRefreshToken,
	StatusAuthRefreshMismatch: MetricResolveAuthRefreshMismatch,
	StatusRefreshTokenReused:  MetricResolveRefreshTokenReused,
	StatusUserNotFound:        MetricResolveUserNotFound,
	StatusUserSuspended:       MetricResolveUserSuspended,
}
