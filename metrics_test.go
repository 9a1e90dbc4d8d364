package goGate

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestMetricsDisabledNoIncrement(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: false})
	m.Inc(MetricLoginSuccess)

	if got := m.Value(MetricLoginSuccess); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
	if len(m.Snapshot().Counters) != 0 {
		t.Fatal("expected empty snapshot when disabled")
	}
}

func TestMetricsNilSafe(t *testing.T) {
	var m *Metrics
	m.Inc(MetricLoginSuccess)
	m.Observe(MetricResolveLatency, time.Millisecond)
	if m.Value(MetricLoginSuccess) != 0 || m.Enabled() {
		t.Fatal("nil metrics must be inert")
	}
}

func TestMetricsConcurrentIncrementSafe(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true})

	const goroutines = 32
	const perG = 4000

	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < perG; j++ {
				m.Inc(MetricResolveRotated)
			}
		}()
	}
	wg.Wait()

	want := uint64(goroutines * perG)
	if got := m.Value(MetricResolveRotated); got != want {
		t.Fatalf("expected %d, got %d", want, got)
	}
}

func TestMetricsHistogramBucketCorrectness(t *testing.T) {
	m := NewMetrics(MetricsConfig{
		Enabled:                 true,
		EnableLatencyHistograms: true,
	})

	observations := []time.Duration{
		5 * time.Millisecond,
		10 * time.Millisecond,
		25 * time.Millisecond,
		50 * time.Millisecond,
		100 * time.Millisecond,
		250 * time.Millisecond,
		500 * time.Millisecond,
		700 * time.Millisecond,
	}

	for _, d := range observations {
		m.Observe(MetricResolveLatency, d)
	}

	snap := m.Snapshot()
	buckets := snap.Histograms[MetricResolveLatency]
	if len(buckets) != 8 {
		t.Fatalf("expected 8 buckets, got %d", len(buckets))
	}

	for i, v := range buckets {
		if v != 1 {
			t.Fatalf("bucket %d expected 1, got %d", i, v)
		}
	}
	if _, ok := snap.Counters[MetricResolveLatency]; ok {
		t.Fatal("histogram id must not appear among counters")
	}
}

func TestEveryStatusHasCounter(t *testing.T) {
	statuses := []AuthStatus{
		StatusMissingToken,
		StatusInvalidAuthToken,
		StatusAuthenticated,
		StatusInvalidRefreshToken,
		StatusAuthRefreshMismatch,
		StatusRefreshTokenReused,
		StatusUserNotFound,
		StatusUserSuspended,
	}
	seen := map[MetricID]bool{}
	for _, s := range statuses {
		id, ok := statusMetric[s]
		if !ok {
			t.Fatalf("no counter for %s", s)
		}
		if seen[id] {
			t.Fatalf("counter for %s shared with another status", s)
		}
		seen[id] = true
	}
	if _, ok := statusMetric[StatusNone]; ok {
		t.Fatal("NONE is never a terminal status")
	}
}

func TestResolveLatencyRecorded(t *testing.T) {
	env := newTestEnv(t, func(cfg *Config) {
		cfg.Metrics.EnableLatencyHistograms = true
	})
	access, refresh := env.issue(t, "u1")

	for i := 0; i < 3; i++ {
		if _, _, err := env.engine.Resolve(context.Background(), access, refresh); err != nil {
			t.Fatalf("Resolve failed: %v", err)
		}
	}

	var total uint64
	for _, v := range env.engine.MetricsSnapshot().Histograms[MetricResolveLatency] {
		total += v
	}
	if total != 3 {
		t.Fatalf("expected 3 latency observations, got %d", total)
	}
}
