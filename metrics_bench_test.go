package classAuth

import (
	"context"
	"testing"
	"time"
)

func BenchmarkMetricsIncDisabled(b *testing.B) {
	m := NewMetrics(MetricsConfig{Enabled: false})
	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		m.Inc(MetricAuthSuccess)
	}
}

func BenchmarkMetricsObserveLatencyParallel(b *testing.B) {
	m := NewMetrics(MetricsConfig{Enabled: true, EnableLatencyHistograms: true})
	b.ReportAllocs()
	b.ResetTimer()

	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			m.Observe(MetricAuthenticateLatency, 3*time.Millisecond)
		}
	})
}

// Students and teachers authenticate concurrently, so the per-role
// counters are hit from every goroutine.
func BenchmarkAuthenticateMixedRolesParallel(b *testing.B) {
	engine, _, done := buildTestEngine(b, testConfig(ModeJWTOnly), newTestDirectory(), nil)
	defer done()

	tokens := [2]string{
		mintToken(b, "s1", 10*time.Minute),
		mintToken(b, "t1", 10*time.Minute),
	}

	b.ReportAllocs()
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		ctx := context.Background()
		i := 0
		for pb.Next() {
			if _, err := engine.Authenticate(ctx, tokens[i&1]); err != nil {
				b.Errorf("authenticate failed: %v", err)
				return
			}
			i++
		}
	})
	b.StopTimer()

	students := engine.metrics.Value(MetricAuthStudent)
	teachers := engine.metrics.Value(MetricAuthTeacher)
	if students+teachers != engine.metrics.Value(MetricAuthSuccess) {
		b.Fatalf("role counters %d+%d do not add up to successes %d", students, teachers, engine.metrics.Value(MetricAuthSuccess))
	}
}

func BenchmarkMetricsSnapshot(b *testing.B) {
	engine, _, done := buildTestEngine(b, testConfig(ModeJWTOnly), newTestDirectory(), nil)
	defer done()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = engine.MetricsSnapshot()
	}
}
