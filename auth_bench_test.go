package goGate

import (
	"context"
	"testing"
	"time"
)

func BenchmarkResolveFresh(b *testing.B) {
	env := newTestEnv(b, nil)
	access, refresh := env.issue(b, "u1")

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, _, err := env.engine.Resolve(context.Background(), access, refresh); err != nil {
			b.Fatalf("resolve failed: %v", err)
		}
	}
}

func BenchmarkResolveRotate(b *testing.B) {
	env := newTestEnv(b, nil)
	access, refresh := env.issue(b, "u1")

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		env.clock.Advance(16 * time.Minute)
		ac, pair, err := env.engine.Resolve(context.Background(), access, refresh)
		if err != nil {
			b.Fatalf("resolve failed: %v", err)
		}
		if pair == nil {
			b.Fatalf("expected rotation, got %s", ac.AuthStatus)
		}
		access, refresh = pair.AccessToken, pair.RefreshToken
	}
}
