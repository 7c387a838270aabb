package bucket

import (
	"context"
	"strconv"
	"testing"
	"time"
)

func BenchmarkAllow(b *testing.B) {
	store := New()
	ctx := context.Background()
	for b.Loop() {
		_, _ = store.Allow(ctx, "rl:login:ip:bench", 1000, time.Minute)
	}
}

func BenchmarkAllow_Parallel(b *testing.B) {
	store := New()
	ctx := context.Background()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_, _ = store.Allow(ctx, "rl:login:ip:bench", 1000, time.Minute)
		}
	})
}

// Many distinct emails, as during a credential-stuffing run.
func BenchmarkAllow_HighCardinality(b *testing.B) {
	store := New()
	ctx := context.Background()
	for i := 0; b.Loop(); i++ {
		_, _ = store.Allow(ctx, "rl:login:email:"+strconv.Itoa(i%50000), 5, 15*time.Minute)
	}
}
