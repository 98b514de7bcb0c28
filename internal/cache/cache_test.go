package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/opensource-finance/heron/internal/domain"
)

func TestLRUCache(t *testing.T) {
	ctx := context.Background()

	t.Run("SetAndGet", func(t *testing.T) {
		c := NewLRUCache(100)
		defer c.Close()

		if err := c.Set(ctx, "key1", []byte("value1"), time.Minute); err != nil {
			t.Fatalf("Set failed: %v", err)
		}

		val, err := c.Get(ctx, "key1")
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if string(val) != "value1" {
			t.Errorf("expected value1, got %s", val)
		}
	})

	t.Run("MissReturnsNil", func(t *testing.T) {
		c := NewLRUCache(100)
		defer c.Close()

		val, err := c.Get(ctx, "missing")
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if val != nil {
			t.Errorf("expected nil for missing key, got %s", val)
		}
	})

	t.Run("TTLExpiry", func(t *testing.T) {
		c := NewLRUCache(100)
		defer c.Close()

		if err := c.Set(ctx, "ephemeral", []byte("x"), 10*time.Millisecond); err != nil {
			t.Fatalf("Set failed: %v", err)
		}

		time.Sleep(20 * time.Millisecond)

		val, err := c.Get(ctx, "ephemeral")
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if val != nil {
			t.Error("expected expired entry to be gone")
		}
	})

	t.Run("Delete", func(t *testing.T) {
		c := NewLRUCache(100)
		defer c.Close()

		c.Set(ctx, "key1", []byte("value1"), time.Minute)
		if err := c.Delete(ctx, "key1"); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}

		val, _ := c.Get(ctx, "key1")
		if val != nil {
			t.Error("expected deleted entry to be gone")
		}
	})

	t.Run("EvictsOldest", func(t *testing.T) {
		c := NewLRUCache(3)
		defer c.Close()

		for i := 0; i < 4; i++ {
			c.Set(ctx, fmt.Sprintf("key%d", i), []byte("v"), time.Minute)
		}

		size, capacity := c.Stats()
		if size != 3 {
			t.Errorf("expected size 3 after eviction, got %d", size)
		}
		if capacity != 3 {
			t.Errorf("expected capacity 3, got %d", capacity)
		}

		// key0 was the oldest
		val, _ := c.Get(ctx, "key0")
		if val != nil {
			t.Error("expected key0 to be evicted")
		}
	})

	t.Run("ScoreRoundTrip", func(t *testing.T) {
		c := NewLRUCache(100)
		defer c.Close()

		score := &domain.Score{
			ID:              "score-001",
			DemandID:        "demand-001",
			ScoreValue:      720,
			RiskLevel:       domain.RiskMedium,
			Recommendation:  domain.RecommendManualReview,
			ConfidenceLevel: 85,
		}

		if err := c.SetScore(ctx, "demand-001", score, time.Minute); err != nil {
			t.Fatalf("SetScore failed: %v", err)
		}

		cached, err := c.GetScore(ctx, "demand-001")
		if err != nil {
			t.Fatalf("GetScore failed: %v", err)
		}
		if cached == nil {
			t.Fatal("expected cached score")
		}
		if cached.ScoreValue != 720 {
			t.Errorf("expected ScoreValue 720, got %d", cached.ScoreValue)
		}
		if cached.RiskLevel != domain.RiskMedium {
			t.Errorf("expected RiskLevel %s, got %s", domain.RiskMedium, cached.RiskLevel)
		}
	})

	t.Run("ScoreInvalidationByKey", func(t *testing.T) {
		c := NewLRUCache(100)
		defer c.Close()

		score := &domain.Score{ID: "score-001", DemandID: "demand-001", ScoreValue: 500}
		c.SetScore(ctx, "demand-001", score, time.Minute)

		// Raw-key invalidation must hit the same entry SetScore wrote
		if err := c.Delete(ctx, "score:demand-001"); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}

		cached, _ := c.GetScore(ctx, "demand-001")
		if cached != nil {
			t.Error("expected score to be invalidated")
		}
	})
}

func TestNewCacheFactory(t *testing.T) {
	t.Run("Memory", func(t *testing.T) {
		c, err := New(domain.CacheConfig{Type: "memory", LocalMaxSize: 10})
		if err != nil {
			t.Fatalf("New failed: %v", err)
		}
		defer c.Close()

		if _, ok := c.(*LRUCache); !ok {
			t.Errorf("expected *LRUCache, got %T", c)
		}
	})

	t.Run("Unsupported", func(t *testing.T) {
		_, err := New(domain.CacheConfig{Type: "memcached"})
		if err == nil {
			t.Error("expected error for unsupported cache type")
		}
	})
}
