package utils_test

import (
	"testing"
	"time"

	"investmentapp/src/utils"
)

func TestCache(t *testing.T) {
	t.Run("should return the cached string value if valid", func(t *testing.T) {
		cache := utils.NewCache[string]()
		cache.Set("key", "test value", 1*time.Minute)

		value, found := cache.Get("key")
		if !found || value != "test value" {
			t.Error("expected 'test value', got", value)
		}
	})

	t.Run("should return a zero value if the cache is expired", func(t *testing.T) {
		cache := utils.NewCache[string]()
		cache.Set("key", "test value", 10*time.Millisecond)
		time.Sleep(50 * time.Millisecond)

		value, found := cache.Get("key")
		if found {
			t.Error("expected cache miss, got", value)
		}
	})

	t.Run("should keep keys apart", func(t *testing.T) {
		cache := utils.NewCache[int]()
		cache.Set("a", 1, time.Minute)
		cache.Set("b", 2, time.Minute)

		if v, _ := cache.Get("a"); v != 1 {
			t.Error("expected 1, got", v)
		}
		cache.Delete("a")
		if _, found := cache.Get("a"); found {
			t.Error("expected miss after delete")
		}
		if v, _ := cache.Get("b"); v != 2 {
			t.Error("expected 2, got", v)
		}
	})

	t.Run("should clear every key", func(t *testing.T) {
		cache := utils.NewCache[string]()
		cache.Set("a", "x", time.Minute)
		cache.Set("b", "y", time.Minute)
		cache.Clear()

		if _, found := cache.Get("a"); found {
			t.Error("expected miss after clear")
		}
		if _, found := cache.Get("b"); found {
			t.Error("expected miss after clear")
		}
	})
}
