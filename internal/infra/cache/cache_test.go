package cache_test

import (
	"testing"
	"time"

	"github.com/madecentro/cartera-bfa-go/internal/infra/cache"
)

func TestSetGet(t *testing.T) {
	c := cache.New[string](time.Minute)

	c.Set("k", "v")
	got, ok := c.Get("k")
	if !ok {
		t.Fatal("expected hit")
	}
	if got != "v" {
		t.Errorf("expected 'v', got %q", got)
	}
}

func TestGetMissing(t *testing.T) {
	c := cache.New[int](time.Minute)

	if _, ok := c.Get("nope"); ok {
		t.Error("expected miss for unknown key")
	}
}

func TestExpiry(t *testing.T) {
	c := cache.New[string](20 * time.Millisecond)

	c.Set("k", "v")
	time.Sleep(40 * time.Millisecond)

	if _, ok := c.Get("k"); ok {
		t.Error("expected entry to expire")
	}
}

func TestDelete(t *testing.T) {
	c := cache.New[string](time.Minute)

	c.Set("k", "v")
	c.Delete("k")

	if _, ok := c.Get("k"); ok {
		t.Error("expected miss after delete")
	}
}
