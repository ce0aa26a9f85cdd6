//go:build integration
// +build integration

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/jmwislek/order-notify-service/internal/models"
)

// TestMemcached_GetSet_Integration verifies that Memcached successfully
// stores and retrieves readings when a memcached server is available.
func TestMemcached_GetSet_Integration(t *testing.T) {
	c, err := NewMemcached("localhost:11211", 500*time.Millisecond, 2)
	if err != nil {
		t.Fatalf("NewMemcached() error = %v", err)
	}
	defer c.Close()

	ctx := context.Background()
	val := models.WeatherReading{City: "madrid", Temperature: 24.5, GoodWeather: true}
	if err := c.Set(ctx, "madrid", val, time.Minute); err != nil {
		t.Skipf("Set failed (memcached may not be running): %v", err)
	}

	got, ok, err := c.Get(ctx, "madrid")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !ok {
		t.Fatal("Get() ok = false, want true")
	}
	if got.City != val.City || got.Temperature != val.Temperature {
		t.Errorf("Get() = %+v, want %+v", got, val)
	}
}

// TestMemcached_Get_Miss_Integration verifies that Memcached returns
// ok=false when the requested key does not exist in memcached.
func TestMemcached_Get_Miss_Integration(t *testing.T) {
	c, err := NewMemcached("localhost:11211", 500*time.Millisecond, 2)
	if err != nil {
		t.Fatalf("NewMemcached() error = %v", err)
	}
	defer c.Close()

	ctx := context.Background()
	_, ok, err := c.Get(ctx, "nonexistent")
	if err != nil {
		t.Skipf("Get failed (memcached may not be running): %v", err)
	}
	if ok {
		t.Error("Get() ok = true, want false for miss")
	}
}
