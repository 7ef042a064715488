package cron

import (
	"context"
	"strings"
	"testing"
	"time"
)

type memoryRedis struct {
	values map[string]string
	ttls   map[string]time.Duration
}

func newMemoryRedis() *memoryRedis {
	return &memoryRedis{values: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (m *memoryRedis) SetNX(_ context.Context, key string, value any, ttl time.Duration) (bool, error) {
	if _, ok := m.values[key]; ok {
		return false, nil
	}
	m.values[key] = value.(string)
	m.ttls[key] = ttl
	return true, nil
}

func (m *memoryRedis) DeleteIfEquals(_ context.Context, key, value string) (bool, error) {
	if m.values[key] != value {
		return false, nil
	}
	delete(m.values, key)
	return true, nil
}

func TestRedisLockExclusiveAndOwned(t *testing.T) {
	ctx := context.Background()
	store := newMemoryRedis()
	first, err := NewRedisLock(store, "eh:lock:cron", 0)
	if err != nil {
		t.Fatalf("new lock: %v", err)
	}
	second, _ := NewRedisLock(store, "eh:lock:cron", time.Minute)

	if ok, err := first.Acquire(ctx); err != nil || !ok {
		t.Fatalf("first acquire: ok=%v err=%v", ok, err)
	}
	if !strings.Contains(store.values["eh:lock:cron"], ":") {
		t.Fatalf("expected instance-scoped owner token, got %q", store.values["eh:lock:cron"])
	}
	if store.ttls["eh:lock:cron"] != defaultLockTTL {
		t.Fatalf("expected default ttl, got %v", store.ttls["eh:lock:cron"])
	}
	if ok, _ := second.Acquire(ctx); ok {
		t.Fatal("second acquire must fail while held")
	}
	if err := second.Release(ctx); err != nil {
		t.Fatalf("release without ownership: %v", err)
	}
	if _, held := store.values["eh:lock:cron"]; !held {
		t.Fatal("non-owner release must not drop the lock")
	}

	// Simulate expiry and takeover by another worker.
	store.values["eh:lock:cron"] = "someone-else"
	if err := first.Release(ctx); err != nil {
		t.Fatalf("release after takeover: %v", err)
	}
	if store.values["eh:lock:cron"] != "someone-else" {
		t.Fatal("release must not delete a lock owned by another worker")
	}

	delete(store.values, "eh:lock:cron")
	if ok, _ := second.Acquire(ctx); !ok {
		t.Fatal("expected acquire after key vanished")
	}
	if err := second.Release(ctx); err != nil {
		t.Fatalf("owner release: %v", err)
	}
	if _, held := store.values["eh:lock:cron"]; held {
		t.Fatal("owner release should delete the key")
	}
}

func TestNewRedisLockValidation(t *testing.T) {
	if _, err := NewRedisLock(nil, "k", 0); err == nil {
		t.Fatal("expected client requirement")
	}
	if _, err := NewRedisLock(newMemoryRedis(), "", 0); err == nil {
		t.Fatal("expected key requirement")
	}
}
