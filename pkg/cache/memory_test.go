package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemorySetAndGet(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	_ = m.Set(ctx, "key1", "value1", time.Second)
	val, err := m.Get(ctx, "key1")
	if err != nil || val != "value1" {
		t.Fatalf("expected value1, got %q, err=%v", val, err)
	}
}

func TestMemoryExpiration(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	m := NewMemory()
	m.now = func() time.Time { return now }
	ctx := context.Background()

	_ = m.Set(ctx, "key1", "value1", 100*time.Millisecond)
	now = now.Add(150 * time.Millisecond)
	if _, err := m.Get(ctx, "key1"); !errors.Is(err, ErrMiss) {
		t.Fatalf("expected expired key to miss, got %v", err)
	}
	if removed := m.Sweep(); removed != 1 || m.Len() != 0 {
		t.Fatalf("expected sweep to remove the expired entry, removed=%d len=%d", removed, m.Len())
	}
}

func TestMemoryDelete(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	_ = m.Set(ctx, "key1", "value1", time.Second)
	_ = m.Set(ctx, "key2", "value2", time.Second)
	_ = m.Delete(ctx, "key1", "key2")
	if m.Len() != 0 {
		t.Fatalf("expected deleted keys to be gone, len=%d", m.Len())
	}
}

func TestMemoryDeletePrefix(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	_ = m.Set(ctx, "citas:all", "[]", time.Second)
	_ = m.Set(ctx, "citas:id:1", "{}", time.Second)
	_ = m.Set(ctx, "medicos:all", "[]", time.Second)
	_ = m.DeletePrefix(ctx, Appointments.Prefix())

	if _, err := m.Get(ctx, "citas:all"); !errors.Is(err, ErrMiss) {
		t.Fatalf("expected citas:all to be invalidated")
	}
	if _, err := m.Get(ctx, "citas:id:1"); !errors.Is(err, ErrMiss) {
		t.Fatalf("expected citas:id:1 to be invalidated")
	}
	if _, err := m.Get(ctx, "medicos:all"); err != nil {
		t.Fatalf("expected medicos:all to still exist")
	}
}
