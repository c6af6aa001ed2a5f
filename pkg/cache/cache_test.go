package cache

import (
	"testing"
	"time"
)

func TestMemorySetGet(t *testing.T) {
	m := NewMemory()
	m.Set("k", []byte("v"), time.Minute)
	got, ok := m.Get("k")
	if !ok {
		t.Fatal("expected hit")
	}
	if string(got) != "v" {
		t.Fatalf("got %q, want %q", got, "v")
	}
}

func TestMemoryMiss(t *testing.T) {
	m := NewMemory()
	if _, ok := m.Get("absent"); ok {
		t.Fatal("expected miss")
	}
}

func TestMemoryExpiry(t *testing.T) {
	m := NewMemory()
	m.Set("k", []byte("v"), 10*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	if _, ok := m.Get("k"); ok {
		t.Fatal("expected entry to expire")
	}
}

func TestMemoryNonPositiveTTL(t *testing.T) {
	m := NewMemory()
	m.Set("zero", []byte("v"), 0)
	m.Set("neg", []byte("v"), -time.Second)
	if _, ok := m.Get("zero"); ok {
		t.Fatal("zero ttl must not store")
	}
	if _, ok := m.Get("neg"); ok {
		t.Fatal("negative ttl must not store")
	}
}

func TestMemoryOverwrite(t *testing.T) {
	m := NewMemory()
	m.Set("k", []byte("old"), time.Minute)
	m.Set("k", []byte("new"), time.Minute)
	got, ok := m.Get("k")
	if !ok || string(got) != "new" {
		t.Fatalf("got %q ok=%v, want new entry", got, ok)
	}
}
