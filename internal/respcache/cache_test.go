package respcache

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestKey_Stable(t *testing.T) {
	if Key("hello world") != Key("hello world") {
		t.Error("identical text produced different keys")
	}
	if !strings.HasPrefix(Key("hello"), "llm:") {
		t.Errorf("key %q missing llm: prefix", Key("hello"))
	}
}

func TestKey_Normalizes(t *testing.T) {
	base := Key("hello world")
	variants := []string{"  hello   world  ", "Hello World", "hello\tworld\n"}
	for _, v := range variants {
		if Key(v) != base {
			t.Errorf("Key(%q) != Key(%q)", v, "hello world")
		}
	}
	if Key("hello world") == Key("goodbye world") {
		t.Error("different text produced the same key")
	}
}

func TestMemory_GetSet(t *testing.T) {
	ctx := context.Background()
	c := NewMemory()

	if _, ok, _ := c.Get(ctx, "missing"); ok {
		t.Error("Get on empty cache reported a hit")
	}

	if err := c.Set(ctx, Key("hi"), "hello!", DefaultTTL); err != nil {
		t.Fatalf("Set: %v", err)
	}
	val, ok, err := c.Get(ctx, Key("hi"))
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !ok || val != "hello!" {
		t.Errorf("Get = (%q, %v), want (%q, true)", val, ok, "hello!")
	}
}

func TestMemory_ExpiredEntryIsAbsent(t *testing.T) {
	ctx := context.Background()
	c := NewMemory()

	now := time.Now()
	c.now = func() time.Time { return now }

	if err := c.Set(ctx, "k", "v", time.Hour); err != nil {
		t.Fatalf("Set: %v", err)
	}

	// Still valid just before expiry.
	now = now.Add(59 * time.Minute)
	if _, ok, _ := c.Get(ctx, "k"); !ok {
		t.Error("entry expired before its TTL")
	}

	// Absent after expiry, and lazily removed.
	now = now.Add(2 * time.Minute)
	if _, ok, _ := c.Get(ctx, "k"); ok {
		t.Error("expired entry returned as a hit")
	}
	if c.Len() != 0 {
		t.Errorf("expired entry not removed on lookup, len = %d", c.Len())
	}
}

func TestMemory_OverwriteRefreshes(t *testing.T) {
	ctx := context.Background()
	c := NewMemory()

	c.Set(ctx, "k", "old", time.Hour)
	c.Set(ctx, "k", "new", time.Hour)

	val, ok, _ := c.Get(ctx, "k")
	if !ok || val != "new" {
		t.Errorf("Get = (%q, %v), want (new, true)", val, ok)
	}
	if c.Len() != 1 {
		t.Errorf("len = %d, want 1", c.Len())
	}
}
