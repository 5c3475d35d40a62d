package cache

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit {
		t.Error("NullCache.Get should always return miss")
	}
	if data != nil {
		t.Error("NullCache.Get should return nil data")
	}

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}
	if _, hit, _ = c.Get(ctx, "key"); hit {
		t.Error("NullCache should not store data")
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	if err := c.Set(ctx, "svg", []byte("<svg/>"), time.Hour); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, hit, err := c.Get(ctx, "svg")
	if err != nil || !hit || string(data) != "<svg/>" {
		t.Errorf("Get = (%q, %v, %v), want (<svg/>, true, nil)", data, hit, err)
	}

	if err := c.Set(ctx, "old", []byte("x"), time.Nanosecond); err != nil {
		t.Fatal(err)
	}
	time.Sleep(time.Millisecond)
	if _, hit, _ := c.Get(ctx, "old"); hit {
		t.Error("expired entry should miss")
	}

	if err := c.Delete(ctx, "svg"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "svg"); hit {
		t.Error("deleted entry should miss")
	}
	if err := c.Delete(ctx, "svg"); err != nil {
		t.Errorf("second Delete: %v", err)
	}
}

func TestFileCacheClear(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	for _, k := range []string{"a", "b", "c"} {
		if err := c.Set(ctx, k, []byte(k), 0); err != nil {
			t.Fatal(err)
		}
	}
	if err := c.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	for _, k := range []string{"a", "b", "c"} {
		if _, hit, _ := c.Get(ctx, k); hit {
			t.Errorf("%s survived Clear", k)
		}
	}
}

func TestRedisCache(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	c, err := NewRedisCache(ctx, "redis://"+mr.Addr(), "dm:")
	if err != nil {
		t.Fatalf("NewRedisCache: %v", err)
	}
	defer c.Close()

	if _, hit, err := c.Get(ctx, "k"); hit || err != nil {
		t.Errorf("Get missing = (%v, %v), want miss", hit, err)
	}
	if err := c.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatal(err)
	}
	if !mr.Exists("dm:k") {
		t.Error("prefixed key missing")
	}
	data, hit, err := c.Get(ctx, "k")
	if err != nil || !hit || string(data) != "v" {
		t.Errorf("Get = (%q, %v, %v)", data, hit, err)
	}

	mr.FastForward(2 * time.Minute)
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("entry should expire")
	}
}

func TestFetch(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	calls := 0
	compute := func() ([]byte, error) {
		calls++
		return []byte("out"), nil
	}

	data, hit, err := Fetch(ctx, c, "k", "svg", time.Hour, compute)
	if err != nil || hit || string(data) != "out" {
		t.Fatalf("first Fetch = (%q, %v, %v)", data, hit, err)
	}
	data, hit, err = Fetch(ctx, c, "k", "svg", time.Hour, compute)
	if err != nil || !hit || string(data) != "out" {
		t.Fatalf("second Fetch = (%q, %v, %v)", data, hit, err)
	}
	if calls != 1 {
		t.Errorf("compute calls = %d, want 1", calls)
	}

	boom := errors.New("boom")
	if _, _, err := Fetch(ctx, c, "other", "svg", time.Hour, func() ([]byte, error) { return nil, boom }); !errors.Is(err, boom) {
		t.Errorf("err = %v, want boom", err)
	}
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("hello"))
	h2 := Hash([]byte("hello"))
	if h1 != h2 {
		t.Error("Hash should be deterministic")
	}
	if h1 == Hash([]byte("world")) {
		t.Error("Different inputs should produce different hashes")
	}
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	gk1 := k.GraphKey("rev1", "c=;e=;i=;o=")
	gk2 := k.GraphKey("rev1", "c=items;e=;i=;o=")
	if gk1 == gk2 {
		t.Error("Different visibility should produce different keys")
	}
	if !strings.HasPrefix(gk1, "graph:") {
		t.Errorf("GraphKey unexpected: %s", gk1)
	}

	ak1 := k.ArtifactKey(gk1, ArtifactKeyOpts{Format: "svg"})
	ak2 := k.ArtifactKey(gk1, ArtifactKeyOpts{Format: "png"})
	ak3 := k.ArtifactKey(gk1, ArtifactKeyOpts{Format: "svg", Detailed: true})
	if ak1 == ak2 || ak1 == ak3 {
		t.Error("Different ArtifactKeyOpts should produce different keys")
	}
}

func TestScopedKeyer(t *testing.T) {
	scoped := NewScopedKeyer(NewDefaultKeyer(), "orders")

	gk := scoped.GraphKey("rev", "")
	if !strings.HasPrefix(gk, "orders/graph:") {
		t.Errorf("GraphKey = %s, want orders/graph: prefix", gk)
	}
	ak := scoped.ArtifactKey(gk, ArtifactKeyOpts{Format: "svg"})
	if !strings.HasPrefix(ak, "orders/artifact:") {
		t.Errorf("ArtifactKey = %s, want orders/artifact: prefix", ak)
	}

	// Another root with the same revision and view gets distinct keys.
	other := NewScopedKeyer(NewDefaultKeyer(), "invoices")
	if other.ArtifactKey(other.GraphKey("rev", ""), ArtifactKeyOpts{Format: "svg"}) == ak {
		t.Error("roots should not share artifact keys")
	}
}

func TestScopedKeyerNilInner(t *testing.T) {
	scoped := NewScopedKeyer(nil, "x")
	if key := scoped.GraphKey("rev", ""); !strings.HasPrefix(key, "x/graph:") {
		t.Errorf("GraphKey with nil inner = %s", key)
	}
}

func TestJoinIsUnambiguous(t *testing.T) {
	if string(join("ab", "c")) == string(join("a", "bc")) {
		t.Error("join should separate part boundaries")
	}
}

func TestFileCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Set(ctx, "k", []byte("data"), 0); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(c.path("k"), []byte("garbage"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, hit, err := c.Get(ctx, "k"); hit || err != nil {
		t.Errorf("corrupt entry Get = (%v, %v), want miss", hit, err)
	}
	if _, err := os.Stat(c.path("k")); !os.IsNotExist(err) {
		t.Error("corrupt entry should be removed")
	}
}

func TestFileCacheExpiryClock(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	now := time.Unix(1000, 0)
	c.now = func() time.Time { return now }

	if err := c.Set(ctx, "k", []byte("png\x00bytes\n"), time.Minute); err != nil {
		t.Fatal(err)
	}
	data, hit, _ := c.Get(ctx, "k")
	if !hit || string(data) != "png\x00bytes\n" {
		t.Errorf("Get = (%q, %v), want binary data back", data, hit)
	}
	now = now.Add(time.Minute)
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("entry should expire at its ttl")
	}
}
