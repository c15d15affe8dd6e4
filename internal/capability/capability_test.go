package capability

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
)

type countingProvider struct {
	name  string
	out   string
	err   error
	calls int
}

func (p *countingProvider) Name() string { return p.name }

func (p *countingProvider) Invoke(context.Context, string, Options) (string, error) {
	p.calls++
	return p.out, p.err
}

func TestRegistryGetByNameAndAlias(t *testing.T) {
	r := NewRegistry()
	p := &countingProvider{name: NameKnowledge}
	r.Register(p, "answer")

	got, err := r.Get(NameKnowledge)
	if err != nil || got != p {
		t.Fatalf("Get(%s) = %v, %v", NameKnowledge, got, err)
	}
	if got, err := r.Get("Answer"); err != nil || got != p {
		t.Errorf("alias lookup should be case-insensitive: %v, %v", got, err)
	}
	if _, err := r.Get("unknown"); err == nil {
		t.Errorf("Get(unknown) should fail")
	}
}

func TestRegistryNamesFollowPriorityOrder(t *testing.T) {
	r := NewRegistry()
	r.Register(&countingProvider{name: NameSummarize})
	r.Register(&countingProvider{name: NameWebSearch})
	r.Register(&countingProvider{name: NameKnowledge})

	names := r.Names()
	want := []string{NameWebSearch, NameKnowledge, NameSummarize}
	if len(names) != len(want) {
		t.Fatalf("Names() = %v", names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("names[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}

func TestCachedShortCircuitsRepeatQueries(t *testing.T) {
	inner := &countingProvider{name: NameKnowledge, out: "the answer"}
	cached := WithCache(inner, NewMemoryCache(), time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		out, err := cached.Invoke(ctx, "what is Go", Options{})
		if err != nil || out != "the answer" {
			t.Fatalf("Invoke #%d = %q, %v", i, out, err)
		}
	}
	if inner.calls != 1 {
		t.Errorf("inner called %d times for identical queries, want 1", inner.calls)
	}

	// A different query misses the cache.
	if _, err := cached.Invoke(ctx, "what is Rust", Options{}); err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if inner.calls != 2 {
		t.Errorf("inner called %d times, want 2", inner.calls)
	}
}

func TestCachedNeverCachesErrors(t *testing.T) {
	inner := &countingProvider{name: NameKnowledge, err: errors.New("backend down")}
	cached := WithCache(inner, NewMemoryCache(), time.Minute)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := cached.Invoke(ctx, "q", Options{}); err == nil {
			t.Fatalf("Invoke #%d should propagate the error", i)
		}
	}
	if inner.calls != 2 {
		t.Errorf("inner called %d times, want 2: errors must not be cached", inner.calls)
	}

	// Once the backend recovers, the first success is memoized.
	inner.err = nil
	inner.out = "recovered"
	cached.Invoke(ctx, "q", Options{})
	cached.Invoke(ctx, "q", Options{})
	if inner.calls != 3 {
		t.Errorf("inner called %d times after recovery, want 3", inner.calls)
	}
}

func TestMemoryCacheExpiry(t *testing.T) {
	current := time.Now()
	c := NewMemoryCache()
	c.now = func() time.Time { return current }
	ctx := context.Background()

	c.Set(ctx, "k", "v", time.Minute)
	if v, ok := c.Get(ctx, "k"); !ok || v != "v" {
		t.Fatalf("Get before expiry = %q, %v", v, ok)
	}

	current = current.Add(2 * time.Minute)
	if _, ok := c.Get(ctx, "k"); ok {
		t.Errorf("Get after expiry should miss")
	}
	if _, ok := c.entries["k"]; ok {
		t.Errorf("expired entry should be evicted on read, not retained")
	}
}

func TestCacheKeySeparatesProviders(t *testing.T) {
	if cacheKey(NameWebSearch, "q") == cacheKey(NameKnowledge, "q") {
		t.Errorf("cache keys must differ per provider")
	}
	if cacheKey(NameWebSearch, "a") == cacheKey(NameWebSearch, "b") {
		t.Errorf("cache keys must differ per query")
	}
}

const searchResultsHTML = `
<html><body>
  <div class="result">
    <a class="result__a" href="https://go.dev">The Go Programming Language</a>
    <div class="result__snippet">Build simple, secure, scalable systems with Go.</div>
  </div>
  <div class="result">
    <a class="result__a" href="https://pkg.go.dev">Go Packages</a>
    <div class="result__snippet">Search and discover Go packages.</div>
  </div>
  <div class="result"></div>
</body></html>`

func TestRenderResults(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(searchResultsHTML))
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}

	out, err := renderResults(doc, "golang")
	if err != nil {
		t.Fatalf("renderResults: %v", err)
	}
	for _, want := range []string{
		`Search results for "golang":`,
		"1. The Go Programming Language",
		"Build simple, secure, scalable systems with Go.",
		"https://go.dev",
		"2. Go Packages",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderResultsEmpty(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<html><body></body></html>"))
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}

	_, err = renderResults(doc, "nothing")
	if err == nil || !strings.Contains(err.Error(), "no results found") {
		t.Errorf("renderResults on empty page = %v, want a no-results error", err)
	}
}
