package modelcache

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type model struct {
	name string
}

func TestGetOrLoad_LoadsOnce(t *testing.T) {
	var loads atomic.Int64
	cache := New(func(_ context.Context, name string) (*model, error) {
		loads.Add(1)
		return &model{name: name}, nil
	})

	m1, err := cache.GetOrLoad(context.Background(), "base")
	if err != nil {
		t.Fatal(err)
	}
	m2, err := cache.GetOrLoad(context.Background(), "base")
	if err != nil {
		t.Fatal(err)
	}
	if m1 != m2 {
		t.Error("expected the same instance for repeated gets")
	}
	if got := loads.Load(); got != 1 {
		t.Errorf("expected 1 load, got %d", got)
	}
}

func TestGetOrLoad_ConcurrentSameKey(t *testing.T) {
	var loads atomic.Int64
	cache := New(func(_ context.Context, name string) (*model, error) {
		loads.Add(1)
		time.Sleep(10 * time.Millisecond) // widen the race window
		return &model{name: name}, nil
	})

	const n = 32
	results := make([]*model, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			m, err := cache.GetOrLoad(context.Background(), "base")
			if err != nil {
				t.Error(err)
				return
			}
			results[i] = m
		}(i)
	}
	wg.Wait()

	if got := loads.Load(); got != 1 {
		t.Errorf("expected exactly 1 load for %d concurrent callers, got %d", n, got)
	}
	for i := 1; i < n; i++ {
		if results[i] != results[0] {
			t.Fatalf("caller %d received a different instance", i)
		}
	}
}

func TestGetOrLoad_DistinctKeysLoadSeparately(t *testing.T) {
	var loads atomic.Int64
	cache := New(func(_ context.Context, name string) (*model, error) {
		loads.Add(1)
		return &model{name: name}, nil
	})

	a, err := cache.GetOrLoad(context.Background(), "small.en")
	if err != nil {
		t.Fatal(err)
	}
	b, err := cache.GetOrLoad(context.Background(), "large-v3")
	if err != nil {
		t.Fatal(err)
	}
	if a == b {
		t.Error("distinct keys must yield distinct instances")
	}
	if got := loads.Load(); got != 2 {
		t.Errorf("expected 2 loads, got %d", got)
	}
	if cache.Len() != 2 {
		t.Errorf("expected 2 entries, got %d", cache.Len())
	}
}

func TestGetOrLoad_FailureIsNotMemoized(t *testing.T) {
	var loads atomic.Int64
	cache := New(func(_ context.Context, _ string) (*model, error) {
		loads.Add(1)
		return nil, fmt.Errorf("backend dependency missing")
	})

	if _, err := cache.GetOrLoad(context.Background(), "base"); err == nil {
		t.Fatal("expected first load to fail")
	}
	if _, err := cache.GetOrLoad(context.Background(), "base"); err == nil {
		t.Fatal("expected second load to fail")
	}
	if got := loads.Load(); got != 2 {
		t.Errorf("expected the loader to run twice, got %d", got)
	}
	if cache.Len() != 0 {
		t.Errorf("failed loads must leave no entry, got %d", cache.Len())
	}
}

func TestGetOrLoad_RecoversAfterFailure(t *testing.T) {
	var loads atomic.Int64
	cache := New(func(_ context.Context, name string) (*model, error) {
		if loads.Add(1) == 1 {
			return nil, fmt.Errorf("transient failure")
		}
		return &model{name: name}, nil
	})

	if _, err := cache.GetOrLoad(context.Background(), "base"); err == nil {
		t.Fatal("expected first load to fail")
	}
	m, err := cache.GetOrLoad(context.Background(), "base")
	if err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
	if m == nil || m.name != "base" {
		t.Errorf("unexpected model %+v", m)
	}
}

func TestGetOrLoad_WaitersShareLoadFailure(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	cache := New(func(_ context.Context, _ string) (*model, error) {
		close(started)
		<-release
		return nil, fmt.Errorf("load failed")
	})

	errs := make(chan error, 2)
	go func() {
		_, err := cache.GetOrLoad(context.Background(), "base")
		errs <- err
	}()
	<-started
	go func() {
		_, err := cache.GetOrLoad(context.Background(), "base")
		errs <- err
	}()
	// Give the second caller time to park on the in-flight entry.
	time.Sleep(5 * time.Millisecond)
	close(release)

	for i := 0; i < 2; i++ {
		if err := <-errs; err == nil {
			t.Error("expected both callers to observe the load failure")
		}
	}
	if cache.Len() != 0 {
		t.Errorf("failed load must not remain visible, got %d entries", cache.Len())
	}
}

func TestGetOrLoad_WaiterHonorsContext(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	cache := New(func(_ context.Context, name string) (*model, error) {
		close(started)
		<-release
		return &model{name: name}, nil
	})

	go cache.GetOrLoad(context.Background(), "base")
	<-started

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := cache.GetOrLoad(ctx, "base"); err != context.Canceled {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	close(release)
}
