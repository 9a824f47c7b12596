package usecases_test

import (
	"context"
	"errors"
	"testing"

	"github.com/samirrijal/geomeasure/internal/core/domain"
	"github.com/samirrijal/geomeasure/internal/core/usecases"
)

// --- Mock CacheService ---

type mockCache struct {
	data   map[string][]byte
	ttls   map[string]int
	getErr error
}

func newMockCache() *mockCache {
	return &mockCache{data: map[string][]byte{}, ttls: map[string]int{}}
}

func (m *mockCache) Get(_ context.Context, key string) ([]byte, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	v, ok := m.data[key]
	if !ok {
		return nil, domain.ErrCacheMiss
	}
	return v, nil
}

func (m *mockCache) Set(_ context.Context, key string, value []byte, ttlSeconds int) error {
	m.data[key] = value
	m.ttls[key] = ttlSeconds
	return nil
}

func (m *mockCache) Delete(_ context.Context, key string) error {
	delete(m.data, key)
	return nil
}

// --- Tests ---

func TestPreferenceService_DefaultsFilled(t *testing.T) {
	svc := usecases.NewPreferenceService(nil, domain.UnitPreference{}, 0)

	if got := svc.Defaults(); got != domain.DefaultUnitPreference() {
		t.Errorf("expected km/deg defaults, got %+v", got)
	}
}

func TestPreferenceService_RoundTrip(t *testing.T) {
	cache := newMockCache()
	svc := usecases.NewPreferenceService(cache, domain.DefaultUnitPreference(), 3600)
	ctx := context.Background()

	want := domain.UnitPreference{Distance: domain.Miles, Angle: domain.Radians}
	if err := svc.Save(ctx, "map-1", want); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := svc.Load(ctx, "map-1"); got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
	if cache.ttls["prefs:units:map-1"] != 3600 {
		t.Errorf("expected ttl 3600, got %d", cache.ttls["prefs:units:map-1"])
	}

	if err := svc.Forget(ctx, "map-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := svc.Load(ctx, "map-1"); got != domain.DefaultUnitPreference() {
		t.Errorf("expected defaults after forget, got %+v", got)
	}
}

func TestPreferenceService_LoadFallsBack(t *testing.T) {
	defaults := domain.UnitPreference{Distance: domain.Miles, Angle: domain.Degrees}
	ctx := context.Background()

	t.Run("cache error", func(t *testing.T) {
		cache := newMockCache()
		cache.getErr = errors.New("connection refused")
		svc := usecases.NewPreferenceService(cache, defaults, 60)
		if got := svc.Load(ctx, "map-1"); got != defaults {
			t.Errorf("got %+v", got)
		}
	})

	t.Run("garbage payload", func(t *testing.T) {
		cache := newMockCache()
		cache.data["prefs:units:map-1"] = []byte("{not json")
		svc := usecases.NewPreferenceService(cache, defaults, 60)
		if got := svc.Load(ctx, "map-1"); got != defaults {
			t.Errorf("got %+v", got)
		}
	})

	t.Run("unknown unit keeps default", func(t *testing.T) {
		cache := newMockCache()
		cache.data["prefs:units:map-1"] = []byte(`{"distance":"furlong","angle":"rad"}`)
		svc := usecases.NewPreferenceService(cache, defaults, 60)
		got := svc.Load(ctx, "map-1")
		if got.Distance != domain.Miles || got.Angle != domain.Radians {
			t.Errorf("got %+v", got)
		}
	})

	t.Run("anonymous client", func(t *testing.T) {
		cache := newMockCache()
		svc := usecases.NewPreferenceService(cache, defaults, 60)
		if err := svc.Save(ctx, "", domain.DefaultUnitPreference()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(cache.data) != 0 {
			t.Errorf("expected nothing stored, got %v", cache.data)
		}
	})
}
