package usecases

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/samirrijal/geomeasure/internal/core/domain"
	"github.com/samirrijal/geomeasure/internal/core/ports"
	"github.com/samirrijal/geomeasure/internal/pkg/metrics"
)

// PreferenceService remembers unit toggles per client so a reconnecting map
// keeps its km/mi and deg/rad selection.
type PreferenceService struct {
	cache    ports.CacheService
	defaults domain.UnitPreference
	ttl      int
}

// NewPreferenceService creates a new PreferenceService. cache may be nil, in
// which case every client gets the defaults.
func NewPreferenceService(cache ports.CacheService, defaults domain.UnitPreference, ttlSeconds int) *PreferenceService {
	if defaults.Distance == "" {
		defaults.Distance = domain.Kilometers
	}
	if defaults.Angle == "" {
		defaults.Angle = domain.Degrees
	}
	return &PreferenceService{cache: cache, defaults: defaults, ttl: ttlSeconds}
}

// Defaults returns the configured default toggles.
func (s *PreferenceService) Defaults() domain.UnitPreference {
	return s.defaults
}

// Load returns the stored toggles for clientID, or the defaults. It never fails.
func (s *PreferenceService) Load(ctx context.Context, clientID string) domain.UnitPreference {
	if s.cache == nil || clientID == "" {
		return s.defaults
	}

	data, err := s.cache.Get(ctx, cacheKey(clientID))
	if errors.Is(err, domain.ErrCacheMiss) {
		metrics.PreferenceLookups.WithLabelValues("miss").Inc()
		return s.defaults
	}
	if err != nil {
		metrics.PreferenceLookups.WithLabelValues("error").Inc()
		slog.Warn("unit preference lookup failed", "client_id", clientID, "error", err)
		return s.defaults
	}
	metrics.PreferenceLookups.WithLabelValues("hit").Inc()

	var prefs domain.UnitPreference
	if err := json.Unmarshal(data, &prefs); err != nil {
		slog.Warn("discarding unreadable unit preference", "client_id", clientID, "error", err)
		return s.defaults
	}
	out := s.defaults
	if u, err := domain.ParseDistanceUnit(string(prefs.Distance)); err == nil {
		out.Distance = u
	}
	if u, err := domain.ParseAngleUnit(string(prefs.Angle)); err == nil {
		out.Angle = u
	}
	return out
}

// Save stores the toggles for clientID.
func (s *PreferenceService) Save(ctx context.Context, clientID string, prefs domain.UnitPreference) error {
	if s.cache == nil || clientID == "" {
		return nil
	}
	data, err := json.Marshal(prefs)
	if err != nil {
		return err
	}
	return s.cache.Set(ctx, cacheKey(clientID), data, s.ttl)
}

// Forget drops the stored toggles for clientID.
func (s *PreferenceService) Forget(ctx context.Context, clientID string) error {
	if s.cache == nil || clientID == "" {
		return nil
	}
	return s.cache.Delete(ctx, cacheKey(clientID))
}

func cacheKey(clientID string) string {
	return "prefs:units:" + clientID
}
