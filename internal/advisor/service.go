package advisor

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bu-planner/backend/internal/ai"
	"github.com/bu-planner/backend/internal/cache/redis"
	"github.com/bu-planner/backend/internal/catalog"
	"github.com/bu-planner/backend/internal/metrics"
	"github.com/bu-planner/backend/internal/storage/models"
	"github.com/bu-planner/backend/internal/storage/sqlite"
	"github.com/bu-planner/backend/pkg/logger"
	"github.com/bu-planner/backend/pkg/utils"
)

// Service fronts the scoring engine with the career table, an optional plan
// cache, and request telemetry. Preset careers are answered by the engine;
// free-form career goals go through the AI gateway.
type Service struct {
	engine   *Engine
	store    *catalog.Store
	careers  *catalog.CareerTable
	gateway  ai.Gateway
	cache    *redis.Client
	db       *sqlite.Client
	cacheTTL time.Duration
}

func NewService(engine *Engine, store *catalog.Store, careers *catalog.CareerTable, gateway ai.Gateway, cache *redis.Client, db *sqlite.Client, cacheTTL time.Duration) *Service {
	return &Service{
		engine:   engine,
		store:    store,
		careers:  careers,
		gateway:  gateway,
		cache:    cache,
		db:       db,
		cacheTTL: cacheTTL,
	}
}

func (s *Service) Careers() []catalog.CareerProfile {
	return s.careers.All()
}

// IsPreset reports whether the career name is in the preset table.
func (s *Service) IsPreset(career string) bool {
	_, ok := s.careers.Get(career)
	return ok
}

// Recommend answers a preset career from the scoring engine, read-through
// cached when a cache is configured.
func (s *Service) Recommend(ctx context.Context, career string, maxCourses int) (*PlanRecommendation, error) {
	profile, ok := s.careers.Get(career)
	if !ok {
		return nil, fmt.Errorf("%w: unknown career %q", ErrInvalidInput, career)
	}

	start := time.Now()
	cacheKey := utils.CacheKey(profile.Name, fmt.Sprintf("%d", maxCourses))

	if s.cache != nil {
		var cached PlanRecommendation
		hit, err := s.cache.GetPlan(ctx, cacheKey, &cached)
		if err != nil {
			logger.Warn("Plan cache read failed", zap.Error(err))
		} else if hit {
			s.record(&cached, maxCourses, true, start)
			return &cached, nil
		}
	}

	plan, err := s.engine.Recommend(profile, s.store.All(), maxCourses)
	if err != nil {
		metrics.AdvisorRequestsTotal.WithLabelValues("invalid").Inc()
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetPlan(ctx, cacheKey, plan, s.cacheTTL); err != nil {
			logger.Warn("Plan cache write failed", zap.Error(err))
		}
	}

	s.record(plan, maxCourses, false, start)
	return plan, nil
}

func (s *Service) record(plan *PlanRecommendation, maxCourses int, cacheHit bool, start time.Time) {
	metrics.AdvisorRequestsTotal.WithLabelValues("ok").Inc()
	metrics.AdvisorCoverage.Observe(float64(plan.CoveragePercent))

	if s.db == nil {
		return
	}
	rec := &models.AdvisorRequest{
		ID:              uuid.New().String(),
		Career:          plan.Career,
		MaxCourses:      maxCourses,
		CoveragePercent: plan.CoveragePercent,
		CourseCount:     len(plan.Courses),
		CacheHit:        cacheHit,
		LatencyMS:       int(time.Since(start).Milliseconds()),
		CreatedAt:       time.Now(),
	}
	if err := s.db.InsertAdvisorRequest(rec); err != nil {
		logger.Warn("Failed to record advisor request", zap.Error(err))
	}
}
