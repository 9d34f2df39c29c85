package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/academic-portal-api/internal/models"
	appErrors "github.com/noah-isme/academic-portal-api/pkg/errors"
)

// DashboardSummaryKey is the cache key holding the aggregated status counts.
const DashboardSummaryKey = "dashboard:summary"

type statusCounter interface {
	CountByStatus(ctx context.Context) ([]models.StatusCount, error)
}

// DashboardServiceConfig tunes dashboard behaviour.
type DashboardServiceConfig struct {
	CacheTTL time.Duration
}

// DashboardServiceParams groups constructor dependencies.
type DashboardServiceParams struct {
	Applicants statusCounter
	Students   statusCounter
	Results    statusCounter
	Payments   statusCounter
	Cache      *CacheService
	Logger     *zap.Logger
	Config     DashboardServiceConfig
}

// DashboardService composes status counts across every workflow domain.
type DashboardService struct {
	applicants statusCounter
	students   statusCounter
	results    statusCounter
	payments   statusCounter
	cache      *CacheService
	logger     *zap.Logger
	now        func() time.Time
	cfg        DashboardServiceConfig
}

// NewDashboardService constructs a DashboardService with sane defaults.
func NewDashboardService(params DashboardServiceParams) *DashboardService {
	cfg := params.Config
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{
		applicants: params.Applicants,
		students:   params.Students,
		results:    params.Results,
		payments:   params.Payments,
		cache:      params.Cache,
		logger:     logger,
		now:        time.Now,
		cfg:        cfg,
	}
}

// Summary returns the status counts, served from cache when possible.
func (s *DashboardService) Summary(ctx context.Context) (*models.DashboardSummary, error) {
	if s.cache != nil {
		var cached models.DashboardSummary
		hit, err := s.cache.Get(ctx, DashboardSummaryKey, &cached)
		if err != nil {
			s.logger.Debug("dashboard cache unavailable, composing", zap.Error(err))
		} else if hit {
			cached.FromCache = true
			return &cached, nil
		}
	}

	summary, err := s.compose(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, DashboardSummaryKey, summary, s.cfg.CacheTTL); err != nil {
			s.logger.Warn("dashboard cache write failed", zap.Error(err))
		}
	}
	return summary, nil
}

// Invalidate drops the cached summary. Errors are logged only.
func (s *DashboardService) Invalidate(ctx context.Context) {
	if s == nil || s.cache == nil {
		return
	}
	_ = s.cache.Invalidate(context.WithoutCancel(ctx), DashboardSummaryKey)
}

func (s *DashboardService) compose(ctx context.Context) (*models.DashboardSummary, error) {
	summary := &models.DashboardSummary{GeneratedAt: s.now().UTC()}
	var err error
	if summary.Applicants, err = s.count(ctx, "applicants", s.applicants); err != nil {
		return nil, err
	}
	if summary.Students, err = s.count(ctx, "students", s.students); err != nil {
		return nil, err
	}
	if summary.ResultBatch, err = s.count(ctx, "result_batches", s.results); err != nil {
		return nil, err
	}
	if summary.Payments, err = s.count(ctx, "payments", s.payments); err != nil {
		return nil, err
	}
	return summary, nil
}

func (s *DashboardService) count(ctx context.Context, source string, counter statusCounter) (map[string]int, error) {
	counts := map[string]int{}
	if counter == nil {
		return counts, nil
	}
	rows, err := counter.CountByStatus(ctx)
	if err != nil {
		s.logger.Error("dashboard count failed", zap.String("source", source), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load dashboard summary")
	}
	for _, row := range rows {
		counts[row.Status] += row.Total
	}
	return counts, nil
}
