package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/leadops/lead-dashboard/internal/dashboard"
	"github.com/leadops/lead-dashboard/internal/domain"
	"github.com/leadops/lead-dashboard/internal/events"
	"github.com/leadops/lead-dashboard/internal/observability"
	"github.com/leadops/lead-dashboard/internal/repository"
	apperrors "github.com/leadops/lead-dashboard/pkg/util/errorutil"
)

// DashboardService serves the lead analysis over the current snapshot.
type DashboardService struct {
	store          repository.LeadStore
	cache          *SnapshotCache
	dispatcher     events.Dispatcher
	metrics        *observability.Metrics
	logger         *zap.Logger
	thresholdDays  int
	location       *time.Location
	sampleFallback bool
	now            func() time.Time
}

// DashboardDependencies bundles collaborators for the dashboard service.
type DashboardDependencies struct {
	Store          repository.LeadStore
	Cache          *SnapshotCache
	Dispatcher     events.Dispatcher
	Metrics        *observability.Metrics
	Logger         *zap.Logger
	ThresholdDays  int
	Location       *time.Location
	SampleFallback bool
	Now            func() time.Time
}

// LeadQuery describes one dashboard request.
type LeadQuery struct {
	Facets         dashboard.Facets
	ThresholdDays  int
	SampleFallback *bool
}

// LeadsView is the filtered, annotated lead list.
type LeadsView struct {
	Leads         []dashboard.AnnotatedLead
	Total         int
	IsSample      bool
	ThresholdDays int
	GeneratedAt   time.Time
}

// DelayedView is the delayed-leads list with per-category counts. The
// counts ignore the category facet so every chip keeps its total.
type DelayedView struct {
	LeadsView
	Categories map[dashboard.Category]int
}

// StageCountsView pairs counts with the stage configuration they cover.
type StageCountsView struct {
	Stages []domain.PipelineStage
	Counts dashboard.StageCounts
}

// SummaryView combines the figures shown on the dashboard landing page.
type SummaryView struct {
	StageCountsView
	DelayedByCategory map[dashboard.Category]int
	TotalLeads        int
	VisibleLeads      int
	DelayedLeads      int
	ThresholdDays     int
	GeneratedAt       time.Time
}

// NewDashboardService constructs the service.
func NewDashboardService(deps DashboardDependencies) *DashboardService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	location := deps.Location
	if location == nil {
		location = time.UTC
	}
	threshold := deps.ThresholdDays
	if threshold <= 0 {
		threshold = dashboard.DefaultThresholdDays
	}
	return &DashboardService{
		store:          deps.Store,
		cache:          deps.Cache,
		dispatcher:     deps.Dispatcher,
		metrics:        deps.Metrics,
		logger:         logger,
		thresholdDays:  threshold,
		location:       location,
		sampleFallback: deps.SampleFallback,
		now:            now,
	}
}

// Snapshot returns the merged leads and stages, from cache when possible.
func (s *DashboardService) Snapshot(ctx context.Context) (*Snapshot, error) {
	if s.cache.Enabled() {
		snap, found, err := s.cache.Get(ctx)
		switch {
		case err != nil:
			s.metrics.RecordCacheLookup("error")
			s.logger.Warn("snapshot cache unavailable; reading store", zap.Error(err))
		case found:
			s.metrics.RecordCacheLookup("hit")
			return snap, nil
		default:
			s.metrics.RecordCacheLookup("miss")
		}
	}

	leads, err := s.store.LoadLeads(ctx)
	if err != nil {
		return nil, apperrors.NewUnavailable("lead store", err)
	}
	stages, err := s.store.LoadStages(ctx)
	if err != nil {
		return nil, apperrors.NewUnavailable("lead store", err)
	}
	snap := &Snapshot{Leads: leads, Stages: stages}

	if err := s.cache.Set(ctx, snap); err != nil {
		s.logger.Warn("snapshot cache write failed", zap.Error(err))
	}
	return snap, nil
}

// Invalidate drops the cached snapshot so the next read hits the store.
func (s *DashboardService) Invalidate(ctx context.Context) error {
	return s.cache.Invalidate(ctx)
}

func (s *DashboardService) pipeline(thresholdDays int) dashboard.Pipeline {
	if thresholdDays <= 0 {
		thresholdDays = s.thresholdDays
	}
	return dashboard.Pipeline{ThresholdDays: thresholdDays, Location: s.location}
}

func (s *DashboardService) useSample(q LeadQuery) bool {
	if q.SampleFallback != nil {
		return *q.SampleFallback
	}
	return s.sampleFallback
}

// Leads returns the annotated leads matching the query facets.
func (s *DashboardService) Leads(ctx context.Context, q LeadQuery) (*LeadsView, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	now := s.now()
	p := s.pipeline(q.ThresholdDays)
	filtered := p.Filter(p.Annotate(snap.Leads, now), q.Facets)

	view := &LeadsView{ThresholdDays: p.ThresholdDays, GeneratedAt: now}
	if s.useSample(q) {
		filtered, view.IsSample = p.SampleIfEmpty(filtered, q.Facets, now)
	}
	view.Leads = filtered
	view.Total = len(filtered)
	return view, nil
}

// DelayedLeads returns the delayed subset and per-category counts.
func (s *DashboardService) DelayedLeads(ctx context.Context, q LeadQuery) (*DelayedView, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	now := s.now()
	p := s.pipeline(q.ThresholdDays)

	category := q.Facets.Category
	base := q.Facets
	base.Category = ""
	base.DelayedOnly = true

	delayed := p.Filter(p.Annotate(snap.Leads, now), base)
	isSample := false
	if s.useSample(q) {
		delayed, isSample = p.SampleIfEmpty(delayed, base, now)
	}
	counts := dashboard.CategoryCounts(delayed)
	visible := p.Filter(delayed, dashboard.Facets{Category: category})

	return &DelayedView{
		LeadsView: LeadsView{
			Leads:         visible,
			Total:         len(visible),
			IsSample:      isSample,
			ThresholdDays: p.ThresholdDays,
			GeneratedAt:   now,
		},
		Categories: counts,
	}, nil
}

// StageCounts counts leads per configured stage within [from, to].
func (s *DashboardService) StageCounts(ctx context.Context, from, to string) (*StageCountsView, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return &StageCountsView{
		Stages: snap.Stages,
		Counts: s.pipeline(0).StageCounts(snap.Leads, domain.StageNames(snap.Stages), from, to),
	}, nil
}

// Summary returns stage counts, delayed-category counts and totals. Stage
// counts honour only the date range; category counts honour every facet but
// the category, as in DelayedLeads; the visible total honours every facet.
func (s *DashboardService) Summary(ctx context.Context, q LeadQuery) (*SummaryView, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	now := s.now()
	p := s.pipeline(q.ThresholdDays)
	annotated := p.Annotate(snap.Leads, now)
	visible := p.Filter(annotated, q.Facets)
	delayed := dashboard.DelayedOnly(visible)

	chips := q.Facets
	chips.Category = ""
	chips.DelayedOnly = true
	byCategory := dashboard.CategoryCounts(p.Filter(annotated, chips))

	return &SummaryView{
		StageCountsView: StageCountsView{
			Stages: snap.Stages,
			Counts: p.StageCounts(snap.Leads, domain.StageNames(snap.Stages), q.Facets.DateFrom, q.Facets.DateTo),
		},
		DelayedByCategory: byCategory,
		TotalLeads:        len(snap.Leads),
		VisibleLeads:      len(visible),
		DelayedLeads:      len(delayed),
		ThresholdDays:     p.ThresholdDays,
		GeneratedAt:       now,
	}, nil
}

// Stages returns the effective stage configuration.
func (s *DashboardService) Stages(ctx context.Context) ([]domain.PipelineStage, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return snap.Stages, nil
}

// ReplaceLeads overwrites the primary lead collection and announces the change.
func (s *DashboardService) ReplaceLeads(ctx context.Context, leads []domain.Lead) error {
	if err := s.store.SaveLeads(ctx, leads); err != nil {
		return apperrors.NewUnavailable("lead store", err)
	}
	s.afterWrite(ctx, events.NewEvent(events.EventLeadsChanged, repository.LeadsKey, events.SourceLocal,
		events.LeadsChangedPayload{Count: len(leads)}))
	return nil
}

// ReplaceStages overwrites the stage configuration and announces the change.
func (s *DashboardService) ReplaceStages(ctx context.Context, stages []domain.PipelineStage) error {
	if err := s.store.SaveStages(ctx, stages); err != nil {
		return apperrors.NewUnavailable("lead store", err)
	}
	s.afterWrite(ctx, events.NewEvent(events.EventStagesChanged, repository.StagesKey, events.SourceLocal,
		events.StagesChangedPayload{Names: domain.StageNames(stages)}))
	return nil
}

func (s *DashboardService) afterWrite(ctx context.Context, event events.Event) {
	if err := s.Invalidate(ctx); err != nil {
		s.logger.Warn("snapshot cache invalidation failed", zap.Error(err))
	}
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("change notification failed", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}

// ScopeToOperator forces agents onto their own leads. Admins keep the
// requested employee facet.
func ScopeToOperator(q LeadQuery, operator *domain.Operator) LeadQuery {
	if operator != nil && operator.Role != domain.OperatorRoleAdmin {
		q.Facets.Employee = operator.Name
	}
	return q
}
