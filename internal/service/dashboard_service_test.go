package service_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leadops/lead-dashboard/internal/config"
	"github.com/leadops/lead-dashboard/internal/dashboard"
	"github.com/leadops/lead-dashboard/internal/domain"
	"github.com/leadops/lead-dashboard/internal/events"
	"github.com/leadops/lead-dashboard/internal/repository"
	"github.com/leadops/lead-dashboard/internal/service"
	apperrors "github.com/leadops/lead-dashboard/pkg/util/errorutil"
)

var fixedNow = time.Date(2025, 6, 20, 12, 0, 0, 0, time.UTC)

func daysAgo(n int) string {
	return fixedNow.AddDate(0, 0, -n).Format("2006-01-02")
}

func seedLeads() []domain.Lead {
	return []domain.Lead{
		{ID: "1", Status: domain.LeadStatusNew, LastContact: daysAgo(10), CreatedAt: daysAgo(12), Notes: "no answer", AssignedTo: "Sara"},
		{ID: "2", Status: domain.LeadStatusInProgress, LastContact: daysAgo(9), CreatedAt: daysAgo(20), Notes: "after the meeting", AssignedTo: "Omar"},
		{ID: "3", Status: domain.LeadStatusQualified, LastContact: daysAgo(2), CreatedAt: daysAgo(3), AssignedTo: "Sara"},
		{ID: "4", Status: domain.LeadStatusConverted, LastContact: daysAgo(40), CreatedAt: daysAgo(41), AssignedTo: "Sara"},
		{ID: "5", Status: "archived", LastContact: daysAgo(30), CreatedAt: daysAgo(30), Employee: "Omar"},
	}
}

type fixture struct {
	store      repository.LeadStore
	redis      *miniredis.Miniredis
	dispatcher events.Dispatcher
	svc        *service.DashboardService
}

func newFixture(t *testing.T, sample bool) *fixture {
	t.Helper()
	collections, err := repository.NewFileCollectionStore(t.TempDir())
	require.NoError(t, err)
	store := repository.NewLeadStore(collections, nil)
	require.NoError(t, store.SaveLeads(context.Background(), seedLeads()))

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	dispatcher := events.NewInMemoryDispatcher()
	svc := service.NewDashboardService(service.DashboardDependencies{
		Store:          store,
		Cache:          service.NewSnapshotCache(client, time.Minute),
		Dispatcher:     dispatcher,
		ThresholdDays:  7,
		SampleFallback: sample,
		Now:            func() time.Time { return fixedNow },
	})
	return &fixture{store: store, redis: mr, dispatcher: dispatcher, svc: svc}
}

func leadIDs(leads []dashboard.AnnotatedLead) []domain.LeadID {
	out := make([]domain.LeadID, 0, len(leads))
	for _, l := range leads {
		out = append(out, l.ID)
	}
	return out
}

func TestDashboardService_Leads(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	tests := map[string]struct {
		query service.LeadQuery
		want  []domain.LeadID
	}{
		"NoFacets":          {service.LeadQuery{}, []domain.LeadID{"1", "2", "3", "4", "5"}},
		"Employee":          {service.LeadQuery{Facets: dashboard.Facets{Employee: "Sara"}}, []domain.LeadID{"1", "3", "4"}},
		"EmployeeFallback":  {service.LeadQuery{Facets: dashboard.Facets{Employee: "Omar"}}, []domain.LeadID{"2", "5"}},
		"Stage":             {service.LeadQuery{Facets: dashboard.Facets{StageKey: dashboard.StageKeyPending}}, []domain.LeadID{"2"}},
		"DelayedOnly":       {service.LeadQuery{Facets: dashboard.Facets{DelayedOnly: true}}, []domain.LeadID{"1", "2"}},
		"ThresholdOverride": {service.LeadQuery{Facets: dashboard.Facets{DelayedOnly: true}, ThresholdDays: 9}, []domain.LeadID{"1"}},
		"DateRange":         {service.LeadQuery{Facets: dashboard.Facets{DateFrom: daysAgo(15), DateTo: daysAgo(1)}}, []domain.LeadID{"1", "3"}},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			view, err := f.svc.Leads(ctx, tc.query)
			require.NoError(t, err)
			assert.Equal(t, tc.want, leadIDs(view.Leads))
			assert.Equal(t, len(tc.want), view.Total)
			assert.False(t, view.IsSample)
		})
	}
}

func TestDashboardService_SampleFallbackIsOptIn(t *testing.T) {
	ctx := context.Background()
	empty := service.LeadQuery{Facets: dashboard.Facets{StageKey: dashboard.StageKeyDuplicate}}

	view, err := newFixture(t, false).svc.Leads(ctx, empty)
	require.NoError(t, err)
	assert.Empty(t, view.Leads)
	assert.False(t, view.IsSample)

	view, err = newFixture(t, true).svc.Leads(ctx, empty)
	require.NoError(t, err)
	assert.True(t, view.IsSample)
	assert.Equal(t, []domain.LeadID{"sample-4"}, leadIDs(view.Leads))

	off := false
	empty.SampleFallback = &off
	view, err = newFixture(t, true).svc.Leads(ctx, empty)
	require.NoError(t, err)
	assert.False(t, view.IsSample)
}

func TestDashboardService_DelayedLeads(t *testing.T) {
	f := newFixture(t, false)
	view, err := f.svc.DelayedLeads(context.Background(), service.LeadQuery{
		Facets: dashboard.Facets{Category: dashboard.CategoryNoAnswerFirstCall},
	})
	require.NoError(t, err)

	assert.Equal(t, []domain.LeadID{"1"}, leadIDs(view.Leads))
	assert.Equal(t, 1, view.Categories[dashboard.CategoryNoAnswerFirstCall])
	assert.Equal(t, 1, view.Categories[dashboard.CategoryFollowUpAfterMeeting])
	assert.Equal(t, 0, view.Categories[dashboard.CategoryRescheduleMeeting])
	assert.Len(t, view.Categories, len(dashboard.Categories))
}

func TestDashboardService_StageCountsAndSummary(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	counts, err := f.svc.StageCounts(ctx, "", "")
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultPipelineStages(), counts.Stages)
	assert.Equal(t, map[string]int{"new": 1, "qualified": 1, "in-progress": 1, "converted": 1, "lost": 0}, counts.Counts.Counts)
	assert.Equal(t, 1, counts.Counts.Unmatched)

	summary, err := f.svc.Summary(ctx, service.LeadQuery{Facets: dashboard.Facets{Employee: "Sara"}})
	require.NoError(t, err)
	assert.Equal(t, 5, summary.TotalLeads)
	assert.Equal(t, 3, summary.VisibleLeads)
	assert.Equal(t, 1, summary.DelayedLeads)
	assert.Equal(t, 4, summary.Counts.Counts["new"]+summary.Counts.Counts["qualified"]+summary.Counts.Counts["in-progress"]+summary.Counts.Counts["converted"])
}

func TestDashboardService_SummaryCategoryCountsIgnoreCategory(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	summary, err := f.svc.Summary(ctx, service.LeadQuery{
		Facets: dashboard.Facets{Category: dashboard.CategoryNoAnswerFirstCall},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.VisibleLeads)
	assert.Equal(t, 1, summary.DelayedLeads)
	assert.Equal(t, 1, summary.DelayedByCategory[dashboard.CategoryNoAnswerFirstCall])
	assert.Equal(t, 1, summary.DelayedByCategory[dashboard.CategoryFollowUpAfterMeeting])

	delayed, err := f.svc.DelayedLeads(ctx, service.LeadQuery{
		Facets: dashboard.Facets{Category: dashboard.CategoryNoAnswerFirstCall},
	})
	require.NoError(t, err)
	assert.Equal(t, delayed.Categories, summary.DelayedByCategory)
}

func TestDashboardService_SnapshotIsCachedUntilWrite(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	_, err := f.svc.Snapshot(ctx)
	require.NoError(t, err)
	assert.True(t, f.redis.Exists("lead-dashboard:snapshot:v1"))

	// Writes that bypass the service stay invisible until invalidation.
	require.NoError(t, f.store.SaveLeads(ctx, seedLeads()[:1]))
	snap, err := f.svc.Snapshot(ctx)
	require.NoError(t, err)
	assert.Len(t, snap.Leads, 5)

	require.NoError(t, f.svc.Invalidate(ctx))
	snap, err = f.svc.Snapshot(ctx)
	require.NoError(t, err)
	assert.Len(t, snap.Leads, 1)
}

func TestDashboardService_ReplacePublishesChanges(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	var received []events.Event
	f.dispatcher.SubscribeAll(func(_ context.Context, e events.Event) error {
		received = append(received, e)
		return nil
	})

	_, err := f.svc.Snapshot(ctx)
	require.NoError(t, err)

	require.NoError(t, f.svc.ReplaceLeads(ctx, seedLeads()[:2]))
	require.NoError(t, f.svc.ReplaceStages(ctx, []domain.PipelineStage{{Name: "new"}, {Name: "won"}}))

	require.Len(t, received, 2)
	assert.Equal(t, events.EventLeadsChanged, received[0].Type)
	assert.Equal(t, events.SourceLocal, received[0].Source)
	assert.Equal(t, events.LeadsChangedPayload{Count: 2}, received[0].Payload)
	assert.Equal(t, events.EventStagesChanged, received[1].Type)

	stages, err := f.svc.Stages(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"new", "won"}, domain.StageNames(stages))

	view, err := f.svc.Leads(ctx, service.LeadQuery{})
	require.NoError(t, err)
	assert.Equal(t, 2, view.Total)
}

func TestDashboardService_CacheOutageFallsBackToStore(t *testing.T) {
	f := newFixture(t, false)
	f.redis.Close()

	view, err := f.svc.Leads(context.Background(), service.LeadQuery{})
	require.NoError(t, err)
	assert.Equal(t, 5, view.Total)
}

type failingStore struct{ repository.LeadStore }

func (failingStore) LoadLeads(context.Context) ([]domain.Lead, error) {
	return nil, errors.New("connection refused")
}

func TestDashboardService_StoreOutageIsUnavailable(t *testing.T) {
	svc := service.NewDashboardService(service.DashboardDependencies{Store: failingStore{}})
	_, err := svc.Leads(context.Background(), service.LeadQuery{})

	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, http.StatusServiceUnavailable, domainErr.HTTPStatus)
}

func TestScopeToOperator(t *testing.T) {
	q := service.LeadQuery{Facets: dashboard.Facets{Employee: "Omar"}}

	agent := &domain.Operator{Name: "Sara", Role: domain.OperatorRoleAgent}
	assert.Equal(t, "Sara", service.ScopeToOperator(q, agent).Facets.Employee)

	admin := &domain.Operator{Name: "Root", Role: domain.OperatorRoleAdmin}
	assert.Equal(t, "Omar", service.ScopeToOperator(q, admin).Facets.Employee)
}

func TestNotificationService_InvalidatesOnChange(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()
	notifier := service.NewNotificationService(f.dispatcher, f.svc, nil, config.NotificationConfig{WebhookURL: "http://hooks.local"})
	notifier.RegisterHandlers()

	_, err := f.svc.Snapshot(ctx)
	require.NoError(t, err)
	require.True(t, f.redis.Exists("lead-dashboard:snapshot:v1"))

	notifier.CollectionChanged(ctx, "unrelated")
	assert.True(t, f.redis.Exists("lead-dashboard:snapshot:v1"))

	notifier.CollectionChanged(ctx, repository.LegacyLeadsKey)
	assert.False(t, f.redis.Exists("lead-dashboard:snapshot:v1"))
}
