package repository_test

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leadops/lead-dashboard/internal/dashboard"
	"github.com/leadops/lead-dashboard/internal/domain"
	"github.com/leadops/lead-dashboard/internal/repository"
)

func TestDecodeLeads(t *testing.T) {
	tests := map[string]struct {
		payload string
		wantIDs []domain.LeadID
		wantOK  bool
	}{
		"Missing":         {"", []domain.LeadID{}, true},
		"Null":            {"null", []domain.LeadID{}, true},
		"NotJSON":         {"{oops", []domain.LeadID{}, false},
		"ObjectNotArray":  {`{"id":1}`, []domain.LeadID{}, false},
		"NumericAndText":  {`[{"id":1,"status":"new"},{"id":"a-2"}]`, []domain.LeadID{"1", "a-2"}, true},
		"SkipsBadEntries": {`[{"id":1},null,"text",[1],{"id":"3"}]`, []domain.LeadID{"1", "3"}, true},
		"OddIDKeptBlank":  {`[{"id":{"x":1}},{"id":true,"status":"new"}]`, []domain.LeadID{"", ""}, true},
		"IntegralIDs":     {`[{"id":1.0},{"id":2e0},{"id":-3},{"id":1.5}]`, []domain.LeadID{"1", "2", "-3", "1.5"}, true},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			leads, ok := repository.DecodeLeads([]byte(tc.payload))
			assert.Equal(t, tc.wantOK, ok)
			got := make([]domain.LeadID, 0, len(leads))
			for _, l := range leads {
				got = append(got, l.ID)
			}
			assert.Equal(t, tc.wantIDs, got)
		})
	}
}

func TestDecodeLeads_MapsFields(t *testing.T) {
	payload := `[{"id":7,"status":"in-progress","lastContact":"2025-06-01","createdAt":"2025-05-01",
		"notes":"meeting","source":"direct","isDuplicate":true,"duplicateStatus":"duplicate",
		"assignedTo":" Sara ","employee":"Omar","unknown":"ignored"}]`
	leads, ok := repository.DecodeLeads([]byte(payload))
	require.True(t, ok)
	require.Len(t, leads, 1)
	lead := leads[0]
	assert.Equal(t, domain.LeadID("7"), lead.ID)
	assert.Equal(t, domain.LeadStatusInProgress, lead.Status)
	assert.Equal(t, "2025-06-01", lead.LastContact)
	assert.Equal(t, "2025-05-01", lead.CreatedAt)
	assert.True(t, lead.Duplicate())
	assert.Equal(t, "Sara", lead.Owner())
}

func TestDecodeLeads_ToleratesMistypedFields(t *testing.T) {
	payload := `[{"id":1,"status":"new","phone":5551234},
		{"id":2,"status":"new","isDuplicate":"true"},
		{"id":3,"status":"new","notes":null,"name":false,"assignedTo":["Sara"]},
		{"id":4,"status":"new","isDuplicate":1,"lastContact":20250601}]`
	leads, ok := repository.DecodeLeads([]byte(payload))
	require.True(t, ok)
	require.Len(t, leads, 4)

	assert.Equal(t, "5551234", leads[0].Phone)
	assert.False(t, leads[0].Duplicate())
	assert.True(t, leads[1].Duplicate())
	assert.Empty(t, leads[2].Notes)
	assert.Empty(t, leads[2].Name)
	assert.Empty(t, leads[2].Owner())
	assert.True(t, leads[3].IsDuplicate)
	assert.Equal(t, "20250601", leads[3].LastContact)

	counts := dashboard.CountByStage(leads, []string{"new"})
	assert.Equal(t, 4, counts.Counts["new"])
}

func TestMergeLeads_NumericIdentifiersCollapse(t *testing.T) {
	legacy, ok := repository.DecodeLeads([]byte(`[{"id":1,"status":"new"}]`))
	require.True(t, ok)
	primary, ok := repository.DecodeLeads([]byte(`[{"id":1.0,"status":"lost"},{"id":"1e0","status":"qualified"}]`))
	require.True(t, ok)

	merged := repository.MergeLeads(legacy, primary)
	require.Len(t, merged, 2)
	assert.Equal(t, domain.LeadStatusLost, merged[0].Status)
	assert.Equal(t, domain.LeadID("1e0"), merged[1].ID)
}

func TestDecodeStages(t *testing.T) {
	defaults := domain.DefaultPipelineStages()
	assert.Equal(t, defaults, repository.DecodeStages(nil))
	assert.Equal(t, defaults, repository.DecodeStages([]byte("not json")))
	assert.Equal(t, defaults, repository.DecodeStages([]byte("[]")))
	assert.Equal(t, defaults, repository.DecodeStages([]byte(`[{"name":"  "}]`)))

	got := repository.DecodeStages([]byte(`[{"name":"Hot","color":"#f00"},{"name":""},{"name":" Cold ","icon":"snow"}]`))
	assert.Equal(t, []domain.PipelineStage{{Name: "Hot", Color: "#f00"}, {Name: "Cold", Icon: "snow"}}, got)
}

func TestMergeLeads(t *testing.T) {
	legacy := []domain.Lead{{ID: "1", Status: "new"}, {ID: "2", Status: "new"}, {Status: "orphan"}}
	primary := []domain.Lead{{ID: "2", Status: "lost"}, {ID: "3", Status: "qualified"}, {ID: "1", Status: "converted"}}

	merged := repository.MergeLeads(legacy, primary)
	require.Len(t, merged, 4)
	assert.Equal(t, domain.Lead{ID: "1", Status: "converted"}, merged[0])
	assert.Equal(t, domain.Lead{ID: "2", Status: "lost"}, merged[1])
	assert.Equal(t, domain.Lead{Status: "orphan"}, merged[2])
	assert.Equal(t, domain.Lead{ID: "3", Status: "qualified"}, merged[3])
}

func TestMergeLeads_DistinctIdentifiers(t *testing.T) {
	a := []domain.Lead{{ID: "1"}, {ID: "2"}, {ID: "3"}, {ID: "2"}}
	b := []domain.Lead{{ID: "3"}, {ID: "4"}, {ID: "1"}}

	merged := repository.MergeLeads(a, b)
	seen := map[domain.LeadID]bool{}
	for _, l := range merged {
		assert.False(t, seen[l.ID], "duplicate id %s", l.ID)
		seen[l.ID] = true
	}
	assert.Len(t, merged, 4)
	assert.Empty(t, repository.MergeLeads())
}

func TestLeadStore_FileBackend(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	collections, err := repository.NewFileCollectionStore(dir)
	require.NoError(t, err)
	store := repository.NewLeadStore(collections, nil)

	leads, err := store.LoadLeads(ctx)
	require.NoError(t, err)
	assert.Empty(t, leads)

	stages, err := store.LoadStages(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultPipelineStages(), stages)

	require.NoError(t, os.WriteFile(repository.CollectionPath(dir, repository.LegacyLeadsKey),
		[]byte(`[{"id":1,"status":"new"},{"id":2,"status":"new"}]`), 0o644))
	require.NoError(t, store.SaveLeads(ctx, []domain.Lead{{ID: "2", Status: "lost"}, {ID: "5", Status: "qualified"}}))

	leads, err = store.LoadLeads(ctx)
	require.NoError(t, err)
	require.Len(t, leads, 3)
	assert.Equal(t, domain.LeadStatus("lost"), leads[1].Status)

	require.NoError(t, store.SaveStages(ctx, []domain.PipelineStage{{Name: "Hot"}}))
	stages, err = store.LoadStages(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.PipelineStage{{Name: "Hot"}}, stages)
}

func TestLeadStore_MalformedCollectionIsEmpty(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	collections, err := repository.NewFileCollectionStore(dir)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(repository.CollectionPath(dir, repository.LeadsKey), []byte("{broken"), 0o644))
	require.NoError(t, os.WriteFile(repository.CollectionPath(dir, repository.LegacyLeadsKey), []byte(`[{"id":"x"}]`), 0o644))

	leads, err := repository.NewLeadStore(collections, nil).LoadLeads(ctx)
	require.NoError(t, err)
	require.Len(t, leads, 1)
	assert.Equal(t, domain.LeadID("x"), leads[0].ID)
}

func TestFileCollectionStore_RejectsUnsafeKeys(t *testing.T) {
	collections, err := repository.NewFileCollectionStore(t.TempDir())
	require.NoError(t, err)
	_, err = collections.Get(context.Background(), "../etc/passwd")
	assert.Error(t, err)
	assert.Error(t, collections.Put(context.Background(), "a/b", []byte("[]")))
}

func TestMemoryOperatorRepository(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemoryOperatorRepository(domain.Operator{Name: "admin", Email: "Admin@Example.com", Role: domain.OperatorRoleAdmin, Active: true})

	op, err := repo.GetByEmail(ctx, "admin@example.COM")
	require.NoError(t, err)
	assert.NotEmpty(t, op.ID)

	byID, err := repo.GetByID(ctx, op.ID)
	require.NoError(t, err)
	assert.Equal(t, op.Email, byID.Email)

	_, err = repo.GetByEmail(ctx, "missing@example.com")
	assert.Error(t, err)
}
