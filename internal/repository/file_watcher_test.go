package repository

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectionKeyFromPath(t *testing.T) {
	tests := []struct {
		path string
		key  string
		ok   bool
	}{
		{"/data/leads.json", "leads", true},
		{"/data/crm_leads.json", "crm_leads", true},
		{"/data/.leads-123.tmp", "", false},
		{"/data/leads.json.bak", "", false},
		{"/data/notes.txt", "", false},
		{"/data/bad key.json", "", false},
	}
	for _, tc := range tests {
		key, ok := collectionKeyFromPath(tc.path)
		assert.Equal(t, tc.ok, ok, tc.path)
		assert.Equal(t, tc.key, key, tc.path)
	}
}

func TestFileWatcher_ReportsCollectionWrites(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileCollectionStore(dir)
	require.NoError(t, err)

	var mu sync.Mutex
	seen := map[string]int{}
	watcher, err := NewFileWatcher(dir, func(_ context.Context, key string) {
		mu.Lock()
		seen[key]++
		mu.Unlock()
	}, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, watcher.Start(ctx))
	defer watcher.Stop()

	require.NoError(t, store.Put(ctx, LeadsKey, []byte(`[{"id":1}]`)))
	require.NoError(t, os.WriteFile(dir+"/ignored.txt", []byte("x"), 0o644))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return seen[LeadsKey] > 0
	}, 3*time.Second, 20*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.NotContains(t, seen, "ignored")
}
