package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/leadops/lead-dashboard/internal/domain"
)

const (
	// LegacyLeadsKey is the collection written by older lead screens.
	LegacyLeadsKey = "crm_leads"
	// LeadsKey is the primary lead collection.
	LeadsKey = "leads"
	// StagesKey holds the user-editable pipeline stage configuration.
	StagesKey = "pipeline_stages"
)

// LeadCollectionKeys are merged in this order; later collections win on
// identifier clashes.
var LeadCollectionKeys = []string{LegacyLeadsKey, LeadsKey}

// IsLeadCollection reports whether key holds lead records.
func IsLeadCollection(key string) bool {
	for _, k := range LeadCollectionKeys {
		if k == key {
			return true
		}
	}
	return false
}

// LeadStore reads and writes lead and stage collections.
type LeadStore interface {
	LoadLeads(ctx context.Context) ([]domain.Lead, error)
	LoadStages(ctx context.Context) ([]domain.PipelineStage, error)
	SaveLeads(ctx context.Context, leads []domain.Lead) error
	SaveStages(ctx context.Context, stages []domain.PipelineStage) error
}

type leadStore struct {
	collections CollectionStore
	logger      *zap.Logger
}

// NewLeadStore builds a LeadStore over a collection backend.
func NewLeadStore(collections CollectionStore, logger *zap.Logger) LeadStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &leadStore{collections: collections, logger: logger}
}

// LoadLeads merges every lead collection. Malformed collections count as
// empty; only backend failures are returned.
func (s *leadStore) LoadLeads(ctx context.Context) ([]domain.Lead, error) {
	sources := make([][]domain.Lead, 0, len(LeadCollectionKeys))
	for _, key := range LeadCollectionKeys {
		payload, err := s.collections.Get(ctx, key)
		if err != nil {
			return nil, err
		}
		leads, ok := DecodeLeads(payload)
		if !ok {
			s.logger.Warn("malformed lead collection; treating as empty", zap.String("key", key))
		}
		sources = append(sources, leads)
	}
	return MergeLeads(sources...), nil
}

// LoadStages returns the configured stages, or the default vocabulary when
// the configuration is missing, malformed or empty.
func (s *leadStore) LoadStages(ctx context.Context) ([]domain.PipelineStage, error) {
	payload, err := s.collections.Get(ctx, StagesKey)
	if err != nil {
		return nil, err
	}
	return DecodeStages(payload), nil
}

func (s *leadStore) SaveLeads(ctx context.Context, leads []domain.Lead) error {
	if leads == nil {
		leads = []domain.Lead{}
	}
	payload, err := json.Marshal(leads)
	if err != nil {
		return fmt.Errorf("encode leads: %w", err)
	}
	return s.collections.Put(ctx, LeadsKey, payload)
}

func (s *leadStore) SaveStages(ctx context.Context, stages []domain.PipelineStage) error {
	if stages == nil {
		stages = []domain.PipelineStage{}
	}
	payload, err := json.Marshal(stages)
	if err != nil {
		return fmt.Errorf("encode stages: %w", err)
	}
	return s.collections.Put(ctx, StagesKey, payload)
}

// DecodeLeads decodes a JSON array of leads. A missing payload yields an
// empty list; a payload that is not a JSON array yields an empty list and
// ok=false. Individual entries that cannot be decoded are skipped.
func DecodeLeads(payload []byte) ([]domain.Lead, bool) {
	if len(strings.TrimSpace(string(payload))) == 0 {
		return []domain.Lead{}, true
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(payload, &raw); err != nil {
		return []domain.Lead{}, false
	}
	leads := make([]domain.Lead, 0, len(raw))
	for _, item := range raw {
		if strings.TrimSpace(string(item)) == "null" {
			continue
		}
		var lead domain.Lead
		if err := json.Unmarshal(item, &lead); err != nil {
			continue
		}
		leads = append(leads, lead)
	}
	return leads, true
}

// DecodeStages decodes stage configuration, falling back to the defaults.
func DecodeStages(payload []byte) []domain.PipelineStage {
	var stages []domain.PipelineStage
	if err := json.Unmarshal(payload, &stages); err != nil {
		return domain.DefaultPipelineStages()
	}
	valid := make([]domain.PipelineStage, 0, len(stages))
	for _, stage := range stages {
		stage.Name = strings.TrimSpace(stage.Name)
		if stage.Name == "" {
			continue
		}
		valid = append(valid, stage)
	}
	if len(valid) == 0 {
		return domain.DefaultPipelineStages()
	}
	return valid
}

// MergeLeads de-duplicates leads by identifier across sources. A later
// record replaces an earlier one with the same identifier but keeps the
// earlier position. Records without an identifier are kept as they are.
func MergeLeads(sources ...[]domain.Lead) []domain.Lead {
	var merged []domain.Lead
	index := make(map[domain.LeadID]int)
	for _, source := range sources {
		for _, lead := range source {
			id := domain.LeadID(strings.TrimSpace(string(lead.ID)))
			if id == "" {
				merged = append(merged, lead)
				continue
			}
			if pos, ok := index[id]; ok {
				merged[pos] = lead
				continue
			}
			index[id] = len(merged)
			merged = append(merged, lead)
		}
	}
	if merged == nil {
		return []domain.Lead{}
	}
	return merged
}
