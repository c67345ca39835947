package trackstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ghrelinlab/posemetrics/schema"
)

// SaveTrialFeature upserts one computed scalar for a trial. Missing values
// are stored as NULL so downstream queries can tell "not computable" from 0.
func (s *Store) SaveTrialFeature(ctx context.Context, feature schema.TrialFeature, params schema.FeatureParams) error {
	paramsJSON, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("failed to encode feature params: %w", err)
	}

	var value any
	if !schema.IsMissing(feature.Value) {
		value = feature.Value
	}

	query := s.featureUpsertQuery()
	_, err = s.db.ExecContext(ctx, query,
		feature.TrialID, string(feature.Feature), value, string(paramsJSON), time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to save %s for trial %d: %w", feature.Feature, feature.TrialID, err)
	}
	return nil
}

// featureUpsertQuery returns the UPSERT query for the backend.
func (s *Store) featureUpsertQuery() string {
	switch s.backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`INSERT INTO %s (trial_id, feature, value, params, computed_at) VALUES (?, ?, ?, ?, ?) AS new
			ON DUPLICATE KEY UPDATE value = new.value, params = new.params, computed_at = new.computed_at`, featuresTable)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`INSERT INTO %s (trial_id, feature, value, params, computed_at) VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (trial_id, feature) DO UPDATE SET value = EXCLUDED.value, params = EXCLUDED.params, computed_at = EXCLUDED.computed_at`, featuresTable)

	default: // SQLite
		return fmt.Sprintf(`INSERT OR REPLACE INTO %s (trial_id, feature, value, params, computed_at) VALUES (?, ?, ?, ?, ?)`, featuresTable)
	}
}
