package core

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ghrelinlab/posemetrics/internal/contract"
	"github.com/ghrelinlab/posemetrics/internal/trackstore"
	"github.com/ghrelinlab/posemetrics/schema"
)

// flakyFeatureStore fails saves for selected trials and records the rest.
type flakyFeatureStore struct {
	failIDs map[int64]bool
	saved   []int64
}

func (s *flakyFeatureStore) SaveTrialFeature(_ context.Context, feature schema.TrialFeature, _ schema.FeatureParams) error {
	if s.failIDs[feature.TrialID] {
		return errors.New("disk full")
	}
	s.saved = append(s.saved, feature.TrialID)
	return nil
}

func TestSaveFeaturesContinuesPastFailures(t *testing.T) {
	store := &flakyFeatureStore{failIDs: map[int64]bool{1: true}}
	access := &trackstore.DataAccess{Features: store}
	features := []schema.TrialFeature{
		{TrialID: 1, Feature: schema.FeatureVelocityPerMin, Value: 0.1},
		{TrialID: 2, Feature: schema.FeatureVelocityPerMin, Value: 0.2},
		{TrialID: 3, Feature: schema.FeatureVelocityPerMin, Value: 0.3},
	}

	saveFeatures(context.Background(), &contract.Config{}, access, features)

	// A failed save is warned about; every later trial is still persisted.
	assert.Equal(t, []int64{2, 3}, store.saved)
}
