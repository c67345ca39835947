package trackstore

import (
	"context"
	"errors"
	"sync"

	"github.com/ghrelinlab/posemetrics/internal/contract"
	"github.com/ghrelinlab/posemetrics/schema"
)

// DataAccess bundles the catalog, track source and feature store a batch run
// works against. Connect decides once per run whether they are backed by the
// relational store or by the flat-file fallback; either way downstream code
// sees the same interfaces.
type DataAccess struct {
	Catalog  contract.TrialCatalog
	Tracks   contract.TrackSource
	Features contract.FeatureStore

	store *Store // nil when file-backed
}

// Connect opens the relational store and falls back to the file adapters on
// any connection failure. The fallback is a design requirement: the pipeline
// must stay usable without live database access, so an unreachable store is
// warned about, never fatal.
func Connect(ctx context.Context, cfg *contract.Config) (*DataAccess, error) {
	if cfg.Backend != schema.NoneBackend {
		store, err := OpenStore(ctx, cfg)
		if err == nil {
			return &DataAccess{
				Catalog:  store,
				Tracks:   &fallbackSource{primary: store, cfg: cfg},
				Features: store,
				store:    store,
			}, nil
		}
		if !errors.Is(err, contract.ErrConnectionUnavailable) {
			return nil, err
		}
		contract.LogWarn("falling back to flat-file data access", err)
	}

	catalog, err := NewFileCatalog(cfg.DataDir)
	if err != nil {
		return nil, err
	}
	return &DataAccess{
		Catalog:  catalog,
		Tracks:   NewFileSource(cfg.DataDir, catalog),
		Features: noopFeatureStore{},
	}, nil
}

// Close releases the relational connection if one was opened.
func (d *DataAccess) Close() error {
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// Relational reports whether the run is backed by the relational store.
func (d *DataAccess) Relational() bool { return d.store != nil }

// fallbackSource serves tracks from the relational store and switches to the
// file adapter if the connection degrades mid-batch. Not-found and malformed
// rows are authoritative answers and do not trigger the fallback.
type fallbackSource struct {
	primary *Store
	cfg     *contract.Config

	mu    sync.Mutex // guards files; workers share this source
	files *FileSource
}

func (f *fallbackSource) Fetch(ctx context.Context, trialID int64) (*schema.CoordinateTrack, error) {
	track, err := f.primary.Fetch(ctx, trialID)
	if err == nil {
		return track, nil
	}
	if errors.Is(err, contract.ErrTrialNotFound) || errors.Is(err, contract.ErrMalformedSchema) {
		return nil, err
	}

	files, ferr := f.fileAdapter()
	if ferr != nil {
		return nil, err // no usable fallback; surface the original failure
	}
	contract.LogWarn("relational fetch degraded, using file adapter", err)
	return files.Fetch(ctx, trialID)
}

func (f *fallbackSource) fileAdapter() (*FileSource, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.files == nil {
		catalog, err := NewFileCatalog(f.cfg.DataDir)
		if err != nil {
			return nil, err
		}
		f.files = NewFileSource(f.cfg.DataDir, catalog)
	}
	return f.files, nil
}

// noopFeatureStore satisfies FeatureStore when running file-backed; computed
// features are only persisted through the relational store.
type noopFeatureStore struct{}

func (noopFeatureStore) SaveTrialFeature(context.Context, schema.TrialFeature, schema.FeatureParams) error {
	return nil
}
