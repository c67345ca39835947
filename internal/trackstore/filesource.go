package trackstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ghrelinlab/posemetrics/internal/contract"
	"github.com/ghrelinlab/posemetrics/schema"
)

// FileSource is the directory/file track adapter. Track paths come from the
// trial's metadata reference, resolved against the data directory when
// relative; trials without a reference fall back to the conventional
// trial_<id>.csv name.
type FileSource struct {
	root    string
	catalog contract.TrialCatalog
}

var _ contract.TrackSource = &FileSource{} // Compile-time check

// NewFileSource creates a file adapter rooted at the data directory.
func NewFileSource(root string, catalog contract.TrialCatalog) *FileSource {
	return &FileSource{root: root, catalog: catalog}
}

// Fetch locates and parses the trial's track file.
func (fs *FileSource) Fetch(ctx context.Context, trialID int64) (*schema.CoordinateTrack, error) {
	path, err := fs.resolvePath(ctx, trialID)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("%w: track file %q for trial %d: %v", contract.ErrTrialNotFound, path, trialID, err)
	}
	defer func() { _ = f.Close() }()
	return ParseTrackCSV(f)
}

func (fs *FileSource) resolvePath(ctx context.Context, trialID int64) (string, error) {
	trial, err := fs.catalog.Get(ctx, trialID)
	if err != nil {
		return "", err
	}
	ref := trial.TrackRef
	if ref == "" {
		ref = fmt.Sprintf("trial_%d.csv", trialID)
	}
	if !filepath.IsAbs(ref) {
		ref = filepath.Join(fs.root, ref)
	}
	return ref, nil
}
