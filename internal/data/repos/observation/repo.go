package observation

import (
	"context"

	"github.com/yungbote/safetywatch-backend/internal/domain"
)

const (
	BackendSQLite  = "sqlite"
	BackendJSONBin = "jsonbin"
)

// Repo is the storage contract for observation records. Implementations never swallow
// store I/O errors. Update of an unknown id is a silent no-op.
type Repo interface {
	Backend() string
	// ListAll returns every record, newest first where the backend can order natively.
	ListAll(ctx context.Context) ([]*domain.Observation, error)
	// ListOpen returns the records whose status is not "Closed".
	ListOpen(ctx context.Context) ([]*domain.Observation, error)
	// Insert assigns an id and persists obs. The caller's value is not modified.
	Insert(ctx context.Context, obs *domain.Observation) error
	// Update overwrites status and fix of the record with the given id.
	Update(ctx context.Context, id int64, status, fix string) error
}

func filterOpen(all []*domain.Observation) []*domain.Observation {
	out := make([]*domain.Observation, 0, len(all))
	for _, o := range all {
		if o.IsOpen() {
			out = append(out, o)
		}
	}
	return out
}
