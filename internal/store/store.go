// Package store persists saved exam questions.
package store

import (
	"context"
	"fmt"

	"github.com/Lllllllleong/examdocumentflow/internal/config"
	"github.com/Lllllllleong/examdocumentflow/internal/gcp"
	"github.com/Lllllllleong/examdocumentflow/internal/models"
)

// ErrNotFound is returned by FindByID when no record has the given ID.
var ErrNotFound = models.ErrNotFound

// FindOptions narrows a Find call. A zero Limit returns every record.
type FindOptions struct {
	Limit int
}

// QuestionStore is implemented by every persistence backend. Records come
// back oldest first.
type QuestionStore interface {
	Create(ctx context.Context, q models.Question) (models.QuestionRecord, error)
	Find(ctx context.Context, opts FindOptions) ([]models.QuestionRecord, error)
	FindByID(ctx context.Context, id string) (models.QuestionRecord, error)
	Close() error
}

// New opens the backend selected by cfg.Store.Backend.
func New(ctx context.Context, cfg *config.Config) (QuestionStore, error) {
	switch cfg.Store.Backend {
	case config.BackendFirestore:
		client, err := gcp.NewFirestoreClient(ctx, cfg.ProjectID)
		if err != nil {
			return nil, err
		}
		return NewFirestoreStore(client, cfg.Store.Collection), nil
	case config.BackendBadger:
		return OpenBadgerStore(cfg.Store.BadgerPath)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}
