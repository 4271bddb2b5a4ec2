package store

import (
	"context"
	"fmt"
	"sort"

	"cloud.google.com/go/firestore"
	"github.com/Lllllllleong/examdocumentflow/internal/gcp"
	"github.com/Lllllllleong/examdocumentflow/internal/models"
)

// FirestoreExtractionStore tracks ingested documents, one Firestore document
// per upload.
type FirestoreExtractionStore struct {
	coll *firestore.CollectionRef
}

func NewFirestoreExtractionStore(client *firestore.Client, collection string) *FirestoreExtractionStore {
	return &FirestoreExtractionStore{coll: client.Collection(collection)}
}

// FindByHash returns the ID of a record with fileHash, or "" when none exists.
func (s *FirestoreExtractionStore) FindByHash(ctx context.Context, fileHash string) (string, error) {
	return gcp.FindFirst(ctx, s.coll, "fileHash", fileHash)
}

func (s *FirestoreExtractionStore) Create(ctx context.Context, rec models.ExtractionRecord) (string, error) {
	ref, _, err := s.coll.Add(ctx, rec)
	if err != nil {
		return "", fmt.Errorf("failed to create extraction record: %w", err)
	}
	return ref.ID, nil
}

// Update sets the given fields, keyed by their Firestore names.
func (s *FirestoreExtractionStore) Update(ctx context.Context, id string, fields map[string]any) error {
	paths := make([]string, 0, len(fields))
	for path := range fields {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	updates := make([]firestore.Update, 0, len(paths))
	for _, path := range paths {
		updates = append(updates, firestore.Update{Path: path, Value: fields[path]})
	}
	if _, err := s.coll.Doc(id).Update(ctx, updates); err != nil {
		return fmt.Errorf("failed to update extraction record %s: %w", id, err)
	}
	return nil
}

// Get returns the record with id.
func (s *FirestoreExtractionStore) Get(ctx context.Context, id string) (models.ExtractionRecord, error) {
	snap, err := s.coll.Doc(id).Get(ctx)
	if err != nil {
		return models.ExtractionRecord{}, fmt.Errorf("failed to get extraction record %s: %w", id, err)
	}
	var rec models.ExtractionRecord
	if err := snap.DataTo(&rec); err != nil {
		return models.ExtractionRecord{}, fmt.Errorf("failed to decode extraction record %s: %w", id, err)
	}
	return rec, nil
}
