package store

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/Lllllllleong/examdocumentflow/internal/models"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// FirestoreStore keeps one document per question; the document ID is the
// record ID.
type FirestoreStore struct {
	client     *firestore.Client
	collection string
}

func NewFirestoreStore(client *firestore.Client, collection string) *FirestoreStore {
	return &FirestoreStore{client: client, collection: collection}
}

func (s *FirestoreStore) Create(ctx context.Context, q models.Question) (models.QuestionRecord, error) {
	now := time.Now().UTC()
	rec := models.QuestionRecord{Question: q, CreatedAt: now, UpdatedAt: now}
	ref, _, err := s.client.Collection(s.collection).Add(ctx, rec)
	if err != nil {
		return models.QuestionRecord{}, fmt.Errorf("failed to create question document: %w", err)
	}
	rec.ID = ref.ID
	return rec, nil
}

func (s *FirestoreStore) Find(ctx context.Context, opts FindOptions) ([]models.QuestionRecord, error) {
	query := s.client.Collection(s.collection).OrderBy("createdAt", firestore.Asc)
	if opts.Limit > 0 {
		query = query.Limit(opts.Limit)
	}
	iter := query.Documents(ctx)
	defer iter.Stop()

	var records []models.QuestionRecord
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list questions: %w", err)
		}
		rec, err := decodeSnapshot(snap)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

func (s *FirestoreStore) FindByID(ctx context.Context, id string) (models.QuestionRecord, error) {
	snap, err := s.client.Collection(s.collection).Doc(id).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return models.QuestionRecord{}, fmt.Errorf("question %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return models.QuestionRecord{}, fmt.Errorf("failed to get question %s: %w", id, err)
	}
	return decodeSnapshot(snap)
}

func (s *FirestoreStore) Close() error {
	return s.client.Close()
}

func decodeSnapshot(snap *firestore.DocumentSnapshot) (models.QuestionRecord, error) {
	var rec models.QuestionRecord
	if err := snap.DataTo(&rec); err != nil {
		return models.QuestionRecord{}, fmt.Errorf("failed to decode question %s: %w", snap.Ref.ID, err)
	}
	rec.ID = snap.Ref.ID
	return rec, nil
}
