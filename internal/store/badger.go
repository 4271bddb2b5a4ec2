package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/Lllllllleong/examdocumentflow/internal/models"
	"github.com/google/uuid"
	"github.com/timshannon/badgerhold/v4"
)

// BadgerStore is an embedded store for local development.
type BadgerStore struct {
	store *badgerhold.Store
}

// OpenBadgerStore opens (or creates) the database at path.
func OpenBadgerStore(path string) (*BadgerStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	options := badgerhold.DefaultOptions
	options.Dir = path
	options.ValueDir = path
	options.Logger = nil

	s, err := badgerhold.Open(options)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger database: %w", err)
	}
	slog.Info("Badger question store opened.", "path", path)
	return &BadgerStore{store: s}, nil
}

func (s *BadgerStore) Create(_ context.Context, q models.Question) (models.QuestionRecord, error) {
	now := time.Now().UTC()
	rec := models.QuestionRecord{
		ID:        uuid.NewString(),
		Question:  q,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Insert(rec.ID, rec); err != nil {
		return models.QuestionRecord{}, fmt.Errorf("failed to insert question: %w", err)
	}
	return rec, nil
}

func (s *BadgerStore) Find(_ context.Context, opts FindOptions) ([]models.QuestionRecord, error) {
	query := (&badgerhold.Query{}).SortBy("CreatedAt")
	if opts.Limit > 0 {
		query = query.Limit(opts.Limit)
	}
	var records []models.QuestionRecord
	if err := s.store.Find(&records, query); err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}
	return records, nil
}

func (s *BadgerStore) FindByID(_ context.Context, id string) (models.QuestionRecord, error) {
	var rec models.QuestionRecord
	if err := s.store.Get(id, &rec); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return models.QuestionRecord{}, fmt.Errorf("question %s: %w", id, ErrNotFound)
		}
		return models.QuestionRecord{}, fmt.Errorf("failed to get question %s: %w", id, err)
	}
	rec.ID = id
	return rec, nil
}

func (s *BadgerStore) Close() error {
	if s.store != nil {
		return s.store.Close()
	}
	return nil
}
