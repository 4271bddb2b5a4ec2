package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/Lllllllleong/examdocumentflow/internal/gcp"
	"github.com/Lllllllleong/examdocumentflow/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleQuestions() []models.Question {
	return []models.Question{
		{Question: "What is the capital of Japan?", Type: models.TypeMCQ, Options: []string{"Tokyo", "Beijing"}, CorrectAnswer: "Tokyo", Marks: 1, Hint: "Asia"},
		{Question: "Define photosynthesis.", Type: models.TypeDescriptive, CorrectAnswer: "Light to chemical energy.", Marks: 3},
		{Question: "Water is ____.", Type: models.TypeFillInTheBlank, CorrectAnswer: "H2O", Marks: 2},
	}
}

// exerciseStore runs the behaviour every backend must share.
func exerciseStore(t *testing.T, s QuestionStore) {
	ctx := context.Background()

	var created []models.QuestionRecord
	for _, q := range sampleQuestions() {
		rec, err := s.Create(ctx, q)
		require.NoError(t, err)
		assert.NotEmpty(t, rec.ID)
		assert.False(t, rec.CreatedAt.IsZero())
		created = append(created, rec)
	}

	got, err := s.FindByID(ctx, created[0].ID)
	require.NoError(t, err)
	assert.Equal(t, created[0].ID, got.ID)
	assert.Equal(t, created[0].Question, got.Question)

	all, err := s.Find(ctx, FindOptions{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	var texts []string
	for _, r := range all {
		texts = append(texts, r.Question.Question)
	}
	assert.ElementsMatch(t, []string{"What is the capital of Japan?", "Define photosynthesis.", "Water is ____."}, texts)

	limited, err := s.Find(ctx, FindOptions{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, limited, 2)

	_, err = s.FindByID(ctx, "does-not-exist")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBadgerStore(t *testing.T) {
	s, err := OpenBadgerStore(filepath.Join(t.TempDir(), "questions"))
	require.NoError(t, err)
	defer s.Close()

	exerciseStore(t, s)
}

func TestBadgerStorePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "questions")
	s, err := OpenBadgerStore(path)
	require.NoError(t, err)
	rec, err := s.Create(context.Background(), sampleQuestions()[2])
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = OpenBadgerStore(path)
	require.NoError(t, err)
	defer s.Close()
	got, err := s.FindByID(context.Background(), rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "H2O", got.CorrectAnswer)
}

func TestFirestoreStore(t *testing.T) {
	if os.Getenv("FIRESTORE_EMULATOR_HOST") == "" {
		t.Skip("FIRESTORE_EMULATOR_HOST not set")
	}
	ctx := context.Background()
	client, err := gcp.NewFirestoreClient(ctx, "exam-flow-test")
	require.NoError(t, err)

	s := NewFirestoreStore(client, "questions-"+uuid.NewString())
	defer s.Close()
	exerciseStore(t, s)
}

func TestFirestoreExtractionStore(t *testing.T) {
	if os.Getenv("FIRESTORE_EMULATOR_HOST") == "" {
		t.Skip("FIRESTORE_EMULATOR_HOST not set")
	}
	ctx := context.Background()
	client, err := gcp.NewFirestoreClient(ctx, "exam-flow-test")
	require.NoError(t, err)
	defer client.Close()

	s := NewFirestoreExtractionStore(client, "extractions-"+uuid.NewString())
	id, err := s.Create(ctx, models.ExtractionRecord{FileHash: "abc", OriginalFilename: "exam.pdf", Status: models.StatusProcessing})
	require.NoError(t, err)

	found, err := s.FindByHash(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, id, found)
	found, err = s.FindByHash(ctx, "other")
	require.NoError(t, err)
	assert.Empty(t, found)

	require.NoError(t, s.Update(ctx, id, map[string]any{"status": models.StatusDone, "questionCount": 4}))
	rec, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.StatusDone, rec.Status)
	assert.Equal(t, 4, rec.QuestionCount)
	assert.Equal(t, "exam.pdf", rec.OriginalFilename)
}
