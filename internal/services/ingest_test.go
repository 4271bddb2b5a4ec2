package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/Lllllllleong/examdocumentflow/internal/models"
	"github.com/go-pdf/fpdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsPDFObject(t *testing.T) {
	tests := []struct {
		event GCSEvent
		want  bool
	}{
		{GCSEvent{Name: "uploads/exam.pdf"}, true},
		{GCSEvent{Name: "uploads/EXAM.PDF"}, true},
		{GCSEvent{Name: "uploads/exam", ContentType: "application/pdf"}, true},
		{GCSEvent{Name: "uploads/notes.txt", ContentType: "text/plain"}, false},
		{GCSEvent{Name: "uploads/pdf"}, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, isPDFObject(tt.event), tt.event.Name)
	}
}

func TestCalculateHash(t *testing.T) {
	assert.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", calculateHash(nil))
	assert.Equal(t, calculateHash([]byte("exam")), calculateHash([]byte("exam")))
	assert.NotEqual(t, calculateHash([]byte("exam 1")), calculateHash([]byte("exam 2")))
}

func TestResultObjectName(t *testing.T) {
	assert.Equal(t, "abc123/questions.json", resultObjectName("abc123"))
}

func TestCountPages(t *testing.T) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	for i := 0; i < 4; i++ {
		pdf.AddPage()
		pdf.Cell(40, 10, "Question")
	}
	var buf bytes.Buffer
	require.NoError(t, pdf.Output(&buf))

	n, err := countPages(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	_, err = countPages([]byte("plain text"))
	assert.ErrorIs(t, err, models.ErrDocumentDecode)
}

type fakeObjects struct {
	data    map[string][]byte
	reads   int
	written map[string][]byte
}

func newFakeObjects() *fakeObjects {
	return &fakeObjects{data: map[string][]byte{}, written: map[string][]byte{}}
}

func (f *fakeObjects) Read(_ context.Context, bucket, object string, _ int64) ([]byte, error) {
	f.reads++
	data, ok := f.data[bucket+"/"+object]
	if !ok {
		return nil, fmt.Errorf("object %s/%s: %w", bucket, object, models.ErrNotFound)
	}
	return data, nil
}

func (f *fakeObjects) WriteIfAbsent(_ context.Context, bucket, object string, data []byte) error {
	key := bucket + "/" + object
	if _, ok := f.written[key]; !ok {
		f.written[key] = data
	}
	return nil
}

type fakeRecords struct {
	byHash  map[string]string
	created []models.ExtractionRecord
	updates []map[string]any
}

func (f *fakeRecords) FindByHash(_ context.Context, fileHash string) (string, error) {
	return f.byHash[fileHash], nil
}

func (f *fakeRecords) Create(_ context.Context, rec models.ExtractionRecord) (string, error) {
	f.created = append(f.created, rec)
	return fmt.Sprintf("doc-%d", len(f.created)), nil
}

func (f *fakeRecords) Update(_ context.Context, _ string, fields map[string]any) error {
	f.updates = append(f.updates, fields)
	return nil
}

func (f *fakeRecords) last() map[string]any {
	if len(f.updates) == 0 {
		return nil
	}
	return f.updates[len(f.updates)-1]
}

type fakeDocumentExtractor struct {
	result *models.ExtractionResult
	err    error
	calls  int
}

func (f *fakeDocumentExtractor) Extract(_ context.Context, _ []byte) (*models.ExtractionResult, error) {
	f.calls++
	return f.result, f.err
}

func samplePDF(t *testing.T, pages int) []byte {
	t.Helper()
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	for i := 0; i < pages; i++ {
		pdf.AddPage()
		pdf.Cell(40, 10, fmt.Sprintf("Question %d", i+1))
	}
	var buf bytes.Buffer
	require.NoError(t, pdf.Output(&buf))
	return buf.Bytes()
}

func newTestIngest(objects *fakeObjects, records *fakeRecords, extractor *fakeDocumentExtractor) *IngestFunction {
	return NewIngestFunction(objects, records, extractor, IngestConfig{
		ResultsBucket:  "results",
		CollectionName: "extractions",
		MaxBytes:       10 << 20,
	})
}

func TestIngestProcess(t *testing.T) {
	ctx := context.Background()
	event := GCSEvent{Bucket: "uploads", Name: "exams/midterm.pdf", ContentType: "application/pdf"}
	result := &models.ExtractionResult{Questions: []models.Question{
		{Question: "Capital of Japan?", Type: "mcq", Options: []string{"Tokyo", "Beijing"}, CorrectAnswer: "Tokyo"},
		{Question: "2 + 2 = ?", Type: "descriptive", CorrectAnswer: "4"},
	}}

	t.Run("skips objects that are not PDFs", func(t *testing.T) {
		objects := newFakeObjects()
		records := &fakeRecords{}
		extractor := &fakeDocumentExtractor{result: result}

		err := newTestIngest(objects, records, extractor).Process(ctx, GCSEvent{Bucket: "uploads", Name: "notes.txt", ContentType: "text/plain"})
		require.NoError(t, err)
		assert.Zero(t, objects.reads)
		assert.Empty(t, records.created)
	})

	t.Run("skips documents already extracted", func(t *testing.T) {
		doc := samplePDF(t, 1)
		objects := newFakeObjects()
		objects.data["uploads/exams/midterm.pdf"] = doc
		records := &fakeRecords{byHash: map[string]string{calculateHash(doc): "existing"}}
		extractor := &fakeDocumentExtractor{result: result}

		require.NoError(t, newTestIngest(objects, records, extractor).Process(ctx, event))
		assert.Empty(t, records.created)
		assert.Empty(t, records.updates)
		assert.Zero(t, extractor.calls)
		assert.Empty(t, objects.written)
	})

	t.Run("saves the result and marks the record done", func(t *testing.T) {
		doc := samplePDF(t, 3)
		objects := newFakeObjects()
		objects.data["uploads/exams/midterm.pdf"] = doc
		records := &fakeRecords{}
		extractor := &fakeDocumentExtractor{result: result}

		require.NoError(t, newTestIngest(objects, records, extractor).Process(ctx, event))

		require.Len(t, records.created, 1)
		created := records.created[0]
		assert.Equal(t, models.StatusProcessing, created.Status)
		assert.Equal(t, calculateHash(doc), created.FileHash)
		assert.Equal(t, "exams/midterm.pdf", created.OriginalFilename)
		assert.False(t, created.CreatedAt.IsZero())

		require.Len(t, records.updates, 2)
		assert.Equal(t, map[string]any{"pageCount": 3}, records.updates[0])
		assert.Equal(t, map[string]any{
			"status":        models.StatusDone,
			"questionCount": 2,
			"resultUri":     "gs://results/doc-1/questions.json",
		}, records.last())

		written, ok := objects.written["results/doc-1/questions.json"]
		require.True(t, ok)
		var saved models.ExtractionResult
		require.NoError(t, json.Unmarshal(written, &saved))
		assert.Equal(t, *result, saved)
	})

	t.Run("marks the record failed when extraction fails", func(t *testing.T) {
		objects := newFakeObjects()
		objects.data["uploads/exams/midterm.pdf"] = samplePDF(t, 1)
		records := &fakeRecords{}
		cause := fmt.Errorf("%w: model overloaded", models.ErrUpstreamUnavailable)
		extractor := &fakeDocumentExtractor{err: cause}

		err := newTestIngest(objects, records, extractor).Process(ctx, event)
		require.Error(t, err)
		assert.ErrorIs(t, err, models.ErrUpstreamUnavailable)

		last := records.last()
		assert.Equal(t, models.StatusFailed, last["status"])
		assert.Contains(t, last["errorDetails"], "extraction failed")
		assert.Contains(t, last["errorDetails"], "model overloaded")
		assert.Empty(t, objects.written)
	})

	t.Run("marks the record failed when the PDF is unreadable", func(t *testing.T) {
		objects := newFakeObjects()
		objects.data["uploads/exams/midterm.pdf"] = []byte("not a pdf")
		records := &fakeRecords{}
		extractor := &fakeDocumentExtractor{result: result}

		err := newTestIngest(objects, records, extractor).Process(ctx, event)
		assert.ErrorIs(t, err, models.ErrDocumentDecode)
		require.Len(t, records.created, 1)
		assert.Equal(t, models.StatusFailed, records.last()["status"])
		assert.Zero(t, extractor.calls)
	})

	t.Run("returns read errors without creating a record", func(t *testing.T) {
		records := &fakeRecords{}
		err := newTestIngest(newFakeObjects(), records, &fakeDocumentExtractor{}).Process(ctx, event)
		assert.True(t, errors.Is(err, models.ErrNotFound))
		assert.Empty(t, records.created)
	})
}
