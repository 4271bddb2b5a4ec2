package models

import "time"

// Extraction statuses recorded in Firestore by the ingest function.
const (
	StatusProcessing = "PROCESSING"
	StatusDone       = "DONE"
	StatusFailed     = "FAILED"
)

// ExtractionRecord tracks one uploaded PDF through the extraction pipeline.
type ExtractionRecord struct {
	FileHash         string    `firestore:"fileHash,omitempty"`
	OriginalFilename string    `firestore:"originalFilename,omitempty"`
	Status           string    `firestore:"status,omitempty"`
	ErrorDetails     string    `firestore:"errorDetails,omitempty"`
	PageCount        int       `firestore:"pageCount,omitempty"`
	QuestionCount    int       `firestore:"questionCount,omitempty"`
	ResultURI        string    `firestore:"resultUri,omitempty"`
	CreatedAt        time.Time `firestore:"createdAt,omitempty"`
}

// PageImage is a rendered page staged on local disk until OCR consumes it.
type PageImage struct {
	PageIndex int
	Path      string
}

// PageText is the OCR output of one page.
type PageText struct {
	PageIndex int
	Text      string
}
