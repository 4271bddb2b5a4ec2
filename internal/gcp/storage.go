package gcp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"
)

// GetEnv is a helper to read an environment variable or return a default value.
func GetEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// ErrObjectTooLarge is returned by ReadObject when the object exceeds the limit.
var ErrObjectTooLarge = errors.New("object exceeds size limit")

// SaveToGCSAtomically writes content to a GCS object only if it doesn't already exist.
// An existing object is not a failure: re-delivered events must stay idempotent.
func SaveToGCSAtomically(ctx context.Context, bucket *storage.BucketHandle, objectName, content string) error {
	writer := bucket.Object(objectName).If(storage.Conditions{DoesNotExist: true}).NewWriter(ctx)
	writer.ContentType = contentTypeFor(objectName)

	if _, err := io.Copy(writer, strings.NewReader(content)); err != nil {
		_ = writer.Close()
		if isPreconditionFailed(err) {
			slog.Info("Object already exists, skipping write.", "gcsObject", objectName)
			return nil
		}
		slog.Error("Failed to copy content to GCS object.", "gcsObject", objectName, "error", err)
		return fmt.Errorf("failed to write to GCS: %w", err)
	}

	if err := writer.Close(); err != nil {
		if isPreconditionFailed(err) {
			slog.Info("Object already exists, skipping write.", "gcsObject", objectName)
			return nil
		}
		slog.Error("Failed to close GCS writer.", "gcsObject", objectName, "error", err)
		return fmt.Errorf("failed to finalize GCS write: %w", err)
	}
	return nil
}

// ReadObject downloads an object into memory, refusing objects larger than
// maxBytes. maxBytes <= 0 disables the limit.
func ReadObject(ctx context.Context, client *storage.Client, bucket, object string, maxBytes int64) ([]byte, error) {
	reader, err := client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get GCS object reader for gs://%s/%s: %w", bucket, object, err)
	}
	defer reader.Close()

	if maxBytes > 0 && reader.Attrs.Size > maxBytes {
		return nil, fmt.Errorf("gs://%s/%s is %d bytes: %w", bucket, object, reader.Attrs.Size, ErrObjectTooLarge)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read gs://%s/%s: %w", bucket, object, err)
	}
	return data, nil
}

// Objects adapts a storage client to whole-object reads and create-only
// writes.
type Objects struct {
	client *storage.Client
}

func NewObjects(client *storage.Client) *Objects {
	return &Objects{client: client}
}

func (o *Objects) Read(ctx context.Context, bucket, object string, maxBytes int64) ([]byte, error) {
	return ReadObject(ctx, o.client, bucket, object, maxBytes)
}

// WriteIfAbsent writes data unless the object already exists.
func (o *Objects) WriteIfAbsent(ctx context.Context, bucket, object string, data []byte) error {
	return SaveToGCSAtomically(ctx, o.client.Bucket(bucket), object, string(data))
}

func isPreconditionFailed(err error) bool {
	var gerr *googleapi.Error
	return errors.As(err, &gerr) && gerr.Code == http.StatusPreconditionFailed
}

func contentTypeFor(objectName string) string {
	if strings.HasSuffix(objectName, ".json") {
		return "application/json"
	}
	return "text/plain; charset=utf-8"
}
