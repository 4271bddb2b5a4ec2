package gcp

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
)

// NewFirestoreClient creates and returns a new Firestore client for the given project ID.
func NewFirestoreClient(ctx context.Context, projectID string) (*firestore.Client, error) {
	if projectID == "" {
		return nil, fmt.Errorf("projectID must be provided to create a firestore client")
	}

	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create Firestore client: %w", err)
	}

	return client, nil
}

// FindFirst returns the ID of the first document in the collection whose
// field equals value, or "" when none matches.
func FindFirst(ctx context.Context, coll *firestore.CollectionRef, field string, value any) (string, error) {
	docs, err := coll.Where(field, "==", value).Limit(1).Documents(ctx).GetAll()
	if err != nil {
		return "", fmt.Errorf("failed to query %s by %s: %w", coll.ID, field, err)
	}
	if len(docs) == 0 {
		return "", nil
	}
	return docs[0].Ref.ID, nil
}
