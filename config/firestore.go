package config

import (
	"context"
	"errors"
	"os"

	"cloud.google.com/go/firestore"
)

var FirestoreClient *firestore.Client

// InitFirestore connects to FIRESTORE_PROJECT_ID. FIRESTORE_DATABASE_ID
// selects a named database; empty means "(default)".
func InitFirestore(ctx context.Context) error {
	projectID := os.Getenv("FIRESTORE_PROJECT_ID")
	if projectID == "" {
		return errors.New("FIRESTORE_PROJECT_ID environment variable is not set")
	}

	var (
		client *firestore.Client
		err    error
	)
	if dbID := os.Getenv("FIRESTORE_DATABASE_ID"); dbID != "" {
		client, err = firestore.NewClientWithDatabase(ctx, projectID, dbID)
	} else {
		client, err = firestore.NewClient(ctx, projectID)
	}
	if err != nil {
		return err
	}

	FirestoreClient = client
	return nil
}
