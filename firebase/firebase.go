package firebase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go"
	"google.golang.org/api/option"
)

var (
	App    *firebase.App
	bucket string
)

var errNotInitialised = errors.New("firebase app not initialized")

func credentialOptions() []option.ClientOption {
	credJSON := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")
	if credJSON == "" {
		slog.Warn("GOOGLE_APPLICATION_CREDENTIALS not set, using default credentials")
		return nil
	}
	if strings.HasPrefix(credJSON, "{") {
		slog.Info("Using Firebase credentials from environment variable")
		return []option.ClientOption{option.WithCredentialsJSON([]byte(credJSON))}
	}
	slog.Info("Using Firebase credentials from file", "path", credJSON)
	return []option.ClientOption{option.WithCredentialsFile(credJSON)}
}

// Init sets up the shared Firebase app. Both arguments may be empty, in
// which case the SDK falls back to FIREBASE_CONFIG and the credentials.
func Init(ctx context.Context, projectID, storageBucket string) error {
	var cfg *firebase.Config
	if projectID != "" || storageBucket != "" {
		cfg = &firebase.Config{ProjectID: projectID, StorageBucket: storageBucket}
	}

	app, err := firebase.NewApp(ctx, cfg, credentialOptions()...)
	if err != nil {
		return fmt.Errorf("firebase init failed: %w", err)
	}

	App = app
	bucket = storageBucket
	slog.Info("Firebase initialized", "project", projectID, "bucket", storageBucket)
	return nil
}

// Firestore opens a client for the document store driver.
func Firestore(ctx context.Context) (*firestore.Client, error) {
	if App == nil {
		return nil, errNotInitialised
	}
	return App.Firestore(ctx)
}
