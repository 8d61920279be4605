package firebase

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"regexp"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	gcs "cloud.google.com/go/storage"
	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/option"

	"storefront-backend/logger"
)

var App *firebase.App

// sanitizeFilename removes special characters from filenames and limits length.
func sanitizeFilename(filename string) string {
	re := regexp.MustCompile(`[^a-zA-Z0-9._-]`)
	sanitized := re.ReplaceAllString(filename, "_")

	if len(sanitized) > 100 {
		sanitized = sanitized[:100]
	}

	if sanitized == "" || sanitized == "." || sanitized == ".." {
		sanitized = "file"
	}

	return sanitized
}

// Init creates the shared Firebase app. GOOGLE_APPLICATION_CREDENTIALS may hold
// either a path to a service account file or the JSON itself.
func Init() error {
	credJSON := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")

	var opts []option.ClientOption

	if credJSON != "" {
		if strings.HasPrefix(credJSON, "{") {
			logger.Log.Info().Msg("using Firebase credentials from environment variable")
			opts = append(opts, option.WithCredentialsJSON([]byte(credJSON)))
		} else {
			// It's a file path
			logger.Log.Info().Str("path", credJSON).Msg("using Firebase credentials from file")
			opts = append(opts, option.WithCredentialsFile(credJSON))
		}
	} else {
		logger.Log.Warn().Msg("GOOGLE_APPLICATION_CREDENTIALS not set, using default credentials")
	}

	cfg := &firebase.Config{
		ProjectID:     os.Getenv("FIREBASE_PROJECT_ID"),
		StorageBucket: os.Getenv("FIREBASE_STORAGE_BUCKET"),
	}

	app, err := firebase.NewApp(context.Background(), cfg, opts...)
	if err != nil {
		return fmt.Errorf("firebase init failed: %w", err)
	}

	App = app
	logger.Log.Info().Msg("firebase initialized")
	return nil
}

// Firestore returns a Firestore client bound to the shared app.
// The caller owns the client and must Close it on shutdown.
func Firestore(ctx context.Context) (*firestore.Client, error) {
	if App == nil {
		return nil, fmt.Errorf("firebase app not initialized")
	}
	return App.Firestore(ctx)
}

// UploadProductImage streams the file into the storage bucket under products/
// and returns the public URL and object path.
func UploadProductImage(
	file multipart.File,
	filename string,
	contentType string,
) (string, string, error) {

	if App == nil {
		return "", "", fmt.Errorf("firebase app not initialized")
	}

	ctx := context.Background()
	bucketName := os.Getenv("FIREBASE_STORAGE_BUCKET")
	if bucketName == "" {
		return "", "", fmt.Errorf("FIREBASE_STORAGE_BUCKET not set")
	}

	client, err := App.Storage(ctx)
	if err != nil {
		return "", "", err
	}

	objectPath := fmt.Sprintf(
		"products/%d_%s",
		time.Now().Unix(),
		sanitizeFilename(filename),
	)

	bucket, err := client.Bucket(bucketName)
	if err != nil {
		return "", "", err
	}

	obj := bucket.Object(objectPath)
	wc := obj.NewWriter(ctx)
	wc.ContentType = contentType

	if _, err := io.Copy(wc, file); err != nil {
		wc.Close()
		return "", "", err
	}

	if err := wc.Close(); err != nil {
		return "", "", fmt.Errorf("failed to finalize upload: %v", err)
	}

	// Make object publicly readable so the URL works without authentication
	if err := obj.ACL().Set(ctx, gcs.AllUsers, gcs.RoleReader); err != nil {
		logger.Log.Warn().Err(err).Str("object", objectPath).Msg("failed to set public ACL")
	}

	url := fmt.Sprintf("https://storage.googleapis.com/%s/%s", bucketName, objectPath)
	return url, objectPath, nil
}

// DeleteFile deletes a file from the storage bucket given its object path.
func DeleteFile(objectPath string) error {
	if App == nil {
		return fmt.Errorf("firebase app not initialized")
	}

	ctx := context.Background()
	bucketName := os.Getenv("FIREBASE_STORAGE_BUCKET")
	if bucketName == "" {
		return fmt.Errorf("FIREBASE_STORAGE_BUCKET not set")
	}

	client, err := App.Storage(ctx)
	if err != nil {
		return err
	}

	bucket, err := client.Bucket(bucketName)
	if err != nil {
		return err
	}

	obj := bucket.Object(objectPath)
	if err := obj.Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete object %s: %v", objectPath, err)
	}

	logger.Log.Info().Str("object", objectPath).Str("bucket", bucketName).Msg("deleted file")
	return nil
}
