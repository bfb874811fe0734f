package archive

import (
	"context"
	"fmt"

	"cloud.google.com/go/storage"
	"go.uber.org/zap"
)

// GCS writes snapshots to a Google Cloud Storage bucket.
type GCS struct {
	client *storage.Client
	bucket string
	logger *zap.Logger
}

// NewGCS initializes a GCS client and verifies the bucket is reachable, so a
// misconfigured bucket fails at startup rather than mid-run. Authentication
// uses Application Default Credentials.
func NewGCS(ctx context.Context, bucketName string, logger *zap.Logger) (*GCS, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create gcs client: %w", err)
	}
	if _, err := client.Bucket(bucketName).Attrs(ctx); err != nil {
		if closeErr := client.Close(); closeErr != nil {
			logger.Warn("failed to close gcs client after attrs check", zap.Error(closeErr))
		}
		return nil, fmt.Errorf("get gcs bucket %q attributes: %w", bucketName, err)
	}
	return &GCS{client: client, bucket: bucketName, logger: logger}, nil
}

// Save uploads data to the named object.
func (g *GCS) Save(ctx context.Context, objectName string, data []byte) error {
	wc := g.client.Bucket(g.bucket).Object(objectName).NewWriter(ctx)
	if _, err := wc.Write(data); err != nil {
		if closeErr := wc.Close(); closeErr != nil {
			g.logger.Warn("failed to close gcs writer after write failure", zap.Error(closeErr))
		}
		return fmt.Errorf("write gcs object %s: %w", objectName, err)
	}
	// Close finalizes the upload.
	if err := wc.Close(); err != nil {
		return fmt.Errorf("close gcs writer for object %s: %w", objectName, err)
	}
	return nil
}

// Close releases the underlying client.
func (g *GCS) Close() error {
	return g.client.Close()
}
