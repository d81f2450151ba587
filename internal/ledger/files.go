// Package ledger reads and writes ledgers as CSV files stored locally or in
// Google Cloud Storage.
package ledger

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/Veraticus/tally/internal/config"
)

const gcsScheme = "gs://"

// IsGCS reports whether location is a gs://bucket/object URI.
func IsGCS(location string) bool {
	return strings.HasPrefix(location, gcsScheme)
}

// SplitGCS returns the bucket and object of a gs:// URI.
func SplitGCS(uri string) (bucket, object string, err error) {
	if !IsGCS(uri) {
		return "", "", fmt.Errorf("invalid GCS URI: %s", uri)
	}

	parts := strings.SplitN(strings.TrimPrefix(uri, gcsScheme), "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid GCS URI (no object path): %s", uri)
	}
	return parts[0], parts[1], nil
}

// Open opens a ledger for reading. Local paths get ~ and $VAR expansion;
// gs:// URIs are read with Application Default Credentials.
func Open(ctx context.Context, location string) (io.ReadCloser, error) {
	if !IsGCS(location) {
		f, err := os.Open(config.ExpandPath(location)) // #nosec G304 -- user-provided ledger path
		if err != nil {
			return nil, err
		}
		return f, nil
	}

	bucket, object, err := SplitGCS(location)
	if err != nil {
		return nil, err
	}

	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}

	r, err := client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("open GCS object %s/%s: %w", bucket, object, err)
	}

	return &gcsReader{Reader: r, client: client}, nil
}

// Create opens a ledger for writing, replacing any existing content.
// For gs:// URIs the object is only committed when Close succeeds.
func Create(ctx context.Context, location string) (io.WriteCloser, error) {
	if !IsGCS(location) {
		path := config.ExpandPath(location)
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return nil, fmt.Errorf("failed to create directory: %w", err)
			}
		}
		f, err := os.Create(path) // #nosec G304 -- user-provided ledger path
		if err != nil {
			return nil, err
		}
		return f, nil
	}

	bucket, object, err := SplitGCS(location)
	if err != nil {
		return nil, err
	}

	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}

	w := client.Bucket(bucket).Object(object).NewWriter(ctx)
	w.ContentType = "text/csv"

	return &gcsWriter{Writer: w, client: client}, nil
}

type gcsReader struct {
	*storage.Reader
	client *storage.Client
}

func (r *gcsReader) Close() error {
	err := r.Reader.Close()
	if cerr := r.client.Close(); err == nil {
		err = cerr
	}
	return err
}

type gcsWriter struct {
	*storage.Writer
	client *storage.Client
}

func (w *gcsWriter) Close() error {
	err := w.Writer.Close()
	if err != nil {
		err = fmt.Errorf("finalize upload: %w", err)
	}
	if cerr := w.client.Close(); err == nil {
		err = cerr
	}
	return err
}
