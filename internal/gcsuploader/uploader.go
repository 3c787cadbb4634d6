// Package gcsuploader stores receipt images in Google Cloud Storage and reads
// them back for scanning. It assumes Application Default Credentials.
package gcsuploader

import (
	"context"
	"fmt"
	"io"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"cloud.google.com/go/storage"
)

// uploadTimeout bounds a single object write.
const uploadTimeout = 2 * time.Minute

// ReceiptStore uploads and fetches receipt images.
//
//go:generate mockgen -destination=mocks/mock_gcsuploader.go -source=uploader.go ReceiptStore
type ReceiptStore interface {
	// UploadReceipt uploads a local file for the user and returns its gs:// URI.
	UploadReceipt(ctx context.Context, userID, filePath string) (string, error)
	// Fetch downloads the bytes behind a gs:// URI.
	Fetch(ctx context.Context, gcsURI string) ([]byte, error)
}

// Client is the ReceiptStore backed by a single bucket.
type Client struct {
	storage *storage.Client
	bucket  string
	now     func() time.Time
}

// NewClient creates a storage client for bucket.
func NewClient(ctx context.Context, bucket string) (*Client, error) {
	if bucket == "" {
		return nil, fmt.Errorf("NewClient: bucket is required")
	}
	sc, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("NewClient: create storage client: %w", err)
	}
	return &Client{storage: sc, bucket: bucket, now: time.Now}, nil
}

// Close releases the underlying storage client.
func (c *Client) Close() error {
	return c.storage.Close()
}

// UploadReceipt implements ReceiptStore.
func (c *Client) UploadReceipt(ctx context.Context, userID, filePath string) (string, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("UploadReceipt: open file %q: %w", filePath, err)
	}
	defer f.Close()

	ctx, cancel := context.WithTimeout(ctx, uploadTimeout)
	defer cancel()

	objectName := ReceiptObjectName(userID, filepath.Base(filePath), c.now())
	w := c.storage.Bucket(c.bucket).Object(objectName).NewWriter(ctx)
	if ct := mime.TypeByExtension(filepath.Ext(filePath)); ct != "" {
		w.ContentType = ct
	}

	if _, err := io.Copy(w, f); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("UploadReceipt: copy file to GCS writer: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("UploadReceipt: finalize upload: %w", err)
	}

	return fmt.Sprintf("gs://%s/%s", c.bucket, objectName), nil
}

// Fetch implements ReceiptStore.
func (c *Client) Fetch(ctx context.Context, gcsURI string) ([]byte, error) {
	bucket, object, err := ParseURI(gcsURI)
	if err != nil {
		return nil, fmt.Errorf("Fetch: %w", err)
	}

	rc, err := c.storage.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("Fetch: reading object %s/%s: %w", bucket, object, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("Fetch: reading bytes: %w", err)
	}
	return data, nil
}

// ParseURI splits gs://bucket/path/to/object into bucket and object path.
func ParseURI(gcsURI string) (bucket, object string, err error) {
	if !strings.HasPrefix(gcsURI, "gs://") {
		return "", "", fmt.Errorf("invalid GCS URI: %s", gcsURI)
	}
	parts := strings.SplitN(strings.TrimPrefix(gcsURI, "gs://"), "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid GCS URI (no object path): %s", gcsURI)
	}
	return parts[0], parts[1], nil
}

// FilenameFromURI returns the last path element of a gs:// URI.
// e.g., "gs://bucket/receipts/u1/a.jpg" → "a.jpg"
func FilenameFromURI(uri string) string {
	parts := strings.SplitN(strings.TrimPrefix(uri, "gs://"), "/", 2)
	if len(parts) < 2 {
		return parts[0]
	}
	return path.Base(parts[1])
}

// ReceiptObjectName namespaces receipts per user and upload time.
func ReceiptObjectName(userID, filename string, at time.Time) string {
	return path.Join("receipts", userID, at.UTC().Format("20060102T150405")+"-"+filename)
}

// Ensure Client implements ReceiptStore.
var _ ReceiptStore = (*Client)(nil)
