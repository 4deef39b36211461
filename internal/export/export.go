// Package export writes the composed documents as a multi-document YAML
// stream to a file, standard output or an S3 bucket.
package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"sigs.k8s.io/controller-runtime/pkg/log"
	"sigs.k8s.io/yaml"

	"github.com/undistro/clusterwizard/internal/wizard"
)

// Stdout is the destination that selects standard output.
const Stdout = "-"

const contentType = "application/yaml"

var (
	// ErrNoDocuments is returned when there is nothing to export.
	ErrNoDocuments = errors.New("no documents to export")
	// ErrBucketNotFound is returned when the destination bucket does not exist.
	ErrBucketNotFound = errors.New("bucket not found")
	// ErrInvalidDestination is returned for malformed s3:// destinations.
	ErrInvalidDestination = errors.New("invalid destination")
)

// ObjectStore uploads objects to a bucket.
type ObjectStore interface {
	BucketExists(ctx context.Context, bucket string) (bool, error)
	PutObject(ctx context.Context, bucket, key, contentType string, data []byte) error
}

// Exporter writes rendered documents to a destination.
type Exporter struct {
	stdout io.Writer
	store  func(ctx context.Context) (ObjectStore, error)
}

// Option configures an Exporter.
type Option func(*Exporter)

// WithStdout replaces standard output.
func WithStdout(w io.Writer) Option {
	return func(e *Exporter) { e.stdout = w }
}

// WithObjectStore sets the factory used for s3:// destinations. The store is
// only created when such a destination is used.
func WithObjectStore(fn func(ctx context.Context) (ObjectStore, error)) Option {
	return func(e *Exporter) { e.store = fn }
}

// New creates an Exporter.
func New(opts ...Option) *Exporter {
	e := &Exporter{stdout: os.Stdout}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Render returns docs as a YAML stream, Cluster first.
func Render(docs *wizard.Documents) ([]byte, error) {
	if docs == nil || (docs.Cluster == nil && docs.Policy == nil) {
		return nil, ErrNoDocuments
	}

	var objs []any
	if docs.Cluster != nil {
		objs = append(objs, docs.Cluster)
	}
	if docs.Policy != nil {
		objs = append(objs, docs.Policy)
	}

	var buf bytes.Buffer
	for i, obj := range objs {
		out, err := yaml.Marshal(obj)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal document %d: %w", i, err)
		}
		if i > 0 {
			buf.WriteString("---\n")
		}
		buf.Write(out)
	}
	return buf.Bytes(), nil
}

// Export renders docs and writes them to dest: "-" for standard output, an
// s3://bucket/key URL, or a file path. It returns the resolved location.
func (e *Exporter) Export(ctx context.Context, dest string, docs *wizard.Documents) (string, error) {
	data, err := Render(docs)
	if err != nil {
		return "", err
	}
	logger := log.FromContext(ctx).WithValues("destination", dest, "bytes", len(data))

	switch {
	case dest == Stdout:
		if _, err := e.stdout.Write(data); err != nil {
			return "", fmt.Errorf("failed to write documents: %w", err)
		}
		return "stdout", nil

	case strings.HasPrefix(dest, "s3://"):
		bucket, key, err := ParseS3URL(dest)
		if err != nil {
			return "", err
		}
		if err := e.upload(ctx, bucket, key, data); err != nil {
			return "", err
		}
		logger.V(1).Info("Uploaded documents")
		return dest, nil
	}

	if dir := filepath.Dir(dest); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(dest, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", dest, err)
	}
	logger.V(1).Info("Wrote documents")
	return dest, nil
}

func (e *Exporter) upload(ctx context.Context, bucket, key string, data []byte) error {
	if e.store == nil {
		return fmt.Errorf("%w: s3 destinations are not configured", ErrInvalidDestination)
	}
	store, err := e.store(ctx)
	if err != nil {
		return fmt.Errorf("failed to create object store: %w", err)
	}

	exists, err := store.BucketExists(ctx, bucket)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: %s", ErrBucketNotFound, bucket)
	}
	return store.PutObject(ctx, bucket, key, contentType, data)
}

// ParseS3URL splits s3://bucket/key into its bucket and key.
func ParseS3URL(raw string) (bucket, key string, err error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", "", fmt.Errorf("%w: %w", ErrInvalidDestination, err)
	}
	if u.Scheme != "s3" || u.Host == "" {
		return "", "", fmt.Errorf("%w: %q is not an s3://bucket/key URL", ErrInvalidDestination, raw)
	}
	key = strings.TrimPrefix(u.Path, "/")
	if key == "" || strings.HasSuffix(key, "/") {
		return "", "", fmt.Errorf("%w: %q has no object key", ErrInvalidDestination, raw)
	}
	return u.Host, key, nil
}
