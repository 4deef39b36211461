package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// testClient creates a Client backed by a test HTTP server.
// The handler receives real S3 XML-protocol requests.
func testClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := s3.New(s3.Options{
		Region:       "us-east-1",
		BaseEndpoint: aws.String(server.URL),
		UsePathStyle: true,
		Credentials:  credentials.NewStaticCredentialsProvider("test-key", "test-secret", ""),
		HTTPClient:   &http.Client{Transport: &http.Transport{}},
	})

	return &Client{s3: client}
}

// xmlResponse is a helper to write S3-style XML responses.
func xmlResponse(w http.ResponseWriter, statusCode int, body string) {
	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(statusCode)
	_, _ = w.Write([]byte(body))
}

func TestNewClient(t *testing.T) {
	t.Setenv("AWS_CONFIG_FILE", "/nonexistent/config")
	t.Setenv("AWS_SHARED_CREDENTIALS_FILE", "/nonexistent/credentials")

	client, err := NewClient(context.Background(), Options{
		Region:      "us-east-1",
		Endpoint:    "https://s3.example.com",
		PathStyle:   true,
		Credentials: credentials.NewStaticCredentialsProvider("id", "secret", ""),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if client == nil || client.s3 == nil {
		t.Fatal("expected client to be initialised")
	}
}

func TestBucketExists(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		status  int
		body    string
		want    bool
		wantErr string
	}{
		{name: "exists", status: 200, want: true},
		{name: "not found", status: 404, want: false},
		{
			name:    "access denied",
			status:  403,
			body:    `<?xml version="1.0" encoding="UTF-8"?><Error><Code>AccessDenied</Code><Message>Access Denied</Message></Error>`,
			wantErr: "failed to check bucket docs",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodHead {
					t.Errorf("method = %s, want HEAD", r.Method)
				}
				xmlResponse(w, tt.status, tt.body)
			}))

			got, err := client.BucketExists(context.Background(), "docs")
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("error = %v, want containing %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("BucketExists() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPutObject(t *testing.T) {
	t.Parallel()

	var (
		mu           sync.Mutex
		gotPath      string
		gotType      string
		capturedBody []byte
	)
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		gotPath = r.URL.Path
		gotType = r.Header.Get("Content-Type")
		capturedBody, _ = io.ReadAll(r.Body)
		w.Header().Set("ETag", `"abc"`)
		w.WriteHeader(200)
	}))

	err := client.PutObject(context.Background(), "docs", "clusters/demo.yaml", "application/yaml", []byte("kind: Cluster\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if gotPath != "/docs/clusters/demo.yaml" {
		t.Errorf("path = %q", gotPath)
	}
	if gotType != "application/yaml" {
		t.Errorf("content type = %q", gotType)
	}
	if string(capturedBody) != "kind: Cluster\n" {
		t.Errorf("body = %q", capturedBody)
	}
}

func TestPutObject_Error(t *testing.T) {
	t.Parallel()

	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		xmlResponse(w, 403, `<?xml version="1.0" encoding="UTF-8"?><Error><Code>AccessDenied</Code><Message>Access Denied</Message></Error>`)
	}))

	err := client.PutObject(context.Background(), "docs", "demo.yaml", "", []byte("x"))
	if err == nil || !strings.Contains(err.Error(), "failed to put object demo.yaml in bucket docs") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestIsNotFoundError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil error", nil, false},
		{"typed no such bucket", &s3types.NoSuchBucket{}, true},
		{"wrapped typed not found", fmt.Errorf("head: %w", &s3types.NotFound{}), true},
		{"api error code", &smithy.GenericAPIError{Code: "NoSuchBucket"}, true},
		{"other api error", &smithy.GenericAPIError{Code: "AccessDenied"}, false},
		{"plain error", errors.New("boom"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isNotFoundError(tt.err); got != tt.want {
				t.Errorf("isNotFoundError() = %v, want %v", got, tt.want)
			}
		})
	}
}
