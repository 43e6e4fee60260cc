package gcs

import (
	"strings"
	"testing"
	"time"
)

func TestUploadObjectName(t *testing.T) {
	now := time.Date(2024, time.March, 5, 10, 0, 0, 0, time.UTC)

	name := UploadObjectName(now, "statement.csv")
	if !strings.HasPrefix(name, "uploads/2024/03/05/") {
		t.Errorf("object name = %q", name)
	}
	if !strings.HasSuffix(name, "-statement.csv") {
		t.Errorf("object name = %q", name)
	}

	// Path components in the client-supplied name must not escape the
	// date prefix.
	name = UploadObjectName(now, "../../etc/passwd")
	if strings.Contains(name, "..") {
		t.Errorf("object name carries traversal: %q", name)
	}

	name = UploadObjectName(now, "")
	if !strings.HasSuffix(name, "-upload.csv") {
		t.Errorf("object name = %q", name)
	}
}

func TestExtractFilename(t *testing.T) {
	tests := []struct {
		uri  string
		want string
	}{
		{"gs://bucket/uploads/2024/03/05/abc-file.csv", "abc-file.csv"},
		{"gs://bucket/file.csv", "file.csv"},
		{"gs://bucket-only", "bucket-only"},
	}
	for _, tt := range tests {
		if got := ExtractFilename(tt.uri); got != tt.want {
			t.Errorf("ExtractFilename(%q) = %q, want %q", tt.uri, got, tt.want)
		}
	}
}

func TestSplitURI(t *testing.T) {
	bucket, object, err := splitURI("gs://my-bucket/a/b.csv")
	if err != nil {
		t.Fatalf("splitURI returned error: %v", err)
	}
	if bucket != "my-bucket" || object != "a/b.csv" {
		t.Errorf("splitURI = %q/%q", bucket, object)
	}

	for _, bad := range []string{"http://x/y", "gs://bucket-only", "gs://bucket/", ""} {
		if _, _, err := splitURI(bad); err == nil {
			t.Errorf("splitURI(%q) did not fail", bad)
		}
	}
}
