package handlers

import (
	"mime/multipart"
	"strings"
	"testing"
)

func TestSavePhotoRejectsBadFiles(t *testing.T) {
	cases := []struct {
		name     string
		filename string
		size     int64
		wantErr  string
	}{
		{"no extension", "photo", 100, "extension is required"},
		{"executable", "photo.exe", 100, "unsupported photo type"},
		{"svg", "photo.svg", 100, "unsupported photo type"},
		{"oversized", "photo.jpg", 6 << 20, "too large"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			header := &multipart.FileHeader{Filename: tc.filename, Size: tc.size}
			_, err := savePhoto(header)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("error %q does not contain %q", err, tc.wantErr)
			}
		})
	}
}

func TestSafeDeleteUpload(t *testing.T) {
	cases := []struct {
		name    string
		relPath string
		wantErr bool
	}{
		{"empty path is a no-op", "", false},
		{"missing file is a no-op", "uploads/places/doesnotexist.jpg", false},
		{"outside uploads tree", "etc/passwd", true},
		{"traversal out of uploads", "uploads/../../etc/passwd", true},
		{"absolute system path", "/etc/passwd", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := safeDeleteUpload(tc.relPath)
			if tc.wantErr && err == nil {
				t.Fatal("expected error, got nil")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}
