package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"survey_backend/internal/config"
)

func TestStorageServiceFallsBackToLocal(t *testing.T) {
	svc := NewStorageService(&config.StorageConfig{Type: "minio", LocalPath: t.TempDir()})
	if _, ok := svc.Provider.(*LocalStorageProvider); !ok {
		t.Fatalf("expected local fallback, got %T", svc.Provider)
	}
}

func TestLocalStorageUploadCreatesNestedKey(t *testing.T) {
	dir := t.TempDir()
	svc := NewStorageService(&config.StorageConfig{Type: "local", LocalPath: dir})

	url, err := svc.UploadBytes(context.Background(), "surveys/s1/results.csv", []byte("a,b\n"), csvContentType)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if url != "/exports/surveys/s1/results.csv" {
		t.Fatalf("unexpected url %q", url)
	}
	data, err := os.ReadFile(filepath.Join(dir, "surveys", "s1", "results.csv"))
	if err != nil || string(data) != "a,b\n" {
		t.Fatalf("unexpected file content %q (%v)", data, err)
	}
}
