package storage_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"testing"

	"github.com/JaimeStill/inspector/pkg/storage"
)

const azuriteConnString = "DefaultEndpointsProtocol=http;AccountName=devstoreaccount1;AccountKey=Eby8vdM02xNOcqFlqUwJPLlmEtlCDXJ1OUzFT50uSRZ6IFsuFq2UVErCz4I6tq/K1SZFPTOtr/KBHBeksoGMGw==;BlobEndpoint=http://127.0.0.1:10000/devstoreaccount1;"

func TestConfigFinalizeDefaults(t *testing.T) {
	cfg := storage.Config{ConnectionString: azuriteConnString}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}

	if cfg.ContainerName != "inspections" {
		t.Errorf("ContainerName = %q, want inspections", cfg.ContainerName)
	}
}

func TestConfigFinalizeEnvOverrides(t *testing.T) {
	t.Setenv("INSPECTOR_STORAGE_CONTAINER_NAME", "evidence")
	t.Setenv("INSPECTOR_STORAGE_ACCOUNT_URL", "https://inspector.blob.core.windows.net")

	env := &storage.Env{
		ContainerName:    "INSPECTOR_STORAGE_CONTAINER_NAME",
		ConnectionString: "INSPECTOR_STORAGE_CONNECTION_STRING",
		AccountURL:       "INSPECTOR_STORAGE_ACCOUNT_URL",
	}

	cfg := storage.Config{}
	if err := cfg.Finalize(env); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}

	if cfg.ContainerName != "evidence" {
		t.Errorf("ContainerName = %q, want evidence", cfg.ContainerName)
	}
	if cfg.AccountURL != "https://inspector.blob.core.windows.net" {
		t.Errorf("AccountURL = %q", cfg.AccountURL)
	}
}

func TestConfigFinalizeValidation(t *testing.T) {
	tests := []struct {
		name    string
		cfg     storage.Config
		wantErr string
	}{
		{"no endpoint", storage.Config{}, "connection_string or account_url required"},
		{"bad account url", storage.Config{AccountURL: "inspector.blob.core.windows.net"}, "account_url must be an http(s) URL"},
		{"short container", storage.Config{ContainerName: "ab", ConnectionString: "x"}, "must be 3-63 characters"},
		{"uppercase container", storage.Config{ContainerName: "Inspections", ConnectionString: "x"}, "must be lowercase alphanumeric"},
		{"double hyphen", storage.Config{ContainerName: "site--photos", ConnectionString: "x"}, "misplaced hyphens"},
		{"trailing hyphen", storage.Config{ContainerName: "photos-", ConnectionString: "x"}, "misplaced hyphens"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Finalize(nil)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Finalize() error = %v, want %q", err, tt.wantErr)
			}
		})
	}
}

func TestConfigMerge(t *testing.T) {
	base := storage.Config{ContainerName: "inspections", ConnectionString: "base"}
	base.Merge(&storage.Config{ConnectionString: "overlay"})

	if base.ContainerName != "inspections" {
		t.Errorf("ContainerName = %q, want inspections (unchanged)", base.ContainerName)
	}
	if base.ConnectionString != "overlay" {
		t.Errorf("ConnectionString = %q, want overlay", base.ConnectionString)
	}
}

func TestNew(t *testing.T) {
	sys, err := storage.New(&storage.Config{
		ContainerName:    "inspections",
		ConnectionString: azuriteConnString,
	}, slog.Default())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if sys == nil {
		t.Fatal("New() returned nil system")
	}

	_, err = storage.New(&storage.Config{
		ContainerName:    "inspections",
		ConnectionString: "not-a-connection-string",
	}, slog.Default())
	if err == nil {
		t.Error("expected error for invalid connection string")
	}
}

func TestMapHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{storage.ErrNotFound, http.StatusNotFound},
		{fmt.Errorf("download: %w", storage.ErrNotFound), http.StatusNotFound},
		{storage.ErrEmptyKey, http.StatusBadRequest},
		{storage.ErrInvalidKey, http.StatusBadRequest},
		{storage.ErrTooLarge, http.StatusRequestEntityTooLarge},
		{fmt.Errorf("upload findings/x: %w", storage.ErrUnavailable), http.StatusServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := storage.MapHTTPStatus(tt.err); got != tt.want {
			t.Errorf("MapHTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestKeyValidation(t *testing.T) {
	sys, err := storage.New(&storage.Config{
		ContainerName:    "inspections",
		ConnectionString: azuriteConnString,
	}, slog.Default())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	tests := []struct {
		name    string
		key     string
		wantErr error
	}{
		{"empty", "", storage.ErrEmptyKey},
		{"traversal", "findings/../secrets", storage.ErrInvalidKey},
		{"dotted segment", "findings/..hidden/a.jpg", storage.ErrInvalidKey},
	}

	ctx := context.Background()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := sys.Upload(ctx, tt.key, bytes.NewReader(nil), "image/jpeg"); !errors.Is(err, tt.wantErr) {
				t.Errorf("Upload() error = %v, want %v", err, tt.wantErr)
			}
			if _, err := sys.Download(ctx, tt.key); !errors.Is(err, tt.wantErr) {
				t.Errorf("Download() error = %v, want %v", err, tt.wantErr)
			}
			if err := sys.Delete(ctx, tt.key); !errors.Is(err, tt.wantErr) {
				t.Errorf("Delete() error = %v, want %v", err, tt.wantErr)
			}
			if _, err := sys.Exists(ctx, tt.key); !errors.Is(err, tt.wantErr) {
				t.Errorf("Exists() error = %v, want %v", err, tt.wantErr)
			}
			if _, err := storage.ReadAll(ctx, sys, tt.key); !errors.Is(err, tt.wantErr) {
				t.Errorf("ReadAll() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
