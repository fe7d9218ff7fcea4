package memstore

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"

	"github.com/JaimeStill/inspector/pkg/lifecycle"
	"github.com/JaimeStill/inspector/pkg/storage"
)

// Blobs is an in-memory storage.System.
type Blobs struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// NewBlobs creates an empty blob store.
func NewBlobs() *Blobs {
	return &Blobs{blobs: make(map[string][]byte)}
}

// Put stores data at key without validation.
func (b *Blobs) Put(key string, data []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.blobs[key] = bytes.Clone(data)
}

func (b *Blobs) Start(lc *lifecycle.Coordinator) error {
	return nil
}

func (b *Blobs) Upload(ctx context.Context, key string, reader io.Reader, contentType string) error {
	if err := validateKey(key); err != nil {
		return err
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}

	b.Put(key, data)
	return nil
}

func (b *Blobs) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	data, ok := b.blobs[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (b *Blobs) Delete(ctx context.Context, key string) error {
	if err := validateKey(key); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.blobs[key]; !ok {
		return storage.ErrNotFound
	}
	delete(b.blobs, key)
	return nil
}

func (b *Blobs) Exists(ctx context.Context, key string) (bool, error) {
	if err := validateKey(key); err != nil {
		return false, err
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	_, ok := b.blobs[key]
	return ok, nil
}

func validateKey(key string) error {
	if key == "" {
		return storage.ErrEmptyKey
	}
	if strings.Contains(key, "..") {
		return storage.ErrInvalidKey
	}
	return nil
}
