package findings

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/JaimeStill/inspector/internal/defects"
	"github.com/JaimeStill/inspector/pkg/repository"
	"github.com/JaimeStill/inspector/pkg/storage"
)

type repo struct {
	db      *sql.DB
	storage storage.System
	logger  *slog.Logger
}

// New creates a finding repository implementing the System interface.
func New(db *sql.DB, store storage.System, logger *slog.Logger) System {
	return &repo{
		db:      db,
		storage: store,
		logger:  logger.With("system", "findings"),
	}
}

func (r *repo) Handler(maxUploadSize int64) *Handler {
	return NewHandler(r, r.logger, maxUploadSize)
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Detail, error) {
	scope := Scope{FindingID: &id}

	found, err := List(ctx, r.db, scope)
	if err != nil {
		return nil, fmt.Errorf("query finding: %w", err)
	}
	if len(found) == 0 {
		return nil, ErrNotFound
	}

	tags, err := ListTags(ctx, r.db, scope)
	if err != nil {
		return nil, fmt.Errorf("query tags: %w", err)
	}

	return &Detail{Finding: found[0], Tags: tags}, nil
}

func (r *repo) CreateText(ctx context.Context, roomID uuid.UUID, cmd CreateTextCommand) (*Finding, error) {
	note := strings.TrimSpace(cmd.Note)
	if note == "" {
		return nil, ErrEmptyNote
	}

	f, err := r.insert(ctx, uuid.New(), roomID, defects.KindText, note)
	if err != nil {
		return nil, err
	}

	r.logger.Info("text finding created", "id", f.ID, "room_id", roomID)
	return f, nil
}

func (r *repo) CreateImage(ctx context.Context, roomID uuid.UUID, cmd CreateImageCommand) (*Finding, error) {
	if len(cmd.Data) == 0 || !strings.HasPrefix(cmd.ContentType, "image/") {
		return nil, ErrInvalidImage
	}

	if err := r.roomExists(ctx, roomID); err != nil {
		return nil, err
	}

	id := uuid.New()
	key := buildStorageKey(id, sanitizeFilename(cmd.Filename))

	if err := r.storage.Upload(ctx, key, bytes.NewReader(cmd.Data), cmd.ContentType); err != nil {
		return nil, fmt.Errorf("upload image blob: %w", err)
	}

	f, err := r.insert(ctx, id, roomID, defects.KindImage, key)
	if err != nil {
		if delErr := r.storage.Delete(ctx, key); delErr != nil {
			r.logger.Warn("compensating blob delete failed", "key", key, "error", delErr)
		}
		return nil, err
	}

	r.logger.Info("image finding created", "id", f.ID, "room_id", roomID, "key", key)
	return f, nil
}

func (r *repo) Image(ctx context.Context, id uuid.UUID) (io.ReadCloser, string, error) {
	d, err := r.Find(ctx, id)
	if err != nil {
		return nil, "", err
	}
	if d.Kind != defects.KindImage {
		return nil, "", ErrInvalidImage
	}

	rc, err := r.storage.Download(ctx, d.Content)
	if err != nil {
		return nil, "", err
	}

	return rc, contentTypeFor(d.Content), nil
}

func (r *repo) insert(ctx context.Context, id, roomID uuid.UUID, kind defects.Kind, content string) (*Finding, error) {
	f, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Finding, error) {
		var propertyID uuid.UUID
		err := tx.QueryRowContext(ctx,
			"SELECT property_id FROM rooms WHERE id = $1 FOR SHARE",
			roomID,
		).Scan(&propertyID)
		if err != nil {
			return Finding{}, repository.MapError(err, ErrRoomNotFound, ErrDuplicate)
		}

		if _, err := tx.ExecContext(ctx,
			"INSERT INTO findings(id, room_id, kind, content) VALUES ($1, $2, $3, $4)",
			id, roomID, kind, content,
		); err != nil {
			return Finding{}, repository.MapError(err, ErrNotFound, ErrDuplicate)
		}

		return Finding{
			ID:         id,
			RoomID:     roomID,
			PropertyID: propertyID,
			Kind:       kind,
			Content:    content,
			Status:     StatusPending,
		}, nil
	})
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *repo) roomExists(ctx context.Context, roomID uuid.UUID) error {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM rooms WHERE id = $1)",
		roomID,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check room: %w", err)
	}
	if !exists {
		return ErrRoomNotFound
	}
	return nil
}

func buildStorageKey(id uuid.UUID, filename string) string {
	return fmt.Sprintf("findings/%s/%s", id, filename)
}

func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	if name == "." || name == "/" || name == "" {
		name = "image"
	}
	return url.PathEscape(name)
}

func contentTypeFor(key string) string {
	switch strings.ToLower(filepath.Ext(key)) {
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	}
	return "application/octet-stream"
}

func detectContentType(header string, data []byte) string {
	header = strings.TrimSpace(header)
	if header != "" && header != "application/octet-stream" {
		return header
	}
	return http.DetectContentType(data)
}
