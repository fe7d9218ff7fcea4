package findings_test

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JaimeStill/inspector/internal/defects"
	"github.com/JaimeStill/inspector/internal/findings"
	"github.com/JaimeStill/inspector/pkg/routes"
)

type fakeSystem struct {
	rooms   map[uuid.UUID]bool
	created []findings.CreateImageCommand
}

func (f *fakeSystem) Handler(maxUploadSize int64) *findings.Handler {
	return findings.NewHandler(f, slog.New(slog.NewTextHandler(io.Discard, nil)), maxUploadSize)
}

func (f *fakeSystem) Find(context.Context, uuid.UUID) (*findings.Detail, error) {
	return nil, findings.ErrNotFound
}

func (f *fakeSystem) CreateText(_ context.Context, roomID uuid.UUID, cmd findings.CreateTextCommand) (*findings.Finding, error) {
	if !f.rooms[roomID] {
		return nil, findings.ErrRoomNotFound
	}
	if strings.TrimSpace(cmd.Note) == "" {
		return nil, findings.ErrEmptyNote
	}
	return &findings.Finding{ID: uuid.New(), RoomID: roomID, Kind: defects.KindText, Content: cmd.Note, Status: findings.StatusPending}, nil
}

func (f *fakeSystem) CreateImage(_ context.Context, roomID uuid.UUID, cmd findings.CreateImageCommand) (*findings.Finding, error) {
	if !strings.HasPrefix(cmd.ContentType, "image/") {
		return nil, findings.ErrInvalidImage
	}
	f.created = append(f.created, cmd)
	return &findings.Finding{ID: uuid.New(), RoomID: roomID, Kind: defects.KindImage, Status: findings.StatusPending}, nil
}

func (f *fakeSystem) Image(context.Context, uuid.UUID) (io.ReadCloser, string, error) {
	return io.NopCloser(strings.NewReader("png")), "image/png", nil
}

func newMux(sys *fakeSystem, maxUpload int64) *http.ServeMux {
	mux := http.NewServeMux()
	h := sys.Handler(maxUpload)
	routes.Register(mux, h.Routes(), h.RoomRoutes())
	return mux
}

func multipartBody(t *testing.T, filename string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func TestCreateText(t *testing.T) {
	room := uuid.New()
	mux := newMux(&fakeSystem{rooms: map[uuid.UUID]bool{room: true}}, 1<<20)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/rooms/"+room.String()+"/findings",
		strings.NewReader(`{"note": "crack above the door"}`)))
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"processing_status":"pending"`)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/rooms/"+room.String()+"/findings",
		strings.NewReader(`{"note": ""}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/rooms/"+uuid.NewString()+"/findings",
		strings.NewReader(`{"note": "crack"}`)))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateImage(t *testing.T) {
	sys := &fakeSystem{}
	mux := newMux(sys, 1<<20)
	room := uuid.New()

	body, contentType := multipartBody(t, "leak.png", []byte("\x89PNG\r\n\x1a\n0000"))
	req := httptest.NewRequest(http.MethodPost, "/rooms/"+room.String()+"/images", body)
	req.Header.Set("Content-Type", contentType)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, sys.created, 1)
	assert.Equal(t, "leak.png", sys.created[0].Filename)
	assert.Equal(t, "image/png", sys.created[0].ContentType)
}

func TestCreateImageTooLarge(t *testing.T) {
	mux := newMux(&fakeSystem{}, 64)

	body, contentType := multipartBody(t, "big.png", bytes.Repeat([]byte{0x89}, 4096))
	req := httptest.NewRequest(http.MethodPost, "/rooms/"+uuid.NewString()+"/images", body)
	req.Header.Set("Content-Type", contentType)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestFindNotFound(t *testing.T) {
	mux := newMux(&fakeSystem{}, 1<<20)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/findings/"+uuid.NewString(), nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/findings/bogus", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
