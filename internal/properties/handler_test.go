package properties_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JaimeStill/inspector/internal/defects"
	"github.com/JaimeStill/inspector/internal/properties"
	"github.com/JaimeStill/inspector/internal/risk"
	"github.com/JaimeStill/inspector/pkg/pagination"
	"github.com/JaimeStill/inspector/pkg/routes"
)

type fakeSystem struct {
	page    pagination.PageRequest
	filters properties.Filters
	details map[uuid.UUID]*properties.Details
}

func (f *fakeSystem) Handler() *properties.Handler {
	return properties.NewHandler(f, slog.New(slog.NewTextHandler(io.Discard, nil)), pagination.Config{
		DefaultPageSize: 20,
		MaxPageSize:     100,
	})
}

func (f *fakeSystem) List(_ context.Context, page pagination.PageRequest, filters properties.Filters) (*pagination.PageResult[properties.Property], error) {
	f.page = page
	f.filters = filters
	result := pagination.NewPageResult([]properties.Property{}, 0, page.Page, page.PageSize)
	return &result, nil
}

func (f *fakeSystem) Find(_ context.Context, id uuid.UUID) (*properties.Property, error) {
	d, ok := f.details[id]
	if !ok {
		return nil, properties.ErrNotFound
	}
	return &d.Property, nil
}

func (f *fakeSystem) Details(_ context.Context, id uuid.UUID) (*properties.Details, error) {
	d, ok := f.details[id]
	if !ok {
		return nil, properties.ErrNotFound
	}
	return d, nil
}

func (f *fakeSystem) RoomDetails(context.Context, uuid.UUID) (*properties.RoomDetails, error) {
	return nil, properties.ErrRoomNotFound
}

func (f *fakeSystem) Create(_ context.Context, cmd properties.CreateCommand) (*properties.Property, error) {
	if strings.TrimSpace(cmd.Location) == "" {
		return nil, properties.ErrInvalidLocation
	}
	return &properties.Property{ID: uuid.New(), Location: cmd.Location, RiskCategory: risk.Low}, nil
}

func (f *fakeSystem) CreateRoom(context.Context, uuid.UUID, properties.CreateRoomCommand) (*properties.Room, error) {
	return nil, properties.ErrNotFound
}

func newMux(sys *fakeSystem) *http.ServeMux {
	mux := http.NewServeMux()
	h := sys.Handler()
	routes.Register(mux, h.Routes(), h.RoomRoutes())
	return mux
}

func TestListFilters(t *testing.T) {
	sys := &fakeSystem{}
	mux := newMux(sys)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet,
		"/properties?risk_category=High&defect_category=mold&search=elm&page_size=500", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, risk.High, *sys.filters.RiskCategory)
	assert.Equal(t, defects.Mold, *sys.filters.DefectCategory)
	assert.Equal(t, "elm", *sys.page.Search)
	assert.Equal(t, 100, sys.page.PageSize)
}

func TestListInvalidFilter(t *testing.T) {
	mux := newMux(&fakeSystem{})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/properties?risk_category=Extreme", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSearchBody(t *testing.T) {
	sys := &fakeSystem{}
	mux := newMux(sys)

	body := `{"page": 2, "page_size": 5, "search": "oak", "risk_category": "Medium", "defect_category": "crack"}`
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/properties/search", strings.NewReader(body)))
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, 2, sys.page.Page)
	assert.Equal(t, "oak", *sys.page.Search)
	assert.Equal(t, risk.Medium, *sys.filters.RiskCategory)
	assert.Equal(t, defects.Crack, *sys.filters.DefectCategory)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/properties/search",
		strings.NewReader(`{"defect_category": "termites"}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDetails(t *testing.T) {
	id := uuid.New()
	sys := &fakeSystem{details: map[uuid.UUID]*properties.Details{
		id: {Property: properties.Property{ID: id, Location: "12 Elm St", RiskCategory: risk.Low}},
	}}
	mux := newMux(sys)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/properties/"+id.String(), nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var d properties.Details
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&d))
	assert.Equal(t, "12 Elm St", d.Property.Location)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/properties/"+uuid.NewString(), nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/rooms/"+uuid.NewString(), nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreate(t *testing.T) {
	mux := newMux(&fakeSystem{})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/properties",
		strings.NewReader(`{"location": "4 Ash Ct", "inspection_date": "2026-03-01"}`)))
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/properties", strings.NewReader(`{"location": " "}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
