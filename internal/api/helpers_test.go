package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"hamrosewa/internal/config"
	"hamrosewa/internal/domain"
	"hamrosewa/internal/models"
	"hamrosewa/internal/repository"
	"hamrosewa/internal/service"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

const testVisitor = "0b5c4a52-5d56-4c1f-9a34-5a0f0f3f1c11"

// fakeBackend is an in-memory marketplace backend.
type fakeBackend struct {
	mu         sync.Mutex
	services   []models.Service
	categories []models.Category
	booked     map[string][]string
	bookErr    error
	bookRes    *models.BookingResult
	requests   []models.BookingRequest
	listErr    error
}

func newFakeBackend() *fakeBackend {
	ref := func(id, name string) *models.CategoryRef { return &models.CategoryRef{ID: id, Name: name} }
	return &fakeBackend{
		categories: []models.Category{
			{ID: "p1", Name: "Plumbing", Slug: "plumbing"},
			{ID: "p2", Name: "Electrical", Slug: "electrical"},
			{ID: "c1", Name: "Pipes", Slug: "pipes", Parent: models.ParentRef{ID: "p1"}},
			{ID: "c3", Name: "Wiring", Slug: "wiring", Parent: models.ParentRef{ID: "p2"}},
		},
		services: []models.Service{
			{ID: "s1", Slug: "pipe-repair", Title: "Pipe Repair", Location: "Kathmandu", Price: 500, Rating: 4.5, Featured: true, Category: ref("c1", "Pipes")},
			{ID: "s2", Slug: "wiring-fix", Title: "Wiring Fix", Location: "Lalitpur", Price: 300, Rating: 3, Popular: true, Category: ref("c3", "Wiring")},
			{ID: "s3", Slug: "leak-check", Title: "Leak Check", Location: "Bhaktapur", Price: 800, Category: ref("c1", "Pipes")},
		},
		booked:  map[string][]string{},
		bookRes: &models.BookingResult{Success: true, BookingID: "b1"},
	}
}

func (f *fakeBackend) ListServices(ctx context.Context, q domain.ServiceQuery) ([]models.Service, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []models.Service
	for _, s := range f.services {
		if q.Popular && !s.Popular {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

func (f *fakeBackend) ParentCategories(ctx context.Context) ([]models.Category, error) {
	return f.categories[:2], nil
}

func (f *fakeBackend) AllCategories(ctx context.Context) ([]models.Category, error) {
	return f.categories, nil
}

func (f *fakeBackend) CategoryBySlug(ctx context.Context, slug string) (*models.CategoryDetail, error) {
	for _, c := range f.categories {
		if c.Slug == slug {
			detail := &models.CategoryDetail{Category: c}
			for _, sub := range f.categories {
				if sub.Parent.ID == c.ID {
					detail.Subcategories = append(detail.Subcategories, sub)
				}
			}
			return detail, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeBackend) ServicesByCategory(ctx context.Context, slug, subcategory string) ([]models.Service, error) {
	var out []models.Service
	for _, s := range f.services {
		if s.Category != nil && (subcategory == "" || s.Category.Name == subcategory) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeBackend) ServiceBySlug(ctx context.Context, slug string) (*models.Service, error) {
	for _, s := range f.services {
		if s.Slug == slug {
			svc := s
			return &svc, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeBackend) BookedSlots(ctx context.Context, serviceID, date string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.booked[serviceID+"/"+date]...), nil
}

func (f *fakeBackend) CreateBooking(ctx context.Context, req models.BookingRequest) (*models.BookingResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if f.bookErr != nil {
		return f.bookRes, f.bookErr
	}
	key := req.ServiceID + "/" + req.Date
	f.booked[key] = append(f.booked[key], req.TimeSlot)
	return f.bookRes, nil
}

func (f *fakeBackend) Login(ctx context.Context, email, password string) (*models.AuthResult, error) {
	return &models.AuthResult{Token: "tok", User: models.User{ID: "u1", Name: "Sita", Email: email, Location: "Lalitpur"}}, nil
}

func (f *fakeBackend) Register(ctx context.Context, req domain.RegisterRequest) (*models.AuthResult, error) {
	return &models.AuthResult{Token: "tok", User: models.User{ID: "u2", Name: req.Name, Email: req.Email, Role: req.Role}}, nil
}

type testEnv struct {
	backend *fakeBackend
	store   *repository.MemoryVisitorRepository
	server  *HTTPServer
	handler http.Handler
}

func newTestEnv(t *testing.T, cfg config.ServerConfig) *testEnv {
	t.Helper()
	logger := zerolog.Nop()
	fake := newFakeBackend()
	store := repository.NewMemoryVisitorRepository(time.Hour)
	clock := func() time.Time { return time.Date(2026, 3, 10, 15, 4, 5, 0, time.UTC) }

	srv := NewHTTPServer(cfg, Deps{
		Catalog:     service.NewCatalogService(fake, &logger),
		Auth:        service.NewAuthService(fake, store, 5, time.Minute, &logger),
		Preferences: service.NewPreferenceService(store, &logger),
		Source:      fake,
		Booking:     fake,
		WindowDays:  7,
		ViewTTL:     time.Minute,
		Clock:       clock,
	}, &logger)
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })

	return &testEnv{backend: fake, store: store, server: srv, handler: srv.Handler()}
}

// do sends a request as testVisitor.
func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	return e.doAs(t, testVisitor, method, path, body)
}

func (e *testEnv) doAs(t *testing.T, visitor, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if visitor != "" {
		req.AddCookie(&http.Cookie{Name: visitorCookie, Value: visitor})
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}
