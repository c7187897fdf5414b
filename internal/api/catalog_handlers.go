package api

import (
	"net/http"
	"strings"

	"hamrosewa/internal/catalog"
	"hamrosewa/internal/domain"
	"hamrosewa/internal/models"

	"github.com/go-chi/chi/v5"
)

type servicesResponse struct {
	Filter      catalog.Filter        `json:"filter"`
	Unavailable bool                  `json:"unavailable"`
	Total       int                   `json:"total"`
	Results     []models.CatalogEntry `json:"results"`
}

type catalogViewResponse struct {
	ID   string              `json:"id"`
	View catalog.BrowserView `json:"view"`
}

// catalogPatch carries only the inputs that changed.
type catalogPatch struct {
	Query    *string `json:"query"`
	Location *string `json:"location"`
	Category *string `json:"category"`
	Sort     *string `json:"sort"`
}

func (s *HTTPServer) handleHome(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.deps.Catalog.Home(r.Context()))
}

// handleServices filters the active catalog in one shot, with no debounce.
func (s *HTTPServer) handleServices(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	mode, err := catalog.ParseSortMode(q.Get("sort"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	filter := catalog.Filter{
		Query:      q.Get("q"),
		Location:   q.Get("location"),
		CategoryID: q.Get("category"),
		Sort:       mode,
	}

	resp := servicesResponse{Filter: filter, Results: []models.CatalogEntry{}}
	services, err := s.deps.Source.ListServices(r.Context(), domain.ServiceQuery{Status: models.StatusActive})
	if err != nil {
		s.logger.Error().Err(err).Msg("list services")
		resp.Unavailable = true
	}
	categories, err := s.deps.Source.AllCategories(r.Context())
	if err != nil {
		s.logger.Warn().Err(err).Msg("list categories")
	}

	resp.Total = len(services)
	for _, svc := range catalog.Apply(services, categories, filter) {
		resp.Results = append(resp.Results, models.NewCatalogEntry(svc))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *HTTPServer) handleService(w http.ResponseWriter, r *http.Request) {
	svc, err := s.deps.Catalog.Service(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, models.NewCatalogEntry(*svc))
}

func (s *HTTPServer) handleCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.deps.Source.AllCategories(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, catalog.Tree(categories))
}

func (s *HTTPServer) handleCategory(w http.ResponseWriter, r *http.Request) {
	page, err := s.deps.Catalog.Category(r.Context(), chi.URLParam(r, "slug"), r.URL.Query().Get("sub"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// handleCreateCatalogView loads the catalog into a new browser. A failed load
// still creates the view; it reports itself unavailable.
func (s *HTTPServer) handleCreateCatalogView(w http.ResponseWriter, r *http.Request) {
	browser := catalog.NewBrowser(s.deps.Source, s.deps.Debounce, s.logger)
	_ = browser.Load(r.Context())

	id := s.catalogViews.Add(visitorID(r.Context()), browser)
	writeJSON(w, http.StatusCreated, catalogViewResponse{ID: id, View: browser.View()})
}

func (s *HTTPServer) handleGetCatalogView(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	browser, ok := s.catalogViews.Get(id, visitorID(r.Context()))
	if !ok {
		writeError(w, http.StatusNotFound, "view not found")
		return
	}
	if r.URL.Query().Get("settle") == "1" {
		browser.Settle()
	}
	writeJSON(w, http.StatusOK, catalogViewResponse{ID: id, View: browser.View()})
}

func (s *HTTPServer) handleUpdateCatalogView(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	browser, ok := s.catalogViews.Get(id, visitorID(r.Context()))
	if !ok {
		writeError(w, http.StatusNotFound, "view not found")
		return
	}

	var patch catalogPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	if patch.Sort != nil {
		mode, err := catalog.ParseSortMode(*patch.Sort)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		browser.SetSort(mode)
	}
	if patch.Category != nil {
		browser.SetCategory(strings.TrimSpace(*patch.Category))
	}
	if patch.Query != nil {
		browser.SetQuery(*patch.Query)
	}
	if patch.Location != nil {
		browser.SetLocation(*patch.Location)
	}

	writeJSON(w, http.StatusOK, catalogViewResponse{ID: id, View: browser.View()})
}

func (s *HTTPServer) handleDeleteCatalogView(w http.ResponseWriter, r *http.Request) {
	if !s.catalogViews.Remove(chi.URLParam(r, "id"), visitorID(r.Context())) {
		writeError(w, http.StatusNotFound, "view not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
