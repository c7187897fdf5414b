package api

import (
	"errors"
	"net/http"
	"strings"

	"hamrosewa/internal/booking"
	"hamrosewa/internal/models"

	"github.com/go-chi/chi/v5"
)

type bookingViewResponse struct {
	ID     string          `json:"id"`
	Notice *booking.Notice `json:"notice,omitempty"`
	View   booking.View    `json:"view"`
}

// coordinator resolves the booking view named in the path, writing 404 when
// the visitor has no such view.
func (s *HTTPServer) coordinator(w http.ResponseWriter, r *http.Request) (string, *booking.Coordinator, bool) {
	id := chi.URLParam(r, "id")
	c, ok := s.bookingViews.Get(id, visitorID(r.Context()))
	if !ok {
		writeError(w, http.StatusNotFound, "view not found")
		return id, nil, false
	}
	return id, c, true
}

func (s *HTTPServer) handleCreateBookingView(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Slug string `json:"slug"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	slug := strings.TrimSpace(req.Slug)
	if slug == "" {
		writeError(w, http.StatusBadRequest, "slug is required")
		return
	}

	svc, err := s.deps.Catalog.Service(r.Context(), slug)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	opts := []booking.Option{
		booking.WithClock(s.deps.Clock),
		booking.WithLogger(s.logger),
	}
	if s.deps.Events != nil {
		opts = append(opts, booking.WithPublisher(s.deps.Events))
	}
	if s.deps.WindowDays > 0 {
		opts = append(opts, booking.WithWindowDays(s.deps.WindowDays))
	}
	c := booking.NewCoordinator(*svc, s.deps.Booking, opts...)
	_ = c.Load(r.Context())

	id := s.bookingViews.Add(visitorID(r.Context()), c)
	writeJSON(w, http.StatusCreated, bookingViewResponse{ID: id, View: c.View()})
}

func (s *HTTPServer) handleGetBookingView(w http.ResponseWriter, r *http.Request) {
	id, c, ok := s.coordinator(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, bookingViewResponse{ID: id, View: c.View()})
}

func (s *HTTPServer) handleDeleteBookingView(w http.ResponseWriter, r *http.Request) {
	if !s.bookingViews.Remove(chi.URLParam(r, "id"), visitorID(r.Context())) {
		writeError(w, http.StatusNotFound, "view not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *HTTPServer) handleSelectDate(w http.ResponseWriter, r *http.Request) {
	id, c, ok := s.coordinator(w, r)
	if !ok {
		return
	}
	var req struct {
		Index *int `json:"index"`
	}
	if err := decodeJSON(w, r, &req); err != nil || req.Index == nil {
		writeError(w, http.StatusBadRequest, "index is required")
		return
	}
	if err := c.SelectDate(r.Context(), *req.Index); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, bookingViewResponse{ID: id, View: c.View()})
}

func (s *HTTPServer) handleSelectTime(w http.ResponseWriter, r *http.Request) {
	id, c, ok := s.coordinator(w, r)
	if !ok {
		return
	}
	var req struct {
		Label string `json:"label"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if booking.SlotIndex(req.Label) < 0 {
		writeError(w, http.StatusBadRequest, "unknown time slot")
		return
	}

	status := http.StatusOK
	if !c.SelectTime(req.Label) {
		status = http.StatusConflict
	}
	writeJSON(w, status, bookingViewResponse{ID: id, View: c.View()})
}

// handleOpenForm opens the form pre-filled from the visitor's preferences.
func (s *HTTPServer) handleOpenForm(w http.ResponseWriter, r *http.Request) {
	id, c, ok := s.coordinator(w, r)
	if !ok {
		return
	}

	status := http.StatusOK
	if !c.OpenForm(s.deps.Preferences.ContactPrefill(r.Context(), visitorID(r.Context()))) {
		status = http.StatusConflict
	}
	view := c.View()
	writeJSON(w, status, bookingViewResponse{ID: id, Notice: view.Notice, View: view})
}

func (s *HTTPServer) handleCloseForm(w http.ResponseWriter, r *http.Request) {
	id, c, ok := s.coordinator(w, r)
	if !ok {
		return
	}
	c.CloseForm()
	writeJSON(w, http.StatusOK, bookingViewResponse{ID: id, View: c.View()})
}

func (s *HTTPServer) handleBook(w http.ResponseWriter, r *http.Request) {
	id, c, ok := s.coordinator(w, r)
	if !ok {
		return
	}
	var details models.ContactDetails
	if err := decodeJSON(w, r, &details); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	notice, err := c.Submit(r.Context(), details)
	if errors.Is(err, booking.ErrSubmissionInFlight) {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	if err != nil {
		writeServiceError(w, err)
		return
	}

	if notice.Kind == booking.NoticeConfirmed {
		s.deps.Preferences.RememberContact(r.Context(), visitorID(r.Context()), details)
	}
	writeJSON(w, noticeStatus(notice.Kind), bookingViewResponse{ID: id, Notice: &notice, View: c.View()})
}

func noticeStatus(kind booking.NoticeKind) int {
	switch kind {
	case booking.NoticeConfirmed:
		return http.StatusCreated
	case booking.NoticeValidation:
		return http.StatusUnprocessableEntity
	case booking.NoticeConflict, booking.NoticeSlotTaken, booking.NoticeDayPassed:
		return http.StatusConflict
	case booking.NoticeFailed:
		return http.StatusBadGateway
	default:
		return http.StatusOK
	}
}
