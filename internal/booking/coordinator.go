package booking

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"sync"
	"time"

	"hamrosewa/internal/domain"
	"hamrosewa/internal/events"
	"hamrosewa/internal/metrics"
	"hamrosewa/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

type State string

const (
	StateIdle         State = "idle"
	StateDateSelected State = "date_selected"
	StateSlotChosen   State = "slot_chosen"
	StateSubmitting   State = "submitting"
	StateConfirmed    State = "confirmed"
)

var (
	ErrSubmissionInFlight = errors.New("a booking is already being submitted")
	ErrInvalidDay         = errors.New("day is outside the booking window")
)

// Coordinator owns the date and time selection of one service's booking
// panel and reconciles it with the booked slots the backend reports.
type Coordinator struct {
	backend   domain.BookingBackend
	publisher domain.EventPublisher
	validate  *validator.Validate
	logger    *zerolog.Logger
	now       func() time.Time

	serviceID    string
	serviceTitle string
	windowDays   int

	mu           sync.Mutex
	days         []models.Day
	dayIndex     int
	slotIndex    int
	booked       map[string]struct{}
	state        State
	notice       *Notice
	formOpen     bool
	form         models.ContactDetails
	loadingSlots bool
	submitting   bool
	dayPassed    bool

	fetchSeq    uint64
	cancelFetch context.CancelFunc
}

type Option func(*Coordinator)

// WithClock replaces time.Now for the date window.
func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) { c.now = now }
}

func WithPublisher(p domain.EventPublisher) Option {
	return func(c *Coordinator) { c.publisher = p }
}

func WithLogger(l *zerolog.Logger) Option {
	return func(c *Coordinator) {
		if l != nil {
			c.logger = l
		}
	}
}

func WithWindowDays(days int) Option {
	return func(c *Coordinator) { c.windowDays = days }
}

func NewCoordinator(service models.Service, backend domain.BookingBackend, opts ...Option) *Coordinator {
	nop := zerolog.Nop()
	c := &Coordinator{
		backend:      backend,
		validate:     newValidator(),
		logger:       &nop,
		now:          time.Now,
		serviceID:    service.ID,
		serviceTitle: service.Title,
		windowDays:   models.BookingWindowDays,
		booked:       map[string]struct{}{},
		state:        StateIdle,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.days = DateWindow(c.now(), c.windowDays)
	return c
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// Load fetches the booked slots for the default day. The state stays idle.
func (c *Coordinator) Load(ctx context.Context) error {
	return c.refresh(ctx)
}

// SelectDate moves to the day at index and refetches its booked slots,
// superseding any fetch still in flight. A failed fetch keeps the previous
// booked set.
func (c *Coordinator) SelectDate(ctx context.Context, index int) error {
	c.mu.Lock()
	c.rollWindowLocked()
	if index < 0 || index >= len(c.days) {
		c.mu.Unlock()
		return ErrInvalidDay
	}
	c.dayIndex = index
	c.dayPassed = false
	c.state = StateDateSelected
	c.notice = nil
	c.mu.Unlock()

	_ = c.refresh(ctx)
	return nil
}

// SelectTime picks a slot. Booked or unknown labels are refused and leave the
// selection unchanged.
func (c *Coordinator) SelectTime(label string) bool {
	idx := SlotIndex(label)
	if idx < 0 {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.submitting || c.isBookedLocked(label) {
		return false
	}
	c.slotIndex = idx
	c.state = StateSlotChosen
	c.notice = nil
	return true
}

// OpenForm opens the booking form for the selected slot, pre-filled with
// prefill when the form is empty. It refuses a slot already known to be booked.
func (c *Coordinator) OpenForm(prefill models.ContactDetails) bool {
	c.mu.Lock()
	label := c.selectedLabelLocked()
	if c.isBookedLocked(label) {
		n := noticeFor(NoticeConflict)
		c.notice = &n
		payload := c.payloadLocked(label, models.ContactDetails{}, n.Message)
		c.mu.Unlock()
		c.publish(events.EventBookingConflict, payload)
		return false
	}
	if c.form == (models.ContactDetails{}) {
		c.form = prefill
	}
	c.formOpen = true
	c.notice = nil
	c.mu.Unlock()
	return true
}

func (c *Coordinator) CloseForm() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.formOpen = false
}

// Submit books the selected slot. Only the backend decides whether the slot
// is free; the local booked set just spares a request that would fail.
func (c *Coordinator) Submit(ctx context.Context, details models.ContactDetails) (Notice, error) {
	c.mu.Lock()
	if c.submitting {
		c.mu.Unlock()
		return Notice{}, ErrSubmissionInFlight
	}

	c.rollWindowLocked()
	label := c.selectedLabelLocked()
	date := c.days[c.dayIndex].Date
	c.form = details

	if c.dayPassed {
		n := noticeFor(NoticeDayPassed)
		c.notice = &n
		c.mu.Unlock()
		return n, nil
	}

	if c.isBookedLocked(label) {
		n := noticeFor(NoticeConflict)
		c.notice = &n
		payload := c.payloadLocked(label, details, n.Message)
		c.mu.Unlock()
		c.publish(events.EventBookingConflict, payload)
		return n, nil
	}

	if err := c.validate.Struct(details); err != nil {
		n := validationNotice(err)
		c.notice = &n
		c.mu.Unlock()
		return n, nil
	}

	c.submitting = true
	c.state = StateSubmitting
	c.notice = nil
	c.mu.Unlock()

	req := models.BookingRequest{
		ServiceID:    c.serviceID,
		ServiceTitle: c.serviceTitle,
		CustomerName: details.Name,
		Email:        details.Email,
		Phone:        details.Phone,
		Address:      details.Address,
		Notes:        details.Notes,
		Date:         date,
		TimeSlot:     label,
	}
	res, err := c.backend.CreateBooking(ctx, req)

	switch {
	case err == nil && res != nil && res.Success:
		n := noticeFor(NoticeConfirmed)
		c.mu.Lock()
		c.submitting = false
		c.state = StateConfirmed
		c.notice = &n
		c.form = models.ContactDetails{}
		c.formOpen = false
		payload := c.payloadAt(date, label, details, n.Message)
		c.mu.Unlock()

		payload.BookingID = res.BookingID
		c.publish(events.EventBookingConfirmed, payload)
		_ = c.refresh(ctx)
		return n, nil

	case errors.Is(err, domain.ErrSlotTaken) || (res != nil && res.IsBooked):
		n := noticeFor(NoticeSlotTaken)
		c.mu.Lock()
		c.submitting = false
		c.state = StateSlotChosen
		c.notice = &n
		c.formOpen = false
		payload := c.payloadAt(date, label, details, n.Message)
		c.mu.Unlock()

		c.publish(events.EventBookingSlotTaken, payload)
		_ = c.refresh(ctx)
		return n, nil

	default:
		n := noticeFor(NoticeFailed)
		reason := "booking rejected"
		if err != nil {
			reason = err.Error()
		} else if res != nil && res.Message != "" {
			reason = res.Message
		}
		c.logger.Warn().
			Str("service_id", c.serviceID).
			Str("date", date).
			Str("time_slot", label).
			Str("reason", reason).
			Msg("booking submission failed")

		c.mu.Lock()
		c.submitting = false
		c.state = StateSlotChosen
		c.notice = &n
		payload := c.payloadAt(date, label, details, reason)
		c.mu.Unlock()

		c.publish(events.EventBookingFailed, payload)
		return n, nil
	}
}

// refresh replaces the booked set for the selected day. Responses for a day
// that is no longer selected, or from a superseded fetch, are dropped.
func (c *Coordinator) refresh(ctx context.Context) error {
	c.mu.Lock()
	if c.cancelFetch != nil {
		c.cancelFetch()
	}
	fetchCtx, cancel := context.WithCancel(ctx)
	c.fetchSeq++
	seq := c.fetchSeq
	c.cancelFetch = cancel
	date := c.days[c.dayIndex].Date
	c.loadingSlots = true
	c.mu.Unlock()
	defer cancel()

	labels, err := c.backend.BookedSlots(fetchCtx, c.serviceID, date)

	c.mu.Lock()
	defer c.mu.Unlock()
	if seq != c.fetchSeq || c.days[c.dayIndex].Date != date {
		metrics.IncStaleSlotResponse()
		c.logger.Debug().Str("service_id", c.serviceID).Str("date", date).Msg("discarding stale booked slots")
		return nil
	}
	c.loadingSlots = false
	c.cancelFetch = nil
	if err != nil {
		c.logger.Warn().Err(err).Str("service_id", c.serviceID).Str("date", date).Msg("fetch booked slots")
		return err
	}

	booked := make(map[string]struct{}, len(labels))
	for _, l := range labels {
		booked[l] = struct{}{}
	}
	c.booked = booked
	return nil
}

// rollWindowLocked moves the date window forward once the calendar day has
// changed. A selected date still inside the window stays selected. A selected
// date that has dropped out falls back to today with an unknown booked set and
// blocks submission until a date is picked again.
func (c *Coordinator) rollWindowLocked() {
	days := DateWindow(c.now(), c.windowDays)
	if days[0].Date == c.days[0].Date {
		return
	}

	selected := c.days[c.dayIndex].Date
	c.days = days
	for i, d := range days {
		if d.Date == selected {
			c.dayIndex = i
			return
		}
	}

	c.dayIndex = 0
	c.booked = map[string]struct{}{}
	if c.state != StateIdle {
		c.dayPassed = true
		n := noticeFor(NoticeDayPassed)
		c.notice = &n
	}
}

func (c *Coordinator) selectedLabelLocked() string {
	return models.TimeSlotLabels[c.slotIndex]
}

func (c *Coordinator) isBookedLocked(label string) bool {
	_, ok := c.booked[label]
	return ok
}

func (c *Coordinator) payloadLocked(label string, details models.ContactDetails, message string) events.BookingEventPayload {
	return c.payloadAt(c.days[c.dayIndex].Date, label, details, message)
}

func (c *Coordinator) payloadAt(date, label string, details models.ContactDetails, message string) events.BookingEventPayload {
	return events.BookingEventPayload{
		ServiceID:    c.serviceID,
		ServiceTitle: c.serviceTitle,
		Date:         date,
		TimeSlot:     label,
		CustomerName: details.Name,
		Email:        details.Email,
		Message:      message,
		OccurredAt:   c.now(),
	}
}

func (c *Coordinator) publish(eventType string, payload events.BookingEventPayload) {
	if c.publisher == nil {
		return
	}
	if err := c.publisher.PublishJSON(eventType, payload); err != nil {
		c.logger.Error().Err(err).Str("event_type", eventType).Str("service_id", c.serviceID).Msg("publish event error")
	}
}

// View is a render snapshot of the booking panel.
type View struct {
	ServiceID    string                `json:"serviceId"`
	ServiceTitle string                `json:"serviceTitle"`
	State        State                 `json:"state"`
	Days         []models.Day          `json:"days"`
	SelectedDay  int                   `json:"selectedDay"`
	SelectedDate string                `json:"selectedDate"`
	Slots        []models.SlotView     `json:"slots"`
	SelectedSlot string                `json:"selectedSlot"`
	Notice       *Notice               `json:"notice,omitempty"`
	LoadingSlots bool                  `json:"loadingSlots"`
	Submitting   bool                  `json:"submitting"`
	FormOpen     bool                  `json:"formOpen"`
	Form         models.ContactDetails `json:"form"`
}

func (c *Coordinator) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rollWindowLocked()

	slots := make([]models.SlotView, 0, len(models.TimeSlotLabels))
	for i, label := range models.TimeSlotLabels {
		slots = append(slots, models.SlotView{
			Label:    label,
			Booked:   c.isBookedLocked(label),
			Selected: i == c.slotIndex,
		})
	}

	days := make([]models.Day, len(c.days))
	copy(days, c.days)

	var notice *Notice
	if c.notice != nil {
		n := *c.notice
		notice = &n
	}

	return View{
		ServiceID:    c.serviceID,
		ServiceTitle: c.serviceTitle,
		State:        c.state,
		Days:         days,
		SelectedDay:  c.dayIndex,
		SelectedDate: c.days[c.dayIndex].Date,
		Slots:        slots,
		SelectedSlot: c.selectedLabelLocked(),
		Notice:       notice,
		LoadingSlots: c.loadingSlots,
		Submitting:   c.submitting,
		FormOpen:     c.formOpen,
		Form:         c.form,
	}
}

// BookedSlots returns the current booked set in grid order.
func (c *Coordinator) BookedSlots() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.booked))
	for _, label := range models.TimeSlotLabels {
		if c.isBookedLocked(label) {
			out = append(out, label)
		}
	}
	return out
}

// Close cancels any booked-slot fetch still in flight.
func (c *Coordinator) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancelFetch != nil {
		c.cancelFetch()
		c.cancelFetch = nil
	}
}
