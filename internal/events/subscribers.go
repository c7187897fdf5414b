package events

import (
	"hamrosewa/internal/metrics"

	"github.com/rs/zerolog"
)

// MetricsHandler counts booking outcomes by event type.
func MetricsHandler() EventHandler {
	return func(event *Event) error {
		metrics.IncBookingOutcome(event.Type)
		return nil
	}
}

// LogHandler writes one structured line per booking event.
func LogHandler(logger *zerolog.Logger) EventHandler {
	return func(event *Event) error {
		var payload BookingEventPayload
		if err := event.Decode(&payload); err != nil {
			return err
		}
		logger.Info().
			Str("event", event.Type).
			Str("service_id", payload.ServiceID).
			Str("date", payload.Date).
			Str("time_slot", payload.TimeSlot).
			Str("booking_id", payload.BookingID).
			Msg("booking event")
		return nil
	}
}

// NotificationHook is where customer notifications would be sent. Delivery is
// handled elsewhere, so it accepts every event and sends nothing.
func NotificationHook() EventHandler {
	return func(*Event) error {
		return nil
	}
}

// SubscribeBooking wires the standard booking subscribers onto the bus.
func SubscribeBooking(bus *EventBus, logger *zerolog.Logger) {
	bus.Subscribe(MetricsHandler(), BookingEvents...)
	bus.Subscribe(LogHandler(logger), BookingEvents...)
	bus.Subscribe(NotificationHook(), EventBookingConfirmed)
}
