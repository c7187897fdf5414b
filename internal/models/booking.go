package models

// BookingRequest is what the booking form submits for one slot.
type BookingRequest struct {
	ServiceID    string `json:"serviceId"`
	ServiceTitle string `json:"serviceTitle"`
	CustomerName string `json:"customerName"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	Address      string `json:"address"`
	Notes        string `json:"notes,omitempty"`
	Date         string `json:"date"`     // YYYY-MM-DD
	TimeSlot     string `json:"timeSlot"` // one of TimeSlotLabels
}

// BookingResult is the backend's answer to a booking submission.
type BookingResult struct {
	Success   bool   `json:"success"`
	IsBooked  bool   `json:"isBooked,omitempty"`
	Message   string `json:"message,omitempty"`
	BookingID string `json:"bookingId,omitempty"`
}

// ContactDetails are the customer fields of the booking form.
type ContactDetails struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone" validate:"required,min=7,max=20"`
	Address string `json:"address" validate:"required"`
	Notes   string `json:"notes,omitempty" validate:"max=1000"`
}
