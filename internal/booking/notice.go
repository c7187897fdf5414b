package booking

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

type NoticeKind string

const (
	NoticeConfirmed  NoticeKind = "confirmed"
	NoticeConflict   NoticeKind = "conflict"
	NoticeSlotTaken  NoticeKind = "slot_taken"
	NoticeFailed     NoticeKind = "failed"
	NoticeValidation NoticeKind = "validation"
	NoticeDayPassed  NoticeKind = "day_passed"
)

// Notice is the user-facing outcome of the last booking action.
type Notice struct {
	Kind    NoticeKind `json:"kind"`
	Message string     `json:"message"`
}

const (
	msgConfirmed = "Your booking is confirmed. We'll be in touch shortly."
	msgConflict  = "This time slot is already booked. Please choose another time."
	msgSlotTaken = "Someone else just booked this time slot. Please pick another time."
	msgFailed    = "We couldn't complete your booking. Please try again."
	msgDayPassed = "The day you picked has passed. Please choose another date."
)

func noticeFor(kind NoticeKind) Notice {
	switch kind {
	case NoticeConfirmed:
		return Notice{Kind: kind, Message: msgConfirmed}
	case NoticeConflict:
		return Notice{Kind: kind, Message: msgConflict}
	case NoticeSlotTaken:
		return Notice{Kind: kind, Message: msgSlotTaken}
	case NoticeDayPassed:
		return Notice{Kind: kind, Message: msgDayPassed}
	default:
		return Notice{Kind: NoticeFailed, Message: msgFailed}
	}
}

// validationNotice turns validator field errors into one readable line.
func validationNotice(err error) Notice {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return Notice{Kind: NoticeValidation, Message: "Please check your contact details."}
	}

	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fieldMessage(fe))
	}
	return Notice{Kind: NoticeValidation, Message: strings.Join(parts, "; ")}
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
