package models

const DateLayout = "2006-01-02"

// TimeSlotLabels is the fixed daily grid of one-hour windows, 8AM to 6PM.
var TimeSlotLabels = []string{
	"8AM - 9AM",
	"9AM - 10AM",
	"10AM - 11AM",
	"11AM - 12PM",
	"12PM - 1PM",
	"1PM - 2PM",
	"2PM - 3PM",
	"3PM - 4PM",
	"4PM - 5PM",
	"5PM - 6PM",
}

const (
	// BookingWindowDays is how many calendar days, starting today, can be booked.
	BookingWindowDays = 7

	// DefaultDebounceMillis delays text filters until typing settles.
	DefaultDebounceMillis = 500

	// DefaultStorageTTL keeps stored preferences for 30 days.
	DefaultStorageTTL = 30 * 24 * 60 * 60

	// DefaultViewTTL drops view state idle for longer than 30 minutes.
	DefaultViewTTL = 30 * 60

	// DefaultCacheTTL caches catalog GETs for a minute when redis is configured.
	DefaultCacheTTL = 60
)

// Local storage key names.
const (
	StorageKeyPreferences = "hamro_preferences"
	StorageKeyAuth        = "hamro_auth"
)

const (
	RoleCustomer = "customer"
	RoleProvider = "provider"
)

const (
	StatusActive = "active"
)
