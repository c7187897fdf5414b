package models

// CatalogEntry pairs a service with display fields derived for listing.
type CatalogEntry struct {
	Service
	Image        string `json:"image"`
	CategoryName string `json:"categoryName"`
}

// NewCatalogEntry builds the listing form of a service.
func NewCatalogEntry(s Service) CatalogEntry {
	entry := CatalogEntry{Service: s, Image: s.PrimaryImage()}
	if s.Category != nil {
		entry.CategoryName = s.Category.Name
	}
	return entry
}

// Day is one entry of the rolling booking date window.
type Day struct {
	Index   int    `json:"index"`
	Date    string `json:"date"` // YYYY-MM-DD
	Weekday string `json:"weekday"`
	Label   string `json:"label"`
}

// SlotView is one cell of the daily time grid.
type SlotView struct {
	Label    string `json:"label"`
	Booked   bool   `json:"booked"`
	Selected bool   `json:"selected"`
}
