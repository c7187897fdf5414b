package models

import (
	"bytes"
	"encoding/json"
)

type Image struct {
	URL       string `json:"url"`
	IsPrimary bool   `json:"isPrimary"`
}

type Provider struct {
	Name     string `json:"name"`
	Verified bool   `json:"verified"`
}

// Service is a bookable offering. The client only ever reads these.
type Service struct {
	ID               string       `json:"_id"`
	Slug             string       `json:"slug"`
	Title            string       `json:"title"`
	Description      string       `json:"description"`
	ShortDescription string       `json:"shortDescription"`
	Category         *CategoryRef `json:"category,omitempty"`
	Location         string       `json:"location"`
	Price            float64      `json:"price"`
	PriceLabel       string       `json:"priceLabel,omitempty"`
	Rating           float64      `json:"rating"` // 0 means unrated
	Images           []Image      `json:"images"`
	Featured         bool         `json:"featured"`
	Popular          bool         `json:"popular"`
	Status           string       `json:"status,omitempty"`
	Provider         Provider     `json:"provider"`
}

func (s *Service) UnmarshalJSON(data []byte) error {
	type alias Service
	var raw struct {
		alias
		AltID    string          `json:"id"`
		Category json.RawMessage `json:"category"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = Service(raw.alias)
	if s.ID == "" {
		s.ID = raw.AltID
	}
	s.Category = decodeCategoryRef(raw.Category)
	return nil
}

// decodeCategoryRef returns nil for a missing or malformed reference, which
// leaves the service uncategorised instead of failing the whole record.
func decodeCategoryRef(data json.RawMessage) *CategoryRef {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	var ref CategoryRef
	if err := json.Unmarshal(data, &ref); err != nil {
		return nil
	}
	return &ref
}

// CategoryID returns the id of the service's category or "" when it has none.
func (s Service) CategoryID() string {
	if s.Category == nil {
		return ""
	}
	return s.Category.ID
}

// PrimaryImage returns the image flagged primary, falling back to the first one.
func (s Service) PrimaryImage() string {
	for _, img := range s.Images {
		if img.IsPrimary {
			return img.URL
		}
	}
	if len(s.Images) > 0 {
		return s.Images[0].URL
	}
	return ""
}

// IsRated reports whether the service has received a rating.
func (s Service) IsRated() bool {
	return s.Rating > 0
}
