package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// ParentRef is the normalised form of a category's parent field. The backend
// sends it either as a bare id string or as an embedded {_id, name} object.
type ParentRef struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
}

// IsZero reports whether the reference points nowhere, i.e. the owner is top-level.
func (p ParentRef) IsZero() bool {
	return strings.TrimSpace(p.ID) == ""
}

func (p *ParentRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*p = ParentRef{}
		return nil
	}

	switch data[0] {
	case '"':
		var id string
		if err := json.Unmarshal(data, &id); err != nil {
			return err
		}
		*p = ParentRef{ID: strings.TrimSpace(id)}
		return nil
	case '{':
		var obj struct {
			MongoID string `json:"_id"`
			ID      string `json:"id"`
			Name    string `json:"name"`
		}
		if err := json.Unmarshal(data, &obj); err != nil {
			return err
		}
		id := obj.MongoID
		if id == "" {
			id = obj.ID
		}
		*p = ParentRef{ID: strings.TrimSpace(id), Name: obj.Name}
		return nil
	default:
		return fmt.Errorf("parent: unsupported json value %s", string(data))
	}
}

type Category struct {
	ID          string    `json:"_id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description,omitempty"`
	Image       string    `json:"image,omitempty"`
	Parent      ParentRef `json:"parent"`
}

func (c *Category) UnmarshalJSON(data []byte) error {
	type alias Category
	var raw struct {
		alias
		AltID string `json:"id"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*c = Category(raw.alias)
	if c.ID == "" {
		c.ID = raw.AltID
	}
	return nil
}

// IsTopLevel reports whether the category has no parent.
func (c Category) IsTopLevel() bool {
	return c.Parent.IsZero()
}

// CategoryRef is the category summary embedded in a service record.
type CategoryRef struct {
	ID     string    `json:"_id"`
	Name   string    `json:"name"`
	Slug   string    `json:"slug,omitempty"`
	Parent ParentRef `json:"parent"`
}

func (c *CategoryRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	// Unpopulated references arrive as a bare id.
	if len(data) > 0 && data[0] == '"' {
		var id string
		if err := json.Unmarshal(data, &id); err != nil {
			return err
		}
		*c = CategoryRef{ID: id}
		return nil
	}

	type alias CategoryRef
	var raw struct {
		alias
		AltID string `json:"id"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*c = CategoryRef(raw.alias)
	if c.ID == "" {
		c.ID = raw.AltID
	}
	return nil
}

// CategoryDetail is the by-slug lookup: a category plus its direct subcategories.
type CategoryDetail struct {
	Category      Category   `json:"category"`
	Subcategories []Category `json:"subcategories"`
}

// UnmarshalJSON drops subcategories that fail to decode.
func (d *CategoryDetail) UnmarshalJSON(data []byte) error {
	var raw struct {
		Category      Category          `json:"category"`
		Subcategories []json.RawMessage `json:"subcategories"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	d.Category = raw.Category
	d.Subcategories = make([]Category, 0, len(raw.Subcategories))
	for _, elem := range raw.Subcategories {
		var sub Category
		if err := json.Unmarshal(elem, &sub); err != nil {
			continue
		}
		d.Subcategories = append(d.Subcategories, sub)
	}
	return nil
}
