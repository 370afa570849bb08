package models

import (
	"strings"
	"time"
	"unicode/utf8"
)

type ItemType string

const (
	ItemTypeShirt      ItemType = "Shirt"
	ItemTypePant       ItemType = "Pant"
	ItemTypeShoes      ItemType = "Shoes"
	ItemTypeSportsGear ItemType = "Sports Gear"
	ItemTypeAccessory  ItemType = "Accessory"
	ItemTypeOther      ItemType = "Other"
)

// ItemTypes lists the closed set of item types in display order.
var ItemTypes = []ItemType{
	ItemTypeShirt,
	ItemTypePant,
	ItemTypeShoes,
	ItemTypeSportsGear,
	ItemTypeAccessory,
	ItemTypeOther,
}

func (t ItemType) Valid() bool {
	for _, known := range ItemTypes {
		if t == known {
			return true
		}
	}
	return false
}

type Item struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	Type             ItemType `json:"type"`
	Description      string   `json:"description"`
	CoverImage       string   `json:"coverImage"`
	AdditionalImages []string `json:"additionalImages"`
	AIHint           string   `json:"data-ai-hint,omitempty"`
}

// ItemInput is an item before an id has been assigned.
type ItemInput struct {
	Name             string   `json:"name"`
	Type             ItemType `json:"type"`
	Description      string   `json:"description"`
	CoverImage       string   `json:"coverImage"`
	AdditionalImages []string `json:"additionalImages"`
	AIHint           string   `json:"data-ai-hint,omitempty"`
}

func (in ItemInput) WithID(id string) Item {
	images := in.AdditionalImages
	if images == nil {
		images = []string{}
	}
	return Item{
		ID:               id,
		Name:             in.Name,
		Type:             in.Type,
		Description:      in.Description,
		CoverImage:       in.CoverImage,
		AdditionalImages: images,
		AIHint:           in.AIHint,
	}
}

// MutationResult reports the outcome of Add/Delete. Remote failures are
// reported here instead of as returned errors.
type MutationResult struct {
	Success          bool   `json:"success"`
	ID               string `json:"id,omitempty"`
	Error            string `json:"error,omitempty"`
	PermissionDenied bool   `json:"permissionDenied,omitempty"`
	NotFound         bool   `json:"notFound,omitempty"`
}

type StoreMode string

const (
	StoreModeFallback  StoreMode = "fallback"
	StoreModeConnected StoreMode = "connected"
)

type StoreState struct {
	Items       []Item    `json:"items"`
	Loading     bool      `json:"loading"`
	Warning     string    `json:"warning,omitempty"`
	Mode        StoreMode `json:"mode"`
	PublishedAt time.Time `json:"publishedAt"`
}

type SuggestionResult struct {
	Success     bool     `json:"success"`
	Suggestions []string `json:"suggestions"`
	Items       []Item   `json:"items"`
	Error       string   `json:"error,omitempty"`
}

type EnquiryResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// EnquiryEnvelope is what a real mail transport would have been handed.
type EnquiryEnvelope struct {
	ID      string `json:"id"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

const (
	MinNameLength        = 2
	MinDescriptionLength = 10
)

// Validate returns per-field messages; an empty map means the input is valid.
func (in ItemInput) Validate() map[string]string {
	errs := map[string]string{}
	if utf8.RuneCountInString(strings.TrimSpace(in.Name)) < MinNameLength {
		errs["name"] = "Item name must be at least 2 characters."
	}
	if !in.Type.Valid() {
		errs["type"] = "Type must be one of Shirt, Pant, Shoes, Sports Gear, Accessory, Other."
	}
	if utf8.RuneCountInString(strings.TrimSpace(in.Description)) < MinDescriptionLength {
		errs["description"] = "Description must be at least 10 characters."
	}
	if strings.TrimSpace(in.CoverImage) == "" {
		errs["coverImage"] = "Cover image is required."
	}
	return errs
}
