// Lost & Found - Campus Item Matching Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lostfound

package models

import (
	"fmt"
	"time"
)

// ItemType distinguishes the two report kinds that are matched against each other.
type ItemType string

const (
	ItemTypeLost  ItemType = "lost"
	ItemTypeFound ItemType = "found"
)

// Valid reports whether t is lost or found.
func (t ItemType) Valid() bool {
	return t == ItemTypeLost || t == ItemTypeFound
}

// Opposite returns the type an item of type t is matched against.
func (t ItemType) Opposite() ItemType {
	if t == ItemTypeLost {
		return ItemTypeFound
	}
	return ItemTypeLost
}

// ItemStatus is the moderation lifecycle state of a report.
type ItemStatus string

const (
	StatusPending  ItemStatus = "pending"
	StatusApproved ItemStatus = "approved"
	StatusClaimed  ItemStatus = "claimed"
	StatusRejected ItemStatus = "rejected"
)

// Valid reports whether s is a known status.
func (s ItemStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusClaimed, StatusRejected:
		return true
	}
	return false
}

// CanTransition reports whether moderation may move an item from s to next.
// pending -> approved | rejected, approved -> claimed | rejected.
func (s ItemStatus) CanTransition(next ItemStatus) bool {
	switch s {
	case StatusPending:
		return next == StatusApproved || next == StatusRejected
	case StatusApproved:
		return next == StatusClaimed || next == StatusRejected
	}
	return false
}

// Item is a lost or found report.
//
// Nullable inputs to the scorer (category, date) are pointers; a nil value
// contributes zero points and is never an error.
type Item struct {
	ID     string     `json:"id"`
	Type   ItemType   `json:"type"`
	Status ItemStatus `json:"status"`

	CategoryID *string   `json:"category_id,omitempty"`
	Category   *Category `json:"category,omitempty"` // resolved relation, read-only

	Location       string  `json:"location"`
	LocationID     *string `json:"location_id,omitempty"`     // picked from the campus list
	CustomLocation *string `json:"custom_location,omitempty"` // typed by the reporter

	ItemName    string  `json:"item_name"`
	Description string  `json:"description"`
	ImagePath   *string `json:"image_path,omitempty"`

	DateLostFound *time.Time `json:"date_lost_found,omitempty"`
	DateReported  time.Time  `json:"date_reported"`

	ReportedBy    *string `json:"reported_by,omitempty"`
	Reporter      *User   `json:"-"` // resolved relation, never serialized
	ReporterName  string  `json:"reporter_name,omitempty"`
	ReporterEmail string  `json:"-"`
	ContactInfo   string  `json:"-"`
	AdminNotes    string  `json:"-"`

	// PotentialMatches is the advisory match cache. It is rebuilt wholesale
	// by each recompute and may be stale.
	PotentialMatches []MatchEntry `json:"potential_matches,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsLost reports whether the item is a lost report.
func (i *Item) IsLost() bool { return i.Type == ItemTypeLost }

// CategoryName returns the resolved category name, or "".
func (i *Item) CategoryName() string {
	if i.Category == nil {
		return ""
	}
	return i.Category.Name
}

// Validate checks the fields required to store a report.
func (i *Item) Validate() error {
	if !i.Type.Valid() {
		return fmt.Errorf("invalid item type %q", i.Type)
	}
	if !i.Status.Valid() {
		return fmt.Errorf("invalid item status %q", i.Status)
	}
	if i.ItemName == "" {
		return fmt.Errorf("item name is required")
	}
	return nil
}

// ItemFilter selects items from the store. Zero-valued fields do not filter.
type ItemFilter struct {
	Type      ItemType
	Status    ItemStatus
	ExcludeID string
}

// Category groups items (electronics, clothing, keys...).
type Category struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Icon        string `json:"icon,omitempty"`
}
