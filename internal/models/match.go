// Lost & Found - Campus Item Matching Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lostfound

package models

import "time"

// Match is a scored candidate produced by the matching engine.
type Match struct {
	Item      Item      `json:"item"`
	Score     int       `json:"score"`
	MatchedAt time.Time `json:"matched_at"`
}

// MatchEntry is one row of an item's persisted match cache.
type MatchEntry struct {
	ItemID    string    `json:"item_id"`
	Score     int       `json:"score"`
	MatchedAt time.Time `json:"matched_at"`
	Dismissed bool      `json:"dismissed"`
}

// MatchNotice is one notification to send: the recipient's lost item paired
// with the found item that may be theirs.
type MatchNotice struct {
	Recipient User `json:"recipient"`
	Lost      Item `json:"lost"`
	Found     Item `json:"found"`
	Score     int  `json:"score"`
}

// ToEntries converts ranked matches to cache rows, keeping at most limit.
func ToEntries(matches []Match, limit int) []MatchEntry {
	if limit < 0 || limit > len(matches) {
		limit = len(matches)
	}
	entries := make([]MatchEntry, 0, limit)
	for _, m := range matches[:limit] {
		entries = append(entries, MatchEntry{
			ItemID:    m.Item.ID,
			Score:     m.Score,
			MatchedAt: m.MatchedAt,
		})
	}
	return entries
}

// CachedMatch is a match cache entry with its item resolved. Item is nil when
// the matched item has since been deleted.
type CachedMatch struct {
	Entry MatchEntry `json:"entry"`
	Item  *Item      `json:"item,omitempty"`
}
