// Lost & Found - Campus Item Matching Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lostfound

package matching

import (
	"testing"
	"time"

	"github.com/tomtom215/lostfound/internal/models"
)

func strPtr(s string) *string { return &s }

func day(s string) *time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return &t
}

func wallet(typ models.ItemType, date string) *models.Item {
	return &models.Item{
		Type:          typ,
		Status:        models.StatusApproved,
		CategoryID:    strPtr("C1"),
		Location:      "Library",
		ItemName:      "Black Wallet",
		Description:   "leather wallet with cards",
		DateLostFound: day(date),
	}
}

func TestScore_IdenticalItemsScoreMaximum(t *testing.T) {
	t.Parallel()

	lost := wallet(models.ItemTypeLost, "2024-01-10")
	found := wallet(models.ItemTypeFound, "2024-01-10")

	b := Explain(lost, found)
	if b.Score != 100 {
		t.Fatalf("Score = %d, want 100 (breakdown %+v)", b.Score, b)
	}
	if b.Category != 25 || b.Location != 20 || b.Date != 20 || b.Name != 20 || b.Description != 15 {
		t.Errorf("expected full credit on every feature, got %+v", b)
	}
}

func TestScore_DisjointItemsScoreZero(t *testing.T) {
	t.Parallel()

	lost := wallet(models.ItemTypeLost, "2024-01-10")
	found := &models.Item{
		Type:          models.ItemTypeFound,
		CategoryID:    strPtr("C2"),
		Location:      "Gymnasium",
		ItemName:      "Blue Umbrella",
		Description:   "folding umbrella red handle",
		DateLostFound: day("2024-03-10"),
	}

	if got := Score(lost, found); got != 0 {
		t.Errorf("Score = %d, want 0 (breakdown %+v)", got, Explain(lost, found))
	}
}

func TestScore_FoundBeforeLostIsAsymmetric(t *testing.T) {
	t.Parallel()

	early := wallet(models.ItemTypeLost, "2024-02-05")
	late := wallet(models.ItemTypeFound, "2024-02-10")

	// Found five days after the loss: plausible.
	forward := Score(early, late)
	// Same records with roles swapped: found five days before the loss.
	backward := Score(late, early)

	if forward == backward {
		t.Fatalf("expected asymmetric scores, both were %d", forward)
	}
	if forward-backward != FoundBeforeLostPenalty {
		t.Errorf("forward %d - backward %d = %d, want %d", forward, backward, forward-backward, FoundBeforeLostPenalty)
	}
}

func TestScore_PenaltyAppliesToAggregate(t *testing.T) {
	t.Parallel()

	lost := &models.Item{CategoryID: strPtr("C1"), DateLostFound: day("2024-02-10")}
	found := &models.Item{CategoryID: strPtr("C1"), DateLostFound: day("2024-02-05")}

	b := Explain(lost, found)
	if b.Date != 10 {
		t.Errorf("date feature = %d, want 10 for a five day gap", b.Date)
	}
	if b.Penalty != FoundBeforeLostPenalty {
		t.Errorf("penalty = %d, want %d", b.Penalty, FoundBeforeLostPenalty)
	}
	// 25 category + 10 date - 10 penalty.
	if b.Score != 25 {
		t.Errorf("Score = %d, want 25", b.Score)
	}

	// Penalty larger than the date credit reaches into other features.
	far := &models.Item{CategoryID: strPtr("C1"), DateLostFound: day("2024-01-01")}
	if got := Score(lost, far); got != 15 {
		t.Errorf("Score = %d, want 15 (25 category + 0 date - 10)", got)
	}
}

func TestScore_ClampsAtZero(t *testing.T) {
	t.Parallel()

	lost := &models.Item{DateLostFound: day("2024-02-10")}
	found := &models.Item{DateLostFound: day("2024-01-01")}

	if got := Score(lost, found); got != 0 {
		t.Errorf("Score = %d, want 0 after clamping", got)
	}
}

func TestScore_MissingFieldsContributeNothing(t *testing.T) {
	t.Parallel()

	lost := &models.Item{ItemName: "Keys"}
	found := &models.Item{ItemName: "keys"}

	b := Explain(lost, found)
	if b.Category != 0 || b.Location != 0 || b.Date != 0 || b.Description != 0 {
		t.Errorf("missing fields should score 0, got %+v", b)
	}
	// Denominator stays 100: a perfect name alone is 20.
	if b.Score != 20 {
		t.Errorf("Score = %d, want 20", b.Score)
	}
}

func TestLocationPoints(t *testing.T) {
	t.Parallel()

	tests := []struct {
		lost, found string
		want        int
	}{
		{"Library", "library", 20},
		{"Main Library", "library", 15},
		{"library", "Main Library 2nd floor", 15},
		{"Science-Building room_101", "science lab 101", 10},
		{"north gate", "gate house", 5},
		{"cafeteria", "parking lot", 0},
		{"", "library", 0},
	}

	for _, tt := range tests {
		if got := locationPoints(tt.lost, tt.found); got != tt.want {
			t.Errorf("locationPoints(%q, %q) = %d, want %d", tt.lost, tt.found, got, tt.want)
		}
	}
}

func TestDatePoints(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		lost, found *time.Time
		wantPoints  int
		wantPenalty int
	}{
		{"same day", day("2024-01-10"), day("2024-01-10"), 20, 0},
		{"one day", day("2024-01-10"), day("2024-01-11"), 20, 0},
		{"three days", day("2024-01-10"), day("2024-01-13"), 15, 0},
		{"seven days", day("2024-01-10"), day("2024-01-17"), 10, 0},
		{"fourteen days", day("2024-01-10"), day("2024-01-24"), 5, 0},
		{"fifteen days", day("2024-01-10"), day("2024-01-25"), 0, 0},
		{"found one day early", day("2024-01-10"), day("2024-01-09"), 20, 10},
		{"missing lost", nil, day("2024-01-10"), 0, 0},
		{"missing found", day("2024-01-10"), nil, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			points, penalty := datePoints(tt.lost, tt.found)
			if points != tt.wantPoints || penalty != tt.wantPenalty {
				t.Errorf("datePoints = (%d, %d), want (%d, %d)", points, penalty, tt.wantPoints, tt.wantPenalty)
			}
		})
	}
}

func TestNamePoints(t *testing.T) {
	t.Parallel()

	tests := []struct {
		lost, found string
		want        int
	}{
		{"Black Wallet", "black wallet", 20},
		{"Black Leather Wallet", "wallet", 7}, // 1 of 3 tokens
		{"Black Wallet", "wallet, black", 20}, // 2 of 2 tokens
		{"iPhone 13", "iphone charger", 20},   // "13" is dropped, 1 of 1
		{"Sunglasses", "glasses case", 20},    // containment counts
		{"Red Umbrella", "blue notebook", 0},
		{"ID", "ID card", 0}, // "id" is too short to count
	}

	for _, tt := range tests {
		if got := namePoints(tt.lost, tt.found); got != tt.want {
			t.Errorf("namePoints(%q, %q) = %d, want %d", tt.lost, tt.found, got, tt.want)
		}
	}
}

func TestDescriptionPoints(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		lost, found string
		want        int
	}{
		{"identical", "leather wallet with cards", "leather wallet with cards", 15},
		{"stop words ignored", "the wallet and the cards", "wallet, cards!", 15},
		{"half the tokens", "brown leather wallet cards", "leather cards", 8},
		{"long containment", "keychain attached", "keychains", 8},
		{"short tokens need equality", "red pen", "redder pens", 0},
		{"nothing shared", "blue umbrella", "silver laptop", 0},
		{"empty found", "blue umbrella", "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := descriptionPoints(tt.lost, tt.found); got != tt.want {
				t.Errorf("descriptionPoints(%q, %q) = %d, want %d", tt.lost, tt.found, got, tt.want)
			}
		})
	}
}

func TestNormalizeComposesAccents(t *testing.T) {
	t.Parallel()

	composed := "Caf\u00e9"
	decomposed := "Cafe\u0301"
	if normalize(composed) != normalize(decomposed) {
		t.Errorf("expected NFC normalization to unify %q and %q", composed, decomposed)
	}
	if got := locationPoints(composed, decomposed); got != 20 {
		t.Errorf("locationPoints = %d, want 20", got)
	}
}
