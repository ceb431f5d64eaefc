// Lost & Found - Campus Item Matching Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lostfound

package matching

import (
	"math"
	"time"
	"unicode/utf8"

	"github.com/tomtom215/lostfound/internal/models"
)

// Feature weights. They always sum to MaxScore; a missing field zeroes a
// feature's points but never shrinks the denominator, and the 40/50/60
// thresholds are calibrated against that.
const (
	WeightCategory    = 25
	WeightLocation    = 20
	WeightDate        = 20
	WeightName        = 20
	WeightDescription = 15

	MaxScore = WeightCategory + WeightLocation + WeightDate + WeightName + WeightDescription

	// FoundBeforeLostPenalty is subtracted from the running total, not from
	// the date feature, when the found date precedes the lost date.
	FoundBeforeLostPenalty = 10
)

// Breakdown is the per-feature result of scoring one lost/found pair.
type Breakdown struct {
	Category    int `json:"category"`
	Location    int `json:"location"`
	Date        int `json:"date"`
	Name        int `json:"name"`
	Description int `json:"description"`
	Penalty     int `json:"penalty"`
	Score       int `json:"score"`
}

// Score returns the 0-100 similarity of a lost item and a found item.
// Argument order matters: the found-before-lost penalty is directional.
func Score(lost, found *models.Item) int {
	return Explain(lost, found).Score
}

// Explain scores a pair and returns every feature's contribution.
func Explain(lost, found *models.Item) Breakdown {
	var b Breakdown
	b.Category = categoryPoints(lost.CategoryID, found.CategoryID)
	b.Location = locationPoints(lost.Location, found.Location)
	b.Date, b.Penalty = datePoints(lost.DateLostFound, found.DateLostFound)
	b.Name = namePoints(lost.ItemName, found.ItemName)
	b.Description = descriptionPoints(lost.Description, found.Description)

	total := b.Category + b.Location + b.Date + b.Name + b.Description - b.Penalty
	b.Score = clamp(roundHalfUp(100*float64(total)/MaxScore), 0, 100)
	return b
}

func categoryPoints(lost, found *string) int {
	if lost == nil || found == nil || *lost == "" || *found == "" {
		return 0
	}
	if *lost == *found {
		return WeightCategory
	}
	return 0
}

func locationPoints(lostRaw, foundRaw string) int {
	if lostRaw == "" || foundRaw == "" {
		return 0
	}
	lost, found := normalize(lostRaw), normalize(foundRaw)

	if lost == found {
		return WeightLocation
	}
	if overlaps(lost, found) {
		return 15
	}

	foundTokens := locationTokens(found)
	common := 0
	for _, tok := range locationTokens(lost) {
		if anyOverlap(tok, foundTokens) {
			common++
		}
	}
	return min(10, common*5)
}

// datePoints returns the proximity points and the found-before-lost penalty.
func datePoints(lost, found *time.Time) (points, penalty int) {
	if lost == nil || found == nil || lost.IsZero() || found.IsZero() {
		return 0, 0
	}

	days := math.Abs(found.Sub(*lost).Hours() / 24)
	switch {
	case days <= 1:
		points = WeightDate
	case days <= 3:
		points = 15
	case days <= 7:
		points = 10
	case days <= 14:
		points = 5
	}

	if found.Before(*lost) {
		penalty = FoundBeforeLostPenalty
	}
	return points, penalty
}

func namePoints(lostRaw, foundRaw string) int {
	if lostRaw == "" || foundRaw == "" {
		return 0
	}
	lost, found := normalize(lostRaw), normalize(foundRaw)
	if lost == found {
		return WeightName
	}

	lostTokens := nameTokens(lost)
	foundTokens := nameTokens(found)

	matched := 0
	for _, tok := range lostTokens {
		if anyOverlap(tok, foundTokens) {
			matched++
		}
	}
	if matched == 0 {
		return 0
	}
	ratio := float64(matched) / float64(max(len(lostTokens), 1))
	return roundHalfUp(ratio * WeightName)
}

func descriptionPoints(lostRaw, foundRaw string) int {
	if lostRaw == "" || foundRaw == "" {
		return 0
	}
	lostTokens := descriptionTokens(normalize(lostRaw))
	foundTokens := descriptionTokens(normalize(foundRaw))

	matched := 0
	for _, lw := range lostTokens {
		for _, fw := range foundTokens {
			if descriptionTokenMatch(lw, fw) {
				matched++
				break
			}
		}
	}
	if matched == 0 {
		return 0
	}
	ratio := math.Min(float64(matched)/float64(max(len(lostTokens), 1)), 1)
	return roundHalfUp(ratio * WeightDescription)
}

// descriptionTokenMatch is stricter than name matching: short tokens must be
// identical, containment only counts when both are longer than four runes.
func descriptionTokenMatch(lw, fw string) bool {
	if lw == fw {
		return true
	}
	return utf8.RuneCountInString(lw) > 4 && utf8.RuneCountInString(fw) > 4 && overlaps(lw, fw)
}

// roundHalfUp rounds .5 toward positive infinity.
func roundHalfUp(x float64) int {
	return int(math.Floor(x + 0.5))
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
