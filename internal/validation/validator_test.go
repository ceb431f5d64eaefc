// Lost & Found - Campus Item Matching Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lostfound

package validation

import (
	"strings"
	"testing"
)

type statusRequest struct {
	Status   string `json:"status" validate:"required,itemstatus"`
	Type     string `json:"type,omitempty" validate:"omitempty,itemtype"`
	MinScore *int   `json:"min_score" validate:"omitempty,minscore"`
	Note     string `json:"note" validate:"max=10"`
	Internal string `json:"-" validate:"omitempty,uuid"`
}

func intPtr(v int) *int { return &v }

func TestGetValidator_Singleton(t *testing.T) {
	t.Parallel()
	if v1, v2 := GetValidator(), GetValidator(); v1 == nil || v1 != v2 {
		t.Error("GetValidator() should return one shared instance")
	}
}

func TestValidateStruct_Valid(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		input statusRequest
	}{
		{"status only", statusRequest{Status: "approved"}},
		{"with type", statusRequest{Status: "claimed", Type: "found"}},
		{"score lower bound", statusRequest{Status: "pending", MinScore: intPtr(0)}},
		{"score upper bound", statusRequest{Status: "rejected", MinScore: intPtr(100)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if err := ValidateStruct(&tt.input); err != nil {
				t.Errorf("ValidateStruct() = %v", err)
			}
		})
	}
}

func TestValidateStruct_Invalid(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name        string
		input       statusRequest
		wantField   string
		wantTag     string
		wantMessage string
	}{
		{"missing status", statusRequest{}, "status", "required", "status is required"},
		{"unknown status", statusRequest{Status: "lost"}, "status", "itemstatus", "status must be one of"},
		{"unknown type", statusRequest{Status: "approved", Type: "stolen"}, "type", "itemtype", "type must be lost or found"},
		{"score above 100", statusRequest{Status: "approved", MinScore: intPtr(101)}, "min_score", "minscore", "min_score must be between 0 and 100"},
		{"score below 0", statusRequest{Status: "approved", MinScore: intPtr(-1)}, "min_score", "minscore", "min_score must be between 0 and 100"},
		{"note too long", statusRequest{Status: "approved", Note: "abcdefghijk"}, "note", "max", "note must be at most 10 characters"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			verr := ValidateStruct(&tt.input)
			if verr == nil {
				t.Fatal("ValidateStruct() = nil, want error")
			}
			errs := verr.Errors()
			if len(errs) != 1 {
				t.Fatalf("got %d errors, want 1: %v", len(errs), verr)
			}
			if errs[0].Field() != tt.wantField || errs[0].Tag() != tt.wantTag {
				t.Errorf("field/tag = %s/%s, want %s/%s", errs[0].Field(), errs[0].Tag(), tt.wantField, tt.wantTag)
			}
			if !strings.HasPrefix(errs[0].Error(), tt.wantMessage) {
				t.Errorf("message = %q, want prefix %q", errs[0].Error(), tt.wantMessage)
			}
		})
	}
}

func TestToAPIError(t *testing.T) {
	t.Parallel()

	t.Run("single field", func(t *testing.T) {
		t.Parallel()
		apiErr := ValidateStruct(&statusRequest{}).ToAPIError()
		if apiErr.Code != ErrorCode {
			t.Errorf("Code = %q", apiErr.Code)
		}
		if apiErr.Details["field"] != "status" || apiErr.Details["tag"] != "required" {
			t.Errorf("Details = %v", apiErr.Details)
		}
	})

	t.Run("several fields", func(t *testing.T) {
		t.Parallel()
		verr := ValidateStruct(&statusRequest{Type: "stolen", Note: "abcdefghijk"})
		apiErr := verr.ToAPIError()
		fields, ok := apiErr.Details["fields"].([]map[string]interface{})
		if !ok || len(fields) != 3 {
			t.Fatalf("Details = %v", apiErr.Details)
		}
		if !strings.Contains(apiErr.Message, "status is required") || !strings.Contains(apiErr.Message, "; ") {
			t.Errorf("Message = %q", apiErr.Message)
		}
	})

	t.Run("empty", func(t *testing.T) {
		t.Parallel()
		apiErr := (&RequestValidationError{}).ToAPIError()
		if apiErr.Message != "Validation failed" {
			t.Errorf("Message = %q", apiErr.Message)
		}
	})
}
