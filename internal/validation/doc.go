// Lost & Found - Campus Item Matching Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lostfound

// Package validation provides struct validation using go-playground/validator v10.
//
// A single validator instance is built once and shared; it caches struct
// metadata, so it is safe and cheap to call from every handler. Field names
// in error messages are taken from the struct's json tag, so a client sees
// the name it sent ("min_score", not "MinScore").
//
// # Custom tags
//
//   - itemtype: "lost" or "found"
//   - itemstatus: one of the moderation statuses
//
// # Usage
//
//	type processRequest struct {
//	    MinScore *int `json:"min_score" validate:"omitempty,min=0,max=100"`
//	}
//
//	if verr := validation.ValidateStruct(&req); verr != nil {
//	    apiErr := verr.ToAPIError()
//	    // respond 400 with apiErr.Code, apiErr.Message, apiErr.Details
//	}
package validation
