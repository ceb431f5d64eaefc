// Lost & Found - Campus Item Matching Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lostfound

package middleware

import (
	"net/http"

	"github.com/tomtom215/lostfound/internal/logging"
)

const (
	// HeaderRequestID carries the per-request ID.
	HeaderRequestID = "X-Request-ID"

	// HeaderCorrelationID carries the ID that follows a request into the
	// event bus and notification delivery.
	HeaderCorrelationID = "X-Correlation-ID"

	maxHeaderIDLen = 128
)

// RequestID adds request and correlation IDs to the request context and
// echoes them as response headers. IDs supplied by an upstream proxy are
// reused when they look sane.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := headerID(r, HeaderRequestID)
		if requestID == "" {
			requestID = logging.GenerateRequestID()
		}

		ctx := logging.ContextWithRequestID(r.Context(), requestID)
		if cid := headerID(r, HeaderCorrelationID); cid != "" {
			ctx = logging.ContextWithCorrelationID(ctx, cid)
		} else {
			ctx = logging.ContextWithNewCorrelationID(ctx)
		}

		w.Header().Set(HeaderRequestID, requestID)
		w.Header().Set(HeaderCorrelationID, logging.CorrelationIDFromContext(ctx))

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// headerID returns the header value if it is short and printable, else "".
func headerID(r *http.Request, name string) string {
	v := r.Header.Get(name)
	if v == "" || len(v) > maxHeaderIDLen {
		return ""
	}
	for i := 0; i < len(v); i++ {
		if v[i] < 0x21 || v[i] > 0x7e {
			return ""
		}
	}
	return v
}
