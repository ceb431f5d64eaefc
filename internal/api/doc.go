// Lost & Found - Campus Item Matching Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lostfound

/*
Package api serves the matching engine over HTTP with chi.

Routes:

	GET  /health
	GET  /metrics
	GET  /api/v1/items/{id}
	POST /api/v1/items/{id}/approve
	POST /api/v1/items/{id}/status
	GET  /api/v1/items/{id}/matches            fresh, threshold 40 (min_score overrides)
	GET  /api/v1/items/{id}/matches/cached     persisted cache, resolved
	POST /api/v1/items/{id}/matches/process    compute, notify, rewrite cache
	POST /api/v1/items/{id}/matches/{matchedId}/dismiss
	POST /api/v1/matching/score                score two snapshots
	POST /api/v1/matching/sweep                run a batch sweep now

Every response uses the APIResponse envelope. Unknown items answer 404,
malformed or invalid bodies 400, and disallowed status changes 409. Store
failures are logged and answered with a generic 500.

Approving an item publishes item.approved when an EventPublisher is
configured and answers 202; otherwise the matching pass runs inline.
*/
package api
