// Lost & Found - Campus Item Matching Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lostfound

/*
Package main is the entry point for the lost and found matching server.

The server scores newly approved lost and found reports against the opposite
kind, caches the best candidates per item, emails reporters about strong
matches and periodically re-runs the whole pass as a batch sweep.

# Application Architecture

Long-running components run under a Suture v4 supervisor tree:

	RootSupervisor ("lostfound")
	├── DataSupervisor ("data-layer")
	├── MessagingSupervisor ("messaging-layer")
	│   ├── Notification dispatcher (when NOTIFY_ENABLED)
	│   └── Event bus (when EVENTS_ENABLED)
	└── APISupervisor ("api-layer")
	    ├── Sweep scheduler
	    └── HTTP Server

Component initialization order:

 1. Configuration: Koanf v2 with defaults, config file and environment
 2. Logging: zerolog, json or console
 3. Database: DuckDB item store, optionally seeded with categories and demo data
 4. Notifier: SMTP dispatcher with rate limit, circuit breaker and cooldown ledger,
    or a log-only notifier when email is disabled
 5. Matching engine
 6. Event bus (optional): Watermill over GoChannel, or NATS JetStream with -tags nats
 7. Sweep scheduler
 8. HTTP API (chi)

# Build Tags

	go build ./cmd/server               # in-process event bus only
	go build -tags nats ./cmd/server    # adds the NATS JetStream backend

# Signal Handling

SIGINT and SIGTERM cancel the root context. The supervisor stops the HTTP
server, waits for an in-flight sweep, drains queued notifications and closes
the event bus before the database is closed.

# Example Usage

	export DUCKDB_PATH=/var/lib/lostfound/items.duckdb
	export NOTIFY_ENABLED=true
	export SMTP_HOST=smtp.campus.edu SMTP_PORT=587 SMTP_FROM=lostfound@campus.edu
	export BASE_URL=https://lostfound.campus.edu
	./lostfound-server
*/
package main
