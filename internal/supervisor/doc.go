// Lost & Found - Campus Item Matching Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lostfound

/*
Package supervisor runs the service's long-lived components under suture v4.

Layout:

	Root ("lostfound")
	├── "messaging-layer"
	│   ├── NotifierService (match email dispatcher)
	│   └── EventBusService (watermill router, if EVENTS_ENABLED)
	├── "jobs-layer"
	│   └── SchedulerService (batch sweep)
	└── "api-layer"
	    └── HTTPServerService

Each layer restarts its children independently with backoff. Supervisor
events go to slog through sutureslog, and slog is bridged to zerolog by
logging.NewSlogLogger.

Usage:

	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	tree.AddMessagingService(services.NewNotifierService(dispatcher))
	tree.AddJobService(services.NewSchedulerService("sweep-scheduler", scheduler))
	tree.AddAPIService(services.NewHTTPServerService(srv, 10*time.Second))
	err := tree.Serve(ctx)
*/
package supervisor
