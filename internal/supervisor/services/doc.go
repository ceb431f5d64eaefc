// Lost & Found - Campus Item Matching Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lostfound

/*
Package services adapts the service's components to suture.Service.

Each wrapper turns a component's own lifecycle into Serve(ctx) error:

  - HTTPServerService: ListenAndServe plus Shutdown with a timeout
  - SchedulerService: Start(ctx) and Stop(), used for the sweep scheduler
  - NotifierService: Start(ctx) and a draining Close(), used for the email
    dispatcher
  - EventBusService: a blocking Run(ctx), used for the event router

Serve returns ctx.Err() on a requested shutdown so suture does not count it
as a failure, and a wrapped error otherwise so the supervisor restarts the
component.
*/
package services
