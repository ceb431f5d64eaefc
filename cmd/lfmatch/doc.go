// Lost & Found - Campus Item Matching Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lostfound

/*
Command lfmatch is the operator CLI for the matching engine.

It works directly against the DuckDB item store, so run it while the server
is stopped or against a copy of the database file:

	lfmatch seed --samples                     # categories, locations and demo reports
	lfmatch matches <item-id> --min-score 50   # rank candidates for one item
	lfmatch sweep                              # process every approved item
	lfmatch score --lost a.json --found b.json # explain the score of two reports

Configuration is read the same way as the server (CONFIG_PATH, config.yaml,
environment). --db overrides the database path and --json switches every
command to machine-readable output.
*/
package main
