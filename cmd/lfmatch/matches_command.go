// Lost & Found - Campus Item Matching Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lostfound

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tomtom215/lostfound/internal/matching"
	"github.com/tomtom215/lostfound/internal/models"
	"github.com/tomtom215/lostfound/internal/notify"
)

func newMatchesCommand(ctx *commandContext) *cobra.Command {
	var minScore int

	cmd := &cobra.Command{
		Use:   "matches <item-id>",
		Short: "Rank candidate matches for one item",
		Long: "Scores the item against every approved item of the opposite type and\n" +
			"prints the candidates at or above --min-score, best first. Nothing is\n" +
			"written and no one is notified.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, cfg, err := ctx.openDB(cmd)
			if err != nil {
				return err
			}
			defer db.Close()

			if !cmd.Flags().Changed("min-score") {
				minScore = cfg.Matching.UIMinScore
			}
			if minScore < 0 || minScore > 100 {
				return fmt.Errorf("--min-score must be between 0 and 100, got %d", minScore)
			}

			item, err := db.GetItem(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			engine := matching.NewEngine(db, db, notify.NewLogNotifier(), matching.ConfigFrom(&cfg.Matching))
			found, err := engine.FindMatchesE(cmd.Context(), item, minScore)
			if err != nil {
				return err
			}

			if ctx.jsonOutput() {
				if found == nil {
					found = []models.Match{}
				}
				return writeJSON(cmd, found)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s (%s, %s) at %s\n", item.ItemName, item.Type, item.CategoryName(), item.Location)
			if len(found) == 0 {
				fmt.Fprintf(out, "No matches scoring %d or more\n", minScore)
				return nil
			}
			rows := make([][]string, 0, len(found))
			for _, m := range found {
				rows = append(rows, []string{
					scoreCell(cmd, m.Score),
					m.Item.ID,
					m.Item.ItemName,
					m.Item.Location,
					formatDate(m.Item.DateLostFound),
				})
			}
			fmt.Fprintln(out, renderTable(cmd,
				[]string{"Score", "ID", "Name", "Location", "Date"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft}))
			return nil
		},
	}

	cmd.Flags().IntVar(&minScore, "min-score", 0, "Minimum score (default: matching.ui_min_score)")
	return cmd
}
