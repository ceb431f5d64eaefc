// Lost & Found - Campus Item Matching Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lostfound

package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newSeedCommand(ctx *commandContext) *cobra.Command {
	var samples bool

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert the campus categories and locations",
		Long: "Inserts the category and location lists, skipping rows that already\n" +
			"exist. --samples also adds demo reporters and reports to an empty store.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, _, err := ctx.openDB(cmd)
			if err != nil {
				return err
			}
			defer db.Close()

			res, err := db.Seed(cmd.Context(), samples)
			if err != nil {
				return err
			}

			if ctx.jsonOutput() {
				return writeJSON(cmd, res)
			}
			rows := [][]string{
				{"categories", strconv.Itoa(res.Categories)},
				{"locations", strconv.Itoa(res.Locations)},
				{"users", strconv.Itoa(res.Users)},
				{"items", strconv.Itoa(res.Items)},
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(cmd, []string{"Table", "Inserted"}, rows, []columnAlignment{alignLeft, alignRight}))
			return nil
		},
	}

	cmd.Flags().BoolVar(&samples, "samples", false, "Also insert demo reporters and reports")
	return cmd
}
