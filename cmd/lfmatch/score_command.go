// Lost & Found - Campus Item Matching Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lostfound

package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/tomtom215/lostfound/internal/matching"
	"github.com/tomtom215/lostfound/internal/models"
)

func newScoreCommand(ctx *commandContext) *cobra.Command {
	var lostPath, foundPath string

	cmd := &cobra.Command{
		Use:   "score",
		Short: "Explain the match score of a lost report and a found report",
		Long: "Reads two item reports as JSON (item_name, description, location,\n" +
			"category_id, date_lost_found) and prints the per-feature points.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if lostPath == "" || foundPath == "" {
				return errors.New("both --lost and --found are required")
			}
			lost, err := readItem(lostPath, models.ItemTypeLost)
			if err != nil {
				return err
			}
			found, err := readItem(foundPath, models.ItemTypeFound)
			if err != nil {
				return err
			}

			b := matching.Explain(lost, found)
			if ctx.jsonOutput() {
				return writeJSON(cmd, b)
			}

			rows := [][]string{
				{"category", strconv.Itoa(b.Category)},
				{"location", strconv.Itoa(b.Location)},
				{"date", strconv.Itoa(b.Date)},
				{"name", strconv.Itoa(b.Name)},
				{"description", strconv.Itoa(b.Description)},
				{"penalty", "-" + strconv.Itoa(b.Penalty)},
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(cmd, []string{"Feature", "Points"}, rows, []columnAlignment{alignLeft, alignRight}))
			fmt.Fprintf(cmd.OutOrStdout(), "Score: %s/100\n", scoreCell(cmd, b.Score))
			return nil
		},
	}

	cmd.Flags().StringVar(&lostPath, "lost", "", "JSON file with the lost report")
	cmd.Flags().StringVar(&foundPath, "found", "", "JSON file with the found report")
	return cmd
}

// readItem decodes a report from path and forces its type.
func readItem(path string, typ models.ItemType) (*models.Item, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var item models.Item
	if err := json.Unmarshal(data, &item); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	item.Type = typ
	return &item, nil
}
