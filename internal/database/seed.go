// Lost & Found - Campus Item Matching Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lostfound

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/lostfound/internal/logging"
	"github.com/tomtom215/lostfound/internal/models"
)

// SeedResult counts the rows a Seed call inserted.
type SeedResult struct {
	Categories int `json:"categories"`
	Locations  int `json:"locations"`
	Users      int `json:"users"`
	Items      int `json:"items"`
}

var defaultCategories = []models.Category{
	{ID: "electronics", Name: "Electronics", Description: "Phones, laptops, tablets, chargers, etc.", Icon: "fa-laptop"},
	{ID: "books", Name: "Books & Documents", Description: "Textbooks, notebooks, IDs, documents", Icon: "fa-book"},
	{ID: "clothing", Name: "Clothing & Accessories", Description: "Jackets, bags, jewelry, watches", Icon: "fa-tshirt"},
	{ID: "keys", Name: "Keys", Description: "Car keys, house keys, key cards", Icon: "fa-key"},
	{ID: "wallets", Name: "Wallets & Cards", Description: "Wallets, credit cards, student IDs", Icon: "fa-wallet"},
	{ID: "sports", Name: "Sports Equipment", Description: "Sports gear, gym equipment", Icon: "fa-futbol"},
	{ID: "personal", Name: "Personal Items", Description: "Glasses, umbrellas, water bottles", Icon: "fa-user"},
	{ID: "music", Name: "Musical Instruments", Description: "Instruments and music equipment", Icon: "fa-music"},
	{ID: "stationery", Name: "Stationery", Description: "Pens, pencils, calculators, supplies", Icon: "fa-pencil"},
	{ID: "other", Name: "Other", Description: "Other miscellaneous items", Icon: "fa-box"},
}

var defaultLocations = []Location{
	{ID: "main-entrance", Name: "Main Entrance", Building: "Building 1"},
	{ID: "main-library", Name: "Main Library", Building: "Building 4"},
	{ID: "science-building", Name: "Science Building", Building: "Building 5"},
	{ID: "student-lounge", Name: "Student Lounge", Building: "Building 6"},
	{ID: "cafeteria", Name: "Student Cafeteria", Building: "Building 10"},
	{ID: "gym", Name: "Gym", Building: "Building 14"},
	{ID: "clinic", Name: "Clinic", Building: "Building 16"},
	{ID: "chapel", Name: "Chapel", Building: "Building 18"},
	{ID: "parking-b", Name: "Parking Lot B", Building: ""},
	{ID: "central-plaza", Name: "Central Plaza Fountain", Building: ""},
}

// Seed inserts the category and location lists, skipping rows that already
// exist. With samples set and an empty items table it also inserts demo
// reporters and reports.
func (db *DB) Seed(ctx context.Context, samples bool) (SeedResult, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var res SeedResult

	for _, c := range defaultCategories {
		r, err := db.conn.ExecContext(ctx,
			`INSERT INTO categories (id, name, description, icon) VALUES (?, ?, ?, ?) ON CONFLICT DO NOTHING`,
			c.ID, c.Name, c.Description, c.Icon)
		if err != nil {
			return res, fmt.Errorf("failed to seed category %s: %w", c.ID, err)
		}
		res.Categories += affected(r)
	}

	for _, l := range defaultLocations {
		r, err := db.conn.ExecContext(ctx,
			`INSERT INTO locations (id, name, building) VALUES (?, ?, ?) ON CONFLICT DO NOTHING`,
			l.ID, l.Name, nullableString(l.Building))
		if err != nil {
			return res, fmt.Errorf("failed to seed location %s: %w", l.ID, err)
		}
		res.Locations += affected(r)
	}

	if samples {
		var count int
		if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM items`).Scan(&count); err != nil {
			return res, fmt.Errorf("failed to count items: %w", err)
		}
		if count == 0 {
			users, items, err := db.seedSamples(ctx)
			res.Users, res.Items = users, items
			if err != nil {
				return res, err
			}
		} else {
			logging.Info().Int("items", count).Msg("Items already exist, skipping sample items")
		}
	}

	logging.Info().
		Int("categories", res.Categories).
		Int("locations", res.Locations).
		Int("users", res.Users).
		Int("items", res.Items).
		Msg("Database seeded")
	return res, nil
}

func (db *DB) seedSamples(ctx context.Context) (users, items int, err error) {
	reporters := []models.User{
		{ID: "john", Username: "john", Email: "john@campus.edu", NotificationPreferences: models.DefaultNotificationPreferences()},
		{ID: "mike", Username: "mike", Email: "mike@campus.edu", NotificationPreferences: models.DefaultNotificationPreferences()},
		{ID: "security", Username: "security", Email: "security@campus.edu", NotificationPreferences: models.DefaultNotificationPreferences()},
	}
	for i := range reporters {
		if err := db.CreateUser(ctx, &reporters[i]); err != nil {
			return users, items, err
		}
		users++
	}

	samples := []models.Item{
		sampleItem(models.ItemTypeLost, models.StatusApproved, "electronics", "Black iPhone 14 Pro",
			"Black iPhone 14 Pro with cracked screen protector. Has a blue case with flower pattern.",
			"main-library", "", "2024-11-28", "john", "John Smith", "john@campus.edu"),
		sampleItem(models.ItemTypeFound, models.StatusApproved, "electronics", "Black iPhone",
			"iPhone with blue flower case and cracked screen protector, found on a study table.",
			"main-library", "", "2024-11-29", "security", "Campus Security", "security@campus.edu"),
		sampleItem(models.ItemTypeFound, models.StatusApproved, "clothing", "Blue Backpack with Books",
			"Navy blue Jansport backpack containing calculus textbook and spiral notebooks.",
			"cafeteria", "", "2024-11-29", "security", "Campus Security", "security@campus.edu"),
		sampleItem(models.ItemTypeFound, models.StatusApproved, "keys", "Toyota Car Keys",
			"Toyota key fob with black leather keychain. Has a small scratched area on the back.",
			"parking-b", "", "2024-11-30", "security", "Security Office", "security@campus.edu"),
		sampleItem(models.ItemTypeLost, models.StatusPending, "wallets", "Brown Leather Wallet",
			"Brown leather bifold wallet. Contains no cash but has personal photos.",
			"", "Science Building - Lab 203", "2024-12-01", "mike", "Mike Johnson", "mike@campus.edu"),
		sampleItem(models.ItemTypeFound, models.StatusApproved, "personal", "Ray-Ban Sunglasses",
			"Classic black Ray-Ban Wayfarer sunglasses. Found on bench near the fountain.",
			"central-plaza", "", "2024-11-27", "", "Amy Wilson", "amy@campus.edu"),
	}
	for i := range samples {
		if err := db.CreateItem(ctx, &samples[i]); err != nil {
			return users, items, err
		}
		items++
	}
	return users, items, nil
}

func sampleItem(typ models.ItemType, status models.ItemStatus, category, name, description,
	locationID, customLocation, date, reporter, reporterName, reporterEmail string,
) models.Item {
	item := models.Item{
		Type:          typ,
		Status:        status,
		CategoryID:    &category,
		ItemName:      name,
		Description:   description,
		ReporterName:  reporterName,
		ReporterEmail: reporterEmail,
	}
	if locationID != "" {
		item.LocationID = &locationID
	}
	if customLocation != "" {
		item.CustomLocation = &customLocation
	}
	if reporter != "" {
		item.ReportedBy = &reporter
	}
	if t, err := time.Parse("2006-01-02", date); err == nil {
		item.DateLostFound = &t
	}
	return item
}

func affected(r interface{ RowsAffected() (int64, error) }) int {
	n, err := r.RowsAffected()
	if err != nil {
		return 0
	}
	return int(n)
}
