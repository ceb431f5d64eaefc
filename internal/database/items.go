// Lost & Found - Campus Item Matching Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lostfound

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/lostfound/internal/models"
)

// itemSelect joins the category and reporter so a single query returns a
// fully resolved item.
const itemSelect = `
	SELECT
		i.id, i.type, i.status,
		i.category_id, c.name, c.description, c.icon,
		i.location, i.location_id, i.custom_location,
		i.item_name, i.description, i.image_path,
		i.date_lost_found, i.date_reported,
		i.reported_by, u.username, u.email,
		i.reporter_name, i.reporter_email, i.contact_info, i.admin_notes,
		i.potential_matches, i.created_at, i.updated_at
	FROM items i
	LEFT JOIN categories c ON c.id = i.category_id
	LEFT JOIN users u ON u.id = i.reported_by
`

// CreateItem inserts a report. Empty ID, status and report date are filled
// in; a picked location id is resolved to its display name when Location is
// empty, otherwise the custom location is used.
func (db *DB) CreateItem(ctx context.Context, item *models.Item) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	now := db.now()
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	if item.Status == "" {
		item.Status = models.StatusPending
	}
	if item.DateReported.IsZero() {
		item.DateReported = now
	}
	item.CreatedAt, item.UpdatedAt = now, now

	if err := item.Validate(); err != nil {
		return err
	}

	if item.Location == "" {
		loc, err := db.resolveLocation(ctx, item.LocationID, item.CustomLocation)
		if err != nil {
			return err
		}
		item.Location = loc
	}

	cache, err := marshalMatchCache(item.PotentialMatches)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO items (
			id, type, status, category_id,
			location, location_id, custom_location,
			item_name, description, image_path,
			date_lost_found, date_reported,
			reported_by, reporter_name, reporter_email, contact_info, admin_notes,
			potential_matches, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = db.conn.ExecContext(ctx, query,
		item.ID, string(item.Type), string(item.Status), nullablePtr(item.CategoryID),
		item.Location, nullablePtr(item.LocationID), nullablePtr(item.CustomLocation),
		item.ItemName, item.Description, nullablePtr(item.ImagePath),
		nullableTime(item.DateLostFound), item.DateReported.UTC(),
		nullablePtr(item.ReportedBy), nullableString(item.ReporterName), nullableString(item.ReporterEmail),
		nullableString(item.ContactInfo), nullableString(item.AdminNotes),
		cache, item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert item: %w", err)
	}
	return nil
}

func (db *DB) resolveLocation(ctx context.Context, locationID, custom *string) (string, error) {
	if locationID != nil && *locationID != "" {
		var name string
		err := db.conn.QueryRowContext(ctx, `SELECT name FROM locations WHERE id = ?`, *locationID).Scan(&name)
		switch {
		case err == nil:
			return name, nil
		case !errors.Is(err, sql.ErrNoRows):
			return "", fmt.Errorf("failed to resolve location %s: %w", *locationID, err)
		}
	}
	if custom != nil {
		return *custom, nil
	}
	return "", nil
}

// GetItem returns one item with category and reporter resolved.
func (db *DB) GetItem(ctx context.Context, id string) (*models.Item, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	row := db.conn.QueryRowContext(ctx, itemSelect+` WHERE i.id = ?`, id)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("item %s: %w", id, ErrItemNotFound)
	}
	if err != nil {
		return nil, err
	}
	return item, nil
}

// FindItems returns items matching filter in storage order.
func (db *DB) FindItems(ctx context.Context, filter models.ItemFilter) ([]models.Item, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var (
		where []string
		args  []interface{}
	)
	if filter.Type != "" {
		where = append(where, "i.type = ?")
		args = append(args, string(filter.Type))
	}
	if filter.Status != "" {
		where = append(where, "i.status = ?")
		args = append(args, string(filter.Status))
	}
	if filter.ExcludeID != "" {
		where = append(where, "i.id <> ?")
		args = append(args, filter.ExcludeID)
	}

	query := itemSelect
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY i.seq"

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}
	defer rows.Close()

	items := []models.Item{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating items: %w", err)
	}
	return items, nil
}

// UpdateStatus moves an item through the moderation lifecycle and returns
// the updated item. Disallowed moves wrap models.ErrInvalidTransition.
func (db *DB) UpdateStatus(ctx context.Context, id string, next models.ItemStatus) (*models.Item, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer rollbackQuietly(tx)

	var current string
	err = tx.QueryRowContext(ctx, `SELECT status FROM items WHERE id = ?`, id).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("item %s: %w", id, ErrItemNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read item status: %w", err)
	}

	if !models.ItemStatus(current).CanTransition(next) {
		return nil, fmt.Errorf("%s to %s: %w", current, next, models.ErrInvalidTransition)
	}

	if _, err := tx.ExecContext(ctx, `UPDATE items SET status = ?, updated_at = ? WHERE id = ?`,
		string(next), db.now(), id); err != nil {
		return nil, fmt.Errorf("failed to update item status: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit status change: %w", err)
	}

	return db.GetItem(ctx, id)
}

// DeleteItem removes a report. Match caches that reference it are left as
// they are; readers treat a missing item as deleted.
func (db *DB) DeleteItem(ctx context.Context, id string) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	res, err := db.conn.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("item %s: %w", id, ErrItemNotFound)
	}
	return nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// itemScanData holds scanned values before conversion to models.Item.
type itemScanData struct {
	id, typ, status                             string
	categoryID, categoryName, categoryDesc      sql.NullString
	categoryIcon                                sql.NullString
	location                                    string
	locationID, customLocation                  sql.NullString
	itemName, description                       string
	imagePath                                   sql.NullString
	dateLostFound                               sql.NullTime
	dateReported                                time.Time
	reportedBy, reporterUsername, reporterEmail sql.NullString
	reporterName, contactEmail, contactInfo     sql.NullString
	adminNotes                                  sql.NullString
	potentialMatches                            sql.NullString
	createdAt, updatedAt                        time.Time
}

func scanItem(row rowScanner) (*models.Item, error) {
	var d itemScanData
	err := row.Scan(
		&d.id, &d.typ, &d.status,
		&d.categoryID, &d.categoryName, &d.categoryDesc, &d.categoryIcon,
		&d.location, &d.locationID, &d.customLocation,
		&d.itemName, &d.description, &d.imagePath,
		&d.dateLostFound, &d.dateReported,
		&d.reportedBy, &d.reporterUsername, &d.reporterEmail,
		&d.reporterName, &d.contactEmail, &d.contactInfo, &d.adminNotes,
		&d.potentialMatches, &d.createdAt, &d.updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan item: %w", err)
	}
	return buildItem(&d)
}

func buildItem(d *itemScanData) (*models.Item, error) {
	item := &models.Item{
		ID:             d.id,
		Type:           models.ItemType(d.typ),
		Status:         models.ItemStatus(d.status),
		CategoryID:     ptrFromNull(d.categoryID),
		Location:       d.location,
		LocationID:     ptrFromNull(d.locationID),
		CustomLocation: ptrFromNull(d.customLocation),
		ItemName:       d.itemName,
		Description:    d.description,
		ImagePath:      ptrFromNull(d.imagePath),
		DateReported:   d.dateReported,
		ReportedBy:     ptrFromNull(d.reportedBy),
		ReporterName:   d.reporterName.String,
		ReporterEmail:  d.contactEmail.String,
		ContactInfo:    d.contactInfo.String,
		AdminNotes:     d.adminNotes.String,
		CreatedAt:      d.createdAt,
		UpdatedAt:      d.updatedAt,
	}

	if d.categoryID.Valid && d.categoryName.Valid {
		item.Category = &models.Category{
			ID:          d.categoryID.String,
			Name:        d.categoryName.String,
			Description: d.categoryDesc.String,
			Icon:        d.categoryIcon.String,
		}
	}
	if d.dateLostFound.Valid {
		t := d.dateLostFound.Time
		item.DateLostFound = &t
	}
	if d.reportedBy.Valid && d.reporterUsername.Valid {
		item.Reporter = &models.User{
			ID:       d.reportedBy.String,
			Username: d.reporterUsername.String,
			Email:    d.reporterEmail.String,
		}
	}

	entries, err := unmarshalMatchCache(d.potentialMatches)
	if err != nil {
		return nil, fmt.Errorf("item %s: %w", d.id, err)
	}
	item.PotentialMatches = entries
	return item, nil
}

func marshalMatchCache(entries []models.MatchEntry) (string, error) {
	if entries == nil {
		entries = []models.MatchEntry{}
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return "", fmt.Errorf("failed to marshal match cache: %w", err)
	}
	return string(data), nil
}

func unmarshalMatchCache(field sql.NullString) ([]models.MatchEntry, error) {
	if !field.Valid || field.String == "" {
		return []models.MatchEntry{}, nil
	}
	var entries []models.MatchEntry
	if err := json.Unmarshal([]byte(field.String), &entries); err != nil {
		return nil, fmt.Errorf("failed to parse match cache: %w", err)
	}
	if entries == nil {
		entries = []models.MatchEntry{}
	}
	return entries, nil
}
