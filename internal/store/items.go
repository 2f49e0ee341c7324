package store

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/najdeno/najdeno/internal/model"
)

// itemColumns are the columns selected for item records, in scan order.
var itemColumns = []string{
	"id", "title", "description", "category", "location_found", "date_found",
	"photo_filename", "status", "reporter_name", "reporter_email", "created_at",
}

// adminListCap bounds the admin listings, which have no pagination.
const adminListCap = 200

// SearchFilter describes a public item search. All set fields compose
// with AND semantics.
type SearchFilter struct {
	Query    string // substring match on title or description
	Category string // exact match
	Location string // substring match on location_found
	Status   string // exact match
	DateFrom string // inclusive lower bound on date_found (YYYY-MM-DD)
	DateTo   string // inclusive upper bound on date_found (YYYY-MM-DD)
	Sort     string // "newest" (default) or "oldest"
	Page     int    // 1-based
	Limit    int
}

// CreateItem inserts a pending item and returns the stored record.
func CreateItem(ctx context.Context, db *sql.DB, f model.ItemFields, photoFilename string) (*model.Item, error) {
	result, err := db.ExecContext(ctx,
		`INSERT INTO items (title, description, category, location_found, date_found,
		                    photo_filename, reporter_name, reporter_email)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		f.Title, f.Description, f.Category, f.LocationFound, f.DateFound,
		nullable(photoFilename), f.ReporterName, f.ReporterEmail,
	)
	if err != nil {
		return nil, fmt.Errorf("creating item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting item id: %w", err)
	}

	return GetItem(ctx, db, id)
}

// GetItem returns an item by ID, or nil if no such item exists.
func GetItem(ctx context.Context, db *sql.DB, id int64) (*model.Item, error) {
	query, args, err := sq.Select(itemColumns...).From("items").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building item query: %w", err)
	}

	item, err := scanItem(db.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting item: %w", err)
	}
	return item, nil
}

// SearchItems runs a filtered, paginated item search and returns the
// page slice plus the total number of matching rows ignoring pagination.
func SearchItems(ctx context.Context, db *sql.DB, f SearchFilter) ([]model.Item, int, error) {
	cond := searchConditions(f)

	countQB := sq.Select("COUNT(*)").From("items")
	if len(cond) > 0 {
		countQB = countQB.Where(cond)
	}
	query, args, err := countQB.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("building count query: %w", err)
	}

	var total int
	if err := db.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting items: %w", err)
	}

	// Tie-break on id so pages stay disjoint when created_at collides.
	order := "created_at DESC, id DESC"
	if f.Sort == "oldest" {
		order = "created_at ASC, id ASC"
	}

	pageQB := sq.Select(itemColumns...).From("items").
		OrderBy(order).
		Limit(uint64(f.Limit)).
		Offset(uint64((f.Page - 1) * f.Limit))
	if len(cond) > 0 {
		pageQB = pageQB.Where(cond)
	}
	query, args, err = pageQB.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("building search query: %w", err)
	}

	items, err := queryItems(ctx, db, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("searching items: %w", err)
	}
	return items, total, nil
}

// AdminListItems returns items for the admin listing, newest first.
// Only an exact status filter and a substring query are supported, and
// the result is capped rather than paginated.
func AdminListItems(ctx context.Context, db *sql.DB, status, q string) ([]model.Item, error) {
	qb := sq.Select(itemColumns...).From("items").
		OrderBy("created_at DESC, id DESC").
		Limit(adminListCap)
	if status != "" {
		qb = qb.Where(sq.Eq{"status": status})
	}
	if q != "" {
		pattern := "%" + q + "%"
		qb = qb.Where(sq.Or{sq.Like{"title": pattern}, sq.Like{"description": pattern}})
	}

	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("building admin item query: %w", err)
	}

	items, err := queryItems(ctx, db, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	return items, nil
}

// SetItemStatus updates an item's moderation status.
func SetItemStatus(ctx context.Context, db *sql.DB, id int64, status string) error {
	_, err := db.ExecContext(ctx,
		`UPDATE items SET status = ? WHERE id = ?`,
		status, id,
	)
	if err != nil {
		return fmt.Errorf("setting item status: %w", err)
	}
	return nil
}

// UpdateItemFields overwrites an item's editable fields, leaving its
// status and photo untouched.
func UpdateItemFields(ctx context.Context, db *sql.DB, id int64, f model.ItemFields) error {
	_, err := db.ExecContext(ctx,
		`UPDATE items
		 SET title = ?, description = ?, category = ?, location_found = ?, date_found = ?
		 WHERE id = ?`,
		f.Title, f.Description, f.Category, f.LocationFound, f.DateFound, id,
	)
	if err != nil {
		return fmt.Errorf("updating item: %w", err)
	}
	return nil
}

// DeleteItem removes an item row; claim rows cascade with it. File
// cleanup belongs to the caller and must happen before this.
func DeleteItem(ctx context.Context, db *sql.DB, id int64) error {
	_, err := db.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting item: %w", err)
	}
	return nil
}

// searchConditions builds the AND-composed predicate list for a search.
func searchConditions(f SearchFilter) sq.And {
	cond := sq.And{}
	if f.Status != "" {
		cond = append(cond, sq.Eq{"status": f.Status})
	}
	if f.Query != "" {
		pattern := "%" + f.Query + "%"
		cond = append(cond, sq.Or{sq.Like{"title": pattern}, sq.Like{"description": pattern}})
	}
	if f.Category != "" {
		cond = append(cond, sq.Eq{"category": f.Category})
	}
	if f.Location != "" {
		cond = append(cond, sq.Like{"location_found": "%" + f.Location + "%"})
	}
	if f.DateFrom != "" {
		cond = append(cond, sq.GtOrEq{"date_found": f.DateFrom})
	}
	if f.DateTo != "" {
		cond = append(cond, sq.LtOrEq{"date_found": f.DateTo})
	}
	return cond
}

func queryItems(ctx context.Context, db *sql.DB, query string, args ...any) ([]model.Item, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []model.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*model.Item, error) {
	item := &model.Item{}
	var photo sql.NullString
	err := row.Scan(
		&item.ID, &item.Title, &item.Description, &item.Category,
		&item.LocationFound, &item.DateFound, &photo, &item.Status,
		&item.ReporterName, &item.ReporterEmail, &item.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	item.PhotoFilename = photo.String
	return item, nil
}

// nullable maps an empty string to NULL.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
