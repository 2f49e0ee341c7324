package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/najdeno/najdeno/internal/model"
)

// CountItemsByStatus returns item counts keyed by status, plus "total".
// Every status is present in the result even when its count is zero.
func CountItemsByStatus(ctx context.Context, db *sql.DB) (map[string]int, error) {
	counts := map[string]int{
		"total":                  0,
		model.ItemStatusPending:  0,
		model.ItemStatusApproved: 0,
		model.ItemStatusClaimed:  0,
		model.ItemStatusArchived: 0,
	}
	if err := countByStatus(ctx, db, "items", counts); err != nil {
		return nil, fmt.Errorf("counting items: %w", err)
	}
	return counts, nil
}

// CountClaimsByStatus returns claim counts keyed by status, plus "total".
func CountClaimsByStatus(ctx context.Context, db *sql.DB) (map[string]int, error) {
	counts := map[string]int{
		"total":                   0,
		model.ClaimStatusNew:      0,
		model.ClaimStatusInReview: 0,
		model.ClaimStatusApproved: 0,
		model.ClaimStatusRejected: 0,
		model.ClaimStatusResolved: 0,
	}
	if err := countByStatus(ctx, db, "claims", counts); err != nil {
		return nil, fmt.Errorf("counting claims: %w", err)
	}
	return counts, nil
}

func countByStatus(ctx context.Context, db *sql.DB, table string, counts map[string]int) error {
	rows, err := db.QueryContext(ctx,
		`SELECT status, COUNT(*) FROM `+table+` GROUP BY status`,
	)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return err
		}
		counts[status] = n
		counts["total"] += n
	}
	return rows.Err()
}
