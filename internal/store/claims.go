package store

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/najdeno/najdeno/internal/model"
)

// CreateClaim inserts a new claim against an item and returns the
// stored record. The caller is responsible for checking that the item
// exists and is claimable.
func CreateClaim(ctx context.Context, db *sql.DB, itemID int64, f model.ClaimFields, proofFilename string) (*model.Claim, error) {
	result, err := db.ExecContext(ctx,
		`INSERT INTO claims (item_id, claimant_name, claimant_email, student_id, message, proof_filename)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		itemID, f.ClaimantName, f.ClaimantEmail, nullable(f.StudentID), f.Message, nullable(proofFilename),
	)
	if err != nil {
		return nil, fmt.Errorf("creating claim: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting claim id: %w", err)
	}

	return GetClaim(ctx, db, id)
}

// GetClaim returns a claim by ID, or nil if no such claim exists.
func GetClaim(ctx context.Context, db *sql.DB, id int64) (*model.Claim, error) {
	c := &model.Claim{}
	var studentID, proof sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT id, item_id, claimant_name, claimant_email, student_id, message,
		        proof_filename, status, created_at
		 FROM claims WHERE id = ?`, id,
	).Scan(&c.ID, &c.ItemID, &c.ClaimantName, &c.ClaimantEmail, &studentID,
		&c.Message, &proof, &c.Status, &c.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting claim: %w", err)
	}
	c.StudentID = studentID.String
	c.ProofFilename = proof.String
	return c, nil
}

// ClaimsByItem returns all claims against an item, newest first.
func ClaimsByItem(ctx context.Context, db *sql.DB, itemID int64) ([]model.Claim, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, item_id, claimant_name, claimant_email, student_id, message,
		        proof_filename, status, created_at
		 FROM claims WHERE item_id = ?
		 ORDER BY created_at DESC, id DESC`, itemID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing item claims: %w", err)
	}
	defer rows.Close()

	var claims []model.Claim
	for rows.Next() {
		var c model.Claim
		var studentID, proof sql.NullString
		if err := rows.Scan(&c.ID, &c.ItemID, &c.ClaimantName, &c.ClaimantEmail,
			&studentID, &c.Message, &proof, &c.Status, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning claim: %w", err)
		}
		c.StudentID = studentID.String
		c.ProofFilename = proof.String
		claims = append(claims, c)
	}
	return claims, rows.Err()
}

// AdminListClaims returns claims joined with the parent item's title and
// status for triage, newest first, capped, with an optional exact
// status filter.
func AdminListClaims(ctx context.Context, db *sql.DB, status string) ([]model.Claim, error) {
	qb := sq.Select(
		"c.id", "c.item_id", "c.claimant_name", "c.claimant_email", "c.student_id",
		"c.message", "c.proof_filename", "c.status", "c.created_at",
		"i.title", "i.status",
	).
		From("claims c").
		Join("items i ON i.id = c.item_id").
		OrderBy("c.created_at DESC, c.id DESC").
		Limit(adminListCap)
	if status != "" {
		qb = qb.Where(sq.Eq{"c.status": status})
	}

	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("building admin claim query: %w", err)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing claims: %w", err)
	}
	defer rows.Close()

	var claims []model.Claim
	for rows.Next() {
		var c model.Claim
		var studentID, proof sql.NullString
		if err := rows.Scan(&c.ID, &c.ItemID, &c.ClaimantName, &c.ClaimantEmail,
			&studentID, &c.Message, &proof, &c.Status, &c.CreatedAt,
			&c.ItemTitle, &c.ItemStatus); err != nil {
			return nil, fmt.Errorf("scanning claim: %w", err)
		}
		c.StudentID = studentID.String
		c.ProofFilename = proof.String
		claims = append(claims, c)
	}
	return claims, rows.Err()
}

// SetClaimStatus updates a claim's triage status. Returns sql.ErrNoRows
// when no claim with the given ID exists.
func SetClaimStatus(ctx context.Context, db *sql.DB, id int64, status string) error {
	result, err := db.ExecContext(ctx,
		`UPDATE claims SET status = ? WHERE id = ?`,
		status, id,
	)
	if err != nil {
		return fmt.Errorf("setting claim status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking claim update: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
