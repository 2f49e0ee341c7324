package store

import (
	"context"
	"database/sql"
	"testing"

	"github.com/najdeno/najdeno/internal/db"
	"github.com/najdeno/najdeno/internal/model"
)

func TestCreateAndGetClaim(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	item, _ := CreateItem(ctx, database, testItemFields("Backpack"), "")

	fields := testClaimFields("B")
	fields.StudentID = "S-12345"
	claim, err := CreateClaim(ctx, database, item.ID, fields, "proof.jpg")
	if err != nil {
		t.Fatalf("CreateClaim: %v", err)
	}
	if claim.Status != model.ClaimStatusNew {
		t.Errorf("expected status 'new', got %q", claim.Status)
	}
	if claim.ItemID != item.ID {
		t.Errorf("expected item id %d, got %d", item.ID, claim.ItemID)
	}
	if claim.StudentID != "S-12345" {
		t.Errorf("expected student id, got %q", claim.StudentID)
	}
	if claim.ProofFilename != "proof.jpg" {
		t.Errorf("expected proof filename, got %q", claim.ProofFilename)
	}
}

func TestClaimsByItem(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	item, _ := CreateItem(ctx, database, testItemFields("Backpack"), "")
	other, _ := CreateItem(ctx, database, testItemFields("Umbrella"), "")

	CreateClaim(ctx, database, item.ID, testClaimFields("B"), "")
	CreateClaim(ctx, database, item.ID, testClaimFields("C"), "proof.png")
	CreateClaim(ctx, database, other.ID, testClaimFields("D"), "")

	claims, err := ClaimsByItem(ctx, database, item.ID)
	if err != nil {
		t.Fatalf("ClaimsByItem: %v", err)
	}
	if len(claims) != 2 {
		t.Errorf("expected 2 claims, got %d", len(claims))
	}
}

func TestAdminListClaims(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	item, _ := CreateItem(ctx, database, testItemFields("Backpack"), "")
	SetItemStatus(ctx, database, item.ID, model.ItemStatusApproved)

	first, _ := CreateClaim(ctx, database, item.ID, testClaimFields("B"), "")
	second, _ := CreateClaim(ctx, database, item.ID, testClaimFields("C"), "")
	SetClaimStatus(ctx, database, second.ID, model.ClaimStatusInReview)

	claims, err := AdminListClaims(ctx, database, "")
	if err != nil {
		t.Fatalf("AdminListClaims: %v", err)
	}
	if len(claims) != 2 {
		t.Fatalf("expected 2 claims, got %d", len(claims))
	}

	// Joined parent item fields are filled.
	for _, c := range claims {
		if c.ItemTitle != "Backpack" {
			t.Errorf("expected joined item title, got %q", c.ItemTitle)
		}
		if c.ItemStatus != model.ItemStatusApproved {
			t.Errorf("expected joined item status, got %q", c.ItemStatus)
		}
	}

	// Newest first: ties on created_at fall back to id.
	if claims[0].ID != second.ID || claims[1].ID != first.ID {
		t.Errorf("expected newest first, got %d then %d", claims[0].ID, claims[1].ID)
	}

	// Optional status filter.
	claims, _ = AdminListClaims(ctx, database, model.ClaimStatusInReview)
	if len(claims) != 1 || claims[0].ID != second.ID {
		t.Errorf("expected only the in_review claim, got %v", claims)
	}
}

func TestSetClaimStatusAllValues(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	item, _ := CreateItem(ctx, database, testItemFields("Backpack"), "")
	claim, _ := CreateClaim(ctx, database, item.ID, testClaimFields("B"), "")

	// Triage has no ordering: every status is reachable from any other.
	statuses := []string{
		model.ClaimStatusInReview, model.ClaimStatusApproved,
		model.ClaimStatusRejected, model.ClaimStatusResolved, model.ClaimStatusNew,
	}
	for _, status := range statuses {
		if err := SetClaimStatus(ctx, database, claim.ID, status); err != nil {
			t.Fatalf("SetClaimStatus(%s): %v", status, err)
		}
		got, _ := GetClaim(ctx, database, claim.ID)
		if got.Status != status {
			t.Errorf("expected status %q, got %q", status, got.Status)
		}
	}
}

func TestSetClaimStatusUnknownID(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	err := SetClaimStatus(ctx, database, 999, model.ClaimStatusApproved)
	if err != sql.ErrNoRows {
		t.Errorf("expected sql.ErrNoRows for unknown claim, got %v", err)
	}
}
