package store

import (
	"context"
	"testing"

	"github.com/najdeno/najdeno/internal/db"
	"github.com/najdeno/najdeno/internal/model"
)

func TestCountItemsByStatus(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	counts, err := CountItemsByStatus(ctx, database)
	if err != nil {
		t.Fatalf("CountItemsByStatus: %v", err)
	}
	if counts["total"] != 0 || counts[model.ItemStatusPending] != 0 {
		t.Errorf("expected zero counts on empty table, got %v", counts)
	}

	CreateItem(ctx, database, testItemFields("One"), "")
	two, _ := CreateItem(ctx, database, testItemFields("Two"), "")
	SetItemStatus(ctx, database, two.ID, model.ItemStatusApproved)

	counts, err = CountItemsByStatus(ctx, database)
	if err != nil {
		t.Fatalf("CountItemsByStatus: %v", err)
	}
	if counts["total"] != 2 {
		t.Errorf("expected total 2, got %d", counts["total"])
	}
	if counts[model.ItemStatusPending] != 1 || counts[model.ItemStatusApproved] != 1 {
		t.Errorf("unexpected per-status counts: %v", counts)
	}
	// Zero statuses stay present for a stable response shape.
	if _, ok := counts[model.ItemStatusArchived]; !ok {
		t.Error("expected archived key even at zero")
	}
}

func TestCountClaimsByStatus(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	item, _ := CreateItem(ctx, database, testItemFields("One"), "")
	claim, _ := CreateClaim(ctx, database, item.ID, testClaimFields("B"), "")
	CreateClaim(ctx, database, item.ID, testClaimFields("C"), "")
	SetClaimStatus(ctx, database, claim.ID, model.ClaimStatusResolved)

	counts, err := CountClaimsByStatus(ctx, database)
	if err != nil {
		t.Fatalf("CountClaimsByStatus: %v", err)
	}
	if counts["total"] != 2 {
		t.Errorf("expected total 2, got %d", counts["total"])
	}
	if counts[model.ClaimStatusNew] != 1 || counts[model.ClaimStatusResolved] != 1 {
		t.Errorf("unexpected per-status counts: %v", counts)
	}
}
