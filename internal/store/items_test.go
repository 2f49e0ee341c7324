package store

import (
	"context"
	"fmt"
	"testing"

	"github.com/najdeno/najdeno/internal/db"
	"github.com/najdeno/najdeno/internal/model"
)

func testItemFields(title string) model.ItemFields {
	return model.ItemFields{
		Title:         title,
		Description:   "description of " + title,
		Category:      "Bags",
		LocationFound: "Library",
		DateFound:     "2025-01-10",
		ReporterName:  "A",
		ReporterEmail: "a@x.com",
	}
}

func testClaimFields(name string) model.ClaimFields {
	return model.ClaimFields{
		ClaimantName:  name,
		ClaimantEmail: name + "@x.com",
		Message:       "that one is mine",
	}
}

func TestCreateAndGetItem(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	item, err := CreateItem(ctx, database, testItemFields("Blue Backpack"), "")
	if err != nil {
		t.Fatalf("CreateItem: %v", err)
	}
	if item.Title != "Blue Backpack" {
		t.Errorf("expected title 'Blue Backpack', got %q", item.Title)
	}
	if item.Status != model.ItemStatusPending {
		t.Errorf("expected status 'pending', got %q", item.Status)
	}
	if item.PhotoFilename != "" {
		t.Errorf("expected no photo, got %q", item.PhotoFilename)
	}

	missing, err := GetItem(ctx, database, item.ID+1000)
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	if missing != nil {
		t.Errorf("expected nil for unknown item, got %+v", missing)
	}
}

func TestCreateItemWithPhoto(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	item, err := CreateItem(ctx, database, testItemFields("Umbrella"), "abc123.jpg")
	if err != nil {
		t.Fatalf("CreateItem: %v", err)
	}
	if item.PhotoFilename != "abc123.jpg" {
		t.Errorf("expected photo filename, got %q", item.PhotoFilename)
	}
}

func TestSetItemStatus(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	item, _ := CreateItem(ctx, database, testItemFields("Keys"), "")

	for _, status := range []string{
		model.ItemStatusApproved, model.ItemStatusClaimed, model.ItemStatusArchived,
	} {
		if err := SetItemStatus(ctx, database, item.ID, status); err != nil {
			t.Fatalf("SetItemStatus(%s): %v", status, err)
		}
		got, _ := GetItem(ctx, database, item.ID)
		if got.Status != status {
			t.Errorf("expected status %q, got %q", status, got.Status)
		}
	}
}

func TestUpdateItemFields(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	item, _ := CreateItem(ctx, database, testItemFields("Old Title"), "photo.png")
	SetItemStatus(ctx, database, item.ID, model.ItemStatusApproved)

	f := testItemFields("New Title")
	f.Category = "Electronics"
	if err := UpdateItemFields(ctx, database, item.ID, f); err != nil {
		t.Fatalf("UpdateItemFields: %v", err)
	}

	got, _ := GetItem(ctx, database, item.ID)
	if got.Title != "New Title" {
		t.Errorf("expected new title, got %q", got.Title)
	}
	if got.Category != "Electronics" {
		t.Errorf("expected new category, got %q", got.Category)
	}
	// Edits leave status and photo alone.
	if got.Status != model.ItemStatusApproved {
		t.Errorf("expected status untouched, got %q", got.Status)
	}
	if got.PhotoFilename != "photo.png" {
		t.Errorf("expected photo untouched, got %q", got.PhotoFilename)
	}
}

func TestSearchItemsFilters(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	backpack, _ := CreateItem(ctx, database, testItemFields("Blue Backpack"), "")
	umbrella := testItemFields("Red Umbrella")
	umbrella.Category = "Accessories"
	umbrella.LocationFound = "Cafeteria"
	umbrella.DateFound = "2025-02-01"
	CreateItem(ctx, database, umbrella, "")

	SetItemStatus(ctx, database, backpack.ID, model.ItemStatusApproved)

	// Status filter.
	items, total, err := SearchItems(ctx, database, SearchFilter{
		Status: model.ItemStatusApproved, Page: 1, Limit: 20,
	})
	if err != nil {
		t.Fatalf("SearchItems: %v", err)
	}
	if total != 1 || len(items) != 1 || items[0].ID != backpack.ID {
		t.Errorf("expected only the approved backpack, got total=%d items=%v", total, items)
	}

	// Substring query matches title or description, case-insensitively
	// for ASCII per SQLite LIKE.
	_, total, _ = SearchItems(ctx, database, SearchFilter{Query: "backpack", Page: 1, Limit: 20})
	if total != 1 {
		t.Errorf("expected 1 match for 'backpack', got %d", total)
	}

	// Category exact match.
	_, total, _ = SearchItems(ctx, database, SearchFilter{Category: "Accessories", Page: 1, Limit: 20})
	if total != 1 {
		t.Errorf("expected 1 match for category, got %d", total)
	}
	_, total, _ = SearchItems(ctx, database, SearchFilter{Category: "Access", Page: 1, Limit: 20})
	if total != 0 {
		t.Errorf("expected exact category matching, got %d", total)
	}

	// Location substring match.
	_, total, _ = SearchItems(ctx, database, SearchFilter{Location: "afeter", Page: 1, Limit: 20})
	if total != 1 {
		t.Errorf("expected 1 match for location substring, got %d", total)
	}

	// Inclusive date range.
	_, total, _ = SearchItems(ctx, database, SearchFilter{
		DateFrom: "2025-01-10", DateTo: "2025-02-01", Page: 1, Limit: 20,
	})
	if total != 2 {
		t.Errorf("expected both items in date range, got %d", total)
	}
	_, total, _ = SearchItems(ctx, database, SearchFilter{
		DateFrom: "2025-01-11", Page: 1, Limit: 20,
	})
	if total != 1 {
		t.Errorf("expected 1 item after date_from, got %d", total)
	}

	// Filters compose with AND.
	_, total, _ = SearchItems(ctx, database, SearchFilter{
		Query: "umbrella", Category: "Bags", Page: 1, Limit: 20,
	})
	if total != 0 {
		t.Errorf("expected AND composition to exclude, got %d", total)
	}
}

func TestSearchItemsPagination(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	const n = 5
	for i := 0; i < n; i++ {
		CreateItem(ctx, database, testItemFields(fmt.Sprintf("Item %d", i)), "")
	}

	seen := make(map[int64]bool)
	fetched := 0
	for page := 1; ; page++ {
		items, total, err := SearchItems(ctx, database, SearchFilter{Page: page, Limit: 2})
		if err != nil {
			t.Fatalf("SearchItems page %d: %v", page, err)
		}
		if total != n {
			t.Errorf("expected total %d, got %d", n, total)
		}
		if len(items) == 0 {
			break
		}
		for _, item := range items {
			if seen[item.ID] {
				t.Errorf("item %d appeared on more than one page", item.ID)
			}
			seen[item.ID] = true
		}
		fetched += len(items)
	}
	if fetched != n {
		t.Errorf("expected pages to sum to %d, got %d", n, fetched)
	}
}

func TestSearchItemsSort(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	first, _ := CreateItem(ctx, database, testItemFields("First"), "")
	second, _ := CreateItem(ctx, database, testItemFields("Second"), "")

	items, _, err := SearchItems(ctx, database, SearchFilter{Page: 1, Limit: 20})
	if err != nil {
		t.Fatalf("SearchItems: %v", err)
	}
	if items[0].ID != second.ID {
		t.Errorf("expected newest first by default, got %d", items[0].ID)
	}

	items, _, _ = SearchItems(ctx, database, SearchFilter{Sort: "oldest", Page: 1, Limit: 20})
	if items[0].ID != first.ID {
		t.Errorf("expected oldest first, got %d", items[0].ID)
	}
}

func TestAdminListItems(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	pending, _ := CreateItem(ctx, database, testItemFields("Pending Thing"), "")
	approved, _ := CreateItem(ctx, database, testItemFields("Approved Thing"), "")
	SetItemStatus(ctx, database, approved.ID, model.ItemStatusApproved)

	// No default status restriction.
	items, err := AdminListItems(ctx, database, "", "")
	if err != nil {
		t.Fatalf("AdminListItems: %v", err)
	}
	if len(items) != 2 {
		t.Errorf("expected 2 items, got %d", len(items))
	}

	items, _ = AdminListItems(ctx, database, model.ItemStatusPending, "")
	if len(items) != 1 || items[0].ID != pending.ID {
		t.Errorf("expected only the pending item, got %v", items)
	}

	items, _ = AdminListItems(ctx, database, "", "approved thing")
	if len(items) != 1 || items[0].ID != approved.ID {
		t.Errorf("expected query match, got %v", items)
	}
}

func TestDeleteItemCascadesClaims(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	item, _ := CreateItem(ctx, database, testItemFields("Claimed Thing"), "")
	claim, err := CreateClaim(ctx, database, item.ID, testClaimFields("B"), "proof.png")
	if err != nil {
		t.Fatalf("CreateClaim: %v", err)
	}

	if err := DeleteItem(ctx, database, item.ID); err != nil {
		t.Fatalf("DeleteItem: %v", err)
	}

	got, _ := GetItem(ctx, database, item.ID)
	if got != nil {
		t.Errorf("expected item gone, got %+v", got)
	}

	// Claim rows cascade with the item.
	gotClaim, err := GetClaim(ctx, database, claim.ID)
	if err != nil {
		t.Fatalf("GetClaim: %v", err)
	}
	if gotClaim != nil {
		t.Errorf("expected claim gone, got %+v", gotClaim)
	}

	var count int
	if err := database.QueryRowContext(ctx, `SELECT COUNT(*) FROM claims`).Scan(&count); err != nil {
		t.Fatalf("counting claims: %v", err)
	}
	if count != 0 {
		t.Errorf("expected no claim rows, got %d", count)
	}
}
