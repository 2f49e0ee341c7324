package store

import (
	"context"
	"testing"
	"time"

	"github.com/najdeno/najdeno/internal/db"
)

func TestRevokeAndCheckSession(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	// Session should not be revoked initially.
	revoked, err := IsSessionRevoked(ctx, database, "test-jti-1")
	if err != nil {
		t.Fatalf("IsSessionRevoked: %v", err)
	}
	if revoked {
		t.Error("expected session not to be revoked")
	}

	// Revoke the session.
	err = RevokeSession(ctx, database, "test-jti-1", time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("RevokeSession: %v", err)
	}

	// Now it should be revoked.
	revoked, err = IsSessionRevoked(ctx, database, "test-jti-1")
	if err != nil {
		t.Fatalf("IsSessionRevoked: %v", err)
	}
	if !revoked {
		t.Error("expected session to be revoked")
	}

	// Different JTI should not be revoked.
	revoked, err = IsSessionRevoked(ctx, database, "test-jti-2")
	if err != nil {
		t.Fatalf("IsSessionRevoked: %v", err)
	}
	if revoked {
		t.Error("expected different session not to be revoked")
	}
}

func TestRevokeSessionIdempotent(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	// Revoking the same session twice should not error (INSERT OR IGNORE).
	err := RevokeSession(ctx, database, "test-jti-1", time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("first RevokeSession: %v", err)
	}

	err = RevokeSession(ctx, database, "test-jti-1", time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("second RevokeSession: %v", err)
	}
}

func TestRevokeSessionCleansExpired(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	// An already-expired revocation gets swept by the next revoke.
	RevokeSession(ctx, database, "expired-jti", time.Now().Add(-time.Hour))
	RevokeSession(ctx, database, "fresh-jti", time.Now().Add(time.Hour))

	var count int
	err := database.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM revoked_sessions WHERE jti = 'expired-jti'`,
	).Scan(&count)
	if err != nil {
		t.Fatalf("counting revocations: %v", err)
	}
	if count != 0 {
		t.Error("expected expired revocation to be cleaned up")
	}
}
