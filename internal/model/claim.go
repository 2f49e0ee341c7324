package model

import (
	"fmt"
	"time"
)

// Claim represents an inquiry by a prospective owner against an item.
// ItemTitle and ItemStatus are filled only by the admin listing, which
// joins the parent item.
type Claim struct {
	ID            int64     `json:"id"`
	ItemID        int64     `json:"item_id"`
	ClaimantName  string    `json:"claimant_name"`
	ClaimantEmail string    `json:"claimant_email"`
	StudentID     string    `json:"student_id,omitempty"`
	Message       string    `json:"message"`
	ProofFilename string    `json:"proof_filename,omitempty"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`

	ItemTitle  string `json:"item_title,omitempty"`
	ItemStatus string `json:"item_status,omitempty"`
}

// Claim statuses. Triage imposes no ordering: any status is reachable
// from any other.
const (
	ClaimStatusNew      = "new"
	ClaimStatusInReview = "in_review"
	ClaimStatusApproved = "approved"
	ClaimStatusRejected = "rejected"
	ClaimStatusResolved = "resolved"
)

// ValidClaimStatus reports whether status is one of the claim statuses.
func ValidClaimStatus(status string) bool {
	switch status {
	case ClaimStatusNew, ClaimStatusInReview, ClaimStatusApproved,
		ClaimStatusRejected, ClaimStatusResolved:
		return true
	}
	return false
}

// Field length caps for claim submissions.
const (
	MaxClaimantNameLen  = 80
	MaxClaimantEmailLen = 120
	MaxStudentIDLen     = 40
	MaxMessageLen       = 1500
)

// ClaimFields holds the caller-supplied fields of a claim submission.
type ClaimFields struct {
	ClaimantName  string `json:"claimant_name"`
	ClaimantEmail string `json:"claimant_email"`
	StudentID     string `json:"student_id"`
	Message       string `json:"message"`
}

// Clean trims and caps all fields in place, then checks the required
// ones. The student ID is optional.
func (f *ClaimFields) Clean() error {
	f.ClaimantName = clip(f.ClaimantName, MaxClaimantNameLen)
	f.ClaimantEmail = clip(f.ClaimantEmail, MaxClaimantEmailLen)
	f.StudentID = clip(f.StudentID, MaxStudentIDLen)
	f.Message = clip(f.Message, MaxMessageLen)

	if f.ClaimantName == "" {
		return fmt.Errorf("claimant_name is required")
	}
	if f.ClaimantEmail == "" {
		return fmt.Errorf("claimant_email is required")
	}
	if f.Message == "" {
		return fmt.Errorf("message is required")
	}
	return nil
}
