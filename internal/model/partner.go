package model

import "time"

// Partner verification lifecycle states.  A partner account is created in
// the pending state and transitions only through admin action (approval,
// rejection) or a policy action (suspension).  The middleware gate reads
// this state; it never writes it.
const (
    PartnerPending   = "pending"
    PartnerActive    = "active"
    PartnerRejected  = "rejected"
    PartnerSuspended = "suspended"
)

// Partner represents a property owner/operator profile attached to a user
// account.  Partners go through a verification workflow before gaining
// access to the partner dashboard routes.  This struct corresponds to a
// row in the `partners` table.
//
// Fields:
//  ID                 – primary key identifier.
//  UserID             – user account owning this profile.
//  BusinessName       – registered business name shown to guests.
//  VerificationStatus – lifecycle state (pending, active, rejected, suspended).
//  ApprovedBy         – user ID of the admin who approved (nil until approved).
//  RejectedBy         – user ID of the admin who rejected (nil unless rejected).
//  CreatedAt          – timestamp when the profile was created.
//  UpdatedAt          – timestamp of last update.
type Partner struct {
    ID                 uint64     // partners.id
    UserID             uint64     // partners.user_id
    BusinessName       string     // partners.business_name
    VerificationStatus string     // partners.verification_status
    ApprovedBy         *uint64    // partners.approved_by (nullable)
    RejectedBy         *uint64    // partners.rejected_by (nullable)
    CreatedAt          time.Time  // partners.created_at
    UpdatedAt          time.Time  // partners.updated_at
}
