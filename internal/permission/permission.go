// Package permission maps roles to capability sets.  Everything here is
// pure and synchronous: the same (role, resource, action) input always
// yields the same answer, so the functions can be used both by API route
// guards and for conditional rendering decisions without I/O.
package permission

import "github.com/loftalgerie/loft-api/internal/model"

// AuditCapabilities is the set of audit-related permissions granted to a
// role.  Admins hold every capability; managers may read integrity
// reports and access logs but cannot manage retention; other roles hold
// none.
type AuditCapabilities struct {
    CanViewIntegrityReports bool `json:"can_view_integrity_reports"`
    CanViewAuditAccessLogs  bool `json:"can_view_audit_access_logs"`
    CanManageRetention      bool `json:"can_manage_retention"`
    HasAdminAuditAccess     bool `json:"has_admin_audit_access"`
}

// ForAudit returns the audit capability set for a role.  Unknown roles
// receive the zero set.
func ForAudit(role string) AuditCapabilities {
    switch role {
    case model.RoleAdmin:
        return AuditCapabilities{
            CanViewIntegrityReports: true,
            CanViewAuditAccessLogs:  true,
            CanManageRetention:      true,
            HasAdminAuditAccess:     true,
        }
    case model.RoleManager:
        return AuditCapabilities{
            CanViewIntegrityReports: true,
            CanViewAuditAccessLogs:  true,
        }
    default:
        return AuditCapabilities{}
    }
}

// policyKey identifies one (resource, action) pair in the policy table.
type policyKey struct {
    resource string
    action   string
}

// policy lists, per (resource, action), the roles allowed to perform it.
// The table is flat on purpose: no inheritance, no wildcards, so every
// grant is visible at a glance.
var policy = map[policyKey][]string{
    {"partners", "view"}:      {model.RoleAdmin, model.RoleManager},
    {"partners", "approve"}:   {model.RoleAdmin},
    {"partners", "reject"}:    {model.RoleAdmin},
    {"partners", "suspend"}:   {model.RoleAdmin},
    {"lofts", "create"}:       {model.RolePartner},
    {"lofts", "update"}:       {model.RolePartner, model.RoleAdmin},
    {"lofts", "delete"}:       {model.RolePartner, model.RoleAdmin},
    {"reservations", "create"}: {model.RoleClient, model.RolePartner, model.RoleAdmin},
    {"reservations", "view"}:   {model.RoleClient, model.RolePartner, model.RoleAdmin, model.RoleManager},
    {"reservations", "cancel"}: {model.RoleClient, model.RoleAdmin},
    {"audit", "view"}:          {model.RoleAdmin, model.RoleManager},
    {"audit", "archive"}:       {model.RoleAdmin},
    {"currency", "manage"}:     {model.RoleAdmin, model.RoleManager},
}

// Allowed reports whether the role may perform the action on the
// resource.  Unknown (resource, action) pairs are denied.
func Allowed(role, resource, action string) bool {
    for _, r := range policy[policyKey{resource, action}] {
        if r == role {
            return true
        }
    }
    return false
}

// CanSeeAuditDetails reports whether audit log rows shown to the role
// include the Details payload.  Only admins see unredacted entries.
func CanSeeAuditDetails(role string) bool {
    return role == model.RoleAdmin
}
