package permission

import (
    "testing"

    "github.com/loftalgerie/loft-api/internal/model"
)

func TestForAuditByRole(t *testing.T) {
    admin := ForAudit(model.RoleAdmin)
    if !admin.CanViewIntegrityReports || !admin.CanViewAuditAccessLogs ||
        !admin.CanManageRetention || !admin.HasAdminAuditAccess {
        t.Fatalf("admin capabilities incomplete: %+v", admin)
    }

    mgr := ForAudit(model.RoleManager)
    if !mgr.CanViewIntegrityReports || !mgr.CanViewAuditAccessLogs {
        t.Fatalf("manager should view reports and access logs: %+v", mgr)
    }
    if mgr.CanManageRetention || mgr.HasAdminAuditAccess {
        t.Fatalf("manager must not manage retention or hold admin access: %+v", mgr)
    }

    for _, role := range []string{model.RolePartner, model.RoleClient, "", "UNKNOWN"} {
        if got := ForAudit(role); got != (AuditCapabilities{}) {
            t.Errorf("role %q should hold no audit capabilities, got %+v", role, got)
        }
    }
}

func TestAllowedDeterministic(t *testing.T) {
    // Calling twice with the same inputs must yield the same answer for
    // every role/resource/action combination in the table.
    roles := []string{model.RoleAdmin, model.RoleManager, model.RolePartner, model.RoleClient, "UNKNOWN"}
    resources := map[string][]string{
        "partners":     {"view", "approve", "reject", "suspend"},
        "lofts":        {"create", "update", "delete"},
        "reservations": {"create", "view", "cancel"},
        "audit":        {"view", "archive"},
        "currency":     {"manage"},
    }
    for _, role := range roles {
        for res, actions := range resources {
            for _, act := range actions {
                first := Allowed(role, res, act)
                second := Allowed(role, res, act)
                if first != second {
                    t.Fatalf("Allowed(%q,%q,%q) not deterministic", role, res, act)
                }
            }
        }
    }
}

func TestAllowedGrants(t *testing.T) {
    cases := []struct {
        role, resource, action string
        want                   bool
    }{
        {model.RoleAdmin, "partners", "approve", true},
        {model.RoleManager, "partners", "approve", false},
        {model.RoleManager, "partners", "view", true},
        {model.RolePartner, "lofts", "create", true},
        {model.RoleClient, "lofts", "create", false},
        {model.RoleClient, "reservations", "create", true},
        {model.RolePartner, "reservations", "create", true},
        {model.RoleAdmin, "reservations", "create", true},
        {model.RoleManager, "reservations", "create", false},
        {model.RoleManager, "audit", "view", true},
        {model.RoleManager, "audit", "archive", false},
        {model.RoleAdmin, "audit", "archive", true},
        {model.RoleAdmin, "nonexistent", "anything", false},
    }
    for _, tc := range cases {
        if got := Allowed(tc.role, tc.resource, tc.action); got != tc.want {
            t.Errorf("Allowed(%q,%q,%q) = %v, want %v", tc.role, tc.resource, tc.action, got, tc.want)
        }
    }
}

func TestCanSeeAuditDetails(t *testing.T) {
    if !CanSeeAuditDetails(model.RoleAdmin) {
        t.Fatal("admin must see audit details")
    }
    for _, role := range []string{model.RoleManager, model.RolePartner, model.RoleClient} {
        if CanSeeAuditDetails(role) {
            t.Errorf("role %q must not see audit details", role)
        }
    }
}
