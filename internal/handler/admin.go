package handler

import (
    "context"
    "errors"
    "fmt"
    "net/http"
    "strconv"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/loftalgerie/loft-api/internal/model"
    "github.com/loftalgerie/loft-api/internal/permission"
    "github.com/loftalgerie/loft-api/internal/repository"
)

// AdminHandler covers the back-office surface: partner verification,
// audit log access, archive policies and runs, and currency rates.
// Routes are restricted to ADMIN (and, for audit reads, MANAGER) by the
// role middleware; the permission package is still consulted inside so
// a misconfigured route cannot widen access.
type AdminHandler struct {
    Partners *repository.PartnerRepo
    Audit    *repository.AuditRepo
    Policies *repository.ArchivePolicyRepo
    Currency *repository.CurrencyRepo
    Tokens   *repository.TokenRepo
}

// NewAdminHandler constructs an AdminHandler with the provided
// repositories. All dependencies must be non-nil.
func NewAdminHandler(partners *repository.PartnerRepo, audit *repository.AuditRepo, policies *repository.ArchivePolicyRepo, currency *repository.CurrencyRepo, tokens *repository.TokenRepo) *AdminHandler {
    if partners == nil || audit == nil || policies == nil || currency == nil || tokens == nil {
        panic("nil repository passed to NewAdminHandler")
    }
    return &AdminHandler{Partners: partners, Audit: audit, Policies: policies, Currency: currency, Tokens: tokens}
}

// ----- partner verification -----

// ListPartners handles GET /v1/admin/partners?status=pending.
func (h *AdminHandler) ListPartners(c echo.Context) error {
    status := strings.ToLower(strings.TrimSpace(c.QueryParam("status")))
    if status == "" {
        status = model.PartnerPending
    }
    switch status {
    case model.PartnerPending, model.PartnerActive, model.PartnerRejected, model.PartnerSuspended:
    default:
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown status"})
    }
    partners, err := h.Partners.ListByStatus(c.Request().Context(), status)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load partners"})
    }
    items := make([]partnerResp, 0, len(partners))
    for _, p := range partners {
        items = append(items, toPartnerResp(p))
    }
    return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// ApprovePartner handles POST /v1/admin/partners/:id/approve.
func (h *AdminHandler) ApprovePartner(c echo.Context) error {
    return h.verify(c, "approve", h.Partners.Approve)
}

// RejectPartner handles POST /v1/admin/partners/:id/reject.
func (h *AdminHandler) RejectPartner(c echo.Context) error {
    return h.verify(c, "reject", h.Partners.Reject)
}

// SuspendPartner handles POST /v1/admin/partners/:id/suspend.
func (h *AdminHandler) SuspendPartner(c echo.Context) error {
    return h.verify(c, "suspend", h.Partners.Suspend)
}

// verify factors the shared shape of the three transition endpoints:
// parse the id, check the permission grant, run the guarded transition
// and write an audit entry naming the acting admin.
func (h *AdminHandler) verify(c echo.Context, action string, op func(ctx context.Context, partnerID, adminID uint64) error) error {
    adminID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    if !permission.Allowed(getRole(c), "partners", action) {
        return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
    }
    partnerID, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil || partnerID == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid partner id"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    if err := op(ctx, partnerID, adminID); err != nil {
        switch {
        case errors.Is(err, repository.ErrPartnerNotFound):
            return c.JSON(http.StatusNotFound, echo.Map{"error": "partner not found"})
        case errors.Is(err, repository.ErrConflict):
            return c.JSON(http.StatusConflict, echo.Map{"error": "partner is not in a state that allows this action"})
        default:
            return c.JSON(http.StatusInternalServerError, echo.Map{"error": "partner update failed"})
        }
    }
    details := fmt.Sprintf(`{"partner_id":%d}`, partnerID)
    _ = h.Audit.Insert(ctx, "partners", action, &adminID, &details)

    p, err := h.Partners.GetByID(ctx, partnerID)
    if err != nil {
        return c.JSON(http.StatusOK, echo.Map{"id": partnerID})
    }
    return c.JSON(http.StatusOK, echo.Map{"item": toPartnerResp(p)})
}

// ----- audit -----

type auditEntryResp struct {
    ID        uint64    `json:"id"`
    TableName string    `json:"table_name"`
    Action    string    `json:"action"`
    ActorID   *uint64   `json:"actor_id,omitempty"`
    Details   *string   `json:"details,omitempty"`
    CreatedAt time.Time `json:"created_at"`
}

// ListAudit handles GET /v1/admin/audit?limit=100. Managers get entries
// with details redacted; the repository enforces that.
func (h *AdminHandler) ListAudit(c echo.Context) error {
    limit, _ := strconv.Atoi(c.QueryParam("limit"))
    entries, err := h.Audit.ListForRole(c.Request().Context(), getRole(c), limit)
    if err != nil {
        if errors.Is(err, repository.ErrForbidden) {
            return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load audit log"})
    }
    items := make([]auditEntryResp, 0, len(entries))
    for _, e := range entries {
        items = append(items, auditEntryResp{
            ID: e.ID, TableName: e.TableName, Action: e.Action,
            ActorID: e.ActorID, Details: e.Details, CreatedAt: e.CreatedAt,
        })
    }
    return c.JSON(http.StatusOK, echo.Map{
        "items":        items,
        "capabilities": permission.ForAudit(getRole(c)),
    })
}

// ----- archive policies and runs -----

type policyResp struct {
    ID            uint64     `json:"id"`
    TableName     string     `json:"table_name"`
    RetentionDays int        `json:"retention_days"`
    Frequency     string     `json:"frequency"`
    Enabled       bool       `json:"enabled"`
    LastRun       *time.Time `json:"last_run,omitempty"`
    ArchivedCount uint64     `json:"archived_count"`
}

func toPolicyResp(p model.ArchivePolicy) policyResp {
    return policyResp{
        ID: p.ID, TableName: p.TableName, RetentionDays: p.RetentionDays,
        Frequency: p.Frequency, Enabled: p.Enabled, LastRun: p.LastRun,
        ArchivedCount: p.ArchivedCount,
    }
}

// ListPolicies handles GET /v1/admin/archive/policies. The response
// includes how many refresh tokens are past expiry, a quick dry-run
// signal of what the next archive pass will pick up.
func (h *AdminHandler) ListPolicies(c echo.Context) error {
    ctx := c.Request().Context()
    policies, err := h.Policies.ListAll(ctx)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load policies"})
    }
    expired, err := h.Tokens.CountExpired(ctx)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to count expired tokens"})
    }
    items := make([]policyResp, 0, len(policies))
    for _, p := range policies {
        items = append(items, toPolicyResp(p))
    }
    return c.JSON(http.StatusOK, echo.Map{
        "items":                  items,
        "expired_refresh_tokens": expired,
    })
}

type policyReq struct {
    TableName     string `json:"table_name"`
    RetentionDays int    `json:"retention_days"`
    Frequency     string `json:"frequency"`
    Enabled       bool   `json:"enabled"`
}

// UpsertPolicy handles PUT /v1/admin/archive/policies.
func (h *AdminHandler) UpsertPolicy(c echo.Context) error {
    adminID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    var req policyReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    req.TableName = strings.TrimSpace(req.TableName)
    if req.TableName == "" || req.RetentionDays <= 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "table_name and a positive retention_days are required"})
    }
    if req.Frequency == "" {
        req.Frequency = "daily"
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()
    p := &model.ArchivePolicy{
        TableName:     req.TableName,
        RetentionDays: req.RetentionDays,
        Frequency:     req.Frequency,
        Enabled:       req.Enabled,
    }
    if err := h.Policies.Upsert(ctx, p); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to save policy"})
    }
    details := fmt.Sprintf(`{"table":%q,"retention_days":%d,"enabled":%t}`,
        req.TableName, req.RetentionDays, req.Enabled)
    _ = h.Audit.Insert(ctx, "archive_policies", "upsert", &adminID, &details)
    return c.JSON(http.StatusOK, echo.Map{"item": toPolicyResp(*p)})
}

// RunArchive handles POST /v1/admin/archive/run/:table. It drains every
// expired row for the named table according to its policy, in batches,
// and records the run.
func (h *AdminHandler) RunArchive(c echo.Context) error {
    adminID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    if !permission.Allowed(getRole(c), "audit", "archive") {
        return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
    }
    table := strings.TrimSpace(c.Param("table"))

    ctx := c.Request().Context()
    policy, err := h.Policies.GetByTable(ctx, table)
    if err != nil {
        if errors.Is(err, repository.ErrPolicyNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "no policy for table"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load policy"})
    }

    result, err := h.Audit.DrainOldRows(ctx, table, policy.RetentionDays, 1000, &adminID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "archive run failed"})
    }
    if err := h.Policies.RecordRun(ctx, table, result.Archived, time.Now()); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "archive ran but recording the run failed"})
    }
    return c.JSON(http.StatusOK, echo.Map{"result": result})
}

// RunAllArchives handles POST /v1/admin/archive/run. Every enabled
// policy is executed once; failures are reported per table without
// aborting the remaining runs.
func (h *AdminHandler) RunAllArchives(c echo.Context) error {
    adminID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    if !permission.Allowed(getRole(c), "audit", "archive") {
        return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
    }
    ctx := c.Request().Context()
    policies, err := h.Policies.ListEnabled(ctx)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load policies"})
    }

    results := make([]repository.ArchiveResult, 0, len(policies))
    failed := make(map[string]string)
    for _, p := range policies {
        res, err := h.Audit.DrainOldRows(ctx, p.TableName, p.RetentionDays, 1000, &adminID)
        if err != nil {
            failed[p.TableName] = err.Error()
            continue
        }
        if err := h.Policies.RecordRun(ctx, p.TableName, res.Archived, time.Now()); err != nil {
            failed[p.TableName] = err.Error()
            continue
        }
        results = append(results, res)
    }
    return c.JSON(http.StatusOK, echo.Map{"results": results, "failed": failed})
}

// ----- currency rates -----

type rateResp struct {
    Code      string    `json:"code"`
    RateToDZD float64   `json:"rate_to_dzd"`
    UpdatedAt time.Time `json:"updated_at"`
}

// ListRates handles GET /v1/admin/currency.
func (h *AdminHandler) ListRates(c echo.Context) error {
    rates, err := h.Currency.List(c.Request().Context())
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load rates"})
    }
    items := make([]rateResp, 0, len(rates))
    for _, r := range rates {
        items = append(items, rateResp{Code: r.Code, RateToDZD: r.RateToDZD, UpdatedAt: r.UpdatedAt})
    }
    return c.JSON(http.StatusOK, echo.Map{"items": items})
}

type rateReq struct {
    Code      string  `json:"code"`
    RateToDZD float64 `json:"rate_to_dzd"`
}

// UpsertRate handles PUT /v1/admin/currency.
func (h *AdminHandler) UpsertRate(c echo.Context) error {
    adminID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    if !permission.Allowed(getRole(c), "currency", "manage") {
        return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
    }
    var req rateReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    req.Code = strings.ToUpper(strings.TrimSpace(req.Code))
    if len(req.Code) != 3 || req.RateToDZD <= 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "code must be 3 letters and rate_to_dzd positive"})
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()
    if err := h.Currency.Upsert(ctx, req.Code, req.RateToDZD); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to save rate"})
    }
    details := fmt.Sprintf(`{"code":%q,"rate_to_dzd":%g}`, req.Code, req.RateToDZD)
    _ = h.Audit.Insert(ctx, "currency_rates", "upsert", &adminID, &details)
    return c.JSON(http.StatusOK, echo.Map{"code": req.Code, "rate_to_dzd": req.RateToDZD})
}
