package handler

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/academic-portal-api/internal/dto"
	"github.com/noah-isme/academic-portal-api/internal/models"
	appErrors "github.com/noah-isme/academic-portal-api/pkg/errors"
	"github.com/noah-isme/academic-portal-api/pkg/response"
)

type paymentService interface {
	Transition(ctx context.Context, req dto.PaymentActionRequest, actor *models.JWTClaims) (*dto.PaymentActionOutcome, error)
	List(ctx context.Context, query dto.PaymentQuery) ([]models.LecturerPayment, *models.Pagination, error)
	ExportSchedule(ctx context.Context, query dto.PaymentQuery, format string) (*dto.ExportFile, error)
}

// PaymentHandler exposes lecturer payment processing.
type PaymentHandler struct {
	service paymentService
	// roles maps upper-cased actions to the roles allowed to run them.
	roles map[string][]models.UserRole
}

// NewPaymentHandler constructs the handler. actionRoles restricts individual
// actions beyond the route-level role check; actions not listed are open to
// every role admitted by the route.
func NewPaymentHandler(service paymentService, actionRoles map[string][]models.UserRole) *PaymentHandler {
	roles := make(map[string][]models.UserRole, len(actionRoles))
	for action, allowed := range actionRoles {
		roles[strings.ToUpper(action)] = allowed
	}
	return &PaymentHandler{service: service, roles: roles}
}

// Action godoc
// @Summary Generate, approve or pay lecturer payments
// @Tags Payments
// @Accept json
// @Produce json
// @Param payload body dto.PaymentActionRequest true "Payment action"
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} response.Envelope
// @Failure 422 {object} map[string]interface{}
// @Router /payments/action [post]
func (h *PaymentHandler) Action(c *gin.Context) {
	var req dto.PaymentActionRequest
	if !bindJSON(c, &req, "invalid payment action payload") {
		return
	}
	actor := claimsFromContext(c)
	if !h.allowed(req.Action, actor) {
		response.Error(c, appErrors.Clone(appErrors.ErrForbidden, fmt.Sprintf("your role cannot %s payments", strings.ToLower(req.Action))))
		return
	}
	out, err := h.service.Transition(c.Request.Context(), req, actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	writeOutcome(c, out.TransitionOutcome, gin.H{
		"transitioned": out.Transitioned,
		"skipped":      out.Skipped,
	})
}

func (h *PaymentHandler) allowed(action string, actor *models.JWTClaims) bool {
	roles, restricted := h.roles[strings.ToUpper(strings.TrimSpace(action))]
	if !restricted {
		return true
	}
	if actor == nil {
		return false
	}
	if actor.Role == models.RoleSuperAdmin {
		return true
	}
	for _, r := range roles {
		if r == actor.Role {
			return true
		}
	}
	return false
}

// List godoc
// @Summary List lecturer payments
// @Tags Payments
// @Produce json
// @Param status query string false "Status filter (comma separated)"
// @Param lecturerId query string false "Lecturer"
// @Param session query string false "Session"
// @Param semester query string false "Semester"
// @Param page query int false "Page"
// @Param pageSize query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /payments [get]
func (h *PaymentHandler) List(c *gin.Context) {
	payments, pagination, err := h.service.List(c.Request.Context(), paymentQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, payments, pagination)
}

// Export godoc
// @Summary Download the payment schedule
// @Tags Payments
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} file
// @Router /payments/schedule/export [get]
func (h *PaymentHandler) Export(c *gin.Context) {
	file, err := h.service.ExportSchedule(c.Request.Context(), paymentQuery(c), c.DefaultQuery("format", "csv"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, file.ContentType, file.Data)
}

func paymentQuery(c *gin.Context) dto.PaymentQuery {
	query := dto.PaymentQuery{
		LecturerID: strings.TrimSpace(c.Query("lecturerId")),
		Session:    strings.TrimSpace(c.Query("session")),
		Semester:   strings.TrimSpace(c.Query("semester")),
		Page:       parseQueryInt(c, "page", 1),
		PageSize:   parseQueryInt(c, "pageSize", 20),
	}
	for _, s := range parseStatuses(c) {
		query.Status = append(query.Status, models.PaymentStatus(strings.ToUpper(s)))
	}
	return query
}
