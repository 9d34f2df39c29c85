package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/academic-portal-api/internal/dto"
	"github.com/noah-isme/academic-portal-api/internal/models"
	"github.com/noah-isme/academic-portal-api/pkg/response"
)

type admissionService interface {
	Invite(ctx context.Context, applicantID string, req dto.InviteRequest, actor *models.JWTClaims) (*dto.TransitionOutcome, error)
	NotifyStatus(ctx context.Context, applicantID string, actor *models.JWTClaims) (*dto.TransitionOutcome, error)
}

// AdmissionHandler sends applicant notices.
type AdmissionHandler struct {
	service admissionService
}

// NewAdmissionHandler constructs the handler.
func NewAdmissionHandler(service admissionService) *AdmissionHandler {
	return &AdmissionHandler{service: service}
}

// Invite godoc
// @Summary Invite an applicant to the admission exercise
// @Tags Admissions
// @Accept json
// @Produce json
// @Param id path string true "Applicant ID"
// @Param payload body dto.InviteRequest true "Invitation"
// @Success 200 {object} map[string]interface{}
// @Router /admissions/{id}/invite [post]
func (h *AdmissionHandler) Invite(c *gin.Context) {
	var req dto.InviteRequest
	if !bindJSON(c, &req, "venue and scheduledAt are required") {
		return
	}
	out, err := h.service.Invite(c.Request.Context(), c.Param("id"), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	writeOutcome(c, *out, nil)
}

// NotifyStatus godoc
// @Summary Notify an applicant of their admission status
// @Tags Admissions
// @Produce json
// @Param id path string true "Applicant ID"
// @Success 200 {object} map[string]interface{}
// @Router /admissions/{id}/notify-status [post]
func (h *AdmissionHandler) NotifyStatus(c *gin.Context) {
	out, err := h.service.NotifyStatus(c.Request.Context(), c.Param("id"), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	writeOutcome(c, *out, nil)
}
