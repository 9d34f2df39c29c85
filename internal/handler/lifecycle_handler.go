package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/academic-portal-api/internal/dto"
	"github.com/noah-isme/academic-portal-api/internal/models"
	"github.com/noah-isme/academic-portal-api/pkg/response"
)

type lifecycleService interface {
	Migrate(ctx context.Context, req dto.LifecycleRequest, actor *models.JWTClaims) (*dto.LifecycleOutcome, error)
	Graduate(ctx context.Context, req dto.LifecycleRequest, actor *models.JWTClaims) (*dto.LifecycleOutcome, error)
	LinkedStudent(ctx context.Context, applicantID string) (*models.Student, error)
}

// LifecycleHandler exposes applicant migration and graduation.
type LifecycleHandler struct {
	service lifecycleService
}

// NewLifecycleHandler constructs the handler.
func NewLifecycleHandler(service lifecycleService) *LifecycleHandler {
	return &LifecycleHandler{service: service}
}

// Migrate godoc
// @Summary Migrate an applicant to a student
// @Description Creates the student record for an approved applicant whose acceptance fee is paid
// @Tags Lifecycle
// @Accept json
// @Produce json
// @Param payload body dto.LifecycleRequest true "Applicant"
// @Success 200 {object} map[string]interface{}
// @Failure 409 {object} map[string]interface{}
// @Failure 422 {object} map[string]interface{}
// @Router /lifecycle/migrate [post]
func (h *LifecycleHandler) Migrate(c *gin.Context) {
	h.transition(c, h.service.Migrate)
}

// Graduate godoc
// @Summary Graduate the student linked to an applicant
// @Tags Lifecycle
// @Accept json
// @Produce json
// @Param payload body dto.LifecycleRequest true "Applicant"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /lifecycle/graduate [post]
func (h *LifecycleHandler) Graduate(c *gin.Context) {
	h.transition(c, h.service.Graduate)
}

func (h *LifecycleHandler) transition(c *gin.Context, run func(context.Context, dto.LifecycleRequest, *models.JWTClaims) (*dto.LifecycleOutcome, error)) {
	var req dto.LifecycleRequest
	if !bindJSON(c, &req, "applicantId is required") {
		return
	}
	out, err := run(c.Request.Context(), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	fields := gin.H{}
	if view := dto.NewStudentView(out.Student); view != nil {
		fields["student"] = view
	}
	writeOutcome(c, out.TransitionOutcome, fields)
}

// LinkedStudent godoc
// @Summary Student created from an applicant
// @Tags Lifecycle
// @Produce json
// @Param id path string true "Applicant ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /lifecycle/applicants/{id}/student [get]
func (h *LifecycleHandler) LinkedStudent(c *gin.Context) {
	student, err := h.service.LinkedStudent(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student, nil)
}
