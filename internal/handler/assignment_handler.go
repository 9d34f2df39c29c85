package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/academic-portal-api/internal/dto"
	"github.com/noah-isme/academic-portal-api/internal/models"
	"github.com/noah-isme/academic-portal-api/pkg/response"
)

type assignmentService interface {
	AssignExaminer(ctx context.Context, req dto.AssignExaminerRequest, actor *models.JWTClaims) (*dto.AssignmentOutcome, error)
	AssignSupervisor(ctx context.Context, req dto.AssignSupervisorRequest, actor *models.JWTClaims) (*dto.AssignmentOutcome, error)
}

// AssignmentHandler exposes supervisor and examiner assignment.
type AssignmentHandler struct {
	service assignmentService
}

// NewAssignmentHandler constructs the handler.
func NewAssignmentHandler(service assignmentService) *AssignmentHandler {
	return &AssignmentHandler{service: service}
}

// Examiner godoc
// @Summary Assign or clear an examiner
// @Tags Assignments
// @Accept json
// @Produce json
// @Param payload body dto.AssignExaminerRequest true "Examiner assignment"
// @Success 200 {object} map[string]interface{}
// @Router /assignments/examiner [post]
func (h *AssignmentHandler) Examiner(c *gin.Context) {
	var req dto.AssignExaminerRequest
	if !bindJSON(c, &req, "invalid examiner assignment payload") {
		return
	}
	out, err := h.service.AssignExaminer(c.Request.Context(), req, claimsFromContext(c))
	h.write(c, out, err)
}

// Supervisor godoc
// @Summary Assign or clear the supervisor
// @Tags Assignments
// @Accept json
// @Produce json
// @Param payload body dto.AssignSupervisorRequest true "Supervisor assignment"
// @Success 200 {object} map[string]interface{}
// @Router /assignments/supervisor [post]
func (h *AssignmentHandler) Supervisor(c *gin.Context) {
	var req dto.AssignSupervisorRequest
	if !bindJSON(c, &req, "invalid supervisor assignment payload") {
		return
	}
	out, err := h.service.AssignSupervisor(c.Request.Context(), req, claimsFromContext(c))
	h.write(c, out, err)
}

func (h *AssignmentHandler) write(c *gin.Context, out *dto.AssignmentOutcome, err error) {
	if err != nil {
		response.Error(c, err)
		return
	}
	fields := gin.H{}
	if out.Programme != nil {
		fields["programme"] = out.Programme
	}
	writeOutcome(c, out.TransitionOutcome, fields)
}
