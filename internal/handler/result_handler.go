package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/academic-portal-api/internal/dto"
	"github.com/noah-isme/academic-portal-api/internal/models"
	"github.com/noah-isme/academic-portal-api/pkg/response"
)

type resultService interface {
	Transition(ctx context.Context, req dto.ResultActionRequest, actor *models.JWTClaims) (*dto.ResultActionOutcome, error)
	List(ctx context.Context, query dto.ResultBatchQuery) ([]models.ResultBatch, *models.Pagination, error)
}

// ResultHandler exposes result batch approval.
type ResultHandler struct {
	service resultService
}

// NewResultHandler constructs the handler.
func NewResultHandler(service resultService) *ResultHandler {
	return &ResultHandler{service: service}
}

// Action godoc
// @Summary Approve, reject or release a result batch
// @Tags Results
// @Accept json
// @Produce json
// @Param payload body dto.ResultActionRequest true "Result action"
// @Success 200 {object} map[string]interface{}
// @Failure 422 {object} map[string]interface{}
// @Router /results/action [post]
func (h *ResultHandler) Action(c *gin.Context) {
	var req dto.ResultActionRequest
	if !bindJSON(c, &req, "invalid result action payload") {
		return
	}
	out, err := h.service.Transition(c.Request.Context(), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	fields := gin.H{}
	if out.Batch != nil {
		fields["batch"] = out.Batch
	}
	writeOutcome(c, out.TransitionOutcome, fields)
}

// List godoc
// @Summary List result batches
// @Tags Results
// @Produce json
// @Param status query string false "Status filter (comma separated)"
// @Param courseId query string false "Course"
// @Param session query string false "Session"
// @Param semester query string false "Semester"
// @Param page query int false "Page"
// @Param pageSize query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /results/batches [get]
func (h *ResultHandler) List(c *gin.Context) {
	query := dto.ResultBatchQuery{
		CourseID: strings.TrimSpace(c.Query("courseId")),
		Session:  strings.TrimSpace(c.Query("session")),
		Semester: strings.TrimSpace(c.Query("semester")),
		Page:     parseQueryInt(c, "page", 1),
		PageSize: parseQueryInt(c, "pageSize", 20),
	}
	for _, s := range parseStatuses(c) {
		query.Status = append(query.Status, models.ResultStatus(s))
	}
	batches, pagination, err := h.service.List(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, batches, pagination)
}
